package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/internal/setup"
	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"
	loaderio "github.com/OFFIS-RIT/kgraph/backend/pkg/loader/io"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader/pdf"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/spf13/cobra"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var (
		sessionID string
		pretty    bool
	)

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract entities, relationships and events from a document",
		Long: `Extract runs the pipeline over a text or PDF file, or over stdin when no
file is given, and prints the result as JSON.

With --session the result is also saved to the configured graph store
(GRAPH_STORE).

Examples:
  kgraph extract article.txt
  kgraph extract report.pdf --pretty
  echo "Apple acquired Beats in 2014." | kgraph extract
  kgraph extract notes.txt --session my-session-id-000000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			file, err := inputFile(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			text, err := file.GetText(ctx)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file.FilePath, err)
			}

			aiClient, err := setup.NewAIClient(opts.cfg)
			if err != nil {
				return err
			}
			client, err := setup.NewGraphClient(opts.cfg, aiClient)
			if err != nil {
				return err
			}

			res, err := client.Process(ctx, string(text), file.ID)
			if err != nil {
				return err
			}
			logger.Debug("[CLI] Extracted document", "document", file.ID, "summary", res.Summary.Message)

			if sessionID != "" {
				if err := save(cmd, opts.cfg, sessionID, res); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "save the result into this session of the graph store")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

// inputFile returns the loader file for the path in args, or for stdin.
func inputFile(args []string, stdin io.Reader) (loader.GraphFile, error) {
	id := util.NewID()
	if len(args) == 0 {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return loader.GraphFile{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return loader.NewGraphTextFile(loader.NewGraphFileParams{
			ID:       id,
			FilePath: "stdin",
			Loader:   loaderio.NewBytesGraphFileLoader(id, content),
		}), nil
	}

	path := args[0]
	params := loader.NewGraphFileParams{ID: id, FilePath: path, Loader: loaderio.NewIOGraphFileLoader()}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		params.Loader = pdf.NewPDFGraphLoader(params.Loader)
		return loader.NewGraphPDFFile(params), nil
	}
	return loader.NewGraphTextFile(params), nil
}

func save(cmd *cobra.Command, cfg setup.Config, sessionID string, res *common.Result) error {
	if !util.IsID(sessionID) {
		return fmt.Errorf("invalid session id %q", sessionID)
	}
	if len(res.Entities) == 0 {
		return nil
	}

	ctx := cmd.Context()
	aiClient, err := setup.NewAIClient(cfg)
	if err != nil {
		return err
	}
	st, err := setup.NewStore(ctx, cfg, aiClient)
	if err != nil {
		return fmt.Errorf("failed to open graph store: %w", err)
	}
	defer st.Close(ctx)

	if err := st.SaveBatch(ctx, common.NewBatch(sessionID, res)); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	logger.Info("Saved graph", "session", sessionID, "store", cfg.GraphStore)
	return nil
}
