package main

import (
	"github.com/OFFIS-RIT/kgraph/backend/internal/setup"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type rootOptions struct {
	cfg setup.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{cfg: setup.ConfigFromEnv()}

	cmd := &cobra.Command{
		Use:          "kgraph",
		Short:        "Extract knowledge graphs from text",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setup.InitLogger(opts.cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfg.RulesFile, "rules", opts.cfg.RulesFile, "YAML file overriding the default rule tables")
	flags.Float64Var(&opts.cfg.MinConfidence, "min-confidence", opts.cfg.MinConfidence, "confidence threshold (0 uses the rules value)")
	flags.StringVar(&opts.cfg.Tagger, "tagger", opts.cfg.Tagger, "tagger backend: lexicon, llm or cloudnl")
	flags.BoolVar(&opts.cfg.Debug, "debug", opts.cfg.Debug, "enable debug logging")
	flags.StringVar(&opts.cfg.LogFile, "log-file", opts.cfg.LogFile, "also write logs to this file")

	cmd.AddCommand(
		newExtractCmd(opts),
		newRulesCmd(opts),
		newVersionCmd(),
	)
	return cmd
}
