package main

import (
	"github.com/OFFIS-RIT/kgraph/backend/internal/setup"

	"github.com/spf13/cobra"
)

func newRulesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rule tables as YAML",
		Long: `Rules prints the rule tables the pipeline uses: the defaults merged with
the file given by --rules or RULES_FILE. The output is itself a valid
rules file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := setup.NewRules(opts.cfg.RulesFile)
			if err != nil {
				return err
			}
			if opts.cfg.MinConfidence > 0 {
				r.MinConfidence = opts.cfg.MinConfidence
			}
			out, err := r.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
