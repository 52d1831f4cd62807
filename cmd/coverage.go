package main

import (
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bwilder0/folktexts/internal/pipeline"
	"github.com/bwilder0/folktexts/internal/table"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Report (model, task) pairs missing benchmark combinations",
	Long: `Build and deduplicate the results table without scoring or export,
then print which (model, task) pairs have fewer feature-count and
prompting-mode combinations than the best-covered pair, as YAML.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tbl, _, err := pipeline.BuildTable(ctx, cfg)
		if err != nil {
			return err
		}
		return writeCoverage(cmd.OutOrStdout(), table.Coverage(tbl))
	},
}

func init() {
	rootCmd.AddCommand(coverageCmd)
}

func writeCoverage(w io.Writer, report table.CoverageReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return eris.Wrap(err, "coverage: encode report")
	}
	return enc.Close()
}
