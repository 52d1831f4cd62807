package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bwilder0/folktexts/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "folktexts-agg",
	Short: "Aggregate folktexts benchmark results",
	Long:  "Collects benchmark result files from a results tree, scores their prediction files, and writes one timestamped table of all runs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyPathOverrides(cmd, c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("results-dir", "", "root directory scanned for result files (overrides config)")
	f.String("data-dir", "", "directory searched for prediction files (overrides config)")
}

// applyPathOverrides copies explicitly set path flags onto the loaded config.
func applyPathOverrides(cmd *cobra.Command, c *config.Config) {
	if v, _ := cmd.Flags().GetString("results-dir"); v != "" {
		c.Paths.ResultsDir = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		c.Paths.DataDir = v
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
