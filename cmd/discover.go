package main

import (
	"fmt"
	"io"
	"regexp"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bwilder0/folktexts/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List result files under the results directory",
	Long:  "Walks the results directory and prints every matching result file with its group key and run hash.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pattern, err := regexp.Compile(cfg.Analysis.FilePattern)
		if err != nil {
			return eris.Wrap(err, "discover: compile file pattern")
		}
		return listResultFiles(cmd.OutOrStdout(), cfg.Paths.ResultsDir, pattern)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func listResultFiles(w io.Writer, root string, pattern *regexp.Regexp) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tHASH\tPATH")

	n := 0
	for path, err := range discovery.Find(root, pattern) {
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", discovery.GroupKey(path), discovery.RunHash(path, pattern), path)
		n++
	}
	if n == 0 {
		return eris.Wrapf(discovery.ErrNoResults, "discover: root %s", root)
	}
	return tw.Flush()
}
