package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score <job-title>...",
	Short: "Score job titles for pattern-test priority and outreach relevance",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := initTables()
		if err != nil {
			return err
		}
		ds := scorer.NewDiscoveryScorer(tables)
		rs := scorer.NewRelevanceScorer(tables)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TITLE\tPRIORITY\tRELEVANCE\tMATCHED")
		for _, title := range args {
			rel, matched := rs.Score(title)
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", title, ds.Score(title), rel, matched)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
