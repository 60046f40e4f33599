package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/export"
	"github.com/sells-group/outreach-cli/pkg/notionsink"
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a run's contacts to CSV, XLSX, or Notion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		out, _ := cmd.Flags().GetString("out")
		toNotion, _ := cmd.Flags().GetBool("notion")
		if out == "" && !toNotion {
			return eris.New("either --out or --notion is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		if out != "" {
			switch strings.ToLower(filepath.Ext(out)) {
			case ".xlsx":
				err = export.WriteXLSX(run, out)
			case ".csv":
				err = export.WriteCSV(run, out)
			default:
				return eris.Errorf("unsupported output extension %q (want .csv or .xlsx)", filepath.Ext(out))
			}
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %d contacts to %s\n", len(run.Contacts), out)
		}

		if toNotion {
			if cfg.Notion.Token == "" || cfg.Notion.ContactDB == "" {
				return eris.New("notion token and contact_db are required for --notion")
			}
			sink := notionsink.NewSink(notionsink.NewClient(cfg.Notion.Token), cfg.Notion.ContactDB)
			pushed, err := sink.PushContacts(ctx, run.Domain, run.ContactRefs())
			if err != nil {
				return err
			}
			fmt.Printf("Pushed %d resolved contacts to Notion\n", pushed)
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "output file path (.csv or .xlsx)")
	exportCmd.Flags().Bool("notion", false, "upsert resolved contacts into the Notion contact database")
	rootCmd.AddCommand(exportCmd)
}
