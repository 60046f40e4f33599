package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/cost"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/staff"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <company-linkedin-url>",
	Short: "Scrape a company's staff list via Apify",
	Long:  "Starts the configured Apify actor against a company LinkedIn page, waits for completion, filters out non-person entries, and writes the candidates as a CSV staff file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		company, _ := cmd.Flags().GetString("company")
		maxItems, _ := cmd.Flags().GetInt("max")
		out, _ := cmd.Flags().GetString("out")

		client, err := initApify()
		if err != nil {
			return err
		}

		input := map[string]any{
			"profileUrls": []string{args[0]},
			"maxItems":    maxItems,
		}
		run, err := client.StartRun(ctx, cfg.Apify.ActorID, input)
		if err != nil {
			return err
		}
		zap.L().Info("actor run started",
			zap.String("run_id", run.ID),
			zap.String("actor", run.ActorID),
		)

		run, err = client.WaitForRun(ctx, run.ID)
		if err != nil {
			return err
		}

		var raw []staff.Candidate
		if err := client.DatasetItems(ctx, run.DefaultDatasetID, &raw); err != nil {
			return err
		}

		contacts, dropped := staff.Intake(company, raw)
		calc := cost.NewCalculator(cfg.Pricing)
		fmt.Printf("Scraped %d items: %d people, %d dropped (est. $%.4f)\n",
			len(raw), len(contacts), dropped, calc.ApifyRun(len(raw)))

		if out == "" {
			for _, c := range contacts {
				fmt.Printf("  %-25s %s\n", c.FullName, c.JobTitle)
			}
			return nil
		}
		return writeStaffCSV(out, contacts)
	},
}

// writeStaffCSV writes contacts in the column layout LoadFile reads back.
func writeStaffCSV(path string, contacts []*model.Contact) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "scrape: create output")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Full Name", "Job Title", "Email", "LinkedIn"}); err != nil {
		return eris.Wrap(err, "scrape: write header")
	}
	for _, c := range contacts {
		if err := w.Write([]string{c.FullName, c.JobTitle, c.Email, c.LinkedInURL}); err != nil {
			return eris.Wrap(err, "scrape: write row")
		}
	}
	return nil
}

func init() {
	scrapeCmd.Flags().String("company", "", "company name for the person filter")
	scrapeCmd.Flags().Int("max", 100, "max profiles to scrape")
	scrapeCmd.Flags().String("out", "", "write candidates to a CSV staff file")
	rootCmd.AddCommand(scrapeCmd)
}
