package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/staff"
)

var batchCmd = &cobra.Command{
	Use:   "batch <manifest.csv>",
	Short: "Run discovery for many domains concurrently",
	Long:  "Reads a manifest CSV with domain,staff_file[,company] rows and runs discovery for each domain, bounded by batch.max_concurrent_domains.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		jobs, err := loadManifest(args[0])
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Fprintln(os.Stderr, "Manifest is empty.")
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		var resolved, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentDomains)
		for _, job := range jobs {
			g.Go(func() error {
				cands, err := staff.LoadFile(job.staffFile)
				if err != nil {
					failed.Add(1)
					zap.L().Error("batch domain failed",
						zap.String("domain", job.domain),
						zap.Error(err),
					)
					return nil // one bad file never aborts the batch
				}
				contacts, _ := staff.Intake(job.company, cands)

				run, err := runDomain(gctx, st, job.domain, contacts)
				if err != nil {
					failed.Add(1)
					zap.L().Error("batch domain failed",
						zap.String("domain", job.domain),
						zap.Error(err),
					)
					return nil
				}
				resolved.Add(int64(run.ResolvedCount))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("Batch complete: %d domains, %d contacts resolved, %d failed\n",
			len(jobs), resolved.Load(), failed.Load())
		return nil
	},
}

type batchJob struct {
	domain    string
	staffFile string
	company   string
}

func loadManifest(path string) ([]batchJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open manifest")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "batch: read manifest")
	}

	var jobs []batchJob
	for i, row := range rows {
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "domain") {
			continue // optional header row
		}
		if len(row) < 2 {
			return nil, eris.Errorf("batch: manifest row %d needs domain,staff_file", i+1)
		}
		job := batchJob{
			domain:    normalizeDomain(row[0]),
			staffFile: strings.TrimSpace(row[1]),
		}
		if len(row) > 2 {
			job.company = strings.TrimSpace(row[2])
		}
		if job.company == "" {
			job.company = strings.SplitN(job.domain, ".", 2)[0]
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
