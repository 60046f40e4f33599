package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/cost"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/staff"
	"github.com/sells-group/outreach-cli/internal/store"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <domain>",
	Short: "Resolve email addresses for a company's staff",
	Long:  "Loads a staff list, infers the company's email naming convention by verifying candidate addresses, and resolves an address per contact.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		domain := normalizeDomain(args[0])

		input, _ := cmd.Flags().GetString("input")
		company, _ := cmd.Flags().GetString("company")
		if input == "" {
			return eris.New("--input staff file is required")
		}
		if company == "" {
			company = strings.SplitN(domain, ".", 2)[0]
		}

		cands, err := staff.LoadFile(input)
		if err != nil {
			return err
		}
		contacts, dropped := staff.Intake(company, cands)
		zap.L().Info("staff list loaded",
			zap.String("domain", domain),
			zap.Int("contacts", len(contacts)),
			zap.Int("dropped", dropped),
		)

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := runDomain(ctx, st, domain, contacts)
		if err != nil {
			return err
		}

		printRunSummary(run)
		return nil
	},
}

// runDomain executes one persisted discovery run: create the run record,
// reuse any stored pattern, run the engine, record the learned pattern, and
// save the result.
func runDomain(ctx context.Context, st store.Store, domain string, contacts []*model.Contact) (*model.DiscoveryRun, error) {
	run, err := st.CreateRun(ctx, domain)
	if err != nil {
		return nil, err
	}

	oracle := initOracle()
	eng, err := initEngine(oracle)
	if err != nil {
		return nil, err
	}

	stored, err := st.GetDomainPattern(ctx, domain)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		eng = eng.WithKnownPattern(stored.Pattern, stored.PatternIndex)
	}

	res := eng.Run(ctx, domain, contacts)

	if stored == nil && res.Pattern != "" {
		if err := st.SaveDomainPattern(ctx, domain, res.Pattern, res.PatternIndex); err != nil {
			zap.L().Warn("failed to save domain pattern", zap.Error(err))
		}
	}

	stats := oracle.Stats()
	run.Status = model.RunStatusComplete
	run.Pattern = res.Pattern
	run.PatternIndex = res.PatternIndex
	run.CandidateCount = len(contacts)
	run.ResolvedCount = res.ResolvedCount
	run.VerifyCalls = stats.Calls
	run.CreditsUsed = stats.CreditsUsed
	run.UpdatedAt = time.Now().UTC()
	run.Contacts = make([]model.Contact, 0, len(res.Contacts))
	for _, c := range res.Contacts {
		run.Contacts = append(run.Contacts, *c)
	}

	if err := st.SaveRunResult(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func printRunSummary(run *model.DiscoveryRun) {
	calc := cost.NewCalculator(cfg.Pricing)
	fmt.Printf("Run %s (%s)\n", run.ID, run.Domain)
	if run.Pattern != "" {
		fmt.Printf("  Pattern:   %s (catalog #%d)\n", run.Pattern, run.PatternIndex)
	} else {
		fmt.Println("  Pattern:   none found")
	}
	fmt.Printf("  Resolved:  %d/%d contacts\n", run.ResolvedCount, run.CandidateCount)
	fmt.Printf("  Verifier:  %d calls, %d credits ($%.4f)\n",
		run.VerifyCalls, run.CreditsUsed, calc.Verification(run.CreditsUsed))

	for i := range run.Contacts {
		c := &run.Contacts[i]
		if !c.Resolved() {
			continue
		}
		fmt.Printf("  %-25s %-35s %s\n", c.FullName, c.Email, c.EmailSource)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// normalizeDomain strips scheme and path from a domain argument.
func normalizeDomain(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func init() {
	discoverCmd.Flags().String("input", "", "staff list file (csv or xlsx)")
	discoverCmd.Flags().String("company", "", "company name for the person filter (default: domain label)")
	rootCmd.AddCommand(discoverCmd)
}
