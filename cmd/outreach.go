package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/outreach-cli/internal/cost"
	"github.com/sells-group/outreach-cli/internal/outreach"
	"github.com/sells-group/outreach-cli/internal/scorer"
	"github.com/sells-group/outreach-cli/pkg/claude"
)

var outreachCmd = &cobra.Command{
	Use:   "outreach <run-id>",
	Short: "Draft (and optionally send) cold emails for a run's resolved contacts",
	Long:  "Selects the most outreach-relevant resolved contacts from a discovery run, drafts a personalised email for each, and optionally delivers them over SMTP.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		identityPath, _ := cmd.Flags().GetString("identity")
		companyName, _ := cmd.Flags().GetString("company")
		companyURL, _ := cmd.Flags().GetString("url")
		send, _ := cmd.Flags().GetBool("send")
		delay, _ := cmd.Flags().GetDuration("delay")
		hooks, _ := cmd.Flags().GetStringSlice("hook")

		identity, err := loadIdentity(identityPath)
		if err != nil {
			return err
		}
		if send {
			if err := cfg.Validate("outreach"); err != nil {
				return err
			}
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
		if companyName == "" {
			companyName = strings.SplitN(run.Domain, ".", 2)[0]
		}
		if companyURL == "" {
			companyURL = "https://" + run.Domain
		}

		tables, err := initTables()
		if err != nil {
			return err
		}
		targets := scorer.NewRelevanceScorer(tables).SelectTargets(
			run.ContactRefs(), cfg.Discovery.MaxTargets, cfg.Discovery.MinRelevance)
		if len(targets) == 0 {
			fmt.Fprintln(os.Stderr, "No resolved contacts meet the relevance threshold.")
			return nil
		}

		var llm claude.Client
		if cfg.Anthropic.Key != "" {
			llm = claude.NewClient(cfg.Anthropic.Key)
		}
		drafter := outreach.NewDrafter(llm, cfg.Anthropic.Model, identity)
		sender := outreach.NewSender(outreach.SMTPSettings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})

		company := outreach.Company{Name: companyName, URL: companyURL, Hooks: hooks}
		for i, c := range targets {
			draft, err := drafter.Draft(ctx, c, company)
			if err != nil {
				return err
			}

			fmt.Printf("--- %s <%s>\n", c.FullName, c.Email)
			fmt.Printf("Subject: %s\n\n%s\n\n", draft.Subject, draft.Body)

			if !send {
				continue
			}
			if i > 0 && delay > 0 {
				time.Sleep(delay)
			}
			if err := sender.Send(draft); err != nil {
				zap.L().Error("send failed",
					zap.String("to", c.Email),
					zap.Error(err),
				)
			}
		}

		usage := drafter.Usage()
		if usage.InputTokens > 0 || usage.OutputTokens > 0 {
			calc := cost.NewCalculator(cfg.Pricing)
			spend := calc.Claude(cfg.Anthropic.Model, false,
				int(usage.InputTokens), int(usage.OutputTokens),
				int(usage.CacheCreationInputTokens), int(usage.CacheReadInputTokens))
			fmt.Printf("Drafted %d emails: %d input / %d output tokens (est. $%.4f)\n",
				len(targets), usage.InputTokens, usage.OutputTokens, spend)
		}
		return nil
	},
}

// loadIdentity reads the sender identity from a YAML file.
func loadIdentity(path string) (outreach.Identity, error) {
	if path == "" {
		return outreach.Identity{}, eris.New("--identity file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return outreach.Identity{}, eris.Wrap(err, "read identity file")
	}
	var id outreach.Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return outreach.Identity{}, eris.Wrap(err, "parse identity file")
	}
	if id.Name == "" || id.Offer == "" {
		return outreach.Identity{}, eris.New("identity file needs at least name and offer")
	}
	return id, nil
}

func init() {
	outreachCmd.Flags().String("identity", "", "YAML file with sender name, title, signature, and offer")
	outreachCmd.Flags().String("company", "", "target company name (default: domain label)")
	outreachCmd.Flags().String("url", "", "target company website (default: https://<domain>)")
	outreachCmd.Flags().StringSlice("hook", nil, "personalisation hook, repeatable")
	outreachCmd.Flags().Bool("send", false, "deliver drafts over SMTP instead of just printing them")
	outreachCmd.Flags().Duration("delay", 30*time.Second, "pause between sends to stay under provider limits")
	rootCmd.AddCommand(outreachCmd)
}
