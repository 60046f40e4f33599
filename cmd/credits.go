package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/cost"
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Show the remaining verification credit balance",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client := initVerifier()
		if client == nil {
			return eris.New("verifier key is required (OUTREACH_VERIFIER_KEY)")
		}

		credits, err := client.Credits(cmd.Context())
		if err != nil {
			return err
		}

		calc := cost.NewCalculator(cfg.Pricing)
		fmt.Printf("Credits remaining: %d (≈ $%.2f)\n", credits, calc.Verification(credits))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(creditsCmd)
}
