package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <email>...",
	Short: "Verify one or more email addresses",
	Long:  "Runs each address through the verification oracle and prints the verdict. Without a verifier key every address is accepted fail-open.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		asJSON, _ := cmd.Flags().GetBool("json")

		oracle := initOracle()
		for _, email := range args {
			vr := oracle.Verify(ctx, email)
			if asJSON {
				if err := printJSON(vr); err != nil {
					return err
				}
				continue
			}
			verdict := "REJECT"
			if vr.Valid {
				verdict = "ACCEPT"
			}
			fmt.Printf("%-8s %-40s quality=%s result=%s", verdict, vr.Email, vr.Quality, vr.Disposition)
			if vr.FailOpen {
				fmt.Printf(" (fail-open: %s)", vr.Reason)
			}
			fmt.Println()
		}

		stats := oracle.Stats()
		if stats.CreditsUsed > 0 {
			fmt.Printf("Used %d credits across %d calls\n", stats.CreditsUsed, stats.Calls)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().Bool("json", false, "print raw verification results as JSON")
	rootCmd.AddCommand(verifyCmd)
}
