package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/pattern"
)

func splitNameArg(fullName string) (first, middle, last string, err error) {
	first, middle, last, err = model.SplitName(fullName)
	if err != nil {
		return "", "", "", eris.Wrapf(err, "name %q", fullName)
	}
	return first, middle, last, nil
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect the template catalog and learned domain patterns",
}

// -- patterns catalog --

var patternsCatalogCmd = &cobra.Command{
	Use:   "catalog [full-name] [domain]",
	Short: "List the candidate templates in test order",
	Long:  "Prints the ordered template catalog, rendered for the given name and domain (or a sample name when omitted).",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		first, middle, last := "jane", "q", "doe"
		domain := "example.com"
		if len(args) > 0 {
			var err error
			first, middle, last, err = splitNameArg(args[0])
			if err != nil {
				return err
			}
		}
		if len(args) > 1 {
			domain = normalizeDomain(args[1])
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tTEMPLATE\tEXAMPLE")
		for _, cand := range pattern.Generate(first, middle, last, domain) {
			fmt.Fprintf(w, "%d\t%s\t%s\n", cand.Index, cand.Template, cand.Email)
		}
		return w.Flush()
	},
}

// -- patterns show --

var patternsShowCmd = &cobra.Command{
	Use:   "show <domain>",
	Short: "Show the learned pattern for a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		domain := normalizeDomain(args[0])

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		dp, err := st.GetDomainPattern(ctx, domain)
		if err != nil {
			return err
		}
		if dp == nil {
			fmt.Printf("No pattern learned for %s yet.\n", domain)
			return nil
		}

		fmt.Printf("%s\t%s (catalog #%d)\tlearned %s\n",
			dp.Domain, dp.Pattern, dp.PatternIndex, dp.LearnedAt.Format("2006-01-02"))
		return nil
	},
}

// -- patterns apply --

var patternsApplyCmd = &cobra.Command{
	Use:   "apply <template-or-index> <full-name> <domain>",
	Short: "Render a template for a name without verifying",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl := args[0]
		if idx, err := strconv.Atoi(tmpl); err == nil {
			t, ok := pattern.TemplateAt(idx)
			if !ok {
				return eris.Errorf("catalog index %d out of range", idx)
			}
			tmpl = t
		}

		first, middle, last, err := splitNameArg(args[1])
		if err != nil {
			return err
		}

		email, ok := pattern.Apply(tmpl, first, middle, last, normalizeDomain(args[2]))
		if !ok {
			return eris.Errorf("template %q needs name parts this name lacks", tmpl)
		}
		fmt.Println(email)
		return nil
	},
}

func init() {
	patternsCmd.AddCommand(patternsCatalogCmd)
	patternsCmd.AddCommand(patternsShowCmd)
	patternsCmd.AddCommand(patternsApplyCmd)
	rootCmd.AddCommand(patternsCmd)
}
