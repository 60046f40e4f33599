package scorer

import "strings"

// neutralDiscoveryScore is assigned to titles no rule matches. Unclassified
// titles still deserve a pattern-test attempt before clearly low-value roles,
// so the default sits above intern/contractor tiers rather than at zero.
const neutralDiscoveryScore = 30

func defaultDiscoveryRules() []DiscoveryRule {
	return []DiscoveryRule{
		// Senior leadership: most likely to have a personal corporate mailbox
		// rather than a shared one.
		{Keywords: []string{"owner", "founder", "ceo", "president", "managing director"}, Score: 95},
		{Keywords: []string{"director", "managing"}, Score: 85},
		{Keywords: []string{"manager", "head", "lead", "supervisor"}, Score: 75},
		{Keywords: []string{"specialist", "coordinator", "analyst", "consultant"}, Score: 55},
		{Keywords: []string{"assistant", "support", "associate", "officer", "representative"}, Score: 35},
		{Keywords: []string{"freelance", "contractor", "brand ambassador"}, Score: 20},
		{Keywords: []string{"student", "intern", "graduate", "university"}, Score: 10},
	}
}

// DiscoveryScorer assigns pattern-test priority from a job title.
type DiscoveryScorer struct {
	rules        []DiscoveryRule
	defaultScore int
}

// NewDiscoveryScorer builds a scorer from the given tables.
func NewDiscoveryScorer(t Tables) *DiscoveryScorer {
	return &DiscoveryScorer{rules: t.Discovery, defaultScore: t.DiscoveryDefault}
}

// Score returns a priority in [0, 100] for a job title. Rules are evaluated
// in table order and the first match wins; there is no partial-credit
// blending across categories. Empty titles score the neutral default.
func (s *DiscoveryScorer) Score(title string) int {
	lower := strings.ToLower(title)
	if strings.TrimSpace(lower) == "" {
		return s.defaultScore
	}
	for _, rule := range s.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Score
			}
		}
	}
	return s.defaultScore
}
