// Package scorer ranks contacts by job title for two distinct purposes:
// discovery priority (who to burn verification credits on first when no
// naming pattern is known yet) and outreach relevance (who is worth
// contacting at all). The two tables optimize for different objectives and
// are configured independently; merging them would bias pattern discovery
// toward the outreach cohort instead of toward people likely to hold a
// personal mailbox.
package scorer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DiscoveryRule maps title keywords to a pattern-test priority score.
// Rules are evaluated in order; the first rule with a matching keyword wins.
type DiscoveryRule struct {
	Keywords []string `yaml:"keywords"`
	Score    int      `yaml:"score"`
}

// RelevanceRule maps title keywords to an outreach relevance score with a
// human-readable rationale. The highest-scoring matching rule wins.
type RelevanceRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
	Score    int      `yaml:"score"`
	Reason   string   `yaml:"reason"`
}

// Tables bundles both scoring tables for file-based override.
type Tables struct {
	Discovery        []DiscoveryRule `yaml:"discovery"`
	DiscoveryDefault int             `yaml:"discovery_default"`
	Relevance        []RelevanceRule `yaml:"relevance"`
}

// DefaultTables returns the built-in scoring tables.
func DefaultTables() Tables {
	return Tables{
		Discovery:        defaultDiscoveryRules(),
		DiscoveryDefault: neutralDiscoveryScore,
		Relevance:        defaultRelevanceRules(),
	}
}

// LoadTables reads scoring table overrides from a yaml file. Sections left
// empty in the file fall back to the built-in defaults.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, eris.Wrapf(err, "scorer: read tables %s", path)
	}

	t := Tables{}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, eris.Wrapf(err, "scorer: parse tables %s", path)
	}

	if len(t.Discovery) == 0 {
		t.Discovery = defaultDiscoveryRules()
	}
	if t.DiscoveryDefault == 0 {
		t.DiscoveryDefault = neutralDiscoveryScore
	}
	if len(t.Relevance) == 0 {
		t.Relevance = defaultRelevanceRules()
	}
	return t, nil
}
