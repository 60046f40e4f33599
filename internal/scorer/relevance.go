package scorer

import (
	"sort"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

func defaultRelevanceRules() []RelevanceRule {
	return []RelevanceRule{
		{
			Category: "facilities",
			Keywords: []string{"facilities", "facility", "building", "maintenance", "estate", "property"},
			Score:    100,
			Reason:   "facilities management carries direct responsibility for building safety systems",
		},
		{
			Category: "safety",
			Keywords: []string{"safety", "health", "hse", "risk", "compliance", "security", "fire"},
			Score:    100,
			Reason:   "safety role with direct protection responsibility",
		},
		{
			Category: "operations",
			Keywords: []string{"operations", "operational", "ops", "site manager", "plant"},
			Score:    85,
			Reason:   "operations management oversees safety procedures and equipment",
		},
		{
			Category: "management",
			Keywords: []string{"manager", "director", "head", "chief", "md"},
			Score:    70,
			Reason:   "management role with budget authority for safety investments",
		},
		{
			Category: "owner",
			Keywords: []string{"owner", "founder", "ceo", "president", "managing director"},
			Score:    70,
			Reason:   "business owner with ultimate compliance responsibility",
		},
		{
			Category: "project",
			Keywords: []string{"project", "coordinator", "specialist", "lead"},
			Score:    50,
			Reason:   "project role that may handle compliance work",
		},
		{
			Category: "admin",
			Keywords: []string{"admin", "office", "business", "assistant"},
			Score:    40,
			Reason:   "administrative role that may handle building compliance",
		},
	}
}

// RelevanceScorer ranks contacts by how worthwhile they are to contact for
// this deployment's outreach purpose.
type RelevanceScorer struct {
	rules []RelevanceRule
}

// NewRelevanceScorer builds a scorer from the given tables.
func NewRelevanceScorer(t Tables) *RelevanceScorer {
	return &RelevanceScorer{rules: t.Relevance}
}

// Score returns the relevance score and the winning rule's reason for a job
// title. The highest-scoring matching rule wins; titles matching nothing
// score zero.
func (s *RelevanceScorer) Score(title string) (int, string) {
	lower := strings.ToLower(title)

	best := 0
	reason := "general contact"
	for _, rule := range s.rules {
		if rule.Score <= best {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				best = rule.Score
				reason = rule.Reason
				break
			}
		}
	}
	return best, reason
}

// SelectTargets picks the top contacts worth reaching out to: only contacts
// with a verified address qualify, each must meet minScore, and at most
// maxTargets are returned, highest relevance first. The input slice is
// annotated in place with relevance scores.
func (s *RelevanceScorer) SelectTargets(contacts []*model.Contact, maxTargets, minScore int) []*model.Contact {
	qualified := make([]*model.Contact, 0, len(contacts))
	for _, c := range contacts {
		score, _ := s.Score(c.JobTitle)
		c.RelevanceScore = score
		if !c.Resolved() || score < minScore {
			continue
		}
		qualified = append(qualified, c)
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].RelevanceScore > qualified[j].RelevanceScore
	})

	if maxTargets > 0 && len(qualified) > maxTargets {
		qualified = qualified[:maxTargets]
	}
	return qualified
}
