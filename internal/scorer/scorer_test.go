package scorer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestDiscoveryScore(t *testing.T) {
	s := NewDiscoveryScorer(DefaultTables())

	tests := []struct {
		name  string
		title string
		want  int
	}{
		{"owner", "Owner", 95},
		{"founder", "Co-Founder & CEO", 95},
		{"managing director", "Managing Director", 95},
		{"director", "Operations Director", 85},
		{"manager", "Account Manager", 75},
		{"head of", "Head of Sales", 75},
		{"specialist", "Marketing Specialist", 55},
		{"analyst", "Data Analyst", 55},
		{"assistant", "Executive Assistant", 35},
		{"officer", "Compliance Officer", 35},
		{"freelance", "Freelance Designer", 20},
		{"intern", "Summer Intern", 10},
		{"student", "University Student", 10},
		{"unclassified", "Wizard of Light Bulb Moments", 30},
		{"empty", "", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tt.title))
		})
	}
}

func TestDiscoveryFirstMatchWins(t *testing.T) {
	s := NewDiscoveryScorer(DefaultTables())
	// "Owner" outranks "Manager" even when both keywords appear.
	assert.Equal(t, 95, s.Score("Owner and General Manager"))
}

func TestRelevanceScore(t *testing.T) {
	s := NewRelevanceScorer(DefaultTables())

	tests := []struct {
		title string
		want  int
	}{
		{"Facilities Manager", 100},
		{"Health & Safety Officer", 100},
		{"Operations Director", 85},
		{"Managing Director", 70},
		{"Project Coordinator", 50},
		{"Office Administrator", 40},
		{"Violinist", 0},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, reason := s.Score(tt.title)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestSelectTargets(t *testing.T) {
	s := NewRelevanceScorer(DefaultTables())

	contacts := []*model.Contact{
		{FullName: "A B", JobTitle: "Facilities Manager", Email: "a@x.com", Status: model.StatusVerified},
		{FullName: "C D", JobTitle: "Intern", Email: "c@x.com", Status: model.StatusVerified},
		{FullName: "E F", JobTitle: "Operations Director", Email: "e@x.com", Status: model.StatusVerified},
		{FullName: "G H", JobTitle: "Safety Lead"}, // no verified email
	}

	targets := s.SelectTargets(contacts, 2, 50)
	require.Len(t, targets, 2)
	assert.Equal(t, "A B", targets[0].FullName)
	assert.Equal(t, "E F", targets[1].FullName)

	// Unqualified contacts were still annotated.
	assert.Equal(t, 100, contacts[3].RelevanceScore)
}

func TestSelectTargetsMinScore(t *testing.T) {
	s := NewRelevanceScorer(DefaultTables())
	contacts := []*model.Contact{
		{FullName: "C D", JobTitle: "Violinist", Email: "c@x.com", Status: model.StatusVerified},
	}
	assert.Empty(t, s.SelectTargets(contacts, 5, 40))
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	content := `
discovery:
  - keywords: ["queen"]
    score: 99
discovery_default: 15
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	s := NewDiscoveryScorer(tables)
	assert.Equal(t, 99, s.Score("Queen of Hearts"))
	assert.Equal(t, 15, s.Score("Unmatched Title"))

	// Relevance section absent: defaults apply.
	r := NewRelevanceScorer(tables)
	got, _ := r.Score("Facilities Manager")
	assert.Equal(t, 100, got)
}

func TestLoadTablesMissingFile(t *testing.T) {
	_, err := LoadTables("/nonexistent/tables.yaml")
	assert.Error(t, err)
}
