// Package staff turns raw scraped people records into contacts ready for
// email discovery. Scrape output is noisy: it mixes real employees with
// company accounts, department pages, and duplicates.
package staff

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Candidate is one raw person record from a scrape source.
type Candidate struct {
	FullName    string `json:"fullName"`
	JobTitle    string `json:"position,omitempty"`
	LinkedInURL string `json:"profileUrl,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Organizational words that mark a record as a non-person account.
var orgWords = []string{
	"marketing", "sales", "support", "team", "dept", "department",
}

// Names that are whole-string generic, never a person.
var genericNames = map[string]bool{
	"company": true, "business": true, "ltd": true, "limited": true,
	"inc": true, "corp": true, "team": true, "department": true,
}

// Intake filters and deduplicates raw candidates for one company, returning
// contacts ready for discovery. companyName is used to drop the company's
// own account masquerading as a person. Records that cannot form a contact
// are counted, not errored.
func Intake(companyName string, raw []Candidate) ([]*model.Contact, int) {
	companyKey := normalizeCompany(companyName)

	var contacts []*model.Contact
	seen := make(map[string]*model.Contact)
	skipped := 0

	for _, cand := range raw {
		name := strings.Join(strings.Fields(cand.FullName), " ")
		if name == "" || !isPerson(name, companyKey) {
			skipped++
			continue
		}

		key := strings.ToLower(name)
		if prev, ok := seen[key]; ok {
			// Duplicate; keep the first record but salvage an address or
			// title the earlier one lacked.
			if prev.Email == "" && cand.Email != "" {
				prev.Email = cand.Email
				prev.EmailSource = model.EmailSourceScrapeProvided
			}
			if prev.JobTitle == "" {
				prev.JobTitle = cand.JobTitle
			}
			skipped++
			continue
		}

		c, err := model.NewContact(name, cand.JobTitle)
		if err != nil {
			zap.L().Debug("dropping unprocessable candidate", zap.String("name", name))
			skipped++
			continue
		}
		c.LinkedInURL = cand.LinkedInURL
		if cand.Email != "" {
			c.Email = cand.Email
			c.EmailSource = model.EmailSourceScrapeProvided
		}

		seen[key] = c
		contacts = append(contacts, c)
	}

	return contacts, skipped
}

// isPerson applies the heuristic company-account filter.
func isPerson(name, companyKey string) bool {
	lower := strings.ToLower(name)

	if genericNames[lower] {
		return false
	}
	if companyKey != "" {
		if lower == companyKey || strings.ReplaceAll(lower, " ", "") == strings.ReplaceAll(companyKey, " ", "") {
			return false
		}
	}
	if len(strings.Fields(name)) == 1 {
		return false
	}
	for _, w := range orgWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}

// normalizeCompany lowercases the company name and strips common domain
// suffixes so "Acme.com" matches a record named "Acme".
func normalizeCompany(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range []string{".com", ".co.uk", ".ie", ".net", ".org"} {
		lower = strings.ReplaceAll(lower, suffix, "")
	}
	return lower
}
