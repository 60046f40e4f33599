package pattern

// Candidate pairs a generated address with the catalog template that produced
// it. Index is the 1-based position of the template in the catalog.
type Candidate struct {
	Email    string
	Template string
	Index    int
}

// Generate expands a name into every catalog template for the given domain.
// Output is deterministic, deduplicated, and preserves catalog order; the
// first template to produce a given address wins. Returns nil when either
// first or last is empty after trimming.
func Generate(first, middle, last, domain string) []Candidate {
	p := newNameParts(first, middle, last)
	if p.first == "" || p.last == "" || domain == "" {
		return nil
	}

	seen := make(map[string]struct{}, len(catalog))
	out := make([]Candidate, 0, len(catalog))
	for i, tmpl := range catalog {
		local, ok := expand(tmpl, p)
		if !ok {
			continue
		}
		email := local + "@" + domain
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, Candidate{Email: email, Template: tmpl, Index: i + 1})
	}
	return out
}

// Emails is a convenience wrapper around Generate returning only the
// addresses, in catalog order.
func Emails(first, middle, last, domain string) []string {
	cands := Generate(first, middle, last, domain)
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Email
	}
	return out
}
