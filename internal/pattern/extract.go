package pattern

import "strings"

// Extract infers which catalog template produced a known-good address. It
// evaluates every template for this specific name and requires an exact match
// against the address's local part; a partial or fuzzy match never yields a
// template. A wrong inferred pattern would propagate to every remaining
// contact in the batch, so a miss here (ok=false) is preferred over a guess.
// Index is the 1-based catalog position of the matched template.
func Extract(email, first, last string) (template string, index int, ok bool) {
	local, _, found := strings.Cut(strings.ToLower(email), "@")
	if !found || local == "" {
		return "", 0, false
	}

	p := newNameParts(first, "", last)
	if p.first == "" || p.last == "" {
		return "", 0, false
	}

	for i, tmpl := range catalog {
		candidate, filled := expand(tmpl, p)
		if filled && candidate == local {
			return tmpl, i + 1, true
		}
	}
	return "", 0, false
}

// Apply substitutes a learned template for a new name and domain. It reports
// false when the template needs a part this name does not have (e.g. a
// {middle} placeholder with no middle name) rather than producing a malformed
// address.
func Apply(template, first, middle, last, domain string) (string, bool) {
	if domain == "" {
		return "", false
	}
	p := newNameParts(first, middle, last)
	local, ok := expand(template, p)
	if !ok {
		return "", false
	}
	return local + "@" + domain, true
}
