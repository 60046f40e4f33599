// Package pattern generates, extracts, and applies corporate email naming
// templates. A template is a local-part format over the placeholders {first},
// {last}, {middle}, {f}, {l}, {m}, and {fl} (first+last initials), e.g.
// "{f}.{last}".
package pattern

import "strings"

// catalog is the fixed, priority-ordered list of local-part templates tested
// against a domain. Most common conventions come first so exhaustive testing
// hits the likely answer with the fewest verification calls. Later entries
// collapse with earlier ones after substitution for most names; Generate
// deduplicates the produced addresses.
var catalog = []string{
	"{first}",
	"{last}",
	"{f}{last}",
	"{first}.{last}",
	"{first}_{last}",
	"{first}-{last}",
	"{f}.{last}",
	"{last}.{first}",
	"{last}_{first}",
	"{last}-{first}",
	"{last}{first}",
	"{f}_{last}",
	"{f}-{last}",
	"{first}.{l}",
	"{first}_{l}",
	"{first}-{l}",
	"{first}{l}",
	"{fl}{l}",
	"{first}{m}{last}",
	"{first}{last}",
	"{last}{f}",
	"{fl}",
	"{first}.{middle}.{last}",
}

// Catalog returns a copy of the ordered template list.
func Catalog() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// Size returns the number of templates in the catalog.
func Size() int {
	return len(catalog)
}

// TemplateAt returns the template at a 1-based catalog index.
func TemplateAt(index int) (string, bool) {
	if index < 1 || index > len(catalog) {
		return "", false
	}
	return catalog[index-1], true
}

// nameParts holds the normalized substitution values for one person.
type nameParts struct {
	first  string
	middle string
	last   string
	f      string
	m      string
	l      string
	fl     string
}

// newNameParts lowercases and trims the name components and derives initials.
// Non-ASCII components are lowercased as-is; no transliteration is attempted.
func newNameParts(first, middle, last string) nameParts {
	p := nameParts{
		first:  strings.ToLower(strings.TrimSpace(first)),
		middle: strings.ToLower(strings.TrimSpace(middle)),
		last:   strings.ToLower(strings.TrimSpace(last)),
	}
	p.f = initial(p.first)
	p.m = initial(p.middle)
	p.l = initial(p.last)
	p.fl = p.f + p.l
	return p
}

func initial(s string) string {
	if s == "" {
		return ""
	}
	return string([]rune(s)[:1])
}

// expand substitutes the name parts into a template. It reports false when a
// placeholder cannot be filled (the substituted value is empty) or the result
// is empty; a partially filled template is never returned.
func expand(template string, p nameParts) (string, bool) {
	replacements := []struct {
		placeholder string
		value       string
	}{
		{"{first}", p.first},
		{"{middle}", p.middle},
		{"{last}", p.last},
		{"{fl}", p.fl},
		{"{f}", p.f},
		{"{m}", p.m},
		{"{l}", p.l},
	}

	local := template
	for _, r := range replacements {
		if !strings.Contains(local, r.placeholder) {
			continue
		}
		if r.value == "" {
			return "", false
		}
		local = strings.ReplaceAll(local, r.placeholder, r.value)
	}

	if local == "" || strings.ContainsAny(local, "{}") {
		return "", false
	}
	return local, true
}
