// Package discovery orchestrates email resolution for a batch of contacts at
// one domain: it learns the organization's naming convention from the first
// verified address and reuses it for everyone else, falling back to
// exhaustive catalog testing per contact when the convention does not hold.
package discovery

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/pattern"
	"github.com/sells-group/outreach-cli/internal/scorer"
)

// State is the engine's per-domain pattern-learning state.
type State string

const (
	// StateNoPattern means no naming convention has been confirmed yet.
	StateNoPattern State = "no_pattern"
	// StatePatternLearned means one verified address yielded a template that
	// is reused for the rest of the batch.
	StatePatternLearned State = "pattern_learned"
	// StateExhausted means the top-priority cohort was tested without a hit;
	// no shared convention exists and each remaining contact bears its own
	// full verification cost.
	StateExhausted State = "exhausted"
)

// defaultMaxExhaustive caps how many top-priority contacts receive a full
// catalog scan while no pattern is known. Each scan can cost a whole
// catalog's worth of verification credits.
const defaultMaxExhaustive = 5

// Oracle is the deliverability check consumed by the engine.
type Oracle interface {
	Verify(ctx context.Context, email string) model.VerificationResult
}

// Result is the outcome of one per-domain run.
type Result struct {
	Domain        string           `json:"domain"`
	State         State            `json:"state"`
	Pattern       string           `json:"pattern,omitempty"`
	PatternIndex  int              `json:"pattern_index,omitempty"`
	LearnedFrom   string           `json:"learned_from,omitempty"`
	Contacts      []*model.Contact `json:"contacts"`
	SkippedCount  int              `json:"skipped_count"`
	ResolvedCount int              `json:"resolved_count"`
}

// Engine resolves email addresses for one domain at a time. It holds no
// cross-domain state: one organization's naming convention never informs
// another's, so callers construct a fresh run per domain (the engine itself
// is stateless between Run calls).
type Engine struct {
	oracle        Oracle
	scorer        *scorer.DiscoveryScorer
	maxExhaustive int
	knownPattern  string
	knownIndex    int
}

// NewEngine creates a discovery engine.
func NewEngine(oracle Oracle, ds *scorer.DiscoveryScorer) *Engine {
	return &Engine{
		oracle:        oracle,
		scorer:        ds,
		maxExhaustive: defaultMaxExhaustive,
	}
}

// WithMaxExhaustive overrides the exhaustive-testing cap.
func (e *Engine) WithMaxExhaustive(n int) *Engine {
	if n > 0 {
		e.maxExhaustive = n
	}
	return e
}

// WithKnownPattern seeds the run with a previously learned template, skipping
// exhaustive testing entirely. The first learned pattern for a domain stays
// authoritative across runs.
func (e *Engine) WithKnownPattern(tmpl string, idx int) *Engine {
	e.knownPattern = tmpl
	e.knownIndex = idx
	return e
}

// Run resolves addresses for the batch. Contacts whose names cannot be split
// into at least two parts are dropped from the output, not errored. The
// returned contacts are the surviving input contacts, mutated in place with
// emails, sources, and scores.
func (e *Engine) Run(ctx context.Context, domain string, contacts []*model.Contact) *Result {
	res := &Result{Domain: domain, State: StateNoPattern}

	workable := make([]*model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if !e.normalize(c) {
			res.SkippedCount++
			zap.L().Debug("skipping contact with unsplittable name",
				zap.String("domain", domain),
				zap.String("name", c.FullName),
			)
			continue
		}
		c.PriorityScore = e.scorer.Score(c.JobTitle)
		workable = append(workable, c)
	}

	// Highest pattern-test priority first; stable so the upstream order
	// breaks ties deterministically.
	sort.SliceStable(workable, func(i, j int) bool {
		return workable[i].PriorityScore > workable[j].PriorityScore
	})
	res.Contacts = workable

	if e.knownPattern != "" {
		res.State = StatePatternLearned
		res.Pattern = e.knownPattern
		res.PatternIndex = e.knownIndex
		res.LearnedFrom = "stored"
	}

	// Addresses supplied by the upstream scrape are re-verified and, when
	// good, can seed the pattern without spending a full catalog scan.
	e.verifyProvided(ctx, domain, res)

	attempted := make(map[*model.Contact]bool)
	if res.State == StateNoPattern {
		e.exhaustiveSearch(ctx, domain, res, attempted)
	}

	switch res.State {
	case StatePatternLearned:
		e.applyLearned(ctx, domain, res, attempted)
	case StateExhausted:
		// No shared convention: each remaining contact gets its own full
		// catalog scan. The batch still completes.
		for _, c := range res.Contacts {
			if c.Resolved() || attempted[c] {
				continue
			}
			e.scanCatalog(ctx, domain, c)
		}
	}

	for _, c := range res.Contacts {
		if c.Resolved() {
			res.ResolvedCount++
		}
	}

	zap.L().Info("discovery run complete",
		zap.String("domain", domain),
		zap.String("state", string(res.State)),
		zap.String("pattern", res.Pattern),
		zap.Int("contacts", len(res.Contacts)),
		zap.Int("resolved", res.ResolvedCount),
		zap.Int("skipped", res.SkippedCount),
	)
	return res
}

// normalize fills in the split name parts, reporting false when the full
// name has fewer than two tokens.
func (e *Engine) normalize(c *model.Contact) bool {
	if c.FirstName != "" && c.LastName != "" {
		return true
	}
	first, middle, last, err := model.SplitName(c.FullName)
	if err != nil {
		return false
	}
	c.FirstName, c.MiddleName, c.LastName = first, middle, last
	return true
}

// verifyProvided re-verifies scrape-supplied addresses and learns the
// pattern from the first confirmed one.
func (e *Engine) verifyProvided(ctx context.Context, domain string, res *Result) {
	for _, c := range res.Contacts {
		if c.Email == "" {
			continue
		}
		if c.Status == model.StatusVerified {
			// Already confirmed upstream; it can still seed the pattern.
			if res.State == StateNoPattern {
				if tmpl, idx, ok := pattern.Extract(c.Email, c.FirstName, c.LastName); ok {
					e.learn(res, tmpl, idx, c.FullName)
				}
			}
			continue
		}
		vr := e.oracle.Verify(ctx, c.Email)
		if !vr.Valid {
			// Drop the unconfirmed address; the contact re-enters normal
			// discovery.
			zap.L().Debug("scrape-provided address rejected",
				zap.String("email", c.Email),
			)
			c.Email = ""
			c.EmailSource = model.EmailSourceUnverified
			continue
		}
		c.Status = model.StatusVerified
		c.EmailSource = model.EmailSourceScrapeVerified

		if res.State != StateNoPattern {
			continue
		}
		if tmpl, idx, ok := pattern.Extract(c.Email, c.FirstName, c.LastName); ok {
			e.learn(res, tmpl, idx, c.FullName)
		}
	}
}

// exhaustiveSearch runs full catalog scans against the top-priority cohort
// until a pattern is learned or the cap is exhausted.
func (e *Engine) exhaustiveSearch(ctx context.Context, domain string, res *Result, attempted map[*model.Contact]bool) {
	tested := 0
	for _, c := range res.Contacts {
		if res.State != StateNoPattern {
			return
		}
		if c.Resolved() {
			continue
		}
		if tested >= e.maxExhaustive {
			res.State = StateExhausted
			zap.L().Info("no naming convention found in top-priority cohort",
				zap.String("domain", domain),
				zap.Int("tested", tested),
			)
			return
		}
		tested++
		attempted[c] = true

		if !e.scanCatalog(ctx, domain, c) {
			continue
		}
		if tmpl, idx, ok := pattern.Extract(c.Email, c.FirstName, c.LastName); ok {
			e.learn(res, tmpl, idx, c.FullName)
		}
		// A verified address whose template cannot be extracted keeps the
		// state at NO_PATTERN; the next candidate may still reveal one.
	}

	if res.State == StateNoPattern {
		// Fewer unresolved candidates than the cap, none matched.
		res.State = StateExhausted
	}
}

// applyLearned tries the learned template on every remaining contact,
// falling back to that contact's own full catalog scan on a miss. A miss
// never erases the learned pattern, and a fallback hit with a different
// template never overwrites it: the first discovered pattern wins for the
// whole batch to prevent oscillation.
func (e *Engine) applyLearned(ctx context.Context, domain string, res *Result, attempted map[*model.Contact]bool) {
	for _, c := range res.Contacts {
		if c.Resolved() || attempted[c] {
			continue
		}

		email, ok := pattern.Apply(res.Pattern, c.FirstName, c.MiddleName, c.LastName, domain)
		if ok {
			if vr := e.oracle.Verify(ctx, email); vr.Valid {
				c.Email = email
				c.EmailSource = model.LearnedSource(res.PatternIndex)
				c.Status = model.StatusVerified
				continue
			}
		}

		e.scanCatalogSkipping(ctx, domain, c, email)
	}
}

// scanCatalog tests every catalog candidate for one contact in priority
// order, stopping at the first verified hit. Reports whether a hit occurred.
func (e *Engine) scanCatalog(ctx context.Context, domain string, c *model.Contact) bool {
	return e.scanCatalogSkipping(ctx, domain, c, "")
}

// scanCatalogSkipping is scanCatalog minus one address that was already
// tested this run.
func (e *Engine) scanCatalogSkipping(ctx context.Context, domain string, c *model.Contact, skip string) bool {
	for _, cand := range pattern.Generate(c.FirstName, c.MiddleName, c.LastName, domain) {
		if skip != "" && cand.Email == skip {
			continue
		}
		vr := e.oracle.Verify(ctx, cand.Email)
		if !vr.Valid {
			continue
		}
		c.Email = cand.Email
		c.EmailSource = model.CatalogSource(cand.Index)
		c.Status = model.StatusVerified
		return true
	}
	return false
}

func (e *Engine) learn(res *Result, tmpl string, idx int, from string) {
	res.State = StatePatternLearned
	res.Pattern = tmpl
	res.PatternIndex = idx
	res.LearnedFrom = from
	zap.L().Info("naming convention learned",
		zap.String("domain", res.Domain),
		zap.String("pattern", tmpl),
		zap.Int("catalog_index", idx),
		zap.String("from", from),
	)
}
