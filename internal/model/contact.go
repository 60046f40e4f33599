package model

import (
	"strconv"
	"time"
)

// EmailSource records how a contact's address was obtained.
type EmailSource string

const (
	EmailSourceUnverified     EmailSource = "unverified"
	EmailSourceScrapeProvided EmailSource = "scrape_provided"
	EmailSourceScrapeVerified EmailSource = "scrape_verified"
	EmailSourcePatternLearned EmailSource = "pattern_learned"
)

// CatalogSource tags an address found by exhaustive catalog testing with the
// 1-based index of the winning template.
func CatalogSource(index int) EmailSource {
	return EmailSource("catalog_" + strconv.Itoa(index))
}

// LearnedSource tags an address produced by applying an already-learned
// template, identified by the catalog index that originally discovered it.
func LearnedSource(index int) EmailSource {
	return EmailSource("learned_" + strconv.Itoa(index))
}

// VerificationStatus reflects whether the oracle confirmed an address.
type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusVerified   VerificationStatus = "verified"
)

// Contact is one person awaiting (or holding) an email resolution.
type Contact struct {
	FullName       string             `json:"full_name"`
	FirstName      string             `json:"first_name"`
	MiddleName     string             `json:"middle_name,omitempty"`
	LastName       string             `json:"last_name"`
	JobTitle       string             `json:"job_title,omitempty"`
	LinkedInURL    string             `json:"linkedin_url,omitempty"`
	PriorityScore  int                `json:"priority_score"`
	RelevanceScore int                `json:"relevance_score"`
	Email          string             `json:"email,omitempty"`
	EmailSource    EmailSource        `json:"email_source"`
	Status         VerificationStatus `json:"verification_status"`
}

// Resolved reports whether the contact already carries a verified address.
func (c *Contact) Resolved() bool {
	return c.Email != "" && c.Status == StatusVerified
}

// VerificationQuality is the vendor's confidence classification.
type VerificationQuality string

const (
	QualityGood    VerificationQuality = "good"
	QualityRisky   VerificationQuality = "risky"
	QualityBad     VerificationQuality = "bad"
	QualityUnknown VerificationQuality = "unknown"
)

// VerificationDisposition is the vendor's per-address result.
type VerificationDisposition string

const (
	DispositionOK          VerificationDisposition = "ok"
	DispositionDeliverable VerificationDisposition = "deliverable"
	DispositionCatchAll    VerificationDisposition = "catch_all"
	DispositionInvalid     VerificationDisposition = "invalid"
	DispositionDisposable  VerificationDisposition = "disposable"
	DispositionUnknown     VerificationDisposition = "unknown"
)

// VerificationResult is one oracle response, normalized.
type VerificationResult struct {
	Email            string                  `json:"email"`
	Valid            bool                    `json:"is_valid"`
	Quality          VerificationQuality     `json:"quality"`
	Disposition      VerificationDisposition `json:"disposition"`
	CreditsRemaining int                     `json:"credits_remaining"`
	FailOpen         bool                    `json:"fail_open,omitempty"`
	Reason           string                  `json:"reason,omitempty"`
}

// RunStatus represents the state of a discovery run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// DiscoveryRun is one persisted per-domain discovery execution.
type DiscoveryRun struct {
	ID             string    `json:"id"`
	Domain         string    `json:"domain"`
	Status         RunStatus `json:"status"`
	Pattern        string    `json:"pattern,omitempty"`
	PatternIndex   int       `json:"pattern_index,omitempty"`
	Contacts       []Contact `json:"contacts"`
	CandidateCount int       `json:"candidate_count"`
	ResolvedCount  int       `json:"resolved_count"`
	CreditsUsed    int       `json:"credits_used"`
	VerifyCalls    int       `json:"verify_calls"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ContactRefs returns pointers into the run's contact slice, for callers
// that consume []*Contact.
func (r *DiscoveryRun) ContactRefs() []*Contact {
	refs := make([]*Contact, len(r.Contacts))
	for i := range r.Contacts {
		refs[i] = &r.Contacts[i]
	}
	return refs
}

// OutreachDraft holds a generated cold email for one contact.
type OutreachDraft struct {
	Contact   Contact   `json:"contact"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Fallback  bool      `json:"fallback"`
	Sent      bool      `json:"sent"`
	DraftedAt time.Time `json:"drafted_at"`
}
