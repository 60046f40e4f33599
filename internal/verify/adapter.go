// Package verify wraps the metered verification vendor behind a permissive
// deliverability check. The adapter is deliberately biased toward false
// positives: one extra speculative send costs less than a missed contact, so
// every vendor failure mode degrades to "accept" rather than surfacing an
// error to the batch.
package verify

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/millionverifier"
)

const (
	// minCredits is the balance floor below which verification short-circuits
	// to accept, preserving budget for batches the caller values more.
	minCredits = 10

	// rateLimitDelay is the fixed sleep before the single 429 retry.
	rateLimitDelay = time.Second
)

// Stats counts adapter activity for run summaries.
type Stats struct {
	Calls       int `json:"calls"`
	CreditsUsed int `json:"credits_used"`
	FailOpens   int `json:"fail_opens"`
}

// Adapter is the verification oracle used by the discovery engine.
type Adapter struct {
	client         millionverifier.Client
	budget         *CreditBudget
	configured     bool
	rateLimitDelay time.Duration

	mu    sync.Mutex
	stats Stats
}

// NewAdapter creates an oracle adapter. A nil client (no credential
// configured) yields an adapter that accepts every address.
func NewAdapter(client millionverifier.Client, budget *CreditBudget) *Adapter {
	return &Adapter{
		client:         client,
		budget:         budget,
		configured:     client != nil,
		rateLimitDelay: rateLimitDelay,
	}
}

// WithRateLimitDelay overrides the 429 retry delay for testing.
func (a *Adapter) WithRateLimitDelay(d time.Duration) *Adapter {
	a.rateLimitDelay = d
	return a
}

// Stats returns a snapshot of the adapter's counters.
func (a *Adapter) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Verify answers "is this address plausibly deliverable". The decision table:
//
//	good  + ok/deliverable   → accept (confirmed mailbox)
//	risky + catch_all        → accept (domain accepts anything; presence is
//	                           signal, not proof; relevance scoring upstream
//	                           compensates)
//	bad, or invalid/disposable → reject
//	anything else            → accept (unknown defaults to accept)
//
// Missing credential, low credit balance, rate limiting past one retry, and
// any transport or parse failure all fail open.
func (a *Adapter) Verify(ctx context.Context, email string) model.VerificationResult {
	if !a.configured {
		zap.L().Info("verifier credential not configured, assuming deliverable",
			zap.String("email", email),
		)
		return a.failOpen(email, "no credential configured")
	}

	if balance := a.budget.Balance(ctx); balance < minCredits {
		zap.L().Warn("verification credits below floor, assuming deliverable",
			zap.String("email", email),
			zap.Int("balance", balance),
		)
		return a.failOpen(email, "credit balance below floor")
	}

	resp, err := resilience.DoVal(ctx, a.retryConfig(), func(ctx context.Context) (*millionverifier.VerifyResponse, error) {
		return a.client.Verify(ctx, email)
	})

	a.mu.Lock()
	a.stats.Calls++
	a.mu.Unlock()

	if err != nil {
		zap.L().Warn("verification call failed, assuming deliverable",
			zap.String("email", email),
			zap.Error(err),
		)
		return a.failOpen(email, err.Error())
	}

	a.budget.RecordRemaining(resp.Credits)
	a.mu.Lock()
	a.stats.CreditsUsed++
	a.mu.Unlock()

	result := model.VerificationResult{
		Email:            email,
		Quality:          model.VerificationQuality(resp.Quality),
		Disposition:      model.VerificationDisposition(resp.Result),
		CreditsRemaining: resp.Credits,
	}
	result.Valid, result.Reason = verdict(result.Quality, result.Disposition)

	zap.L().Debug("verification verdict",
		zap.String("email", email),
		zap.String("quality", resp.Quality),
		zap.String("disposition", resp.Result),
		zap.Bool("valid", result.Valid),
		zap.Int("credits_remaining", resp.Credits),
	)
	return result
}

// retryConfig retries exactly once, on the vendor's rate-limit response or a
// transient network failure. No exponential backoff: batch latency stays
// bounded.
func (a *Adapter) retryConfig() resilience.RetryConfig {
	cfg := resilience.SingleRetryConfig(a.rateLimitDelay, func(err error) bool {
		return eris.Is(err, millionverifier.ErrRateLimited) || resilience.IsTransient(err)
	})
	cfg.OnRetry = resilience.RetryLogger("millionverifier", "verify")
	return cfg
}

func verdict(q model.VerificationQuality, d model.VerificationDisposition) (bool, string) {
	switch {
	case q == model.QualityGood && (d == model.DispositionOK || d == model.DispositionDeliverable):
		return true, "confirmed mailbox"
	case q == model.QualityRisky && d == model.DispositionCatchAll:
		return true, "catch-all domain, accepted"
	case q == model.QualityBad || d == model.DispositionInvalid || d == model.DispositionDisposable:
		return false, "confirmed undeliverable"
	default:
		return true, "unknown status, accepted"
	}
}

func (a *Adapter) failOpen(email, reason string) model.VerificationResult {
	a.mu.Lock()
	a.stats.FailOpens++
	a.mu.Unlock()
	return model.VerificationResult{
		Email:    email,
		Valid:    true,
		Quality:  model.QualityUnknown,
		FailOpen: true,
		Reason:   reason,
	}
}
