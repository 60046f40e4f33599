package verify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/pkg/millionverifier"
)

// budgetTTL bounds how often the standalone balance endpoint is polled.
const budgetTTL = 30 * time.Second

// CreditBudget caches the vendor's remaining credit balance. The balance
// reported inside each verification response is authoritative and overrides
// the separately polled value. Access is serialized so concurrent per-domain
// batches can share one budget.
type CreditBudget struct {
	mu          sync.Mutex
	client      millionverifier.Client
	balance     int
	refreshedAt time.Time
	ttl         time.Duration
	now         func() time.Time
}

// NewCreditBudget creates a budget cache backed by the given client's
// balance endpoint.
func NewCreditBudget(client millionverifier.Client) *CreditBudget {
	return &CreditBudget{
		client: client,
		ttl:    budgetTTL,
		now:    time.Now,
	}
}

// WithClock overrides the time source for testing.
func (b *CreditBudget) WithClock(now func() time.Time) *CreditBudget {
	b.now = now
	return b
}

// Balance returns the cached balance, polling the vendor only when the cache
// is stale. A failed poll returns the last known balance rather than an
// error; the verification path degrades permissively on vendor trouble.
func (b *CreditBudget) Balance(ctx context.Context) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.refreshedAt.IsZero() && b.now().Sub(b.refreshedAt) < b.ttl {
		return b.balance
	}

	credits, err := b.client.Credits(ctx)
	if err != nil {
		zap.L().Warn("credit balance poll failed, using last known value",
			zap.Int("last_known", b.balance),
			zap.Error(err),
		)
		return b.balance
	}

	b.balance = credits
	b.refreshedAt = b.now()
	return b.balance
}

// RecordRemaining refreshes the cache from a verification response's reported
// remaining balance, which is authoritative over a standalone poll.
func (b *CreditBudget) RecordRemaining(credits int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balance = credits
	b.refreshedAt = b.now()
}
