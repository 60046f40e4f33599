package verify

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/millionverifier"
)

// mockClient is a scriptable millionverifier.Client.
type mockClient struct {
	verifyFn    func(email string) (*millionverifier.VerifyResponse, error)
	verifyCalls int
	creditsFn   func() (int, error)
	creditCalls int
}

func (m *mockClient) Verify(_ context.Context, email string) (*millionverifier.VerifyResponse, error) {
	m.verifyCalls++
	return m.verifyFn(email)
}

func (m *mockClient) Credits(_ context.Context) (int, error) {
	m.creditCalls++
	if m.creditsFn != nil {
		return m.creditsFn()
	}
	return 1000, nil
}

func respond(quality, result string, credits int) func(string) (*millionverifier.VerifyResponse, error) {
	return func(email string) (*millionverifier.VerifyResponse, error) {
		return &millionverifier.VerifyResponse{Email: email, Quality: quality, Result: result, Credits: credits}, nil
	}
}

func newTestAdapter(mc *mockClient) *Adapter {
	return NewAdapter(mc, NewCreditBudget(mc)).WithRateLimitDelay(time.Millisecond)
}

func TestVerifyGoodDeliverable(t *testing.T) {
	mc := &mockClient{verifyFn: respond("good", "deliverable", 900)}
	a := newTestAdapter(mc)

	res := a.Verify(context.Background(), "jane.doe@acme.com")
	assert.True(t, res.Valid)
	assert.False(t, res.FailOpen)
	assert.Equal(t, model.QualityGood, res.Quality)
	assert.Equal(t, 900, res.CreditsRemaining)
}

func TestVerifyCatchAllAccepted(t *testing.T) {
	mc := &mockClient{verifyFn: respond("risky", "catch_all", 900)}
	a := newTestAdapter(mc)

	for _, email := range []string{"jane.doe@acme.com", "zzz9@acme.com", "x@acme.com"} {
		res := a.Verify(context.Background(), email)
		assert.True(t, res.Valid, email)
	}
}

func TestVerifyRejections(t *testing.T) {
	tests := []struct {
		quality, result string
	}{
		{"bad", "invalid"},
		{"risky", "disposable"},
		{"good", "invalid"},
		{"bad", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.quality+"_"+tt.result, func(t *testing.T) {
			mc := &mockClient{verifyFn: respond(tt.quality, tt.result, 900)}
			res := newTestAdapter(mc).Verify(context.Background(), "x@y.com")
			assert.False(t, res.Valid)
		})
	}
}

func TestVerifyUnknownAccepted(t *testing.T) {
	mc := &mockClient{verifyFn: respond("", "unknown", 900)}
	res := newTestAdapter(mc).Verify(context.Background(), "x@y.com")
	assert.True(t, res.Valid)
	assert.Equal(t, "unknown status, accepted", res.Reason)
}

func TestVerifyNoCredentialFailsOpen(t *testing.T) {
	a := NewAdapter(nil, nil)
	res := a.Verify(context.Background(), "anything@anywhere.com")
	assert.True(t, res.Valid)
	assert.True(t, res.FailOpen)
}

func TestVerifyBudgetGate(t *testing.T) {
	mc := &mockClient{
		verifyFn:  respond("good", "deliverable", 5),
		creditsFn: func() (int, error) { return 5, nil },
	}
	a := newTestAdapter(mc)

	res := a.Verify(context.Background(), "x@y.com")
	assert.True(t, res.Valid)
	assert.True(t, res.FailOpen)
	assert.Zero(t, mc.verifyCalls, "no verification call below the credit floor")
}

func TestVerifyExhaustedCreditsFailsOpen(t *testing.T) {
	mc := &mockClient{
		verifyFn: func(string) (*millionverifier.VerifyResponse, error) {
			return nil, millionverifier.ErrNoCredits
		},
	}
	a := newTestAdapter(mc)

	res := a.Verify(context.Background(), "x@y.com")
	assert.True(t, res.Valid)
	assert.True(t, res.FailOpen)
	assert.Equal(t, 1, mc.verifyCalls, "402 is not retried")
}

func TestVerifyRateLimitedRetriesOnce(t *testing.T) {
	mc := &mockClient{}
	mc.verifyFn = func(email string) (*millionverifier.VerifyResponse, error) {
		if mc.verifyCalls == 1 {
			return nil, millionverifier.ErrRateLimited
		}
		return &millionverifier.VerifyResponse{Email: email, Quality: "good", Result: "ok", Credits: 800}, nil
	}
	a := newTestAdapter(mc)

	res := a.Verify(context.Background(), "x@y.com")
	assert.True(t, res.Valid)
	assert.False(t, res.FailOpen)
	assert.Equal(t, 2, mc.verifyCalls)
}

func TestVerifyRateLimitedTwiceFailsOpen(t *testing.T) {
	mc := &mockClient{
		verifyFn: func(string) (*millionverifier.VerifyResponse, error) {
			return nil, millionverifier.ErrRateLimited
		},
	}
	a := newTestAdapter(mc)

	res := a.Verify(context.Background(), "x@y.com")
	assert.True(t, res.Valid)
	assert.True(t, res.FailOpen)
	assert.Equal(t, 2, mc.verifyCalls, "exactly one retry before failing open")
}

func TestVerifyTransportErrorFailsOpen(t *testing.T) {
	mc := &mockClient{
		verifyFn: func(string) (*millionverifier.VerifyResponse, error) {
			return nil, eris.New("connection refused")
		},
	}
	res := newTestAdapter(mc).Verify(context.Background(), "x@y.com")
	assert.True(t, res.Valid)
	assert.True(t, res.FailOpen)
}

func TestVerifyRefreshesBudgetFromResponse(t *testing.T) {
	mc := &mockClient{
		verifyFn:  respond("good", "deliverable", 700),
		creditsFn: func() (int, error) { return 1000, nil },
	}
	budget := NewCreditBudget(mc)
	a := NewAdapter(mc, budget).WithRateLimitDelay(time.Millisecond)

	a.Verify(context.Background(), "x@y.com")

	// The response-reported balance is authoritative; no second poll happens.
	assert.Equal(t, 700, budget.Balance(context.Background()))
	assert.Equal(t, 1, mc.creditCalls)
}

func TestVerifyStats(t *testing.T) {
	mc := &mockClient{verifyFn: respond("good", "deliverable", 900)}
	a := newTestAdapter(mc)

	a.Verify(context.Background(), "a@y.com")
	a.Verify(context.Background(), "b@y.com")

	stats := a.Stats()
	assert.Equal(t, 2, stats.Calls)
	assert.Equal(t, 2, stats.CreditsUsed)
	assert.Zero(t, stats.FailOpens)
}

func TestBudgetCacheTTL(t *testing.T) {
	now := time.Now()
	clock := &now
	mc := &mockClient{creditsFn: func() (int, error) { return 100, nil }}
	b := NewCreditBudget(mc).WithClock(func() time.Time { return *clock })

	require.Equal(t, 100, b.Balance(context.Background()))
	require.Equal(t, 100, b.Balance(context.Background()))
	assert.Equal(t, 1, mc.creditCalls, "second read served from cache")

	// Advance past the TTL: the next read polls again.
	later := now.Add(31 * time.Second)
	clock = &later
	b.Balance(context.Background())
	assert.Equal(t, 2, mc.creditCalls)
}

func TestBudgetPollFailureKeepsLastKnown(t *testing.T) {
	now := time.Now()
	clock := &now
	calls := 0
	mc := &mockClient{creditsFn: func() (int, error) {
		calls++
		if calls == 1 {
			return 400, nil
		}
		return 0, eris.New("balance endpoint down")
	}}
	b := NewCreditBudget(mc).WithClock(func() time.Time { return *clock })

	require.Equal(t, 400, b.Balance(context.Background()))

	later := now.Add(time.Minute)
	clock = &later
	assert.Equal(t, 400, b.Balance(context.Background()))
}

func TestVerifyRetriesTransientNetworkError(t *testing.T) {
	calls := 0
	mc := &mockClient{verifyFn: func(email string) (*millionverifier.VerifyResponse, error) {
		calls++
		if calls == 1 {
			return nil, eris.New("millionverifier: send request: read tcp: i/o timeout")
		}
		return &millionverifier.VerifyResponse{Email: email, Quality: "good", Result: "ok", Credits: 900}, nil
	}}
	a := newTestAdapter(mc)

	res := a.Verify(context.Background(), "jane.doe@acme.com")
	assert.True(t, res.Valid)
	assert.False(t, res.FailOpen)
	assert.Equal(t, 2, calls)
}
