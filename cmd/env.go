package main

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/discovery"
	"github.com/sells-group/outreach-cli/internal/scorer"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/verify"
	"github.com/sells-group/outreach-cli/pkg/apify"
	"github.com/sells-group/outreach-cli/pkg/millionverifier"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "outreach.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// The verifier client and credit budget are process-wide: the budget's
// cached balance must gate every concurrent domain run, not one cache per
// run. Adapters stay per-run so Stats isolate each run's spend.
var (
	verifierMu     sync.Mutex
	verifierKey    string
	verifierClient millionverifier.Client
	verifierBudget *verify.CreditBudget
)

// initVerifier returns the shared verification client, or nil when no key is
// configured. The oracle adapter treats a nil client as fail-open.
func initVerifier() millionverifier.Client {
	client, _ := sharedVerifier()
	return client
}

func sharedVerifier() (millionverifier.Client, *verify.CreditBudget) {
	verifierMu.Lock()
	defer verifierMu.Unlock()

	if cfg.Verifier.Key != verifierKey {
		verifierKey = cfg.Verifier.Key
		verifierClient = nil
		verifierBudget = nil
		if verifierKey != "" {
			verifierClient = millionverifier.NewClient(verifierKey,
				millionverifier.WithBaseURL(cfg.Verifier.BaseURL),
				millionverifier.WithRateLimit(float64(cfg.Verifier.RateLimit)),
				millionverifier.WithVerifyTimeout(cfg.Verifier.TimeoutSecs),
			)
			verifierBudget = verify.NewCreditBudget(verifierClient)
		}
	}
	return verifierClient, verifierBudget
}

func initOracle() *verify.Adapter {
	client, budget := sharedVerifier()
	return verify.NewAdapter(client, budget)
}

func initTables() (scorer.Tables, error) {
	if cfg.Scoring.TablesPath == "" {
		return scorer.DefaultTables(), nil
	}
	return scorer.LoadTables(cfg.Scoring.TablesPath)
}

func initEngine(oracle discovery.Oracle) (*discovery.Engine, error) {
	tables, err := initTables()
	if err != nil {
		return nil, err
	}
	eng := discovery.NewEngine(oracle, scorer.NewDiscoveryScorer(tables))
	if cfg.Discovery.MaxExhaustive > 0 {
		eng = eng.WithMaxExhaustive(cfg.Discovery.MaxExhaustive)
	}
	return eng, nil
}

func initApify() (apify.Client, error) {
	if cfg.Apify.Token == "" {
		return nil, eris.New("apify token is required (OUTREACH_APIFY_TOKEN)")
	}
	return apify.NewClient(cfg.Apify.Token,
		apify.WithBaseURL(cfg.Apify.BaseURL),
		apify.WithPollInterval(time.Duration(cfg.Apify.PollSecs)*time.Second),
		apify.WithWaitTimeout(time.Duration(cfg.Apify.MaxPollSecs)*time.Second),
	), nil
}
