package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, satisfied by
// pgxmock in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS discovery_runs (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	domain          TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'running',
	pattern         TEXT,
	pattern_index   INTEGER,
	contacts        JSONB,
	candidate_count INTEGER NOT NULL DEFAULT 0,
	resolved_count  INTEGER NOT NULL DEFAULT 0,
	credits_used    INTEGER NOT NULL DEFAULT 0,
	verify_calls    INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS domain_patterns (
	domain        TEXT PRIMARY KEY,
	pattern       TEXT NOT NULL,
	pattern_index INTEGER NOT NULL,
	learned_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_discovery_runs_status ON discovery_runs(status);
CREATE INDEX IF NOT EXISTS idx_discovery_runs_domain ON discovery_runs(domain);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, domain string) (*model.DiscoveryRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO discovery_runs (id, domain, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, domain, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.DiscoveryRun{
		ID:        id,
		Domain:    domain,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE discovery_runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) SaveRunResult(ctx context.Context, run *model.DiscoveryRun) error {
	contactsJSON, err := json.Marshal(run.Contacts)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal contacts")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE discovery_runs
		 SET status = $1, pattern = $2, pattern_index = $3, contacts = $4,
		     candidate_count = $5, resolved_count = $6, credits_used = $7, verify_calls = $8,
		     updated_at = $9
		 WHERE id = $10`,
		string(run.Status), run.Pattern, run.PatternIndex, contactsJSON,
		run.CandidateCount, run.ResolvedCount, run.CreditsUsed, run.VerifyCalls,
		time.Now().UTC(), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save run result %s", run.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", run.ID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.DiscoveryRun, error) {
	var r model.DiscoveryRun
	var pattern *string
	var patternIndex *int
	var contactsJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, domain, status, pattern, pattern_index, contacts,
		        candidate_count, resolved_count, credits_used, verify_calls,
		        created_at, updated_at
		 FROM discovery_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Domain, &r.Status, &pattern, &patternIndex, &contactsJSON,
		&r.CandidateCount, &r.ResolvedCount, &r.CreditsUsed, &r.VerifyCalls,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if pattern != nil {
		r.Pattern = *pattern
	}
	if patternIndex != nil {
		r.PatternIndex = *patternIndex
	}
	if len(contactsJSON) > 0 {
		if err := json.Unmarshal(contactsJSON, &r.Contacts); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal contacts")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.DiscoveryRun, error) {
	query := `SELECT id, domain, status, pattern, pattern_index, contacts,
	                 candidate_count, resolved_count, credits_used, verify_calls,
	                 created_at, updated_at
	          FROM discovery_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Domain != "" {
		query += fmt.Sprintf(` AND domain = $%d`, argIdx)
		args = append(args, filter.Domain)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.DiscoveryRun
	for rows.Next() {
		var r model.DiscoveryRun
		var pattern *string
		var patternIndex *int
		var contactsJSON []byte

		if err := rows.Scan(&r.ID, &r.Domain, &r.Status, &pattern, &patternIndex, &contactsJSON,
			&r.CandidateCount, &r.ResolvedCount, &r.CreditsUsed, &r.VerifyCalls,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if pattern != nil {
			r.Pattern = *pattern
		}
		if patternIndex != nil {
			r.PatternIndex = *patternIndex
		}
		if len(contactsJSON) > 0 {
			if err := json.Unmarshal(contactsJSON, &r.Contacts); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal contacts")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) GetDomainPattern(ctx context.Context, domain string) (*DomainPattern, error) {
	var dp DomainPattern
	err := s.pool.QueryRow(ctx,
		`SELECT domain, pattern, pattern_index, learned_at FROM domain_patterns WHERE domain = $1`,
		domain,
	).Scan(&dp.Domain, &dp.Pattern, &dp.PatternIndex, &dp.LearnedAt)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get domain pattern")
	}
	return &dp, nil
}

func (s *PostgresStore) SaveDomainPattern(ctx context.Context, domain, pattern string, index int) error {
	// ON CONFLICT DO NOTHING keeps the first recorded pattern.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO domain_patterns (domain, pattern, pattern_index, learned_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (domain) DO NOTHING`,
		domain, pattern, index, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: save domain pattern")
}
