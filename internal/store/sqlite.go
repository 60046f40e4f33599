package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS discovery_runs (
	id              TEXT PRIMARY KEY,
	domain          TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'running',
	pattern         TEXT,
	pattern_index   INTEGER,
	contacts        TEXT,
	candidate_count INTEGER NOT NULL DEFAULT 0,
	resolved_count  INTEGER NOT NULL DEFAULT 0,
	credits_used    INTEGER NOT NULL DEFAULT 0,
	verify_calls    INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS domain_patterns (
	domain        TEXT PRIMARY KEY,
	pattern       TEXT NOT NULL,
	pattern_index INTEGER NOT NULL,
	learned_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_discovery_runs_status ON discovery_runs(status);
CREATE INDEX IF NOT EXISTS idx_discovery_runs_domain ON discovery_runs(domain);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, domain string) (*model.DiscoveryRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO discovery_runs (id, domain, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, domain, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.DiscoveryRun{
		ID:        id,
		Domain:    domain,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE discovery_runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) SaveRunResult(ctx context.Context, run *model.DiscoveryRun) error {
	contactsJSON, err := json.Marshal(run.Contacts)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal contacts")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE discovery_runs
		 SET status = ?, pattern = ?, pattern_index = ?, contacts = ?,
		     candidate_count = ?, resolved_count = ?, credits_used = ?, verify_calls = ?,
		     updated_at = ?
		 WHERE id = ?`,
		string(run.Status), run.Pattern, run.PatternIndex, string(contactsJSON),
		run.CandidateCount, run.ResolvedCount, run.CreditsUsed, run.VerifyCalls,
		time.Now().UTC(), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save run result %s", run.ID)
	}
	return checkRowsAffected(res, "run", run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.DiscoveryRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, domain, status, pattern, pattern_index, contacts,
		        candidate_count, resolved_count, credits_used, verify_calls,
		        created_at, updated_at
		 FROM discovery_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.DiscoveryRun, error) {
	query := `SELECT id, domain, status, pattern, pattern_index, contacts,
	                 candidate_count, resolved_count, credits_used, verify_calls,
	                 created_at, updated_at
	          FROM discovery_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Domain != "" {
		query += ` AND domain = ?`
		args = append(args, filter.Domain)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.DiscoveryRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) GetDomainPattern(ctx context.Context, domain string) (*DomainPattern, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT domain, pattern, pattern_index, learned_at FROM domain_patterns WHERE domain = ?`,
		domain,
	)

	var dp DomainPattern
	err := row.Scan(&dp.Domain, &dp.Pattern, &dp.PatternIndex, &dp.LearnedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get domain pattern")
	}
	return &dp, nil
}

func (s *SQLiteStore) SaveDomainPattern(ctx context.Context, domain, pattern string, index int) error {
	// ON CONFLICT DO NOTHING keeps the first recorded pattern.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO domain_patterns (domain, pattern, pattern_index, learned_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(domain) DO NOTHING`,
		domain, pattern, index, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: save domain pattern")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.DiscoveryRun, error) {
	var r model.DiscoveryRun
	var pattern sql.NullString
	var patternIndex sql.NullInt64
	var contactsJSON sql.NullString

	err := row.Scan(&r.ID, &r.Domain, &r.Status, &pattern, &patternIndex, &contactsJSON,
		&r.CandidateCount, &r.ResolvedCount, &r.CreditsUsed, &r.VerifyCalls,
		&r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	r.Pattern = pattern.String
	r.PatternIndex = int(patternIndex.Int64)
	if contactsJSON.Valid && contactsJSON.String != "" {
		if err := json.Unmarshal([]byte(contactsJSON.String), &r.Contacts); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal contacts")
		}
	}
	return &r, nil
}
