package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO discovery_runs`).
		WithArgs(pgxmock.AnyArg(), "acme.com", "running", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, domain, status`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE discovery_runs SET status`).
		WithArgs("failed", pgxmock.AnyArg(), "missing-id").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing-id", model.RunStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRunResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE discovery_runs`).
		WithArgs("complete", "{first}.{last}", 4, pgxmock.AnyArg(),
			3, 2, 7, 9, pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	run := &model.DiscoveryRun{
		ID: "run-1", Domain: "acme.com", Status: model.RunStatusComplete,
		Pattern: "{first}.{last}", PatternIndex: 4,
		CandidateCount: 3, ResolvedCount: 2, CreditsUsed: 7, VerifyCalls: 9,
	}
	require.NoError(t, s.SaveRunResult(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetDomainPattern_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT domain, pattern, pattern_index, learned_at FROM domain_patterns`).
		WithArgs("unknown.com").
		WillReturnError(pgx.ErrNoRows)

	dp, err := s.GetDomainPattern(context.Background(), "unknown.com")
	require.NoError(t, err)
	assert.Nil(t, dp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDomainPattern_Conflict(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// A conflicting insert affects zero rows and is not an error.
	mock.ExpectExec(`ON CONFLICT \(domain\) DO NOTHING`).
		WithArgs("acme.com", "{f}{last}", 3, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := s.SaveDomainPattern(context.Background(), "acme.com", "{f}{last}", 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
