package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// --- Runs ---

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "acme.com")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme.com", got.Domain)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Empty(t, got.Pattern)
	assert.Nil(t, got.Contacts)
}

func TestSQLite_GetRun_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "no-such-id")
	assert.Error(t, err)
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "acme.com")
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLite_UpdateRunStatus_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.UpdateRunStatus(context.Background(), "no-such-id", model.RunStatusComplete)
	assert.Error(t, err)
}

func TestSQLite_SaveRunResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "acme.com")
	require.NoError(t, err)

	run.Status = model.RunStatusComplete
	run.Pattern = "{first}.{last}"
	run.PatternIndex = 4
	run.Contacts = []model.Contact{
		{
			FullName: "Jane Doe", FirstName: "jane", LastName: "doe",
			Email: "jane.doe@acme.com", EmailSource: model.CatalogSource(4),
			Status: model.StatusVerified,
		},
	}
	run.CandidateCount = 2
	run.ResolvedCount = 1
	run.CreditsUsed = 5
	run.VerifyCalls = 5

	require.NoError(t, st.SaveRunResult(ctx, run))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, "{first}.{last}", got.Pattern)
	assert.Equal(t, 4, got.PatternIndex)
	require.Len(t, got.Contacts, 1)
	assert.Equal(t, "jane.doe@acme.com", got.Contacts[0].Email)
	assert.Equal(t, 5, got.CreditsUsed)
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, "acme.com")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "globex.com")
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, a.ID, model.RunStatusComplete))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byStatus, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, a.ID, byStatus[0].ID)

	byDomain, err := st.ListRuns(ctx, RunFilter{Domain: "globex.com"})
	require.NoError(t, err)
	require.Len(t, byDomain, 1)
	assert.Equal(t, "globex.com", byDomain[0].Domain)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

// --- Domain patterns ---

func TestSQLite_DomainPattern_FirstWins(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveDomainPattern(ctx, "acme.com", "{first}.{last}", 4))
	// A later write for the same domain is silently ignored.
	require.NoError(t, st.SaveDomainPattern(ctx, "acme.com", "{f}{last}", 3))

	dp, err := st.GetDomainPattern(ctx, "acme.com")
	require.NoError(t, err)
	require.NotNil(t, dp)
	assert.Equal(t, "{first}.{last}", dp.Pattern)
	assert.Equal(t, 4, dp.PatternIndex)
	assert.False(t, dp.LearnedAt.IsZero())
}

func TestSQLite_DomainPattern_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	dp, err := st.GetDomainPattern(context.Background(), "unknown.com")
	require.NoError(t, err)
	assert.Nil(t, dp)
}
