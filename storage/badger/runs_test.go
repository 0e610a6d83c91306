package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRun(t *testing.T, owner string, started time.Time) *core.SyncRun {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return core.NewSyncRun(id.String(), owner, "company-1", "quickbooks", 2, started)
}

func TestSyncRunLifecycle(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Microsecond)

	run := newRun(t, "user-1", start)
	require.NoError(t, stores.Runs.CreateSyncRun(ctx, run))
	assert.ErrorIs(t, stores.Runs.CreateSyncRun(ctx, run), storage.ErrDuplicateKey)

	run.Stats.NewItems = 2
	require.NoError(t, run.Complete(start.Add(time.Second)))
	require.NoError(t, stores.Runs.SaveSyncRun(ctx, run))

	runs, err := stores.Runs.FindRecentSyncRuns(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run, runs[0])
}

func TestSyncRunImmutableOnceTerminal(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Microsecond)

	run := newRun(t, "user-1", start)
	require.NoError(t, stores.Runs.CreateSyncRun(ctx, run))
	require.NoError(t, run.Fail(start.Add(time.Second), errors.New("boom")))
	require.NoError(t, stores.Runs.SaveSyncRun(ctx, run))

	run.Status = core.RunStatusCompleted
	run.Error = ""
	assert.ErrorIs(t, stores.Runs.SaveSyncRun(ctx, run), storage.ErrRunFinalized)

	runs, err := stores.Runs.FindRecentSyncRuns(ctx, "user-1", 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, core.RunStatusFailed, runs[0].Status)
	assert.Equal(t, "boom", runs[0].Error)
}

func TestSaveUnknownSyncRun(t *testing.T) {
	stores := newTestStores(t)
	run := newRun(t, "user-1", time.Now().UTC())
	assert.ErrorIs(t, stores.Runs.SaveSyncRun(context.Background(), run), storage.ErrNotFound)
}

func TestFindRecentSyncRunsOrder(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	var ids []string
	for i := 0; i < 4; i++ {
		run := newRun(t, "user-1", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, stores.Runs.CreateSyncRun(ctx, run))
		ids = append(ids, run.ID)
		time.Sleep(2 * time.Millisecond)
	}
	require.NoError(t, stores.Runs.CreateSyncRun(ctx, newRun(t, "user-2", base)))

	runs, err := stores.Runs.FindRecentSyncRuns(ctx, "user-1", 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[3], runs[0].ID)
	assert.Equal(t, ids[2], runs[1].ID)
	assert.Equal(t, ids[1], runs[2].ID)

	empty, err := stores.Runs.FindRecentSyncRuns(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPruneSyncRuns(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	old := newRun(t, "user-1", now.Add(-48*time.Hour))
	require.NoError(t, stores.Runs.CreateSyncRun(ctx, old))
	require.NoError(t, old.Complete(now.Add(-47*time.Hour)))
	require.NoError(t, stores.Runs.SaveSyncRun(ctx, old))

	oldInProgress := newRun(t, "user-1", now.Add(-48*time.Hour))
	require.NoError(t, stores.Runs.CreateSyncRun(ctx, oldInProgress))

	recent := newRun(t, "user-1", now)
	require.NoError(t, stores.Runs.CreateSyncRun(ctx, recent))
	require.NoError(t, recent.Complete(now.Add(time.Second)))
	require.NoError(t, stores.Runs.SaveSyncRun(ctx, recent))

	removed, err := stores.Runs.PruneSyncRuns(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	runs, err := stores.Runs.FindRecentSyncRuns(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.NotEqual(t, old.ID, run.ID)
	}
}
