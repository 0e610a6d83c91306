package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertOutcomes(t *testing.T) {
	stores := newStores(t)
	clock := &fakeClock{now: epoch}
	engine, err := NewEngine(stores.Records, WithEngineClock(clock.Now))
	require.NoError(t, err)
	ctx := context.Background()

	rec := incoming("inv-1", 100)
	created, outcome, err := engine.Upsert(ctx, "user-1", "quickbooks", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, core.RecordStatusPending, created.Status)
	assert.Equal(t, epoch, created.Metadata.FirstSyncDate)
	assert.Equal(t, epoch, created.Metadata.LastSyncDate)

	clock.Advance(time.Hour)
	same, outcome, err := engine.Upsert(ctx, "user-1", "quickbooks", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
	assert.Equal(t, created.ID, same.ID)
	assert.Equal(t, epoch, same.Metadata.LastSyncDate, "unchanged records are not written")

	rec.Amount = 125
	rec.Notes = "adjusted"
	updated, outcome, err := engine.Upsert(ctx, "user-1", "quickbooks", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 125.0, updated.Amount)
	assert.Equal(t, "adjusted", updated.Notes, "all incoming fields are applied")
	assert.Equal(t, epoch, updated.Metadata.FirstSyncDate)
	assert.Equal(t, epoch.Add(time.Hour), updated.Metadata.LastSyncDate)

	other, outcome, err := engine.Upsert(ctx, "user-2", "quickbooks", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome, "owners do not share records")
	assert.NotEqual(t, created.ID, other.ID)
}

func TestUpsertDatesCompareByInstant(t *testing.T) {
	stores := newStores(t)
	engine, err := NewEngine(stores.Records)
	require.NoError(t, err)
	ctx := context.Background()

	rec := incoming("inv-1", 100)
	_, _, err = engine.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)

	rec.Date = epoch.In(time.FixedZone("CET", 3600))
	_, outcome, err := engine.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
}

func TestUpsertDatesCompareAtStoredPrecision(t *testing.T) {
	stores := newStores(t)
	engine, err := NewEngine(stores.Records)
	require.NoError(t, err)
	ctx := context.Background()

	rec := incoming("inv-1", 100)
	rec.Date = time.Date(2025, 1, 2, 3, 4, 5, 123456789, time.UTC)
	created, outcome, err := engine.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.True(t, created.Date.Equal(time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)))

	_, outcome, err = engine.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
	assert.Equal(t, 123456789, rec.Date.Nanosecond(), "caller's record is not modified")

	rec.Date = rec.Date.Add(time.Microsecond)
	_, outcome, err = engine.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
}

func TestUpsertKeepsStoredValuesForEmptyFields(t *testing.T) {
	stores := newStores(t)
	ctx := context.Background()

	engine, err := NewEngine(stores.Records)
	require.NoError(t, err)
	rec := incoming("inv-1", 100)
	_, _, err = engine.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)

	rec.Category, rec.Vendor = "", ""
	stored, outcome, err := engine.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
	assert.Equal(t, "services", stored.Category)

	rec.Amount = 150
	stored, outcome, err = engine.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, "services", stored.Category)
	assert.Equal(t, "Acme", stored.Vendor)

	overwrite, err := NewEngine(stores.Records, WithPreservedFields())
	require.NoError(t, err)
	stored, outcome, err = overwrite.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Empty(t, stored.Category)

	_, err = NewEngine(stores.Records, WithPreservedFields("colour"))
	assert.ErrorIs(t, err, core.ErrUnknownField)
}

func TestUpsertCompareFields(t *testing.T) {
	stores := newStores(t)
	ctx := context.Background()

	defaults, err := NewEngine(stores.Records)
	require.NoError(t, err)
	rec := incoming("inv-1", 100)
	_, _, err = defaults.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)

	rec.Notes = "paid late"
	rec.Extra = map[string]string{"memo": "net 30"}
	_, outcome, err := defaults.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome, "notes are not compared by default")

	custom, err := NewEngine(stores.Records, WithCompareFields(core.FieldNotes, core.ExtraField("memo")))
	require.NoError(t, err)
	_, outcome, err = custom.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	_, err = NewEngine(stores.Records, WithCompareFields())
	assert.Error(t, err)
	_, err = NewEngine(stores.Records, WithCompareFields("colour"))
	assert.ErrorIs(t, err, core.ErrUnknownField)
}

func TestUpsertRejectsMissingSourceID(t *testing.T) {
	engine, err := NewEngine(newStores(t).Records)
	require.NoError(t, err)

	rec := incoming("  ", 1)
	_, _, err = engine.Upsert(context.Background(), "user-1", "xero", &rec)
	assert.ErrorIs(t, err, core.ErrMissingSourceID)

	_, err = NewEngine(nil)
	assert.ErrorIs(t, err, ErrRecordRepositoryRequired)
}

// racingRecords hides an existing record from the first lookup so that the
// engine's insert hits the dedup constraint.
type racingRecords struct {
	storage.RecordRepository
	once sync.Once
}

func (r *racingRecords) FindByDedupKey(ctx context.Context, key core.DedupKey) (*core.StoredRecord, error) {
	hide := false
	r.once.Do(func() { hide = true })
	if hide {
		return nil, nil
	}
	return r.RecordRepository.FindByDedupKey(ctx, key)
}

func TestUpsertLostInsertRace(t *testing.T) {
	stores := newStores(t)
	ctx := context.Background()

	first, err := NewEngine(stores.Records)
	require.NoError(t, err)
	rec := incoming("inv-1", 100)
	winner, _, err := first.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)

	loser, err := NewEngine(&racingRecords{RecordRepository: stores.Records})
	require.NoError(t, err)
	rec.Amount = 200
	stored, outcome, err := loser.Upsert(ctx, "user-1", "xero", &rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, winner.ID, stored.ID)

	all, err := stores.Records.FindByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertReturnsStoreErrors(t *testing.T) {
	stores := newStores(t)
	engine, err := NewEngine(stores.Records)
	require.NoError(t, err)
	require.NoError(t, stores.Close())

	rec := incoming("inv-1", 1)
	_, _, err = engine.Upsert(context.Background(), "user-1", "xero", &rec)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "created", OutcomeCreated.String())
	assert.Equal(t, "updated", OutcomeUpdated.String())
	assert.Equal(t, "unchanged", OutcomeUnchanged.String())
}
