package storage

import (
	"context"
	"time"

	"github.com/poiesic/ledgersync/core"
)

// RecordRepository persists reconciled records.
// Implementations must be safe for concurrent use and enforce that at most
// one record exists per dedup key.
type RecordRepository interface {
	// FindByDedupKey returns the record for an (owner, source system, source id)
	// triple. Returns nil, nil when no record exists.
	FindByDedupKey(ctx context.Context, key core.DedupKey) (*core.StoredRecord, error)

	// InsertRecord stores a new record and assigns its ID and timestamps.
	// Returns ErrDuplicateKey if a record with the same dedup key exists.
	InsertRecord(ctx context.Context, record *core.StoredRecord) (*core.StoredRecord, error)

	// UpdateRecord applies a patch atomically and refreshes UpdatedAt.
	// Returns ErrNotFound if the record doesn't exist.
	UpdateRecord(ctx context.Context, id core.ID, patch core.RecordPatch) (*core.StoredRecord, error)

	// GetRecord retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id core.ID) (*core.StoredRecord, error)

	// FindByOwner returns all records of an owner ordered by ID.
	FindByOwner(ctx context.Context, ownerID string) ([]*core.StoredRecord, error)

	// Close releases resources held by the repository.
	Close() error
}

// SyncRunRepository persists the audit log of reconciliation runs.
type SyncRunRepository interface {
	// CreateSyncRun stores a new run. Returns ErrDuplicateKey if the ID is taken.
	CreateSyncRun(ctx context.Context, run *core.SyncRun) error

	// SaveSyncRun overwrites a run in place.
	// Returns ErrNotFound for unknown runs and ErrRunFinalized if the stored
	// run is already terminal.
	SaveSyncRun(ctx context.Context, run *core.SyncRun) error

	// FindRecentSyncRuns returns up to limit runs of an owner, newest first.
	FindRecentSyncRuns(ctx context.Context, ownerID string, limit int) ([]*core.SyncRun, error)

	// PruneSyncRuns deletes terminal runs started before cutoff and returns
	// the number removed.
	PruneSyncRuns(ctx context.Context, cutoff time.Time) (int, error)

	Close() error
}

// CacheRepository stores memoized computation results.
// Expiry is decided by callers against CacheEntry.ExpiresAt.
type CacheRepository interface {
	// GetEntry returns the entry for key. Returns nil, nil on a miss.
	GetEntry(ctx context.Context, key string) (*core.CacheEntry, error)

	// PutEntry stores an entry, replacing any entry with the same key.
	PutEntry(ctx context.Context, entry *core.CacheEntry) error

	// DeleteEntry removes the entry for key. Deleting a missing key is not an error.
	DeleteEntry(ctx context.Context, key string) error

	// SweepExpired deletes all entries that are expired at now and returns
	// the number removed.
	SweepExpired(ctx context.Context, now time.Time) (int, error)

	Close() error
}
