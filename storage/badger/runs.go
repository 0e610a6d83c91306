package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
)

// SyncRunRepository implements storage.SyncRunRepository for BadgerDB.
type SyncRunRepository struct {
	backend *Backend
}

var _ storage.SyncRunRepository = (*SyncRunRepository)(nil)

// NewSyncRunRepository creates a new SyncRunRepository.
func NewSyncRunRepository(backend *Backend) *SyncRunRepository {
	return &SyncRunRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns the database.
func (r *SyncRunRepository) Close() error {
	return nil
}

// CreateSyncRun stores a new run and indexes it under its owner.
func (r *SyncRunRepository) CreateSyncRun(ctx context.Context, run *core.SyncRun) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSyncRunKey(run.ID)
		existing, err := readSyncRun(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}

		if err := tx.Set(key, storage.MarshalSyncRun(run)); err != nil {
			return err
		}
		if err := tx.Set(makeSyncRunOwnerKey(run.OwnerID, run.ID), nil); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// SaveSyncRun overwrites a run that is still in progress.
func (r *SyncRunRepository) SaveSyncRun(ctx context.Context, run *core.SyncRun) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSyncRunKey(run.ID)
		existing, err := readSyncRun(tx, key)
		if err != nil {
			return err
		}
		if existing == nil {
			return storage.ErrNotFound
		}
		if existing.Status.Terminal() {
			return storage.ErrRunFinalized
		}

		if err := tx.Set(key, storage.MarshalSyncRun(run)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// FindRecentSyncRuns iterates the owner index backwards from the newest run.
func (r *SyncRunRepository) FindRecentSyncRuns(ctx context.Context, ownerID string, limit int) ([]*core.SyncRun, error) {
	if limit <= 0 {
		return nil, nil
	}

	var results []*core.SyncRun
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialSyncRunOwnerKey(ownerID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		for iter.Seek(seek); iter.Valid() && len(results) < limit; iter.Next() {
			runID := string(iter.Item().Key()[len(prefix):])
			run, err := readSyncRun(tx, makeSyncRunKey(runID))
			if err != nil {
				return err
			}
			if run != nil {
				results = append(results, run)
			}
		}
		return nil
	}, false)
	return results, err
}

// PruneSyncRuns deletes terminal runs that started before cutoff.
func (r *SyncRunRepository) PruneSyncRuns(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var stale []*core.SyncRun
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(syncRunPrefix + ":")
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var run *core.SyncRun
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				run, unmarshalErr = storage.UnmarshalSyncRun(val)
				return unmarshalErr
			})
			if err != nil {
				iter.Close()
				return err
			}
			if run.Status.Terminal() && run.StartedAt.Before(cutoff) {
				stale = append(stale, run)
			}
		}
		iter.Close()

		for _, run := range stale {
			if err := tx.Delete(makeSyncRunKey(run.ID)); err != nil {
				return err
			}
			if err := tx.Delete(makeSyncRunOwnerKey(run.OwnerID, run.ID)); err != nil {
				return err
			}
		}
		removed = len(stale)
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// readSyncRun returns nil, nil when the run doesn't exist.
func readSyncRun(tx *badger.Txn, key []byte) (*core.SyncRun, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var run *core.SyncRun
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		run, unmarshalErr = storage.UnmarshalSyncRun(val)
		return unmarshalErr
	})
	return run, err
}
