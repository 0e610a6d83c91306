package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
)

// RecordRepository implements storage.RecordRepository for BadgerDB.
//
// Each record is stored under its ID with two secondary indices: a unique
// dedup index and an owner index for listing.
type RecordRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(backend *Backend) (*RecordRepository, error) {
	idSeq, err := backend.GetSequence(storedRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &RecordRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *RecordRepository) Close() error {
	if r.backend.IsClosed() {
		return nil
	}
	return r.idSeq.Release()
}

// FindByDedupKey looks up a record through the dedup index.
func (r *RecordRepository) FindByDedupKey(ctx context.Context, key core.DedupKey) (*core.StoredRecord, error) {
	var result *core.StoredRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, found, err := readDedupIndex(tx, key)
		if err != nil || !found {
			return err
		}
		result, err = readStoredRecord(tx, id)
		return err
	}, false)
	return result, err
}

// InsertRecord stores a new record with a fresh ID. A commit conflict with
// a concurrent insert of the same dedup key is reported as
// storage.ErrDuplicateKey.
func (r *RecordRepository) InsertRecord(ctx context.Context, record *core.StoredRecord) (*core.StoredRecord, error) {
	dedupKey := record.DedupKey()
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if _, found, err := readDedupIndex(tx, dedupKey); err != nil {
			return err
		} else if found {
			return storage.ErrDuplicateKey
		}

		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		record.ID = core.ID(nextID)

		record.InsertedAt = time.Now().UTC().Truncate(time.Microsecond)
		record.UpdatedAt = record.InsertedAt
		if record.Status == "" {
			record.Status = core.RecordStatusPending
		}

		if err := tx.Set(makeStoredRecordKey(record.ID), storage.MarshalStoredRecord(record)); err != nil {
			return err
		}
		if err := tx.Set(makeDedupKey(dedupKey), storage.MarshalID(record.ID)); err != nil {
			return err
		}
		if err := tx.Set(makeOwnerKey(record.OwnerID, record.ID), nil); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if errors.Is(err, badger.ErrConflict) {
		if taken, lookupErr := r.dedupTaken(dedupKey); lookupErr == nil && taken {
			err = storage.ErrDuplicateKey
		}
	}
	if err != nil {
		record.ID = 0
		return nil, err
	}
	return record, nil
}

// dedupTaken reports whether key is already indexed.
func (r *RecordRepository) dedupTaken(key core.DedupKey) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		_, found, err = readDedupIndex(tx, key)
		return err
	}, false)
	return found, err
}

// UpdateRecord applies patch to the stored record under one transaction.
func (r *RecordRepository) UpdateRecord(ctx context.Context, id core.ID, patch core.RecordPatch) (*core.StoredRecord, error) {
	var result *core.StoredRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		record, err := readStoredRecord(tx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}

		storage.ApplyPatch(record, patch)
		record.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

		if err := tx.Set(makeStoredRecordKey(id), storage.MarshalStoredRecord(record)); err != nil {
			return err
		}
		result = record
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetRecord retrieves a single record by ID.
func (r *RecordRepository) GetRecord(ctx context.Context, id core.ID) (*core.StoredRecord, error) {
	var result *core.StoredRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readStoredRecord(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindByOwner walks the owner index in ID order.
func (r *RecordRepository) FindByOwner(ctx context.Context, ownerID string) ([]*core.StoredRecord, error) {
	var results []*core.StoredRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialOwnerKey(ownerID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id := decodeOwnerKeyID(iter.Item().Key(), len(prefix))
			record, err := readStoredRecord(tx, id)
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	return results, err
}

// readStoredRecord returns nil, nil when the record doesn't exist.
func readStoredRecord(tx *badger.Txn, id core.ID) (*core.StoredRecord, error) {
	item, err := tx.Get(makeStoredRecordKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.StoredRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalStoredRecord(val)
		return unmarshalErr
	})
	return record, err
}

func readDedupIndex(tx *badger.Txn, key core.DedupKey) (core.ID, bool, error) {
	item, err := tx.Get(makeDedupKey(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	var id core.ID
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		id, unmarshalErr = storage.UnmarshalID(val)
		return unmarshalErr
	})
	return id, err == nil, err
}
