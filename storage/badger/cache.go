package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
)

// expiryGrace keeps entries in badger past their logical expiry so that
// callers observe and delete them with their own clock.
const expiryGrace = time.Hour

// CacheRepository implements storage.CacheRepository for BadgerDB.
type CacheRepository struct {
	backend *Backend
}

var _ storage.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new CacheRepository.
func NewCacheRepository(backend *Backend) *CacheRepository {
	return &CacheRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns the database.
func (r *CacheRepository) Close() error {
	return nil
}

// GetEntry returns the stored entry regardless of its expiry.
func (r *CacheRepository) GetEntry(ctx context.Context, key string) (*core.CacheEntry, error) {
	var entry *core.CacheEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalCacheEntry(val)
			return unmarshalErr
		})
	}, false)
	return entry, err
}

// PutEntry writes the entry with a native TTL derived from ExpiresAt.
func (r *CacheRepository) PutEntry(ctx context.Context, entry *core.CacheEntry) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		e := badger.NewEntry(makeCacheKey(entry.Key), storage.MarshalCacheEntry(entry))
		if ttl := time.Until(entry.ExpiresAt); ttl > 0 {
			e = e.WithTTL(ttl + expiryGrace)
		}
		if err := tx.SetEntry(e); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteEntry removes an entry.
func (r *CacheRepository) DeleteEntry(ctx context.Context, key string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCacheKey(key)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// SweepExpired removes every entry expired at now.
func (r *CacheRepository) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var expired [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(cacheEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			var entry *core.CacheEntry
			err := item.Value(func(val []byte) error {
				var unmarshalErr error
				entry, unmarshalErr = storage.UnmarshalCacheEntry(val)
				return unmarshalErr
			})
			if err != nil {
				iter.Close()
				return err
			}
			if entry.Expired(now) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		iter.Close()

		for _, key := range expired {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		removed = len(expired)
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return removed, nil
}
