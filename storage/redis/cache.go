// Package redis implements storage.CacheRepository on Redis.
//
// Entries are stored as MUS-encoded values under a key prefix with a native
// TTL slightly past their logical expiry; callers decide expiry against
// CacheEntry.ExpiresAt.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
)

const (
	defaultKeyPrefix = "ledgersync:cache:"
	expiryGrace      = time.Hour
	scanBatch        = 256
)

// CacheRepository stores cache entries in Redis.
type CacheRepository struct {
	client *redis.Client
	prefix string
}

var _ storage.CacheRepository = (*CacheRepository)(nil)

// Option configures a CacheRepository.
type Option func(*CacheRepository)

// WithKeyPrefix namespaces keys, e.g. per environment.
func WithKeyPrefix(prefix string) Option {
	return func(r *CacheRepository) {
		r.prefix = prefix
	}
}

// NewCacheRepository creates a client and verifies the connection.
func NewCacheRepository(ctx context.Context, redisOpts *redis.Options, opts ...Option) (*CacheRepository, error) {
	if redisOpts == nil {
		return nil, errors.New("redis options required")
	}

	client := redis.NewClient(redisOpts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	r := &CacheRepository{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close closes the client.
func (r *CacheRepository) Close() error {
	return r.client.Close()
}

func (r *CacheRepository) GetEntry(ctx context.Context, key string) (*core.CacheEntry, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}
	return storage.UnmarshalCacheEntry(data)
}

func (r *CacheRepository) PutEntry(ctx context.Context, entry *core.CacheEntry) error {
	// zero TTL keeps the key until deleted or swept
	var ttl time.Duration
	if until := time.Until(entry.ExpiresAt); until > 0 {
		ttl = until + expiryGrace
	}
	return translateError(r.client.Set(ctx, r.prefix+entry.Key, storage.MarshalCacheEntry(entry), ttl).Err())
}

func (r *CacheRepository) DeleteEntry(ctx context.Context, key string) error {
	return translateError(r.client.Del(ctx, r.prefix+key).Err())
}

// SweepExpired scans the prefix and deletes entries expired at now.
func (r *CacheRepository) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return removed, translateError(err)
		}
		entry, err := storage.UnmarshalCacheEntry(data)
		if err != nil {
			return removed, fmt.Errorf("decode %s: %w", key, err)
		}
		if !entry.Expired(now) {
			continue
		}
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return removed, translateError(err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, translateError(err)
	}
	return removed, nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("%w: %w", storage.ErrStorageClosed, err)
	}
	return err
}
