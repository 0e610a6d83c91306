// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
)

// DefaultTTL is the entry lifetime used when Put is given no TTL.
const DefaultTTL = 24 * time.Hour

// Cache is a TTL cache over a storage.CacheRepository.
// It is safe for concurrent use.
type Cache struct {
	repo       storage.CacheRepository
	defaultTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats are hit and miss counts since the cache was created.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithDefaultTTL sets the lifetime used when Put receives ttl <= 0.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a cache backed by repo.
func New(repo storage.CacheRepository, opts ...Option) *Cache {
	c := &Cache{
		repo:       repo,
		defaultTTL: DefaultTTL,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "cache")
	return c
}

// Get returns the live entry for (input, instruction). An expired entry is
// deleted and reported as a miss.
func (c *Cache) Get(ctx context.Context, input any, instruction string) (*core.CacheEntry, bool) {
	key, err := Key(input, instruction)
	if err != nil {
		c.logger.Warn("cannot derive cache key", "err", err)
		c.misses.Add(1)
		return nil, false
	}

	entry, err := c.repo.GetEntry(ctx, key)
	if err != nil {
		c.logger.Warn("cache lookup failed", "key", key, "err", err)
		c.misses.Add(1)
		return nil, false
	}
	if entry == nil {
		c.misses.Add(1)
		return nil, false
	}

	if entry.Expired(c.now()) {
		if err := c.repo.DeleteEntry(ctx, key); err != nil {
			c.logger.Warn("failed to delete expired entry", "key", key, "err", err)
		}
		c.logger.Debug("cache entry expired", "key", key, "expired_at", entry.ExpiresAt)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return entry, true
}

// Put stores payload for (input, instruction), replacing any existing entry.
// A ttl <= 0 uses the default TTL.
func (c *Cache) Put(ctx context.Context, input any, instruction string, payload []byte, model string, usage core.Usage, ttl time.Duration) {
	key, err := Key(input, instruction)
	if err != nil {
		c.logger.Warn("cannot derive cache key", "err", err)
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if err := c.repo.DeleteEntry(ctx, key); err != nil {
		c.logger.Warn("failed to replace cache entry", "key", key, "err", err)
		return
	}

	now := c.now().UTC().Truncate(time.Microsecond)
	entry := &core.CacheEntry{
		Key:       key,
		Payload:   payload,
		Model:     model,
		Usage:     usage,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := c.repo.PutEntry(ctx, entry); err != nil {
		c.logger.Warn("failed to store cache entry", "key", key, "err", err)
	}
}

// Sweep deletes every entry expired at the current time and returns how
// many were removed.
func (c *Cache) Sweep(ctx context.Context) int {
	removed, err := c.repo.SweepExpired(ctx, c.now())
	if err != nil {
		c.logger.Warn("cache sweep failed", "removed", removed, "err", err)
	}
	if removed > 0 {
		c.logger.Debug("swept expired cache entries", "removed", removed)
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
// The returned channel is closed when the sweeper stops.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep(ctx)
			}
		}
	}()
	return done
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}
