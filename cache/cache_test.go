package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, opts ...Option) (*Cache, *badger.Stores, *fakeClock) {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(stores.Cache, opts...), stores, clock
}

func TestCacheRoundTrip(t *testing.T) {
	c, stores, clock := newTestCache(t)
	ctx := context.Background()
	input := map[string]any{"description": "UBER *TRIP", "amount": 23.5}
	usage := core.Usage{PromptTokens: 40, CompletionTokens: 8, TotalTokens: 48}

	_, ok := c.Get(ctx, input, "classify")
	assert.False(t, ok)

	c.Put(ctx, input, "classify", []byte(`{"category":"travel"}`), "gpt-4o-mini", usage, time.Hour)

	entry, ok := c.Get(ctx, input, "classify")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"category":"travel"}`), entry.Payload)
	assert.Equal(t, "gpt-4o-mini", entry.Model)
	assert.Equal(t, usage, entry.Usage)
	assert.Equal(t, entry.CreatedAt.Add(time.Hour), entry.ExpiresAt)

	_, ok = c.Get(ctx, input, "summarize")
	assert.False(t, ok, "instruction is part of the key")

	clock.Advance(2 * time.Hour)
	_, ok = c.Get(ctx, input, "classify")
	assert.False(t, ok)

	// the expired entry was deleted, not just hidden
	key, err := Key(input, "classify")
	require.NoError(t, err)
	stored, err := stores.Cache.GetEntry(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, stored)

	assert.Equal(t, Stats{Hits: 1, Misses: 3}, c.Stats())
}

func TestCachePutReplaces(t *testing.T) {
	c, _, clock := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "input", "classify", []byte("first"), "m1", core.Usage{}, time.Minute)
	clock.Advance(30 * time.Second)
	c.Put(ctx, "input", "classify", []byte("second"), "m2", core.Usage{}, time.Minute)

	clock.Advance(45 * time.Second)
	entry, ok := c.Get(ctx, "input", "classify")
	require.True(t, ok, "second put restarts the lifetime")
	assert.Equal(t, []byte("second"), entry.Payload)
	assert.Equal(t, "m2", entry.Model)
}

func TestCacheDefaultTTL(t *testing.T) {
	c, _, clock := newTestCache(t, WithDefaultTTL(10*time.Minute))
	ctx := context.Background()

	c.Put(ctx, "input", "classify", []byte("x"), "m", core.Usage{}, 0)
	entry, ok := c.Get(ctx, "input", "classify")
	require.True(t, ok)
	assert.Equal(t, 10*time.Minute, entry.ExpiresAt.Sub(entry.CreatedAt))

	clock.Advance(10 * time.Minute)
	_, ok = c.Get(ctx, "input", "classify")
	assert.False(t, ok, "an entry expiring exactly now is stale")
}

func TestCacheSweep(t *testing.T) {
	c, _, clock := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "a", "classify", []byte("a"), "m", core.Usage{}, time.Minute)
	c.Put(ctx, "b", "classify", []byte("b"), "m", core.Usage{}, time.Hour)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, c.Sweep(ctx))

	_, ok := c.Get(ctx, "b", "classify")
	assert.True(t, ok)
}

func TestCacheStartSweeper(t *testing.T) {
	c, stores, clock := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())

	c.Put(ctx, "a", "classify", []byte("a"), "m", core.Usage{}, time.Minute)
	clock.Advance(time.Hour)
	key, err := Key("a", "classify")
	require.NoError(t, err)

	done := c.StartSweeper(ctx, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		entry, err := stores.Cache.GetEntry(ctx, key)
		return err == nil && entry == nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestCacheFailsSoft(t *testing.T) {
	c, stores, _ := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, stores.Close())

	assert.NotPanics(t, func() {
		c.Put(ctx, "input", "classify", []byte("x"), "m", core.Usage{}, time.Minute)
	})
	_, ok := c.Get(ctx, "input", "classify")
	assert.False(t, ok)
	assert.Zero(t, c.Sweep(ctx))

	_, ok = c.Get(ctx, func() {}, "classify")
	assert.False(t, ok, "unencodable input is a miss")
}
