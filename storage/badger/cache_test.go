package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/ledgersync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(key string, now time.Time, ttl time.Duration) *core.CacheEntry {
	return &core.CacheEntry{
		Key:       key,
		Payload:   []byte(`{"category":"meals"}`),
		Model:     "test-model",
		Usage:     core.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestCacheEntryRoundTrip(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	entry := newEntry("k1", now, time.Hour)
	require.NoError(t, stores.Cache.PutEntry(ctx, entry))

	got, err := stores.Cache.GetEntry(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	miss, err := stores.Cache.GetEntry(ctx, "k2")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestCacheEntryReplaceAndDelete(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, stores.Cache.PutEntry(ctx, newEntry("k1", now, time.Hour)))
	replacement := newEntry("k1", now, 2*time.Hour)
	replacement.Payload = []byte(`{"category":"travel"}`)
	require.NoError(t, stores.Cache.PutEntry(ctx, replacement))

	got, err := stores.Cache.GetEntry(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, replacement.Payload, got.Payload)

	require.NoError(t, stores.Cache.DeleteEntry(ctx, "k1"))
	require.NoError(t, stores.Cache.DeleteEntry(ctx, "missing"))
	got, err = stores.Cache.GetEntry(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheEntryStoredWithPastExpiry(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	// Logical expiry is the caller's decision; the store keeps the entry.
	require.NoError(t, stores.Cache.PutEntry(ctx, newEntry("old", past, time.Minute)))
	got, err := stores.Cache.GetEntry(ctx, "old")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Expired(time.Now()))
}

func TestCacheSweepExpired(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, stores.Cache.PutEntry(ctx, newEntry("short", now, time.Minute)))
	require.NoError(t, stores.Cache.PutEntry(ctx, newEntry("long", now, time.Hour)))

	removed, err := stores.Cache.SweepExpired(ctx, now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	short, err := stores.Cache.GetEntry(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, short)

	long, err := stores.Cache.GetEntry(ctx, "long")
	require.NoError(t, err)
	assert.NotNil(t, long)
}
