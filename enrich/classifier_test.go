package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/ledgersync/ai"
	"github.com/poiesic/ledgersync/ai/mock"
	"github.com/poiesic/ledgersync/cache"
	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, providers ...*mock.MockProvider) *ai.Registry {
	t.Helper()
	registry := ai.NewRegistry()
	for _, p := range providers {
		require.NoError(t, registry.Register(p.Name(), p))
	}
	return registry
}

func newCache(t *testing.T) *cache.Cache {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return cache.New(stores.Cache)
}

func TestClassifyUsesCache(t *testing.T) {
	provider := mock.NewMockProvider(ai.ProviderOpenAI).
		WithResult("```json\n{\"category\":\"Dining\",\"vendor\":\"Blue Bottle Coffee\",\"confidence\":0.9}\n```")
	c, err := NewClassifier(newRegistry(t, provider), WithCache(newCache(t)))
	require.NoError(t, err)

	payload := map[string]any{"description": "SQ *BLUE BOTTLE", "amount": -6.5}
	cls, err := c.Classify(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, &Classification{Category: "dining", Vendor: "Blue Bottle Coffee", Confidence: 0.9}, cls)

	again, err := c.Classify(context.Background(), map[string]any{"amount": -6.5, "description": "SQ *BLUE BOTTLE"})
	require.NoError(t, err)
	assert.Equal(t, cls, again)
	assert.Equal(t, 1, provider.CallCount(), "second call is served from the cache")

	msgs := provider.LastMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.JSONEq(t, `{"description":"SQ *BLUE BOTTLE","amount":-6.5}`, msgs[1].Content)
}

func TestClassifyRetriesUnparsableOutput(t *testing.T) {
	calls := 0
	provider := mock.NewMockProvider(ai.ProviderOpenAI).WithProcessFunc(
		func(ctx context.Context, messages []ai.Message, opts ai.Options) (*ai.Response, error) {
			calls++
			assert.True(t, opts.JSONMode)
			if calls == 1 {
				return &ai.Response{Result: "Sure! Here is the classification."}, nil
			}
			return &ai.Response{Result: `{"category":"fuel","vendor":"Shell","confidence":0.7}`, Model: "m"}, nil
		})
	c, err := NewClassifier(newRegistry(t, provider), WithBaseDelay(time.Millisecond))
	require.NoError(t, err)

	cls, err := c.Classify(context.Background(), "SHELL OIL 5512")
	require.NoError(t, err)
	assert.Equal(t, "fuel", cls.Category)
	assert.Equal(t, 2, calls)
}

func TestClassifyGivesUp(t *testing.T) {
	provider := mock.NewMockProvider(ai.ProviderOpenAI).WithProcessFunc(
		func(ctx context.Context, messages []ai.Message, opts ai.Options) (*ai.Response, error) {
			return nil, &ai.ProviderError{Provider: ai.ProviderOpenAI, Err: errors.New("503")}
		})
	c, err := NewClassifier(newRegistry(t, provider), WithMaxAttempts(3), WithBaseDelay(time.Millisecond))
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "x")
	assert.ErrorIs(t, err, ai.ErrProviderFailed)
	assert.Equal(t, 3, provider.CallCount())
}

func TestClassifyTimeout(t *testing.T) {
	provider := mock.NewMockProvider(ai.ProviderOpenAI).WithProcessFunc(
		func(ctx context.Context, messages []ai.Message, opts ai.Options) (*ai.Response, error) {
			<-ctx.Done()
			return nil, &ai.ProviderError{Provider: ai.ProviderOpenAI, Err: ctx.Err(), Timeout: true}
		})
	c, err := NewClassifier(newRegistry(t, provider), WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Classify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClassifyFailsOver(t *testing.T) {
	primary := mock.NewMockProvider(ai.ProviderOpenAI)
	primary.SetAvailable(false)
	backup := mock.NewMockProvider(ai.ProviderOllama).WithResult(`{"category":"software","vendor":"GitHub","confidence":1}`)
	c, err := NewClassifier(newRegistry(t, primary, backup))
	require.NoError(t, err)

	cls, err := c.Classify(context.Background(), "GITHUB INC")
	require.NoError(t, err)
	assert.Equal(t, "GitHub", cls.Vendor)
	assert.Zero(t, primary.CallCount())
}

func TestClassifyNoProviders(t *testing.T) {
	c, err := NewClassifier(ai.NewRegistry())
	require.NoError(t, err)
	_, err = c.Classify(context.Background(), "x")
	assert.ErrorIs(t, err, ai.ErrNoProviders)
}

func TestEnrich(t *testing.T) {
	provider := mock.NewMockProvider(ai.ProviderOpenAI).WithResult(`{"category":"travel","vendor":"Uber","confidence":0.8}`)
	c, err := NewClassifier(newRegistry(t, provider))
	require.NoError(t, err)
	ctx := context.Background()

	rec := &core.IncomingRecord{SourceID: "t1", RecordFields: core.RecordFields{
		Description: "UBER *TRIP", Amount: -23.4, Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Vendor: "UBER BV",
	}}
	require.NoError(t, c.Enrich(ctx, rec))
	assert.Equal(t, "travel", rec.Category)
	assert.Equal(t, "UBER BV", rec.Vendor, "existing values are kept")
	assert.Contains(t, provider.LastMessages()[1].Content, `"date":"2025-03-02"`)

	done := &core.IncomingRecord{SourceID: "t2", RecordFields: core.RecordFields{Category: "fees", Vendor: "Bank"}}
	require.NoError(t, c.Enrich(ctx, done))
	assert.Equal(t, 1, provider.CallCount(), "complete records skip the provider")
}

func TestEnrichBelowThreshold(t *testing.T) {
	provider := mock.NewMockProvider(ai.ProviderOpenAI)
	c, err := NewClassifier(newRegistry(t, provider), WithMinConfidence(0.6))
	require.NoError(t, err)

	rec := &core.IncomingRecord{SourceID: "t1", RecordFields: core.RecordFields{Description: "POS 1182"}}
	require.NoError(t, c.Enrich(context.Background(), rec))
	assert.Empty(t, rec.Category)
}

func TestNewClassifierOptions(t *testing.T) {
	_, err := NewClassifier(nil)
	assert.Error(t, err)

	registry := ai.NewRegistry()
	_, err = NewClassifier(registry, WithMaxAttempts(0))
	assert.ErrorIs(t, err, ai.ErrInvalidMaxAttempts)
	_, err = NewClassifier(registry, WithTimeout(0))
	assert.Error(t, err)
	_, err = NewClassifier(registry, WithMinConfidence(2))
	assert.Error(t, err)
}
