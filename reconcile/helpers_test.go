package reconcile

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
	"github.com/poiesic/ledgersync/storage/badger"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func newStores(t *testing.T) *badger.Stores {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return stores
}

func newCoordinator(t *testing.T, records storage.RecordRepository, runs storage.SyncRunRepository, clock *fakeClock, opts ...Option) *Coordinator {
	t.Helper()
	engine, err := NewEngine(records, WithEngineClock(clock.Now))
	require.NoError(t, err)
	coord, err := NewCoordinator(engine, runs, append([]Option{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(coord.Release)
	return coord
}

func incoming(sourceID string, amount float64) core.IncomingRecord {
	return core.IncomingRecord{
		SourceID: sourceID,
		RecordFields: core.RecordFields{
			Amount:      amount,
			Description: "Invoice " + sourceID,
			Date:        epoch,
			Category:    "services",
			Vendor:      "Acme",
		},
	}
}

func batch(n int) []core.IncomingRecord {
	items := make([]core.IncomingRecord, n)
	for i := range items {
		items[i] = incoming(fmt.Sprintf("inv-%03d", i), float64(i*10))
	}
	return items
}

// faultyRecords wraps a repository and injects failures per source id.
type faultyRecords struct {
	storage.RecordRepository

	mu      sync.Mutex
	errs    map[string]error
	panics  map[string]bool
	lookups map[string]int
}

func newFaultyRecords(repo storage.RecordRepository) *faultyRecords {
	return &faultyRecords{
		RecordRepository: repo,
		errs:             make(map[string]error),
		panics:           make(map[string]bool),
		lookups:          make(map[string]int),
	}
}

func (f *faultyRecords) failOn(sourceID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[sourceID] = err
}

func (f *faultyRecords) panicOn(sourceID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panics[sourceID] = true
}

func (f *faultyRecords) FindByDedupKey(ctx context.Context, key core.DedupKey) (*core.StoredRecord, error) {
	f.mu.Lock()
	err, panics := f.errs[key.SourceID], f.panics[key.SourceID]
	f.lookups[key.SourceID]++
	f.mu.Unlock()

	if panics {
		panic("corrupt record " + key.SourceID)
	}
	if err != nil {
		return nil, err
	}
	return f.RecordRepository.FindByDedupKey(ctx, key)
}

type staticResolver struct {
	id  string
	err error
}

func (r staticResolver) ResolveExternalCompanyID(ctx context.Context, ownerID, sourceSystem string) (string, error) {
	return r.id, r.err
}
