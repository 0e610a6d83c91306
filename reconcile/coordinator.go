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

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
)

const (
	DefaultChunkSize   = 100
	DefaultConcurrency = 8
	DefaultRunTimeout  = 10 * time.Minute

	// finalizeTimeout bounds the save of a failed run after the run
	// context is gone.
	finalizeTimeout = 10 * time.Second
)

// CompanyResolver maps an (owner, source system) pair to the identifier of
// the external company the records belong to.
type CompanyResolver interface {
	ResolveExternalCompanyID(ctx context.Context, ownerID, sourceSystem string) (string, error)
}

// Enricher fills in missing fields of an incoming record before it is
// upserted. Errors are logged and the record proceeds unenriched.
type Enricher interface {
	Enrich(ctx context.Context, record *core.IncomingRecord) error
}

// ProgressFunc is called after every chunk with the number of items done.
type ProgressFunc func(done, total int)

// Coordinator runs batches through an Engine and audits each run.
type Coordinator struct {
	engine      *Engine
	runs        storage.SyncRunRepository
	pool        *ants.Pool
	chunkSize   int
	concurrency int
	runTimeout  time.Duration
	locks       *runLocks
	resolver    CompanyResolver
	enricher    Enricher
	progress    ProgressFunc
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithChunkSize sets how many items are processed before the next chunk starts.
func WithChunkSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}
		c.chunkSize = size
		return nil
	}
}

// WithConcurrency sets the worker pool size used inside a chunk.
func WithConcurrency(workers int) Option {
	return func(c *Coordinator) error {
		if workers < 1 {
			workers = 1
		}
		c.concurrency = workers
		return nil
	}
}

// WithRunTimeout bounds a whole run.
func WithRunTimeout(d time.Duration) Option {
	return func(c *Coordinator) error {
		if d <= 0 {
			return fmt.Errorf("run timeout must be positive, got %s", d)
		}
		c.runTimeout = d
		return nil
	}
}

// WithoutRunLock lets runs for the same owner and source system overlap.
func WithoutRunLock() Option {
	return func(c *Coordinator) error {
		c.locks = nil
		return nil
	}
}

// WithCompanyResolver sets how external company ids are found.
func WithCompanyResolver(r CompanyResolver) Option {
	return func(c *Coordinator) error {
		c.resolver = r
		return nil
	}
}

// WithEnricher runs e on every valid item before its upsert.
func WithEnricher(e Enricher) Option {
	return func(c *Coordinator) error {
		c.enricher = e
		return nil
	}
}

// WithProgress registers a callback invoked after each chunk.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Coordinator) error {
		c.progress = fn
		return nil
	}
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) error {
		c.now = now
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a coordinator. Call Release when done with it.
func NewCoordinator(engine *Engine, runs storage.SyncRunRepository, opts ...Option) (*Coordinator, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if runs == nil {
		return nil, ErrSyncRunRepositoryRequired
	}

	c := &Coordinator{
		engine:      engine,
		runs:        runs,
		chunkSize:   DefaultChunkSize,
		concurrency: DefaultConcurrency,
		runTimeout:  DefaultRunTimeout,
		locks:       newRunLocks(),
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "coordinator")

	pool, err := ants.NewPool(c.concurrency, ants.WithPanicHandler(func(v any) {
		c.logger.Error("worker panicked", "panic", v)
	}))
	if err != nil {
		return nil, err
	}
	c.pool = pool
	return c, nil
}

// Release stops the worker pool.
func (c *Coordinator) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// Reconcile merges incoming into storage for (ownerID, sourceSystem).
//
// processed holds, in input order, the stored record of every item that
// was created, updated or found unchanged; failed items are omitted. The
// returned run is always finalized. A non-nil error means the run failed
// as a whole.
func (c *Coordinator) Reconcile(ctx context.Context, ownerID, sourceSystem string, incoming []core.IncomingRecord) ([]*core.StoredRecord, *core.SyncRun, error) {
	if err := core.ValidateScope(ownerID, sourceSystem); err != nil {
		return nil, nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, c.runTimeout)
	defer cancel()

	companyID := c.resolveCompany(runCtx, ownerID, sourceSystem)
	runID, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("generate run id: %w", err)
	}
	run := core.NewSyncRun(runID.String(), ownerID, companyID, sourceSystem, len(incoming), c.timestamp())
	if err := c.runs.CreateSyncRun(runCtx, run); err != nil {
		return nil, nil, fmt.Errorf("create sync run: %w", err)
	}

	logger := c.logger.With("run_id", run.ID, "owner_id", ownerID, "source_system", sourceSystem)
	logger.Info("sync run started", "items", len(incoming))

	if c.locks != nil {
		unlock, err := c.locks.acquire(runCtx, ownerID+"\x00"+sourceSystem)
		if err != nil {
			return nil, run, c.fail(ctx, logger, run, fmt.Errorf("acquire run lock: %w", err))
		}
		defer unlock()
	}

	slots := make([]*core.StoredRecord, len(incoming))
	for start := 0; start < len(incoming); start += c.chunkSize {
		end := min(start+c.chunkSize, len(incoming))
		if err := runCtx.Err(); err != nil {
			return compact(slots), run, c.fail(ctx, logger, run, err)
		}

		tally, err := c.processChunk(runCtx, logger, ownerID, sourceSystem, companyID, incoming[start:end], slots[start:end])
		run.Stats.NewItems += int(tally.created.Load())
		run.Stats.UpdatedItems += int(tally.updated.Load())
		run.Stats.FailedItems += int(tally.failed.Load())
		if err != nil {
			return compact(slots), run, c.fail(ctx, logger, run, err)
		}
		logger.Debug("chunk done", "from", start, "to", end)
		if c.progress != nil {
			c.progress(end, len(incoming))
		}
	}

	if err := run.Complete(c.timestamp()); err != nil {
		logger.Error("failed to complete sync run", "err", err)
		return compact(slots), run, err
	}
	saveCtx, cancelSave := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancelSave()
	if err := c.runs.SaveSyncRun(saveCtx, run); err != nil {
		logger.Error("failed to save completed sync run", "err", err)
		return compact(slots), run, fmt.Errorf("save completed sync run: %w", err)
	}
	logger.Info("sync run completed",
		"new", run.Stats.NewItems,
		"updated", run.Stats.UpdatedItems,
		"failed", run.Stats.FailedItems,
		"duration_ms", run.Stats.DurationMs)
	return compact(slots), run, nil
}

type chunkTally struct {
	created atomic.Int64
	updated atomic.Int64
	failed  atomic.Int64
}

// processChunk runs one chunk on the pool and waits for every item. Items
// sharing a source id go to the same worker in input order.
func (c *Coordinator) processChunk(ctx context.Context, logger *slog.Logger, ownerID, sourceSystem, companyID string,
	items []core.IncomingRecord, slots []*core.StoredRecord) (*chunkTally, error) {
	tally := &chunkTally{}

	var (
		hardOnce sync.Once
		hardErr  error
		wg       sync.WaitGroup
	)
	setHard := func(err error) {
		hardOnce.Do(func() { hardErr = err })
	}

	for _, group := range groupBySourceID(items) {
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			for _, i := range group {
				if ctx.Err() != nil {
					setHard(ctx.Err())
					return
				}
				stored, outcome, err := c.processItem(ctx, logger, ownerID, sourceSystem, companyID, items[i])
				if err != nil {
					if isHard(err) {
						setHard(err)
						return
					}
					tally.failed.Add(1)
					logger.Warn("item failed", "source_id", items[i].SourceID, "err", err)
					continue
				}
				slots[i] = stored
				switch outcome {
				case OutcomeCreated:
					tally.created.Add(1)
				case OutcomeUpdated:
					tally.updated.Add(1)
				}
			}
		})
		if err != nil {
			wg.Done()
			setHard(fmt.Errorf("submit to worker pool: %w", err))
			break
		}
	}
	wg.Wait()
	return tally, hardErr
}

// processItem validates, enriches and upserts a single record. Panics are
// converted into soft item errors.
func (c *Coordinator) processItem(ctx context.Context, logger *slog.Logger, ownerID, sourceSystem, companyID string,
	item core.IncomingRecord) (stored *core.StoredRecord, outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			stored, outcome = nil, OutcomeUnchanged
			err = fmt.Errorf("%w: %v", ErrItemPanicked, r)
		}
	}()

	if err := core.ValidateIncomingRecord(&item); err != nil {
		return nil, OutcomeUnchanged, err
	}
	item.RecordFields = item.RecordFields.Clone()

	if c.enricher != nil {
		if err := c.enricher.Enrich(ctx, &item); err != nil {
			logger.Warn("enrichment failed, continuing without it", "source_id", item.SourceID, "err", err)
		}
	}
	return c.engine.upsert(ctx, ownerID, sourceSystem, companyID, &item)
}

// fail finalizes run as failed and returns cause, joined with any error
// from saving the run.
func (c *Coordinator) fail(ctx context.Context, logger *slog.Logger, run *core.SyncRun, cause error) error {
	if err := run.Fail(c.timestamp(), cause); err != nil {
		return errors.Join(cause, err)
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()
	if err := c.runs.SaveSyncRun(saveCtx, run); err != nil {
		logger.Error("failed to save failed sync run", "err", err)
		cause = errors.Join(cause, fmt.Errorf("save sync run: %w", err))
	}
	logger.Error("sync run failed",
		"new", run.Stats.NewItems,
		"updated", run.Stats.UpdatedItems,
		"failed", run.Stats.FailedItems,
		"err", run.Error)
	return cause
}

func (c *Coordinator) resolveCompany(ctx context.Context, ownerID, sourceSystem string) string {
	if c.resolver != nil {
		id, err := c.resolver.ResolveExternalCompanyID(ctx, ownerID, sourceSystem)
		if err != nil {
			c.logger.Warn("company resolution failed, using derived id",
				"owner_id", ownerID, "source_system", sourceSystem, "err", err)
		} else if id != "" {
			return id
		}
	}
	return DerivedCompanyID(ownerID, sourceSystem)
}

func (c *Coordinator) timestamp() time.Time {
	return c.now().UTC().Truncate(time.Microsecond)
}

// DerivedCompanyID is the deterministic company id used when no resolver
// provides one.
func DerivedCompanyID(ownerID, sourceSystem string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(ownerID+":"+sourceSystem)).String()
}

// isHard reports whether err must abort the run.
func isHard(err error) bool {
	return errors.Is(err, storage.ErrStorageClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// groupBySourceID returns item indexes grouped by source id in first-seen
// order. Items without a source id each form their own group.
func groupBySourceID(items []core.IncomingRecord) [][]int {
	groups := make([][]int, 0, len(items))
	bySource := make(map[string]int, len(items))
	for i := range items {
		id := strings.TrimSpace(items[i].SourceID)
		if id == "" {
			groups = append(groups, []int{i})
			continue
		}
		if g, ok := bySource[id]; ok {
			groups[g] = append(groups[g], i)
			continue
		}
		bySource[id] = len(groups)
		groups = append(groups, []int{i})
	}
	return groups
}

func compact(slots []*core.StoredRecord) []*core.StoredRecord {
	out := make([]*core.StoredRecord, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
