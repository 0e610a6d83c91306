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


// Package ledgersync wires stores, providers and the classification cache
// into a ready-to-use reconciliation setup.
//
//	cfg, err := config.Load("")
//	ledger, err := ledgersync.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ledger.Close()
//
//	coord, err := ledger.NewCoordinator()
//	defer coord.Release()
//	processed, run, err := coord.Reconcile(ctx, ownerID, "quickbooks", batch)
package ledgersync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/poiesic/ledgersync/ai"
	"github.com/poiesic/ledgersync/ai/langchain"
	"github.com/poiesic/ledgersync/cache"
	"github.com/poiesic/ledgersync/config"
	"github.com/poiesic/ledgersync/enrich"
	"github.com/poiesic/ledgersync/reconcile"
	"github.com/poiesic/ledgersync/storage"
	"github.com/poiesic/ledgersync/storage/badger"
	"github.com/poiesic/ledgersync/storage/redis"
	"github.com/poiesic/ledgersync/storage/sqlite"
)

// Ledger owns the stores and shared services of one process.
type Ledger struct {
	cfg       config.Config
	records   storage.RecordRepository
	runs      storage.SyncRunRepository
	cacheRepo storage.CacheRepository
	registry  *ai.Registry
	cache     *cache.Cache
	closers   []func() error
	// shared is handed to components, which add their own component attribute.
	shared    *slog.Logger
	logger    *slog.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	registry *ai.Registry
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry uses registry instead of building providers from the config.
func WithRegistry(registry *ai.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// Open opens the configured stores and registers the enabled providers.
// A configuration without any usable provider is not an error; the
// classifier then reports ai.ErrNoProviders.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*Ledger, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Ledger{cfg: cfg, shared: o.logger, logger: o.logger.With("component", "ledger")}
	if err := l.openStorage(); err != nil {
		return nil, err
	}
	if err := l.openCache(ctx); err != nil {
		l.Close()
		return nil, err
	}

	l.registry = o.registry
	if l.registry == nil {
		l.registry = ai.NewRegistry(ai.WithDefault(cfg.Providers.Default), ai.WithRegistryLogger(l.shared))
		err := langchain.RegisterAll(l.registry, cfg.AI(), langchain.WithLogger(l.shared))
		if errors.Is(err, ai.ErrNoProviders) {
			l.logger.Warn("no AI providers configured, enrichment disabled")
		} else if err != nil {
			l.Close()
			return nil, fmt.Errorf("register providers: %w", err)
		}
	}

	l.cache = cache.New(l.cacheRepo, cache.WithDefaultTTL(cfg.Cache.TTL), cache.WithLogger(l.shared))
	return l, nil
}

func (l *Ledger) openStorage() error {
	switch l.cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(l.cfg.Storage.Path, sqlite.WithLogger(l.shared))
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		l.records = sqlite.NewRecordRepository(db)
		l.runs = sqlite.NewSyncRunRepository(db)
		l.closers = append(l.closers, db.Close)
	default:
		backend, err := badger.OpenBackend(l.cfg.Storage.Path, false, badger.WithLogger(l.shared))
		if err != nil {
			return fmt.Errorf("open badger: %w", err)
		}
		stores, err := badger.NewStores(backend)
		if err != nil {
			backend.Close()
			return err
		}
		l.records = stores.Records
		l.runs = stores.Runs
		l.cacheRepo = stores.Cache
		l.closers = append(l.closers, stores.Close)
	}
	return nil
}

func (l *Ledger) openCache(ctx context.Context) error {
	if l.cfg.Cache.Driver != config.DriverRedis {
		return nil
	}
	repo, err := redis.NewCacheRepository(ctx, &goredis.Options{Addr: l.cfg.Cache.RedisAddr})
	if err != nil {
		return fmt.Errorf("connect redis cache: %w", err)
	}
	l.cacheRepo = repo
	// close the cache before the stores
	l.closers = append([]func() error{repo.Close}, l.closers...)
	return nil
}

// Close releases every store. It is safe to call more than once.
func (l *Ledger) Close() error {
	var errs []error
	for _, closeFn := range l.closers {
		if err := closeFn(); err != nil {
			l.logger.Error("error closing store", "err", err)
			errs = append(errs, err)
		}
	}
	l.closers = nil
	return errors.Join(errs...)
}

func (l *Ledger) Records() storage.RecordRepository {
	return l.records
}

func (l *Ledger) Runs() storage.SyncRunRepository {
	return l.runs
}

func (l *Ledger) Cache() *cache.Cache {
	return l.cache
}

func (l *Ledger) Registry() *ai.Registry {
	return l.registry
}

// NewClassifier creates a cached classifier over the ledger's providers.
func (l *Ledger) NewClassifier(opts ...enrich.Option) (*enrich.Classifier, error) {
	base := []enrich.Option{
		enrich.WithCache(l.cache),
		enrich.WithLogger(l.shared),
	}
	if l.cfg.Reconcile.EnrichTimeout > 0 {
		base = append(base, enrich.WithTimeout(l.cfg.Reconcile.EnrichTimeout))
	}
	return enrich.NewClassifier(l.registry, append(base, opts...)...)
}

// NewCoordinator creates a coordinator configured from the reconcile
// section. Enrichment is attached when reconcile.enrich is set. Callers
// must Release the result.
func (l *Ledger) NewCoordinator(opts ...reconcile.Option) (*reconcile.Coordinator, error) {
	fields, err := l.cfg.Fields()
	if err != nil {
		return nil, err
	}
	engine, err := reconcile.NewEngine(l.records,
		reconcile.WithCompareFields(fields...),
		reconcile.WithEngineLogger(l.shared))
	if err != nil {
		return nil, err
	}

	base := []reconcile.Option{
		reconcile.WithChunkSize(l.cfg.Reconcile.ChunkSize),
		reconcile.WithConcurrency(l.cfg.Reconcile.Concurrency),
		reconcile.WithLogger(l.shared),
	}
	if l.cfg.Reconcile.RunTimeout > 0 {
		base = append(base, reconcile.WithRunTimeout(l.cfg.Reconcile.RunTimeout))
	}
	if l.cfg.Reconcile.Enrich {
		classifier, err := l.NewClassifier()
		if err != nil {
			return nil, err
		}
		base = append(base, reconcile.WithEnricher(classifier))
	}
	return reconcile.NewCoordinator(engine, l.runs, append(base, opts...)...)
}

// StartSweeper removes expired cache entries every cache.sweep_interval
// until ctx is cancelled.
func (l *Ledger) StartSweeper(ctx context.Context) <-chan struct{} {
	return l.cache.StartSweeper(ctx, l.cfg.Cache.SweepInterval)
}

// PruneRuns deletes finished sync runs that started more than retention ago.
func (l *Ledger) PruneRuns(ctx context.Context, retention time.Duration) (int, error) {
	return l.runs.PruneSyncRuns(ctx, time.Now().Add(-retention))
}
