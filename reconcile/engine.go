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
	"time"

	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
)

// Outcome is the effect an upsert had on storage.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Engine performs change detection and upserts of single records.
// It is safe for concurrent use.
type Engine struct {
	records  storage.RecordRepository
	compare  []core.Field
	preserve []core.Field
	now      func() time.Time
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine) error

// WithCompareFields sets the fields whose change triggers an update.
// Defaults to core.DefaultCompareFields.
func WithCompareFields(fields ...core.Field) EngineOption {
	return func(e *Engine) error {
		if len(fields) == 0 {
			return errors.New("at least one compare field is required")
		}
		for _, f := range fields {
			if _, err := core.ParseField(string(f)); err != nil {
				return err
			}
		}
		e.compare = append([]core.Field(nil), fields...)
		return nil
	}
}

// WithPreservedFields sets the fields whose stored value is kept when the
// incoming value is empty. Defaults to core.DefaultPreservedFields; call
// with no fields to always overwrite.
func WithPreservedFields(fields ...core.Field) EngineOption {
	return func(e *Engine) error {
		for _, f := range fields {
			if _, err := core.ParseField(string(f)); err != nil {
				return err
			}
		}
		e.preserve = append([]core.Field(nil), fields...)
		return nil
	}
}

// WithEngineClock replaces time.Now for sync timestamps.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) error {
		e.now = now
		return nil
	}
}

// WithEngineLogger sets the logger. Defaults to slog.Default().
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an Engine writing to records.
func NewEngine(records storage.RecordRepository, opts ...EngineOption) (*Engine, error) {
	if records == nil {
		return nil, ErrRecordRepositoryRequired
	}
	e := &Engine{
		records:  records,
		compare:  core.DefaultCompareFields,
		preserve: core.DefaultPreservedFields,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "upsert-engine")
	return e, nil
}

// Upsert reconciles one incoming record. Persistence errors are returned
// as is and never retried.
func (e *Engine) Upsert(ctx context.Context, ownerID, sourceSystem string, incoming *core.IncomingRecord) (*core.StoredRecord, Outcome, error) {
	return e.upsert(ctx, ownerID, sourceSystem, "", incoming)
}

func (e *Engine) upsert(ctx context.Context, ownerID, sourceSystem, companyID string, incoming *core.IncomingRecord) (*core.StoredRecord, Outcome, error) {
	if incoming == nil || strings.TrimSpace(incoming.SourceID) == "" {
		return nil, OutcomeUnchanged, core.ErrMissingSourceID
	}
	key := core.DedupKey{OwnerID: ownerID, SourceSystem: sourceSystem, SourceID: incoming.SourceID}

	// stores keep microsecond dates
	fields := incoming.RecordFields.Clone()
	fields.Date = fields.Date.Truncate(time.Microsecond)

	existing, err := e.records.FindByDedupKey(ctx, key)
	if err != nil {
		return nil, OutcomeUnchanged, fmt.Errorf("find %s: %w", key.SourceID, err)
	}

	if existing == nil {
		created, err := e.insert(ctx, key, companyID, &fields)
		if err == nil {
			return created, OutcomeCreated, nil
		}
		if !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, OutcomeUnchanged, fmt.Errorf("insert %s: %w", key.SourceID, err)
		}

		// lost an insert race; the winner's record is compared like any other
		existing, err = e.records.FindByDedupKey(ctx, key)
		if err != nil {
			return nil, OutcomeUnchanged, fmt.Errorf("find %s: %w", key.SourceID, err)
		}
		if existing == nil {
			return nil, OutcomeUnchanged, fmt.Errorf("insert %s: %w", key.SourceID, storage.ErrDuplicateKey)
		}
	}

	core.FillEmpty(e.preserve, &fields, &existing.RecordFields)
	changed := core.ChangedFields(e.compare, &existing.RecordFields, &fields)
	if len(changed) == 0 {
		return existing, OutcomeUnchanged, nil
	}

	synced := e.timestamp()
	updated, err := e.records.UpdateRecord(ctx, existing.ID, core.RecordPatch{
		Fields:       &fields,
		LastSyncDate: &synced,
	})
	if err != nil {
		return nil, OutcomeUnchanged, fmt.Errorf("update %s: %w", key.SourceID, err)
	}
	e.logger.Debug("record updated", "source_id", key.SourceID, "id", updated.ID, "changed", changed)
	return updated, OutcomeUpdated, nil
}

func (e *Engine) insert(ctx context.Context, key core.DedupKey, companyID string, fields *core.RecordFields) (*core.StoredRecord, error) {
	synced := e.timestamp()
	record := &core.StoredRecord{
		OwnerID:      key.OwnerID,
		SourceSystem: key.SourceSystem,
		SourceID:     key.SourceID,
		RecordFields: fields.Clone(),
		Metadata: core.SyncMetadata{
			FirstSyncDate:     synced,
			LastSyncDate:      synced,
			ExternalCompanyID: companyID,
		},
		Status: core.RecordStatusPending,
	}
	return e.records.InsertRecord(ctx, record)
}

func (e *Engine) timestamp() time.Time {
	return e.now().UTC().Truncate(time.Microsecond)
}
