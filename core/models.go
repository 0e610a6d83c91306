package core

//go:generate go run ../cmd/musgen

import (
	"time"
)

// ID is the opaque local identifier of a stored record.
// It is assigned from a store sequence on first insert and never changes.
type ID uint64

// RecordStatus is the lifecycle state of a stored record.
type RecordStatus string

const (
	RecordStatusPending  RecordStatus = "pending"
	RecordStatusApproved RecordStatus = "approved"
	RecordStatusRejected RecordStatus = "rejected"
	RecordStatusArchived RecordStatus = "archived"
)

// RecordFields holds the business fields shared by incoming and stored records.
type RecordFields struct {
	Amount        float64
	Description   string
	Date          time.Time
	Category      string
	Vendor        string
	PaymentMethod string
	Notes         string
	Extra         map[string]string // Passthrough fields the engine does not interpret
}

// IncomingRecord is one item of a batch pulled from an external system of record.
// It is transient and never persisted as-is.
type IncomingRecord struct {
	SourceID string // Stable identifier in the external system
	RecordFields
}

// SyncMetadata tracks when a stored record was seen by reconciliation.
type SyncMetadata struct {
	FirstSyncDate     time.Time
	LastSyncDate      time.Time
	ExternalCompanyID string
}

// StoredRecord is the local, persisted counterpart of an external record.
// At most one exists per (OwnerID, SourceSystem, SourceID).
type StoredRecord struct {
	ID           ID
	OwnerID      string
	SourceSystem string
	SourceID     string
	RecordFields
	Metadata   SyncMetadata
	Status     RecordStatus
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// DedupKey returns the key that identifies this record's external counterpart.
func (r *StoredRecord) DedupKey() DedupKey {
	return DedupKey{OwnerID: r.OwnerID, SourceSystem: r.SourceSystem, SourceID: r.SourceID}
}

// DedupKey is the (owner, source system, source id) triple.
type DedupKey struct {
	OwnerID      string
	SourceSystem string
	SourceID     string
}

// RecordPatch describes an in-place update of a stored record.
// Nil fields are left untouched.
type RecordPatch struct {
	Fields       *RecordFields
	LastSyncDate *time.Time
	Status       *RecordStatus
}

// RunStatus is the state of a reconciliation run.
type RunStatus string

const (
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// RunStats aggregates item outcomes for one run.
type RunStats struct {
	TotalItems   int
	NewItems     int
	UpdatedItems int
	FailedItems  int
	DurationMs   int64
}

// SyncRun is the audit log entry of one reconciliation invocation.
type SyncRun struct {
	ID                string // Time-ordered UUID
	OwnerID           string
	ExternalCompanyID string
	SourceSystem      string
	StartedAt         time.Time
	FinishedAt        time.Time
	Stats             RunStats
	Status            RunStatus
	Error             string
}

// Usage counts tokens consumed by a remote provider call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CacheEntry memoizes the result of an expensive remote computation.
type CacheEntry struct {
	Key       string
	Payload   []byte
	Model     string
	Usage     Usage
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is stale at the given instant.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
