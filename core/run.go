package core

import (
	"fmt"
	"time"
)

// NewSyncRun opens a run in progress for a batch of total items.
func NewSyncRun(id, ownerID, companyID, sourceSystem string, total int, startedAt time.Time) *SyncRun {
	return &SyncRun{
		ID:                id,
		OwnerID:           ownerID,
		ExternalCompanyID: companyID,
		SourceSystem:      sourceSystem,
		StartedAt:         startedAt,
		Stats:             RunStats{TotalItems: total},
		Status:            RunStatusInProgress,
	}
}

// Complete finalizes the run as completed.
func (r *SyncRun) Complete(now time.Time) error {
	return r.finish(now, RunStatusCompleted, "")
}

// Fail finalizes the run as failed with the cause's message.
func (r *SyncRun) Fail(now time.Time, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return r.finish(now, RunStatusFailed, msg)
}

func (r *SyncRun) finish(now time.Time, status RunStatus, msg string) error {
	if r.Status.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, status)
	}
	r.Status = status
	r.Error = msg
	r.FinishedAt = now
	r.Stats.DurationMs = now.Sub(r.StartedAt).Milliseconds()
	return nil
}
