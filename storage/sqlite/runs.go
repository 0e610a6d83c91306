package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
)

const runColumns = `id, owner_id, external_company_id, source_system, started_at, finished_at,
	total_items, new_items, updated_items, failed_items, duration_ms, status, error`

// SyncRunRepository implements storage.SyncRunRepository on SQLite.
type SyncRunRepository struct {
	db *DB
}

var _ storage.SyncRunRepository = (*SyncRunRepository)(nil)

func NewSyncRunRepository(db *DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Close is a no-op; DB owns the connection.
func (r *SyncRunRepository) Close() error {
	return nil
}

func (r *SyncRunRepository) CreateSyncRun(ctx context.Context, run *core.SyncRun) error {
	return r.db.withTx(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO sync_runs(`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, runArgs(run)...)
		return err
	})
}

func (r *SyncRunRepository) SaveSyncRun(ctx context.Context, run *core.SyncRun) error {
	return r.db.withTx(func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM sync_runs WHERE id = ?`, run.ID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		if core.RunStatus(status).Terminal() {
			return storage.ErrRunFinalized
		}

		_, err = tx.ExecContext(ctx, `
		UPDATE sync_runs SET
			external_company_id = ?, finished_at = ?, total_items = ?, new_items = ?,
			updated_items = ?, failed_items = ?, duration_ms = ?, status = ?, error = ?
		WHERE id = ?`,
			run.ExternalCompanyID, toMicros(run.FinishedAt), run.Stats.TotalItems, run.Stats.NewItems,
			run.Stats.UpdatedItems, run.Stats.FailedItems, run.Stats.DurationMs, string(run.Status), run.Error,
			run.ID)
		return err
	})
}

func (r *SyncRunRepository) FindRecentSyncRuns(ctx context.Context, ownerID string, limit int) ([]*core.SyncRun, error) {
	if limit <= 0 {
		return nil, nil
	}

	var out []*core.SyncRun
	err := r.db.withTx(func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+runColumns+` FROM sync_runs
			WHERE owner_id = ? ORDER BY started_at DESC, id DESC LIMIT ?`, ownerID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			run, err := scanRun(rows)
			if err != nil {
				return err
			}
			out = append(out, run)
		}
		return rows.Err()
	})
	return out, err
}

func (r *SyncRunRepository) PruneSyncRuns(ctx context.Context, cutoff time.Time) (int, error) {
	var removed int64
	err := r.db.withTx(func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM sync_runs WHERE status IN (?, ?) AND started_at < ?`,
			string(core.RunStatusCompleted), string(core.RunStatusFailed), toMicros(cutoff))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

func runArgs(run *core.SyncRun) []any {
	return []any{
		run.ID, run.OwnerID, run.ExternalCompanyID, run.SourceSystem,
		toMicros(run.StartedAt), toMicros(run.FinishedAt),
		run.Stats.TotalItems, run.Stats.NewItems, run.Stats.UpdatedItems, run.Stats.FailedItems,
		run.Stats.DurationMs, string(run.Status), run.Error,
	}
}

func scanRun(s scanner) (*core.SyncRun, error) {
	var (
		run               core.SyncRun
		started, finished int64
		status            string
	)
	err := s.Scan(&run.ID, &run.OwnerID, &run.ExternalCompanyID, &run.SourceSystem, &started, &finished,
		&run.Stats.TotalItems, &run.Stats.NewItems, &run.Stats.UpdatedItems, &run.Stats.FailedItems,
		&run.Stats.DurationMs, &status, &run.Error)
	if err != nil {
		return nil, err
	}
	run.StartedAt = fromMicros(started)
	run.FinishedAt = fromMicros(finished)
	run.Status = core.RunStatus(status)
	return &run, nil
}
