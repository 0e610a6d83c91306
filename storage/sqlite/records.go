package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
)

const recordColumns = `id, owner_id, source_system, source_id, amount, description, record_date,
	category, vendor, payment_method, notes, extra, first_sync_date, last_sync_date,
	external_company_id, status, inserted_at, updated_at`

// RecordRepository implements storage.RecordRepository on SQLite.
type RecordRepository struct {
	db *DB
}

var _ storage.RecordRepository = (*RecordRepository)(nil)

func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Close is a no-op; DB owns the connection.
func (r *RecordRepository) Close() error {
	return nil
}

func (r *RecordRepository) FindByDedupKey(ctx context.Context, key core.DedupKey) (*core.StoredRecord, error) {
	var record *core.StoredRecord
	err := r.db.withTx(func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM stored_records
			WHERE owner_id = ? AND source_system = ? AND source_id = ?`,
			key.OwnerID, key.SourceSystem, key.SourceID)
		var err error
		record, err = scanRecord(row)
		if errors.Is(err, sql.ErrNoRows) {
			record = nil
			return nil
		}
		return err
	})
	return record, err
}

func (r *RecordRepository) InsertRecord(ctx context.Context, record *core.StoredRecord) (*core.StoredRecord, error) {
	extra, err := marshalExtra(record.Extra)
	if err != nil {
		return nil, err
	}

	err = r.db.withTx(func(tx *sql.Tx) error {
		record.InsertedAt = now()
		record.UpdatedAt = record.InsertedAt
		if record.Status == "" {
			record.Status = core.RecordStatusPending
		}

		res, err := tx.ExecContext(ctx, `
		INSERT INTO stored_records(owner_id, source_system, source_id, amount, description, record_date,
			category, vendor, payment_method, notes, extra, first_sync_date, last_sync_date,
			external_company_id, status, inserted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.OwnerID, record.SourceSystem, record.SourceID,
			record.Amount, record.Description, toMicros(record.Date),
			record.Category, record.Vendor, record.PaymentMethod, record.Notes, extra,
			toMicros(record.Metadata.FirstSyncDate), toMicros(record.Metadata.LastSyncDate),
			record.Metadata.ExternalCompanyID, string(record.Status),
			toMicros(record.InsertedAt), toMicros(record.UpdatedAt))
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		record.ID = core.ID(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *RecordRepository) UpdateRecord(ctx context.Context, id core.ID, patch core.RecordPatch) (*core.StoredRecord, error) {
	var result *core.StoredRecord
	err := r.db.withTx(func(tx *sql.Tx) error {
		record, err := scanRecord(tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM stored_records WHERE id = ?`, int64(id)))
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		storage.ApplyPatch(record, patch)
		record.UpdatedAt = now()

		extra, err := marshalExtra(record.Extra)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
		UPDATE stored_records SET
			amount = ?, description = ?, record_date = ?, category = ?, vendor = ?,
			payment_method = ?, notes = ?, extra = ?, last_sync_date = ?, status = ?, updated_at = ?
		WHERE id = ?`,
			record.Amount, record.Description, toMicros(record.Date), record.Category, record.Vendor,
			record.PaymentMethod, record.Notes, extra, toMicros(record.Metadata.LastSyncDate),
			string(record.Status), toMicros(record.UpdatedAt), int64(id))
		if err != nil {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *RecordRepository) GetRecord(ctx context.Context, id core.ID) (*core.StoredRecord, error) {
	var record *core.StoredRecord
	err := r.db.withTx(func(tx *sql.Tx) error {
		var err error
		record, err = scanRecord(tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM stored_records WHERE id = ?`, int64(id)))
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *RecordRepository) FindByOwner(ctx context.Context, ownerID string) ([]*core.StoredRecord, error) {
	var out []*core.StoredRecord
	err := r.db.withTx(func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+recordColumns+` FROM stored_records WHERE owner_id = ? ORDER BY id`, ownerID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			record, err := scanRecord(rows)
			if err != nil {
				return err
			}
			out = append(out, record)
		}
		return rows.Err()
	})
	return out, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*core.StoredRecord, error) {
	var (
		record                               core.StoredRecord
		id                                   int64
		date, first, last, inserted, updated int64
		extra, status                        string
	)
	err := s.Scan(&id, &record.OwnerID, &record.SourceSystem, &record.SourceID,
		&record.Amount, &record.Description, &date,
		&record.Category, &record.Vendor, &record.PaymentMethod, &record.Notes, &extra,
		&first, &last, &record.Metadata.ExternalCompanyID, &status, &inserted, &updated)
	if err != nil {
		return nil, err
	}

	record.ID = core.ID(id)
	record.Date = fromMicros(date)
	record.Metadata.FirstSyncDate = fromMicros(first)
	record.Metadata.LastSyncDate = fromMicros(last)
	record.Status = core.RecordStatus(status)
	record.InsertedAt = fromMicros(inserted)
	record.UpdatedAt = fromMicros(updated)
	if record.Extra, err = unmarshalExtra(extra); err != nil {
		return nil, err
	}
	return &record, nil
}

func marshalExtra(extra map[string]string) (string, error) {
	if len(extra) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return "", errors.Join(storage.ErrSerializationFailed, err)
	}
	return string(data), nil
}

func unmarshalExtra(data string) (map[string]string, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	var extra map[string]string
	if err := json.Unmarshal([]byte(data), &extra); err != nil {
		return nil, errors.Join(storage.ErrSerializationFailed, err)
	}
	return extra, nil
}
