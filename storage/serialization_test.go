package storage

import (
	"testing"
	"time"

	"github.com/poiesic/ledgersync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalStoredRecord([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalSyncRun([]byte{0x05, 'a'})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalCacheEntry(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalStoredRecord(t *testing.T) {
	ts := time.Date(2025, 2, 1, 10, 0, 0, 123456000, time.UTC)
	record := &core.StoredRecord{
		ID:           7,
		OwnerID:      "user-1",
		SourceSystem: "quickbooks",
		SourceID:     "inv-1",
		RecordFields: core.RecordFields{Amount: 12.5, Description: "Paper", Date: ts},
		Metadata:     core.SyncMetadata{FirstSyncDate: ts, LastSyncDate: ts, ExternalCompanyID: "c-1"},
		Status:       core.RecordStatusPending,
		InsertedAt:   ts,
	}

	decoded, err := UnmarshalStoredRecord(MarshalStoredRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, decoded, "times come back in UTC and an empty Extra stays nil")
	assert.True(t, decoded.UpdatedAt.IsZero())

	record.Extra = map[string]string{"memo": "net 30", "po": "77"}
	decoded, err = UnmarshalStoredRecord(MarshalStoredRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record.Extra, decoded.Extra)
}

func TestMarshalUnmarshalSyncRun(t *testing.T) {
	start := time.Now().UTC().Truncate(time.Microsecond)
	run := core.NewSyncRun("0192f7a0-0000-7000-8000-000000000001", "user-1", "company-1", "xero", 10, start)
	run.Stats.NewItems = 4
	run.Stats.FailedItems = 1
	require.NoError(t, run.Fail(start.Add(250*time.Millisecond), assert.AnError))

	decoded, err := UnmarshalSyncRun(MarshalSyncRun(run))
	require.NoError(t, err)
	assert.Equal(t, run, decoded)
}

func TestMarshalUnmarshalCacheEntry(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	entry := &core.CacheEntry{
		Key:       "abc",
		Payload:   []byte(`{"category":"travel"}`),
		Model:     "gpt-4o-mini",
		Usage:     core.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}

	decoded, err := UnmarshalCacheEntry(MarshalCacheEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)

	entry.Payload = nil
	decoded, err = UnmarshalCacheEntry(MarshalCacheEntry(entry))
	require.NoError(t, err)
	assert.Nil(t, decoded.Payload)
}

func TestApplyPatch(t *testing.T) {
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	record := &core.StoredRecord{
		ID:           7,
		RecordFields: core.RecordFields{Amount: 1, Description: "old"},
		Metadata:     core.SyncMetadata{FirstSyncDate: first, LastSyncDate: first},
		Status:       core.RecordStatusApproved,
	}

	later := first.Add(24 * time.Hour)
	fields := core.RecordFields{Amount: 2, Description: "new", Extra: map[string]string{"k": "v"}}
	ApplyPatch(record, core.RecordPatch{Fields: &fields, LastSyncDate: &later})

	assert.Equal(t, 2.0, record.Amount)
	assert.Equal(t, "new", record.Description)
	assert.Equal(t, first, record.Metadata.FirstSyncDate)
	assert.Equal(t, later, record.Metadata.LastSyncDate)
	assert.Equal(t, core.RecordStatusApproved, record.Status, "status untouched without a patch value")

	fields.Extra["k"] = "mutated"
	assert.Equal(t, "v", record.Extra["k"], "patch values are copied")
}
