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


package storage

import (
	"fmt"
	"time"

	"github.com/poiesic/ledgersync/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalStoredRecord serializes a StoredRecord to bytes.
func MarshalStoredRecord(record *core.StoredRecord) []byte {
	buf := make([]byte, core.StoredRecordMUS.Size(*record))
	core.StoredRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalStoredRecord deserializes a StoredRecord from bytes.
func UnmarshalStoredRecord(data []byte) (*core.StoredRecord, error) {
	record, _, err := core.StoredRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	record.Date = utc(record.Date)
	record.Metadata.FirstSyncDate = utc(record.Metadata.FirstSyncDate)
	record.Metadata.LastSyncDate = utc(record.Metadata.LastSyncDate)
	record.InsertedAt = utc(record.InsertedAt)
	record.UpdatedAt = utc(record.UpdatedAt)
	if len(record.Extra) == 0 {
		record.Extra = nil
	}
	return &record, nil
}

// MarshalSyncRun serializes a SyncRun to bytes.
func MarshalSyncRun(run *core.SyncRun) []byte {
	buf := make([]byte, core.SyncRunMUS.Size(*run))
	core.SyncRunMUS.Marshal(*run, buf)
	return buf
}

// UnmarshalSyncRun deserializes a SyncRun from bytes.
func UnmarshalSyncRun(data []byte) (*core.SyncRun, error) {
	run, _, err := core.SyncRunMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	run.StartedAt = utc(run.StartedAt)
	run.FinishedAt = utc(run.FinishedAt)
	return &run, nil
}

// MarshalCacheEntry serializes a CacheEntry to bytes.
func MarshalCacheEntry(entry *core.CacheEntry) []byte {
	buf := make([]byte, core.CacheEntryMUS.Size(*entry))
	core.CacheEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalCacheEntry deserializes a CacheEntry from bytes.
func UnmarshalCacheEntry(data []byte) (*core.CacheEntry, error) {
	entry, _, err := core.CacheEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	entry.CreatedAt = utc(entry.CreatedAt)
	entry.ExpiresAt = utc(entry.ExpiresAt)
	if len(entry.Payload) == 0 {
		entry.Payload = nil
	}
	return &entry, nil
}

// utc undoes the local zone the codecs decode into. Zero stays zero.
func utc(t time.Time) time.Time {
	return t.UTC()
}

// ApplyPatch applies a RecordPatch to a record in place.
// Shared by all RecordRepository implementations.
func ApplyPatch(record *core.StoredRecord, patch core.RecordPatch) {
	if patch.Fields != nil {
		record.RecordFields = patch.Fields.Clone()
	}
	if patch.LastSyncDate != nil {
		record.Metadata.LastSyncDate = *patch.LastSyncDate
	}
	if patch.Status != nil {
		record.Status = *patch.Status
	}
}
