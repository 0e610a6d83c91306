package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/ledgersync/core"
)

// Key prefixes for different data types
const (
	storedRecordPrefix      = "strec"
	storedRecordDedupPrefix = "strecdk"
	storedRecordOwnerPrefix = "strecow"
	storedRecordIDSeq       = "strecseq"
	syncRunPrefix           = "synrun"
	syncRunOwnerPrefix      = "synrunow"
	cacheEntryPrefix        = "cache"
)

// keySep separates variable-length components of composite keys.
const keySep = 0x00

// makeStoredRecordKey generates a key for a stored record by ID.
func makeStoredRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", storedRecordPrefix, id))
}

// makeDedupKey generates the unique index key for a dedup triple.
// Format: prefix:owner\x00source\x00sourceID
func makeDedupKey(key core.DedupKey) []byte {
	buf := make([]byte, 0, len(storedRecordDedupPrefix)+3+len(key.OwnerID)+len(key.SourceSystem)+len(key.SourceID))
	buf = append(buf, storedRecordDedupPrefix...)
	buf = append(buf, ':')
	buf = append(buf, key.OwnerID...)
	buf = append(buf, keySep)
	buf = append(buf, key.SourceSystem...)
	buf = append(buf, keySep)
	buf = append(buf, key.SourceID...)
	return buf
}

// makePartialOwnerKey generates the prefix of an owner's record index.
// Format: prefix:owner\x00
func makePartialOwnerKey(ownerID string) []byte {
	buf := make([]byte, 0, len(storedRecordOwnerPrefix)+2+len(ownerID))
	buf = append(buf, storedRecordOwnerPrefix...)
	buf = append(buf, ':')
	buf = append(buf, ownerID...)
	return append(buf, keySep)
}

// makeOwnerKey generates a composite key for the owner index.
// Format: prefix:owner\x00id, with the ID big endian so keys sort by ID.
func makeOwnerKey(ownerID string, id core.ID) []byte {
	prefix := makePartialOwnerKey(ownerID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeSyncRunKey generates a key for a sync run by ID.
func makeSyncRunKey(id string) []byte {
	return []byte(syncRunPrefix + ":" + id)
}

// makePartialSyncRunOwnerKey generates the prefix of an owner's run index.
func makePartialSyncRunOwnerKey(ownerID string) []byte {
	buf := make([]byte, 0, len(syncRunOwnerPrefix)+2+len(ownerID))
	buf = append(buf, syncRunOwnerPrefix...)
	buf = append(buf, ':')
	buf = append(buf, ownerID...)
	return append(buf, keySep)
}

// makeSyncRunOwnerKey generates a composite key for the run index.
// Run IDs are UUIDv7 strings, so keys sort by start time.
func makeSyncRunOwnerKey(ownerID, runID string) []byte {
	return append(makePartialSyncRunOwnerKey(ownerID), runID...)
}

// makeCacheKey generates a key for a cache entry.
func makeCacheKey(key string) []byte {
	return []byte(cacheEntryPrefix + ":" + key)
}

// decodeOwnerKeyID extracts the record ID from an owner index key.
func decodeOwnerKeyID(key []byte, prefixLen int) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[prefixLen:]))
}
