package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.DirExists(t, tmpDir)
	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = backend.GetSequence(storedRecordIDSeq)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestRepositoriesAfterClose(t *testing.T) {
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	require.NoError(t, stores.Close())

	ctx := context.Background()
	_, err = stores.Records.FindByDedupKey(ctx, core.DedupKey{OwnerID: "u", SourceSystem: "s", SourceID: "1"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = stores.Records.InsertRecord(ctx, &core.StoredRecord{OwnerID: "u", SourceSystem: "s", SourceID: "1"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = stores.Cache.GetEntry(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestTxConflictTranslated(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	key := []byte("conflict")
	err = backend.WithTx(func(outer *badger.Txn) error {
		if _, err := outer.Get(key); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		// A concurrent writer commits the key read by the outer transaction.
		if err := backend.WithTx(func(inner *badger.Txn) error {
			if err := inner.Set(key, []byte("inner")); err != nil {
				return err
			}
			return inner.Commit()
		}, true); err != nil {
			return err
		}
		if err := outer.Set(key, []byte("outer")); err != nil {
			return err
		}
		return outer.Commit()
	}, true)
	assert.ErrorIs(t, err, storage.ErrTransactionFailed)
}
