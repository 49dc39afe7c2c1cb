package scriptfill

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDocumentStoreContract exercises the behavior every DocumentStore must share.
func testDocumentStoreContract(t *testing.T, newStore func(t *testing.T) DocumentStore) {
	ctx := context.Background()

	t.Run("load missing document", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Load(ctx, "missing")
		require.Error(t, err)
		assert.True(t, IsDocumentNotFound(err))
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("save then load", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, DocKeyEngineState, []byte(`{"mode":"random"}`)))

		data, err := store.Load(ctx, DocKeyEngineState)
		require.NoError(t, err)
		assert.JSONEq(t, `{"mode":"random"}`, string(data))
	})

	t.Run("save replaces document", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, DocKeyPresets, []byte(`{"presets":[]}`)))
		require.NoError(t, store.Save(ctx, DocKeyPresets, []byte(`{"presets":[{"name":"A"}]}`)))

		data, err := store.Load(ctx, DocKeyPresets)
		require.NoError(t, err)
		assert.JSONEq(t, `{"presets":[{"name":"A"}]}`, string(data))
	})

	t.Run("keys sorted", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, DocKeyPresets, []byte(`{}`)))
		require.NoError(t, store.Save(ctx, DocKeyEngineState, []byte(`{}`)))

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{DocKeyEngineState, DocKeyPresets}, keys)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, "doc", []byte(`{}`)))
		require.NoError(t, store.Delete(ctx, "doc"))

		_, err := store.Load(ctx, "doc")
		assert.True(t, IsDocumentNotFound(err))

		err = store.Delete(ctx, "doc")
		assert.True(t, IsDocumentNotFound(err))
	})

	t.Run("rejects empty key", func(t *testing.T) {
		store := newStore(t)
		err := store.Save(ctx, "", []byte(`{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgInvalidDocumentKey)
	})

	t.Run("cancelled context", func(t *testing.T) {
		store := newStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := store.Save(cctx, "doc", []byte(`{}`))
		assert.ErrorIs(t, err, context.Canceled)
		_, err = store.Load(cctx, "doc")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("concurrent saves", func(t *testing.T) {
		store := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Save(ctx, "shared", []byte(`{"n":1}`)))
			}()
		}
		wg.Wait()

		data, err := store.Load(ctx, "shared")
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":1}`, string(data))
	})
}

func TestStorageDriverRegistry(t *testing.T) {
	t.Run("built-in drivers registered", func(t *testing.T) {
		drivers := ListStorageDrivers()
		assert.Contains(t, drivers, StorageDriverNameMemory)
		assert.Contains(t, drivers, StorageDriverNameFilesystem)
		assert.Contains(t, drivers, StorageDriverNamePostgres)
	})

	t.Run("open memory", func(t *testing.T) {
		store, err := OpenStorage(StorageDriverNameMemory, "")
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("open filesystem", func(t *testing.T) {
		store, err := OpenStorage(StorageDriverNameFilesystem, t.TempDir())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &FilesystemStore{}, store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenStorage("nope", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgStorageDriverNotFound)

		var storageErr *StorageError
		require.True(t, errors.As(err, &storageErr))
		assert.Equal(t, "nope", storageErr.Name)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		assert.Panics(t, func() {
			RegisterStorageDriver(StorageDriverNameMemory, &MemoryStorageDriver{})
		})
	})

	t.Run("nil driver panics", func(t *testing.T) {
		assert.Panics(t, func() {
			RegisterStorageDriver("nil-driver", nil)
		})
	})
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := &StorageError{Message: ErrMsgWriteDocument, Name: "presets", Cause: cause}

	assert.Equal(t, "failed to write document: presets: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	notFound := NewDocumentNotFoundError("presets")
	assert.Equal(t, "document not found: presets", notFound.Error())
	assert.True(t, IsDocumentNotFound(notFound))
	assert.False(t, IsDocumentNotFound(err))
}
