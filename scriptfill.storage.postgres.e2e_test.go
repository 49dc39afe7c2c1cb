//go:build integration

package scriptfill

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer creates an ephemeral PostgreSQL container for testing.
func setupPostgresContainer(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("scriptfill_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return connStr, cleanup
}

func TestPostgresStore_E2E(t *testing.T) {
	connStr, cleanup := setupPostgresContainer(t)
	defer cleanup()

	t.Run("contract", func(t *testing.T) {
		prefix := 0
		testDocumentStoreContract(t, func(t *testing.T) DocumentStore {
			prefix++
			store, err := NewPostgresStore(PostgresConfig{
				ConnectionString: connStr,
				AutoMigrate:      true,
				TablePrefix:      "contract" + string(rune('a'+prefix)) + "_",
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		})
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		ctx := context.Background()
		store, err := NewPostgresStore(PostgresConfig{ConnectionString: connStr, AutoMigrate: true})
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.RunMigrations(ctx))
		version, err := store.CurrentSchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(postgresMigrations), version)
	})

	t.Run("save bumps revision", func(t *testing.T) {
		ctx := context.Background()
		store, err := NewPostgresStore(PostgresConfig{ConnectionString: connStr, AutoMigrate: true, TablePrefix: "rev_"})
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Save(ctx, DocKeyPresets, []byte(`{"presets":[]}`)))
		require.NoError(t, store.Save(ctx, DocKeyPresets, []byte(`{"presets":[]}`)))
		revision, err := store.Revision(ctx, DocKeyPresets)
		require.NoError(t, err)
		assert.Equal(t, int64(2), revision)

		_, err = store.Revision(ctx, "missing")
		assert.True(t, IsDocumentNotFound(err))
	})

	t.Run("driver registry", func(t *testing.T) {
		store, err := OpenStorage(StorageDriverNamePostgres, connStr)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &PostgresStore{}, store)
	})

	t.Run("engine state survives reopen", func(t *testing.T) {
		ctx := context.Background()
		library := NewValueLibrary(nil, map[string][]string{"材质": {"棉", "麻"}})

		store, err := OpenStorage(StorageDriverNamePostgres, connStr)
		require.NoError(t, err)
		engine := MustNew(WithStore(store), WithLibrary(library))
		require.NoError(t, engine.SetMatchingMode(ctx, MatchingModeSequential))
		require.NoError(t, engine.SetDeleteOnUseFields(ctx, []string{"材质"}))
		result, err := engine.Generate(ctx, GenerateRequest{Template: "{材质}"})
		require.NoError(t, err)
		require.NoError(t, engine.Commit(ctx, result))
		_, err = engine.SavePreset(ctx, "A", "{材质}")
		require.NoError(t, err)
		require.NoError(t, store.Close())

		store, err = OpenStorage(StorageDriverNamePostgres, connStr)
		require.NoError(t, err)
		defer store.Close()
		reopened, err := Open(ctx, WithStore(store), WithLibrary(library))
		require.NoError(t, err)

		assert.Equal(t, MatchingModeSequential, reopened.MatchingMode())
		assert.Equal(t, []string{"棉"}, reopened.Tracker().Used("材质"))
		assert.Equal(t, []string{"A"}, reopened.Presets().Names())
	})

	t.Run("rejects empty connection string", func(t *testing.T) {
		_, err := NewPostgresStore(PostgresConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgPostgresEmptyConnString)
	})
}
