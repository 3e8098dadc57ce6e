package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/2beens/gymtracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// sqlite connections are cleaned up by database/sql in the background
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

// testStoreContract runs the behaviour every Store implementation must share.
func testStoreContract(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, storage.KeyWorkouts)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Save(ctx, storage.KeyWorkouts, []byte(`[{"id":1}]`)))
	blob, err := store.Load(ctx, storage.KeyWorkouts)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(blob))

	// whole-value overwrite
	require.NoError(t, store.Save(ctx, storage.KeyWorkouts, []byte(`[]`)))
	blob, err = store.Load(ctx, storage.KeyWorkouts)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(blob))

	// keys are independent
	_, err = store.Load(ctx, storage.KeyExercises)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, store.Save(ctx, storage.KeyExercises, []byte(`[{"id":8,"name":"Lunges","category":"Legs"}]`)))
	blob, err = store.Load(ctx, storage.KeyWorkouts)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(blob))

	require.NoError(t, store.Close())
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, storage.NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	blob := []byte(`[1]`)
	require.NoError(t, store.Save(ctx, "k", blob))
	blob[1] = '2'

	loaded, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(loaded))
}

func TestFileStore(t *testing.T) {
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	testStoreContract(t, store)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, storage.KeyWorkouts, []byte(`[{"id":7}]`)))
	require.NoError(t, store.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	reopened, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	blob, err := reopened.Load(ctx, storage.KeyWorkouts)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":7}]`, string(blob))
}

func TestSQLiteStore(t *testing.T) {
	store, err := storage.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "db", "gym.db"))
	require.NoError(t, err)
	testStoreContract(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "gym.db")

	store, err := storage.NewSQLiteStore(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, storage.KeyExercises, []byte(`[]`)))
	require.NoError(t, store.Close())

	reopened, err := storage.NewSQLiteStore(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	blob, err := reopened.Load(ctx, storage.KeyExercises)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(blob))
}

func TestCachedStore(t *testing.T) {
	testStoreContract(t, storage.NewCachedStore(storage.NewMemoryStore(), 1))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	store, err := storage.New(ctx, storage.Params{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, store)

	store, err = storage.New(ctx, storage.Params{DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &storage.FileStore{}, store)

	store, err = storage.New(ctx, storage.Params{Driver: "SQLite", DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &storage.SQLiteStore{}, store)
	require.NoError(t, store.Close())

	store, err = storage.New(ctx, storage.Params{Driver: "memory", CacheEnabled: true, CacheSizeMB: 1})
	require.NoError(t, err)
	assert.IsType(t, &storage.CachedStore{}, store)

	_, err = storage.New(ctx, storage.Params{Driver: "localStorage"})
	assert.Error(t, err)

	_, err = storage.New(ctx, storage.Params{
		Driver:         storage.DriverPostgres,
		PostgresHost:   "localhost",
		PostgresPort:   "not-a-port",
		PostgresDBName: "gymtracker",
	})
	assert.ErrorContains(t, err, "parse db config")
}
