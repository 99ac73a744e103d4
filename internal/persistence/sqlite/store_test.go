package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/study-scheduler/internal/persistence"
	"github.com/example/study-scheduler/internal/persistence/sqlite/migration"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := Open(ctx, migration.TestSQLiteConfig(filepath.Join(t.TempDir(), "records.db")),
		WithLogger(logger),
		WithClock(func() time.Time { return time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestStoreLoadMissingCollectionIsEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	records, err := store.Load(context.Background(), persistence.CollectionTimetables, "owner-1")
	require.NoError(t, err)
	require.Empty(t, records)
	require.NotNil(t, records)
}

func TestStoreSaveAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	records := persistence.RecordSet{
		{"id": "s-1", "ownerId": "owner-1", "floor": nil, "username": "amina"},
		{"id": "s-2", "ownerId": "owner-1", "floor": "Rooftop"},
	}
	require.NoError(t, store.Save(ctx, persistence.CollectionTimetables, "owner-1", records))

	loaded, err := store.Load(ctx, persistence.CollectionTimetables, "owner-1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "amina", loaded[0].String("username"))
	require.True(t, loaded[0].Has("floor"))
	require.Nil(t, loaded[0]["floor"])
	require.Equal(t, "Rooftop", loaded[1].String("floor"))

	other, err := store.Load(ctx, persistence.CollectionTimetables, "owner-2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestStoreSaveIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	records := persistence.RecordSet{{"id": "b-1"}}

	require.NoError(t, store.Save(ctx, persistence.CollectionBookings, persistence.SharedOwnerKey, records))
	require.NoError(t, store.Save(ctx, persistence.CollectionBookings, persistence.SharedOwnerKey, records))

	loaded, err := store.Load(ctx, persistence.CollectionBookings, persistence.SharedOwnerKey)
	require.NoError(t, err)
	require.Equal(t, persistence.RecordSet{{"id": "b-1"}}, loaded)

	var rows int
	require.NoError(t, store.pool.DB().GetContext(ctx, &rows, `SELECT COUNT(*) FROM record_collections`))
	require.Equal(t, 1, rows)
}

func TestStoreSaveReplacesSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, persistence.CollectionBookings, "", persistence.RecordSet{{"id": "a"}, {"id": "b"}}))
	require.NoError(t, store.Save(ctx, persistence.CollectionBookings, "", persistence.RecordSet{{"id": "b"}}))

	loaded, err := store.Load(ctx, persistence.CollectionBookings, "")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "b", loaded[0].String("id"))
}

func TestStoreRejectsInvalidCollection(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := store.Load(context.Background(), "", "owner")
	require.True(t, errors.Is(err, persistence.ErrInvalidCollection))
}

func TestStoreCorruptPayload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.pool.DB().ExecContext(ctx,
		`INSERT INTO record_collections (collection, owner_key, payload, updated_at) VALUES ('bookings', '', '{broken', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = store.Load(ctx, persistence.CollectionBookings, "")
	require.ErrorIs(t, err, persistence.ErrCorruptRecord)
}

func TestMigrateIsRepeatable(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestWithRetryStopsOnNonLockErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	boom := errors.New("boom")
	err := withRetry(context.Background(), DefaultRetryConfig(), func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestWithRetryRetriesLockedErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	config := RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2}
	err := withRetry(context.Background(), config, func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	calls = 0
	err = withRetry(context.Background(), config, func() error {
		calls++
		return errors.New("database is locked")
	})
	require.ErrorIs(t, err, ErrDatabaseLocked)
	require.Equal(t, 3, calls)
}

func TestStoreOwners(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Save(ctx, persistence.CollectionTimetables, "owner-b", nil))
	require.NoError(t, store.Save(ctx, persistence.CollectionTimetables, "owner-a", nil))
	require.NoError(t, store.Save(ctx, persistence.CollectionBookings, "", nil))

	owners, err := store.Owners(ctx, persistence.CollectionTimetables)
	require.NoError(t, err)
	require.Equal(t, []string{"owner-a", "owner-b"}, owners)
}
