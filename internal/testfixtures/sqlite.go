package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/study-scheduler/internal/persistence/sqlite"
	"github.com/example/study-scheduler/internal/persistence/sqlite/migration"
)

// NewSQLiteStore opens a migrated record store in a temporary file. The store
// is closed when the test finishes.
func NewSQLiteStore(tb testing.TB) *sqlite.Store {
	tb.Helper()

	ctx := context.Background()
	path := filepath.Join(tb.TempDir(), "booking.db")

	store, err := sqlite.Open(ctx, migration.TestSQLiteConfig(path),
		sqlite.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(ctx); err != nil {
		tb.Fatalf("failed to migrate store: %v", err)
	}
	return store
}
