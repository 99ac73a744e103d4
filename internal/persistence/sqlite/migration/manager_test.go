package migration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(context.Background(), TestSQLiteConfig(filepath.Join(t.TempDir(), "migrate.db")))
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"m/001_create_notes.sql": {Data: []byte("CREATE TABLE notes (id TEXT PRIMARY KEY);")},
		"m/002_add_body.sql":     {Data: []byte("ALTER TABLE notes ADD COLUMN body TEXT;\nCREATE INDEX idx_notes_body ON notes(body);")},
	}
	manager := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "m", quietLogger())

	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations returned error: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO notes (id, body) VALUES ('n1', 'hello')"); err != nil {
		t.Fatalf("expected migrated schema, insert failed: %v", err)
	}

	status, err := manager.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus returned error: %v", err)
	}
	if status.CurrentVersion != "002" || status.PendingCount != 0 || len(status.AppliedMigrations) != 2 {
		t.Fatalf("unexpected status %+v", status)
	}

	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("second RunMigrations should be a no-op, got %v", err)
	}
}

func TestRunMigrationsDetectsEditedFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	fsys := fstest.MapFS{"m/001_create.sql": {Data: []byte("CREATE TABLE a (x TEXT);")}}
	if err := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "m", quietLogger()).RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations returned error: %v", err)
	}

	fsys["m/001_create.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE a (x TEXT, y TEXT);")}
	err := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "m", quietLogger()).RunMigrations(ctx)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestRunMigrationsRejectsGaps(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	fsys := fstest.MapFS{
		"m/001_a.sql": {Data: []byte("CREATE TABLE a (x TEXT);")},
		"m/003_c.sql": {Data: []byte("CREATE TABLE c (x TEXT);")},
	}
	err := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "m", quietLogger()).RunMigrations(context.Background())
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"m/001_broken.sql": {Data: []byte("CREATE TABLE ok (x TEXT);\nCREATE TABLE ok (x TEXT);")},
	}
	manager := NewMigrationManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "m", quietLogger())

	if err := manager.RunMigrations(ctx); !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}

	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'ok'"); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected partial migration to be rolled back")
	}

	versions, err := manager.GetAppliedVersions(ctx)
	if err != nil {
		t.Fatalf("GetAppliedVersions returned error: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected no applied versions, got %v", versions)
	}
}

func TestSQLiteConfigValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultSQLiteConfig("x.db").Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	bad := DefaultSQLiteConfig("x.db")
	bad.JournalMode = "SIDEWAYS"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected invalid journal mode to be rejected")
	}
	if err := DefaultSQLiteConfig(" ").Validate(); err == nil {
		t.Fatalf("expected empty path to be rejected")
	}
}
