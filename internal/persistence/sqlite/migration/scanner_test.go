package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestScanMigrations(t *testing.T) {
	t.Parallel()

	scanner := NewFileScanner()

	t.Run("sorts numerically and computes checksums", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{
			"migrations/010_add_index.sql":    {Data: []byte("CREATE INDEX idx ON t(a);")},
			"migrations/002_create_table.sql": {Data: []byte("-- header\nCREATE TABLE t (a TEXT);")},
			"migrations/README.md":            {Data: []byte("ignored")},
		}
		migrations, err := scanner.ScanMigrations(fsys, "migrations")
		if err != nil {
			t.Fatalf("ScanMigrations returned error: %v", err)
		}
		if len(migrations) != 2 {
			t.Fatalf("expected 2 migrations, got %d", len(migrations))
		}
		if migrations[0].Version != "002" || migrations[1].Version != "010" {
			t.Fatalf("unexpected order: %s, %s", migrations[0].Version, migrations[1].Version)
		}
		if migrations[0].Description != "create table" {
			t.Fatalf("unexpected description %q", migrations[0].Description)
		}
		if len(migrations[0].Checksum) != 64 {
			t.Fatalf("expected sha256 hex checksum, got %q", migrations[0].Checksum)
		}
	})

	t.Run("rejects badly named files", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{"migrations/create.sql": {Data: []byte("SELECT 1;")}}
		if _, err := scanner.ScanMigrations(fsys, "migrations"); !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{
			"migrations/001_a.sql":  {Data: []byte("SELECT 1;")},
			"migrations/0001_b.sql": {Data: []byte("SELECT 1;")},
		}
		if _, err := scanner.ScanMigrations(fsys, "migrations"); !errors.Is(err, ErrDuplicateVersion) {
			t.Fatalf("expected ErrDuplicateVersion, got %v", err)
		}
	})

	t.Run("rejects comment-only files", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{"migrations/001_empty.sql": {Data: []byte("-- nothing here\n")}}
		if _, err := scanner.ScanMigrations(fsys, "migrations"); !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})

	t.Run("missing directory is a filesystem error", func(t *testing.T) {
		t.Parallel()
		_, err := scanner.ScanMigrations(fstest.MapFS{}, "absent")
		var fsErr *FileSystemError
		if !errors.As(err, &fsErr) {
			t.Fatalf("expected FileSystemError, got %v", err)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	got := splitStatements("-- comment\nCREATE TABLE a (x TEXT);\n\n  CREATE TABLE b (y TEXT);\n-- trailing\n")
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (x TEXT)" {
		t.Fatalf("unexpected first statement %q", got[0])
	}
}
