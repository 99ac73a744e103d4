package migration

import (
	"context"
	"io/fs"
	"time"
)

// Migration is a single versioned SQL file.
type Migration struct {
	Version     string // numeric prefix, e.g. "001"
	Description string // name part of the file
	SQL         string
	FilePath    string
	Checksum    string // sha256 of SQL, hex encoded
}

// MigrationManager orchestrates scanning, comparing and applying migrations.
type MigrationManager interface {
	RunMigrations(ctx context.Context) error
	GetAppliedVersions(ctx context.Context) ([]string, error)
	GetPendingMigrations(ctx context.Context) ([]Migration, error)
	GetMigrationStatus(ctx context.Context) (*MigrationStatus, error)
}

// FileScanner reads migration files from a file system.
type FileScanner interface {
	ScanMigrations(fsys fs.FS, dir string) ([]Migration, error)
	ValidateFileName(filename string) error
}

// Executor applies migrations and tracks them in schema_migrations.
type Executor interface {
	InitializeVersionTable(ctx context.Context) error
	ExecuteMigration(ctx context.Context, migration Migration) error
	RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}

// MigrationStatus summarises applied and pending migrations.
type MigrationStatus struct {
	CurrentVersion    string
	PendingCount      int
	AppliedMigrations []AppliedMigration
	PendingMigrations []Migration
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}
