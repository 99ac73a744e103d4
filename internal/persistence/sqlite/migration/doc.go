// Package migration applies versioned SQL files to a SQLite database.
//
// Files are read from an fs.FS (typically an embed.FS compiled into the
// binary) and must be named {version}_{description}.sql, for example
// "001_create_record_collections.sql". Versions must form a gap-free
// sequence. Each file runs in its own transaction and is recorded in the
// schema_migrations table together with its checksum, so a file edited after
// it was applied is reported instead of silently skipped.
//
//	manager := migration.NewMigrationManager(
//		migration.NewFileScanner(), migration.NewSQLiteExecutor(db), migrations, "migrations", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
