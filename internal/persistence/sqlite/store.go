// Package sqlite stores record collections in a SQLite database through the
// pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/study-scheduler/internal/persistence"
	"github.com/example/study-scheduler/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

// Store implements persistence.RecordStore. Each (collection, owner) pair is
// one row holding the JSON-encoded record set.
type Store struct {
	pool   *ConnectionPool
	retry  RetryConfig
	now    func() time.Time
	logger *slog.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used for migrations and slow retries.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetryConfig overrides lock-contention backoff.
func WithRetryConfig(config RetryConfig) Option {
	return func(s *Store) {
		s.retry = config
	}
}

// Open connects to the database at config.Path. Call Migrate before use.
func Open(ctx context.Context, config migration.SQLiteConfig, opts ...Option) (*Store, error) {
	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, err
	}
	store := &Store{
		pool:   pool,
		retry:  DefaultRetryConfig(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	manager := migration.NewMigrationManager(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrationFiles,
		migrationDir,
		s.logger,
	)
	return manager.RunMigrations(ctx)
}

// Load implements persistence.RecordStore.
func (s *Store) Load(ctx context.Context, collection, ownerKey string) (persistence.RecordSet, error) {
	if err := persistence.ValidateCollection(collection); err != nil {
		return nil, err
	}

	const query = `SELECT payload FROM record_collections WHERE collection = ? AND owner_key = ?`
	var payload string
	err := withRetry(ctx, s.retry, func() error {
		return s.pool.DB().GetContext(ctx, &payload, query, collection, ownerKey)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.RecordSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s: %w", collection, err)
	}

	records, err := persistence.DecodeRecordSet([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s: %w", collection, err)
	}
	return records, nil
}

type collectionRow struct {
	Collection  string `db:"collection"`
	OwnerKey    string `db:"owner_key"`
	Payload     string `db:"payload"`
	RecordCount int    `db:"record_count"`
	UpdatedAt   string `db:"updated_at"`
}

// Save implements persistence.RecordStore. The row is upserted inside a transaction.
func (s *Store) Save(ctx context.Context, collection, ownerKey string, records persistence.RecordSet) error {
	if err := persistence.ValidateCollection(collection); err != nil {
		return err
	}
	payload, err := persistence.EncodeRecordSet(records)
	if err != nil {
		return err
	}

	row := collectionRow{
		Collection:  collection,
		OwnerKey:    ownerKey,
		Payload:     string(payload),
		RecordCount: len(records),
		UpdatedAt:   s.now().UTC().Format(time.RFC3339Nano),
	}

	const upsert = `
INSERT INTO record_collections (collection, owner_key, payload, record_count, updated_at)
VALUES (:collection, :owner_key, :payload, :record_count, :updated_at)
ON CONFLICT (collection, owner_key) DO UPDATE SET
	payload = excluded.payload,
	record_count = excluded.record_count,
	updated_at = excluded.updated_at`

	err = withRetry(ctx, s.retry, func() error {
		return s.pool.WithTransaction(ctx, func(tx *sqlx.Tx) error {
			_, execErr := tx.NamedExecContext(ctx, upsert, row)
			return execErr
		})
	})
	if err != nil {
		return fmt.Errorf("sqlite: save %s: %w", collection, err)
	}
	return nil
}

// Owners implements persistence.OwnerIndex.
func (s *Store) Owners(ctx context.Context, collection string) ([]string, error) {
	if err := persistence.ValidateCollection(collection); err != nil {
		return nil, err
	}
	const query = `SELECT owner_key FROM record_collections WHERE collection = ? ORDER BY owner_key`

	var owners []string
	if err := s.pool.DB().SelectContext(ctx, &owners, query, collection); err != nil {
		return nil, fmt.Errorf("sqlite: owners %s: %w", collection, mapError(err))
	}
	return owners, nil
}
