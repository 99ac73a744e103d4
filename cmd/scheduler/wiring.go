package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/example/study-scheduler/internal/application"
	"github.com/example/study-scheduler/internal/config"
	"github.com/example/study-scheduler/internal/notify"
	"github.com/example/study-scheduler/internal/persistence"
	"github.com/example/study-scheduler/internal/persistence/memory"
	"github.com/example/study-scheduler/internal/persistence/redisstore"
	"github.com/example/study-scheduler/internal/persistence/sqlite"
	"github.com/example/study-scheduler/internal/persistence/sqlite/migration"
	"github.com/example/study-scheduler/internal/venue"
)

type venueCatalog interface {
	application.VenueCatalog
	All() []venue.Venue
}

// openStore returns the configured record store and its close function.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.RecordStore, func() error, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.New()
		return store, store.Close, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store, err := redisstore.NewStore(ctx, &redisstore.Config{RedisClient: client, KeyPrefix: cfg.RedisPrefix})
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, store.Close, nil

	default:
		store, err := sqlite.Open(ctx, migration.DefaultSQLiteConfig(cfg.SQLitePath), sqlite.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		return store, store.Close, nil
	}
}

func loadCatalog(path string) (venueCatalog, error) {
	if path == "" {
		return venue.Default(), nil
	}
	catalog, err := venue.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load venues: %w", err)
	}
	return catalog, nil
}

// buildNotifier chains NATS, the webhook and the outbox in that order,
// skipping transports that are not configured.
func buildNotifier(cfg config.Config, store persistence.RecordStore, logger *slog.Logger) (application.Notifier, func(), error) {
	var (
		senders []notify.Sender
		closers []func()
	)

	if cfg.NATSURL != "" {
		conn, err := notify.ConnectNATS(cfg.NATSURL, "study-scheduler", logger)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := conn.Drain(); err != nil {
				logger.Warn("failed to drain nats connection", "error", err)
			}
		})
		senders = append(senders, notify.NewNATSSender(conn, cfg.NATSSubjectPrefix))
	}
	if cfg.WebhookURL != "" {
		senders = append(senders, notify.NewWebhookSender(cfg.WebhookURL, nil))
	}
	senders = append(senders, notify.NewOutbox(store, nil, nil))

	names := make([]string, 0, len(senders))
	for _, s := range senders {
		names = append(names, s.Name())
	}
	logger.Info("notification chain configured", "senders", names, "admin_email", cfg.NotifyEmail)

	chain := notify.NewChain(cfg.NotifyEmail, senders,
		notify.WithLogger(logger),
		notify.WithOwnerConfirmation(cfg.ConfirmOwners),
	)
	return chain, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}
