package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/study-scheduler/internal/application"
	"github.com/example/study-scheduler/internal/config"
	httptransport "github.com/example/study-scheduler/internal/http"
	"github.com/example/study-scheduler/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("scheduler stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Error("failed to close store", "error", cerr)
		}
	}()

	catalog, err := loadCatalog(cfg.VenuesFile)
	if err != nil {
		return err
	}

	notifier, closeNotifier, err := buildNotifier(cfg, store, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	service := application.NewBookingService(store, catalog, notifier, nil, time.Now,
		application.WithLogger(logger),
		application.WithNotifyTimeout(cfg.NotifyTimeout),
		application.WithListingCache(cfg.CacheTTL),
	)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newHandler(service, catalog, cfg.AdminToken, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("booking API listening", "addr", server.Addr, "store", cfg.Store)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("failed to shutdown server", "error", err)
	}
	if err := service.Wait(shutdownCtx); err != nil {
		logger.Warn("pending notifications abandoned at shutdown", "error", err)
	}
	logger.Info("booking API stopped")
	return nil
}

func newHandler(service *application.BookingService, catalog venueCatalog, adminToken string, logger *slog.Logger) http.Handler {
	return httptransport.NewRouter(httptransport.RouterConfig{
		Sessions:   httptransport.NewSessionHandler(service, logger),
		Catalog:    httptransport.NewCatalogHandler(catalog, logger),
		Admin:      httptransport.NewAdminHandler(service, logger),
		Auth:       httptransport.NewAuthHandler(service, logger),
		AdminToken: adminToken,
		Logger:     logger,
	})
}
