package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/crudimg/internal/blob"
	"github.com/erazemk/crudimg/internal/config"
	"github.com/erazemk/crudimg/internal/db"
	"github.com/erazemk/crudimg/internal/logging"
	"github.com/erazemk/crudimg/internal/metrics"
	"github.com/erazemk/crudimg/internal/web"
)

func runServe(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cleanup, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer cleanup()

	slog.Info("starting crudimg", cfg.LogAttrs()...)

	ctx := context.Background()

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return err
	}
	defer func() {
		slog.Info("closing database")
		database.Close()
	}()

	blobs, err := blob.NewS3Store(ctx, blob.S3Config{
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		EndpointURL:     cfg.Storage.EndpointURL,
		UsePathStyle:    cfg.Storage.UsePathStyle,
	})
	if err != nil {
		slog.Error("failed to configure object store", "error", err)
		return err
	}

	metrics.Register()

	s, err := web.NewServer(database, blobs, cfg.Server.PublicDir)
	if err != nil {
		slog.Error("failed to load templates", "error", err)
		return err
	}
	handler, err := web.NewRouter(s)
	if err != nil {
		slog.Error("failed to set up router", "error", err)
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		return err
	}

	<-done
	slog.Info("server stopped")
	return nil
}

func runMigrate(ctx context.Context, opts *options, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	cleanup, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer cleanup()

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Fprintf(out, "Schema ready (%s).\n", database.Dialect.Name)
	return nil
}

// openDatabase connects to the configured datastore and ensures the schema.
func openDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	database.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	if err := db.EnsureSchema(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return database, nil
}
