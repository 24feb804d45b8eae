package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/CTAG07/coldframe/pkg/site"
	"github.com/CTAG07/coldframe/pkg/templating"
	"golang.org/x/sync/errgroup"
)

// runServe hosts the site until ctx is cancelled.
func runServe(ctx context.Context, config *Config, logger *slog.Logger) error {
	logger.Info("Starting server...", "version", Version)

	tm, err := templating.NewTemplateManager(logger, *config.Templates, config.Site.TemplateDir)
	if err != nil {
		return fmt.Errorf("failed to create template manager: %w", err)
	}

	var opts []site.Option
	if config.Server.EnableStats {
		db, err := openStatsDB(config.Server.StatsDatabasePath)
		if err != nil {
			return err
		}
		defer func(db *sql.DB) {
			logger.Info("Closing database connection.")
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database", "error", err)
			}
		}(db)
		opts = append(opts, site.WithStats(site.NewStats(db, logger)))
	}
	if config.Server.EnableMetrics {
		opts = append(opts, site.WithMetrics(site.NewMetrics()))
	}

	app := site.NewApp(config.Site, tm, logger, opts...)
	httpServer := &http.Server{
		Addr:              config.Server.ServerAddr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting site server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("site server failed: %w", err)
		}
		return nil
	})

	if config.Server.WatchTemplates {
		g.Go(func() error {
			return tm.Watch(gCtx)
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(config.Server.ShutdownTimeoutMs)*time.Millisecond)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("site server shutdown failed: %w", err)
		}
		logger.Info("HTTP server stopped.")
		return nil
	})

	return g.Wait()
}

func openStatsDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := site.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = site.SetupStatsSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup stats schema: %w", err)
	}
	return db, nil
}
