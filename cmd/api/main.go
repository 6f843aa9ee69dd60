// Package main is the entry point for the Ordinarium API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zapponejosh/ordinarium/internal/api"
	"github.com/zapponejosh/ordinarium/internal/config"
	"github.com/zapponejosh/ordinarium/internal/logger"
	"github.com/zapponejosh/ordinarium/internal/observance"
	"github.com/zapponejosh/ordinarium/internal/source"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	log.Info("starting ordinarium API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("data_source", cfg.DataSource),
		slog.String("log_level", cfg.LogLevel),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// Observance tables
	// =========================================================================
	src, db, err := source.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open data source: %w", err)
	}

	var health api.HealthChecker
	if db != nil {
		defer db.Close()
		health = db
	}

	cache := observance.NewCache(src, log)
	if _, err := cache.Tables(ctx); err != nil {
		return fmt.Errorf("load observance tables: %w", err)
	}

	resolver := observance.NewResolver(cache, log)

	// =========================================================================
	// Scheduled reloads
	// =========================================================================
	if cfg.ReloadCron != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.ReloadCron, func() {
			if _, err := cache.Reload(context.Background()); err != nil {
				log.Warn("scheduled reload failed, keeping previous tables", slog.Any("error", err))
			}
		})
		if err != nil {
			return fmt.Errorf("schedule reload: %w", err)
		}
		c.Start()
		defer c.Stop()
		log.Info("table reload scheduled", slog.String("cron", cfg.ReloadCron))
	}

	// =========================================================================
	// HTTP server
	// =========================================================================
	handlers := api.NewHandlers(resolver, health, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("ordinarium API ready", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
