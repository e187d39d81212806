// Package main is the entry point for the Debtfolio HTTP service.
//
// The service reads monthly debt positions from the warehouse database and
// serves carry reports, allocation breakdowns and the client/product catalog.
// Query results are cached in a separate SQLite database that a scheduled job
// keeps trimmed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/debtfolio/internal/config"
	"github.com/aristath/debtfolio/internal/di"
	"github.com/aristath/debtfolio/internal/server"
	"github.com/aristath/debtfolio/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// main is the application entry point. It orchestrates the startup sequence:
// 1. Loads configuration from environment variables (.env supported)
// 2. Initializes logging
// 3. Wires databases, repositories, services and jobs via the DI container
// 4. Starts the scheduler and the HTTP server
// 5. Waits for a shutdown signal and shuts down gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("version", version).
		Str("data_dir", cfg.DataDir).
		Str("default_alias", cfg.DefaultAlias).
		Msg("Starting Debtfolio")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Jobs:      jobs,
		Version:   version,
	})

	container.Scheduler.Start()

	// Warm the current month so the first report request hits the cache
	if jobs.Warmup != nil {
		go func() {
			if err := container.Scheduler.RunNow(jobs.Warmup); err != nil {
				log.Warn().Err(err).Msg("Initial snapshot warm-up failed")
			}
		}()
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	container.Scheduler.Stop()

	// In-flight requests get up to 10 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
