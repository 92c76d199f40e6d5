// Package main is the entry point for the quantfolio analytics server: an
// HTTP API for security performance statistics and portfolio weight
// optimization over market data fetched from the chart API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/quantfolio/quantfolio/internal/config"
	"github.com/quantfolio/quantfolio/internal/database"
	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/modules/performance"
	"github.com/quantfolio/quantfolio/internal/scheduler"
	"github.com/quantfolio/quantfolio/internal/server"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting quantfolio")

	quotesDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "quotes.db"),
		Profile: database.ProfileCache,
		Name:    "quotes",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open quotes database")
	}
	defer quotesDB.Close()

	cache, err := marketdata.NewQuoteCache(quotesDB, cfg.QuoteCacheTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize quote cache")
	}

	chartClient := marketdata.NewChartClient(cache, log)
	if cfg.ChartBaseURL != "" {
		chartClient.SetBaseURL(cfg.ChartBaseURL)
	}

	engine := performance.NewEngine(chartClient, log)

	sched := scheduler.New(log)
	if err := sched.AddJob("@hourly", scheduler.NewCachePurgeJob(cache, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache purge job")
	}
	if err := sched.AddJob("@every 6h", scheduler.NewWALCheckpointJob(quotesDB, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register WAL checkpoint job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:     log,
		Config:  cfg,
		Engine:  engine,
		Cache:   cache,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("quantfolio stopped")
}
