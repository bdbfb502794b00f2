// Package main provides the entrypoint for the QualarMap API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/qualarmap/qualarmap/internal/api"
	"github.com/qualarmap/qualarmap/internal/api/middleware"
	"github.com/qualarmap/qualarmap/internal/config"
	"github.com/qualarmap/qualarmap/internal/database"
	"github.com/qualarmap/qualarmap/internal/grid"
	"github.com/qualarmap/qualarmap/internal/heatmap"
	"github.com/qualarmap/qualarmap/internal/measurement"
	"github.com/qualarmap/qualarmap/internal/provider/resilience"
	"github.com/qualarmap/qualarmap/internal/qualar"
	"github.com/qualarmap/qualarmap/internal/station"
	"github.com/qualarmap/qualarmap/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "qualarmap-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting QualarMap API")

	cfg := config.Load()

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTELEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Load the station registry
	registry := station.Default()
	if cfg.StationFile != "" {
		registry, err = station.LoadFile(cfg.StationFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.StationFile).Msg("failed to load station registry")
		}
		log.Info().Str("path", cfg.StationFile).Msg("station registry loaded from file")
	}
	log.Info().
		Int("stations", len(registry.Stations())).
		Int("indicators", len(registry.IndicatorNames())).
		Msg("station registry initialized")

	// Initialize the measurement repository and heatmap service
	repo := measurement.NewPostgresRepository(pool)

	heatmapService, err := heatmap.NewService(heatmap.ServiceConfig{
		Repository:  repo,
		Stations:    registry,
		Logger:      log,
		Grid:        grid.Config{NumberOfLatPoints: cfg.GridLatPoints},
		Concurrency: cfg.HeatmapConcurrency,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize heatmap service")
	}
	log.Info().Msg("heatmap service initialized")

	// The Qualar circuit breaker is surfaced on the status endpoint.
	qualarClient := resilience.NewClient(resilience.DefaultClientConfig(qualar.ProviderName))

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		HeatmapService: heatmapService,
		Registry:       registry,
		Pool:           pool,
		QualarClient:   qualarClient,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
