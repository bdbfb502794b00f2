// Package main provides the entrypoint for the QualarMap ingestion worker.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/qualarmap/qualarmap/internal/api/middleware"
	"github.com/qualarmap/qualarmap/internal/config"
	"github.com/qualarmap/qualarmap/internal/database"
	"github.com/qualarmap/qualarmap/internal/measurement"
	"github.com/qualarmap/qualarmap/internal/qualar"
	"github.com/qualarmap/qualarmap/internal/station"
	"github.com/qualarmap/qualarmap/internal/telemetry"
	"github.com/qualarmap/qualarmap/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "qualarmap-worker"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting QualarMap worker")

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

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Load the station registry
	registry := station.Default()
	if cfg.StationFile != "" {
		registry, err = station.LoadFile(cfg.StationFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.StationFile).Msg("failed to load station registry")
		}
	}

	// Initialize the Qualar export client
	if cfg.QualarUsername == "" || cfg.QualarPassword == "" {
		log.Fatal().Msg("QUALAR_USERNAME and QUALAR_PASSWORD are required")
	}
	qualarClient := qualar.NewClient(qualar.ClientConfig{
		BaseURL:  cfg.QualarBaseURL,
		Username: cfg.QualarUsername,
		Password: cfg.QualarPassword,
	})
	if err := qualarClient.Login(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to log in to the Qualar portal")
	}
	log.Info().Msg("qualar session established")

	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Build the ingestion job
	ingestConfig := worker.DefaultIngestConfig()
	ingestConfig.Days = cfg.IngestDays
	ingestConfig.Concurrency = cfg.IngestConcurrency

	ingestJob, err := worker.NewIngestJob(worker.IngestJobConfig{
		Config:          ingestConfig,
		Logger:          log,
		Exporter:        qualarClient,
		Repository:      measurement.NewPostgresRepository(pool),
		Registry:        registry,
		ProviderMetrics: providerMetrics,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ingestion job")
	}

	// Schedule periodic ingestion
	scheduler := worker.NewScheduler(ingestJob, cfg.IngestInterval, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer scheduler.Stop()
	log.Info().
		Dur("interval", cfg.IngestInterval).
		Int("days", ingestConfig.Days).
		Msg("ingestion scheduled")

	// Optional on-demand trigger via Pub/Sub
	pubsubCtx, pubsubCancel := context.WithCancel(ctx)
	defer pubsubCancel()

	if cfg.PubSubProjectID != "" && cfg.PubSubSubscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.PubSubSubscription,
			IngestJob:        ingestJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(pubsubCtx); err != nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("pubsub trigger not configured")
	}

	// Health and metrics endpoints for probes
	healthServer := newHealthServer(cfg.Port, ingestJob, log)
	go func() {
		log.Info().Str("addr", healthServer.Addr).Msg("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	pubsubCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func newHealthServer(port string, job *worker.IngestJob, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{
			"status":  "OK",
			"version": Version,
		}); err != nil {
			log.Error().Err(err).Msg("failed to write health response")
		}
	})

	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(job.MetricsSnapshot()); err != nil {
			log.Error().Err(err).Msg("failed to write metrics response")
		}
	})

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}
