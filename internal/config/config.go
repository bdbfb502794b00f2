// Package config loads application configuration from the environment.
// A .env file in the working directory is loaded first when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration shared by the API server and the worker.
type Config struct {
	// Environment is the deployment environment name.
	Environment string

	// Port is the HTTP listen port.
	Port string

	// OTLPEndpoint is the OpenTelemetry collector endpoint.
	OTLPEndpoint string

	// OTELEnabled toggles telemetry export.
	OTELEnabled bool

	// StationFile optionally points to a JSON station registry that
	// replaces the built-in CETESB defaults.
	StationFile string

	// GridLatPoints is the latitude resolution of the heatmap grid.
	// Zero keeps the grid package default.
	GridLatPoints int

	// HeatmapConcurrency bounds the per-request time key worker pool.
	// Zero keeps the heatmap package default.
	HeatmapConcurrency int

	// QualarBaseURL is the base URL of the Qualar portal.
	QualarBaseURL string

	// QualarUsername and QualarPassword authenticate against the portal.
	QualarUsername string
	QualarPassword string

	// IngestDays is the ingestion window length in days.
	IngestDays int

	// IngestConcurrency bounds concurrent portal exports.
	IngestConcurrency int

	// IngestInterval is the period between scheduled ingestion runs.
	IngestInterval time.Duration

	// PubSubProjectID and PubSubSubscription configure the on-demand
	// ingestion trigger. Empty disables the Pub/Sub handler.
	PubSubProjectID    string
	PubSubSubscription string
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	// Missing .env files are fine, environment variables win anyway.
	_ = godotenv.Load()

	return Config{
		Environment:        getEnv("APP_ENV", "development"),
		Port:               getEnv("APP_PORT", "8080"),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELEnabled:        getEnv("OTEL_ENABLED", "") == "true",
		StationFile:        getEnv("STATION_FILE", ""),
		GridLatPoints:      getEnvInt("GRID_LAT_POINTS", 0),
		HeatmapConcurrency: getEnvInt("HEATMAP_CONCURRENCY", 0),
		QualarBaseURL:      getEnv("QUALAR_BASE_URL", ""),
		QualarUsername:     getEnv("QUALAR_USERNAME", ""),
		QualarPassword:     getEnv("QUALAR_PASSWORD", ""),
		IngestDays:         getEnvInt("INGEST_DAYS", 1),
		IngestConcurrency:  getEnvInt("INGEST_CONCURRENCY", 3),
		IngestInterval:     getEnvDuration("INGEST_INTERVAL", time.Hour),
		PubSubProjectID:    getEnv("PUBSUB_PROJECT_ID", ""),
		PubSubSubscription: getEnv("PUBSUB_SUBSCRIPTION", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
