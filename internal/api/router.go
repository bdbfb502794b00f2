// Package api provides the HTTP API for QualarMap.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/qualarmap/qualarmap/internal/api/handler"
	"github.com/qualarmap/qualarmap/internal/api/middleware"
	"github.com/qualarmap/qualarmap/internal/heatmap"
	"github.com/qualarmap/qualarmap/internal/provider/resilience"
	"github.com/qualarmap/qualarmap/internal/station"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	ServiceName    string
	Metrics        *middleware.Metrics
	HeatmapService *heatmap.Service
	Registry       *station.Registry
	Pool           *pgxpool.Pool
	QualarClient   *resilience.Client
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "qualarmap-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON bodies

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool, cfg.QualarClient)
	heatmapHandler := handler.NewHeatmapHandler(cfg.HeatmapService, cfg.Registry)
	seriesHandler := handler.NewSeriesHandler(cfg.HeatmapService, cfg.Registry)
	metadataHandler := handler.NewMetadataHandler(cfg.Registry)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Metadata endpoints - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/stations", metadataHandler.ListStations)
			r.Get("/indicators", metadataHandler.ListIndicators)
			r.Get("/enums", metadataHandler.GetEnums)
		})

		// Heatmap endpoint - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/heatmaps", heatmapHandler.ComputeHeatmap)

		// Series endpoint - standard rate limiting
		r.With(standardRateLimit).Post("/series", seriesHandler.ComputeSeries)
	})

	return r
}
