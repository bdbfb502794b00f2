package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker/v2"

	"github.com/qualarmap/qualarmap/internal/api/models"
	"github.com/qualarmap/qualarmap/internal/api/response"
	"github.com/qualarmap/qualarmap/internal/provider/resilience"
	"github.com/qualarmap/qualarmap/internal/qualar"
)

const readinessTimeout = 2 * time.Second

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	pool      *pgxpool.Pool
	qualar    *resilience.Client
}

// NewOpsHandler creates a new OpsHandler. The pool and qualar client may be
// nil when the corresponding dependency is not wired, in which case its check
// is skipped.
func NewOpsHandler(version, buildTime string, pool *pgxpool.Pool, qualarClient *resilience.Client) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		pool:      pool,
		qualar:    qualarClient,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// Fails when the database cannot be reached.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.pool.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	subsystems := make([]models.SubsystemStatus, 0, 2)
	overall := models.HealthStatusOK

	if h.pool != nil {
		status := models.HealthStatusOK
		var detail *string
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		if err := h.pool.Ping(ctx); err != nil {
			status = models.HealthStatusFail
			msg := err.Error()
			detail = &msg
		}
		cancel()
		subsystems = append(subsystems, models.SubsystemStatus{Name: "postgres", Status: status, Detail: detail})
		overall = worse(overall, status)
	}

	if h.qualar != nil {
		status := circuitStatus(h.qualar.CircuitBreakerState())
		subsystems = append(subsystems, models.SubsystemStatus{Name: qualar.ProviderName, Status: status})
		overall = worse(overall, status)
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:     overall,
		Time:       models.Timestamp(time.Now()),
		Subsystems: subsystems,
	})
}

// circuitStatus maps a circuit breaker state to a health status.
func circuitStatus(state gobreaker.State) models.HealthStatus {
	switch state {
	case gobreaker.StateOpen:
		return models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

// worse returns the more severe of two health statuses.
func worse(a, b models.HealthStatus) models.HealthStatus {
	rank := map[models.HealthStatus]int{
		models.HealthStatusOK:       0,
		models.HealthStatusDegraded: 1,
		models.HealthStatusFail:     2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
