package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/qualarmap/qualarmap/internal/api/models"
	"github.com/qualarmap/qualarmap/internal/api/response"
	"github.com/qualarmap/qualarmap/internal/heatmap"
	"github.com/qualarmap/qualarmap/internal/station"
)

// SeriesHandler handles time series endpoints.
type SeriesHandler struct {
	service  *heatmap.Service
	registry *station.Registry
}

// NewSeriesHandler creates a new SeriesHandler.
func NewSeriesHandler(service *heatmap.Service, registry *station.Registry) *SeriesHandler {
	return &SeriesHandler{
		service:  service,
		registry: registry,
	}
}

// ComputeSeries handles POST /v1/series - compute a region-wide mean series.
func (h *SeriesHandler) ComputeSeries(w http.ResponseWriter, r *http.Request) {
	var input models.SeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, r, "validation failed", fieldErrors(err))
		return
	}

	indicatorID, err := h.registry.IndicatorID(input.Indicator)
	if err != nil {
		response.NotFound(w, r, fmt.Sprintf("unknown indicator %q", input.Indicator))
		return
	}

	spec := timeSpec(input.Time)
	interval := heatmap.Interval(input.Interval)

	// Resolve up front so invalid time fields surface as client errors.
	if _, err := heatmap.ResolveTimeKeys(interval, spec); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	points, err := h.service.ComputeSeries(r.Context(), indicatorID, interval, spec)
	if err != nil {
		response.InternalError(w, r, "failed to compute series")
		return
	}

	out := make([]models.SeriesPoint, len(points))
	for i, p := range points {
		out[i] = models.SeriesPoint{Label: p.Label, Value: p.Value}
	}

	response.JSON(w, r, http.StatusOK, models.SeriesResponse{
		Indicator: input.Indicator,
		Interval:  input.Interval,
		Points:    out,
	})
}
