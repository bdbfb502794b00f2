// Package handler provides HTTP handlers for the QualarMap API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/qualarmap/qualarmap/internal/api/models"
	"github.com/qualarmap/qualarmap/internal/api/response"
	"github.com/qualarmap/qualarmap/internal/heatmap"
	"github.com/qualarmap/qualarmap/internal/interp"
	"github.com/qualarmap/qualarmap/internal/measurement"
	"github.com/qualarmap/qualarmap/internal/station"
)

var validate = validator.New()

// HeatmapHandler handles heatmap computation endpoints.
type HeatmapHandler struct {
	service  *heatmap.Service
	registry *station.Registry
}

// NewHeatmapHandler creates a new HeatmapHandler.
func NewHeatmapHandler(service *heatmap.Service, registry *station.Registry) *HeatmapHandler {
	return &HeatmapHandler{
		service:  service,
		registry: registry,
	}
}

// ComputeHeatmap handles POST /v1/heatmaps - compute an interpolated heatmap.
func (h *HeatmapHandler) ComputeHeatmap(w http.ResponseWriter, r *http.Request) {
	var input models.HeatmapRequest
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

	keys, err := heatmap.ResolveTimeKeys(heatmap.Interval(input.Interval), timeSpec(input.Time))
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	result, err := h.service.ComputeHeatmap(r.Context(), indicatorID, methodSpec(input), keys)
	if err != nil {
		writeComputeError(w, r, err)
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		response.InternalError(w, r, "failed to encode heatmap")
		return
	}

	response.JSON(w, r, http.StatusOK, models.HeatmapResponse{
		Indicator: input.Indicator,
		Method:    input.Method,
		Interval:  input.Interval,
		Heatmap:   raw,
	})
}

// methodSpec builds the interpolator parameters from the request options.
// Omitted hyperparameter fields fall back to their defaults.
func methodSpec(input models.HeatmapRequest) heatmap.MethodSpec {
	spec := heatmap.MethodSpec{
		Method:  input.Method,
		KNN:     interp.KNNParams{Auto: true},
		Kriging: interp.DefaultKrigingParams(),
	}

	if input.KNN != nil {
		spec.KNN = interp.KNNParams{K: input.KNN.K.Value, Auto: input.KNN.K.Auto}
	}

	if opts := input.Kriging; opts != nil {
		if len(opts.Method) > 0 {
			spec.Kriging.Methods = make([]interp.KrigingMethod, len(opts.Method))
			for i, m := range opts.Method {
				spec.Kriging.Methods[i] = interp.KrigingMethod(m)
			}
		}
		if len(opts.VariogramModel) > 0 {
			spec.Kriging.VariogramModels = make([]interp.VariogramModel, len(opts.VariogramModel))
			for i, m := range opts.VariogramModel {
				spec.Kriging.VariogramModels[i] = interp.VariogramModel(m)
			}
		}
		if len(opts.NLags) > 0 {
			spec.Kriging.NLags = []int(opts.NLags)
		}
		if len(opts.Weight) > 0 {
			spec.Kriging.Weight = []bool(opts.Weight)
		}
	}

	return spec
}

// timeSpec converts the request time fields to the heatmap package type.
func timeSpec(t models.TimeSpec) heatmap.TimeSpec {
	return heatmap.TimeSpec{
		Reference: t.Reference,
		Year:      t.Year,
		Month:     time.Month(t.Month),
		Day:       t.Day,
		FirstYear: t.FirstYear,
		LastYear:  t.LastYear,
	}
}

// writeComputeError maps computation errors to problem responses. Invalid
// method or hyperparameter choices are client errors, everything else is not.
func writeComputeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, interp.ErrUnknownMethod),
		errors.Is(err, interp.ErrUnsupportedHyperparameter),
		errors.Is(err, measurement.ErrInvalidTimeReference):
		response.BadRequest(w, r, err.Error(), nil)
	default:
		response.InternalError(w, r, "failed to compute heatmap")
	}
}

// fieldErrors converts validator errors to the problem field error format.
func fieldErrors(err error) []models.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]models.FieldError, 0, len(verrs))
	for _, ve := range verrs {
		out = append(out, models.FieldError{
			Field:   ve.Field(),
			Message: fmt.Sprintf("failed on %q validation", ve.Tag()),
		})
	}
	return out
}
