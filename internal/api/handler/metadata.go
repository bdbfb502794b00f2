package handler

import (
	"net/http"

	"github.com/qualarmap/qualarmap/internal/api/models"
	"github.com/qualarmap/qualarmap/internal/api/response"
	"github.com/qualarmap/qualarmap/internal/heatmap"
	"github.com/qualarmap/qualarmap/internal/interp"
	"github.com/qualarmap/qualarmap/internal/station"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	registry *station.Registry
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(registry *station.Registry) *MetadataHandler {
	return &MetadataHandler{registry: registry}
}

// ListStations handles GET /v1/metadata/stations.
func (h *MetadataHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations := h.registry.Stations()
	items := make([]models.Station, len(stations))
	for i, s := range stations {
		items[i] = models.Station{
			StationID: s.ID,
			Name:      s.Name,
			Point:     models.Point{Lat: s.Latitude, Long: s.Longitude},
		}
	}
	response.JSON(w, r, http.StatusOK, models.StationList{Items: items})
}

// ListIndicators handles GET /v1/metadata/indicators.
func (h *MetadataHandler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	names := h.registry.IndicatorNames()
	items := make([]models.Indicator, 0, len(names))
	for _, name := range names {
		id, err := h.registry.IndicatorID(name)
		if err != nil {
			continue
		}
		items = append(items, models.Indicator{Name: name, ID: id})
	}
	response.JSON(w, r, http.StatusOK, models.IndicatorList{Items: items})
}

// GetEnums handles GET /v1/metadata/enums - get enum values used by the API.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	enums := models.Enums{
		Methods: []string{
			heatmap.MethodKNN,
			heatmap.MethodKriging,
		},
		Intervals: []string{
			string(heatmap.IntervalInstant),
			string(heatmap.IntervalHourly),
			string(heatmap.IntervalDaily),
			string(heatmap.IntervalMonthly),
			string(heatmap.IntervalYearly),
		},
		KrigingMethods: []string{
			string(interp.KrigingOrdinary),
			string(interp.KrigingUniversal),
		},
		VariogramModels: []string{
			string(interp.VariogramLinear),
			string(interp.VariogramPower),
			string(interp.VariogramGaussian),
			string(interp.VariogramSpherical),
		},
	}
	response.JSON(w, r, http.StatusOK, enums)
}
