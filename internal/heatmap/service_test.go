package heatmap_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualarmap/qualarmap/internal/heatmap"
	"github.com/qualarmap/qualarmap/internal/interp"
	"github.com/qualarmap/qualarmap/internal/measurement"
	"github.com/qualarmap/qualarmap/internal/station"
)

const indicatorO3 = 63

func serviceRegistry(t *testing.T) *station.Registry {
	t.Helper()
	r, err := station.NewRegistry(station.Config{
		DefaultRadiusKm: 7,
		Stations: []station.Station{
			{ID: 99, Name: "Pinheiros", Latitude: -23.5615, Longitude: -46.7020},
			{ID: 83, Name: "Ibirapuera", Latitude: -23.5914, Longitude: -46.6605},
			{ID: 72, Name: "Parque D.Pedro II", Latitude: -23.5448, Longitude: -46.6276},
		},
		Indicators: map[string]int{"O3": indicatorO3},
	})
	require.NoError(t, err)
	return r
}

func newService(t *testing.T, repo measurement.Repository) *heatmap.Service {
	t.Helper()
	svc, err := heatmap.NewService(heatmap.ServiceConfig{
		Repository: repo,
		Stations:   serviceRegistry(t),
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return svc
}

func seed(t *testing.T, repo *measurement.MemoryRepository, stationID int, value float64) {
	t.Helper()
	err := repo.Upsert(context.Background(), []measurement.Measurement{{
		StationID:   stationID,
		IndicatorID: indicatorO3,
		MeasuredAt:  time.Date(2023, 6, 15, 9, 0, 0, 0, time.UTC),
		Value:       value,
	}})
	require.NoError(t, err)
}

func instantKeys(reference string) []heatmap.TimeKey {
	return []heatmap.TimeKey{{Label: "1", Reference: reference}}
}

func TestComputeHeatmap_KNNWithinValueRange(t *testing.T) {
	repo := measurement.NewMemoryRepository()
	seed(t, repo, 99, 10)
	seed(t, repo, 83, 20)

	svc := newService(t, repo)
	spec := heatmap.MethodSpec{Method: heatmap.MethodKNN, KNN: interp.KNNParams{K: 2}}

	result, err := svc.ComputeHeatmap(context.Background(), indicatorO3, spec, instantKeys("2023-06-15"))
	require.NoError(t, err)

	records := result.Records("1")
	require.NotEmpty(t, records)
	for _, rec := range records {
		assert.GreaterOrEqual(t, rec.Value, 10.0)
		assert.LessOrEqual(t, rec.Value, 20.0)
	}
}

func TestComputeHeatmap_NoDataYieldsEmptySlot(t *testing.T) {
	svc := newService(t, measurement.NewMemoryRepository())
	spec := heatmap.MethodSpec{Method: heatmap.MethodKNN, KNN: interp.KNNParams{K: 1}}

	result, err := svc.ComputeHeatmap(context.Background(), indicatorO3, spec, instantKeys("2023-06-15"))
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, result.Keys())
	assert.Nil(t, result.Records("1"))
}

func TestComputeHeatmap_SingleStationPredictsItsValue(t *testing.T) {
	repo := measurement.NewMemoryRepository()
	seed(t, repo, 99, 42)

	svc := newService(t, repo)
	spec := heatmap.MethodSpec{Method: heatmap.MethodKNN, KNN: interp.KNNParams{K: 1}}

	result, err := svc.ComputeHeatmap(context.Background(), indicatorO3, spec, instantKeys("2023-06-15"))
	require.NoError(t, err)

	records := result.Records("1")
	require.NotEmpty(t, records)
	for _, rec := range records {
		assert.Equal(t, 42.0, rec.Value)
	}
}

func TestComputeHeatmap_KrigingProducesRecords(t *testing.T) {
	repo := measurement.NewMemoryRepository()
	seed(t, repo, 99, 10)
	seed(t, repo, 83, 20)
	seed(t, repo, 72, 30)

	svc := newService(t, repo)
	spec := heatmap.MethodSpec{Method: heatmap.MethodKriging, Kriging: interp.DefaultKrigingParams()}

	result, err := svc.ComputeHeatmap(context.Background(), indicatorO3, spec, instantKeys("2023-06-15"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Records("1"))
}

func TestComputeHeatmap_MixedKeysKeepOrder(t *testing.T) {
	repo := measurement.NewMemoryRepository()
	seed(t, repo, 99, 10)
	seed(t, repo, 83, 20)

	svc := newService(t, repo)
	spec := heatmap.MethodSpec{Method: heatmap.MethodKNN, KNN: interp.KNNParams{K: 1}}

	keys := []heatmap.TimeKey{
		{Label: "14", Reference: "2023-06-14"},
		{Label: "15", Reference: "2023-06-15"},
		{Label: "16", Reference: "2023-06-16"},
	}
	result, err := svc.ComputeHeatmap(context.Background(), indicatorO3, spec, keys)
	require.NoError(t, err)

	assert.Equal(t, []string{"14", "15", "16"}, result.Keys())
	assert.Nil(t, result.Records("14"))
	assert.NotEmpty(t, result.Records("15"))
	assert.Nil(t, result.Records("16"))
}

func TestComputeHeatmap_UnknownMethod(t *testing.T) {
	svc := newService(t, measurement.NewMemoryRepository())

	_, err := svc.ComputeHeatmap(context.Background(), indicatorO3, heatmap.MethodSpec{Method: "IDW"}, instantKeys("2023"))
	assert.ErrorIs(t, err, interp.ErrUnknownMethod)
}

func TestComputeHeatmap_EmptyKrigingCandidatesFatal(t *testing.T) {
	repo := measurement.NewMemoryRepository()
	seed(t, repo, 99, 10)
	seed(t, repo, 83, 20)

	svc := newService(t, repo)
	spec := heatmap.MethodSpec{Method: heatmap.MethodKriging}

	_, err := svc.ComputeHeatmap(context.Background(), indicatorO3, spec, instantKeys("2023-06-15"))
	assert.ErrorIs(t, err, interp.ErrUnsupportedHyperparameter)
}

func TestComputeHeatmap_InvalidExplicitKFatal(t *testing.T) {
	repo := measurement.NewMemoryRepository()
	seed(t, repo, 99, 10)
	seed(t, repo, 83, 20)

	svc := newService(t, repo)
	spec := heatmap.MethodSpec{Method: heatmap.MethodKNN, KNN: interp.KNNParams{K: 0}}

	// A bad hyperparameter fails the request instead of degrading every
	// key to an empty slot.
	_, err := svc.ComputeHeatmap(context.Background(), indicatorO3, spec, instantKeys("2023-06-15"))
	assert.ErrorIs(t, err, interp.ErrUnsupportedHyperparameter)
}

func TestComputeHeatmap_UnknownStationFatal(t *testing.T) {
	repo := measurement.NewMemoryRepository()
	seed(t, repo, 4242, 10)

	svc := newService(t, repo)
	spec := heatmap.MethodSpec{Method: heatmap.MethodKNN, KNN: interp.KNNParams{K: 1}}

	_, err := svc.ComputeHeatmap(context.Background(), indicatorO3, spec, instantKeys("2023-06-15"))
	assert.ErrorIs(t, err, station.ErrUnknownStation)
}

func TestComputeHeatmap_InvalidTimeReferenceFatal(t *testing.T) {
	svc := newService(t, measurement.NewMemoryRepository())
	spec := heatmap.MethodSpec{Method: heatmap.MethodKNN, KNN: interp.KNNParams{K: 1}}

	_, err := svc.ComputeHeatmap(context.Background(), indicatorO3, spec, instantKeys("sometime"))
	assert.ErrorIs(t, err, measurement.ErrInvalidTimeReference)
}
