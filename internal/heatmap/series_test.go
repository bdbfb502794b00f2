package heatmap_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualarmap/qualarmap/internal/heatmap"
	"github.com/qualarmap/qualarmap/internal/measurement"
)

func TestComputeSeries_DailyMeans(t *testing.T) {
	repo := measurement.NewMemoryRepository()
	require.NoError(t, repo.Upsert(context.Background(), []measurement.Measurement{
		{StationID: 99, IndicatorID: indicatorO3, MeasuredAt: time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC), Value: 10},
		{StationID: 83, IndicatorID: indicatorO3, MeasuredAt: time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC), Value: 20},
		{StationID: 99, IndicatorID: indicatorO3, MeasuredAt: time.Date(2023, 6, 3, 9, 0, 0, 0, time.UTC), Value: 40},
	}))

	svc := newService(t, repo)
	series, err := svc.ComputeSeries(context.Background(), indicatorO3, heatmap.IntervalDaily, heatmap.TimeSpec{
		Year: 2023, Month: time.June,
	})
	require.NoError(t, err)
	require.Len(t, series, 30)

	require.NotNil(t, series[0].Value)
	assert.InDelta(t, 15.0, *series[0].Value, 1e-12)
	assert.Equal(t, "1", series[0].Label)

	assert.Nil(t, series[1].Value)

	require.NotNil(t, series[2].Value)
	assert.InDelta(t, 40.0, *series[2].Value, 1e-12)
}

func TestComputeSeries_YearlyRange(t *testing.T) {
	repo := measurement.NewMemoryRepository()
	require.NoError(t, repo.Upsert(context.Background(), []measurement.Measurement{
		{StationID: 99, IndicatorID: indicatorO3, MeasuredAt: time.Date(2022, 3, 1, 9, 0, 0, 0, time.UTC), Value: 12},
	}))

	svc := newService(t, repo)
	series, err := svc.ComputeSeries(context.Background(), indicatorO3, heatmap.IntervalYearly, heatmap.TimeSpec{
		FirstYear: 2021, LastYear: 2022,
	})
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, "2021", series[0].Label)
	assert.Nil(t, series[0].Value)
	require.NotNil(t, series[1].Value)
	assert.InDelta(t, 12.0, *series[1].Value, 1e-12)
}

func TestComputeSeries_InvalidSpec(t *testing.T) {
	svc := newService(t, measurement.NewMemoryRepository())

	_, err := svc.ComputeSeries(context.Background(), indicatorO3, heatmap.IntervalMonthly, heatmap.TimeSpec{})
	assert.Error(t, err)
}
