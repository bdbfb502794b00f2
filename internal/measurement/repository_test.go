package measurement_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualarmap/qualarmap/internal/interp"
	"github.com/qualarmap/qualarmap/internal/measurement"
)

func TestParseTimeReference(t *testing.T) {
	tests := []struct {
		ref  string
		from time.Time
		to   time.Time
	}{
		{"2023", date(2023, 1, 1, 0), date(2024, 1, 1, 0)},
		{"2023-06", date(2023, 6, 1, 0), date(2023, 7, 1, 0)},
		{"2023-06-15", date(2023, 6, 15, 0), date(2023, 6, 16, 0)},
		{"2023-06-15 09", date(2023, 6, 15, 9), date(2023, 6, 15, 10)},
		{"2024-02-29", date(2024, 2, 29, 0), date(2024, 3, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			w, err := measurement.ParseTimeReference(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.from, w.From)
			assert.Equal(t, tt.to, w.To)
		})
	}
}

func TestParseTimeReference_Invalid(t *testing.T) {
	for _, ref := range []string{"", "june", "2023-13", "2023-06-15T09", "15-06-2023"} {
		_, err := measurement.ParseTimeReference(ref)
		assert.ErrorIs(t, err, measurement.ErrInvalidTimeReference, ref)
	}
}

func TestWindow_Contains(t *testing.T) {
	w := measurement.Window{From: date(2023, 6, 15, 0), To: date(2023, 6, 16, 0)}

	assert.True(t, w.Contains(date(2023, 6, 15, 0)))
	assert.True(t, w.Contains(date(2023, 6, 15, 23)))
	assert.False(t, w.Contains(date(2023, 6, 16, 0)))
	assert.False(t, w.Contains(date(2023, 6, 14, 23)))
}

func TestMemoryRepository_MeanByTimeReference(t *testing.T) {
	repo := memoryFixture(t)

	means, err := repo.MeanByTimeReference(context.Background(), 63, "2023-06-15")
	require.NoError(t, err)

	assert.Equal(t, []interp.StationMean{
		{StationID: 83, Value: 30},
		{StationID: 99, Value: 15},
	}, means)
}

func TestMemoryRepository_WindowExcludesOutsideReadings(t *testing.T) {
	repo := memoryFixture(t)

	means, err := repo.MeanByTimeReference(context.Background(), 63, "2023-06-15 09")
	require.NoError(t, err)

	// Only the 09:00 readings fall inside the hourly window.
	assert.Equal(t, []interp.StationMean{
		{StationID: 83, Value: 30},
		{StationID: 99, Value: 10},
	}, means)
}

func TestMemoryRepository_OtherIndicatorInvisible(t *testing.T) {
	repo := memoryFixture(t)

	// Indicator 12 only sees its own reading, not the indicator 63 ones
	// from the same day.
	means, err := repo.MeanByTimeReference(context.Background(), 12, "2023-06-15")
	require.NoError(t, err)
	assert.Equal(t, []interp.StationMean{{StationID: 99, Value: 77}}, means)

	// An indicator the repository never saw yields no means at all.
	means, err = repo.MeanByTimeReference(context.Background(), 5, "2023-06-15")
	require.NoError(t, err)
	assert.Empty(t, means)
}

func TestMemoryRepository_Mean(t *testing.T) {
	repo := memoryFixture(t)

	w := measurement.Window{From: date(2023, 6, 15, 0), To: date(2023, 6, 16, 0)}
	mean, err := repo.Mean(context.Background(), 63, w)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, mean, 1e-12)

	empty := measurement.Window{From: date(2020, 1, 1, 0), To: date(2020, 1, 2, 0)}
	mean, err = repo.Mean(context.Background(), 63, empty)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(mean))
}

func TestMemoryRepository_UpsertReplaces(t *testing.T) {
	repo := measurement.NewMemoryRepository()
	at := date(2023, 6, 15, 9)

	require.NoError(t, repo.Upsert(context.Background(), []measurement.Measurement{
		{StationID: 99, IndicatorID: 63, MeasuredAt: at, Value: 10},
	}))
	require.NoError(t, repo.Upsert(context.Background(), []measurement.Measurement{
		{StationID: 99, IndicatorID: 63, MeasuredAt: at, Value: 12},
	}))

	means, err := repo.MeanByTimeReference(context.Background(), 63, "2023-06-15")
	require.NoError(t, err)
	assert.Equal(t, []interp.StationMean{{StationID: 99, Value: 12}}, means)
}

func memoryFixture(t *testing.T) *measurement.MemoryRepository {
	t.Helper()
	repo := measurement.NewMemoryRepository()
	err := repo.Upsert(context.Background(), []measurement.Measurement{
		{StationID: 99, IndicatorID: 63, MeasuredAt: date(2023, 6, 15, 9), Value: 10},
		{StationID: 99, IndicatorID: 63, MeasuredAt: date(2023, 6, 15, 10), Value: 20},
		{StationID: 83, IndicatorID: 63, MeasuredAt: date(2023, 6, 15, 9), Value: 30},
		{StationID: 99, IndicatorID: 63, MeasuredAt: date(2023, 6, 16, 9), Value: 99},
		{StationID: 99, IndicatorID: 12, MeasuredAt: date(2023, 6, 15, 9), Value: 77},
	})
	require.NoError(t, err)
	return repo
}

func date(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}
