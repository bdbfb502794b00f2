package heatmap

import (
	"context"
	"math"

	"github.com/qualarmap/qualarmap/internal/measurement"
)

// SeriesPoint is one aggregated bucket of a line-graph series. Value is nil
// when no station reported in the bucket.
type SeriesPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// ComputeSeries aggregates the indicator into one mean per time key across
// all stations, over the same key sequence a heatmap of the interval would
// iterate.
func (s *Service) ComputeSeries(ctx context.Context, indicatorID int, interval Interval, spec TimeSpec) ([]SeriesPoint, error) {
	keys, err := ResolveTimeKeys(interval, spec)
	if err != nil {
		return nil, err
	}

	series := make([]SeriesPoint, 0, len(keys))
	for _, key := range keys {
		w, err := measurement.ParseTimeReference(key.Reference)
		if err != nil {
			return nil, err
		}
		mean, err := s.repository.Mean(ctx, indicatorID, w)
		if err != nil {
			return nil, err
		}

		point := SeriesPoint{Label: key.Label}
		if !math.IsNaN(mean) {
			v := mean
			point.Value = &v
		}
		series = append(series, point)
	}
	return series, nil
}
