package measurement

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/qualarmap/qualarmap/internal/interp"
)

type readingKey struct {
	stationID   int
	indicatorID int
	measuredAt  time.Time
}

// MemoryRepository is an in-memory implementation of Repository for tests
// and local development.
type MemoryRepository struct {
	mu       sync.RWMutex
	readings map[readingKey]float64
}

// NewMemoryRepository creates an empty in-memory measurement repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{readings: make(map[readingKey]float64)}
}

// MeanByTimeReference averages readings per station within the reference
// window.
func (r *MemoryRepository) MeanByTimeReference(_ context.Context, indicatorID int, timeReference string) ([]interp.StationMean, error) {
	w, err := ParseTimeReference(timeReference)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for key, value := range r.readings {
		if key.indicatorID != indicatorID || !w.Contains(key.measuredAt) {
			continue
		}
		sums[key.stationID] += value
		counts[key.stationID]++
	}

	means := make([]interp.StationMean, 0, len(sums))
	for stationID, sum := range sums {
		means = append(means, interp.StationMean{
			StationID: stationID,
			Value:     sum / float64(counts[stationID]),
		})
	}
	sort.Slice(means, func(a, b int) bool { return means[a].StationID < means[b].StationID })
	return means, nil
}

// Mean averages readings across all stations within the window.
func (r *MemoryRepository) Mean(_ context.Context, indicatorID int, w Window) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sum, count := 0.0, 0
	for key, value := range r.readings {
		if key.indicatorID != indicatorID || !w.Contains(key.measuredAt) {
			continue
		}
		sum += value
		count++
	}
	if count == 0 {
		return math.NaN(), nil
	}
	return sum / float64(count), nil
}

// Upsert stores the measurements, replacing duplicates.
func (r *MemoryRepository) Upsert(_ context.Context, measurements []Measurement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range measurements {
		r.readings[readingKey{m.StationID, m.IndicatorID, m.MeasuredAt}] = m.Value
	}
	return nil
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
