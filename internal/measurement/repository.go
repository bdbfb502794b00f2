package measurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qualarmap/qualarmap/internal/interp"
)

// ErrInvalidTimeReference is returned for a time reference string that
// matches none of the supported granularities.
var ErrInvalidTimeReference = errors.New("invalid time reference")

// Window is a half-open aggregation interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

var referenceLayouts = []struct {
	layout string
	next   func(time.Time) time.Time
}{
	{"2006-01-02 15", func(t time.Time) time.Time { return t.Add(time.Hour) }},
	{"2006-01-02", func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }},
	{"2006-01", func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }},
	{"2006", func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }},
}

// ParseTimeReference resolves a reference string into its aggregation window.
// Supported granularities, parsed left to right: "2006", "2006-01",
// "2006-01-02" and "2006-01-02 15". All references are UTC.
func ParseTimeReference(ref string) (Window, error) {
	for _, candidate := range referenceLayouts {
		from, err := time.ParseInLocation(candidate.layout, ref, time.UTC)
		if err != nil {
			continue
		}
		return Window{From: from, To: candidate.next(from)}, nil
	}
	return Window{}, fmt.Errorf("%w: %q", ErrInvalidTimeReference, ref)
}

// Repository defines the interface for measurement persistence and
// aggregation.
type Repository interface {
	// MeanByTimeReference averages all readings of the indicator within the
	// window implied by the time reference, one entry per station that has
	// data, ordered by station id.
	MeanByTimeReference(ctx context.Context, indicatorID int, timeReference string) ([]interp.StationMean, error)

	// Mean averages all readings of the indicator across all stations within
	// the window. Returns NaN when no readings exist.
	Mean(ctx context.Context, indicatorID int, w Window) (float64, error)

	// Upsert inserts the measurements, replacing the value of any reading
	// already stored for the same station, indicator and timestamp.
	Upsert(ctx context.Context, measurements []Measurement) error
}
