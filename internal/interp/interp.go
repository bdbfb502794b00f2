// Package interp implements the spatial interpolation engine: distance
// weighted k-nearest-neighbour and kriging estimators over projected station
// coordinates, with hull-aware cross-validation for hyperparameter selection.
package interp

import (
	"errors"
	"fmt"
	"math"

	"github.com/qualarmap/qualarmap/internal/geo"
)

var (
	// ErrInsufficientData is returned when no station reported a usable value.
	ErrInsufficientData = errors.New("no known values to fit an interpolator")

	// ErrUnsupportedHyperparameter is returned for hyperparameter values or
	// candidate lists an interpolator cannot use.
	ErrUnsupportedHyperparameter = errors.New("unsupported hyperparameter")

	// ErrUnknownMethod is returned for an interpolation method name that is
	// neither KNN nor Kriging.
	ErrUnknownMethod = errors.New("unknown interpolation method")

	// ErrNoFolds signals that every training point sits on the convex hull,
	// leaving nothing to hold out during cross-validation.
	ErrNoFolds = errors.New("no evaluable cross-validation folds")
)

// The São Paulo metropolitan region falls in UTM zone 23, southern hemisphere.
const (
	projectionZone     = 23
	southernHemisphere = true
)

// Sample pairs a grid coordinate with a measured value. NaN marks a point
// whose value is unknown.
type Sample struct {
	Point geo.Point
	Value float64
}

// StationMean is one station's aggregated value for a single time key.
type StationMean struct {
	StationID int
	Value     float64
}

// Interpolator predicts indicator values at arbitrary coordinates. Instances
// are fitted at construction and must not be shared across goroutines.
type Interpolator interface {
	Predict(points []geo.Point) ([]float64, error)
}

// training carries the fitted coordinate pipeline shared by both estimators:
// the projector, the scaler fitted on the known points, and the scaled
// training set.
type training struct {
	projector *geo.Projector
	scaler    *geo.Scaler
	X         []geo.PlanePoint
	y         []float64
}

// newTraining filters out NaN-valued samples, projects the remaining
// coordinates and fits the scaler on them.
func newTraining(samples []Sample) (*training, error) {
	known := make([]geo.Point, 0, len(samples))
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if math.IsNaN(s.Value) {
			continue
		}
		known = append(known, s.Point)
		values = append(values, s.Value)
	}
	if len(values) == 0 {
		return nil, ErrInsufficientData
	}

	tr := &training{
		projector: geo.NewProjector(projectionZone, southernHemisphere),
		scaler:    &geo.Scaler{},
		y:         values,
	}
	tr.X = tr.scaler.FitTransform(tr.projector.ProjectAll(known))
	return tr, nil
}

// queryPoints maps raw coordinates through the already-fitted pipeline.
func (tr *training) queryPoints(points []geo.Point) ([]geo.PlanePoint, error) {
	scaled, err := tr.scaler.Transform(tr.projector.ProjectAll(points))
	if err != nil {
		return nil, fmt.Errorf("scaling query points: %w", err)
	}
	return scaled, nil
}

// constant is the single-known-point fallback: with one observation there is
// nothing to cross-validate, so every prediction is that observation.
type constant struct {
	value float64
}

func (c constant) Predict(points []geo.Point) ([]float64, error) {
	out := make([]float64, len(points))
	for i := range out {
		out[i] = c.value
	}
	return out, nil
}
