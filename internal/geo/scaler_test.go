package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualarmap/qualarmap/internal/geo"
)

func TestScaler_SharedScalePreservesAspect(t *testing.T) {
	points := []geo.PlanePoint{
		{X: 100, Y: 50},
		{X: 300, Y: 150}, // x range 200, y range 100
	}

	var s geo.Scaler
	scaled := s.FitTransform(points)

	// The wider axis spans [0,1]; the narrower axis keeps its proportion.
	assert.Equal(t, geo.PlanePoint{X: 0, Y: 0}, scaled[0])
	assert.Equal(t, geo.PlanePoint{X: 1, Y: 0.5}, scaled[1])
}

func TestScaler_DistanceRatiosPreserved(t *testing.T) {
	points := []geo.PlanePoint{
		{X: 333000, Y: 7390000},
		{X: 340000, Y: 7394000},
		{X: 351000, Y: 7401000},
	}

	dist := func(a, b geo.PlanePoint) float64 {
		return math.Hypot(a.X-b.X, a.Y-b.Y)
	}

	var s geo.Scaler
	scaled := s.FitTransform(points)

	ratioBefore := dist(points[0], points[1]) / dist(points[0], points[2])
	ratioAfter := dist(scaled[0], scaled[1]) / dist(scaled[0], scaled[2])
	assert.InDelta(t, ratioBefore, ratioAfter, 1e-12)
}

func TestScaler_TransformReusesFit(t *testing.T) {
	train := []geo.PlanePoint{
		{X: 0, Y: 0},
		{X: 10, Y: 5},
	}

	var s geo.Scaler
	s.FitTransform(train)

	// Points outside the fitted range scale with the same factor and offset.
	out, err := s.Transform([]geo.PlanePoint{{X: 20, Y: 10}})
	require.NoError(t, err)
	assert.Equal(t, geo.PlanePoint{X: 2, Y: 1}, out[0])
}

func TestScaler_NotFitted(t *testing.T) {
	var s geo.Scaler

	_, err := s.Transform([]geo.PlanePoint{{X: 1, Y: 2}})
	assert.ErrorIs(t, err, geo.ErrNotFitted)
}

func TestScaler_SinglePoint(t *testing.T) {
	var s geo.Scaler
	scaled := s.FitTransform([]geo.PlanePoint{{X: 42, Y: 7}})

	require.Len(t, scaled, 1)
	assert.Equal(t, geo.PlanePoint{X: 0, Y: 0}, scaled[0])
}
