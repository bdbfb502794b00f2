package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualarmap/qualarmap/internal/geo"
)

func TestHaversineKm_Symmetry(t *testing.T) {
	pairs := [][4]float64{
		{-23.5615, -46.7020, -23.5914, -46.6605},
		{-23.5448, -46.6276, -24.0000, -46.4000},
		{0, 0, 10, 10},
	}

	for _, p := range pairs {
		forward := geo.HaversineKm(p[0], p[1], p[2], p[3])
		backward := geo.HaversineKm(p[2], p[3], p[0], p[1])
		assert.Equal(t, forward, backward)
	}
}

func TestHaversineKm_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, geo.HaversineKm(-23.5615, -46.7020, -23.5615, -46.7020))
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Pinheiros to Ibirapuera stations, roughly 5.4 km apart.
	d := geo.HaversineKm(-23.5615, -46.7020, -23.5914, -46.6605)
	assert.InDelta(t, 5.4, d, 0.3)

	// One degree of latitude at the equator is ~111.2 km.
	d = geo.HaversineKm(0, 0, 1, 0)
	assert.InDelta(t, 111.2, d, 0.1)
}

func TestConvexHullIndices_Square(t *testing.T) {
	points := []geo.PlanePoint{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 1},
		{X: 0.5, Y: 0.5}, // interior
	}

	hull := geo.ConvexHullIndices(points)
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, hull)
	assert.NotContains(t, hull, 4)
}

func TestConvexHullIndices_Idempotent(t *testing.T) {
	points := []geo.PlanePoint{
		{X: 0, Y: 0},
		{X: 2, Y: 0},
		{X: 2, Y: 2},
		{X: 0, Y: 2},
		{X: 1, Y: 1},
		{X: 0.5, Y: 1.5},
	}

	hull := geo.ConvexHullIndices(points)
	hullPoints := make([]geo.PlanePoint, len(hull))
	for i, idx := range hull {
		hullPoints[i] = points[idx]
	}

	again := geo.ConvexHullIndices(hullPoints)
	assert.Len(t, again, len(hull), "every hull point should be on its own hull")
}

func TestConvexHullIndices_Degenerate(t *testing.T) {
	assert.Empty(t, geo.ConvexHullIndices(nil))
	assert.Equal(t, []int{0}, geo.ConvexHullIndices([]geo.PlanePoint{{X: 3, Y: 4}}))
	assert.Equal(t, []int{0, 1}, geo.ConvexHullIndices([]geo.PlanePoint{{X: 0, Y: 0}, {X: 1, Y: 1}}))
}

func TestConvexHullIndices_Collinear(t *testing.T) {
	points := []geo.PlanePoint{
		{X: 0, Y: 0},
		{X: 1, Y: 1},
		{X: 2, Y: 2},
		{X: 3, Y: 3},
	}

	hull := geo.ConvexHullIndices(points)
	require.NotEmpty(t, hull)
	assert.Contains(t, hull, 0)
	assert.Contains(t, hull, 3)
}
