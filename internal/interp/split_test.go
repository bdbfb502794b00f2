package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualarmap/qualarmap/internal/geo"
)

func TestHullFolds_InteriorPointsOnly(t *testing.T) {
	points := []geo.PlanePoint{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 1},
		{X: 0.5, Y: 0.5},
		{X: 0.25, Y: 0.75},
	}

	folds := HullFolds(points)
	require.Len(t, folds, 2)

	tested := make(map[int]bool)
	for _, fold := range folds {
		require.Len(t, fold.Test, 1)
		assert.Len(t, fold.Train, len(points)-1)
		assert.NotContains(t, fold.Train, fold.Test[0])
		tested[fold.Test[0]] = true
	}
	assert.Equal(t, map[int]bool{4: true, 5: true}, tested)
}

func TestHullFolds_AllOnHull(t *testing.T) {
	points := []geo.PlanePoint{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 0.5, Y: 1},
	}

	assert.Empty(t, HullFolds(points))
}

func TestHullFolds_HullVerticesInEveryTrainSet(t *testing.T) {
	points := []geo.PlanePoint{
		{X: 0, Y: 0},
		{X: 2, Y: 0},
		{X: 2, Y: 2},
		{X: 0, Y: 2},
		{X: 1, Y: 1},
	}

	for _, fold := range HullFolds(points) {
		for _, hullIdx := range []int{0, 1, 2, 3} {
			assert.Contains(t, fold.Train, hullIdx)
		}
	}
}
