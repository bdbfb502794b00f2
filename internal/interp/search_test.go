package interp

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualarmap/qualarmap/internal/geo"
)

// constantFit predicts the candidate value itself everywhere, so the
// candidate closest to the test targets wins.
func constantFit(value float64, _ []geo.PlanePoint, _ []float64) (PredictFunc, error) {
	return func(points []geo.PlanePoint) ([]float64, error) {
		out := make([]float64, len(points))
		for i := range out {
			out[i] = value
		}
		return out, nil
	}, nil
}

func searchFixture() ([]geo.PlanePoint, []float64, []Fold) {
	X := []geo.PlanePoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 1}, {X: 0.5, Y: 0.4}}
	y := []float64{5, 5, 5, 5}
	folds := HullFolds(X)
	return X, y, folds
}

func TestGridSearch_PicksLowestRMSE(t *testing.T) {
	X, y, folds := searchFixture()

	best, err := GridSearch([]float64{1, 5, 9}, folds, X, y, constantFit)
	require.NoError(t, err)
	assert.Equal(t, 5.0, best.Params)
	assert.Equal(t, 0.0, best.RMSE)
}

func TestGridSearch_Deterministic(t *testing.T) {
	X, y, folds := searchFixture()
	candidates := []float64{3, 4, 5, 6, 7}

	first, err := GridSearch(candidates, folds, X, y, constantFit)
	require.NoError(t, err)
	second, err := GridSearch(candidates, folds, X, y, constantFit)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGridSearch_TieBreaksOnFirstSeen(t *testing.T) {
	X, y, folds := searchFixture()

	// 4 and 6 score identically; 4 is enumerated first.
	best, err := GridSearch([]float64{4, 6}, folds, X, y, constantFit)
	require.NoError(t, err)
	assert.Equal(t, 4.0, best.Params)
}

func TestGridSearch_EmptyCandidates(t *testing.T) {
	X, y, folds := searchFixture()

	_, err := GridSearch(nil, folds, X, y, constantFit)
	assert.ErrorIs(t, err, ErrUnsupportedHyperparameter)
}

func TestGridSearch_NoFolds(t *testing.T) {
	X := []geo.PlanePoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 1}}
	y := []float64{1, 2, 3}

	_, err := GridSearch([]float64{1}, HullFolds(X), X, y, constantFit)
	assert.ErrorIs(t, err, ErrNoFolds)
}

func TestGridSearch_FailingCandidateLoses(t *testing.T) {
	X, y, folds := searchFixture()

	fit := func(value float64, trainX []geo.PlanePoint, trainY []float64) (PredictFunc, error) {
		if value == 5 {
			return nil, errors.New("cannot fit")
		}
		return constantFit(value, trainX, trainY)
	}

	// The perfect candidate fails to fit, so a worse one must win instead.
	best, err := GridSearch([]float64{5, 9}, folds, X, y, fit)
	require.NoError(t, err)
	assert.Equal(t, 9.0, best.Params)
	assert.Equal(t, 4.0, best.RMSE)
}

func TestGridSearch_AllCandidatesFail(t *testing.T) {
	X, y, folds := searchFixture()

	fit := func(_ float64, _ []geo.PlanePoint, _ []float64) (PredictFunc, error) {
		return nil, errors.New("cannot fit")
	}

	_, err := GridSearch([]float64{1, 2}, folds, X, y, fit)
	assert.Error(t, err)
}

func TestRMSE(t *testing.T) {
	assert.Equal(t, 0.0, rmse([]float64{1, 2}, []float64{1, 2}))
	assert.InDelta(t, math.Sqrt(2.5), rmse([]float64{1, 2}, []float64{2, 4}), 1e-12)
}
