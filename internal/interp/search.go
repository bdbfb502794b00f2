package interp

import (
	"fmt"
	"math"

	"github.com/qualarmap/qualarmap/internal/geo"
)

// PredictFunc evaluates a fitted estimator at scaled coordinates.
type PredictFunc func(points []geo.PlanePoint) ([]float64, error)

// FitFunc trains a fresh estimator with the given hyperparameters on a
// training subset and returns its predictor.
type FitFunc[P any] func(params P, X []geo.PlanePoint, y []float64) (PredictFunc, error)

// Result carries the winning hyperparameters of a grid search and their
// cross-validated RMSE (positive, lower is better).
type Result[P any] struct {
	Params P
	RMSE   float64
}

// GridSearch scores every candidate hyperparameter combination by mean
// negative RMSE across the folds and returns the first maximum encountered,
// so enumeration order is the tie-break. Candidates whose fit or prediction
// fails on any fold are scored negative infinity and lose to any candidate
// that completes.
func GridSearch[P any](candidates []P, folds []Fold, X []geo.PlanePoint, y []float64, fit FitFunc[P]) (Result[P], error) {
	var best Result[P]
	if len(candidates) == 0 {
		return best, fmt.Errorf("%w: empty candidate list", ErrUnsupportedHyperparameter)
	}
	if len(folds) == 0 {
		return best, ErrNoFolds
	}

	bestScore := math.Inf(-1)
	found := false
	for _, params := range candidates {
		score := crossValidate(params, folds, X, y, fit)
		if !found || score > bestScore {
			best = Result[P]{Params: params, RMSE: -score}
			bestScore = score
			found = true
		}
	}
	if math.IsInf(bestScore, -1) {
		return best, fmt.Errorf("all %d hyperparameter combinations failed to fit", len(candidates))
	}
	return best, nil
}

func crossValidate[P any](params P, folds []Fold, X []geo.PlanePoint, y []float64, fit FitFunc[P]) float64 {
	total := 0.0
	for _, fold := range folds {
		trainX := make([]geo.PlanePoint, len(fold.Train))
		trainY := make([]float64, len(fold.Train))
		for i, idx := range fold.Train {
			trainX[i] = X[idx]
			trainY[i] = y[idx]
		}
		testX := make([]geo.PlanePoint, len(fold.Test))
		testY := make([]float64, len(fold.Test))
		for i, idx := range fold.Test {
			testX[i] = X[idx]
			testY[i] = y[idx]
		}

		predict, err := fit(params, trainX, trainY)
		if err != nil {
			return math.Inf(-1)
		}
		predicted, err := predict(testX)
		if err != nil {
			return math.Inf(-1)
		}
		total += -rmse(predicted, testY)
	}
	return total / float64(len(folds))
}

func rmse(predicted, actual []float64) float64 {
	sum := 0.0
	for i := range predicted {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(predicted)))
}
