package interp

import (
	"fmt"
	"math"
	"sort"

	"github.com/qualarmap/qualarmap/internal/geo"
)

// Coincident points are treated as zero distance below this threshold.
const zeroDistance = 1e-12

// KNNParams configures the k-nearest-neighbour estimator. With Auto set, k
// is selected by cross-validated grid search over 1..n-1 and K is ignored.
type KNNParams struct {
	K    int
	Auto bool
}

type knn struct {
	tr *training
	k  int
}

// NewKNN fits a distance-weighted k-nearest-neighbour interpolator on the
// known samples. A single known point degrades to a constant estimator.
func NewKNN(samples []Sample, params KNNParams) (Interpolator, error) {
	tr, err := newTraining(samples)
	if err != nil {
		return nil, err
	}
	if len(tr.y) == 1 {
		return constant{value: tr.y[0]}, nil
	}

	k := params.K
	if params.Auto {
		k, err = selectK(tr)
		if err != nil {
			return nil, err
		}
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrUnsupportedHyperparameter, k)
	}
	if k > len(tr.y) {
		return nil, fmt.Errorf("%w: k %d exceeds the %d known points", ErrUnsupportedHyperparameter, k, len(tr.y))
	}
	return &knn{tr: tr, k: k}, nil
}

func selectK(tr *training) (int, error) {
	candidates := make([]int, 0, len(tr.y)-1)
	for k := 1; k < len(tr.y); k++ {
		candidates = append(candidates, k)
	}

	fit := func(k int, X []geo.PlanePoint, y []float64) (PredictFunc, error) {
		if k > len(y) {
			return nil, fmt.Errorf("fold smaller than k=%d", k)
		}
		return func(points []geo.PlanePoint) ([]float64, error) {
			return knnPredict(X, y, points, k), nil
		}, nil
	}

	best, err := GridSearch(candidates, HullFolds(tr.X), tr.X, tr.y, fit)
	if err == ErrNoFolds {
		// Every point is on the hull. Nothing to validate against, fall
		// back to the nearest neighbour.
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return best.Params, nil
}

func (e *knn) Predict(points []geo.Point) ([]float64, error) {
	queries, err := e.tr.queryPoints(points)
	if err != nil {
		return nil, err
	}
	return knnPredict(e.tr.X, e.tr.y, queries, e.k), nil
}

// knnPredict evaluates the inverse-distance-weighted mean of each query's k
// nearest training points. Queries coinciding with training points take the
// plain mean of the coincident values, so an exact match reproduces its
// training value.
func knnPredict(X []geo.PlanePoint, y []float64, queries []geo.PlanePoint, k int) []float64 {
	out := make([]float64, len(queries))
	order := make([]int, len(X))
	dist := make([]float64, len(X))

	for qi, q := range queries {
		for i, p := range X {
			order[i] = i
			dist[i] = math.Hypot(p.X-q.X, p.Y-q.Y)
		}
		sort.SliceStable(order, func(a, b int) bool {
			return dist[order[a]] < dist[order[b]]
		})

		neighbors := order[:k]

		zeroSum, zeroCount := 0.0, 0
		for _, idx := range neighbors {
			if dist[idx] < zeroDistance {
				zeroSum += y[idx]
				zeroCount++
			}
		}
		if zeroCount > 0 {
			out[qi] = zeroSum / float64(zeroCount)
			continue
		}

		weightedSum, weightTotal := 0.0, 0.0
		for _, idx := range neighbors {
			w := 1 / dist[idx]
			weightedSum += w * y[idx]
			weightTotal += w
		}
		out[qi] = weightedSum / weightTotal
	}
	return out
}
