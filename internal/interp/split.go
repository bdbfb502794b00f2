package interp

import "github.com/qualarmap/qualarmap/internal/geo"

// Fold is one cross-validation split: indices to train on and indices to
// score against.
type Fold struct {
	Train []int
	Test  []int
}

// HullFolds builds leave-one-out folds over the interior of the point set.
// Points on the convex hull anchor the interpolation boundary, so they are
// kept in every training fold and never held out. When every point is a hull
// vertex the result is empty and the caller falls back to a default
// hyperparameter.
func HullFolds(points []geo.PlanePoint) []Fold {
	onHull := make(map[int]struct{})
	for _, idx := range geo.ConvexHullIndices(points) {
		onHull[idx] = struct{}{}
	}

	var folds []Fold
	for i := range points {
		if _, ok := onHull[i]; ok {
			continue
		}
		train := make([]int, 0, len(points)-1)
		for j := range points {
			if j != i {
				train = append(train, j)
			}
		}
		folds = append(folds, Fold{Train: train, Test: []int{i}})
	}
	return folds
}
