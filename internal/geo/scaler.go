package geo

import "errors"

// ErrNotFitted is returned when a Scaler is used before FitTransform.
var ErrNotFitted = errors.New("scaler is not fitted")

// Scaler normalizes projected coordinates to a unit-ish range. Both axes
// share a single scale factor, the larger of the two axis ranges, so that
// relative distances and the aspect ratio of the point set are preserved.
//
// A Scaler is fitted once per interpolation request and must not be shared
// across goroutines.
type Scaler struct {
	minX        float64
	minY        float64
	scaleFactor float64
	fitted      bool
}

// FitTransform computes the per-axis minima and the shared scale factor from
// points, stores them, and returns the scaled points.
func (s *Scaler) FitTransform(points []PlanePoint) []PlanePoint {
	s.minX = points[0].X
	s.minY = points[0].Y
	maxX := points[0].X
	maxY := points[0].Y
	for _, p := range points[1:] {
		s.minX = min(s.minX, p.X)
		s.minY = min(s.minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}

	s.scaleFactor = max(maxX-s.minX, maxY-s.minY)
	if s.scaleFactor == 0 {
		// Single point or exact duplicates: any positive factor keeps the
		// transform well defined.
		s.scaleFactor = 1
	}
	s.fitted = true

	scaled, _ := s.Transform(points)
	return scaled
}

// Transform applies the fitted minima and scale factor to points. It fails
// with ErrNotFitted when called before FitTransform.
func (s *Scaler) Transform(points []PlanePoint) ([]PlanePoint, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}

	scaled := make([]PlanePoint, len(points))
	for i, p := range points {
		scaled[i] = PlanePoint{
			X: (p.X - s.minX) / s.scaleFactor,
			Y: (p.Y - s.minY) / s.scaleFactor,
		}
	}
	return scaled, nil
}
