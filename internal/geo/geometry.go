// Package geo provides the geometric primitives used by the interpolation
// engine: great-circle distances, convex hulls, planar projection, and
// coordinate scaling.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// Point is a geographic coordinate: a grid cell centre or a station location.
type Point struct {
	Lat  float64
	Long float64
}

// PlanePoint is a point in the local planar frame produced by the Projector.
type PlanePoint struct {
	X float64
	Y float64
}

// HaversineKm returns the great-circle distance in kilometres between two
// coordinates.
func HaversineKm(lat1, long1, lat2, long2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLong := (long2 - long1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLong/2)*math.Sin(deltaLong/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ConvexHullIndices returns the indices (into points) of the vertices of the
// convex hull, computed with the monotone-chain algorithm: sort
// lexicographically by (x, y), build the lower and upper chains with a
// cross-product turn test, concatenate, and de-duplicate preserving first
// occurrence. Inputs of two or fewer points are returned whole; fully
// collinear inputs degrade to the two extremes rather than failing.
func ConvexHullIndices(points []PlanePoint) []int {
	n := len(points)
	if n <= 2 {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		pa, pb := points[order[a]], points[order[b]]
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		return pa.Y < pb.Y
	})

	cross := func(o, a, b PlanePoint) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []int
	for _, idx := range order {
		for len(lower) >= 2 && cross(points[lower[len(lower)-2]], points[lower[len(lower)-1]], points[idx]) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, idx)
	}

	var upper []int
	for i := n - 1; i >= 0; i-- {
		idx := order[i]
		for len(upper) >= 2 && cross(points[upper[len(upper)-2]], points[upper[len(upper)-1]], points[idx]) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, idx)
	}

	hull := make([]int, 0, len(lower)+len(upper))
	hull = append(hull, lower...)
	hull = append(hull, upper...)

	seen := make(map[int]struct{}, len(hull))
	unique := hull[:0]
	for _, idx := range hull {
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		unique = append(unique, idx)
	}
	return unique
}
