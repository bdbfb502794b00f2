package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qualarmap/qualarmap/internal/geo"
)

func TestProjector_Zone23South(t *testing.T) {
	p := geo.NewProjector(23, true)

	// Praça da Sé, São Paulo. Reference values from an independent
	// Karney transverse-Mercator conversion, tolerance of a few metres
	// covers series truncation.
	pt := p.Project(-23.5505, -46.6333)
	assert.InDelta(t, 333287.92, pt.X, 10)
	assert.InDelta(t, 7394588.32, pt.Y, 10)
}

func TestProjector_SouthernNorthingBelowEquator(t *testing.T) {
	p := geo.NewProjector(23, true)

	pt := p.Project(-23.5505, -46.6333)
	assert.Less(t, pt.Y, 10000000.0)
	assert.Greater(t, pt.Y, 0.0)
}

func TestProjector_CentralMeridianEasting(t *testing.T) {
	// Zone 23 central meridian is 45W; points on it map to the false easting.
	p := geo.NewProjector(23, true)

	pt := p.Project(-23.5, -45.0)
	assert.InDelta(t, 500000, pt.X, 0.01)
}

func TestProjector_DistancesApproximateGroundDistances(t *testing.T) {
	p := geo.NewProjector(23, true)

	a := geo.Point{Lat: -23.5615, Long: -46.7020}
	b := geo.Point{Lat: -23.5914, Long: -46.6605}

	planar := p.ProjectAll([]geo.Point{a, b})
	dx := planar[0].X - planar[1].X
	dy := planar[0].Y - planar[1].Y
	planarKm := math.Hypot(dx, dy) / 1000

	greatCircleKm := geo.HaversineKm(a.Lat, a.Long, b.Lat, b.Long)
	assert.InDelta(t, greatCircleKm, planarKm, 0.05)
}

func TestProjector_ProjectAllOrder(t *testing.T) {
	p := geo.NewProjector(23, true)

	points := []geo.Point{
		{Lat: -23.5, Long: -46.6},
		{Lat: -23.6, Long: -46.7},
		{Lat: -23.7, Long: -46.8},
	}

	projected := p.ProjectAll(points)
	assert.Len(t, projected, len(points))
	for i, pt := range points {
		assert.Equal(t, p.Project(pt.Lat, pt.Long), projected[i])
	}
}
