package geo

import "math"

// WGS84 ellipsoid and UTM constants.
const (
	wgs84SemiMajorM = 6378137.0
	wgs84Flattening = 1.0 / 298.257223563

	utmScaleFactor        = 0.9996
	utmFalseEastingM      = 500000.0
	utmFalseNorthingSouth = 10000000.0
)

// Projector converts geographic coordinates to a planar UTM frame so that
// Euclidean distances approximate ground distances. The projection is the
// standard transverse Mercator forward series on the WGS84 ellipsoid, fixed
// to a single zone.
type Projector struct {
	centralMeridianRad float64
	falseNorthing      float64

	e2  float64 // first eccentricity squared
	ep2 float64 // second eccentricity squared
	m0  float64
	m2  float64
	m4  float64
	m6  float64
}

// NewProjector creates a projector for the given UTM zone. Southern
// hemisphere zones carry the 10,000 km false northing.
func NewProjector(zone int, south bool) *Projector {
	e2 := wgs84Flattening * (2 - wgs84Flattening)

	p := &Projector{
		centralMeridianRad: (float64(zone)*6 - 183) * math.Pi / 180,
		e2:                 e2,
		ep2:                e2 / (1 - e2),
	}
	if south {
		p.falseNorthing = utmFalseNorthingSouth
	}

	// Meridional arc series coefficients.
	e4 := e2 * e2
	e6 := e4 * e2
	p.m0 = 1 - e2/4 - 3*e4/64 - 5*e6/256
	p.m2 = 3*e2/8 + 3*e4/32 + 45*e6/1024
	p.m4 = 15*e4/256 + 45*e6/1024
	p.m6 = 35 * e6 / 3072

	return p
}

// Project maps a latitude/longitude pair to UTM easting/northing in metres.
func (p *Projector) Project(lat, long float64) PlanePoint {
	phi := lat * math.Pi / 180
	lambda := long * math.Pi / 180

	sinPhi := math.Sin(phi)
	cosPhi := math.Cos(phi)
	tanPhi := math.Tan(phi)

	nu := wgs84SemiMajorM / math.Sqrt(1-p.e2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := p.ep2 * cosPhi * cosPhi
	a := (lambda - p.centralMeridianRad) * cosPhi

	m := wgs84SemiMajorM * (p.m0*phi - p.m2*math.Sin(2*phi) + p.m4*math.Sin(4*phi) - p.m6*math.Sin(6*phi))

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	x := utmScaleFactor*nu*(a+(1-t+c)*a3/6+(5-18*t+t*t+72*c-58*p.ep2)*a5/120) + utmFalseEastingM
	y := utmScaleFactor*(m+nu*tanPhi*(a2/2+(5-t+9*c+4*c*c)*a4/24+(61-58*t+t*t+600*c-330*p.ep2)*a6/720)) + p.falseNorthing

	return PlanePoint{X: x, Y: y}
}

// ProjectAll maps a batch of coordinates.
func (p *Projector) ProjectAll(points []Point) []PlanePoint {
	projected := make([]PlanePoint, len(points))
	for i, pt := range points {
		projected[i] = p.Project(pt.Lat, pt.Long)
	}
	return projected
}
