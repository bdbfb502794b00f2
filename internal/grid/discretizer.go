// Package grid builds the discretized evaluation grid a heatmap is predicted
// over: an aspect-corrected lat/long lattice over the region, pruned to the
// points within influence range of at least one reporting station.
package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/qualarmap/qualarmap/internal/geo"
	"github.com/qualarmap/qualarmap/internal/interp"
	"github.com/qualarmap/qualarmap/internal/station"
)

// BoundingBox delimits the mapped region.
type BoundingBox struct {
	MinLat  float64
	MaxLat  float64
	MinLong float64
	MaxLong float64
}

// DefaultBounds covers the São Paulo metropolitan region.
func DefaultBounds() BoundingBox {
	return BoundingBox{
		MinLat:  -24.00736242788278,
		MaxLat:  -23.35831688708724,
		MinLong: -46.83459631388834,
		MaxLong: -46.36359807038185,
	}
}

// DefaultLatPoints is the default latitude resolution of the lattice.
const DefaultLatPoints = 20

// Config sets the lattice geometry.
type Config struct {
	Bounds            BoundingBox
	NumberOfLatPoints int
}

// DefaultConfig returns the region and resolution used in production.
func DefaultConfig() Config {
	return Config{Bounds: DefaultBounds(), NumberOfLatPoints: DefaultLatPoints}
}

// Discretizer produces pruned evaluation grids. It is read-only after
// construction and safe for concurrent use.
type Discretizer struct {
	cfg      Config
	stations *station.Registry
}

// NewDiscretizer validates the lattice configuration.
func NewDiscretizer(cfg Config, stations *station.Registry) (*Discretizer, error) {
	if cfg.NumberOfLatPoints < 2 {
		return nil, fmt.Errorf("lattice needs at least 2 latitude points, got %d", cfg.NumberOfLatPoints)
	}
	if cfg.Bounds.MaxLat <= cfg.Bounds.MinLat || cfg.Bounds.MaxLong <= cfg.Bounds.MinLong {
		return nil, fmt.Errorf("degenerate bounding box %+v", cfg.Bounds)
	}
	return &Discretizer{cfg: cfg, stations: stations}, nil
}

// Points builds the candidate lattice and keeps each point iff it lies
// strictly within the influence radius of at least one station with a usable
// (non-NaN) mean for the indicator. The result is row-major, latitude first,
// and deterministic for identical inputs. No station reporting a value yields
// an empty grid. An unknown station id fails the whole build since it means
// the network configuration is out of sync with the measurement data.
func (d *Discretizer) Points(indicatorID int, means []interp.StationMean) ([]geo.Point, error) {
	type influence struct {
		coord    geo.Point
		radiusKm float64
	}

	sources := make([]influence, 0, len(means))
	for _, m := range means {
		if math.IsNaN(m.Value) {
			continue
		}
		coord, err := d.stations.Coordinate(m.StationID)
		if err != nil {
			return nil, err
		}
		sources = append(sources, influence{
			coord:    coord,
			radiusKm: d.stations.RadiusKm(indicatorID, m.StationID),
		})
	}
	if len(sources) == 0 {
		return nil, nil
	}

	b := d.cfg.Bounds
	latSpan := b.MaxLat - b.MinLat
	longSpan := b.MaxLong - b.MinLong
	aspect := latSpan / longSpan

	nLat := d.cfg.NumberOfLatPoints
	nLong := int(float64(nLat) / aspect)
	if nLong < 2 {
		return nil, fmt.Errorf("aspect ratio %v leaves %d longitude points", aspect, nLong)
	}

	lats := floats.Span(make([]float64, nLat), b.MinLat, b.MaxLat)
	longs := floats.Span(make([]float64, nLong), b.MinLong, b.MaxLong)

	var points []geo.Point
	for _, lat := range lats {
		for _, long := range longs {
			for _, src := range sources {
				if geo.HaversineKm(lat, long, src.coord.Lat, src.coord.Long) < src.radiusKm {
					points = append(points, geo.Point{Lat: lat, Long: long})
					break
				}
			}
		}
	}
	return points, nil
}
