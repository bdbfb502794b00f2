package interp

import (
	"fmt"
	"math"

	"github.com/qualarmap/qualarmap/internal/geo"
)

// BuildDataset combines a discretized grid with per-station mean values into
// the samples an interpolator fits on. Every grid point starts unknown (NaN);
// each reporting station's value is snapped onto the grid point nearest to
// the station, measured in raw degrees. Stations sharing a nearest grid point
// overwrite each other in input order, so the last one wins.
//
// An unknown station id is a configuration error and fails the whole build.
func BuildDataset(grid []geo.Point, coordinates map[int]geo.Point, means []StationMean) ([]Sample, error) {
	samples := make([]Sample, len(grid))
	for i, p := range grid {
		samples[i] = Sample{Point: p, Value: math.NaN()}
	}

	for _, m := range means {
		if math.IsNaN(m.Value) {
			continue
		}
		station, ok := coordinates[m.StationID]
		if !ok {
			return nil, fmt.Errorf("no coordinate configured for station %d", m.StationID)
		}
		idx := nearestIndex(grid, station)
		if idx < 0 {
			continue
		}
		samples[idx].Value = m.Value
	}
	return samples, nil
}

func nearestIndex(grid []geo.Point, target geo.Point) int {
	best := -1
	bestDist := math.Inf(1)
	for i, p := range grid {
		dLat := p.Lat - target.Lat
		dLong := p.Long - target.Long
		if d := dLat*dLat + dLong*dLong; d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
