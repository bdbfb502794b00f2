// Package station holds the static monitoring network configuration: station
// coordinates, indicator ids, and per-indicator influence radii.
package station

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/qualarmap/qualarmap/internal/geo"
)

// ErrUnknownStation is returned for station ids absent from the registry. It
// signals a network configuration out of sync with the measurement data.
var ErrUnknownStation = errors.New("unknown station")

// Station is one fixed monitoring site.
type Station struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinate returns the station location as a geographic point.
func (s Station) Coordinate() geo.Point {
	return geo.Point{Lat: s.Latitude, Long: s.Longitude}
}

// RadiusOverride sets the influence radius of one indicator at one station,
// replacing the network default.
type RadiusOverride struct {
	IndicatorID int     `json:"indicator_id"`
	StationID   int     `json:"station_id"`
	RadiusKm    float64 `json:"radius_km"`
}

// Config is the serialized form of a Registry.
type Config struct {
	DefaultRadiusKm float64          `json:"default_radius_km"`
	Stations        []Station        `json:"stations"`
	Indicators      map[string]int   `json:"indicators"`
	RadiusOverrides []RadiusOverride `json:"radius_overrides,omitempty"`
}

type radiusKey struct {
	indicatorID int
	stationID   int
}

// Registry is the read-only network lookup shared by all interpolation
// requests. It is safe for concurrent use after construction.
type Registry struct {
	stations        map[int]Station
	indicators      map[string]int
	radii           map[radiusKey]float64
	defaultRadiusKm float64
}

// NewRegistry validates the configuration and builds the lookup maps.
func NewRegistry(cfg Config) (*Registry, error) {
	if len(cfg.Stations) == 0 {
		return nil, fmt.Errorf("station registry needs at least one station")
	}
	if cfg.DefaultRadiusKm <= 0 {
		return nil, fmt.Errorf("default radius must be positive, got %v km", cfg.DefaultRadiusKm)
	}

	r := &Registry{
		stations:        make(map[int]Station, len(cfg.Stations)),
		indicators:      make(map[string]int, len(cfg.Indicators)),
		radii:           make(map[radiusKey]float64, len(cfg.RadiusOverrides)),
		defaultRadiusKm: cfg.DefaultRadiusKm,
	}

	for _, s := range cfg.Stations {
		if _, ok := r.stations[s.ID]; ok {
			return nil, fmt.Errorf("duplicate station id %d", s.ID)
		}
		r.stations[s.ID] = s
	}
	for name, id := range cfg.Indicators {
		r.indicators[name] = id
	}
	for _, o := range cfg.RadiusOverrides {
		if o.RadiusKm <= 0 {
			return nil, fmt.Errorf("radius override for indicator %d station %d must be positive", o.IndicatorID, o.StationID)
		}
		if _, ok := r.stations[o.StationID]; !ok {
			return nil, fmt.Errorf("radius override references unknown station %d", o.StationID)
		}
		r.radii[radiusKey{o.IndicatorID, o.StationID}] = o.RadiusKm
	}
	return r, nil
}

// LoadFile reads a Registry from a JSON configuration file.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading station config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing station config: %w", err)
	}
	return NewRegistry(cfg)
}

// Coordinate looks up a station's location.
func (r *Registry) Coordinate(stationID int) (geo.Point, error) {
	s, ok := r.stations[stationID]
	if !ok {
		return geo.Point{}, fmt.Errorf("%w: id %d", ErrUnknownStation, stationID)
	}
	return s.Coordinate(), nil
}

// Coordinates returns the full station id to location table.
func (r *Registry) Coordinates() map[int]geo.Point {
	out := make(map[int]geo.Point, len(r.stations))
	for id, s := range r.stations {
		out[id] = s.Coordinate()
	}
	return out
}

// RadiusKm returns the influence radius for the indicator at the station,
// falling back to the network default when no override is configured.
func (r *Registry) RadiusKm(indicatorID, stationID int) float64 {
	if radius, ok := r.radii[radiusKey{indicatorID, stationID}]; ok {
		return radius
	}
	return r.defaultRadiusKm
}

// IndicatorID resolves an indicator name.
func (r *Registry) IndicatorID(name string) (int, error) {
	id, ok := r.indicators[name]
	if !ok {
		return 0, fmt.Errorf("unknown indicator %q", name)
	}
	return id, nil
}

// IndicatorNames lists the configured indicator names in sorted order.
func (r *Registry) IndicatorNames() []string {
	names := make([]string, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stations lists the configured stations sorted by id.
func (r *Registry) Stations() []Station {
	out := make([]Station, 0, len(r.stations))
	for _, s := range r.stations {
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}
