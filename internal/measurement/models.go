// Package measurement stores and aggregates the raw station readings the
// interpolation engine consumes.
package measurement

import "time"

// Measurement is one reading of one indicator at one station.
type Measurement struct {
	StationID   int       `json:"station_id"`
	IndicatorID int       `json:"indicator_id"`
	MeasuredAt  time.Time `json:"measured_at"`
	Value       float64   `json:"value"`
}
