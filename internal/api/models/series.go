package models

// SeriesRequest is the request body for POST /v1/series.
type SeriesRequest struct {
	Indicator string   `json:"indicator" validate:"required"`
	Interval  string   `json:"interval" validate:"required,oneof=instant hourly daily monthly yearly"`
	Time      TimeSpec `json:"time"`
}

// SeriesPoint is one bucket of a time series. Value is null when no
// station reported a measurement in the bucket.
type SeriesPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// SeriesResponse is the response body for POST /v1/series.
type SeriesResponse struct {
	Indicator string        `json:"indicator"`
	Interval  string        `json:"interval"`
	Points    []SeriesPoint `json:"points"`
}
