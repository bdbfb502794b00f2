package models

// Station represents an air quality monitoring station.
type Station struct {
	StationID int    `json:"stationId"`
	Name      string `json:"name"`
	Point     Point  `json:"point"`
}

// StationList represents the list of configured stations.
type StationList struct {
	Items []Station `json:"items"`
}

// Indicator represents a pollution indicator known to the Qualar network.
type Indicator struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// IndicatorList represents the list of supported indicators.
type IndicatorList struct {
	Items []Indicator `json:"items"`
}

// Enums represents the enum values used by the API.
type Enums struct {
	Methods         []string `json:"methods"`
	Intervals       []string `json:"intervals"`
	KrigingMethods  []string `json:"krigingMethods"`
	VariogramModels []string `json:"variogramModels"`
}
