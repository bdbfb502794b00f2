package models

import (
	"encoding/json"
	"fmt"
)

// HeatmapRequest is the request body for POST /v1/heatmaps.
// Hyperparameter fields accept either a scalar or a list; a list enumerates
// the candidates for cross-validated grid search.
type HeatmapRequest struct {
	Indicator string          `json:"indicator" validate:"required"`
	Method    string          `json:"method" validate:"required"`
	Interval  string          `json:"interval" validate:"required,oneof=instant hourly daily monthly yearly"`
	Time      TimeSpec        `json:"time"`
	KNN       *KNNOptions     `json:"knn,omitempty"`
	Kriging   *KrigingOptions `json:"kriging,omitempty"`
}

// TimeSpec selects the time keys a heatmap or series is computed over.
// Which fields are required depends on the interval.
type TimeSpec struct {
	Reference string `json:"reference,omitempty"`
	Year      int    `json:"year,omitempty" validate:"omitempty,gte=1970,lte=2100"`
	Month     int    `json:"month,omitempty" validate:"omitempty,gte=1,lte=12"`
	Day       int    `json:"day,omitempty" validate:"omitempty,gte=1,lte=31"`
	FirstYear int    `json:"firstYear,omitempty" validate:"omitempty,gte=1970,lte=2100"`
	LastYear  int    `json:"lastYear,omitempty" validate:"omitempty,gte=1970,lte=2100"`
}

// KNNOptions carries hyperparameters for the KNN interpolator.
type KNNOptions struct {
	K IntOrAuto `json:"k"`
}

// KrigingOptions carries hyperparameters for the kriging interpolator.
type KrigingOptions struct {
	Method         StringList `json:"method,omitempty"`
	VariogramModel StringList `json:"variogramModel,omitempty"`
	NLags          IntList    `json:"nlags,omitempty"`
	Weight         BoolList   `json:"weight,omitempty"`
}

// HeatmapResponse is the response body for POST /v1/heatmaps.
// Heatmap is a JSON object keyed by time key label, each value either a
// record array or an empty object when no estimate could be produced.
type HeatmapResponse struct {
	Indicator string          `json:"indicator"`
	Method    string          `json:"method"`
	Interval  string          `json:"interval"`
	Heatmap   json.RawMessage `json:"heatmap"`
}

// IntOrAuto is an int that also accepts the JSON string "auto".
type IntOrAuto struct {
	Auto  bool
	Value int
}

// UnmarshalJSON implements json.Unmarshaler for IntOrAuto.
func (v *IntOrAuto) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "auto" {
			return fmt.Errorf("expected integer or \"auto\", got %q", s)
		}
		*v = IntOrAuto{Auto: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected integer or \"auto\": %w", err)
	}
	*v = IntOrAuto{Value: n}
	return nil
}

// MarshalJSON implements json.Marshaler for IntOrAuto.
func (v IntOrAuto) MarshalJSON() ([]byte, error) {
	if v.Auto {
		return json.Marshal("auto")
	}
	return json.Marshal(v.Value)
}

// StringList is a string slice that also accepts a scalar JSON string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler for StringList.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = StringList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected string or string array: %w", err)
	}
	*l = StringList(items)
	return nil
}

// IntList is an int slice that also accepts a scalar JSON number.
type IntList []int

// UnmarshalJSON implements json.Unmarshaler for IntList.
func (l *IntList) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*l = IntList{n}
		return nil
	}
	var items []int
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected integer or integer array: %w", err)
	}
	*l = IntList(items)
	return nil
}

// BoolList is a bool slice that also accepts a scalar JSON bool.
type BoolList []bool

// UnmarshalJSON implements json.Unmarshaler for BoolList.
func (l *BoolList) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*l = BoolList{b}
		return nil
	}
	var items []bool
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected boolean or boolean array: %w", err)
	}
	*l = BoolList(items)
	return nil
}
