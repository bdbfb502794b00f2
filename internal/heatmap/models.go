// Package heatmap orchestrates heatmap production: time key resolution, per
// key grid discretization, interpolator fitting and prediction, and assembly
// of the keyed result.
package heatmap

import (
	"bytes"
	"encoding/json"
)

// Record is one interpolated sample of the output surface.
type Record struct {
	Lat   float64 `json:"lat"`
	Long  float64 `json:"long"`
	Value float64 `json:"value"`
}

// Heatmap maps time key labels to interpolated records, preserving the
// insertion order of the keys. A key with no records marks a time window no
// station reported for.
type Heatmap struct {
	keys    []string
	records map[string][]Record
}

// NewHeatmap creates an empty heatmap.
func NewHeatmap() *Heatmap {
	return &Heatmap{records: make(map[string][]Record)}
}

// Set stores the records of one key. Records may be nil for an empty slot.
// Re-setting a key keeps its original position.
func (h *Heatmap) Set(key string, records []Record) {
	if _, ok := h.records[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.records[key] = records
}

// Keys returns the key labels in insertion order.
func (h *Heatmap) Keys() []string {
	return h.keys
}

// Records returns the records of one key; nil marks an empty slot.
func (h *Heatmap) Records(key string) []Record {
	return h.records[key]
}

// MarshalJSON renders the heatmap as an object whose members follow key
// insertion order. Empty slots serialize as {} rather than null so clients
// can distinguish "no data" from "missing key".
func (h *Heatmap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range h.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		records := h.records[key]
		if records == nil {
			buf.WriteString("{}")
			continue
		}
		body, err := json.Marshal(records)
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
