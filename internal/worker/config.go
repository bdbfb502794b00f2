// Package worker provides background measurement ingestion for QualarMap.
package worker

import (
	"time"
)

// IngestConfig holds configuration for the Qualar ingestion job.
type IngestConfig struct {
	// Indicators are the indicator names to ingest.
	// If empty, every indicator in the station registry is ingested.
	Indicators []string

	// Days is the length of the ingestion window in days, counting back
	// from midnight of the current day. Default: 1 (yesterday).
	Days int

	// Concurrency is the number of concurrent export requests.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for a single station/indicator export.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultIngestConfig returns the default ingestion configuration.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		Days:        1,
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// Window returns the half-open ingestion window [from, to) ending at
// midnight UTC of the day containing now.
func (c IngestConfig) Window(now time.Time) (from, to time.Time) {
	days := c.Days
	if days <= 0 {
		days = 1
	}
	to = now.UTC().Truncate(24 * time.Hour)
	from = to.AddDate(0, 0, -days)
	return from, to
}
