package heatmap

import (
	"fmt"
	"strconv"
	"time"

	"github.com/qualarmap/qualarmap/internal/measurement"
)

// Interval selects the granularity a heatmap request iterates over.
type Interval string

const (
	IntervalInstant Interval = "instant"
	IntervalHourly  Interval = "hourly"
	IntervalDaily   Interval = "daily"
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

// TimeKey pairs a response map label with the repository time reference its
// measurements are aggregated over.
type TimeKey struct {
	Label     string
	Reference string
}

// TimeSpec carries the reference fields of a heatmap request. Which fields
// are required depends on the interval: instant needs Reference, hourly needs
// Year/Month/Day, daily needs Year/Month, monthly needs Year, and yearly
// needs FirstYear/LastYear.
type TimeSpec struct {
	Reference string
	Year      int
	Month     time.Month
	Day       int
	FirstYear int
	LastYear  int
}

// ResolveTimeKeys expands an interval and its reference fields into the
// ordered sequence of time keys a heatmap iterates. Daily intervals honor the
// real month length, including leap Februaries.
func ResolveTimeKeys(interval Interval, spec TimeSpec) ([]TimeKey, error) {
	switch interval {
	case IntervalInstant:
		if _, err := measurement.ParseTimeReference(spec.Reference); err != nil {
			return nil, err
		}
		return []TimeKey{{Label: "1", Reference: spec.Reference}}, nil

	case IntervalHourly:
		if err := validDate(spec.Year, spec.Month, spec.Day); err != nil {
			return nil, err
		}
		base := fmt.Sprintf("%04d-%02d-%02d", spec.Year, spec.Month, spec.Day)
		keys := make([]TimeKey, 0, 24)
		for hour := 0; hour < 24; hour++ {
			keys = append(keys, TimeKey{
				Label:     strconv.Itoa(hour),
				Reference: fmt.Sprintf("%s %02d", base, hour),
			})
		}
		return keys, nil

	case IntervalDaily:
		if err := validDate(spec.Year, spec.Month, 1); err != nil {
			return nil, err
		}
		days := daysIn(spec.Year, spec.Month)
		keys := make([]TimeKey, 0, days)
		for day := 1; day <= days; day++ {
			keys = append(keys, TimeKey{
				Label:     strconv.Itoa(day),
				Reference: fmt.Sprintf("%04d-%02d-%02d", spec.Year, spec.Month, day),
			})
		}
		return keys, nil

	case IntervalMonthly:
		if spec.Year < 1 {
			return nil, fmt.Errorf("monthly interval needs a year, got %d", spec.Year)
		}
		keys := make([]TimeKey, 0, 12)
		for month := 1; month <= 12; month++ {
			keys = append(keys, TimeKey{
				Label:     strconv.Itoa(month),
				Reference: fmt.Sprintf("%04d-%02d", spec.Year, month),
			})
		}
		return keys, nil

	case IntervalYearly:
		if spec.FirstYear < 1 || spec.LastYear < spec.FirstYear {
			return nil, fmt.Errorf("yearly interval needs first_year <= last_year, got %d..%d", spec.FirstYear, spec.LastYear)
		}
		keys := make([]TimeKey, 0, spec.LastYear-spec.FirstYear+1)
		for year := spec.FirstYear; year <= spec.LastYear; year++ {
			label := strconv.Itoa(year)
			keys = append(keys, TimeKey{Label: label, Reference: label})
		}
		return keys, nil
	}

	return nil, fmt.Errorf("unknown interval %q", interval)
}

func validDate(year int, month time.Month, day int) error {
	if year < 1 || month < time.January || month > time.December || day < 1 || day > daysIn(year, month) {
		return fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return nil
}

// daysIn uses day-zero normalization of the following month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
