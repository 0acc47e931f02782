package util

import "time"

// DateLayout is the calendar-date form used in config, CSV and Parquet
// output, and source payloads.
const DateLayout = "2006-01-02"

// DateOnly truncates t to its calendar date in UTC. Panel rows are keyed
// by calendar date, never by intraday time.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate tries YYYY-MM-DD and RFC3339. Returns (t, true) if any worked;
// the result is truncated to the calendar date.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOnly(t), true
	}
	return time.Time{}, false
}

// ParseDateDefault parses a date or returns default if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return def
}
