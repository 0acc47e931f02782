package models

import "time"

// Observation is a single dated value from a raw series. Value is NaN for
// dates where the source reported no number.
type Observation struct {
	Date  time.Time
	Value float64
}

// NamedSeries pairs a panel column name with its raw observations. Merge
// input is ordered so that panel column order (and therefore file output)
// is deterministic across runs.
type NamedSeries struct {
	Name         string
	Observations []Observation
}

// TenorMapping maps an integer tenor in years to the panel column holding
// that tenor's yield for one country. At most one column per tenor.
type TenorMapping map[int]string
