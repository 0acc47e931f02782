package models

import "time"

// ChangePoint is one row of the long-format change table: the basis-point
// move of one series over one horizon ending at Date. BP is NaN when the
// lookback offset exceeds available history.
type ChangePoint struct {
	Date    time.Time `json:"date"`
	Series  string    `json:"series"`
	Horizon Horizon   `json:"horizon"`
	BP      float64   `json:"-"`
}
