package models

// Horizon is a fixed lookback bucket for yield changes. The offsets encode
// the trading-day conventions 5/21/63 for 1w/1m/3m; downstream consumers
// assume exactly these.
type Horizon string

const (
	Horizon1D Horizon = "1d"
	Horizon1W Horizon = "1w"
	Horizon1M Horizon = "1m"
	Horizon3M Horizon = "3m"
)

// Horizons returns all horizons in ascending lookback order.
func Horizons() []Horizon {
	return []Horizon{Horizon1D, Horizon1W, Horizon1M, Horizon3M}
}

// Offset returns the row-position lookback for the horizon, or 0 for an
// unknown horizon.
func (h Horizon) Offset() int {
	switch h {
	case Horizon1D:
		return 1
	case Horizon1W:
		return 5
	case Horizon1M:
		return 21
	case Horizon3M:
		return 63
	default:
		return 0
	}
}

// IsValidHorizon returns true if h is a supported horizon.
func IsValidHorizon(h Horizon) bool {
	return h.Offset() > 0
}
