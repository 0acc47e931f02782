package analytics

import (
	"math"

	"CurvePull/internal/domain/models"
)

// DefaultVolWindow is the rolling window used when the caller passes a
// non-positive window.
const DefaultVolWindow = 20

// RollingVol computes rolling realized volatility per column: the sample
// standard deviation of daily basis-point changes over a trailing window
// of `window` rows. A value is emitted once at least max(5, window/4)
// non-NaN changes are in the window, so short histories still produce
// partial output; rows before that threshold get NaN. The result is a
// panel over the same dates with one vol column per input column.
func RollingVol(p *models.Panel, cols []string, window int) *models.Panel {
	if window <= 0 {
		window = DefaultVolWindow
	}
	minObs := window / 4
	if minObs < 5 {
		minObs = 5
	}

	out := models.NewPanel(p.Dates())
	for _, name := range cols {
		col, ok := p.Column(name)
		if !ok {
			continue
		}

		diffs := make([]float64, len(col))
		for i := range col {
			if i == 0 {
				diffs[i] = models.Missing()
				continue
			}
			diffs[i] = (col[i] - col[i-1]) * 100
		}

		vol := make([]float64, len(col))
		for i := range col {
			lo := i - window + 1
			if lo < 0 {
				lo = 0
			}
			vol[i] = sampleStd(diffs[lo : i+1], minObs)
		}
		out.SetColumn(name, vol)
	}
	return out
}

// sampleStd returns the sample (n−1 denominator) standard deviation of the
// non-NaN values in window, or NaN when fewer than minObs are present.
func sampleStd(window []float64, minObs int) float64 {
	n := 0
	sum := 0.0
	for _, v := range window {
		if models.IsMissing(v) {
			continue
		}
		n++
		sum += v
	}
	if n < minObs || n < 2 {
		return models.Missing()
	}
	mean := sum / float64(n)
	ss := 0.0
	for _, v := range window {
		if models.IsMissing(v) {
			continue
		}
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
