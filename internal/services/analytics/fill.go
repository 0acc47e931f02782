package analytics

import "CurvePull/internal/domain/models"

// ForwardFill replaces each NaN in the designated yield columns with the
// most recent earlier value in date order. Leading NaNs stay NaN. Columns
// not listed (FX, derived) are untouched. This bridges non-aligned holiday
// calendars between sourcing countries.
func ForwardFill(p *models.Panel, yieldCols []string) {
	for _, name := range yieldCols {
		col, ok := p.Column(name)
		if !ok {
			continue
		}
		last := models.Missing()
		for i, v := range col {
			if models.IsMissing(v) {
				col[i] = last
			} else {
				last = v
			}
		}
	}
}
