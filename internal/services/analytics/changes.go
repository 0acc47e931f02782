package analytics

import "CurvePull/internal/domain/models"

// Changes computes multi-horizon yield moves in basis points: for each
// column and each row i, (value[i] − value[i−k]) × 100 for the fixed
// trading-day offsets k of 1d/1w/1m/3m. Rows before index k get NaN.
// Output is long-format, keyed by (date, series, horizon).
func Changes(p *models.Panel, cols []string) []models.ChangePoint {
	dates := p.Dates()
	horizons := models.Horizons()
	out := make([]models.ChangePoint, 0, len(cols)*len(horizons)*len(dates))

	for _, name := range cols {
		col, ok := p.Column(name)
		if !ok {
			continue
		}
		for _, h := range horizons {
			k := h.Offset()
			for i := range col {
				bp := models.Missing()
				if i >= k {
					bp = (col[i] - col[i-k]) * 100
				}
				out = append(out, models.ChangePoint{
					Date:    dates[i],
					Series:  name,
					Horizon: h,
					BP:      bp,
				})
			}
		}
	}
	return out
}
