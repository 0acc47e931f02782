package analytics

import "CurvePull/internal/domain/models"

// SpreadColumn is the cross-country spread column name.
const SpreadColumn = "UST10_minus_GoC10_bp"

// CrossCountrySpread adds the US-minus-Canada 10Y spread in basis points:
// (us10 − ca10) × 100, row-wise with NaN propagation. When either column
// is absent the panel is left unmodified; the spread is best-effort
// enrichment, not a requirement.
func CrossCountrySpread(p *models.Panel, us10, ca10 string) {
	us, ok := p.Column(us10)
	if !ok {
		return
	}
	ca, ok := p.Column(ca10)
	if !ok {
		return
	}
	out := make([]float64, p.Len())
	for i := range out {
		out[i] = (us[i] - ca[i]) * 100
	}
	p.SetColumn(SpreadColumn, out)
}
