package analytics

import (
	"sort"

	"CurvePull/internal/domain/models"
)

// Slopes adds curve-steepness columns per country: {country}_2s10s =
// 10Y − 2Y and {country}_5s30s = 30Y − 5Y, in the input units (percent).
// A slope is omitted, not an error, when either tenor column is absent.
// NaN inputs propagate row-wise. Countries are processed in sorted order
// so column order is stable across runs.
func Slopes(p *models.Panel, mappings map[string]models.TenorMapping) {
	countries := make([]string, 0, len(mappings))
	for c := range mappings {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	for _, country := range countries {
		tm := mappings[country]
		addSlope(p, country+"_2s10s", tm[10], tm[2])
		addSlope(p, country+"_5s30s", tm[30], tm[5])
	}
}

func addSlope(p *models.Panel, name, longCol, shortCol string) {
	long, ok := p.Column(longCol)
	if !ok {
		return
	}
	short, ok := p.Column(shortCol)
	if !ok {
		return
	}
	out := make([]float64, p.Len())
	for i := range out {
		out[i] = long[i] - short[i]
	}
	p.SetColumn(name, out)
}
