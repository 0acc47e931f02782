package analytics

import (
	"sort"
	"time"

	"CurvePull/internal/domain/models"
	"CurvePull/pkg/util"
)

// Merge outer-joins per-series date/value tables into one panel: the date
// index is the union of all input dates, sorted ascending, one row per
// distinct date. A series with no observation on a date gets NaN there.
// When an input repeats a date, the last occurrence wins. Column order
// follows input order.
func Merge(series []models.NamedSeries) (*models.Panel, error) {
	if len(series) == 0 {
		return nil, models.NewConfigError("no series to merge")
	}

	type byDate map[time.Time]float64
	perSeries := make([]byDate, len(series))
	dateSet := make(map[time.Time]struct{})

	for i, s := range series {
		m := make(byDate, len(s.Observations))
		for _, o := range s.Observations {
			d := util.DateOnly(o.Date)
			m[d] = o.Value // later duplicates overwrite earlier ones
			dateSet[d] = struct{}{}
		}
		perSeries[i] = m
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	panel := models.NewPanel(dates)
	for i, s := range series {
		col := make([]float64, len(dates))
		for j, d := range dates {
			if v, ok := perSeries[i][d]; ok {
				col[j] = v
			} else {
				col[j] = models.Missing()
			}
		}
		panel.SetColumn(s.Name, col)
	}
	return panel, nil
}
