package models

// Request and response shapes for the HTTP API. Missing values cross the
// wire as JSON null, so view types carry *float64 instead of NaN.

type ChangesRequest struct {
	Series  string `query:"series" validate:"omitempty,max=64"`
	Horizon string `query:"horizon" validate:"omitempty,oneof=1d 1w 1m 3m"`
}

type VolRequest struct {
	Window int `query:"window" default:"20" validate:"omitempty,min=2,max=252"`
}

// PanelView is the wide panel rendered for JSON: dates as YYYY-MM-DD,
// columns in panel order, nulls for missing cells.
type PanelView struct {
	Dates   []string              `json:"dates"`
	Columns []string              `json:"columns"`
	Values  map[string][]*float64 `json:"values"`
}

// ChangeRow is one long-format change record rendered for JSON.
type ChangeRow struct {
	Date    string   `json:"date"`
	Series  string   `json:"series"`
	Horizon Horizon  `json:"horizon"`
	BP      *float64 `json:"bp"`
}

// FloatPtr maps the in-memory missing marker to a JSON null.
func FloatPtr(v float64) *float64 {
	if IsMissing(v) {
		return nil
	}
	return &v
}

// ViewOf renders a panel for JSON transport.
func ViewOf(p *Panel) PanelView {
	dates := p.Dates()
	view := PanelView{
		Dates:   make([]string, len(dates)),
		Columns: p.Columns(),
		Values:  make(map[string][]*float64, len(p.Columns())),
	}
	for i, d := range dates {
		view.Dates[i] = d.Format("2006-01-02")
	}
	for _, name := range view.Columns {
		col, _ := p.Column(name)
		vals := make([]*float64, len(col))
		for i, v := range col {
			vals[i] = FloatPtr(v)
		}
		view.Values[name] = vals
	}
	return view
}

// RowsOf renders change points for JSON transport.
func RowsOf(points []ChangePoint) []ChangeRow {
	rows := make([]ChangeRow, len(points))
	for i, cp := range points {
		rows[i] = ChangeRow{
			Date:    cp.Date.Format("2006-01-02"),
			Series:  cp.Series,
			Horizon: cp.Horizon,
			BP:      FloatPtr(cp.BP),
		}
	}
	return rows
}
