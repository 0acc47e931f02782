package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CurvePull/internal/domain/models"
	domrepo "CurvePull/internal/domain/repository"
	"CurvePull/internal/usecase"
	"CurvePull/pkg/config"
	xlogger "CurvePull/pkg/logger"
)

type stubSource struct {
	data map[string][]models.Observation
}

func (s *stubSource) Fetch(_ context.Context, seriesID string, _ time.Time) ([]models.Observation, error) {
	return s.data[seriesID], nil
}

type stubStore struct {
	panel *models.Panel
}

func (s *stubStore) Save(_ context.Context, p *models.Panel) error { s.panel = p; return nil }
func (s *stubStore) Load(_ context.Context) (*models.Panel, error) {
	if s.panel == nil {
		return nil, errors.New("empty")
	}
	return s.panel, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordRun(string, float64)               {}
func (stubMetrics) RecordSeriesFetched(string, string, int) {}
func (stubMetrics) RecordError(string)                      {}
func (stubMetrics) SetPanelRows(int)                        {}
func (stubMetrics) SetLastPanelDate(time.Time)              {}
func (stubMetrics) RecordLatency(string, float64)           {}

func newTestRouter(t *testing.T, refreshed bool) *echo.Echo {
	t.Helper()

	cfg := &config.Config{
		Environment: "test",
		Series: []config.SeriesSpec{
			{Name: "US_10Y", ID: "DGS10", Source: "stub", Country: "US", Units: "percent", TenorYears: 10},
			{Name: "CA_10Y", ID: "CA10", Source: "stub", Country: "CA", Units: "percent", TenorYears: 10},
		},
	}
	cfg.Output.Dir = t.TempDir()
	cfg.Pipeline.VolWindow = 20
	cfg.Pipeline.Spread.USColumn = "US_10Y"
	cfg.Pipeline.Spread.CAColumn = "CA_10Y"

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := func(vals ...float64) []models.Observation {
		out := make([]models.Observation, len(vals))
		for i, v := range vals {
			out[i] = models.Observation{Date: start.AddDate(0, 0, i), Value: v}
		}
		return out
	}
	sources := map[string]domrepo.SeriesSource{
		"stub": &stubSource{data: map[string][]models.Observation{
			"DGS10": obs(4.5, 4.6, 4.7),
			"CA10":  obs(3.4, 3.5, 3.6),
		}},
	}

	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	pl := usecase.NewPipeline(cfg, sources, &stubStore{}, nil, nil, stubMetrics{}, l)
	svc := usecase.NewPanelService(cfg, pl, &stubStore{}, nil, l)
	if refreshed {
		require.NoError(t, svc.Refresh(context.Background()))
	}

	e := echo.New()
	NewPanelHandler(l, svc).RegisterRoutes(e)
	return e
}

func doGET(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPanelEndpointBeforeRefresh(t *testing.T) {
	e := newTestRouter(t, false)
	rec := doGET(e, "/api/panel")
	assert.Equal(t, http.StatusOK, rec.Code) // envelope carries the status

	var body struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Status)
}

func TestPanelEndpoint(t *testing.T) {
	e := newTestRouter(t, true)
	rec := doGET(e, "/api/panel")

	var body struct {
		Status int `json:"status"`
		Data   struct {
			Dates   []string              `json:"dates"`
			Columns []string              `json:"columns"`
			Values  map[string][]*float64 `json:"values"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)
	assert.Len(t, body.Data.Dates, 3)
	assert.Contains(t, body.Data.Columns, "US_10Y")
	assert.Contains(t, body.Data.Columns, "UST10_minus_GoC10_bp")
}

func TestChangesEndpointFilters(t *testing.T) {
	e := newTestRouter(t, true)
	rec := doGET(e, "/api/changes?series=US_10Y&horizon=1d")

	var body struct {
		Status int `json:"status"`
		Data   []struct {
			Series  string   `json:"series"`
			Horizon string   `json:"horizon"`
			BP      *float64 `json:"bp"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)
	require.NotEmpty(t, body.Data)
	for _, row := range body.Data {
		assert.Equal(t, "US_10Y", row.Series)
		assert.Equal(t, "1d", row.Horizon)
	}
	assert.Nil(t, body.Data[0].BP, "first row has no lookback history")
}

func TestChangesEndpointRejectsBadHorizon(t *testing.T) {
	e := newTestRouter(t, true)
	rec := doGET(e, "/api/changes?horizon=2y")

	var body struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.Status)
}

func TestVolEndpointRejectsTinyWindow(t *testing.T) {
	e := newTestRouter(t, true)
	rec := doGET(e, "/api/vol?window=1")

	var body struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.Status)
}

func TestSpreadEndpoint(t *testing.T) {
	e := newTestRouter(t, true)
	rec := doGET(e, "/api/spread")

	var body struct {
		Status int `json:"status"`
		Data   struct {
			Columns []string              `json:"columns"`
			Values  map[string][]*float64 `json:"values"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)
	require.Equal(t, []string{"UST10_minus_GoC10_bp"}, body.Data.Columns)
	require.NotNil(t, body.Data.Values["UST10_minus_GoC10_bp"][0])
	assert.InDelta(t, 110.0, *body.Data.Values["UST10_minus_GoC10_bp"][0], 1e-9)
}

func TestRefreshEndpoint(t *testing.T) {
	e := newTestRouter(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)

	rec = doGET(e, "/api/panel")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)
}
