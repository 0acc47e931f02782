package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CurvePull/internal/domain/models"
	domrepo "CurvePull/internal/domain/repository"
	"CurvePull/internal/services/analytics"
	"CurvePull/pkg/config"
	"CurvePull/pkg/logger"
)

// fakeSource serves canned observations per series ID.
type fakeSource struct {
	data map[string][]models.Observation
	err  error
}

func (f *fakeSource) Fetch(_ context.Context, seriesID string, _ time.Time) ([]models.Observation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[seriesID], nil
}

// memStore keeps the last saved panel in memory.
type memStore struct {
	mu    sync.Mutex
	panel *models.Panel
	saves int
}

func (s *memStore) Save(_ context.Context, p *models.Panel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = p
	s.saves++
	return nil
}

func (s *memStore) Load(_ context.Context) (*models.Panel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panel == nil {
		return nil, errors.New("empty store")
	}
	return s.panel, nil
}

// nopMetrics satisfies the metrics interface for tests.
type nopMetrics struct{}

func (nopMetrics) RecordRun(string, float64)               {}
func (nopMetrics) RecordSeriesFetched(string, string, int) {}
func (nopMetrics) RecordError(string)                      {}
func (nopMetrics) SetPanelRows(int)                        {}
func (nopMetrics) SetLastPanelDate(time.Time)              {}
func (nopMetrics) RecordLatency(string, float64)           {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func obsSeq(start time.Time, vals ...float64) []models.Observation {
	out := make([]models.Observation, len(vals))
	for i, v := range vals {
		out[i] = models.Observation{Date: start.AddDate(0, 0, i), Value: v}
	}
	return out
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Environment: "test",
		Series: []config.SeriesSpec{
			{Name: "US_2Y", ID: "DGS2", Source: "fake", Country: "US", Units: "percent", TenorYears: 2},
			{Name: "US_10Y", ID: "DGS10", Source: "fake", Country: "US", Units: "percent", TenorYears: 10},
			{Name: "CA_10Y", ID: "CA10", Source: "fake", Country: "CA", Units: "percent", TenorYears: 10},
			{Name: "USDCAD", ID: "FXUSDCAD", Source: "fake", Units: "rate"},
		},
	}
	cfg.Output.Dir = t.TempDir()
	cfg.Pipeline.StartDate = "2024-01-01"
	cfg.Pipeline.VolWindow = 20
	cfg.Pipeline.Spread.USColumn = "US_10Y"
	cfg.Pipeline.Spread.CAColumn = "CA_10Y"
	return cfg
}

func testSources(start time.Time) map[string]domrepo.SeriesSource {
	return map[string]domrepo.SeriesSource{
		"fake": &fakeSource{data: map[string][]models.Observation{
			"DGS2":     obsSeq(start, 4.0, 4.1, 4.2),
			"DGS10":    obsSeq(start, 4.5, 4.6, 4.7),
			"CA10":     obsSeq(start, 3.4, 3.5, 3.6),
			"FXUSDCAD": obsSeq(start, 1.35, 1.36, 1.37),
		}},
	}
}

func TestPipelineRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	store := &memStore{}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	pl := NewPipeline(cfg, testSources(start), store, nil, nil, nopMetrics{}, testLogger(t))
	panel, err := pl.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, panel.Len())
	assert.True(t, panel.HasColumn("US_2s10s"))
	assert.True(t, panel.HasColumn(analytics.SpreadColumn))
	assert.False(t, panel.HasColumn("US_5s30s"), "missing 5Y/30Y tenors omit the slope")
	assert.InDelta(t, 0.5, panel.At("US_2s10s", 0), 1e-9)
	assert.InDelta(t, 110.0, panel.At(analytics.SpreadColumn, 0), 1e-9)

	assert.Equal(t, 1, store.saves)
	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, panel.Columns(), saved.Columns())
}

func TestPipelineSkipsFailedSeries(t *testing.T) {
	cfg := testConfig(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sources := map[string]domrepo.SeriesSource{
		"fake": &fakeSource{data: map[string][]models.Observation{
			"DGS10": obsSeq(start, 4.5, 4.6),
			// DGS2, CA10, FXUSDCAD return no rows
		}},
	}

	pl := NewPipeline(cfg, sources, &memStore{}, nil, nil, nopMetrics{}, testLogger(t))
	panel, err := pl.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"US_10Y"}, panel.Columns())
}

func TestPipelineAllSeriesFailed(t *testing.T) {
	cfg := testConfig(t)
	sources := map[string]domrepo.SeriesSource{
		"fake": &fakeSource{err: errors.New("provider down")},
	}

	pl := NewPipeline(cfg, sources, &memStore{}, nil, nil, nopMetrics{}, testLogger(t))
	_, err := pl.Run(context.Background())
	require.Error(t, err)
}

func TestPipelineDeterministicColumnOrder(t *testing.T) {
	cfg := testConfig(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	run := func() []string {
		pl := NewPipeline(cfg, testSources(start), &memStore{}, nil, nil, nopMetrics{}, testLogger(t))
		panel, err := pl.Run(context.Background())
		require.NoError(t, err)
		return panel.Columns()
	}

	first := run()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run())
	}
}
