package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CurvePull/internal/services/analytics"
	"CurvePull/pkg/cache"
)

func newTestService(t *testing.T) (*PanelService, *memStore) {
	t.Helper()
	cfg := testConfig(t)
	store := &memStore{}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pl := NewPipeline(cfg, testSources(start), store, nil, nil, nopMetrics{}, testLogger(t))

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	return NewPanelService(cfg, pl, store, mem, testLogger(t)), store
}

func TestPanelServiceNoPanelYet(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Panel()
	assert.ErrorIs(t, err, ErrNoPanel)

	_, err = svc.Changes(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoPanel)
}

func TestPanelServiceRefreshAndPanel(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Refresh(context.Background()))

	view, err := svc.Panel()
	require.NoError(t, err)
	assert.Len(t, view.Dates, 3)
	assert.Contains(t, view.Columns, "US_10Y")
	assert.Contains(t, view.Columns, analytics.SpreadColumn)
}

func TestPanelServiceLoadStored(t *testing.T) {
	svc, store := newTestService(t)
	require.NoError(t, svc.Refresh(context.Background()))

	// A second service over the same store can serve without refetching.
	cfg := testConfig(t)
	svc2 := NewPanelService(cfg, nil, store, nil, testLogger(t))
	require.NoError(t, svc2.LoadStored(context.Background()))

	view, err := svc2.Panel()
	require.NoError(t, err)
	assert.Len(t, view.Dates, 3)
}

func TestPanelServiceChangesFilters(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Refresh(context.Background()))

	rows, err := svc.Changes(context.Background(), "US_10Y", "1d")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.Equal(t, "US_10Y", row.Series)
		assert.Equal(t, "1d", string(row.Horizon))
	}

	// First row lacks history: null bp.
	assert.Nil(t, rows[0].BP)
	require.NotNil(t, rows[1].BP)
	assert.InDelta(t, 10.0, *rows[1].BP, 1e-9)
}

func TestPanelServiceChangesCachedAcrossCalls(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Refresh(context.Background()))

	first, err := svc.Changes(context.Background(), "", "")
	require.NoError(t, err)
	second, err := svc.Changes(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPanelServiceVolUsesConfigDefault(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Refresh(context.Background()))

	view, err := svc.Vol(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, view.Dates, 3)
	// Three rows give at most two diffs, below the min-sample threshold.
	for _, v := range view.Values["US_10Y"] {
		assert.Nil(t, v)
	}
}

func TestPanelServiceSpread(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Refresh(context.Background()))

	view, err := svc.Spread()
	require.NoError(t, err)
	require.Equal(t, []string{analytics.SpreadColumn}, view.Columns)
	require.NotNil(t, view.Values[analytics.SpreadColumn][0])
	assert.InDelta(t, 110.0, *view.Values[analytics.SpreadColumn][0], 1e-9)
}
