package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CurvePull/internal/domain/models"
)

func testPanel(t *testing.T) *models.Panel {
	t.Helper()
	dates := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	p := models.NewPanel(dates)
	p.SetColumn("US_10Y", []float64{4.123456, models.Missing(), 4.2})
	p.SetColumn("CA_10Y", []float64{3.5, 3.55, models.Missing()})
	p.SetColumn("USDCAD", []float64{1.3501, 1.3512, 1.3489})
	return p
}

func assertPanelsClose(t *testing.T, want, got *models.Panel, tol float64) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	require.Equal(t, want.Columns(), got.Columns())
	require.Equal(t, want.Dates(), got.Dates())
	for _, c := range want.Columns() {
		for i := 0; i < want.Len(); i++ {
			w, g := want.At(c, i), got.At(c, i)
			if models.IsMissing(w) {
				assert.True(t, models.IsMissing(g), "%s row %d should be missing", c, i)
				continue
			}
			assert.InDelta(t, w, g, tol, "%s row %d", c, i)
		}
	}
}

func TestFilePanelStoreParquetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFilePanelStore(dir, "", "")
	p := testPanel(t)

	require.NoError(t, store.Save(context.Background(), p))

	got, err := store.LoadParquet(context.Background())
	require.NoError(t, err)
	assertPanelsClose(t, p, got, 1e-6)
}

func TestFilePanelStoreCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFilePanelStore(dir, "", "")
	p := testPanel(t)

	require.NoError(t, store.Save(context.Background(), p))

	got, err := store.LoadCSV(context.Background())
	require.NoError(t, err)
	assertPanelsClose(t, p, got, 1e-6)
}

func TestFilePanelStoreLoadPrefersParquet(t *testing.T) {
	dir := t.TempDir()
	store := NewFilePanelStore(dir, "", "")
	p := testPanel(t)
	require.NoError(t, store.Save(context.Background(), p))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assertPanelsClose(t, p, got, 1e-6)
}

func TestFilePanelStoreIdempotentCSV(t *testing.T) {
	dir := t.TempDir()
	store := NewFilePanelStore(dir, "", "")
	p := testPanel(t)

	require.NoError(t, store.Save(context.Background(), p))
	first, err := os.ReadFile(store.CSVPath())
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), p.Clone()))
	second, err := os.ReadFile(store.CSVPath())
	require.NoError(t, err)

	assert.Equal(t, first, second, "same panel must produce byte-identical csv")
}

func TestFilePanelStoreNoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFilePanelStore(dir, "", "")
	require.NoError(t, store.Save(context.Background(), testPanel(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"daily.parquet", "daily.csv"}, names)
}

func TestFilePanelStoreMissingCellsStayMissing(t *testing.T) {
	dir := t.TempDir()
	store := NewFilePanelStore(dir, "", "")
	p := testPanel(t)
	require.NoError(t, store.Save(context.Background(), p))

	got, err := store.LoadCSV(context.Background())
	require.NoError(t, err)
	assert.True(t, models.IsMissing(got.At("US_10Y", 1)))
	assert.True(t, models.IsMissing(got.At("CA_10Y", 2)))
}
