package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CurvePull/internal/domain/models"
)

func TestRollingVolMinObservationsThreshold(t *testing.T) {
	// window 20 → threshold max(5, 20/4) = 5 non-missing diffs.
	n := 10
	p := models.NewPanel(datesOf(n))
	p.SetColumn("A", ramp(n, 1.0, 0.05))

	out := RollingVol(p, []string{"A"}, 20)
	col, ok := out.Column("A")
	require.True(t, ok)

	// Row i has i diffs available (diff at row 0 is missing).
	for i := 0; i < 5; i++ {
		assert.True(t, models.IsMissing(col[i]), "row %d has only %d diffs", i, i)
	}
	for i := 5; i < n; i++ {
		assert.False(t, models.IsMissing(col[i]), "row %d", i)
	}
}

func TestRollingVolConstantDiffsIsZero(t *testing.T) {
	n := 30
	p := models.NewPanel(datesOf(n))
	p.SetColumn("A", ramp(n, 2.0, 0.01))

	out := RollingVol(p, []string{"A"}, 20)
	col, _ := out.Column("A")
	// Identical daily moves have zero dispersion.
	assert.InDelta(t, 0.0, col[n-1], 1e-9)
}

func TestRollingVolSampleStd(t *testing.T) {
	// Values chosen so the bp diffs are 10, 20, 30, 40, 50.
	vals := []float64{1.0, 1.1, 1.3, 1.6, 2.0, 2.5}
	p := models.NewPanel(datesOf(len(vals)))
	p.SetColumn("A", vals)

	out := RollingVol(p, []string{"A"}, 20)
	col, _ := out.Column("A")

	// Sample std of {10,20,30,40,50}: mean 30, ss 1000, 1000/4=250.
	want := math.Sqrt(250.0)
	assert.InDelta(t, want, col[len(vals)-1], 1e-6)
	assert.True(t, models.IsMissing(col[len(vals)-2]), "only 4 diffs available")
}

func TestRollingVolTrailingWindowBounds(t *testing.T) {
	// 40 rows, window 20: the diff at row 1 must not influence row 39.
	n := 40
	vals := ramp(n, 1.0, 0.01)
	vals[1] = 5.0 // one huge early move
	p := models.NewPanel(datesOf(n))
	p.SetColumn("A", vals)

	out := RollingVol(p, []string{"A"}, 20)
	col, _ := out.Column("A")

	// Rows 22..39 see only uniform diffs after the shock leaves the window,
	// except the two rows holding the shock's entry/exit diffs.
	assert.InDelta(t, 0.0, col[n-1], 1e-9)
}

func TestRollingVolDefaultWindow(t *testing.T) {
	n := 10
	p := models.NewPanel(datesOf(n))
	p.SetColumn("A", ramp(n, 1.0, 0.05))

	byDefault := RollingVol(p, []string{"A"}, 0)
	byTwenty := RollingVol(p, []string{"A"}, DefaultVolWindow)

	a, _ := byDefault.Column("A")
	b, _ := byTwenty.Column("A")
	for i := range a {
		if models.IsMissing(a[i]) {
			assert.True(t, models.IsMissing(b[i]))
			continue
		}
		assert.InDelta(t, b[i], a[i], 1e-12)
	}
}

func TestRollingVolOutputSharesDateIndex(t *testing.T) {
	n := 8
	p := models.NewPanel(datesOf(n))
	p.SetColumn("A", ramp(n, 1.0, 0.05))

	out := RollingVol(p, []string{"A"}, 20)
	assert.Equal(t, p.Dates(), out.Dates())
}
