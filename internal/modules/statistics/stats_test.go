package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
	assert.True(t, math.IsNaN(Mean(nil)))
}

func TestPopStdDev(t *testing.T) {
	// Population std dev of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
	assert.InDelta(t, 2.0, PopStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
	assert.InDelta(t, 0.0, PopStdDev([]float64{3, 3, 3}), 1e-12)
	assert.True(t, math.IsNaN(PopStdDev(nil)))
}

func TestDownsideDeviation(t *testing.T) {
	// Only the non-positive observations contribute.
	got := DownsideDeviation([]float64{5, -2, 3, -4, 0})
	want := PopStdDev([]float64{-2, -4, 0})
	assert.InDelta(t, want, got, 1e-12)

	// An all-positive series has no downside observations, so the deviation
	// is undefined rather than zero.
	assert.True(t, math.IsNaN(DownsideDeviation([]float64{1, 2, 3})))
}

func TestOLSRegression(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{3, 5, 7, 9, 11} // y = 1 + 2x
	alpha, beta := OLSRegression(x, y)
	assert.InDelta(t, 1.0, alpha, 1e-9)
	assert.InDelta(t, 2.0, beta, 1e-9)
}

func TestCumulativeReturn(t *testing.T) {
	// Two periods of +10% compound to +21%.
	assert.InDelta(t, 21.0, CumulativeReturn([]float64{10, 10}), 1e-9)
	assert.InDelta(t, 0.0, CumulativeReturn(nil), 1e-12)

	list := CumulativeReturnsList([]float64{10, 10})
	require.Len(t, list, 2)
	assert.InDelta(t, 0.10, list[0], 1e-9)
	assert.InDelta(t, 0.21, list[1], 1e-9)
}

func TestPortfolioReturn(t *testing.T) {
	got := PortfolioReturn([]float64{0.25, 0.75}, []float64{4, 8})
	assert.InDelta(t, 7.0, got, 1e-12)
}

func TestDailyPortfolioReturns(t *testing.T) {
	table := [][]float64{
		{1, 2, 3},
		{3, 2, 1},
	}
	got := DailyPortfolioReturns([]float64{0.5, 0.5}, table)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.InDelta(t, 2.0, r, 1e-12)
	}
}

func TestLinearInterpolation(t *testing.T) {
	got := LinearInterpolation([]float64{1, 0, 0, 4})
	want := []float64{1, 2, 3, 4}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9)
	}

	// Leading and trailing zeros carry the single non-zero neighbour across.
	got = LinearInterpolation([]float64{0, 2, 0})
	assert.InDelta(t, 2.0, got[0], 1e-12)
	assert.InDelta(t, 2.0, got[1], 1e-12)
	assert.InDelta(t, 2.0, got[2], 1e-12)
}
