package performance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyInterval() IntervalDays {
	return IntervalDays{Average: 1, Mode: 1}
}

func TestComputeStats_BasicMetrics(t *testing.T) {
	returns := []float64{1.0, -2.0, 3.0, -1.0, 2.0}
	benchmark := []float64{0.5, -1.0, 1.5, -0.5, 1.0}

	stats := ComputeStats(returns, benchmark, 0.02, 0.95, dailyInterval())

	// Mean return 0.6%/day, modal gap one day.
	assert.InDelta(t, 0.6, stats.DailyReturn, 1e-9)
	assert.InDelta(t, (math.Pow(1.006, 365)-1)*100, stats.AnnualizedReturn, 1e-6)
	assert.InDelta(t, stats.DailyVolatility*math.Sqrt(365), stats.AnnualizedVolatility, 1e-9)

	// The regression runs benchmark on security; half-scale benchmark
	// gives slope 0.5 and zero intercept.
	assert.InDelta(t, 0.5, stats.Beta, 1e-9)
	assert.InDelta(t, 0.0, stats.Alpha, 1e-9)

	// Sharpe subtracts the risk-free rate in percent scale.
	wantSharpe := (stats.AnnualizedReturn - 2.0) / stats.AnnualizedVolatility
	assert.InDelta(t, wantSharpe, stats.SharpeRatio, 1e-9)

	assert.InDelta(t, stats.AnnualizedReturn/stats.MaximumDrawdown, stats.CalmarRatio, 1e-9)
	assert.False(t, math.IsNaN(stats.SortinoRatio))
}

func TestComputeStats_Idempotent(t *testing.T) {
	returns := []float64{1.2, -0.8, 0.4, 2.1, -1.5}
	benchmark := []float64{0.9, -0.4, 0.3, 1.6, -1.1}

	first := ComputeStats(returns, benchmark, 0.02, 0.95, dailyInterval())
	second := ComputeStats(returns, benchmark, 0.02, 0.95, dailyInterval())
	assert.Equal(t, first, second)
}

func TestComputeStats_FlatSeries(t *testing.T) {
	returns := []float64{0, 0, 0, 0}
	benchmark := []float64{1, -1, 1, -1}

	stats := ComputeStats(returns, benchmark, 0.02, 0.95, dailyInterval())

	assert.Zero(t, stats.DailyReturn)
	assert.Zero(t, stats.DailyVolatility)
	// Zero volatility leaves the risk-adjusted ratios undefined.
	assert.True(t, math.IsInf(stats.SharpeRatio, -1) || math.IsNaN(stats.SharpeRatio))
}

func TestIntervalDaysFrom(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Daily gaps with one weekend jump: mode stays at the 1-day gap.
	timestamps := []time.Time{
		base,
		base.AddDate(0, 0, 1),
		base.AddDate(0, 0, 2),
		base.AddDate(0, 0, 5),
		base.AddDate(0, 0, 6),
	}
	got := IntervalDaysFrom(timestamps)
	assert.InDelta(t, 1.0, got.Mode, 1e-9)
	assert.InDelta(t, 1.5, got.Average, 1e-9)
	assert.InDelta(t, 365.0/1.5, got.AnnualPeriods(), 1e-9)
}

func TestIntervalDaysFrom_TieBreaksSmaller(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// One 1-day gap and one 3-day gap: tie broken towards the smaller.
	timestamps := []time.Time{base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 4)}
	got := IntervalDaysFrom(timestamps)
	assert.InDelta(t, 1.0, got.Mode, 1e-9)
}

func TestIntervalDaysFrom_ShortSeries(t *testing.T) {
	got := IntervalDaysFrom(nil)
	require.Equal(t, IntervalDays{Average: 1, Mode: 1}, got)
}
