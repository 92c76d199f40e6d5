// Package performance computes risk/return statistics for single securities
// and optimized portfolios. The orchestration layer fetches and aligns return
// series, runs the weight optimizer and assembles the immutable result
// records; the numerical work lives in the statistics and optimization
// packages.
package performance

import (
	"math"

	"github.com/quantfolio/quantfolio/internal/modules/statistics"
)

// PerformanceStats is the flat record of risk/return metrics computed from a
// return series and its benchmark. Return and volatility figures are in
// percent; NaN fields mean "undefined for this input".
type PerformanceStats struct {
	DailyReturn          float64 `json:"daily_return"`
	DailyVolatility      float64 `json:"daily_volatility"`
	CumulativeReturn     float64 `json:"cumulative_return"`
	AnnualizedReturn     float64 `json:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	Alpha                float64 `json:"alpha"`
	Beta                 float64 `json:"beta"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	SortinoRatio         float64 `json:"sortino_ratio"`
	ActiveReturn         float64 `json:"active_return"`
	ActiveRisk           float64 `json:"active_risk"`
	InformationRatio     float64 `json:"information_ratio"`
	CalmarRatio          float64 `json:"calmar_ratio"`
	MaximumDrawdown      float64 `json:"maximum_drawdown"`
	ValueAtRisk          float64 `json:"value_at_risk"`
	ExpectedShortfall    float64 `json:"expected_shortfall"`
}

// ComputeStats builds the full performance record from aligned return and
// benchmark series. riskFreeRate is decimal (0.02 for 2%) and is moved into
// the same percent scale as the annualized figures before subtraction.
// Pure and deterministic: identical inputs produce identical output.
func ComputeStats(
	returns, benchmarkReturns []float64,
	riskFreeRate, confidenceLevel float64,
	interval IntervalDays,
) PerformanceStats {
	days := interval.Mode
	annualPeriods := interval.AnnualPeriods()
	rf := riskFreeRate * 100.0

	dailyReturn := statistics.Mean(returns) / days
	dailyVolatility := statistics.PopStdDev(returns)
	annualizedReturn := (math.Pow(1.0+dailyReturn/100.0, annualPeriods) - 1.0) * 100.0
	annualizedVolatility := dailyVolatility * math.Sqrt(annualPeriods)

	alpha, beta := statistics.OLSRegression(returns, benchmarkReturns)

	excessReturns := make([]float64, len(returns))
	for i := range returns {
		excessReturns[i] = returns[i] - benchmarkReturns[i]
	}
	meanExcess := statistics.Mean(excessReturns)
	activeReturn := (math.Pow(1.0+meanExcess/100.0, annualPeriods) - 1.0) * 100.0
	activeRisk := statistics.PopStdDev(excessReturns) * math.Sqrt(annualPeriods)

	_, maxDrawdown := statistics.MaximumDrawdown(returns)

	return PerformanceStats{
		DailyReturn:          dailyReturn,
		DailyVolatility:      dailyVolatility,
		CumulativeReturn:     statistics.CumulativeReturn(returns),
		AnnualizedReturn:     annualizedReturn,
		AnnualizedVolatility: annualizedVolatility,
		Alpha:                alpha,
		Beta:                 beta,
		SharpeRatio:          (annualizedReturn - rf) / annualizedVolatility,
		SortinoRatio:         (annualizedReturn - rf) / (statistics.DownsideDeviation(returns) * math.Sqrt(annualPeriods)),
		ActiveReturn:         activeReturn,
		ActiveRisk:           activeRisk,
		InformationRatio:     activeReturn / activeRisk,
		CalmarRatio:          annualizedReturn / maxDrawdown,
		MaximumDrawdown:      maxDrawdown,
		ValueAtRisk:          statistics.ValueAtRisk(returns, confidenceLevel),
		ExpectedShortfall:    statistics.ExpectedShortfall(returns, confidenceLevel),
	}
}
