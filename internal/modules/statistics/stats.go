// Package statistics provides the pure numerical primitives behind the
// performance and optimization modules: deviation measures, covariance and
// correlation matrices, drawdown, tail-risk metrics and portfolio aggregation.
//
// All functions are deterministic and perform no I/O. Inputs containing NaN
// are not rejected; undefined results propagate as NaN, per the convention
// that NaN means "undefined for this input" rather than a failure.
package statistics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values.
// The mean of an empty series is undefined and reported as NaN.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return stat.Mean(data, nil)
}

// PopStdDev calculates the population standard deviation of a return series.
// The deviation of an empty series is undefined and reported as NaN.
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return math.Sqrt(stat.PopVariance(data, nil))
}

// DownsideDeviation calculates the population standard deviation of the
// subsequence of returns that are zero or negative.
func DownsideDeviation(data []float64) float64 {
	downside := make([]float64, 0, len(data))
	for _, v := range data {
		if v <= 0 {
			downside = append(downside, v)
		}
	}
	return PopStdDev(downside)
}

// OLSRegression performs a simple linear regression of y on x and returns
// the intercept (alpha) and slope (beta). A zero-variance x yields NaN.
func OLSRegression(x, y []float64) (alpha, beta float64) {
	return stat.LinearRegression(x, y, nil, false)
}

// CumulativeReturn compounds a series of percentage returns into a single
// percentage: (prod(1 + r/100) - 1) * 100.
func CumulativeReturn(returns []float64) float64 {
	product := 1.0
	for _, r := range returns {
		product *= 1.0 + r/100.0
	}
	return (product - 1.0) * 100.0
}

// CumulativeReturnsList returns the running compounded return at every step,
// in decimal terms (0.05 = 5%). Used by reporting layers for growth curves.
func CumulativeReturnsList(returns []float64) []float64 {
	out := make([]float64, len(returns))
	cumulative := 1.0
	for i, r := range returns {
		cumulative *= 1.0 + r/100.0
		out[i] = cumulative - 1.0
	}
	return out
}

// PortfolioReturn computes the weighted mean return of a portfolio,
// weights and meanReturns aligned positionally.
func PortfolioReturn(weights, meanReturns []float64) float64 {
	var total float64
	for i, w := range weights {
		total += w * meanReturns[i]
	}
	return total
}

// DailyPortfolioReturns computes the per-period return series of a weighted
// portfolio. Column i of the table is weighted by weights[i].
func DailyPortfolioReturns(weights []float64, table [][]float64) []float64 {
	if len(table) == 0 {
		return nil
	}
	rows := len(table[0])
	out := make([]float64, rows)
	for col, w := range weights {
		series := table[col]
		for row := 0; row < rows; row++ {
			out[row] += w * series[row]
		}
	}
	return out
}

// LinearInterpolation fills zero-valued gaps in a vector by linear
// interpolation between the nearest non-zero neighbours. When only one
// side has a non-zero neighbour its value is carried across the gap.
func LinearInterpolation(vec []float64) []float64 {
	out := make([]float64, len(vec))
	copy(out, vec)
	n := len(out)

	for i := 0; i < n; i++ {
		if out[i] != 0 {
			continue
		}
		left := i
		right := i
		for left > 0 && out[left] == 0 {
			left--
		}
		for right < n-1 && out[right] == 0 {
			right++
		}

		switch {
		case out[left] != 0 && out[right] != 0:
			ratio := float64(i-left) / float64(right-left)
			out[i] = out[left] + (out[right]-out[left])*ratio
		case out[left] != 0:
			out[i] = out[left]
		case out[right] != 0:
			out[i] = out[right]
		}
	}
	return out
}
