package statistics

import (
	"math"
	"sort"
)

// ValueAtRisk computes the historical VaR of a return series at the given
// confidence level (e.g. 0.95 for 95%). The series is sorted ascending and
// the value at index floor((1-cl)*(n-1)) is returned, i.e. the lower-tail
// empirical quantile. Confidence levels outside [0, 1] saturate at the
// series extremes.
func ValueAtRisk(returns []float64, confidenceLevel float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	index := int((1.0 - confidenceLevel) * float64(len(returns)-1))
	if index < 0 {
		index = 0
	}
	if index > len(sorted)-1 {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// ExpectedShortfall computes the mean of all returns strictly below the VaR
// threshold at the given confidence level. When no return falls below the
// threshold the result is NaN (undefined tail).
func ExpectedShortfall(returns []float64, confidenceLevel float64) float64 {
	threshold := ValueAtRisk(returns, confidenceLevel)

	var sum float64
	var count int
	for _, r := range returns {
		if r < threshold {
			sum += r
			count++
		}
	}
	return sum / float64(count)
}
