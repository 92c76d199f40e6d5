package statistics

import "math"

// EfficientFrontierPoints filters a cloud of (return, risk) points down to an
// approximate efficient frontier. It finds the minimum risk across all points,
// takes the return/risk ratio at that point as a threshold, and keeps every
// point whose own ratio is at least that threshold.
//
// This is a cheap Sharpe-ratio cutoff, not a true non-dominated-point filter:
// callers must not assume the result is Pareto-optimal or monotone in order.
func EfficientFrontierPoints(points [][2]float64) [][2]float64 {
	minRisk := math.MaxFloat64
	for _, p := range points {
		if p[1] < minRisk {
			minRisk = p[1]
		}
	}

	thresholdRatio := -math.MaxFloat64
	for _, p := range points {
		if p[1] == minRisk {
			thresholdRatio = p[0] / minRisk
			break
		}
	}

	frontier := make([][2]float64, 0)
	seen := make(map[[2]float64]struct{}, len(points))
	for _, p := range points {
		if _, dup := seen[p]; dup {
			continue
		}
		if p[0]/p[1] >= thresholdRatio {
			seen[p] = struct{}{}
			frontier = append(frontier, p)
		}
	}
	return frontier
}
