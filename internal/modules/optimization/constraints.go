// Package optimization implements portfolio weight optimization: a closed set
// of objective functions, per-asset box constraint enforcement and a
// gradient-descent search that records every visited (return, risk) point.
package optimization

import (
	"fmt"
	"math"
)

// ErrInfeasibleConstraints is returned when a bound set cannot produce a
// weight vector that sums to one.
var ErrInfeasibleConstraints = fmt.Errorf("infeasible constraints")

// DefaultBounds returns the default [0, 1] bound for each of n assets.
func DefaultBounds(n int) []Bound {
	bounds := make([]Bound, n)
	for i := range bounds {
		bounds[i] = Bound{Lower: 0.0, Upper: 1.0}
	}
	return bounds
}

// ValidateBounds checks a bound set for feasibility before the optimizer
// starts. A set is infeasible when any lower bound exceeds its upper bound,
// when the lower bounds sum above one, or when the upper bounds sum below
// one. An infeasible set would otherwise surface as a divide-by-zero during
// renormalization deep inside the search.
func ValidateBounds(bounds []Bound) error {
	var lowerSum, upperSum float64
	for i, b := range bounds {
		if b.Lower > b.Upper {
			return fmt.Errorf("%w: asset %d has lower bound %.4f > upper bound %.4f",
				ErrInfeasibleConstraints, i, b.Lower, b.Upper)
		}
		lowerSum += b.Lower
		upperSum += b.Upper
	}
	if lowerSum > 1.0 {
		return fmt.Errorf("%w: lower bounds sum to %.4f (> 1)", ErrInfeasibleConstraints, lowerSum)
	}
	if upperSum < 1.0 {
		return fmt.Errorf("%w: upper bounds sum to %.4f (< 1)", ErrInfeasibleConstraints, upperSum)
	}
	return nil
}

// EnforceConstraints projects a raw weight vector onto the feasible region:
// each weight is clamped into its bound, then the vector is renormalized to
// sum to one. Renormalization can push a weight back outside its bound, so
// the clamp/renormalize pair is iterated to a fixed point; for a feasible
// bound set this converges in a handful of passes and makes the projection
// idempotent. A zero post-clamp sum falls back to equal weighting rather
// than dividing by zero.
func EnforceConstraints(raw []float64, bounds []Bound) []float64 {
	weights := make([]float64, len(raw))
	copy(weights, raw)

	for iter := 0; iter < 100; iter++ {
		sum := 0.0
		for i, w := range weights {
			weights[i] = math.Max(bounds[i].Lower, math.Min(bounds[i].Upper, w))
			sum += weights[i]
		}

		if sum == 0 {
			for i := range weights {
				weights[i] = 1.0 / float64(len(weights))
			}
			return weights
		}
		if math.Abs(sum-1.0) < 1e-12 {
			break
		}

		for i := range weights {
			weights[i] /= sum
		}
	}
	return weights
}

// CategoryWeights reports the aggregate weight per category label for each
// categorical constraint, flagging labels whose total falls outside the
// configured bound. Categorical constraints are a post-hoc report, not a
// projection applied inside the iteration loop.
func CategoryWeights(weights []float64, constraints []CategoricalConstraint) []CategoryWeight {
	report := make([]CategoryWeight, 0)
	for _, c := range constraints {
		totals := make(map[string]float64)
		for i, label := range c.CategoryPerSymbol {
			if i < len(weights) {
				totals[label] += weights[i]
			}
		}
		for _, cb := range c.WeightPerCategory {
			total := totals[cb.Label]
			report = append(report, CategoryWeight{
				Constraint: c.Name,
				Label:      cb.Label,
				Weight:     total,
				Lower:      cb.Lower,
				Upper:      cb.Upper,
				Violated:   total < cb.Lower || total > cb.Upper,
			})
		}
	}
	return report
}

// ValidateCategoricalConstraints checks that label lists are aligned with
// the instrument count. Misalignment is a construction-time input error.
func ValidateCategoricalConstraints(numAssets int, constraints []CategoricalConstraint) error {
	for _, c := range constraints {
		if len(c.CategoryPerSymbol) != numAssets {
			return fmt.Errorf("categorical constraint %q labels %d instruments, want %d",
				c.Name, len(c.CategoryPerSymbol), numAssets)
		}
	}
	return nil
}
