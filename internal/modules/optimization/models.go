package optimization

// Bound is the per-asset weight interval [Lower, Upper], aligned positionally
// with the instrument list handed to the optimizer.
type Bound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// CategoryBound bounds the aggregate weight of a single category label.
type CategoryBound struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// CategoricalConstraint groups instruments by a label (sector, region, asset
// class) and bounds the total weight per label. Categorical constraints are
// validated against the final weight vector as a post-hoc report; only the
// per-asset box constraints are enforced inside the iteration loop.
type CategoricalConstraint struct {
	Name              string          `json:"name"`
	CategoryPerSymbol []string        `json:"category_per_symbol"`
	WeightPerCategory []CategoryBound `json:"weight_per_category"`
}

// CategoryWeight reports the realized aggregate weight of one category label
// and whether it violates its configured bound.
type CategoryWeight struct {
	Constraint string  `json:"constraint"`
	Label      string  `json:"label"`
	Weight     float64 `json:"weight"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Violated   bool    `json:"violated"`
}

// OptResult is the outcome of one optimization run: the feasible optimal
// weight vector and the filtered cloud of (return, risk) points visited
// during the search.
type OptResult struct {
	OptimalWeights    []float64    `json:"optimal_weights"`
	EfficientFrontier [][2]float64 `json:"efficient_frontier"`
}
