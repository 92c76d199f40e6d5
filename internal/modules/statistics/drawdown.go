package statistics

// MaximumDrawdown computes the rolling drawdown series and the maximum
// drawdown of a percentage return series. Returns are cumulated by summation,
// the running peak of the cumulative sum is tracked, and the drawdown at each
// point is peak minus cumulative sum. The rolling series is sign-negated so
// it plots as an underwater curve; the maximum drawdown is non-negative.
func MaximumDrawdown(returns []float64) ([]float64, float64) {
	if len(returns) == 0 {
		return nil, 0
	}

	cumulative := make([]float64, len(returns))
	sum := 0.0
	for i, r := range returns {
		sum += r
		cumulative[i] = sum
	}

	rolling := make([]float64, len(returns))
	maxDrawdown := 0.0
	peak := cumulative[0]
	for i, c := range cumulative {
		if c > peak {
			peak = c
		}
		drawdown := peak - c
		rolling[i] = -drawdown
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return rolling, maxDrawdown
}
