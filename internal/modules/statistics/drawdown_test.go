package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaximumDrawdown(t *testing.T) {
	// Cumulative sums: 5, -5, -2, -4. Peak stays at 5; worst gap is 10.
	rolling, maxDD := MaximumDrawdown([]float64{5, -10, 3, -2})
	require.Len(t, rolling, 4)
	assert.InDelta(t, 10.0, maxDD, 1e-12)

	// Underwater curve is the negated drawdown at each step.
	assert.InDelta(t, 0.0, rolling[0], 1e-12)
	assert.InDelta(t, -10.0, rolling[1], 1e-12)
	assert.InDelta(t, -7.0, rolling[2], 1e-12)
	assert.InDelta(t, -9.0, rolling[3], 1e-12)
}

func TestMaximumDrawdown_MonotoneGains(t *testing.T) {
	rolling, maxDD := MaximumDrawdown([]float64{1, 2, 3})
	assert.InDelta(t, 0.0, maxDD, 1e-12)
	for _, r := range rolling {
		assert.InDelta(t, 0.0, r, 1e-12)
	}
}

func TestMaximumDrawdown_Empty(t *testing.T) {
	rolling, maxDD := MaximumDrawdown(nil)
	assert.Nil(t, rolling)
	assert.Zero(t, maxDD)
}

func TestEfficientFrontierPoints(t *testing.T) {
	points := [][2]float64{
		{2, 1},   // ratio 2, at the min risk
		{6, 2},   // ratio 3, kept
		{1, 2},   // ratio 0.5, dropped
		{6, 2},   // duplicate, dropped
		{4, 1.5}, // ratio ~2.67, kept
	}
	frontier := EfficientFrontierPoints(points)
	require.Len(t, frontier, 3)
	assert.Equal(t, [2]float64{2, 1}, frontier[0])
	assert.Equal(t, [2]float64{6, 2}, frontier[1])
	assert.Equal(t, [2]float64{4, 1.5}, frontier[2])

	// The filter is a fixed point on its own output.
	assert.Equal(t, frontier, EfficientFrontierPoints(frontier))
}

func TestEfficientFrontierPoints_Empty(t *testing.T) {
	assert.Empty(t, EfficientFrontierPoints(nil))
}
