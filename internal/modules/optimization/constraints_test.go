package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforceConstraints_ClampAndRenormalize(t *testing.T) {
	bounds := []Bound{{0, 0.5}, {0, 0.5}}
	got := EnforceConstraints([]float64{0.9, 0.9}, bounds)
	assert.InDelta(t, 0.5, got[0], 1e-12)
	assert.InDelta(t, 0.5, got[1], 1e-12)
}

func TestEnforceConstraints_Idempotent(t *testing.T) {
	bounds := []Bound{{0.1, 0.6}, {0.0, 0.7}, {0.0, 1.0}}
	once := EnforceConstraints([]float64{0.8, 0.3, 0.1}, bounds)
	twice := EnforceConstraints(once, bounds)

	sum := 0.0
	for i := range once {
		assert.InDelta(t, once[i], twice[i], 1e-9)
		sum += once[i]
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestEnforceConstraints_ZeroSumFallsBackToEqualWeights(t *testing.T) {
	bounds := []Bound{{0, 1}, {0, 1}, {0, 1}, {0, 1}}
	got := EnforceConstraints([]float64{0, 0, 0, 0}, bounds)
	for _, w := range got {
		assert.InDelta(t, 0.25, w, 1e-12)
	}
}

func TestValidateBounds(t *testing.T) {
	assert.NoError(t, ValidateBounds(DefaultBounds(3)))

	err := ValidateBounds([]Bound{{0.6, 0.4}})
	assert.ErrorIs(t, err, ErrInfeasibleConstraints)

	err = ValidateBounds([]Bound{{0.7, 1.0}, {0.7, 1.0}})
	assert.ErrorIs(t, err, ErrInfeasibleConstraints)

	err = ValidateBounds([]Bound{{0.0, 0.3}, {0.0, 0.3}})
	assert.ErrorIs(t, err, ErrInfeasibleConstraints)
}

func TestCategoryWeights(t *testing.T) {
	constraints := []CategoricalConstraint{{
		Name:              "sector",
		CategoryPerSymbol: []string{"tech", "tech", "energy"},
		WeightPerCategory: []CategoryBound{
			{Label: "tech", Lower: 0.0, Upper: 0.5},
			{Label: "energy", Lower: 0.2, Upper: 1.0},
		},
	}}

	report := CategoryWeights([]float64{0.4, 0.3, 0.3}, constraints)
	require.Len(t, report, 2)

	assert.Equal(t, "tech", report[0].Label)
	assert.InDelta(t, 0.7, report[0].Weight, 1e-12)
	assert.True(t, report[0].Violated)

	assert.Equal(t, "energy", report[1].Label)
	assert.InDelta(t, 0.3, report[1].Weight, 1e-12)
	assert.False(t, report[1].Violated)
}

func TestValidateCategoricalConstraints(t *testing.T) {
	constraints := []CategoricalConstraint{{
		Name:              "sector",
		CategoryPerSymbol: []string{"tech", "energy"},
	}}
	assert.NoError(t, ValidateCategoricalConstraints(2, constraints))
	assert.Error(t, ValidateCategoricalConstraints(3, constraints))
}

func TestParseObjective(t *testing.T) {
	for _, name := range []string{
		"max_sharpe", "max_sortino", "min_vol", "max_return",
		"min_drawdown", "min_var", "min_cvar",
	} {
		obj, err := ParseObjective(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, obj.String())
		assert.NotEqual(t, "Unknown", obj.Description())
	}

	_, err := ParseObjective("max_profit")
	assert.ErrorIs(t, err, ErrUnknownObjective)
}
