package marketdata

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves canned return series keyed by symbol.
type fakeProvider struct {
	series map[string]ReturnSeries
}

func (f *fakeProvider) FetchPrices(_ context.Context, symbol string, _, _ time.Time, _ Interval) (PriceSeries, error) {
	return PriceSeries{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
}

func (f *fakeProvider) FetchReturns(_ context.Context, symbol string, _, _ time.Time, _ Interval) (ReturnSeries, error) {
	s, ok := f.series[symbol]
	if !ok {
		return ReturnSeries{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return s, nil
}

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func TestFetchReturnTable_AlignsAndDrops(t *testing.T) {
	provider := &fakeProvider{series: map[string]ReturnSeries{
		"AAA": {
			Symbol:     "AAA",
			Timestamps: []time.Time{day(1), day(2), day(3)},
			Returns:    []float64{1.0, 2.0, 3.0},
		},
		"BBB": {
			Symbol:     "BBB",
			Timestamps: []time.Time{day(2), day(3), day(4)},
			Returns:    []float64{-1.0, -2.0, -3.0},
		},
	}}

	table, err := FetchReturnTable(
		context.Background(), provider,
		[]string{"AAA", "MISSING", "BBB"},
		day(1), day(5), IntervalOneDay, zerolog.Nop(),
	)
	require.NoError(t, err)

	// The failed symbol is dropped with a warning, order of survivors kept.
	assert.Equal(t, []string{"AAA", "BBB"}, table.Symbols)
	require.Len(t, table.Warnings, 1)
	assert.Contains(t, table.Warnings[0], "MISSING")

	// Union of timestamps: days 1-4.
	require.Len(t, table.Timestamps, 4)
	require.Len(t, table.Columns, 2)

	// AAA forward-fills day 4; BBB backward-fills day 1.
	assert.Equal(t, []float64{1.0, 2.0, 3.0, 3.0}, table.Columns[0])
	assert.Equal(t, []float64{-1.0, -1.0, -2.0, -3.0}, table.Columns[1])
}

func TestFetchReturnTable_AllSymbolsFail(t *testing.T) {
	provider := &fakeProvider{series: map[string]ReturnSeries{}}

	_, err := FetchReturnTable(
		context.Background(), provider,
		[]string{"X", "Y"},
		day(1), day(5), IntervalOneDay, zerolog.Nop(),
	)
	assert.ErrorIs(t, err, ErrNoInstruments)
}

func TestAlignToTimestamps(t *testing.T) {
	series := ReturnSeries{
		Symbol:     "BENCH",
		Timestamps: []time.Time{day(2), day(3)},
		Returns:    []float64{0.5, 0.8},
	}
	got := AlignToTimestamps(series, []time.Time{day(1), day(2), day(3), day(4)})
	assert.Equal(t, []float64{0.5, 0.5, 0.8, 0.8}, got)
}

func TestParseInterval(t *testing.T) {
	for _, s := range []string{"1d", "1wk", "1mo"} {
		interval, err := ParseInterval(s)
		require.NoError(t, err)
		assert.Equal(t, Interval(s), interval)
	}

	_, err := ParseInterval("5m")
	assert.ErrorIs(t, err, ErrUnknownInterval)
}
