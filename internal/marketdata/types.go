// Package marketdata fetches historical price data from the chart API,
// converts it into percentage return series and aligns multiple instruments
// into a shared return table for the analytics pipeline. Fetched quotes are
// cached in SQLite so repeated analytics runs over the same window do not
// re-hit the provider.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoData is returned when the provider has no quotes for a symbol in the
// requested window. Callers distinguish it from transport failures because
// a portfolio run drops such symbols instead of aborting.
var ErrNoData = errors.New("no data for symbol")

// ErrUnknownInterval is returned by ParseInterval for unsupported values.
var ErrUnknownInterval = errors.New("unknown interval")

// Interval is the sampling granularity of a fetched series.
type Interval string

const (
	IntervalOneDay   Interval = "1d"
	IntervalOneWeek  Interval = "1wk"
	IntervalOneMonth Interval = "1mo"
)

// ParseInterval validates a boundary-layer interval string.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case IntervalOneDay, IntervalOneWeek, IntervalOneMonth:
		return Interval(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInterval, s)
	}
}

// PriceSeries holds the adjusted-close prices of one instrument, timestamps
// strictly increasing.
type PriceSeries struct {
	Symbol     string      `json:"symbol" msgpack:"symbol"`
	Timestamps []time.Time `json:"timestamps" msgpack:"timestamps"`
	Prices     []float64   `json:"prices" msgpack:"prices"`
}

// ReturnSeries holds the one-period percentage returns of one instrument.
// A value of 1.23 means 1.23%.
type ReturnSeries struct {
	Symbol     string      `json:"symbol"`
	Timestamps []time.Time `json:"timestamps"`
	Returns    []float64   `json:"returns"`
}

// Provider is the collaborator contract the analytics layer consumes. Fetch
// failures for one symbol must be distinguishable from "symbol exists but has
// no data" via ErrNoData.
type Provider interface {
	FetchPrices(ctx context.Context, symbol string, start, end time.Time, interval Interval) (PriceSeries, error)
	FetchReturns(ctx context.Context, symbol string, start, end time.Time, interval Interval) (ReturnSeries, error)
}
