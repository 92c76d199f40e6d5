package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNoInstruments is returned when every requested symbol failed to fetch.
var ErrNoInstruments = errors.New("no instruments returned data")

// maxConcurrentFetches bounds the per-symbol fetch fan-out.
const maxConcurrentFetches = 8

// ReturnTable is the aligned multi-asset return table: one column per
// instrument that successfully returned data, all columns sharing the same
// timestamps. Column order matches the surviving symbol order.
type ReturnTable struct {
	Symbols    []string
	Timestamps []time.Time
	Columns    [][]float64
	Warnings   []string
}

// FetchReturnTable fetches the return series for every symbol concurrently
// and aligns the survivors into a shared table. A failed fetch drops the
// symbol and records a warning instead of failing the whole request; the
// request fails only when no symbol returns data.
func FetchReturnTable(
	ctx context.Context,
	provider Provider,
	symbols []string,
	start, end time.Time,
	interval Interval,
	log zerolog.Logger,
) (*ReturnTable, error) {
	results := make([]ReturnSeries, len(symbols))
	fetchErrs := make([]error, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			series, err := provider.FetchReturns(gctx, symbol, start, end, interval)
			if err != nil {
				// Partial failures are tolerated; only record them.
				fetchErrs[i] = err
				return nil
			}
			results[i] = series
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := &ReturnTable{}
	var survivors []ReturnSeries
	for i, symbol := range symbols {
		if fetchErrs[i] != nil {
			log.Warn().Err(fetchErrs[i]).Str("symbol", symbol).Msg("Dropping symbol from universe")
			table.Warnings = append(table.Warnings,
				fmt.Sprintf("symbol %s dropped: %v", symbol, fetchErrs[i]))
			continue
		}
		table.Symbols = append(table.Symbols, symbol)
		survivors = append(survivors, results[i])
	}
	if len(survivors) == 0 {
		return nil, ErrNoInstruments
	}

	table.Timestamps, table.Columns = alignSeries(survivors)
	return table, nil
}

// AlignToTimestamps projects a series onto a target timestamp axis,
// forward-filling then backward-filling values the series is missing. Used to
// align a benchmark series with an already-built return table.
func AlignToTimestamps(series ReturnSeries, timestamps []time.Time) []float64 {
	byTime := make(map[int64]float64, len(series.Timestamps))
	for i, ts := range series.Timestamps {
		byTime[ts.Unix()] = series.Returns[i]
	}
	return fillColumn(timestamps, byTime)
}

// alignSeries merges the series onto the sorted union of their timestamps,
// forward/backward-filling each column's gaps.
func alignSeries(series []ReturnSeries) ([]time.Time, [][]float64) {
	unionSet := make(map[int64]struct{})
	for _, s := range series {
		for _, ts := range s.Timestamps {
			unionSet[ts.Unix()] = struct{}{}
		}
	}
	union := make([]int64, 0, len(unionSet))
	for ts := range unionSet {
		union = append(union, ts)
	}
	sort.Slice(union, func(i, j int) bool { return union[i] < union[j] })

	timestamps := make([]time.Time, len(union))
	for i, ts := range union {
		timestamps[i] = time.Unix(ts, 0).UTC()
	}

	columns := make([][]float64, len(series))
	for i, s := range series {
		byTime := make(map[int64]float64, len(s.Timestamps))
		for j, ts := range s.Timestamps {
			byTime[ts.Unix()] = s.Returns[j]
		}
		columns[i] = fillColumn(timestamps, byTime)
	}
	return timestamps, columns
}

// fillColumn resolves each timestamp against the value map, carrying the last
// seen value forward across gaps and the first seen value backward over any
// leading gap.
func fillColumn(timestamps []time.Time, byTime map[int64]float64) []float64 {
	column := make([]float64, len(timestamps))
	present := make([]bool, len(timestamps))

	for i, ts := range timestamps {
		if v, ok := byTime[ts.Unix()]; ok {
			column[i] = v
			present[i] = true
		}
	}

	// Forward fill.
	lastKnown := 0.0
	haveKnown := false
	for i := range column {
		if present[i] {
			lastKnown = column[i]
			haveKnown = true
		} else if haveKnown {
			column[i] = lastKnown
			present[i] = true
		}
	}

	// Backward fill the leading gap.
	for i := len(column) - 1; i >= 0; i-- {
		if present[i] {
			lastKnown = column[i]
		} else {
			column[i] = lastKnown
		}
	}

	return column
}
