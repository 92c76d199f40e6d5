// Package technicals wraps the TA-Lib indicator functions used by the
// analytics pipeline. The rate-of-change indicator is the bridge between raw
// price series and the percentage return series every downstream statistic
// consumes; the moving-average and momentum indicators feed screening and
// report layers.
package technicals

import (
	"github.com/markcheno/go-talib"
)

// RateOfChange computes the percentage rate of change over the given period:
// ((price_t / price_{t-period}) - 1) * 100. The first period entries of the
// output are zero because no lookback exists for them.
func RateOfChange(prices []float64, period int) []float64 {
	if len(prices) <= period {
		return make([]float64, len(prices))
	}
	return talib.Roc(prices, period)
}

// Returns converts an adjusted-close price series into the one-period
// percentage return series used across the statistics and optimization
// modules. The leading zero produced by the lookback window is dropped so
// the series starts at the first real return observation.
func Returns(prices []float64) []float64 {
	roc := RateOfChange(prices, 1)
	if len(roc) == 0 {
		return roc
	}
	return roc[1:]
}

// SMA computes the simple moving average over the given period.
func SMA(prices []float64, period int) []float64 {
	if len(prices) < period {
		return make([]float64, len(prices))
	}
	return talib.Sma(prices, period)
}

// EMA computes the exponential moving average over the given period.
func EMA(prices []float64, period int) []float64 {
	if len(prices) < period {
		return make([]float64, len(prices))
	}
	return talib.Ema(prices, period)
}

// RSI computes the relative strength index over the given period.
func RSI(prices []float64, period int) []float64 {
	if len(prices) <= period {
		return make([]float64, len(prices))
	}
	return talib.Rsi(prices, period)
}

// MACD computes the moving average convergence/divergence line, its signal
// line and the histogram between them.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram []float64) {
	if len(prices) < slowPeriod+signalPeriod {
		zeros := make([]float64, len(prices))
		return zeros, append([]float64(nil), zeros...), append([]float64(nil), zeros...)
	}
	return talib.Macd(prices, fastPeriod, slowPeriod, signalPeriod)
}
