package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfolio/quantfolio/internal/marketdata"
)

// TickerConfig describes a single-security performance request. Zero-valued
// optional fields take the same defaults as PortfolioConfig.
type TickerConfig struct {
	Symbol          string
	Benchmark       string
	StartDate       time.Time
	EndDate         time.Time
	Interval        marketdata.Interval
	ConfidenceLevel float64
	RiskFreeRate    float64
}

// TickerStats is the immutable result of a single-security performance run.
type TickerStats struct {
	Symbol           string              `json:"symbol"`
	Benchmark        string              `json:"benchmark"`
	StartDate        time.Time           `json:"start_date"`
	EndDate          time.Time           `json:"end_date"`
	Interval         marketdata.Interval `json:"interval"`
	IntervalDays     IntervalDays        `json:"interval_days"`
	Timestamps       []time.Time         `json:"timestamps"`
	SecurityReturns  []float64           `json:"security_returns"`
	BenchmarkReturns []float64           `json:"benchmark_returns"`
	Performance      PerformanceStats    `json:"performance"`
}

// TickerStats fetches one security's return series, aligns the benchmark to
// it and computes the performance record. Unlike the portfolio path, a fetch
// failure for the security itself is terminal.
func (e *Engine) TickerStats(ctx context.Context, cfg TickerConfig) (*TickerStats, error) {
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidConfig)
	}
	if cfg.Benchmark == "" {
		cfg.Benchmark = DefaultBenchmark
	}
	if cfg.Interval == "" {
		cfg.Interval = marketdata.IntervalOneDay
	}
	if cfg.ConfidenceLevel == 0 {
		cfg.ConfidenceLevel = DefaultConfidenceLevel
	}
	if cfg.RiskFreeRate == 0 {
		cfg.RiskFreeRate = DefaultRiskFreeRate
	}
	if !cfg.EndDate.After(cfg.StartDate) {
		return nil, fmt.Errorf("%w: end date %s is not after start date %s", ErrInvalidConfig,
			cfg.EndDate.Format("2006-01-02"), cfg.StartDate.Format("2006-01-02"))
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		return nil, fmt.Errorf("%w: confidence level %g is outside (0, 1)", ErrInvalidConfig, cfg.ConfidenceLevel)
	}

	security, err := e.provider.FetchReturns(ctx, cfg.Symbol, cfg.StartDate, cfg.EndDate, cfg.Interval)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", cfg.Symbol, err)
	}

	benchmark, err := e.provider.FetchReturns(ctx, cfg.Benchmark, cfg.StartDate, cfg.EndDate, cfg.Interval)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch benchmark %s: %w", cfg.Benchmark, err)
	}
	benchmarkReturns := marketdata.AlignToTimestamps(benchmark, security.Timestamps)

	intervalDays := IntervalDaysFrom(security.Timestamps)

	e.log.Debug().
		Str("symbol", cfg.Symbol).
		Str("benchmark", cfg.Benchmark).
		Int("points", len(security.Returns)).
		Msg("Computing ticker performance")

	return &TickerStats{
		Symbol:           cfg.Symbol,
		Benchmark:        cfg.Benchmark,
		StartDate:        cfg.StartDate,
		EndDate:          cfg.EndDate,
		Interval:         cfg.Interval,
		IntervalDays:     intervalDays,
		Timestamps:       security.Timestamps,
		SecurityReturns:  security.Returns,
		BenchmarkReturns: benchmarkReturns,
		Performance: ComputeStats(security.Returns, benchmarkReturns,
			cfg.RiskFreeRate, cfg.ConfidenceLevel, intervalDays),
	}, nil
}
