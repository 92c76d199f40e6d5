package performance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/modules/optimization"
	"github.com/quantfolio/quantfolio/internal/modules/statistics"
)

// Defaults applied by PortfolioConfig.applyDefaults.
const (
	DefaultBenchmark       = "^GSPC"
	DefaultConfidenceLevel = 0.95
	DefaultRiskFreeRate    = 0.02
)

// ErrNoSymbols is returned when a request names no instruments.
var ErrNoSymbols = errors.New("at least one symbol is required")

// ErrInvalidConfig wraps every configuration validation failure so transport
// layers can distinguish bad input from pipeline failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// PortfolioConfig describes one portfolio analytics request. Zero-valued
// optional fields take the documented defaults: benchmark ^GSPC, interval 1d,
// confidence level 0.95, risk-free rate 0.02, objective max_sharpe, per-asset
// bounds [0, 1].
type PortfolioConfig struct {
	Symbols         []string
	Benchmark       string
	StartDate       time.Time
	EndDate         time.Time
	Interval        marketdata.Interval
	ConfidenceLevel float64
	RiskFreeRate    float64
	Objective       optimization.Objective

	// AssetConstraints are aligned positionally with Symbols; entries for
	// symbols later dropped by fetch failures are dropped with them.
	AssetConstraints       []optimization.Bound
	CategoricalConstraints []optimization.CategoricalConstraint

	// Weights, when set, bypasses optimization entirely and evaluates the
	// given allocation instead. Aligned positionally with Symbols.
	Weights []float64

	MaxIterations int
}

func (cfg *PortfolioConfig) applyDefaults() {
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
}

func (cfg *PortfolioConfig) validate() error {
	if len(cfg.Symbols) == 0 {
		return ErrNoSymbols
	}
	if !cfg.EndDate.After(cfg.StartDate) {
		return fmt.Errorf("%w: end date %s is not after start date %s", ErrInvalidConfig,
			cfg.EndDate.Format("2006-01-02"), cfg.StartDate.Format("2006-01-02"))
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		return fmt.Errorf("%w: confidence level %g is outside (0, 1)", ErrInvalidConfig, cfg.ConfidenceLevel)
	}
	if len(cfg.AssetConstraints) > 0 && len(cfg.AssetConstraints) != len(cfg.Symbols) {
		return fmt.Errorf("%w: asset constraints count %d doesn't match symbol count %d",
			ErrInvalidConfig, len(cfg.AssetConstraints), len(cfg.Symbols))
	}
	if len(cfg.Weights) > 0 && len(cfg.Weights) != len(cfg.Symbols) {
		return fmt.Errorf("%w: weights count %d doesn't match symbol count %d",
			ErrInvalidConfig, len(cfg.Weights), len(cfg.Symbols))
	}
	if err := optimization.ValidateCategoricalConstraints(len(cfg.Symbols), cfg.CategoricalConstraints); err != nil {
		return err
	}
	return nil
}

// PortfolioStats is the immutable result of one portfolio analytics run.
type PortfolioStats struct {
	Symbols                 []string                       `json:"symbols"`
	Benchmark               string                         `json:"benchmark"`
	StartDate               time.Time                      `json:"start_date"`
	EndDate                 time.Time                      `json:"end_date"`
	Interval                marketdata.Interval            `json:"interval"`
	IntervalDays            IntervalDays                   `json:"interval_days"`
	Timestamps              []time.Time                    `json:"timestamps"`
	ReturnTable             [][]float64                    `json:"return_table"`
	BenchmarkReturns        []float64                      `json:"benchmark_returns"`
	Objective               optimization.Objective         `json:"-"`
	ObjectiveName           string                         `json:"objective"`
	OptimalWeights          []float64                      `json:"optimal_weights"`
	EfficientFrontier       [][2]float64                   `json:"efficient_frontier"`
	OptimalPortfolioReturns []float64                      `json:"optimal_portfolio_returns"`
	CategoryReport          []optimization.CategoryWeight  `json:"category_report,omitempty"`
	Performance             PerformanceStats               `json:"performance"`
	Warnings                []string                       `json:"warnings,omitempty"`
}

// Engine orchestrates portfolio analytics runs: fetch, align, optimize,
// report. One engine serves many concurrent runs; no state crosses runs.
type Engine struct {
	provider  marketdata.Provider
	optimizer *optimization.PortfolioOptimizer
	log       zerolog.Logger
}

// NewEngine creates a performance engine on the given data provider.
func NewEngine(provider marketdata.Provider, log zerolog.Logger) *Engine {
	return &Engine{
		provider:  provider,
		optimizer: optimization.New(log),
		log:       log.With().Str("component", "performance_engine").Logger(),
	}
}

// PortfolioStats runs the full portfolio pipeline: fetch the per-symbol
// return series, align them with the benchmark, optimize weights under the
// configured objective and constraints (unless an explicit weight override is
// supplied) and compute the performance record of the resulting portfolio.
func (e *Engine) PortfolioStats(ctx context.Context, cfg PortfolioConfig) (*PortfolioStats, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	table, err := marketdata.FetchReturnTable(ctx, e.provider, cfg.Symbols,
		cfg.StartDate, cfg.EndDate, cfg.Interval, e.log)
	if err != nil {
		return nil, fmt.Errorf("failed to build return table: %w", err)
	}

	benchmark, err := e.provider.FetchReturns(ctx, cfg.Benchmark, cfg.StartDate, cfg.EndDate, cfg.Interval)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch benchmark %s: %w", cfg.Benchmark, err)
	}
	benchmarkReturns := marketdata.AlignToTimestamps(benchmark, table.Timestamps)

	// Constraint and override vectors follow the survivors of the fetch.
	bounds := survivorBounds(cfg, table.Symbols)
	weights := survivorWeights(cfg, table.Symbols)

	intervalDays := IntervalDaysFrom(table.Timestamps)

	meanReturns := make([]float64, len(table.Columns))
	for i, col := range table.Columns {
		meanReturns[i] = statistics.Mean(col)
	}
	covMatrix := statistics.CovarianceMatrix(table.Columns)

	result := &PortfolioStats{
		Symbols:          table.Symbols,
		Benchmark:        cfg.Benchmark,
		StartDate:        cfg.StartDate,
		EndDate:          cfg.EndDate,
		Interval:         cfg.Interval,
		IntervalDays:     intervalDays,
		Timestamps:       table.Timestamps,
		ReturnTable:      table.Columns,
		BenchmarkReturns: benchmarkReturns,
		Objective:        cfg.Objective,
		ObjectiveName:    cfg.Objective.String(),
		Warnings:         table.Warnings,
	}

	if weights != nil {
		// Explicit allocation: no optimization, no frontier.
		sum := 0.0
		for _, w := range weights {
			sum += w
		}
		if math.Abs(sum-1.0) > 1e-6 {
			return nil, fmt.Errorf("%w: explicit weights sum to %.6f, want 1", ErrInvalidConfig, sum)
		}
		result.OptimalWeights = weights
	} else {
		optResult, err := e.optimizer.Optimize(meanReturns, covMatrix, table.Columns, bounds,
			optimization.Config{
				Objective:       cfg.Objective,
				RiskFreeRate:    cfg.RiskFreeRate,
				ConfidenceLevel: cfg.ConfidenceLevel,
				Annualization:   intervalDays.AnnualPeriods(),
				MaxIterations:   cfg.MaxIterations,
			})
		if err != nil {
			return nil, fmt.Errorf("optimization failed: %w", err)
		}
		result.OptimalWeights = optResult.OptimalWeights
		result.EfficientFrontier = optResult.EfficientFrontier
	}

	result.OptimalPortfolioReturns = statistics.DailyPortfolioReturns(result.OptimalWeights, table.Columns)
	result.CategoryReport = optimization.CategoryWeights(result.OptimalWeights,
		survivorCategoricals(cfg, table.Symbols))
	result.Performance = ComputeStats(result.OptimalPortfolioReturns, benchmarkReturns,
		cfg.RiskFreeRate, cfg.ConfidenceLevel, intervalDays)

	e.log.Info().
		Strs("symbols", result.Symbols).
		Str("objective", result.ObjectiveName).
		Int("frontier_points", len(result.EfficientFrontier)).
		Msg("Portfolio analytics run complete")

	return result, nil
}

// survivorBounds filters the per-asset bounds down to the symbols that
// survived fetching, preserving positional alignment. When none were
// configured every survivor gets the [0, 1] default.
func survivorBounds(cfg PortfolioConfig, survivors []string) []optimization.Bound {
	if len(cfg.AssetConstraints) == 0 {
		return optimization.DefaultBounds(len(survivors))
	}
	index := indexBySymbol(cfg.Symbols)
	bounds := make([]optimization.Bound, 0, len(survivors))
	for _, symbol := range survivors {
		bounds = append(bounds, cfg.AssetConstraints[index[symbol]])
	}
	return bounds
}

// survivorWeights filters an explicit weight override down to the surviving
// symbols. Returns nil when no override was configured.
func survivorWeights(cfg PortfolioConfig, survivors []string) []float64 {
	if len(cfg.Weights) == 0 {
		return nil
	}
	index := indexBySymbol(cfg.Symbols)
	weights := make([]float64, 0, len(survivors))
	for _, symbol := range survivors {
		weights = append(weights, cfg.Weights[index[symbol]])
	}
	return weights
}

// survivorCategoricals filters categorical constraint label lists down to the
// surviving symbols.
func survivorCategoricals(cfg PortfolioConfig, survivors []string) []optimization.CategoricalConstraint {
	if len(cfg.CategoricalConstraints) == 0 {
		return nil
	}
	index := indexBySymbol(cfg.Symbols)
	out := make([]optimization.CategoricalConstraint, 0, len(cfg.CategoricalConstraints))
	for _, c := range cfg.CategoricalConstraints {
		filtered := optimization.CategoricalConstraint{
			Name:              c.Name,
			WeightPerCategory: c.WeightPerCategory,
		}
		for _, symbol := range survivors {
			filtered.CategoryPerSymbol = append(filtered.CategoryPerSymbol, c.CategoryPerSymbol[index[symbol]])
		}
		out = append(out, filtered)
	}
	return out
}

func indexBySymbol(symbols []string) map[string]int {
	index := make(map[string]int, len(symbols))
	for i, symbol := range symbols {
		index[symbol] = i
	}
	return index
}
