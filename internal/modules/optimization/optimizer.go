package optimization

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/quantfolio/quantfolio/internal/modules/statistics"
)

// Defaults for the gradient-descent search.
const (
	DefaultMaxIterations     = 1000
	DefaultGradientTolerance = 1e-6
)

// Config configures one optimization run. The risk-free rate is expressed in
// the same percentage scale as the per-period returns so it can be subtracted
// directly; Annualization is the periods-per-year factor used by the Sortino
// objective.
type Config struct {
	Objective         Objective
	RiskFreeRate      float64
	ConfidenceLevel   float64
	Annualization     float64
	MaxIterations     int
	GradientTolerance float64
}

// PortfolioOptimizer searches for the weight vector minimizing the configured
// objective under per-asset box constraints, recording every visited
// (return, risk) point for efficient-frontier extraction.
type PortfolioOptimizer struct {
	log zerolog.Logger
}

// New creates a portfolio optimizer.
func New(log zerolog.Logger) *PortfolioOptimizer {
	return &PortfolioOptimizer{
		log: log.With().Str("component", "optimizer").Logger(),
	}
}

// frontierRecorder is the shared accumulator written from inside the
// objective closure on every evaluation. Locked because the minimizer is
// free to evaluate candidates concurrently even though the current method
// runs single-threaded.
type frontierRecorder struct {
	mu     sync.RWMutex
	points [][2]float64
}

func (fr *frontierRecorder) record(ret, risk float64) {
	fr.mu.Lock()
	fr.points = append(fr.points, [2]float64{ret, risk})
	fr.mu.Unlock()
}

func (fr *frontierRecorder) snapshot() [][2]float64 {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	out := make([][2]float64, len(fr.points))
	copy(out, fr.points)
	return out
}

// Optimize runs numerical gradient descent over the configured objective.
//
// The candidate weights are projected onto the box constraints inside the
// objective closure; the initial guess is uniform random, normalized to sum
// to one but not necessarily inside the bounds. The search stops at the
// gradient tolerance or the iteration cap, whichever comes first, and the
// final position is projected once more so the returned weights are always
// feasible.
//
// Numeric degeneracies (zero variance, NaN losses) propagate as NaN through
// the descent rather than raising; when the minimizer cannot improve on the
// initial point the projected initial weights are returned and a warning is
// logged. Callers must treat NaN fields in downstream statistics as
// "undefined for this input".
func (po *PortfolioOptimizer) Optimize(
	meanReturns []float64,
	covMatrix *mat.SymDense,
	returnTable [][]float64,
	bounds []Bound,
	cfg Config,
) (OptResult, error) {
	n := len(meanReturns)
	if n == 0 {
		return OptResult{}, fmt.Errorf("no assets provided")
	}
	if covMatrix.SymmetricDim() != n {
		return OptResult{}, fmt.Errorf("covariance matrix size %d doesn't match asset count %d",
			covMatrix.SymmetricDim(), n)
	}
	if len(bounds) == 0 {
		bounds = DefaultBounds(n)
	}
	if len(bounds) != n {
		return OptResult{}, fmt.Errorf("bounds count %d doesn't match asset count %d", len(bounds), n)
	}
	if err := ValidateBounds(bounds); err != nil {
		return OptResult{}, err
	}

	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	tolerance := cfg.GradientTolerance
	if tolerance <= 0 {
		tolerance = DefaultGradientTolerance
	}

	recorder := &frontierRecorder{}
	loss := po.buildLoss(meanReturns, covMatrix, returnTable, bounds, cfg, recorder)

	initial := randomWeights(n)

	// GradientDescent requires a Grad function; the objectives have no
	// closed-form gradient, so it is estimated by finite differences.
	problem := optimize.Problem{
		Func: loss,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, loss, x, nil)
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   maxIterations,
		GradientThreshold: tolerance,
	}

	position := initial
	result, err := optimize.Minimize(problem, initial, settings, &optimize.GradientDescent{})
	if err != nil {
		// Degenerate inputs surface here (NaN loss at the start point).
		// The run still yields a feasible vector from the initial guess.
		po.log.Warn().Err(err).
			Str("objective", cfg.Objective.String()).
			Msg("Minimization aborted, falling back to projected initial weights")
	}
	if result != nil && len(result.X) == n && !anyNaN(result.X) {
		position = result.X
		po.log.Debug().
			Str("objective", cfg.Objective.String()).
			Str("status", result.Status.String()).
			Int("evaluations", result.FuncEvaluations).
			Float64("loss", result.F).
			Msg("Minimization finished")
	}

	optimal := EnforceConstraints(position, bounds)

	return OptResult{
		OptimalWeights:    optimal,
		EfficientFrontier: statistics.EfficientFrontierPoints(recorder.snapshot()),
	}, nil
}

// buildLoss returns the scalar loss closure for the configured objective.
// Every evaluation projects the candidate, records its (return, risk) point
// and dispatches on the objective tag.
func (po *PortfolioOptimizer) buildLoss(
	meanReturns []float64,
	covMatrix *mat.SymDense,
	returnTable [][]float64,
	bounds []Bound,
	cfg Config,
	recorder *frontierRecorder,
) func(x []float64) float64 {
	return func(x []float64) float64 {
		weights := EnforceConstraints(x, bounds)

		portfolioReturn := statistics.PortfolioReturn(weights, meanReturns)
		portfolioStdDev := statistics.PortfolioStdDev(weights, covMatrix)
		recorder.record(portfolioReturn, portfolioStdDev)

		switch cfg.Objective {
		case MaxSharpe:
			return -((portfolioReturn - cfg.RiskFreeRate) / portfolioStdDev)
		case MaxSortino:
			returns := statistics.DailyPortfolioReturns(weights, returnTable)
			denom := statistics.DownsideDeviation(returns) * math.Sqrt(cfg.Annualization)
			return -((portfolioReturn - cfg.RiskFreeRate) / denom)
		case MinVol:
			return portfolioStdDev
		case MaxReturn:
			return -portfolioReturn
		case MinDrawdown:
			returns := statistics.DailyPortfolioReturns(weights, returnTable)
			_, maxDrawdown := statistics.MaximumDrawdown(returns)
			return maxDrawdown
		case MinVar:
			returns := statistics.DailyPortfolioReturns(weights, returnTable)
			return -statistics.ValueAtRisk(returns, cfg.ConfidenceLevel)
		case MinCVaR:
			returns := statistics.DailyPortfolioReturns(weights, returnTable)
			return -statistics.ExpectedShortfall(returns, cfg.ConfidenceLevel)
		default:
			return math.NaN()
		}
	}
}

func anyNaN(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// randomWeights draws n weights uniformly from [0, 1) and normalizes them to
// sum to one. The initial point is not guaranteed to satisfy the per-asset
// bounds; feasibility is established inside the objective evaluation.
func randomWeights(n int) []float64 {
	weights := make([]float64, n)
	sum := 0.0
	for i := range weights {
		weights[i] = rand.Float64()
		sum += weights[i]
	}
	if sum == 0 {
		for i := range weights {
			weights[i] = 1.0 / float64(n)
		}
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
