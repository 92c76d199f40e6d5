package optimization

import "fmt"

// ErrUnknownObjective is returned by ParseObjective for unrecognized names.
var ErrUnknownObjective = fmt.Errorf("unknown objective function")

// Objective is the closed set of optimization targets. Each maps a weight
// vector to a scalar loss to be minimized.
type Objective int

const (
	// MaxSharpe maximizes (portfolio return - risk free rate) / volatility.
	MaxSharpe Objective = iota
	// MaxSortino maximizes excess return over downside deviation.
	MaxSortino
	// MinVol minimizes portfolio volatility.
	MinVol
	// MaxReturn maximizes portfolio return.
	MaxReturn
	// MinDrawdown minimizes the maximum drawdown of the portfolio series.
	MinDrawdown
	// MinVar minimizes the portfolio Value at Risk.
	MinVar
	// MinCVaR minimizes the portfolio Expected Shortfall.
	MinCVaR
)

// ParseObjective converts a boundary-layer string (API request, config file)
// into an Objective. Parsing happens only at the boundary; the numerical path
// dispatches on the typed value.
func ParseObjective(s string) (Objective, error) {
	switch s {
	case "max_sharpe":
		return MaxSharpe, nil
	case "max_sortino":
		return MaxSortino, nil
	case "min_vol":
		return MinVol, nil
	case "max_return":
		return MaxReturn, nil
	case "min_drawdown":
		return MinDrawdown, nil
	case "min_var":
		return MinVar, nil
	case "min_cvar":
		return MinCVaR, nil
	default:
		return MaxSharpe, fmt.Errorf("%w: %q", ErrUnknownObjective, s)
	}
}

// String returns the boundary-layer name of the objective.
func (o Objective) String() string {
	switch o {
	case MaxSharpe:
		return "max_sharpe"
	case MaxSortino:
		return "max_sortino"
	case MinVol:
		return "min_vol"
	case MaxReturn:
		return "max_return"
	case MinDrawdown:
		return "min_drawdown"
	case MinVar:
		return "min_var"
	case MinCVaR:
		return "min_cvar"
	default:
		return "unknown"
	}
}

// Description returns the human-readable label used in reports.
func (o Objective) Description() string {
	switch o {
	case MaxSharpe:
		return "Maximize Sharpe Ratio"
	case MaxSortino:
		return "Maximize Sortino Ratio"
	case MinVol:
		return "Minimize Volatility"
	case MaxReturn:
		return "Maximize Return"
	case MinDrawdown:
		return "Minimize Drawdown"
	case MinVar:
		return "Minimize Value at Risk"
	case MinCVaR:
		return "Minimize Expected Shortfall"
	default:
		return "Unknown"
	}
}
