package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/config"
	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/modules/optimization"
	"github.com/quantfolio/quantfolio/internal/modules/performance"
)

// Handlers handles analytics HTTP requests
type Handlers struct {
	engine *performance.Engine
	cache  *marketdata.QuoteCache
	cfg    *config.Config
	log    zerolog.Logger
}

// NewHandlers creates the analytics handlers
func NewHandlers(engine *performance.Engine, cache *marketdata.QuoteCache, cfg *config.Config, log zerolog.Logger) *Handlers {
	return &Handlers{
		engine: engine,
		cache:  cache,
		cfg:    cfg,
		log:    log.With().Str("handler", "analytics").Logger(),
	}
}

// HandleHealth handles GET /health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleTickerPerformance handles GET /api/ticker/{symbol}/performance
func (h *Handlers) HandleTickerPerformance(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	query := r.URL.Query()

	start, end, err := parseDateRange(query.Get("start"), query.Get("end"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	interval := marketdata.IntervalOneDay
	if v := query.Get("interval"); v != "" {
		interval, err = marketdata.ParseInterval(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	cfg := performance.TickerConfig{
		Symbol:    symbol,
		Benchmark: query.Get("benchmark"),
		StartDate: start,
		EndDate:   end,
		Interval:  interval,
	}
	if v := query.Get("confidence_level"); v != "" {
		if _, err := parseFloat(v, &cfg.ConfidenceLevel); err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if v := query.Get("risk_free_rate"); v != "" {
		if _, err := parseFloat(v, &cfg.RiskFreeRate); err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	stats, err := h.engine.TickerStats(r.Context(), cfg)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// portfolioRequest is the POST /api/portfolio/optimize body.
type portfolioRequest struct {
	Symbols                []string                             `json:"symbols"`
	Benchmark              string                               `json:"benchmark"`
	StartDate              string                               `json:"start_date"`
	EndDate                string                               `json:"end_date"`
	Interval               string                               `json:"interval"`
	ConfidenceLevel        float64                              `json:"confidence_level"`
	RiskFreeRate           float64                              `json:"risk_free_rate"`
	Objective              string                               `json:"objective"`
	AssetConstraints       []optimization.Bound                 `json:"asset_constraints"`
	CategoricalConstraints []optimization.CategoricalConstraint `json:"categorical_constraints"`
	Weights                []float64                            `json:"weights"`
}

// HandlePortfolioOptimize handles POST /api/portfolio/optimize
func (h *Handlers) HandlePortfolioOptimize(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	objective := optimization.MaxSharpe
	if req.Objective != "" {
		objective, err = optimization.ParseObjective(req.Objective)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	interval := marketdata.IntervalOneDay
	if req.Interval != "" {
		interval, err = marketdata.ParseInterval(req.Interval)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	runID := uuid.New().String()
	log := h.log.With().Str("run_id", runID).Logger()
	log.Info().
		Strs("symbols", req.Symbols).
		Str("objective", objective.String()).
		Msg("Portfolio optimization requested")

	stats, err := h.engine.PortfolioStats(r.Context(), performance.PortfolioConfig{
		Symbols:                req.Symbols,
		Benchmark:              req.Benchmark,
		StartDate:              start,
		EndDate:                end,
		Interval:               interval,
		ConfidenceLevel:        req.ConfidenceLevel,
		RiskFreeRate:           req.RiskFreeRate,
		Objective:              objective,
		AssetConstraints:       req.AssetConstraints,
		CategoricalConstraints: req.CategoricalConstraints,
		Weights:                req.Weights,
		MaxIterations:          h.cfg.MaxIterations,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Portfolio optimization failed")
		h.writeEngineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"result": stats,
	})
}

// HandleCachePurge handles POST /api/cache/purge
func (h *Handlers) HandleCachePurge(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"removed": 0})
		return
	}
	removed, err := h.cache.PurgeExpired()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}

// writeEngineError maps engine failures onto HTTP statuses: bad input is 400,
// an empty universe or unknown symbol is 422, everything else is 500.
func (h *Handlers) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, performance.ErrNoSymbols),
		errors.Is(err, performance.ErrInvalidConfig),
		errors.Is(err, optimization.ErrUnknownObjective),
		errors.Is(err, optimization.ErrInfeasibleConstraints),
		errors.Is(err, marketdata.ErrUnknownInterval):
		h.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, marketdata.ErrNoData),
		errors.Is(err, marketdata.ErrNoInstruments):
		h.writeError(w, http.StatusUnprocessableEntity, err)
	default:
		h.writeError(w, http.StatusInternalServerError, err)
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start date must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end date must be YYYY-MM-DD")
	}
	return start, end, nil
}

func parseFloat(s string, dst *float64) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid numeric parameter")
	}
	*dst = v
	return v, nil
}
