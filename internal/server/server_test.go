package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/quantfolio/internal/config"
	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/modules/performance"
)

// stubProvider serves canned return series keyed by symbol.
type stubProvider struct {
	series map[string][]float64
}

func (s *stubProvider) FetchPrices(_ context.Context, symbol string, _, _ time.Time, _ marketdata.Interval) (marketdata.PriceSeries, error) {
	return marketdata.PriceSeries{}, fmt.Errorf("%w: %s", marketdata.ErrNoData, symbol)
}

func (s *stubProvider) FetchReturns(_ context.Context, symbol string, _, _ time.Time, _ marketdata.Interval) (marketdata.ReturnSeries, error) {
	values, ok := s.series[symbol]
	if !ok {
		return marketdata.ReturnSeries{}, fmt.Errorf("%w: %s", marketdata.ErrNoData, symbol)
	}
	timestamps := make([]time.Time, len(values))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range values {
		timestamps[i] = base.AddDate(0, 0, i)
	}
	return marketdata.ReturnSeries{Symbol: symbol, Timestamps: timestamps, Returns: values}, nil
}

func testServer(t *testing.T) *Server {
	t.Helper()
	provider := &stubProvider{series: map[string][]float64{
		"AAA":   {1.0, -1.0, 1.0, -1.0, 1.0, -1.0},
		"BBB":   {-1.0, 1.0, -1.0, 1.0, -1.0, 1.0},
		"^GSPC": {0.2, -0.1, 0.3, -0.2, 0.1, 0.0},
	}}
	cfg := &config.Config{MaxIterations: 200}
	engine := performance.NewEngine(provider, zerolog.Nop())
	return New(Config{
		Log:    zerolog.Nop(),
		Config: cfg,
		Engine: engine,
		Port:   0,
	})
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleTickerPerformance(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/ticker/AAA/performance?start=2024-01-01&end=2024-02-01", nil)
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body performance.TickerStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AAA", body.Symbol)
	assert.Equal(t, performance.DefaultBenchmark, body.Benchmark)
	assert.Len(t, body.SecurityReturns, 6)
}

func TestHandleTickerPerformance_BadDates(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/ticker/AAA/performance?start=bogus&end=2024-02-01", nil)
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTickerPerformance_UnknownSymbol(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/ticker/GONE/performance?start=2024-01-01&end=2024-02-01", nil)
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlePortfolioOptimize(t *testing.T) {
	s := testServer(t)

	body := `{
		"symbols": ["AAA", "BBB"],
		"start_date": "2024-01-01",
		"end_date": "2024-02-01",
		"objective": "min_vol"
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/optimize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RunID  string                     `json:"run_id"`
		Result performance.PortfolioStats `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, []string{"AAA", "BBB"}, resp.Result.Symbols)

	sum := 0.0
	for _, w := range resp.Result.OptimalWeights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestHandlePortfolioOptimize_UnknownObjective(t *testing.T) {
	s := testServer(t)

	body := `{"symbols": ["AAA"], "start_date": "2024-01-01", "end_date": "2024-02-01", "objective": "max_profit"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/optimize", strings.NewReader(body))
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePortfolioOptimize_NoSymbols(t *testing.T) {
	s := testServer(t)

	body := `{"symbols": [], "start_date": "2024-01-01", "end_date": "2024-02-01"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/optimize", strings.NewReader(body))
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePortfolioOptimize_ConfidenceLevelOutOfRange(t *testing.T) {
	s := testServer(t)

	body := `{"symbols": ["AAA"], "start_date": "2024-01-01", "end_date": "2024-02-01", "confidence_level": 1.5}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/optimize", strings.NewReader(body))
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestHandleCachePurge_NoCache(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cache/purge", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
