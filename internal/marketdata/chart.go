package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/modules/technicals"
)

// ChartClient fetches historical OHLCV data from the Yahoo Finance chart API.
// The HTTP client and base URL are injected so tests can point it at a local
// httptest server; there is no process-wide shared session.
type ChartClient struct {
	baseURL string
	client  *http.Client
	cache   *QuoteCache
	log     zerolog.Logger
}

// NewChartClient creates a chart API client. cache is optional - if nil,
// caching is disabled.
func NewChartClient(cache *QuoteCache, log zerolog.Logger) *ChartClient {
	return &ChartClient{
		baseURL: "https://query1.finance.yahoo.com",
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   cache,
		log:     log.With().Str("client", "chart-api").Logger(),
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *ChartClient) SetBaseURL(url string) {
	c.baseURL = url
}

// chartResponse mirrors the subset of the chart API payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPrices returns the adjusted-close price series for a symbol in the
// given window. Null price entries (halted sessions) are dropped together
// with their timestamps so the series has no gaps.
func (c *ChartClient) FetchPrices(ctx context.Context, symbol string, start, end time.Time, interval Interval) (PriceSeries, error) {
	cacheKey := fmt.Sprintf("%s:%d:%d:%s", symbol, start.Unix(), end.Unix(), interval)

	if c.cache != nil {
		if series, ok := c.cache.Get(cacheKey); ok {
			c.log.Debug().Str("symbol", symbol).Msg("Cache hit")
			return series, nil
		}
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s&events=div|split",
		c.baseURL, symbol, start.Unix(), end.Unix(), interval)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PriceSeries{}, fmt.Errorf("failed to build chart request for %s: %w", symbol, err)
	}
	req.Header.Set("User-Agent", "quantfolio/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return PriceSeries{}, fmt.Errorf("chart request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return PriceSeries{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return PriceSeries{}, fmt.Errorf("chart API returned status %d for %s", resp.StatusCode, symbol)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return PriceSeries{}, fmt.Errorf("failed to decode chart response for %s: %w", symbol, err)
	}
	if payload.Chart.Error != nil {
		return PriceSeries{}, fmt.Errorf("%w: %s (%s)", ErrNoData, symbol, payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 {
		return PriceSeries{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	result := payload.Chart.Result[0]

	// Prefer adjusted close; fall back to raw close when the API omits it.
	var raw []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		raw = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		raw = result.Indicators.Quote[0].Close
	}
	if len(result.Timestamp) == 0 || len(raw) == 0 {
		return PriceSeries{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	series := PriceSeries{Symbol: symbol}
	for i, ts := range result.Timestamp {
		if i >= len(raw) || raw[i] == nil {
			continue
		}
		series.Timestamps = append(series.Timestamps, time.Unix(ts, 0).UTC())
		series.Prices = append(series.Prices, *raw[i])
	}
	if len(series.Prices) == 0 {
		return PriceSeries{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	if c.cache != nil {
		if err := c.cache.Put(cacheKey, series); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache quotes")
		}
	}

	c.log.Debug().
		Str("symbol", symbol).
		Int("points", len(series.Prices)).
		Msg("Fetched price series")

	return series, nil
}

// FetchReturns fetches prices and converts them into the one-period
// percentage return series. The first price has no lookback and produces no
// return, so the returned series is one element shorter than the prices.
func (c *ChartClient) FetchReturns(ctx context.Context, symbol string, start, end time.Time, interval Interval) (ReturnSeries, error) {
	prices, err := c.FetchPrices(ctx, symbol, start, end, interval)
	if err != nil {
		return ReturnSeries{}, err
	}
	if len(prices.Prices) < 2 {
		return ReturnSeries{}, fmt.Errorf("%w: %s has fewer than two price points", ErrNoData, symbol)
	}

	return ReturnSeries{
		Symbol:     symbol,
		Timestamps: prices.Timestamps[1:],
		Returns:    technicals.Returns(prices.Prices),
	}, nil
}
