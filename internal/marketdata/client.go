// Package marketdata is the HTTP client for the upstream market-data
// service: candle history, fundamentals ("metric"), and the symbol
// universe. It maps the engine's logical intervals to the service's
// resolution codes and degrades to a deterministic mock frame when the
// live provider is empty or unreachable, per the spec's fallback rule.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	zaplogrus "github.com/irfndi/stockscreener/internal/logging/zaplogrus"
	"github.com/irfndi/stockscreener/internal/model"
)

const (
	// DefaultTimeout matches the teacher's gamma_client default; the
	// config layer's MarketData.RequestTimeout overrides it.
	DefaultTimeout = 10 * time.Second
	userAgent      = "stockscreener/1.0"
)

// Client talks to the upstream market-data service.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	useLocalCandles bool
	logger          *zaplogrus.Logger
}

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithBaseURL overrides the default base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient swaps in a caller-provided *http.Client (for tests).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLocalCandles switches the candle endpoint to /candles/local, mirroring
// the USE_LOCAL_CANDLES config flag.
func WithLocalCandles(useLocal bool) ClientOption {
	return func(c *Client) {
		c.useLocalCandles = useLocal
	}
}

// WithLogger attaches a logger; zaplogrus.New()'s default logger is used if
// omitted.
func WithLogger(logger *zaplogrus.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client with the given base URL and options applied.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     zaplogrus.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolutionForInterval maps a logical interval to the upstream resolution
// code, per spec §4.1.
func resolutionForInterval(interval string) (string, error) {
	switch interval {
	case "daily":
		return "D", nil
	case "weekly":
		return "W", nil
	case "monthly":
		return "M", nil
	case "1min":
		return "1", nil
	case "5min":
		return "5", nil
	case "15min":
		return "15", nil
	case "30min":
		return "30", nil
	case "60min":
		return "60", nil
	}
	return "", model.NewScreenError(model.InvalidInterval, "marketdata: unknown interval "+interval, nil)
}

// intervalDelta returns the per-candle duration used to size outputsize
// windows; weekly and monthly use 7 and 30 days since the window only needs
// a lower bound, not exact calendar alignment.
func intervalDelta(interval string) time.Duration {
	switch interval {
	case "weekly":
		return 7 * 24 * time.Hour
	case "monthly":
		return 30 * 24 * time.Hour
	case "1min":
		return time.Minute
	case "5min":
		return 5 * time.Minute
	case "15min":
		return 15 * time.Minute
	case "30min":
		return 30 * time.Minute
	case "60min":
		return time.Hour
	default: // daily
		return 24 * time.Hour
	}
}

// windowFor computes the [from, to] UNIX-second bounds for outputsize, per
// spec §4.1: compact ~= 100 periods back, full ~= 20 years of daily-
// equivalent range, upper bound now.
func windowFor(interval, outputsize string, now time.Time) (from, to int64) {
	to = now.Unix()
	delta := intervalDelta(interval)

	switch outputsize {
	case "full":
		from = now.Add(-20 * 365 * 24 * time.Hour).Unix()
	default: // "compact" and anything unrecognized default to compact
		from = now.Add(-100 * delta).Unix()
	}
	return from, to
}

// candlesResponse mirrors the upstream payload: parallel arrays plus a
// status string. Per spec §4.1, s != "ok" means an empty frame, not a
// failure.
type candlesResponse struct {
	Status string    `json:"s"`
	Open   []float64 `json:"o"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Close  []float64 `json:"c"`
	Volume []float64 `json:"v"`
	Time   []int64   `json:"t"`
}

// FetchCandles retrieves OHLCV history for symbol at interval, windowed by
// outputsize ("compact" or "full"), and assembles it into a model.Frame. An
// empty (but non-error) frame is returned when the upstream status is not
// "ok" or the arrays are empty; callers are expected to fall back via
// FetchMockCandles in that case.
func (c *Client) FetchCandles(ctx context.Context, symbol, interval, outputsize string) (*model.Frame, error) {
	resolution, err := resolutionForInterval(interval)
	if err != nil {
		return nil, err
	}

	from, to := windowFor(interval, outputsize, time.Now())

	path := "/api/market-data/candles"
	if c.useLocalCandles {
		path = "/api/market-data/candles/local"
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("resolution", resolution)
	q.Set("from", strconv.FormatInt(from, 10))
	q.Set("to", strconv.FormatInt(to, 10))

	var payload candlesResponse
	if err := c.doRequest(ctx, "GET", path+"?"+q.Encode(), &payload); err != nil {
		return nil, model.NewScreenError(model.UpstreamError, "marketdata: candles request failed for "+symbol, err)
	}

	if payload.Status != "ok" || len(payload.Time) == 0 {
		c.logger.WithField("symbol", symbol).WithField("status", payload.Status).Info("marketdata: empty candle response")
		return emptyFrame(symbol, interval), nil
	}

	return frameFromPayload(symbol, interval, payload)
}

func emptyFrame(symbol, interval string) *model.Frame {
	f, _ := model.NewFrame(symbol, interval, nil, nil, nil, nil, nil, nil)
	return f
}

func frameFromPayload(symbol, interval string, payload candlesResponse) (*model.Frame, error) {
	n := len(payload.Time)
	for name, s := range map[string][]float64{"open": payload.Open, "high": payload.High, "low": payload.Low, "close": payload.Close, "volume": payload.Volume} {
		if len(s) != n {
			return nil, model.NewScreenError(model.UpstreamError, fmt.Sprintf("marketdata: inconsistent %s array length", name), nil)
		}
	}

	times := make([]time.Time, n)
	for i, ts := range payload.Time {
		times[i] = time.Unix(ts, 0).UTC()
	}

	return model.NewFrame(symbol, interval, times, payload.Open, payload.High, payload.Low, payload.Close, payload.Volume)
}

// metricResponse mirrors GET /api/market-data/metric?symbol=X.
type metricResponse struct {
	Metric map[string]interface{} `json:"metric"`
}

// FetchFundamentals retrieves the fundamentals map for symbol, coercing
// numeric fields to float64 and leaving string-valued fields (e.g. sector)
// untouched in a separate map.
func (c *Client) FetchFundamentals(ctx context.Context, symbol string) (numeric map[string]float64, strings_ map[string]string, err error) {
	path := "/api/market-data/metric?symbol=" + url.QueryEscape(symbol)

	var payload metricResponse
	if err := c.doRequest(ctx, "GET", path, &payload); err != nil {
		return nil, nil, model.NewScreenError(model.UpstreamError, "marketdata: metric request failed for "+symbol, err)
	}

	numeric = make(map[string]float64, len(payload.Metric))
	strings_ = make(map[string]string)
	for k, v := range payload.Metric {
		switch val := v.(type) {
		case float64:
			numeric[k] = val
		case string:
			strings_[k] = val
		case bool:
			if val {
				numeric[k] = 1
			} else {
				numeric[k] = 0
			}
		}
	}
	return numeric, strings_, nil
}

// symbolsResponse mirrors GET /api/symbols?take=N.
type symbolsResponse struct {
	Symbols []struct {
		Ticker string `json:"ticker"`
	} `json:"symbols"`
}

// FetchSymbolUniverse retrieves up to take tickers from the upstream symbol
// endpoint, used when a scan is requested with no explicit symbol list.
func (c *Client) FetchSymbolUniverse(ctx context.Context, take int) ([]string, error) {
	path := fmt.Sprintf("/api/symbols?take=%d", take)

	var payload symbolsResponse
	if err := c.doRequest(ctx, "GET", path, &payload); err != nil {
		return nil, model.NewScreenError(model.UpstreamError, "marketdata: symbols request failed", err)
	}

	out := make([]string, 0, len(payload.Symbols))
	for _, s := range payload.Symbols {
		out = append(out, s.Ticker)
	}
	return out, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upstream error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}
