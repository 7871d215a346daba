package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/stockscreener/internal/indicator"
	"github.com/irfndi/stockscreener/internal/marketdata"
	"github.com/irfndi/stockscreener/internal/model"
	"github.com/irfndi/stockscreener/internal/resolver"
)

// stockHandler backs fetch_stock_data and get_technical_indicator: raw
// candle retrieval and single-point indicator evaluation, both outside the
// scan/filter pipeline.
type stockHandler struct {
	market   marketdata.Provider
	provider indicator.Provider
}

func newStockHandler(deps Dependencies) *stockHandler {
	return &stockHandler{market: deps.Market, provider: indicator.NewStandardProvider()}
}

type fetchStockDataRequest struct {
	Symbol     string `json:"symbol"`
	Interval   string `json:"interval"`
	OutputSize string `json:"outputsize"`
}

type candleSeries struct {
	Symbol string    `json:"symbol"`
	Times  []string  `json:"times"`
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`
}

func (h *stockHandler) FetchStockData(c *gin.Context) {
	var req fetchStockDataRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Symbol == "" {
		writeError(c, model.NewScreenError(model.InvalidInput, "symbol is required", err))
		return
	}
	if req.Interval == "" {
		req.Interval = "daily"
	}
	if req.OutputSize == "" {
		req.OutputSize = "compact"
	}

	frame := marketdata.FrameWithFallback(c.Request.Context(), h.market, req.Symbol, req.Interval, req.OutputSize)

	n := frame.Len()
	times := make([]string, n)
	for i := 0; i < n; i++ {
		times[i] = frame.DateString(i - n)
	}
	c.JSON(http.StatusOK, candleSeries{
		Symbol: req.Symbol,
		Times:  times,
		Open:   frame.Open(),
		High:   frame.High(),
		Low:    frame.Low(),
		Close:  frame.Close(),
		Volume: frame.Volume(),
	})
}

type technicalIndicatorRequest struct {
	Symbol     string             `json:"symbol"`
	Indicator  string             `json:"indicator"`
	Interval   string             `json:"interval"`
	TimePeriod int                `json:"time_period"`
	SeriesType string             `json:"series_type"`
	Params     map[string]float64 `json:"params"`
}

type technicalIndicatorResponse struct {
	Symbol    string  `json:"symbol"`
	Indicator string  `json:"indicator"`
	Value     float64 `json:"value"`
	Date      string  `json:"date"`
}

func (h *stockHandler) GetTechnicalIndicator(c *gin.Context) {
	var req technicalIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Symbol == "" || req.Indicator == "" {
		writeError(c, model.NewScreenError(model.InvalidInput, "symbol and indicator are required", err))
		return
	}
	if req.Interval == "" {
		req.Interval = "daily"
	}

	frame := marketdata.FrameWithFallback(c.Request.Context(), h.market, req.Symbol, req.Interval, "compact")

	value, ok, err := resolver.Resolve(h.provider, frame, req.Indicator, req.TimePeriod, -1, resolver.Params(req.Params))
	if err != nil {
		writeError(c, model.NewScreenError(model.EvalError, "failed to evaluate indicator", err))
		return
	}
	if !ok {
		writeError(c, model.NewScreenError(model.MissingField, "indicator has no value at the latest bar", nil))
		return
	}

	c.JSON(http.StatusOK, technicalIndicatorResponse{
		Symbol:    req.Symbol,
		Indicator: req.Indicator,
		Value:     value,
		Date:      frame.DateString(-1),
	})
}
