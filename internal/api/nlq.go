package api

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/stockscreener/internal/model"
	"github.com/irfndi/stockscreener/internal/scan"
)

// nlqHandler backs parse_natural_language_query: a best-effort heuristic
// translation of a free-text screen description into the same filter
// shapes scan_stocks accepts. It never fails outright — an unrecognized
// query comes back with an empty filter list and matched=false so the
// caller can fall back to asking the user for structured input.
type nlqHandler struct{}

func newNLQHandler(_ Dependencies) *nlqHandler { return &nlqHandler{} }

type nlqRequest struct {
	Query string `json:"query"`
}

type nlqResponse struct {
	Matched bool           `json:"matched"`
	Preset  string         `json:"preset,omitempty"`
	Logic   model.FilterLogic `json:"filter_logic,omitempty"`
	Filters []*model.Filter   `json:"filters"`
}

// presetKeywords maps a substring found in the query to a built-in preset
// name, checked before the more general numeric-pattern extraction below.
var presetKeywords = []struct {
	phrase string
	preset string
}{
	{"oversold", "rsi_oversold"},
	{"overbought", "rsi_overbought"},
	{"high volume", "high_volume"},
	{"unusual volume", "high_volume"},
	{"52 week high", "breakout_52week"},
	{"52-week high", "breakout_52week"},
	{"strong momentum", "strong_momentum"},
	{"breakout candidate", "breakout_candidate"},
	{"bullish crossover", "bullish_crossover"},
	{"golden cross", "bullish_crossover"},
	{"bearish crossover", "bearish_crossover"},
	{"death cross", "bearish_crossover"},
}

var (
	rsiComparePattern   = regexp.MustCompile(`rsi\s*(below|under|less than|above|over|greater than)\s*(\d+(?:\.\d+)?)`)
	priceComparePattern = regexp.MustCompile(`price\s*(below|under|less than|above|over|greater than)\s*\$?(\d+(?:\.\d+)?)`)
)

func comparisonOperator(word string) model.Operator {
	switch word {
	case "below", "under", "less than":
		return model.OpLT
	default:
		return model.OpGT
	}
}

// Parse applies presetKeywords first, then falls back to extracting simple
// "rsi below 30" / "price above 150" patterns as indicator/price filters.
func (h *nlqHandler) Parse(c *gin.Context) {
	var req nlqRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeError(c, model.NewScreenError(model.InvalidInput, "query is required", err))
		return
	}
	query := strings.ToLower(req.Query)

	for _, kw := range presetKeywords {
		if strings.Contains(query, kw.phrase) {
			if preset, ok := scan.LookupPreset(kw.preset); ok {
				c.JSON(http.StatusOK, nlqResponse{Matched: true, Preset: preset.Name, Logic: preset.Logic, Filters: preset.Filters})
				return
			}
		}
	}

	var filters []*model.Filter
	if m := rsiComparePattern.FindStringSubmatch(query); m != nil {
		value, _ := strconv.ParseFloat(m[2], 64)
		filters = append(filters, &model.Filter{
			Type:       model.FilterIndicator,
			Field:      "rsi",
			Operator:   comparisonOperator(m[1]),
			Value:      &model.Value{IsScalar: true, Scalar: value},
			TimePeriod: 14,
		})
	}
	if m := priceComparePattern.FindStringSubmatch(query); m != nil {
		value, _ := strconv.ParseFloat(m[2], 64)
		filters = append(filters, &model.Filter{
			Type:     model.FilterPrice,
			Field:    "close",
			Operator: comparisonOperator(m[1]),
			Value:    &model.Value{IsScalar: true, Scalar: value},
		})
	}

	if len(filters) == 0 {
		c.JSON(http.StatusOK, nlqResponse{Matched: false, Filters: []*model.Filter{}})
		return
	}
	c.JSON(http.StatusOK, nlqResponse{Matched: true, Logic: model.LogicAND, Filters: filters})
}
