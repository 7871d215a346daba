package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	zaplogrus "github.com/irfndi/stockscreener/internal/logging/zaplogrus"
	"github.com/irfndi/stockscreener/internal/model"
	"github.com/irfndi/stockscreener/internal/scan"
)

// scanHandler backs the scan_stocks and run_preset_scan tools.
type scanHandler struct {
	orchestrator *scan.Orchestrator
	logger       *zaplogrus.Logger
}

func newScanHandler(deps Dependencies) *scanHandler {
	return &scanHandler{orchestrator: deps.Orchestrator, logger: deps.Logger}
}

// scanRequest is the wire shape for scan_stocks: an optional symbol list
// (empty pulls the full universe), raw filter JSON (decoded one at a time
// via model.ParseFilter so a single malformed filter names itself in the
// error), and a filter_logic string.
type scanRequest struct {
	Symbols     []string          `json:"symbols"`
	Filters     []json.RawMessage `json:"filters"`
	FilterLogic string            `json:"filter_logic"`
}

func (h *scanHandler) parseFilters(raw []json.RawMessage) ([]*model.Filter, error) {
	filters := make([]*model.Filter, 0, len(raw))
	for _, r := range raw {
		f, err := model.ParseFilter(r)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func (h *scanHandler) ScanStocks(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, model.NewScreenError(model.InvalidInput, "malformed scan request", err))
		return
	}

	filters, err := h.parseFilters(req.Filters)
	if err != nil {
		writeError(c, err)
		return
	}

	logic := model.FilterLogic(req.FilterLogic)
	if logic == "" {
		logic = model.LogicAND
	}

	result, err := h.orchestrator.Run(c.Request.Context(), scan.Request{
		Symbols: req.Symbols,
		Filters: filters,
		Logic:   logic,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListPresets backs preset discovery: the client needs the preset names
// before it can call run_preset_scan.
func (h *scanHandler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": scan.PresetNames()})
}

type presetScanRequest struct {
	Symbols []string `json:"symbols"`
}

func (h *scanHandler) RunPresetScan(c *gin.Context) {
	name := c.Param("name")
	var req presetScanRequest
	// an empty body is valid: it means "scan the full symbol universe".
	_ = c.ShouldBindJSON(&req)

	result, err := h.orchestrator.RunPreset(c.Request.Context(), name, req.Symbols)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// writeError maps a ScreenError's kind to an HTTP status the way the
// engine's error taxonomy intends: InvalidInput and InvalidInterval are
// client errors, everything else the orchestrator surfaces is a
// server-side condition.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	kind := model.ErrorKind("unknown")
	if se, ok := err.(*model.ScreenError); ok {
		kind = se.Kind
		if se.Kind == model.InvalidInput || se.Kind == model.InvalidInterval {
			status = http.StatusBadRequest
		}
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}
