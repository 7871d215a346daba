package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FilterLogic is the aggregation rule across a symbol's filters.
type FilterLogic string

const (
	LogicAND FilterLogic = "AND"
	LogicOR  FilterLogic = "OR"
)

// FilterDetail records the outcome of a single filter evaluation against a
// symbol, for UI display and test assertion.
type FilterDetail struct {
	Filter  *Filter                `json:"-"`
	Type    FilterType             `json:"type"`
	Field   string                 `json:"field,omitempty"`
	Passed  bool                   `json:"passed"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MatchedRecord is a symbol that satisfied a scan's filter logic.
type MatchedRecord struct {
	Symbol              string          `json:"symbol"`
	Close               decimal.Decimal `json:"close"`
	Volume              decimal.Decimal `json:"volume"`
	Date                string          `json:"date"`
	MatchedFiltersCount int             `json:"matched_filters_count"`
	TotalFilters        int             `json:"total_filters"`
	FilterDetails       []FilterDetail  `json:"filter_details"`
}

// FailedRecord is a symbol whose pipeline raised an unrecoverable error.
type FailedRecord struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// ScanResult is the full response envelope for a scan. A scan fails
// outright only for a malformed request or when the symbol universe cannot
// be fetched for a request without symbols.
type ScanResult struct {
	ScanID         string          `json:"scan_id"`
	Matched        []MatchedRecord `json:"matched"`
	Failed         []FailedRecord  `json:"failed"`
	TotalScanned   int             `json:"total_scanned"`
	FilterLogic    FilterLogic     `json:"filter_logic"`
	FiltersApplied []*Filter       `json:"filters_applied"`
	ScanTime       time.Time       `json:"scan_time"`
}
