package model

import (
	"encoding/json"
)

// FilterType discriminates the filter tagged union.
type FilterType string

const (
	FilterPrice        FilterType = "price"
	FilterIndicator    FilterType = "indicator"
	FilterVolume       FilterType = "volume"
	FilterPriceChange  FilterType = "price_change"
	FilterVolumeChange FilterType = "volume_change"
	FilterPrice52Week  FilterType = "price_52week"
	FilterGap          FilterType = "gap"
	FilterPattern      FilterType = "pattern"
	FilterFinancial    FilterType = "financial"
	FilterFunction     FilterType = "function"
	FilterExpression   FilterType = "expression"
)

// Operator is a comparison, arithmetic, or crossover operator shared between
// filters and AST binary nodes.
type Operator string

const (
	OpGT            Operator = "gt"
	OpGTE           Operator = "gte"
	OpLT            Operator = "lt"
	OpLTE           Operator = "lte"
	OpEQ            Operator = "eq"
	OpNEQ           Operator = "neq"
	OpCrossedAbove  Operator = "crossed_above"
	OpCrossedBelow  Operator = "crossed_below"
	OpBetween       Operator = "between"
	OpContains      Operator = "contains"
)

// MeasureType discriminates a nested Value measure.
type MeasureType string

const (
	MeasureAttribute MeasureType = "attribute"
	MeasureIndicator MeasureType = "indicator"
)

// Measure is a nested reference used as a filter's value, rather than a
// plain scalar: "value": {"type": "indicator", "field": "sma", "time_period": 50}.
type Measure struct {
	Type       MeasureType
	Field      string
	TimePeriod int
	Timeframe  string
	Offset     int
}

// Value is either a plain scalar, a string, a [low, high] pair (for the
// `between` operator), or a nested Measure.
type Value struct {
	IsScalar bool
	Scalar   float64
	String   string // for string-valued RHS (contains/eq on text fields)
	IsString bool
	IsPair   bool
	Pair     [2]float64
	Measure  *Measure
}

// Filter is the tagged union of every filter variant in the spec. Only the
// fields relevant to Type are populated by ParseFilter.
type Filter struct {
	Type FilterType

	// common
	Field              string
	Operator           Operator
	Value              *Value
	Offset             int
	ArithmeticOperator Operator
	ArithmeticValue    *Value
	Timeframe          string
	CompareToTimeframe string
	TimePeriod         int
	Params             map[string]float64

	// volume
	AvgPeriod  int
	Multiplier float64

	// price_change / volume_change
	Lookback int

	// price_52week
	LookbackDays int
	Metric       string

	// pattern
	Pattern string

	// expression
	Expression *Node
}

type wireValue struct {
	raw json.RawMessage
}

type wireFilter struct {
	Type               string          `json:"type"`
	Field              string          `json:"field"`
	Operator           string          `json:"operator"`
	Value              json.RawMessage `json:"value"`
	Offset             json.RawMessage `json:"offset"`
	ArithmeticOperator string          `json:"arithmeticOperator"`
	ArithmeticValue    json.RawMessage `json:"arithmeticValue"`
	Timeframe          string          `json:"timeframe"`
	CompareToTimeframe string          `json:"compareToTimeframe"`
	TimePeriod         int             `json:"time_period"`
	Params             map[string]float64 `json:"params"`
	AvgPeriod          int             `json:"avg_period"`
	Multiplier         float64         `json:"multiplier"`
	Lookback           int             `json:"lookback"`
	LookbackDays       int             `json:"lookback_days"`
	Metric             string          `json:"metric"`
	Pattern            string          `json:"pattern"`
	Expression         *Node           `json:"expression"`
}

// ParseFilter normalizes a single filter from its wire JSON form, tolerating
// both flat scalar and nested-measure `value`/`arithmeticValue`, and both
// integer and string offsets.
func ParseFilter(data []byte) (*Filter, error) {
	var w wireFilter
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, NewScreenError(InvalidInput, "malformed filter JSON", err)
	}

	f := &Filter{
		Type:               FilterType(w.Type),
		Field:              w.Field,
		Operator:           Operator(w.Operator),
		ArithmeticOperator: Operator(w.ArithmeticOperator),
		Timeframe:          w.Timeframe,
		CompareToTimeframe: w.CompareToTimeframe,
		TimePeriod:         w.TimePeriod,
		Params:             w.Params,
		AvgPeriod:          w.AvgPeriod,
		Multiplier:         w.Multiplier,
		Lookback:           w.Lookback,
		LookbackDays:       w.LookbackDays,
		Metric:             w.Metric,
		Pattern:            w.Pattern,
		Expression:         w.Expression,
	}

	if f.Type == "" {
		return nil, NewScreenError(InvalidInput, "filter missing type", nil)
	}

	if len(w.Offset) > 0 {
		off, err := ParseOffset(w.Offset)
		if err != nil {
			return nil, NewScreenError(InvalidInput, "invalid filter offset", err)
		}
		f.Offset = off
	}

	var err error
	if f.Value, err = parseValue(w.Value); err != nil {
		return nil, err
	}
	if f.ArithmeticValue, err = parseValue(w.ArithmeticValue); err != nil {
		return nil, err
	}

	if f.Type == FilterExpression && f.Expression == nil {
		return nil, NewScreenError(InvalidInput, "expression filter missing expression", nil)
	}

	return f, nil
}

func parseValue(raw json.RawMessage) (*Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return &Value{IsScalar: true, Scalar: scalar}, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return &Value{IsString: true, String: str}, nil
	}

	var pair [2]float64
	if err := json.Unmarshal(raw, &pair); err == nil {
		return &Value{IsPair: true, Pair: pair}, nil
	}

	var measureWire struct {
		Type       string `json:"type"`
		Field      string `json:"field"`
		TimePeriod int    `json:"time_period"`
		Timeframe  string `json:"timeframe"`
		Offset     json.RawMessage `json:"offset"`
	}
	if err := json.Unmarshal(raw, &measureWire); err != nil {
		return nil, NewScreenError(InvalidInput, "unrecognized value shape", err)
	}
	m := &Measure{
		Type:       MeasureType(measureWire.Type),
		Field:      measureWire.Field,
		TimePeriod: measureWire.TimePeriod,
		Timeframe:  measureWire.Timeframe,
	}
	if len(measureWire.Offset) > 0 {
		off, err := ParseOffset(measureWire.Offset)
		if err != nil {
			return nil, err
		}
		m.Offset = off
	}
	return &Value{Measure: m}, nil
}
