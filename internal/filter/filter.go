// Package filter evaluates a single model.Filter against a symbol's frames,
// dispatching by filter type and producing a (passed, details) pair for UI
// display and test assertion.
package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/irfndi/stockscreener/internal/eval"
	"github.com/irfndi/stockscreener/internal/indicator"
	"github.com/irfndi/stockscreener/internal/model"
	"github.com/irfndi/stockscreener/internal/resolver"
)

// financialAliases maps the spec's friendly financial field names to the
// upstream fundamentals payload's actual keys.
var financialAliases = map[string]string{
	"pe_ratio":             "peBasicExclExtraTTM",
	"pb_ratio":             "pbQuarterly",
	"eps":                  "epsExclExtraTTM",
	"roe":                  "roeTTM",
	"debt_to_equity":       "totalDebtToEquityQuarterly",
	"net_sales":            "revenueTTM",
	"net_profit":           "netIncomeTTM",
	"dividend_yield":       "dividendYieldIndicatedAnnual",
	"operating_cash_flow":  "operatingCashFlowTTM",
	"book_value":           "bookValuePerShareAnnual",
	"market_cap":           "marketCapitalization",
}

// Evaluator evaluates filters against frames, using provider for any
// indicator math the filter or the expression AST needs.
type Evaluator struct {
	Provider indicator.Provider
}

// NewEvaluator returns an Evaluator backed by provider.
func NewEvaluator(provider indicator.Provider) *Evaluator {
	return &Evaluator{Provider: provider}
}

// Result is the outcome of evaluating one filter.
type Result struct {
	Passed  bool
	Details map[string]interface{}
}

// Evaluate dispatches f by its Type. frames is keyed by timeframe with the
// filter's own default timeframe (f.Timeframe, or "" for the scan's primary
// frame) reachable directly. fundamentals holds the symbol's numeric
// fundamentals payload (already fetched by the caller), keyed by the
// upstream's own field names; stringFields holds any string-valued
// attributes (e.g. sector) for `eq`/`neq`/`contains` filters.
func (e *Evaluator) Evaluate(f *model.Filter, frames eval.Frames, fundamentals map[string]float64, stringFields map[string]string) Result {
	if f.Type == model.FilterExpression {
		return e.evaluateExpression(f, frames)
	}
	if f.Type == model.FilterFinancial {
		return e.evaluateFinancial(f, fundamentals, stringFields)
	}

	frame := frames[f.Timeframe]
	if frame == nil {
		return failResult(fmt.Sprintf("no frame for timeframe %q", f.Timeframe))
	}
	idx := model.IndexFromOffset(f.Offset)

	switch f.Type {
	case model.FilterVolume:
		return e.evaluateVolume(f, frame, idx)
	case model.FilterPriceChange:
		return e.evaluateGenericWithLHS(f, frame, frames, idx, pctChangeSeries(frame.Close(), idx, f.Lookback))
	case model.FilterVolumeChange:
		return e.evaluateGenericWithLHS(f, frame, frames, idx, pctChangeSeries(frame.Volume(), idx, f.Lookback))
	case model.FilterGap:
		return e.evaluateGap(f, frame, idx)
	case model.FilterPrice52Week:
		return e.evaluatePrice52Week(f, frame, idx)
	case model.FilterPattern:
		return e.evaluatePattern(f, frame, idx)
	case model.FilterFunction:
		return e.evaluateFunction(f, frame, idx)
	default: // price, indicator, and any other attribute-like type
		lhs, ok, err := e.resolveAttributeOrIndicator(f.Type, f.Field, f.TimePeriod, f.Params, frame, idx)
		if err != nil {
			return failResult(err.Error())
		}
		if !ok {
			return failResult(fmt.Sprintf("field %q not present on frame", f.Field))
		}
		return e.compare(f, lhs, frame, frames, idx)
	}
}

func (e *Evaluator) resolveAttributeOrIndicator(typ model.FilterType, field string, period int, params map[string]float64, frame *model.Frame, idx int) (float64, bool, error) {
	if typ == model.FilterIndicator {
		v, ok, err := resolver.Resolve(e.Provider, frame, field, period, idx, resolver.Params(params))
		return v, ok, err
	}
	if v, ok := frame.At(field, idx); ok {
		return v, true, nil
	}
	return resolver.Resolve(e.Provider, frame, field, period, idx, resolver.Params(params))
}

// compare resolves the RHS (scalar, string, pair, or nested measure),
// applies any arithmetic post-adjustment, and dispatches the comparison
// operator.
func (e *Evaluator) compare(f *model.Filter, lhs float64, frame *model.Frame, frames eval.Frames, idx int) Result {
	if f.Operator == model.OpCrossedAbove || f.Operator == model.OpCrossedBelow {
		return e.evaluateCrossover(f, frame, frames, idx)
	}

	if f.Operator == model.OpBetween {
		if f.Value == nil || !f.Value.IsPair {
			return failResult("between operator requires a [low, high] value")
		}
		lo, hi := f.Value.Pair[0], f.Value.Pair[1]
		passed := lhs >= lo && lhs <= hi
		return Result{Passed: passed, Details: map[string]interface{}{
			"current_value": lhs, "low": lo, "high": hi, "operator": f.Operator,
		}}
	}

	if f.Value != nil && f.Value.IsString {
		return failResult("string value not valid for this operator")
	}

	rhs, err := e.resolveRHSValue(f, frame, frames, idx)
	if err != nil {
		return failResult(err.Error())
	}
	rhs = applyArithmetic(rhs, f.ArithmeticOperator, e.resolveArithmeticAdjustment(f, frame, frames, idx))

	passed, err := compareNumeric(f.Operator, lhs, rhs)
	if err != nil {
		return failResult(err.Error())
	}
	return Result{Passed: passed, Details: map[string]interface{}{
		"current_value": lhs, "threshold": rhs, "operator": f.Operator,
	}}
}

func (e *Evaluator) resolveArithmeticAdjustment(f *model.Filter, frame *model.Frame, frames eval.Frames, idx int) float64 {
	if f.ArithmeticValue == nil {
		return 0
	}
	v, err := e.resolveValueNode(f.ArithmeticValue, frame, frames, idx)
	if err != nil {
		return 0
	}
	return v
}

func (e *Evaluator) resolveRHSValue(f *model.Filter, frame *model.Frame, frames eval.Frames, idx int) (float64, error) {
	if f.Value == nil {
		return 0, fmt.Errorf("filter missing comparison value")
	}
	return e.resolveValueNode(f.Value, frame, frames, idx)
}

func (e *Evaluator) resolveValueNode(v *model.Value, frame *model.Frame, frames eval.Frames, idx int) (float64, error) {
	switch {
	case v.IsScalar:
		return v.Scalar, nil
	case v.Measure != nil:
		m := v.Measure
		measureFrame := frame
		if m.Timeframe != "" {
			if mf, ok := frames[m.Timeframe]; ok {
				measureFrame = mf
			}
		}
		measureIdx := idx
		if m.Offset != 0 {
			measureIdx = model.IndexFromOffset(m.Offset)
		}
		if m.Type == model.MeasureIndicator {
			val, ok, err := resolver.Resolve(e.ProviderOrDefault(), measureFrame, m.Field, m.TimePeriod, measureIdx, nil)
			if err != nil {
				return 0, err
			}
			if !ok {
				return 0, fmt.Errorf("measure field %q absent", m.Field)
			}
			return val, nil
		}
		val, ok := measureFrame.At(m.Field, measureIdx)
		if !ok {
			return 0, fmt.Errorf("measure field %q absent", m.Field)
		}
		return val, nil
	default:
		return 0, fmt.Errorf("value has no resolvable numeric form")
	}
}

// ProviderOrDefault guards against a nil Evaluator.Provider in ad hoc test
// construction.
func (e *Evaluator) ProviderOrDefault() indicator.Provider {
	if e.Provider == nil {
		return indicator.NewStandardProvider()
	}
	return e.Provider
}

func compareNumeric(op model.Operator, lhs, rhs float64) (bool, error) {
	switch op {
	case model.OpGT:
		return lhs > rhs, nil
	case model.OpGTE:
		return lhs >= rhs, nil
	case model.OpLT:
		return lhs < rhs, nil
	case model.OpLTE:
		return lhs <= rhs, nil
	case model.OpEQ:
		return math.Abs(lhs-rhs) <= 1e-2, nil
	case model.OpNEQ:
		return math.Abs(lhs-rhs) > 1e-2, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", op)
	}
}

func applyArithmetic(rhs float64, op model.Operator, value float64) float64 {
	switch op {
	case "+":
		return rhs + value
	case "-":
		return rhs - value
	case "*":
		return rhs * value
	case "/":
		if value == 0 {
			return 0
		}
		return rhs / value
	default:
		return rhs
	}
}

func failResult(msg string) Result {
	return Result{Passed: false, Details: map[string]interface{}{"error": msg}}
}

func pctChange(current, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return (current - prior) / prior * 100
}

func pctChangeSeries(series []float64, idx, lookback int) func(*model.Frame) (float64, bool) {
	return func(frame *model.Frame) (float64, bool) {
		current, ok := frame.ValueInSeries(series, idx)
		if !ok {
			return 0, false
		}
		prior, ok := frame.ValueInSeries(series, idx-lookback)
		if !ok {
			return 0, false
		}
		return pctChange(current, prior), true
	}
}

func (e *Evaluator) evaluateGenericWithLHS(f *model.Filter, frame *model.Frame, frames eval.Frames, idx int, lhsFn func(*model.Frame) (float64, bool)) Result {
	lhs, ok := lhsFn(frame)
	if !ok {
		return failResult("insufficient history for lookback")
	}
	return e.compare(f, lhs, frame, frames, idx)
}

func (e *Evaluator) evaluateVolume(f *model.Filter, frame *model.Frame, idx int) Result {
	current, ok := frame.At("volume", idx)
	if !ok {
		return failResult("volume not available")
	}
	avgPeriod := f.AvgPeriod
	if avgPeriod <= 0 {
		avgPeriod = 20
	}
	avgSeries := e.ProviderOrDefault().SMA(frame.Volume(), avgPeriod)
	avg, ok := frame.ValueInSeries(avgSeries, idx)
	if !ok {
		return failResult("insufficient history for volume average")
	}
	multiplier := f.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	threshold := avg * multiplier
	passed := current > threshold
	return Result{Passed: passed, Details: map[string]interface{}{
		"current_volume": current, "average_volume": avg, "threshold": threshold,
	}}
}

func (e *Evaluator) evaluateGap(f *model.Filter, frame *model.Frame, idx int) Result {
	open, ok := frame.At("open", idx)
	if !ok {
		return failResult("open not available")
	}
	priorClose, ok := frame.At("close", idx-1)
	if !ok {
		return failResult("prior close not available")
	}
	lhs := pctChange(open, priorClose)
	return e.compare(f, lhs, frame, nil, idx)
}

func (e *Evaluator) evaluatePrice52Week(f *model.Filter, frame *model.Frame, idx int) Result {
	lookback := f.LookbackDays
	if lookback <= 0 {
		lookback = 252
	}
	pos := frame.PositionFor(idx)
	start := pos - lookback + 1
	if start < 0 {
		start = 0
	}
	if pos < 0 || pos >= frame.Len() {
		return failResult("index out of range")
	}

	window := frame.Slice(start, pos+1)
	high := maxOf(window.High())
	low := minOf(window.Low())
	close, ok := frame.At("close", idx)
	if !ok {
		return failResult("close not available")
	}

	var lhs float64
	metric := f.Metric
	if metric == "" {
		metric = "distance_from_high_pct"
	}
	switch metric {
	case "distance_from_low_pct":
		if low == 0 {
			lhs = 0
		} else {
			lhs = (close - low) / low * 100
		}
	default:
		if high == 0 {
			lhs = 0
		} else {
			lhs = (high - close) / high * 100
		}
	}

	result := e.compare(f, lhs, frame, nil, idx)
	result.Details["high_52w"] = high
	result.Details["low_52w"] = low
	return result
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func (e *Evaluator) evaluatePattern(f *model.Filter, frame *model.Frame, idx int) Result {
	open, okO := frame.At("open", idx)
	high, okH := frame.At("high", idx)
	low, okL := frame.At("low", idx)
	close, okC := frame.At("close", idx)
	if !okO || !okH || !okL || !okC {
		return failResult("OHLC not available")
	}

	body := math.Abs(close - open)
	upper := high - math.Max(open, close)
	lower := math.Min(open, close) - low
	rng := high - low

	details := map[string]interface{}{
		"body": body, "upper": upper, "lower": lower, "range": rng,
	}
	if rng == 0 {
		details["match"] = false
		return Result{Passed: false, Details: details}
	}

	bodyRatio := body / rng
	upperRatio := upper / rng
	lowerRatio := lower / rng
	details["body_ratio"] = bodyRatio
	details["upper_ratio"] = upperRatio
	details["lower_ratio"] = lowerRatio

	var matched bool
	switch strings.ToLower(f.Pattern) {
	case "hammer":
		matched = bodyRatio <= 0.4 && lowerRatio >= 0.6 && upperRatio <= 0.2
	case "shooting_star":
		matched = bodyRatio <= 0.4 && upperRatio >= 0.6 && lowerRatio <= 0.2
	case "long_body":
		matched = bodyRatio >= 0.6
	case "small_body":
		matched = bodyRatio <= 0.2
	default:
		return failResult(fmt.Sprintf("unknown pattern %q", f.Pattern))
	}
	details["match"] = matched
	return Result{Passed: matched, Details: details}
}

func (e *Evaluator) evaluateFunction(f *model.Filter, frame *model.Frame, idx int) Result {
	period := f.TimePeriod
	if period <= 0 {
		period = 20
	}
	pos := frame.PositionFor(idx)
	if pos < 0 || pos >= frame.Len() {
		return failResult("index out of range")
	}
	start := pos - period + 1
	if start < 0 {
		start = 0
	}
	window := frame.Slice(start, pos+1)

	var lhs float64
	switch strings.ToLower(f.Field) {
	case "max":
		lhs = maxOf(window.High())
	case "min":
		lhs = minOf(window.Low())
	case "abs":
		current, _ := frame.At("close", idx)
		prior, ok := frame.At("close", idx-1)
		if !ok || prior == 0 {
			lhs = 0
		} else {
			lhs = math.Abs((current - prior) / prior * 100)
		}
	case "count":
		opens, closes := window.Open(), window.Close()
		count := 0
		for i := range closes {
			if closes[i] > opens[i] {
				count++
			}
		}
		lhs = float64(count)
	default:
		return failResult(fmt.Sprintf("unknown function %q", f.Field))
	}

	return e.compare(f, lhs, frame, nil, idx)
}

func (e *Evaluator) evaluateFinancial(f *model.Filter, fundamentals map[string]float64, stringFields map[string]string) Result {
	if f.Value != nil && f.Value.IsString {
		current, ok := stringFields[f.Field]
		if !ok {
			return failResult(fmt.Sprintf("financial field %q not available", f.Field))
		}
		return evaluateStringComparison(f.Operator, current, f.Value.String)
	}

	value, ok := lookupFinancial(fundamentals, f.Field)
	if !ok {
		return failResult(fmt.Sprintf("financial field %q not available", f.Field))
	}
	return e.compare(f, value, nil, nil, 0)
}

func lookupFinancial(fundamentals map[string]float64, field string) (float64, bool) {
	if v, ok := fundamentals[field]; ok {
		return v, true
	}
	if alias, ok := financialAliases[strings.ToLower(field)]; ok {
		if v, ok := fundamentals[alias]; ok {
			return v, true
		}
	}
	normalized := strings.ToLower(strings.ReplaceAll(field, "_", ""))
	for k, v := range fundamentals {
		if strings.ToLower(strings.ReplaceAll(k, "_", "")) == normalized {
			return v, true
		}
	}
	return 0, false
}

func evaluateStringComparison(op model.Operator, current, want string) Result {
	var passed bool
	switch op {
	case model.OpEQ:
		passed = strings.EqualFold(current, want)
	case model.OpNEQ:
		passed = !strings.EqualFold(current, want)
	case model.OpContains:
		passed = strings.Contains(strings.ToLower(current), strings.ToLower(want))
	default:
		return failResult(fmt.Sprintf("operator %q not valid for string fields", op))
	}
	return Result{Passed: passed, Details: map[string]interface{}{"current_value": current, "compared_to": want}}
}

// evaluateCrossover implements the filter-level crossover operator,
// including the static-data guard: when both sides are unchanged between
// idx-1 and idx, fall back to a strict gt/lt comparison and annotate the
// diagnostic.
func (e *Evaluator) evaluateCrossover(f *model.Filter, frame *model.Frame, frames eval.Frames, idx int) Result {
	lhsNow, okLN, err := e.resolveAttributeOrIndicator(f.Type, f.Field, f.TimePeriod, f.Params, frame, idx)
	if err != nil || !okLN {
		return failResult("crossover LHS unavailable")
	}
	lhsPrev, okLP, err := e.resolveAttributeOrIndicator(f.Type, f.Field, f.TimePeriod, f.Params, frame, idx-1)
	if err != nil || !okLP {
		return failResult("crossover LHS history unavailable")
	}

	rhsNow, err := e.resolveRHSValue(f, frame, frames, idx)
	if err != nil {
		return failResult(err.Error())
	}
	rhsPrev, err := e.resolveRHSValue(f, frame, frames, idx-1)
	if err != nil {
		rhsPrev = rhsNow
	}

	details := map[string]interface{}{
		"current_value": lhsNow, "previous_value": lhsPrev,
		"current_threshold": rhsNow, "previous_threshold": rhsPrev,
	}

	if lhsNow == lhsPrev && rhsNow == rhsPrev {
		details["note"] = "Static data detected"
		var passed bool
		if f.Operator == model.OpCrossedAbove {
			passed = lhsNow > rhsNow
		} else {
			passed = lhsNow < rhsNow
		}
		return Result{Passed: passed, Details: details}
	}

	var passed bool
	if f.Operator == model.OpCrossedAbove {
		passed = lhsPrev <= rhsPrev && lhsNow > rhsNow
	} else {
		passed = lhsPrev >= rhsPrev && lhsNow < rhsNow
	}
	return Result{Passed: passed, Details: details}
}

func (e *Evaluator) evaluateExpression(f *model.Filter, frames eval.Frames) Result {
	if f.Expression == nil {
		return failResult("expression filter missing expression")
	}
	v, err := eval.Eval(f.Expression, frames, -1, e.ProviderOrDefault())
	if err != nil {
		return failResult(err.Error())
	}
	return Result{Passed: v != 0, Details: map[string]interface{}{"result": v}}
}
