// Package resolver decodes indicator field names (including compound forms
// like rsi_9 and multi-output branches like macd_signal) and evaluates them
// against a frame at a given index, delegating the actual math to an
// indicator.Provider.
package resolver

import (
	"strconv"
	"strings"

	"github.com/irfndi/stockscreener/internal/indicator"
	"github.com/irfndi/stockscreener/internal/model"
)

// singleParamIndicators lists indicator names eligible for compound field
// decoding (NAME_N overrides time_period with N).
var singleParamIndicators = map[string]bool{
	"SMA": true, "EMA": true, "WMA": true, "RSI": true, "ATR": true,
	"CCI": true, "WILLIAMSR": true, "MFI": true, "ROC": true, "AROON": true,
	"MAX": true, "MIN": true, "ADX": true, "STOCH": true, "SUPERTREND": true,
}

var defaultPeriods = map[string]int{
	"SMA": 20, "EMA": 20, "WMA": 20, "RSI": 14, "ATR": 14, "ADX": 14,
	"CCI": 20, "WILLIAMSR": 14, "MFI": 14, "ROC": 12, "STOCH": 14,
	"SUPERTREND": 10, "AROON": 25, "MAX": 20, "MIN": 20, "BBANDS": 20,
}

// DecodeField splits a compound field name (e.g. "rsi_9") into its base
// indicator name and an overriding period. overridden is false when the
// field has no numeric suffix, or the prefix isn't a single-parameter
// indicator (e.g. "bbands_upper").
func DecodeField(field string) (base string, period int, overridden bool) {
	upper := strings.ToUpper(field)
	sep := strings.LastIndex(upper, "_")
	if sep < 0 {
		return upper, 0, false
	}
	suffix := upper[sep+1:]
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return upper, 0, false
	}
	candidate := upper[:sep]
	if !singleParamIndicators[candidate] {
		return upper, 0, false
	}
	return candidate, n, true
}

// Params carries the optional, indicator-specific overrides a filter may
// supply alongside time_period (fast/slow/signal for MACD, stddev for
// Bollinger, smooth for Stochastic, and so on).
type Params map[string]float64

func (p Params) orDefault(key string, def float64) float64 {
	if p == nil {
		return def
	}
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Resolve evaluates field at idx against frame, handling compound field
// decoding and multi-output branch selection. period is the caller-supplied
// time_period (0 meaning "use the indicator's default").
func Resolve(provider indicator.Provider, frame *model.Frame, field string, period int, idx int, params Params) (float64, bool, error) {
	base, overridePeriod, overridden := DecodeField(field)
	if overridden {
		period = overridePeriod
	}
	if period <= 0 {
		period = defaultPeriods[base]
	}

	high, low, close, volume := frame.High(), frame.Low(), frame.Close(), frame.Volume()

	switch base {
	case "SMA":
		return pick(frame, provider.SMA(close, period), idx)
	case "EMA":
		return pick(frame, provider.EMA(close, period), idx)
	case "WMA":
		return pick(frame, provider.WMA(close, period), idx)
	case "RSI":
		return pick(frame, provider.RSI(close, period), idx)
	case "ROC":
		return pick(frame, provider.ROC(close, period), idx)
	case "ATR":
		return pick(frame, provider.ATR(high, low, close, period), idx)
	case "CCI":
		return pick(frame, provider.CCI(high, low, close, period), idx)
	case "WILLIAMSR":
		return pick(frame, provider.WilliamsR(high, low, close, period), idx)
	case "MFI":
		return pick(frame, provider.MFI(high, low, close, volume, period), idx)
	case "OBV":
		return pick(frame, provider.OBV(close, volume), idx)
	case "VWAP":
		return pick(frame, provider.VWAP(high, low, close, volume), idx)
	case "MAX":
		return pick(frame, indicator.RollingMax(high, period), idx)
	case "MIN":
		return pick(frame, indicator.RollingMin(low, period), idx)
	case "PSAR", "PARABOLICSAR":
		step := params.orDefault("step", 0.02)
		maxStep := params.orDefault("max_step", 0.2)
		return pick(frame, provider.ParabolicSAR(high, low, step, maxStep), idx)

	case "MACD", "MACD_SIGNAL", "MACD_HIST":
		fast := int(params.orDefault("fast", 12))
		slow := int(params.orDefault("slow", 26))
		signalP := int(params.orDefault("signal", 9))
		macd, signal, hist := provider.MACD(close, fast, slow, signalP)
		switch base {
		case "MACD_SIGNAL":
			return pick(frame, signal, idx)
		case "MACD_HIST":
			return pick(frame, hist, idx)
		default:
			return pick(frame, macd, idx)
		}

	case "BBANDS", "BBANDS_UPPER", "BBANDS_LOWER", "BBANDS_PCT_B", "BB_WIDTH":
		bbPeriod := period
		if bbPeriod <= 0 {
			bbPeriod = defaultPeriods["BBANDS"]
		}
		mult := params.orDefault("stddev", 2.0)
		upper, middle, lower, pctB, width := provider.Bollinger(close, bbPeriod, mult)
		switch base {
		case "BBANDS_UPPER":
			return pick(frame, upper, idx)
		case "BBANDS_LOWER":
			return pick(frame, lower, idx)
		case "BBANDS_PCT_B":
			return pick(frame, pctB, idx)
		case "BB_WIDTH":
			return pick(frame, width, idx)
		default:
			return pick(frame, middle, idx)
		}

	case "ADX", "PLUS_DI", "MINUS_DI", "DX":
		plusDI, minusDI, dx, adx := provider.ADX(high, low, close, period)
		switch base {
		case "PLUS_DI":
			return pick(frame, plusDI, idx)
		case "MINUS_DI":
			return pick(frame, minusDI, idx)
		case "DX":
			return pick(frame, dx, idx)
		default:
			return pick(frame, adx, idx)
		}

	case "STOCH", "STOCH_K":
		smooth := int(params.orDefault("smooth", 3))
		return pick(frame, provider.StochasticK(high, low, close, period, smooth), idx)

	case "SUPERTREND":
		mult := params.orDefault("multiplier", 3.0)
		return pick(frame, provider.Supertrend(high, low, close, period, mult), idx)

	case "AROON", "AROON_UP", "AROON_DOWN", "AROON_OSC":
		up, down, osc := provider.Aroon(high, low, period)
		switch base {
		case "AROON_DOWN":
			return pick(frame, down, idx)
		case "AROON_OSC":
			return pick(frame, osc, idx)
		default:
			return pick(frame, up, idx)
		}

	case "ICHIMOKU_TENKAN", "ICHIMOKU_KIJUN", "ICHIMOKU_SENKOU_A", "ICHIMOKU_SENKOU_B", "ICHIMOKU_CHIKOU":
		tenkanP := int(params.orDefault("tenkan", 9))
		kijunP := int(params.orDefault("kijun", 26))
		senkouP := int(params.orDefault("senkou", 52))
		tenkan, kijun, senkouA, senkouB, chikou := provider.Ichimoku(high, low, close, tenkanP, kijunP, senkouP)
		switch base {
		case "ICHIMOKU_KIJUN":
			return pick(frame, kijun, idx)
		case "ICHIMOKU_SENKOU_A":
			return pick(frame, senkouA, idx)
		case "ICHIMOKU_SENKOU_B":
			return pick(frame, senkouB, idx)
		case "ICHIMOKU_CHIKOU":
			return pick(frame, chikou, idx)
		default:
			return pick(frame, tenkan, idx)
		}
	}

	return 0, false, model.NewScreenError(model.MissingField, "resolver: unknown indicator field "+field, nil)
}

func pick(frame *model.Frame, series []float64, idx int) (float64, bool, error) {
	v, ok := frame.ValueInSeries(series, idx)
	return v, ok, nil
}
