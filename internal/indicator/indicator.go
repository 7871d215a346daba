// Package indicator implements the screening engine's technical indicator
// functions: the moving-average and oscillator core (SMA, EMA, RSI, MACD,
// Bollinger, ATR, Stochastic, OBV) delegates to github.com/cinar/indicator/v2
// — the same third-party TA library the teacher wraps in its own
// internal/talib package — via the adapters in cinar.go; indicators cinar
// doesn't cover, or whose tie-break/absent-value semantics need explicit
// step-by-step control flow (Supertrend, PSAR, Ichimoku, Aroon, CCI,
// Williams %R, MFI, ROC, VWAP, WMA), stay hand-rolled here. Every function
// takes one or more OHLCV series and returns series aligned to the input
// (len(out) == len(in)); positions where the indicator is not yet defined
// (rolling warm-up) carry math.NaN(), the absent-value sentinel the
// resolver and frame layer test for.
package indicator

import "math"

// SMA computes the rolling arithmetic mean over period, via
// cinar/indicator/v2's trend.Sma (see cinar.go) — the same library the
// teacher wraps in its own internal/talib package.
func SMA(values []float64, period int) []float64 {
	return cinarSMA(values, period)
}

// EMA computes the exponential moving average over period, via
// cinar/indicator/v2's trend.Ema (see cinar.go).
func EMA(values []float64, period int) []float64 {
	return cinarEMA(values, period)
}

// WMA computes a linearly weighted moving average, weights 1..period
// normalized by their sum.
func WMA(values []float64, period int) []float64 {
	n := len(values)
	out := make([]float64, n)
	if period <= 0 {
		fillNaN(out)
		return out
	}
	denom := float64(period*(period+1)) / 2
	for i := 0; i < n; i++ {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		var sum float64
		for w := 1; w <= period; w++ {
			sum += values[i-period+w] * float64(w)
		}
		out[i] = sum / denom
	}
	return out
}

// RSI computes the Wilder-smoothed relative strength index, via
// cinar/indicator/v2's momentum.Rsi (see cinar.go).
func RSI(values []float64, period int) []float64 {
	return cinarRSI(values, period)
}

// ROC computes the rate of change over period: (close/close[-period]-1)*100.
func ROC(values []float64, period int) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		prev := values[i-period]
		if prev == 0 {
			out[i] = 0
			continue
		}
		out[i] = (values[i]/prev - 1) * 100
	}
	return out
}

// RollingMax computes the rolling maximum over period.
func RollingMax(values []float64, period int) []float64 {
	return rollingExtreme(values, period, maxSlice)
}

// RollingMin computes the rolling minimum over period.
func RollingMin(values []float64, period int) []float64 {
	return rollingExtreme(values, period, minSlice)
}

func rollingExtreme(values []float64, period int, fn func([]float64) float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = fn(values[i-period+1 : i+1])
	}
	return out
}

func fillNaN(out []float64) {
	for i := range out {
		out[i] = math.NaN()
	}
}

func maxSlice(s []float64) float64 {
	m := s[0]
	for _, v := range s[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minSlice(s []float64) float64 {
	m := s[0]
	for _, v := range s[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// wilderSmooth applies Wilder's smoothing (alpha = 1/period), seeded by a
// simple average of the first period valid (non-NaN) values.
func wilderSmooth(values []float64, period int) []float64 {
	n := len(values)
	out := make([]float64, n)
	fillNaN(out)

	start := 0
	for start < n && math.IsNaN(values[start]) {
		start++
	}
	if n-start < period {
		return out
	}

	var sum float64
	for i := start; i < start+period; i++ {
		sum += values[i]
	}
	avg := sum / float64(period)
	idx := start + period - 1
	out[idx] = avg
	for i := idx + 1; i < n; i++ {
		avg = (avg*float64(period-1) + values[i]) / float64(period)
		out[i] = avg
	}
	return out
}
