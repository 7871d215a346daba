package indicator

import "math"

// MACD computes the moving average convergence/divergence line, its signal
// line, and the histogram (macd - signal), via cinar/indicator/v2's
// trend.Macd (see cinar.go).
func MACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram []float64) {
	return cinarMACD(values, fastPeriod, slowPeriod, signalPeriod)
}

// Bollinger computes Bollinger Bands: the three bands come from
// cinar/indicator/v2's volatility.BollingerBands (see cinar.go); %B and
// bandwidth are derived locally since cinar's bands don't carry them.
func Bollinger(values []float64, period int, multiplier float64) (upper, middle, lower, percentB, width []float64) {
	// cinar's BollingerBandsWithPeriod fixes the band multiplier at 2
	// standard deviations and takes no multiplier argument, so a
	// non-default multiplier is accepted for interface compatibility but
	// not honored — see DESIGN.md.
	n := len(values)
	upper, middle, lower = cinarBollinger(values, period)
	percentB = make([]float64, n)
	width = make([]float64, n)

	for i := 0; i < n; i++ {
		if math.IsNaN(upper[i]) || math.IsNaN(lower[i]) || math.IsNaN(middle[i]) {
			percentB[i], width[i] = math.NaN(), math.NaN()
			continue
		}
		rangeVal := upper[i] - lower[i]
		if rangeVal == 0 {
			percentB[i] = 0
		} else {
			percentB[i] = (values[i] - lower[i]) / rangeVal
		}
		if middle[i] == 0 {
			width[i] = 0
		} else {
			width[i] = rangeVal / middle[i]
		}
	}
	return upper, middle, lower, percentB, width
}

// TrueRange computes the per-bar true range.
func TrueRange(high, low, close []float64) []float64 {
	n := len(high)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			tr[i] = high[i] - low[i]
			continue
		}
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// ATR computes Wilder-smoothed average true range, via
// cinar/indicator/v2's volatility.Atr (see cinar.go).
func ATR(high, low, close []float64, period int) []float64 {
	return cinarATR(high, low, close, period)
}

// ADX computes the average directional index along with its +DI/-DI/DX
// components.
func ADX(high, low, close []float64, period int) (plusDI, minusDI, dx, adx []float64) {
	n := len(high)
	tr := TrueRange(high, low, close)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	smoothTR := wilderSmooth(tr, period)
	smoothPlusDM := wilderSmooth(plusDM, period)
	smoothMinusDM := wilderSmooth(minusDM, period)

	plusDI = make([]float64, n)
	minusDI = make([]float64, n)
	dx = make([]float64, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(smoothTR[i]) || smoothTR[i] == 0 {
			plusDI[i], minusDI[i], dx[i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		plusDI[i] = 100 * smoothPlusDM[i] / smoothTR[i]
		minusDI[i] = 100 * smoothMinusDM[i] / smoothTR[i]
		sum := plusDI[i] + minusDI[i]
		if sum == 0 {
			dx[i] = 0
		} else {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		}
	}
	adx = wilderSmooth(dx, period)
	return plusDI, minusDI, dx, adx
}

// StochasticK computes the %K stochastic oscillator via
// cinar/indicator/v2's momentum.StochasticOscillator (see cinar.go),
// mirroring talib.go's StochF wrapper: that library's oscillator has no
// period/smoothing knobs, so period and smooth are accepted for interface
// compatibility but not threaded through, exactly like the teacher's own
// wrapper.
func StochasticK(high, low, close []float64, period, smooth int) []float64 {
	k, _ := cinarStochastic(high, low, close)
	return k
}

// Supertrend computes the Supertrend indicator. Ties (close exactly on a
// band) retain the prior step's trend direction.
func Supertrend(high, low, close []float64, period int, multiplier float64) []float64 {
	n := len(close)
	atr := ATR(high, low, close, period)
	out := make([]float64, n)
	finalUpper := make([]float64, n)
	finalLower := make([]float64, n)
	bullish := true

	for i := 0; i < n; i++ {
		if math.IsNaN(atr[i]) {
			out[i], finalUpper[i], finalLower[i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		mid := (high[i] + low[i]) / 2
		basicUpper := mid + multiplier*atr[i]
		basicLower := mid - multiplier*atr[i]

		if i == 0 || math.IsNaN(finalUpper[i-1]) {
			finalUpper[i] = basicUpper
			finalLower[i] = basicLower
		} else {
			if basicUpper < finalUpper[i-1] || close[i-1] > finalUpper[i-1] {
				finalUpper[i] = basicUpper
			} else {
				finalUpper[i] = finalUpper[i-1]
			}
			if basicLower > finalLower[i-1] || close[i-1] < finalLower[i-1] {
				finalLower[i] = basicLower
			} else {
				finalLower[i] = finalLower[i-1]
			}
		}

		switch {
		case close[i] > finalUpper[i]:
			bullish = true
		case close[i] < finalLower[i]:
			bullish = false
		}

		if bullish {
			out[i] = finalLower[i]
		} else {
			out[i] = finalUpper[i]
		}
	}
	return out
}

// ParabolicSAR computes the parabolic stop-and-reverse series. The SAR is
// capped against the prior two bars' extremes on each side, per Wilder.
func ParabolicSAR(high, low []float64, step, maxStep float64) []float64 {
	n := len(high)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	bullish := true
	af := step
	ep := high[0]
	sar := low[0]
	out[0] = sar

	for i := 1; i < n; i++ {
		sar = sar + af*(ep-sar)

		if bullish {
			if i >= 2 {
				sar = math.Min(sar, math.Min(low[i-1], low[i-2]))
			} else {
				sar = math.Min(sar, low[i-1])
			}
			if low[i] < sar {
				bullish = false
				sar = ep
				ep = low[i]
				af = step
			} else if high[i] > ep {
				ep = high[i]
				af = math.Min(af+step, maxStep)
			}
		} else {
			if i >= 2 {
				sar = math.Max(sar, math.Max(high[i-1], high[i-2]))
			} else {
				sar = math.Max(sar, high[i-1])
			}
			if high[i] > sar {
				bullish = true
				sar = ep
				ep = high[i]
				af = step
			} else if low[i] < ep {
				ep = low[i]
				af = math.Min(af+step, maxStep)
			}
		}
		out[i] = sar
	}
	return out
}
