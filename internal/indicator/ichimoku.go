package indicator

import "math"

// Ichimoku computes the Ichimoku Kinko Hyo components. Senkou A/B are
// shifted forward by the kijun (medium) period and chikou is shifted
// backward by the same period, matching how charting libraries align the
// cloud and lagging span onto a fixed-length series.
func Ichimoku(high, low, close []float64, tenkanPeriod, kijunPeriod, senkouPeriod int) (tenkan, kijun, senkouA, senkouB, chikou []float64) {
	n := len(close)
	tenkan = midpointSeries(high, low, tenkanPeriod)
	kijun = midpointSeries(high, low, kijunPeriod)
	senkouBBase := midpointSeries(high, low, senkouPeriod)

	senkouABase := make([]float64, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(tenkan[i]) || math.IsNaN(kijun[i]) {
			senkouABase[i] = math.NaN()
			continue
		}
		senkouABase[i] = (tenkan[i] + kijun[i]) / 2
	}

	senkouA = shiftForward(senkouABase, kijunPeriod)
	senkouB = shiftForward(senkouBBase, kijunPeriod)

	chikou = make([]float64, n)
	for i := 0; i < n; i++ {
		if i+kijunPeriod < n {
			chikou[i] = close[i+kijunPeriod]
		} else {
			chikou[i] = math.NaN()
		}
	}
	return tenkan, kijun, senkouA, senkouB, chikou
}

func midpointSeries(high, low []float64, period int) []float64 {
	n := len(high)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		hh := maxSlice(high[i-period+1 : i+1])
		ll := minSlice(low[i-period+1 : i+1])
		out[i] = (hh + ll) / 2
	}
	return out
}

func shiftForward(values []float64, shift int) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i-shift >= 0 {
			out[i] = values[i-shift]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Aroon computes the Aroon up/down lines and their oscillator, based on how
// many bars have elapsed since the period's high/low extreme.
func Aroon(high, low []float64, period int) (up, down, oscillator []float64) {
	n := len(high)
	up = make([]float64, n)
	down = make([]float64, n)
	oscillator = make([]float64, n)

	for i := 0; i < n; i++ {
		if i < period {
			up[i], down[i], oscillator[i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		hiIdx, loIdx := i, i
		for j := i - period; j <= i; j++ {
			if high[j] > high[hiIdx] {
				hiIdx = j
			}
			if low[j] < low[loIdx] {
				loIdx = j
			}
		}
		barsSinceHigh := i - hiIdx
		barsSinceLow := i - loIdx
		up[i] = (float64(period-barsSinceHigh) / float64(period)) * 100
		down[i] = (float64(period-barsSinceLow) / float64(period)) * 100
		oscillator[i] = up[i] - down[i]
	}
	return up, down, oscillator
}
