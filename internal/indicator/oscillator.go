package indicator

import "math"

// CCI computes the commodity channel index over typical price (h+l+c)/3.
func CCI(high, low, close []float64, period int) []float64 {
	n := len(close)
	tp := make([]float64, n)
	for i := 0; i < n; i++ {
		tp[i] = (high[i] + low[i] + close[i]) / 3
	}
	smaTP := SMA(tp, period)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		mean := smaTP[i]
		var sumAbsDev float64
		for j := i - period + 1; j <= i; j++ {
			sumAbsDev += math.Abs(tp[j] - mean)
		}
		mad := sumAbsDev / float64(period)
		if mad == 0 {
			out[i] = 0
		} else {
			out[i] = (tp[i] - mean) / (0.015 * mad)
		}
	}
	return out
}

// WilliamsR computes the Williams %R oscillator.
func WilliamsR(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		hh := maxSlice(high[i-period+1 : i+1])
		ll := minSlice(low[i-period+1 : i+1])
		rangeVal := hh - ll
		if rangeVal == 0 {
			out[i] = 0
		} else {
			out[i] = -100 * (hh - close[i]) / rangeVal
		}
	}
	return out
}
