package indicator

import "math"

// VWAP computes the cumulative volume-weighted average price, anchored at
// the start of the frame.
func VWAP(high, low, close, volume []float64) []float64 {
	n := len(close)
	out := make([]float64, n)
	var cumPV, cumVol float64
	for i := 0; i < n; i++ {
		tp := (high[i] + low[i] + close[i]) / 3
		cumPV += tp * volume[i]
		cumVol += volume[i]
		if cumVol == 0 {
			out[i] = 0
		} else {
			out[i] = cumPV / cumVol
		}
	}
	return out
}

// OBV computes on-balance volume: cumulative volume signed by the direction
// of each bar's close change, via cinar/indicator/v2's volume.Obv (see
// cinar.go).
func OBV(close, volume []float64) []float64 {
	return cinarOBV(close, volume)
}

// MFI computes the money flow index, an RSI analogue computed over
// volume-weighted typical price within a trailing window.
func MFI(high, low, close, volume []float64, period int) []float64 {
	n := len(close)
	tp := make([]float64, n)
	for i := 0; i < n; i++ {
		tp[i] = (high[i] + low[i] + close[i]) / 3
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		var posFlow, negFlow float64
		for j := i - period + 1; j <= i; j++ {
			mf := tp[j] * volume[j]
			switch {
			case tp[j] > tp[j-1]:
				posFlow += mf
			case tp[j] < tp[j-1]:
				negFlow += mf
			}
		}
		out[i] = mfiFromFlows(posFlow, negFlow)
	}
	return out
}

func mfiFromFlows(pos, neg float64) float64 {
	if neg == 0 {
		if pos == 0 {
			return 50
		}
		return 100
	}
	mr := pos / neg
	return 100 - 100/(1+mr)
}
