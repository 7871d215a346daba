package indicator

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volatility"
	"github.com/cinar/indicator/v2/volume"
)

// alignTail normalizes a cinar/indicator/v2 channel result onto this
// package's 1:1-with-input convention. cinar's streaming indicators only
// emit once their window has filled, so their channel output is shorter
// than the input by the indicator's warm-up; every cinar-backed function in
// this file pushes its result back through alignTail exactly once so the
// rest of the package (and the resolver's index-from-end lookups) never has
// to know the difference between a hand-rolled series and a cinar one.
func alignTail(n int, result []float64) []float64 {
	out := make([]float64, n)
	fillNaN(out)
	if len(result) == 0 {
		return out
	}
	if len(result) > n {
		result = result[len(result)-n:]
	}
	copy(out[n-len(result):], result)
	return out
}

// cinarSMA delegates to trend.Sma, mirroring talib.go's Sma wrapper.
func cinarSMA(values []float64, period int) []float64 {
	n := len(values)
	if period <= 0 || n < period {
		out := make([]float64, n)
		fillNaN(out)
		return out
	}
	c := helper.SliceToChan(values)
	sma := trend.NewSmaWithPeriod[float64](period)
	return alignTail(n, helper.ChanToSlice(sma.Compute(c)))
}

// cinarEMA delegates to trend.Ema, mirroring talib.go's Ema wrapper.
func cinarEMA(values []float64, period int) []float64 {
	n := len(values)
	if n == 0 {
		return []float64{}
	}
	c := helper.SliceToChan(values)
	ema := trend.NewEmaWithPeriod[float64](period)
	return alignTail(n, helper.ChanToSlice(ema.Compute(c)))
}

// cinarRSI delegates to momentum.Rsi, mirroring talib.go's Rsi wrapper. A
// fully flat input (zero gain and zero loss throughout) is special-cased to
// the neutral midpoint rather than routed through cinar: RS = 0/0 on a flat
// series is undefined, and the filter evaluator's crossover static-data
// guard (internal/filter) depends on this degenerate case resolving to a
// defined value instead of absent, per spec scenario 4.
func cinarRSI(values []float64, period int) []float64 {
	n := len(values)
	if period <= 0 || n < period+1 {
		out := make([]float64, n)
		fillNaN(out)
		return out
	}
	if seriesIsFlat(values) {
		out := make([]float64, n)
		fillNaN(out)
		for i := period; i < n; i++ {
			out[i] = 50
		}
		return out
	}
	c := helper.SliceToChan(values)
	rsi := momentum.NewRsiWithPeriod[float64](period)
	return alignTail(n, helper.ChanToSlice(rsi.Compute(c)))
}

func seriesIsFlat(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] != values[0] {
			return false
		}
	}
	return true
}

// cinarMACD delegates the macd/signal lines to trend.Macd, mirroring
// talib.go's Macd wrapper, and derives the histogram locally the same way
// talib_adapter.go's callers do (talib.Macd itself returns a nil
// histogram).
func cinarMACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram []float64) {
	n := len(values)
	if n < slowPeriod {
		macd, signal, histogram = make([]float64, n), make([]float64, n), make([]float64, n)
		fillNaN(macd)
		fillNaN(signal)
		fillNaN(histogram)
		return
	}
	c := helper.SliceToChan(values)
	m := trend.NewMacdWithPeriod[float64](fastPeriod, slowPeriod, signalPeriod)
	macdLine, signalLine := m.Compute(c)
	macd = alignTail(n, helper.ChanToSlice(macdLine))
	signal = alignTail(n, helper.ChanToSlice(signalLine))
	histogram = make([]float64, n)
	for i := range histogram {
		if math.IsNaN(macd[i]) || math.IsNaN(signal[i]) {
			histogram[i] = math.NaN()
			continue
		}
		histogram[i] = macd[i] - signal[i]
	}
	return
}

// cinarBollinger delegates the three bands to volatility.BollingerBands,
// mirroring talib.go's BBands wrapper; %B and bandwidth are derived
// locally since cinar's bands don't carry them.
func cinarBollinger(values []float64, period int) (upper, middle, lower []float64) {
	n := len(values)
	if period <= 0 || n < period {
		upper, middle, lower = make([]float64, n), make([]float64, n), make([]float64, n)
		fillNaN(upper)
		fillNaN(middle)
		fillNaN(lower)
		return
	}
	c := helper.SliceToChan(values)
	bb := volatility.NewBollingerBandsWithPeriod[float64](period)
	u, m, l := bb.Compute(c)
	upper = alignTail(n, helper.ChanToSlice(u))
	middle = alignTail(n, helper.ChanToSlice(m))
	lower = alignTail(n, helper.ChanToSlice(l))
	return
}

// cinarATR delegates to volatility.Atr, mirroring talib.go's Atr wrapper.
func cinarATR(high, low, close []float64, period int) []float64 {
	n := len(close)
	if period <= 0 || n < period {
		out := make([]float64, n)
		fillNaN(out)
		return out
	}
	h := helper.SliceToChan(high)
	l := helper.SliceToChan(low)
	c := helper.SliceToChan(close)
	atr := volatility.NewAtrWithPeriod[float64](period)
	return alignTail(n, helper.ChanToSlice(atr.Compute(h, l, c)))
}

// cinarStochastic delegates to momentum.NewStochasticOscillator, mirroring
// talib.go's StochF wrapper exactly: that wrapper accepts kPeriod/dPeriod
// arguments but never threads them into the library call (cinar's
// StochasticOscillator has no period knobs), so custom periods are not
// representable through this path either.
func cinarStochastic(high, low, close []float64) (k, d []float64) {
	n := len(close)
	h := helper.SliceToChan(high)
	l := helper.SliceToChan(low)
	c := helper.SliceToChan(close)
	stoch := momentum.NewStochasticOscillator[float64]()
	kc, dc := stoch.Compute(h, l, c)
	k = alignTail(n, helper.ChanToSlice(kc))
	d = alignTail(n, helper.ChanToSlice(dc))
	return
}

// cinarOBV delegates to volume.Obv, mirroring talib.go's Obv wrapper.
func cinarOBV(close, vol []float64) []float64 {
	n := len(close)
	if n == 0 {
		return nil
	}
	p := helper.SliceToChan(close)
	v := helper.SliceToChan(vol)
	obv := volume.NewObv[float64]()
	return alignTail(n, helper.ChanToSlice(obv.Compute(p, v)))
}
