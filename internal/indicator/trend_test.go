package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMACD_HistogramIsDifference(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100 + float64(i)*0.5
	}
	macd, signal, hist := MACD(values, 12, 26, 9)
	require.Len(t, hist, 40)
	for i := range hist {
		assert.InDelta(t, macd[i]-signal[i], hist[i], 1e-9)
	}
}

func TestBollinger_PercentBWithinBandsIsBounded(t *testing.T) {
	values := []float64{10, 11, 10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18, 17, 19, 18, 20}
	upper, middle, lower, percentB, width := Bollinger(values, 5, 2)
	for i := 4; i < len(values); i++ {
		assert.False(t, math.IsNaN(upper[i]))
		assert.False(t, math.IsNaN(middle[i]))
		assert.False(t, math.IsNaN(lower[i]))
		assert.GreaterOrEqual(t, upper[i], lower[i])
		assert.False(t, math.IsNaN(percentB[i]))
		assert.False(t, math.IsNaN(width[i]))
	}
}

func TestATR_FirstBarUsesHighLow(t *testing.T) {
	high := []float64{10, 11, 12}
	low := []float64{8, 9, 10}
	close := []float64{9, 10, 11}
	tr := TrueRange(high, low, close)
	assert.InDelta(t, 2.0, tr[0], 1e-9)
}

func TestADX_ProducesBoundedValues(t *testing.T) {
	n := 60
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i)
		high[i] = base + 1
		low[i] = base - 1
		close[i] = base
	}
	_, _, _, adx := ADX(high, low, close, 14)
	found := false
	for _, v := range adx {
		if !math.IsNaN(v) {
			found = true
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
	}
	assert.True(t, found)
}

func TestStochasticK_BoundedZeroToHundred(t *testing.T) {
	high := []float64{10, 11, 12, 13, 14, 15, 16}
	low := []float64{8, 9, 10, 11, 12, 13, 14}
	close := []float64{9, 10, 11, 12, 13, 14, 15}
	out := StochasticK(high, low, close, 5, 1)
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqualf(t, v, 0.0, "index %d", i)
		assert.LessOrEqualf(t, v, 100.0, "index %d", i)
	}
}

func TestSupertrend_FlipsToBearishOnDrop(t *testing.T) {
	n := 30
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := 0; i < n; i++ {
		price := 100.0
		if i < 20 {
			price += float64(i)
		} else {
			price += 20 - float64(i-20)*5
		}
		high[i] = price + 1
		low[i] = price - 1
		close[i] = price
	}
	out := Supertrend(high, low, close, 10, 3)
	require.Len(t, out, n)
	assert.False(t, math.IsNaN(out[n-1]))
}

func TestParabolicSAR_StaysBelowPriceInUptrend(t *testing.T) {
	n := 20
	high := make([]float64, n)
	low := make([]float64, n)
	for i := 0; i < n; i++ {
		high[i] = 100 + float64(i)*2
		low[i] = 98 + float64(i)*2
	}
	out := ParabolicSAR(high, low, 0.02, 0.2)
	for i := 1; i < n; i++ {
		assert.LessOrEqual(t, out[i], high[i])
	}
}
