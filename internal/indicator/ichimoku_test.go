package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildOHLC(n int) (high, low, close []float64) {
	high = make([]float64, n)
	low = make([]float64, n)
	close = make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i)
		high[i] = base + 2
		low[i] = base - 2
		close[i] = base
	}
	return
}

func TestIchimoku_ChikouShiftedBackward(t *testing.T) {
	high, low, close := buildOHLC(80)
	_, _, _, _, chikou := Ichimoku(high, low, close, 9, 26, 52)
	for i := 0; i+26 < len(close); i++ {
		assert.Equal(t, close[i+26], chikou[i])
	}
	assert.True(t, math.IsNaN(chikou[len(close)-1]))
}

func TestIchimoku_SenkouShiftedForward(t *testing.T) {
	high, low, close := buildOHLC(80)
	_, _, senkouA, _, _ := Ichimoku(high, low, close, 9, 26, 52)
	assert.True(t, math.IsNaN(senkouA[0]))
}

func TestAroon_OscillatorIsDifference(t *testing.T) {
	high, low, _ := buildOHLC(40)
	up, down, osc := Aroon(high, low, 25)
	for i := 25; i < len(up); i++ {
		assert.InDelta(t, up[i]-down[i], osc[i], 1e-9)
	}
}
