package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOBV_AccumulatesOnUpBar(t *testing.T) {
	// Deltas, not absolute levels: OBV's seed convention (0 vs. volume[0])
	// is an implementation detail of whichever backend computes it; the
	// invariant every OBV implementation must share is that each bar adds
	// +volume on an up close, -volume on a down close, and nothing on a
	// flat close.
	close := []float64{10, 11, 10, 12}
	volume := []float64{100, 200, 150, 300}
	out := OBV(close, volume)
	assert.InDelta(t, 200.0, out[1]-out[0], 1e-9)
	assert.InDelta(t, -150.0, out[2]-out[1], 1e-9)
	assert.InDelta(t, 300.0, out[3]-out[2], 1e-9)
}

func TestVWAP_MonotonicWithFlatPrice(t *testing.T) {
	high := []float64{10, 10, 10}
	low := []float64{10, 10, 10}
	close := []float64{10, 10, 10}
	volume := []float64{100, 100, 100}
	out := VWAP(high, low, close, volume)
	for _, v := range out {
		assert.InDelta(t, 10.0, v, 1e-9)
	}
}

func TestMFI_BoundedZeroToHundred(t *testing.T) {
	high, low, close := buildOHLC(40)
	volume := make([]float64, 40)
	for i := range volume {
		volume[i] = 1000
	}
	out := MFI(high, low, close, volume, 14)
	for _, v := range out {
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}
