package marketdata

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/irfndi/stockscreener/internal/model"
)

const mockHistoryDays = 150

// symbolSeed derives a deterministic random seed from a symbol so the mock
// provider returns the same walk for the same symbol across calls, unlike
// the teacher's time-seeded generator.
func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	return int64(h.Sum64())
}

// FetchMockCandles produces a deterministic 150-day random walk for symbol,
// per spec §4.1's fallback rule: used only when the live provider returns
// empty or raises, to keep development and tests offline-capable.
func FetchMockCandles(symbol string) *model.Frame {
	rng := rand.New(rand.NewSource(symbolSeed(symbol)))

	n := mockHistoryDays
	times := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closeP := make([]float64, n)
	volume := make([]float64, n)

	base := time.Now().UTC().AddDate(0, 0, -n)
	price := 50 + rng.Float64()*150 // base price in [50, 200)
	const volatility = 0.02

	for i := 0; i < n; i++ {
		times[i] = base.AddDate(0, 0, i)
		o := price
		change := rng.NormFloat64() * volatility
		c := o * (1 + change)
		if c <= 0 {
			c = o
		}
		h := math.Max(o, c) * (1 + rng.Float64()*0.01)
		l := math.Min(o, c) * (1 - rng.Float64()*0.01)
		v := 1_000_000 + rng.Float64()*5_000_000

		open[i] = o
		high[i] = h
		low[i] = l
		closeP[i] = c
		volume[i] = v
		price = c
	}

	f, _ := model.NewFrame(symbol, "daily", times, open, high, low, closeP, volume)
	return f
}
