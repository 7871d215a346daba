// Package model defines the core data types shared by the indicator,
// resolver, filter, and scan packages: OHLCV frames, the filter tagged
// union, the expression AST, and scan results.
package model

import (
	"fmt"
	"math"
	"time"
)

// Frame is an ordered OHLCV series for one symbol at one timeframe, plus any
// broadcast scalar columns attached during enrichment. Indexing follows the
// spec convention: -1 is the most recent candle, negative indices count back
// from the end; a scalar column is logically returned for any index.
type Frame struct {
	Symbol    string
	Timeframe string
	Times     []time.Time

	series  map[string][]float64
	scalars map[string]float64
}

// NewFrame builds a frame from parallel OHLCV arrays. All slices must have
// equal length; times must be strictly increasing.
func NewFrame(symbol, timeframe string, times []time.Time, open, high, low, close, volume []float64) (*Frame, error) {
	n := len(times)
	for name, s := range map[string][]float64{"open": open, "high": high, "low": low, "close": close, "volume": volume} {
		if len(s) != n {
			return nil, fmt.Errorf("model: inconsistent %s column length %d, want %d", name, len(s), n)
		}
	}
	for i := 1; i < n; i++ {
		if !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("model: timestamps not strictly increasing at index %d", i)
		}
	}

	f := &Frame{
		Symbol:    symbol,
		Timeframe: timeframe,
		Times:     times,
		series: map[string][]float64{
			"open":   open,
			"high":   high,
			"low":    low,
			"close":  close,
			"volume": volume,
		},
		scalars: make(map[string]float64),
	}
	return f, nil
}

// Len returns the number of candles in the frame.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Times)
}

// Open, High, Low, Close, Volume return the underlying aligned series.
func (f *Frame) Open() []float64   { return f.series["open"] }
func (f *Frame) High() []float64   { return f.series["high"] }
func (f *Frame) Low() []float64    { return f.series["low"] }
func (f *Frame) Close() []float64  { return f.series["close"] }
func (f *Frame) Volume() []float64 { return f.series["volume"] }

// resolveIndex converts a spec-style negative "from the end" index into a
// slice position: -1 is the last element (n-1), -2 the one before it, and
// so on. idx is expected to be <= 0.
func (f *Frame) resolveIndex(idx int) int {
	n := f.Len()
	if idx <= 0 {
		return n + idx
	}
	return idx
}

// At returns the value of a named column at idx (negative, relative to the
// end; -1 is latest). Scalar broadcast columns (set via SetScalar) win over
// series columns of the same name, matching the enrichment monkey-patch
// semantics described in the spec's design notes. ok is false when the
// column is unknown or the index is out of range.
func (f *Frame) At(column string, idx int) (float64, bool) {
	if f == nil {
		return 0, false
	}
	if v, ok := f.scalars[column]; ok {
		return v, true
	}
	series, ok := f.series[column]
	if !ok {
		return 0, false
	}
	pos := f.resolveIndex(idx)
	if pos < 0 || pos >= len(series) {
		return 0, false
	}
	v := series[pos]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// PositionFor exposes resolveIndex for callers (e.g. the filter evaluator)
// that need an absolute slice position to build sub-windows.
func (f *Frame) PositionFor(idx int) int {
	return f.resolveIndex(idx)
}

// ValueInSeries indexes an arbitrary series already aligned to this frame
// (typically a freshly computed indicator output) using the same
// negative-offset convention as At, without requiring the series to be
// attached via SetColumn first.
func (f *Frame) ValueInSeries(series []float64, idx int) (float64, bool) {
	if f == nil {
		return 0, false
	}
	pos := f.resolveIndex(idx)
	if pos < 0 || pos >= len(series) {
		return 0, false
	}
	v := series[pos]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// SetColumn attaches or replaces a computed series (e.g. an indicator
// output) on the frame. The series must be aligned to Times.
func (f *Frame) SetColumn(name string, values []float64) {
	f.series[name] = values
}

// Column returns a raw series column (including computed ones), if present.
func (f *Frame) Column(name string) ([]float64, bool) {
	s, ok := f.series[name]
	return s, ok
}

// SetScalar broadcasts a constant value across every index under name,
// modeling enrichment's column materialization by assignment.
func (f *Frame) SetScalar(name string, value float64) {
	if f.scalars == nil {
		f.scalars = make(map[string]float64)
	}
	f.scalars[name] = value
}

// Scalar returns a broadcast scalar column, if set.
func (f *Frame) Scalar(name string) (float64, bool) {
	v, ok := f.scalars[name]
	return v, ok
}

// Slice returns the sub-frame [start:end) using ordinary (non-negative)
// slice positions, sharing no scalar state with the parent.
func (f *Frame) Slice(start, end int) *Frame {
	if start < 0 {
		start = 0
	}
	if end > f.Len() {
		end = f.Len()
	}
	out := &Frame{
		Symbol:    f.Symbol,
		Timeframe: f.Timeframe,
		Times:     f.Times[start:end],
		series:    make(map[string][]float64, len(f.series)),
		scalars:   make(map[string]float64, len(f.scalars)),
	}
	for name, s := range f.series {
		if end <= len(s) {
			out.series[name] = s[start:end]
		} else {
			out.series[name] = s
		}
	}
	for k, v := range f.scalars {
		out.scalars[k] = v
	}
	return out
}

// DateString formats the timestamp at idx per the spec's wire convention:
// a plain date for daily/weekly/monthly frames, a full timestamp otherwise.
func (f *Frame) DateString(idx int) string {
	pos := f.resolveIndex(idx)
	if pos < 0 || pos >= len(f.Times) {
		return ""
	}
	t := f.Times[pos]
	switch f.Timeframe {
	case "daily", "weekly", "monthly":
		return t.Format("2006-01-02")
	default:
		return t.Format("2006-01-02 15:04:05")
	}
}
