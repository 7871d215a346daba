package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestFrame(t *testing.T) *Frame {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 5)
	closes := []float64{102, 104, 108, 101, 110}
	opens := []float64{100, 102, 105, 103, 108}
	highs := []float64{105, 106, 110, 108, 112}
	lows := []float64{95, 98, 100, 99, 105}
	vols := []float64{1000, 1200, 1500, 1100, 1300}
	for i := range times {
		times[i] = base.AddDate(0, 0, i)
	}
	f, err := NewFrame("AAPL", "daily", times, opens, highs, lows, closes, vols)
	require.NoError(t, err)
	return f
}

func TestFrame_LatestIndex(t *testing.T) {
	f := buildTestFrame(t)
	v, ok := f.At("close", -1)
	require.True(t, ok)
	assert.Equal(t, 110.0, v)
}

func TestFrame_OffsetIndex(t *testing.T) {
	f := buildTestFrame(t)
	v, ok := f.At("close", -2)
	require.True(t, ok)
	assert.Equal(t, 101.0, v)
}

func TestFrame_OutOfRange(t *testing.T) {
	f := buildTestFrame(t)
	_, ok := f.At("close", -100)
	assert.False(t, ok)
}

func TestFrame_ScalarBroadcast(t *testing.T) {
	f := buildTestFrame(t)
	f.SetScalar("pe_ratio", 18.5)

	v, ok := f.At("pe_ratio", -1)
	require.True(t, ok)
	assert.Equal(t, 18.5, v)

	v2, ok := f.At("pe_ratio", -5)
	require.True(t, ok)
	assert.Equal(t, v, v2)
}

func TestFrame_UnknownColumn(t *testing.T) {
	f := buildTestFrame(t)
	_, ok := f.At("nonexistent", -1)
	assert.False(t, ok)
}

func TestNewFrame_RejectsMismatchedLengths(t *testing.T) {
	times := []time.Time{time.Now()}
	_, err := NewFrame("AAPL", "daily", times, []float64{1, 2}, []float64{1}, []float64{1}, []float64{1}, []float64{1})
	assert.Error(t, err)
}

func TestNewFrame_RejectsNonIncreasingTimestamps(t *testing.T) {
	t0 := time.Now()
	times := []time.Time{t0, t0}
	series := []float64{1, 1}
	_, err := NewFrame("AAPL", "daily", times, series, series, series, series, series)
	assert.Error(t, err)
}

func TestFrame_DateString(t *testing.T) {
	f := buildTestFrame(t)
	assert.Equal(t, "2024-01-05", f.DateString(-1))
}
