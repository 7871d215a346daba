package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/stockscreener/internal/indicator"
	"github.com/irfndi/stockscreener/internal/model"
)

func buildFrame(t *testing.T, n int) *model.Frame {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closeP := make([]float64, n)
	volume := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = base.AddDate(0, 0, i)
		price := 100 + float64(i)
		open[i] = price
		high[i] = price + 2
		low[i] = price - 2
		closeP[i] = price + 1
		volume[i] = 1000
	}
	f, err := model.NewFrame("AAPL", "daily", times, open, high, low, closeP, volume)
	require.NoError(t, err)
	return f
}

func TestDecodeField_CompoundOverridesPeriod(t *testing.T) {
	base, period, overridden := DecodeField("rsi_9")
	assert.Equal(t, "RSI", base)
	assert.Equal(t, 9, period)
	assert.True(t, overridden)
}

func TestDecodeField_NonNumericSuffixNotOverridden(t *testing.T) {
	base, _, overridden := DecodeField("bbands_upper")
	assert.Equal(t, "BBANDS_UPPER", base)
	assert.False(t, overridden)
}

func TestResolve_SMAUsesCompoundPeriod(t *testing.T) {
	f := buildFrame(t, 60)
	provider := indicator.NewStandardProvider()
	v, ok, err := Resolve(provider, f, "sma_10", 0, -1, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, v, 0.0)
}

func TestResolve_MACDBranches(t *testing.T) {
	f := buildFrame(t, 60)
	provider := indicator.NewStandardProvider()
	macd, ok, err := Resolve(provider, f, "MACD", 0, -1, nil)
	require.NoError(t, err)
	require.True(t, ok)
	signal, ok, err := Resolve(provider, f, "MACD_SIGNAL", 0, -1, nil)
	require.NoError(t, err)
	require.True(t, ok)
	hist, ok, err := Resolve(provider, f, "MACD_HIST", 0, -1, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, macd-signal, hist, 1e-6)
}

func TestResolve_BollingerBranches(t *testing.T) {
	f := buildFrame(t, 60)
	provider := indicator.NewStandardProvider()
	upper, ok, err := Resolve(provider, f, "BBANDS_UPPER", 20, -1, nil)
	require.NoError(t, err)
	require.True(t, ok)
	lower, ok, err := Resolve(provider, f, "BBANDS_LOWER", 20, -1, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, upper, lower)
}

func TestResolve_UnknownFieldIsMissingField(t *testing.T) {
	f := buildFrame(t, 60)
	provider := indicator.NewStandardProvider()
	_, _, err := Resolve(provider, f, "not_a_real_indicator", 14, -1, nil)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.MissingField))
}

func TestResolve_IchimokuChikouBranch(t *testing.T) {
	f := buildFrame(t, 90)
	provider := indicator.NewStandardProvider()
	_, ok, err := Resolve(provider, f, "ICHIMOKU_CHIKOU", 0, -30, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}
