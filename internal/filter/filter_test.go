package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/stockscreener/internal/eval"
	"github.com/irfndi/stockscreener/internal/indicator"
	"github.com/irfndi/stockscreener/internal/model"
)

func linspaceFrame(t *testing.T, n int, startClose float64) *model.Frame {
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
		price := startClose + float64(i)
		open[i] = price
		high[i] = price + 1
		low[i] = price - 1
		closeP[i] = price
		volume[i] = 1000
	}
	f, err := model.NewFrame("TEST", "daily", times, open, high, low, closeP, volume)
	require.NoError(t, err)
	return f
}

func newEvaluator() *Evaluator {
	return NewEvaluator(indicator.NewStandardProvider())
}

func TestEvaluate_SimpleGT(t *testing.T) {
	f := linspaceFrame(t, 101, 100) // closes 100..200
	frames := eval.Frames{"": f}

	filter, err := model.ParseFilter([]byte(`{"type": "price", "field": "close", "operator": "gt", "value": 150}`))
	require.NoError(t, err)

	res := newEvaluator().Evaluate(filter, frames, nil, nil)
	assert.True(t, res.Passed)

	filterOld, err := model.ParseFilter([]byte(`{"type": "price", "field": "close", "operator": "gt", "value": 150, "offset": 95}`))
	require.NoError(t, err)
	res2 := newEvaluator().Evaluate(filterOld, frames, nil, nil)
	assert.False(t, res2.Passed)
}

func TestEvaluate_HammerDetection(t *testing.T) {
	times := []time.Time{time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}
	f, err := model.NewFrame("TEST", "daily", times,
		[]float64{100}, []float64{101.2}, []float64{95}, []float64{101}, []float64{1000})
	require.NoError(t, err)
	frames := eval.Frames{"": f}

	filter, err := model.ParseFilter([]byte(`{"type": "pattern", "pattern": "hammer"}`))
	require.NoError(t, err)
	res := newEvaluator().Evaluate(filter, frames, nil, nil)
	assert.True(t, res.Passed)
	assert.Equal(t, true, res.Details["match"])
}

func TestEvaluate_CrossoverStaticDataGuard(t *testing.T) {
	n := 20
	times := make([]time.Time, n)
	closeSeries := make([]float64, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		times[i] = base.AddDate(0, 0, i)
		closeSeries[i] = 50 // flat
	}
	f, err := model.NewFrame("TEST", "daily", times, closeSeries, closeSeries, closeSeries, closeSeries, closeSeries)
	require.NoError(t, err)
	frames := eval.Frames{"": f}

	filter, err := model.ParseFilter([]byte(`{"type": "indicator", "field": "rsi", "time_period": 14, "operator": "crossed_above", "value": 50}`))
	require.NoError(t, err)

	res := newEvaluator().Evaluate(filter, frames, nil, nil)
	assert.Equal(t, "Static data detected", res.Details["note"])
}

func TestEvaluate_FinancialAlias(t *testing.T) {
	filter, err := model.ParseFilter([]byte(`{"type": "financial", "field": "pe_ratio", "operator": "lt", "value": 30}`))
	require.NoError(t, err)

	fundamentals := map[string]float64{"peBasicExclExtraTTM": 18}
	res := newEvaluator().Evaluate(filter, eval.Frames{}, fundamentals, nil)
	assert.True(t, res.Passed)
}

func TestEvaluate_Between(t *testing.T) {
	f := linspaceFrame(t, 20, 40) // RSI warm-up region; use price instead
	frames := eval.Frames{"": f}

	filter, err := model.ParseFilter([]byte(`{"type": "price", "field": "close", "operator": "between", "value": [45, 55], "offset": 9}`))
	require.NoError(t, err)
	res := newEvaluator().Evaluate(filter, frames, nil, nil)
	assert.True(t, res.Passed)
}

func TestEvaluate_VolumeGtAvg(t *testing.T) {
	n := 30
	times := make([]time.Time, n)
	series := make([]float64, n)
	volume := make([]float64, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		times[i] = base.AddDate(0, 0, i)
		series[i] = 100
		volume[i] = 1000
	}
	volume[n-1] = 5000 // volume spike on the latest bar
	f, err := model.NewFrame("TEST", "daily", times, series, series, series, series, volume)
	require.NoError(t, err)
	frames := eval.Frames{"": f}

	filter, err := model.ParseFilter([]byte(`{"type": "volume", "avg_period": 20, "multiplier": 2}`))
	require.NoError(t, err)
	res := newEvaluator().Evaluate(filter, frames, nil, nil)
	assert.True(t, res.Passed)
}

func TestEvaluate_ExpressionDelegatesToEval(t *testing.T) {
	f := linspaceFrame(t, 10, 100)
	frames := eval.Frames{"": f}
	filter, err := model.ParseFilter([]byte(`{
		"type": "expression",
		"expression": {
			"type": "binary",
			"operator": ">",
			"left": {"type": "attribute", "field": "close"},
			"right": {"type": "constant", "value": 1}
		}
	}`))
	require.NoError(t, err)
	res := newEvaluator().Evaluate(filter, frames, nil, nil)
	assert.True(t, res.Passed)
}
