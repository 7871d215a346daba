package eval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/stockscreener/internal/indicator"
	"github.com/irfndi/stockscreener/internal/model"
)

func singleCandleFrame(t *testing.T, open, high, low, close, volume float64) *model.Frame {
	t.Helper()
	times := []time.Time{time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}
	f, err := model.NewFrame("AAPL", "daily", times,
		[]float64{open}, []float64{high}, []float64{low}, []float64{close}, []float64{volume})
	require.NoError(t, err)
	return f
}

func TestEval_Constant(t *testing.T) {
	n := &model.Node{Type: model.NodeConstant, Value: 42}
	v, err := Eval(n, Frames{}, -1, indicator.NewStandardProvider())
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestEval_AbsLessThan(t *testing.T) {
	f := singleCandleFrame(t, 102, 107, 101, 105, 1000)
	frames := Frames{"": f}
	provider := indicator.NewStandardProvider()

	open := &model.Node{Type: model.NodeAttribute, Field: "open"}
	close := &model.Node{Type: model.NodeAttribute, Field: "close"}
	high := &model.Node{Type: model.NodeAttribute, Field: "high"}
	low := &model.Node{Type: model.NodeAttribute, Field: "low"}

	diff := &model.Node{Type: model.NodeBinary, Operator: "-", Left: open, Right: close}
	absDiff := &model.Node{Type: model.NodeFunction, Name: "Abs", Args: []*model.Node{diff}}

	rangeNode := &model.Node{Type: model.NodeBinary, Operator: "-", Left: high, Right: low}
	threshold := &model.Node{Type: model.NodeBinary, Operator: "*", Left: rangeNode, Right: &model.Node{Type: model.NodeConstant, Value: 0.30}}

	expr := &model.Node{Type: model.NodeBinary, Operator: "<", Left: absDiff, Right: threshold}

	v, err := Eval(expr, frames, -1, provider)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v, "|-3| < 1.8 should be false")
}

func TestEval_MissingTimeframe(t *testing.T) {
	n := &model.Node{Type: model.NodeAttribute, Field: "close", Timeframe: "weekly"}
	_, err := Eval(n, Frames{}, -1, indicator.NewStandardProvider())
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.MissingTimeframe))
}

func TestEval_CrossedAbove(t *testing.T) {
	times := make([]time.Time, 5)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closeSeries := []float64{10, 10, 9, 9, 11}
	other := []float64{10, 10, 10, 10, 10}
	for i := range times {
		times[i] = base.AddDate(0, 0, i)
	}
	f, err := model.NewFrame("AAPL", "daily", times, closeSeries, closeSeries, closeSeries, closeSeries, closeSeries)
	require.NoError(t, err)
	f.SetColumn("static", other)

	frames := Frames{"": f}
	left := &model.Node{Type: model.NodeAttribute, Field: "close"}
	right := &model.Node{Type: model.NodeAttribute, Field: "static"}
	crossNode := &model.Node{Type: model.NodeBinary, Operator: "crossed_above", Left: left, Right: right}

	v, err := Eval(crossNode, frames, -1, indicator.NewStandardProvider())
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestEval_DivisionByZeroYieldsZero(t *testing.T) {
	n := &model.Node{
		Type:     model.NodeBinary,
		Operator: "/",
		Left:     &model.Node{Type: model.NodeConstant, Value: 5},
		Right:    &model.Node{Type: model.NodeConstant, Value: 0},
	}
	v, err := Eval(n, Frames{}, -1, indicator.NewStandardProvider())
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestEval_UnknownNodeType(t *testing.T) {
	n := &model.Node{Type: "bogus"}
	_, err := Eval(n, Frames{}, -1, indicator.NewStandardProvider())
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.EvalError))
}
