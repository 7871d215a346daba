package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter_SimplePrice(t *testing.T) {
	raw := []byte(`{"type": "price", "field": "close", "operator": "gt", "value": 150}`)
	f, err := ParseFilter(raw)
	require.NoError(t, err)

	assert.Equal(t, FilterPrice, f.Type)
	assert.Equal(t, "close", f.Field)
	assert.Equal(t, OpGT, f.Operator)
	require.NotNil(t, f.Value)
	assert.True(t, f.Value.IsScalar)
	assert.Equal(t, 150.0, f.Value.Scalar)
}

func TestParseFilter_NestedMeasureValue(t *testing.T) {
	raw := []byte(`{
		"type": "indicator",
		"field": "sma",
		"time_period": 20,
		"operator": "gt",
		"value": {"type": "indicator", "field": "ema", "time_period": 50}
	}`)
	f, err := ParseFilter(raw)
	require.NoError(t, err)

	require.NotNil(t, f.Value)
	require.NotNil(t, f.Value.Measure)
	assert.Equal(t, MeasureIndicator, f.Value.Measure.Type)
	assert.Equal(t, "ema", f.Value.Measure.Field)
	assert.Equal(t, 50, f.Value.Measure.TimePeriod)
}

func TestParseFilter_StringOffset(t *testing.T) {
	raw := []byte(`{"type": "price", "field": "close", "operator": "gt", "value": 100, "offset": "2d_ago"}`)
	f, err := ParseFilter(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Offset)
}

func TestParseFilter_Between(t *testing.T) {
	raw := []byte(`{"type": "indicator", "field": "rsi", "time_period": 14, "operator": "between", "value": [30, 70]}`)
	f, err := ParseFilter(raw)
	require.NoError(t, err)
	require.NotNil(t, f.Value)
	assert.True(t, f.Value.IsPair)
	assert.Equal(t, [2]float64{30, 70}, f.Value.Pair)
}

func TestParseFilter_ArithmeticAdjustment(t *testing.T) {
	raw := []byte(`{
		"type": "price",
		"field": "close",
		"operator": "gt",
		"value": {"type": "attribute", "field": "open"},
		"arithmeticOperator": "+",
		"arithmeticValue": 5
	}`)
	f, err := ParseFilter(raw)
	require.NoError(t, err)
	assert.Equal(t, Operator("+"), f.ArithmeticOperator)
	require.NotNil(t, f.ArithmeticValue)
	assert.Equal(t, 5.0, f.ArithmeticValue.Scalar)
}

func TestParseFilter_MissingType(t *testing.T) {
	_, err := ParseFilter([]byte(`{"field": "close"}`))
	assert.Error(t, err)
}

func TestParseFilter_Expression(t *testing.T) {
	raw := []byte(`{
		"type": "expression",
		"expression": {
			"type": "binary",
			"operator": ">",
			"left": {"type": "attribute", "field": "close"},
			"right": {"type": "constant", "value": 100}
		}
	}`)
	f, err := ParseFilter(raw)
	require.NoError(t, err)
	require.NotNil(t, f.Expression)
	assert.Equal(t, NodeBinary, f.Expression.Type)
}

func TestParseFilter_ExpressionMissingBody(t *testing.T) {
	_, err := ParseFilter([]byte(`{"type": "expression"}`))
	assert.Error(t, err)
}
