package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid(1.5))
	assert.True(t, Valid(0))
	assert.False(t, Valid(math.NaN()))
}

func TestIndicatorRowMarshalNaN(t *testing.T) {
	row := IndicatorRow{
		Date:  "2025-01-02",
		Close: 10.5,
		SMA5:  10.2,
		RSI:   math.NaN(),
		SMA60: math.NaN(),
	}

	data, err := json.Marshal(&row)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "2025-01-02", out["date"])
	assert.Equal(t, 10.5, out["close"])
	assert.Equal(t, 10.2, out["sma5"])
	// NaN序列化为null而非报错
	assert.Nil(t, out["rsi"])
	assert.Nil(t, out["sma60"])
}

func TestAlertMarshalNaN(t *testing.T) {
	a := Alert{
		Category:  "quality",
		Level:     AlertMedium,
		Message:   "多空信号冲突",
		Indicator: "SIGNAL",
		Value:     math.NaN(),
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "SIGNAL", out["indicator"])
	assert.Nil(t, out["value"])

	a.Value = 20
	data, err = json.Marshal(a)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, float64(20), out["value"])
}

func TestJudgeDetailMarshalNaN(t *testing.T) {
	d := JudgeDetail{Name: "RSI", Value: math.NaN(), Status: JudgeNeutral, Weight: 25}

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "RSI", out["name"])
	assert.Nil(t, out["value"])
	assert.Equal(t, float64(25), out["weight"])
}
