package alert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-backend/internal/indicator"
	"stock-analysis-backend/internal/model"
)

func flatFrame(n int) *indicator.Frame {
	bars := make([]model.PriceBar, n)
	for i := range bars {
		bars[i] = model.PriceBar{
			Date:   "2025-01-01",
			Open:   100,
			Close:  100,
			High:   101,
			Low:    99,
			Volume: 10000,
		}
	}
	return indicator.Compute(bars)
}

func TestDetectEmptyFrame(t *testing.T) {
	b := Detect(indicator.Compute(nil), nil)
	assert.Equal(t, "低", b.OverallRisk)
	assert.Empty(t, b.All())
	assert.Equal(t, model.AlertCount{}, b.AlertCount)
}

func TestDetectOverboughtCascade(t *testing.T) {
	f := flatFrame(80)
	n := f.Len()
	f.RSI[n-1] = 85
	f.KDJJ[n-1] = 105
	f.CCI[n-1] = 250
	f.WR1[n-1] = 10
	f.WR2[n-1] = 15

	b := Detect(f, nil)
	// RSI、J值、CCI、WR1、WR2各触发一条高级预警
	assert.Equal(t, 5, b.CountByLevel(model.AlertHigh))
	assert.Equal(t, 5, b.AlertCount.High)
	assert.Equal(t, b.CountByLevel(model.AlertMedium), b.AlertCount.Medium)
	assert.Equal(t, b.CountByLevel(model.AlertLow), b.AlertCount.Low)
	assert.Equal(t, "高", b.OverallRisk)

	messages := make([]string, 0, len(b.Thresholds))
	values := make(map[string]float64, len(b.Thresholds))
	for _, a := range b.Thresholds {
		messages = append(messages, a.Message)
		values[a.Indicator] = a.Value
	}
	assert.Contains(t, messages, "RSI达到85.0，极度超买。")
	assert.Contains(t, messages, "KDJ的J值达到105.0，严重超买。")
	assert.Contains(t, messages, "CCI达到250.0，极端超买。")
	assert.Equal(t, 85.0, values["RSI"])
	assert.Equal(t, 105.0, values["KDJ"])
	assert.Equal(t, 250.0, values["CCI"])
	assert.Equal(t, 10.0, values["WR1"])
	assert.Equal(t, 15.0, values["WR2"])
}

func TestDetectTopDivergence(t *testing.T) {
	f := flatFrame(80)
	n := f.Len()

	// 价格创10日新高，MACD走低，RSI与OBV同步走高
	for i := 0; i < 10; i++ {
		idx := n - 10 + i
		f.Bars[idx].Close = 100 + float64(i)*0.5
		f.MACD[idx] = 1.0 - float64(i)*0.1
		f.RSI[idx] = 50 + float64(i)
		f.OBV[idx] = float64(1000 + i*100)
	}

	b := Detect(f, nil)
	require.Len(t, b.Divergences, 1)
	assert.Equal(t, model.AlertHigh, b.Divergences[0].Level)
	assert.Contains(t, b.Divergences[0].Message, "MACD")
	assert.Contains(t, b.Divergences[0].Message, "顶背离")
	assert.Equal(t, "MACD", b.Divergences[0].Indicator)
	assert.InDelta(t, 0.1, b.Divergences[0].Value, 1e-9)
}

func TestDetectPreCross(t *testing.T) {
	f := flatFrame(80)
	n := f.Len()
	// 5日线自上方逼近10日线
	f.SMA5[n-1], f.SMA10[n-1] = 100.5, 101
	f.SMA10[n-2] = 100.2

	b := Detect(f, nil)
	require.Len(t, b.PreCrosses, 1)
	assert.Contains(t, b.PreCrosses[0].Message, "死叉")
	assert.Equal(t, model.AlertMedium, b.PreCrosses[0].Level)
}

func TestDetectBreakouts(t *testing.T) {
	f := flatFrame(80)
	n := f.Len()
	f.Bars[n-1].Close = 120
	f.BollUpper[n-1], f.BollLower[n-1] = 110, 90
	f.MACD[n-2], f.MACD[n-1] = -0.1, 0.2

	b := Detect(f, nil)
	require.Len(t, b.Breakouts, 2)
	assert.Contains(t, b.Breakouts[0].Message, "突破布林上轨")
	assert.Contains(t, b.Breakouts[1].Message, "上穿零轴")
	assert.Equal(t, "BOLL", b.Breakouts[0].Indicator)
	assert.Equal(t, 120.0, b.Breakouts[0].Value)
	assert.Equal(t, "MACD", b.Breakouts[1].Indicator)
	assert.InDelta(t, 0.2, b.Breakouts[1].Value, 1e-9)
}

func TestDetectSignalQuality(t *testing.T) {
	bundle := &model.SignalBundle{
		Confidence: 20,
		Judges: []model.JudgeDetail{
			{Name: "RSI", Status: model.JudgeBuy},
			{Name: "KDJ", Status: model.JudgeBuy},
			{Name: "MACD", Status: model.JudgeSell},
			{Name: "MA", Status: model.JudgeSell},
		},
	}

	b := Detect(flatFrame(80), bundle)
	require.Len(t, b.SignalQuality, 2)
	assert.Contains(t, b.SignalQuality[0].Message, "多空信号冲突")
	assert.Contains(t, b.SignalQuality[1].Message, "置信度仅20%")
	assert.Equal(t, "SIGNAL", b.SignalQuality[0].Indicator)
	assert.True(t, math.IsNaN(b.SignalQuality[0].Value))
	assert.Equal(t, 20.0, b.SignalQuality[1].Value)
}

func TestOverallRisk(t *testing.T) {
	mk := func(levels ...string) *model.AlertBundle {
		b := &model.AlertBundle{}
		for _, lv := range levels {
			b.Thresholds = append(b.Thresholds, model.Alert{Category: "threshold", Level: lv})
		}
		return b
	}

	cases := []struct {
		name   string
		bundle *model.AlertBundle
		want   string
	}{
		{"无预警", mk(), "低"},
		{"单条低级", mk(model.AlertLow), "低"},
		{"单条中级", mk(model.AlertMedium), "中"},
		{"单条高级", mk(model.AlertHigh), "高"},
		{"三条中级", mk(model.AlertMedium, model.AlertMedium, model.AlertMedium), "高"},
		{"两条高级", mk(model.AlertHigh, model.AlertHigh), "高"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, overallRisk(tc.bundle))
		})
	}
}
