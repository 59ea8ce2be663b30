package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-backend/internal/model"
)

// flatBars 平盘K线，收盘价恒定
func flatBars(n int, price float64) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := range bars {
		bars[i] = model.PriceBar{
			Date:   "2025-01-01",
			Open:   price,
			Close:  price,
			High:   price + 1,
			Low:    price - 1,
			Volume: 10000,
		}
	}
	return bars
}

// risingBars 单调上涨K线
func risingBars(n int) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := range bars {
		c := 100 + float64(i)*0.5
		bars[i] = model.PriceBar{
			Date:   "2025-01-01",
			Open:   c - 0.2,
			Close:  c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Volume: 10000,
		}
	}
	return bars
}

// wavyBars 确定性震荡K线
func wavyBars(n int) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := range bars {
		c := 100 + float64((i*7)%13-6)*0.8
		bars[i] = model.PriceBar{
			Date:   "2025-01-01",
			Open:   c,
			Close:  c,
			High:   c + 1.2,
			Low:    c - 1.2,
			Volume: float64(5000 + (i*31)%4000),
		}
	}
	return bars
}

func TestRollingMean(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	out := rollingMean(data, 5)

	require.Len(t, out, 10)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[3]))
	assert.InDelta(t, 3.0, out[4], 1e-9)
	assert.InDelta(t, 8.0, out[9], 1e-9)
}

func TestComputeSMA(t *testing.T) {
	f := Compute(flatBars(70, 10))

	latest := f.Latest()
	assert.InDelta(t, 10.0, latest.SMA5, 1e-9)
	assert.InDelta(t, 10.0, latest.SMA10, 1e-9)
	assert.InDelta(t, 10.0, latest.SMA20, 1e-9)
	assert.InDelta(t, 10.0, latest.SMA60, 1e-9)

	// 窗口未满的位置必须是NaN
	assert.True(t, math.IsNaN(f.SMA5[3]))
	assert.True(t, math.IsNaN(f.SMA60[58]))
	assert.False(t, math.IsNaN(f.SMA60[59]))
}

func TestRSI(t *testing.T) {
	t.Run("连续上涨时为100", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 10 + float64(i)
		}
		out := calculateRSI(closes, 14)
		assert.True(t, math.IsNaN(out[13]))
		for i := 14; i < 30; i++ {
			assert.InDelta(t, 100.0, out[i], 1e-9)
		}
	})

	t.Run("平盘时为中性50", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 10
		}
		out := calculateRSI(closes, 14)
		for i := 14; i < 30; i++ {
			assert.InDelta(t, 50.0, out[i], 1e-9)
		}
	})

	t.Run("震荡行情不超出0-100", func(t *testing.T) {
		f := Compute(wavyBars(80))
		for i := 14; i < 80; i++ {
			require.True(t, model.Valid(f.RSI[i]), "index %d", i)
			assert.GreaterOrEqual(t, f.RSI[i], 0.0)
			assert.LessOrEqual(t, f.RSI[i], 100.0)
		}
	})
}

func TestMACDMonotonicSeriesNoGoldenCross(t *testing.T) {
	f := Compute(risingBars(120))

	// DIF自第26根起有效，DEA自第34根起有效
	assert.True(t, math.IsNaN(f.MACD[24]))
	assert.True(t, model.Valid(f.MACD[25]))
	assert.True(t, math.IsNaN(f.MACDSignal[32]))
	assert.True(t, model.Valid(f.MACDSignal[33]))

	// 单调上涨序列中DIF始终不自下而上穿越DEA
	for i := 34; i < 120; i++ {
		crossed := f.MACD[i] > f.MACDSignal[i] && f.MACD[i-1] <= f.MACDSignal[i-1]
		assert.False(t, crossed, "index %d", i)
	}
}

func TestBollinger(t *testing.T) {
	f := Compute(flatBars(40, 100))
	latest := f.Latest()

	// 平盘时标准差为0，三轨重合
	assert.InDelta(t, 100.0, latest.BollMiddle, 1e-9)
	assert.InDelta(t, 100.0, latest.BollUpper, 1e-9)
	assert.InDelta(t, 100.0, latest.BollLower, 1e-9)

	f = Compute(wavyBars(40))
	latest = f.Latest()
	assert.Greater(t, latest.BollUpper, latest.BollMiddle)
	assert.Less(t, latest.BollLower, latest.BollMiddle)
}

func TestKDJ(t *testing.T) {
	f := Compute(wavyBars(80))
	for i := 8; i < 80; i++ {
		require.True(t, model.Valid(f.KDJK[i]))
		assert.GreaterOrEqual(t, f.KDJK[i], 0.0)
		assert.LessOrEqual(t, f.KDJK[i], 100.0)
		assert.GreaterOrEqual(t, f.KDJD[i], 0.0)
		assert.LessOrEqual(t, f.KDJD[i], 100.0)
		// J不设上下限，但恒等于3K-2D
		assert.InDelta(t, 3*f.KDJK[i]-2*f.KDJD[i], f.KDJJ[i], 1e-9)
	}
}

func TestCCIFlatWindow(t *testing.T) {
	f := Compute(flatBars(30, 50))
	// 平均绝对偏差为0时取0而非NaN
	assert.InDelta(t, 0.0, f.Latest().CCI, 1e-9)
}

func TestOBV(t *testing.T) {
	t.Run("无成交量时整列为NaN", func(t *testing.T) {
		bars := flatBars(20, 10)
		for i := range bars {
			bars[i].Volume = 0
		}
		f := Compute(bars)
		assert.False(t, f.HasVolume)
		for _, v := range f.OBV {
			assert.True(t, math.IsNaN(v))
		}
	})

	t.Run("按涨跌方向累计成交量", func(t *testing.T) {
		closes := []float64{10, 11, 10.5, 10.5}
		volumes := []float64{100, 100, 100, 100}
		out, ok := calculateOBV(closes, volumes)
		require.True(t, ok)
		assert.InDelta(t, 0.0, out[0], 1e-9)
		assert.InDelta(t, 100.0, out[1], 1e-9)
		assert.InDelta(t, 0.0, out[2], 1e-9)
		assert.InDelta(t, 0.0, out[3], 1e-9)
	})
}

func TestWR(t *testing.T) {
	t.Run("收盘价在区间顶部时为0", func(t *testing.T) {
		highs := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
		lows := []float64{9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
		closes := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
		out := calculateWR(highs, lows, closes, 10)
		assert.InDelta(t, 0.0, out[9], 1e-9)
	})

	t.Run("区间无波动时取50", func(t *testing.T) {
		flat := []float64{10, 10, 10, 10, 10, 10}
		out := calculateWR(flat, flat, flat, 6)
		assert.InDelta(t, 50.0, out[5], 1e-9)
	})

	t.Run("始终落在0-100", func(t *testing.T) {
		f := Compute(wavyBars(60))
		for i := 9; i < 60; i++ {
			assert.GreaterOrEqual(t, f.WR1[i], 0.0)
			assert.LessOrEqual(t, f.WR1[i], 100.0)
		}
	})
}

func TestATR(t *testing.T) {
	f := Compute(flatBars(30, 100))
	// 高低价差恒为2且无跳空，ATR应为2
	assert.True(t, math.IsNaN(f.ATR[12]))
	assert.InDelta(t, 2.0, f.Latest().ATR, 1e-9)
}

func TestComputeDefaultsHighLowToClose(t *testing.T) {
	bars := flatBars(30, 100)
	bars[29].High = 0
	bars[29].Low = math.NaN()

	f := Compute(bars)

	// 缺失的高低价退化为收盘价，窗口计算不被0或NaN污染
	assert.Equal(t, 100.0, f.Bars[29].High)
	assert.Equal(t, 100.0, f.Bars[29].Low)
	assert.InDelta(t, 50.0, f.Latest().WR1, 1e-9)
	assert.InDelta(t, 26.0/14, f.Latest().ATR, 1e-9)
	assert.False(t, math.IsNaN(f.Latest().KDJK))

	// 调用方的原始切片保持原样
	assert.Equal(t, 0.0, bars[29].High)
	assert.True(t, math.IsNaN(bars[29].Low))
}

func TestMinuteProfile(t *testing.T) {
	f := ComputeMinute(wavyBars(30))

	// 分钟线不计算60周期均线
	for _, v := range f.SMA60 {
		assert.True(t, math.IsNaN(v))
	}
	// MACD(5,10,5)：DIF自第10根起有效，DEA自第14根起有效
	assert.True(t, math.IsNaN(f.MACD[8]))
	assert.True(t, model.Valid(f.MACD[9]))
	assert.True(t, math.IsNaN(f.MACDSignal[12]))
	assert.True(t, model.Valid(f.MACDSignal[13]))
}

func TestRowOutOfRange(t *testing.T) {
	f := Compute(nil)
	assert.Equal(t, 0, f.Len())

	row := f.Latest()
	assert.True(t, math.IsNaN(row.Close))
	assert.True(t, math.IsNaN(row.SMA5))
	assert.True(t, math.IsNaN(row.RSI))

	f = Compute(flatBars(5, 10))
	row = f.Row(99)
	assert.True(t, math.IsNaN(row.Close))
}
