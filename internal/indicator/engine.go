package indicator

import (
	"math"

	"stock-analysis-backend/internal/model"
)

// Profile 指标参数集，日线与分钟线使用不同的窗口
type Profile struct {
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	BollWindow int
	BollMult   float64
	WithSMA60  bool
}

// DailyProfile 日线参数
var DailyProfile = Profile{
	MACDFast:   12,
	MACDSlow:   26,
	MACDSignal: 9,
	BollWindow: 20,
	BollMult:   2.0,
	WithSMA60:  true,
}

// MinuteProfile 分钟线参数，窗口更短
var MinuteProfile = Profile{
	MACDFast:   5,
	MACDSlow:   10,
	MACDSignal: 5,
	BollWindow: 10,
	BollMult:   2.0,
	WithSMA60:  false,
}

// Frame 指标矩阵，每列与K线等长，未满足窗口期的位置为 NaN
type Frame struct {
	Bars []model.PriceBar

	SMA5  []float64
	SMA10 []float64
	SMA20 []float64
	SMA60 []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	BollUpper  []float64
	BollMiddle []float64
	BollLower  []float64

	RSI  []float64
	KDJK []float64
	KDJD []float64
	KDJJ []float64
	CCI  []float64
	OBV  []float64
	WR1  []float64
	WR2  []float64
	ATR  []float64

	HasVolume bool
}

// Compute 按日线参数计算全部指标
func Compute(bars []model.PriceBar) *Frame {
	return computeFrame(bars, DailyProfile)
}

// ComputeMinute 按分钟线参数计算全部指标
func ComputeMinute(bars []model.PriceBar) *Frame {
	return computeFrame(bars, MinuteProfile)
}

func computeFrame(bars []model.PriceBar, p Profile) *Frame {
	n := len(bars)
	normalized := make([]model.PriceBar, n)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		// 高低价缺失或非法时退化为收盘价，原始切片不改动
		if math.IsNaN(b.High) || b.High <= 0 {
			b.High = b.Close
		}
		if math.IsNaN(b.Low) || b.Low <= 0 {
			b.Low = b.Close
		}
		normalized[i] = b
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = b.Volume
	}

	f := &Frame{Bars: normalized}
	f.SMA5 = rollingMean(closes, 5)
	f.SMA10 = rollingMean(closes, 10)
	f.SMA20 = rollingMean(closes, 20)
	if p.WithSMA60 {
		f.SMA60 = rollingMean(closes, 60)
	} else {
		f.SMA60 = nanSlice(n)
	}

	f.MACD, f.MACDSignal, f.MACDHist = calculateMACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	f.BollUpper, f.BollMiddle, f.BollLower = calculateBollinger(closes, p.BollWindow, p.BollMult)
	f.RSI = calculateRSI(closes, 14)
	f.KDJK, f.KDJD, f.KDJJ = calculateKDJ(highs, lows, closes, 9)
	f.CCI = calculateCCI(highs, lows, closes, 14)
	f.OBV, f.HasVolume = calculateOBV(closes, volumes)
	f.WR1 = calculateWR(highs, lows, closes, 10)
	f.WR2 = calculateWR(highs, lows, closes, 6)
	f.ATR = calculateATR(highs, lows, closes, 14)
	return f
}

// Len 返回K线根数
func (f *Frame) Len() int {
	return len(f.Bars)
}

// Row 返回第i根K线的指标快照，越界时各列均为 NaN
func (f *Frame) Row(i int) model.IndicatorRow {
	row := model.IndicatorRow{
		Open: math.NaN(), Close: math.NaN(), High: math.NaN(), Low: math.NaN(), Volume: math.NaN(),
		SMA5: math.NaN(), SMA10: math.NaN(), SMA20: math.NaN(), SMA60: math.NaN(),
		MACD: math.NaN(), MACDSignal: math.NaN(), MACDHist: math.NaN(),
		BollUpper: math.NaN(), BollMiddle: math.NaN(), BollLower: math.NaN(),
		RSI: math.NaN(), KDJK: math.NaN(), KDJD: math.NaN(), KDJJ: math.NaN(),
		CCI: math.NaN(), OBV: math.NaN(), WR1: math.NaN(), WR2: math.NaN(), ATR: math.NaN(),
	}
	if i < 0 || i >= len(f.Bars) {
		return row
	}
	b := f.Bars[i]
	row.Date = b.Date
	row.Open, row.Close, row.High, row.Low, row.Volume = b.Open, b.Close, b.High, b.Low, b.Volume
	row.SMA5, row.SMA10, row.SMA20, row.SMA60 = f.SMA5[i], f.SMA10[i], f.SMA20[i], f.SMA60[i]
	row.MACD, row.MACDSignal, row.MACDHist = f.MACD[i], f.MACDSignal[i], f.MACDHist[i]
	row.BollUpper, row.BollMiddle, row.BollLower = f.BollUpper[i], f.BollMiddle[i], f.BollLower[i]
	row.RSI = f.RSI[i]
	row.KDJK, row.KDJD, row.KDJJ = f.KDJK[i], f.KDJD[i], f.KDJJ[i]
	row.CCI = f.CCI[i]
	row.OBV = f.OBV[i]
	row.WR1, row.WR2 = f.WR1[i], f.WR2[i]
	row.ATR = f.ATR[i]
	return row
}

// Latest 最新一根K线的指标快照
func (f *Frame) Latest() model.IndicatorRow {
	return f.Row(len(f.Bars) - 1)
}

// Prev 倒数第二根K线的指标快照
func (f *Frame) Prev() model.IndicatorRow {
	return f.Row(len(f.Bars) - 2)
}

// Closes 收盘价序列
func (f *Frame) Closes() []float64 {
	out := make([]float64, len(f.Bars))
	for i, b := range f.Bars {
		out[i] = b.Close
	}
	return out
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// rollingMean 滚动均值，窗口未满时为 NaN
func rollingMean(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	if period <= 0 || len(data) < period {
		return out
	}
	sum := 0.0
	for i, v := range data {
		sum += v
		if i >= period {
			sum -= data[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// calculateEMA 指数移动平均，前period-1位为 NaN，以首个窗口的均值作为起点
func calculateEMA(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	if period <= 0 || len(data) < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	out[period-1] = sum / float64(period)
	k := 2.0 / float64(period+1)
	for i := period; i < len(data); i++ {
		out[i] = data[i]*k + out[i-1]*(1-k)
	}
	return out
}

// calculateMACD 计算 DIF、DEA 与柱状图（标准MACD柱不乘2）
func calculateMACD(closes []float64, fast, slow, signal int) (dif, dea, hist []float64) {
	n := len(closes)
	dif = nanSlice(n)
	dea = nanSlice(n)
	hist = nanSlice(n)
	if n < slow {
		return
	}

	emaFast := calculateEMA(closes, fast)
	emaSlow := calculateEMA(closes, slow)
	for i := slow - 1; i < n; i++ {
		dif[i] = emaFast[i] - emaSlow[i]
	}

	// DEA 对 DIF 的有效段做 EMA
	valid := dif[slow-1:]
	deaValid := calculateEMA(valid, signal)
	for i, v := range deaValid {
		dea[slow-1+i] = v
	}

	for i := 0; i < n; i++ {
		if model.Valid(dif[i]) && model.Valid(dea[i]) {
			hist[i] = dif[i] - dea[i]
		}
	}
	return
}

// calculateBollinger 布林带，中轨为SMA，上下轨为中轨±mult倍标准差
func calculateBollinger(closes []float64, period int, mult float64) (upper, middle, lower []float64) {
	n := len(closes)
	upper = nanSlice(n)
	lower = nanSlice(n)
	middle = rollingMean(closes, period)
	for i := period - 1; i < n; i++ {
		mean := middle[i]
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(period))
		upper[i] = mean + mult*std
		lower[i] = mean - mult*std
	}
	return
}

// calculateRSI 相对强弱指标，窗口内涨跌幅的简单均值
// 平均跌幅为0时取100（全为平盘时取中性值50）
func calculateRSI(closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n <= period {
		return out
	}
	for i := period; i < n; i++ {
		gain, loss := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - closes[j-1]
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}
		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)
		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = 50
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// calculateKDJ 随机指标，K/D按1/3新值平滑并限制在[0,100]，J不设上下限
func calculateKDJ(highs, lows, closes []float64, period int) (ks, ds, js []float64) {
	n := len(closes)
	ks = nanSlice(n)
	ds = nanSlice(n)
	js = nanSlice(n)
	if n < period {
		return
	}

	prevK, prevD := math.NaN(), math.NaN()
	for i := period - 1; i < n; i++ {
		hh := maxSlice(highs[i-period+1 : i+1])
		ll := minSlice(lows[i-period+1 : i+1])
		rsv := 50.0
		if hh > ll {
			rsv = (closes[i] - ll) / (hh - ll) * 100
		}
		k, d := rsv, rsv
		if model.Valid(prevK) {
			k = prevK*2/3 + rsv/3
			d = prevD*2/3 + k/3
		}
		k = clamp(k, 0, 100)
		d = clamp(d, 0, 100)
		ks[i] = k
		ds[i] = d
		js[i] = 3*k - 2*d
		prevK, prevD = k, d
	}
	return
}

// calculateCCI 顺势指标，典型价偏离均值除以0.015倍平均绝对偏差
func calculateCCI(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n < period {
		return out
	}
	tp := make([]float64, n)
	for i := 0; i < n; i++ {
		tp[i] = (highs[i] + lows[i] + closes[i]) / 3
	}
	for i := period - 1; i < n; i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += tp[j]
		}
		mean := sum / float64(period)
		mad := 0.0
		for j := i - period + 1; j <= i; j++ {
			mad += math.Abs(tp[j] - mean)
		}
		mad /= float64(period)
		if mad == 0 {
			out[i] = 0
			continue
		}
		out[i] = (tp[i] - mean) / (0.015 * mad)
	}
	return out
}

// calculateOBV 能量潮，按涨跌方向累计成交量；无有效成交量时整列为 NaN
func calculateOBV(closes, volumes []float64) ([]float64, bool) {
	n := len(closes)
	hasVolume := false
	for _, v := range volumes {
		if v > 0 {
			hasVolume = true
			break
		}
	}
	if !hasVolume {
		return nanSlice(n), false
	}
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out, true
}

// calculateWR 威廉指标，0-100口径：(区间最高-收盘)/(区间最高-区间最低)*100
// 数值越小越超买，区间无波动时取50
func calculateWR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n < period {
		return out
	}
	for i := period - 1; i < n; i++ {
		hh := maxSlice(highs[i-period+1 : i+1])
		ll := minSlice(lows[i-period+1 : i+1])
		if hh <= ll {
			out[i] = 50
			continue
		}
		out[i] = (hh - closes[i]) / (hh - ll) * 100
	}
	return out
}

// calculateATR 平均真实波幅，真实波幅的滚动均值
func calculateATR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	if n == 0 {
		return nil
	}
	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return rollingMean(tr, period)
}

func maxSlice(data []float64) float64 {
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minSlice(data []float64) float64 {
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
