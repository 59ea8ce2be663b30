package trend

import (
	"fmt"
	"math"

	"stock-analysis-backend/internal/indicator"
	"stock-analysis-backend/internal/model"
)

// 趋势状态
const (
	StatusStrongUp     = "强势上升趋势"
	StatusStrongDown   = "弱势下降趋势"
	StatusSideways     = "震荡趋势"
	StatusInsufficient = "均线数据不足"
	StatusAbnormal     = "数据异常"
)

// Analyze 逐项解读各指标，返回中文描述列表
// 各子项独立容错，单项异常不影响其余解读
func Analyze(f *indicator.Frame) []string {
	var signals []string
	if f == nil || f.Len() == 0 {
		return signals
	}
	latest := f.Latest()
	prev := f.Prev()

	run := func(name string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				signals = append(signals, fmt.Sprintf("%s分析异常，已跳过。", name))
			}
		}()
		fn()
	}

	run("均线", func() { signals = append(signals, analyzeMA(f, latest, prev)...) })
	run("MACD", func() { signals = append(signals, analyzeMACD(latest, prev)...) })
	run("布林带", func() { signals = append(signals, analyzeBollinger(f, latest)...) })
	run("RSI", func() { signals = append(signals, analyzeRSI(f, latest)...) })
	run("KDJ", func() { signals = append(signals, analyzeKDJ(latest, prev)...) })
	run("CCI", func() { signals = append(signals, analyzeCCI(latest, prev)...) })
	run("OBV", func() { signals = append(signals, analyzeOBV(f, latest, prev)...) })
	run("威廉指标", func() { signals = append(signals, analyzeWilliams(latest, prev)...) })
	return signals
}

// analyzeMA 均线解读：价格与各均线位置、相邻均线金叉死叉、各均线自身走向
func analyzeMA(f *indicator.Frame, latest, prev model.IndicatorRow) []string {
	var out []string
	if !model.Valid(latest.Close) {
		return append(out, "收盘价数据缺失，无法进行均线分析。")
	}

	positions := []struct {
		period int
		value  float64
	}{
		{5, latest.SMA5}, {10, latest.SMA10}, {20, latest.SMA20}, {60, latest.SMA60},
	}
	for _, p := range positions {
		if !model.Valid(p.value) {
			out = append(out, fmt.Sprintf("%d日均线数据缺失。", p.period))
			continue
		}
		if latest.Close > p.value {
			out = append(out, fmt.Sprintf("股价高于%d日均线。", p.period))
		} else {
			out = append(out, fmt.Sprintf("股价低于%d日均线。", p.period))
		}
	}

	crosses := []struct {
		short, long        int
		curS, curL, pS, pL float64
	}{
		{5, 10, latest.SMA5, latest.SMA10, prev.SMA5, prev.SMA10},
		{10, 20, latest.SMA10, latest.SMA20, prev.SMA10, prev.SMA20},
		{20, 60, latest.SMA20, latest.SMA60, prev.SMA20, prev.SMA60},
	}
	for _, c := range crosses {
		if !model.Valid(c.curS) || !model.Valid(c.curL) || !model.Valid(c.pS) || !model.Valid(c.pL) {
			continue
		}
		switch {
		case c.curS > c.curL && c.pS <= c.pL:
			out = append(out, fmt.Sprintf("%d日均线金叉%d日均线（看涨信号）。", c.short, c.long))
		case c.curS < c.curL && c.pS >= c.pL:
			out = append(out, fmt.Sprintf("%d日均线死叉%d日均线（看跌信号）。", c.short, c.long))
		case c.curS > c.curL:
			out = append(out, fmt.Sprintf("%d日均线在%d日均线上方，多头排列延续。", c.short, c.long))
		default:
			out = append(out, fmt.Sprintf("%d日均线在%d日均线下方，空头排列延续。", c.short, c.long))
		}
	}

	windows := []struct {
		period int
		column []float64
	}{
		{5, f.SMA5}, {10, f.SMA10}, {20, f.SMA20}, {60, f.SMA60},
	}
	for _, w := range windows {
		cur, ref, ok := lastPair(w.column, 20)
		if !ok {
			continue
		}
		switch {
		case cur > ref:
			out = append(out, fmt.Sprintf("%d日均线向上运行。", w.period))
		case cur < ref:
			out = append(out, fmt.Sprintf("%d日均线向下运行。", w.period))
		default:
			out = append(out, fmt.Sprintf("%d日均线走平。", w.period))
		}
	}
	return out
}

// lastPair 取列末尾的有效值与其前一个有效值，前值缺失时最多向前回溯maxBack根
func lastPair(column []float64, maxBack int) (cur, ref float64, ok bool) {
	n := len(column)
	if n < 2 || !model.Valid(column[n-1]) {
		return 0, 0, false
	}
	cur = column[n-1]
	for i := n - 2; i >= 0 && n-2-i < maxBack; i-- {
		if model.Valid(column[i]) {
			return cur, column[i], true
		}
	}
	return 0, 0, false
}

func analyzeMACD(latest, prev model.IndicatorRow) []string {
	var out []string
	if !model.Valid(latest.MACD) || !model.Valid(latest.MACDSignal) {
		return append(out, "MACD指标数据缺失，无法分析。")
	}

	if model.Valid(prev.MACD) && model.Valid(prev.MACDSignal) {
		switch {
		case prev.MACD <= prev.MACDSignal && latest.MACD > latest.MACDSignal:
			out = append(out, "MACD金叉（看涨信号）。")
		case prev.MACD >= prev.MACDSignal && latest.MACD < latest.MACDSignal:
			out = append(out, "MACD死叉（看跌信号）。")
		case latest.MACD > latest.MACDSignal:
			out = append(out, "MACD线在信号线上方，多头延续。")
		default:
			out = append(out, "MACD线在信号线下方，空头延续。")
		}
	}

	switch {
	case latest.MACD > 0:
		out = append(out, "MACD线在零轴上方，市场偏强。")
	case latest.MACD < 0:
		out = append(out, "MACD线在零轴下方，市场偏弱。")
	default:
		out = append(out, "MACD线在零轴附近，市场中性。")
	}

	if model.Valid(latest.MACDHist) && model.Valid(prev.MACDHist) {
		h, p := latest.MACDHist, prev.MACDHist
		switch {
		case h > 0 && h > p:
			out = append(out, "MACD红柱增长，多头力量增强。")
		case h > 0 && h < p:
			out = append(out, "MACD红柱缩短，多头力量减弱。")
		case h > 0:
			out = append(out, "MACD红柱持平，多头力量维持。")
		case h < 0 && h < p:
			out = append(out, "MACD绿柱增长，空头力量增强。")
		case h < 0 && h > p:
			out = append(out, "MACD绿柱缩短，空头力量减弱。")
		case h < 0:
			out = append(out, "MACD绿柱持平，空头力量维持。")
		default:
			out = append(out, "MACD柱线在零轴，多空平衡。")
		}
	}
	return out
}

func analyzeBollinger(f *indicator.Frame, latest model.IndicatorRow) []string {
	var out []string
	if !model.Valid(latest.Close) || !model.Valid(latest.BollUpper) ||
		!model.Valid(latest.BollMiddle) || !model.Valid(latest.BollLower) {
		return append(out, "布林通道数据不足，无法分析。")
	}

	switch {
	case latest.Close > latest.BollUpper:
		out = append(out, "收盘价突破布林上轨，短线超买，警惕回调。")
	case latest.Close < latest.BollLower:
		out = append(out, "收盘价跌破布林下轨，短线超卖，可能反弹。")
	case latest.Close > latest.BollMiddle:
		out = append(out, "收盘价位于布林中轨之上，趋势偏强。")
	case latest.Close < latest.BollMiddle:
		out = append(out, "收盘价位于布林中轨之下，趋势偏弱。")
	}

	// 近5日收盘价穿越中轨次数，2次及以上视为震荡
	if crossCount(f, 5) >= 2 {
		out = append(out, "近期收盘价频繁上下穿布林中轨，市场震荡明显。")
	}
	return out
}

// crossCount 统计最近lookback根K线收盘价穿越布林中轨的次数
func crossCount(f *indicator.Frame, lookback int) int {
	n := f.Len()
	start := n - lookback
	if start < 1 {
		start = 1
	}
	count := 0
	for i := start; i < n; i++ {
		c0, c1 := f.Bars[i-1].Close, f.Bars[i].Close
		m0, m1 := f.BollMiddle[i-1], f.BollMiddle[i]
		if !model.Valid(m0) || !model.Valid(m1) {
			continue
		}
		if (c0 <= m0 && c1 > m1) || (c0 >= m0 && c1 < m1) {
			count++
		}
	}
	return count
}

func analyzeRSI(f *indicator.Frame, latest model.IndicatorRow) []string {
	var out []string
	if !model.Valid(latest.RSI) {
		return out
	}
	switch {
	case latest.RSI > 80:
		out = append(out, fmt.Sprintf("RSI为%.1f，严重超买，回调风险极大。", latest.RSI))
	case latest.RSI > 70:
		out = append(out, fmt.Sprintf("RSI为%.1f，处于超买区间，谨防回调。", latest.RSI))
	case latest.RSI < 20:
		out = append(out, fmt.Sprintf("RSI为%.1f，严重超卖，随时可能反弹。", latest.RSI))
	case latest.RSI < 30:
		out = append(out, fmt.Sprintf("RSI为%.1f，处于超卖区间，存在反弹机会。", latest.RSI))
	case latest.RSI > 50:
		out = append(out, fmt.Sprintf("RSI为%.1f，高于50，多头略占优。", latest.RSI))
	default:
		out = append(out, fmt.Sprintf("RSI为%.1f，不高于50，空头略占优。", latest.RSI))
	}

	if msg, ok := divergence(f, f.RSI, 5, "RSI"); ok {
		out = append(out, msg)
	}
	return out
}

// divergence 近lookback根内价格创新高/新低而指标未同步时给出背离提示
func divergence(f *indicator.Frame, column []float64, lookback int, name string) (string, bool) {
	n := f.Len()
	if n < lookback+1 {
		return "", false
	}
	curClose, curVal := f.Bars[n-1].Close, column[n-1]
	if !model.Valid(curClose) || !model.Valid(curVal) {
		return "", false
	}

	priceHigh, priceLow := true, true
	valHigh, valLow := true, true
	for i := n - 1 - lookback; i < n-1; i++ {
		if !model.Valid(f.Bars[i].Close) || !model.Valid(column[i]) {
			return "", false
		}
		if f.Bars[i].Close >= curClose {
			priceHigh = false
		}
		if f.Bars[i].Close <= curClose {
			priceLow = false
		}
		if column[i] >= curVal {
			valHigh = false
		}
		if column[i] <= curVal {
			valLow = false
		}
	}
	if priceHigh && !valHigh {
		return fmt.Sprintf("价格创近%d日新高但%s未同步走高，出现顶背离迹象。", lookback, name), true
	}
	if priceLow && !valLow {
		return fmt.Sprintf("价格创近%d日新低但%s未同步走低，出现底背离迹象。", lookback, name), true
	}
	return "", false
}

func analyzeKDJ(latest, prev model.IndicatorRow) []string {
	var out []string
	if !model.Valid(latest.KDJK) || !model.Valid(latest.KDJD) {
		return out
	}

	if model.Valid(prev.KDJK) && model.Valid(prev.KDJD) {
		if prev.KDJK <= prev.KDJD && latest.KDJK > latest.KDJD {
			out = append(out, "KDJ金叉（看涨信号）。")
		} else if prev.KDJK >= prev.KDJD && latest.KDJK < latest.KDJD {
			out = append(out, "KDJ死叉（看跌信号）。")
		}
	}

	if model.Valid(latest.KDJJ) {
		if latest.KDJJ > 100 {
			out = append(out, "KDJ的J值超过100，严重超买。")
		} else if latest.KDJJ < 0 {
			out = append(out, "KDJ的J值低于0，严重超卖。")
		}
		if model.Valid(prev.KDJJ) {
			if prev.KDJJ <= 0 && latest.KDJJ > 0 {
				out = append(out, "KDJ的J值上穿零轴，短线情绪修复。")
			} else if prev.KDJJ >= 0 && latest.KDJJ < 0 {
				out = append(out, "KDJ的J值下穿零轴，短线情绪转冷。")
			}
		}
	}
	if latest.KDJK > 80 {
		out = append(out, "KDJ的K值高于80，短线超买。")
	} else if latest.KDJK < 20 {
		out = append(out, "KDJ的K值低于20，短线超卖。")
	}
	return out
}

func analyzeCCI(latest, prev model.IndicatorRow) []string {
	var out []string
	if !model.Valid(latest.CCI) {
		return out
	}
	switch {
	case latest.CCI > 200:
		out = append(out, fmt.Sprintf("CCI为%.1f，超过+200，极端超买。", latest.CCI))
	case latest.CCI > 100:
		out = append(out, fmt.Sprintf("CCI为%.1f，高于+100，多头力量强劲。", latest.CCI))
	case latest.CCI < -200:
		out = append(out, fmt.Sprintf("CCI为%.1f，低于-200，极端超卖。", latest.CCI))
	case latest.CCI < -100:
		out = append(out, fmt.Sprintf("CCI为%.1f，低于-100，空头力量强劲。", latest.CCI))
	case latest.CCI >= 0:
		out = append(out, fmt.Sprintf("CCI为%.1f，运行于零轴上方，多头略占优。", latest.CCI))
	default:
		out = append(out, fmt.Sprintf("CCI为%.1f，运行于零轴下方，空头略占优。", latest.CCI))
	}

	if model.Valid(prev.CCI) {
		switch {
		case prev.CCI <= 100 && latest.CCI > 100:
			out = append(out, "CCI上穿+100，进入强势区。")
		case prev.CCI >= -100 && latest.CCI < -100:
			out = append(out, "CCI下穿-100，进入弱势区。")
		case prev.CCI > 100 && latest.CCI <= 100:
			out = append(out, "CCI回落至+100下方，强势动能减弱。")
		case prev.CCI < -100 && latest.CCI >= -100:
			out = append(out, "CCI回升至-100上方，弱势格局缓解。")
		}
	}
	return out
}

func analyzeOBV(f *indicator.Frame, latest, prev model.IndicatorRow) []string {
	var out []string
	if !f.HasVolume || !model.Valid(latest.OBV) || !model.Valid(prev.OBV) {
		return out
	}
	if latest.OBV > prev.OBV {
		out = append(out, "OBV上升，量能流入。")
	} else if latest.OBV < prev.OBV {
		out = append(out, "OBV下降，量能流出。")
	} else {
		out = append(out, "OBV走平，量能观望。")
	}

	if msg, ok := divergence(f, f.OBV, 5, "OBV"); ok {
		out = append(out, msg)
	}
	return out
}

// analyzeWilliams 威廉指标采用0-100口径，数值越低代表越接近区间高点
func analyzeWilliams(latest, prev model.IndicatorRow) []string {
	var out []string
	wr1OK, wr2OK := model.Valid(latest.WR1), model.Valid(latest.WR2)
	if !wr1OK && !wr2OK {
		return out
	}

	if (wr1OK && latest.WR1 > 80) || (wr2OK && latest.WR2 > 80) {
		out = append(out, "威廉指标进入超卖区域，关注超跌反弹。")
	} else if (wr1OK && latest.WR1 < 20) || (wr2OK && latest.WR2 < 20) {
		out = append(out, "威廉指标进入超买区域，短线警惕回调。")
	}

	if wr1OK && wr2OK {
		if latest.WR1 > 50 && latest.WR2 > 50 {
			out = append(out, "WR1与WR2同处50上方，股价处于弱势区域。")
		} else if latest.WR1 < 50 && latest.WR2 < 50 {
			out = append(out, "WR1与WR2同处50下方，股价处于强势区域。")
		}
	}

	if wr2OK && model.Valid(prev.WR2) {
		if prev.WR2 >= 50 && latest.WR2 < 50 {
			out = append(out, "WR2下穿50，短线由弱转强。")
		} else if prev.WR2 <= 50 && latest.WR2 > 50 {
			out = append(out, "WR2上穿50，短线由强转弱。")
		}
	}

	lines := []struct {
		name     string
		cur, pre float64
	}{
		{"WR1", latest.WR1, prev.WR1},
		{"WR2", latest.WR2, prev.WR2},
	}
	for _, l := range lines {
		if !model.Valid(l.cur) || !model.Valid(l.pre) {
			continue
		}
		if l.pre > 80 && l.cur <= 80 {
			out = append(out, fmt.Sprintf("%s自超卖极值区回落，或现见底回升迹象。", l.name))
		} else if l.pre < 20 && l.cur >= 20 {
			out = append(out, fmt.Sprintf("%s脱离超买极值区，上攻动能减弱。", l.name))
		}
	}
	return out
}

// JudgeTrendStatus 以收盘价与20日、60日均线的相对位置判定趋势，
// 收盘价贴近布林中轨时覆盖为震荡
func JudgeTrendStatus(f *indicator.Frame) (status string) {
	defer func() {
		if r := recover(); r != nil {
			status = StatusAbnormal
		}
	}()

	if f == nil || f.Len() == 0 {
		return StatusAbnormal
	}
	latest := f.Latest()
	if !model.Valid(latest.Close) || latest.Close <= 0 {
		return StatusAbnormal
	}

	status = StatusSideways
	if !model.Valid(latest.SMA20) {
		status = StatusInsufficient
	} else if model.Valid(latest.SMA60) {
		switch {
		case latest.Close > latest.SMA20 && latest.SMA20 > latest.SMA60:
			status = StatusStrongUp
		case latest.Close < latest.SMA20 && latest.SMA20 < latest.SMA60:
			status = StatusStrongDown
		default:
			status = StatusSideways
		}
	}

	// 中轨贴近校验放在最后，可覆盖均线判定结果
	if model.Valid(latest.BollMiddle) && latest.BollMiddle > 0 &&
		math.Abs(latest.Close-latest.BollMiddle)/latest.BollMiddle < 0.005 {
		status = StatusSideways
	}
	return status
}
