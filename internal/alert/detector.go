package alert

import (
	"fmt"
	"math"

	"stock-analysis-backend/internal/indicator"
	"stock-analysis-backend/internal/model"
)

const divergenceLookback = 10

// Detect 扫描背离、预交叉、阈值、突破、排列与信号质量六类风险
func Detect(f *indicator.Frame, bundle *model.SignalBundle) *model.AlertBundle {
	b := &model.AlertBundle{}
	if f == nil || f.Len() == 0 {
		b.OverallRisk = "低"
		return b
	}
	latest := f.Latest()
	prev := f.Prev()

	b.Divergences = detectDivergences(f)
	b.PreCrosses = detectPreCrosses(latest, prev)
	b.Thresholds = detectThresholds(latest)
	b.Breakouts = detectBreakouts(latest, prev)
	b.Alignments = detectAlignments(latest)
	b.SignalQuality = detectSignalQuality(bundle)
	b.AlertCount = model.AlertCount{
		High:   b.CountByLevel(model.AlertHigh),
		Medium: b.CountByLevel(model.AlertMedium),
		Low:    b.CountByLevel(model.AlertLow),
	}
	b.OverallRisk = overallRisk(b)
	return b
}

// detectDivergences 价格与MACD/RSI/OBV的10日背离
func detectDivergences(f *indicator.Frame) []model.Alert {
	var out []model.Alert
	closes := f.Closes()
	n := f.Len()

	columns := []struct {
		name   string
		column []float64
	}{
		{"MACD", f.MACD}, {"RSI", f.RSI}, {"OBV", f.OBV},
	}
	for _, c := range columns {
		top, bottom := divergence(closes, c.column, divergenceLookback)
		if top {
			out = append(out, model.Alert{
				Category:  "divergence",
				Level:     model.AlertHigh,
				Message:   fmt.Sprintf("价格创近期新高但%s未同步走高，出现顶背离。", c.name),
				Indicator: c.name,
				Value:     c.column[n-1],
			})
		}
		if bottom {
			out = append(out, model.Alert{
				Category:  "divergence",
				Level:     model.AlertMedium,
				Message:   fmt.Sprintf("价格创近期新低但%s未同步走低，出现底背离。", c.name),
				Indicator: c.name,
				Value:     c.column[n-1],
			})
		}
	}
	return out
}

// divergence 末值相对前9根的新高/新低是否与指标脱钩
func divergence(closes, column []float64, lookback int) (top, bottom bool) {
	n := len(closes)
	if n < lookback || len(column) != n {
		return false, false
	}
	start := n - lookback
	for i := start; i < n; i++ {
		if !model.Valid(column[i]) {
			return false, false
		}
	}

	lastClose := closes[n-1]
	lastVal := column[n-1]
	maxClose, minClose := closes[start], closes[start]
	maxVal, minVal := column[start], column[start]
	for i := start; i < n-1; i++ {
		if closes[i] > maxClose {
			maxClose = closes[i]
		}
		if closes[i] < minClose {
			minClose = closes[i]
		}
		if column[i] > maxVal {
			maxVal = column[i]
		}
		if column[i] < minVal {
			minVal = column[i]
		}
	}

	top = lastClose > maxClose && lastVal <= maxVal
	bottom = lastClose < minClose && lastVal >= minVal
	return top, bottom
}

// detectPreCrosses 5日均线与10日均线的预交叉
func detectPreCrosses(latest, prev model.IndicatorRow) []model.Alert {
	var out []model.Alert
	if !model.Valid(latest.SMA5) || !model.Valid(latest.SMA10) || !model.Valid(prev.SMA10) {
		return out
	}
	if latest.SMA5 > prev.SMA10 && latest.SMA5 < latest.SMA10 {
		out = append(out, model.Alert{
			Category:  "pre_cross",
			Level:     model.AlertMedium,
			Message:   "5日均线逼近10日均线，短期内可能形成死叉。",
			Indicator: "SMA5",
			Value:     latest.SMA5,
		})
	} else if latest.SMA5 < prev.SMA10 && latest.SMA5 > latest.SMA10 {
		out = append(out, model.Alert{
			Category:  "pre_cross",
			Level:     model.AlertMedium,
			Message:   "5日均线逼近10日均线，短期内可能形成金叉。",
			Indicator: "SMA5",
			Value:     latest.SMA5,
		})
	}
	return out
}

// detectThresholds 超买超卖阈值预警
func detectThresholds(latest model.IndicatorRow) []model.Alert {
	var out []model.Alert
	add := func(level, indicator string, value float64, msg string) {
		out = append(out, model.Alert{
			Category:  "threshold",
			Level:     level,
			Message:   msg,
			Indicator: indicator,
			Value:     value,
		})
	}

	if model.Valid(latest.RSI) {
		switch {
		case latest.RSI >= 80:
			add(model.AlertHigh, "RSI", latest.RSI, fmt.Sprintf("RSI达到%.1f，极度超买。", latest.RSI))
		case latest.RSI >= 70:
			add(model.AlertMedium, "RSI", latest.RSI, fmt.Sprintf("RSI达到%.1f，进入超买区。", latest.RSI))
		case latest.RSI <= 20:
			add(model.AlertMedium, "RSI", latest.RSI, fmt.Sprintf("RSI跌至%.1f，极度超卖。", latest.RSI))
		case latest.RSI <= 30:
			add(model.AlertLow, "RSI", latest.RSI, fmt.Sprintf("RSI跌至%.1f，进入超卖区。", latest.RSI))
		}
	}

	if model.Valid(latest.KDJJ) {
		if latest.KDJJ >= 100 {
			add(model.AlertHigh, "KDJ", latest.KDJJ, fmt.Sprintf("KDJ的J值达到%.1f，严重超买。", latest.KDJJ))
		} else if latest.KDJJ <= 0 {
			add(model.AlertMedium, "KDJ", latest.KDJJ, fmt.Sprintf("KDJ的J值跌至%.1f，严重超卖。", latest.KDJJ))
		}
	}

	if model.Valid(latest.CCI) {
		switch {
		case latest.CCI >= 200:
			add(model.AlertHigh, "CCI", latest.CCI, fmt.Sprintf("CCI达到%.1f，极端超买。", latest.CCI))
		case latest.CCI >= 100:
			add(model.AlertMedium, "CCI", latest.CCI, fmt.Sprintf("CCI达到%.1f，超买。", latest.CCI))
		case latest.CCI <= -200:
			add(model.AlertMedium, "CCI", latest.CCI, fmt.Sprintf("CCI跌至%.1f，极端超卖。", latest.CCI))
		}
	}

	if model.Valid(latest.WR1) {
		if latest.WR1 <= 20 {
			add(model.AlertHigh, "WR1", latest.WR1, fmt.Sprintf("威廉指标WR1为%.1f，严重超买。", latest.WR1))
		} else if latest.WR1 >= 80 {
			add(model.AlertMedium, "WR1", latest.WR1, fmt.Sprintf("威廉指标WR1为%.1f，严重超卖。", latest.WR1))
		}
	}
	if model.Valid(latest.WR2) {
		if latest.WR2 <= 20 {
			add(model.AlertHigh, "WR2", latest.WR2, fmt.Sprintf("威廉指标WR2为%.1f，严重超买。", latest.WR2))
		} else if latest.WR2 >= 80 {
			add(model.AlertMedium, "WR2", latest.WR2, fmt.Sprintf("威廉指标WR2为%.1f，严重超卖。", latest.WR2))
		}
	}
	return out
}

// detectBreakouts 布林突破与MACD零轴穿越
func detectBreakouts(latest, prev model.IndicatorRow) []model.Alert {
	var out []model.Alert
	if model.Valid(latest.Close) && model.Valid(latest.BollUpper) && model.Valid(latest.BollLower) {
		if latest.Close > latest.BollUpper {
			out = append(out, model.Alert{
				Category:  "breakout",
				Level:     model.AlertMedium,
				Message:   "收盘价突破布林上轨，波动放大。",
				Indicator: "BOLL",
				Value:     latest.Close,
			})
		} else if latest.Close < latest.BollLower {
			out = append(out, model.Alert{
				Category:  "breakout",
				Level:     model.AlertMedium,
				Message:   "收盘价跌破布林下轨，波动放大。",
				Indicator: "BOLL",
				Value:     latest.Close,
			})
		}
	}
	if model.Valid(latest.MACD) && model.Valid(prev.MACD) {
		if prev.MACD <= 0 && latest.MACD > 0 {
			out = append(out, model.Alert{
				Category:  "breakout",
				Level:     model.AlertLow,
				Message:   "MACD上穿零轴，转入多头区域。",
				Indicator: "MACD",
				Value:     latest.MACD,
			})
		} else if prev.MACD >= 0 && latest.MACD < 0 {
			out = append(out, model.Alert{
				Category:  "breakout",
				Level:     model.AlertLow,
				Message:   "MACD下穿零轴，转入空头区域。",
				Indicator: "MACD",
				Value:     latest.MACD,
			})
		}
	}
	return out
}

// detectAlignments 均线排列状态
func detectAlignments(latest model.IndicatorRow) []model.Alert {
	var out []model.Alert
	if !model.Valid(latest.SMA5) || !model.Valid(latest.SMA10) || !model.Valid(latest.SMA20) {
		return out
	}
	switch {
	case latest.SMA5 > latest.SMA10 && latest.SMA10 > latest.SMA20:
		out = append(out, model.Alert{
			Category:  "alignment",
			Level:     model.AlertLow,
			Message:   "均线多头排列，趋势向好。",
			Indicator: "MA",
			Value:     latest.SMA5,
		})
	case latest.SMA5 < latest.SMA10 && latest.SMA10 < latest.SMA20:
		out = append(out, model.Alert{
			Category:  "alignment",
			Level:     model.AlertLow,
			Message:   "均线空头排列，趋势偏弱。",
			Indicator: "MA",
			Value:     latest.SMA5,
		})
	default:
		out = append(out, model.Alert{
			Category:  "alignment",
			Level:     model.AlertMedium,
			Message:   "均线交织缠绕，方向不明。",
			Indicator: "MA",
			Value:     latest.SMA5,
		})
	}
	return out
}

// detectSignalQuality 多空信号冲突与低置信度
func detectSignalQuality(bundle *model.SignalBundle) []model.Alert {
	var out []model.Alert
	if bundle == nil {
		return out
	}
	buyCount, sellCount := 0, 0
	for _, j := range bundle.Judges {
		switch j.Status {
		case model.JudgeBuy:
			buyCount++
		case model.JudgeSell:
			sellCount++
		}
	}
	if buyCount >= 2 && sellCount >= 2 {
		out = append(out, model.Alert{
			Category:  "quality",
			Level:     model.AlertMedium,
			Message:   fmt.Sprintf("多空信号冲突（%d项看多，%d项看空），市场分歧较大。", buyCount, sellCount),
			Indicator: "SIGNAL",
			Value:     math.NaN(),
		})
	}
	if bundle.Confidence < 30 {
		out = append(out, model.Alert{
			Category:  "quality",
			Level:     model.AlertLow,
			Message:   fmt.Sprintf("信号置信度仅%.0f%%，参考价值有限。", bundle.Confidence),
			Indicator: "SIGNAL",
			Value:     bundle.Confidence,
		})
	}
	return out
}

// overallRisk 根据高中级预警数量评定整体风险
func overallRisk(b *model.AlertBundle) string {
	highs := b.CountByLevel(model.AlertHigh)
	mediums := b.CountByLevel(model.AlertMedium)
	switch {
	case highs >= 2:
		return "高"
	case highs >= 1 || mediums >= 3:
		return "高"
	case mediums >= 1:
		return "中"
	default:
		return "低"
	}
}
