package analysis

import (
	"fmt"
	"strings"

	"stock-analysis-backend/internal/model"
)

// BuildSummary 汇总趋势、信号、预测与预警为多行中文摘要
func BuildSummary(r *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "【%s（%s）】当前价 %.2f，日内涨跌 %+.2f%%，%s。\n", r.Name, r.Code, r.Price, r.ChangePct, r.IntradaySignal)
	if r.TrendStatus != "" {
		fmt.Fprintf(&b, "趋势判断：%s。\n", r.TrendStatus)
	}
	if r.Signal != nil {
		b.WriteString(SignalSummary(r.Signal))
	}
	if r.Prediction != nil {
		b.WriteString(PredictionSummary(r.Prediction))
	}
	if r.Alerts != nil {
		b.WriteString(AlertSummary(r.Alerts))
	}
	return strings.TrimRight(b.String(), "\n")
}

// SignalSummary 融合信号摘要
func SignalSummary(s *model.SignalBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "综合信号：%s（评分%.1f，置信度%.0f%%，强度%s）。\n", s.SignalCN, s.Score, s.Confidence, s.Strength)
	if len(s.Reasons) > 0 {
		fmt.Fprintf(&b, "主要依据：%s。\n", strings.Join(s.Reasons, "；"))
	}
	return b.String()
}

// PredictionSummary 价格预测摘要
func PredictionSummary(p *model.PredictionBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "趋势概率：上涨%.1f%%，下跌%.1f%%，横盘%.1f%%。\n", p.Probability.Up, p.Probability.Down, p.Probability.Sideways)
	if len(p.Support) > 0 {
		fmt.Fprintf(&b, "参考支撑位：%s。\n", joinLevels(p.Support))
	}
	if len(p.Resistance) > 0 {
		fmt.Fprintf(&b, "参考压力位：%s。\n", joinLevels(p.Resistance))
	}
	for _, h := range p.Horizons {
		fmt.Fprintf(&b, "未来%d日：目标价%.2f，区间%.2f-%.2f，趋势%s（置信度%s）。\n", h.Day, h.Target, h.Low, h.High, h.Trend, h.Confidence)
	}
	return b.String()
}

// AlertSummary 预警摘要，只列出高中级条目
func AlertSummary(a *model.AlertBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "整体风险：%s。\n", a.OverallRisk)
	for _, item := range a.All() {
		if item.Level == model.AlertLow {
			continue
		}
		fmt.Fprintf(&b, "预警：%s\n", item.Message)
	}
	return b.String()
}

func joinLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, v := range levels {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return strings.Join(parts, " / ")
}
