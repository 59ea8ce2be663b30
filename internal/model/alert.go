package model

// 预警级别
const (
	AlertHigh   = "high"
	AlertMedium = "medium"
	AlertLow    = "low"
)

// Alert 单条预警
type Alert struct {
	Category  string  `json:"category"`  // divergence, pre_cross, threshold, breakout, alignment, quality
	Level     string  `json:"level"`     // high, medium, low
	Message   string  `json:"message"`
	Indicator string  `json:"indicator"` // 触发预警的指标名
	Value     float64 `json:"value"`     // 触发时的指标值，无数值时为NaN
}

// AlertCount 各级别预警条数
type AlertCount struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// AlertBundle 预警检测结果，按类别分组
type AlertBundle struct {
	Divergences   []Alert    `json:"divergences"`    // 顶背离/底背离
	PreCrosses    []Alert    `json:"pre_crosses"`    // 即将金叉/死叉
	Thresholds    []Alert    `json:"thresholds"`     // 超买超卖阈值
	Breakouts     []Alert    `json:"breakouts"`      // 布林突破与MACD零轴
	Alignments    []Alert    `json:"alignments"`     // 均线排列
	SignalQuality []Alert    `json:"signal_quality"` // 信号冲突与低置信度
	AlertCount    AlertCount `json:"alert_count"`
	OverallRisk   string     `json:"overall_risk"` // 高, 中, 低
}

// All 汇总全部预警
func (b *AlertBundle) All() []Alert {
	var out []Alert
	out = append(out, b.Divergences...)
	out = append(out, b.PreCrosses...)
	out = append(out, b.Thresholds...)
	out = append(out, b.Breakouts...)
	out = append(out, b.Alignments...)
	out = append(out, b.SignalQuality...)
	return out
}

// CountByLevel 统计指定级别的预警条数
func (b *AlertBundle) CountByLevel(level string) int {
	n := 0
	for _, a := range b.All() {
		if a.Level == level {
			n++
		}
	}
	return n
}
