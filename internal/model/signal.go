package model

// 单项指标判定结果
const (
	JudgeBuy     = "buy"
	JudgeSell    = "sell"
	JudgeNeutral = "neutral"
)

// 综合信号类型
const (
	SignalStrongBuy  = "strong_buy"
	SignalBuy        = "buy"
	SignalHold       = "hold"
	SignalSell       = "sell"
	SignalStrongSell = "strong_sell"
)

// JudgeDetail 单项指标的判定明细
type JudgeDetail struct {
	Name   string  `json:"name"`   // 指标名称
	Value  float64 `json:"value"`  // 判定时的指标值
	Status string  `json:"status"` // buy, sell, neutral
	Weight int     `json:"weight"` // 权重
}

// SignalBundle 多指标加权融合结果
type SignalBundle struct {
	Score      float64       `json:"score"`      // 0-100，50为中性
	Signal     string        `json:"signal"`     // strong_buy, buy, hold, sell, strong_sell
	SignalCN   string        `json:"signal_cn"`  // 强烈买入, 买入, 持有, 卖出, 强烈卖出
	Strength   string        `json:"strength"`   // 强, 中等, 弱
	Confidence float64       `json:"confidence"` // 0-100
	Reasons    []string      `json:"reasons"`    // 判定依据
	Judges     []JudgeDetail `json:"judges"`     // 各指标判定明细
	BuyWeight  int           `json:"buy_weight"`
	SellWeight int           `json:"sell_weight"`
}
