package model

// TrendProbability 趋势概率(%)，三项合计约100
type TrendProbability struct {
	Up       float64 `json:"up"`
	Down     float64 `json:"down"`
	Sideways float64 `json:"sideways"`
}

// HorizonForecast 单日预测
type HorizonForecast struct {
	Day             int     `json:"day"`    // 1, 2, 3
	Target          float64 `json:"target"` // 目标价
	High            float64 `json:"high"`
	Low             float64 `json:"low"`
	Trend           string  `json:"trend"`            // 上涨, 下跌, 横盘
	Confidence      string  `json:"confidence"`       // 高, 中, 低
	ConfidenceScore float64 `json:"confidence_score"` // 所选趋势的概率(%)
}

// PredictionBundle 价格预测结果
type PredictionBundle struct {
	Support     []float64         `json:"support"`    // 支撑位，升序，最多3个
	Resistance  []float64         `json:"resistance"` // 压力位，升序，最多3个
	Probability TrendProbability  `json:"probability"`
	Horizons    []HorizonForecast `json:"horizons"`
	Volatility  float64           `json:"volatility"` // 日波动率
}
