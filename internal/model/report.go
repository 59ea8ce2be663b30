package model

// AnalyzeRequest 分析请求
type AnalyzeRequest struct {
	Code    string `json:"code" binding:"required"`
	WithLLM bool   `json:"with_llm"` // 是否附带大模型点评
}

// BatchAnalyzeRequest 批量分析请求
type BatchAnalyzeRequest struct {
	Codes     []string `json:"codes" binding:"required"`
	RequestID string   `json:"request_id"`
}

// LLMComment 大模型点评
type LLMComment struct {
	Score   int    `json:"score"`   // 0-100
	Comment string `json:"comment"` // 点评文字
	Source  string `json:"source"`  // llm, fallback
}

// MinuteBlock 分钟级快照分析
type MinuteBlock struct {
	TrendStatus string        `json:"trend_status"`
	Signals     []string      `json:"signals"`
	Row         *IndicatorRow `json:"row,omitempty"`
}

// Report 单只证券的完整分析报告
type Report struct {
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Price          float64           `json:"price"`
	ChangePct      float64           `json:"change_pct"`
	Status         string            `json:"status"`          // 分析正常 / 数据不足 (少于61天) 等
	IntradaySignal string            `json:"intraday_signal"` // 日内大幅上涨 / 日内大幅下跌 / 盘中信号平稳
	TrendStatus    string            `json:"trend_status"`
	TrendSignals   []string          `json:"trend_signals"`
	Indicators     *IndicatorRow     `json:"indicators,omitempty"`
	Signal         *SignalBundle     `json:"signal,omitempty"`
	Alerts         *AlertBundle      `json:"alerts,omitempty"`
	Prediction     *PredictionBundle `json:"prediction,omitempty"`
	Minute         *MinuteBlock      `json:"minute,omitempty"`
	LLM            *LLMComment       `json:"llm,omitempty"`
	Summary        string            `json:"summary"`
	UpdatedAt      string            `json:"updated_at"`
}
