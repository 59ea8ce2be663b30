package model

import "math"

// Valid 判断数值是否有效（NaN 表示缺失）
func Valid(v float64) bool {
	return !math.IsNaN(v)
}

// Stock 证券基本信息
type Stock struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"` // SH: 上海, SZ: 深圳
}

// PriceBar K线数据
type PriceBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume float64 `json:"volume"`
	Amount float64 `json:"amount"`
}

// KlineResponse K线响应
type KlineResponse struct {
	Code   string     `json:"code"`
	Name   string     `json:"name"`
	Period string     `json:"period"`
	Data   []PriceBar `json:"data"`
}

// Snapshot 实时行情快照
type Snapshot struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"` // 涨跌幅(%)
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	PrevClose float64 `json:"prev_close"`
	Volume    float64 `json:"volume"`
	Amount    float64 `json:"amount"`
	Time      string  `json:"time"`
}
