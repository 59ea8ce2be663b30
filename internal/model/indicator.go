package model

// IndicatorRow 单根K线对应的全部指标值，缺失值用 NaN 表示
type IndicatorRow struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume float64 `json:"volume"`

	SMA5  float64 `json:"sma5"`
	SMA10 float64 `json:"sma10"`
	SMA20 float64 `json:"sma20"`
	SMA60 float64 `json:"sma60"`

	MACD       float64 `json:"macd"`        // DIF
	MACDSignal float64 `json:"macd_signal"` // DEA
	MACDHist   float64 `json:"macd_hist"`   // DIF-DEA

	BollUpper  float64 `json:"boll_upper"`
	BollMiddle float64 `json:"boll_middle"`
	BollLower  float64 `json:"boll_lower"`

	RSI float64 `json:"rsi"`

	KDJK float64 `json:"kdj_k"`
	KDJD float64 `json:"kdj_d"`
	KDJJ float64 `json:"kdj_j"`

	CCI float64 `json:"cci"`
	OBV float64 `json:"obv"`

	WR1 float64 `json:"wr1"` // 10日威廉指标，0-100
	WR2 float64 `json:"wr2"` // 6日威廉指标，0-100

	ATR float64 `json:"atr"`
}
