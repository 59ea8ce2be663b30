package model

import (
	"encoding/json"
	"math"
)

// nilIfNaN NaN序列化为null
func nilIfNaN(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// MarshalJSON 指标行的NaN字段输出为null
func (r IndicatorRow) MarshalJSON() ([]byte, error) {
	type row struct {
		Date       string   `json:"date"`
		Open       *float64 `json:"open"`
		Close      *float64 `json:"close"`
		High       *float64 `json:"high"`
		Low        *float64 `json:"low"`
		Volume     *float64 `json:"volume"`
		SMA5       *float64 `json:"sma5"`
		SMA10      *float64 `json:"sma10"`
		SMA20      *float64 `json:"sma20"`
		SMA60      *float64 `json:"sma60"`
		MACD       *float64 `json:"macd"`
		MACDSignal *float64 `json:"macd_signal"`
		MACDHist   *float64 `json:"macd_hist"`
		BollUpper  *float64 `json:"boll_upper"`
		BollMiddle *float64 `json:"boll_middle"`
		BollLower  *float64 `json:"boll_lower"`
		RSI        *float64 `json:"rsi"`
		KDJK       *float64 `json:"kdj_k"`
		KDJD       *float64 `json:"kdj_d"`
		KDJJ       *float64 `json:"kdj_j"`
		CCI        *float64 `json:"cci"`
		OBV        *float64 `json:"obv"`
		WR1        *float64 `json:"wr1"`
		WR2        *float64 `json:"wr2"`
		ATR        *float64 `json:"atr"`
	}
	return json.Marshal(row{
		Date:       r.Date,
		Open:       nilIfNaN(r.Open),
		Close:      nilIfNaN(r.Close),
		High:       nilIfNaN(r.High),
		Low:        nilIfNaN(r.Low),
		Volume:     nilIfNaN(r.Volume),
		SMA5:       nilIfNaN(r.SMA5),
		SMA10:      nilIfNaN(r.SMA10),
		SMA20:      nilIfNaN(r.SMA20),
		SMA60:      nilIfNaN(r.SMA60),
		MACD:       nilIfNaN(r.MACD),
		MACDSignal: nilIfNaN(r.MACDSignal),
		MACDHist:   nilIfNaN(r.MACDHist),
		BollUpper:  nilIfNaN(r.BollUpper),
		BollMiddle: nilIfNaN(r.BollMiddle),
		BollLower:  nilIfNaN(r.BollLower),
		RSI:        nilIfNaN(r.RSI),
		KDJK:       nilIfNaN(r.KDJK),
		KDJD:       nilIfNaN(r.KDJD),
		KDJJ:       nilIfNaN(r.KDJJ),
		CCI:        nilIfNaN(r.CCI),
		OBV:        nilIfNaN(r.OBV),
		WR1:        nilIfNaN(r.WR1),
		WR2:        nilIfNaN(r.WR2),
		ATR:        nilIfNaN(r.ATR),
	})
}

// MarshalJSON 预警条目的NaN指标值输出为null
func (a Alert) MarshalJSON() ([]byte, error) {
	type alert struct {
		Category  string   `json:"category"`
		Level     string   `json:"level"`
		Message   string   `json:"message"`
		Indicator string   `json:"indicator"`
		Value     *float64 `json:"value"`
	}
	return json.Marshal(alert{
		Category:  a.Category,
		Level:     a.Level,
		Message:   a.Message,
		Indicator: a.Indicator,
		Value:     nilIfNaN(a.Value),
	})
}

// MarshalJSON 判定明细的NaN值输出为null
func (d JudgeDetail) MarshalJSON() ([]byte, error) {
	type detail struct {
		Name   string   `json:"name"`
		Value  *float64 `json:"value"`
		Status string   `json:"status"`
		Weight int      `json:"weight"`
	}
	return json.Marshal(detail{
		Name:   d.Name,
		Value:  nilIfNaN(d.Value),
		Status: d.Status,
		Weight: d.Weight,
	})
}
