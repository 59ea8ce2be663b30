package signal

import (
	"fmt"

	"stock-analysis-backend/internal/indicator"
	"stock-analysis-backend/internal/model"
)

// 各指标权重，合计100
const (
	WeightRSI  = 25
	WeightKDJ  = 20
	WeightMACD = 20
	WeightMA   = 15
	WeightBoll = 10
	WeightCCI  = 5
	WeightOBV  = 3
	WeightWR   = 2
)

var signalCN = map[string]string{
	model.SignalStrongBuy:  "强烈买入",
	model.SignalBuy:        "买入",
	model.SignalHold:       "持有",
	model.SignalSell:       "卖出",
	model.SignalStrongSell: "强烈卖出",
}

type judgement struct {
	name   string
	value  float64
	weight int
	status string
	reason string
	ok     bool // 指标数据可用，权重计入总分母
}

// Fuse 加权融合8项指标判定，输出综合评分与操作信号
func Fuse(f *indicator.Frame) *model.SignalBundle {
	latest := f.Latest()
	prev := f.Prev()

	judgements := []judgement{
		judgeRSI(latest),
		judgeKDJ(latest, prev),
		judgeMACD(latest, prev),
		judgeMA(latest),
		judgeBollinger(latest),
		judgeCCI(latest),
		judgeOBV(f, latest, prev),
		judgeWilliams(latest),
	}

	totalWeight := 0
	buyWeight, sellWeight := 0, 0
	buyCount, sellCount := 0, 0
	var reasons []string
	details := make([]model.JudgeDetail, 0, len(judgements))

	for _, j := range judgements {
		// 数据缺失的指标整体剔除，不稀释可用指标的权重
		if j.ok {
			totalWeight += j.weight
		}
		switch j.status {
		case model.JudgeBuy:
			buyWeight += j.weight
			buyCount++
		case model.JudgeSell:
			sellWeight += j.weight
			sellCount++
		}
		if j.reason != "" {
			reasons = append(reasons, j.reason)
		}
		details = append(details, model.JudgeDetail{
			Name:   j.name,
			Value:  j.value,
			Status: j.status,
			Weight: j.weight,
		})
	}

	score := 50.0
	if totalWeight > 0 {
		score = float64(buyWeight-sellWeight)/float64(totalWeight)*50 + 50
	}

	confidence := 50.0
	decided := buyCount + sellCount
	if decided > 0 {
		dominant := buyCount
		if sellCount > dominant {
			dominant = sellCount
		}
		confidence = float64(dominant) / float64(decided) * 100
	}

	var sig string
	switch {
	case score >= 85:
		sig = model.SignalStrongBuy
	case score >= 65:
		sig = model.SignalBuy
	case score >= 45:
		sig = model.SignalHold
	case score >= 25:
		sig = model.SignalSell
	default:
		sig = model.SignalStrongSell
	}

	if sig == model.SignalHold {
		reasons = []string{"多空信号均衡，建议持有观望"}
	}

	strength := "弱"
	if confidence >= 70 || sig == model.SignalStrongBuy || sig == model.SignalStrongSell {
		strength = "强"
	} else if confidence >= 40 {
		strength = "中等"
	}

	return &model.SignalBundle{
		Score:      score,
		Signal:     sig,
		SignalCN:   signalCN[sig],
		Strength:   strength,
		Confidence: confidence,
		Reasons:    reasons,
		Judges:     details,
		BuyWeight:  buyWeight,
		SellWeight: sellWeight,
	}
}

func judgeRSI(latest model.IndicatorRow) judgement {
	j := judgement{name: "RSI", value: latest.RSI, weight: WeightRSI, status: model.JudgeNeutral}
	if !model.Valid(latest.RSI) {
		return j
	}
	j.ok = true
	switch {
	case latest.RSI < 30:
		j.status = model.JudgeBuy
		j.reason = fmt.Sprintf("RSI超卖（%.1f）", latest.RSI)
	case latest.RSI < 40:
		j.status = model.JudgeBuy
		j.reason = fmt.Sprintf("RSI偏低（%.1f）", latest.RSI)
	case latest.RSI > 70:
		j.status = model.JudgeSell
		j.reason = fmt.Sprintf("RSI超买（%.1f）", latest.RSI)
	case latest.RSI > 60:
		j.status = model.JudgeSell
		j.reason = fmt.Sprintf("RSI偏高（%.1f）", latest.RSI)
	}
	return j
}

func judgeKDJ(latest, prev model.IndicatorRow) judgement {
	j := judgement{name: "KDJ", value: latest.KDJK, weight: WeightKDJ, status: model.JudgeNeutral}
	if !model.Valid(latest.KDJK) || !model.Valid(latest.KDJD) {
		return j
	}
	j.ok = true

	// 金叉死叉优先于区间判定
	if model.Valid(prev.KDJK) && model.Valid(prev.KDJD) {
		if latest.KDJK > latest.KDJD && prev.KDJK <= prev.KDJD {
			j.status = model.JudgeBuy
			j.reason = "KDJ金叉"
			return j
		}
		if latest.KDJK < latest.KDJD && prev.KDJK >= prev.KDJD {
			j.status = model.JudgeSell
			j.reason = "KDJ死叉"
			return j
		}
	}

	switch {
	case model.Valid(latest.KDJJ) && latest.KDJJ < 0:
		j.status = model.JudgeBuy
		j.reason = "KDJ的J值超卖"
	case model.Valid(latest.KDJJ) && latest.KDJJ > 100:
		j.status = model.JudgeSell
		j.reason = "KDJ的J值超买"
	case latest.KDJK < 20:
		j.status = model.JudgeBuy
		j.reason = "KDJ的K值低位"
	case latest.KDJK > 80:
		j.status = model.JudgeSell
		j.reason = "KDJ的K值高位"
	}
	return j
}

func judgeMACD(latest, prev model.IndicatorRow) judgement {
	j := judgement{name: "MACD", value: latest.MACD, weight: WeightMACD, status: model.JudgeNeutral}
	if !model.Valid(latest.MACD) || !model.Valid(latest.MACDSignal) {
		return j
	}
	j.ok = true

	if model.Valid(prev.MACD) && model.Valid(prev.MACDSignal) {
		if latest.MACD > latest.MACDSignal && prev.MACD <= prev.MACDSignal {
			j.status = model.JudgeBuy
			j.reason = "MACD金叉"
			return j
		}
		if latest.MACD < latest.MACDSignal && prev.MACD >= prev.MACDSignal {
			j.status = model.JudgeSell
			j.reason = "MACD死叉"
			return j
		}
	}

	if latest.MACD > 0 && latest.MACDSignal > 0 {
		j.status = model.JudgeBuy
		j.reason = "MACD零轴上方运行"
	} else if latest.MACD < 0 && latest.MACDSignal < 0 {
		j.status = model.JudgeSell
		j.reason = "MACD零轴下方运行"
	}
	return j
}

func judgeMA(latest model.IndicatorRow) judgement {
	j := judgement{name: "MA", value: latest.SMA5, weight: WeightMA, status: model.JudgeNeutral}
	if !model.Valid(latest.Close) || !model.Valid(latest.SMA5) ||
		!model.Valid(latest.SMA10) || !model.Valid(latest.SMA20) {
		return j
	}
	j.ok = true

	if latest.Close > latest.SMA5 && latest.SMA5 > latest.SMA10 && latest.SMA10 > latest.SMA20 {
		j.status = model.JudgeBuy
		j.reason = "均线多头排列"
		return j
	}
	if latest.Close < latest.SMA5 && latest.SMA5 < latest.SMA10 && latest.SMA10 < latest.SMA20 {
		j.status = model.JudgeSell
		j.reason = "均线空头排列"
		return j
	}
	if latest.Close > latest.SMA20 {
		j.status = model.JudgeBuy
		j.reason = "价格站上20日均线"
	} else if latest.Close < latest.SMA20 {
		j.status = model.JudgeSell
		j.reason = "价格跌破20日均线"
	}
	return j
}

func judgeBollinger(latest model.IndicatorRow) judgement {
	j := judgement{name: "BOLL", value: latest.Close, weight: WeightBoll, status: model.JudgeNeutral}
	if !model.Valid(latest.Close) || !model.Valid(latest.BollUpper) ||
		!model.Valid(latest.BollMiddle) || !model.Valid(latest.BollLower) {
		return j
	}
	j.ok = true
	switch {
	case latest.Close < latest.BollLower:
		j.status = model.JudgeBuy
		j.reason = "跌破布林下轨，超卖"
	case latest.Close > latest.BollUpper:
		j.status = model.JudgeSell
		j.reason = "突破布林上轨，超买"
	case latest.Close > latest.BollMiddle:
		j.status = model.JudgeBuy
		j.reason = "运行于布林中轨上方"
	default:
		j.status = model.JudgeSell
		j.reason = "运行于布林中轨下方"
	}
	return j
}

func judgeCCI(latest model.IndicatorRow) judgement {
	j := judgement{name: "CCI", value: latest.CCI, weight: WeightCCI, status: model.JudgeNeutral}
	if !model.Valid(latest.CCI) {
		return j
	}
	j.ok = true
	if latest.CCI > 100 {
		j.status = model.JudgeSell
		j.reason = fmt.Sprintf("CCI超买（%.1f）", latest.CCI)
	} else if latest.CCI < -100 {
		j.status = model.JudgeBuy
		j.reason = fmt.Sprintf("CCI超卖（%.1f）", latest.CCI)
	}
	return j
}

func judgeOBV(f *indicator.Frame, latest, prev model.IndicatorRow) judgement {
	j := judgement{name: "OBV", value: latest.OBV, weight: WeightOBV, status: model.JudgeNeutral}
	if !f.HasVolume || !model.Valid(latest.OBV) || !model.Valid(prev.OBV) {
		return j
	}
	j.ok = true
	if latest.OBV > prev.OBV {
		j.status = model.JudgeBuy
		j.reason = "OBV量能流入"
	} else if latest.OBV < prev.OBV {
		j.status = model.JudgeSell
		j.reason = "OBV量能流出"
	}
	return j
}

func judgeWilliams(latest model.IndicatorRow) judgement {
	j := judgement{name: "WR", value: latest.WR1, weight: WeightWR, status: model.JudgeNeutral}
	if !model.Valid(latest.WR1) {
		return j
	}
	j.ok = true
	if latest.WR1 > 80 {
		j.status = model.JudgeBuy
		j.reason = fmt.Sprintf("威廉指标超卖（%.1f）", latest.WR1)
	} else if latest.WR1 < 20 {
		j.status = model.JudgeSell
		j.reason = fmt.Sprintf("威廉指标超买（%.1f）", latest.WR1)
	}
	return j
}
