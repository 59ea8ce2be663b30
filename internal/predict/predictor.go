package predict

import (
	"math"
	"sort"

	"stock-analysis-backend/internal/indicator"
	"stock-analysis-backend/internal/model"
)

const (
	minHistory  = 20
	defaultVol  = 0.02
	volLookback = 20
)

// Predict 基于指标矩阵与融合信号给出支撑压力位、趋势概率与1-3日价格区间
func Predict(f *indicator.Frame, bundle *model.SignalBundle) *model.PredictionBundle {
	if f == nil || f.Len() < minHistory {
		return emptyBundle()
	}
	latest := f.Latest()
	price := latest.Close
	if !model.Valid(price) || price <= 0 {
		return emptyBundle()
	}

	support, resistance := findSupportResistance(f, latest, price)
	prob := trendProbability(f, bundle, latest, price)
	vol := dailyVolatility(f.Closes())
	horizons := forecastHorizons(price, vol, prob, support, resistance)

	return &model.PredictionBundle{
		Support:     support,
		Resistance:  resistance,
		Probability: prob,
		Horizons:    horizons,
		Volatility:  vol,
	}
}

// emptyBundle 数据不足时的空预测，结构完整可直接序列化
func emptyBundle() *model.PredictionBundle {
	return &model.PredictionBundle{
		Support:     []float64{},
		Resistance:  []float64{},
		Probability: model.TrendProbability{Up: 33, Down: 33, Sideways: 34},
		Volatility:  defaultVol,
	}
}

// findSupportResistance 候选位来自20日高低点、布林轨、均线与ATR倍数
// 支撑位取价格下方最近3个，压力位取价格上方最近3个，均升序
func findSupportResistance(f *indicator.Frame, latest model.IndicatorRow, price float64) (support, resistance []float64) {
	n := f.Len()
	low20, high20 := f.Bars[n-1].Low, f.Bars[n-1].High
	for i := n - minHistory; i < n; i++ {
		if f.Bars[i].Low < low20 {
			low20 = f.Bars[i].Low
		}
		if f.Bars[i].High > high20 {
			high20 = f.Bars[i].High
		}
	}

	atr := latest.ATR
	if !model.Valid(atr) || atr <= 0 {
		atr = (high20 - low20) * 0.1
	}

	supports := []float64{low20, latest.BollLower, price - 1.5*atr, price - 3*atr}
	if model.Valid(latest.SMA20) && latest.SMA20 < price {
		supports = append(supports, latest.SMA20)
	}
	if model.Valid(latest.SMA60) && latest.SMA60 < price {
		supports = append(supports, latest.SMA60)
	}

	resistances := []float64{high20, latest.BollUpper, price + 1.5*atr, price + 3*atr}
	for _, ma := range []float64{latest.SMA5, latest.SMA10, latest.SMA20} {
		if model.Valid(ma) && ma > price {
			resistances = append(resistances, ma)
		}
	}

	support = pickLevels(supports, func(v float64) bool { return v < price }, true)
	resistance = pickLevels(resistances, func(v float64) bool { return v > price }, false)
	return support, resistance
}

// pickLevels 去重排序后取最靠近价格的3个位
func pickLevels(candidates []float64, keep func(float64) bool, takeLast bool) []float64 {
	seen := make(map[float64]bool)
	var levels []float64
	for _, v := range candidates {
		if !model.Valid(v) || v <= 0 || !keep(v) {
			continue
		}
		r := round2(v)
		if !seen[r] {
			seen[r] = true
			levels = append(levels, r)
		}
	}
	sort.Float64s(levels)
	if len(levels) > 3 {
		if takeLast {
			levels = levels[len(levels)-3:]
		} else {
			levels = levels[:3]
		}
	}
	if levels == nil {
		levels = []float64{}
	}
	return levels
}

// trendProbability 多因子投票归一化为上涨/下跌/横盘概率
func trendProbability(f *indicator.Frame, bundle *model.SignalBundle, latest model.IndicatorRow, price float64) model.TrendProbability {
	up, down, sideways := 0.0, 0.0, 10.0

	if bundle != nil {
		switch {
		case bundle.Score > 50:
			up += (bundle.Score - 50) * 0.5
		case bundle.Score < 50:
			down += (50 - bundle.Score) * 0.5
		default:
			sideways += 0.5
		}
	}

	if model.Valid(latest.SMA5) && model.Valid(latest.SMA20) {
		switch {
		case price > latest.SMA5 && latest.SMA5 > latest.SMA20:
			up += 20
		case price < latest.SMA5 && latest.SMA5 < latest.SMA20:
			down += 20
		default:
			sideways += 10
		}
	}

	if avg, ok := recentReturn(f.Closes(), 3); ok {
		switch {
		case avg > 0.005:
			up += 15
		case avg < -0.005:
			down += 15
		default:
			sideways += 10
		}
	}

	if model.Valid(latest.RSI) {
		switch {
		case latest.RSI < 40:
			up += 10
		case latest.RSI > 60:
			down += 10
		default:
			sideways += 5
		}
	}

	if model.Valid(latest.KDJK) {
		if latest.KDJK < 20 {
			up += 5
		} else if latest.KDJK > 80 {
			down += 5
		}
	}

	total := up + down + sideways
	if total <= 0 {
		return model.TrendProbability{Up: 33, Down: 33, Sideways: 34}
	}
	return model.TrendProbability{
		Up:       round1(up / total * 100),
		Down:     round1(down / total * 100),
		Sideways: round1(sideways / total * 100),
	}
}

// recentReturn 最近lookback个涨跌幅的均值
func recentReturn(closes []float64, lookback int) (float64, bool) {
	n := len(closes)
	if n < 2 {
		return 0, false
	}
	start := n - lookback - 1
	if start < 0 {
		start = 0
	}
	sum, count := 0.0, 0
	for i := start + 1; i < n; i++ {
		if closes[i-1] == 0 {
			continue
		}
		sum += closes[i]/closes[i-1] - 1
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// dailyVolatility 最近20个涨跌幅的样本标准差，不足时取默认值
func dailyVolatility(closes []float64) float64 {
	n := len(closes)
	var returns []float64
	start := n - volLookback - 1
	if start < 0 {
		start = 0
	}
	for i := start + 1; i < n; i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return defaultVol
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	vol := math.Sqrt(variance)
	if vol <= 0 || math.IsNaN(vol) {
		return defaultVol
	}
	return vol
}

// forecastHorizons 逐日推算目标价与波动区间，并用支撑压力位约束边界
func forecastHorizons(price, vol float64, prob model.TrendProbability, support, resistance []float64) []model.HorizonForecast {
	var out []model.HorizonForecast
	for day := 1; day <= 3; day++ {
		expected := (prob.Up - prob.Down) / 100 * vol * float64(day)
		target := price * (1 + expected)
		band := 1.5 * vol * math.Sqrt(float64(day))
		high := target * (1 + band)
		low := target * (1 - band)

		if len(resistance) > 0 && high > resistance[0] {
			ceiling := resistance[0] * 1.01
			if ceiling < high {
				high = ceiling
			}
		}
		if len(support) > 0 && low < support[len(support)-1] {
			floor := support[len(support)-1] * 0.99
			if floor > low {
				low = floor
			}
		}

		trend := "横盘"
		confidence := prob.Sideways
		if prob.Up > 50 {
			trend = "上涨"
			confidence = prob.Up
		} else if prob.Down > 50 {
			trend = "下跌"
			confidence = prob.Down
		}

		label := "低"
		if confidence >= 60 {
			label = "高"
		} else if confidence >= 45 {
			label = "中"
		}

		out = append(out, model.HorizonForecast{
			Day:             day,
			Target:          round2(target),
			High:            round2(high),
			Low:             round2(low),
			Trend:           trend,
			Confidence:      label,
			ConfidenceScore: confidence,
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
