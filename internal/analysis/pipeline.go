package analysis

import (
	"errors"
	"fmt"
	"log"
	"time"

	"stock-analysis-backend/internal/alert"
	"stock-analysis-backend/internal/config"
	"stock-analysis-backend/internal/holiday"
	"stock-analysis-backend/internal/indicator"
	"stock-analysis-backend/internal/model"
	"stock-analysis-backend/internal/predict"
	"stock-analysis-backend/internal/signal"
	"stock-analysis-backend/internal/stockdata"
	"stock-analysis-backend/internal/trend"
)

// 完整分析至少需要61根日K线
const minDailyBars = 61

const (
	StatusOK           = "分析正常"
	StatusInsufficient = "数据不足 (少于61天)"
)

// ErrNoQuote 实时行情缺失或无效
var ErrNoQuote = errors.New("无有效实时行情")

// QuoteSource 行情数据源
type QuoteSource interface {
	Snapshot(code string) (*model.Snapshot, error)
	DailyKline(code string, limit int) ([]model.PriceBar, error)
	MinuteKline(code string, limit int) ([]model.PriceBar, error)
}

type marketSource struct{}

func (marketSource) Snapshot(code string) (*model.Snapshot, error) {
	return stockdata.GetSnapshot(code)
}

func (marketSource) DailyKline(code string, limit int) ([]model.PriceBar, error) {
	return stockdata.GetDailyKline(code, limit)
}

func (marketSource) MinuteKline(code string, limit int) ([]model.PriceBar, error) {
	return stockdata.GetMinuteKline(code, limit)
}

// NewMarketSource 默认行情数据源（东方财富/新浪）
func NewMarketSource() QuoteSource {
	return marketSource{}
}

// Analyzer 单标的分析流水线
type Analyzer struct {
	cfg    config.Config
	quotes QuoteSource
}

// New 创建分析器，quotes为nil时使用默认行情源
func New(cfg config.Config, quotes QuoteSource) *Analyzer {
	if quotes == nil {
		quotes = NewMarketSource()
	}
	return &Analyzer{cfg: cfg, quotes: quotes}
}

// AnalyzeSymbol 拉取行情并生成完整分析报告
func (a *Analyzer) AnalyzeSymbol(code string) (*model.Report, error) {
	snap, err := a.quotes.Snapshot(code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", code, err)
	}
	if snap == nil || !model.Valid(snap.Price) || snap.Price <= 0 {
		return nil, fmt.Errorf("%s: %w", code, ErrNoQuote)
	}

	bars, err := a.quotes.DailyKline(code, a.cfg.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("%s: 获取历史K线失败: %w", code, err)
	}

	report := a.AnalyzeBars(code, snap.Name, snap.Price, snap.ChangePct, bars)

	// 分钟级快照仅在交易时段有意义
	if a.cfg.WithMinute && report.Status == StatusOK && holiday.IsTradingTimeNow() {
		if minBars, err := a.quotes.MinuteKline(code, a.cfg.MinuteBars); err == nil && len(minBars) > 0 {
			report.Minute = analyzeMinute(minBars)
		} else if err != nil {
			log.Printf("分钟K线获取失败 %s: %v", code, err)
		}
	}
	return report, nil
}

// AnalyzeBars 对给定K线执行完整分析，不做任何网络请求
func (a *Analyzer) AnalyzeBars(code, name string, price, changePct float64, bars []model.PriceBar) *model.Report {
	report := &model.Report{
		Code:           code,
		Name:           name,
		Price:          price,
		ChangePct:      changePct,
		IntradaySignal: intradaySignal(changePct),
		UpdatedAt:      time.Now().Format("2006-01-02 15:04:05"),
	}

	if len(bars) < minDailyBars {
		report.Status = StatusInsufficient
		report.TrendStatus = trend.StatusInsufficient
		report.Summary = fmt.Sprintf("%s（%s）历史数据不足61天，暂不给出技术分析结论。", name, code)
		return report
	}

	frame := indicator.Compute(bars)
	latest := frame.Latest()

	report.Status = StatusOK
	report.Indicators = &latest
	report.TrendSignals = trend.Analyze(frame)
	report.TrendStatus = trend.JudgeTrendStatus(frame)
	report.Signal = signal.Fuse(frame)
	report.Alerts = alert.Detect(frame, report.Signal)
	report.Prediction = predict.Predict(frame, report.Signal)
	report.Summary = BuildSummary(report)
	return report
}

// analyzeMinute 分钟级快照分析，仅输出趋势状态与信号解读
func analyzeMinute(bars []model.PriceBar) *model.MinuteBlock {
	frame := indicator.ComputeMinute(bars)
	row := frame.Latest()
	return &model.MinuteBlock{
		TrendStatus: trend.JudgeTrendStatus(frame),
		Signals:     trend.Analyze(frame),
		Row:         &row,
	}
}

// intradaySignal 日内涨跌幅信号，±2.5%为阈值
func intradaySignal(changePct float64) string {
	switch {
	case !model.Valid(changePct):
		return "盘中信号平稳"
	case changePct > 2.5:
		return "日内大幅上涨"
	case changePct < -2.5:
		return "日内大幅下跌"
	default:
		return "盘中信号平稳"
	}
}
