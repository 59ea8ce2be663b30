package analysis

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-backend/internal/config"
	"stock-analysis-backend/internal/model"
	"stock-analysis-backend/internal/trend"
)

type fakeSource struct {
	snap    *model.Snapshot
	snapErr error
	daily   []model.PriceBar
	minute  []model.PriceBar
}

func (f fakeSource) Snapshot(code string) (*model.Snapshot, error) {
	return f.snap, f.snapErr
}

func (f fakeSource) DailyKline(code string, limit int) ([]model.PriceBar, error) {
	return f.daily, nil
}

func (f fakeSource) MinuteKline(code string, limit int) ([]model.PriceBar, error) {
	return f.minute, nil
}

func risingBars(n int) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := range bars {
		c := 100 + float64(i)*0.5
		bars[i] = model.PriceBar{
			Date:   fmt.Sprintf("2025-01-%02d", i%28+1),
			Open:   c - 0.2,
			Close:  c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Volume: 10000,
		}
	}
	return bars
}

func testConfig() config.Config {
	return config.Config{HistoryDays: 120, MinuteBars: 120, BatchWorkers: 2}
}

func TestAnalyzeBarsInsufficient(t *testing.T) {
	a := New(testConfig(), fakeSource{})
	report := a.AnalyzeBars("600000", "测试股", 100, 1.0, risingBars(30))

	assert.Equal(t, StatusInsufficient, report.Status)
	assert.Equal(t, trend.StatusInsufficient, report.TrendStatus)
	assert.Nil(t, report.Signal)
	assert.Nil(t, report.Alerts)
	assert.Nil(t, report.Prediction)
	assert.Contains(t, report.Summary, "历史数据不足61天")
}

func TestAnalyzeBarsComplete(t *testing.T) {
	a := New(testConfig(), fakeSource{})
	report := a.AnalyzeBars("600000", "测试股", 140, 3.0, risingBars(80))

	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, "日内大幅上涨", report.IntradaySignal)
	assert.Equal(t, trend.StatusStrongUp, report.TrendStatus)
	require.NotNil(t, report.Indicators)
	require.NotNil(t, report.Signal)
	require.NotNil(t, report.Alerts)
	require.NotNil(t, report.Prediction)
	assert.NotEmpty(t, report.TrendSignals)
	assert.NotEmpty(t, report.Summary)
	assert.NotEmpty(t, report.UpdatedAt)
	assert.Len(t, report.Signal.Judges, 8)
}

func TestAnalyzeSymbol(t *testing.T) {
	src := fakeSource{
		snap:  &model.Snapshot{Code: "600000", Name: "测试股", Price: 139.5, ChangePct: 1.2},
		daily: risingBars(80),
	}
	a := New(testConfig(), src)

	report, err := a.AnalyzeSymbol("600000")
	require.NoError(t, err)
	assert.Equal(t, "600000", report.Code)
	assert.Equal(t, "测试股", report.Name)
	assert.InDelta(t, 139.5, report.Price, 1e-9)
	assert.Equal(t, StatusOK, report.Status)
	assert.Nil(t, report.Minute)
}

func TestAnalyzeSymbolNoQuote(t *testing.T) {
	t.Run("行情价格无效", func(t *testing.T) {
		src := fakeSource{snap: &model.Snapshot{Code: "600000", Price: math.NaN()}}
		a := New(testConfig(), src)
		_, err := a.AnalyzeSymbol("600000")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoQuote))
	})

	t.Run("行情拉取失败", func(t *testing.T) {
		src := fakeSource{snapErr: fmt.Errorf("接口超时")}
		a := New(testConfig(), src)
		_, err := a.AnalyzeSymbol("600000")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "接口超时")
	})
}

func TestIntradaySignal(t *testing.T) {
	assert.Equal(t, "日内大幅上涨", intradaySignal(3.0))
	assert.Equal(t, "日内大幅下跌", intradaySignal(-3.0))
	assert.Equal(t, "盘中信号平稳", intradaySignal(1.5))
	assert.Equal(t, "盘中信号平稳", intradaySignal(math.NaN()))
}
