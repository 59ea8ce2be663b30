package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-backend/internal/analysis"
	"stock-analysis-backend/internal/config"
	"stock-analysis-backend/internal/llm"
	"stock-analysis-backend/internal/model"
	"stock-analysis-backend/internal/stockdata"
)

type fakeSource struct {
	calls *atomic.Int64
	fail  map[string]bool
	// 非nil时Snapshot阻塞等待，用于观察运行中的任务
	release chan struct{}
}

func (f fakeSource) Snapshot(code string) (*model.Snapshot, error) {
	if f.release != nil {
		<-f.release
	}
	if f.calls != nil {
		f.calls.Add(1)
	}
	if f.fail[code] {
		return nil, fmt.Errorf("行情接口不可用")
	}
	return &model.Snapshot{Code: code, Name: "测试股", Price: 139.5, ChangePct: 1.2}, nil
}

func (f fakeSource) DailyKline(code string, limit int) ([]model.PriceBar, error) {
	bars := make([]model.PriceBar, 80)
	for i := range bars {
		c := 100 + float64(i)*0.5
		bars[i] = model.PriceBar{
			Date:   "2025-01-01",
			Open:   c - 0.2,
			Close:  c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Volume: 10000,
		}
	}
	return bars, nil
}

func (f fakeSource) MinuteKline(code string, limit int) ([]model.PriceBar, error) {
	return nil, nil
}

func newTestService(src analysis.QuoteSource) *AnalyzeService {
	cfg := config.Config{HistoryDays: 120, BatchWorkers: 2, CacheTTL: time.Minute}
	return NewAnalyzeService(cfg, analysis.New(cfg, src), nil, llm.NewClient(config.LLMConfig{}), nil)
}

func TestAnalyzeOneUsesCache(t *testing.T) {
	calls := &atomic.Int64{}
	svc := newTestService(fakeSource{calls: calls})

	r1, err := svc.AnalyzeOne("600000", false)
	require.NoError(t, err)
	assert.Equal(t, "600000", r1.Code)
	assert.Equal(t, analysis.StatusOK, r1.Status)

	// 第二次命中缓存，不再触发行情请求
	r2, err := svc.AnalyzeOne("600000", false)
	require.NoError(t, err)
	assert.Equal(t, r1.Code, r2.Code)
	assert.Equal(t, int64(1), calls.Load())
}

func TestAnalyzeOneWritesToProvidedCache(t *testing.T) {
	provider := stockdata.NewInMemoryCacheProvider()
	cfg := config.Config{HistoryDays: 120, BatchWorkers: 2, CacheTTL: time.Minute}
	svc := NewAnalyzeService(cfg, analysis.New(cfg, fakeSource{}), nil, llm.NewClient(config.LLMConfig{}), provider)

	_, err := svc.AnalyzeOne("600000", false)
	require.NoError(t, err)

	// 报告写入外部注入的缓存后端
	var cached model.Report
	require.NoError(t, provider.Get("report:600000", &cached))
	assert.Equal(t, "600000", cached.Code)
}

func TestAnalyzeOneWithFallbackComment(t *testing.T) {
	svc := newTestService(fakeSource{})

	report, err := svc.AnalyzeOne("600000", true)
	require.NoError(t, err)
	require.NotNil(t, report.LLM)
	assert.Equal(t, "fallback", report.LLM.Source)
}

func TestAnalyzeBatch(t *testing.T) {
	t.Run("部分失败不影响整体", func(t *testing.T) {
		svc := newTestService(fakeSource{fail: map[string]bool{"000002": true}})

		reports, err := svc.AnalyzeBatch([]string{"600000", "000001", "000002"})
		require.NoError(t, err)
		assert.Len(t, reports, 2)
	})

	t.Run("全部失败返回错误", func(t *testing.T) {
		svc := newTestService(fakeSource{fail: map[string]bool{"000002": true}})
		_, err := svc.AnalyzeBatch([]string{"000002"})
		assert.Error(t, err)
	})

	t.Run("空列表返回错误", func(t *testing.T) {
		svc := newTestService(fakeSource{})
		_, err := svc.AnalyzeBatch(nil)
		assert.Error(t, err)
	})
}

func TestTaskLifecycle(t *testing.T) {
	svc := newTestService(fakeSource{fail: map[string]bool{"000002": true}})

	st, created, err := svc.CreateTask([]string{"600000", "000002"}, "")
	require.NoError(t, err)
	assert.True(t, created)
	require.NotEmpty(t, st.TaskID)
	assert.Equal(t, 2, st.Total)

	require.Eventually(t, func() bool {
		cur, ok := svc.TaskStatus(st.TaskID)
		return ok && cur.Status == "done"
	}, 5*time.Second, 20*time.Millisecond)

	final, ok := svc.TaskStatus(st.TaskID)
	require.True(t, ok)
	assert.Equal(t, 2, final.Done)
	assert.Len(t, final.Results, 1)
	require.Len(t, final.Errors, 1)
	assert.Contains(t, final.Errors[0], "000002")
}

func TestCreateTaskIdempotent(t *testing.T) {
	release := make(chan struct{})
	svc := newTestService(fakeSource{release: release})

	st, created, err := svc.CreateTask([]string{"600000"}, "req-1")
	require.NoError(t, err)
	assert.True(t, created)

	// 任务尚未结束，相同requestID返回同一任务
	st2, created2, err := svc.CreateTask([]string{"600000"}, "req-1")
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, st.TaskID, st2.TaskID)

	close(release)
	require.Eventually(t, func() bool {
		cur, ok := svc.TaskStatus(st.TaskID)
		return ok && cur.Status == "done"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestTaskCancel(t *testing.T) {
	release := make(chan struct{})
	svc := newTestService(fakeSource{release: release})

	st, _, err := svc.CreateTask([]string{"600000", "000001"}, "")
	require.NoError(t, err)

	canceled, ok := svc.CancelTask(st.TaskID)
	require.True(t, ok)
	assert.Equal(t, "canceled", canceled.Status)
	close(release)

	cur, ok := svc.TaskStatus(st.TaskID)
	require.True(t, ok)
	assert.Equal(t, "canceled", cur.Status)
	assert.Empty(t, cur.Results)
}

func TestTaskNotFound(t *testing.T) {
	svc := newTestService(fakeSource{})
	_, ok := svc.TaskStatus("missing")
	assert.False(t, ok)
	_, ok = svc.CancelTask("missing")
	assert.False(t, ok)
}

func TestCreateTaskEmptyCodes(t *testing.T) {
	svc := newTestService(fakeSource{})
	_, _, err := svc.CreateTask(nil, "")
	assert.Error(t, err)
}
