package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-backend/internal/config"
	"stock-analysis-backend/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Code:        "600000",
		Name:        "浦发银行",
		TrendStatus: "上升趋势",
		Summary:     "技术面整体偏多。",
		Signal: &model.SignalBundle{
			Score:    72,
			Signal:   model.SignalBuy,
			SignalCN: "买入",
		},
	}
}

func TestParseScoreJSON(t *testing.T) {
	t.Run("纯JSON", func(t *testing.T) {
		out, err := parseScoreJSON(`{"score": 68, "comment": "短线偏多"}`)
		require.NoError(t, err)
		assert.Equal(t, 68, out.Score)
		assert.Equal(t, "短线偏多", out.Comment)
	})

	t.Run("JSON混在文本里", func(t *testing.T) {
		content := "根据分析结果：\n```json\n{\"score\": 35, \"comment\": \"技术面偏空\"}\n```"
		out, err := parseScoreJSON(content)
		require.NoError(t, err)
		assert.Equal(t, 35, out.Score)
		assert.Equal(t, "技术面偏空", out.Comment)
	})

	t.Run("评分截断到0-100", func(t *testing.T) {
		out, err := parseScoreJSON(`{"score": 150, "comment": "x"}`)
		require.NoError(t, err)
		assert.Equal(t, 100, out.Score)

		out, err = parseScoreJSON(`{"score": -5, "comment": "x"}`)
		require.NoError(t, err)
		assert.Equal(t, 0, out.Score)
	})

	t.Run("无JSON时报错", func(t *testing.T) {
		_, err := parseScoreJSON("今天天气不错")
		assert.Error(t, err)
	})

	t.Run("JSON不完整时报错", func(t *testing.T) {
		_, err := parseScoreJSON(`{"score": 68, "comment":`)
		assert.Error(t, err)
	})
}

func TestFallbackComment(t *testing.T) {
	out := fallbackComment(sampleReport())
	assert.Equal(t, "fallback", out.Source)
	assert.Equal(t, 72, out.Score)
	assert.Contains(t, out.Comment, "技术面偏多")

	// 无信号时给中性兜底
	out = fallbackComment(&model.Report{Code: "600000"})
	assert.Equal(t, 50, out.Score)
	assert.Contains(t, out.Comment, "观望")
}

func TestScoreDisabledClient(t *testing.T) {
	c := NewClient(config.LLMConfig{})
	out := c.Score(sampleReport(), nil)
	assert.Equal(t, "fallback", out.Source)
}

func TestScoreViaAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "浦发银行")

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"score": 66, "comment": "量价配合良好"}`}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})

	out := c.Score(sampleReport(), []model.NewsItem{
		{Title: "三季报发布", Time: "2025-10-30", Source: "公告"},
	})
	assert.Equal(t, "llm", out.Source)
	assert.Equal(t, 66, out.Score)
	assert.Equal(t, "量价配合良好", out.Comment)
}

func TestScoreAPIErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{
		BaseURL: srv.URL,
		APIKey:  "bad-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})

	out := c.Score(sampleReport(), nil)
	assert.Equal(t, "fallback", out.Source)
	assert.Equal(t, 72, out.Score)
}

func TestBuildPrompt(t *testing.T) {
	r := sampleReport()
	r.TrendSignals = []string{"MACD金叉（看涨信号）。"}
	prompt := buildPrompt(r, []model.NewsItem{
		{Title: "公司回购进展", Time: "2025-11-01", Source: "公告"},
	})

	assert.Contains(t, prompt, "浦发银行")
	assert.Contains(t, prompt, "600000")
	assert.Contains(t, prompt, "MACD金叉")
	assert.Contains(t, prompt, "公司回购进展")
}
