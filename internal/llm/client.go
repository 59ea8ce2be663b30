package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"stock-analysis-backend/internal/config"
	"stock-analysis-backend/internal/model"
)

// Client 大模型点评客户端，兼容OpenAI chat/completions协议
type Client struct {
	cfg  config.LLMConfig
	http *http.Client
}

// NewClient 创建点评客户端
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled 是否配置了API Key
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Score 对分析报告打分点评，未配置或失败时回退到规则点评
func (c *Client) Score(r *model.Report, news []model.NewsItem) *model.LLMComment {
	if !c.Enabled() {
		return fallbackComment(r)
	}

	comment, err := c.requestScore(r, news)
	if err != nil {
		log.Printf("大模型点评失败 %s: %v", r.Code, err)
		return fallbackComment(r)
	}
	return comment
}

func (c *Client) requestScore(r *model.Report, news []model.NewsItem) (*model.LLMComment, error) {
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "你是一位资深的A股技术分析师。请基于给出的技术分析摘要，对该标的当前的技术面做出0-100的综合评分（50为中性），并给出一段不超过100字的点评。只返回JSON：{\"score\": 整数, \"comment\": \"点评\"}",
			},
			{
				Role:    "user",
				Content: buildPrompt(r, news),
			},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if chatResp.Error.Message != "" {
		return nil, fmt.Errorf("接口返回错误: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("接口未返回内容")
	}

	content := chatResp.Choices[0].Message.Content
	parsed, err := parseScoreJSON(content)
	if err != nil {
		return nil, err
	}
	parsed.Source = "llm"
	return parsed, nil
}

// buildPrompt 由报告摘要与近期资讯组装提示词
func buildPrompt(r *model.Report, news []model.NewsItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "标的：%s（%s）\n", r.Name, r.Code)
	b.WriteString(r.Summary)
	if len(r.TrendSignals) > 0 {
		b.WriteString("\n技术信号明细：\n")
		for _, s := range r.TrendSignals {
			b.WriteString("- " + s + "\n")
		}
	}
	if len(news) > 0 {
		b.WriteString("\n近期公告与资讯：\n")
		for i, n := range news {
			fmt.Fprintf(&b, "%d. [%s] %s（%s）\n", i+1, n.Time, n.Title, n.Source)
		}
	}
	return b.String()
}

// parseScoreJSON 从回复文本中提取{"score":..,"comment":..}
func parseScoreJSON(content string) (*model.LLMComment, error) {
	var out model.LLMComment
	if err := json.Unmarshal([]byte(content), &out); err == nil {
		return clampScore(&out), nil
	}
	start := findJSONStart(content)
	if start < 0 {
		return nil, fmt.Errorf("回复中未找到JSON")
	}
	end := findJSONEnd(content, start)
	if end <= start {
		return nil, fmt.Errorf("回复中JSON不完整")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("解析点评JSON失败: %w", err)
	}
	return clampScore(&out), nil
}

func clampScore(c *model.LLMComment) *model.LLMComment {
	if c.Score < 0 {
		c.Score = 0
	}
	if c.Score > 100 {
		c.Score = 100
	}
	return c
}

// fallbackComment 规则兜底点评，保证接口始终有输出
func fallbackComment(r *model.Report) *model.LLMComment {
	score := 50
	comment := "技术面信号中性，建议观望。"
	if r.Signal != nil {
		score = int(r.Signal.Score)
		switch r.Signal.Signal {
		case model.SignalStrongBuy, model.SignalBuy:
			comment = fmt.Sprintf("技术面偏多（%s），%s。注意仓位控制。", r.Signal.SignalCN, r.TrendStatus)
		case model.SignalStrongSell, model.SignalSell:
			comment = fmt.Sprintf("技术面偏空（%s），%s。注意回避风险。", r.Signal.SignalCN, r.TrendStatus)
		default:
			comment = fmt.Sprintf("多空信号均衡（%s），%s。建议持有观望。", r.Signal.SignalCN, r.TrendStatus)
		}
	}
	return &model.LLMComment{Score: score, Comment: comment, Source: "fallback"}
}

func findJSONStart(s string) int {
	for i, c := range s {
		if c == '{' {
			return i
		}
	}
	return -1
}

func findJSONEnd(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
