package stockdata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"stock-analysis-backend/internal/model"
)

const announcementSource = "东方财富"

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// fetchNewsBody 请求东财接口并读取完整响应体
func fetchNewsBody(rawURL string) ([]byte, error) {
	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// truncateDate 把带时分秒的时间戳裁剪到YYYY-MM-DD
func truncateDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// GetStockNews 获取个股最新公告列表
func GetStockNews(code string, limit int) ([]model.NewsItem, error) {
	if limit <= 0 {
		limit = 5
	}

	annURL := fmt.Sprintf("https://np-anotice-stock.eastmoney.com/api/security/ann?sr=-1&page_size=%d&page_index=1&ann_type=A&stock_list=%s&f_node=0&s_node=0",
		limit, code)

	body, err := fetchNewsBody(annURL)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data struct {
			List []struct {
				Title      string `json:"title"`
				NoticeDate string `json:"notice_date"`
			} `json:"list"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	news := make([]model.NewsItem, 0, len(result.Data.List))
	for _, item := range result.Data.List {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		news = append(news, model.NewsItem{
			Title:  title,
			Time:   truncateDate(item.NoticeDate),
			Source: announcementSource,
		})
	}
	return news, nil
}

func extractJSONPBody(b []byte) []byte {
	s := string(b)
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start < 0 || end < 0 || end <= start {
		return b
	}
	return []byte(s[start+1 : end])
}

func stripHTMLTags(s string) string {
	if strings.IndexByte(s, '<') < 0 {
		return s
	}
	return htmlTagRe.ReplaceAllString(s, "")
}

// GetStockMediaNews 获取东方财富个股媒体新闻（标题为主）
func GetStockMediaNews(code string, limit int) ([]model.NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}

	cb := fmt.Sprintf("jQuery%d_%d", time.Now().UnixNano(), time.Now().UnixMilli())
	paramBody := map[string]any{
		"uid":           "",
		"keyword":       strings.TrimSpace(code),
		"type":          []string{"cmsArticleWebOld"},
		"client":        "web",
		"clientType":    "web",
		"clientVersion": "curr",
		"params": map[string]any{
			"cmsArticleWebOld": map[string]any{
				"searchScope": "default",
				"sort":        "default",
				"pageIndex":   1,
				"pageSize":    limit,
				"preTag":      "<em>",
				"postTag":     "</em>",
			},
		},
	}
	paramJSON, _ := json.Marshal(paramBody)

	u, _ := url.Parse("https://search-api-web.eastmoney.com/search/jsonp")
	q := u.Query()
	q.Set("cb", cb)
	q.Set("param", string(paramJSON))
	u.RawQuery = q.Encode()

	body, err := fetchNewsBody(u.String())
	if err != nil {
		return nil, err
	}

	jsonBody := extractJSONPBody(body)
	var result struct {
		Result struct {
			CmsArticleWebOld []struct {
				Title     string `json:"title"`
				Date      string `json:"date"`
				MediaName string `json:"mediaName"`
			} `json:"cmsArticleWebOld"`
		} `json:"result"`
	}
	if err := json.Unmarshal(jsonBody, &result); err != nil {
		return nil, err
	}

	news := make([]model.NewsItem, 0, len(result.Result.CmsArticleWebOld))
	for _, item := range result.Result.CmsArticleWebOld {
		title := strings.TrimSpace(stripHTMLTags(item.Title))
		if title == "" {
			continue
		}
		source := strings.TrimSpace(item.MediaName)
		if source == "" {
			source = announcementSource
		}
		news = append(news, model.NewsItem{
			Title:  title,
			Time:   truncateDate(item.Date),
			Source: source,
		})
	}
	return news, nil
}
