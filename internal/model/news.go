package model

// NewsItem 个股公告或媒体新闻条目，供大模型点评补充上下文
type NewsItem struct {
	Title  string `json:"title"`
	Time   string `json:"time"` // YYYY-MM-DD
	Source string `json:"source"`
}
