package stockdata

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"stock-analysis-backend/internal/model"
)

var (
	symbolCache   []model.Stock
	symbolMutex   sync.RWMutex
	lastFetchTime time.Time
	symbolTTL     = 24 * time.Hour
)

// HTTPClient 行情接口共用的HTTP客户端
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// GetSymbolList 获取A股与ETF代码列表，本地缓存24小时
func GetSymbolList() ([]model.Stock, error) {
	symbolMutex.RLock()
	if len(symbolCache) > 0 && time.Since(lastFetchTime) < symbolTTL {
		defer symbolMutex.RUnlock()
		return symbolCache, nil
	}
	symbolMutex.RUnlock()

	symbolMap := make(map[string]model.Stock)

	// 沪市主板、深市主板、沪深ETF
	sources := []struct {
		fs     string
		market func(code string) string
	}{
		{"m:1+t:2,m:1+t:23", func(string) string { return "SH" }},
		{"m:0+t:6,m:0+t:80", func(string) string { return "SZ" }},
		{"b:MK0021,b:MK0022,b:MK0023,b:MK0024", func(code string) string {
			if strings.HasPrefix(code, "5") {
				return "SH"
			}
			return "SZ"
		}},
	}
	for _, src := range sources {
		items, err := fetchEMSymbols(src.fs)
		if err != nil {
			log.Printf("获取代码列表失败 fs=%s: %v", src.fs, err)
			continue
		}
		for _, s := range items {
			s.Market = src.market(s.Code)
			symbolMap[s.Code] = s
		}
	}
	if len(symbolMap) == 0 {
		return nil, fmt.Errorf("获取代码列表失败")
	}

	result := make([]model.Stock, 0, len(symbolMap))
	for _, s := range symbolMap {
		result = append(result, s)
	}
	log.Printf("代码列表更新完成，共 %d 只", len(result))

	symbolMutex.Lock()
	symbolCache = result
	lastFetchTime = time.Now()
	symbolMutex.Unlock()
	return result, nil
}

// fetchEMSymbols 东方财富列表接口，diff可能为数组或对象
func fetchEMSymbols(fs string) ([]model.Stock, error) {
	url := fmt.Sprintf("https://push2.eastmoney.com/api/qt/clist/get?pn=1&pz=10000&fs=%s&fields=f12,f14", fs)

	req, _ := http.NewRequest("GET", url, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://quote.eastmoney.com")

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data struct {
			Diff json.RawMessage `json:"diff"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if len(result.Data.Diff) == 0 || string(result.Data.Diff) == "null" {
		return nil, fmt.Errorf("接口返回空数据")
	}

	type diffItem struct {
		F12 string `json:"f12"` // 代码
		F14 string `json:"f14"` // 名称
	}
	var diffList []diffItem
	if err := json.Unmarshal(result.Data.Diff, &diffList); err != nil {
		var diffMap map[string]diffItem
		if err2 := json.Unmarshal(result.Data.Diff, &diffMap); err2 != nil {
			return nil, err
		}
		for _, item := range diffMap {
			diffList = append(diffList, item)
		}
	}

	var stocks []model.Stock
	for _, item := range diffList {
		if item.F12 == "" {
			continue
		}
		stocks = append(stocks, model.Stock{Code: item.F12, Name: item.F14})
	}
	return stocks, nil
}

// RefreshSymbolList 强制重新拉取代码列表
func RefreshSymbolList() (int, error) {
	symbolMutex.Lock()
	lastFetchTime = time.Time{}
	symbolMutex.Unlock()

	list, err := GetSymbolList()
	return len(list), err
}

// SearchSymbols 按代码或名称搜索，最多返回100条
func SearchSymbols(keyword string) ([]model.Stock, error) {
	all, err := GetSymbolList()
	if err != nil {
		return nil, err
	}
	if keyword == "" {
		return all, nil
	}

	keyword = strings.ToUpper(keyword)
	var result []model.Stock
	for _, s := range all {
		if strings.Contains(s.Code, keyword) || strings.Contains(strings.ToUpper(s.Name), keyword) {
			result = append(result, s)
			if len(result) >= 100 {
				break
			}
		}
	}
	return result, nil
}

// GetStockInfo 按代码查询基本信息
func GetStockInfo(code string) (*model.Stock, error) {
	all, err := GetSymbolList()
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.Code == code {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("证券不存在: %s", code)
}

// GetStockName 按代码查询名称，查不到时返回空串
func GetStockName(code string) (string, error) {
	info, err := GetStockInfo(code)
	if err != nil {
		return "", err
	}
	return info.Name, nil
}
