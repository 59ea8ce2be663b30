package stockdata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stock-analysis-backend/internal/model"
)

const klineCacheTTL = 10 * time.Minute

// GetDailyKline 获取日K线，东方财富优先，新浪兜底
func GetDailyKline(code string, limit int) ([]model.PriceBar, error) {
	if limit <= 0 {
		limit = 250
	}
	cacheKey := fmt.Sprintf("kline:daily:%s:%d", code, limit)
	var cached []model.PriceBar
	if err := getCacheProvider().Get(cacheKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	bars, err := getKlineFromEM(code, "101", limit)
	if err != nil || len(bars) == 0 {
		bars, err = getKlineFromSina(code, "240", limit)
	}
	if err != nil {
		return nil, fmt.Errorf("获取日K线失败: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("日K线数据为空")
	}

	_ = getCacheProvider().Set(cacheKey, bars, klineCacheTTL)
	return bars, nil
}

// GetMinuteKline 获取5分钟K线，用于盘中快照分析
func GetMinuteKline(code string, limit int) ([]model.PriceBar, error) {
	if limit <= 0 {
		limit = 120
	}
	cacheKey := fmt.Sprintf("kline:minute:%s:%d", code, limit)
	var cached []model.PriceBar
	if err := getCacheProvider().Get(cacheKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	bars, err := getKlineFromEM(code, "5", limit)
	if err != nil {
		return nil, fmt.Errorf("获取分钟K线失败: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("分钟K线数据为空")
	}

	_ = getCacheProvider().Set(cacheKey, bars, 2*time.Minute)
	return bars, nil
}

// GetKlineResponse 组装带名称的K线响应
func GetKlineResponse(code, period string) (*model.KlineResponse, error) {
	var bars []model.PriceBar
	var err error
	switch period {
	case "minute":
		bars, err = GetMinuteKline(code, 120)
	default:
		period = "daily"
		bars, err = GetDailyKline(code, 250)
	}
	if err != nil {
		return nil, err
	}
	name, _ := GetStockName(code)
	return &model.KlineResponse{
		Code:   code,
		Name:   name,
		Period: period,
		Data:   bars,
	}, nil
}

// secID 东方财富证券ID，沪市前缀1，深市前缀0
func secID(code string) string {
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "5") {
		return "1." + code
	}
	return "0." + code
}

// getKlineFromEM 从东方财富获取K线，klt: 101日线 102周线 5五分钟
func getKlineFromEM(code, klt string, limit int) ([]model.PriceBar, error) {
	url := fmt.Sprintf("https://push2his.eastmoney.com/api/qt/stock/kline/get?secid=%s&fields1=f1,f2,f3,f4,f5,f6&fields2=f51,f52,f53,f54,f55,f56,f57&klt=%s&fqt=1&end=20500101&lmt=%d",
		secID(code), klt, limit)

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

	var emResp struct {
		Data struct {
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &emResp); err != nil {
		return nil, err
	}

	var result []model.PriceBar
	for _, line := range emResp.Data.Klines {
		parts := strings.Split(line, ",")
		if len(parts) < 7 {
			continue
		}
		open, _ := strconv.ParseFloat(parts[1], 64)
		closePrice, _ := strconv.ParseFloat(parts[2], 64)
		high, _ := strconv.ParseFloat(parts[3], 64)
		low, _ := strconv.ParseFloat(parts[4], 64)
		volume, _ := strconv.ParseFloat(parts[5], 64)
		amount, _ := strconv.ParseFloat(parts[6], 64)

		result = append(result, model.PriceBar{
			Date:   parts[0],
			Open:   open,
			Close:  closePrice,
			High:   high,
			Low:    low,
			Volume: volume,
			Amount: amount,
		})
	}
	return result, nil
}

// getKlineFromSina 从新浪获取K线（JSONP），scale: 240日线 1680周线
func getKlineFromSina(code, scale string, limit int) ([]model.PriceBar, error) {
	symbol := sinaSymbol(code)
	url := fmt.Sprintf("https://quotes.sina.cn/cn/api/jsonp_v2.php/var__%s_%s/CN_MarketDataService.getKLineData?symbol=%s&scale=%s&ma=no&datalen=%d",
		symbol, scale, symbol, scale, limit)

	req, _ := http.NewRequest("GET", url, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://finance.sina.com.cn")

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// JSONP外壳剥离
	text := string(body)
	start := strings.Index(text, "(")
	end := strings.LastIndex(text, ")")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("响应格式错误")
	}
	jsonStr := text[start+1 : end]

	var rawData []struct {
		Day    string `json:"day"`
		Open   string `json:"open"`
		Close  string `json:"close"`
		High   string `json:"high"`
		Low    string `json:"low"`
		Volume string `json:"volume"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &rawData); err != nil {
		return nil, err
	}

	var result []model.PriceBar
	for _, item := range rawData {
		open, _ := strconv.ParseFloat(item.Open, 64)
		closePrice, _ := strconv.ParseFloat(item.Close, 64)
		high, _ := strconv.ParseFloat(item.High, 64)
		low, _ := strconv.ParseFloat(item.Low, 64)
		volume, _ := strconv.ParseFloat(item.Volume, 64)

		result = append(result, model.PriceBar{
			Date:   item.Day,
			Open:   open,
			Close:  closePrice,
			High:   high,
			Low:    low,
			Volume: volume,
			Amount: 0,
		})
	}
	return result, nil
}

// sinaSymbol 新浪行情代码，沪市sh前缀，深市sz前缀
func sinaSymbol(code string) string {
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "5") {
		return "sh" + code
	}
	return "sz" + code
}
