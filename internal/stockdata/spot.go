package stockdata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stock-analysis-backend/internal/model"
)

const spotCacheTTL = 30 * time.Second

// GetSnapshot 获取实时行情快照
func GetSnapshot(code string) (*model.Snapshot, error) {
	cacheKey := "spot:" + code
	var cached model.Snapshot
	if err := getCacheProvider().Get(cacheKey, &cached); err == nil && cached.Code != "" {
		return &cached, nil
	}

	snap, err := getSnapshotFromEM(code)
	if err != nil {
		return nil, fmt.Errorf("获取实时行情失败: %w", err)
	}

	_ = getCacheProvider().Set(cacheKey, snap, spotCacheTTL)
	return snap, nil
}

// getSnapshotFromEM 东方财富个股行情接口，价格字段为实际价×100
func getSnapshotFromEM(code string) (*model.Snapshot, error) {
	url := fmt.Sprintf("https://push2.eastmoney.com/api/qt/stock/get?secid=%s&invt=2&fltt=1&fields=f43,f44,f45,f46,f47,f48,f57,f58,f60,f170",
		secID(code))

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
			Price     float64 `json:"f43"`
			High      float64 `json:"f44"`
			Low       float64 `json:"f45"`
			Open      float64 `json:"f46"`
			Volume    float64 `json:"f47"`
			Amount    float64 `json:"f48"`
			Code      string  `json:"f57"`
			Name      string  `json:"f58"`
			PrevClose float64 `json:"f60"`
			ChangePct float64 `json:"f170"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &emResp); err != nil {
		return nil, err
	}
	d := emResp.Data
	if d.Code == "" || d.Price <= 0 {
		return nil, fmt.Errorf("行情数据为空")
	}

	return &model.Snapshot{
		Code:      d.Code,
		Name:      d.Name,
		Price:     d.Price / 100,
		ChangePct: d.ChangePct / 100,
		Open:      d.Open / 100,
		High:      d.High / 100,
		Low:       d.Low / 100,
		PrevClose: d.PrevClose / 100,
		Volume:    d.Volume,
		Amount:    d.Amount,
		Time:      time.Now().Format("2006-01-02 15:04:05"),
	}, nil
}
