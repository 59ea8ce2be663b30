package scheduler

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"stock-analysis-backend/internal/holiday"
	"stock-analysis-backend/internal/service"
	"stock-analysis-backend/internal/stockdata"
	"stock-analysis-backend/internal/store"
)

// StartSymbolRefresh 每日定时刷新证券代码列表缓存
func StartSymbolRefresh() {
	refreshTime := os.Getenv("SYMBOL_REFRESH_TIME")
	if refreshTime == "" {
		refreshTime = "04:00"
	}

	retryCount := 3
	if v := os.Getenv("SYMBOL_REFRESH_RETRY_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retryCount = n
		}
	}

	retryInterval := 10 // 分钟
	if v := os.Getenv("SYMBOL_REFRESH_RETRY_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retryInterval = n
		}
	}

	hour, minute := parseClock(refreshTime, 4, 0)

	go func() {
		for {
			next := nextRun(hour, minute)
			log.Printf("代码列表将在 %s 刷新（%v 后）", next.Format("2006-01-02 15:04:05"), time.Until(next).Round(time.Minute))
			time.Sleep(time.Until(next))
			refreshWithRetry(retryCount, retryInterval)
		}
	}()
}

// refreshWithRetry 带重试的代码列表刷新
func refreshWithRetry(maxRetry, intervalMinutes int) {
	for i := 0; i <= maxRetry; i++ {
		if i > 0 {
			log.Printf("第 %d 次重试刷新代码列表...", i)
		} else {
			log.Println("开始刷新代码列表...")
		}

		if n, err := stockdata.RefreshSymbolList(); err != nil {
			log.Printf("刷新代码列表失败: %v", err)
			if i < maxRetry {
				log.Printf("将在 %d 分钟后重试", intervalMinutes)
				time.Sleep(time.Duration(intervalMinutes) * time.Minute)
			}
		} else {
			log.Printf("代码列表刷新完成，共 %d 只", n)
			return
		}
	}
	log.Printf("代码列表刷新失败，已重试 %d 次", maxRetry)
}

// StartPoolWarmup 交易日收盘后预热自选池的分析报告并写入历史
func StartPoolWarmup(svc *service.AnalyzeService, st *store.Store) {
	warmupTime := os.Getenv("POOL_WARMUP_TIME")
	if warmupTime == "" {
		warmupTime = "15:30"
	}
	hour, minute := parseClock(warmupTime, 15, 30)

	go func() {
		for {
			next := nextRun(hour, minute)
			time.Sleep(time.Until(next))

			if !holiday.IsTradingDay(time.Now()) {
				log.Println("非交易日，跳过自选池预热")
				continue
			}
			warmupPools(svc, st)
		}
	}()
}

func warmupPools(svc *service.AnalyzeService, st *store.Store) {
	pools, err := st.ListPools()
	if err != nil {
		log.Printf("读取自选池失败: %v", err)
		return
	}

	seen := make(map[string]bool)
	var codes []string
	for _, p := range pools {
		members, err := st.ListMembers(p.ID)
		if err != nil {
			log.Printf("读取自选池成员失败 %s: %v", p.Name, err)
			continue
		}
		for _, m := range members {
			if !seen[m.Code] {
				seen[m.Code] = true
				codes = append(codes, m.Code)
			}
		}
	}
	if len(codes) == 0 {
		log.Println("自选池为空，跳过预热")
		return
	}

	log.Printf("开始预热自选池报告，共 %d 只", len(codes))
	reports, err := svc.AnalyzeBatch(codes)
	if err != nil {
		log.Printf("自选池预热失败: %v", err)
		return
	}
	log.Printf("自选池预热完成，成功 %d/%d", len(reports), len(codes))
}

func parseClock(s string, defaultHour, defaultMinute int) (int, int) {
	parts := strings.Split(s, ":")
	hour, minute := defaultHour, defaultMinute
	if len(parts) == 2 {
		if h, err := strconv.Atoi(parts[0]); err == nil && h >= 0 && h <= 23 {
			hour = h
		}
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 0 && m <= 59 {
			minute = m
		}
	}
	return hour, minute
}

func nextRun(hour, minute int) time.Time {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(next) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
