package service

import (
	"fmt"
	"log"
	"sync"

	"stock-analysis-backend/internal/analysis"
	"stock-analysis-backend/internal/config"
	"stock-analysis-backend/internal/llm"
	"stock-analysis-backend/internal/model"
	"stock-analysis-backend/internal/stockdata"
	"stock-analysis-backend/internal/store"
)

// AnalyzeService 分析服务：单标的分析、批量并发分析与异步任务
type AnalyzeService struct {
	cfg      config.Config
	analyzer *analysis.Analyzer
	store    *store.Store
	llm      *llm.Client
	cache    stockdata.CacheProvider

	mu             sync.Mutex
	tasks          map[string]*analyzeTask
	requestTaskMap map[string]string
	sem            chan struct{}
}

// NewAnalyzeService 创建分析服务
func NewAnalyzeService(cfg config.Config, analyzer *analysis.Analyzer, st *store.Store, llmClient *llm.Client, cache stockdata.CacheProvider) *AnalyzeService {
	workers := cfg.BatchWorkers
	if workers <= 0 {
		workers = 3
	}
	if cache == nil {
		cache = stockdata.NewInMemoryCacheProvider()
	}
	return &AnalyzeService{
		cfg:            cfg,
		analyzer:       analyzer,
		store:          st,
		llm:            llmClient,
		cache:          cache,
		tasks:          make(map[string]*analyzeTask),
		requestTaskMap: make(map[string]string),
		sem:            make(chan struct{}, workers),
	}
}

// AnalyzeOne 分析单只标的，命中缓存时直接返回
func (s *AnalyzeService) AnalyzeOne(code string, withLLM bool) (*model.Report, error) {
	cacheKey := "report:" + code
	var cached model.Report
	if err := s.cache.Get(cacheKey, &cached); err == nil && cached.Code != "" {
		if !withLLM || cached.LLM != nil {
			return &cached, nil
		}
	}

	report, err := s.analyzer.AnalyzeSymbol(code)
	if err != nil {
		return nil, err
	}

	if withLLM {
		var news []model.NewsItem
		if s.llm.Enabled() {
			if fetched, newsErr := stockdata.GetStockNews(code, 5); newsErr != nil {
				log.Printf("获取公告资讯失败 %s: %v", code, newsErr)
			} else {
				news = fetched
			}
			// 公告为空时补充媒体新闻
			if len(news) == 0 {
				if media, mediaErr := stockdata.GetStockMediaNews(code, 5); mediaErr == nil {
					news = media
				}
			}
		}
		report.LLM = s.llm.Score(report, news)
	}

	if s.store != nil && report.Status == analysis.StatusOK {
		if err := s.store.SaveReport(report); err != nil {
			log.Printf("保存分析历史失败 %s: %v", code, err)
		}
	}

	_ = s.cache.Set(cacheKey, report, s.cfg.CacheTTL)
	return report, nil
}

// AnalyzeBatch 并发分析多只标的，单只失败不影响其余
func (s *AnalyzeService) AnalyzeBatch(codes []string) ([]*model.Report, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("请选择至少一只标的")
	}

	results := make([]*model.Report, 0, len(codes))
	var mu sync.Mutex
	var wg sync.WaitGroup
	errChan := make(chan error, len(codes))

	for _, code := range codes {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			s.sem <- struct{}{}
			defer func() { <-s.sem }()

			report, err := s.AnalyzeOne(symbol, false)
			if err != nil {
				errChan <- fmt.Errorf("分析 %s 失败: %w", symbol, err)
				return
			}

			mu.Lock()
			results = append(results, report)
			mu.Unlock()
		}(code)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if len(errs) > 0 && len(results) == 0 {
		return nil, errs[0]
	}
	return results, nil
}
