package main

import (
	"bufio"
	"log"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stock-analysis-backend/internal/analysis"
	"stock-analysis-backend/internal/cache"
	"stock-analysis-backend/internal/config"
	"stock-analysis-backend/internal/handler"
	"stock-analysis-backend/internal/holiday"
	"stock-analysis-backend/internal/llm"
	"stock-analysis-backend/internal/scheduler"
	"stock-analysis-backend/internal/service"
	"stock-analysis-backend/internal/stockdata"
	"stock-analysis-backend/internal/store"
)

func init() {
	// 手动加载 .env 文件
	file, err := os.Open(".env")
	if err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			os.Setenv(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
		}
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cfg := config.Load()

	// 缓存：配置了Redis则使用，否则降级为进程内缓存
	var cacheProvider stockdata.CacheProvider
	if cfg.RedisAddr != "" {
		if provider, err := cache.NewRedisProvider(cfg.RedisAddr); err != nil {
			log.Printf("Redis不可用，使用内存缓存: %v", err)
		} else {
			log.Printf("Redis连接成功: %s", cfg.RedisAddr)
			stockdata.SetCacheProvider(provider)
			cacheProvider = provider
			defer provider.Close()
		}
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer st.Close()

	if err := holiday.LoadCustomHolidays(os.Getenv("HOLIDAY_FILE")); err != nil {
		log.Printf("加载节假日配置失败: %v", err)
	}

	analyzer := analysis.New(cfg, nil)
	llmClient := llm.NewClient(cfg.LLM)
	if llmClient.Enabled() {
		log.Printf("大模型点评已启用: %s", cfg.LLM.Model)
	} else {
		log.Println("未配置LLM_API_KEY，点评使用规则兜底")
	}
	// 报告缓存与行情缓存走同一后端，未配置Redis时构造函数内降级为内存缓存
	svc := service.NewAnalyzeService(cfg, analyzer, st, llmClient, cacheProvider)

	scheduler.StartSymbolRefresh()
	scheduler.StartPoolWarmup(svc, st)

	r := gin.Default()

	// 配置 CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := handler.New(svc, st)

	// 注册路由
	api := r.Group("/api")
	{
		// 行情相关
		api.GET("/symbols", h.GetSymbols)
		api.GET("/symbols/:code/kline", h.GetKline)
		api.GET("/symbols/:code/snapshot", h.GetSnapshot)

		// 技术分析
		api.POST("/analyze", h.Analyze)
		api.POST("/analyze/batch", h.AnalyzeBatch)
		api.POST("/tasks", h.CreateTask)
		api.GET("/tasks/:id", h.GetTask)
		api.DELETE("/tasks/:id", h.CancelTask)

		// 自选池与历史
		api.GET("/pools", h.ListPools)
		api.POST("/pools", h.CreatePool)
		api.PUT("/pools/:id", h.RenamePool)
		api.DELETE("/pools/:id", h.DeletePool)
		api.GET("/pools/:id/members", h.ListMembers)
		api.POST("/pools/:id/members", h.AddMember)
		api.DELETE("/pools/:id/members/:code", h.RemoveMember)
		api.GET("/history", h.GetHistory)

		// 运行时配置
		api.GET("/config", h.GetConfig)
		api.PUT("/config", h.UpdateConfig)
	}

	log.Printf("服务启动在端口 %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}
