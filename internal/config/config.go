package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置，显式传入各组件，核心计算包不读取任何全局配置
type Config struct {
	Port         string
	AllowOrigins []string

	// 数据层
	RedisAddr   string
	DBPath      string
	HistoryDays int           // 日K线拉取根数
	MinuteBars  int           // 分钟K线拉取根数
	WithMinute  bool          // 是否附带分钟级快照分析
	CacheTTL    time.Duration // 报告缓存时长

	// 批量任务
	BatchWorkers int

	LLM LLMConfig
}

// LLMConfig 大模型点评配置，APIKey为空时功能关闭
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Load 从环境变量加载配置
func Load() Config {
	return Config{
		Port:         getEnvString("PORT", "8080"),
		AllowOrigins: []string{getEnvString("ALLOW_ORIGIN", "*")},

		RedisAddr:   os.Getenv("REDIS_ADDR"),
		DBPath:      getEnvString("DB_PATH", "data/analysis.db"),
		HistoryDays: getEnvInt("HISTORY_DAYS", 120),
		MinuteBars:  getEnvInt("MINUTE_BARS", 120),
		WithMinute:  getEnvBool("WITH_MINUTE", true),
		CacheTTL:    getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),

		BatchWorkers: getEnvInt("BATCH_WORKERS", 3),

		LLM: LLMConfig{
			BaseURL: getEnvString("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:  os.Getenv("LLM_API_KEY"),
			Model:   getEnvString("LLM_MODEL", "gpt-4o-mini"),
			Timeout: getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		},
	}
}

// LLMEnabled 是否启用大模型点评
func (c Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}

// 辅助函数
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
