package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	// Server
	Port string
	Env  string

	// State store
	StoreDriver    string
	StoreNamespace string
	DatabaseURL    string
	RedisURL       string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiChatModel      string
	GeminiVideoModel     string
	GeminiConcurrentReqs int

	// Workers
	WorkerCount int

	// Catalog & storage
	CatalogPath string
	StoragePath string
	MaxUploadMB int

	// Limits
	AIRateLimitPerMin int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		StoreDriver:          getEnvOrDefault("STORE_DRIVER", StoreMemory),
		StoreNamespace:       getEnvOrDefault("STORE_NAMESPACE", "lectura"),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiChatModel:      getEnvOrDefault("GEMINI_CHAT_MODEL", "gemini-3-pro-preview"),
		GeminiVideoModel:     getEnvOrDefault("GEMINI_VIDEO_MODEL", "gemini-3-pro-preview"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		WorkerCount:          getEnvAsIntOrDefault("WORKER_COUNT", 3),
		CatalogPath:          getEnvOrDefault("CATALOG_PATH", ""),
		StoragePath:          getEnvOrDefault("STORAGE_PATH", "./uploads"),
		MaxUploadMB:          getEnvAsIntOrDefault("MAX_UPLOAD_MB", 200),
		AIRateLimitPerMin:    getEnvAsIntOrDefault("AI_RATE_LIMIT_PER_MIN", 30),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	case StoreRedis:
		cfg.RedisURL = mustGetEnv("REDIS_URL")
	case StoreMemory:
	default:
		panic(fmt.Sprintf("unknown STORE_DRIVER %q (want memory, redis or postgres)", cfg.StoreDriver))
	}

	// Redis also fans out WebSocket events when configured.
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	return cfg
}

// MaxUploadBytes is the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
