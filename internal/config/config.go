package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	Environment string
	CORSOrigins []string

	GeminiAPIKey    string
	GeminiModel     string
	GeminiTier      string
	EmbeddingsModel string
	ProviderTimeout int // seconds

	UploadFolder string
	MaxFileSize  int64

	ChunkSize        int
	ChunkOverlap     int
	TopK             int
	MinSimilarity    float64
	MaxContextLength int
	MemoryTurns      int

	RedisAddr       string
	RateLimitReqs   int
	RateLimitWindow int

	OTELEndpoint string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		Environment: getEnv("ENVIRONMENT", "development"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),
		EmbeddingsModel: getEnv("EMBEDDINGS_MODEL", "text-embedding-004"),
		ProviderTimeout: getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60),

		UploadFolder: getEnv("UPLOAD_FOLDER", "uploads"),
		MaxFileSize:  getEnvInt64("MAX_FILE_SIZE", 16<<20), // 16MB

		ChunkSize:        getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 50),
		TopK:             getEnvInt("TOP_K", 5),
		MinSimilarity:    getEnvFloat("MIN_SIMILARITY", 0.3),
		MaxContextLength: getEnvInt("MAX_CONTEXT_LENGTH", 3000),
		MemoryTurns:      getEnvInt("MEMORY_TURNS", 10),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		OTELEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
