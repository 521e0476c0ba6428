package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     string
	DBFile   string
	LogLevel string

	// S3 / object storage for submitted answer images
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Provider credentials
	GeminiAPIKey     string
	OCRSpaceAPIKey   string
	OpenRouterAPIKey string

	// Registry cache
	RegistryRefreshInterval time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		DBFile:                  getEnv("DB_FILE", "data/evaluator.db"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		S3Endpoint:              getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:           getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey:       getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:            getEnv("S3_BUCKET_NAME", "answer-images"),
		S3UseSSL:                getEnv("S3_USE_SSL", "false") == "true",
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		OCRSpaceAPIKey:          getEnv("OCRSPACE_API_KEY", ""),
		OpenRouterAPIKey:        getEnv("OPENROUTER_API_KEY", ""),
		RegistryRefreshInterval: getEnvDuration("REGISTRY_REFRESH_INTERVAL", 5*time.Minute),
	}

	if cfg.GeminiAPIKey == "" && cfg.OCRSpaceAPIKey == "" && cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("at least one of GEMINI_API_KEY, OCRSPACE_API_KEY or OPENROUTER_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
