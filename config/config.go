package config

import (
	"os"
	"strconv"
)

// Config holds application configuration, loaded once at startup and handed
// to components explicitly.
type Config struct {
	Port         string
	DatabaseURL  string
	BatchLimit   int
	BatchWorkers int
	BatchCron    string
	LogLevel     string
	LogFormat    string
	GeminiAPIKey string
}

// Load reads configuration from the environment, applying defaults for
// everything except DATABASE_URL (checked by the caller).
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "5002"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		BatchLimit:   getEnvInt("BATCH_LIMIT", 2000),
		BatchWorkers: getEnvInt("BATCH_WORKERS", 4),
		BatchCron:    os.Getenv("BATCH_CRON"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "console"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
