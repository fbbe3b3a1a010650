package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	TranslateAPIKey   string
	TranslateAPIURL   string
	DefaultTargetLang string
	PatternsFile      string
	PageMaxBytes      int64
	AssetMaxBytes     int64
	PdfMaxBytes       int64
	FetchTimeoutSecs  int
}

func LoadConfig() Config {
	// .env is optional; system environment wins either way
	_ = godotenv.Load()

	return Config{
		Port:              getEnv("PORT", "8000"),
		TranslateAPIKey:   getEnv("TRANSLATE_API_KEY", ""),
		TranslateAPIURL:   getEnv("TRANSLATE_API_URL", "https://api-free.deepl.com"),
		DefaultTargetLang: getEnv("DEFAULT_TARGET_LANG", "es"),
		PatternsFile:      getEnv("PATTERNS_FILE", ""),
		PageMaxBytes:      getEnvInt64("PAGE_MAX_BYTES", 2*1024*1024),
		AssetMaxBytes:     getEnvInt64("ASSET_MAX_BYTES", 10*1024*1024),
		PdfMaxBytes:       getEnvInt64("PDF_MAX_BYTES", 10*1024*1024),
		FetchTimeoutSecs:  getEnvInt("FETCH_TIMEOUT_SECS", 8),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
