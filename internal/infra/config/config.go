package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL      string
	HTTPAddr         string
	APITokens        string // token:userID:role entries, comma separated
	UploadDir        string
	MaxUploadBytes   int64
	LogLevel         string
	Environment      string
	TelegramToken    string // Empty disables the admin bot
	AdminTelegramID  int64
	CronSpecStale    string
	StaleReportAfter time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables already set in the environment.
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	// Required by the HTTP server only; validated when the token table is parsed.
	cfg.APITokens = os.Getenv("API_TOKENS")

	cfg.HTTPAddr = getOrDefault("HTTP_ADDR", ":8080")
	cfg.UploadDir = getOrDefault("UPLOAD_DIR", "./uploads")

	cfg.MaxUploadBytes = 10 << 20
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		cfg.MaxUploadBytes, err = strconv.ParseInt(v, 10, 64)
		if err != nil || cfg.MaxUploadBytes <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", v)
		}
	}

	cfg.LogLevel = strings.ToLower(getOrDefault("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getOrDefault("ENVIRONMENT", "development"))

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
		}
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.CronSpecStale = getOrDefault("CRON_SPEC_STALE_SWEEP", "*/15 * * * *") // Every 15 minutes

	cfg.StaleReportAfter, err = time.ParseDuration(getOrDefault("STALE_REPORT_AFTER", "30m"))
	if err != nil || cfg.StaleReportAfter <= 0 {
		return nil, fmt.Errorf("invalid STALE_REPORT_AFTER %q", os.Getenv("STALE_REPORT_AFTER"))
	}

	return cfg, nil
}

// BotEnabled reports whether the Telegram admin bot should run.
func (c *AppConfig) BotEnabled() bool {
	return c.TelegramToken != ""
}

func getOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
