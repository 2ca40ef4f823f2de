// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every setting the application reads.
type Config struct {
	AppEnv   string
	LogLevel string

	BotToken     string
	PaymentToken string
	AdminIDs     []int64
	TGBaseURL    string
	PollTimeout  time.Duration

	DatabaseURL    string
	DatabaseSchema string
	SQLitePath     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTLS      bool

	HTTPListenAddr   string
	MetricsNamespace string
}

// Load reads configuration from the environment, applying defaults for
// optional settings and failing on missing required ones.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:   getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		BotToken:     os.Getenv("BOT_TOKEN"),
		PaymentToken: os.Getenv("PAYMENT_TOKEN"),
		TGBaseURL:    getenv("TELEGRAM_API_BASE_URL", ""),
		PollTimeout:  getdur("POLL_TIMEOUT", 25*time.Second),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseSchema: getenv("DATABASE_SCHEMA", ""),
		SQLitePath:     getenv("SQLITE_PATH", "techshop.db"),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getint("REDIS_DB", 0),
		RedisTLS:      getbool("REDIS_TLS", false),

		HTTPListenAddr:   getenv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsNamespace: getenv("METRICS_NAMESPACE", "techshop"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	ids, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("parse ADMIN_IDS: %w", err)
	}
	cfg.AdminIDs = ids

	return cfg, nil
}

// parseAdminIDs splits a comma-separated list of Telegram user IDs.
func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getbool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getdur(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
