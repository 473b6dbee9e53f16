package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	Endpoint        string
}

// Enabled reports whether artifact archiving is configured.
func (c R2Config) Enabled() bool {
	return c.BucketName != "" && (c.AccountID != "" || c.Endpoint != "")
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type HostingConfig struct {
	BaseURL      string
	APIKey       string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type TelegramConfig struct {
	Token       string
	PollTimeout int // seconds
	Debug       bool
}

type Config struct {
	DB_URL      string
	Port        string
	JWTSecret   string
	Environment string
	CorsConfig  cors.Options
	R2          R2Config
	Redis       RedisConfig
	Hosting     HostingConfig
	Telegram    TelegramConfig

	AdminIDs       []int64
	SessionBackend string // memory or redis
	SessionTTL     time.Duration
	RecordBackend  string // memory or postgres
	MaxFileSize    int64
}

// Load reads .env (or ENV_FILE) into the environment and builds the config.
// Malformed numeric values fall back to their defaults with a warning.
func Load() Config {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		slog.Info("no env file found", "file", envFile)
	} else {
		slog.Info("loaded env file", "file", envFile)
	}

	return Config{
		DB_URL:      getEnv("DB_URL", ""),
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "not-so-secret-now-is-it?"),
		Environment: getEnv("ENV", "development"),
		CorsConfig:  CorsConfig(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", ""),
			Region:          getEnv("R2_REGION", "auto"),
			Endpoint:        getEnv("R2_ENDPOINT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Hosting: HostingConfig{
			BaseURL:      getEnv("HOSTING_API_URL", "http://localhost:3000"),
			APIKey:       getEnv("HOSTING_API_KEY", ""),
			TokenURL:     getEnv("HOSTING_TOKEN_URL", ""),
			ClientID:     getEnv("HOSTING_CLIENT_ID", ""),
			ClientSecret: getEnv("HOSTING_CLIENT_SECRET", ""),
			Timeout:      getEnvDuration("HOSTING_TIMEOUT", 60*time.Second),
		},
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			PollTimeout: getEnvInt("TELEGRAM_POLL_TIMEOUT", 60),
			Debug:       getEnv("TELEGRAM_DEBUG", "") == "true",
		},
		AdminIDs:       parseAdminIDs(getEnv("ADMIN_IDS", "")),
		SessionBackend: getEnv("SESSION_BACKEND", "memory"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		RecordBackend:  getEnv("RECORD_BACKEND", "postgres"),
		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 50<<20),
	}
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	return int(getEnvInt64(key, int64(fallback)))
}

func getEnvInt64(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("invalid integer in env, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration in env, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

// parseAdminIDs reads a comma separated list of user ids, skipping entries
// that are not integers.
func parseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			slog.Warn("ignoring invalid admin id", "value", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func CorsConfig(origins string) cors.Options {
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	return cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}

// Validate checks the settings the selected backends need.
func (c Config) Validate() error {
	if c.RecordBackend == "postgres" && c.DB_URL == "" {
		return fmt.Errorf("DB_URL is required for the postgres record backend")
	}
	switch c.SessionBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	switch c.RecordBackend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown RECORD_BACKEND %q", c.RecordBackend)
	}
	if c.Hosting.BaseURL == "" {
		return fmt.Errorf("HOSTING_API_URL is required")
	}
	return nil
}
