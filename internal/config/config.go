// Package config loads process configuration from the environment.
//
// A .env file in the working directory is loaded first (if present), then
// plain environment variables. Load returns an immutable Config value that
// is passed into constructors; there is no ambient global settings object.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full server configuration
type Config struct {
	AppName    string
	AppVersion string
	Debug      bool

	Host string
	Port int

	DatabasePath string

	SecretKey      string
	AccessTokenTTL time.Duration

	EnableAPIKeyAuth   bool
	APIKeyHeader       string
	APIKeys            []string
	ExcludeAPIKeyPaths []string

	LogLevel  string
	LogFormat string

	EnableMetrics bool

	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// Load reads configuration from .env and environment variables.
// SECRET_KEY is required; everything else has a default.
func Load() (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	cfg := &Config{
		AppName:            getEnv("APP_NAME", "Stockroom"),
		AppVersion:         getEnv("APP_VERSION", "1.0.0"),
		Debug:              getEnvBool("DEBUG", false),
		Host:               getEnv("HOST", "0.0.0.0"),
		Port:               getEnvInt("PORT", 8000),
		DatabasePath:       getEnv("DATABASE_PATH", "stockroom.db"),
		SecretKey:          os.Getenv("SECRET_KEY"),
		AccessTokenTTL:     time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		EnableAPIKeyAuth:   getEnvBool("ENABLE_API_KEY_AUTH", false),
		APIKeyHeader:       getEnv("API_KEY_HEADER", "X-API-Key"),
		APIKeys:            getEnvList("API_KEYS"),
		ExcludeAPIKeyPaths: getEnvListDefault("EXCLUDE_API_KEY_PATHS", []string{"/health", "/metrics"}),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		EnableMetrics:      getEnvBool("ENABLE_METRICS", true),
		AuthRateLimit:      getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow:     time.Duration(getEnvInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}

	if cfg.EnableAPIKeyAuth && len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("ENABLE_API_KEY_AUTH is set but API_KEYS is empty")
	}

	return cfg, nil
}

// Addr returns the host:port listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
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
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
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

// getEnvList parses a comma-separated environment variable,
// trimming whitespace and dropping empty entries
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvListDefault(key string, fallback []string) []string {
	if v := getEnvList(key); v != nil {
		return v
	}
	return fallback
}
