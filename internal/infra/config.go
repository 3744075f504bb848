package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AuthMode selects which Authenticator implementation the gateway runs with.
const (
	AuthModeRemote = "remote"
	AuthModeLocal  = "local"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	RecordServiceURL string
	DirectoryURL     string
	DirectoryPath    string
	AuthMode         string
	AllowedOrigins   []string
	LoginRatePerMin  int
	RequestTimeout   time.Duration
	NoticeTTL        time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		RecordServiceURL: os.Getenv("RECORD_SERVICE_URL"),
		DirectoryURL:     os.Getenv("DIRECTORY_URL"),
		DirectoryPath:    getEnv("DIRECTORY_PATH", "credentials.json"),
		AuthMode:         getEnv("AUTH_MODE", AuthModeRemote),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "*")),
		LoginRatePerMin:  getEnvInt("LOGIN_RATE_PER_MINUTE", 10),
		RequestTimeout:   time.Second * time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)),
		NoticeTTL:        time.Second * time.Duration(getEnvInt("NOTICE_TTL_SECONDS", 4)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.RecordServiceURL == "" {
		return nil, fmt.Errorf("RECORD_SERVICE_URL is required")
	}

	if cfg.LoginRatePerMin <= 0 {
		return nil, fmt.Errorf("LOGIN_RATE_PER_MINUTE must be positive, got %d", cfg.LoginRatePerMin)
	}

	switch cfg.AuthMode {
	case AuthModeRemote, AuthModeLocal:
	default:
		return nil, fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeRemote, AuthModeLocal, cfg.AuthMode)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
