package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okonenko/pharos/internal/probe"
)

type Config struct {
	API        APIConfig
	Telegram   TelegramConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Security   SecurityConfig
	Collector  CollectorConfig
	Monitoring MonitoringConfig
}

type APIConfig struct {
	Port        string
	Host        string
	Environment string
}

type TelegramConfig struct {
	APIHost string
	Token   string
	ChatID  string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type SecurityConfig struct {
	AllowedOrigin  string
	TrustedProxies []string
}

type CollectorConfig struct {
	RelayURL           string
	PageURL            string
	GeoPrimaryURL      string
	GeoFallbackURL     string
	GeoPrimaryTimeout  time.Duration
	GeoFallbackTimeout time.Duration
	StartDelay         time.Duration
	SendTimeout        time.Duration
}

type MonitoringConfig struct {
	LogLevel string
}

func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			Port:        getEnv("API_PORT", "8080"),
			Host:        getEnv("API_HOST", "0.0.0.0"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Telegram: TelegramConfig{
			APIHost: getEnv("TELEGRAM_API_HOST", "https://api.telegram.org"),
			Token:   getEnv("TELEGRAM_TOKEN", ""),
			ChatID:  getEnv("CHAT_ID", ""),
			Timeout: getEnvDuration("TELEGRAM_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 60),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Security: SecurityConfig{
			AllowedOrigin:  getEnv("ALLOWED_ORIGIN", "*"),
			TrustedProxies: getEnvSlice("TRUSTED_PROXIES", []string{}),
		},
		Collector: CollectorConfig{
			RelayURL:           getEnv("RELAY_URL", "http://localhost:8080/"),
			PageURL:            getEnv("PAGE_URL", ""),
			GeoPrimaryURL:      getEnv("GEO_PRIMARY_URL", probe.DefaultGeoPrimaryURL),
			GeoFallbackURL:     getEnv("GEO_FALLBACK_URL", probe.DefaultGeoFallbackURL),
			GeoPrimaryTimeout:  getEnvDuration("GEO_PRIMARY_TIMEOUT", probe.DefaultGeoPrimaryTimeout),
			GeoFallbackTimeout: getEnvDuration("GEO_FALLBACK_TIMEOUT", probe.DefaultGeoFallbackTimeout),
			StartDelay:         getEnvDuration("TRACK_DELAY", 1*time.Second),
			SendTimeout:        getEnvDuration("SEND_TIMEOUT", 10*time.Second),
		},
		Monitoring: MonitoringConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.RateLimit.Requests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	if c.Collector.RelayURL == "" {
		return fmt.Errorf("RELAY_URL is required")
	}
	return nil
}

// Validate checks the fields only the relay deployable needs; the collector
// binary runs without bot credentials.
func (t *TelegramConfig) Validate() error {
	if t.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if t.ChatID == "" {
		return fmt.Errorf("CHAT_ID is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
