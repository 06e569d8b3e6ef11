// Package config loads calcompare settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Calendar providers.
const (
	ProviderStatic    = "static"
	ProviderGoogle    = "google"
	ProviderCalDAV    = "caldav"
	ProviderMicrosoft = "microsoft"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database. An empty DatabaseURL selects SQLite at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	// Redis. Empty keeps the event cache in process.
	RedisURL string

	// RabbitMQ. Empty disables publishing.
	RabbitMQURL      string
	RabbitMQExchange string

	// Outbox
	OutboxBatchSize     int
	OutboxMaxRetries    int
	OutboxRetentionDays int

	// Calendar
	CalendarProvider   string
	CalendarID         string
	CalendarStaticPath string

	// CalDAV
	CalDAVURL          string
	CalDAVUsername     string
	CalDAVPassword     string
	CalDAVPathTemplate string

	// OAuth
	OAuthClientID     string
	OAuthClientSecret string
	OAuthTokenURL     string
	OAuthTokenDir     string

	// Availability
	WorkStartHour     int
	WorkEndHour       int
	IntersectStrategy string

	// Fetching
	FetchConcurrency        int
	FetchTimeout            time.Duration
	FetchRetries            int
	BreakerFailureThreshold int
	BreakerTimeout          time.Duration
	EventCacheTTL           time.Duration
	EventCacheSize          int

	// Metrics
	MetricsEnabled  bool
	MetricsTextfile string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("SQLITE_PATH", defaultSQLitePath()),
		RedisURL:         getEnv("REDIS_URL", ""),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "calcompare.domain.events"),

		OutboxBatchSize:     getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:    getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays: getIntEnv("OUTBOX_RETENTION_DAYS", 14),

		CalendarProvider:   strings.ToLower(getEnv("CALENDAR_PROVIDER", ProviderStatic)),
		CalendarID:         getEnv("CALENDAR_ID", "primary"),
		CalendarStaticPath: getEnv("CALENDAR_STATIC_PATH", ""),

		CalDAVURL:          getEnv("CALDAV_URL", ""),
		CalDAVUsername:     getEnv("CALDAV_USERNAME", ""),
		CalDAVPassword:     getEnv("CALDAV_PASSWORD", ""),
		CalDAVPathTemplate: getEnv("CALDAV_CALENDAR_PATH_TEMPLATE", ""),

		OAuthClientID:     getEnv("OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
		OAuthTokenURL:     getEnv("OAUTH_TOKEN_URL", ""),
		OAuthTokenDir:     getEnv("OAUTH_TOKEN_DIR", defaultDataPath("tokens")),

		WorkStartHour:     getIntEnv("WORK_START_HOUR", 9),
		WorkEndHour:       getIntEnv("WORK_END_HOUR", 17),
		IntersectStrategy: strings.ToLower(getEnv("INTERSECT_STRATEGY", "sweep")),

		FetchConcurrency:        getIntEnv("FETCH_CONCURRENCY", 8),
		FetchTimeout:            getDurationEnv("FETCH_TIMEOUT", 15*time.Second),
		FetchRetries:            getIntEnv("FETCH_RETRIES", 3),
		BreakerFailureThreshold: getIntEnv("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerTimeout:          getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),
		EventCacheTTL:           getDurationEnv("EVENT_CACHE_TTL", 5*time.Minute),
		EventCacheSize:          getIntEnv("EVENT_CACHE_SIZE", 10_000),

		MetricsEnabled:  getBoolEnv("METRICS_ENABLED", false),
		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a computation.
func (c *Config) Validate() error {
	var errs []error
	if c.WorkStartHour < 0 || c.WorkEndHour > 24 || c.WorkStartHour >= c.WorkEndHour {
		errs = append(errs, fmt.Errorf("working hours must satisfy 0 <= WORK_START_HOUR < WORK_END_HOUR <= 24, got %d-%d",
			c.WorkStartHour, c.WorkEndHour))
	}
	switch c.IntersectStrategy {
	case "sweep", "pairwise":
	default:
		errs = append(errs, fmt.Errorf("unknown INTERSECT_STRATEGY %q", c.IntersectStrategy))
	}
	switch c.CalendarProvider {
	case ProviderStatic, ProviderGoogle, ProviderMicrosoft:
	case ProviderCalDAV:
		if c.CalDAVURL == "" {
			errs = append(errs, errors.New("CALDAV_URL is required for the caldav provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CALENDAR_PROVIDER %q", c.CalendarProvider))
	}
	if c.FetchConcurrency < 1 {
		errs = append(errs, errors.New("FETCH_CONCURRENCY must be at least 1"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT must be positive"))
	}
	if c.FetchRetries < 0 {
		errs = append(errs, errors.New("FETCH_RETRIES cannot be negative"))
	}
	if c.BreakerFailureThreshold < 1 {
		errs = append(errs, errors.New("BREAKER_FAILURE_THRESHOLD must be at least 1"))
	}
	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesSQLite reports whether groups are stored in the local SQLite file.
func (c *Config) UsesSQLite() bool {
	return c.DatabaseURL == ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func defaultSQLitePath() string {
	return defaultDataPath("calcompare.db")
}

func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".calcompare", name)
	}
	return filepath.Join(home, ".calcompare", name)
}
