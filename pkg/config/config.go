package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database. An empty DatabaseURL selects local SQLite mode.
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string
	LocalMode      bool

	// Redis snapshot cache, disabled when empty
	RedisURL    string
	SnapshotTTL time.Duration

	// RabbitMQ, events fan out in-process when empty
	RabbitMQURL              string
	RabbitMQQueue            string
	PublisherBreakerFailures int
	PublisherBreakerTimeout  time.Duration

	// Scheduling rules
	CleaningSlotMinutes int
	ShowStartWindow     Window
	PremiereStartWindow Window

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxStatsInterval    time.Duration
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxBacklogLimit     int64
	OutboxProcessorEnabled bool

	// Worker
	WorkerHealthAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string

	// CalDAV export
	CalDAVURL          string
	CalDAVUsername     string
	CalDAVPassword     string
	CalDAVCalendarPath string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	showWindow, err := ParseWindow(getEnv("SHOW_START_WINDOW", "09:00-23:00"))
	if err != nil {
		return nil, fmt.Errorf("SHOW_START_WINDOW: %w", err)
	}
	premiereWindow, err := ParseWindow(getEnv("PREMIERE_START_WINDOW", "18:00-21:00"))
	if err != nil {
		return nil, fmt.Errorf("PREMIERE_START_WINDOW: %w", err)
	}

	databaseURL := getEnv("DATABASE_URL", "")
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:    databaseURL,
		DatabaseDriver: getEnv("DATABASE_DRIVER", defaultDriver(databaseURL)),
		SQLitePath:     getEnv("SQLITE_PATH", ""),
		LocalMode:      databaseURL == "",

		RedisURL:    getEnv("REDIS_URL", ""),
		SnapshotTTL: getDurationEnv("SNAPSHOT_TTL", time.Hour),

		RabbitMQURL:              getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue:            getEnv("RABBITMQ_QUEUE", "cinema.calendar"),
		PublisherBreakerFailures: getIntEnv("PUBLISHER_BREAKER_FAILURES", 5),
		PublisherBreakerTimeout:  getDurationEnv("PUBLISHER_BREAKER_TIMEOUT", 30*time.Second),

		CleaningSlotMinutes: getIntEnv("CLEANING_SLOT_MINUTES", 15),
		ShowStartWindow:     showWindow,
		PremiereStartWindow: premiereWindow,

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", 30*time.Second),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxBacklogLimit:     int64(getIntEnv("OUTBOX_BACKLOG_LIMIT", 1000)),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),

		CalDAVURL:          getEnv("CALDAV_URL", ""),
		CalDAVUsername:     getEnv("CALDAV_USERNAME", ""),
		CalDAVPassword:     getEnv("CALDAV_PASSWORD", ""),
		CalDAVCalendarPath: getEnv("CALDAV_CALENDAR_PATH", ""),
	}

	if cfg.CleaningSlotMinutes < 0 {
		return nil, fmt.Errorf("CLEANING_SLOT_MINUTES must not be negative, got %d", cfg.CleaningSlotMinutes)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CalDAVEnabled reports whether a CalDAV server is configured.
func (c *Config) CalDAVEnabled() bool {
	return c.CalDAVURL != "" && c.CalDAVCalendarPath != ""
}

// Window is a closed range of minutes after midnight.
type Window struct {
	From int
	To   int
}

// ParseWindow parses "HH:MM-HH:MM".
func ParseWindow(s string) (Window, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Window{}, fmt.Errorf("invalid window %q: expected HH:MM-HH:MM", s)
	}
	start, err := parseMinutes(from)
	if err != nil {
		return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
	}
	end, err := parseMinutes(to)
	if err != nil {
		return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
	}
	if end < start {
		return Window{}, fmt.Errorf("invalid window %q: end before start", s)
	}
	return Window{From: start, To: end}, nil
}

// Contains reports whether minutes lies in the window, bounds included.
func (w Window) Contains(minutes int) bool {
	return minutes >= w.From && minutes <= w.To
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.From/60, w.From%60, w.To/60, w.To%60)
}

func parseMinutes(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

func defaultDriver(databaseURL string) string {
	if databaseURL == "" {
		return "sqlite"
	}
	return "auto"
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
