package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars blanks every variable Load reads. Empty values count as unset.
func clearEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"APP_ENV", "LOG_LEVEL",
		"DATABASE_URL", "DATABASE_DRIVER", "SQLITE_PATH",
		"REDIS_URL", "SNAPSHOT_TTL",
		"RABBITMQ_URL", "RABBITMQ_QUEUE", "PUBLISHER_BREAKER_FAILURES", "PUBLISHER_BREAKER_TIMEOUT",
		"CLEANING_SLOT_MINUTES", "SHOW_START_WINDOW", "PREMIERE_START_WINDOW",
		"OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_RETRIES",
		"OUTBOX_STATS_INTERVAL", "OUTBOX_RETENTION_DAYS", "OUTBOX_CLEANUP_INTERVAL",
		"OUTBOX_BACKLOG_LIMIT", "OUTBOX_PROCESSOR_ENABLED", "WORKER_HEALTH_ADDR",
		"MCP_ADDR", "MCP_AUTH_TOKEN",
		"CALDAV_URL", "CALDAV_USERNAME", "CALDAV_PASSWORD", "CALDAV_CALENDAR_PATH",
	}
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)

	// Local mode is enabled when no DATABASE_URL is set
	assert.True(t, cfg.LocalMode)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Empty(t, cfg.SQLitePath)

	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.SnapshotTTL)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, "cinema.calendar", cfg.RabbitMQQueue)
	assert.Equal(t, 5, cfg.PublisherBreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.PublisherBreakerTimeout)

	assert.Equal(t, 15, cfg.CleaningSlotMinutes)
	assert.Equal(t, Window{From: 9 * 60, To: 23 * 60}, cfg.ShowStartWindow)
	assert.Equal(t, Window{From: 18 * 60, To: 21 * 60}, cfg.PremiereStartWindow)

	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 5, cfg.OutboxMaxRetries)
	assert.Equal(t, 30*time.Second, cfg.OutboxStatsInterval)
	assert.Equal(t, 14, cfg.OutboxRetentionDays)
	assert.Equal(t, 24*time.Hour, cfg.OutboxCleanupInterval)
	assert.Equal(t, int64(1000), cfg.OutboxBacklogLimit)
	assert.True(t, cfg.OutboxProcessorEnabled)

	assert.Equal(t, "0.0.0.0:8081", cfg.WorkerHealthAddr)
	assert.Equal(t, "0.0.0.0:8082", cfg.MCPAddr)
	assert.Empty(t, cfg.MCPAuthToken)

	assert.False(t, cfg.CalDAVEnabled())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://cinema:secret@db:5432/cinema")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("SNAPSHOT_TTL", "10m")
	t.Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("PUBLISHER_BREAKER_FAILURES", "3")
	t.Setenv("CLEANING_SLOT_MINUTES", "20")
	t.Setenv("SHOW_START_WINDOW", "10:30-22:00")
	t.Setenv("PREMIERE_START_WINDOW", "19:00-20:00")
	t.Setenv("OUTBOX_BATCH_SIZE", "25")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "false")
	t.Setenv("CALDAV_URL", "https://dav.example.com")
	t.Setenv("CALDAV_CALENDAR_PATH", "/calendars/cinema/rooms/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.LocalMode)
	assert.Equal(t, "auto", cfg.DatabaseDriver)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, 10*time.Minute, cfg.SnapshotTTL)
	assert.Equal(t, 3, cfg.PublisherBreakerFailures)
	assert.Equal(t, 20, cfg.CleaningSlotMinutes)
	assert.Equal(t, Window{From: 630, To: 1320}, cfg.ShowStartWindow)
	assert.Equal(t, Window{From: 1140, To: 1200}, cfg.PremiereStartWindow)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
	assert.False(t, cfg.OutboxProcessorEnabled)
	assert.True(t, cfg.CalDAVEnabled())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("OUTBOX_BATCH_SIZE", "lots")
	t.Setenv("SNAPSHOT_TTL", "forever")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, time.Hour, cfg.SnapshotTTL)
	assert.True(t, cfg.OutboxProcessorEnabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad show window", "SHOW_START_WINDOW", "morning"},
		{"reversed premiere window", "PREMIERE_START_WINDOW", "21:00-18:00"},
		{"negative cleaning slot", "CLEANING_SLOT_MINUTES", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		input   string
		want    Window
		wantErr bool
	}{
		{input: "09:00-23:00", want: Window{From: 540, To: 1380}},
		{input: " 18:00 - 21:00 ", want: Window{From: 1080, To: 1260}},
		{input: "12:00-12:00", want: Window{From: 720, To: 720}},
		{input: "9-23", wantErr: true},
		{input: "24:00-23:00", wantErr: true},
		{input: "10:60-11:00", wantErr: true},
		{input: "12:00-11:00", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWindow(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindow_ContainsIsClosed(t *testing.T) {
	w := Window{From: 18 * 60, To: 21 * 60}

	assert.True(t, w.Contains(18*60))
	assert.True(t, w.Contains(21*60))
	assert.True(t, w.Contains(19*60+30))
	assert.False(t, w.Contains(18*60-1))
	assert.False(t, w.Contains(21*60+1))
	assert.Equal(t, "18:00-21:00", w.String())
}
