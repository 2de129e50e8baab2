// Command worker drains the schedule outbox to the broker and the room
// calendars, and exposes health and metrics endpoints.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/cinema/internal/app"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/cinema/pkg/config"
	"github.com/felixgeelhaar/cinema/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv("cinema-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("worker failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	processor := container.OutboxProcessor
	if err := processor.Start(ctx); err != nil {
		return err
	}
	consumer, err := container.NewCalendarConsumer()
	if err != nil {
		return err
	}
	if consumer != nil {
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("calendar consumer stopped", "error", err)
			}
		}()
	}

	logger.Info("worker started",
		"batch_size", cfg.OutboxBatchSize,
		"calendar", container.CalendarPublisher != nil,
		"broker", cfg.RabbitMQURL != "",
		"broker_consumer", consumer != nil,
	)

	retention := time.Duration(cfg.OutboxRetentionDays) * 24 * time.Hour
	go every(ctx, cfg.OutboxCleanupInterval, func() {
		if _, err := processor.Cleanup(ctx, retention); err != nil {
			logger.ErrorContext(ctx, "outbox cleanup failed", "error", err)
		}
	})
	go every(ctx, cfg.OutboxStatsInterval, func() {
		logStats(ctx, logger, processor.GetStats())
	})

	if cfg.WorkerHealthAddr != "" {
		srv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           healthMux(container),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("health server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down worker")
	processor.Stop()
	return nil
}

// every calls fn on each tick of interval until ctx is done. A non-positive
// interval disables the loop.
func every(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// processorStatus is the /healthz body.
type processorStatus struct {
	Status          string     `json:"status"`
	Running         bool       `json:"running"`
	Published       uint64     `json:"published"`
	Failed          uint64     `json:"failed"`
	Dead            uint64     `json:"dead"`
	LagSeconds      float64    `json:"lag_seconds"`
	LastProcessedAt *time.Time `json:"last_processed_at,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
}

func healthMux(container *app.Container) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		stats := container.OutboxProcessor.GetStats()
		status := processorStatus{
			Status:          "ok",
			Running:         stats.IsRunning,
			Published:       stats.PublishedCount,
			Failed:          stats.FailedCount,
			Dead:            stats.DeadCount,
			LagSeconds:      stats.LagSeconds,
			LastProcessedAt: stats.LastProcessedAt,
			LastError:       stats.LastError,
		}
		w.Header().Set("Content-Type", "application/json")
		if !stats.IsRunning {
			status.Status = "stopped"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	mux.Handle("/readyz", container.Health.Handler(2*time.Second))
	mux.Handle("/metrics", container.Prometheus.Handler())
	return mux
}

func logStats(ctx context.Context, logger *slog.Logger, stats outbox.Stats) {
	logger.InfoContext(ctx, "outbox stats",
		"running", stats.IsRunning,
		"published", stats.PublishedCount,
		"failed", stats.FailedCount,
		"dead", stats.DeadCount,
		"lag_seconds", stats.LagSeconds,
		"oldest_message_at", stats.OldestMessageAt,
		"last_error", stats.LastError,
	)
}
