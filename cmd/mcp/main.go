// Command mcp serves the cinema scheduling tools over the Model Context
// Protocol.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/cinema/internal/app"
	mcpinternal "github.com/felixgeelhaar/cinema/internal/mcp"
	"github.com/felixgeelhaar/cinema/pkg/config"
	"github.com/felixgeelhaar/cinema/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := observability.LoggerFromEnv("cinema-mcp")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		return err
	}
	defer container.Close()

	if cfg.OutboxProcessorEnabled {
		if err := container.OutboxProcessor.Start(ctx); err != nil {
			logger.Error("failed to start outbox processor", "error", err)
			return err
		}
		defer container.OutboxProcessor.Stop()
	}

	logger.Info("serving cinema tools",
		"addr", cfg.MCPAddr,
		"auth", cfg.MCPAuthToken != "",
		"calendar", container.CalendarPublisher != nil,
	)

	err = mcpinternal.Serve(ctx, cfg, mcpinternal.NewCLIApp(container), logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		return err
	}
	return nil
}
