package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/adapter/cli/mcp"
	"github.com/felixgeelhaar/cinema/adapter/cli/movie"
	"github.com/felixgeelhaar/cinema/adapter/cli/outbox"
	"github.com/felixgeelhaar/cinema/adapter/cli/schedule"
	"github.com/felixgeelhaar/cinema/internal/app"
	mcpinternal "github.com/felixgeelhaar/cinema/internal/mcp"
	"github.com/felixgeelhaar/cinema/pkg/config"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	cli.SetLogger(logger)

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			// version and help still work without a database
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		if cfg.OutboxProcessorEnabled {
			if err := container.OutboxProcessor.Start(ctx); err != nil {
				logger.Error("failed to start outbox processor", "error", err)
				os.Exit(1)
			}
		}

		cliApp = mcpinternal.NewCLIApp(container)
	}

	cli.SetApp(cliApp)

	cli.AddCommand(movie.Cmd)
	cli.AddCommand(schedule.Cmd)
	cli.AddCommand(outbox.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute()
}
