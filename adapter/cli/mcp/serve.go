package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/app"
	mcpinternal "github.com/felixgeelhaar/cinema/internal/mcp"
	"github.com/felixgeelhaar/cinema/pkg/config"
	"github.com/felixgeelhaar/cinema/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Expose the movie and schedule commands as MCP tools over HTTP.
Set MCP_ADDR to change the listen address and MCP_AUTH_TOKEN to require
a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := newServerLogger(cmd.ErrOrStderr(), cfg.IsDevelopment())

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()

		if cfg.OutboxProcessorEnabled {
			if err := container.OutboxProcessor.Start(ctx); err != nil {
				return err
			}
			defer container.OutboxProcessor.Stop()
		}

		cliApp := mcpinternal.NewCLIApp(container)
		err = mcpinternal.Serve(ctx, cfg, cliApp, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func newServerLogger(out io.Writer, debug bool) *slog.Logger {
	cfg := observability.DefaultLogConfig()
	cfg.Output = out
	cfg.ServiceName = "cinema-mcp"
	cfg.ServiceVersion = cli.Version
	if debug {
		cfg.Level = observability.LogLevelDebug
	}
	return observability.NewLogger(cfg)
}
