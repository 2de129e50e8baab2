package mcp

import (
	"context"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/mcp-go"
)

type versionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("cli.health").
		Description("Report which cinema services are wired and the outbox backlog").
		Handler(func(ctx context.Context, _ struct{}) (cli.HealthReport, error) {
			return app.Health(ctx)
		})

	srv.Tool("cli.version").
		Description("Get cinema build information").
		Handler(func(context.Context, struct{}) (versionOutput, error) {
			return versionOutput{Version: cli.Version, Commit: cli.Commit, BuildDate: cli.BuildDate}, nil
		})

	return nil
}
