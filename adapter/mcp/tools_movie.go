package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/catalog/application/commands"
	"github.com/felixgeelhaar/cinema/internal/catalog/application/queries"
	"github.com/felixgeelhaar/mcp-go"
)

type movieAddInput struct {
	Name            string `json:"name" jsonschema:"required"`
	DurationMinutes int    `json:"duration_minutes" jsonschema:"required"`
	ThreeD          bool   `json:"three_d,omitempty"`
}

type movieAddOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func registerMovieTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("movie.add").
		Description("Add a movie to the catalog").
		Handler(func(ctx context.Context, input movieAddInput) (*movieAddOutput, error) {
			return addMovie(ctx, app, input)
		})

	srv.Tool("movie.list").
		Description("List the movie catalog").
		Handler(func(ctx context.Context, input struct{}) ([]queries.MovieDTO, error) {
			return listMovies(ctx, app)
		})

	return nil
}

func addMovie(ctx context.Context, app *cli.App, input movieAddInput) (*movieAddOutput, error) {
	if app == nil || app.AddMovieHandler == nil {
		return nil, errors.New("movie catalog requires database connection")
	}
	result, err := app.AddMovieHandler.Handle(ctx, commands.AddMovieCommand{
		Name:                          input.Name,
		DurationMinutes:               input.DurationMinutes,
		ThreeDimensionalGlassesNeeded: input.ThreeD,
	})
	if err != nil {
		return nil, err
	}
	return &movieAddOutput{ID: result.MovieID.String(), Name: result.Name}, nil
}

func listMovies(ctx context.Context, app *cli.App) ([]queries.MovieDTO, error) {
	if app == nil || app.ListMoviesHandler == nil {
		return nil, errors.New("movie catalog requires database connection")
	}
	return app.ListMoviesHandler.Handle(ctx, queries.ListMoviesQuery{})
}
