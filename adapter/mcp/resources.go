package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	catalogQueries "github.com/felixgeelhaar/cinema/internal/catalog/application/queries"
	scheduleQueries "github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose catalog and schedule data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("cinema://movies").
		Name("Movies").
		Description("The movie catalog").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.ListMoviesHandler == nil {
				return nil, fmt.Errorf("movie listing requires database connection")
			}
			movies, err := app.ListMoviesHandler.Handle(ctx, catalogQueries.ListMoviesQuery{})
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, movies)
		})

	srv.Resource("cinema://rooms").
		Name("Rooms").
		Description("Rooms holding active events, with their event counts").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.ListRoomsHandler == nil {
				return nil, fmt.Errorf("schedule viewing requires database connection")
			}
			rooms, err := app.ListRoomsHandler.Handle(ctx, scheduleQueries.ListRoomsQuery{})
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, rooms)
		})

	srv.Resource("cinema://rooms/{room_id}/schedule").
		Name("Room Schedule").
		Description("Active shows and blocks of one room").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.GetRoomScheduleHandler == nil {
				return nil, fmt.Errorf("schedule viewing requires database connection")
			}
			events, err := app.GetRoomScheduleHandler.Handle(ctx, scheduleQueries.GetRoomScheduleQuery{
				RoomID: params["room_id"],
			})
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, events)
		})

	return nil
}

func jsonContent(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
