package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for room programming workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("plan_room_day").
		Description("Plan the shows of one room for a day around its existing bookings and the shared cleaning crew.").
		Argument("room_id", "Room to plan", true).
		Argument("date", "Day to plan (YYYY-MM-DD)", true).
		Argument("movies", "Movies to fit in, comma separated (optional)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Room Programming Session",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: planRoomDayText(args["room_id"], args["date"], args["movies"]),
						},
					},
				},
			}, nil
		})

	return nil
}

func planRoomDayText(roomID, date, movies string) string {
	wanted := "any catalog movies that fit"
	if movies != "" {
		wanted = movies
	}
	return fmt.Sprintf(`Help me program room %[1]s on %[2]s.

1. Read the catalog from cinema://movies
2. Read the current bookings from cinema://rooms/%[1]s/schedule
3. Check the other rooms with cinema://rooms and schedule.room, because
   one cleaning crew serves every room and cleaning slots cannot overlap

Then propose start times for %[3]s:
- Shows cannot overlap an existing show, its cleaning slot, or a block
- Premieres must start in the premiere window
- Leave room for the cleaning slot after each show

Book the plan with schedule.show once I confirm it. If a booking is
rejected, explain the conflict and suggest the next free start time.`, roomID, date, wanted)
}
