package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

var exportRoom string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Publish room schedules to the CalDAV calendar",
	Long: `Push the full schedule of every room, or of one room, to the configured
CalDAV calendar. Events that were cancelled are removed from the calendar.

Requires CALDAV_URL.

Examples:
  cinema schedule export
  cinema schedule export --room 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetRoomScheduleHandler == nil || app.ListRoomsHandler == nil {
			return fmt.Errorf("schedule commands require database connection")
		}
		if app.CalendarPublisher == nil {
			return fmt.Errorf("calendar export requires CALDAV_URL")
		}

		ctx := cmd.Context()
		rooms := []string{exportRoom}
		if exportRoom == "" {
			summaries, err := app.ListRoomsHandler.Handle(ctx, queries.ListRoomsQuery{})
			if err != nil {
				return fmt.Errorf("failed to list rooms: %w", err)
			}
			rooms = rooms[:0]
			for _, s := range summaries {
				rooms = append(rooms, s.RoomID)
			}
		}

		out := cmd.OutOrStdout()
		for _, room := range rooms {
			events, err := app.GetRoomScheduleHandler.Handle(ctx, queries.GetRoomScheduleQuery{RoomID: room})
			if err != nil {
				return fmt.Errorf("failed to get room %s: %w", room, err)
			}
			result, err := app.CalendarPublisher.PublishRoom(ctx, room, events)
			if err != nil {
				return fmt.Errorf("failed to export room %s: %w", room, err)
			}
			fmt.Fprintf(out, "Room %s: %d created, %d updated, %d deleted, %d failed\n",
				room, result.Created, result.Updated, result.Deleted, result.Failed)
		}
		if len(rooms) == 0 {
			fmt.Fprintln(out, "No rooms to export.")
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportRoom, "room", "r", "", "only export this room")
}
