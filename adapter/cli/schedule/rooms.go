package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List rooms with scheduled events",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListRoomsHandler == nil {
			return fmt.Errorf("schedule commands require database connection")
		}

		rooms, err := app.ListRoomsHandler.Handle(cmd.Context(), queries.ListRoomsQuery{})
		if err != nil {
			return fmt.Errorf("failed to list rooms: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(rooms) == 0 {
			fmt.Fprintln(out, "No rooms have scheduled events.")
			return nil
		}
		for _, r := range rooms {
			fmt.Fprintf(out, "Room %-10s %d events\n", r.RoomID, r.ActiveCount)
		}
		return nil
	},
}
