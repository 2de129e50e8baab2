package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/commands"
	"github.com/spf13/cobra"
)

var (
	cancelRoom  string
	cancelDate  string
	cancelStart string
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a show or block",
	Long: `Cancel the event that starts at the given time in a room.
Cancelling a slot with nothing booked is not an error.

Examples:
  cinema schedule cancel --room 1 --start 18:00
  cinema schedule cancel --room 1 --start 09:00 --date 2024-05-01`,
	Aliases: []string{"rm"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CancelRoomEventHandler == nil {
			return fmt.Errorf("schedule commands require database connection")
		}

		date, err := parseDate(cancelDate)
		if err != nil {
			return err
		}
		start, err := parseClock("start", cancelStart)
		if err != nil {
			return err
		}

		result, err := app.CancelRoomEventHandler.Handle(cmd.Context(), commands.CancelRoomEventCommand{
			RoomID:    cancelRoom,
			Date:      date,
			StartTime: start,
		})
		if err != nil {
			return fmt.Errorf("failed to cancel: %w", err)
		}

		out := cmd.OutOrStdout()
		if !result.Cancelled {
			fmt.Fprintf(out, "Nothing scheduled in room %s on %s at %s\n", cancelRoom, date, start)
			return nil
		}
		fmt.Fprintf(out, "Cancelled %v (version %d)\n", result.Event, result.Version)
		return nil
	},
}

func init() {
	cancelCmd.Flags().StringVarP(&cancelRoom, "room", "r", "", "room id (required)")
	cancelCmd.Flags().StringVarP(&cancelDate, "date", "d", "", "date (YYYY-MM-DD, default: today)")
	cancelCmd.Flags().StringVar(&cancelStart, "start", "", "start time of the event (HH:MM, required)")

	cancelCmd.MarkFlagRequired("room")
	cancelCmd.MarkFlagRequired("start")
}
