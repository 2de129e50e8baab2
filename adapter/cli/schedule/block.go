package schedule

import (
	"fmt"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/commands"
	"github.com/spf13/cobra"
)

var (
	blockRoom  string
	blockDate  string
	blockStart string
	blockEnd   string
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Make a room unavailable",
	Long: `Block a room for a period, for maintenance for instance. Blocks have
no cleaning slot.

Examples:
  cinema schedule block --room 1 --start 09:00 --end 12:00
  cinema schedule block --room 3 --start 14:00 --end 16:30 --date 2024-05-01`,
	Aliases: []string{"unavailable"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ScheduleUnavailabilityHandler == nil {
			return fmt.Errorf("schedule commands require database connection")
		}

		date, err := parseDate(blockDate)
		if err != nil {
			return err
		}
		start, err := parseClock("start", blockStart)
		if err != nil {
			return err
		}
		end, err := parseClock("end", blockEnd)
		if err != nil {
			return err
		}

		result, err := app.ScheduleUnavailabilityHandler.Handle(cmd.Context(), commands.ScheduleUnavailabilityCommand{
			RoomID:    blockRoom,
			Date:      date,
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return fmt.Errorf("failed to block room: %w", err)
		}

		u := result.Unavailability
		fmt.Fprintf(cmd.OutOrStdout(), "Room %s unavailable on %s, %s - %s (version %d)\n",
			result.RoomID, u.Date(), u.StartTime(), u.EndTime(), result.Version)
		return nil
	},
}

func init() {
	blockCmd.Flags().StringVarP(&blockRoom, "room", "r", "", "room id (required)")
	blockCmd.Flags().StringVarP(&blockDate, "date", "d", "", "date (YYYY-MM-DD, default: today)")
	blockCmd.Flags().StringVar(&blockStart, "start", "", "start time (HH:MM, required)")
	blockCmd.Flags().StringVar(&blockEnd, "end", "", "end time (HH:MM, required)")

	blockCmd.MarkFlagRequired("room")
	blockCmd.MarkFlagRequired("start")
	blockCmd.MarkFlagRequired("end")
}
