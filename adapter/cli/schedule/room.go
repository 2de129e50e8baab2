package schedule

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	roomID   string
	roomDate string
)

var roomCmd = &cobra.Command{
	Use:   "room",
	Short: "Show the schedule of a room",
	Long: `Display the active shows and blocks of a room, for every date or a
single one.

Examples:
  cinema schedule room --room 1
  cinema schedule room --room 1 --date 2024-05-01`,
	Aliases: []string{"view"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetRoomScheduleHandler == nil {
			return fmt.Errorf("schedule commands require database connection")
		}

		query := queries.GetRoomScheduleQuery{RoomID: roomID}
		if roomDate != "" {
			date, err := domain.ParseDate(roomDate)
			if err != nil {
				return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
			}
			query.Date = &date
		}

		events, err := app.GetRoomScheduleHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to get room schedule: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Room %s\n", roomID)
		fmt.Fprintln(out, strings.Repeat("=", 60))

		if len(events) == 0 {
			fmt.Fprintln(out, "\n  Nothing scheduled.")
			return nil
		}

		var current domain.Date
		for _, e := range events {
			if e.Date != current {
				current = e.Date
				fmt.Fprintf(out, "\n%s\n", formatDate(current))
			}
			fmt.Fprintf(out, "  %s - %s  %s\n", e.StartTime, e.EndTime, describe(e))
			if e.CleaningSlot != nil {
				fmt.Fprintf(out, "    cleaning %s\n", e.CleaningSlot)
			}
		}

		fmt.Fprintln(out, strings.Repeat("-", 60))
		fmt.Fprintf(out, "Total: %d events\n", len(events))
		return nil
	},
}

func describe(e queries.EnrichedRoomEvent) string {
	if e.Movie == nil {
		return "unavailable"
	}
	if e.Movie.ThreeDimensionalGlassesNeeded {
		return e.Movie.Name + " (3D)"
	}
	return e.Movie.Name
}

func init() {
	roomCmd.Flags().StringVarP(&roomID, "room", "r", "", "room id (required)")
	roomCmd.Flags().StringVarP(&roomDate, "date", "d", "", "only this date (YYYY-MM-DD)")

	roomCmd.MarkFlagRequired("room")
}
