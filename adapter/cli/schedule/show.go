package schedule

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/commands"
	"github.com/spf13/cobra"
)

var (
	showRoom     string
	showMovie    string
	showDate     string
	showStart    string
	showPremiere bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Schedule a show in a room",
	Long: `Schedule a screening of a catalog movie. A cleaning slot follows
every show, and only one room can be cleaned at a time.

Examples:
  cinema schedule show --room 1 --movie "Dune" --start 18:00
  cinema schedule show --room 2 --movie "Dune" --start 20:00 --date 2024-05-01 --premiere`,
	Aliases: []string{"book"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ScheduleShowHandler == nil {
			return fmt.Errorf("schedule commands require database connection")
		}

		date, err := parseDate(showDate)
		if err != nil {
			return err
		}
		start, err := parseClock("start", showStart)
		if err != nil {
			return err
		}

		result, err := app.ScheduleShowHandler.Handle(cmd.Context(), commands.ScheduleShowCommand{
			RoomID:     showRoom,
			MovieName:  showMovie,
			Date:       date,
			StartTime:  start,
			IsPremiere: showPremiere,
		})
		if err != nil {
			return fmt.Errorf("failed to schedule show: %w", err)
		}

		out := cmd.OutOrStdout()
		kind := "show"
		if showPremiere {
			kind = "premiere"
		}
		fmt.Fprintf(out, "Scheduled %s in room %s\n", kind, result.RoomID)
		fmt.Fprintln(out, strings.Repeat("-", 40))
		fmt.Fprintf(out, "  Movie:    %s\n", result.Movie.Name())
		fmt.Fprintf(out, "  Date:     %s\n", formatDate(result.Date))
		fmt.Fprintf(out, "  Show:     %s - %s\n", result.Show.StartTime(), result.Show.ShowEnd())
		fmt.Fprintf(out, "  Cleaning: %s\n", result.Show.CleaningSlot())
		fmt.Fprintf(out, "  Version:  %d\n", result.Version)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&showRoom, "room", "r", "", "room id (required)")
	showCmd.Flags().StringVarP(&showMovie, "movie", "m", "", "movie name (required)")
	showCmd.Flags().StringVarP(&showDate, "date", "d", "", "date (YYYY-MM-DD, default: today)")
	showCmd.Flags().StringVar(&showStart, "start", "", "start time (HH:MM, required)")
	showCmd.Flags().BoolVar(&showPremiere, "premiere", false, "schedule as a premiere")

	showCmd.MarkFlagRequired("room")
	showCmd.MarkFlagRequired("movie")
	showCmd.MarkFlagRequired("start")
}
