package schedule

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage room schedules",
	Long: `Book shows and maintenance blocks into rooms, cancel them, and
inspect the resulting room schedules.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(blockCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(roomCmd)
	Cmd.AddCommand(roomsCmd)
	Cmd.AddCommand(exportCmd)
}

// parseDate reads a YYYY-MM-DD flag, defaulting to today.
func parseDate(value string) (domain.Date, error) {
	if value == "" {
		return domain.DateOf(time.Now()), nil
	}
	date, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return date, nil
}

func parseClock(flag, value string) (domain.Clock, error) {
	clock, err := domain.ParseClock(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s time format, use HH:MM: %w", flag, err)
	}
	return clock, nil
}

func formatDate(date domain.Date) string {
	return date.At(0, time.UTC).Format("Monday, January 2, 2006")
}
