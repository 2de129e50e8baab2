package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// HealthReport summarises which parts of the app are wired.
type HealthReport struct {
	Status        string `json:"status"`
	Calendar      bool   `json:"calendar"`
	Outbox        bool   `json:"outbox"`
	OutboxPending int64  `json:"outbox_pending"`
}

// Health reports the app wiring. The outbox backlog is read when an outbox
// repository is attached.
func (a *App) Health(ctx context.Context) (HealthReport, error) {
	report := HealthReport{
		Status:   "ok",
		Calendar: a.CalendarPublisher != nil,
		Outbox:   a.OutboxRepo != nil,
	}
	if a.OutboxRepo != nil {
		pending, err := a.OutboxRepo.CountPending(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to count pending outbox messages: %w", err)
		}
		report.OutboxPending = pending
	}
	return report, nil
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the cinema services are wired",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}
		report, err := app.Health(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, report.Status)
		fmt.Fprintf(out, "  calendar: %s\n", onOff(report.Calendar))
		if report.Outbox {
			fmt.Fprintf(out, "  outbox:   %d pending\n", report.OutboxPending)
		} else {
			fmt.Fprintln(out, "  outbox:   disabled")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
