package outbox

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/cinema/adapter/cli"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/outbox"
	"github.com/spf13/cobra"
)

// Cmd is the outbox command group
var Cmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect and drain the event outbox",
	Long: `Schedule events are stored in an outbox before they reach the broker.
These commands publish pending messages and report on the backlog.`,
}

var processDiscard bool

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Publish pending outbox messages once",
	Long: `Publish one batch of pending outbox messages.

With --discard the batch is marked published without reaching any
subscriber, which clears a backlog left by a retired broker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.OutboxProcessor == nil {
			return fmt.Errorf("outbox commands require database connection")
		}

		ctx := cmd.Context()
		processor := app.OutboxProcessor
		if processDiscard {
			processor = outbox.NewProcessor(app.OutboxRepo, eventbus.NewNoopPublisher(nil), outbox.DefaultProcessorConfig(), nil)
		}
		result, err := processor.ProcessOnce(ctx)
		if err != nil {
			return fmt.Errorf("failed to process outbox: %w", err)
		}
		pending, err := app.OutboxRepo.CountPending(ctx)
		if err != nil {
			return fmt.Errorf("failed to count pending messages: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Published %d, retrying %d, dead-lettered %d, %d pending\n",
			result.Published, result.Retrying, result.DeadLettered, pending)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show outbox backlog and processor counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.OutboxProcessor == nil {
			return fmt.Errorf("outbox commands require database connection")
		}

		pending, err := app.OutboxRepo.CountPending(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count pending messages: %w", err)
		}
		stats := app.OutboxProcessor.GetStats()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Pending:   %d\n", pending)
		fmt.Fprintf(out, "Published: %d\n", stats.PublishedCount)
		fmt.Fprintf(out, "Failed:    %d\n", stats.FailedCount)
		fmt.Fprintf(out, "Dead:      %d\n", stats.DeadCount)
		if stats.OldestMessageAt != nil {
			fmt.Fprintf(out, "Oldest:    %s\n", stats.OldestMessageAt.Format(time.RFC3339))
		}
		if stats.LastError != "" {
			fmt.Fprintf(out, "Last error: %s\n", stats.LastError)
		}
		return nil
	},
}

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete published messages older than the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.OutboxProcessor == nil {
			return fmt.Errorf("outbox commands require database connection")
		}
		if cleanupDays <= 0 {
			return fmt.Errorf("--days must be positive")
		}

		deleted, err := app.OutboxProcessor.Cleanup(cmd.Context(), time.Duration(cleanupDays)*24*time.Hour)
		if err != nil {
			return fmt.Errorf("failed to clean up outbox: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d published messages\n", deleted)
		return nil
	},
}

func init() {
	processCmd.Flags().BoolVar(&processDiscard, "discard", false, "mark messages published without delivering them")
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 7, "retention in days")

	Cmd.AddCommand(processCmd)
	Cmd.AddCommand(statsCmd)
	Cmd.AddCommand(cleanupCmd)
}
