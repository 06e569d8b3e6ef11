package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	purgeOlderThan int
	runOnce        bool
)

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Deliver or clean up queued domain events",
}

var outboxRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Publish queued events until interrupted",
	Long: `Poll the outbox and publish group and member events to the event bus.
Commands already flush the outbox when they finish; run this to retry
messages whose delivery failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.OutboxProcessor == nil {
			return fmt.Errorf("app not initialized")
		}

		ctx := cmd.Context()
		if runOnce {
			if err := app.OutboxProcessor.ProcessOnce(ctx); err != nil {
				return fmt.Errorf("failed to relay outbox: %w", err)
			}
		} else {
			if err := app.OutboxProcessor.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			app.OutboxProcessor.Stop()
		}

		stats := app.OutboxProcessor.GetStats()
		Line(cmd.OutOrStdout(), "published: %d  failed: %d  dead: %d", stats.PublishedCount, stats.FailedCount, stats.DeadCount)
		return nil
	},
}

var outboxPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete published events past the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.OutboxRepo == nil {
			return fmt.Errorf("app not initialized")
		}

		days := purgeOlderThan
		if days <= 0 {
			days = app.OutboxRetentionDays
		}
		deleted, err := app.OutboxRepo.DeleteOld(cmd.Context(), days)
		if err != nil {
			return fmt.Errorf("failed to purge outbox: %w", err)
		}
		Line(cmd.OutOrStdout(), "Deleted %d published events older than %d days", deleted, days)
		return nil
	},
}

func init() {
	outboxRunCmd.Flags().BoolVar(&runOnce, "once", false, "relay one batch and exit")
	outboxPurgeCmd.Flags().IntVar(&purgeOlderThan, "older-than", 0, "retention in days (defaults to OUTBOX_RETENTION_DAYS)")
	outboxCmd.AddCommand(outboxRunCmd)
	outboxCmd.AddCommand(outboxPurgeCmd)
	rootCmd.AddCommand(outboxCmd)
}
