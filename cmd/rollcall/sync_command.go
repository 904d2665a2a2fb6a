package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rollcall/internal/api"
)

const (
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func colorize(value, color string, enabled bool) string {
	if !enabled {
		return value
	}
	return color + value + ansiReset
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch the attendance log and rebuild the aggregate view",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.manager.Trigger(cmd.Context()); err != nil {
				return err
			}
			status := svc.manager.Status()

			if ctx.jsonOutput() {
				return printJSON(cmd, status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d people from %d records (cycle %s)\n",
				status.People, status.RecordCount, status.CycleID)
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and journal status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var status api.DaemonStatus
			if err := ctx.daemonGet("/api/status", &status); err == nil {
				if ctx.jsonOutput() {
					return printJSON(cmd, status)
				}
				color := shouldColorize(out)
				fmt.Fprintf(out, "Daemon:     %s (pid %d)\n", colorize("running", ansiGreen, color), status.PID)
				fmt.Fprintf(out, "Sync:       %s, last outcome %s\n", status.Sync.Phase, status.Sync.LastOutcome)
				if status.Sync.LastError != "" {
					fmt.Fprintf(out, "Last error: %s\n", status.Sync.LastError)
				}
				if !status.Sync.LastCycleAt.IsZero() {
					fmt.Fprintf(out, "Last cycle: %s (cycle %s)\n",
						status.Sync.LastCycleAt.Local().Format("2006-01-02 15:04:05"), status.Sync.CycleID)
				}
				fmt.Fprintf(out, "View:       %d people from %d records\n", status.Sync.People, status.Sync.RecordCount)
				fmt.Fprintf(out, "Journal:    %d pending, %d submitted, %d confirmed, %d failed\n",
					status.Journal.Pending, status.Journal.Submitted, status.Journal.Confirmed, status.Journal.Failed)
				return nil
			}

			// Daemon unreachable; report what the journal alone can tell us.
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			summary, err := svc.store.Summarize(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return printJSON(cmd, map[string]any{
					"running": false,
					"journal": api.JournalSummary{
						Pending:   summary.Pending,
						Submitted: summary.Submitted,
						Confirmed: summary.Confirmed,
						Failed:    summary.Failed,
					},
				})
			}
			fmt.Fprintf(out, "Daemon:     %s\n", colorize("not running", ansiYellow, shouldColorize(out)))
			fmt.Fprintf(out, "Journal:    %s\n", statusCounts(summary))
			return nil
		},
	}
}
