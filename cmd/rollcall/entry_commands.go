package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"rollcall/internal/api"
	"rollcall/internal/journal"
	"rollcall/internal/ledger"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var record ledger.Record

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Append one attendance row to the external log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			record.Name = args[0]
			entry, err := svc.entries.AddEntry(cmd.Context(), record)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return printJSON(cmd, api.EntryResponse{Entry: api.FromEntry(entry)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted round %d for %s (entry %s, %s)\n",
				record.Round, record.Name, entry.EntryID, entry.Status)
			fmt.Fprintln(cmd.OutOrStdout(), "Delivery is unconfirmed until the next sync observes the row.")
			return nil
		},
	}

	cmd.Flags().IntVarP(&record.Round, "round", "r", 0, "Session round 1-8, or 0 for an administrative row")
	cmd.Flags().StringVar(&record.SessionDate, "date", "", "Session date, e.g. 2026-03-01")
	cmd.Flags().StringVar(&record.Spouse, "spouse", "", "Spouse name for couples")
	cmd.Flags().StringVar(&record.Residence, "region", "", "Residence region")
	cmd.Flags().StringVar(&record.Preference, "preference", "", "Stated group preference")
	cmd.Flags().StringVar(&record.Notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&record.Author, "author", "", "Row author (defaults to configured author)")
	return cmd
}

func newPlaceCommand(ctx *commandContext) *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "place <name> <group>",
		Short: "Record a placement decision for a target person",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			// Placement validates against the current view, so sync first.
			if err := svc.manager.Trigger(cmd.Context()); err != nil {
				return err
			}

			entry, err := svc.entries.Place(cmd.Context(), args[0], args[1], author)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return printJSON(cmd, api.EntryResponse{Entry: api.FromEntry(entry)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Placed %s into %s (entry %s, %s)\n",
				args[0], args[1], entry.EntryID, entry.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Row author (defaults to configured author)")
	return cmd
}

func newPendingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List journaled writes not yet observed by a sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			entries, err := svc.entries.Pending(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				views := make([]api.EntryView, 0, len(entries))
				for _, entry := range entries {
					views = append(views, api.FromEntry(entry))
				}
				return printJSON(cmd, api.EntriesResponse{Entries: views})
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No unconfirmed writes.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				view := api.FromEntry(entry)
				rows = append(rows, []string{
					strconv.FormatInt(entry.ID, 10),
					view.Record.Name,
					strconv.Itoa(view.Record.Round),
					string(entry.Status),
					entry.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "NAME", "ROUND", "STATUS", "CREATED"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newActivityCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "activity",
		Short: "Show the daemon's recent append activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			var activity api.ActivityResponse
			if err := ctx.daemonGet("/api/activity", &activity); err != nil {
				return fmt.Errorf("query daemon activity: %w (is rollcalld running?)", err)
			}

			if ctx.jsonOutput() {
				return printJSON(cmd, activity)
			}

			out := cmd.OutOrStdout()
			if len(activity.Records) == 0 {
				fmt.Fprintln(out, "No recent activity.")
				return nil
			}
			rows := make([][]string, 0, len(activity.Records))
			for _, record := range activity.Records {
				rows = append(rows, []string{
					record.Name,
					strconv.Itoa(record.Round),
					record.Notes,
					formatSubmitted(record.SubmittedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"NAME", "ROUND", "NOTES", "SUBMITTED"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func formatSubmitted(at time.Time) string {
	if at.IsZero() {
		return "-"
	}
	return at.Local().Format("2006-01-02 15:04")
}

func statusCounts(summary journal.Summary) string {
	return fmt.Sprintf("%d pending, %d submitted, %d confirmed, %d failed",
		summary.Pending, summary.Submitted, summary.Confirmed, summary.Failed)
}
