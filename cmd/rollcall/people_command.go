package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rollcall/internal/api"
	"rollcall/internal/ledger"
)

func newPeopleCommand(ctx *commandContext) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "people",
		Short: "List aggregated attendance per person",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			filter := ledger.Category(strings.TrimSpace(category))
			if filter != "" && !ledger.ValidCategory(filter) {
				return fmt.Errorf("unknown category %q (expected target, placed, or ongoing)", category)
			}

			if err := svc.manager.Trigger(cmd.Context()); err != nil {
				return err
			}
			snapshot := svc.manager.Snapshot()

			people := make([]*ledger.Person, 0, len(snapshot.People))
			for _, key := range ledger.SortedKeys(snapshot.People) {
				person := snapshot.People[key]
				if filter != "" && person.Category != filter {
					continue
				}
				people = append(people, person)
			}

			if ctx.jsonOutput() {
				views := make([]api.PersonView, 0, len(people))
				for _, person := range people {
					views = append(views, api.FromPerson(person))
				}
				return printJSON(cmd, api.PeopleResponse{
					People:      views,
					RecordCount: snapshot.RecordCount,
					CycleID:     snapshot.CycleID,
					CompletedAt: snapshot.CompletedAt,
				})
			}

			out := cmd.OutOrStdout()
			if len(people) == 0 {
				fmt.Fprintln(out, "No people matched.")
				return nil
			}

			rows := make([][]string, 0, len(people))
			for _, person := range people {
				rows = append(rows, []string{
					person.Name,
					formatRounds(person.Rounds),
					strconv.Itoa(person.AttendanceCount),
					string(person.Category),
					person.PlacementGroup,
					person.Region,
					yesNo(person.Graduated),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"NAME", "ROUNDS", "COUNT", "CATEGORY", "GROUP", "REGION", "GRADUATED"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d people from %d records\n", len(people), snapshot.RecordCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Filter by category (target, placed, ongoing)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one person's aggregate in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.manager.Trigger(cmd.Context()); err != nil {
				return err
			}
			person, ok := svc.manager.Person(args[0])
			if !ok {
				return fmt.Errorf("no attendance found for %q", args[0])
			}

			if ctx.jsonOutput() {
				return printJSON(cmd, api.PersonResponse{Person: api.FromPerson(person)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:       %s\n", person.Name)
			fmt.Fprintf(out, "Rounds:     %s\n", formatRounds(person.Rounds))
			fmt.Fprintf(out, "Count:      %d\n", person.AttendanceCount)
			fmt.Fprintf(out, "Category:   %s\n", person.Category)
			fmt.Fprintf(out, "Graduated:  %s\n", yesNo(person.Graduated))
			if person.PlacementGroup != "" {
				fmt.Fprintf(out, "Group:      %s\n", person.PlacementGroup)
			}
			if person.Spouse != "" {
				fmt.Fprintf(out, "Spouse:     %s\n", person.Spouse)
			}
			if person.Region != "" {
				fmt.Fprintf(out, "Region:     %s\n", person.Region)
			}
			if person.Notes != "" {
				fmt.Fprintf(out, "Notes:      %s\n", person.Notes)
			}
			return nil
		},
	}
}

func formatRounds(rounds []int) string {
	if len(rounds) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(rounds))
	for _, round := range rounds {
		parts = append(parts, strconv.Itoa(round))
	}
	return strings.Join(parts, " ")
}
