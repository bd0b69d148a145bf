package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/store"
	"github.com/spf13/cobra"
)

func newEntryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Inspect and correct time entries",
	}

	cmd.AddCommand(
		newEntryListCmd(app),
		newEntryShowCmd(app),
		newEntryEditCmd(app),
		newEntryRemoveCmd(app),
	)

	return cmd
}

func newEntryListCmd(app *App) *cobra.Command {
	var f filterFlags
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := f.filter()
			filter.Limit = limit
			rows, err := app.Store.TimeEntries(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No time entries found.")
				return nil
			}

			lines := report.Summarize(rows).Lines
			table := make([][]string, 0, len(lines))
			for _, l := range lines {
				end := report.RunningLabel
				if l.Row.EndTime != nil {
					end = l.Row.EndTime.Format("15:04")
				}
				table = append(table, []string{
					fmt.Sprint(l.Row.ID),
					l.Row.StartTime.Format(dateLayout),
					l.Row.ProjectName,
					l.Row.Description,
					l.Row.StartTime.Format("15:04"),
					end,
					l.Duration,
				})
			}
			fmt.Fprint(out, renderTable([]string{"ID", "Date", "Project", "Description", "Start", "End", "Duration"}, table))
			return nil
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many entries")

	return cmd
}

func newEntryShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one time entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := app.Store.Entry(cmd.Context(), id)
			if err != nil {
				return err
			}
			if e == nil {
				return fmt.Errorf("entry %d not found", id)
			}

			line := report.Summarize([]store.ReportRow{*e}).Lines[0]
			end := report.RunningLabel
			if e.EndTime != nil {
				end = e.EndTime.Format(dateTimeLayout)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d\n", styleBold.Render("Entry"), e.ID)
			fmt.Fprintf(out, "  Project:     %s [%d]\n", e.ProjectName, e.ProjectID)
			fmt.Fprintf(out, "  Description: %s\n", e.Description)
			fmt.Fprintf(out, "  Start:       %s\n", e.StartTime.Format(dateTimeLayout))
			fmt.Fprintf(out, "  End:         %s\n", end)
			fmt.Fprintf(out, "  Duration:    %s\n", line.Duration)
			if line.Billable {
				fmt.Fprintf(out, "  Rate:        %s\n", line.Rate)
				fmt.Fprintf(out, "  Amount:      %s\n", line.Amount)
			}
			return nil
		},
	}
}

func newEntryEditCmd(app *App) *cobra.Command {
	var description string
	var start, end *time.Time
	var projectID int64

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Correct a time entry",
		Long:  "Correct a time entry. The recorded minutes are recomputed when start or end change.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			u := store.EntryUpdate{StartTime: start, EndTime: end}
			if changed(cmd, "description") {
				u.Description = &description
			}
			if changed(cmd, "project") {
				u.ProjectID = &projectID
			}
			if u == (store.EntryUpdate{}) {
				return errors.New("nothing to update; pass at least one field flag")
			}
			if u.ProjectID != nil {
				if _, err := requireProject(cmd.Context(), app, projectID); err != nil {
					return err
				}
			}

			ok, err := app.Timer.Edit(cmd.Context(), id, u)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("entry %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().Var(newTimeValue(&start, dateTimeLayout), "start", `New start ("YYYY-MM-DD HH:MM")`)
	cmd.Flags().Var(newTimeValue(&end, dateTimeLayout), "end", `New end ("YYYY-MM-DD HH:MM"); also stops a running entry`)
	cmd.Flags().Int64Var(&projectID, "project", 0, "Move the entry to this project")

	return cmd
}

func newEntryRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a time entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := app.Timer.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("entry %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %d\n", id)
			return nil
		},
	}
}
