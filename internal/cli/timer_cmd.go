package cli

import (
	"errors"
	"fmt"

	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/tui"
	"github.com/spf13/cobra"
)

func newTimerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Start, stop and watch timers",
	}

	cmd.AddCommand(
		newTimerStartCmd(app),
		newTimerStopCmd(app),
		newTimerStatusCmd(app),
		newTimerWatchCmd(app),
	)

	return cmd
}

func newTimerStartCmd(app *App) *cobra.Command {
	var projectID int64
	var description string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a timer",
		Long:  "Start a timer. Without --project the project of the most recent entry is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !changed(cmd, "project") {
				pid, ok, err := app.Timer.DefaultProject(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("no previous entry to pick a project from; pass --project")
				}
				projectID = pid
			}

			id, ok, err := app.Timer.Start(ctx, projectID, description)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("project %d not found", projectID)
			}

			p, err := requireProject(ctx, app, projectID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started timer on %s [entry %d]\n", p.Name, id)
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project ID")
	cmd.Flags().StringVarP(&description, "description", "d", "", "What you are working on")

	return cmd
}

func newTimerStopCmd(app *App) *cobra.Command {
	var projectID, entryID int64

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running timer",
		Long:  "Stop a running timer. Without flags the only running timer is stopped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				minutes int64
				ok      bool
				err     error
			)
			switch {
			case changed(cmd, "entry"):
				minutes, ok, err = app.Timer.StopEntry(ctx, entryID)
				if err == nil && !ok {
					err = fmt.Errorf("entry %d is not running", entryID)
				}
			case changed(cmd, "project"):
				minutes, ok, err = app.Timer.Stop(ctx, projectID)
				if err == nil && !ok {
					err = fmt.Errorf("no timer is running for project %d", projectID)
				}
			default:
				running, rerr := app.Timer.Running(ctx)
				if rerr != nil {
					return rerr
				}
				switch len(running) {
				case 0:
					return errors.New("no timer is running")
				case 1:
					minutes, ok, err = app.Timer.StopEntry(ctx, running[0].Entry.ID)
					if err == nil && !ok {
						err = errors.New("no timer is running")
					}
				default:
					return fmt.Errorf("%d timers are running; pass --project or --entry", len(running))
				}
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stopped timer: %s\n", report.FormatTotalDuration(minutes))
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Stop the timer of this project")
	cmd.Flags().Int64Var(&entryID, "entry", 0, "Stop this running entry")
	cmd.MarkFlagsMutuallyExclusive("project", "entry")

	return cmd
}

func newTimerStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show running timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			running, err := app.Timer.Running(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(running) == 0 {
				fmt.Fprintln(out, "No timer is running.")
				return nil
			}

			rows := make([][]string, 0, len(running))
			for _, rt := range running {
				rows = append(rows, []string{
					fmt.Sprint(rt.Entry.ID),
					rt.Entry.ProjectName,
					rt.Entry.Description,
					rt.Entry.StartTime.Format(dateTimeLayout),
					styleGreen.Render(report.FormatDuration(int64(rt.Elapsed.Seconds()))),
				})
			}
			fmt.Fprint(out, renderTable([]string{"Entry", "Project", "Description", "Started", "Elapsed"}, rows))
			return nil
		},
	}
}

func newTimerWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live view of running timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Interactive {
				return errors.New("watch needs a terminal; use \"timer status\" instead")
			}
			return tui.RunWatch(cmd.Context(), app.Timer)
		},
	}
}
