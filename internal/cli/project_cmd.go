package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/store"
	"github.com/sadopc/timebill/internal/tui"
	"github.com/spf13/cobra"
)

func requireProject(ctx context.Context, app *App, id int64) (*store.Project, error) {
	p, err := app.Store.Project(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("project %d not found", id)
	}
	return p, nil
}

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectUpdateCmd(app),
		newProjectRemoveCmd(app),
		newProjectEmailCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var p store.NewProject
	var rate float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		Long:  "Create a new project. Without --name on a terminal, the fields are asked for interactively.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if changed(cmd, "rate") {
				p.Rate = &rate
			}
			if strings.TrimSpace(p.Name) == "" {
				if !app.Interactive {
					return errors.New("required flag \"name\" not set")
				}
				if err := tui.ProjectForm(&p); err != nil {
					return err
				}
			}

			id, err := app.Timer.CreateProject(cmd.Context(), p)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s [%d]\n", strings.TrimSpace(p.Name), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&p.Description, "description", "", "Project description")
	cmd.Flags().StringVar(&p.DefaultEmail, "email", "", "Default recipient for reports")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Hourly rate")
	cmd.Flags().StringVar(&p.Currency, "currency", "", "Currency code (default EUR)")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Store.Projects(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects found.")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rate := "-"
				if p.Rate != nil {
					rate = report.FormatRate(report.CurrencySymbol(p.Currency), *p.Rate)
				}
				rows = append(rows, []string{
					fmt.Sprint(p.ID), p.Name, rate, p.Currency, p.DefaultEmail, p.Description,
				})
			}
			fmt.Fprint(out, renderTable([]string{"ID", "Name", "Rate", "Currency", "Email", "Description"}, rows))
			return nil
		},
	}
}

func newProjectUpdateCmd(app *App) *cobra.Command {
	var name, description, email, currency string
	var rate float64

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change project fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var u store.ProjectUpdate
			if changed(cmd, "name") {
				u.Name = &name
			}
			if changed(cmd, "description") {
				u.Description = &description
			}
			if changed(cmd, "email") {
				u.DefaultEmail = &email
			}
			if changed(cmd, "rate") {
				u.Rate = &rate
			}
			if changed(cmd, "currency") {
				u.Currency = &currency
			}
			if u == (store.ProjectUpdate{}) {
				return errors.New("nothing to update; pass at least one field flag")
			}

			ok, err := app.Timer.UpdateProject(cmd.Context(), id, u)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("project %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&email, "email", "", "New default email (empty to clear)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "New hourly rate")
	cmd.Flags().StringVar(&currency, "currency", "", "New currency code")

	return cmd
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a project with its emails and time entries",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := app.Timer.RemoveProject(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("project %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %d\n", id)
			return nil
		},
	}
}

func newProjectEmailCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Manage report recipients of a project",
	}

	cmd.AddCommand(
		newEmailAddCmd(app),
		newEmailListCmd(app),
		newEmailPrimaryCmd(app),
		newEmailRemoveCmd(app),
	)

	return cmd
}

func newEmailAddCmd(app *App) *cobra.Command {
	var primary bool

	cmd := &cobra.Command{
		Use:   "add PROJECT_ID EMAIL",
		Short: "Add a recipient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parseID(args[0])
			if err != nil {
				return err
			}
			id, ok, err := app.Timer.AddEmail(cmd.Context(), pid, args[1], primary)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("project %d not found", pid)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s [%d]\n", strings.TrimSpace(args[1]), id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&primary, "primary", false, "Make this the primary recipient")

	return cmd
}

func newEmailListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT_ID",
		Short: "List recipients, primary first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := requireProject(cmd.Context(), app, pid); err != nil {
				return err
			}
			emails, err := app.Store.ProjectEmails(cmd.Context(), pid)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(emails) == 0 {
				fmt.Fprintln(out, "No emails found.")
				return nil
			}
			rows := make([][]string, 0, len(emails))
			for _, e := range emails {
				primary := ""
				if e.IsPrimary {
					primary = styleGreen.Render("yes")
				}
				rows = append(rows, []string{fmt.Sprint(e.ID), e.Email, primary})
			}
			fmt.Fprint(out, renderTable([]string{"ID", "Email", "Primary"}, rows))
			return nil
		},
	}
}

func newEmailPrimaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "primary PROJECT_ID EMAIL_ID",
		Short: "Make a recipient the primary one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parseID(args[0])
			if err != nil {
				return err
			}
			eid, err := parseID(args[1])
			if err != nil {
				return err
			}
			ok, err := app.Timer.SetPrimaryEmail(cmd.Context(), pid, eid)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("email %d does not belong to project %d", eid, pid)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Email %d is now primary\n", eid)
			return nil
		},
	}
}

func newEmailRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm EMAIL_ID",
		Aliases: []string{"remove"},
		Short:   "Remove a recipient",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eid, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := app.Timer.RemoveEmail(cmd.Context(), eid)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("email %d not found", eid)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed email %d\n", eid)
			return nil
		},
	}
}
