package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sadopc/timebill/internal/config"
	"github.com/sadopc/timebill/internal/mail"
	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/store"
	"github.com/sadopc/timebill/internal/tui"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build, export and send time reports",
	}

	cmd.AddCommand(
		newReportShowCmd(app),
		newReportExportCmd(app, "pdf"),
		newReportExportCmd(app, "csv"),
		newReportExportCmd(app, "json"),
		newReportEmailCmd(app),
		newReportChartCmd(app),
	)

	return cmd
}

func newReportShowCmd(app *App) *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, opts, err := f.selection(cmd.Context(), app)
			if err != nil {
				return err
			}
			printDocument(cmd.OutOrStdout(), report.Build(rows, opts))
			return nil
		},
	}

	f.register(cmd.Flags())

	return cmd
}

func printDocument(out io.Writer, doc *report.Document) {
	fmt.Fprintln(out, styleBold.Render(doc.Title))
	if doc.Project != "" {
		fmt.Fprintf(out, "Project: %s\n", doc.Project)
	}
	fmt.Fprintln(out, styleDim.Render(doc.Subtitle))
	fmt.Fprintln(out)

	if doc.IsEmpty() {
		fmt.Fprintln(out, doc.Empty)
		return
	}

	fmt.Fprint(out, renderTable(doc.Columns, doc.Rows))
	fmt.Fprintln(out)
	fmt.Fprintln(out, styleBold.Render(doc.TotalTime))
	if doc.TotalAmount != "" {
		fmt.Fprintln(out, styleBold.Render(doc.TotalAmount))
	}
}

// exportFileName is the default output name, stamped with the time of export.
func exportFileName(now time.Time, ext string) string {
	return fmt.Sprintf("time_report_%s.%s", now.Format("20060102_150405"), ext)
}

func newReportExportCmd(app *App, format string) *cobra.Command {
	var f filterFlags
	var output string

	cmd := &cobra.Command{
		Use:   format,
		Short: fmt.Sprintf("Write the report as %s", strings.ToUpper(format)),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, opts, err := f.selection(cmd.Context(), app)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = exportFileName(opts.Now, format)
			}

			var ok bool
			switch format {
			case "pdf":
				ok = app.Exporter.PDF(report.Build(rows, opts), path)
			case "csv":
				ok = app.Exporter.CSV(rows, path)
			case "json":
				ok = app.Exporter.JSON(rows, path)
			}
			if !ok {
				return fmt.Errorf("could not write %s", path)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(rows), path)
			return nil
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default time_report_<timestamp>."+format+")")

	return cmd
}

func newReportEmailCmd(app *App) *cobra.Command {
	var f filterFlags
	var to []string
	var attachPDF bool
	var creds mail.Credentials

	cmd := &cobra.Command{
		Use:   "email",
		Short: "Send the report as an HTML email",
		Long: "Send the report as an HTML email. Recipients default to the project's addresses when --project is set.\n" +
			"The stored mail settings are used unless --username is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rows, opts, err := f.selection(ctx, app)
			if err != nil {
				return err
			}

			recipients := to
			if len(recipients) == 0 {
				recipients, err = projectRecipients(ctx, app, f.project)
				if err != nil {
					return err
				}
			}

			req := mail.Request{Rows: rows, Options: opts, AttachPDF: attachPDF}

			var sent int
			if changed(cmd, "username") {
				if creds.Password == "" && app.Interactive {
					if creds.Password, err = tui.PasswordPrompt("Password for " + creds.Username); err != nil {
						return err
					}
				}
				for _, r := range recipients {
					req.Recipient = r
					if app.Mailer.SendWithExplicitCredentials(ctx, creds, req) {
						sent++
					}
				}
			} else {
				sent = app.Mailer.SendToAll(ctx, req, recipients)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sent report to %d of %d recipients\n", sent, len(recipients))
			if sent == 0 {
				return errors.New("no email was sent")
			}
			return nil
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().StringArrayVar(&to, "to", nil, "Recipient address (repeatable)")
	cmd.Flags().BoolVar(&attachPDF, "attach-pdf", false, "Attach the report as PDF")
	cmd.Flags().StringVar(&creds.Server, "smtp-server", config.DefaultSMTPServer, "SMTP server for --username")
	cmd.Flags().IntVar(&creds.Port, "smtp-port", config.DefaultSMTPPort, "SMTP port for --username")
	cmd.Flags().StringVar(&creds.Username, "username", "", "Send with this account instead of the stored one")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password for --username")

	return cmd
}

// projectRecipients returns the project's stored addresses, primary first,
// falling back to its default email.
func projectRecipients(ctx context.Context, app *App, projectID int64) ([]string, error) {
	if projectID <= 0 {
		return nil, errors.New("no recipients; pass --to or --project")
	}
	p, err := requireProject(ctx, app, projectID)
	if err != nil {
		return nil, err
	}
	emails, err := app.Store.ProjectEmails(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var recipients []string
	for _, e := range emails {
		recipients = append(recipients, e.Email)
	}
	if len(recipients) == 0 && p.DefaultEmail != "" {
		recipients = append(recipients, p.DefaultEmail)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("project %s has no email addresses; pass --to", p.Name)
	}
	return recipients, nil
}

func newReportChartCmd(app *App) *cobra.Command {
	var projectID int64
	var width int

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Hours per day as a bar chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if projectID > 0 {
				if _, err := requireProject(ctx, app, projectID); err != nil {
					return err
				}
			}

			load := func(from, to time.Time) ([]store.ReportRow, error) {
				filter := store.EntryFilter{From: &from, To: &to}
				if projectID > 0 {
					filter.ProjectID = &projectID
				}
				return app.Store.TimeEntries(ctx, filter)
			}

			if app.Interactive {
				return tui.RunChart(load, app.now)
			}
			out, err := tui.RenderChart(load, app.now, width)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Only this project")
	cmd.Flags().IntVar(&width, "width", 100, "Chart width when not on a terminal")

	return cmd
}
