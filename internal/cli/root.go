package cli

import (
	"time"

	"github.com/sadopc/timebill/internal/config"
	"github.com/sadopc/timebill/internal/export"
	"github.com/sadopc/timebill/internal/mail"
	"github.com/sadopc/timebill/internal/store"
	"github.com/sadopc/timebill/internal/timer"
	"github.com/spf13/cobra"
)

// App holds the services used by CLI commands.
type App struct {
	Store    *store.Store
	Timer    *timer.Service
	Exporter *export.Exporter
	Mailer   *mail.Mailer
	Config   *config.Manager

	// Interactive is set when the process runs on a terminal; forms and
	// the live views need one.
	Interactive bool

	// Now stamps reports; nil means time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "timebill" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:          "timebill",
		Short:        "Track time per project and send billing reports",
		SilenceUsage: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newTimerCmd(app),
		newEntryCmd(app),
		newReportCmd(app),
		newMailCmd(app),
	)

	return root
}
