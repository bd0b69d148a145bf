package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// timeValue is a pflag.Value that parses local times with a fixed layout
// into an optional *time.Time.
type timeValue struct {
	target **time.Time
	layout string
}

var _ pflag.Value = (*timeValue)(nil)

func newTimeValue(target **time.Time, layout string) *timeValue {
	return &timeValue{target: target, layout: layout}
}

func (v *timeValue) String() string {
	if v.target == nil || *v.target == nil {
		return ""
	}
	return (*v.target).Format(v.layout)
}

func (v *timeValue) Set(s string) error {
	t, err := time.ParseInLocation(v.layout, s, time.Local)
	if err != nil {
		return fmt.Errorf("expected %s", layoutHint(v.layout))
	}
	*v.target = &t
	return nil
}

func (v *timeValue) Type() string {
	if v.layout == dateLayout {
		return "date"
	}
	return "datetime"
}

func layoutHint(layout string) string {
	if layout == dateLayout {
		return "YYYY-MM-DD"
	}
	return `"YYYY-MM-DD HH:MM"`
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// filterFlags are the --project, --from and --to selectors shared by the
// entry and report commands.
type filterFlags struct {
	project int64
	from    *time.Time
	to      *time.Time
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.Int64Var(&f.project, "project", 0, "Only entries of this project ID")
	fs.Var(newTimeValue(&f.from, dateLayout), "from", "First day to include (YYYY-MM-DD)")
	fs.Var(newTimeValue(&f.to, dateLayout), "to", "Last day to include (YYYY-MM-DD)")
}

func (f *filterFlags) filter() store.EntryFilter {
	var filter store.EntryFilter
	if f.project > 0 {
		id := f.project
		filter.ProjectID = &id
	}
	filter.From = f.from
	filter.To = f.to
	return filter
}

// selection loads the filtered rows together with the report options
// describing them.
func (f *filterFlags) selection(ctx context.Context, app *App) ([]store.ReportRow, report.Options, error) {
	opts := report.Options{From: f.from, To: f.to, Now: app.now()}
	if f.from != nil && f.to != nil && f.to.Before(*f.from) {
		return nil, opts, fmt.Errorf("--to %s is before --from %s", f.to.Format(dateLayout), f.from.Format(dateLayout))
	}
	if f.project > 0 {
		p, err := app.Store.Project(ctx, f.project)
		if err != nil {
			return nil, opts, err
		}
		if p == nil {
			return nil, opts, fmt.Errorf("project %d not found", f.project)
		}
		opts.ProjectName = p.Name
	}
	rows, err := app.Store.TimeEntries(ctx, f.filter())
	if err != nil {
		return nil, opts, err
	}
	return rows, opts, nil
}

// changed reports whether the named flag was given on the command line.
func changed(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name)
}
