package report

import (
	"time"

	"github.com/sadopc/timebill/internal/store"
)

const (
	Title        = "Time Tracking Report"
	EmptyMessage = "No time entries found for the selected criteria."

	longDate  = "January 02, 2006"
	rowDate   = "2006-01-02"
	clockTime = "15:04"
)

var (
	baseColumns    = []string{"Date", "Project", "Description", "Start Time", "End Time", "Duration"}
	billingColumns = []string{"Rate", "Amount"}
)

// Options describe the selection a report was generated for.
type Options struct {
	ProjectName string
	From        *time.Time
	To          *time.Time
	// Now stamps reports without a date range; zero means time.Now.
	Now time.Time
}

// Document is a renderer-independent description of a report: a title
// block, a table of strings and the total lines.
type Document struct {
	Title    string
	Project  string
	Subtitle string
	Columns  []string
	Rows     [][]string

	// Empty is set, and the table and totals left out, when there are no rows.
	Empty       string
	TotalTime   string
	TotalAmount string

	Summary Summary
}

// IsEmpty reports whether the document has no table.
func (d *Document) IsEmpty() bool {
	return d.Empty != ""
}

// BuildTitle returns "Time Tracking Report", suffixed with the project name
// when the report is scoped to one project.
func BuildTitle(projectName string) string {
	if projectName == "" {
		return Title
	}
	return Title + " - " + projectName
}

// Subtitle describes the date range, or the generation time when there is none.
func Subtitle(from, to *time.Time, now time.Time) string {
	switch {
	case from != nil && to != nil:
		return "From " + from.Format(longDate) + " to " + to.Format(longDate)
	case from != nil:
		return "From " + from.Format(longDate)
	case to != nil:
		return "Until " + to.Format(longDate)
	default:
		return "Generated on " + now.Format(longDate) + " at " + now.Format("03:04 PM")
	}
}

// Build aggregates rows into a Document.
func Build(rows []store.ReportRow, opts Options) *Document {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	doc := &Document{
		Title:    BuildTitle(opts.ProjectName),
		Project:  opts.ProjectName,
		Subtitle: Subtitle(opts.From, opts.To, now),
	}
	if len(rows) == 0 {
		doc.Empty = EmptyMessage
		return doc
	}

	sum := Summarize(rows)
	doc.Summary = sum

	doc.Columns = append([]string{}, baseColumns...)
	if sum.HasRates {
		doc.Columns = append(doc.Columns, billingColumns...)
	}

	doc.Rows = make([][]string, 0, len(sum.Lines))
	for _, l := range sum.Lines {
		end := RunningLabel
		if l.Row.EndTime != nil {
			end = l.Row.EndTime.Format(clockTime)
		}
		cells := []string{
			l.Row.StartTime.Format(rowDate),
			l.Row.ProjectName,
			l.Row.Description,
			l.Row.StartTime.Format(clockTime),
			end,
			l.Duration,
		}
		if sum.HasRates {
			cells = append(cells, l.Rate, l.Amount)
		}
		doc.Rows = append(doc.Rows, cells)
	}

	doc.TotalTime = "Total Time: " + FormatTotalDuration(sum.TotalMinutes)
	if sum.ShowTotalAmount() {
		doc.TotalAmount = "Total Amount: " + FormatMoney(sum.TotalSymbol, sum.TotalAmount)
	}
	return doc
}
