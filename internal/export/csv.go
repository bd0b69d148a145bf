package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/store"
)

const isoLayout = "2006-01-02T15:04:05"

var csvHeader = []string{
	"ID", "Date", "Project", "Description", "Start", "End",
	"Duration (s)", "Duration", "Minutes", "Rate", "Currency", "Amount",
}

// ToCSV writes one line per entry. Rate and Amount are plain numbers so the
// file can be summed in a spreadsheet; they are empty for unrated entries.
func ToCSV(rows []store.ReportRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	sum := report.Summarize(rows)
	for _, l := range sum.Lines {
		r := l.Row
		endStr, secs := "", ""
		if r.EndTime != nil {
			endStr = r.EndTime.Format(isoLayout)
			secs = strconv.FormatInt(l.Seconds, 10)
		}
		rate, amount := "", ""
		if l.Billable {
			rate = strconv.FormatFloat(*r.Rate, 'f', 2, 64)
			amount = report.FormatAmount(l.Value)
		}

		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.StartTime.Format("2006-01-02"),
			r.ProjectName,
			r.Description,
			r.StartTime.Format(isoLayout),
			endStr,
			secs,
			l.Duration,
			strconv.FormatInt(l.Minutes, 10),
			rate,
			r.Currency,
			amount,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
