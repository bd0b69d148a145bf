package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/store"
)

type jsonExport struct {
	ExportedAt    string      `json:"exported_at"`
	Count         int         `json:"count"`
	TotalMinutes  int64       `json:"total_minutes"`
	TotalDuration string      `json:"total_duration"`
	TotalAmount   string      `json:"total_amount,omitempty"`
	Entries       []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID          int64    `json:"id"`
	Project     string   `json:"project"`
	ProjectID   int64    `json:"project_id"`
	Description string   `json:"description,omitempty"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time,omitempty"`
	DurationSec *int64   `json:"duration_seconds,omitempty"`
	Duration    string   `json:"duration"`
	Minutes     *int64   `json:"duration_minutes,omitempty"`
	Rate        *float64 `json:"rate,omitempty"`
	Currency    string   `json:"currency"`
	Amount      string   `json:"amount,omitempty"`
}

func ToJSON(rows []store.ReportRow, path string) error {
	sum := report.Summarize(rows)
	export := jsonExport{
		ExportedAt:    time.Now().Format(time.RFC3339),
		Count:         len(rows),
		TotalMinutes:  sum.TotalMinutes,
		TotalDuration: report.FormatTotalDuration(sum.TotalMinutes),
		Entries:       make([]jsonEntry, 0, len(rows)),
	}
	if sum.ShowTotalAmount() {
		export.TotalAmount = report.FormatMoney(sum.TotalSymbol, sum.TotalAmount)
	}

	for _, l := range sum.Lines {
		r := l.Row
		e := jsonEntry{
			ID:          r.ID,
			Project:     r.ProjectName,
			ProjectID:   r.ProjectID,
			Description: r.Description,
			StartTime:   r.StartTime.Format(time.RFC3339),
			Duration:    l.Duration,
			Minutes:     r.DurationMinutes,
			Rate:        r.Rate,
			Currency:    r.Currency,
		}
		if r.EndTime != nil {
			e.EndTime = r.EndTime.Format(time.RFC3339)
			secs := l.Seconds
			e.DurationSec = &secs
		}
		if l.Billable {
			e.Amount = report.FormatAmount(l.Value)
		}
		export.Entries = append(export.Entries, e)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
