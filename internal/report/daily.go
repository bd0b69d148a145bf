package report

import (
	"sort"
	"time"

	"github.com/sadopc/timebill/internal/store"
)

// DailySummary is the tracked time for one project on one calendar day.
type DailySummary struct {
	Date         string // YYYY-MM-DD of the entry start
	ProjectID    int64
	ProjectName  string
	TotalSeconds int64
	EntryCount   int
}

// Daily groups rows by start date and project. Running entries count up to
// now. The result is ordered by date, then project name.
func Daily(rows []store.ReportRow, now time.Time) []DailySummary {
	type key struct {
		date    string
		project int64
	}
	index := make(map[key]int)
	var out []DailySummary

	for _, r := range rows {
		end := now
		if r.EndTime != nil {
			end = *r.EndTime
		}
		secs := int64(end.Sub(r.StartTime).Seconds())
		if secs < 0 {
			secs = 0
		}

		k := key{date: r.StartTime.Format(rowDate), project: r.ProjectID}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, DailySummary{Date: k.date, ProjectID: r.ProjectID, ProjectName: r.ProjectName})
		}
		out[i].TotalSeconds += secs
		out[i].EntryCount++
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Date != out[b].Date {
			return out[a].Date < out[b].Date
		}
		return out[a].ProjectName < out[b].ProjectName
	})
	return out
}
