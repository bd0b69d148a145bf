package store

import "time"

// DefaultCurrency is applied when a project is created without one.
const DefaultCurrency = "EUR"

type Project struct {
	ID           int64
	Name         string
	Description  string
	DefaultEmail string
	Rate         *float64 // hourly; nil means unbilled
	Currency     string
	CreatedAt    time.Time
}

// Billable reports whether the project carries a positive hourly rate.
func (p Project) Billable() bool {
	return p.Rate != nil && *p.Rate > 0
}

type ProjectEmail struct {
	ID        int64
	ProjectID int64
	Email     string
	IsPrimary bool
	CreatedAt time.Time
}

type TimeEntry struct {
	ID              int64
	ProjectID       int64
	Description     string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int64
	CreatedAt       time.Time
}

// Running reports whether the entry has no end time yet.
func (e TimeEntry) Running() bool {
	return e.EndTime == nil
}

// ReportRow is a time entry joined with the billing attributes of its project.
type ReportRow struct {
	TimeEntry
	ProjectName string
	Rate        *float64
	Currency    string
}

// NewProject holds the fields accepted by AddProject.
type NewProject struct {
	Name         string
	Description  string
	DefaultEmail string
	Rate         *float64
	Currency     string
}

// ProjectUpdate is a partial update; nil fields are left unchanged.
type ProjectUpdate struct {
	Name         *string
	Description  *string
	DefaultEmail *string
	Rate         *float64
	Currency     *string
}

func (u ProjectUpdate) empty() bool {
	return u.Name == nil && u.Description == nil && u.DefaultEmail == nil && u.Rate == nil && u.Currency == nil
}

// EntryUpdate is a partial update; nil fields are left unchanged.
type EntryUpdate struct {
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	ProjectID   *int64
}

func (u EntryUpdate) empty() bool {
	return u.Description == nil && u.StartTime == nil && u.EndTime == nil && u.ProjectID == nil
}

// EntryFilter is used to filter time entries in queries. From and To are
// inclusive calendar dates compared against the date of start_time.
type EntryFilter struct {
	ProjectID *int64
	From      *time.Time
	To        *time.Time
	Limit     int
}
