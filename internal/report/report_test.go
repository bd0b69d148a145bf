package report

import (
	"context"
	"testing"
	"time"

	"github.com/sadopc/timebill/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local)

func ptr[T any](v T) *T { return &v }

func row(project string, d time.Duration, rate *float64, currency string) store.ReportRow {
	end := base.Add(d)
	minutes := store.DurationMinutes(base, end)
	return store.ReportRow{
		TimeEntry: store.TimeEntry{
			ID:              1,
			ProjectID:       1,
			Description:     "work",
			StartTime:       base,
			EndTime:         &end,
			DurationMinutes: &minutes,
		},
		ProjectName: project,
		Rate:        rate,
		Currency:    currency,
	}
}

func runningRow(rate *float64) store.ReportRow {
	return store.ReportRow{
		TimeEntry:   store.TimeEntry{ID: 2, ProjectID: 1, StartTime: base},
		ProjectName: "Live",
		Rate:        rate,
		Currency:    "EUR",
	}
}

// ============================================================
// Formatting
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{60, "1m 0s"},
		{90, "1m 30s"},
		{3599, "59m 59s"},
		{3600, "1h 0m 0s"},
		{3661, "1h 1m 1s"},
		{-5, "0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestFormatTotalDuration(t *testing.T) {
	assert.Equal(t, "0 minutes", FormatTotalDuration(0))
	assert.Equal(t, "59 minutes", FormatTotalDuration(59))
	assert.Equal(t, "1 hours and 0 minutes", FormatTotalDuration(60))
	assert.Equal(t, "2 hours and 5 minutes", FormatTotalDuration(125))
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "€", CurrencySymbol("EUR"))
	assert.Equal(t, "$", CurrencySymbol("USD"))
	assert.Equal(t, "$", CurrencySymbol("GBP"), "only EUR has its own symbol")
	assert.Equal(t, "$", CurrencySymbol(""))
}

func TestFormatRateAndMoney(t *testing.T) {
	assert.Equal(t, "€25.00/h", FormatRate("€", 25))
	assert.Equal(t, "$30.50/h", FormatRate("$", 30.5))
	assert.Equal(t, "€37.50", FormatMoney("€", decimal.RequireFromString("37.5")))
}

func TestFormatRateAndMoneyRounding(t *testing.T) {
	// 2.675 is stored as 2.67499..., and exact halves go to the even digit.
	assert.Equal(t, "€2.67/h", FormatRate("€", 2.675))
	assert.Equal(t, "€0.12", FormatMoney("€", decimal.RequireFromString("0.125")))
	assert.Equal(t, "€0.38", FormatMoney("€", decimal.RequireFromString("0.375")))
	assert.Equal(t, "$1.01", FormatMoney("$", decimal.RequireFromString("1.006")))
	assert.Equal(t, "0.12", FormatAmount(decimal.RequireFromString("0.125")))
}

// ============================================================
// Summarize
// ============================================================

func TestSummarizeRatedRow(t *testing.T) {
	sum := Summarize([]store.ReportRow{row("Acme", 5400*time.Second, ptr(25.0), "EUR")})

	require.Len(t, sum.Lines, 1)
	l := sum.Lines[0]
	assert.True(t, sum.HasRates)
	assert.Equal(t, "1h 30m 0s", l.Duration)
	assert.Equal(t, "€25.00/h", l.Rate)
	assert.Equal(t, "€37.50", l.Amount)
	assert.Equal(t, int64(90), sum.TotalMinutes)
	assert.Equal(t, "37.50", sum.TotalAmount.StringFixed(2))
	assert.Equal(t, "€", sum.TotalSymbol)
	assert.True(t, sum.ShowTotalAmount())
}

func TestSummarizeUSD(t *testing.T) {
	sum := Summarize([]store.ReportRow{row("Acme", 90*time.Minute, ptr(30.0), "USD")})
	assert.Equal(t, "$30.00/h", sum.Lines[0].Rate)
	assert.Equal(t, "$45.00", sum.Lines[0].Amount)
	assert.Equal(t, "$", sum.TotalSymbol)
}

func TestSummarizeUsesExactSeconds(t *testing.T) {
	// 119s is stored as 1 minute but billed on the exact interval.
	sum := Summarize([]store.ReportRow{row("A", 119*time.Second, ptr(3600.0), "EUR")})
	assert.Equal(t, "1m 59s", sum.Lines[0].Duration)
	assert.Equal(t, "€119.00", sum.Lines[0].Amount)
	assert.Equal(t, int64(1), sum.TotalMinutes)
}

func TestSummarizeNoRates(t *testing.T) {
	sum := Summarize([]store.ReportRow{row("A", time.Hour, nil, "EUR")})
	assert.False(t, sum.HasRates)
	assert.Empty(t, sum.Lines[0].Rate)
	assert.Empty(t, sum.Lines[0].Amount)
	assert.True(t, sum.TotalAmount.IsZero())
	assert.False(t, sum.ShowTotalAmount())
	assert.Empty(t, sum.TotalSymbol, "no billable row, no symbol")
}

func TestSummarizeMixedRates(t *testing.T) {
	sum := Summarize([]store.ReportRow{
		row("Free", time.Hour, nil, "EUR"),
		row("Paid", time.Hour, ptr(40.0), "EUR"),
	})
	assert.True(t, sum.HasRates)
	assert.Equal(t, NotApplicable, sum.Lines[0].Rate)
	assert.Equal(t, NotApplicable, sum.Lines[0].Amount)
	assert.Equal(t, "€40.00", sum.Lines[1].Amount)
	assert.Equal(t, "40.00", sum.TotalAmount.StringFixed(2))
	assert.Equal(t, int64(120), sum.TotalMinutes)
}

func TestSummarizeZeroRateCountsAsRated(t *testing.T) {
	sum := Summarize([]store.ReportRow{row("Zero", time.Hour, ptr(0.0), "EUR")})
	assert.True(t, sum.HasRates, "non-null rate turns on the billing columns")
	assert.Equal(t, NotApplicable, sum.Lines[0].Rate)
	assert.False(t, sum.ShowTotalAmount())
	assert.Empty(t, sum.TotalSymbol)
}

func TestSummarizeTotalSymbolFromFirstRatedRow(t *testing.T) {
	sum := Summarize([]store.ReportRow{
		row("Free", time.Hour, nil, "EUR"),
		row("US", time.Hour, ptr(10.0), "USD"),
		row("EU", time.Hour, ptr(10.0), "EUR"),
	})
	assert.Equal(t, "$", sum.TotalSymbol)
	assert.Equal(t, "20.00", sum.TotalAmount.StringFixed(2), "currencies are summed without conversion")
}

func TestSummarizeRunningRow(t *testing.T) {
	sum := Summarize([]store.ReportRow{runningRow(ptr(25.0))})
	l := sum.Lines[0]
	assert.Equal(t, RunningLabel, l.Duration)
	assert.Equal(t, "€0.00", l.Amount)
	assert.Zero(t, sum.TotalMinutes)
	assert.False(t, sum.ShowTotalAmount())
}

func TestSummarizeStoredMinutesWithoutEnd(t *testing.T) {
	r := runningRow(ptr(60.0))
	r.DurationMinutes = ptr(int64(30))
	sum := Summarize([]store.ReportRow{r})
	assert.Equal(t, "€30.00", sum.Lines[0].Amount)
	assert.Equal(t, int64(30), sum.TotalMinutes)
}

func TestSummarizeNegativeIntervalClamped(t *testing.T) {
	sum := Summarize([]store.ReportRow{row("Neg", -10*time.Minute, ptr(25.0), "EUR")})
	assert.Equal(t, "0s", sum.Lines[0].Duration)
	assert.Equal(t, "€0.00", sum.Lines[0].Amount)
	assert.Zero(t, sum.TotalMinutes)
}

// ============================================================
// Document
// ============================================================

func TestBuildEmpty(t *testing.T) {
	doc := Build(nil, Options{Now: base})
	assert.True(t, doc.IsEmpty())
	assert.Equal(t, EmptyMessage, doc.Empty)
	assert.Empty(t, doc.Rows)
	assert.Empty(t, doc.TotalTime)
	assert.Empty(t, doc.TotalAmount)
}

func TestBuildColumnsAndRows(t *testing.T) {
	doc := Build([]store.ReportRow{
		row("Acme", 5400*time.Second, ptr(25.0), "EUR"),
		runningRow(nil),
	}, Options{ProjectName: "Acme", Now: base})

	assert.Equal(t, "Time Tracking Report - Acme", doc.Title)
	assert.Equal(t, []string{"Date", "Project", "Description", "Start Time", "End Time", "Duration", "Rate", "Amount"}, doc.Columns)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, []string{"2024-01-15", "Acme", "work", "09:00", "10:30", "1h 30m 0s", "€25.00/h", "€37.50"}, doc.Rows[0])
	assert.Equal(t, []string{"2024-01-15", "Live", "", "09:00", "Running", "Running", "N/A", "N/A"}, doc.Rows[1])
	assert.Equal(t, "Total Time: 1 hours and 30 minutes", doc.TotalTime)
	assert.Equal(t, "Total Amount: €37.50", doc.TotalAmount)
}

func TestBuildWithoutRates(t *testing.T) {
	doc := Build([]store.ReportRow{row("A", 45*time.Minute, nil, "EUR")}, Options{Now: base})
	assert.Equal(t, Title, doc.Title)
	assert.Len(t, doc.Columns, 6)
	assert.Len(t, doc.Rows[0], 6)
	assert.Equal(t, "Total Time: 45 minutes", doc.TotalTime)
	assert.Empty(t, doc.TotalAmount)
}

func TestSubtitle(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local)
	now := time.Date(2024, 2, 3, 15, 4, 0, 0, time.Local)

	assert.Equal(t, "From January 01, 2024 to January 31, 2024", Subtitle(&from, &to, now))
	assert.Equal(t, "From January 01, 2024", Subtitle(&from, nil, now))
	assert.Equal(t, "Until January 31, 2024", Subtitle(nil, &to, now))
	assert.Equal(t, "Generated on February 03, 2024 at 03:04 PM", Subtitle(nil, nil, now))
}

func TestDaily(t *testing.T) {
	a := row("A", time.Hour, nil, "EUR")
	b := row("B", 30*time.Minute, nil, "EUR")
	b.ProjectID = 2
	a2 := row("A", 15*time.Minute, nil, "EUR")
	live := runningRow(nil)
	live.ProjectID = 3
	next := row("A", time.Minute, nil, "EUR")
	next.StartTime = next.StartTime.AddDate(0, 0, 1)
	nextEnd := next.StartTime.Add(time.Minute)
	next.EndTime = &nextEnd

	days := Daily([]store.ReportRow{next, b, a, a2, live}, base.Add(10*time.Minute))
	require.Len(t, days, 4)
	assert.Equal(t, DailySummary{Date: "2024-01-15", ProjectID: 1, ProjectName: "A", TotalSeconds: 4500, EntryCount: 2}, days[0])
	assert.Equal(t, "B", days[1].ProjectName)
	assert.Equal(t, "Live", days[2].ProjectName)
	assert.Equal(t, int64(600), days[2].TotalSeconds)
	assert.Equal(t, "2024-01-16", days[3].Date)
}

// The full path from the store to a rendered document.
func TestEndToEndSingleBilledEntry(t *testing.T) {
	now := base
	clock := func() time.Time { return now }
	st, err := store.NewMemory(store.WithClock(clock))
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	pid, err := st.AddProject(ctx, store.NewProject{Name: "Acme", Rate: ptr(25.0), Currency: "EUR"})
	require.NoError(t, err)
	_, ok, err := st.StartTimer(ctx, pid, "Design")
	require.NoError(t, err)
	require.True(t, ok)
	now = now.Add(2*time.Hour + 12*time.Minute)
	_, ok, err = st.StopTimer(ctx, pid)
	require.NoError(t, err)
	require.True(t, ok)

	rows, err := st.TimeEntries(ctx, store.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].ProjectName)
	assert.Equal(t, 25.0, *rows[0].Rate)
	assert.Equal(t, "EUR", rows[0].Currency)
	require.NotNil(t, rows[0].DurationMinutes)

	doc := Build(rows, Options{Now: now})
	assert.False(t, doc.IsEmpty())
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, "Total Amount: €55.00", doc.TotalAmount)
}
