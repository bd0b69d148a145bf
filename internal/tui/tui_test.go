package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/timebill/internal/store"
	"github.com/sadopc/timebill/internal/timer"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (*timer.Service, *testClock) {
	t.Helper()
	c := &testClock{now: time.Date(2024, 6, 12, 10, 0, 0, 0, time.Local)}
	s, err := store.NewMemory(store.WithClock(c.Now))
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return timer.NewService(s, nil, timer.WithClock(c.Now)), c
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{5 * time.Second, "00:00:05"},
		{90 * time.Minute, "01:30:00"},
		{25*time.Hour + 61*time.Second, "25:01:01"},
		{-time.Minute, "00:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSecondsAndHours(t *testing.T) {
	if got := formatSeconds(3725); got != "01:02:05" {
		t.Errorf("formatSeconds = %q", got)
	}
	if got := formatHours(5400); got != "1.5h" {
		t.Errorf("formatHours = %q", got)
	}
}

func TestProjectColorIsStable(t *testing.T) {
	if projectColor(3) != projectColor(3+int64(len(projectColors))) {
		t.Fatal("colors should cycle through the palette")
	}
	if projectColor(-2) != projectColor(2) {
		t.Fatal("negative ids should not panic and map like their absolute value")
	}
}

// ============================================================
// Running timers view
// ============================================================

func TestAppLoadingState(t *testing.T) {
	svc, _ := newTestService(t)
	a := NewApp(context.Background(), svc)
	if got := a.View(); got != "Loading..." {
		t.Fatalf("View before size = %q", got)
	}
}

func TestAppShowsRunningTimers(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()
	pid, err := svc.CreateProject(ctx, store.NewProject{Name: "Acme"})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Start(ctx, pid, "Design"); err != nil {
		t.Fatal(err)
	}
	c.Advance(75 * time.Minute)

	a := NewApp(ctx, svc)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(a.load()())
	a = m.(App)

	if len(a.running) != 1 {
		t.Fatalf("running = %d, want 1", len(a.running))
	}
	view := a.View()
	for _, want := range []string{"Acme", "Design", "01:15:00", "timebill"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppEmptyView(t *testing.T) {
	svc, _ := newTestService(t)
	a := NewApp(context.Background(), svc)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = m.Update(runningMsg{})

	if !strings.Contains(m.View(), "STOPPED") {
		t.Fatal("empty view should show the stopped panel")
	}
}

func TestAppStopSelected(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()
	a1, _ := svc.CreateProject(ctx, store.NewProject{Name: "Alpha"})
	b1, _ := svc.CreateProject(ctx, store.NewProject{Name: "Beta"})
	if _, _, err := svc.Start(ctx, a1, ""); err != nil {
		t.Fatal(err)
	}
	c.Advance(time.Minute)
	if _, _, err := svc.Start(ctx, b1, ""); err != nil {
		t.Fatal(err)
	}
	c.Advance(45 * time.Minute)

	a := NewApp(ctx, svc)
	m, _ := a.Update(a.load()())
	m, _ = m.Update(runeKey('j'))
	if m.(App).cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.(App).cursor)
	}

	selected := m.(App).running[1].Entry.ProjectName
	m, cmd := m.Update(runeKey('x'))
	if cmd == nil {
		t.Fatal("stop should return a command")
	}
	msg := cmd()
	stopped, ok := msg.(timerStoppedMsg)
	if !ok {
		t.Fatalf("got %T, want timerStoppedMsg", msg)
	}
	if stopped.project != selected {
		t.Fatalf("stopped %q, want %q", stopped.project, selected)
	}

	m, reload := m.Update(stopped)
	if !strings.Contains(m.(App).status, "Stopped "+selected) {
		t.Fatalf("status = %q", m.(App).status)
	}
	m, _ = m.Update(reload())
	a = m.(App)
	if len(a.running) != 1 {
		t.Fatalf("running after stop = %d, want 1", len(a.running))
	}
	if a.cursor != 0 {
		t.Fatalf("cursor should clamp to the remaining timer, got %d", a.cursor)
	}
}

func TestAppStopWithNothingRunning(t *testing.T) {
	svc, _ := newTestService(t)
	a := NewApp(context.Background(), svc)
	if _, cmd := a.Update(runeKey('x')); cmd != nil {
		t.Fatal("stop without timers should be a no-op")
	}
}

func TestAppErrorStatus(t *testing.T) {
	svc, _ := newTestService(t)
	a := NewApp(context.Background(), svc)
	m, _ := a.Update(runningMsg{err: errors.New("database is locked")})
	a = m.(App)
	if !a.statusIsErr || !strings.Contains(a.status, "database is locked") {
		t.Fatalf("status = %q (err=%v)", a.status, a.statusIsErr)
	}
}

func TestAppQuit(t *testing.T) {
	svc, _ := newTestService(t)
	a := NewApp(context.Background(), svc)
	_, cmd := a.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("quit should return tea.Quit")
	}
}

func TestAppHelpToggle(t *testing.T) {
	svc, _ := newTestService(t)
	a := NewApp(context.Background(), svc)
	m, _ := a.Update(runeKey('?'))
	if !m.(App).help.ShowAll {
		t.Fatal("? should expand help")
	}
}

// ============================================================
// Chart
// ============================================================

func fixedNow() time.Time {
	// A Wednesday.
	return time.Date(2024, 6, 12, 18, 0, 0, 0, time.Local)
}

func TestChartDateRangeDaily(t *testing.T) {
	c := NewChart(nil, fixedNow)
	from, to := c.dateRange()
	if got := from.Format("2006-01-02"); got != "2024-06-06" {
		t.Errorf("from = %s", got)
	}
	if got := to.Format("2006-01-02"); got != "2024-06-13" {
		t.Errorf("to = %s", got)
	}

	c.offset = 1
	from, to = c.dateRange()
	if from.Format("2006-01-02") != "2024-05-30" || to.Format("2006-01-02") != "2024-06-06" {
		t.Errorf("offset window = %s..%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
}

func TestChartDateRangeWeekly(t *testing.T) {
	c := NewChart(nil, fixedNow)
	c.mode = chartWeekly
	from, to := c.dateRange()
	if from.Weekday() != time.Monday {
		t.Fatalf("week starts on %s", from.Weekday())
	}
	if from.Format("2006-01-02") != "2024-06-10" || to.Format("2006-01-02") != "2024-06-17" {
		t.Errorf("week = %s..%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
}

func TestRenderChart(t *testing.T) {
	var gotFrom, gotTo time.Time
	load := func(from, to time.Time) ([]store.ReportRow, error) {
		gotFrom, gotTo = from, to
		start := time.Date(2024, 6, 11, 9, 0, 0, 0, time.Local)
		end := start.Add(2 * time.Hour)
		return []store.ReportRow{{
			TimeEntry:   store.TimeEntry{ID: 1, ProjectID: 1, StartTime: start, EndTime: &end},
			ProjectName: "Acme",
		}}, nil
	}

	out, err := RenderChart(load, fixedNow, 100)
	if err != nil {
		t.Fatal(err)
	}
	if gotFrom.Format("2006-01-02") != "2024-06-06" || gotTo.Format("2006-01-02") != "2024-06-12" {
		t.Errorf("loader called with %s..%s", gotFrom.Format("2006-01-02"), gotTo.Format("2006-01-02"))
	}
	for _, want := range []string{"Hours per day", "Acme", "2024-06-11", "02:00:00", "2.0h"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q", want)
		}
	}
}

func TestRenderChartError(t *testing.T) {
	load := func(time.Time, time.Time) ([]store.ReportRow, error) {
		return nil, errors.New("boom")
	}
	if _, err := RenderChart(load, fixedNow, 0); err == nil {
		t.Fatal("loader errors should propagate")
	}
}

func TestChartNavigation(t *testing.T) {
	calls := 0
	load := func(time.Time, time.Time) ([]store.ReportRow, error) {
		calls++
		return nil, nil
	}
	c := NewChart(load, fixedNow)

	m, cmd := c.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.(Chart).offset != 1 || cmd == nil {
		t.Fatalf("left: offset = %d", m.(Chart).offset)
	}
	m.Update(cmd())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.(Chart).offset != 0 {
		t.Fatalf("right should stop at today, offset = %d", m.(Chart).offset)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(Chart).mode != chartWeekly {
		t.Fatal("tab should switch to weekly")
	}
	if calls != 1 {
		t.Fatalf("loader called %d times, want 1", calls)
	}
}

func TestChartEmptyPeriod(t *testing.T) {
	c := NewChart(nil, fixedNow)
	m, _ := c.Update(chartDataMsg{})
	if !strings.Contains(m.View(), "No data for this period") {
		t.Fatal("empty chart should say so")
	}
}

// ============================================================
// Forms
// ============================================================

func TestParseRate(t *testing.T) {
	r, err := parseRate("  ")
	if err != nil || r != nil {
		t.Fatalf("blank rate = %v, %v", r, err)
	}
	r, err = parseRate("37.5")
	if err != nil || r == nil || *r != 37.5 {
		t.Fatalf("37.5 = %v, %v", r, err)
	}
	if _, err := parseRate("-1"); !errors.Is(err, timer.ErrInvalidRate) {
		t.Fatalf("negative rate err = %v", err)
	}
	if _, err := parseRate("lots"); err == nil {
		t.Fatal("non-numeric rate should fail")
	}
}

func TestFormValidators(t *testing.T) {
	if validateName(" ") == nil {
		t.Error("blank name should fail")
	}
	if validateName("Acme") != nil {
		t.Error("name should pass")
	}
	if validateOptionalEmail("") != nil {
		t.Error("blank email is optional")
	}
	if validateOptionalEmail("nope") == nil {
		t.Error("invalid email should fail")
	}
	if validateOptionalEmail("a@b.io") != nil {
		t.Error("valid email should pass")
	}
}

func TestProjectFormBuilds(t *testing.T) {
	p := store.NewProject{Currency: store.DefaultCurrency}
	rate := ""
	if projectForm(&p, &rate) == nil {
		t.Fatal("form should be built")
	}
}

// ============================================================
// Key map
// ============================================================

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should not be empty")
	}
	if len(keys.FullHelp()) != 3 {
		t.Fatalf("full help groups = %d", len(keys.FullHelp()))
	}
	if len(chartKeys{keys}.ShortHelp()) != 4 {
		t.Fatal("chart help should list navigation keys")
	}
}
