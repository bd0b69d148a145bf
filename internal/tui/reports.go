package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/store"
)

// Loader fetches the entries that started between from and to, both
// inclusive calendar dates.
type Loader func(from, to time.Time) ([]store.ReportRow, error)

type chartMode int

const (
	chartDaily chartMode = iota
	chartWeekly
)

const defaultChartWidth = 80

// Chart shows tracked hours per day as stacked bars, one segment per
// project. Daily mode covers the last seven days, weekly mode a Monday
// based week; left and right move the window.
type Chart struct {
	load   Loader
	now    func() time.Time
	help   help.Model
	width  int
	height int

	mode      chartMode
	offset    int // 7-day blocks back from today
	summaries []report.DailySummary
	err       error

	chart barchart.Model
}

func NewChart(load Loader, now func() time.Time) Chart {
	if now == nil {
		now = time.Now
	}
	return Chart{
		load:  load,
		now:   now,
		help:  help.New(),
		width: defaultChartWidth,
		chart: barchart.New(60, 12),
	}
}

// RunChart opens the navigable chart.
func RunChart(load Loader, now func() time.Time) error {
	p := tea.NewProgram(NewChart(load, now), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderChart draws the current daily window once, for output that is not
// a terminal.
func RenderChart(load Loader, now func() time.Time, width int) (string, error) {
	c := NewChart(load, now)
	if width > 0 {
		c.width = width
	}
	msg := c.refresh()().(chartDataMsg)
	if msg.err != nil {
		return "", msg.err
	}
	c.summaries = msg.summaries
	c.buildChart()
	return c.panel(), nil
}

type chartDataMsg struct {
	summaries []report.DailySummary
	err       error
}

func (c Chart) Init() tea.Cmd {
	return c.refresh()
}

func (c Chart) refresh() tea.Cmd {
	from, to := c.dateRange()
	now := c.now()
	return func() tea.Msg {
		rows, err := c.load(from, to.AddDate(0, 0, -1))
		if err != nil {
			return chartDataMsg{err: err}
		}
		return chartDataMsg{summaries: report.Daily(rows, now)}
	}
}

// dateRange returns the half-open window [from, to) of local dates.
func (c Chart) dateRange() (time.Time, time.Time) {
	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch c.mode {
	case chartWeekly:
		weekday := today.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		startOfWeek := today.AddDate(0, 0, -int(weekday-time.Monday))
		startOfWeek = startOfWeek.AddDate(0, 0, -7*c.offset)
		return startOfWeek, startOfWeek.AddDate(0, 0, 7)
	default:
		end := today.AddDate(0, 0, 1-7*c.offset)
		return end.AddDate(0, 0, -7), end
	}
}

func (c Chart) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.help.Width = msg.Width
		c.buildChart()
		return c, nil

	case chartDataMsg:
		c.err = msg.err
		c.summaries = msg.summaries
		c.buildChart()
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return c, tea.Quit
		case key.Matches(msg, keys.Left):
			c.offset++
			return c, c.refresh()
		case key.Matches(msg, keys.Right):
			if c.offset > 0 {
				c.offset--
			}
			return c, c.refresh()
		case key.Matches(msg, keys.Tab):
			if c.mode == chartDaily {
				c.mode = chartWeekly
			} else {
				c.mode = chartDaily
			}
			c.offset = 0
			return c, c.refresh()
		}
	}
	return c, nil
}

func (c *Chart) buildChart() {
	chartWidth := c.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if c.height > 30 {
		chartHeight = 16
	}

	c.chart = barchart.New(chartWidth, chartHeight)

	from, to := c.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")

		var values []barchart.BarValue
		for _, s := range c.summaries {
			if s.Date == dateStr {
				values = append(values, barchart.BarValue{
					Name:  s.ProjectName,
					Value: float64(s.TotalSeconds) / 3600.0,
					Style: lipgloss.NewStyle().Foreground(projectColor(s.ProjectID)),
				})
			}
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: values,
		})
	}

	c.chart.PushAll(bars)
	c.chart.Draw()
}

func (c Chart) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		c.panel(),
		footerStyle.Render(c.help.View(chartKeys{keys})),
	)
}

func (c Chart) panel() string {
	w := c.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if c.mode == chartDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := c.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Hours per day"), "  ", modeTabs, "  ", dateLabel,
	)

	if c.err != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", errorStyle.Render("  "+c.err.Error())),
		)
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", c.chart.View(), "", c.renderLegend(), "", c.renderSummaryTable(w),
		),
	)
}

func (c Chart) renderSummaryTable(w int) string {
	if len(c.summaries) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-20s %10s %8s %8s", "Date", "Project", "Duration", "Hours", "Entries")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(min(w-6, 63), 1))))

	for _, s := range c.summaries {
		dot := lipgloss.NewStyle().Foreground(projectColor(s.ProjectID)).Render("●")
		rows = append(rows, fmt.Sprintf("  %-12s %s %-18s %10s %8s %8d",
			s.Date, dot, s.ProjectName, formatSeconds(s.TotalSeconds), formatHours(s.TotalSeconds), s.EntryCount,
		))
	}

	return strings.Join(rows, "\n")
}

func (c Chart) renderLegend() string {
	seen := make(map[int64]bool)
	var items []string
	for _, s := range c.summaries {
		if seen[s.ProjectID] {
			continue
		}
		seen[s.ProjectID] = true
		dot := lipgloss.NewStyle().Foreground(projectColor(s.ProjectID)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, s.ProjectName))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
