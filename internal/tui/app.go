package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/timer"
)

// App is the live view of running timers. It reloads them from the
// store every second so timers started or stopped elsewhere show up.
type App struct {
	ctx    context.Context
	timers *timer.Service
	help   help.Model
	width  int
	height int

	running []timer.RunningTimer
	loaded  bool
	cursor  int

	status      string
	statusIsErr bool
}

func NewApp(ctx context.Context, svc *timer.Service) App {
	return App{
		ctx:    ctx,
		timers: svc,
		help:   help.New(),
	}
}

// RunWatch blocks until the user quits the running-timers view.
func RunWatch(ctx context.Context, svc *timer.Service) error {
	p := tea.NewProgram(NewApp(ctx, svc), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.load(), tickCmd())
}

func (a App) load() tea.Cmd {
	return func() tea.Msg {
		timers, err := a.timers.Running(a.ctx)
		return runningMsg{timers: timers, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case tickMsg:
		return a, tea.Batch(a.load(), tickCmd())

	case runningMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("Error: %v", msg.err)
			a.statusIsErr = true
			return a, nil
		}
		a.running = msg.timers
		a.loaded = true
		if a.cursor >= len(a.running) {
			a.cursor = max(0, len(a.running)-1)
		}
		return a, nil

	case timerStoppedMsg:
		a.status = fmt.Sprintf("Stopped %s: %s", msg.project, report.FormatTotalDuration(msg.minutes))
		a.statusIsErr = false
		return a, a.load()

	case statusMsg:
		a.status = msg.text
		a.statusIsErr = msg.isError
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.help.ShowAll = !a.help.ShowAll
		case key.Matches(msg, keys.Up):
			if a.cursor > 0 {
				a.cursor--
			}
		case key.Matches(msg, keys.Down):
			if a.cursor < len(a.running)-1 {
				a.cursor++
			}
		case key.Matches(msg, keys.Refresh):
			return a, a.load()
		case key.Matches(msg, keys.Stop):
			return a, a.stopSelected()
		}
	}
	return a, nil
}

func (a App) stopSelected() tea.Cmd {
	if len(a.running) == 0 {
		return nil
	}
	rt := a.running[a.cursor]
	return func() tea.Msg {
		minutes, ok, err := a.timers.StopEntry(a.ctx, rt.Entry.ID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if !ok {
			return statusMsg{text: "Timer was already stopped"}
		}
		return timerStoppedMsg{project: rt.Entry.ProjectName, minutes: minutes}
	}
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	contentHeight := a.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 1 {
		contentHeight = 1
	}

	content := renderTimers(a.running, a.cursor, a.width-4)
	if !a.loaded {
		content = mutedStyle.Render("  Loading timers...")
	}
	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("timebill")
	tab := activeTabStyle.Render("Running")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tab) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tab),
	)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	right := ""
	if a.status != "" {
		style := successStyle
		if a.statusIsErr {
			style = errorStyle
		}
		right = style.Render(" " + a.status)
	}

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
