package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timebill/internal/timer"
)

// renderTimers draws one row per running timer, the selected one marked.
func renderTimers(timers []timer.RunningTimer, cursor, w int) string {
	if len(timers) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(max(w-6, 8)).Render("00:00:00"),
			mutedStyle.Render("■  STOPPED"),
			mutedStyle.Render("Start one with: timebill timer start"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, titleStyle.Render(fmt.Sprintf("Running timers (%d)", len(timers))))
	rows = append(rows, "")
	for i, rt := range timers {
		cursorMark := "  "
		nameStyle := normalItemStyle
		if i == cursor {
			cursorMark = "> "
			nameStyle = selectedItemStyle
		}
		dot := lipgloss.NewStyle().Foreground(projectColor(rt.Entry.ProjectID)).Render("●")
		line := fmt.Sprintf("%s%s %s  %s  %s",
			cursorMark,
			dot,
			timerRunningStyle.Render(formatDuration(rt.Elapsed)),
			nameStyle.Render(rt.Entry.ProjectName),
			mutedStyle.Render("since "+rt.Entry.StartTime.Format("Jan 02 15:04")),
		)
		if rt.Entry.Description != "" {
			line += highlightStyle.Render("  " + rt.Entry.Description)
		}
		rows = append(rows, line)
	}

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
