package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case !m.loaded:
		content = "Loading predictions..."
	case len(m.list.Items()) == 0:
		content = "No categories yet. Add one with 'cadence category add <label>'."
	default:
		content = m.list.View()
	}

	var footer string
	switch {
	case m.err != nil:
		footer = errorStyle.Render("✗ " + m.err.Error())
	case m.status != "":
		footer = statusStyle.Render("✓ " + m.status)
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render("cadence"),
		content,
		footer,
		m.help.View(m.keys),
	))
}
