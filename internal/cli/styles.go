package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/cadence/internal/models"
)

var (
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Padding(0, 1).
			Bold(true)

	highBadgeStyle   = badgeStyle.Background(lipgloss.Color("42"))
	mediumBadgeStyle = badgeStyle.Background(lipgloss.Color("214"))
	lowBadgeStyle    = badgeStyle.Background(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func confidenceBadge(c models.Confidence) string {
	label := strings.ToUpper(string(c))
	switch c {
	case models.ConfidenceHigh:
		return highBadgeStyle.Render(label)
	case models.ConfidenceMedium:
		return mediumBadgeStyle.Render(label)
	default:
		return lowBadgeStyle.Render(label)
	}
}
