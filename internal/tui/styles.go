package tui

import (
	"github.com/charmbracelet/lipgloss"

	"sentiment-dashboard/internal/present"
)

var (
	primaryColor = lipgloss.Color("#4299E1")
	mutedColor   = lipgloss.Color("#718096")
	borderColor  = lipgloss.Color("#4A5568")
	focusColor   = lipgloss.Color("#805AD5")
	textColor    = lipgloss.Color("#F7FAFC")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	labelStyle = lipgloss.NewStyle().Foreground(mutedColor)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(textColor)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	focusedPanelStyle = panelStyle.BorderForeground(focusColor)

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(focusColor)
	linkStyle     = lipgloss.NewStyle().Underline(true).Foreground(primaryColor)
)

func toneStyle(t present.Tone) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Hex()))
}

func noticeStyle(level string) lipgloss.Style {
	switch level {
	case "success":
		return toneStyle(present.Green)
	case "warning":
		return toneStyle(present.Yellow)
	default:
		return toneStyle(present.Red)
	}
}
