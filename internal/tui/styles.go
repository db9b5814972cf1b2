package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/lintinsights/internal/insights"
)

// Severity colors
var (
	colorHigh   = lipgloss.Color("#FF0000")
	colorMedium = lipgloss.Color("#FFFF00")
	colorPassed = lipgloss.Color("#00FF00")
	colorMuted  = lipgloss.Color("#888888")
	colorAccent = lipgloss.Color("#7B68EE")
	colorBorder = lipgloss.Color("#444444")
)

// Panel styles
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	styleDetailPanel = lipgloss.NewStyle().
				Padding(0, 1).
				BorderStyle(lipgloss.NormalBorder()).
				BorderTop(true).
				BorderForeground(colorBorder)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleSearchPrompt = lipgloss.NewStyle().
				Foreground(colorAccent).Bold(true)
)

// severityStyle returns the lipgloss style for an annotation severity.
func severityStyle(severity insights.Severity) lipgloss.Style {
	switch severity {
	case insights.SeverityHigh:
		return lipgloss.NewStyle().Foreground(colorHigh).Bold(true)
	case insights.SeverityMedium:
		return lipgloss.NewStyle().Foreground(colorMedium)
	default:
		return lipgloss.NewStyle()
	}
}

// resultStyle returns the lipgloss style for a report result.
func resultStyle(result string) lipgloss.Style {
	switch result {
	case insights.ResultPassed:
		return lipgloss.NewStyle().Foreground(colorPassed).Bold(true)
	case insights.ResultFailed:
		return lipgloss.NewStyle().Foreground(colorHigh).Bold(true)
	default:
		return lipgloss.NewStyle()
	}
}
