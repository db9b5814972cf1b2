package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var tableColumns = []table.Column{
	{Title: "Severity", Width: 8},
	{Title: "Location", Width: 32},
	{Title: "Rule", Width: 22},
	{Title: "Message", Width: 48},
}

// buildRows converts items to table rows.
func buildRows(items []Item) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, table.Row{
			string(item.Annotation.Severity),
			truncate(location(item), tableColumns[1].Width),
			truncate(item.Rule, tableColumns[2].Width),
			truncate(item.Message, tableColumns[3].Width),
		})
	}
	return rows
}

// location renders path:line:column.
func location(item Item) string {
	return fmt.Sprintf("%s:%d:%d", item.Annotation.Path, item.Annotation.Line, item.Column)
}

// truncate shortens s to maxLen runes, marking the cut with an ellipsis.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

// newTable creates a bubbles table with standard columns and styling.
func newTable(rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(tableColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorAccent).
		Bold(false)
	t.SetStyles(s)

	return t
}
