package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/lintinsights/internal/insights"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 5

// renderHeader shows the report as it would be uploaded.
func renderHeader(reportID string, report insights.ReportSummary, items []Item, width int) string {
	var b strings.Builder

	// Line 1: report id and result
	b.WriteString(fmt.Sprintf("lintinsights  %s  %s", reportID, resultStyle(report.Result).Render(report.Result)))
	b.WriteString("\n")

	// Line 2: details
	b.WriteString(report.Details)
	b.WriteString("\n")

	// Line 3: severity breakdown
	counts := make(map[insights.Severity]int)
	for _, item := range items {
		counts[item.Annotation.Severity]++
	}
	sevParts := make([]string, 0, 2)
	for _, sev := range []insights.Severity{insights.SeverityHigh, insights.SeverityMedium} {
		if counts[sev] > 0 {
			label := fmt.Sprintf("%s:%d", sev, counts[sev])
			sevParts = append(sevParts, severityStyle(sev).Render(label))
		}
	}
	b.WriteString(strings.Join(sevParts, "  "))
	b.WriteString("\n")

	// Line 4: noisiest rules
	if top := topRules(items, 3); len(top) > 0 {
		parts := make([]string, 0, len(top))
		for _, rc := range top {
			parts = append(parts, fmt.Sprintf("%s:%d", rc.Rule, rc.Count))
		}
		b.WriteString("Top rules: ")
		b.WriteString(strings.Join(parts, "  "))
	}

	return styleHeader.Width(width).Render(b.String())
}

// renderDetail produces the detail view for a selected item.
func renderDetail(item *Item, width int) string {
	if item == nil {
		return styleDetailPanel.Width(width).Render("No problem selected")
	}

	var b strings.Builder

	sevStyled := severityStyle(item.Annotation.Severity).Render(string(item.Annotation.Severity))
	b.WriteString(fmt.Sprintf("%s  %s\n", sevStyled, item.Rule))
	b.WriteString(fmt.Sprintf("Location: %s\n", location(*item)))
	b.WriteString(fmt.Sprintf("Message: %s\n", item.Message))
	b.WriteString(fmt.Sprintf("Summary: %s", item.Annotation.Summary))

	return styleDetailPanel.Width(width).Render(b.String())
}
