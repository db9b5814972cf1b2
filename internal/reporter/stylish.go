package reporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/lintinsights/internal/eslint"
)

var (
	colorError   = lipgloss.Color("#FF0000")
	colorWarning = lipgloss.Color("#FFFF00")
	colorMuted   = lipgloss.Color("#888888")

	stylePath    = lipgloss.NewStyle().Underline(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
)

// StylishReporter renders results the way ESLint's default "stylish"
// formatter does.
type StylishReporter struct {
	writer io.Writer
	color  bool
}

// NewStylishReporter creates a new stylish reporter
func NewStylishReporter(writer io.Writer, color bool) *StylishReporter {
	return &StylishReporter{
		writer: writer,
		color:  color,
	}
}

// Generate writes the formatted results
func (r *StylishReporter) Generate(results []eslint.LintResult) error {
	_, err := io.WriteString(r.writer, r.Format(results))
	return err
}

// Format returns the formatted results. It is empty when there are no problems.
func (r *StylishReporter) Format(results []eslint.LintResult) string {
	var b strings.Builder

	errorCount, warningCount := 0, 0
	fixableErrors, fixableWarnings := 0, 0

	for _, result := range results {
		if len(result.Messages) == 0 {
			continue
		}

		errorCount += result.ErrorCount
		warningCount += result.WarningCount
		fixableErrors += result.FixableErrorCount
		fixableWarnings += result.FixableWarningCount

		b.WriteString("\n")
		b.WriteString(r.render(stylePath, result.FilePath))
		b.WriteString("\n")
		r.writeTable(&b, result.Messages)
	}

	total := errorCount + warningCount
	if total == 0 {
		return ""
	}

	summaryStyle := styleWarning.Bold(true)
	if errorCount > 0 {
		summaryStyle = styleError.Bold(true)
	}

	b.WriteString("\n")
	b.WriteString(r.render(summaryStyle, fmt.Sprintf("✖ %d %s (%d %s, %d %s)",
		total, pluralize(total, "problem"),
		errorCount, pluralize(errorCount, "error"),
		warningCount, pluralize(warningCount, "warning"))))
	b.WriteString("\n")

	if fixableErrors > 0 || fixableWarnings > 0 {
		b.WriteString(r.render(summaryStyle, fmt.Sprintf("  %d %s and %d %s potentially fixable with the `--fix` option.",
			fixableErrors, pluralize(fixableErrors, "error"),
			fixableWarnings, pluralize(fixableWarnings, "warning"))))
		b.WriteString("\n")
	}

	// Trailing blank line, as ESLint prints it
	b.WriteString("\n")
	return b.String()
}

type stylishRow struct {
	position string
	kind     string
	message  string
	rule     string
}

func (r *StylishReporter) writeTable(b *strings.Builder, messages []eslint.LintMessage) {
	rows := make([]stylishRow, 0, len(messages))
	posWidth, kindWidth, msgWidth := 0, 0, 0

	for _, m := range messages {
		kind := "warning"
		if m.Fatal || m.Severity == eslint.SeverityError {
			kind = "error"
		}
		row := stylishRow{
			position: strconv.Itoa(m.Line) + ":" + strconv.Itoa(m.Column),
			kind:     kind,
			message:  strings.TrimSuffix(strings.ReplaceAll(m.Message, "\n", " "), "."),
		}
		if m.RuleID != nil {
			row.rule = *m.RuleID
		}
		rows = append(rows, row)

		posWidth = maxInt(posWidth, len(row.position))
		kindWidth = maxInt(kindWidth, len(row.kind))
		msgWidth = maxInt(msgWidth, len([]rune(row.message)))
	}

	for _, row := range rows {
		kindStyle := styleWarning
		if row.kind == "error" {
			kindStyle = styleError
		}

		line := "  " + r.render(styleMuted, padLeft(row.position, posWidth)) +
			"  " + r.render(kindStyle, padRight(row.kind, kindWidth)) +
			"  " + padRight(row.message, msgWidth) +
			"  " + r.render(styleMuted, row.rule)
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
}

func (r *StylishReporter) render(style lipgloss.Style, text string) string {
	if !r.color || text == "" {
		return text
	}
	return style.Render(text)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func padLeft(s string, width int) string {
	if n := width - len([]rune(s)); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

func padRight(s string, width int) string {
	if n := width - len([]rune(s)); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
