// Package insights maps ESLint results onto Bitbucket Code Insights
// report and annotation payloads.
package insights

import (
	"fmt"
	"path/filepath"

	"github.com/ppiankov/lintinsights/internal/eslint"
	"github.com/sirupsen/logrus"
)

const (
	// MaxSummaryLength is the Bitbucket limit for an annotation summary.
	MaxSummaryLength = 450
	// SummaryCutoff is the length summaries are cut to, leaving headroom.
	SummaryCutoff = 440

	ReportTitle    = "ESLint Bitbucket reporter"
	ReportReporter = "ESLint"
	ReportType     = "TEST"
	AnnotationType = "BUG"
)

// Report results.
const (
	ResultPassed = "PASSED"
	ResultFailed = "FAILED"
)

// Severity is an annotation severity tag.
type Severity string

const (
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// ReportSummary is the body of the report PUT request.
type ReportSummary struct {
	Title      string `json:"title" yaml:"title"`
	Reporter   string `json:"reporter" yaml:"reporter"`
	ReportType string `json:"report_type" yaml:"report_type"`
	Details    string `json:"details" yaml:"details"`
	Result     string `json:"result" yaml:"result"`
}

// Annotation is one element of the annotations POST body.
type Annotation struct {
	ExternalID     string   `json:"external_id" yaml:"external_id"`
	Line           int      `json:"line" yaml:"line"`
	Path           string   `json:"path" yaml:"path"`
	Summary        string   `json:"summary" yaml:"summary"`
	AnnotationType string   `json:"annotation_type" yaml:"annotation_type"`
	Severity       Severity `json:"severity" yaml:"severity"`
}

// ReportID returns the report id for a commit. The same commit always
// yields the same id, so a rerun replaces the previous report.
func ReportID(commit string) string {
	return "eslint-" + commit
}

// GenerateReport reduces results to a single report summary.
func GenerateReport(results []eslint.LintResult) ReportSummary {
	errorCount, warningCount := eslint.Totals(results)
	problemCount := errorCount + warningCount

	details := fmt.Sprintf("%d %s (%d %s, %d %s)",
		problemCount, plural(problemCount, "problem"),
		errorCount, plural(errorCount, "error"),
		warningCount, plural(warningCount, "warning"))

	result := ResultPassed
	if errorCount > 0 {
		result = ResultFailed
	}

	return ReportSummary{
		Title:      ReportTitle,
		Reporter:   ReportReporter,
		ReportType: ReportType,
		Details:    details,
		Result:     result,
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Builder turns lint messages into annotations.
type Builder struct {
	// WorkDir is the directory annotation paths are made relative to.
	WorkDir string
	Log     logrus.FieldLogger
}

// GenerateAnnotations builds annotations without diagnostic logging.
func GenerateAnnotations(results []eslint.LintResult, reportID, workDir string) []Annotation {
	b := &Builder{WorkDir: workDir}
	return b.Annotations(results, reportID)
}

// Annotations returns one annotation per message, in file order and then
// message order. The message index keeps external ids unique when a file
// has several hits of the same rule on the same line.
func (b *Builder) Annotations(results []eslint.LintResult, reportID string) []Annotation {
	var annotations []Annotation
	for _, result := range results {
		path := b.relativePath(result.FilePath)
		for i, msg := range result.Messages {
			rule := eslint.RuleName(msg)
			summary := Summary(msg)

			if b.Log != nil {
				b.Log.WithFields(logrus.Fields{
					"path":   path,
					"line":   msg.Line,
					"length": len([]rune(summary)),
				}).Debug(summary)
			}

			annotations = append(annotations, Annotation{
				ExternalID:     fmt.Sprintf("%s-%s-%d-%s-%d", reportID, path, msg.Line, rule, i),
				Line:           msg.Line,
				Path:           path,
				Summary:        summary,
				AnnotationType: AnnotationType,
				Severity:       SeverityFor(msg.Severity),
			})
		}
	}
	return annotations
}

func (b *Builder) relativePath(filePath string) string {
	if b.WorkDir == "" {
		return filepath.ToSlash(filePath)
	}
	rel, err := filepath.Rel(b.WorkDir, filePath)
	if err != nil {
		return filepath.ToSlash(filePath)
	}
	return filepath.ToSlash(rel)
}

// Summary builds the annotation summary: the tail of the message starting
// at 440 minus the rule length, followed by the rule in parentheses, cut to
// SummaryCutoff characters. Short messages therefore keep only the rule.
func Summary(msg eslint.LintMessage) string {
	rule := eslint.RuleName(msg)

	ruleLen := 1
	if msg.RuleID != nil && *msg.RuleID != "" {
		ruleLen = len([]rune(*msg.RuleID))
	}

	text := []rune(msg.Message)
	offset := SummaryCutoff - ruleLen
	if offset < 0 {
		offset = 0
	}
	tail := ""
	if offset < len(text) {
		tail = string(text[offset:])
	}

	summary := []rune(fmt.Sprintf("%s (%s)", tail, rule))
	if len(summary) > SummaryCutoff {
		summary = summary[:SummaryCutoff]
	}
	return string(summary)
}

// SeverityFor maps an ESLint severity to an annotation severity.
func SeverityFor(severity int) Severity {
	if severity == eslint.SeverityWarning {
		return SeverityMedium
	}
	return SeverityHigh
}
