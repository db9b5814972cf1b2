// Package eslint models the JSON emitted by `eslint --format json`.
package eslint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Severity levels as ESLint reports them.
const (
	SeverityWarning = 1
	SeverityError   = 2
)

// LintMessage is one issue within a file.
type LintMessage struct {
	RuleID    *string `json:"ruleId"`
	Severity  int     `json:"severity"`
	Message   string  `json:"message"`
	Line      int     `json:"line"`
	Column    int     `json:"column"`
	EndLine   int     `json:"endLine,omitempty"`
	EndColumn int     `json:"endColumn,omitempty"`
	Fatal     bool    `json:"fatal,omitempty"`
}

// LintResult is the per-file aggregate.
type LintResult struct {
	FilePath            string        `json:"filePath"`
	Messages            []LintMessage `json:"messages"`
	ErrorCount          int           `json:"errorCount"`
	WarningCount        int           `json:"warningCount"`
	FixableErrorCount   int           `json:"fixableErrorCount"`
	FixableWarningCount int           `json:"fixableWarningCount"`
}

// RuleName renders the rule id for ids and summaries. Messages without a
// rule (parse errors) render as "null".
func RuleName(m LintMessage) string {
	if m.RuleID == nil {
		return "null"
	}
	return *m.RuleID
}

// Rule returns a pointer suitable for LintMessage.RuleID.
func Rule(id string) *string {
	return &id
}

// ParseResults decodes ESLint JSON formatter output.
func ParseResults(data []byte) ([]LintResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty ESLint output")
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("ESLint output must be a JSON array of results")
	}

	var results []LintResult
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil, fmt.Errorf("failed to parse ESLint output: %w", err)
	}

	for i, r := range results {
		if r.FilePath == "" {
			return nil, fmt.Errorf("result %d: missing filePath", i)
		}
	}

	return results, nil
}

// ReadResults reads and parses ESLint JSON output from r.
func ReadResults(r io.Reader) ([]LintResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read ESLint output: %w", err)
	}
	return ParseResults(data)
}

// Totals sums error and warning counts across results.
func Totals(results []LintResult) (errors, warnings int) {
	for _, r := range results {
		errors += r.ErrorCount
		warnings += r.WarningCount
	}
	return errors, warnings
}
