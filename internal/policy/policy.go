// Package policy enforces a repository's lint budget on ESLint results.
package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ppiankov/lintinsights/internal/eslint"
	"gopkg.in/yaml.v3"
)

// FileNames are the policy files looked up from the working directory.
var FileNames = []string{".lintinsights-policy.yaml", ".lintinsights-policy.yml"}

// Policy defines enforcement rules for lint results.
type Policy struct {
	Version string `yaml:"version"`
	Rules   Rules  `yaml:"rules"`
}

// Rules contains all configurable policy rules.
type Rules struct {
	MaxProblems *int     `yaml:"max_problems,omitempty"`
	MaxErrors   *int     `yaml:"max_errors,omitempty"`
	MaxWarnings *int     `yaml:"max_warnings,omitempty"`
	MaxFixable  *int     `yaml:"max_fixable,omitempty"`
	ForbidRules []string `yaml:"forbid_rules,omitempty"`
	ForbidFatal bool     `yaml:"forbid_fatal,omitempty"`
	MaxPerFile  *int     `yaml:"max_per_file,omitempty"`
}

// Violation is a single policy failure.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result holds the outcome of a policy check.
type Result struct {
	Pass       bool        `json:"pass"`
	Violations []Violation `json:"violations"`
}

// LoadFromFile reads a policy file. A missing file yields a nil policy.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	return &p, nil
}

// FindPolicyFile searches dir and its parents for a policy file.
func FindPolicyFile(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Evaluate checks lint results against the policy rules.
func (p *Policy) Evaluate(results []eslint.LintResult) *Result {
	if p == nil {
		return &Result{Pass: true}
	}

	var errors, warnings, fixable, fatal int
	var violations []Violation
	byRule := map[string]int{}
	for _, r := range results {
		errors += r.ErrorCount
		warnings += r.WarningCount
		fixable += r.FixableErrorCount + r.FixableWarningCount
		for _, m := range r.Messages {
			byRule[eslint.RuleName(m)]++
			if m.Fatal {
				fatal++
			}
		}

		// max_per_file
		if p.Rules.MaxPerFile != nil && len(r.Messages) > *p.Rules.MaxPerFile {
			violations = append(violations, Violation{
				Rule:    "max_per_file",
				Message: fmt.Sprintf("%s has %d problems, limit %d", r.FilePath, len(r.Messages), *p.Rules.MaxPerFile),
			})
		}
	}

	// max_problems
	if p.Rules.MaxProblems != nil && errors+warnings > *p.Rules.MaxProblems {
		violations = append(violations, Violation{
			Rule:    "max_problems",
			Message: fmt.Sprintf("total problems %d exceeds limit %d", errors+warnings, *p.Rules.MaxProblems),
		})
	}

	// max_errors
	if p.Rules.MaxErrors != nil && errors > *p.Rules.MaxErrors {
		violations = append(violations, Violation{
			Rule:    "max_errors",
			Message: fmt.Sprintf("errors %d exceeds limit %d", errors, *p.Rules.MaxErrors),
		})
	}

	// max_warnings
	if p.Rules.MaxWarnings != nil && warnings > *p.Rules.MaxWarnings {
		violations = append(violations, Violation{
			Rule:    "max_warnings",
			Message: fmt.Sprintf("warnings %d exceeds limit %d", warnings, *p.Rules.MaxWarnings),
		})
	}

	// max_fixable
	if p.Rules.MaxFixable != nil && fixable > *p.Rules.MaxFixable {
		violations = append(violations, Violation{
			Rule:    "max_fixable",
			Message: fmt.Sprintf("fixable problems %d exceeds limit %d (run eslint --fix)", fixable, *p.Rules.MaxFixable),
		})
	}

	// forbid_rules
	forbidden := append([]string(nil), p.Rules.ForbidRules...)
	sort.Strings(forbidden)
	for _, rule := range forbidden {
		if count := byRule[rule]; count > 0 {
			violations = append(violations, Violation{
				Rule:    "forbid_rules",
				Message: fmt.Sprintf("forbidden rule %q has %d problems", rule, count),
			})
		}
	}

	// forbid_fatal
	if p.Rules.ForbidFatal && fatal > 0 {
		violations = append(violations, Violation{
			Rule:    "forbid_fatal",
			Message: fmt.Sprintf("%d fatal parse error(s)", fatal),
		})
	}

	return &Result{
		Pass:       len(violations) == 0,
		Violations: violations,
	}
}

// GenerateSamplePolicy returns a commented starting policy.
func GenerateSamplePolicy() string {
	return `# lintinsights lint policy
# Save as .lintinsights-policy.yaml at the repository root. format and run
# exit 1 when the ESLint results break any rule below.
version: "1"
rules:
  # Total errors plus warnings
  # max_problems: 100

  # max_errors: 0
  max_warnings: 50

  # Problems "eslint --fix" would resolve
  # max_fixable: 0

  # Problems in a single file
  # max_per_file: 25

  # Rules that must report nothing. Use "null" for parse errors.
  forbid_rules:
    - no-debugger

  # Fail on fatal parse errors
  forbid_fatal: true
`
}
