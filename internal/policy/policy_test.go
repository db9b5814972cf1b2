package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/lintinsights/internal/eslint"
)

func intPtr(v int) *int { return &v }

func baseResults() []eslint.LintResult {
	return []eslint.LintResult{
		{
			FilePath: "/repo/src/app.js",
			Messages: []eslint.LintMessage{
				{RuleID: eslint.Rule("no-debugger"), Severity: 2, Message: "Unexpected 'debugger' statement.", Line: 4, Column: 1},
				{RuleID: eslint.Rule("no-console"), Severity: 1, Message: "Unexpected console statement.", Line: 9, Column: 3},
			},
			ErrorCount:        1,
			WarningCount:      1,
			FixableErrorCount: 1,
		},
		{
			FilePath: "/repo/src/util.js",
			Messages: []eslint.LintMessage{
				{RuleID: eslint.Rule("no-console"), Severity: 1, Message: "Unexpected console statement.", Line: 2, Column: 1},
			},
			WarningCount: 1,
		},
	}
}

func TestEvaluateNilPolicy(t *testing.T) {
	var p *Policy
	result := p.Evaluate(baseResults())
	if !result.Pass {
		t.Error("nil policy should pass")
	}
}

func TestMaxProblemsPass(t *testing.T) {
	p := &Policy{Rules: Rules{MaxProblems: intPtr(3)}}
	result := p.Evaluate(baseResults())
	if !result.Pass {
		t.Errorf("expected pass, got violations: %v", result.Violations)
	}
}

func TestMaxProblemsFail(t *testing.T) {
	p := &Policy{Rules: Rules{MaxProblems: intPtr(2)}}
	result := p.Evaluate(baseResults())
	if result.Pass {
		t.Error("expected fail: 3 problems exceeds limit 2")
	}
	if len(result.Violations) != 1 || result.Violations[0].Rule != "max_problems" {
		t.Errorf("expected max_problems violation, got %v", result.Violations)
	}
}

func TestMaxErrorsFail(t *testing.T) {
	p := &Policy{Rules: Rules{MaxErrors: intPtr(0)}}
	result := p.Evaluate(baseResults())
	if result.Pass {
		t.Error("expected fail: 1 error exceeds limit 0")
	}
	if result.Violations[0].Rule != "max_errors" {
		t.Errorf("expected max_errors, got %s", result.Violations[0].Rule)
	}
}

func TestMaxWarnings(t *testing.T) {
	tests := []struct {
		limit int
		pass  bool
	}{
		{limit: 1, pass: false},
		{limit: 2, pass: true},
		{limit: 10, pass: true},
	}

	for _, tt := range tests {
		p := &Policy{Rules: Rules{MaxWarnings: intPtr(tt.limit)}}
		if got := p.Evaluate(baseResults()).Pass; got != tt.pass {
			t.Errorf("max_warnings %d: pass = %v, want %v", tt.limit, got, tt.pass)
		}
	}
}

func TestMaxFixableFail(t *testing.T) {
	p := &Policy{Rules: Rules{MaxFixable: intPtr(0)}}
	result := p.Evaluate(baseResults())
	if result.Pass {
		t.Fatal("expected fail: 1 fixable problem exceeds limit 0")
	}
	if !strings.Contains(result.Violations[0].Message, "eslint --fix") {
		t.Errorf("expected fix hint, got %q", result.Violations[0].Message)
	}
}

func TestMaxPerFileFail(t *testing.T) {
	p := &Policy{Rules: Rules{MaxPerFile: intPtr(1)}}
	result := p.Evaluate(baseResults())
	if len(result.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %v", result.Violations)
	}
	if !strings.Contains(result.Violations[0].Message, "/repo/src/app.js") {
		t.Errorf("violation should name the file, got %q", result.Violations[0].Message)
	}
}

func TestForbidRules(t *testing.T) {
	p := &Policy{Rules: Rules{ForbidRules: []string{"no-console", "eqeqeq", "no-debugger"}}}
	result := p.Evaluate(baseResults())
	if result.Pass {
		t.Fatal("expected fail for forbidden rules")
	}
	if len(result.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", result.Violations)
	}
	// Reported in rule-name order
	if !strings.Contains(result.Violations[0].Message, `"no-console" has 2`) {
		t.Errorf("first violation = %q", result.Violations[0].Message)
	}
	if !strings.Contains(result.Violations[1].Message, `"no-debugger" has 1`) {
		t.Errorf("second violation = %q", result.Violations[1].Message)
	}
}

func TestForbidRulesNullRule(t *testing.T) {
	results := []eslint.LintResult{{
		FilePath:   "/repo/broken.js",
		Messages:   []eslint.LintMessage{{Severity: 2, Message: "Parsing error: Unexpected token", Line: 1, Column: 1, Fatal: true}},
		ErrorCount: 1,
	}}

	p := &Policy{Rules: Rules{ForbidRules: []string{"null"}, ForbidFatal: true}}
	result := p.Evaluate(results)
	if len(result.Violations) != 2 {
		t.Fatalf("expected forbid_rules and forbid_fatal, got %v", result.Violations)
	}
	if result.Violations[1].Rule != "forbid_fatal" {
		t.Errorf("expected forbid_fatal, got %s", result.Violations[1].Rule)
	}
}

func TestEmptyResultsPass(t *testing.T) {
	p := &Policy{Rules: Rules{
		MaxProblems: intPtr(0),
		MaxErrors:   intPtr(0),
		MaxWarnings: intPtr(0),
		ForbidRules: []string{"no-console"},
		ForbidFatal: true,
	}}
	if result := p.Evaluate(nil); !result.Pass {
		t.Errorf("no results should pass, got %v", result.Violations)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lintinsights-policy.yaml")
	content := `version: "1"
rules:
  max_warnings: 10
  max_errors: 0
  forbid_rules:
    - no-debugger
  forbid_fatal: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if p.Version != "1" {
		t.Errorf("version = %q, want 1", p.Version)
	}
	if p.Rules.MaxWarnings == nil || *p.Rules.MaxWarnings != 10 {
		t.Errorf("max_warnings = %v, want 10", p.Rules.MaxWarnings)
	}
	if p.Rules.MaxErrors == nil || *p.Rules.MaxErrors != 0 {
		t.Errorf("max_errors = %v, want 0", p.Rules.MaxErrors)
	}
	if p.Rules.MaxProblems != nil {
		t.Error("max_problems should be unset")
	}
	if len(p.Rules.ForbidRules) != 1 || p.Rules.ForbidRules[0] != "no-debugger" {
		t.Errorf("forbid_rules = %v", p.Rules.ForbidRules)
	}
	if !p.Rules.ForbidFatal {
		t.Error("forbid_fatal should be true")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	p, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if p != nil {
		t.Error("missing file should yield nil policy")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("rules: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestFindPolicyFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "packages", "web")
	if err := os.MkdirAll(nested, 0750); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, ".lintinsights-policy.yml")
	if err := os.WriteFile(want, []byte("rules: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := FindPolicyFile(nested); got != want {
		t.Errorf("FindPolicyFile() = %q, want %q", got, want)
	}
}

func TestFindPolicyFilePrefersNearest(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "app")
	if err := os.MkdirAll(nested, 0750); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{root, nested} {
		if err := os.WriteFile(filepath.Join(dir, ".lintinsights-policy.yaml"), []byte("rules: {}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	want := filepath.Join(nested, ".lintinsights-policy.yaml")
	if got := FindPolicyFile(nested); got != want {
		t.Errorf("FindPolicyFile() = %q, want %q", got, want)
	}
}

func TestGenerateSamplePolicyParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lintinsights-policy.yaml")
	if err := os.WriteFile(path, []byte(GenerateSamplePolicy()), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("sample policy should parse: %v", err)
	}
	if p.Rules.MaxWarnings == nil || *p.Rules.MaxWarnings != 50 {
		t.Errorf("max_warnings = %v, want 50", p.Rules.MaxWarnings)
	}
	if p.Rules.MaxErrors != nil {
		t.Error("max_errors is commented out in the sample")
	}
	if !p.Rules.ForbidFatal || len(p.Rules.ForbidRules) != 1 {
		t.Errorf("unexpected sample rules: %+v", p.Rules)
	}
}
