package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout is the ESLint execution timeout.
const DefaultTimeout = 5 * time.Minute

// DefaultBinary runs the project's local ESLint through npx.
const DefaultBinary = "npx"

// ExecFunc is the signature for running a command and capturing stdout.
// It receives the context, binary path, and args. Returns stdout bytes and error.
type ExecFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// RunConfig describes a single ESLint invocation.
type RunConfig struct {
	Binary  string
	Args    []string
	Timeout time.Duration
}

// RunResult is the outcome of an ESLint invocation.
type RunResult struct {
	Binary   string        `json:"binary"`
	Args     []string      `json:"args"`
	Output   []byte        `json:"-"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// exitCoder is satisfied by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}

// Runner executes ESLint and captures its JSON output.
type Runner struct {
	execFn ExecFunc
}

// New creates a Runner with the given exec function.
func New(execFn ExecFunc) *Runner {
	return &Runner{
		execFn: execFn,
	}
}

// Args builds the command line: eslint, the caller's args, then --format json.
// With the npx binary, "eslint" is prepended.
func Args(cfg RunConfig) []string {
	var args []string
	if cfg.Binary == DefaultBinary {
		args = append(args, "eslint")
	}
	args = append(args, cfg.Args...)
	if len(cfg.Args) == 0 {
		args = append(args, ".")
	}
	return append(args, "--format", "json")
}

// Run executes ESLint once. Exit status 1 means lint errors were found and
// still counts as success when output was produced.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) RunResult {
	binary := cfg.Binary
	if binary == "" {
		binary = DefaultBinary
		cfg.Binary = binary
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := Args(cfg)

	start := time.Now()
	stdout, err := r.execFn(runCtx, binary, args...)
	duration := time.Since(start)

	result := RunResult{
		Binary:   binary,
		Args:     args,
		Output:   stdout,
		Duration: duration,
	}

	if err != nil {
		var ec exitCoder
		if errors.As(err, &ec) {
			result.ExitCode = ec.ExitCode()
		}
		if result.ExitCode == 1 && len(strings.TrimSpace(string(stdout))) > 0 {
			result.Success = true
			return result
		}
		if runCtx.Err() != nil {
			err = fmt.Errorf("eslint timed out after %s: %w", timeout, runCtx.Err())
		}
		result.Error = err.Error()
		return result
	}

	if len(strings.TrimSpace(string(stdout))) == 0 {
		result.Error = "eslint produced no output"
		return result
	}

	result.Success = true
	return result
}

// Command renders the invocation for dry runs and logs.
func (res RunResult) Command() string {
	return strings.TrimSpace(res.Binary + " " + strings.Join(res.Args, " "))
}
