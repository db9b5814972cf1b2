package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ppiankov/lintinsights/internal/eslint"
	"github.com/ppiankov/lintinsights/internal/runner"
	"github.com/spf13/cobra"
)

var (
	runBinary  string
	runTimeout time.Duration
	runDryRun  bool
	runFlags   pipelineFlags
)

var runCmd = &cobra.Command{
	Use:   "run [-- eslint args]",
	Short: "Run ESLint and publish its results in one step",
	Long: `Run performs a full lint cycle:

  1. Execute: run ESLint with --format json, capture output
  2. Parse  : read the JSON results
  3. Report : print stylish text and upload to Code Insights

Arguments after "--" are passed to ESLint unchanged (default: ".").
Use --dry-run to see the command without executing it.
Use --timeout to bound the ESLint run (default: 5m).

Example:
  lintinsights run
  lintinsights run -- src/ --ext .ts,.tsx
  lintinsights run --binary ./node_modules/.bin/eslint -- lib/`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runBinary, "binary", runner.DefaultBinary,
		"ESLint executable (npx runs the project's local eslint)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", runner.DefaultTimeout,
		"ESLint execution timeout")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"show the ESLint command without executing it")
	runFlags.register(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	runCfg := runner.RunConfig{
		Binary:  runBinary,
		Args:    args,
		Timeout: runTimeout,
	}

	// Dry-run: show the command and exit
	if runDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Dry run, would execute:\n\n  %s %s\n",
			runCfg.Binary, strings.Join(runner.Args(runCfg), " "))
		return nil
	}

	// Step 1: Execute
	execFn := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		c := exec.CommandContext(ctx, name, args...)
		c.Stderr = os.Stderr
		return c.Output()
	}

	r := runner.New(execFn)
	res := r.Run(cmd.Context(), runCfg)
	if !res.Success {
		return fmt.Errorf("eslint failed (%s): %s", res.Command(), res.Error)
	}

	logVerbose("✓ %s (%s, exit %d)", res.Command(), res.Duration, res.ExitCode)

	// Step 2: Parse
	results, err := eslint.ReadResults(bytes.NewReader(res.Output))
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("eslint output: %v", err)}
	}

	// Step 3: Report through shared pipeline
	pcfg, err := runFlags.config(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return RunPipeline(cmd.Context(), results, pcfg)
}
