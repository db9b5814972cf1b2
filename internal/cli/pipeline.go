package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/lintinsights/internal/bitbucket"
	"github.com/ppiankov/lintinsights/internal/eslint"
	"github.com/ppiankov/lintinsights/internal/formatter"
	"github.com/ppiankov/lintinsights/internal/policy"
	"github.com/ppiankov/lintinsights/internal/uploader"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// PipelineConfig holds options for the shared format-and-upload pipeline.
type PipelineConfig struct {
	Upload            bool
	Color             bool
	MaxWarnings       int // negative disables the check
	FailOnUploadError bool
	Policy            *policy.Policy // nil disables policy checks
	WorkDir           string
	Out               io.Writer
}

// pipelineFlags are the flags shared by format and run.
type pipelineFlags struct {
	maxWarnings       int
	failOnUploadError bool
	noUpload          bool
	noColor           bool
	policyFile        string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxWarnings, "max-warnings", -1,
		"exit 1 if warnings exceed this number (-1 = disabled)")
	cmd.Flags().BoolVar(&f.failOnUploadError, "fail-on-upload-error", false,
		"exit 3 if the Code Insights upload fails")
	cmd.Flags().BoolVar(&f.noUpload, "no-upload", false,
		"print results without uploading them")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false,
		"disable colored output")
	cmd.Flags().StringVar(&f.policyFile, "policy", "",
		"policy file (default: nearest .lintinsights-policy.yaml)")
}

func (f *pipelineFlags) config(out io.Writer) (PipelineConfig, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	policyPath := f.policyFile
	if policyPath == "" {
		policyPath = policy.FindPolicyFile(workDir)
	}
	var pol *policy.Policy
	if policyPath != "" {
		pol, err = policy.LoadFromFile(policyPath)
		if err != nil {
			return PipelineConfig{}, fmt.Errorf("failed to load policy: %w", err)
		}
		if pol == nil && f.policyFile != "" {
			return PipelineConfig{}, fmt.Errorf("policy file not found: %s", f.policyFile)
		}
		if pol != nil {
			logVerbose("Using policy %s", policyPath)
		}
	}

	return PipelineConfig{
		Upload:            !f.noUpload,
		Color:             colorEnabled(out, f.noColor),
		MaxWarnings:       f.maxWarnings,
		FailOnUploadError: f.failOnUploadError,
		Policy:            pol,
		WorkDir:           workDir,
		Out:               out,
	}, nil
}

// RunPipeline prints results and uploads them as a Code Insights report.
// The text is written before the upload settles; the process then waits for
// the upload so it is not cut off on exit.
// Order: check env → start upload → print text → wait → exit status.
func RunPipeline(ctx context.Context, results []eslint.LintResult, pcfg PipelineConfig) error {
	var processor formatter.Processor

	// Step 1: Resolve the Bitbucket identifiers before any network call
	if pcfg.Upload {
		if err := cfg.RequireUpload(); err != nil {
			return err
		}

		client := bitbucket.New(bitbucket.Options{
			BaseURL:   cfg.APIURL,
			Token:     cfg.APIToken,
			Workspace: cfg.Workspace,
			RepoSlug:  cfg.RepoSlug,
			Commit:    cfg.Commit,
			Timeout:   cfg.Timeout,
		})
		up := uploader.New(client, cfg.Commit, pcfg.WorkDir, fieldLogger())
		logVerbose("Uploading to %s/%s at %s as %s", cfg.Workspace, cfg.RepoSlug, cfg.Commit, up.ReportID())
		processor = up
	} else {
		logVerbose("Upload disabled, printing results only")
	}

	// Step 2: Start the upload and print the text without waiting for it
	text, upload := formatter.New(processor, pcfg.Color, fieldLogger()).Format(ctx, results)

	out := pcfg.Out
	if out == nil {
		out = os.Stdout
	}
	if _, err := io.WriteString(out, text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Step 3: Let the upload settle. Its error is already logged.
	uploadErr := upload.Wait()

	// Step 4: Exit status
	if uploadErr != nil && pcfg.FailOnUploadError {
		return &UploadError{Err: uploadErr}
	}

	errorCount, warningCount := eslint.Totals(results)
	logDebug("%d file(s), %d error(s), %d warning(s)", len(results), errorCount, warningCount)

	if errorCount > 0 {
		return &LintFailedError{Errors: errorCount, Warnings: warningCount}
	}
	if pcfg.MaxWarnings >= 0 && warningCount > pcfg.MaxWarnings {
		return &ThresholdExceededError{IssueCount: warningCount, Threshold: pcfg.MaxWarnings}
	}
	if result := pcfg.Policy.Evaluate(results); !result.Pass {
		return &PolicyViolationError{Violations: result.Violations}
	}

	return nil
}

// colorEnabled reports whether w is a terminal that should get colors.
func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
