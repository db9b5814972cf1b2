package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/lintinsights/internal/config"
	"github.com/ppiankov/lintinsights/internal/logging"
	"github.com/ppiankov/lintinsights/internal/policy"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	// Exit codes follow ESLint: 1 for lint problems, 2 for bad input
	ExitOK           = 0 // Success
	ExitPolicyFail   = 1 // Lint errors, too many warnings, or policy violations
	ExitInvalidInput = 2 // Unparseable ESLint output
	ExitRuntimeError = 3 // Config, I/O, or upload error
)

var (
	// Global config instance
	cfg *config.Config

	// Shared logger, rebuilt once flags and config are known
	logger = logging.New(logging.Options{})

	// Global flags
	configFile string
	verbose    bool
	debug      bool
	logFormat  string
	logFile    string

	buildVersion = "dev"
)

// SetVersion records the version injected at build time.
func SetVersion(v string) {
	if v != "" {
		buildVersion = v
	}
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lintinsights",
	Short: "Publish ESLint results as Bitbucket Code Insights",
	Long: `lintinsights prints ESLint results in the familiar "stylish" layout and
publishes them to Bitbucket Cloud as a Code Insights report with one
annotation per problem.

The report is attached to the commit named by the environment:

  BITBUCKET_WORKSPACE   workspace (set by Pipelines)
  BITBUCKET_REPO_SLUG   repository slug (set by Pipelines)
  BITBUCKET_COMMIT      commit hash (set by Pipelines)
  BITBUCKET_API_AUTH    API access token

Quick start:
  eslint -f json . | lintinsights format
  lintinsights run -- src/
  lintinsights preview results.json --format yaml
  lintinsights browse results.json
  lintinsights init
  lintinsights doctor`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}
		if logFormat != "" {
			cfg.LogFormat = logFormat
		}
		if logFile != "" {
			cfg.LogFile = logFile
		}

		logger = logging.New(logging.Options{
			Format:  cfg.LogFormat,
			Verbose: cfg.Verbose,
			Debug:   cfg.Debug,
			Output:  cmd.ErrOrStderr(),
			File:    cfg.LogFile,
		})
		return nil
	},
}

// Execute runs the root command and exits with the mapped status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		reportError(err)
	}
	os.Exit(HandleError(err))
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./lintinsights.yaml or ~/lintinsights.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (logs every annotation)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text or json (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also write JSON logs to this file, rotated daily")

	// Add subcommands
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lintinsights %s\n", buildVersion)
		fmt.Fprintln(cmd.OutOrStdout(), "ESLint reporter for Bitbucket Code Insights")
	},
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	var validationErr *ValidationError
	var thresholdErr *ThresholdExceededError
	var lintErr *LintFailedError
	var policyErr *PolicyViolationError

	switch {
	case errors.As(err, &validationErr):
		return ExitInvalidInput
	case errors.As(err, &thresholdErr), errors.As(err, &lintErr), errors.As(err, &policyErr):
		return ExitPolicyFail
	default:
		return ExitRuntimeError
	}
}

// reportError prints err unless the formatted output already explains it.
func reportError(err error) {
	var lintErr *LintFailedError
	if errors.As(err, &lintErr) {
		return
	}
	var thresholdErr *ThresholdExceededError
	if errors.As(err, &thresholdErr) {
		fmt.Fprintf(os.Stderr, "ESLint found too many warnings (maximum: %d).\n", thresholdErr.Threshold)
		return
	}
	var policyErr *PolicyViolationError
	if errors.As(err, &policyErr) {
		fmt.Fprintln(os.Stderr, "Lint policy failed:")
		for _, v := range policyErr.Violations {
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", v.Rule, v.Message)
		}
		return
	}
	logError("%v", err)
}

// ValidationError represents a validation failure
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ThresholdExceededError is returned when warnings exceed --max-warnings.
type ThresholdExceededError struct {
	IssueCount int
	Threshold  int
}

func (e *ThresholdExceededError) Error() string {
	return fmt.Sprintf("warning count (%d) exceeds maximum (%d)", e.IssueCount, e.Threshold)
}

// LintFailedError is returned when the results contain errors.
type LintFailedError struct {
	Errors   int
	Warnings int
}

func (e *LintFailedError) Error() string {
	return fmt.Sprintf("lint failed with %d error(s) and %d warning(s)", e.Errors, e.Warnings)
}

// PolicyViolationError is returned when results break the lint policy.
type PolicyViolationError struct {
	Violations []policy.Violation
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("lint policy failed with %d violation(s)", len(e.Violations))
}

// UploadError wraps a failed Code Insights upload. It only surfaces when
// --fail-on-upload-error is set.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("code insights upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// logVerbose logs at info level when verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	if cfg != nil && cfg.Verbose {
		logger.Infof(format, args...)
	}
}

// logDebug logs at debug level when debug mode is enabled
func logDebug(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		logger.Debugf(format, args...)
	}
}

// logError logs an error regardless of mode
func logError(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// fieldLogger returns the shared logger for packages that take logrus fields.
func fieldLogger() logrus.FieldLogger {
	return logger
}
