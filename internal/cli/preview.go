package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/lintinsights/internal/insights"
	"github.com/ppiankov/lintinsights/internal/reporter"
	"github.com/spf13/cobra"
)

// previewCommitFallback names the report when no commit is known.
const previewCommitFallback = "local"

var (
	previewFormat string
	previewCommit string
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Show the Code Insights report and annotations without uploading",
	Long: `Preview builds exactly what format would upload for the given ESLint JSON
results and prints it: the report, every annotation, and the size of each
annotations request. Nothing is sent over the network and no BITBUCKET_*
variable is required.

Example:
  eslint -f json . | lintinsights preview
  lintinsights preview results.json --format yaml
  lintinsights preview results.json --commit 919db18`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewFormat, "format", "json",
		"output format: json or yaml")
	previewCmd.Flags().StringVar(&previewCommit, "commit", "",
		"commit the report is named after (default: $BITBUCKET_COMMIT or \"local\")")
}

func runPreview(cmd *cobra.Command, args []string) error {
	if previewFormat != "json" && previewFormat != "yaml" {
		return &ValidationError{Message: fmt.Sprintf("unsupported format: %s (must be json or yaml)", previewFormat)}
	}

	results, err := readResults(cmd, args)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	reportID := insights.ReportID(commitOrFallback(previewCommit))
	builder := &insights.Builder{WorkDir: workDir, Log: fieldLogger()}
	payload := reporter.NewPayload(reportID, insights.GenerateReport(results), builder.Annotations(results, reportID))

	if payload.Dropped > 0 {
		logVerbose("%d annotation(s) exceed the per-report limit and would not be uploaded", payload.Dropped)
	}

	switch previewFormat {
	case "yaml":
		return reporter.NewYAMLReporter(cmd.OutOrStdout()).Generate(payload)
	default:
		return reporter.NewJSONReporter(cmd.OutOrStdout(), true).Generate(payload)
	}
}

// commitOrFallback picks the flag value, then BITBUCKET_COMMIT, then "local".
func commitOrFallback(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.Commit != "" {
		return cfg.Commit
	}
	return previewCommitFallback
}
