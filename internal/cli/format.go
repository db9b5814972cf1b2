package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/lintinsights/internal/eslint"
	"github.com/spf13/cobra"
)

var formatFlags pipelineFlags

// formatCmd represents the format command
var formatCmd = &cobra.Command{
	Use:   "format [file]",
	Short: "Print ESLint JSON results and publish them to Code Insights",
	Long: `Format reads the output of "eslint --format json" from a file or stdin,
prints it in ESLint's stylish layout, and replaces the commit's Code Insights
report with one built from the same results.

The upload runs in the background while the text is printed. Its progress
and failures are logged to stderr and do not change the printed text.

Exit codes:
  0  no errors and warnings within --max-warnings
  1  lint errors, or warnings above --max-warnings
  2  input is not ESLint JSON output
  3  missing BITBUCKET_* variable, config error, or (with
     --fail-on-upload-error) a failed upload

Example:
  eslint -f json . | lintinsights format
  lintinsights format eslint-report.json --max-warnings 0
  lintinsights format results.json --no-upload`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormat,
}

func init() {
	formatFlags.register(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	results, err := readResults(cmd, args)
	if err != nil {
		return err
	}

	logVerbose("Read %d result(s)", len(results))

	pcfg, err := formatFlags.config(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return RunPipeline(cmd.Context(), results, pcfg)
}

// readResults parses ESLint JSON from the named file, or stdin for "-" or
// no argument. Parse failures are *ValidationError.
func readResults(cmd *cobra.Command, args []string) ([]eslint.LintResult, error) {
	var in io.Reader = cmd.InOrStdin()
	source := "stdin"

	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open results: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
		source = args[0]
	}

	logDebug("Reading ESLint results from %s", source)

	results, err := eslint.ReadResults(in)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("%s: %v", source, err)}
	}
	return results, nil
}
