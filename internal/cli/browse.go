package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/lintinsights/internal/insights"
	"github.com/ppiankov/lintinsights/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var browseCommit string

var browseCmd = &cobra.Command{
	Use:   "browse <file>",
	Short: "Explore the annotations a report would carry in an interactive table",
	Long: `Browse opens the annotations built from ESLint JSON results in a terminal UI.
Nothing is uploaded.

Keys:
  /    search paths, rules, and messages
  r    filter by rule
  v    cycle severity filter (HIGH, MEDIUM)
  s    cycle sort (location, severity, rule)
  c    copy the selected problem
  esc  clear filters
  q    quit

The results must come from a file since the terminal is used for input.

Example:
  eslint -f json -o results.json .
  lintinsights browse results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseCommit, "commit", "",
		"commit the report is named after (default: $BITBUCKET_COMMIT or \"local\")")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("browse needs an interactive terminal; use preview for piped output")
	}

	results, err := readResults(cmd, args)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	reportID := insights.ReportID(commitOrFallback(browseCommit))
	annotations := insights.GenerateAnnotations(results, reportID, workDir)

	logDebug("Browsing %d annotation(s) for %s", len(annotations), reportID)

	return tui.Run(reportID, insights.GenerateReport(results), tui.Items(results, annotations))
}
