package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/lintinsights/internal/config"
	"github.com/ppiankov/lintinsights/internal/policy"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample config and lint policy to the current directory",
	Long: `Init writes lintinsights.yaml and .lintinsights-policy.yaml with commented
defaults. Existing files are left alone unless --force is given.

Bitbucket identifiers are never written; they come from BITBUCKET_* variables.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false,
		"overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	files := []struct {
		name    string
		content string
	}{
		{"lintinsights.yaml", config.GenerateSampleConfig()},
		{policy.FileNames[0], policy.GenerateSamplePolicy()},
	}

	for _, f := range files {
		path := filepath.Join(".", f.name)
		if _, err := os.Stat(path); err == nil && !initForce {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped %s (exists, use --force to overwrite)\n", f.name)
			continue
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f.name)
	}

	return nil
}
