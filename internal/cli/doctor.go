package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/ppiankov/lintinsights/internal/config"
	"github.com/ppiankov/lintinsights/internal/policy"
	"github.com/spf13/cobra"
)

var doctorFormat string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check environment readiness and diagnose common problems",
	Long: `Doctor validates your lintinsights setup end-to-end:

  1. Config file: found and readable?
  2. Bitbucket variables: all four set?
  3. API connectivity: reachable?
  4. ESLint: installed and runnable?
  5. Lint policy: found and valid?

Fix the issues it reports, then run 'lintinsights run' with confidence.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "text",
		"output format: text or json")
}

type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "warn", "fail"
	Detail string `json:"detail,omitempty"`
}

type doctorResult struct {
	Checks  []doctorCheck `json:"checks"`
	Summary string        `json:"summary"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []doctorCheck

	// 1. Config file
	checks = append(checks, checkConfig())

	// 2. Bitbucket variables
	checks = append(checks, checkEnv(os.Getenv)...)

	// 3. API connectivity
	checks = append(checks, checkAPI(cfg.APIURL))

	// 4. ESLint
	checks = append(checks, checkESLint(exec.LookPath, "."))

	// 5. Lint policy
	checks = append(checks, checkPolicy("."))

	result := summarizeChecks(checks)

	if doctorFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writeDoctorText(cmd.OutOrStdout(), result)
}

func summarizeChecks(checks []doctorCheck) doctorResult {
	fails, warns := 0, 0
	for _, c := range checks {
		switch c.Status {
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}

	summary := "all checks passed"
	if fails > 0 {
		summary = fmt.Sprintf("%d issue(s) found", fails)
	} else if warns > 0 {
		summary = fmt.Sprintf("ok with %d warning(s)", warns)
	}

	return doctorResult{Checks: checks, Summary: summary}
}

func writeDoctorText(w io.Writer, result doctorResult) error {
	icons := map[string]string{
		"ok":   "✓",
		"warn": "△",
		"fail": "✗",
	}

	for _, c := range result.Checks {
		icon := icons[c.Status]
		if c.Detail != "" {
			fmt.Fprintf(w, "  %s %-20s %s\n", icon, c.Name, c.Detail)
		} else {
			fmt.Fprintf(w, "  %s %s\n", icon, c.Name)
		}
	}

	_, err := fmt.Fprintf(w, "\n%s\n", result.Summary)
	return err
}

func checkConfig() doctorCheck {
	path := config.ConfigPath()
	if configFile != "" {
		path = configFile
	}

	if path == "" {
		return doctorCheck{
			Name:   "config",
			Status: "ok",
			Detail: "no config file (using defaults)",
		}
	}

	if _, err := os.Stat(path); err != nil {
		return doctorCheck{
			Name:   "config",
			Status: "fail",
			Detail: fmt.Sprintf("%s not readable: %v", path, err),
		}
	}

	return doctorCheck{
		Name:   "config",
		Status: "ok",
		Detail: path,
	}
}

// checkPolicy reports the policy format and run would enforce from dir.
func checkPolicy(dir string) doctorCheck {
	path := policy.FindPolicyFile(dir)
	if path == "" {
		return doctorCheck{
			Name:   "policy",
			Status: "ok",
			Detail: "none (only --max-warnings applies)",
		}
	}

	if _, err := policy.LoadFromFile(path); err != nil {
		return doctorCheck{
			Name:   "policy",
			Status: "fail",
			Detail: err.Error(),
		}
	}

	return doctorCheck{
		Name:   "policy",
		Status: "ok",
		Detail: path,
	}
}

// checkEnv reports each Bitbucket variable. The token value is never shown.
func checkEnv(getenv func(string) string) []doctorCheck {
	keys := []string{config.EnvWorkspace, config.EnvRepoSlug, config.EnvCommit, config.EnvAPIAuth}

	checks := make([]doctorCheck, 0, len(keys))
	for _, key := range keys {
		value := getenv(key)
		switch {
		case value == "":
			checks = append(checks, doctorCheck{
				Name:   key,
				Status: "fail",
				Detail: "not set (uploads will fail; use --no-upload to only print)",
			})
		case key == config.EnvAPIAuth:
			checks = append(checks, doctorCheck{Name: key, Status: "ok", Detail: "set"})
		default:
			checks = append(checks, doctorCheck{Name: key, Status: "ok", Detail: value})
		}
	}
	return checks
}

// checkAPI treats any HTTP response as reachable; auth is not verified.
func checkAPI(apiURL string) doctorCheck {
	if apiURL == "" {
		apiURL = config.DefaultAPIURL
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		return doctorCheck{
			Name:   "api",
			Status: "fail",
			Detail: fmt.Sprintf("unreachable (%v)", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return doctorCheck{
			Name:   "api",
			Status: "fail",
			Detail: fmt.Sprintf("unhealthy (HTTP %d)", resp.StatusCode),
		}
	}

	return doctorCheck{
		Name:   "api",
		Status: "ok",
		Detail: apiURL,
	}
}

// checkESLint looks for a project-local eslint first, then npx.
func checkESLint(lookPath func(string) (string, error), projectDir string) doctorCheck {
	local := filepath.Join(projectDir, "node_modules", ".bin", "eslint")
	if _, err := os.Stat(local); err == nil {
		return doctorCheck{Name: "eslint", Status: "ok", Detail: local}
	}

	if path, err := lookPath("eslint"); err == nil {
		return doctorCheck{Name: "eslint", Status: "ok", Detail: path}
	}

	if path, err := lookPath("npx"); err == nil {
		return doctorCheck{
			Name:   "eslint",
			Status: "warn",
			Detail: fmt.Sprintf("not installed locally; run will use %s eslint", path),
		}
	}

	return doctorCheck{
		Name:   "eslint",
		Status: "warn",
		Detail: "not found. Run: npm install --save-dev eslint (format and preview still work)",
	}
}
