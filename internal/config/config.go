package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Environment variables Bitbucket Pipelines exports for every build.
const (
	EnvWorkspace = "BITBUCKET_WORKSPACE"
	EnvRepoSlug  = "BITBUCKET_REPO_SLUG"
	EnvCommit    = "BITBUCKET_COMMIT"
	EnvAPIAuth   = "BITBUCKET_API_AUTH"
)

// DefaultAPIURL is the Bitbucket Cloud REST API base.
const DefaultAPIURL = "https://api.bitbucket.org/2.0"

// MissingEnvError reports a required environment value that is absent or empty.
type MissingEnvError struct {
	Key string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("Missing ENV var: [%s]", e.Key)
}

// GetEnv returns the value of a required environment variable.
func GetEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", &MissingEnvError{Key: key}
	}
	return value, nil
}

// Config holds all configuration for lintinsights
type Config struct {
	// Bitbucket identifiers, read only from the environment
	Workspace string `mapstructure:"-"`
	RepoSlug  string `mapstructure:"-"`
	Commit    string `mapstructure:"-"`
	APIToken  string `mapstructure:"-"`

	// API URL (defaults to https://api.bitbucket.org/2.0)
	APIURL string `mapstructure:"api_url"`

	// Per-request HTTP timeout
	Timeout time.Duration `mapstructure:"timeout"`

	// Log output format (text, json)
	LogFormat string `mapstructure:"log_format"`

	// Optional rotating log file, JSON lines
	LogFile string `mapstructure:"log_file"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		APIURL:    DefaultAPIURL,
		Timeout:   30 * time.Second,
		LogFormat: "text",
		Verbose:   false,
		Debug:     false,
	}
}

// Load loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (~/lintinsights.yaml or ./lintinsights.yaml)
// 3. Environment variables (LINTINSIGHTS_*)
// 4. CLI flags (handled by caller)
//
// The Bitbucket identifiers always come from the BITBUCKET_* variables.
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration from a specific file path
// If path is empty, it searches for config in standard locations
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("api_url", defaults.APIURL)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)

	v.SetConfigName("lintinsights")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		for _, dir := range searchPaths() {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("LINTINSIGHTS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Workspace = os.Getenv(EnvWorkspace)
	cfg.RepoSlug = os.Getenv(EnvRepoSlug)
	cfg.Commit = os.Getenv(EnvCommit)
	cfg.APIToken = os.Getenv(EnvAPIAuth)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// searchPaths lists the directories searched for lintinsights.yaml, in order.
func searchPaths() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		dirs = append(dirs, filepath.Join(xdgConfig, "lintinsights"))
	}
	return dirs
}

// ConfigPath returns the config file LoadFromFile("") would read, or "" if
// there is none.
func ConfigPath() string {
	for _, dir := range searchPaths() {
		path := filepath.Join(dir, "lintinsights.yaml")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate checks the ambient settings. It does not require the Bitbucket
// identifiers; see RequireUpload.
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("invalid log_format: %s (must be text or json)", c.LogFormat)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	if c.APIURL == "" {
		return fmt.Errorf("api_url cannot be empty")
	}

	return nil
}

// RequireUpload returns a *MissingEnvError for the first Bitbucket identifier
// that is not set, checked in workspace, repo slug, commit, token order.
func (c *Config) RequireUpload() error {
	required := []struct {
		key   string
		value string
	}{
		{EnvWorkspace, c.Workspace},
		{EnvRepoSlug, c.RepoSlug},
		{EnvCommit, c.Commit},
		{EnvAPIAuth, c.APIToken},
	}
	for _, r := range required {
		if r.value == "" {
			return &MissingEnvError{Key: r.key}
		}
	}
	return nil
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# lintinsights configuration
# Save this file as ~/lintinsights.yaml or ./lintinsights.yaml
#
# Bitbucket identifiers are never read from this file. Set
# BITBUCKET_WORKSPACE, BITBUCKET_REPO_SLUG, BITBUCKET_COMMIT and
# BITBUCKET_API_AUTH in the environment (Pipelines exports the first three).

# API URL (change only for testing)
# api_url: https://api.bitbucket.org/2.0

# Per-request HTTP timeout
timeout: 30s

# Log output format: text or json
log_format: text

# Also write JSON log lines to this file, rotated daily
# log_file: /tmp/lintinsights.log

# Enable verbose output
verbose: false

# Enable debug mode
debug: false
`
}
