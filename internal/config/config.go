// Package config loads testid settings.
//
// Values are layered: built-in defaults, then a YAML file, then TESTID_*
// environment variables. Command line flags are applied on top by the
// caller.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/NicabarNimble/go-testid/internal/errors"
)

const (
	// DefaultFile is read from the working directory when present.
	DefaultFile = "testid.yaml"

	// PathEnv names the variable that points at a configuration file.
	PathEnv = "TESTID_CONFIG"
)

// Provisioner backends.
const (
	ProviderCLI   = "cli"
	ProviderGoGit = "go-git"
)

// Config holds the settings for a generate run.
type Config struct {
	// Repository and Commit are used when the flags are not given.
	Repository string `yaml:"repository" env:"TESTID_REPOSITORY, overwrite"`
	Commit     string `yaml:"commit" env:"TESTID_COMMIT, overwrite"`

	// ScriptPath is relative to the checkout root.
	ScriptPath  string `yaml:"script_path" env:"TESTID_SCRIPT_PATH, overwrite"`
	Interpreter string `yaml:"interpreter" env:"TESTID_INTERPRETER, overwrite"`

	GitBinary string `yaml:"git_binary" env:"TESTID_GIT_BINARY, overwrite"`
	Provider  string `yaml:"provider" env:"TESTID_PROVIDER, overwrite"`
	WorkDir   string `yaml:"work_dir" env:"TESTID_WORK_DIR, overwrite"`

	// Clipboard stays nil when unset so MergeDefaults can turn it on.
	Clipboard *bool  `yaml:"clipboard" env:"TESTID_CLIPBOARD, overwrite, noinit"`
	LogLevel  string `yaml:"log_level" env:"TESTID_LOG_LEVEL, overwrite"`
}

// DefaultConfig provides default configuration values
func DefaultConfig() *Config {
	clipboard := true
	return &Config{
		ScriptPath:  "scripts/generate_test_id.py",
		Interpreter: "python3",
		GitBinary:   "git",
		Provider:    ProviderCLI,
		Clipboard:   &clipboard,
		LogLevel:    "info",
	}
}

// ResolvePath picks the configuration file: the explicit path, else
// $TESTID_CONFIG, else DefaultFile when it exists. An empty result means no
// file.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// Load reads the file at path (if any), applies environment overrides and
// defaults, and validates the result.
func Load(ctx context.Context, path string) (*Config, error) {
	return load(ctx, path, envconfig.OsLookuper())
}

func load(ctx context.Context, path string, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.New("config", fmt.Errorf("failed to read config file: %w", err))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("config", fmt.Errorf("failed to parse config file %s: %w", path, err))
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, errors.New("config", fmt.Errorf("failed to process environment: %w", err))
	}

	cfg.MergeDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeDefaults merges default values for unset fields
func (c *Config) MergeDefaults() {
	defaults := DefaultConfig()
	if c.ScriptPath == "" {
		c.ScriptPath = defaults.ScriptPath
	}
	if c.GitBinary == "" {
		c.GitBinary = defaults.GitBinary
	}
	if c.Provider == "" {
		c.Provider = defaults.Provider
	}
	if c.Clipboard == nil {
		c.Clipboard = defaults.Clipboard
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	// An explicitly empty interpreter cannot be told apart from an unset
	// one, so "none" selects direct execution.
	switch c.Interpreter {
	case "":
		c.Interpreter = defaults.Interpreter
	case "none":
		c.Interpreter = ""
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderCLI, ProviderGoGit:
	default:
		return errors.New("config", fmt.Errorf("unknown provider %q, expected %q or %q", c.Provider, ProviderCLI, ProviderGoGit))
	}

	if strings.TrimSpace(c.ScriptPath) == "" {
		return errors.New("config", fmt.Errorf("script path cannot be empty"))
	}
	if filepath.IsAbs(c.ScriptPath) {
		return errors.New("config", fmt.Errorf("script path %q must be relative to the repository root", c.ScriptPath))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("config", fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	return nil
}

// ClipboardEnabled reports whether identifiers should be copied.
func (c *Config) ClipboardEnabled() bool {
	return c.Clipboard == nil || *c.Clipboard
}
