// Package config provides configuration file and environment variable support
// for skillctl.
//
// Configuration priority (highest to lowest):
//  1. Command-line flags
//  2. Environment variables (SKILLCTL_*)
//  3. Config file (~/.skillctl/config.toml)
//  4. Built-in defaults
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the skillctl configuration.
type Config struct {
	// TargetRepo is the curated skills repository in owner/repo format.
	// Default: malarbase/agent-skills
	TargetRepo string `toml:"target_repo"`

	// InstallRepo is the upstream repository install falls back to for
	// --skill names missing from the curated inventory, using its
	// skills/<name> layout.
	// Default: anthropics/skills
	InstallRepo string `toml:"install_repo"`

	// StagingDir holds skills pending a ship operation.
	// Default: ~/.cache/skillctl/staging
	StagingDir string `toml:"staging_dir"`

	// CloneDir is the scratch clone location used by ship and land.
	// Default: ~/.cache/skillctl/repo
	CloneDir string `toml:"clone_dir"`

	// DB is the path to the history database file.
	// Default: ~/.skillctl/skillctl.db
	DB string `toml:"db"`

	// NoColor disables colored output.
	NoColor bool `toml:"no_color"`

	// DefaultAuthor is the author namespace used by import when --author
	// is not specified. Falls back to $USER.
	DefaultAuthor string `toml:"default_author"`

	// Backup configures automatic history database backups.
	Backup BackupConfig `toml:"backup"`
}

// BackupConfig configures rotating database backups.
type BackupConfig struct {
	// Enabled turns automatic backups on or off. Default: true.
	Enabled bool `toml:"enabled"`

	// Path is the backup directory. Empty means alongside the database.
	Path string `toml:"path"`

	// IntervalHours is the minimum age of the newest backup before a new
	// one is taken. Default: 24.
	IntervalHours int `toml:"interval_hours"`

	// Keep is the number of rotating backups to retain. Default: 3.
	Keep int `toml:"keep"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		TargetRepo:  "malarbase/agent-skills",
		InstallRepo: "anthropics/skills",
		Backup: BackupConfig{
			Enabled:       true,
			IntervalHours: 24,
			Keep:          3,
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".skillctl", "config.toml")
}

// Load loads configuration from the config file and environment variables.
// Environment variables take precedence over file settings.
// Returns default config if the config file doesn't exist.
func Load() (*Config, error) {
	return LoadFromPath(DefaultConfigPath())
}

// LoadFromPath loads configuration from a specific file path.
// Environment variables take precedence over file settings.
func LoadFromPath(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, cfg); err != nil {
				return nil, err
			}
		}
		// If file doesn't exist, just continue with defaults
	}

	cfg.applyEnv()

	return cfg, nil
}

// applyEnv applies environment variable overrides to the config.
func (c *Config) applyEnv() {
	if repo := os.Getenv("SKILLCTL_REPO"); repo != "" {
		c.TargetRepo = repo
	}

	if repo := os.Getenv("SKILLCTL_INSTALL_REPO"); repo != "" {
		c.InstallRepo = repo
	}

	if staging := os.Getenv("SKILLCTL_STAGING"); staging != "" {
		c.StagingDir = staging
	}

	if clone := os.Getenv("SKILLCTL_CLONE"); clone != "" {
		c.CloneDir = clone
	}

	if db := os.Getenv("SKILLCTL_DB"); db != "" {
		c.DB = db
	}

	// SKILLCTL_NO_COLOR - any value means true
	if _, ok := os.LookupEnv("SKILLCTL_NO_COLOR"); ok {
		c.NoColor = true
	}

	if author := os.Getenv("SKILLCTL_AUTHOR"); author != "" {
		c.DefaultAuthor = author
	}
}

// GetStagingDir returns the staging directory, expanding the default when unset.
func (c *Config) GetStagingDir() string {
	if c.StagingDir != "" {
		return expandPath(c.StagingDir)
	}
	return expandPath("~/.cache/skillctl/staging")
}

// GetCloneDir returns the scratch clone directory, expanding the default when unset.
func (c *Config) GetCloneDir() string {
	if c.CloneDir != "" {
		return expandPath(c.CloneDir)
	}
	return expandPath("~/.cache/skillctl/repo")
}

// GetAuthor returns the configured default author, falling back to $USER.
func (c *Config) GetAuthor() string {
	if c.DefaultAuthor != "" {
		return c.DefaultAuthor
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "unknown"
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// SampleConfig returns a sample configuration file content.
func SampleConfig() string {
	return `# skillctl Configuration File
# Location: ~/.skillctl/config.toml
#
# Configuration priority (highest to lowest):
#   1. Command-line flags
#   2. Environment variables (SKILLCTL_*)
#   3. This config file
#   4. Built-in defaults

# Curated skills repository that ship/land publish to
# Environment: SKILLCTL_REPO
# target_repo = "malarbase/agent-skills"

# Upstream repository install falls back to for --skill names missing
# from the curated inventory (skills/<name> layout)
# Environment: SKILLCTL_INSTALL_REPO
# install_repo = "anthropics/skills"

# Staging area for skills pending ship
# Default: ~/.cache/skillctl/staging
# Environment: SKILLCTL_STAGING
# staging_dir = ""

# Scratch clone location used by ship and land
# Default: ~/.cache/skillctl/repo
# Environment: SKILLCTL_CLONE
# clone_dir = ""

# Path to the history database file
# Default: ~/.skillctl/skillctl.db
# Environment: SKILLCTL_DB
# db = ""

# Disable colored output
# Environment: SKILLCTL_NO_COLOR (any value = true)
# no_color = false

# Author namespace used by import when --author is not given
# Environment: SKILLCTL_AUTHOR
# default_author = ""

# [backup]
# enabled = true
# interval_hours = 24
# keep = 3
`
}

// WriteConfigFile writes the sample config file to the specified path.
// Creates parent directories if needed.
func WriteConfigFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(SampleConfig()), 0644)
}
