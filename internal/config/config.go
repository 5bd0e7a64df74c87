// Package config handles configuration loading and management for mdtasks.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/mdtasks/internal/markdown"
	"github.com/ShayCichocki/mdtasks/internal/state"
)

// ProjectConfigName is the per-project override file searched for upward from cwd.
const ProjectConfigName = ".mdtasks.yaml"

// Config holds all configuration for mdtasks.
type Config struct {
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Rewrite   RewriteConfig   `mapstructure:"rewrite"`
	State     StateConfig     `mapstructure:"state"`
	Log       LogConfig       `mapstructure:"log"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// WorkspaceConfig holds the default directory and filter.
type WorkspaceConfig struct {
	Root      string `mapstructure:"root"`
	FilterTag string `mapstructure:"filter_tag"`
}

// RewriteConfig controls how edits are written back to Markdown.
type RewriteConfig struct {
	// PreserveIndent keeps leading whitespace on rewritten task lines.
	PreserveIndent bool `mapstructure:"preserve_indent"`
	// Match is "line" (by source line) or "tag" (legacy tag substring).
	Match string `mapstructure:"match"`
	// Atomic writes via temp file and rename.
	Atomic bool `mapstructure:"atomic"`
}

// StateConfig selects the settings database.
type StateConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File receives log output while the TUI is running. Empty discards it.
	File string `mapstructure:"file"`
}

// TUIConfig holds TUI behavior settings.
type TUIConfig struct {
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// RewriteOptions converts the rewrite section into rewriter options.
func (c *Config) RewriteOptions() markdown.RewriteOptions {
	return markdown.RewriteOptions{
		PreserveIndent: c.Rewrite.PreserveIndent,
		Match:          markdown.MatchMode(c.Rewrite.Match),
		Atomic:         c.Rewrite.Atomic,
	}
}

// StatePath returns the configured database path, or the global default.
func (c *Config) StatePath() string {
	if c.State.Path != "" {
		return c.State.Path
	}
	return state.GlobalDBPath()
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if !markdown.MatchMode(c.Rewrite.Match).Valid() {
		return fmt.Errorf("rewrite.match must be %q or %q, got %q", markdown.MatchLine, markdown.MatchTag, c.Rewrite.Match)
	}
	switch c.State.Driver {
	case state.DriverSQLite, state.DriverSQLite3:
	default:
		return fmt.Errorf("state.driver must be %q or %q, got %q", state.DriverSQLite, state.DriverSQLite3, c.State.Driver)
	}
	if c.TUI.Debounce < 0 {
		return fmt.Errorf("tui.debounce must not be negative")
	}
	return nil
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (MDTASKS_REWRITE_MATCH, ...)
// 2. Project config (.mdtasks.yaml in current directory or parent)
// 3. User config (~/.config/mdtasks/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := newViper()

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return SaveToPath(cfg, filepath.Join(userConfigDir, "config.yaml"))
}

// SaveToPath writes the configuration to path as YAML.
func SaveToPath(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	v.Set("workspace.root", cfg.Workspace.Root)
	v.Set("workspace.filter_tag", cfg.Workspace.FilterTag)
	v.Set("rewrite.preserve_indent", cfg.Rewrite.PreserveIndent)
	v.Set("rewrite.match", cfg.Rewrite.Match)
	v.Set("rewrite.atomic", cfg.Rewrite.Atomic)
	v.Set("state.driver", cfg.State.Driver)
	v.Set("state.path", cfg.State.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("tui.watch", cfg.TUI.Watch)
	v.Set("tui.debounce", cfg.TUI.Debounce.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MDTASKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Workspace.Root = expandPath(cfg.Workspace.Root)
	cfg.State.Path = expandPath(cfg.State.Path)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("workspace.root", d.Workspace.Root)
	v.SetDefault("workspace.filter_tag", d.Workspace.FilterTag)

	v.SetDefault("rewrite.preserve_indent", d.Rewrite.PreserveIndent)
	v.SetDefault("rewrite.match", d.Rewrite.Match)
	v.SetDefault("rewrite.atomic", d.Rewrite.Atomic)

	v.SetDefault("state.driver", d.State.Driver)
	v.SetDefault("state.path", d.State.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("tui.watch", d.TUI.Watch)
	v.SetDefault("tui.debounce", d.TUI.Debounce.String())
}

// getUserConfigDir returns the XDG config directory for mdtasks.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mdtasks")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "mdtasks")
	}
	return filepath.Join(home, ".config", "mdtasks")
}

// findProjectConfig searches for .mdtasks.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandPath expands ${VAR} references and a leading ~/.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Root: ".",
		},
		Rewrite: RewriteConfig{
			PreserveIndent: false,
			Match:          string(markdown.MatchLine),
			Atomic:         true,
		},
		State: StateConfig{
			Driver: state.DriverSQLite,
		},
		Log: LogConfig{
			Level: "info",
		},
		TUI: TUIConfig{
			Watch:    true,
			Debounce: 250 * time.Millisecond,
		},
	}
}
