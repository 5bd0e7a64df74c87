package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mdtasks/internal/config"
)

// configKeys lists the settable keys in display order.
var configKeys = []string{
	"workspace.root",
	"workspace.filter_tag",
	"rewrite.preserve_indent",
	"rewrite.match",
	"rewrite.atomic",
	"state.driver",
	"state.path",
	"log.level",
	"log.format",
	"log.file",
	"tui.watch",
	"tui.debounce",
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify mdtasks configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/mdtasks/config.yaml
Project-specific overrides can be placed in .mdtasks.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			displayAllConfig(out, cfg)
			return nil
		case 1:
			value, err := getConfigValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		default:
			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(out, "Set %s = %s\n", args[0], args[1])
			return nil
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(w io.Writer, cfg *config.Config) {
	for _, key := range configKeys {
		value, _ := getConfigValue(cfg, key)
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(w, "%s: %s\n", key, value)
	}
	if path := config.GetProjectConfigPath(); path != "" {
		fmt.Fprintf(w, "\nproject overrides: %s\n", path)
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "workspace.root":
		return cfg.Workspace.Root, nil
	case "workspace.filter_tag":
		return cfg.Workspace.FilterTag, nil
	case "rewrite.preserve_indent":
		return strconv.FormatBool(cfg.Rewrite.PreserveIndent), nil
	case "rewrite.match":
		return cfg.Rewrite.Match, nil
	case "rewrite.atomic":
		return strconv.FormatBool(cfg.Rewrite.Atomic), nil
	case "state.driver":
		return cfg.State.Driver, nil
	case "state.path":
		return cfg.StatePath(), nil
	case "log.level":
		return cfg.Log.Level, nil
	case "log.format":
		return cfg.Log.Format, nil
	case "log.file":
		return cfg.Log.File, nil
	case "tui.watch":
		return strconv.FormatBool(cfg.TUI.Watch), nil
	case "tui.debounce":
		return cfg.TUI.Debounce.String(), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "workspace.root":
		cfg.Workspace.Root = value
	case "workspace.filter_tag":
		cfg.Workspace.FilterTag = value
	case "rewrite.preserve_indent":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for rewrite.preserve_indent: %w", err)
		}
		cfg.Rewrite.PreserveIndent = b
	case "rewrite.match":
		cfg.Rewrite.Match = strings.ToLower(value)
	case "rewrite.atomic":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for rewrite.atomic: %w", err)
		}
		cfg.Rewrite.Atomic = b
	case "state.driver":
		cfg.State.Driver = value
	case "state.path":
		cfg.State.Path = value
	case "log.level":
		cfg.Log.Level = strings.ToLower(value)
	case "log.format":
		cfg.Log.Format = strings.ToLower(value)
	case "log.file":
		cfg.Log.File = value
	case "tui.watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for tui.watch: %w", err)
		}
		cfg.TUI.Watch = b
	case "tui.debounce":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for tui.debounce: %w", err)
		}
		cfg.TUI.Debounce = d
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
