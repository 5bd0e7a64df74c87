package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mdtasks/internal/config"
	"github.com/ShayCichocki/mdtasks/internal/logging"
	"github.com/ShayCichocki/mdtasks/internal/state"
)

// cfg is loaded before any command runs.
var cfg *config.Config

var (
	rootTag     string
	rootNoWatch bool
)

var rootCmd = &cobra.Command{
	Use:   "mdtasks [DIR]",
	Short: "Markdown checkbox task tree",
	Long: `mdtasks finds "- [ ]" and "- [x]" checkbox lines in every Markdown file
under a directory and shows them as a tree, nested by indentation.

With no subcommand, launches the interactive TUI on DIR (default: the
workspace.root config value). Edits stay in memory until you save, which
rewrites each checkbox line in its source file.

Configuration is read from ~/.config/mdtasks/config.yaml, then .mdtasks.yaml
in the current directory or a parent, then MDTASKS_* environment variables.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		logging.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(rootDir(args), rootTag, !rootNoWatch)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printStatus(os.Stderr, "✗", err.Error(), color.FgRed)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&rootTag, "tag", "", "Only show tasks whose tag contains this text")
	rootCmd.Flags().BoolVar(&rootNoWatch, "no-watch", false, "Do not watch files for changes")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(uncheckCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(columnsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// rootDir returns the directory argument, or the configured workspace root.
func rootDir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if cfg != nil && cfg.Workspace.Root != "" {
		return cfg.Workspace.Root
	}
	return "."
}

// openStore opens and migrates the settings database.
func openStore() (*state.DB, error) {
	db, err := state.OpenDriver(cfg.State.Driver, cfg.StatePath())
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating state database: %w", err)
	}
	return db, nil
}

// printStatus prints a colored status symbol followed by a message.
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}
