package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mdtasks/internal/config"
	"github.com/ShayCichocki/mdtasks/internal/state"
	"github.com/ShayCichocki/mdtasks/pkg/models"
)

var (
	columnKind    string
	columnOptions string
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Manage the TUI column layout",
	Long: `Show or change the columns of the task view.

Status, Description, Tag, and File are bound to the task itself. Any other
column holds values for the current TUI session only; they are never
written to Markdown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withColumns(func(db *state.DB, columns []models.Column) error {
			writeColumns(cmd.OutOrStdout(), columns)
			return nil
		})
	},
}

var columnsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withColumns(func(db *state.DB, columns []models.Column) error {
			updated, err := addColumn(columns, args[0], columnKind, columnOptions)
			if err != nil {
				return err
			}
			if err := db.SaveColumns(updated); err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), "✓", fmt.Sprintf("Added column %s (%s)", args[0], columnKind), color.FgGreen)
			return nil
		})
	},
}

var columnsRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withColumns(func(db *state.DB, columns []models.Column) error {
			updated, err := removeColumn(columns, args[0])
			if err != nil {
				return err
			}
			if err := db.SaveColumns(updated); err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), "✓", fmt.Sprintf("Removed column %s", args[0]), color.FgGreen)
			return nil
		})
	},
}

var columnsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default columns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.DeleteSetting(state.SettingColumns); err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), "✓", "Restored default columns", color.FgGreen)
		return nil
	},
}

var columnsExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write the column layout to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withColumns(func(db *state.DB, columns []models.Column) error {
			if err := config.WriteColumnsFile(args[0], columns); err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), "✓", fmt.Sprintf("Exported %d columns to %s", len(columns), args[0]), color.FgGreen)
			return nil
		})
	},
}

var columnsImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the column layout from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		columns, err := config.ReadColumnsFile(args[0])
		if err != nil {
			return err
		}
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveColumns(columns); err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), "✓", fmt.Sprintf("Imported %d columns from %s", len(columns), args[0]), color.FgGreen)
		return nil
	},
}

func init() {
	columnsAddCmd.Flags().StringVar(&columnKind, "kind", string(models.ColumnText), "Column kind: text, dropdown, or checkbox")
	columnsAddCmd.Flags().StringVar(&columnOptions, "options", "", "Comma-separated options for a dropdown column")

	columnsCmd.AddCommand(columnsAddCmd)
	columnsCmd.AddCommand(columnsRemoveCmd)
	columnsCmd.AddCommand(columnsResetCmd)
	columnsCmd.AddCommand(columnsExportCmd)
	columnsCmd.AddCommand(columnsImportCmd)
}

// withColumns opens the store, loads the layout, and calls fn.
func withColumns(fn func(db *state.DB, columns []models.Column) error) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	columns, err := db.LoadColumns()
	if err != nil {
		return err
	}
	return fn(db, columns)
}

// addColumn appends a column after validating the resulting layout.
func addColumn(columns []models.Column, name, kind, options string) ([]models.Column, error) {
	col := models.Column{
		Name:    strings.TrimSpace(name),
		Kind:    models.ColumnKind(strings.ToLower(kind)),
		Options: models.ParseOptions(options),
	}
	if col.Kind != models.ColumnDropdown && len(col.Options) > 0 {
		return nil, fmt.Errorf("--options only applies to dropdown columns")
	}

	updated := make([]models.Column, 0, len(columns)+1)
	updated = append(updated, columns...)
	updated = append(updated, col)
	if err := config.ValidateColumns(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// removeColumn drops the named column. The layout must keep at least one.
func removeColumn(columns []models.Column, name string) ([]models.Column, error) {
	updated := make([]models.Column, 0, len(columns))
	found := false
	for _, c := range columns {
		if c.Name == name {
			found = true
			continue
		}
		updated = append(updated, c)
	}
	if !found {
		return nil, fmt.Errorf("no column named %q", name)
	}
	if err := config.ValidateColumns(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func writeColumns(w io.Writer, columns []models.Column) {
	for i, c := range columns {
		line := fmt.Sprintf("%d. %-16s %s", i+1, c.Name, c.Kind)
		if len(c.Options) > 0 {
			line += " [" + strings.Join(c.Options, ", ") + "]"
		}
		fmt.Fprintln(w, line)
	}
}
