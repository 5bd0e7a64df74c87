package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/mdtasks/pkg/models"
)

// columnsFile is the on-disk shape of an exported column layout.
type columnsFile struct {
	Columns []models.Column `yaml:"columns"`
}

// ReadColumnsFile loads a column layout exported with WriteColumnsFile.
func ReadColumnsFile(path string) ([]models.Column, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f columnsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ValidateColumns(f.Columns); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f.Columns, nil
}

// WriteColumnsFile writes a column layout as YAML.
func WriteColumnsFile(path string, columns []models.Column) error {
	data, err := yaml.Marshal(columnsFile{Columns: columns})
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ValidateColumns checks names are unique and non-empty, kinds are known, and
// dropdowns have options.
func ValidateColumns(columns []models.Column) error {
	if len(columns) == 0 {
		return fmt.Errorf("column layout is empty")
	}
	seen := make(map[string]bool, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return fmt.Errorf("column %d has no name", i+1)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if !c.Kind.Valid() {
			return fmt.Errorf("column %q has unknown kind %q", c.Name, c.Kind)
		}
		if c.Kind == models.ColumnDropdown && len(c.Options) == 0 {
			return fmt.Errorf("dropdown column %q has no options", c.Name)
		}
	}
	return nil
}
