package models

import (
	"fmt"
	"strings"
)

// ColumnKind selects how a column's cells are rendered and edited.
type ColumnKind string

const (
	// ColumnText is free-form text.
	ColumnText ColumnKind = "text"
	// ColumnDropdown restricts values to a fixed option list.
	ColumnDropdown ColumnKind = "dropdown"
	// ColumnCheckbox holds "True" or "False".
	ColumnCheckbox ColumnKind = "checkbox"
)

// Valid returns true if the kind is a known value.
func (k ColumnKind) Valid() bool {
	switch k {
	case ColumnText, ColumnDropdown, ColumnCheckbox:
		return true
	default:
		return false
	}
}

// Checkbox cell values.
const (
	CheckboxTrue  = "True"
	CheckboxFalse = "False"
)

// Column describes one column of the task view.
type Column struct {
	Name    string     `json:"name" yaml:"name"`
	Kind    ColumnKind `json:"kind" yaml:"kind"`
	Options []string   `json:"options,omitempty" yaml:"options,omitempty"`
}

// Render returns the display form of a stored cell value.
func (c Column) Render(value string) string {
	switch c.Kind {
	case ColumnCheckbox:
		if value == CheckboxTrue {
			return "[x]"
		}
		return "[ ]"
	default:
		return value
	}
}

// Parse validates user input for the column and returns the value to store.
func (c Column) Parse(input string) (string, error) {
	switch c.Kind {
	case ColumnDropdown:
		for _, opt := range c.Options {
			if opt == input {
				return opt, nil
			}
		}
		return "", fmt.Errorf("column %s: %q is not one of %s", c.Name, input, strings.Join(c.Options, ", "))
	case ColumnCheckbox:
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "true", "x", "yes", "1":
			return CheckboxTrue, nil
		case "false", "", "no", "0":
			return CheckboxFalse, nil
		}
		return "", fmt.Errorf("column %s: %q is not a checkbox value", c.Name, input)
	default:
		return input, nil
	}
}

// Next cycles a dropdown or checkbox value to the following option.
// Text values are returned unchanged.
func (c Column) Next(value string) string {
	switch c.Kind {
	case ColumnCheckbox:
		if value == CheckboxTrue {
			return CheckboxFalse
		}
		return CheckboxTrue
	case ColumnDropdown:
		if len(c.Options) == 0 {
			return value
		}
		for i, opt := range c.Options {
			if opt == value {
				return c.Options[(i+1)%len(c.Options)]
			}
		}
		return c.Options[0]
	default:
		return value
	}
}

// Built-in column names bound to task record fields.
const (
	ColumnNameStatus      = "Status"
	ColumnNameDescription = "Description"
	ColumnNameTag         = "Tag"
	ColumnNameFile        = "File"
)

// DefaultColumns returns the standard task view layout.
func DefaultColumns() []Column {
	return []Column{
		{Name: ColumnNameStatus, Kind: ColumnDropdown, Options: []string{string(TaskStatusPending), string(TaskStatusCompleted)}},
		{Name: ColumnNameDescription, Kind: ColumnText},
		{Name: ColumnNameTag, Kind: ColumnText},
		{Name: ColumnNameFile, Kind: ColumnText},
	}
}

// ParseOptions splits a comma-separated option list, trimming each entry.
func ParseOptions(s string) []string {
	var opts []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			opts = append(opts, p)
		}
	}
	return opts
}
