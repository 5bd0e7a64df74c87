package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShayCichocki/mdtasks/pkg/models"
)

func TestAddColumn(t *testing.T) {
	tests := []struct {
		name    string
		col     string
		kind    string
		options string
		wantErr bool
	}{
		{"text", "Notes", "text", "", false},
		{"dropdown", "Priority", "Dropdown", "low, high", false},
		{"checkbox", "Billable", "checkbox", "", false},
		{"duplicate", "Status", "text", "", true},
		{"empty name", "  ", "text", "", true},
		{"bad kind", "Weird", "slider", "", true},
		{"dropdown without options", "Priority", "dropdown", "", true},
		{"options on text", "Notes", "text", "a,b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := addColumn(models.DefaultColumns(), tt.col, tt.kind, tt.options)
			if (err != nil) != tt.wantErr {
				t.Fatalf("addColumn() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != 5 {
				t.Fatalf("columns = %d, want 5", len(got))
			}
			last := got[4]
			if last.Name != tt.col || string(last.Kind) != strings.ToLower(tt.kind) {
				t.Errorf("added column = %+v", last)
			}
		})
	}
}

func TestAddColumn_DoesNotAlias(t *testing.T) {
	base := make([]models.Column, 4, 8)
	copy(base, models.DefaultColumns())

	if _, err := addColumn(base, "Notes", "text", ""); err != nil {
		t.Fatalf("addColumn failed: %v", err)
	}
	if extended := base[:5]; extended[4].Name != "" {
		t.Error("addColumn wrote into the caller's backing array")
	}
}

func TestRemoveColumn(t *testing.T) {
	got, err := removeColumn(models.DefaultColumns(), models.ColumnNameTag)
	if err != nil {
		t.Fatalf("removeColumn failed: %v", err)
	}
	for _, c := range got {
		if c.Name == models.ColumnNameTag {
			t.Error("Tag column still present")
		}
	}

	if _, err := removeColumn(models.DefaultColumns(), "Missing"); err == nil {
		t.Error("removing an unknown column should fail")
	}

	single := []models.Column{{Name: "Only", Kind: models.ColumnText}}
	if _, err := removeColumn(single, "Only"); err == nil {
		t.Error("removing the last column should fail")
	}
}

func TestColumnsCommands(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "columns")
	if err != nil {
		t.Fatalf("columns failed: %v", err)
	}
	if !strings.Contains(out, "1. Status") || !strings.Contains(out, "[Pending, Completed]") {
		t.Errorf("default layout output:\n%s", out)
	}

	if _, err := runCLI(t, "columns", "add", "Priority", "--kind", "dropdown", "--options", "low,high"); err != nil {
		t.Fatalf("columns add failed: %v", err)
	}
	out, _ = runCLI(t, "columns")
	if !strings.Contains(out, "5. Priority") {
		t.Errorf("added column missing:\n%s", out)
	}

	exported := filepath.Join(t.TempDir(), "layout.yaml")
	if _, err := runCLI(t, "columns", "export", exported); err != nil {
		t.Fatalf("columns export failed: %v", err)
	}
	if !strings.Contains(readFile(t, exported), "name: Priority") {
		t.Errorf("export missing column:\n%s", readFile(t, exported))
	}

	if _, err := runCLI(t, "columns", "remove", "Priority"); err != nil {
		t.Fatalf("columns remove failed: %v", err)
	}
	out, _ = runCLI(t, "columns")
	if strings.Contains(out, "Priority") {
		t.Errorf("removed column still listed:\n%s", out)
	}

	if _, err := runCLI(t, "columns", "import", exported); err != nil {
		t.Fatalf("columns import failed: %v", err)
	}
	out, _ = runCLI(t, "columns")
	if !strings.Contains(out, "5. Priority") {
		t.Errorf("imported column missing:\n%s", out)
	}

	if _, err := runCLI(t, "columns", "reset"); err != nil {
		t.Fatalf("columns reset failed: %v", err)
	}
	out, _ = runCLI(t, "columns")
	if strings.Contains(out, "Priority") {
		t.Errorf("reset should restore defaults:\n%s", out)
	}
}
