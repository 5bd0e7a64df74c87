package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShayCichocki/mdtasks/internal/markdown"
	"github.com/ShayCichocki/mdtasks/internal/workspace"
)

func TestCheckCommand(t *testing.T) {
	setupEnv(t)
	dir := setupNotes(t, map[string]string{"todo.md": todoMD})
	path := filepath.Join(dir, "todo.md")

	out, err := runCLI(t, "check", path+":5", path+":4")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "[x] D") || !strings.Contains(out, "[x] C @home") {
		t.Errorf("output = %q", out)
	}

	want := "# Todo\n- [ ] A @work\n  - [x] B\n  - [x] C @home\n- [x] D\n"
	if got := readFile(t, path); got != want {
		t.Errorf("file after check:\n%q\nwant:\n%q", got, want)
	}
}

func TestUncheckCommand_KeepsIndent(t *testing.T) {
	setupEnv(t)
	dir := setupNotes(t, map[string]string{"todo.md": todoMD})
	path := filepath.Join(dir, "todo.md")

	if _, err := runCLI(t, "uncheck", path+":3"); err != nil {
		t.Fatalf("uncheck failed: %v", err)
	}

	want := "# Todo\n- [ ] A @work\n  - [ ] B\n  - [ ] C @home\n- [ ] D\n"
	if got := readFile(t, path); got != want {
		t.Errorf("file after uncheck:\n%q\nwant:\n%q", got, want)
	}
}

func TestCheckCommand_Errors(t *testing.T) {
	setupEnv(t)
	dir := setupNotes(t, map[string]string{"todo.md": todoMD})
	path := filepath.Join(dir, "todo.md")

	tests := []struct {
		name string
		loc  string
	}{
		{"heading line", path + ":1"},
		{"past end", path + ":99"},
		{"no line", path},
		{"bad line", path + ":x"},
		{"missing file", filepath.Join(dir, "nope.md") + ":1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, "check", tt.loc); err == nil {
				t.Errorf("check %s should fail", tt.loc)
			}
		})
	}

	if got := readFile(t, path); got != todoMD {
		t.Errorf("failed checks should not modify the file:\n%s", got)
	}
}

func TestSelectRecords_Dedupes(t *testing.T) {
	dir := setupNotes(t, map[string]string{"todo.md": todoMD})
	path := filepath.Join(dir, "todo.md")
	ws := workspace.New(nil, markdown.DefaultRewriteOptions())

	records, err := selectRecords(ws, []string{path + ":2", path + ":2", path + ":5"})
	if err != nil {
		t.Fatalf("selectRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Line != 2 || records[1].Line != 5 {
		t.Errorf("lines = %d, %d", records[0].Line, records[1].Line)
	}
}

func TestNormalizeCommand(t *testing.T) {
	setupEnv(t)
	dir := setupNotes(t, map[string]string{
		"todo.md":  "# Todo\n-   [ ]   A @work  \n  - [X] B\n",
		"prose.md": "no tasks\n",
	})
	path := filepath.Join(dir, "todo.md")

	out, err := runCLI(t, "normalize", dir)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if !strings.Contains(out, "Normalized 2 tasks in 1 files") {
		t.Errorf("output = %q", out)
	}

	want := "# Todo\n- [ ] A @work\n- [ ] B\n"
	first := readFile(t, path)
	if first != want {
		t.Errorf("file after normalize:\n%q\nwant:\n%q", first, want)
	}
	if got := readFile(t, filepath.Join(dir, "prose.md")); got != "no tasks\n" {
		t.Errorf("file without tasks changed: %q", got)
	}

	if _, err := runCLI(t, "normalize", dir); err != nil {
		t.Fatalf("second normalize failed: %v", err)
	}
	if second := readFile(t, path); second != first {
		t.Errorf("normalize is not idempotent:\n%q\n%q", first, second)
	}
}

func TestHistoryCommand(t *testing.T) {
	setupEnv(t)
	dir := setupNotes(t, map[string]string{"todo.md": todoMD})
	path := filepath.Join(dir, "todo.md")

	out, err := runCLI(t, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "No saves recorded") {
		t.Errorf("output = %q", out)
	}

	if _, err := runCLI(t, "check", path+":2"); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	out, err = runCLI(t, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("history should list %s:\n%s", path, out)
	}
}
