package markdown

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/ShayCichocki/mdtasks/pkg/models"
)

func mustWrite(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustRead(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func editsOf(records []models.TaskRecord) []models.TaskEdit {
	edits := make([]models.TaskEdit, 0, len(records))
	for _, r := range records {
		edits = append(edits, r.Edit())
	}
	return edits
}

func TestFormatLine(t *testing.T) {
	done := models.TaskEdit{Status: models.TaskStatusCompleted, Description: "Buy milk @home"}
	if got := FormatLine(done, ""); got != "- [x] Buy milk @home" {
		t.Errorf("FormatLine = %q", got)
	}
	pending := models.TaskEdit{Status: models.TaskStatusPending, Description: "later"}
	if got := FormatLine(pending, "    "); got != "    - [ ] later" {
		t.Errorf("FormatLine with indent = %q", got)
	}
}

func TestRewriteContent_LegacyDropsIndent(t *testing.T) {
	content := "# List\n  - [ ] Buy milk @home\n"
	edits := []models.TaskEdit{{Status: models.TaskStatusCompleted, Description: "Buy milk @home", Tag: "@home"}}

	got, n := RewriteContent(content, edits, DefaultRewriteOptions())

	if n != 1 {
		t.Errorf("replaced = %d, want 1", n)
	}
	if got != "# List\n- [x] Buy milk @home\n" {
		t.Errorf("content = %q", got)
	}
}

func TestRewriteContent_PreserveIndent(t *testing.T) {
	content := "# List\n  - [ ] Buy milk @home\n"
	edits := []models.TaskEdit{{Status: models.TaskStatusCompleted, Description: "Buy milk @home", Tag: "@home"}}
	opts := DefaultRewriteOptions()
	opts.PreserveIndent = true

	got, _ := RewriteContent(content, edits, opts)

	if got != "# List\n  - [x] Buy milk @home\n" {
		t.Errorf("content = %q", got)
	}
}

func TestRewriteContent_RoundTripIdempotent(t *testing.T) {
	content := "# Project\n\n" +
		"- [ ] Write docs @docs\n" +
		"Intro paragraph.\n" +
		"- [x] Ship release @release\n" +
		"\n" +
		"- [ ] Fix bug @bug"

	records, err := ExtractReader("p.md", strings.NewReader(content))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	got, n := RewriteContent(content, editsOf(records), DefaultRewriteOptions())

	if got != content {
		t.Errorf("round trip changed content:\n got %q\nwant %q", got, content)
	}
	if n != 3 {
		t.Errorf("replaced = %d, want 3", n)
	}
}

func TestRewriteContent_NonTaskLinesUntouched(t *testing.T) {
	content := "# Title\r\n" +
		"- bullet without box @home\r\n" +
		"- [ ] task @home\r\n" +
		"> quote\r\n"
	edits := []models.TaskEdit{{Status: models.TaskStatusCompleted, Description: "task @home", Tag: "@home"}}

	got, _ := RewriteContent(content, edits, DefaultRewriteOptions())

	gotLines := splitLines(got)
	wantLines := splitLines(content)
	if len(gotLines) != len(wantLines) {
		t.Fatalf("line count %d, want %d", len(gotLines), len(wantLines))
	}
	for i := range wantLines {
		if i == 2 {
			if gotLines[i] != "- [x] task @home\r\n" {
				t.Errorf("task line = %q", gotLines[i])
			}
			continue
		}
		if gotLines[i] != wantLines[i] {
			t.Errorf("line %d changed: %q -> %q", i+1, wantLines[i], gotLines[i])
		}
	}
}

func TestRewriteContent_EmptyTagMatchesFirstTaskLine(t *testing.T) {
	// Tag matching is substring based and an empty tag occurs in every line.
	content := "- [ ] first\n- [ ] second\n"
	edits := []models.TaskEdit{{Status: models.TaskStatusCompleted, Description: "second", Tag: ""}}

	got, n := RewriteContent(content, edits, DefaultRewriteOptions())

	if n != 2 {
		t.Errorf("replaced = %d, want 2", n)
	}
	if got != "- [x] second\n- [x] second\n" {
		t.Errorf("content = %q", got)
	}
}

func TestRewriteContent_MatchLineIsExact(t *testing.T) {
	content := "- [ ] first\n- [ ] second\n- [ ] third @x\n"
	edits := []models.TaskEdit{
		{Status: models.TaskStatusCompleted, Description: "second", Line: 2},
		{Status: models.TaskStatusCompleted, Description: "ignored, no line"},
		{Status: models.TaskStatusCompleted, Description: "prose line", Line: 40},
	}
	opts := DefaultRewriteOptions()
	opts.Match = MatchLine

	got, n := RewriteContent(content, edits, opts)

	if n != 1 {
		t.Errorf("replaced = %d, want 1", n)
	}
	if got != "- [ ] first\n- [x] second\n- [ ] third @x\n" {
		t.Errorf("content = %q", got)
	}
}

func TestRewriteContent_MatchLineSkipsNonTaskLine(t *testing.T) {
	content := "# heading\n- [ ] task\n"
	edits := []models.TaskEdit{{Status: models.TaskStatusCompleted, Description: "hijack", Line: 1}}
	opts := DefaultRewriteOptions()
	opts.Match = MatchLine

	got, n := RewriteContent(content, edits, opts)

	if n != 0 || got != content {
		t.Errorf("non-task line should be untouched, got %q (n=%d)", got, n)
	}
}

func TestRewriter_Rewrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	mustWrite(t, fs, "/ws/todo.md", "# Todo\n  - [ ] Buy milk @home\nprose\n")

	rw := NewRewriter(fs, DefaultRewriteOptions())
	edits := []models.TaskEdit{{Status: models.TaskStatusCompleted, Description: "Buy milk @home", Tag: "@home"}}

	n, err := rw.Rewrite("/ws/todo.md", edits)
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if n != 1 {
		t.Errorf("replaced = %d, want 1", n)
	}

	if got := mustRead(t, fs, "/ws/todo.md"); got != "# Todo\n- [x] Buy milk @home\nprose\n" {
		t.Errorf("file = %q", got)
	}

	// No temp files left behind.
	entries, _ := afero.ReadDir(fs, "/ws")
	if len(entries) != 1 {
		t.Errorf("expected only todo.md in /ws, got %d entries", len(entries))
	}
}

func TestRewriter_ProseOnlyUnchanged(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "# Notes\n\nNothing to do here.\n"
	mustWrite(t, fs, "/ws/notes.md", content)

	n, err := NewRewriter(fs, DefaultRewriteOptions()).Rewrite("/ws/notes.md", nil)
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if n != 0 {
		t.Errorf("replaced = %d, want 0", n)
	}
	if got := mustRead(t, fs, "/ws/notes.md"); got != content {
		t.Errorf("file changed: %q", got)
	}
}

func TestRewriter_NonAtomic(t *testing.T) {
	fs := afero.NewMemMapFs()
	mustWrite(t, fs, "/ws/a.md", "- [ ] a @a\n")
	opts := DefaultRewriteOptions()
	opts.Atomic = false

	edits := []models.TaskEdit{{Status: models.TaskStatusCompleted, Description: "a @a", Tag: "@a"}}
	if _, err := NewRewriter(fs, opts).Rewrite("/ws/a.md", edits); err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if got := mustRead(t, fs, "/ws/a.md"); got != "- [x] a @a\n" {
		t.Errorf("file = %q", got)
	}
}

func TestRewriter_WriteError(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		base := afero.NewMemMapFs()
		mustWrite(t, base, "/ws/a.md", "- [ ] a @a\n")
		fs := afero.NewReadOnlyFs(base)

		opts := DefaultRewriteOptions()
		opts.Atomic = atomic
		_, err := NewRewriter(fs, opts).Rewrite("/ws/a.md", nil)

		var writeErr *WriteError
		if !errors.As(err, &writeErr) {
			t.Fatalf("atomic=%v: expected *WriteError, got %v", atomic, err)
		}
		if writeErr.Path != "/ws/a.md" {
			t.Errorf("WriteError.Path = %q", writeErr.Path)
		}
		if got := mustRead(t, base, "/ws/a.md"); got != "- [ ] a @a\n" {
			t.Errorf("atomic=%v: original modified: %q", atomic, got)
		}
	}
}

func TestRewriter_ReadError(t *testing.T) {
	_, err := NewRewriter(afero.NewMemMapFs(), DefaultRewriteOptions()).Rewrite("/missing.md", nil)

	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected *ReadError, got %v", err)
	}
}

func TestRewrite_OSFilesystemKeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.md")
	if err := os.WriteFile(path, []byte("- [ ] ship @rel\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	edits := []models.TaskEdit{{Status: models.TaskStatusCompleted, Description: "ship @rel", Tag: "@rel"}}
	if err := Rewrite(path, edits); err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "- [x] ship @rel\n" {
		t.Errorf("file = %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestRewrite_WritesThroughSymlink(t *testing.T) {
	tests := []struct {
		name  string
		links []string // each link points at the previous entry, the first at real.md
	}{
		{name: "single link", links: []string{"link.md"}},
		{name: "link chain", links: []string{"hop.md", "link.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			target := filepath.Join(dir, "real.md")
			if err := os.WriteFile(target, []byte("- [ ] task @a\n"), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			prev := "real.md"
			for _, name := range tt.links {
				if err := os.Symlink(prev, filepath.Join(dir, name)); err != nil {
					t.Skipf("symlinks unavailable: %v", err)
				}
				prev = name
			}
			link := filepath.Join(dir, "link.md")

			edits := []models.TaskEdit{{Status: models.TaskStatusCompleted, Description: "task @a", Tag: "@a"}}
			if err := Rewrite(link, edits); err != nil {
				t.Fatalf("Rewrite failed: %v", err)
			}

			data, err := os.ReadFile(target)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(data) != "- [x] task @a\n" {
				t.Errorf("target = %q, want the edit written through the link", data)
			}
			info, err := os.Lstat(link)
			if err != nil {
				t.Fatalf("lstat: %v", err)
			}
			if info.Mode()&os.ModeSymlink == 0 {
				t.Error("link was replaced by a regular file")
			}
		})
	}
}
