package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReportsMarkdownWrites(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	w, err := NewWatcher(dir, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	// Ignored: not Markdown.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	target := filepath.Join(sub, "todo.md")
	if err := os.WriteFile(target, []byte("- [ ] new\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case change := <-w.Changes():
		if len(change.Paths) != 1 || change.Paths[0] != target {
			t.Errorf("change paths = %v, want [%s]", change.Paths, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestNewWatcher_MissingRoot(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "gone"), time.Millisecond); err == nil {
		t.Error("expected error for missing root")
	}
}
