package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const todoMD = "# Todo\n- [ ] A @work\n  - [x] B\n  - [ ] C @home\n- [ ] D\n"

// setupEnv points config and state at temp directories.
func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

// setupNotes writes files into a fresh directory and returns it.
func setupNotes(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// resetFlags restores every flag to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the root command and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String() + errOut.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "mdtasks version ") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, Version()) {
		t.Errorf("output %q should contain %q", out, Version())
	}
}

func TestRootDir(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "version"); err != nil {
		t.Fatalf("load config: %v", err)
	}

	if got := rootDir([]string{"notes"}); got != "notes" {
		t.Errorf("rootDir(notes) = %q", got)
	}
	if got := rootDir(nil); got != "." {
		t.Errorf("rootDir(nil) = %q, want default root", got)
	}
}

func TestRootCommand_MissingDir(t *testing.T) {
	setupEnv(t)

	_, err := runCLI(t, filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
