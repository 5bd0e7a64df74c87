// Package logging configures the leveled console logger shared by mdtasks components.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu   sync.RWMutex
	root = log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.InfoLevel,
		Formatter:       log.TextFormatter,
		ReportTimestamp: false,
	})
)

// ParseLevel parses a string log level, defaulting to info. "warning" is
// accepted as an alias for warn.
func ParseLevel(level string) log.Level {
	if strings.EqualFold(level, "warning") {
		level = "warn"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// ParseFormatter parses a formatter name, defaulting to text.
func ParseFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Configure replaces the root logger. Loggers obtained from For after this call
// use the new settings.
func Configure(w io.Writer, level, format string) {
	mu.Lock()
	defer mu.Unlock()
	root = log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		Formatter:       ParseFormatter(format),
		ReportTimestamp: format != "",
	})
}

// Discard silences all logging, e.g. while the TUI owns the terminal.
func Discard() {
	Configure(io.Discard, "error", "")
}

// For returns a logger tagged with the component name.
func For(component string) *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.WithPrefix(component)
}
