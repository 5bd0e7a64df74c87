package main

import (
	"fmt"
	"os"

	"github.com/ShayCichocki/mdtasks/internal/logging"
	"github.com/ShayCichocki/mdtasks/internal/state"
	"github.com/ShayCichocki/mdtasks/internal/tui"
	"github.com/ShayCichocki/mdtasks/internal/workspace"
)

// runTUI runs the interactive task tree on root.
func runTUI(root, tag string, watch bool) (retErr error) {
	if info, err := os.Stat(root); err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	// Log output corrupts the display while the TUI owns the terminal.
	restore, err := redirectLogs()
	if err != nil {
		return err
	}
	defer restore()

	logger := logging.For("tui")

	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("PANIC in TUI: %v", r)
		}
	}()

	opts := tui.Options{
		Root:      root,
		Workspace: workspace.New(nil, cfg.RewriteOptions()),
	}

	store, err := openStore()
	if err != nil {
		logger.Warn("running without settings store", "err", err)
	} else {
		defer store.Close()
		opts.Store = store
		if columns, err := store.LoadColumns(); err != nil {
			logger.Warn("using default columns", "err", err)
		} else {
			opts.Columns = columns
		}
	}

	opts.Filter = workspace.Filter{Tag: initialFilter(tag, store)}

	if watch && cfg.TUI.Watch {
		w, err := workspace.NewWatcher(root, cfg.TUI.Debounce)
		if err != nil {
			logger.Warn("file watching disabled", "err", err)
		} else {
			defer w.Close()
			opts.Changes = w.Changes()
		}
	}

	program, _ := tui.NewProgram(opts)
	_, err = program.Run()
	return err
}

// initialFilter picks the tag filter: the flag, then config, then the last
// filter used in the TUI.
func initialFilter(flag string, store *state.DB) string {
	if flag != "" {
		return flag
	}
	if cfg.Workspace.FilterTag != "" {
		return cfg.Workspace.FilterTag
	}
	if store == nil {
		return ""
	}
	last, ok, err := store.GetSetting(state.SettingLastFilter)
	if err != nil || !ok {
		return ""
	}
	return last
}

// redirectLogs sends logging to the configured log file, or discards it.
// The returned function restores logging to stderr.
func redirectLogs() (func(), error) {
	restore := func() {
		logging.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	}

	if cfg.Log.File == "" {
		logging.Discard()
		return restore, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logging.Configure(f, cfg.Log.Level, cfg.Log.Format)
	return func() {
		restore()
		f.Close()
	}, nil
}
