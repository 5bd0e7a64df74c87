// Package tui provides the terminal user interface for browsing and editing
// Markdown checkbox tasks.
//
// The App loads every Markdown file under a root directory through a
// workspace.Workspace and shows the tasks as a tree: a task nests under the
// nearest preceding task with less indentation. Edits stay in memory until
// the user saves, which rewrites each source file in turn.
//
// Keys:
//   - up/down (k/j) move, left/right (h/l) change the active column
//   - space cycles the active column (status, dropdown, checkbox)
//   - x toggles the selected task's status
//   - e edits the description, or the cell of a custom text column
//   - enter expands or collapses a task with subtasks
//   - / sets the tag filter and reloads
//   - s saves, r reloads, R discards edits and reloads, q quits
//
// Usage:
//
//	program, _ := tui.NewProgram(tui.Options{
//	    Root:      "notes",
//	    Workspace: workspace.New(nil, cfg.RewriteOptions()),
//	    Changes:   watcher.Changes(),
//	})
//	_, err := program.Run()
//
// When Changes is set, files modified on disk produce a notice and, if there
// are no unsaved edits, an automatic reload.
package tui
