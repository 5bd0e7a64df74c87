package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/ShayCichocki/mdtasks/internal/logging"
	"github.com/ShayCichocki/mdtasks/internal/markdown"
	"github.com/ShayCichocki/mdtasks/internal/state"
	"github.com/ShayCichocki/mdtasks/internal/workspace"
	"github.com/ShayCichocki/mdtasks/pkg/models"
)

// LoadedMsg carries the result of loading the workspace.
type LoadedMsg struct {
	Batch *workspace.Batch
	Err   error
}

// SavedMsg carries the result of writing edits back to disk.
type SavedMsg struct {
	Result workspace.SaveResult
	Err    error
}

// FilesChangedMsg is sent when the watcher sees Markdown files change on disk.
type FilesChangedMsg struct {
	Paths []string
}

// Store is the persistence the TUI uses for preferences and the save log.
type Store interface {
	state.SettingsStore
	state.SaveLog
}

// Options configures an App.
type Options struct {
	// Root is the directory scanned for Markdown files.
	Root string
	// Filter is the initial tag filter.
	Filter workspace.Filter
	// Workspace loads and saves records.
	Workspace *workspace.Workspace
	// Store is optional. When set, the filter and saves are recorded.
	Store Store
	// Columns is the initial column layout. Nil means the default layout.
	Columns []models.Column
	// Changes is optional. Each value triggers a changed-on-disk notice.
	Changes <-chan workspace.Change
}

// inputPurpose records what an open input field is editing.
type inputPurpose int

const (
	inputNone inputPurpose = iota
	inputDescription
	inputCell
	inputFilter
)

// App is the main bubbletea model for the task tree.
type App struct {
	opts   Options
	panel  *TasksPanel
	input  *InputField
	footer *Footer
	logger *log.Logger

	batch  *workspace.Batch
	filter workspace.Filter

	// purpose is what the input field is editing, with the target record
	// and column when relevant.
	purpose    inputPurpose
	editID     string
	editColumn string

	width       int
	height      int
	loading     bool
	saving      bool
	confirmQuit bool
	quitting    bool
}

// New creates a new App instance.
func New(opts Options) *App {
	if opts.Workspace == nil {
		opts.Workspace = workspace.New(nil, markdown.DefaultRewriteOptions())
	}
	if opts.Root == "" {
		opts.Root = "."
	}

	a := &App{
		opts:   opts,
		panel:  NewTasksPanel(opts.Columns),
		input:  NewInputField(),
		footer: NewFooter(),
		logger: logging.For("tui"),
		filter: opts.Filter,
		width:  80,
		height: 24,
	}
	a.footer.SetFilter(opts.Filter.Tag)
	a.layout()
	return a
}

// NewProgram creates a bubbletea program running an App in the alternate screen.
func NewProgram(opts Options) (*tea.Program, *App) {
	app := New(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	return p, app
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	a.loading = true
	return tea.Batch(a.loadCmd(), waitForChange(a.opts.Changes))
}

// loadCmd reads every Markdown file under the root with the current filter.
func (a *App) loadCmd() tea.Cmd {
	ws, root, filter := a.opts.Workspace, a.opts.Root, a.filter
	return func() tea.Msg {
		batch, err := ws.Load(root, filter)
		return LoadedMsg{Batch: batch, Err: err}
	}
}

// saveCmd writes the panel's records back to their source files.
func (a *App) saveCmd() tea.Cmd {
	ws, records := a.opts.Workspace, a.panel.Records()
	return func() tea.Msg {
		result, err := ws.Save(records)
		return SavedMsg{Result: result, Err: err}
	}
}

// waitForChange blocks on the watcher channel. It is re-issued after every
// change so the channel is drained for the life of the program.
func waitForChange(changes <-chan workspace.Change) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-changes
		if !ok {
			return nil
		}
		return FilesChangedMsg{Paths: change.Paths}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case LoadedMsg:
		a.handleLoaded(msg)
		return a, nil

	case SavedMsg:
		return a, a.handleSaved(msg)

	case FilesChangedMsg:
		return a, a.handleFilesChanged(msg)

	case InputSubmittedMsg:
		return a, a.handleInput(msg.Value)

	case InputCancelledMsg:
		a.closeInput()
		return a, nil

	case tea.KeyMsg:
		if a.input.Active() {
			var cmd tea.Cmd
			a.input, cmd = a.input.Update(msg)
			return a, cmd
		}
		return a, a.handleKey(msg)
	}

	if a.input.Active() {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key != "q" && key != "ctrl+c" {
		a.confirmQuit = false
	}

	switch key {
	case "q", "ctrl+c":
		if a.panel.Dirty() && !a.confirmQuit {
			a.confirmQuit = true
			a.footer.SetMessage("unsaved changes: press q again to quit, s to save", true)
			return nil
		}
		a.quitting = true
		return tea.Quit

	case "s":
		if a.saving || a.loading {
			return nil
		}
		if a.panel.TaskCount() == 0 {
			a.footer.SetMessage("nothing to save", false)
			return nil
		}
		a.saving = true
		a.footer.SetMessage("saving...", false)
		return a.saveCmd()

	case "r":
		if a.panel.Dirty() {
			a.footer.SetMessage("unsaved changes: press R to discard and reload", true)
			return nil
		}
		return a.reload()

	case "R":
		return a.reload()

	case "/":
		if a.panel.Dirty() {
			a.footer.SetMessage("save or discard (R) changes before filtering", true)
			return nil
		}
		return a.openInput(inputFilter, "", "", "filter", a.filter.Tag, "tag text, empty for all")

	case "e":
		return a.startEdit()
	}

	var cmd tea.Cmd
	a.panel, cmd = a.panel.Update(msg)
	a.refreshCounts()
	return cmd
}

// startEdit opens the input on the selected record. Custom text columns edit
// their cell; every other column edits the description.
func (a *App) startEdit() tea.Cmd {
	r := a.panel.SelectedRecord()
	if r == nil {
		return nil
	}
	col := a.panel.ActiveColumn()
	if col.Kind == models.ColumnText && !isBoundColumn(col.Name) {
		return a.openInput(inputCell, r.ID, col.Name, col.Name, a.panel.Cell(r.ID, col.Name), "")
	}
	return a.openInput(inputDescription, r.ID, "", "description", r.Description, "")
}

func isBoundColumn(name string) bool {
	switch name {
	case models.ColumnNameStatus, models.ColumnNameDescription, models.ColumnNameTag, models.ColumnNameFile:
		return true
	}
	return false
}

func (a *App) openInput(purpose inputPurpose, id, column, label, value, placeholder string) tea.Cmd {
	a.purpose = purpose
	a.editID = id
	a.editColumn = column
	cmd := a.input.Open(label, value, placeholder)
	a.panel.SetFocused(false)
	a.footer.SetEditing(true)
	a.layout()
	return cmd
}

func (a *App) closeInput() {
	a.purpose = inputNone
	a.editID = ""
	a.editColumn = ""
	a.panel.SetFocused(true)
	a.footer.SetEditing(false)
	a.layout()
}

func (a *App) handleInput(value string) tea.Cmd {
	purpose, id, column := a.purpose, a.editID, a.editColumn
	a.closeInput()

	switch purpose {
	case inputDescription:
		if a.panel.SetDescription(id, strings.TrimSpace(value)) {
			a.refreshCounts()
		}
	case inputCell:
		a.panel.SetCell(id, column, value)
	case inputFilter:
		a.filter = workspace.Filter{Tag: strings.TrimSpace(value)}
		a.footer.SetFilter(a.filter.Tag)
		if a.opts.Store != nil {
			if err := a.opts.Store.SetSetting(state.SettingLastFilter, a.filter.Tag); err != nil {
				a.logger.Warn("could not store filter", "err", err)
			}
		}
		return a.reload()
	}
	return nil
}

func (a *App) reload() tea.Cmd {
	a.loading = true
	a.confirmQuit = false
	a.footer.SetMessage("loading...", false)
	return a.loadCmd()
}

func (a *App) handleLoaded(msg LoadedMsg) {
	a.loading = false

	if msg.Err != nil && !errors.Is(msg.Err, workspace.ErrNoFilesFound) {
		a.logger.Error("load failed", "root", a.opts.Root, "err", msg.Err)
		a.footer.SetMessage(msg.Err.Error(), true)
		return
	}

	a.batch = msg.Batch
	a.panel.SetRecords(msg.Batch.Root, msg.Batch.Records)
	a.refreshCounts()

	if errors.Is(msg.Err, workspace.ErrNoFilesFound) {
		a.footer.SetMessage(fmt.Sprintf("no markdown files found in %s", a.opts.Root), false)
	} else {
		a.footer.SetMessage(fmt.Sprintf("loaded %d tasks from %d files", len(msg.Batch.Records), len(msg.Batch.Files)), false)
	}

	if a.opts.Store != nil {
		if err := a.opts.Store.SetSetting(state.SettingLastWorkspace, a.opts.Root); err != nil {
			a.logger.Warn("could not store workspace", "err", err)
		}
	}
}

func (a *App) handleSaved(msg SavedMsg) tea.Cmd {
	a.saving = false

	if a.opts.Store != nil && len(msg.Result.Replaced) > 0 {
		batchID := ""
		if a.batch != nil {
			batchID = a.batch.ID
		}
		if err := a.opts.Store.RecordSaves(batchID, msg.Result.Replaced, time.Now()); err != nil {
			a.logger.Warn("could not record save", "err", err)
		}
	}

	if msg.Err != nil {
		a.footer.SetMessage(fmt.Sprintf("save stopped after %d files: %v", len(msg.Result.Files), msg.Err), true)
		return nil
	}

	a.footer.SetMessage(fmt.Sprintf("saved %d lines in %d files", msg.Result.TotalReplaced(), len(msg.Result.Files)), false)
	a.loading = true
	return a.loadCmd()
}

func (a *App) handleFilesChanged(msg FilesChangedMsg) tea.Cmd {
	next := waitForChange(a.opts.Changes)

	// Our own saves trigger the watcher too.
	if a.saving || a.loading {
		return next
	}

	names := make([]string, 0, len(msg.Paths))
	for _, p := range msg.Paths {
		names = append(names, filepath.Base(p))
	}
	notice := "changed on disk: " + strings.Join(names, ", ")

	if a.panel.Dirty() {
		a.footer.SetMessage(notice+" (R to discard edits and reload)", true)
		return next
	}
	a.footer.SetMessage(notice, false)
	a.loading = true
	return tea.Batch(a.loadCmd(), next)
}

func (a *App) refreshCounts() {
	total := a.panel.TaskCount()
	done := a.panel.CompletedCount()
	a.footer.SetTaskCounts(TaskCounts{
		Pending: total - done,
		Done:    done,
		Dirty:   a.panel.DirtyCount(),
	})
}

// layout sizes the components for the current terminal.
func (a *App) layout() {
	panelHeight := a.height - 1 // footer
	if a.input.Active() {
		panelHeight -= a.input.Height()
	}
	if panelHeight < 6 {
		panelHeight = 6
	}
	a.panel.SetSize(a.width, panelHeight)
	a.input.SetWidth(a.width)
	a.footer.SetWidth(a.width)
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.panel.View())
	b.WriteString("\n")
	if a.input.Active() {
		b.WriteString(a.input.View())
		b.WriteString("\n")
	}
	b.WriteString(a.footer.View())
	return b.String()
}

// Panel returns the task panel.
func (a *App) Panel() *TasksPanel {
	return a.panel
}

// Filter returns the active tag filter.
func (a *App) Filter() workspace.Filter {
	return a.filter
}
