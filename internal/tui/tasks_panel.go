package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ShayCichocki/mdtasks/pkg/models"
)

// Status and tree icons.
const (
	iconPending   = "[ ]"
	iconDone      = "[x]"
	iconExpanded  = "▼"
	iconCollapsed = "▶"
	iconLeaf      = "•"
)

// Fixed column widths. Description takes whatever is left.
const (
	widthStatus         = 13
	widthTag            = 14
	widthFile           = 24
	widthCustom         = 12
	minDescriptionWidth = 20
)

// TasksPanel displays loaded task records as a tree grid. Records nest under
// the nearest preceding less-indented record and can be expanded or collapsed.
type TasksPanel struct {
	root    string
	records []models.TaskRecord
	index   map[string]int // record ID -> position in records
	roots   []*models.Node

	columns      []models.Column
	activeColumn int

	// cells holds values of columns that are not bound to record fields.
	// They live for the session only and are never written to Markdown.
	cells map[string]map[string]string
	dirty map[string]bool

	selected     int
	scrollOffset int
	width        int
	height       int
	focused      bool
	collapsed    map[string]bool // record ID -> collapsed state

	// Rendered rows for navigation
	visibleItems []*models.Node

	// Styles
	titleStyle    lipgloss.Style
	headerStyle   lipgloss.Style
	activeStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	normalStyle   lipgloss.Style
	doneStyle     lipgloss.Style
	dirtyStyle    lipgloss.Style
	sectionStyle  lipgloss.Style
}

// NewTasksPanel creates a TasksPanel showing the given columns.
func NewTasksPanel(columns []models.Column) *TasksPanel {
	if len(columns) == 0 {
		columns = models.DefaultColumns()
	}
	return &TasksPanel{
		index:        make(map[string]int),
		columns:      columns,
		cells:        make(map[string]map[string]string),
		dirty:        make(map[string]bool),
		collapsed:    make(map[string]bool),
		visibleItems: make([]*models.Node, 0),
		width:        80,
		height:       24,
		focused:      true,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1),

		headerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Bold(true),

		activeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true).
			Underline(true),

		selectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Bold(true),

		normalStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),

		doneStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")), // Dark green

		dirtyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")), // Orange

		sectionStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true),
	}
}

// SetRecords replaces the displayed records. Edits are discarded; collapse
// state and session-only cells are kept for records whose ID survives.
func (p *TasksPanel) SetRecords(root string, records []models.TaskRecord) {
	p.root = root
	p.records = make([]models.TaskRecord, len(records))
	copy(p.records, records)

	p.index = make(map[string]int, len(p.records))
	for i, r := range p.records {
		p.index[r.ID] = i
	}
	p.dirty = make(map[string]bool)

	p.roots = models.BuildForest(p.records)
	p.buildVisibleItems()
	p.clampSelection()
}

// Records returns the records with any pending edits applied.
func (p *TasksPanel) Records() []models.TaskRecord {
	out := make([]models.TaskRecord, len(p.records))
	copy(out, p.records)
	return out
}

// SetColumns replaces the column layout.
func (p *TasksPanel) SetColumns(columns []models.Column) {
	if len(columns) == 0 {
		columns = models.DefaultColumns()
	}
	p.columns = columns
	if p.activeColumn >= len(columns) {
		p.activeColumn = len(columns) - 1
	}
}

// Columns returns the column layout.
func (p *TasksPanel) Columns() []models.Column {
	return p.columns
}

// ActiveColumn returns the column that space and edit act on.
func (p *TasksPanel) ActiveColumn() models.Column {
	return p.columns[p.activeColumn]
}

// SetSize updates the panel dimensions.
func (p *TasksPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.ensureVisible()
}

// SetFocused sets whether this panel has keyboard focus.
func (p *TasksPanel) SetFocused(focused bool) {
	p.focused = focused
}

// buildVisibleItems flattens the forest, skipping children of collapsed nodes.
func (p *TasksPanel) buildVisibleItems() {
	p.visibleItems = make([]*models.Node, 0, len(p.records))
	models.Walk(p.roots, func(n *models.Node) bool {
		p.visibleItems = append(p.visibleItems, n)
		return !p.collapsed[n.Record.ID]
	})
}

func (p *TasksPanel) clampSelection() {
	if p.selected >= len(p.visibleItems) {
		p.selected = len(p.visibleItems) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
	p.ensureVisible()
}

// Update handles navigation and in-place edits.
func (p *TasksPanel) Update(msg tea.Msg) (*TasksPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if p.selected > 0 {
				p.selected--
				p.ensureVisible()
			}
		case "down", "j":
			if p.selected < len(p.visibleItems)-1 {
				p.selected++
				p.ensureVisible()
			}
		case "home", "g":
			p.selected = 0
			p.ensureVisible()
		case "end", "G":
			p.selected = len(p.visibleItems) - 1
			p.clampSelection()
		case "left", "h":
			if p.activeColumn > 0 {
				p.activeColumn--
			}
		case "right", "l":
			if p.activeColumn < len(p.columns)-1 {
				p.activeColumn++
			}
		case "enter":
			p.ToggleCollapsed()
		case "x":
			p.ToggleSelected()
		case " ":
			p.CycleSelected()
		}
	}

	return p, nil
}

// ensureVisible adjusts scroll offset to keep selected item visible.
func (p *TasksPanel) ensureVisible() {
	visibleRows := p.visibleRows()

	if p.selected < p.scrollOffset {
		p.scrollOffset = p.selected
	} else if p.selected >= p.scrollOffset+visibleRows {
		p.scrollOffset = p.selected - visibleRows + 1
	}
}

// visibleRows is the number of task rows that fit. The border, title,
// summary, and column header take five lines.
func (p *TasksPanel) visibleRows() int {
	rows := p.height - 5
	if rows < 1 {
		rows = 1
	}
	return rows
}

// ToggleCollapsed expands or collapses the selected node if it has children.
func (p *TasksPanel) ToggleCollapsed() {
	node := p.selectedNode()
	if node == nil || len(node.Children) == 0 {
		return
	}
	id := node.Record.ID
	p.collapsed[id] = !p.collapsed[id]
	p.buildVisibleItems()
	p.clampSelection()
}

// ToggleSelected flips the selected record between Pending and Completed.
func (p *TasksPanel) ToggleSelected() bool {
	r := p.SelectedRecord()
	if r == nil {
		return false
	}
	p.setStatus(r.ID, r.Status.Toggle())
	return true
}

// CycleSelected advances the active column's value on the selected record.
// Status toggles; dropdown and checkbox columns step to their next option.
// Text and read-only columns are left alone.
func (p *TasksPanel) CycleSelected() bool {
	r := p.SelectedRecord()
	if r == nil {
		return false
	}
	col := p.ActiveColumn()
	switch col.Name {
	case models.ColumnNameStatus:
		next, err := models.ParseTaskStatus(col.Next(string(r.Status)))
		if err != nil {
			next = r.Status.Toggle()
		}
		p.setStatus(r.ID, next)
		return true
	case models.ColumnNameDescription, models.ColumnNameTag, models.ColumnNameFile:
		return false
	}
	if col.Kind == models.ColumnText {
		return false
	}
	p.SetCell(r.ID, col.Name, col.Next(p.Cell(r.ID, col.Name)))
	return true
}

func (p *TasksPanel) setStatus(id string, status models.TaskStatus) {
	i, ok := p.index[id]
	if !ok {
		return
	}
	p.records[i].Status = status
	p.dirty[id] = true
}

// SetDescription replaces the description of a record. The tag is left as
// loaded so tag-matched saves still find the source line.
func (p *TasksPanel) SetDescription(id, description string) bool {
	i, ok := p.index[id]
	if !ok {
		return false
	}
	if p.records[i].Description == description {
		return false
	}
	p.records[i].Description = description
	p.dirty[id] = true
	return true
}

// Cell returns a session-only column value.
func (p *TasksPanel) Cell(id, column string) string {
	return p.cells[id][column]
}

// SetCell stores a session-only column value. It does not mark the record dirty.
func (p *TasksPanel) SetCell(id, column, value string) {
	if p.cells[id] == nil {
		p.cells[id] = make(map[string]string)
	}
	p.cells[id][column] = value
}

func (p *TasksPanel) selectedNode() *models.Node {
	if len(p.visibleItems) == 0 || p.selected >= len(p.visibleItems) || p.selected < 0 {
		return nil
	}
	return p.visibleItems[p.selected]
}

// SelectedRecord returns the currently selected record, or nil if none.
func (p *TasksPanel) SelectedRecord() *models.TaskRecord {
	node := p.selectedNode()
	if node == nil {
		return nil
	}
	return node.Record
}

// Dirty reports whether any record has unsaved edits.
func (p *TasksPanel) Dirty() bool {
	return len(p.dirty) > 0
}

// DirtyCount returns the number of records with unsaved edits.
func (p *TasksPanel) DirtyCount() int {
	return len(p.dirty)
}

// TaskCount returns the total number of records.
func (p *TasksPanel) TaskCount() int {
	return len(p.records)
}

// CompletedCount returns the number of completed records.
func (p *TasksPanel) CompletedCount() int {
	count := 0
	for _, r := range p.records {
		if r.Status == models.TaskStatusCompleted {
			count++
		}
	}
	return count
}

// View renders the tasks panel.
func (p *TasksPanel) View() string {
	var b strings.Builder

	b.WriteString(p.titleStyle.Render("Tasks"))
	b.WriteString("\n")

	if len(p.records) == 0 {
		b.WriteString(p.normalStyle.Render("  No tasks"))
	} else {
		done := p.CompletedCount()
		b.WriteString(p.sectionStyle.Render(fmt.Sprintf(" %d tasks (%d pending, %d done)", len(p.records), len(p.records)-done, done)))
		b.WriteString("\n")

		widths := p.columnWidths()
		b.WriteString(p.renderHeader(widths))

		end := p.scrollOffset + p.visibleRows()
		if end > len(p.visibleItems) {
			end = len(p.visibleItems)
		}
		for i := p.scrollOffset; i < end; i++ {
			b.WriteString("\n")
			b.WriteString(p.renderRow(p.visibleItems[i], widths, i == p.selected))
		}
	}

	borderColor := lipgloss.Color("240")
	if p.focused {
		borderColor = lipgloss.Color("63") // Blue when focused
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(p.width - 2). // Account for border
		Height(p.height - 2).
		Render(b.String())
}

// columnWidths assigns widths so the row fits inside the border.
func (p *TasksPanel) columnWidths() []int {
	widths := make([]int, len(p.columns))
	// gutter + one space between columns
	used := 2 + len(p.columns) - 1
	desc := -1
	for i, c := range p.columns {
		switch c.Name {
		case models.ColumnNameStatus:
			widths[i] = widthStatus
		case models.ColumnNameTag:
			widths[i] = widthTag
		case models.ColumnNameFile:
			widths[i] = widthFile
		case models.ColumnNameDescription:
			desc = i
			continue
		default:
			widths[i] = widthCustom
		}
		used += widths[i]
	}
	if desc >= 0 {
		w := p.width - 4 - used
		if w < minDescriptionWidth {
			w = minDescriptionWidth
		}
		widths[desc] = w
	}
	return widths
}

func (p *TasksPanel) renderHeader(widths []int) string {
	cells := make([]string, len(p.columns))
	for i, c := range p.columns {
		text := fit(c.Name, widths[i])
		if i == p.activeColumn {
			cells[i] = p.activeStyle.Render(text)
		} else {
			cells[i] = p.headerStyle.Render(text)
		}
	}
	return "  " + strings.Join(cells, " ")
}

func (p *TasksPanel) renderRow(n *models.Node, widths []int, selected bool) string {
	r := n.Record

	gutter := "  "
	if p.dirty[r.ID] {
		gutter = p.dirtyStyle.Render("* ")
	}

	cells := make([]string, len(p.columns))
	for i, c := range p.columns {
		cells[i] = fit(p.cellText(n, c), widths[i])
	}
	line := strings.Join(cells, " ")

	switch {
	case selected:
		line = p.selectedStyle.Render(line)
	case r.Status == models.TaskStatusCompleted:
		line = p.doneStyle.Render(line)
	default:
		line = p.normalStyle.Render(line)
	}
	return gutter + line
}

// cellText returns the plain text shown for a record in a column.
func (p *TasksPanel) cellText(n *models.Node, c models.Column) string {
	r := n.Record
	switch c.Name {
	case models.ColumnNameStatus:
		icon := iconPending
		if r.Status == models.TaskStatusCompleted {
			icon = iconDone
		}
		return icon + " " + string(r.Status)
	case models.ColumnNameDescription:
		icon := iconLeaf
		if len(n.Children) > 0 {
			icon = iconExpanded
			if p.collapsed[r.ID] {
				icon = iconCollapsed
			}
		}
		return strings.Repeat("  ", n.Depth()) + icon + " " + r.Description
	case models.ColumnNameTag:
		return r.Tag
	case models.ColumnNameFile:
		return fmt.Sprintf("%s:%d", p.relPath(r.SourceFile), r.Line)
	default:
		return c.Render(p.Cell(r.ID, c.Name))
	}
}

func (p *TasksPanel) relPath(path string) string {
	if p.root == "" {
		return path
	}
	if rel, err := filepath.Rel(p.root, path); err == nil {
		return rel
	}
	return path
}

// fit truncates or pads s to exactly width terminal cells. Wide characters
// count as two.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
