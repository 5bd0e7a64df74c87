package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// TaskCounts holds the numbers shown at the left of the footer.
type TaskCounts struct {
	Pending int
	Done    int
	Dirty   int
}

// Footer renders the status bar and keyboard hints.
type Footer struct {
	message    string
	isError    bool
	filter     string
	editing    bool
	width      int
	taskCounts TaskCounts

	// Styles
	successStyle   lipgloss.Style
	errorStyle     lipgloss.Style
	dirtyStyle     lipgloss.Style
	filterStyle    lipgloss.Style
	hintStyle      lipgloss.Style
	separatorStyle lipgloss.Style
}

// NewFooter creates a new Footer instance.
func NewFooter() *Footer {
	return &Footer{
		successStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")).
			Bold(true),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		dirtyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),

		filterStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")),

		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		separatorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("236")),
	}
}

// SetMessage sets the status message.
func (f *Footer) SetMessage(message string, isError bool) {
	f.message = message
	f.isError = isError
}

// Message returns the current status message.
func (f *Footer) Message() string {
	return f.message
}

// SetFilter sets the active tag filter shown in the footer.
func (f *Footer) SetFilter(filter string) {
	f.filter = filter
}

// SetEditing switches the hints to the input field's keys.
func (f *Footer) SetEditing(editing bool) {
	f.editing = editing
}

// SetWidth sets the footer width.
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetTaskCounts updates the task counts for display.
func (f *Footer) SetTaskCounts(counts TaskCounts) {
	f.taskCounts = counts
}

// View renders the footer.
func (f *Footer) View() string {
	left := fmt.Sprintf("○%d ✓%d", f.taskCounts.Pending, f.taskCounts.Done)
	if f.taskCounts.Dirty > 0 {
		left += f.dirtyStyle.Render(fmt.Sprintf(" *%d unsaved", f.taskCounts.Dirty))
	}
	if f.filter != "" {
		left += " " + f.filterStyle.Render("filter:"+f.filter)
	}

	sep := f.separatorStyle.Render(" │ ")

	if f.message != "" {
		if f.isError {
			left += sep + f.errorStyle.Render("✗ "+f.message)
		} else {
			left += sep + f.successStyle.Render(f.message)
		}
	}

	return left + sep + f.keyboardHints()
}

// keyboardHints returns context-sensitive keyboard hints.
func (f *Footer) keyboardHints() string {
	if f.editing {
		return f.hintStyle.Render("enter apply │ esc cancel")
	}
	return f.hintStyle.Render("↑/↓ move │ ←/→ column │ space cycle │ x toggle │ e edit │ enter fold │ / filter │ s save │ r reload │ q quit")
}
