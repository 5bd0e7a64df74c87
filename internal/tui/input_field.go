package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InputSubmittedMsg is sent when the user presses Enter in the input field.
// Empty values are submitted too; an empty filter clears it.
type InputSubmittedMsg struct {
	Value string
}

// InputCancelledMsg is sent when the user presses Esc in the input field.
type InputCancelledMsg struct{}

// InputField is a one-line prompt used for editing descriptions and cells
// and for entering the tag filter.
type InputField struct {
	input textinput.Model
	label string
	width int
}

// NewInputField creates a new InputField.
func NewInputField() *InputField {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60

	return &InputField{
		input: ti,
		width: 80,
	}
}

// Open shows the field with a label and initial value and focuses it.
func (f *InputField) Open(label, value, placeholder string) tea.Cmd {
	f.label = label
	f.input.Placeholder = placeholder
	f.input.SetValue(value)
	f.input.CursorEnd()
	return f.input.Focus()
}

// Active reports whether the field is open.
func (f *InputField) Active() bool {
	return f.input.Focused()
}

// Value returns the current text.
func (f *InputField) Value() string {
	return f.input.Value()
}

// SetWidth sets the width of the input field.
func (f *InputField) SetWidth(width int) {
	f.width = width
	f.input.Width = width - 6 - len(f.label) // Account for label, prompt and padding
	if f.input.Width < 10 {
		f.input.Width = 10
	}
}

// Update handles messages for the input field.
func (f *InputField) Update(msg tea.Msg) (*InputField, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := f.input.Value()
			f.close()
			return f, func() tea.Msg {
				return InputSubmittedMsg{Value: text}
			}
		case "esc":
			f.close()
			return f, func() tea.Msg {
				return InputCancelledMsg{}
			}
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f *InputField) close() {
	f.input.Reset()
	f.input.Blur()
}

// View renders the input field.
func (f *InputField) View() string {
	promptStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(f.width - 2)

	prompt := promptStyle.Render(f.label + "> ")
	return boxStyle.Render(prompt + f.input.View())
}

// Height returns the rendered height in lines.
func (f *InputField) Height() int {
	return 3
}
