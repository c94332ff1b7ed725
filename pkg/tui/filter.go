package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// filterBar is the inline input for a row filter expression.
type filterBar struct {
	active bool
	input  textinput.Model
}

func newFilterBar() filterBar {
	ti := textinput.New()
	ti.Placeholder = `row["input: x"] == "0" || category == "exception"`
	ti.CharLimit = 512
	ti.Width = 60
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	return filterBar{input: ti}
}

// Open activates the bar, prefilled with the current expression.
func (f *filterBar) Open(current string) {
	f.active = true
	f.input.SetValue(current)
	f.input.CursorEnd()
	f.input.Focus()
}

// Close deactivates the bar.
func (f *filterBar) Close() {
	f.active = false
	f.input.Blur()
}

// Update handles key events when the bar is active.
// Returns (closed, committed, cmd).
func (f *filterBar) Update(msg tea.KeyMsg) (closed bool, committed bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		f.Close()
		return true, false, nil
	case "enter":
		f.Close()
		return true, true, nil
	}
	f.input, cmd = f.input.Update(msg)
	return false, false, cmd
}

// Value is the expression typed so far.
func (f *filterBar) Value() string {
	return f.input.Value()
}

// View renders the bar, or nothing when inactive.
func (f *filterBar) View() string {
	if !f.active {
		return ""
	}
	return f.input.View()
}
