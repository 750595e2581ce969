// Package textinput provides the one-line filter prompt shown under a
// document list.
package textinput

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/chirp/internal/ui/styles"
)

// Result describes the prompt after a key.
type Result struct {
	Text     string
	Done     bool // enter: keep Text and close the prompt
	Canceled bool // esc: drop the filter
}

// Model is the filter prompt.
type Model struct {
	input  textinput.Model
	active bool
}

// New creates an inactive prompt.
func New() Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "title or performer"
	ti.CharLimit = 128
	ti.PromptStyle = styles.T().S().Title
	ti.PlaceholderStyle = styles.T().S().Subtle
	return Model{input: ti}
}

// Start opens the prompt with initial text.
func (m *Model) Start(initial string, width int) tea.Cmd {
	m.SetWidth(width)
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.active = true
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

// SetWidth sets the width of the prompt in cells.
func (m *Model) SetWidth(width int) {
	m.input.Width = max(width-len(m.input.Prompt)-1, 1)
}

// Active returns whether the prompt is open.
func (m Model) Active() bool {
	return m.active
}

// Value returns the current text.
func (m Model) Value() string {
	return m.input.Value()
}

// Update handles a message while the prompt is open.
func (m *Model) Update(msg tea.Msg) (Result, tea.Cmd) {
	if !m.active {
		return Result{}, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.close()
			m.input.SetValue("")
			return Result{Canceled: true}, nil
		case "enter":
			m.close()
			return Result{Text: m.input.Value(), Done: true}, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return Result{Text: m.input.Value()}, cmd
}

func (m *Model) close() {
	m.active = false
	m.input.Blur()
}

// View renders the prompt, or nothing when it is closed.
func (m Model) View() string {
	if !m.active {
		return ""
	}
	return m.input.View()
}
