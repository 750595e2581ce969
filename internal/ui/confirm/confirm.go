// Package confirm provides the yes/no popup asked before forgetting a
// document.
package confirm

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/chirp/internal/state"
	"github.com/llehouerou/chirp/internal/ui/render"
	"github.com/llehouerou/chirp/internal/ui/styles"
)

const hint = "enter/y confirm · esc/n cancel"

// Result is the answer to the popup.
type Result struct {
	Confirmed bool
	Document  state.Document
}

// Model is a yes/no popup about one document.
type Model struct {
	title    string
	message  string
	document state.Document
	active   bool
}

// New creates a hidden popup.
func New() Model {
	return Model{}
}

// Show asks the question about doc.
func (m *Model) Show(title, message string, doc state.Document) {
	m.title = title
	m.message = message
	m.document = doc
	m.active = true
}

// Active returns whether the popup is shown.
func (m Model) Active() bool {
	return m.active
}

// HandleKey answers the popup. ok is false for keys that do not answer
// it; the popup stays up.
func (m *Model) HandleKey(key string) (res Result, ok bool) {
	if !m.active {
		return Result{}, false
	}
	switch key {
	case "enter", "y", "Y":
		res.Confirmed = true
	case "esc", "n", "N", "q":
	default:
		return Result{}, false
	}
	res.Document = m.document
	*m = Model{}
	return res, true
}

// View renders the popup centered in a width x height screen, or nothing
// when it is hidden.
func (m Model) View(width, height int) string {
	if !m.active || width < 10 || height < 5 {
		return ""
	}
	st := styles.T().S()
	inner := min(max(lipgloss.Width(m.message), lipgloss.Width(hint), lipgloss.Width(m.title)), width-6)
	lines := []string{
		st.Title.Render(render.Truncate(m.title, inner)),
		"",
		st.Base.Render(render.Truncate(m.message, inner)),
		"",
		st.Subtle.Render(render.Truncate(hint, inner)),
	}
	box := st.Focused.Padding(0, 1).Width(inner + 2).Render(strings.Join(lines, "\n"))
	return center(box, width, height)
}

func center(box string, width, height int) string {
	lines := strings.Split(box, "\n")
	boxWidth := 0
	for _, l := range lines {
		boxWidth = max(boxWidth, lipgloss.Width(l))
	}
	top := max((height-len(lines))/2, 0)
	left := strings.Repeat(" ", max((width-boxWidth)/2, 0))

	out := make([]string, 0, top+len(lines))
	for range top {
		out = append(out, "")
	}
	for _, l := range lines {
		out = append(out, left+l)
	}
	return strings.Join(out, "\n")
}
