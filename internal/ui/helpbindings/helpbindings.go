// Package helpbindings renders the scrollable list of key bindings.
package helpbindings

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/chirp/internal/keymap"
	"github.com/llehouerou/chirp/internal/ui/styles"
)

// categoryOrder defines the display order of binding contexts.
var categoryOrder = []string{"global", "playback", "list"}

var categoryLabels = map[string]string{
	"global":   "Global",
	"playback": "Playback",
	"list":     "Documents",
}

// chrome is the number of rows taken by the title, footer and borders.
const chrome = 6

// Model holds the state of the help view.
type Model struct {
	bindings []keymap.Binding
	scroll   int
	width    int
	height   int
}

// New creates a help view listing every binding.
func New() Model {
	var bindings []keymap.Binding
	for _, ctx := range categoryOrder {
		bindings = append(bindings, keymap.ByContext(ctx)...)
	}
	return Model{bindings: bindings}
}

// SetSize sets the area available to the view.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.scroll = min(m.scroll, m.maxScroll())
}

// Scroll moves the view by delta lines.
func (m *Model) Scroll(delta int) {
	m.scroll = min(max(m.scroll+delta, 0), m.maxScroll())
}

// Reset scrolls back to the top.
func (m *Model) Reset() {
	m.scroll = 0
}

// View renders the bordered help panel.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	t := styles.T()
	lines := m.lines()
	end := min(m.scroll+m.visibleHeight(), len(lines))

	var b strings.Builder
	b.WriteString(t.S().Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(lines[m.scroll:end], "\n"))
	b.WriteString("\n\n")
	b.WriteString(t.S().Subtle.Render(m.footer()))

	return t.S().Focused.Padding(0, 1).Render(b.String())
}

func (m Model) lines() []string {
	t := styles.T()
	keyStyle := lipgloss.NewStyle().Foreground(t.Song).Bold(true)
	headerStyle := lipgloss.NewStyle().Foreground(t.Warning).Bold(true)

	keyWidth := 0
	for _, b := range m.bindings {
		keyWidth = max(keyWidth, lipgloss.Width(keyLabel(b)))
	}

	var lines []string
	current := ""
	for _, b := range m.bindings {
		if b.Context != current {
			if current != "" {
				lines = append(lines, "")
			}
			lines = append(lines,
				headerStyle.Render(categoryLabels[b.Context]),
				t.S().Subtle.Render(strings.Repeat("─", keyWidth+15)))
			current = b.Context
		}
		key := keyLabel(b)
		key += strings.Repeat(" ", keyWidth-lipgloss.Width(key))
		lines = append(lines, keyStyle.Render(key)+"  "+t.S().Base.Render(b.Description))
	}
	return lines
}

// keyLabel joins the keys of b, naming the space bar.
func keyLabel(b keymap.Binding) string {
	keys := make([]string, len(b.Keys))
	for i, k := range b.Keys {
		keys[i] = keymap.Label(k)
	}
	return strings.Join(keys, ", ")
}

func (m Model) footer() string {
	if m.maxScroll() == 0 {
		return "?/esc close"
	}
	return "j/k scroll · ?/esc close"
}

func (m Model) visibleHeight() int {
	return max(m.height-chrome, 3)
}

func (m Model) maxScroll() int {
	return max(len(m.lines())-m.visibleHeight(), 0)
}
