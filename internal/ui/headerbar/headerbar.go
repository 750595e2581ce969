// internal/ui/headerbar/headerbar.go
package headerbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/ui/styles"
)

// Height is the fixed height of the header bar (single line).
const Height = 1

const appName = "chirp"

// tab represents a header bar tab.
type tab struct {
	name     string
	category player.Category
}

var tabs = []tab{
	{"Songs", player.Song},
	{"Voice messages", player.Voice},
}

// Render returns the header bar for the given width: the application name
// on the left, one tab per category with its document count on the right.
// counts is indexed by category.
func Render(focus player.Category, counts [2]int, width int) string {
	if width < 20 {
		return ""
	}
	t := styles.T()

	parts := make([]string, 0, len(tabs))
	for _, tb := range tabs {
		label := fmt.Sprintf("%s (%d)", tb.name, counts[tb.category])
		style := t.S().Muted
		if tb.category == focus {
			accent := t.Song
			if tb.category == player.Voice {
				accent = t.Voice
			}
			style = lipgloss.NewStyle().Foreground(accent).Bold(true)
		}
		parts = append(parts, style.Render(label))
	}
	content := strings.Join(parts, t.S().Subtle.Render(" │ "))

	name := styles.ApplyBoldGradient(appName, t.Song, t.Voice)
	gap := width - lipgloss.Width(name) - lipgloss.Width(content)
	if gap < 1 {
		return content
	}
	return name + strings.Repeat(" ", gap) + content
}
