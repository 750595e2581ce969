package confirm

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Compose draws the non-blank part of each overlay line over base. Both
// may carry ANSI styling.
func Compose(base, overlay string, width int) string {
	baseLines := strings.Split(base, "\n")
	for i, line := range strings.Split(overlay, "\n") {
		if i >= len(baseLines) {
			break
		}
		plain := ansi.Strip(line)
		if strings.TrimSpace(plain) == "" {
			continue
		}
		start := len(plain) - len(strings.TrimLeft(plain, " "))
		end := start + ansi.StringWidth(strings.TrimSpace(plain))

		b := baseLines[i]
		if w := ansi.StringWidth(b); w < width {
			b += strings.Repeat(" ", width-w)
		}
		prefix := ansi.Cut(b, 0, start)
		// A wide rune cut in half leaves the prefix short.
		if w := ansi.StringWidth(prefix); w < start {
			prefix += strings.Repeat(" ", start-w)
		}
		out := prefix + ansi.Cut(line, start, end)
		if end < width {
			out += ansi.Cut(b, end, width)
		}
		baseLines[i] = out
	}
	return strings.Join(baseLines, "\n")
}
