// Package render provides text layout helpers for the demo front-end.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Sanitize removes control characters (except tab) and invalid UTF-8.
// Tags read from arbitrary files end up on screen through it.
func Sanitize(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, isControl) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size <= 1:
		case r == '\u00a0':
			b.WriteByte(' ')
		case isControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isControl(r rune) bool {
	return r != '\t' && unicode.IsControl(r) || r == '\u00a0'
}

// Truncate shortens s to maxWidth cells, adding an ellipsis if truncated.
// Wide characters (CJK, emoji) count as two cells.
func Truncate(s string, maxWidth int) string {
	return runewidth.Truncate(Sanitize(s), maxWidth, "...")
}

// TruncateAndPad truncates s if necessary, then pads it to exactly width cells.
func TruncateAndPad(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// Spread lays left and right out on one line of width cells. left is
// truncated first; right is dropped when even it does not fit.
func Spread(left, right string, width int) string {
	rw := runewidth.StringWidth(right)
	if rw+1 > width {
		return TruncateAndPad(left, width)
	}
	left = Truncate(left, width-rw-1)
	gap := width - runewidth.StringWidth(left) - rw
	return left + strings.Repeat(" ", gap) + right
}

// FormatDuration formats d as m:ss, or h:mm:ss from one hour on.
func FormatDuration(d time.Duration) string {
	d = max(d, 0)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
