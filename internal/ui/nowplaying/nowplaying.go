// Package nowplaying renders the panel showing what plays in one category.
package nowplaying

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/chirp/internal/icons"
	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/ui/render"
	"github.com/llehouerou/chirp/internal/ui/styles"
)

// Height is the height of the panel: two content rows and the border.
const Height = 4

const (
	filledBlock = "▓"
	emptyBlock  = "░"
)

// State holds everything needed to render the panel of one category.
type State struct {
	Category  player.Category
	Status    playback.State
	Title     string
	Performer string
	Position  time.Duration
	Duration  time.Duration
	Volume    float64 // songs only
}

// NewState reads the panel state of cat from the playback service.
func NewState(svc playback.Service, cat player.Category) State {
	s := State{Category: cat, Volume: svc.Volume()}
	tr := svc.Current(cat)
	if tr == nil {
		return s
	}
	s.Status = svc.State(cat)
	s.Title = tr.Title
	s.Performer = tr.Performer
	s.Position = svc.Position(cat)
	s.Duration = svc.Duration(cat)
	return s
}

// Render returns the panel for the given total width.
func Render(s State, width int, focused bool) string {
	st := styles.T().S()
	panel := st.Panel
	if focused {
		panel = st.Focused
	}
	inner := max(width-4, 0)

	header := render.Spread(headline(s), detail(s), inner)
	var body string
	if s.Title == "" && !s.Status.IsActive() {
		body = st.Muted.Render(render.TruncateAndPad("Nothing playing", inner))
	} else {
		body = RenderProgress(s, inner)
	}
	return panel.Padding(0, 1).Width(max(width-2, 0)).Render(header + "\n" + body)
}

func headline(s State) string {
	title := s.Title
	if title == "" {
		if !s.Status.IsActive() {
			title = categoryName(s.Category)
		} else {
			title = "Unknown"
		}
	}
	if s.Category == player.Voice {
		return icons.FormatVoice(title)
	}
	return icons.FormatSong(title)
}

// detail is the performer for voice messages and the volume for songs.
func detail(s State) string {
	if s.Category == player.Voice {
		return s.Performer
	}
	icon := icons.Volume()
	if s.Volume <= 0 {
		icon = icons.VolumeMute()
	}
	return fmt.Sprintf("%s %3d%%", icon, int(s.Volume*100+0.5))
}

func categoryName(cat player.Category) string {
	if cat == player.Voice {
		return "Voice messages"
	}
	return "Songs"
}

// RenderProgress renders a block-style progress line.
// Format: ▶  1:23  ▓▓▓▓▓░░░░░  4:56
func RenderProgress(s State, width int) string {
	status := icons.Stop()
	switch s.Status {
	case playback.StatePlaying:
		status = icons.Play()
	case playback.StatePaused:
		status = icons.Pause()
	}

	posStr := render.FormatDuration(s.Position)
	durStr := render.FormatDuration(s.Duration)

	fixedWidth := lipgloss.Width(status) + 2 + lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(durStr)
	barWidth := width - fixedWidth
	if barWidth < 3 {
		// Too narrow for bar, just show times
		return render.TruncateAndPad(status+"  "+posStr+" / "+durStr, width)
	}

	var ratio float64
	if s.Duration > 0 {
		ratio = float64(s.Position) / float64(s.Duration)
	}
	filled := min(int(float64(barWidth)*ratio), barWidth)

	t := styles.T()
	from := t.Song
	if s.Category == player.Voice {
		from = t.Voice
	}
	bar := styles.GradientBar(filled, barWidth, filledBlock, emptyBlock, from, t.Fade)

	var b strings.Builder
	b.WriteString(status)
	b.WriteString("  ")
	b.WriteString(posStr)
	b.WriteString("  ")
	b.WriteString(bar)
	b.WriteString("  ")
	b.WriteString(durStr)
	return b.String()
}
