// internal/app/view.go
package app

import (
	"strings"

	"github.com/llehouerou/chirp/internal/icons"
	"github.com/llehouerou/chirp/internal/keymap"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/ui/confirm"
	"github.com/llehouerou/chirp/internal/ui/headerbar"
	"github.com/llehouerou/chirp/internal/ui/jobbar"
	"github.com/llehouerou/chirp/internal/ui/nowplaying"
	"github.com/llehouerou/chirp/internal/ui/render"
	"github.com/llehouerou/chirp/internal/ui/styles"
)

// statusHeight is the height of the status line.
const statusHeight = 1

// listHeight returns the number of document rows that fit.
func (m Model) listHeight() int {
	h := m.Height - headerbar.Height - 2*nowplaying.Height - statusHeight - 2
	if m.ScanJob != nil {
		h -= jobbar.Height
	}
	return max(h, 1)
}

func (m *Model) resize() {
	for i := range m.lists {
		m.lists[i].SetSize(max(m.Width-4, 0), m.listHeight())
	}
	m.help.SetSize(m.Width, m.Height-headerbar.Height-statusHeight)
	m.filter.SetWidth(m.Width)
}

// View renders the application UI.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	counts := [2]int{m.lists[player.Voice].Len(), m.lists[player.Song].Len()}
	parts := []string{headerbar.Render(m.Focus, counts, m.Width)}

	if m.ShowHelp {
		parts = append(parts, m.help.View())
	} else {
		parts = append(parts,
			nowplaying.Render(nowplaying.NewState(m.Playback, player.Song), m.Width, m.Focus == player.Song),
			nowplaying.Render(nowplaying.NewState(m.Playback, player.Voice), m.Width, m.Focus == player.Voice),
			styles.T().S().Focused.Padding(0, 1).Width(max(m.Width-2, 0)).Render(m.lists[m.Focus].View(true)),
		)
		if m.ScanJob != nil {
			parts = append(parts, jobbar.Render(*m.ScanJob, m.Width))
		}
	}

	parts = append(parts, m.renderStatus())
	view := strings.Join(parts, "\n")
	if m.confirm.Active() {
		view = confirm.Compose(view, m.confirm.View(m.Width, m.Height), m.Width)
	}
	return view
}

func (m Model) renderStatus() string {
	st := styles.T().S()
	filter := m.lists[m.Focus].Filter()
	switch {
	case m.filter.Active():
		return m.filter.View()
	case m.Status == "" && filter != "":
		return st.Muted.Render(render.Truncate("filter: "+filter+" · / edit · esc clear", m.Width))
	case m.Status == "":
		return st.Subtle.Render(render.Truncate(m.hint(), m.Width))
	case m.StatusError:
		return st.Error.Render(render.Truncate(icons.Error()+" "+m.Status, m.Width))
	default:
		return st.Muted.Render(render.Truncate(m.Status, m.Width))
	}
}

// hint lists the keys a first-time user needs.
func (m Model) hint() string {
	parts := make([]string, 0, 4)
	for _, h := range []struct {
		action keymap.Action
		label  string
	}{
		{keymap.ActionHelp, "help"},
		{keymap.ActionSwitchCategory, "switch"},
		{keymap.ActionPlayPause, "play/pause"},
		{keymap.ActionQuit, "quit"},
	} {
		if key := m.keys.Key(h.action); key != "" {
			parts = append(parts, key+" "+h.label)
		}
	}
	return strings.Join(parts, " · ")
}
