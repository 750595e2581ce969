// internal/app/update.go
package app

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/chirp/internal/errmsg"
	"github.com/llehouerou/chirp/internal/keymap"
	"github.com/llehouerou/chirp/internal/library"
	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
	"github.com/llehouerou/chirp/internal/ui/doclist"
	"github.com/llehouerou/chirp/internal/ui/jobbar"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case DocumentsLoadedMsg:
		if msg.Err != nil {
			m.setError(errmsg.Format(errmsg.OpLibraryLoad, msg.Err))
			return m, nil
		}
		m.lists[msg.Category].SetDocuments(msg.Documents)
		m.syncPlaying(msg.Category)
		return m, nil

	case ScanRequestMsg:
		return m, m.startScan()
	case ScanProgressMsg:
		return m.handleScanProgress(library.ScanProgress(msg))
	case ScanCompleteMsg:
		m.ScanJob = nil
		m.scanCh = nil
		m.scanErrCh = nil
		if msg.Err != nil {
			m.setError(errmsg.Format(errmsg.OpLibraryScan, msg.Err))
		}
		m.resize()
		return m, tea.Batch(
			LoadDocumentsCmd(m.Store, player.Song),
			LoadDocumentsCmd(m.Store, player.Voice),
		)

	case ServiceStateChangedMsg:
		m.syncPlaying(msg.Category)
		cmds := []tea.Cmd{m.WatchServiceEvents()}
		if msg.Current == playback.StatePlaying && msg.Previous != playback.StatePlaying {
			cmds = append(cmds, TickCmd())
		}
		return m, tea.Batch(cmds...)
	case ServiceTrackChangedMsg:
		m.syncPlaying(msg.Category)
		return m, m.WatchServiceEvents()
	case ServicePositionMsg, ServiceVolumeMsg:
		// The view reads both from the service.
		return m, m.WatchServiceEvents()
	case ServiceErrorMsg:
		m.setError(playback.ErrorEvent(msg).Message())
		return m, m.WatchServiceEvents()
	case ServiceClosedMsg:
		return m, nil

	case TickMsg:
		if m.Playback.IsPlaying(player.Song) || m.Playback.IsPlaying(player.Voice) {
			return m, TickCmd()
		}

	default:
		// Cursor blinks of the filter prompt.
		if m.filter.Active() {
			_, cmd := m.filter.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleScanProgress(p library.ScanProgress) (tea.Model, tea.Cmd) {
	if job, ok := jobbar.FromScan(p); ok {
		m.ScanJob = &job
	}
	if p.Phase == "done" {
		m.setStatus(jobbar.Summary(p.Stats))
	}
	m.resize()
	return m, m.waitForScan()
}

// syncPlaying marks the document playing in cat in its list.
func (m *Model) syncPlaying(cat player.Category) {
	var id player.DocumentID
	if t := m.Playback.Current(cat); t != nil && m.Playback.State(cat).IsActive() {
		id = t.ID.Document
	}
	m.lists[cat].SetPlaying(id)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirm.Active() {
		if res, ok := m.confirm.HandleKey(key); ok && res.Confirmed {
			return m, m.forget(res.Document)
		}
		return m, nil
	}
	if m.filter.Active() {
		res, cmd := m.filter.Update(msg)
		m.lists[m.Focus].SetFilter(res.Text)
		return m, cmd
	}

	action := m.keys.Resolve(key)
	if m.ShowHelp {
		switch {
		case key == "esc" || action == keymap.ActionHelp || action == keymap.ActionQuit:
			m.ShowHelp = false
		case action == keymap.ActionMoveDown:
			m.help.Scroll(1)
		case action == keymap.ActionMoveUp:
			m.help.Scroll(-1)
		}
		return m, nil
	}

	if key == "esc" && m.lists[m.Focus].Filter() != "" {
		m.lists[m.Focus].SetFilter("")
		return m, nil
	}

	svc := m.Playback
	switch action {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.ShowHelp = true
		m.help.Reset()
	case keymap.ActionSwitchCategory:
		if m.Focus == player.Song {
			m.Focus = player.Voice
		} else {
			m.Focus = player.Song
		}
	case keymap.ActionRescan:
		if len(m.Sources) == 0 {
			m.setError("No library sources configured")
			return m, nil
		}
		return m, m.startScan()
	case keymap.ActionReinit:
		if err := svc.Player().Reinit(); err != nil {
			m.setError(errmsg.Format(errmsg.OpDeviceOpen, err))
		} else {
			m.setStatus("Audio device ready")
		}

	case keymap.ActionPlayPause:
		m.togglePlayback()
	case keymap.ActionStop:
		m.report(errmsg.OpPlaybackPause, svc.Stop(m.Focus))
	case keymap.ActionStopAll:
		svc.StopAll()
	case keymap.ActionSeekBack:
		m.report(errmsg.OpPlaybackSeek, svc.Seek(m.Focus, -seekStep))
	case keymap.ActionSeekForward:
		m.report(errmsg.OpPlaybackSeek, svc.Seek(m.Focus, seekStep))
	case keymap.ActionVolumeUp:
		svc.SetVolume(min(svc.Volume()+volumeStep, 1))
	case keymap.ActionVolumeDown:
		svc.SetVolume(max(svc.Volume()-volumeStep, 0))
	case keymap.ActionNotify:
		// Failures arrive as ServiceErrorMsg.
		_ = svc.Notify()
	case keymap.ActionNextSong:
		m.stepSong(1)
	case keymap.ActionPreviousSong:
		m.stepSong(-1)
	case keymap.ActionFilter:
		return m, m.filter.Start(m.lists[m.Focus].Filter(), m.Width)

	default:
		return m.handleListAction(action)
	}
	return m, nil
}

func (m Model) handleListAction(action keymap.Action) (tea.Model, tea.Cmd) {
	res := m.lists[m.Focus].HandleAction(action)
	switch res.Action { //nolint:exhaustive // Moves need no follow-up
	case doclist.ActionPlay:
		m.play(res.Document)
	case doclist.ActionDelete:
		m.confirm.Show("Forget document?",
			fmt.Sprintf("%q leaves the catalogue. The file stays on disk.", res.Document.Title),
			res.Document)
	}
	return m, nil
}

// togglePlayback pauses or resumes the focused category, starting the
// selected document when nothing is loaded there.
func (m *Model) togglePlayback() {
	err := m.Playback.Toggle(m.Focus)
	if errors.Is(err, playback.ErrNothingPlaying) {
		if doc, ok := m.lists[m.Focus].Selected(); ok {
			m.play(doc)
		}
		return
	}
	m.report(errmsg.OpPlaybackPause, err)
}

func (m *Model) play(doc state.Document) {
	if err := m.Playback.Play(doc.Category, doc.ID); err != nil {
		m.setError(errmsg.FormatWith(errmsg.OpPlaybackStart, doc.Title, err))
		return
	}
	m.setStatus("")
}

// stepSong plays the song delta places away from the current one.
func (m *Model) stepSong(delta int) {
	docs := m.lists[player.Song].Documents()
	idx := -1
	if cur := m.Playback.Current(player.Song); cur != nil {
		for i, d := range docs {
			if d.ID == cur.ID.Document {
				idx = i
				break
			}
		}
	}
	next := idx + delta
	if idx < 0 {
		next = 0
	}
	if next < 0 || next >= len(docs) {
		return
	}
	m.play(docs[next])
}

// forget removes doc from the catalogue, stopping it first if it plays.
func (m *Model) forget(doc state.Document) tea.Cmd {
	if cur := m.Playback.Current(doc.Category); cur != nil && cur.ID.Document == doc.ID {
		_ = m.Playback.Stop(doc.Category)
	}
	if err := m.Store.RemoveDocument(doc.ID); err != nil {
		m.setError(errmsg.FormatWith(errmsg.OpDocumentRemove, doc.Title, err))
		return nil
	}
	m.setStatus("Forgot " + doc.Title)
	return LoadDocumentsCmd(m.Store, doc.Category)
}

// report shows err unless it only says there was nothing to act on.
func (m *Model) report(op errmsg.Op, err error) {
	switch {
	case err == nil, errors.Is(err, playback.ErrNothingPlaying):
	case errors.Is(err, playback.ErrNotLoaded):
		m.setStatus("Still loading")
	default:
		m.setError(errmsg.Format(op, err))
	}
}
