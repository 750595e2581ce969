// internal/app/commands.go
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/chirp/internal/library"
	"github.com/llehouerou/chirp/internal/player"
)

// TickCmd returns a command that sends a TickMsg after 1 second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// LoadDocumentsCmd reads the documents of cat from the store.
func LoadDocumentsCmd(store library.Store, cat player.Category) tea.Cmd {
	return func() tea.Msg {
		docs, err := store.Documents(cat)
		return DocumentsLoadedMsg{Category: cat, Documents: docs, Err: err}
	}
}

// WatchServiceEvents returns a command that waits for playback service events.
// It listens on all subscription channels and converts events to tea.Msg.
func (m Model) WatchServiceEvents() tea.Cmd {
	sub := m.playbackSub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return ServiceStateChangedMsg(e)
		case e := <-sub.TrackChanged:
			return ServiceTrackChangedMsg(e)
		case e := <-sub.PositionChanged:
			return ServicePositionMsg(e)
		case e := <-sub.VolumeChanged:
			return ServiceVolumeMsg(e)
		case e := <-sub.Error:
			return ServiceErrorMsg(e)
		case <-sub.Done:
			return ServiceClosedMsg{}
		}
	}
}

// startScan runs library.Scan in the background. It returns nil if a scan
// is already running or no sources are configured.
func (m *Model) startScan() tea.Cmd {
	if m.scanCh != nil || len(m.Sources) == 0 {
		return nil
	}
	progress := make(chan library.ScanProgress)
	errCh := make(chan error, 1)
	m.scanCh = progress
	m.scanErrCh = errCh

	store, sources := m.Store, m.Sources
	go func() {
		_, err := library.Scan(store, sources, progress)
		errCh <- err
	}()
	return m.waitForScan()
}

func (m Model) waitForScan() tea.Cmd {
	errCh := m.scanErrCh
	return waitForChannel(m.scanCh, func(p library.ScanProgress, ok bool) tea.Msg {
		if !ok {
			return ScanCompleteMsg{Err: <-errCh}
		}
		return ScanProgressMsg(p)
	})
}

// waitForChannel creates a command that waits for a value from a channel and converts it to a message.
// onResult receives the value and a boolean indicating if the channel is still open (false means channel closed).
func waitForChannel[T any](ch <-chan T, onResult func(T, bool) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		result, ok := <-ch
		return onResult(result, ok)
	}
}
