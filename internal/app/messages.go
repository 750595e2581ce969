// internal/app/messages.go
package app

import (
	"time"

	"github.com/llehouerou/chirp/internal/library"
	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
)

// TickMsg refreshes the progress of playing tracks.
type TickMsg time.Time

// DocumentsLoadedMsg carries the documents of one category.
type DocumentsLoadedMsg struct {
	Category  player.Category
	Documents []state.Document
	Err       error
}

// ScanRequestMsg asks for a library scan.
type ScanRequestMsg struct{}

// ScanProgressMsg reports the progress of a running scan.
type ScanProgressMsg library.ScanProgress

// ScanCompleteMsg is sent once the scan ended.
type ScanCompleteMsg struct {
	Err error
}

// ServiceStateChangedMsg is sent when a category starts, pauses or stops.
type ServiceStateChangedMsg playback.StateChange

// ServiceTrackChangedMsg is sent when a category plays another document.
type ServiceTrackChangedMsg playback.TrackChange

// ServicePositionMsg is sent when the player reports progress.
type ServicePositionMsg playback.PositionChange

// ServiceVolumeMsg is sent when the song volume changes.
type ServiceVolumeMsg playback.VolumeChange

// ServiceErrorMsg is sent when a track or the notification sound failed.
type ServiceErrorMsg playback.ErrorEvent

// ServiceClosedMsg is sent when the playback service shut down.
type ServiceClosedMsg struct{}
