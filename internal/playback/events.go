package playback

import (
	"time"

	"github.com/llehouerou/chirp/internal/errmsg"
	"github.com/llehouerou/chirp/internal/player"
)

// StateChange is emitted when the playback state of a category changes.
type StateChange struct {
	Category player.Category
	Previous State
	Current  State
}

// TrackChange is emitted when Play starts a different document in a
// category. Replaying the same document does not emit it.
//
// The app should handle track-related side effects (MPRIS metadata, the
// "now playing" line) in response to this event.
type TrackChange struct {
	Category player.Category
	Previous *Track
	Current  *Track
}

// PositionChange is emitted when the player reports progress or a seek
// lands.
type PositionChange struct {
	Category player.Category
	Position time.Duration
	Duration time.Duration
}

// VolumeChange is emitted when the song volume changes.
type VolumeChange struct {
	Volume float64
}

// ErrorEvent is emitted when a track fails to play or the notification
// sound cannot be played.
type ErrorEvent struct {
	Operation errmsg.Op
	Document  *Track // nil for the notification sound
	Err       error
}

// Message formats the error for the user.
func (e ErrorEvent) Message() string {
	if e.Document != nil {
		return errmsg.FormatWith(e.Operation, e.Document.Title, e.Err)
	}
	return errmsg.Format(e.Operation, e.Err)
}
