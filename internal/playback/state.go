package playback

import "github.com/llehouerou/chirp/internal/player"

// State represents the playback state of one category as the UI shows it.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// fromPlayer folds the slot state machine into the three UI states. A
// track fading in counts as playing, one fading out to a stop as stopped.
func fromPlayer(s player.State) State {
	switch {
	case s.CanPause():
		return StatePlaying
	case s.CanResume():
		return StatePaused
	default:
		return StateStopped
	}
}
