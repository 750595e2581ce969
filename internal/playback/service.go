// Package playback is the session-facing facade over the player. It maps
// documents to play requests, persists the song volume and turns player
// notifications into UI events.
package playback

import (
	"errors"
	"time"

	"github.com/llehouerou/chirp/internal/player"
)

var (
	// ErrNothingPlaying is returned by controls that need a current track.
	ErrNothingPlaying = errors.New("nothing is playing")
	// ErrNotLoaded is returned when seeking before the stream layout is known.
	ErrNotLoaded = errors.New("track is still loading")
)

// Service defines the playback service contract.
type Service interface {
	// Playback control
	Play(cat player.Category, doc player.DocumentID) error
	Pause(cat player.Category) error
	Resume(cat player.Category) error
	Toggle(cat player.Category) error
	Stop(cat player.Category) error
	StopAll()
	Seek(cat player.Category, delta time.Duration) error
	SeekTo(cat player.Category, position time.Duration) error

	// Volume and notification sound
	SetVolume(v float64)
	Volume() float64
	Notify() error

	// State queries
	State(cat player.Category) State
	IsPlaying(cat player.Category) bool
	Position(cat player.Category) time.Duration
	Duration(cat player.Category) time.Duration
	Current(cat player.Category) *Track
	Player() player.Interface // Direct player access (for UI rendering)

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// samplesToDuration converts a sample count at freq to a duration.
func samplesToDuration(samples int64, freq int) time.Duration {
	if freq <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(freq)
}

// durationToSamples converts d to a sample count at freq.
func durationToSamples(d time.Duration, freq int) int64 {
	return int64(d) * int64(freq) / int64(time.Second)
}
