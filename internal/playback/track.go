package playback

import (
	"time"

	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
)

// Track describes the document playing in a category.
// This is a copy of the data, not a reference to state.Document.
type Track struct {
	ID        player.AudioID
	Path      string
	Title     string
	Performer string
	Duration  time.Duration
}

func newTrack(id player.AudioID, doc state.Document) *Track {
	return &Track{
		ID:        id,
		Path:      doc.Path,
		Title:     doc.Title,
		Performer: doc.Performer,
		Duration:  doc.Duration,
	}
}
