package mpris

import (
	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
)

// Catalogue lists the documents of a category in playing order.
type Catalogue interface {
	Documents(cat player.Category) ([]state.Document, error)
}

// songPosition returns the song list and the index of current in it, or
// -1 when nothing from the list is current.
func songPosition(c Catalogue, current *playback.Track) ([]state.Document, int, error) {
	docs, err := c.Documents(player.Song)
	if err != nil {
		return nil, -1, err
	}
	if current == nil {
		return docs, -1, nil
	}
	for i, d := range docs {
		if d.ID == current.ID.Document {
			return docs, i, nil
		}
	}
	return docs, -1, nil
}
