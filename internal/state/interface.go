package state

import (
	"database/sql"

	"github.com/llehouerou/chirp/internal/decoder"
	"github.com/llehouerou/chirp/internal/player"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	DB() *sql.DB
	Document(id player.DocumentID) (Document, error)
	Documents(cat player.Category) ([]Document, error)
	RegisterDocuments(docs []Document) ([]Document, error)
	RemoveDocument(id player.DocumentID) error
	Locate(id player.AudioID) (decoder.Source, error)
	SongVolume() (float64, bool, error)
	SaveSongVolume(volume float64)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
