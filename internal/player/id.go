package player

import (
	"fmt"

	"github.com/llehouerou/chirp/internal/decoder"
)

// Category separates voice messages from songs. Each has its own slots.
type Category int

const (
	Voice Category = iota
	Song
)

const numCategories = 2

func (c Category) String() string {
	switch c {
	case Voice:
		return "voice"
	case Song:
		return "song"
	default:
		return "unknown"
	}
}

// DocumentID identifies the media document a track plays.
type DocumentID uint64

// ContextID identifies the message the document was played from.
type ContextID uint64

// AudioID identifies one play request. Two requests are the same logical
// track when every field matches.
type AudioID struct {
	Category Category
	Document DocumentID
	Context  ContextID
	PlayID   uint32
}

// IsEmpty reports whether the id names nothing.
func (id AudioID) IsEmpty() bool {
	return id.Document == 0 && id.Context == 0 && id.PlayID == 0
}

func (id AudioID) String() string {
	return fmt.Sprintf("%s:%d/%d#%d", id.Category, id.Document, id.Context, id.PlayID)
}

// Locator resolves the encoded media of a track.
type Locator interface {
	Locate(id AudioID) (decoder.Source, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(id AudioID) (decoder.Source, error)

func (f LocatorFunc) Locate(id AudioID) (decoder.Source, error) {
	return f(id)
}
