// Package tags reads what chirp shows about an audio file: its tags,
// its stream layout and its cover art.
package tags

import (
	"path/filepath"
	"strings"
	"time"
)

// Extensions chirp catalogues.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
	ExtWAV  = ".wav"
)

// Tag is the metadata of one file.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
}

// Performer returns the artist, or the album artist when the track has
// none.
func (t *Tag) Performer() string {
	if t.Artist != "" {
		return t.Artist
	}
	return t.AlbumArtist
}

// clean drops the whitespace and NUL padding some taggers leave.
func (t *Tag) clean() {
	for _, s := range []*string{&t.Title, &t.Artist, &t.AlbumArtist, &t.Album} {
		*s = strings.TrimSpace(strings.Trim(*s, "\x00"))
	}
}

// AudioInfo describes the audio stream of a file.
type AudioInfo struct {
	Duration   time.Duration
	Format     string // MP3, FLAC, OPUS, VORBIS, AAC, ALAC, PCM
	SampleRate int
	BitDepth   int
}

// FileInfo is a file's tags and stream.
type FileInfo struct {
	Tag
	AudioInfo
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsMusicFile reports whether path has an extension chirp can play.
func IsMusicFile(path string) bool {
	switch extOf(path) {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtOGA, ExtM4A, ExtMP4, ExtWAV:
		return true
	}
	return false
}

// IsVoiceFile reports whether path looks like a recorded voice message.
// Messengers record those as Ogg, nearly always Opus.
func IsVoiceFile(path string) bool {
	switch extOf(path) {
	case ExtOPUS, ExtOGG, ExtOGA:
		return true
	}
	return false
}
