package tags

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// Read reads the tags of path. dhowden/tag handles most files; MP3s it
// rejects go through id3v2 and everything else through TagLib. The title
// falls back to the file name.
func Read(path string) (*Tag, error) {
	t, err := readGeneric(path)
	if err != nil {
		fallback := readTaglib
		if extOf(path) == ExtMP3 {
			fallback = readID3
		}
		var ferr error
		if t, ferr = fallback(path); ferr != nil {
			return nil, errors.Join(err, ferr)
		}
	}
	t.Path = path
	t.clean()
	if t.Title == "" {
		t.Title = filepath.Base(path)
	}
	if t.AlbumArtist == "" {
		t.AlbumArtist = t.Artist
	}
	return t, nil
}

// ReadWithAudio reads tags and stream properties. Unreadable tags only
// cost the title; an unreadable stream fails.
func ReadWithAudio(path string) (*FileInfo, error) {
	audio, err := ReadAudioInfo(path)
	if err != nil {
		return nil, err
	}
	t, err := Read(path)
	if err != nil {
		t = &Tag{Path: path, Title: filepath.Base(path)}
	}
	return &FileInfo{Tag: *t, AudioInfo: *audio}, nil
}

func readGeneric(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}
	return &Tag{
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Album:       m.Album(),
	}, nil
}

// readID3 covers ID3v2 tags dhowden/tag chokes on, mostly UTF-16 ones.
func readID3(path string) (*Tag, error) {
	id3, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3.Close()

	return &Tag{
		Title:       id3.Title(),
		Artist:      id3.Artist(),
		AlbumArtist: id3Text(id3, "TPE2"),
		Album:       id3.Album(),
	}, nil
}

func id3Text(id3 *id3v2.Tag, id string) string {
	frames := id3.GetFrames(id)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

// readTaglib covers ffmpeg-made M4A files and Ogg streams.
func readTaglib(path string) (*Tag, error) {
	values, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	first := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	return &Tag{
		Title:       first(taglib.Title),
		Artist:      first(taglib.Artist),
		AlbumArtist: first(taglib.AlbumArtist),
		Album:       first(taglib.Album),
	}, nil
}
