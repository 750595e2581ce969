//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/tags"
)

// artCache maps documents to art URLs. Embedded covers are written once
// to the cache directory so MPRIS clients can load them by path.
type artCache struct {
	mu   sync.Mutex
	urls map[player.DocumentID]string
	// dir overrides the XDG cache directory.
	dir string
	log *logrus.Entry
}

func newArtCache() *artCache {
	return &artCache{
		urls: make(map[player.DocumentID]string),
		log:  logrus.WithField("component", "mpris"),
	}
}

// url returns the art URL of track, or "" when it has none.
func (c *artCache) url(track *playback.Track) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u, ok := c.urls[track.ID.Document]; ok {
		return u
	}
	u := c.resolve(track.Path)
	c.urls[track.ID.Document] = u
	return u
}

func (c *artCache) resolve(trackPath string) string {
	if trackPath == "" {
		return ""
	}
	if art := tags.FolderArt(trackPath); art != "" {
		return "file://" + art
	}

	data, mimeType, err := tags.EmbeddedArt(trackPath)
	if err != nil || data == nil {
		return ""
	}
	path, err := c.store(trackPath, data, mimeType)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"function": "resolve",
			"path":     trackPath,
			"error":    err.Error(),
		}).Warn("Failed to cache embedded cover")
		return ""
	}
	return "file://" + path
}

// store writes cover data under a name derived from the track path.
func (c *artCache) store(trackPath string, data []byte, mimeType string) (string, error) {
	h := fnv.New64a()
	h.Write([]byte(trackPath))
	ext := ".jpg"
	if mimeType == "image/png" {
		ext = ".png"
	}
	name := fmt.Sprintf("%x%s", h.Sum64(), ext)

	var path string
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			return "", err
		}
		path = filepath.Join(c.dir, name)
	} else {
		var err error
		path, err = xdg.CacheFile(filepath.Join("chirp", "covers", name))
		if err != nil {
			return "", err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
