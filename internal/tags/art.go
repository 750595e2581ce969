package tags

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// folderArtNames are the cover files looked for next to a track, best
// first.
var folderArtNames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"album.jpg", "album.jpeg", "album.png",
	"front.jpg", "front.jpeg", "front.png",
}

// FolderArt returns the cover image stored next to trackPath, or "".
// Upper-case file names count too.
func FolderArt(trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, name := range folderArtNames {
		for _, n := range []string{name, strings.ToUpper(name)} {
			p := filepath.Join(dir, n)
			if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
				return p
			}
		}
	}
	return ""
}

// EmbeddedArt returns the picture embedded in the tags of path. data is
// nil when there is none.
func EmbeddedArt(path string) (data []byte, mimeType string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, "", err
	}
	pic := m.Picture()
	if pic == nil {
		return nil, "", nil
	}
	return pic.Data, pic.MIMEType, nil
}
