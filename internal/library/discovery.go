package library

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/tags"
)

// progressEvery is how many discovered files go by between two progress
// updates while walking.
const progressEvery = 100

// discoverFiles walks the sources and returns the playable files, each with
// the category it will be registered in, ordered by path. A file reachable
// from two sources belongs to the first one. Hidden directories (messenger
// caches such as .thumbnails) and empty files, which are downloads that
// never started, are left out. found is the set of paths with their source.
func discoverFiles(sources []string, progress chan<- ScanProgress) (files []fileInfo, found map[string]string) {
	found = make(map[string]string)
	for _, src := range sources {
		_ = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable entries are skipped; the rest of the tree is still walked.
				return nil //nolint:nilerr // keep walking
			}
			if d.IsDir() {
				if path != src && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !tags.IsMusicFile(path) {
				return nil
			}
			if _, seen := found[path]; seen {
				return nil
			}
			info, err := d.Info()
			if err != nil || info.Size() == 0 {
				return nil //nolint:nilerr // keep walking
			}

			found[path] = src
			files = append(files, fileInfo{
				path:     path,
				mtime:    info.ModTime().UnixMilli(),
				source:   src,
				category: categoryOf(path),
			})
			if len(files)%progressEvery == 0 {
				progress <- ScanProgress{Phase: "scanning", Current: len(files), CurrentFile: path}
			}
			return nil
		})
	}

	slices.SortFunc(files, func(a, b fileInfo) int { return strings.Compare(a.path, b.path) })
	return files, found
}

// countByCategory tallies discovered files per category.
func countByCategory(files []fileInfo) map[player.Category]int {
	out := make(map[player.Category]int, 2)
	for _, f := range files {
		out[f.category]++
	}
	return out
}

// relativePath returns path relative to source, or path itself when it is
// not below source.
func relativePath(source, path string) string {
	rel, err := filepath.Rel(source, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
