// Package library fills the document catalogue from folders on disk.
// Ogg voice notes become voice documents; every other audio file is a song.
package library

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
	"github.com/llehouerou/chirp/internal/tags"
)

const numWorkers = 8

// Store is the part of the state manager the scanner writes to.
type Store interface {
	Documents(cat player.Category) ([]state.Document, error)
	RegisterDocuments(docs []state.Document) ([]state.Document, error)
	RemoveDocument(id player.DocumentID) error
}

// ScanProgress reports the progress of a library scan.
type ScanProgress struct {
	Phase       string // "scanning", "processing", "cleaning", "done"
	Current     int
	Total       int
	CurrentFile string
	Stats       *ScanStats // Only populated when Phase == "done"
}

// ScanStats holds statistics for a completed scan.
type ScanStats struct {
	BySource map[string]*SourceStats // keyed by source path
	Failed   []string                // paths that could not be read
}

// SourceStats holds per-source scan statistics.
type SourceStats struct {
	Added   []string // relative paths of added documents
	Removed []string // relative paths of removed documents
	Updated []string // relative paths of documents scanned again
}

// Counts returns the added, updated and removed totals over all sources.
func (s *ScanStats) Counts() (added, updated, removed int) {
	for _, src := range s.BySource {
		added += len(src.Added)
		updated += len(src.Updated)
		removed += len(src.Removed)
	}
	return added, updated, removed
}

// fileInfo holds information about a discovered audio file.
type fileInfo struct {
	path     string
	mtime    int64
	source   string // source path this file belongs to
	category player.Category
}

// Scan registers every audio file under sources and removes documents
// whose file disappeared. progress is closed when the scan ends.
func Scan(store Store, sources []string, progress chan<- ScanProgress) (*ScanStats, error) {
	defer close(progress)
	log := logrus.WithField("component", "library")

	stats := &ScanStats{
		BySource: make(map[string]*SourceStats),
	}
	for _, src := range sources {
		stats.BySource[src] = &SourceStats{}
	}

	// Phase 1: Walk the sources
	progress <- ScanProgress{Phase: "scanning", Current: 0, Total: 0}
	files, discoveredPaths := discoverFiles(sources, progress)
	counts := countByCategory(files)
	log.WithFields(logrus.Fields{
		"function": "Scan",
		"voice":    counts[player.Voice],
		"song":     counts[player.Song],
	}).Debug("Discovered files")

	// Phase 2: Load what the catalogue already knows under these sources
	existing, err := existingDocuments(store, sources)
	if err != nil {
		return nil, err
	}

	// Phase 3: Read tags in parallel and register
	if len(files) > 0 {
		if err := processFiles(store, files, existing, stats, progress); err != nil {
			return nil, err
		}
	}

	// Phase 4: Remove documents whose file is gone
	progress <- ScanProgress{Phase: "cleaning", Current: 0, Total: 0}
	for path, doc := range existing {
		if _, ok := discoveredPaths[path]; ok {
			continue
		}
		if err := store.RemoveDocument(doc.ID); err != nil {
			log.WithFields(logrus.Fields{
				"function": "Scan",
				"path":     path,
				"error":    err.Error(),
			}).Warn("Failed to remove missing document")
			continue
		}
		if src := sourceOf(sources, path); src != "" {
			stats.BySource[src].Removed = append(stats.BySource[src].Removed, relativePath(src, path))
		}
	}

	progress <- ScanProgress{Phase: "done", Current: len(files), Total: len(files), Stats: stats}
	return stats, nil
}

// existingDocuments maps path to document for every document under sources.
func existingDocuments(store Store, sources []string) (map[string]state.Document, error) {
	out := make(map[string]state.Document)
	for _, cat := range []player.Category{player.Voice, player.Song} {
		docs, err := store.Documents(cat)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			if d.Path != "" && sourceOf(sources, d.Path) != "" {
				out[d.Path] = d
			}
		}
	}
	return out, nil
}

// sourceOf returns the source containing path, or "".
func sourceOf(sources []string, path string) string {
	for _, src := range sources {
		if strings.HasPrefix(path, strings.TrimSuffix(src, "/")+"/") {
			return src
		}
	}
	return ""
}

// categoryOf picks the category a file is played in.
func categoryOf(path string) player.Category {
	if tags.IsVoiceFile(path) {
		return player.Voice
	}
	return player.Song
}
