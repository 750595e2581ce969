package library

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/state"
	"github.com/llehouerou/chirp/internal/tags"
)

// registerBatch is how many documents are registered per transaction.
const registerBatch = 200

// fileResult holds the result of reading one audio file.
type fileResult struct {
	file fileInfo
	doc  state.Document
	err  error
}

// processFiles reads tags in parallel and registers the documents in
// batches. Registration is sequential: SQLite takes one writer.
func processFiles(
	store Store,
	files []fileInfo,
	existing map[string]state.Document,
	stats *ScanStats,
	progress chan<- ScanProgress,
) error {
	log := logrus.WithField("component", "library")
	total := len(files)
	var processed atomic.Int64

	workCh := make(chan fileInfo, total)
	resultCh := make(chan fileResult, total)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for f := range workCh {
				doc, err := readDocument(f)
				resultCh <- fileResult{file: f, doc: doc, err: err}
				processed.Add(1)
			}
		})
	}

	go func() {
		for _, f := range files {
			workCh <- f
		}
		close(workCh)
	}()

	// Progress reporter
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				progress <- ScanProgress{
					Phase:   "processing",
					Current: int(processed.Load()),
					Total:   total,
				}
			case <-done:
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	batch := make([]fileResult, 0, registerBatch)
	var regErr error
	flush := func() {
		if len(batch) == 0 || regErr != nil {
			batch = batch[:0]
			return
		}
		docs := make([]state.Document, len(batch))
		for i, r := range batch {
			docs[i] = r.doc
		}
		if _, err := store.RegisterDocuments(docs); err != nil {
			regErr = err
			batch = batch[:0]
			return
		}
		for _, r := range batch {
			rel := relativePath(r.file.source, r.file.path)
			src, ok := stats.BySource[r.file.source]
			if !ok {
				continue
			}
			if _, known := existing[r.file.path]; known {
				src.Updated = append(src.Updated, rel)
			} else {
				src.Added = append(src.Added, rel)
			}
		}
		batch = batch[:0]
	}

	for r := range resultCh {
		if r.err != nil {
			log.WithFields(logrus.Fields{
				"function": "processFiles",
				"path":     r.file.path,
				"error":    r.err.Error(),
			}).Debug("Skipping unreadable file")
			stats.Failed = append(stats.Failed, r.file.path)
			continue
		}
		batch = append(batch, r)
		if len(batch) == registerBatch {
			flush()
		}
	}
	flush()

	close(done)
	<-stopped
	progress <- ScanProgress{Phase: "processing", Current: total, Total: total}
	return regErr
}

// readDocument builds the catalogue entry of one file. The file's mtime
// is used as added_at so copies keep their place in the list.
func readDocument(f fileInfo) (state.Document, error) {
	info, err := tags.ReadWithAudio(f.path)
	if err != nil {
		return state.Document{}, err
	}
	return state.Document{
		Category:  f.category,
		Path:      f.path,
		Title:     info.Title,
		Performer: info.Performer(),
		Duration:  info.Duration,
		AddedAt:   time.UnixMilli(f.mtime),
	}, nil
}
