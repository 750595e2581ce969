package state

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/llehouerou/chirp/internal/decoder"
	"github.com/llehouerou/chirp/internal/player"
)

// Mock is a test double for Manager.
type Mock struct {
	mu     sync.Mutex
	docs   []Document
	nextID player.DocumentID
	volume *float64
	saves  int
	closed bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) Document(id player.DocumentID) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return Document{}, fmt.Errorf("%w: %d", ErrDocumentNotFound, id)
}

func (m *Mock) Documents(cat player.Category) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Document
	for _, d := range m.docs {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Mock) RegisterDocuments(docs []Document) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Document, len(docs))
	for i, d := range docs {
		m.nextID++
		d.ID = m.nextID
		if d.AddedAt.IsZero() {
			d.AddedAt = time.Now()
		}
		m.docs = append(m.docs, d)
		out[i] = d
	}
	return out, nil
}

func (m *Mock) RemoveDocument(id player.DocumentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.docs {
		if d.ID == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Mock) Locate(id player.AudioID) (decoder.Source, error) {
	doc, err := m.Document(id.Document)
	if err != nil {
		return decoder.Source{}, err
	}
	return doc.Source(), nil
}

func (m *Mock) SongVolume() (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.volume == nil {
		return 1, false, nil
	}
	return *m.volume, true, nil
}

func (m *Mock) SaveSongVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = &volume
	m.saves++
}

// Saves returns how many times SaveSongVolume was called.
func (m *Mock) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed returns whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
