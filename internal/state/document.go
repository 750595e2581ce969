package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/chirp/internal/decoder"
	"github.com/llehouerou/chirp/internal/player"
)

// ErrDocumentNotFound is returned when no document has the requested id.
var ErrDocumentNotFound = errors.New("document not found")

// Document is a playable media document: a song file on disk or a voice
// message held in memory.
type Document struct {
	ID        player.DocumentID
	Category  player.Category
	Path      string
	Data      []byte
	Title     string
	Performer string
	Duration  time.Duration
	AddedAt   time.Time
}

// Source returns where the encoded media of the document lives.
func (d Document) Source() decoder.Source {
	if len(d.Data) > 0 {
		return decoder.Blob(d.Data)
	}
	if d.Path != "" {
		return decoder.File(d.Path)
	}
	return decoder.Source{}
}

// Document returns the document with the given id.
func (m *Manager) Document(id player.DocumentID) (Document, error) {
	row := m.db.QueryRow(`
		SELECT id, category, path, data, title, performer, duration_ms, added_at
		FROM documents WHERE id = ?
	`, int64(id))
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("%w: %d", ErrDocumentNotFound, id)
	}
	return doc, err
}

// Documents lists the documents of a category, oldest first.
func (m *Manager) Documents(cat player.Category) ([]Document, error) {
	rows, err := m.db.Query(`
		SELECT id, category, path, data, title, performer, duration_ms, added_at
		FROM documents WHERE category = ?
		ORDER BY added_at, id
	`, int(cat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// RegisterDocuments stores docs and returns them with their ids set.
// Documents backed by a file are updated in place when the path is known.
func (m *Manager) RegisterDocuments(docs []Document) ([]Document, error) {
	out := make([]Document, len(docs))
	now := time.Now()
	err := withTx(m.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO documents (category, path, data, title, performer, duration_ms, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				category = excluded.category,
				title = excluded.title,
				performer = excluded.performer,
				duration_ms = excluded.duration_ms
			RETURNING id, added_at
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, doc := range docs {
			if doc.AddedAt.IsZero() {
				doc.AddedAt = now
			}
			var id, addedAt int64
			err := stmt.QueryRow(
				int(doc.Category),
				toNullString(doc.Path),
				nullBytes(doc.Data),
				doc.Title,
				toNullString(doc.Performer),
				doc.Duration.Milliseconds(),
				doc.AddedAt.UnixMilli(),
			).Scan(&id, &addedAt)
			if err != nil {
				return fmt.Errorf("register %q: %w", doc.Title, err)
			}
			doc.ID = player.DocumentID(id)
			doc.AddedAt = time.UnixMilli(addedAt)
			out[i] = doc
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveDocument deletes a document. Removing an unknown id is not an error.
func (m *Manager) RemoveDocument(id player.DocumentID) error {
	_, err := m.db.Exec(`DELETE FROM documents WHERE id = ?`, int64(id))
	return err
}

// Locate resolves the media of a play request.
func (m *Manager) Locate(id player.AudioID) (decoder.Source, error) {
	doc, err := m.Document(id.Document)
	if err != nil {
		return decoder.Source{}, err
	}
	if doc.Category != id.Category {
		return decoder.Source{}, fmt.Errorf("document %d is a %s, not a %s", id.Document, doc.Category, id.Category)
	}
	return doc.Source(), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (Document, error) {
	var (
		doc       Document
		id        int64
		category  int
		path      sql.NullString
		performer sql.NullString
		duration  int64
		addedAt   int64
	)
	err := s.Scan(&id, &category, &path, &doc.Data, &doc.Title, &performer, &duration, &addedAt)
	if err != nil {
		return Document{}, err
	}
	doc.ID = player.DocumentID(id)
	doc.Category = player.Category(category)
	doc.Path = nullString(path)
	doc.Performer = nullString(performer)
	doc.Duration = time.Duration(duration) * time.Millisecond
	doc.AddedAt = time.UnixMilli(addedAt)
	return doc, nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
