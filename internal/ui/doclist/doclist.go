// Package doclist renders the documents of one category as a scrollable
// list.
package doclist

import (
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/chirp/internal/icons"
	"github.com/llehouerou/chirp/internal/keymap"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
	"github.com/llehouerou/chirp/internal/ui/render"
	"github.com/llehouerou/chirp/internal/ui/styles"
)

const scrollMargin = 2

// Action represents what a key did to the list.
type Action int

const (
	ActionNone   Action = iota
	ActionMoved         // Cursor moved
	ActionPlay          // Play the selected document
	ActionDelete        // Forget the selected document
)

// Result is returned from HandleAction to tell the parent what happened.
type Result struct {
	Action   Action
	Document state.Document
}

// Model is the list of one category.
type Model struct {
	category player.Category
	all      []state.Document
	docs     []state.Document // all, narrowed by filter
	filter   string
	cursor   cursor
	playing  player.DocumentID
	width    int
	height   int // rows available for documents
}

// New creates an empty list of cat.
func New(cat player.Category) Model {
	return Model{category: cat, cursor: cursor{margin: scrollMargin}}
}

// Category returns the category the list shows.
func (m Model) Category() player.Category {
	return m.category
}

// SetSize sets the size of the list area in cells.
func (m *Model) SetSize(width, height int) {
	m.width = max(width, 0)
	m.height = max(height, 0)
	m.cursor.ensureVisible(len(m.docs), m.height)
}

// SetDocuments replaces the documents. The cursor stays on the selected
// document when it is still listed.
func (m *Model) SetDocuments(docs []state.Document) {
	m.all = docs
	m.refilter()
}

// SetFilter lists only the documents whose title or performer contains q,
// ignoring case. An empty q lists everything.
func (m *Model) SetFilter(q string) {
	q = strings.TrimSpace(q)
	if q == m.filter {
		return
	}
	m.filter = q
	m.refilter()
}

// Filter returns the active filter.
func (m Model) Filter() string {
	return m.filter
}

func (m *Model) refilter() {
	selected, ok := m.Selected()
	docs := m.all
	if m.filter != "" {
		q := strings.ToLower(m.filter)
		docs = make([]state.Document, 0, len(m.all))
		for _, d := range m.all {
			if strings.Contains(strings.ToLower(d.Title), q) ||
				strings.Contains(strings.ToLower(d.Performer), q) {
				docs = append(docs, d)
			}
		}
	}
	m.docs = docs
	if ok {
		for i, d := range docs {
			if d.ID == selected.ID {
				m.cursor.jump(i, len(docs), m.height)
				return
			}
		}
	}
	m.cursor.clampTo(len(docs), m.height)
}

// SetPlaying marks the document playing in the category, 0 for none.
func (m *Model) SetPlaying(id player.DocumentID) {
	m.playing = id
}

// Documents returns the listed documents.
func (m Model) Documents() []state.Document {
	return m.docs
}

// Len returns the number of documents, filtered or not.
func (m Model) Len() int {
	return len(m.all)
}

// Selected returns the document under the cursor, or false if the list is
// empty.
func (m Model) Selected() (state.Document, bool) {
	if m.cursor.pos >= len(m.docs) {
		return state.Document{}, false
	}
	return m.docs[m.cursor.pos], true
}

// SelectedIndex returns the cursor position.
func (m Model) SelectedIndex() int {
	return m.cursor.pos
}

// HandleAction applies a list action resolved from a key.
func (m *Model) HandleAction(a keymap.Action) Result {
	n := len(m.docs)
	switch a { //nolint:exhaustive // Only list actions
	case keymap.ActionMoveDown:
		m.cursor.move(1, n, m.height)
	case keymap.ActionMoveUp:
		m.cursor.move(-1, n, m.height)
	case keymap.ActionJumpStart:
		m.cursor.jump(0, n, m.height)
	case keymap.ActionJumpEnd:
		m.cursor.jump(n-1, n, m.height)
	case keymap.ActionSelect:
		if doc, ok := m.Selected(); ok {
			return Result{Action: ActionPlay, Document: doc}
		}
		return Result{}
	case keymap.ActionDelete:
		if doc, ok := m.Selected(); ok {
			return Result{Action: ActionDelete, Document: doc}
		}
		return Result{}
	default:
		return Result{}
	}
	return Result{Action: ActionMoved}
}

// View renders the visible rows, padded to the list height.
func (m Model) View(focused bool) string {
	st := styles.T().S()
	if len(m.docs) == 0 {
		empty := "No songs. Add a source and press r to scan."
		switch {
		case m.filter != "":
			empty = "Nothing matches \"" + m.filter + "\"."
		case m.category == player.Voice:
			empty = "No voice messages."
		}
		return padRows(st.Muted.Render(render.TruncateAndPad(empty, m.width)), m.height)
	}

	start, end := m.cursor.visibleRange(len(m.docs), m.height)
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		doc := m.docs[i]
		row := m.row(doc)
		switch {
		case focused && i == m.cursor.pos:
			row = st.Cursor.Render(row)
		case doc.ID == m.playing:
			row = st.Playing.Render(row)
		default:
			row = st.Base.Render(row)
		}
		rows = append(rows, row)
	}
	return padRows(strings.Join(rows, "\n"), m.height-len(rows)+1)
}

// row lays out one document: marker and title on the left, details on the
// right.
func (m Model) row(doc state.Document) string {
	marker := "  "
	if doc.ID == m.playing {
		marker = icons.Play() + " "
	}
	title := doc.Title
	if m.category == player.Voice {
		title = icons.FormatVoice(title)
	} else {
		title = icons.FormatSong(title)
	}
	return render.Spread(marker+title, details(doc), m.width)
}

func details(doc state.Document) string {
	var parts []string
	if doc.Performer != "" {
		parts = append(parts, render.Truncate(doc.Performer, 24))
	}
	if doc.Duration > 0 {
		parts = append(parts, render.FormatDuration(doc.Duration))
	}
	if doc.Category == player.Voice && !doc.AddedAt.IsZero() {
		parts = append(parts, humanize.Time(doc.AddedAt))
	}
	return strings.Join(parts, " · ")
}

// padRows appends empty lines until s spans n lines in total.
func padRows(s string, n int) string {
	if n <= 1 {
		return s
	}
	return s + strings.Repeat("\n", n-1)
}
