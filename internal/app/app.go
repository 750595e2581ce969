// internal/app/app.go
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/chirp/internal/keymap"
	"github.com/llehouerou/chirp/internal/library"
	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/ui/confirm"
	"github.com/llehouerou/chirp/internal/ui/doclist"
	"github.com/llehouerou/chirp/internal/ui/helpbindings"
	"github.com/llehouerou/chirp/internal/ui/jobbar"
	"github.com/llehouerou/chirp/internal/ui/textinput"
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
)

// Model is the root application model containing all state.
type Model struct {
	Playback playback.Service
	Store    library.Store
	Sources  []string

	keys  *keymap.Resolver
	lists [2]doclist.Model // indexed by category
	Focus player.Category

	help     helpbindings.Model
	ShowHelp bool
	filter   textinput.Model
	confirm  confirm.Model

	playbackSub *playback.Subscription
	scanCh      <-chan library.ScanProgress
	scanErrCh   <-chan error
	ScanJob     *jobbar.Job

	Status      string
	StatusError bool

	Width  int
	Height int
}

// New creates the application model. sources are the directories scanned
// for documents.
func New(svc playback.Service, store library.Store, sources []string) Model {
	return Model{
		Playback:    svc,
		Store:       store,
		Sources:     sources,
		keys:        keymap.NewResolver(keymap.Bindings),
		lists:       [2]doclist.Model{doclist.New(player.Voice), doclist.New(player.Song)},
		Focus:       player.Song,
		help:        helpbindings.New(),
		filter:      textinput.New(),
		confirm:     confirm.New(),
		playbackSub: svc.Subscribe(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		LoadDocumentsCmd(m.Store, player.Song),
		LoadDocumentsCmd(m.Store, player.Voice),
		m.WatchServiceEvents(),
	}
	if len(m.Sources) > 0 {
		cmds = append(cmds, func() tea.Msg { return ScanRequestMsg{} })
	}
	return tea.Batch(cmds...)
}

// List returns the document list of cat.
func (m Model) List(cat player.Category) doclist.Model {
	return m.lists[cat]
}

func (m *Model) setStatus(s string) {
	m.Status = s
	m.StatusError = false
}

func (m *Model) setError(s string) {
	m.Status = s
	m.StatusError = true
}
