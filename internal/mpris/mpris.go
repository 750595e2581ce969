//go:build linux

package mpris

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/player"
)

// Adapter connects the song category of a playback.Service to MPRIS over
// D-Bus. Voice messages are not exposed.
type Adapter struct {
	server *server.Server
	player *playerAdapter
	sub    *playback.Subscription
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates and starts a new MPRIS adapter. The catalogue provides the
// song order used by Next and Previous.
func New(service playback.Service, catalogue Catalogue) (*Adapter, error) {
	a := &Adapter{
		player: &playerAdapter{
			service:   service,
			catalogue: catalogue,
			art:       newArtCache(),
		},
		done: make(chan struct{}),
	}

	a.server = server.NewServer("chirp", &rootAdapter{}, a.player)
	a.sub = service.Subscribe()

	log := logrus.WithField("component", "mpris")
	go func() {
		if err := a.server.Listen(); err != nil {
			log.WithFields(logrus.Fields{
				"function": "Listen",
				"error":    err.Error(),
			}).Warn("MPRIS server stopped")
		}
	}()

	a.wg.Add(1)
	go a.watch()
	return a, nil
}

// watch resolves the art of each new song ahead of the first Metadata call.
func (a *Adapter) watch() {
	defer a.wg.Done()
	for {
		select {
		case <-a.done:
			return
		case <-a.sub.Done:
			return
		case e := <-a.sub.TrackChanged:
			if e.Category == player.Song && e.Current != nil {
				a.player.art.url(e.Current)
			}
		}
	}
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	close(a.done)
	a.wg.Wait()
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Chirp", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/opus", "audio/mp4", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional interfaces.
type playerAdapter struct {
	service   playback.Service
	catalogue Catalogue
	art       *artCache
}

func (p *playerAdapter) Next() error {
	return p.step(1)
}

func (p *playerAdapter) Previous() error {
	return p.step(-1)
}

// step plays the song delta positions away from the current one.
func (p *playerAdapter) step(delta int) error {
	docs, idx, err := songPosition(p.catalogue, p.service.Current(player.Song))
	if err != nil {
		return err
	}
	next := idx + delta
	if next < 0 || next >= len(docs) {
		return nil
	}
	return p.service.Play(player.Song, docs[next].ID)
}

func (p *playerAdapter) Pause() error {
	return p.service.Pause(player.Song)
}

func (p *playerAdapter) PlayPause() error {
	err := p.service.Toggle(player.Song)
	if errors.Is(err, playback.ErrNothingPlaying) {
		return p.playFirst()
	}
	return err
}

func (p *playerAdapter) Stop() error {
	return p.service.Stop(player.Song)
}

func (p *playerAdapter) Play() error {
	err := p.service.Resume(player.Song)
	if errors.Is(err, playback.ErrNothingPlaying) {
		return p.playFirst()
	}
	return err
}

func (p *playerAdapter) playFirst() error {
	docs, err := p.catalogue.Documents(player.Song)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	return p.service.Play(player.Song, docs[0].ID)
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.service.Seek(player.Song, time.Duration(offset)*time.Microsecond)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.service.SeekTo(player.Song, time.Duration(position)*time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.service.State(player.Song) {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatePaused:
		return types.PlaybackStatusPaused, nil
	case playback.StateStopped:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.service.Current(player.Song)
	if track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(track.ID)),
		Length:  types.Microseconds(p.service.Duration(player.Song).Microseconds()),
		Title:   track.Title,
	}
	if track.Performer != "" {
		meta.Artist = []string{track.Performer}
	}
	meta.ArtUrl = p.art.url(track)

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.service.Volume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.service.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.service.Position(player.Song).Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	docs, idx, err := songPosition(p.catalogue, p.service.Current(player.Song))
	if err != nil {
		return false, nil //nolint:nilerr // a broken catalogue only disables the button
	}
	return idx+1 < len(docs), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	_, idx, err := songPosition(p.catalogue, p.service.Current(player.Song))
	if err != nil {
		return false, nil //nolint:nilerr // a broken catalogue only disables the button
	}
	return idx > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	if p.service.Current(player.Song) != nil {
		return true, nil
	}
	docs, err := p.catalogue.Documents(player.Song)
	return err == nil && len(docs) > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(id player.AudioID) string {
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%d_%d", id.Document, id.PlayID)
}
