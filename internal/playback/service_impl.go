package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/errmsg"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
)

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

const numCategories = 2

// view is what the service knows about the current track of a category.
type view struct {
	track *Track
	state State
}

type serviceImpl struct {
	mu sync.RWMutex

	player player.Interface
	store  state.Interface
	log    *logrus.Entry

	views  [numCategories]view
	playID uint32

	playerSub *player.Subscription
	subs      []*Subscription
	subsMu    sync.RWMutex

	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// New creates a new playback service. The persisted song volume, if any,
// is applied to p.
func New(p player.Interface, store state.Interface) Service {
	s := &serviceImpl{
		player: p,
		store:  store,
		log:    logrus.WithField("component", "playback"),
		done:   make(chan struct{}),
	}

	if volume, ok, err := store.SongVolume(); err != nil {
		s.log.WithFields(logrus.Fields{
			"function": "New",
			"error":    err.Error(),
		}).Warn("Failed to read saved volume")
	} else if ok {
		p.SetSongVolume(volume)
	}

	s.playerSub = p.Subscribe()
	s.wg.Add(1)
	go s.run()
	return s
}

// Play starts a document in its category, displacing whatever played there.
func (s *serviceImpl) Play(cat player.Category, docID player.DocumentID) error {
	doc, err := s.store.Document(docID)
	if err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpDocumentLoad, err)
	}
	if doc.Category != cat {
		return fmt.Errorf("document %d is a %s, not a %s", docID, doc.Category, cat)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	v := &s.views[cat]
	prev := v.track
	id := player.AudioID{Category: cat, Document: docID}
	if prev != nil && prev.ID.Document == docID {
		// Same document: reuse the play id so the player keeps its buffers.
		id = prev.ID
	} else {
		s.playID++
		id.PlayID = s.playID
	}
	v.track = newTrack(id, doc)

	s.player.Play(id, 0)

	if prev == nil || prev.ID != id {
		s.notifyTrack(TrackChange{Category: cat, Previous: prev, Current: v.track})
	}
	return nil
}

// Pause pauses the current track of cat. Pausing a paused track does nothing.
func (s *serviceImpl) Pause(cat player.Category) error {
	st := s.player.CurrentState(cat)
	if st.ID.IsEmpty() {
		return ErrNothingPlaying
	}
	if st.State.CanPause() {
		s.player.PauseResume(cat, false)
	}
	return nil
}

// Resume resumes the current track of cat. A track that ran to its end
// starts over.
func (s *serviceImpl) Resume(cat player.Category) error {
	st := s.player.CurrentState(cat)
	if st.ID.IsEmpty() {
		return ErrNothingPlaying
	}
	switch {
	case st.State.CanResume():
		s.player.PauseResume(cat, false)
	case st.State.IsStopped():
		s.player.Play(st.ID, 0)
	}
	return nil
}

// Toggle pauses a playing track and resumes any other.
func (s *serviceImpl) Toggle(cat player.Category) error {
	if s.player.CurrentState(cat).State.CanPause() {
		return s.Pause(cat)
	}
	return s.Resume(cat)
}

// Stop stops the current track of cat with a fade.
func (s *serviceImpl) Stop(cat player.Category) error {
	if s.player.CurrentState(cat).ID.IsEmpty() {
		return ErrNothingPlaying
	}
	s.player.Stop(cat)
	return nil
}

// StopAll stops every track and forgets them.
func (s *serviceImpl) StopAll() {
	s.player.StopAndClear()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.views {
		v := &s.views[i]
		if v.state != StateStopped {
			s.notifyState(StateChange{Category: player.Category(i), Previous: v.state, Current: StateStopped})
		}
		v.state = StateStopped
	}
}

// Seek moves the current track of cat by delta, clamped to the track.
func (s *serviceImpl) Seek(cat player.Category, delta time.Duration) error {
	st := s.player.CurrentState(cat)
	if st.ID.IsEmpty() {
		return ErrNothingPlaying
	}
	return s.seekTo(st, samplesToDuration(st.Position, st.Frequency)+delta)
}

// SeekTo moves the current track of cat to position.
func (s *serviceImpl) SeekTo(cat player.Category, position time.Duration) error {
	st := s.player.CurrentState(cat)
	if st.ID.IsEmpty() {
		return ErrNothingPlaying
	}
	return s.seekTo(st, position)
}

func (s *serviceImpl) seekTo(st player.TrackState, position time.Duration) error {
	if st.Frequency == 0 {
		return ErrNotLoaded
	}
	target := max(durationToSamples(position, st.Frequency), 0)
	if st.Duration > 0 {
		target = min(target, st.Duration)
	}
	s.player.Seek(st.ID.Category, target)
	return nil
}

// SetVolume sets and persists the song volume.
func (s *serviceImpl) SetVolume(v float64) {
	s.player.SetSongVolume(v)
	v = s.player.SongVolume()
	s.store.SaveSongVolume(v)

	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendVolume(VolumeChange{Volume: v})
	}
}

// Volume returns the song volume.
func (s *serviceImpl) Volume() float64 {
	return s.player.SongVolume()
}

// Notify plays the notification sound. A failure is also reported as an
// ErrorEvent.
func (s *serviceImpl) Notify() error {
	err := s.player.PlayNotify()
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"function": "Notify",
			"error":    err.Error(),
		}).Warn("Notification sound failed")
		s.notifyError(ErrorEvent{Operation: errmsg.OpNotify, Err: err})
	}
	return err
}

// State returns the playback state of cat.
func (s *serviceImpl) State(cat player.Category) State {
	return fromPlayer(s.player.CurrentState(cat).State)
}

// IsPlaying returns true if cat is audible or fading in.
func (s *serviceImpl) IsPlaying(cat player.Category) bool {
	return s.State(cat) == StatePlaying
}

// Position returns the position of the current track of cat.
func (s *serviceImpl) Position(cat player.Category) time.Duration {
	st := s.player.CurrentState(cat)
	return samplesToDuration(st.Position, st.Frequency)
}

// Duration returns the length of the current track of cat. Until the
// decoder reports it, the catalogue value is used.
func (s *serviceImpl) Duration(cat player.Category) time.Duration {
	st := s.player.CurrentState(cat)
	if d := samplesToDuration(st.Duration, st.Frequency); d > 0 {
		return d
	}
	if t := s.Current(cat); t != nil {
		return t.Duration
	}
	return 0
}

// Current returns the track last played in cat, or nil if none.
func (s *serviceImpl) Current(cat player.Category) *Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.views[cat].track
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Player returns the underlying player.
func (s *serviceImpl) Player() player.Interface {
	return s.player
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close shuts down the service. The player is left to its owner.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	s.player.Unsubscribe(s.playerSub)

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return nil
}

// run turns player notifications into service events.
func (s *serviceImpl) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.playerSub.Done:
			return
		case ev := <-s.playerSub.Events:
			s.handle(ev)
		}
	}
}

func (s *serviceImpl) handle(ev player.Event) {
	id := ev.State.ID
	cat := id.Category
	if int(cat) >= len(s.views) {
		return
	}

	s.mu.Lock()
	v := &s.views[cat]
	if v.track == nil || v.track.ID != id {
		// A displaced track fading out, or one started around the service.
		s.mu.Unlock()
		return
	}
	track := *v.track
	next := fromPlayer(ev.State.State)
	if next != v.state {
		s.notifyState(StateChange{Category: cat, Previous: v.state, Current: next})
		v.state = next
	}
	s.mu.Unlock()

	switch ev.Kind {
	case player.EventUpdated:
		s.notifyPosition(PositionChange{
			Category: cat,
			Position: samplesToDuration(ev.State.Position, ev.State.Frequency),
			Duration: samplesToDuration(ev.State.Duration, ev.State.Frequency),
		})
	case player.EventStoppedOnError:
		op := errmsg.OpPlaybackDecode
		if ev.State.State == player.StoppedAtStart {
			op = errmsg.OpPlaybackStart
		}
		err := ev.Err
		if err == nil {
			err = errors.New("playback failed")
		}
		s.log.WithFields(logrus.Fields{
			"function": "handle",
			"id":       id.String(),
			"error":    err.Error(),
		}).Warn("Track failed")
		s.notifyError(ErrorEvent{Operation: op, Document: &track, Err: err})
		s.player.ClearStoppedAtStart(id)
	}
}

func (s *serviceImpl) notifyState(e StateChange) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendState(e)
	}
}

func (s *serviceImpl) notifyTrack(e TrackChange) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendTrack(e)
	}
}

func (s *serviceImpl) notifyPosition(e PositionChange) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendPosition(e)
	}
}

func (s *serviceImpl) notifyError(e ErrorEvent) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendError(e)
	}
}
