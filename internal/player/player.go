// Package player plays voice messages and songs through a small pool of
// slots per category.
//
// Three goroutines cooperate: the loader decodes audio into device buffers,
// the fader ramps gains and tracks positions on a timer, and the notifier
// delivers events. Public methods never block on decoding; they update slot
// state under one mutex and post work to the other goroutines.
package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/decoder"
	"github.com/llehouerou/chirp/internal/device"
)

// ErrDisabled is returned when the output device could not be set up.
var ErrDisabled = errors.New("playback disabled")

// Player owns the playback slots of both categories.
type Player struct {
	opts    Options
	locator Locator
	log     *logrus.Entry

	mu            sync.Mutex
	session       *device.Session
	tracks        [numCategories][]*track
	current       [numCategories]int
	gains         suppression
	songVolume    float64
	volumeChanged bool
	closed        bool

	loader    *loaders
	events    *notifier
	faderWake chan struct{}

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a player on session and starts its workers. The player takes
// ownership of the session.
func New(session *device.Session, locator Locator, opts Options) *Player {
	p := newPlayer(session, locator, opts)
	p.start()
	return p
}

func newPlayer(session *device.Session, locator Locator, opts Options) *Player {
	opts = opts.withDefaults()
	p := &Player{
		opts:       opts,
		locator:    locator,
		log:        logrus.WithField("component", "player"),
		session:    session,
		gains:      newSuppression(opts),
		songVolume: opts.SongVolume,
		events:     newNotifier(),
		faderWake:  make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	p.tracks[Voice] = newTracks(opts.VoiceSlots)
	p.tracks[Song] = newTracks(opts.SongSlots)
	p.loader = newLoaders(p)
	return p
}

func newTracks(n int) []*track {
	tracks := make([]*track, n)
	for i := range tracks {
		tracks[i] = &track{}
	}
	return tracks
}

func (p *Player) start() {
	p.wg.Add(3)
	go func() {
		defer p.wg.Done()
		p.loader.run(p.done)
	}()
	go func() {
		defer p.wg.Done()
		p.runFader(p.done)
	}()
	go func() {
		defer p.wg.Done()
		p.events.run(p.done)
	}()
}

// Close stops the workers and releases the device.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, tracks := range p.tracks {
		for _, tr := range tracks {
			tr.releaseVoice()
		}
	}
	p.session.Close()
}

// Subscribe returns a subscription to track events.
func (p *Player) Subscribe() *Subscription {
	return p.events.subscribe()
}

// Unsubscribe stops delivery to s and closes its Done channel.
func (p *Player) Unsubscribe(s *Subscription) {
	p.events.unsubscribe(s)
}

// Play starts id at position, in samples. Replaying the track already in
// its category's current slot moves it to position without decoding again
// when that part is still buffered.
func (p *Player) Play(id AudioID, position int64) {
	if id.IsEmpty() {
		return
	}
	source, err := p.locator.Locate(id)
	if err == nil && source.IsEmpty() {
		err = decoder.ErrEmptySource
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if !p.session.Works() {
		p.log.WithFields(logrus.Fields{
			"function": "Play",
			"id":       id.String(),
			"error":    p.session.Err().Error(),
		}).Warn("Playback disabled, ignoring play")
		return
	}
	p.startLocked(id, source, err, max(position, 0))
}

// startLocked implements Play once the source is known. locateErr marks a
// source that could not be found.
func (p *Player) startLocked(id AudioID, source decoder.Source, locateErr error, position int64) {
	cat := id.Category
	cur := p.currentLocked(cat)
	if locateErr == nil && cur.state.ID == id && cur.source.Same(source) && p.playInPlaceLocked(cur, position) {
		return
	}

	fadedStart := false
	if cur.state.ID != id {
		fadedStart = p.fadedStopLocked(cur)
	}

	idx := p.findLocked(cat, id)
	if idx < 0 {
		idx = (p.current[cat] + 1) % len(p.tracks[cat])
	}
	p.current[cat] = idx
	tr := p.tracks[cat][idx]

	if tr.state.ID != id && !tr.state.ID.IsEmpty() && !tr.state.State.IsStopped() {
		// The slot is taken over while its previous track still sounds.
		tr.state.State = Stopped
		p.emitLocked(EventStopped, tr, nil)
	}
	if tr.loading {
		p.postCancelLocked(tr)
	}
	if err := tr.resetData(); err != nil {
		p.log.WithFields(logrus.Fields{
			"function": "Play",
			"error":    err.Error(),
		}).Warn("Resetting voice failed, recreating it")
		tr.releaseVoice()
	}

	tr.generation++
	tr.source = source
	tr.state = TrackState{ID: id, State: Stopped, Position: position}
	tr.bufferedPosition = position
	tr.fadeStartPosition = position
	tr.lastUpdatePosition = position

	if locateErr != nil {
		tr.state.State = StoppedAtError
		p.log.WithFields(logrus.Fields{
			"function": "Play",
			"id":       id.String(),
			"error":    locateErr.Error(),
		}).Warn("No audio to play")
		p.emitLocked(EventStoppedOnError, tr, locateErr)
		return
	}

	if fadedStart {
		tr.state.State = Starting
	} else {
		tr.state.State = Playing
	}
	tr.loading = true
	p.postLoadLocked(tr, loadStart, position)
	p.updateSuppressionLocked(time.Now())
	p.wakeFader()
}

// playInPlaceLocked restarts the current track at position using the
// buffers it already holds. It returns false when a reload is needed.
func (p *Player) playInPlaceLocked(tr *track, position int64) bool {
	st := tr.state.State
	if st == StoppedAtError || st == StoppedAtStart {
		return false
	}
	if len(tr.ring) == 0 {
		// Still loading from the requested position: nothing to do.
		return tr.loading && !st.IsStopped() && position == tr.bufferedPosition
	}
	if !tr.buffered(position) {
		return false
	}

	voice, err := p.voiceLocked(tr)
	if err != nil {
		p.failLocked(tr, err)
		return true
	}
	tr.state.State = Playing
	tr.state.Position = position
	tr.lastUpdatePosition = position
	err = errors.Join(
		voice.SetOffset(position-tr.bufferedPosition),
		voice.SetGain(p.categoryGainLocked(tr.state.ID.Category)),
		voice.Play(),
	)
	if err != nil {
		p.failLocked(tr, err)
		return true
	}
	p.emitLocked(EventUpdated, tr, nil)
	p.updateSuppressionLocked(time.Now())
	p.wakeFader()
	return true
}

// fadedStopLocked starts fading tr out. It returns true when a fade began;
// a track that is not audible stops at once.
func (p *Player) fadedStopLocked(tr *track) bool {
	st := tr.state.State
	switch {
	case st.IsStopped(), st == Finishing:
		return false
	case st.IsPaused():
		p.stopTrackLocked(tr, Stopped)
		return false
	}

	if !p.voicePlayingLocked(tr) {
		p.stopTrackLocked(tr, Stopped)
		return false
	}
	p.beginFadeLocked(tr, Finishing)
	if tr.loading {
		p.postCancelLocked(tr)
	}
	p.emitLocked(EventUpdated, tr, nil)
	return true
}

// PauseResume pauses the current track of cat or resumes it. fast skips
// the gain ramp.
func (p *Player) PauseResume(cat Category, fast bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.session.Works() {
		return
	}
	tr := p.currentLocked(cat)
	if tr.state.ID.IsEmpty() {
		return
	}

	st := tr.state.State
	switch {
	case st.CanResume():
		p.resumeLocked(tr, fast)
	case st.CanPause() || st == Finishing:
		p.pauseLocked(tr, fast)
	default:
		return
	}
	p.updateSuppressionLocked(time.Now())
	p.wakeFader()
}

func (p *Player) resumeLocked(tr *track, fast bool) {
	if tr.state.State == PausedAtEnd && tr.loaded && p.atEndLocked(tr) {
		// Nothing left to play: start over.
		p.startLocked(tr.state.ID, tr.source, nil, 0)
		return
	}
	if len(tr.ring) == 0 {
		// No audio yet; the loader starts the voice when it arrives.
		tr.state.State = Playing
		if !tr.loading && !tr.loaded {
			tr.loading = true
			p.postLoadLocked(tr, loadMore, tr.bufferedEnd())
		}
		p.emitLocked(EventUpdated, tr, nil)
		return
	}

	voice, err := p.voiceLocked(tr)
	if err != nil {
		p.failLocked(tr, err)
		return
	}
	gain := p.categoryGainLocked(tr.state.ID.Category)
	switch {
	case fast:
		tr.state.State = Playing
	case tr.state.State == Pausing:
		p.beginFadeLocked(tr, Resuming)
		gain = p.trackGainLocked(tr)
	default:
		tr.state.State = Resuming
		tr.fadeStartPosition = p.positionLocked(tr)
		gain = 0
	}
	if err := errors.Join(voice.SetGain(gain), voice.Play()); err != nil {
		p.failLocked(tr, err)
		return
	}
	p.emitLocked(EventUpdated, tr, nil)
}

func (p *Player) pauseLocked(tr *track, fast bool) {
	tr.state.Position = p.positionLocked(tr)
	tr.lastUpdatePosition = tr.state.Position
	if fast || !p.voicePlayingLocked(tr) {
		tr.state.State = Paused
		if tr.voice != nil {
			err := errors.Join(
				tr.voice.Pause(),
				tr.voice.SetGain(p.categoryGainLocked(tr.state.ID.Category)),
			)
			if err != nil {
				p.failLocked(tr, err)
				return
			}
		}
	} else {
		p.beginFadeLocked(tr, Pausing)
	}
	p.emitLocked(EventUpdated, tr, nil)
}

// Seek moves the current track of cat to position. Inside the buffered
// window the voice offset moves and the track keeps its state; otherwise
// the track is reloaded from position.
func (p *Player) Seek(cat Category, position int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.session.Works() {
		return
	}
	tr := p.currentLocked(cat)
	if tr.state.ID.IsEmpty() {
		return
	}
	position = max(position, 0)
	if tr.state.Duration > 0 {
		position = min(position, tr.state.Duration)
	}

	if tr.state.State.IsStopped() || !tr.buffered(position) {
		p.startLocked(tr.state.ID, tr.source, nil, position)
		return
	}

	voice, err := p.voiceLocked(tr)
	if err != nil {
		p.failLocked(tr, err)
		return
	}
	gain := p.categoryGainLocked(cat)
	errs := []error{voice.SetOffset(position - tr.bufferedPosition), voice.SetGain(gain)}
	switch tr.state.State {
	case Starting, Resuming, Playing, Finishing:
		tr.state.State = Playing
		errs = append(errs, voice.Play())
	case Pausing:
		tr.state.State = Paused
		errs = append(errs, voice.Pause())
	case PausedAtEnd:
		tr.state.State = Paused
	}
	if err := errors.Join(errs...); err != nil {
		p.failLocked(tr, err)
		return
	}
	tr.state.Position = position
	tr.lastUpdatePosition = position
	p.emitLocked(EventUpdated, tr, nil)
	p.updateSuppressionLocked(time.Now())
	p.wakeFader()
}

// Stop stops the current track of cat.
func (p *Player) Stop(cat Category) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	tr := p.currentLocked(cat)
	if tr.state.ID.IsEmpty() || tr.state.State.IsStopped() {
		return
	}
	p.stopTrackLocked(tr, Stopped)
	p.updateSuppressionLocked(time.Now())
	p.wakeFader()
}

// StopAndClear stops every slot and forgets their tracks.
func (p *Player) StopAndClear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	for cat := range p.tracks {
		for _, tr := range p.tracks[cat] {
			if !tr.state.ID.IsEmpty() && !tr.state.State.IsStopped() {
				p.stopTrackLocked(tr, Stopped)
			}
			if tr.loading {
				p.postCancelLocked(tr)
			}
			_ = tr.resetData()
			tr.generation++
			tr.state = TrackState{}
			tr.source = decoder.Source{}
		}
		p.current[cat] = 0
	}
	p.updateSuppressionLocked(time.Now())
	p.wakeFader()
}

// CurrentState returns the state of the current slot of cat.
func (p *Player) CurrentState(cat Category) TrackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentLocked(cat).state
}

// ClearStoppedAtStart resets a failed start of id to Stopped once the
// caller has reported it.
func (p *Player) ClearStoppedAtStart(id AudioID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tr := p.currentLocked(id.Category)
	if tr.state.ID == id && tr.state.State == StoppedAtStart {
		tr.state.State = Stopped
	}
}

// SetSongVolume sets the user volume of songs, in [0, 1].
func (p *Player) SetSongVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.songVolume = min(max(v, 0), 1)
	p.volumeChanged = true
	p.wakeFader()
}

// SongVolume returns the user volume of songs.
func (p *Player) SongVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.songVolume
}

// PlayNotify plays the notification sound, ducking every track while it
// sounds.
func (p *Player) PlayNotify() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return device.ErrClosed
	}
	if err := p.session.PlayNotify(); err != nil {
		return fmt.Errorf("play notification: %w", err)
	}
	p.gains.suppressAll(time.Now(), p.session.NotifyLength())
	p.wakeFader()
	return nil
}

// Reinit retries the device after a setup failure. Tracks keep their
// buffers and get fresh voices on demand.
func (p *Player) Reinit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return device.ErrClosed
	}
	for _, tracks := range p.tracks {
		for _, tr := range tracks {
			tr.releaseVoice()
		}
	}
	if err := p.session.Reinit(); err != nil {
		return fmt.Errorf("%w: %w", ErrDisabled, err)
	}
	p.reviveLocked()
	p.wakeFader()
	return nil
}

func (p *Player) currentLocked(cat Category) *track {
	return p.tracks[cat][p.current[cat]]
}

func (p *Player) findLocked(cat Category, id AudioID) int {
	for i, tr := range p.tracks[cat] {
		if tr.state.ID == id {
			return i
		}
	}
	return -1
}

// stopTrackLocked stops tr with the given stopped state and reports it.
func (p *Player) stopTrackLocked(tr *track, reason State) {
	tr.state.State = reason
	if tr.voice != nil {
		if err := tr.voice.Stop(); err != nil {
			p.log.WithFields(logrus.Fields{
				"function": "stopTrack",
				"id":       tr.state.ID.String(),
				"error":    err.Error(),
			}).Warn("Stopping voice failed")
		}
	}
	if tr.loading {
		p.postCancelLocked(tr)
	}
	p.emitLocked(EventStopped, tr, nil)
}

// failLocked handles a device error on tr.
func (p *Player) failLocked(tr *track, err error) {
	p.log.WithFields(logrus.Fields{
		"function": "fail",
		"id":       tr.state.ID.String(),
		"error":    err.Error(),
	}).Warn("Device error, stopping track")
	tr.state.State = StoppedAtError
	if tr.voice != nil {
		_ = tr.voice.Stop()
	}
	if tr.loading {
		p.postCancelLocked(tr)
	}
	p.emitLocked(EventStoppedOnError, tr, err)
}

// failStartLocked handles a track whose audio could not be decoded at all.
func (p *Player) failStartLocked(tr *track, err error) {
	p.log.WithFields(logrus.Fields{
		"function": "failStart",
		"id":       tr.state.ID.String(),
		"error":    err.Error(),
	}).Warn("Audio could not be played")
	tr.state.State = StoppedAtStart
	tr.loading = false
	p.emitLocked(EventStoppedOnError, tr, err)
}

func (p *Player) emitLocked(kind EventKind, tr *track, err error) {
	p.events.post(Event{Kind: kind, State: tr.state, Err: err})
}

func (p *Player) postLoadLocked(tr *track, kind loadKind, position int64) {
	tr.loadSeq++
	p.loader.post(loadRequest{
		kind:       kind,
		id:         tr.state.ID,
		position:   position,
		seq:        tr.loadSeq,
		generation: tr.generation,
	})
}

func (p *Player) postCancelLocked(tr *track) {
	p.loader.post(loadRequest{kind: loadCancel, id: tr.state.ID, seq: tr.loadSeq, generation: tr.generation})
}

// beginFadeLocked switches tr to a fading state. Turning a ramp around
// continues from the current gain instead of jumping.
func (p *Player) beginFadeLocked(tr *track, to State) {
	pos := p.positionLocked(tr)
	from := tr.state.State
	switch {
	case from.IsFading() && from.fadesOut() != to.fadesOut():
		fadeSamples := p.fadeSamples(tr)
		elapsed := min(max(pos-tr.fadeStartPosition, 0), fadeSamples)
		tr.fadeStartPosition = pos - (fadeSamples - elapsed)
	case from.IsFading():
	default:
		tr.fadeStartPosition = pos
	}
	tr.state.State = to
}

func (p *Player) fadeSamples(tr *track) int64 {
	return int64(p.opts.FadeDuration) * int64(tr.state.Frequency) / int64(time.Second)
}

// positionLocked is the sample the voice is playing.
func (p *Player) positionLocked(tr *track) int64 {
	if tr.voice == nil {
		return tr.bufferedPosition + tr.savedOffset
	}
	off, err := tr.voice.Offset()
	if err != nil {
		return tr.state.Position
	}
	return tr.bufferedPosition + off
}

func (p *Player) voicePlayingLocked(tr *track) bool {
	if tr.voice == nil {
		return false
	}
	st, err := tr.voice.State()
	return err == nil && st == device.VoicePlaying
}

// atEndLocked reports whether the voice played everything queued.
func (p *Player) atEndLocked(tr *track) bool {
	if tr.voice == nil {
		return tr.savedOffset >= tr.bufferedLength
	}
	off, err := tr.voice.Offset()
	return err == nil && off >= tr.bufferedLength
}

func (p *Player) categoryGainLocked(cat Category) float64 {
	if cat == Voice {
		return p.gains.voice()
	}
	return p.gains.music(p.songVolume)
}

// trackGainLocked is the gain tr should have now, ramps included.
func (p *Player) trackGainLocked(tr *track) float64 {
	gain := p.categoryGainLocked(tr.state.ID.Category)
	if !tr.state.State.IsFading() {
		return gain
	}
	elapsed := p.positionLocked(tr) - tr.fadeStartPosition
	return fadeGain(tr.state.State, elapsed, p.fadeSamples(tr)) * gain
}

// voiceLocked returns the voice of tr, creating it on the device and
// refilling it from the ring when needed.
func (p *Player) voiceLocked(tr *track) (device.Voice, error) {
	if tr.voice != nil {
		return tr.voice, nil
	}
	dev, err := p.session.Attach()
	if err != nil {
		return nil, err
	}
	voice, err := dev.NewVoice()
	if err != nil {
		return nil, fmt.Errorf("create voice: %w", err)
	}
	for i := range tr.ring {
		if err := voice.Queue(tr.buffer(i)); err != nil {
			_ = voice.Close()
			return nil, fmt.Errorf("refill voice: %w", err)
		}
	}
	tr.voice = voice
	if len(tr.ring) > 0 {
		if err := voice.SetOffset(tr.savedOffset); err != nil {
			return nil, err
		}
	}
	if err := voice.SetGain(p.trackGainLocked(tr)); err != nil {
		return nil, err
	}
	return voice, nil
}

// queueLocked uploads a decoded chunk to tr's voice. It returns false when
// the ring is full and its oldest buffer is still playing.
func (p *Player) queueLocked(tr *track, data []byte, samples int64) (bool, error) {
	voice, err := p.voiceLocked(tr)
	if err != nil {
		return false, err
	}
	if len(tr.ring) >= ringSize {
		processed, err := voice.Processed()
		if err != nil {
			return false, err
		}
		if processed == 0 {
			return false, nil
		}
		if err := voice.Unqueue(); err != nil {
			return false, err
		}
		tr.popHead()
	}
	tr.push(data, samples)
	if err := voice.Queue(tr.buffer(len(tr.ring) - 1)); err != nil {
		return false, err
	}
	return true, nil
}

// resumeVoiceLocked starts the voice of a track that should be audible but
// is not, after fresh audio arrived or the device came back.
func (p *Player) resumeVoiceLocked(tr *track) error {
	st := tr.state.State
	if !st.IsActive() || st == Finishing || tr.voice == nil || p.voicePlayingLocked(tr) {
		return nil
	}
	return errors.Join(tr.voice.SetGain(p.trackGainLocked(tr)), tr.voice.Play())
}

// reviveLocked recreates the voices of audible tracks after the device
// was released.
func (p *Player) reviveLocked() {
	for _, tracks := range p.tracks {
		for _, tr := range tracks {
			if !tr.state.State.IsActive() || len(tr.ring) == 0 {
				continue
			}
			if _, err := p.voiceLocked(tr); err != nil {
				p.failLocked(tr, err)
				continue
			}
			if err := p.resumeVoiceLocked(tr); err != nil {
				p.failLocked(tr, err)
			}
		}
	}
}

// updateSuppressionLocked ducks songs while a voice message sounds.
func (p *Player) updateSuppressionLocked(now time.Time) {
	for _, tr := range p.tracks[Voice] {
		if tr.state.State.CanPause() {
			p.gains.suppressSong(now)
			return
		}
	}
	p.gains.unsuppressSong(now)
}

func (p *Player) wakeFader() {
	select {
	case p.faderWake <- struct{}{}:
	default:
	}
}
