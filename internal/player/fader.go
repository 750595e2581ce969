package player

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/device"
)

// tickResult tells the fader how soon it must run again.
type tickResult int

const (
	tickIdle tickResult = iota
	tickPlaying
	tickFading
)

// runFader drives the slot state machines. It ticks fast while a gain ramp
// runs, slowly while something plays, and otherwise releases the device
// after DetachTimeout.
func (p *Player) runFader(done <-chan struct{}) {
	log := logrus.WithField("component", "fader")
	ticker := time.NewTimer(time.Hour)
	ticker.Stop()
	detach := time.NewTimer(time.Hour)
	detach.Stop()
	defer ticker.Stop()
	defer detach.Stop()

	for {
		select {
		case <-done:
			return
		case <-detach.C:
			p.detachIfIdle(log)
			continue
		case <-p.faderWake:
		case <-ticker.C:
		}

		detach.Stop()
		switch p.tick(time.Now()) {
		case tickFading:
			ticker.Reset(p.opts.FadingTick)
		case tickPlaying:
			ticker.Reset(p.opts.PositionTick)
		default:
			ticker.Stop()
			detach.Reset(p.opts.DetachTimeout)
		}
	}
}

// tick advances gains and every slot to now.
func (p *Player) tick(now time.Time) tickResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return tickIdle
	}

	if p.deviceLostLocked() {
		p.log.WithFields(logrus.Fields{
			"function": "tick",
		}).Warn("Playback device disconnected, reopening")
		p.releaseVoicesLocked()
		p.session.Detach()
		p.reviveLocked()
	}

	p.updateSuppressionLocked(now)
	gainChanged := p.gains.update(now)
	if p.volumeChanged {
		gainChanged = true
		p.volumeChanged = false
	}

	result := tickIdle
	if p.gains.animating() {
		result = tickFading
	}
	for cat := range p.tracks {
		for i, tr := range p.tracks[cat] {
			r := p.updateTrackLocked(tr, i == p.current[cat], gainChanged)
			result = max(result, r)
		}
	}
	if p.session.NotifyPlaying() {
		result = max(result, tickPlaying)
	}
	return result
}

// updateTrackLocked runs one fader step for tr.
func (p *Player) updateTrackLocked(tr *track, current, gainChanged bool) tickResult {
	st := tr.state.State
	if tr.voice == nil || st.IsStopped() || st.IsPaused() {
		return tickIdle
	}

	voiceState, err := tr.voice.State()
	if err != nil {
		p.failLocked(tr, err)
		return tickIdle
	}
	offset, err := tr.voice.Offset()
	if err != nil {
		p.failLocked(tr, err)
		return tickIdle
	}
	pos := tr.bufferedPosition + offset

	if voiceState != device.VoicePlaying && tr.loaded && offset >= tr.bufferedLength {
		tr.state.Position = pos
		tr.lastUpdatePosition = pos
		if st == Pausing {
			tr.state.State = PausedAtEnd
		} else {
			tr.state.State = StoppedAtEnd
		}
		p.emitLocked(EventStopped, tr, nil)
		return tickIdle
	}

	gain := p.categoryGainLocked(tr.state.ID.Category)
	if voiceState != device.VoicePlaying && st.fadesOut() && !tr.loading {
		// The voice ran dry before the ramp ended.
		p.starvedFadeLocked(tr, pos, gain)
		return tickIdle
	}

	switch {
	case st.IsFading():
		fadeSamples := p.fadeSamples(tr)
		elapsed := pos - tr.fadeStartPosition
		if elapsed >= fadeSamples {
			tr.state.Position = pos
			tr.lastUpdatePosition = pos
			err = p.finishFadeLocked(tr, gain)
		} else {
			err = tr.voice.SetGain(fadeGain(st, elapsed, fadeSamples) * gain)
		}
	case gainChanged:
		err = tr.voice.SetGain(gain)
	}
	if err != nil {
		p.failLocked(tr, err)
		return tickIdle
	}

	if pos >= tr.lastUpdatePosition+p.opts.PositionDelta || pos < tr.lastUpdatePosition {
		tr.state.Position = pos
		tr.lastUpdatePosition = pos
		p.emitLocked(EventUpdated, tr, nil)
	}

	st = tr.state.State
	if current && st.CanPause() && !tr.loading && !tr.loaded &&
		pos+p.opts.PreloadSamples > tr.bufferedEnd() {
		tr.loading = true
		p.postLoadLocked(tr, loadMore, tr.bufferedEnd())
	}

	switch {
	case st.IsFading():
		return tickFading
	case st == Playing:
		return tickPlaying
	default:
		return tickIdle
	}
}

// finishFadeLocked completes the ramp of tr and its state transition.
func (p *Player) finishFadeLocked(tr *track, gain float64) error {
	var err error
	switch tr.state.State {
	case Finishing:
		tr.state.State = Stopped
		if tr.loading {
			p.postCancelLocked(tr)
		}
		p.emitLocked(EventStopped, tr, nil)
		return errors.Join(tr.voice.SetGain(0), tr.voice.Stop())
	case Pausing:
		tr.state.State = Paused
		err = tr.voice.Pause()
		p.emitLocked(EventUpdated, tr, nil)
	default:
		tr.state.State = Playing
		p.emitLocked(EventUpdated, tr, nil)
	}
	if err != nil {
		return err
	}
	return tr.voice.SetGain(gain)
}

// starvedFadeLocked completes a fade-out whose voice stopped early.
func (p *Player) starvedFadeLocked(tr *track, pos int64, gain float64) {
	tr.state.Position = pos
	tr.lastUpdatePosition = pos
	err := tr.voice.SetGain(gain)
	if tr.state.State == Pausing {
		tr.state.State = PausedAtEnd
	} else {
		tr.state.State = Stopped
		err = errors.Join(err, tr.voice.Stop())
	}
	if err != nil {
		p.failLocked(tr, err)
		return
	}
	p.emitLocked(EventStopped, tr, nil)
}

// deviceLostLocked reports whether voices exist on a device that went away.
func (p *Player) deviceLostLocked() bool {
	if p.session.Attached() {
		return false
	}
	for _, tracks := range p.tracks {
		for _, tr := range tracks {
			if tr.voice != nil {
				return true
			}
		}
	}
	return false
}

func (p *Player) releaseVoicesLocked() {
	for _, tracks := range p.tracks {
		for _, tr := range tracks {
			tr.releaseVoice()
		}
	}
}

// detachIfIdle releases the device when nothing sounds. Paused tracks keep
// their buffers and get a new voice when resumed.
func (p *Player) detachIfIdle(log *logrus.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.session.Attached() || p.session.NotifyPlaying() {
		return
	}
	for _, tracks := range p.tracks {
		for _, tr := range tracks {
			if tr.state.State.IsActive() {
				return
			}
		}
	}
	p.releaseVoicesLocked()
	p.session.Detach()
	log.WithFields(logrus.Fields{
		"function": "detachIfIdle",
	}).Debug("Released idle playback device")
}
