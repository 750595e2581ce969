package player

import "time"

// gainAnimation is a linear ramp of a gain value.
type gainAnimation struct {
	value    float64
	from, to float64
	start    time.Time
	duration time.Duration
	running  bool
}

func newGainAnimation() gainAnimation {
	return gainAnimation{value: 1, from: 1, to: 1}
}

// animate starts a ramp from the current value to target.
func (a *gainAnimation) animate(now time.Time, target float64, d time.Duration) {
	a.from = a.value
	a.to = target
	a.start = now
	a.duration = d
	a.running = true
	if d <= 0 {
		a.set(target)
	}
}

// set jumps to v and stops any ramp.
func (a *gainAnimation) set(v float64) {
	a.value, a.from, a.to = v, v, v
	a.running = false
}

// update advances the ramp to now and reports whether the value changed.
func (a *gainAnimation) update(now time.Time) bool {
	if !a.running {
		return false
	}
	prev := a.value
	elapsed := now.Sub(a.start)
	if elapsed >= a.duration {
		a.set(a.to)
	} else {
		a.value = a.from + (a.to-a.from)*float64(elapsed)/float64(a.duration)
	}
	return a.value != prev
}

// suppression holds the gains one category imposes on another: the
// notification sound ducks everything, a voice message ducks songs.
type suppression struct {
	allGain  float64
	songGain float64
	allFade  time.Duration
	fade     time.Duration

	all            gainAnimation
	allEnd         time.Time
	song           gainAnimation
	songSuppressed bool
}

func newSuppression(opts Options) suppression {
	return suppression{
		allGain:  opts.SuppressAllGain,
		songGain: opts.SuppressSongGain,
		allFade:  opts.SuppressAllFade,
		fade:     opts.FadeDuration,
		all:      newGainAnimation(),
		song:     newGainAnimation(),
	}
}

// suppressAll ducks everything for d. Once ducked, the gain ramps back up
// over the last fade window before the end. A call while already ducked
// only extends the end.
func (s *suppression) suppressAll(now time.Time, d time.Duration) {
	if s.allEnd.Before(now.Add(s.fade)) {
		s.all.animate(now, s.allGain, s.allFade)
	}
	s.allEnd = now.Add(d)
}

func (s *suppression) suppressSong(now time.Time) {
	if s.songSuppressed {
		return
	}
	s.songSuppressed = true
	s.song.animate(now, s.songGain, s.fade)
}

func (s *suppression) unsuppressSong(now time.Time) {
	if !s.songSuppressed {
		return
	}
	s.songSuppressed = false
	s.song.animate(now, 1, s.fade)
}

// update advances both ramps and reports whether a gain changed.
func (s *suppression) update(now time.Time) bool {
	changed := false
	if !s.allEnd.IsZero() {
		switch {
		case !now.Before(s.allEnd):
			changed = s.all.value != 1
			s.all.set(1)
			s.allEnd = time.Time{}
		case s.all.to != 1 && !s.all.running && !now.Before(s.allEnd.Add(-s.fade)):
			s.all.animate(now, 1, s.allEnd.Sub(now))
		}
	}
	if s.all.update(now) {
		changed = true
	}
	if s.song.update(now) {
		changed = true
	}
	return changed
}

// animating reports whether a ramp runs or a notification is still ducking.
func (s *suppression) animating() bool {
	return s.all.running || s.song.running || !s.allEnd.IsZero()
}

// voice is the gain applied to voice messages.
func (s *suppression) voice() float64 {
	return s.all.value
}

// music is the gain applied to songs at the given user volume.
func (s *suppression) music(volume float64) float64 {
	return min(s.all.value, s.song.value) * volume
}

// fadeGain is the ramp factor of a fading slot elapsed samples into a fade
// lasting fadeSamples. It rises for fade-ins and falls for fade-outs.
func fadeGain(state State, elapsed, fadeSamples int64) float64 {
	g := 1.0
	if fadeSamples > 0 {
		g = min(max(float64(elapsed)/float64(fadeSamples), 0), 1)
	}
	if state.fadesOut() {
		return 1 - g
	}
	return g
}
