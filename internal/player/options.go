package player

import "time"

// Options tune the player. Start from DefaultOptions; zero fields other
// than SongVolume are replaced by their defaults.
type Options struct {
	VoiceSlots int
	SongSlots  int

	FadeDuration time.Duration
	// PositionDelta is how far a slot must move before an update is emitted.
	PositionDelta int64
	// PreloadSamples is how much decoded audio is kept ahead of the position.
	PreloadSamples int64
	FadingTick     time.Duration
	PositionTick   time.Duration
	DetachTimeout  time.Duration

	// VoiceFrequency is the output rate of voice messages. Songs keep
	// their own rate.
	VoiceFrequency int
	// BufferSize is the byte budget of one load pass.
	BufferSize int

	SongVolume       float64
	SuppressAllGain  float64
	SuppressSongGain float64
	SuppressAllFade  time.Duration
}

func DefaultOptions() Options {
	return Options{
		VoiceSlots:       4,
		SongSlots:        1,
		FadeDuration:     500 * time.Millisecond,
		PositionDelta:    2400,
		PreloadSamples:   2 * 48000,
		FadingTick:       7 * time.Millisecond,
		PositionTick:     100 * time.Millisecond,
		DetachTimeout:    500 * time.Millisecond,
		VoiceFrequency:   48000,
		BufferSize:       256 * 1024,
		SongVolume:       1,
		SuppressAllGain:  0.2,
		SuppressSongGain: 0.05,
		SuppressAllFade:  150 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.VoiceSlots <= 0 {
		o.VoiceSlots = d.VoiceSlots
	}
	if o.SongSlots <= 0 {
		o.SongSlots = d.SongSlots
	}
	if o.FadeDuration <= 0 {
		o.FadeDuration = d.FadeDuration
	}
	if o.PositionDelta <= 0 {
		o.PositionDelta = d.PositionDelta
	}
	if o.PreloadSamples <= 0 {
		o.PreloadSamples = d.PreloadSamples
	}
	if o.FadingTick <= 0 {
		o.FadingTick = d.FadingTick
	}
	if o.PositionTick <= 0 {
		o.PositionTick = d.PositionTick
	}
	if o.DetachTimeout <= 0 {
		o.DetachTimeout = d.DetachTimeout
	}
	if o.VoiceFrequency <= 0 {
		o.VoiceFrequency = d.VoiceFrequency
	}
	if o.BufferSize <= 0 {
		o.BufferSize = d.BufferSize
	}
	if o.SuppressAllGain <= 0 {
		o.SuppressAllGain = d.SuppressAllGain
	}
	if o.SuppressSongGain <= 0 {
		o.SuppressSongGain = d.SuppressSongGain
	}
	if o.SuppressAllFade <= 0 {
		o.SuppressAllFade = d.SuppressAllFade
	}
	o.SongVolume = min(max(o.SongVolume, 0), 1)
	return o
}

// frequency is the decoder output rate for a category; 0 keeps the source rate.
func (o Options) frequency(c Category) int {
	if c == Voice {
		return o.VoiceFrequency
	}
	return 0
}
