package device

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/sirupsen/logrus"
)

const resampleQuality = 4

// The beep speaker owns a single process-wide output stream and can only be
// initialized once. Closing a device suspends it; the next open resumes it.
var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSuspended   bool
	speakerRate        beep.SampleRate

	speakerSuspend = speaker.Suspend
	speakerResume  = speaker.Resume
)

// SpeakerOpener returns an Opener backed by beep's speaker, mixing every
// voice into one output stream at rate Hz.
func SpeakerOpener(rate int, latency time.Duration) Opener {
	return func() (Device, error) {
		return openSpeaker(beep.SampleRate(rate), latency)
	}
}

func openSpeaker(rate beep.SampleRate, latency time.Duration) (*speakerDevice, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	switch {
	case !speakerInitialized:
		if err := speaker.Init(rate, rate.N(latency)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
		}
		speakerInitialized = true
		speakerRate = rate
	case speakerSuspended:
		if err := speakerResume(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
		}
		speakerSuspended = false
	}

	// An empty beep.Mixer streams silence, so voices can come and go.
	d := &speakerDevice{
		rate:   speakerRate,
		mixer:  &beep.Mixer{},
		voices: make(map[*speakerVoice]struct{}),
	}
	speaker.Play(d.mixer)
	return d, nil
}

type speakerDevice struct {
	rate  beep.SampleRate
	mixer *beep.Mixer

	mu     sync.Mutex
	voices map[*speakerVoice]struct{}
	closed bool
}

func (d *speakerDevice) NewVoice() (Voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	v := &speakerVoice{device: d, queue: NewBufferQueue()}
	v.output = newVoiceOutput(v)
	d.voices[v] = struct{}{}

	speaker.Lock()
	d.mixer.Add(v.output)
	speaker.Unlock()
	return v, nil
}

func (d *speakerDevice) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed
}

func (d *speakerDevice) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	voices := d.voices
	d.voices = nil
	d.mu.Unlock()

	for v := range voices {
		_ = v.Close()
	}

	speakerMu.Lock()
	defer speakerMu.Unlock()
	speaker.Lock()
	// A drained mixer is dropped by the speaker on its next read.
	d.mixer.Clear()
	d.mixer.KeepAlive(false)
	speaker.Unlock()
	if err := speakerSuspend(); err != nil {
		logrus.WithField("component", "device").WithFields(logrus.Fields{
			"function": "Close",
			"error":    err.Error(),
		}).Warn("Failed to suspend speaker")
		return nil
	}
	speakerSuspended = true
	return nil
}

func (d *speakerDevice) forget(v *speakerVoice) {
	d.mu.Lock()
	delete(d.voices, v)
	d.mu.Unlock()
}

// speakerVoice is a BufferQueue read by the speaker callback through a
// resampler to the device rate.
type speakerVoice struct {
	device *speakerDevice
	output *voiceOutput

	mu     sync.Mutex
	queue  BufferQueue
	closed bool
}

func (v *speakerVoice) locked(fn func() error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	return fn()
}

func (v *speakerVoice) Queue(b Buffer) error {
	return v.locked(func() error {
		if err := v.queue.Push(b); err != nil {
			return err
		}
		v.output.retune(v.queue.Frequency(), v.device.rate)
		return nil
	})
}

func (v *speakerVoice) Processed() (int, error) {
	var n int
	err := v.locked(func() error {
		n = v.queue.Processed()
		return nil
	})
	return n, err
}

func (v *speakerVoice) Unqueue() error {
	return v.locked(v.queue.Pop)
}

func (v *speakerVoice) Offset() (int64, error) {
	var offset int64
	err := v.locked(func() error {
		offset = v.queue.Offset()
		return nil
	})
	return offset, err
}

func (v *speakerVoice) SetOffset(samples int64) error {
	return v.locked(func() error {
		v.queue.Seek(samples)
		return nil
	})
}

func (v *speakerVoice) State() (VoiceState, error) {
	var state VoiceState
	err := v.locked(func() error {
		state = v.queue.State()
		return nil
	})
	return state, err
}

func (v *speakerVoice) Play() error {
	return v.locked(func() error {
		v.queue.Play()
		return nil
	})
}

func (v *speakerVoice) Pause() error {
	return v.locked(func() error {
		v.queue.Pause()
		return nil
	})
}

func (v *speakerVoice) Stop() error {
	return v.locked(func() error {
		v.queue.Stop()
		return nil
	})
}

func (v *speakerVoice) Reset() error {
	return v.locked(func() error {
		v.queue.Reset()
		return nil
	})
}

// SetGain applies gain through the voice's effects.Volume. The speaker lock
// is taken before the voice lock, the order the audio callback uses.
func (v *speakerVoice) SetGain(gain float64) error {
	speaker.Lock()
	defer speaker.Unlock()
	return v.locked(func() error {
		v.queue.SetGain(gain)
		v.output.setGain(v.queue.Gain())
		return nil
	})
}

func (v *speakerVoice) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.queue.Reset()
	v.mu.Unlock()
	v.device.forget(v)
	return nil
}

// voiceOutput is the streamer handed to the mixer. It stays in the mixer,
// producing silence while the voice is idle, until the voice is closed.
type voiceOutput struct {
	voice  *speakerVoice
	rate   int
	out    beep.Streamer
	volume effects.Volume
}

func newVoiceOutput(v *speakerVoice) *voiceOutput {
	return &voiceOutput{voice: v, volume: effects.Volume{Base: 2}}
}

// setGain maps a linear gain onto the exponential volume. Called with the
// speaker and voice locks held.
func (o *voiceOutput) setGain(gain float64) {
	o.volume.Silent = gain <= 0
	if !o.volume.Silent {
		o.volume.Volume = math.Log2(gain)
	}
}

// retune rebuilds the resampler when the queued data changes rate.
// Called with the voice mutex held.
func (o *voiceOutput) retune(from int, to beep.SampleRate) {
	if from == 0 || from == o.rate {
		return
	}
	o.rate = from
	var out beep.Streamer = beep.StreamerFunc(o.read)
	if beep.SampleRate(from) != to {
		out = beep.Resample(resampleQuality, beep.SampleRate(from), to, out)
	}
	o.volume.Streamer = out
	o.out = &o.volume
}

// read pulls frames from the queue. Called with the voice mutex held.
func (o *voiceOutput) read(samples [][2]float64) (int, bool) {
	n := o.voice.queue.Read(samples)
	clear(samples[n:])
	return len(samples), true
}

func (o *voiceOutput) Stream(samples [][2]float64) (int, bool) {
	v := o.voice
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return 0, false
	}
	if o.out == nil {
		clear(samples)
		return len(samples), true
	}
	return o.out.Stream(samples)
}

func (o *voiceOutput) Err() error {
	return nil
}
