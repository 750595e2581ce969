// Package devicetest provides an in-memory output device for tests.
//
// Voices consume their queued samples in real time as measured by time.Now,
// so inside a testing/synctest bubble playback advances exactly with the
// fake clock.
package devicetest

import (
	"sync"
	"time"

	"github.com/llehouerou/chirp/internal/device"
)

// Hub opens fake devices and remembers them.
type Hub struct {
	mu      sync.Mutex
	devices []*Device
	openErr error
}

// Open implements device.Opener.
func (h *Hub) Open() (device.Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.openErr != nil {
		return nil, h.openErr
	}
	d := &Device{}
	h.devices = append(h.devices, d)
	return d, nil
}

// FailOpen makes later opens fail with err; nil restores them.
func (h *Hub) FailOpen(err error) {
	h.mu.Lock()
	h.openErr = err
	h.mu.Unlock()
}

// Opens returns how many devices were opened.
func (h *Hub) Opens() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.devices)
}

// Current returns the most recently opened device, or nil.
func (h *Hub) Current() *Device {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.devices) == 0 {
		return nil
	}
	return h.devices[len(h.devices)-1]
}

// Device is a fake output device.
type Device struct {
	mu           sync.Mutex
	voices       []*Voice
	closed       bool
	disconnected bool
}

func (d *Device) NewVoice() (device.Voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, device.ErrClosed
	}
	v := &Voice{device: d, queue: device.NewBufferQueue()}
	d.voices = append(d.voices, v)
	return v, nil
}

func (d *Device) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && !d.disconnected
}

func (d *Device) Close() error {
	d.mu.Lock()
	d.closed = true
	voices := d.voices
	d.mu.Unlock()
	for _, v := range voices {
		_ = v.Close()
	}
	return nil
}

// Closed reports whether Close was called.
func (d *Device) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Disconnect simulates the hardware going away.
func (d *Device) Disconnect() {
	d.mu.Lock()
	d.disconnected = true
	d.mu.Unlock()
}

// Voices returns every voice created on the device, closed ones included.
func (d *Device) Voices() []*Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Voice(nil), d.voices...)
}

// Voice is a fake voice.
type Voice struct {
	device *Device

	mu      sync.Mutex
	queue   device.BufferQueue
	last    time.Time
	closed  bool
	failErr error
	queued  int
	gains   []float64
}

// sync consumes the samples played since the last call.
func (v *Voice) sync() {
	now := time.Now()
	if v.queue.State() != device.VoicePlaying {
		v.last = now
		return
	}
	freq := v.queue.Frequency()
	if freq <= 0 {
		v.last = now
		return
	}
	frames := int64(now.Sub(v.last)) * int64(freq) / int64(time.Second)
	v.queue.Advance(frames)
	v.last = v.last.Add(time.Duration(frames * int64(time.Second) / int64(freq)))
	if v.queue.State() != device.VoicePlaying {
		v.last = now
	}
}

func (v *Voice) call(fn func() error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return device.ErrClosed
	}
	if v.failErr != nil {
		return v.failErr
	}
	v.sync()
	return fn()
}

func (v *Voice) Queue(b device.Buffer) error {
	return v.call(func() error {
		if err := v.queue.Push(b); err != nil {
			return err
		}
		v.queued++
		return nil
	})
}

func (v *Voice) Processed() (int, error) {
	var n int
	err := v.call(func() error {
		n = v.queue.Processed()
		return nil
	})
	return n, err
}

func (v *Voice) Unqueue() error {
	return v.call(v.queue.Pop)
}

func (v *Voice) Offset() (int64, error) {
	var offset int64
	err := v.call(func() error {
		offset = v.queue.Offset()
		return nil
	})
	return offset, err
}

func (v *Voice) SetOffset(samples int64) error {
	return v.call(func() error {
		v.queue.Seek(samples)
		return nil
	})
}

func (v *Voice) State() (device.VoiceState, error) {
	var state device.VoiceState
	err := v.call(func() error {
		state = v.queue.State()
		return nil
	})
	return state, err
}

func (v *Voice) Play() error {
	return v.call(func() error {
		v.queue.Play()
		return nil
	})
}

func (v *Voice) Pause() error {
	return v.call(func() error {
		v.queue.Pause()
		return nil
	})
}

func (v *Voice) Stop() error {
	return v.call(func() error {
		v.queue.Stop()
		return nil
	})
}

func (v *Voice) Reset() error {
	return v.call(func() error {
		v.queue.Reset()
		return nil
	})
}

func (v *Voice) SetGain(gain float64) error {
	return v.call(func() error {
		v.queue.SetGain(gain)
		v.gains = append(v.gains, v.queue.Gain())
		return nil
	})
}

func (v *Voice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

// Fail makes every later call on the voice return err; nil clears it.
func (v *Voice) Fail(err error) {
	v.mu.Lock()
	v.failErr = err
	v.mu.Unlock()
}

// Closed reports whether the voice was closed.
func (v *Voice) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// QueueCalls returns how many buffers were ever queued.
func (v *Voice) QueueCalls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.queued
}

// Queued returns how many buffers are queued now.
func (v *Voice) Queued() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.queue.Len()
}

// Gain returns the current gain.
func (v *Voice) Gain() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.queue.Gain()
}

// Gains returns every gain ever set, in order.
func (v *Voice) Gains() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float64(nil), v.gains...)
}

// Playing reports whether the voice is playing, after consuming elapsed time.
func (v *Voice) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sync()
	return v.queue.State() == device.VoicePlaying
}
