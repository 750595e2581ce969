// Package device abstracts the audio output hardware.
//
// A Device hands out Voices. A Voice plays a queue of PCM buffers in order,
// reports how far it got and which buffers it has finished with, and applies
// a gain. The model mirrors a streaming source of a hardware mixer: callers
// queue a few buffers ahead, unqueue the processed ones and refill.
//
// Device and Voice are not safe for concurrent use by several callers; the
// player serializes all calls under its own mutex. Implementations still
// synchronize with their audio callback internally.
package device

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrClosed is returned by calls on a closed device or voice.
	ErrClosed = errors.New("device: closed")
	// ErrNoDevice is returned when no output device could be opened.
	ErrNoDevice = errors.New("device: no output device")
	// ErrNotProcessed is returned by Unqueue when the head buffer is still playing.
	ErrNotProcessed = errors.New("device: buffer not processed")
	// ErrBadBuffer is returned when queuing a buffer with an unusable format.
	ErrBadBuffer = errors.New("device: bad buffer")
)

// Format describes interleaved PCM sample data.
type Format int

const (
	FormatMono8 Format = iota + 1
	FormatStereo8
	FormatMono16
	FormatStereo16
)

// FormatFor returns the format for the given channel count and sample width.
func FormatFor(channels, bytesPerSample int) (Format, bool) {
	switch {
	case channels == 1 && bytesPerSample == 1:
		return FormatMono8, true
	case channels == 2 && bytesPerSample == 1:
		return FormatStereo8, true
	case channels == 1 && bytesPerSample == 2:
		return FormatMono16, true
	case channels == 2 && bytesPerSample == 2:
		return FormatStereo16, true
	}
	return 0, false
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	return f >= FormatMono8 && f <= FormatStereo16
}

// Channels returns the number of interleaved channels.
func (f Format) Channels() int {
	switch f {
	case FormatStereo8, FormatStereo16:
		return 2
	case FormatMono8, FormatMono16:
		return 1
	}
	return 0
}

// BytesPerSample returns the width of one channel sample.
func (f Format) BytesPerSample() int {
	switch f {
	case FormatMono8, FormatStereo8:
		return 1
	case FormatMono16, FormatStereo16:
		return 2
	}
	return 0
}

// FrameSize returns the size of one sample for all channels.
func (f Format) FrameSize() int {
	return f.Channels() * f.BytesPerSample()
}

func (f Format) String() string {
	switch f {
	case FormatMono8:
		return "mono8"
	case FormatStereo8:
		return "stereo8"
	case FormatMono16:
		return "mono16"
	case FormatStereo16:
		return "stereo16"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Buffer is a block of PCM data queued on a Voice.
// 8-bit data is unsigned, 16-bit data is signed little-endian.
type Buffer struct {
	Format    Format
	Frequency int
	Data      []byte
}

// Samples returns the number of frames held by the buffer.
func (b Buffer) Samples() int64 {
	if !b.Format.Valid() {
		return 0
	}
	return int64(len(b.Data) / b.Format.FrameSize())
}

// Duration returns the playing time of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.Frequency <= 0 {
		return 0
	}
	return time.Duration(b.Samples()) * time.Second / time.Duration(b.Frequency)
}

func (b Buffer) validate() error {
	if !b.Format.Valid() || b.Frequency <= 0 || len(b.Data)%b.Format.FrameSize() != 0 {
		return fmt.Errorf("%w: %s at %d Hz, %d bytes", ErrBadBuffer, b.Format, b.Frequency, len(b.Data))
	}
	return nil
}

// VoiceState is the play state of a Voice.
type VoiceState int

const (
	VoiceInitial VoiceState = iota
	VoicePlaying
	VoicePaused
	VoiceStopped
)

func (s VoiceState) String() string {
	switch s {
	case VoiceInitial:
		return "Initial"
	case VoicePlaying:
		return "Playing"
	case VoicePaused:
		return "Paused"
	case VoiceStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Voice plays a queue of buffers.
//
// Offsets are sample counts relative to the start of the first buffer still
// queued. A playing voice that runs out of queued data stops by itself and
// keeps its offset at the end of the queue.
type Voice interface {
	// Queue appends a buffer to the play queue.
	Queue(b Buffer) error
	// Processed returns how many buffers at the head of the queue were fully played.
	Processed() (int, error)
	// Unqueue removes the head buffer. It fails with ErrNotProcessed while
	// the buffer is still being played.
	Unqueue() error
	// Offset returns the play position within the queue.
	Offset() (int64, error)
	// SetOffset moves the play position within the queue.
	SetOffset(samples int64) error
	State() (VoiceState, error)
	Play() error
	Pause() error
	Stop() error
	// Reset stops the voice and drops every queued buffer.
	Reset() error
	SetGain(gain float64) error
	Close() error
}

// Device is an opened output device.
type Device interface {
	NewVoice() (Voice, error)
	// Connected reports false once the hardware went away.
	Connected() bool
	Close() error
}

// Opener opens the output device.
type Opener func() (Device, error)
