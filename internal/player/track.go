package player

import (
	"github.com/llehouerou/chirp/internal/decoder"
	"github.com/llehouerou/chirp/internal/device"
)

// ringSize is the number of device buffers a slot keeps queued.
const ringSize = 3

type ringBuffer struct {
	data    []byte
	samples int64
}

// track is one playback slot.
//
// bufferedPosition is the first sample still held in the ring: samples
// skipped by a start position plus samples unqueued from the device.
// skipEnd counts the samples after the ring that are not decoded yet.
type track struct {
	state  TrackState
	source decoder.Source

	bufferedPosition int64
	bufferedLength   int64
	skipEnd          int64
	loading          bool
	loaded           bool
	loadSeq          uint64
	// generation counts starts of the slot; decoded audio of an older
	// start is dropped.
	generation uint64

	fadeStartPosition  int64
	lastUpdatePosition int64

	voice device.Voice
	// ring keeps the queued bytes so a re-created voice can be refilled.
	ring []ringBuffer
	// savedOffset is the voice offset when the voice was released.
	savedOffset int64
}

func (t *track) bufferedEnd() int64 {
	return t.bufferedPosition + t.bufferedLength
}

// buffered reports whether position can be reached by moving the voice
// offset. Until the end is decoded the last second is excluded so a seek
// does not land on an underrun.
func (t *track) buffered(position int64) bool {
	if len(t.ring) == 0 {
		return false
	}
	end := t.bufferedEnd()
	if !t.loaded {
		end -= int64(t.state.Frequency)
	}
	return position >= t.bufferedPosition && position <= end
}

// push appends a decoded chunk to the ring bookkeeping.
func (t *track) push(data []byte, samples int64) {
	t.ring = append(t.ring, ringBuffer{data: data, samples: samples})
	t.bufferedLength += samples
	t.skipEnd = max(t.skipEnd-samples, 0)
	if t.state.Duration < t.bufferedEnd() {
		t.state.Duration = t.bufferedEnd()
	}
}

// popHead drops the oldest ring entry after the device unqueued it.
func (t *track) popHead() {
	head := t.ring[0]
	t.ring[0] = ringBuffer{}
	t.ring = t.ring[1:]
	t.bufferedPosition += head.samples
	t.bufferedLength -= head.samples
}

// resetData forgets decoded audio and empties the voice, keeping it for
// reuse.
func (t *track) resetData() error {
	t.ring = nil
	t.bufferedPosition = 0
	t.bufferedLength = 0
	t.skipEnd = 0
	t.loading = false
	t.loaded = false
	t.fadeStartPosition = 0
	t.lastUpdatePosition = 0
	t.savedOffset = 0
	if t.voice == nil {
		return nil
	}
	return t.voice.Reset()
}

// releaseVoice closes the voice, remembering its offset.
func (t *track) releaseVoice() {
	if t.voice == nil {
		return
	}
	if off, err := t.voice.Offset(); err == nil {
		t.savedOffset = off
	}
	_ = t.voice.Close()
	t.voice = nil
}

func (t *track) buffer(i int) device.Buffer {
	return device.Buffer{
		Format:    device.FormatStereo16,
		Frequency: t.state.Frequency,
		Data:      t.ring[i].data,
	}
}
