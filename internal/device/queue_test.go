package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stereo16(frames int) Buffer {
	return Buffer{Format: FormatStereo16, Frequency: 48000, Data: make([]byte, frames*4)}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		format   Format
		channels int
		bytes    int
	}{
		{FormatMono8, 1, 1},
		{FormatStereo8, 2, 1},
		{FormatMono16, 1, 2},
		{FormatStereo16, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			assert.Equal(t, tt.channels, tt.format.Channels())
			assert.Equal(t, tt.bytes, tt.format.BytesPerSample())
			got, ok := FormatFor(tt.channels, tt.bytes)
			require.True(t, ok)
			assert.Equal(t, tt.format, got)
		})
	}

	_, ok := FormatFor(3, 2)
	assert.False(t, ok)
	assert.False(t, Format(0).Valid())
}

func TestBufferQueue_PushRejectsPartialFrames(t *testing.T) {
	q := NewBufferQueue()
	err := q.Push(Buffer{Format: FormatStereo16, Frequency: 48000, Data: make([]byte, 6)})
	require.ErrorIs(t, err, ErrBadBuffer)
	assert.Equal(t, 0, q.Len())
}

func TestBufferQueue_ProcessedAndPop(t *testing.T) {
	q := NewBufferQueue()
	require.NoError(t, q.Push(stereo16(100)))
	require.NoError(t, q.Push(stereo16(50)))

	assert.Equal(t, 0, q.Processed())
	require.ErrorIs(t, q.Pop(), ErrNotProcessed)

	q.Play()
	assert.Equal(t, int64(120), q.Advance(120))
	assert.Equal(t, 1, q.Processed())

	require.NoError(t, q.Pop())
	assert.Equal(t, int64(20), q.Offset(), "offset is relative to the new head")
	assert.Equal(t, int64(50), q.Total())
}

func TestBufferQueue_AdvanceStopsAtEnd(t *testing.T) {
	q := NewBufferQueue()
	require.NoError(t, q.Push(stereo16(100)))
	q.Play()

	assert.Equal(t, int64(100), q.Advance(500))
	assert.Equal(t, VoiceStopped, q.State())
	assert.Equal(t, int64(100), q.Offset())
	assert.Equal(t, 1, q.Processed())

	// More data after an underrun resumes from where it stopped.
	require.NoError(t, q.Push(stereo16(10)))
	q.Play()
	assert.Equal(t, int64(10), q.Advance(10))
}

func TestBufferQueue_AdvanceIgnoredWhenPaused(t *testing.T) {
	q := NewBufferQueue()
	require.NoError(t, q.Push(stereo16(100)))
	q.Play()
	q.Pause()
	assert.Equal(t, VoicePaused, q.State())
	assert.Equal(t, int64(0), q.Advance(50))
}

func TestBufferQueue_ReadLeavesGainToOutput(t *testing.T) {
	q := NewBufferQueue()
	data := make([]byte, 8)
	// Frame 0: left 16384, right -16384. Frame 1: silence.
	data[0], data[1] = 0x00, 0x40
	data[2], data[3] = 0x00, 0xC0
	require.NoError(t, q.Push(Buffer{Format: FormatStereo16, Frequency: 8000, Data: data}))
	q.SetGain(0.5)
	q.Play()

	out := make([][2]float64, 4)
	n := q.Read(out)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 0.5, out[0][0], 1e-9)
	assert.InDelta(t, -0.5, out[0][1], 1e-9)
	assert.Equal(t, 0.5, q.Gain())
	assert.Equal(t, VoiceStopped, q.State())
}

func TestBufferQueue_ReadMono8(t *testing.T) {
	q := NewBufferQueue()
	require.NoError(t, q.Push(Buffer{Format: FormatMono8, Frequency: 8000, Data: []byte{0x80, 0xC0}}))
	q.Play()

	out := make([][2]float64, 2)
	require.Equal(t, 2, q.Read(out))
	assert.InDelta(t, 0, out[0][0], 1e-9)
	assert.InDelta(t, 0.5, out[1][0], 1e-9)
	assert.Equal(t, out[1][0], out[1][1])
}

func TestBufferQueue_SeekClamps(t *testing.T) {
	q := NewBufferQueue()
	require.NoError(t, q.Push(stereo16(100)))
	q.Seek(-5)
	assert.Equal(t, int64(0), q.Offset())
	q.Seek(1000)
	assert.Equal(t, int64(100), q.Offset())
}

func TestBufferQueue_Reset(t *testing.T) {
	q := NewBufferQueue()
	require.NoError(t, q.Push(stereo16(100)))
	q.Play()
	q.Advance(10)
	q.Reset()
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, int64(0), q.Offset())
	assert.Equal(t, VoiceInitial, q.State())
}

func TestBufferQueue_GainClamped(t *testing.T) {
	q := NewBufferQueue()
	q.SetGain(3)
	assert.Equal(t, 1.0, q.Gain())
	q.SetGain(-1)
	assert.Equal(t, 0.0, q.Gain())
}
