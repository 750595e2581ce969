package device

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSpeaker marks the process-wide speaker as initialized and counts
// suspends and resumes instead of touching the hardware.
type fakeSpeaker struct {
	suspends  int
	resumes   int
	resumeErr error
}

func useFakeSpeaker(t *testing.T, rate beep.SampleRate) *fakeSpeaker {
	t.Helper()
	f := &fakeSpeaker{}
	speakerMu.Lock()
	saved := struct {
		initialized, suspended bool
		rate                   beep.SampleRate
		suspend, resume        func() error
	}{speakerInitialized, speakerSuspended, speakerRate, speakerSuspend, speakerResume}
	speakerInitialized, speakerSuspended, speakerRate = true, false, rate
	speakerSuspend = func() error { f.suspends++; return nil }
	speakerResume = func() error { f.resumes++; return f.resumeErr }
	speakerMu.Unlock()

	t.Cleanup(func() {
		speakerMu.Lock()
		speakerInitialized, speakerSuspended, speakerRate = saved.initialized, saved.suspended, saved.rate
		speakerSuspend, speakerResume = saved.suspend, saved.resume
		speakerMu.Unlock()
	})
	return f
}

// constant16 is a stereo 16-bit buffer holding frames copies of v.
func constant16(frames int, rate int, v int16) Buffer {
	data := make([]byte, frames*4)
	for i := range frames * 2 {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v)) //nolint:gosec // sample bits
	}
	return Buffer{Format: FormatStereo16, Frequency: rate, Data: data}
}

func TestSpeakerVoice_GainScalesOutput(t *testing.T) {
	useFakeSpeaker(t, 8000)
	d, err := openSpeaker(8000, 0)
	require.NoError(t, err)
	v, err := d.NewVoice()
	require.NoError(t, err)

	require.NoError(t, v.Queue(constant16(64, 8000, 16384)))
	require.NoError(t, v.Play())
	out := make([][2]float64, 16)

	d.mixer.Stream(out)
	assert.InDelta(t, 0.5, out[0][0], 1e-9)

	require.NoError(t, v.SetGain(0.5))
	d.mixer.Stream(out)
	assert.InDelta(t, 0.25, out[0][0], 1e-9)
	assert.InDelta(t, 0.25, out[15][1], 1e-9)

	require.NoError(t, v.SetGain(0))
	d.mixer.Stream(out)
	assert.Zero(t, out[0][0])
	assert.Zero(t, out[15][1])

	st, err := v.State()
	require.NoError(t, err)
	assert.Equal(t, VoicePlaying, st)
}

func TestSpeakerDevice_IdleWithoutVoices(t *testing.T) {
	useFakeSpeaker(t, 8000)
	d, err := openSpeaker(8000, 0)
	require.NoError(t, err)

	out := [][2]float64{{1, 1}, {1, 1}}
	n, ok := d.mixer.Stream(out)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, [2]float64{}, out[0])
}

func TestSpeakerDevice_CloseSuspendsAndOpenResumes(t *testing.T) {
	f := useFakeSpeaker(t, 8000)
	d, err := openSpeaker(8000, 0)
	require.NoError(t, err)
	assert.Zero(t, f.resumes)

	require.NoError(t, d.Close())
	assert.Equal(t, 1, f.suspends)
	assert.False(t, d.Connected())
	n, ok := d.mixer.Stream(make([][2]float64, 4))
	assert.False(t, ok, "a closed device drains out of the speaker")
	assert.Zero(t, n)

	require.NoError(t, d.Close())
	assert.Equal(t, 1, f.suspends)

	d2, err := openSpeaker(8000, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, f.resumes)
	require.NoError(t, d2.Close())
	assert.Equal(t, 2, f.suspends)
}

func TestSpeakerDevice_ResumeFailure(t *testing.T) {
	f := useFakeSpeaker(t, 8000)
	d, err := openSpeaker(8000, 0)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	f.resumeErr = errors.New("no sink")
	_, err = openSpeaker(8000, 0)
	require.ErrorIs(t, err, ErrNoDevice)

	f.resumeErr = nil
	_, err = openSpeaker(8000, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, f.resumes)
}
