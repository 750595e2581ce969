package device_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/chirp/internal/device"
	"github.com/llehouerou/chirp/internal/device/devicetest"
)

func TestSession_AttachIsLazyAndReused(t *testing.T) {
	hub := &devicetest.Hub{}
	s := device.NewSession(hub.Open, nil)

	assert.False(t, s.Attached())
	assert.Equal(t, 0, hub.Opens())

	d1, err := s.Attach()
	require.NoError(t, err)
	d2, err := s.Attach()
	require.NoError(t, err)
	assert.Same(t, d1, d2)
	assert.Equal(t, 1, hub.Opens())
}

func TestSession_DetachThenReattach(t *testing.T) {
	hub := &devicetest.Hub{}
	s := device.NewSession(hub.Open, nil)

	_, err := s.Attach()
	require.NoError(t, err)
	first := hub.Current()

	s.Detach()
	assert.True(t, first.Closed())
	assert.False(t, s.Attached())
	assert.Nil(t, s.Device())

	_, err = s.Attach()
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Opens())
}

func TestSession_DisconnectedDeviceIsReplaced(t *testing.T) {
	hub := &devicetest.Hub{}
	s := device.NewSession(hub.Open, nil)

	_, err := s.Attach()
	require.NoError(t, err)
	hub.Current().Disconnect()
	assert.False(t, s.Attached())

	_, err = s.Attach()
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Opens())
	assert.True(t, s.Attached())
}

func TestSession_OpenFailureDisablesUntilReinit(t *testing.T) {
	hub := &devicetest.Hub{}
	boom := errors.New("no sound card")
	hub.FailOpen(boom)
	s := device.NewSession(hub.Open, nil)

	_, err := s.Attach()
	require.ErrorIs(t, err, boom)
	assert.False(t, s.Works())

	hub.FailOpen(nil)
	_, err = s.Attach()
	require.Error(t, err, "stays disabled without Reinit")

	require.NoError(t, s.Reinit())
	assert.True(t, s.Works())
	assert.True(t, s.Attached())
}

func TestSession_MalformedNotifySoundIsDropped(t *testing.T) {
	hub := &devicetest.Hub{}
	s := device.NewSession(hub.Open, []byte("RIFF garbage"))

	assert.True(t, s.Works())
	assert.False(t, s.HasNotifySound())
	require.ErrorIs(t, s.PlayNotify(), device.ErrNoNotifySound)
}

func TestSession_PlayNotify(t *testing.T) {
	hub := &devicetest.Hub{}
	s := device.NewSession(hub.Open, device.BundledNotifySound())
	require.True(t, s.HasNotifySound())
	assert.Greater(t, s.NotifyLength().Milliseconds(), int64(150), "includes the lead-in")

	require.NoError(t, s.PlayNotify())
	assert.True(t, s.NotifyPlaying())

	voices := hub.Current().Voices()
	require.Len(t, voices, 1)
	assert.Equal(t, 1, voices[0].QueueCalls())

	// Replaying rewinds the same voice instead of queueing again.
	require.NoError(t, s.PlayNotify())
	assert.Equal(t, 1, voices[0].QueueCalls())
}

func TestSession_Close(t *testing.T) {
	hub := &devicetest.Hub{}
	s := device.NewSession(hub.Open, nil)
	_, err := s.Attach()
	require.NoError(t, err)

	s.Close()
	assert.False(t, s.Works())
	_, err = s.Attach()
	require.ErrorIs(t, err, device.ErrClosed)
}
