package player

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/chirp/internal/decoder"
)

// runLoader handles everything posted to the loader so far.
func runLoader(p *Player) {
	for {
		batch := p.loader.box.drain()
		if len(batch) == 0 {
			return
		}
		p.loader.process(batch)
	}
}

func TestLoaders_CancelWithoutJob(t *testing.T) {
	env := newTestEnv(DefaultOptions(), false)
	defer env.p.Close()
	id := songID(1)

	before := env.p.CurrentState(Song)
	env.p.loader.cancel(loadRequest{kind: loadCancel, id: id})
	env.p.loader.cancel(loadRequest{kind: loadCancel, id: id})
	assert.Equal(t, before, env.p.CurrentState(Song))
}

func TestLoaders_StaleCancelKeepsNewerLoad(t *testing.T) {
	env := newTestEnv(DefaultOptions(), false)
	defer env.p.Close()
	id := songID(1)
	env.add(id, wavSource(time.Second))

	env.p.Play(id, 0)
	env.p.loader.box.drain()
	tr := env.p.currentLocked(Song)
	require.True(t, tr.loading)

	env.p.loader.cancel(loadRequest{kind: loadCancel, id: id, seq: tr.loadSeq - 1})
	assert.True(t, tr.loading, "a cancel older than the last request is ignored")

	env.p.loader.cancel(loadRequest{kind: loadCancel, id: id, seq: tr.loadSeq})
	assert.False(t, tr.loading)
}

func TestLoaders_DiscardsResultOfReplacedTrack(t *testing.T) {
	env := newTestEnv(DefaultOptions(), false)
	defer env.p.Close()
	a, b := songID(1), songID(2)
	env.add(a, wavSource(time.Second))
	env.add(b, wavSource(2*time.Second))

	env.p.Play(a, 0)
	env.p.loader.decoded = func(id AudioID) {
		if id == a {
			env.p.Play(b, 0)
		}
	}
	env.p.loader.process(env.p.loader.box.drain())

	tr := env.p.currentLocked(Song)
	assert.Equal(t, b, tr.state.ID)
	assert.Equal(t, Playing, tr.state.State)
	assert.True(t, tr.loading)
	assert.Empty(t, tr.ring, "audio of A must not reach B's slot")
	assert.Zero(t, tr.state.Duration)
	assert.Equal(t, 0, env.hub.Opens())

	runLoader(env.p)
	assert.Equal(t, b, tr.state.ID)
	assert.Equal(t, int64(2*testRate), tr.state.Duration)
	assert.True(t, tr.loaded)
	assert.False(t, tr.loading)
	assert.True(t, env.voice(t, 0).Playing())
}

// firstSample is the left channel of the first frame held in the ring.
func firstSample(t *testing.T, tr *track) int16 {
	t.Helper()
	require.NotEmpty(t, tr.ring)
	require.GreaterOrEqual(t, len(tr.ring[0].data), 2)
	return int16(binary.LittleEndian.Uint16(tr.ring[0].data)) //nolint:gosec // sample bits
}

func TestLoaders_RestartDuringDecodeDropsOldAudio(t *testing.T) {
	env := newTestEnv(DefaultOptions(), false)
	defer env.p.Close()
	id := songID(1)
	env.add(id, wavSource(10*time.Second))

	env.p.Play(id, 0)
	restarted := false
	env.p.loader.decoded = func(AudioID) {
		if !restarted {
			restarted = true
			env.p.Play(id, 5*testRate)
		}
	}
	env.p.loader.process(env.p.loader.box.drain())

	tr := env.p.currentLocked(Song)
	assert.Empty(t, tr.ring, "audio decoded from 0 must not land at 5s")
	assert.True(t, tr.loading)

	runLoader(env.p)
	assert.Equal(t, Playing, tr.state.State)
	assert.Equal(t, int64(5*testRate), tr.bufferedPosition)
	assert.InDelta(t, 8000+(5*testRate)%512, firstSample(t, tr), 1)
	assert.Zero(t, count(env.p.events.box.drain(), EventStoppedOnError))
}

func TestLoaders_SeekDuringLoadDropsOldAudio(t *testing.T) {
	opts := DefaultOptions()
	opts.BufferSize = 16 << 10
	env := newTestEnv(opts, false)
	defer env.p.Close()
	id := songID(1)
	env.add(id, wavSource(10*time.Second))

	env.p.Play(id, 0)
	runLoader(env.p)
	tr := env.p.currentLocked(Song)
	require.Len(t, tr.ring, 1)
	require.False(t, tr.loaded)

	env.p.mu.Lock()
	tr.loading = true
	env.p.postLoadLocked(tr, loadMore, tr.bufferedEnd())
	env.p.mu.Unlock()
	seeked := false
	env.p.loader.decoded = func(AudioID) {
		if !seeked {
			seeked = true
			env.p.Seek(Song, 7*testRate)
		}
	}
	env.p.loader.process(env.p.loader.box.drain())
	assert.Empty(t, tr.ring)

	runLoader(env.p)
	assert.Equal(t, Playing, tr.state.State)
	assert.Equal(t, int64(7*testRate), tr.bufferedPosition)
	assert.InDelta(t, 8000+(7*testRate)%512, firstSample(t, tr), 1)
	assert.Zero(t, count(env.p.events.box.drain(), EventStoppedOnError))
}

func TestLoaders_DropsRequestForMovedPosition(t *testing.T) {
	env := newTestEnv(DefaultOptions(), false)
	defer env.p.Close()
	id := songID(1)
	env.add(id, wavSource(time.Second))

	env.p.Play(id, 0)
	req := env.p.loader.box.drain()
	require.Len(t, req, 1)
	req[0].position = testRate / 2
	env.p.loader.process(req)

	tr := env.p.currentLocked(Song)
	assert.Empty(t, tr.ring)
	assert.Nil(t, env.p.loader.jobs[Song])
	assert.False(t, tr.loading, "the slot can ask for audio again")
}

func TestLoaders_ZeroLengthAudioFailsAtStart(t *testing.T) {
	env := newTestEnv(DefaultOptions(), false)
	defer env.p.Close()
	id := songID(1)
	env.add(id, wavSource(0))

	env.p.Play(id, 0)
	runLoader(env.p)
	assert.Equal(t, StoppedAtStart, env.p.CurrentState(Song).State)

	events := env.p.events.box.drain()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventStoppedOnError, last.Kind)
	require.ErrorIs(t, last.Err, decoder.ErrZeroDuration)
}

func TestLoaders_StartAtEnd(t *testing.T) {
	env := newTestEnv(DefaultOptions(), false)
	defer env.p.Close()
	id := songID(1)
	env.add(id, wavSource(time.Second))

	env.p.Play(id, 5*testRate)
	runLoader(env.p)
	st := env.p.CurrentState(Song)
	assert.Equal(t, StoppedAtEnd, st.State)
	assert.Equal(t, int64(testRate), st.Position)
	assert.Equal(t, int64(testRate), st.Duration)
	assert.Equal(t, 0, env.hub.Opens())
}

func TestSuperseded(t *testing.T) {
	a, b := songID(1), songID(2)
	msg := voiceID(3)
	tests := []struct {
		name  string
		req   loadRequest
		later []loadRequest
		want  bool
	}{
		{"nothing later", loadRequest{kind: loadMore, id: a}, nil, false},
		{"newer start", loadRequest{kind: loadMore, id: a}, []loadRequest{{kind: loadStart, id: b}}, true},
		{"start replaced", loadRequest{kind: loadStart, id: a}, []loadRequest{{kind: loadStart, id: a}}, true},
		{"other category", loadRequest{kind: loadStart, id: a}, []loadRequest{{kind: loadStart, id: msg}}, false},
		{"cancels always run", loadRequest{kind: loadCancel, id: a}, []loadRequest{{kind: loadStart, id: b}}, false},
		{"later load", loadRequest{kind: loadStart, id: a}, []loadRequest{{kind: loadMore, id: a}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, superseded(tt.req, tt.later))
		})
	}
}
