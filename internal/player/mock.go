package player

import "sync"

// Mock is a test double for Player. State changes are immediate: no fades,
// no decoding.
type Mock struct {
	mu        sync.Mutex
	states    [numCategories]TrackState
	volume    float64
	notifyErr error
	playCalls []AudioID
	seekCalls []int64
	notifies  int
	subs      []*Subscription
	closed    bool
}

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{volume: 1}
}

func (m *Mock) Play(id AudioID, position int64) {
	m.mu.Lock()
	m.playCalls = append(m.playCalls, id)
	m.states[id.Category] = TrackState{ID: id, State: Playing, Position: position}
	st := m.states[id.Category]
	m.mu.Unlock()
	m.Emit(Event{Kind: EventUpdated, State: st})
}

func (m *Mock) PauseResume(cat Category, _ bool) {
	m.mu.Lock()
	switch st := m.states[cat].State; {
	case st.CanPause():
		m.states[cat].State = Paused
	case st.CanResume():
		m.states[cat].State = Playing
	default:
		m.mu.Unlock()
		return
	}
	st := m.states[cat]
	m.mu.Unlock()
	m.Emit(Event{Kind: EventUpdated, State: st})
}

func (m *Mock) Seek(cat Category, position int64) {
	m.mu.Lock()
	m.seekCalls = append(m.seekCalls, position)
	m.states[cat].Position = position
	st := m.states[cat]
	m.mu.Unlock()
	m.Emit(Event{Kind: EventUpdated, State: st})
}

func (m *Mock) Stop(cat Category) {
	m.mu.Lock()
	if m.states[cat].State.IsStopped() {
		m.mu.Unlock()
		return
	}
	m.states[cat].State = Stopped
	st := m.states[cat]
	m.mu.Unlock()
	m.Emit(Event{Kind: EventStopped, State: st})
}

func (m *Mock) StopAndClear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = [numCategories]TrackState{}
}

func (m *Mock) CurrentState(cat Category) TrackState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[cat]
}

func (m *Mock) ClearStoppedAtStart(id AudioID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st := &m.states[id.Category]; st.ID == id && st.State == StoppedAtStart {
		st.State = Stopped
	}
}

func (m *Mock) SetSongVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = min(max(v, 0), 1)
}

func (m *Mock) SongVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) PlayNotify() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifies++
	return m.notifyErr
}

func (m *Mock) Subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newSubscription()
	m.subs = append(m.subs, s)
	return s
}

func (m *Mock) Unsubscribe(s *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subs {
		if sub == s {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			s.close()
			return
		}
	}
}

func (m *Mock) Reinit() error { return nil }

func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, s := range m.subs {
		s.close()
	}
	m.subs = nil
}

// Test helpers

// Emit delivers e to every subscriber.
func (m *Mock) Emit(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		s.send(e)
	}
}

// SetState replaces the state of a category.
func (m *Mock) SetState(cat Category, st TrackState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[cat] = st
}

func (m *Mock) SetNotifyError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifyErr = err
}

func (m *Mock) PlayCalls() []AudioID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AudioID(nil), m.playCalls...)
}

func (m *Mock) SeekCalls() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.seekCalls...)
}

func (m *Mock) Notifies() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifies
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
