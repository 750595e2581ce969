package player

import "sync"

const eventBufferSize = 64

// EventKind tells what happened to a track.
type EventKind int

const (
	// EventUpdated is emitted when the position or the state changed.
	EventUpdated EventKind = iota
	// EventStopped is emitted when a track stops.
	EventStopped
	// EventStoppedOnError is emitted when a track fails. It replaces an
	// EventStopped for the same track delivered in the same batch.
	EventStoppedOnError
)

func (k EventKind) String() string {
	switch k {
	case EventUpdated:
		return "updated"
	case EventStopped:
		return "stopped"
	case EventStoppedOnError:
		return "stoppedOnError"
	default:
		return "unknown"
	}
}

// Event is a notification about one track. State is a snapshot taken when
// the event was raised.
type Event struct {
	Kind  EventKind
	State TrackState
	Err   error
}

// Subscription receives player events. Events are dropped when the
// subscriber falls eventBufferSize behind.
type Subscription struct {
	Events <-chan Event
	Done   <-chan struct{}

	eventsCh chan Event
	doneCh   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		eventsCh: make(chan Event, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.Events = s.eventsCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) send(e Event) {
	select {
	case s.eventsCh <- e:
	default:
	}
}

// notifier delivers events on its own goroutine so nothing is sent while
// the player mutex is held.
type notifier struct {
	box *mailbox[Event]

	mu   sync.Mutex
	subs []*Subscription
}

func newNotifier() *notifier {
	return &notifier{box: newMailbox[Event]()}
}

func (n *notifier) post(e Event) {
	n.box.post(e)
}

func (n *notifier) subscribe() *Subscription {
	s := newSubscription()
	n.mu.Lock()
	n.subs = append(n.subs, s)
	n.mu.Unlock()
	return s
}

func (n *notifier) unsubscribe(s *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, sub := range n.subs {
		if sub == s {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			s.close()
			return
		}
	}
}

func (n *notifier) run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			n.closeAll()
			return
		case <-n.box.ready():
			n.deliver(coalesce(n.box.drain()))
		}
	}
}

func (n *notifier) deliver(events []Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range events {
		for _, s := range n.subs {
			s.send(e)
		}
	}
}

func (n *notifier) closeAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.subs {
		s.close()
	}
	n.subs = nil
}

// coalesce drops a stop that is followed by a failure of the same track in
// the batch, and updates repeating the previous update of that track.
func coalesce(batch []Event) []Event {
	failed := make(map[AudioID]bool)
	for _, e := range batch {
		if e.Kind == EventStoppedOnError {
			failed[e.State.ID] = true
		}
	}
	last := make(map[AudioID]TrackState)
	out := make([]Event, 0, len(batch))
	for _, e := range batch {
		id := e.State.ID
		switch e.Kind {
		case EventStopped:
			if failed[id] {
				continue
			}
		case EventUpdated:
			if prev, ok := last[id]; ok && prev == e.State {
				continue
			}
			last[id] = e.State
		}
		out = append(out, e)
	}
	return out
}
