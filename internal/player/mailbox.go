package player

import "sync"

// mailbox is an unbounded queue with a coalescing wake-up signal. Posting
// never blocks.
type mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	signal chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{signal: make(chan struct{}, 1)}
}

func (m *mailbox[T]) post(v T) {
	m.mu.Lock()
	m.items = append(m.items, v)
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// ready fires after at least one post since the last drain.
func (m *mailbox[T]) ready() <-chan struct{} {
	return m.signal
}

func (m *mailbox[T]) drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items
	m.items = nil
	return items
}

// any reports whether a queued item matches.
func (m *mailbox[T]) any(match func(T) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.items {
		if match(v) {
			return true
		}
	}
	return false
}
