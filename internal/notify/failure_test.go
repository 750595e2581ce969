package notify

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/llehouerou/chirp/internal/errmsg"
	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
)

// mockNotifier records notifications for testing.
type mockNotifier struct {
	mu            sync.Mutex
	notifications []Notification
	lastID        uint32
	sent          chan struct{}
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{sent: make(chan struct{}, 16)}
}

func (m *mockNotifier) Notify(n Notification) (uint32, error) {
	m.mu.Lock()
	defer func() {
		m.mu.Unlock()
		m.sent <- struct{}{}
	}()
	if n.ReplacesID != 0 {
		m.notifications = append(m.notifications, n)
		return n.ReplacesID, nil
	}
	m.lastID++
	m.notifications = append(m.notifications, n)
	return m.lastID, nil
}

func (m *mockNotifier) Close(_ uint32) error {
	return nil
}

func (m *mockNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-m.sent:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a notification")
	}
}

func (m *mockNotifier) all() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.notifications...)
}

func TestPlaybackFailure_Document(t *testing.T) {
	ev := playback.ErrorEvent{
		Operation: errmsg.OpPlaybackStart,
		Document:  &playback.Track{Title: "Song A", Path: "/nonexistent/dir/a.mp3"},
		Err:       errors.New("unsupported codec"),
	}

	n := PlaybackFailure(ev, 3000)

	if n.Title != "Song A" {
		t.Errorf("Title = %q, want %q", n.Title, "Song A")
	}
	if n.Body != ev.Message() {
		t.Errorf("Body = %q, want %q", n.Body, ev.Message())
	}
	if n.Icon != errorIcon {
		t.Errorf("Icon = %q, want %q", n.Icon, errorIcon)
	}
	if n.Timeout != 3000 {
		t.Errorf("Timeout = %d, want 3000", n.Timeout)
	}
	if n.Urgency != UrgencyNormal {
		t.Errorf("Urgency = %d, want UrgencyNormal", n.Urgency)
	}
}

func TestPlaybackFailure_NotificationSound(t *testing.T) {
	ev := playback.ErrorEvent{Operation: errmsg.OpNotify, Err: errors.New("device busy")}

	n := PlaybackFailure(ev, DefaultTimeout)

	if n.Title != "Playback failed" {
		t.Errorf("Title = %q, want %q", n.Title, "Playback failed")
	}
	if n.Body != errmsg.Format(errmsg.OpNotify, ev.Err) {
		t.Errorf("Body = %q", n.Body)
	}
}

func TestWatch_ForwardsErrors(t *testing.T) {
	p := player.NewMock()
	svc := playback.New(p, state.NewMock())
	sub := svc.Subscribe()
	mock := newMockNotifier()

	done := make(chan struct{})
	go func() {
		Watch(mock, sub, DefaultTimeout)
		close(done)
	}()

	p.SetNotifyError(errors.New("device busy"))
	if err := svc.Notify(); err == nil {
		t.Fatal("Notify() expected error")
	}
	mock.wait(t)
	if err := svc.Notify(); err == nil {
		t.Fatal("Notify() expected error")
	}
	mock.wait(t)

	got := mock.all()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].ReplacesID != 0 {
		t.Errorf("first ReplacesID = %d, want 0", got[0].ReplacesID)
	}
	if got[1].ReplacesID != 1 {
		t.Errorf("second ReplacesID = %d, want 1", got[1].ReplacesID)
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after the service closed")
	}
}

func TestPlaybackFailure_UsesCoverArt(t *testing.T) {
	dir := t.TempDir()
	track := filepath.Join(dir, "01-song.mp3")
	cover := filepath.Join(dir, "cover.jpg")
	for _, p := range []string{track, cover} {
		if err := os.WriteFile(p, []byte{0xFF, 0xD8, 0xFF}, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	n := PlaybackFailure(playback.ErrorEvent{
		Operation: errmsg.OpPlaybackDecode,
		Document:  &playback.Track{Title: "Song", Path: track},
		Err:       errors.New("corrupt frame"),
	}, DefaultTimeout)

	if n.Icon != cover {
		t.Errorf("Icon = %q, want %q", n.Icon, cover)
	}
}
