//go:build linux

package notify

import (
	"os"
	"testing"
)

func TestBusNotifier_NotifyAndReplace(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}
	n, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, ok := n.(*busNotifier); !ok {
		t.Skip("session bus unreachable")
	}

	id, err := n.Notify(Notification{Title: "Chirp test", Body: "first", Timeout: 1000, Urgency: UrgencyLow})
	if err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if id == 0 {
		t.Fatal("Notify() returned id 0")
	}
	again, err := n.Notify(Notification{Title: "Chirp test", Body: "second", Timeout: 1000, ReplacesID: id})
	if err != nil {
		t.Fatalf("replacing Notify() error: %v", err)
	}
	if again != id {
		t.Errorf("replacing id = %d, want %d", again, id)
	}
	if err := n.Close(id); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
