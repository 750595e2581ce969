// Package notify shows playback failures as freedesktop desktop
// notifications.
package notify

// Urgency is the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification is one desktop notification.
type Notification struct {
	Title string
	Body  string
	// Icon is an image path or a themed icon name.
	Icon string
	// Timeout in ms. -1 leaves it to the server, 0 keeps it until closed.
	Timeout int32
	// ReplacesID is the id of a notification to update in place.
	ReplacesID uint32
	Urgency    Urgency
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify shows n and returns its id. A notifier without a
	// notification server returns 0 and no error.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

// nopNotifier drops everything.
type nopNotifier struct{}

func (nopNotifier) Notify(Notification) (uint32, error) { return 0, nil }

func (nopNotifier) Close(uint32) error { return nil }
