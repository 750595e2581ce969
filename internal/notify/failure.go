package notify

import (
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/tags"
)

// errorIcon is the freedesktop icon name used when a track has no art.
const errorIcon = "dialog-error"

// DefaultTimeout is how long failure notifications stay on screen, in ms.
const DefaultTimeout int32 = 5000

// PlaybackFailure builds the notification shown when a track fails to
// play or the notification sound cannot be played.
func PlaybackFailure(ev playback.ErrorEvent, timeout int32) Notification {
	n := Notification{
		Title:   "Playback failed",
		Body:    ev.Message(),
		Icon:    errorIcon,
		Timeout: timeout,
		Urgency: UrgencyNormal,
	}
	if ev.Document == nil {
		return n
	}
	if ev.Document.Title != "" {
		n.Title = ev.Document.Title
	}
	if ev.Document.Path != "" {
		if art := tags.FolderArt(ev.Document.Path); art != "" {
			n.Icon = art
		}
	}
	return n
}

// Watch turns the error events of sub into desktop notifications until
// the subscription ends. Consecutive failures replace each other instead
// of stacking up.
func Watch(n Notifier, sub *playback.Subscription, timeout int32) {
	log := logrus.WithField("component", "notify")
	var lastID uint32
	for {
		select {
		case <-sub.Done:
			return
		case ev := <-sub.Error:
			notif := PlaybackFailure(ev, timeout)
			notif.ReplacesID = lastID
			id, err := n.Notify(notif)
			if err != nil {
				log.WithFields(logrus.Fields{
					"function": "Watch",
					"error":    err.Error(),
				}).Warn("Failed to send desktop notification")
				continue
			}
			lastID = id
		}
	}
}
