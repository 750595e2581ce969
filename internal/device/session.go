package device

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoNotifySound is returned by PlayNotify when no usable sound is loaded.
var ErrNoNotifySound = errors.New("device: no notification sound")

//go:embed assets/notify.wav
var bundledNotify []byte

// BundledNotifySound returns the RIFF/WAVE notification sound shipped with
// the binary.
func BundledNotifySound() []byte {
	return bundledNotify
}

// Session owns the output device for the whole process.
//
// The device is opened lazily and may be released at any time (idle detach,
// hardware gone); the next Attach opens it again. A failed open marks the
// session broken: Works reports false until Reinit succeeds.
//
// Session is not synchronized; the player calls it under its mutex.
type Session struct {
	open   Opener
	device Device
	broken error

	notify      *Sound
	notifyVoice Voice
}

// NewSession creates a session opening devices through open. notifyWAV is
// the notification sound; a malformed one is logged and leaves the session
// without a notification sound.
func NewSession(open Opener, notifyWAV []byte) *Session {
	s := &Session{open: open}
	if len(notifyWAV) == 0 {
		return s
	}
	sound, err := ParseWAV(notifyWAV)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewSession",
			"error":    err.Error(),
		}).Error("Notification sound rejected, running without it")
		return s
	}
	s.notify = withLeadIn(sound, notifyLeadIn)
	return s
}

// Works reports whether the last open attempt succeeded.
func (s *Session) Works() bool {
	return s.broken == nil
}

// Err returns the setup error that disabled the session.
func (s *Session) Err() error {
	return s.broken
}

// Attached reports whether a connected device is open.
func (s *Session) Attached() bool {
	return s.device != nil && s.device.Connected()
}

// Device returns the open device, or nil.
func (s *Session) Device() Device {
	if !s.Attached() {
		return nil
	}
	return s.device
}

// Attach opens the device if needed.
func (s *Session) Attach() (Device, error) {
	if s.broken != nil {
		return nil, s.broken
	}
	if s.Attached() {
		return s.device, nil
	}
	if s.device != nil {
		// Disconnected: drop it before opening a fresh one.
		s.Detach()
	}

	device, err := s.open()
	if err != nil {
		s.broken = fmt.Errorf("open playback device: %w", err)
		logrus.WithFields(logrus.Fields{
			"function": "Attach",
			"error":    err.Error(),
		}).Error("Audio playback disabled")
		return nil, s.broken
	}
	s.device = device
	logrus.WithFields(logrus.Fields{
		"function": "Attach",
	}).Debug("Playback device opened")
	return device, nil
}

// Detach releases the device. Voices created from it become unusable.
func (s *Session) Detach() {
	if s.device == nil {
		return
	}
	if s.notifyVoice != nil {
		_ = s.notifyVoice.Close()
		s.notifyVoice = nil
	}
	if err := s.device.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Detach",
			"error":    err.Error(),
		}).Warn("Closing playback device failed")
	}
	s.device = nil
	logrus.WithFields(logrus.Fields{
		"function": "Detach",
	}).Debug("Playback device released")
}

// Reinit clears a setup failure and tries to open the device again.
func (s *Session) Reinit() error {
	s.Detach()
	s.broken = nil
	_, err := s.Attach()
	return err
}

// Close releases the device for good.
func (s *Session) Close() {
	s.Detach()
	s.broken = ErrClosed
}

// HasNotifySound reports whether a notification sound is loaded.
func (s *Session) HasNotifySound() bool {
	return s.notify != nil
}

// NotifyLength returns the playing time of the notification sound,
// lead-in included.
func (s *Session) NotifyLength() time.Duration {
	if s.notify == nil {
		return 0
	}
	return s.notify.Length()
}

// PlayNotify plays the notification sound from its start.
func (s *Session) PlayNotify() error {
	if s.notify == nil {
		return ErrNoNotifySound
	}
	device, err := s.Attach()
	if err != nil {
		return err
	}
	if s.notifyVoice == nil {
		voice, err := device.NewVoice()
		if err != nil {
			return fmt.Errorf("create notify voice: %w", err)
		}
		if err := voice.Queue(s.notify.Buffer()); err != nil {
			_ = voice.Close()
			return fmt.Errorf("queue notify sound: %w", err)
		}
		s.notifyVoice = voice
	}
	if err := s.notifyVoice.SetOffset(0); err != nil {
		return err
	}
	return s.notifyVoice.Play()
}

// NotifyPlaying reports whether the notification sound is still audible.
func (s *Session) NotifyPlaying() bool {
	if s.notifyVoice == nil {
		return false
	}
	state, err := s.notifyVoice.State()
	return err == nil && state == VoicePlaying
}
