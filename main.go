package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/app"
	"github.com/llehouerou/chirp/internal/config"
	"github.com/llehouerou/chirp/internal/device"
	"github.com/llehouerou/chirp/internal/icons"
	"github.com/llehouerou/chirp/internal/logging"
	"github.com/llehouerou/chirp/internal/mpris"
	"github.com/llehouerou/chirp/internal/notify"
	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
	"github.com/llehouerou/chirp/internal/stderr"
)

// speakerLatency is the output buffer of the shared speaker stream.
const speakerLatency = 100 * time.Millisecond

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := logging.Setup(cfg.Log, true)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logFile.Close()
	log := logrus.WithField("component", "main")

	// Audio backends print to fd 2, which would corrupt the terminal UI.
	if err := stderr.Start(func(line string) {
		logrus.WithField("component", "stderr").Debug(line)
	}); err != nil {
		log.WithFields(logrus.Fields{
			"function": "run",
			"error":    err.Error(),
		}).Warn("Failed to capture native stderr")
	}
	defer stderr.Stop()

	icons.Init(cfg.Icons)

	store, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer store.Close()

	audio := cfg.GetAudioConfig()
	session := device.NewSession(
		device.SpeakerOpener(audio.DeviceRate, speakerLatency),
		notifySound(audio.NotifySound, log),
	)
	p := player.New(session, store, audio.PlayerOptions())
	defer p.Close()

	svc := playback.New(p, store)
	defer svc.Close()

	if adapter, err := mpris.New(svc, store); err != nil {
		log.WithFields(logrus.Fields{
			"function": "run",
			"error":    err.Error(),
		}).Warn("MPRIS unavailable")
	} else {
		defer adapter.Close()
	}

	if cfg.NotificationsEnabled() {
		if n, err := notify.New(); err != nil {
			log.WithFields(logrus.Fields{
				"function": "run",
				"error":    err.Error(),
			}).Warn("Desktop notifications unavailable")
		} else {
			go notify.Watch(n, svc.Subscribe(), notify.DefaultTimeout)
		}
	}

	m := app.New(svc, store, cfg.Library.Sources)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// notifySound reads the configured notification sound, falling back to the
// bundled one.
func notifySound(path string, log *logrus.Entry) []byte {
	if path == "" {
		return device.BundledNotifySound()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.WithFields(logrus.Fields{
			"function": "notifySound",
			"path":     path,
			"error":    err.Error(),
		}).Warn("Failed to read notification sound, using the bundled one")
		return device.BundledNotifySound()
	}
	return data
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
