package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/chirp/internal/player"
)

// Config is the user configuration read from config.toml.
type Config struct {
	// Desktop notification when a track fails to play (default: true)
	Notifications *bool  `koanf:"notifications"`
	Icons         string `koanf:"icons"` // "nerd", "unicode", or "none"

	Audio   AudioConfig   `koanf:"audio"`
	Log     LogConfig     `koanf:"log"`
	Library LibraryConfig `koanf:"library"`
}

// AudioConfig tunes the playback core. Zero values select the defaults.
type AudioConfig struct {
	VoiceSlots       int     `koanf:"voice_slots"`        // simultaneous voice messages (default: 4)
	SongSlots        int     `koanf:"song_slots"`         // simultaneous songs (default: 1)
	FadeDurationMs   int     `koanf:"fade_duration_ms"`   // fade in/out length (default: 500)
	PositionDelta    int64   `koanf:"position_delta"`     // samples between position updates (default: 2400)
	PreloadSamples   int64   `koanf:"preload_samples"`    // decoded audio kept ahead (default: 96000)
	FadingTickMs     int     `koanf:"fading_tick_ms"`     // fader period while fading (default: 7)
	PositionTickMs   int     `koanf:"position_tick_ms"`   // fader period while playing (default: 100)
	DetachTimeoutMs  int     `koanf:"detach_timeout_ms"`  // idle time before releasing the device (default: 500)
	VoiceFrequency   int     `koanf:"voice_frequency"`    // output rate of voice messages (default: 48000)
	BufferSize       int     `koanf:"buffer_size"`        // bytes decoded per load pass (default: 262144)
	SongVolume       float64 `koanf:"song_volume"`        // initial song volume, 0-1 (default: 1)
	SuppressAllGain  float64 `koanf:"suppress_all_gain"`  // gain while the notify sound plays (default: 0.2)
	SuppressSongGain float64 `koanf:"suppress_song_gain"` // song gain while a voice message plays (default: 0.05)
	SuppressFadeMs   int     `koanf:"suppress_fade_ms"`   // ramp-in of notify suppression (default: 150)
	NotifySound      string  `koanf:"notify_sound"`       // RIFF/WAVE file, empty for the bundled sound
	DeviceRate       int     `koanf:"device_rate"`        // speaker output rate (default: 48000)
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `koanf:"level"` // "debug", "info", "warn" or "error" (default: "info")
	File  string `koanf:"file"`  // log file, empty for the XDG state dir
}

// LibraryConfig lists where songs are scanned from.
type LibraryConfig struct {
	Sources []string `koanf:"sources"`
}

// Load reads ~/.config/chirp/config.toml, then ./config.toml.
func Load() (*Config, error) {
	return loadPaths(getConfigPaths())
}

// loadPaths loads the existing files of paths in order (last wins).
func loadPaths(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in library sources
	for i, src := range cfg.Library.Sources {
		cfg.Library.Sources[i] = expandPath(src)
	}

	cfg.Audio.NotifySound = expandPath(cfg.Audio.NotifySound)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/chirp/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "chirp", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// expandPath resolves a leading ~ to the home directory. ~user paths are
// left alone.
func expandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// NotificationsEnabled returns whether failures raise desktop notifications.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// GetAudioConfig returns the audio configuration with defaults applied.
func (c *Config) GetAudioConfig() AudioConfig {
	cfg := c.Audio

	// Apply defaults
	if cfg.VoiceSlots <= 0 {
		cfg.VoiceSlots = 4
	}
	if cfg.SongSlots <= 0 {
		cfg.SongSlots = 1
	}
	if cfg.FadeDurationMs <= 0 {
		cfg.FadeDurationMs = 500
	}
	if cfg.PositionDelta <= 0 {
		cfg.PositionDelta = 2400
	}
	if cfg.PreloadSamples <= 0 {
		cfg.PreloadSamples = 2 * 48000
	}
	if cfg.FadingTickMs <= 0 {
		cfg.FadingTickMs = 7
	}
	if cfg.PositionTickMs <= 0 {
		cfg.PositionTickMs = 100
	}
	if cfg.DetachTimeoutMs <= 0 {
		cfg.DetachTimeoutMs = 500
	}
	if cfg.VoiceFrequency <= 0 {
		cfg.VoiceFrequency = 48000
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256 * 1024
	}
	if cfg.SongVolume <= 0 || cfg.SongVolume > 1 {
		cfg.SongVolume = 1
	}
	if cfg.SuppressAllGain <= 0 || cfg.SuppressAllGain > 1 {
		cfg.SuppressAllGain = 0.2
	}
	if cfg.SuppressSongGain <= 0 || cfg.SuppressSongGain > 1 {
		cfg.SuppressSongGain = 0.05
	}
	if cfg.SuppressFadeMs <= 0 {
		cfg.SuppressFadeMs = 150
	}
	if cfg.DeviceRate <= 0 {
		cfg.DeviceRate = 48000
	}

	return cfg
}

// PlayerOptions converts the audio configuration to player options.
func (a AudioConfig) PlayerOptions() player.Options {
	return player.Options{
		VoiceSlots:       a.VoiceSlots,
		SongSlots:        a.SongSlots,
		FadeDuration:     ms(a.FadeDurationMs),
		PositionDelta:    a.PositionDelta,
		PreloadSamples:   a.PreloadSamples,
		FadingTick:       ms(a.FadingTickMs),
		PositionTick:     ms(a.PositionTickMs),
		DetachTimeout:    ms(a.DetachTimeoutMs),
		VoiceFrequency:   a.VoiceFrequency,
		BufferSize:       a.BufferSize,
		SongVolume:       a.SongVolume,
		SuppressAllGain:  a.SuppressAllGain,
		SuppressSongGain: a.SuppressSongGain,
		SuppressAllFade:  ms(a.SuppressFadeMs),
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
