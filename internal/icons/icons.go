// Package icons provides the glyphs of the demo front-end in three styles.
package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Song   string
	Voice  string
	Play   string
	Pause  string
	Stop   string
	Volume string
	Mute   string
	Error  string
}

var (
	nerdIcons = Icons{
		Song:   "\uf001 ",     // nf-fa-music
		Voice:  "\U000f036c ", // nf-md-microphone
		Play:   "\uf04b",      // nf-fa-play
		Pause:  "\uf04c",      // nf-fa-pause
		Stop:   "\uf04d",      // nf-fa-stop
		Volume: "\U000f057e",  // nf-md-volume_high
		Mute:   "\U000f075f",  // nf-md-volume_off
		Error:  "\uf071",      // nf-fa-warning
	}

	unicodeIcons = Icons{
		Song:   "🎵 ",
		Voice:  "🎤 ",
		Play:   "▶",
		Pause:  "⏸",
		Stop:   "⏹",
		Volume: "🔊",
		Mute:   "🔇",
		Error:  "⚠",
	}

	noneIcons = Icons{
		Song:   "",
		Voice:  "",
		Play:   ">",
		Pause:  "||",
		Stop:   "[]",
		Volume: "vol",
		Mute:   "mute",
		Error:  "!",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init selects the icon style. Unknown styles fall back to none.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	default:
		current = noneIcons
	}
}

// FormatSong formats a song title with the appropriate icon.
func FormatSong(name string) string {
	return current.Song + name
}

// FormatVoice formats a voice message title with the appropriate icon.
func FormatVoice(name string) string {
	return current.Voice + name
}

// Play returns the playing indicator.
func Play() string {
	return current.Play
}

// Pause returns the paused indicator.
func Pause() string {
	return current.Pause
}

// Stop returns the stopped indicator.
func Stop() string {
	return current.Stop
}

// Volume returns the volume icon.
func Volume() string {
	return current.Volume
}

// VolumeMute returns the muted volume icon.
func VolumeMute() string {
	return current.Mute
}

// Error returns the error marker.
func Error() string {
	return current.Error
}
