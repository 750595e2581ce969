package keymap

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "list"
}

// Bindings contains all key bindings, used for dispatch and help.
var Bindings = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Toggle help", "global"},
	{ActionSwitchCategory, []string{"tab"}, "Switch songs / voice messages", "global"},
	{ActionRescan, []string{"r"}, "Rescan library", "global"},
	{ActionReinit, []string{"ctrl+r"}, "Reopen audio device", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionStop, []string{"s"}, "Stop", "playback"},
	{ActionStopAll, []string{"S"}, "Stop everything", "playback"},
	{ActionSeekBack, []string{"shift+left", "H"}, "Seek -5s", "playback"},
	{ActionSeekForward, []string{"shift+right", "L"}, "Seek +5s", "playback"},
	{ActionVolumeUp, []string{"+", "="}, "Song volume up", "playback"},
	{ActionVolumeDown, []string{"-"}, "Song volume down", "playback"},
	{ActionNotify, []string{"n"}, "Play notification sound", "playback"},
	{ActionNextSong, []string{"pgdown"}, "Next song", "playback"},
	{ActionPreviousSong, []string{"pgup"}, "Previous song", "playback"},

	// Document list
	{ActionMoveUp, []string{"k", "up"}, "Move up", "list"},
	{ActionMoveDown, []string{"j", "down"}, "Move down", "list"},
	{ActionJumpStart, []string{"g", "home"}, "First document", "list"},
	{ActionJumpEnd, []string{"G", "end"}, "Last document", "list"},
	{ActionSelect, []string{"enter"}, "Play", "list"},
	{ActionDelete, []string{"d", "delete"}, "Forget document", "list"},
	{ActionFilter, []string{"/"}, "Filter", "list"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range Bindings {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
