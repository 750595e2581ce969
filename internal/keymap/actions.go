// Package keymap defines key bindings and action dispatch for the demo front-end.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit           Action = "quit"
	ActionHelp           Action = "help"
	ActionSwitchCategory Action = "switch_category"
	ActionRescan         Action = "rescan"
	ActionReinit         Action = "reinit"

	// Playback actions
	ActionPlayPause    Action = "play_pause"
	ActionStop         Action = "stop"
	ActionStopAll      Action = "stop_all"
	ActionSeekForward  Action = "seek_forward"
	ActionSeekBack     Action = "seek_back"
	ActionVolumeUp     Action = "volume_up"
	ActionVolumeDown   Action = "volume_down"
	ActionNotify       Action = "notify"
	ActionNextSong     Action = "next_song"
	ActionPreviousSong Action = "previous_song"

	// Navigation actions
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"

	// Selection/activation actions
	ActionSelect Action = "select" // enter - play the document under the cursor
	ActionDelete Action = "delete" // d/delete - forget the document
	ActionFilter Action = "filter" // / - narrow the list by title or performer
)
