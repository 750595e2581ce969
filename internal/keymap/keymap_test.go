package keymap

import "testing"

func TestByContext(t *testing.T) {
	for _, b := range ByContext("global") {
		if b.Context != "global" {
			t.Errorf("ByContext(global) returned %s binding %q", b.Context, b.Action)
		}
	}
	if got := ByContext("nonexistent"); len(got) != 0 {
		t.Errorf("ByContext(nonexistent) = %v, want empty", got)
	}
}

func TestByContextPlaybackBindings(t *testing.T) {
	playbackBindings := ByContext("playback")

	expectedActions := []Action{
		ActionPlayPause,
		ActionStop,
		ActionSeekForward,
		ActionSeekBack,
		ActionNotify,
	}

	for _, action := range expectedActions {
		found := false
		for _, b := range playbackBindings {
			if b.Action == action {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected action %q in playback bindings", action)
		}
	}
}

func TestBindingsHaveRequiredFields(t *testing.T) {
	for i, b := range Bindings {
		if b.Action == "" {
			t.Errorf("binding[%d] has empty Action", i)
		}
		if len(b.Keys) == 0 {
			t.Errorf("binding[%d] (%s) has no Keys", i, b.Action)
		}
		if b.Description == "" {
			t.Errorf("binding[%d] (%s) has empty Description", i, b.Action)
		}
	}
}

func TestBindingsHaveValidContexts(t *testing.T) {
	validContexts := map[string]bool{
		"global":   true,
		"playback": true,
		"list":     true,
	}

	for i, b := range Bindings {
		if !validContexts[b.Context] {
			t.Errorf("binding[%d] (%s) has invalid context: %q", i, b.Action, b.Context)
		}
	}
}

func TestBindingsHaveNoKeyConflicts(t *testing.T) {
	if c := NewResolver(Bindings).Conflicts(); len(c) != 0 {
		t.Errorf("keys bound to several actions: %v", c)
	}
}

func TestBindingsCoverEveryAction(t *testing.T) {
	r := NewResolver(Bindings)
	for _, a := range []Action{
		ActionQuit, ActionHelp, ActionSwitchCategory, ActionRescan, ActionReinit,
		ActionPlayPause, ActionStop, ActionStopAll, ActionSeekForward, ActionSeekBack,
		ActionVolumeUp, ActionVolumeDown, ActionNotify, ActionNextSong, ActionPreviousSong,
		ActionMoveUp, ActionMoveDown, ActionJumpStart, ActionJumpEnd,
		ActionSelect, ActionDelete, ActionFilter,
	} {
		if r.Key(a) == "" {
			t.Errorf("action %q has no key", a)
		}
	}
}
