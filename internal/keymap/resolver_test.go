package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testBindings = []Binding{
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionMoveUp, []string{"k", "up"}, "Move up", "list"},
	{ActionMoveDown, []string{"j", "down"}, "Move down", "list"},
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(testBindings)
	tests := []struct {
		key  string
		want Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{" ", ActionPlayPause},
		{"up", ActionMoveUp},
		{"j", ActionMoveDown},
		{"unknown", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.key))
		})
	}
}

func TestResolver_KeysFor(t *testing.T) {
	r := NewResolver(testBindings)
	assert.Equal(t, []string{"q", "ctrl+c"}, r.KeysFor(ActionQuit))
	assert.Equal(t, []string{"k", "up"}, r.KeysFor(ActionMoveUp))
	assert.Nil(t, r.KeysFor(ActionNotify))
}

func TestResolver_Key(t *testing.T) {
	r := NewResolver(testBindings)
	assert.Equal(t, "q", r.Key(ActionQuit))
	assert.Equal(t, "space", r.Key(ActionPlayPause))
	assert.Empty(t, r.Key(ActionNotify))
}

func TestResolver_MergesRepeatedBindings(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionDelete, []string{"d", "delete"}, "Forget", "list"},
		{ActionDelete, []string{"d"}, "Forget", "global"},
	})
	assert.Equal(t, []string{"d", "delete"}, r.KeysFor(ActionDelete))
	assert.Empty(t, r.Conflicts())
}

func TestResolver_Conflicts(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionStop, []string{"s", "x"}, "Stop", "playback"},
		{ActionStopAll, []string{"x", "s", "S"}, "Stop everything", "playback"},
		{ActionQuit, []string{"x"}, "Quit", "global"},
	})
	assert.Equal(t, []string{"s", "x"}, r.Conflicts())
	assert.Equal(t, ActionStop, r.Resolve("x"), "the first binding wins")
	assert.Equal(t, []string{"S"}, r.KeysFor(ActionStopAll))
	assert.Nil(t, r.KeysFor(ActionQuit))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "space", Label(" "))
	assert.Equal(t, "ctrl+r", Label("ctrl+r"))
}
