package nowplaying

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/chirp/internal/playback"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
)

func TestRender_Stopped(t *testing.T) {
	got := ansi.Strip(Render(State{Category: player.Song, Volume: 1}, 40, false))

	if !strings.Contains(got, "Songs") {
		t.Errorf("expected category name, got:\n%s", got)
	}
	if !strings.Contains(got, "Nothing playing") {
		t.Errorf("expected idle line, got:\n%s", got)
	}
	if !strings.Contains(got, "100%") {
		t.Errorf("expected song volume, got:\n%s", got)
	}
	if lines := strings.Split(got, "\n"); len(lines) != Height {
		t.Errorf("rendered %d lines, want %d", len(lines), Height)
	}
}

func TestRender_Playing(t *testing.T) {
	s := State{
		Category: player.Song,
		Status:   playback.StatePlaying,
		Title:    "Song A",
		Position: 30 * time.Second,
		Duration: time.Minute,
		Volume:   0.5,
	}
	got := ansi.Strip(Render(s, 50, true))

	for _, want := range []string{"Song A", "0:30", "1:00", " 50%"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
	for i, line := range strings.Split(got, "\n") {
		if w := ansi.StringWidth(line); w != 50 {
			t.Errorf("line %d width = %d, want 50", i, w)
		}
	}
}

func TestRender_VoiceShowsPerformer(t *testing.T) {
	s := State{
		Category:  player.Voice,
		Status:    playback.StatePaused,
		Title:     "voice-001.ogg",
		Performer: "Alice",
		Duration:  5 * time.Second,
	}
	got := ansi.Strip(Render(s, 50, false))

	if !strings.Contains(got, "Alice") {
		t.Errorf("expected performer, got:\n%s", got)
	}
	if strings.Contains(got, "%") {
		t.Errorf("voice panel must not show the volume, got:\n%s", got)
	}
}

func TestRender_MutedVolume(t *testing.T) {
	got := ansi.Strip(Render(State{Category: player.Song}, 40, false))
	if !strings.Contains(got, "mute   0%") {
		t.Errorf("expected muted volume, got:\n%s", got)
	}
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name       string
		status     playback.State
		position   time.Duration
		width      int
		wantPrefix string
		wantFilled int
	}{
		{"half", playback.StatePlaying, 30 * time.Second, 31, ">  0:30", 8},
		{"paused start", playback.StatePaused, 0, 31, "||  0:00", 0},
		{"stopped end", playback.StateStopped, time.Minute, 30, "[]  1:00", 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Status: tt.status, Position: tt.position, Duration: time.Minute}
			got := ansi.Strip(RenderProgress(s, tt.width))

			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("got %q, want prefix %q", got, tt.wantPrefix)
			}
			if !strings.HasSuffix(got, "1:00") {
				t.Errorf("got %q, want duration suffix", got)
			}
			if n := strings.Count(got, filledBlock); n != tt.wantFilled {
				t.Errorf("filled = %d, want %d", n, tt.wantFilled)
			}
			if w := ansi.StringWidth(got); w != tt.width {
				t.Errorf("width = %d, want %d", w, tt.width)
			}
		})
	}
}

func TestRenderProgress_Narrow(t *testing.T) {
	s := State{Status: playback.StatePlaying, Position: 5 * time.Second, Duration: time.Minute}
	got := RenderProgress(s, 16)

	if strings.Contains(got, emptyBlock) {
		t.Errorf("narrow progress must not draw a bar, got %q", got)
	}
	if got != ">  0:05 / 1:00  " {
		t.Errorf("got %q", got)
	}
}

func TestNewState(t *testing.T) {
	store := state.NewMock()
	docs, err := store.RegisterDocuments([]state.Document{{
		Category:  player.Voice,
		Path:      "/voice/a.ogg",
		Title:     "a.ogg",
		Performer: "Bob",
		Duration:  7 * time.Second,
	}})
	if err != nil {
		t.Fatalf("RegisterDocuments() error: %v", err)
	}
	svc := playback.New(player.NewMock(), store)
	defer svc.Close()

	if got := NewState(svc, player.Voice); got.Title != "" || got.Status != playback.StateStopped {
		t.Errorf("idle state = %+v", got)
	}

	if err := svc.Play(player.Voice, docs[0].ID); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	got := NewState(svc, player.Voice)
	if got.Status != playback.StatePlaying {
		t.Errorf("Status = %v, want Playing", got.Status)
	}
	if got.Title != "a.ogg" || got.Performer != "Bob" {
		t.Errorf("Title/Performer = %q/%q", got.Title, got.Performer)
	}
	if got.Duration != 7*time.Second {
		t.Errorf("Duration = %v, want 7s", got.Duration)
	}
	if got.Volume != 1 {
		t.Errorf("Volume = %v, want 1", got.Volume)
	}
}
