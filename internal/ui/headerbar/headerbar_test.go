package headerbar

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/chirp/internal/player"
)

func TestRender(t *testing.T) {
	got := ansi.Strip(Render(player.Voice, [2]int{3, 12}, 60))

	if !strings.HasPrefix(got, "chirp") {
		t.Errorf("expected the application name first, got %q", got)
	}
	if !strings.HasSuffix(got, "Songs (12) │ Voice messages (3)") {
		t.Errorf("unexpected tabs in %q", got)
	}
	if w := ansi.StringWidth(got); w != 60 {
		t.Errorf("width = %d, want 60", w)
	}
}

func TestRender_Narrow(t *testing.T) {
	if got := Render(player.Song, [2]int{}, 10); got != "" {
		t.Errorf("Render() = %q, want empty below 20 cells", got)
	}

	got := ansi.Strip(Render(player.Song, [2]int{}, 32))
	if strings.Contains(got, "chirp") {
		t.Errorf("name should be dropped when tabs fill the line, got %q", got)
	}
}
