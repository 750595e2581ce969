package confirm

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/chirp/internal/state"
)

func shown() Model {
	m := New()
	m.Show("Forget document?", `"Song A" leaves the catalogue.`, state.Document{ID: 7, Title: "Song A"})
	return m
}

func TestHandleKey(t *testing.T) {
	tests := []struct {
		key       string
		ok        bool
		confirmed bool
	}{
		{"enter", true, true},
		{"y", true, true},
		{"Y", true, true},
		{"esc", true, false},
		{"n", true, false},
		{"N", true, false},
		{"x", false, false},
		{"j", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := shown()
			res, ok := m.HandleKey(tt.key)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if res.Confirmed != tt.confirmed {
				t.Errorf("Confirmed = %v, want %v", res.Confirmed, tt.confirmed)
			}
			if ok && res.Document.ID != 7 {
				t.Errorf("Document = %d, want 7", res.Document.ID)
			}
			if m.Active() == ok {
				t.Errorf("Active = %v after key %q", m.Active(), tt.key)
			}
		})
	}
}

func TestHandleKey_Hidden(t *testing.T) {
	m := New()
	if _, ok := m.HandleKey("enter"); ok {
		t.Error("a hidden popup should not answer")
	}
}

func TestView(t *testing.T) {
	m := shown()
	view := m.View(60, 20)
	lines := strings.Split(view, "\n")
	if len(lines) != 7+(20-7)/2 {
		t.Fatalf("lines = %d", len(lines))
	}
	plain := ansi.Strip(view)
	for _, want := range []string{"Forget document?", `"Song A" leaves the catalogue.`, "esc/n cancel"} {
		if !strings.Contains(plain, want) {
			t.Errorf("view misses %q", want)
		}
	}
	for _, l := range lines {
		if w := ansi.StringWidth(l); w > 60 {
			t.Errorf("line width = %d, want <= 60", w)
		}
	}

	hidden := New()
	if hidden.View(60, 20) != "" {
		t.Error("hidden popup should render nothing")
	}
}

func TestCompose(t *testing.T) {
	base := "aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc"
	overlay := "\n   XY\n"
	got := Compose(base, overlay, 10)
	want := "aaaaaaaaaa\nbbbXYbbbbb\ncccccccccc"
	if got != want {
		t.Errorf("Compose = %q, want %q", got, want)
	}
}

func TestCompose_PadsShortBase(t *testing.T) {
	got := Compose("ab", "    Z", 6)
	if got != "ab  Z " {
		t.Errorf("Compose = %q, want %q", got, "ab  Z ")
	}
}

func TestCompose_KeepsWidthOverStyledBase(t *testing.T) {
	base := "\x1b[1mbold text here\x1b[0m"
	got := Compose(base, "  ##", 14)
	if w := ansi.StringWidth(got); w != 14 {
		t.Errorf("width = %d, want 14", w)
	}
	if !strings.Contains(ansi.Strip(got), "bo##") {
		t.Errorf("Compose = %q", ansi.Strip(got))
	}
}
