package doclist

import "testing"

func TestCursorMove(t *testing.T) {
	tests := []struct {
		name       string
		initial    int
		delta      int
		len        int
		height     int
		wantPos    int
		wantOffset int
	}{
		{"down without scroll", 0, 1, 10, 5, 1, 0},
		{"down into margin scrolls", 0, 3, 10, 5, 3, 1},
		{"up clamps to 0", 2, -5, 10, 5, 0, 0},
		{"down clamps to len-1", 5, 15, 10, 5, 9, 5},
		{"down scrolls", 2, 3, 10, 5, 5, 3},
		{"short list never scrolls", 0, 2, 3, 5, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cursor{pos: tt.initial, margin: 2}
			c.move(tt.delta, tt.len, tt.height)
			if c.pos != tt.wantPos {
				t.Errorf("pos = %d, want %d", c.pos, tt.wantPos)
			}
			if c.offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", c.offset, tt.wantOffset)
			}
		})
	}
}

func TestCursorMove_EmptyList(t *testing.T) {
	c := cursor{pos: 5, margin: 2}
	c.move(1, 0, 5)
	if c.pos != 5 {
		t.Errorf("move on empty list changed pos to %d", c.pos)
	}
}

func TestCursorEnsureVisible(t *testing.T) {
	tests := []struct {
		name       string
		margin     int
		pos        int
		offset     int
		height     int
		wantOffset int
	}{
		{"in view", 2, 5, 3, 5, 3},
		{"above view", 2, 1, 5, 5, 0},
		{"below view", 2, 8, 0, 5, 5},
		{"no margin in view", 0, 4, 0, 5, 0},
		{"no margin below", 0, 5, 0, 5, 1},
		{"margin wider than viewport", 5, 4, 0, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cursor{pos: tt.pos, offset: tt.offset, margin: tt.margin}
			c.ensureVisible(10, tt.height)
			if c.offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", c.offset, tt.wantOffset)
			}
		})
	}
}

func TestCursorClampTo(t *testing.T) {
	c := cursor{pos: 8, offset: 5, margin: 2}
	c.clampTo(5, 3)
	if c.pos != 4 || c.offset != 2 {
		t.Errorf("after shrinking to 5: pos=%d offset=%d, want 4/2", c.pos, c.offset)
	}

	c.clampTo(0, 3)
	if c.pos != 0 || c.offset != 0 {
		t.Errorf("after emptying: pos=%d offset=%d, want 0/0", c.pos, c.offset)
	}
}

func TestCursorVisibleRange(t *testing.T) {
	tests := []struct {
		name      string
		offset    int
		len       int
		height    int
		wantStart int
		wantEnd   int
	}{
		{"normal", 2, 10, 5, 2, 7},
		{"at end", 7, 10, 5, 7, 10},
		{"empty list", 0, 0, 5, 0, 0},
		{"zero height", 0, 10, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cursor{offset: tt.offset}
			start, end := c.visibleRange(tt.len, tt.height)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("visibleRange() = (%d, %d), want (%d, %d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
