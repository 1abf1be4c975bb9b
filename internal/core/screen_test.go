package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 || s.Height() != 24 {
		t.Fatalf("dimensions = %dx%d, expected 80x24", s.Width(), s.Height())
	}
	for y := range s.Height() {
		for x := range s.Width() {
			if c := s.GetCell(x, y); c != blank {
				t.Fatalf("new screen should be blank, got %+v at (%d, %d)", c, x, y)
			}
		}
	}

	if z := NewScreen(-3, 2); z.Width() != 0 || z.String() != "\n" {
		t.Errorf("negative width should clamp to 0, got %d %q", z.Width(), z.String())
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.Set(5, 5, 'X')
	s.SetWithColor(6, 5, 'O', ColorYellow)
	if s.Get(5, 5) != 'X' || s.GetCell(5, 5).Color != ColorDefault {
		t.Errorf("GetCell(5, 5) = %+v", s.GetCell(5, 5))
	}
	if got := s.GetCell(6, 5); got.Rune != 'O' || got.Color != ColorYellow {
		t.Errorf("GetCell(6, 5) = %+v", got)
	}

	// Out of bounds is silent
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.SetWithColor(0, -1, 'A', ColorRed)
	s.SetWithColor(0, 100, 'A', ColorRed)

	if s.Get(-1, 0) != ' ' || s.Get(100, 0) != ' ' {
		t.Error("out of bounds Get should return space")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawTextWithColor(0, 1, "XXXX", ColorRed)
	s.Clear()

	for y := range 3 {
		for x := range 4 {
			if s.GetCell(x, y) != blank {
				t.Fatalf("Clear left %+v at (%d, %d)", s.GetCell(x, y), x, y)
			}
		}
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(6, 2)
	s.DrawTextWithColor(3, 0, "GG!!", ColorGreen)

	if row(s, 0) != "   GG!" {
		t.Errorf("Row(0) = %q, text should be clipped at the right edge", row(s, 0))
	}
	if s.GetCell(4, 0).Color != ColorGreen {
		t.Errorf("expected green text, got %+v", s.GetCell(4, 0))
	}

	// Multi-byte runes take one cell each.
	s.DrawText(0, 1, "▒▒>")
	if s.Get(2, 1) != '>' {
		t.Errorf("expected '>' at x=2, got %q", s.Get(2, 1))
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawTextCentered(2, "GG", ColorDefault)

	x := (20 - 2) / 2
	if s.Get(x, 2) != 'G' || s.Get(x+1, 2) != 'G' {
		t.Errorf("text not centered: %q", row(s, 2))
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawBox(NewRect(1, 1, 5, 4), ColorGray)

	corners := map[[2]int]rune{
		{1, 1}: '┌',
		{5, 1}: '┐',
		{1, 4}: '└',
		{5, 4}: '┘',
	}
	for pos, want := range corners {
		if got := s.Get(pos[0], pos[1]); got != want {
			t.Errorf("corner %v = %q, expected %q", pos, got, want)
		}
	}
	for x := 2; x < 5; x++ {
		if s.Get(x, 1) != '─' || s.Get(x, 4) != '─' {
			t.Errorf("horizontal edge missing at x=%d", x)
		}
	}
	for y := 2; y < 4; y++ {
		if s.Get(1, y) != '│' || s.Get(5, y) != '│' {
			t.Errorf("vertical edge missing at y=%d", y)
		}
	}
	if s.GetCell(1, 1).Color != ColorGray {
		t.Error("box should use the given color")
	}
	if s.Get(3, 2) != ' ' {
		t.Error("box interior should stay empty")
	}
}

func TestScreenDrawHLine(t *testing.T) {
	s := NewScreen(10, 5)
	s.DrawHLine(2, 2, 5, '─', ColorGray)

	if row(s, 2) != "  ─────   " {
		t.Errorf("Row(2) = %q", row(s, 2))
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawText(0, 0, "AAAAA")
	s.DrawTextWithColor(0, 1, "BBBBB", ColorBlue)
	s.DrawText(0, 2, "CCCCC")

	if got, want := s.String(), "AAAAA\nBBBBB\nCCCCC"; got != want {
		t.Errorf("String() = %q, expected %q", got, want)
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawTextWithColor(0, 0, "Hello", ColorCyan)
	s.DrawText(0, 5, "World")

	s.Resize(8, 4)
	if s.Width() != 8 || s.Height() != 4 {
		t.Fatalf("after resize, dimensions should be 8x4, got %dx%d", s.Width(), s.Height())
	}
	if !strings.HasPrefix(row(s, 0), "Hello") || s.GetCell(0, 0).Color != ColorCyan {
		t.Errorf("content should be preserved, row 0 = %q", row(s, 0))
	}

	s.Resize(15, 8)
	if !strings.HasPrefix(row(s, 0), "Hello") {
		t.Errorf("content should be preserved after enlarging, row 0 = %q", row(s, 0))
	}
	if row(s, 5) != strings.Repeat(" ", 15) {
		t.Errorf("rows cut by the shrink should be blank, got %q", row(s, 5))
	}
}

func TestScreenRow(t *testing.T) {
	s := NewScreen(10, 5)
	s.DrawText(0, 2, "Test")

	if row := row(s, 2); row != "Test      " {
		t.Errorf("Row(2) = %q", row)
	}
	if row := row(s, -1); row != strings.Repeat(" ", 10) {
		t.Errorf("out of range row = %q", row)
	}
}

func row(s *Screen, y int) string {
	return strings.Split(s.String(), "\n")[y]
}
