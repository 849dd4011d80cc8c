package glyph

import (
	"testing"

	"github.com/1broseidon/deskwm/internal/surface"
)

func inked(s *surface.Surface) int {
	n := 0
	for _, p := range s.Pix() {
		if p != 0 {
			n++
		}
	}
	return n
}

func TestDefaultMetrics(t *testing.T) {
	d := Default()
	if d.Height() != 13 {
		t.Fatalf("Height() = %d, want 13", d.Height())
	}
	if d.Advance('A') != 7 {
		t.Fatalf("Advance('A') = %d, want 7", d.Advance('A'))
	}
}

func TestDrawGlyphInksInsideCell(t *testing.T) {
	d := Default()
	s := surface.New(30, 20)
	adv := d.DrawGlyph(s, 'W', 5, 4, 0xFFFFFF)
	if adv != 7 {
		t.Fatalf("advance = %d, want 7", adv)
	}
	if inked(s) == 0 {
		t.Fatalf("no pixels drawn for 'W'")
	}
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.At(x, y) == 0 {
				continue
			}
			if x < 5 || x >= 12 || y < 4 || y >= 17 {
				t.Fatalf("ink at (%d, %d) outside glyph cell", x, y)
			}
		}
	}
}

func TestSpaceDrawsNothing(t *testing.T) {
	s := surface.New(10, 15)
	Default().DrawGlyph(s, ' ', 0, 0, 1)
	if inked(s) != 0 {
		t.Fatalf("space drew %d pixels", inked(s))
	}
}

func TestDrawStringClipsAndAdvances(t *testing.T) {
	d := Default()
	s := surface.New(10, 5)
	end := DrawString(d, s, "hello", -3, -4, 0xFF)
	if end != -3+5*7 {
		t.Fatalf("DrawString end = %d, want %d", end, -3+5*7)
	}
	if w := Width(d, "hello"); w != 35 {
		t.Fatalf("Width = %d, want 35", w)
	}
}
