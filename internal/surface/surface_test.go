package surface

import (
	"errors"
	"testing"

	"github.com/1broseidon/deskwm/internal/geom"
)

func TestSurfaceClipsWrites(t *testing.T) {
	s := New(4, 3)
	s.Set(-1, 0, 1)
	s.Set(4, 0, 1)
	s.Set(0, 3, 1)
	for i, p := range s.Pix() {
		if p != 0 {
			t.Fatalf("pixel %d = %#x after out-of-range writes", i, p)
		}
	}
	if got := s.At(10, 10); got != 0 {
		t.Fatalf("At(10, 10) = %#x, want 0", got)
	}
}

func TestSurfaceFillRectClipped(t *testing.T) {
	s := New(4, 4)
	s.FillRect(geom.XYWH(2, 2, 10, 10), 0xFF0000)
	count := 0
	for _, p := range s.Pix() {
		if p == 0xFF0000 {
			count++
		}
	}
	if count != 4 {
		t.Fatalf("filled %d pixels, want 4", count)
	}
	if s.At(3, 3) != 0xFF0000 || s.At(1, 1) != 0 {
		t.Fatalf("unexpected fill layout")
	}
}

func TestStrokeRect(t *testing.T) {
	s := New(5, 5)
	s.StrokeRect(s.Bounds(), 7)
	if s.At(0, 0) != 7 || s.At(4, 4) != 7 || s.At(4, 0) != 7 || s.At(0, 4) != 7 {
		t.Fatalf("corners not stroked")
	}
	if s.At(2, 2) != 0 {
		t.Fatalf("interior stroked")
	}
}

func TestLineDiagonal(t *testing.T) {
	s := New(5, 5)
	Line(s, 0, 0, 4, 4, 9)
	for i := 0; i < 5; i++ {
		if s.At(i, i) != 9 {
			t.Fatalf("At(%d, %d) = %d, want 9", i, i, s.At(i, i))
		}
	}
}

func TestArenaAllocFreeReusesSlots(t *testing.T) {
	a := NewArena(2, 100)
	s1, err := a.Alloc(10, 10)
	if err != nil {
		t.Fatalf("Alloc #1: %v", err)
	}
	s2, err := a.Alloc(5, 5)
	if err != nil {
		t.Fatalf("Alloc #2: %v", err)
	}
	if _, err := a.Alloc(1, 1); !errors.Is(err, ErrArenaFull) {
		t.Fatalf("Alloc on full arena error = %v, want ErrArenaFull", err)
	}

	slot := s1.Slot()
	s1.Fill(0xABCDEF)
	a.Free(s1)
	if a.Available() != 1 {
		t.Fatalf("Available() = %d, want 1", a.Available())
	}
	s3, err := a.Alloc(10, 10)
	if err != nil {
		t.Fatalf("Alloc after free: %v", err)
	}
	if s3.Slot() != slot {
		t.Fatalf("reused slot %d, want %d", s3.Slot(), slot)
	}
	if s3.At(0, 0) != 0 {
		t.Fatalf("reused slot not zeroed")
	}
	if s2.Slot() == s3.Slot() {
		t.Fatalf("two live surfaces share slot %d", s2.Slot())
	}
}

func TestArenaRejectsOversize(t *testing.T) {
	a := NewArena(1, 50)
	if _, err := a.Alloc(10, 10); !errors.Is(err, ErrArenaFull) {
		t.Fatalf("oversize Alloc error = %v, want ErrArenaFull", err)
	}
	if a.Available() != 1 {
		t.Fatalf("failed Alloc consumed a slot")
	}
}

func TestArenaDoubleFreeIsNoop(t *testing.T) {
	a := NewArena(1, 10)
	s, _ := a.Alloc(2, 2)
	a.Free(s)
	a.Free(s)
	if a.Available() != 1 {
		t.Fatalf("Available() = %d after double free, want 1", a.Available())
	}
}

func TestReshapeWithinCapacity(t *testing.T) {
	a := NewArena(1, 100)
	s, _ := a.Alloc(10, 5)
	if !s.Reshape(10, 10) {
		t.Fatalf("Reshape(10, 10) rejected within capacity")
	}
	if s.Width() != 10 || s.Height() != 10 || len(s.Pix()) != 100 {
		t.Fatalf("Reshape produced %dx%d (%d pixels)", s.Width(), s.Height(), len(s.Pix()))
	}
	if s.Reshape(11, 10) {
		t.Fatalf("Reshape beyond capacity accepted")
	}
}
