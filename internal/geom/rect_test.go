package geom

import "testing"

func TestRectContainsIsHalfOpen(t *testing.T) {
	r := XYWH(50, 50, 300, 200)
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{50, 50}, true},
		{Point{349, 249}, true},
		{Point{350, 100}, false},
		{Point{100, 250}, false},
		{Point{49, 100}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestRectIntersect(t *testing.T) {
	a := XYWH(0, 0, 10, 10)
	b := XYWH(5, 5, 10, 10)
	if got, want := a.Intersect(b), XYWH(5, 5, 5, 5); got != want {
		t.Fatalf("Intersect = %+v, want %+v", got, want)
	}
	if got := a.Intersect(XYWH(10, 0, 5, 5)); !got.Empty() {
		t.Fatalf("touching rects should not intersect, got %+v", got)
	}
}

func TestRectUnionIgnoresEmpty(t *testing.T) {
	a := XYWH(10, 10, 5, 5)
	if got := (Rect{}).Union(a); got != a {
		t.Fatalf("empty.Union(a) = %+v, want %+v", got, a)
	}
	if got := a.Union(Rect{}); got != a {
		t.Fatalf("a.Union(empty) = %+v, want %+v", got, a)
	}
	b := XYWH(0, 20, 2, 2)
	if got, want := a.Union(b), XYWH(0, 10, 15, 12); got != want {
		t.Fatalf("Union = %+v, want %+v", got, want)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-3, 0, 10, 0},
		{12, 0, 10, 10},
		{5, 0, -1, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
