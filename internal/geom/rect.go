package geom

// Point is a position in screen coordinates.
type Point struct {
	X int
	Y int
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect describes a rectangular region in screen coordinates. The region is
// half-open: it covers [X, X+Width) x [Y, Y+Height).
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// XYWH is shorthand for building a Rect.
func XYWH(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rect covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Intersect returns the overlap of r and s, or the zero Rect when they do
// not overlap.
func (r Rect) Intersect(s Rect) Rect {
	x0 := max(r.X, s.X)
	y0 := max(r.Y, s.Y)
	x1 := min(r.Right(), s.Right())
	y1 := min(r.Bottom(), s.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Union returns the smallest rect covering both r and s. Empty inputs are
// ignored.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	x0 := min(r.X, s.X)
	y0 := min(r.Y, s.Y)
	x1 := max(r.Right(), s.Right())
	y1 := max(r.Bottom(), s.Bottom())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Inset shrinks r by n on every side (grows it when n is negative).
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
}

// Clamp restricts v to [lo, hi]. When hi < lo, lo wins.
func Clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
