package surface

import "github.com/1broseidon/deskwm/internal/geom"

// Canvas is anything pixels can be written to. Writes outside Bounds are
// ignored.
type Canvas interface {
	Set(x, y int, c uint32)
	Bounds() geom.Rect
}

// Surface is a window's private pixel store. Pixels are packed 0xRRGGBB.
type Surface struct {
	width  int
	height int
	pix    []uint32
	slot   int
}

// New allocates a standalone surface outside any arena.
func New(w, h int) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Surface{width: w, height: h, pix: make([]uint32, w*h), slot: -1}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Bounds implements Canvas.
func (s *Surface) Bounds() geom.Rect {
	return geom.XYWH(0, 0, s.width, s.height)
}

// Slot returns the arena slot backing the surface, or -1.
func (s *Surface) Slot() int { return s.slot }

// Capacity returns how many pixels the backing store can hold.
func (s *Surface) Capacity() int { return cap(s.pix) }

// Pix returns the pixel rows, width pixels per row.
func (s *Surface) Pix() []uint32 { return s.pix }

// Row returns row y, or nil when y is out of range.
func (s *Surface) Row(y int) []uint32 {
	if y < 0 || y >= s.height {
		return nil
	}
	return s.pix[y*s.width : (y+1)*s.width]
}

// Set writes one pixel.
func (s *Surface) Set(x, y int, c uint32) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	s.pix[y*s.width+x] = c
}

// At reads one pixel. Out-of-range reads return 0.
func (s *Surface) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0
	}
	return s.pix[y*s.width+x]
}

// Fill sets every pixel to c.
func (s *Surface) Fill(c uint32) {
	for i := range s.pix {
		s.pix[i] = c
	}
}

// FillRect fills r, clipped to the surface.
func (s *Surface) FillRect(r geom.Rect, c uint32) {
	r = r.Intersect(s.Bounds())
	for y := r.Y; y < r.Bottom(); y++ {
		row := s.pix[y*s.width+r.X : y*s.width+r.Right()]
		for i := range row {
			row[i] = c
		}
	}
}

// StrokeRect draws a one pixel outline along the inside of r.
func (s *Surface) StrokeRect(r geom.Rect, c uint32) {
	StrokeRect(s, r, c)
}

// Reshape changes the surface dimensions within its existing backing store.
// Pixel contents are not preserved. It reports false when w*h exceeds the
// capacity.
func (s *Surface) Reshape(w, h int) bool {
	if w < 0 || h < 0 || w*h > cap(s.pix) {
		return false
	}
	s.width = w
	s.height = h
	s.pix = s.pix[:w*h]
	return true
}

// FillRect fills r on any canvas.
func FillRect(dst Canvas, r geom.Rect, c uint32) {
	r = r.Intersect(dst.Bounds())
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			dst.Set(x, y, c)
		}
	}
}

// StrokeRect draws a one pixel outline along the inside of r on any canvas.
func StrokeRect(dst Canvas, r geom.Rect, c uint32) {
	if r.Empty() {
		return
	}
	HLine(dst, r.X, r.Right()-1, r.Y, c)
	HLine(dst, r.X, r.Right()-1, r.Bottom()-1, c)
	VLine(dst, r.X, r.Y, r.Bottom()-1, c)
	VLine(dst, r.Right()-1, r.Y, r.Bottom()-1, c)
}

// HLine draws from (x0, y) to (x1, y) inclusive.
func HLine(dst Canvas, x0, x1, y int, c uint32) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		dst.Set(x, y, c)
	}
}

// VLine draws from (x, y0) to (x, y1) inclusive.
func VLine(dst Canvas, x, y0, y1 int, c uint32) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		dst.Set(x, y, c)
	}
}

// Line draws a Bresenham line between two points inclusive.
func Line(dst Canvas, x0, y0, x1, y1 int, c uint32) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		dst.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
