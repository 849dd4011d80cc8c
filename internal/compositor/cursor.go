package compositor

import (
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/surface"
)

// Cursor bitmap size.
const (
	CursorWidth  = 12
	CursorHeight = 16
)

// cursorRows holds the arrow, one row per entry, bit 11 is column 0.
var cursorRows = [CursorHeight]uint16{
	0b110000000000,
	0b111000000000,
	0b111100000000,
	0b111110000000,
	0b111111000000,
	0b111111100000,
	0b111111110000,
	0b111111111000,
	0b111111100000,
	0b111111100000,
	0b110110000000,
	0b110011000000,
	0b100001100000,
	0b000001100000,
	0b000000110000,
	0b000000110000,
}

func cursorInk(col, row int) bool {
	if col < 0 || row < 0 || col >= CursorWidth || row >= CursorHeight {
		return false
	}
	return cursorRows[row]&(1<<(CursorWidth-1-col)) != 0
}

// CursorBounds returns the area the cursor may touch when its hotspot is at
// p, outline included.
func CursorBounds(p geom.Point) geom.Rect {
	return geom.XYWH(p.X-1, p.Y-1, CursorWidth+2, CursorHeight+2)
}

// DrawCursor draws the arrow with its hotspot at p. Every pixel next to the
// arrow (8-neighbourhood) gets the outline colour.
func DrawCursor(dst surface.Canvas, p geom.Point, fill, outline uint32) {
	for row := -1; row <= CursorHeight; row++ {
		for col := -1; col <= CursorWidth; col++ {
			if cursorInk(col, row) {
				dst.Set(p.X+col, p.Y+row, fill)
				continue
			}
			if touchesInk(col, row) {
				dst.Set(p.X+col, p.Y+row, outline)
			}
		}
	}
}

func touchesInk(col, row int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (dx != 0 || dy != 0) && cursorInk(col+dx, row+dy) {
				return true
			}
		}
	}
	return false
}
