package glyph

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/1broseidon/deskwm/internal/surface"
)

// Drawer renders single glyphs with their top-left corner at (x, y).
type Drawer interface {
	DrawGlyph(dst surface.Canvas, r rune, x, y int, c uint32) (advance int)
	Advance(r rune) int
	Height() int
}

// FaceDrawer rasterises glyphs from a bitmap font.Face. Mask alpha above
// half is treated as ink; there is no blending.
type FaceDrawer struct {
	face   font.Face
	ascent int
	height int
}

// NewFaceDrawer wraps face.
func NewFaceDrawer(face font.Face) *FaceDrawer {
	m := face.Metrics()
	return &FaceDrawer{
		face:   face,
		ascent: m.Ascent.Ceil(),
		height: m.Height.Ceil(),
	}
}

// Default returns the 7x13 fixed font drawer.
func Default() *FaceDrawer {
	return NewFaceDrawer(basicfont.Face7x13)
}

// Height implements Drawer.
func (d *FaceDrawer) Height() int { return d.height }

// Advance implements Drawer.
func (d *FaceDrawer) Advance(r rune) int {
	adv, ok := d.face.GlyphAdvance(r)
	if !ok {
		adv, _ = d.face.GlyphAdvance('?')
	}
	return adv.Round()
}

// DrawGlyph implements Drawer. Runes missing from the face draw as '?'.
func (d *FaceDrawer) DrawGlyph(dst surface.Canvas, r rune, x, y int, c uint32) int {
	dot := fixed.P(x, y+d.ascent)
	dr, mask, mp, adv, ok := d.face.Glyph(dot, r)
	if !ok {
		dr, mask, mp, adv, ok = d.face.Glyph(dot, '?')
		if !ok {
			return 0
		}
	}
	clip := dr.Intersect(rectOf(dst))
	for py := clip.Min.Y; py < clip.Max.Y; py++ {
		for px := clip.Min.X; px < clip.Max.X; px++ {
			a := color.AlphaModel.Convert(mask.At(mp.X+px-dr.Min.X, mp.Y+py-dr.Min.Y)).(color.Alpha).A
			if a >= 0x80 {
				dst.Set(px, py, c)
			}
		}
	}
	return adv.Round()
}

// DrawString draws s left to right and returns the x after the last glyph.
func DrawString(d Drawer, dst surface.Canvas, s string, x, y int, c uint32) int {
	for _, r := range s {
		x += d.DrawGlyph(dst, r, x, y, c)
	}
	return x
}

// Width measures s in pixels.
func Width(d Drawer, s string) int {
	w := 0
	for _, r := range s {
		w += d.Advance(r)
	}
	return w
}

func rectOf(dst surface.Canvas) image.Rectangle {
	b := dst.Bounds()
	return image.Rect(b.X, b.Y, b.Right(), b.Bottom())
}
