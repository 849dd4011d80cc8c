// Package compositor paints the registry into a framebuffer.
package compositor

import (
	"github.com/1broseidon/deskwm/internal/framebuffer"
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/glyph"
	"github.com/1broseidon/deskwm/internal/surface"
	"github.com/1broseidon/deskwm/internal/theme"
	"github.com/1broseidon/deskwm/internal/wm"
)

// Close glyph stroke inset inside the close box.
const (
	closeGlyphStart = 5
	closeGlyphEnd   = 15
)

// Compositor draws frames. The zero value is not usable; use New.
type Compositor struct {
	theme theme.Theme
	text  glyph.Drawer
}

// Options configures a Compositor.
type Options struct {
	Theme theme.Theme
	// Text draws titles. Nil means glyph.Default().
	Text glyph.Drawer
}

// New creates a compositor.
func New(opts Options) *Compositor {
	if opts.Text == nil {
		opts.Text = glyph.Default()
	}
	return &Compositor{theme: opts.Theme, text: opts.Text}
}

// Default returns a compositor with the built-in theme and font.
func Default() *Compositor {
	return New(Options{Theme: theme.Default()})
}

// Theme returns the palette in use.
func (c *Compositor) Theme() theme.Theme { return c.theme }

// SetTheme replaces the palette for later frames.
func (c *Compositor) SetTheme(t theme.Theme) { c.theme = t }

// Render composes one full frame: desktop, windows back to front, then the
// cursor with its hotspot at cursor.
func (c *Compositor) Render(reg *wm.Registry, fb *framebuffer.Framebuffer, cursor geom.Point) {
	fb.Clear(c.theme.Desktop)

	ids := make([]wm.ID, 0, reg.Count())
	for w := range reg.BackToFront() {
		ids = append(ids, w.ID())
	}
	for _, id := range ids {
		// Painters may have destroyed windows earlier in this walk.
		w, ok := reg.Find(id)
		if !ok || !w.Visible() {
			continue
		}
		c.drawWindow(fb, w)
	}

	DrawCursor(fb, cursor, c.theme.CursorFill, c.theme.CursorEdge)
}

func (c *Compositor) drawWindow(fb *framebuffer.Framebuffer, w *wm.Window) {
	t := c.theme
	b := w.Bounds()

	border := t.Border
	title := t.TitleUnfocus
	if w.Focused() {
		border = t.BorderFocus
		title = t.TitleBG
	}
	fb.FillRect(w.FrameRect(), border)
	fb.FillRect(w.TitleBar(), title)
	glyph.DrawString(c.text, clipped{fb, w.TitleBar()}, w.Title(), b.X+wm.TitleTextInsetX, b.Y+wm.TitleTextInsetY, t.TitleText)

	if w.Flags().Has(wm.FlagClosable) {
		box := w.CloseBox()
		fb.FillRect(box, t.CloseButton)
		surface.Line(fb, box.X+closeGlyphStart, box.Y+closeGlyphStart, box.X+closeGlyphEnd, box.Y+closeGlyphEnd, t.CloseGlyph)
		surface.Line(fb, box.X+closeGlyphEnd, box.Y+closeGlyphStart, box.X+closeGlyphStart, box.Y+closeGlyphEnd, t.CloseGlyph)
	}

	if s := w.Surface(); s != nil {
		fb.Blit(b.X, b.Y+wm.TitleBarHeight, s.Pix(), s.Width(), s.Height(), w.ContentRect())
	}
	if p := w.Painter(); p != nil && w.Surface() != nil {
		p.Paint(w, w.Surface())
	}
}

// clipped restricts a canvas to a rectangle.
type clipped struct {
	dst  surface.Canvas
	clip geom.Rect
}

func (c clipped) Set(x, y int, col uint32) {
	if c.clip.Contains(geom.Point{X: x, Y: y}) {
		c.dst.Set(x, y, col)
	}
}

func (c clipped) Bounds() geom.Rect { return c.dst.Bounds().Intersect(c.clip) }
