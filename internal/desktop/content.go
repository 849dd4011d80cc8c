package desktop

import (
	"fmt"
	"strings"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/glyph"
	"github.com/1broseidon/deskwm/internal/surface"
	"github.com/1broseidon/deskwm/internal/theme"
	"github.com/1broseidon/deskwm/internal/wm"
)

// ContentKind names a built-in window content painter.
type ContentKind string

const (
	ContentNone    ContentKind = "none"
	ContentSolid   ContentKind = "solid"
	ContentChecker ContentKind = "checker"
	ContentPalette ContentKind = "palette"
	ContentKeypad  ContentKind = "keypad"
	ContentText    ContentKind = "text"
)

// ContentKinds lists the accepted kinds in display order.
var ContentKinds = []ContentKind{ContentNone, ContentSolid, ContentChecker, ContentPalette, ContentKeypad, ContentText}

// ParseContent validates a kind name. The empty string means ContentNone.
func ParseContent(s string) (ContentKind, error) {
	k := ContentKind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return ContentNone, nil
	}
	for _, known := range ContentKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// Content describes what to paint inside a window.
type Content struct {
	Kind  ContentKind
	Color uint32 // solid fill
	Text  string // body for ContentText, lines split on '\n'
}

// Painter returns the painter for c, or nil for ContentNone.
func (c Content) Painter(text glyph.Drawer, background uint32) wm.Painter {
	switch c.Kind {
	case ContentSolid:
		return solidPainter{color: c.Color}
	case ContentChecker:
		return checkerPainter{}
	case ContentPalette:
		return palettePainter{text: text, background: background}
	case ContentKeypad:
		return keypadPainter{text: text}
	case ContentText:
		return textPainter{text: text, body: c.Text, color: 0xFFFFFF}
	default:
		return nil
	}
}

type solidPainter struct{ color uint32 }

func (p solidPainter) Paint(_ *wm.Window, s *surface.Surface) { s.Fill(p.color) }

// checkerPainter draws the diagonal stripe test pattern.
type checkerPainter struct{}

const (
	checkerX, checkerY = 10, 10
	checkerW, checkerH = 100, 50
	checkerCell        = 20
)

func (checkerPainter) Paint(_ *wm.Window, s *surface.Surface) {
	for y := 0; y < checkerH; y++ {
		for x := 0; x < checkerW; x++ {
			c := uint32(0x00FF00)
			if (x+y)%checkerCell < checkerCell/2 {
				c = 0xFF0000
			}
			s.Set(checkerX+x, checkerY+y, c)
		}
	}
}

type palettePainter struct {
	text       glyph.Drawer
	background uint32
}

var paletteColors = [2][3]uint32{
	{0xFF0000, 0x00FF00, 0x0000FF},
	{0xFFFF00, 0xFF00FF, 0x00FFFF},
}

func (p palettePainter) Paint(_ *wm.Window, s *surface.Surface) {
	s.Fill(p.background)
	for row, colors := range paletteColors {
		for col, c := range colors {
			r := geom.XYWH(10+col*60, 10+row*40, 50, 30)
			s.FillRect(r, c)
			s.StrokeRect(r, 0xFFFFFF)
		}
	}
	glyph.DrawString(p.text, s, "Color Palette", 10, 90, 0xFFFFFF)
}

type keypadPainter struct{ text glyph.Drawer }

var keypadLabels = [16]string{"7", "8", "9", "/", "4", "5", "6", "*", "1", "2", "3", "-", "0", ".", "=", "+"}

func (p keypadPainter) Paint(_ *wm.Window, s *surface.Surface) {
	s.FillRect(geom.XYWH(10, 10, 200, 30), 0xFFFFFF)
	for i, label := range keypadLabels {
		r := geom.XYWH(10+(i%4)*45, 50+(i/4)*35, 40, 30)
		s.FillRect(r, 0xCCCCCC)
		s.StrokeRect(r, 0x000000)
		lw := glyph.Width(p.text, label)
		glyph.DrawString(p.text, s, label, r.X+(r.Width-lw)/2, r.Y+(r.Height-p.text.Height())/2, 0x000000)
	}
}

type textPainter struct {
	text  glyph.Drawer
	body  string
	color uint32
}

func (p textPainter) Paint(_ *wm.Window, s *surface.Surface) {
	lh := p.text.Height() + 4
	for i, line := range strings.Split(p.body, "\n") {
		glyph.DrawString(p.text, s, line, 10, 10+i*lh, p.color)
	}
}

// DefaultWindowBounds is the geometry of a window created without one.
var DefaultWindowBounds = geom.XYWH(50, 50, 300, 200)

// WindowOptions is the textual form of a WindowSpec carried by config files
// and commands. Nil X or Y and zero sizes take DefaultWindowBounds.
type WindowOptions struct {
	Title   string
	X, Y    *int
	Width   int
	Height  int
	Flags   string
	Content string
	Color   string
	Text    string
}

// Spec parses the options.
func (o WindowOptions) Spec() (WindowSpec, error) {
	b := DefaultWindowBounds
	if o.X != nil {
		b.X = *o.X
	}
	if o.Y != nil {
		b.Y = *o.Y
	}
	if o.Width > 0 {
		b.Width = o.Width
	}
	if o.Height > 0 {
		b.Height = o.Height
	}

	flags, err := wm.ParseFlags(o.Flags)
	if err != nil {
		return WindowSpec{}, err
	}
	kind, err := ParseContent(o.Content)
	if err != nil {
		return WindowSpec{}, err
	}
	content := Content{Kind: kind, Text: o.Text}
	if o.Color != "" {
		c, err := theme.ParseColor(o.Color)
		if err != nil {
			return WindowSpec{}, err
		}
		content.Color = c
	} else if kind == ContentSolid {
		content.Color = theme.Default().BorderFocus
	}

	title := o.Title
	if title == "" {
		title = "Window"
	}
	return WindowSpec{Title: title, Bounds: b, Flags: flags, Content: content}, nil
}
