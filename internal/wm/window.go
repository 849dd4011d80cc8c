package wm

import (
	"fmt"
	"strings"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/surface"
)

// ID identifies a window. IDs start at 1 and are never reused.
type ID uint32

// Window frame metrics.
const (
	TitleBarHeight   = 24
	BorderWidth      = 2
	MinWidth         = 120
	MinHeight        = 80
	MaxTitleLen      = 63
	CloseButtonSize  = 20
	CloseButtonInset = 2
	TitleTextInsetX  = 5
	TitleTextInsetY  = 4
)

// Flags is the window state and capability set.
type Flags uint8

const (
	FlagVisible   Flags = 0x01
	FlagFocused   Flags = 0x02
	FlagMinimized Flags = 0x04
	FlagMaximized Flags = 0x08
	FlagResizable Flags = 0x10
	FlagMovable   Flags = 0x20
	FlagClosable  Flags = 0x40
)

// DefaultFlags are the capabilities a window gets when none are given.
const DefaultFlags = FlagMovable | FlagResizable | FlagClosable

// capabilityFlags are the flags a caller may choose; the rest is state the
// registry owns.
const capabilityFlags = FlagResizable | FlagMovable | FlagClosable

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagVisible, "visible"},
	{FlagFocused, "focused"},
	{FlagMinimized, "minimized"},
	{FlagMaximized, "maximized"},
	{FlagResizable, "resizable"},
	{FlagMovable, "movable"},
	{FlagClosable, "closable"},
}

// Has reports whether all bits of x are set.
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

// Names returns the set flag names in bit order.
func (f Flags) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

// String returns the flags joined by '|', or "none".
func (f Flags) String() string {
	names := f.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseFlags parses a comma or '|' separated list of flag names. The empty
// string and "default" mean DefaultFlags; "none" means no capabilities.
func ParseFlags(s string) (Flags, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "default":
		return DefaultFlags, nil
	case "none":
		return 0, nil
	}
	var f Flags
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		part = strings.TrimSpace(part)
		found := false
		for _, fn := range flagNames {
			if fn.name == part {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown window flag %q", part)
		}
	}
	return f, nil
}

// Painter draws window content into the window's own surface. It must not
// resize the surface.
type Painter interface {
	Paint(w *Window, s *surface.Surface)
}

// PainterFunc adapts a function to Painter.
type PainterFunc func(w *Window, s *surface.Surface)

// Paint implements Painter.
func (f PainterFunc) Paint(w *Window, s *surface.Surface) { f(w, s) }

// Window is one managed window. Its fields are only changed through the
// Registry that owns it.
type Window struct {
	id      ID
	title   string
	rect    geom.Rect
	saved   geom.Rect
	flags   Flags
	surf    *surface.Surface
	painter Painter
}

// ID returns the window id.
func (w *Window) ID() ID { return w.id }

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// Bounds returns the window rectangle, title bar included, border excluded.
func (w *Window) Bounds() geom.Rect { return w.rect }

// Origin returns the top-left corner.
func (w *Window) Origin() geom.Point { return w.rect.Origin() }

// Flags returns the current flag set.
func (w *Window) Flags() Flags { return w.flags }

// Visible reports whether the window is drawn and hit-tested.
func (w *Window) Visible() bool { return w.flags.Has(FlagVisible) }

// Focused reports whether the window holds focus.
func (w *Window) Focused() bool { return w.flags.Has(FlagFocused) }

// Surface returns the window's pixel surface.
func (w *Window) Surface() *surface.Surface { return w.surf }

// Painter returns the content painter, if any.
func (w *Window) Painter() Painter { return w.painter }

// FrameRect returns the area covered by the window including its border.
func (w *Window) FrameRect() geom.Rect {
	return w.rect.Inset(-BorderWidth)
}

// TitleBar returns the title band in screen coordinates.
func (w *Window) TitleBar() geom.Rect {
	return geom.XYWH(w.rect.X, w.rect.Y, w.rect.Width, TitleBarHeight)
}

// CloseBox returns the close button in screen coordinates.
func (w *Window) CloseBox() geom.Rect {
	return geom.XYWH(
		w.rect.Right()-CloseButtonSize-CloseButtonInset,
		w.rect.Y+CloseButtonInset,
		CloseButtonSize,
		CloseButtonSize,
	)
}

// ContentRect returns the area below the title bar.
func (w *Window) ContentRect() geom.Rect {
	return geom.XYWH(w.rect.X, w.rect.Y+TitleBarHeight, w.rect.Width, w.rect.Height-TitleBarHeight)
}

// Info is a detached snapshot of a window.
type Info struct {
	ID     ID
	Title  string
	Bounds geom.Rect
	Flags  Flags
	Z      int
}

func (w *Window) info(z int) Info {
	return Info{ID: w.id, Title: w.title, Bounds: w.rect, Flags: w.flags, Z: z}
}

func truncateTitle(title string) string {
	r := []rune(title)
	if len(r) > MaxTitleLen {
		r = r[:MaxTitleLen]
	}
	return string(r)
}
