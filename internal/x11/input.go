package x11

import (
	"unicode/utf8"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/pointer"
)

// X core button numbers.
const (
	buttonLeft   = 1
	buttonMiddle = 2
	buttonRight  = 3
)

// Input turns absolute X pointer events into the relative motion a PS/2
// device reports.
type Input struct {
	last    geom.Point
	buttons pointer.Buttons
}

// NewInput starts tracking from start, which should match where the
// desktop's own pointer tracker begins.
func NewInput(start geom.Point) *Input {
	return &Input{last: start}
}

// Motion returns the delta from the previous position. Positive dy is
// upward, as on the wire.
func (in *Input) Motion(x, y int) (dx, dy int) {
	dx = x - in.last.X
	dy = in.last.Y - y
	in.last = geom.Point{X: x, Y: y}
	return dx, dy
}

// Button applies a press or release of an X button and reports whether the
// button state changed. Wheel buttons are ignored.
func (in *Input) Button(detail int, pressed bool) bool {
	before := in.buttons
	switch detail {
	case buttonLeft:
		in.buttons.Left = pressed
	case buttonMiddle:
		in.buttons.Middle = pressed
	case buttonRight:
		in.buttons.Right = pressed
	}
	return in.buttons != before
}

// Buttons returns the held buttons.
func (in *Input) Buttons() pointer.Buttons { return in.buttons }

// KeyRune maps a keysym name from keybind.LookupString to a rune.
func KeyRune(name string) (rune, bool) {
	switch name {
	case "":
		return 0, false
	case "Escape":
		return 0x1B, true
	case "space":
		return ' ', true
	case "Return":
		return '\r', true
	}
	if utf8.RuneCountInString(name) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return r, true
}
