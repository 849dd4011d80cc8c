package pointer

import "github.com/1broseidon/deskwm/internal/geom"

// Default screen bounds used until SetBounds is called.
const (
	DefaultMaxX = 1024
	DefaultMaxY = 768
)

// Sample is one absolute pointer reading.
type Sample struct {
	X         int
	Y         int
	Buttons   Buttons
	XOverflow bool
	YOverflow bool
}

// Point returns the sample position.
func (s Sample) Point() geom.Point {
	return geom.Point{X: s.X, Y: s.Y}
}

// Tracker turns relative packets into absolute samples clamped to the
// screen.
type Tracker struct {
	x, y       int
	maxX, maxY int
	buttons    Buttons
}

// NewTracker returns a tracker with default bounds, positioned at the centre.
func NewTracker() *Tracker {
	return NewTrackerWithBounds(DefaultMaxX, DefaultMaxY)
}

// NewTrackerWithBounds returns a tracker for a maxX x maxY screen, positioned
// at the centre.
func NewTrackerWithBounds(maxX, maxY int) *Tracker {
	t := &Tracker{}
	t.setBounds(maxX, maxY)
	t.x = t.maxX / 2
	t.y = t.maxY / 2
	return t
}

// Apply folds a packet into the tracked state. When either overflow flag is
// set the position is left alone and only the buttons are taken.
func (t *Tracker) Apply(p Packet) Sample {
	t.buttons = p.Buttons
	if !p.Overflow() {
		t.x = geom.Clamp(t.x+p.DX, 0, t.maxX-1)
		t.y = geom.Clamp(t.y-p.DY, 0, t.maxY-1)
	}
	s := t.Sample()
	s.XOverflow = p.XOverflow
	s.YOverflow = p.YOverflow
	return s
}

// SetBounds changes the screen size and re-clamps the stored position.
func (t *Tracker) SetBounds(maxX, maxY int) {
	t.setBounds(maxX, maxY)
	t.x = geom.Clamp(t.x, 0, t.maxX-1)
	t.y = geom.Clamp(t.y, 0, t.maxY-1)
}

func (t *Tracker) setBounds(maxX, maxY int) {
	if maxX < 1 {
		maxX = 1
	}
	if maxY < 1 {
		maxY = 1
	}
	t.maxX = maxX
	t.maxY = maxY
}

// Bounds returns the current screen size.
func (t *Tracker) Bounds() (maxX, maxY int) {
	return t.maxX, t.maxY
}

// Warp moves the pointer to an absolute position, clamped to the screen.
func (t *Tracker) Warp(x, y int) Sample {
	t.x = geom.Clamp(x, 0, t.maxX-1)
	t.y = geom.Clamp(y, 0, t.maxY-1)
	return t.Sample()
}

// Sample returns the current position and buttons.
func (t *Tracker) Sample() Sample {
	return Sample{X: t.x, Y: t.y, Buttons: t.buttons}
}
