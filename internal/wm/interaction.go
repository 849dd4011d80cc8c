package wm

import (
	"errors"
	"fmt"

	"github.com/1broseidon/deskwm/internal/geom"
)

// Phase represents the current phase of a pointer interaction
type Phase int

const (
	// PhaseIdle means no window is being manipulated
	PhaseIdle Phase = iota
	// PhaseDragging means a window follows the pointer
	PhaseDragging
	// PhaseResizing means a window edge follows the pointer
	PhaseResizing
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Interaction tracks the window being dragged or resized between a press
// and the matching release.
type Interaction struct {
	Phase  Phase
	Window ID         // Target window (0 when idle)
	Offset geom.Point // Grab offset from the window origin while dragging
	Edge   Edge       // Grabbed edges while resizing
	Start  geom.Point // Pointer position at the press
	Origin geom.Rect  // Window bounds at the press
}

// NewInteraction returns an idle interaction.
func NewInteraction() *Interaction {
	return &Interaction{Phase: PhaseIdle}
}

// Attach makes the interaction forget windows destroyed in reg.
func (in *Interaction) Attach(reg *Registry) {
	reg.OnDestroy(in.Forget)
}

// Reset returns to idle.
func (in *Interaction) Reset() {
	in.Phase = PhaseIdle
	in.Window = 0
	in.Offset = geom.Point{}
	in.Edge = 0
	in.Start = geom.Point{}
	in.Origin = geom.Rect{}
}

// Active reports whether a window is being manipulated.
func (in *Interaction) Active() bool {
	return in.Phase != PhaseIdle
}

// Begin arms a drag or resize for the action's window.
func (in *Interaction) Begin(reg *Registry, a Action, p geom.Point) error {
	w, ok := reg.Find(a.Window)
	if !ok {
		in.Reset()
		return fmt.Errorf("window %d: %w", a.Window, ErrNotFound)
	}
	in.Reset()
	in.Window = a.Window
	in.Start = p
	in.Origin = w.rect
	switch a.Kind {
	case ActionBeginDrag:
		in.Phase = PhaseDragging
		in.Offset = a.Offset
	case ActionBeginResize:
		in.Phase = PhaseResizing
		in.Edge = a.Edge
	default:
		in.Reset()
		return fmt.Errorf("action %s does not start an interaction", a.Kind)
	}
	return nil
}

// Motion applies one held-button pointer position. It reports whether the
// target window's geometry changed. A target that no longer exists ends the
// interaction.
func (in *Interaction) Motion(reg *Registry, p geom.Point) bool {
	if !in.Active() {
		return false
	}
	w, ok := reg.Find(in.Window)
	if !ok {
		in.Reset()
		return false
	}
	before := w.rect

	var err error
	switch in.Phase {
	case PhaseDragging:
		target := p.Sub(in.Offset)
		err = reg.MoveTo(in.Window, target.X, target.Y)
	case PhaseResizing:
		err = reg.SetGeometry(in.Window, in.resized(p))
	}
	if errors.Is(err, ErrNotFound) {
		in.Reset()
		return false
	}
	return w.rect != before
}

func (in *Interaction) resized(p geom.Point) geom.Rect {
	d := p.Sub(in.Start)
	r := in.Origin
	if in.Edge&EdgeRight != 0 {
		r.Width = in.Origin.Width + d.X
	}
	if in.Edge&EdgeLeft != 0 {
		r.Width = max(in.Origin.Width-d.X, MinWidth)
		r.X = in.Origin.Right() - r.Width
	}
	if in.Edge&EdgeBottom != 0 {
		r.Height = in.Origin.Height + d.Y
	}
	return r
}

// Release ends the interaction on button release.
func (in *Interaction) Release() {
	in.Reset()
}

// Forget ends the interaction when id is its target.
func (in *Interaction) Forget(id ID) {
	if in.Active() && in.Window == id {
		in.Reset()
	}
}
