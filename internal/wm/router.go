package wm

import (
	"fmt"
	"strings"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/pointer"
)

// ActionKind is the semantic result of a press.
type ActionKind int

const (
	// ActionNone means the press hit no window.
	ActionNone ActionKind = iota
	// ActionFocus focuses the window under the pointer.
	ActionFocus
	// ActionBeginDrag focuses the window and starts moving it.
	ActionBeginDrag
	// ActionClose destroys the window.
	ActionClose
	// ActionBeginResize focuses the window and starts resizing it.
	ActionBeginResize
)

// String returns the string representation of the action kind
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionFocus:
		return "focus"
	case ActionBeginDrag:
		return "begin-drag"
	case ActionClose:
		return "close"
	case ActionBeginResize:
		return "begin-resize"
	default:
		return "unknown"
	}
}

// Edge is a set of window edges grabbed for a resize.
type Edge uint8

const (
	EdgeLeft Edge = 1 << iota
	EdgeRight
	EdgeBottom
)

// String returns the edges joined by '+'.
func (e Edge) String() string {
	var parts []string
	if e&EdgeLeft != 0 {
		parts = append(parts, "left")
	}
	if e&EdgeRight != 0 {
		parts = append(parts, "right")
	}
	if e&EdgeBottom != 0 {
		parts = append(parts, "bottom")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Action is what a press should do.
type Action struct {
	Kind   ActionKind
	Window ID
	// Offset is the pointer position relative to the window origin; set
	// for ActionBeginDrag.
	Offset geom.Point
	// Edge is set for ActionBeginResize.
	Edge Edge
}

func (a Action) String() string {
	switch a.Kind {
	case ActionNone:
		return "none"
	case ActionBeginDrag:
		return fmt.Sprintf("%s(%d, %d,%d)", a.Kind, a.Window, a.Offset.X, a.Offset.Y)
	case ActionBeginResize:
		return fmt.Sprintf("%s(%d, %s)", a.Kind, a.Window, a.Edge)
	default:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Window)
	}
}

// DefaultEdgeWidth is the resize grab border used when resize edges are on.
const DefaultEdgeWidth = 8

// Router maps presses to actions. It never mutates the registry.
type Router struct {
	// EdgeWidth enables edge resizing for resizable windows when > 0.
	EdgeWidth int
}

// OnPress resolves a button transition. Only a press edge (the button was
// up before this sample and is down now) produces an action.
func (rt Router) OnPress(reg *Registry, s pointer.Sample, previouslyPressed bool) Action {
	if previouslyPressed || !s.Buttons.Left {
		return Action{}
	}
	return rt.Hit(reg, s.Point())
}

// Hit resolves p against the front-most visible window containing it.
func (rt Router) Hit(reg *Registry, p geom.Point) Action {
	for w := range reg.FrontToBack() {
		if !w.Visible() || !w.rect.Contains(p) {
			continue
		}
		return rt.classify(w, p)
	}
	return Action{}
}

func (rt Router) classify(w *Window, p geom.Point) Action {
	if w.flags.Has(FlagClosable) && w.CloseBox().Contains(p) {
		return Action{Kind: ActionClose, Window: w.id}
	}
	if w.TitleBar().Contains(p) {
		if w.flags.Has(FlagMovable) {
			return Action{Kind: ActionBeginDrag, Window: w.id, Offset: p.Sub(w.Origin())}
		}
		return Action{Kind: ActionFocus, Window: w.id}
	}
	if rt.EdgeWidth > 0 && w.flags.Has(FlagResizable) && !w.flags.Has(FlagMaximized) {
		if e := rt.edgeAt(w, p); e != 0 {
			return Action{Kind: ActionBeginResize, Window: w.id, Edge: e}
		}
	}
	return Action{Kind: ActionFocus, Window: w.id}
}

func (rt Router) edgeAt(w *Window, p geom.Point) Edge {
	var e Edge
	if p.X < w.rect.X+rt.EdgeWidth {
		e |= EdgeLeft
	} else if p.X >= w.rect.Right()-rt.EdgeWidth {
		e |= EdgeRight
	}
	if p.Y >= w.rect.Bottom()-rt.EdgeWidth {
		e |= EdgeBottom
	}
	return e
}

// Apply performs the registry side of an action and arms the interaction
// for drags and resizes. p is the pointer position of the press.
func (a Action) Apply(reg *Registry, in *Interaction, p geom.Point) error {
	switch a.Kind {
	case ActionNone:
		return nil
	case ActionClose:
		return reg.Destroy(a.Window)
	case ActionFocus:
		return reg.Focus(a.Window)
	case ActionBeginDrag, ActionBeginResize:
		if err := reg.Focus(a.Window); err != nil {
			return err
		}
		return in.Begin(reg, a, p)
	default:
		return fmt.Errorf("unknown action kind %d", a.Kind)
	}
}
