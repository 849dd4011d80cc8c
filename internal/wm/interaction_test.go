package wm

import (
	"testing"

	"github.com/1broseidon/deskwm/internal/geom"
)

func beginAt(t *testing.T, r *Registry, in *Interaction, rt Router, x, y int) Action {
	t.Helper()
	a := rt.OnPress(r, press(x, y), false)
	if err := a.Apply(r, in, geom.Point{X: x, Y: y}); err != nil {
		t.Fatalf("Apply(%s) error = %v", a, err)
	}
	return a
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "idle"},
		{PhaseDragging, "dragging"},
		{PhaseResizing, "resizing"},
		{Phase(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestDragMovesByGrabOffset(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 50, 50, 300, 200)
	in := NewInteraction()

	beginAt(t, r, in, Router{}, 52, 51)
	if in.Phase != PhaseDragging || in.Window != id {
		t.Fatalf("interaction = %+v, want dragging %d", in, id)
	}

	if !in.Motion(r, geom.Point{X: 152, Y: 101}) {
		t.Fatal("Motion() reported no change")
	}
	w, _ := r.Find(id)
	if got := w.Origin(); got != (geom.Point{X: 150, Y: 100}) {
		t.Fatalf("origin = %v, want (150,100)", got)
	}

	in.Release()
	if in.Active() {
		t.Fatal("interaction still active after release")
	}
	if in.Motion(r, geom.Point{X: 400, Y: 400}) {
		t.Fatal("Motion() moved a window after release")
	}
	if got := w.Origin(); got != (geom.Point{X: 150, Y: 100}) {
		t.Fatalf("origin after release = %v, want (150,100)", got)
	}
}

func TestDragClampsToScreen(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 50, 50, 300, 200)
	in := NewInteraction()
	beginAt(t, r, in, Router{}, 60, 60)

	in.Motion(r, geom.Point{X: 2000, Y: -300})
	w, _ := r.Find(id)
	if got := w.Origin(); got != (geom.Point{X: 724, Y: 0}) {
		t.Fatalf("origin = %v, want (724,0)", got)
	}
	if in.Motion(r, geom.Point{X: 2100, Y: -400}) {
		t.Fatal("Motion() reported a change while pinned at the edge")
	}
}

func TestDragFocusesAndRaises(t *testing.T) {
	r := newTestRegistry(t, 3)
	back := mustCreate(t, r, "back", 50, 50, 300, 200)
	mustCreate(t, r, "front", 500, 400, 300, 200)
	in := NewInteraction()

	beginAt(t, r, in, Router{}, 60, 60)
	if id, _ := r.Focused(); id != back {
		t.Fatalf("Focused() = %d, want %d", id, back)
	}
	if r.IDs()[0] != back {
		t.Fatalf("IDs() = %v, want %d at front", r.IDs(), back)
	}
}

func TestDestroyDuringDragEndsInteraction(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 50, 50, 300, 200)
	in := NewInteraction()
	in.Attach(r)

	beginAt(t, r, in, Router{}, 52, 51)
	if err := r.Destroy(id); err != nil {
		t.Fatal(err)
	}
	if in.Active() {
		t.Fatalf("interaction = %+v after destroy, want idle", in)
	}
	if _, ok := r.Focused(); ok {
		t.Fatal("focus survived destroying the only window")
	}
}

func TestMotionOnVanishedTargetResets(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 50, 50, 300, 200)
	in := NewInteraction()

	beginAt(t, r, in, Router{}, 52, 51)
	if err := r.Destroy(id); err != nil {
		t.Fatal(err)
	}
	if in.Motion(r, geom.Point{X: 100, Y: 100}) {
		t.Fatal("Motion() reported a change for a destroyed window")
	}
	if in.Active() {
		t.Fatal("interaction still active")
	}
}

func TestResizeRightAndBottom(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 50, 50, 300, 200)
	in := NewInteraction()

	beginAt(t, r, in, Router{EdgeWidth: DefaultEdgeWidth}, 345, 245)
	if in.Phase != PhaseResizing || in.Edge != EdgeRight|EdgeBottom {
		t.Fatalf("interaction = %+v, want resizing right+bottom", in)
	}
	in.Motion(r, geom.Point{X: 365, Y: 275})
	w, _ := r.Find(id)
	if b := w.Bounds(); b != geom.XYWH(50, 50, 320, 230) {
		t.Fatalf("bounds = %v, want 50,50 320x230", b)
	}
	if s := w.Surface(); s.Width() != 320 || s.Height() != 230 {
		t.Fatalf("surface = %dx%d, want 320x230", s.Width(), s.Height())
	}
}

func TestResizeLeftKeepsRightEdge(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 50, 50, 300, 200)
	in := NewInteraction()

	beginAt(t, r, in, Router{EdgeWidth: DefaultEdgeWidth}, 52, 150)
	in.Motion(r, geom.Point{X: 42, Y: 150})
	w, _ := r.Find(id)
	if b := w.Bounds(); b != geom.XYWH(40, 50, 310, 200) {
		t.Fatalf("bounds = %v, want 40,50 310x200", b)
	}

	in.Motion(r, geom.Point{X: 400, Y: 150})
	if b := w.Bounds(); b.Width != MinWidth || b.Right() != 350 {
		t.Fatalf("bounds = %v, want minimum width ending at 350", b)
	}
}

func TestBeginRejectsNonInteractiveActions(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 50, 50, 300, 200)
	in := NewInteraction()
	if err := in.Begin(r, Action{Kind: ActionFocus, Window: id}, geom.Point{}); err == nil {
		t.Fatal("Begin(focus) error = nil")
	}
	if in.Active() {
		t.Fatal("interaction armed by a focus action")
	}
	if err := in.Begin(r, Action{Kind: ActionBeginDrag, Window: 99}, geom.Point{}); err == nil {
		t.Fatal("Begin(unknown window) error = nil")
	}
}
