package wm

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/1broseidon/deskwm/internal/geom"
)

func newTestRegistry(t *testing.T, capacity int) *Registry {
	t.Helper()
	return NewRegistry(Config{Capacity: capacity, ScreenWidth: 1024, ScreenHeight: 768, Background: 0x2D2D2D})
}

func mustCreate(t *testing.T, r *Registry, title string, x, y, w, h int) ID {
	t.Helper()
	id, err := r.Create(title, x, y, w, h, DefaultFlags)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return id
}

func TestCreateFocusesAndFronts(t *testing.T) {
	r := newTestRegistry(t, 4)
	a := mustCreate(t, r, "a", 10, 10, 200, 150)
	b := mustCreate(t, r, "b", 20, 20, 200, 150)

	if got := r.IDs(); !slices.Equal(got, []ID{b, a}) {
		t.Fatalf("IDs() = %v, want [%d %d]", got, b, a)
	}
	if id, ok := r.Focused(); !ok || id != b {
		t.Fatalf("Focused() = %d, %v, want %d", id, ok, b)
	}
	wa, _ := r.Find(a)
	if wa.Focused() {
		t.Fatalf("window %d still focused after %d was created", a, b)
	}
	if got := wa.Surface().At(0, 0); got != 0x2D2D2D {
		t.Fatalf("new surface pixel = %#x, want background", got)
	}
}

func TestCreateEnforcesMinimumSize(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "tiny", 0, 0, 10, 10)
	w, _ := r.Find(id)
	if b := w.Bounds(); b.Width != MinWidth || b.Height != MinHeight {
		t.Fatalf("Bounds() = %v, want %dx%d", b, MinWidth, MinHeight)
	}
}

func TestCreateTruncatesTitle(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, strings.Repeat("x", 100), 0, 0, 200, 200)
	w, _ := r.Find(id)
	if n := len(w.Title()); n != MaxTitleLen {
		t.Fatalf("title length = %d, want %d", n, MaxTitleLen)
	}
}

func TestCreateOutOfCapacityLeavesRegistryUnchanged(t *testing.T) {
	r := newTestRegistry(t, 2)
	a := mustCreate(t, r, "a", 0, 0, 200, 200)
	b := mustCreate(t, r, "b", 0, 0, 200, 200)
	before := r.List()

	_, err := r.Create("c", 0, 0, 200, 200, DefaultFlags)
	if !errors.Is(err, ErrOutOfCapacity) {
		t.Fatalf("Create() error = %v, want ErrOutOfCapacity", err)
	}
	if after := r.List(); !slices.Equal(after, before) {
		t.Fatalf("List() changed after failed create: %v -> %v", before, after)
	}

	if err := r.Destroy(a); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	c := mustCreate(t, r, "c", 0, 0, 200, 200)
	if c == a || c == b {
		t.Fatalf("Create() reused id %d", c)
	}
	if c != 3 {
		t.Fatalf("Create() id = %d, want 3", c)
	}
}

func TestDestroyMovesFocusToFrontMostVisible(t *testing.T) {
	r := newTestRegistry(t, 4)
	a := mustCreate(t, r, "a", 0, 0, 200, 200)
	b := mustCreate(t, r, "b", 0, 0, 200, 200)
	c := mustCreate(t, r, "c", 0, 0, 200, 200)
	if err := r.Hide(b); err != nil {
		t.Fatal(err)
	}

	var destroyed []ID
	r.OnDestroy(func(id ID) { destroyed = append(destroyed, id) })

	if err := r.Destroy(c); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if id, ok := r.Focused(); !ok || id != a {
		t.Fatalf("Focused() = %d, %v, want %d", id, ok, a)
	}
	if !slices.Equal(destroyed, []ID{c}) {
		t.Fatalf("OnDestroy saw %v, want [%d]", destroyed, c)
	}
	if _, ok := r.Find(c); ok {
		t.Fatalf("Find(%d) found a destroyed window", c)
	}
	if err := r.Destroy(c); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Destroy() error = %v, want ErrNotFound", err)
	}
}

func TestDestroyLastWindowClearsFocus(t *testing.T) {
	r := newTestRegistry(t, 2)
	a := mustCreate(t, r, "a", 0, 0, 200, 200)
	if err := r.Destroy(a); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Focused(); ok {
		t.Fatal("Focused() reported a window in an empty registry")
	}
	if r.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", r.Count())
	}
}

func TestZOrderOperations(t *testing.T) {
	r := newTestRegistry(t, 4)
	a := mustCreate(t, r, "a", 0, 0, 200, 200)
	b := mustCreate(t, r, "b", 0, 0, 200, 200)
	c := mustCreate(t, r, "c", 0, 0, 200, 200)

	if err := r.BringToFront(a); err != nil {
		t.Fatal(err)
	}
	if got := r.IDs(); !slices.Equal(got, []ID{a, c, b}) {
		t.Fatalf("after BringToFront IDs() = %v", got)
	}
	if id, _ := r.Focused(); id != c {
		t.Fatalf("BringToFront changed focus to %d", id)
	}

	if err := r.SendToBack(a); err != nil {
		t.Fatal(err)
	}
	if got := r.IDs(); !slices.Equal(got, []ID{c, b, a}) {
		t.Fatalf("after SendToBack IDs() = %v", got)
	}

	if err := r.Focus(b); err != nil {
		t.Fatal(err)
	}
	if got := r.IDs(); !slices.Equal(got, []ID{b, c, a}) {
		t.Fatalf("after Focus IDs() = %v", got)
	}

	var back []ID
	for w := range r.BackToFront() {
		back = append(back, w.ID())
	}
	if !slices.Equal(back, []ID{a, c, b}) {
		t.Fatalf("BackToFront() = %v", back)
	}
}

func TestMoveToClampsAndIsIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		x, y   int
		wantXY geom.Point
	}{
		{"inside", 100, 100, geom.Point{X: 100, Y: 100}},
		{"negative", -50, -20, geom.Point{X: 0, Y: 0}},
		{"past bottom right", 2000, 2000, geom.Point{X: 724, Y: 568}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t, 2)
			id := mustCreate(t, r, "w", 0, 0, 300, 200)
			if err := r.MoveTo(id, tt.x, tt.y); err != nil {
				t.Fatal(err)
			}
			w, _ := r.Find(id)
			first := w.Bounds()
			if first.Origin() != tt.wantXY {
				t.Errorf("MoveTo(%d, %d) origin = %v, want %v", tt.x, tt.y, first.Origin(), tt.wantXY)
			}
			if err := r.MoveTo(id, tt.x, tt.y); err != nil {
				t.Fatal(err)
			}
			if second := w.Bounds(); second != first {
				t.Errorf("second MoveTo = %v, want %v", second, first)
			}
		})
	}
}

func TestResizeClampsAndRefills(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 900, 700, 120, 80)
	w, _ := r.Find(id)
	w.Surface().Fill(0xABCDEF)

	if err := r.Resize(id, 400, 300); err != nil {
		t.Fatal(err)
	}
	b := w.Bounds()
	if b.Width != 400 || b.Height != 300 {
		t.Fatalf("size = %dx%d, want 400x300", b.Width, b.Height)
	}
	if b.Right() > 1024 || b.Bottom() > 768 {
		t.Fatalf("window overhangs screen: %v", b)
	}
	if s := w.Surface(); s.Width() != 400 || s.Height() != 300 || s.At(399, 299) != 0x2D2D2D {
		t.Fatalf("surface not reshaped and refilled: %dx%d %#x", s.Width(), s.Height(), s.At(399, 299))
	}

	if err := r.Resize(id, 1, 1); err != nil {
		t.Fatal(err)
	}
	if b := w.Bounds(); b.Width != MinWidth || b.Height != MinHeight {
		t.Fatalf("size = %dx%d, want minimum", b.Width, b.Height)
	}
}

func TestSlotBudgetLimitsSize(t *testing.T) {
	r := NewRegistry(Config{Capacity: 2, ScreenWidth: 1024, ScreenHeight: 768, SlotPixels: 300 * 200})
	id, err := r.Create("w", 0, 0, 600, 400, DefaultFlags)
	if err != nil {
		t.Fatal(err)
	}
	w, _ := r.Find(id)
	b := w.Bounds()
	if b.Width*b.Height > 300*200 {
		t.Fatalf("window %v exceeds slot budget", b)
	}
	if b.Width != 600 || b.Height != 100 {
		t.Fatalf("size = %dx%d, want 600x100", b.Width, b.Height)
	}
}

func TestMinimizeRestore(t *testing.T) {
	r := newTestRegistry(t, 3)
	a := mustCreate(t, r, "a", 0, 0, 200, 200)
	b := mustCreate(t, r, "b", 0, 0, 200, 200)

	if err := r.Minimize(b); err != nil {
		t.Fatal(err)
	}
	wb, _ := r.Find(b)
	if wb.Visible() || !wb.Flags().Has(FlagMinimized) {
		t.Fatalf("minimized flags = %s", wb.Flags())
	}
	if id, _ := r.Focused(); id != a {
		t.Fatalf("focus after minimize = %d, want %d", id, a)
	}

	if err := r.Restore(b); err != nil {
		t.Fatal(err)
	}
	if !wb.Visible() || !wb.Focused() || wb.Flags().Has(FlagMinimized) {
		t.Fatalf("restored flags = %s", wb.Flags())
	}
}

func TestMaximizeRestore(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 50, 50, 300, 200)
	w, _ := r.Find(id)

	if err := r.Maximize(id); err != nil {
		t.Fatal(err)
	}
	if b := w.Bounds(); b != geom.XYWH(0, 0, 1024, 768) {
		t.Fatalf("maximized bounds = %v", b)
	}
	if !w.Flags().Has(FlagMaximized) {
		t.Fatal("maximized flag not set")
	}

	if err := r.Restore(id); err != nil {
		t.Fatal(err)
	}
	if b := w.Bounds(); b != geom.XYWH(50, 50, 300, 200) {
		t.Fatalf("restored bounds = %v", b)
	}
}

func TestMovingMaximizedWindowUnmaximizes(t *testing.T) {
	r := NewRegistry(Config{Capacity: 2, ScreenWidth: 1024, ScreenHeight: 768, SlotPixels: 800 * 600})
	id := mustCreate(t, r, "w", 50, 50, 300, 200)
	w, _ := r.Find(id)
	if err := r.Maximize(id); err != nil {
		t.Fatal(err)
	}
	full := w.Bounds()
	if full.X == 0 && full.Y == 0 {
		t.Fatalf("budget-limited maximize not centred: %v", full)
	}

	// Clamped moves that leave the rectangle alone keep it maximized.
	if err := r.MoveTo(id, full.X, full.Y); err != nil {
		t.Fatal(err)
	}
	if !w.Flags().Has(FlagMaximized) {
		t.Fatal("no-op move cleared the maximized flag")
	}

	if err := r.MoveTo(id, 0, 0); err != nil {
		t.Fatal(err)
	}
	if w.Flags().Has(FlagMaximized) {
		t.Fatal("moved window still maximized")
	}
	if err := r.Restore(id); err != nil {
		t.Fatal(err)
	}
	if b := w.Bounds(); b.X != 0 || b.Y != 0 || b.Width != full.Width {
		t.Errorf("Restore() after move = %v, want the moved rectangle kept", b)
	}

	if err := r.Maximize(id); err != nil {
		t.Fatal(err)
	}
	if err := r.Resize(id, 400, 300); err != nil {
		t.Fatal(err)
	}
	if w.Flags().Has(FlagMaximized) {
		t.Error("resized window still maximized")
	}
}

func TestSetScreenKeepsMaximized(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 50, 50, 300, 200)
	w, _ := r.Find(id)
	if err := r.Maximize(id); err != nil {
		t.Fatal(err)
	}
	r.SetScreen(800, 600)
	if b := w.Bounds(); b != geom.XYWH(0, 0, 800, 600) {
		t.Errorf("maximized bounds after SetScreen = %v, want 800x600", b)
	}
	if !w.Flags().Has(FlagMaximized) {
		t.Error("SetScreen cleared the maximized flag")
	}
}

func TestFocusUnhides(t *testing.T) {
	r := newTestRegistry(t, 2)
	id := mustCreate(t, r, "w", 0, 0, 200, 200)
	if err := r.Minimize(id); err != nil {
		t.Fatal(err)
	}
	if err := r.Focus(id); err != nil {
		t.Fatal(err)
	}
	w, _ := r.Find(id)
	if !w.Visible() || !w.Focused() {
		t.Fatalf("flags after Focus = %s", w.Flags())
	}
}

func TestCapabilityFlagsOnly(t *testing.T) {
	r := newTestRegistry(t, 2)
	id, err := r.Create("w", 0, 0, 200, 200, FlagMovable|FlagMaximized|FlagMinimized)
	if err != nil {
		t.Fatal(err)
	}
	w, _ := r.Find(id)
	want := FlagMovable | FlagVisible | FlagFocused
	if w.Flags() != want {
		t.Fatalf("Flags() = %s, want %s", w.Flags(), want)
	}
}

func TestUnknownIDs(t *testing.T) {
	r := newTestRegistry(t, 2)
	ops := map[string]func() error{
		"Destroy":      func() error { return r.Destroy(9) },
		"BringToFront": func() error { return r.BringToFront(9) },
		"SendToBack":   func() error { return r.SendToBack(9) },
		"Focus":        func() error { return r.Focus(9) },
		"MoveTo":       func() error { return r.MoveTo(9, 0, 0) },
		"Resize":       func() error { return r.Resize(9, 200, 200) },
		"Maximize":     func() error { return r.Maximize(9) },
		"Minimize":     func() error { return r.Minimize(9) },
		"Restore":      func() error { return r.Restore(9) },
		"Show":         func() error { return r.Show(9) },
		"Hide":         func() error { return r.Hide(9) },
		"SetTitle":     func() error { return r.SetTitle(9, "x") },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, ErrNotFound) {
				t.Errorf("%s(9) error = %v, want ErrNotFound", name, err)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		in      string
		want    Flags
		wantErr bool
	}{
		{"", DefaultFlags, false},
		{"default", DefaultFlags, false},
		{"none", 0, false},
		{"movable,closable", FlagMovable | FlagClosable, false},
		{"resizable|movable", FlagResizable | FlagMovable, false},
		{"sticky", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFlags(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFlags(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFlags(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
