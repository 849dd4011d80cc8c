// Package desktop ties the pointer pipeline, the window registry and the
// compositor into one context object driven by a single goroutine.
package desktop

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/1broseidon/deskwm/internal/compositor"
	"github.com/1broseidon/deskwm/internal/framebuffer"
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/glyph"
	"github.com/1broseidon/deskwm/internal/pointer"
	"github.com/1broseidon/deskwm/internal/theme"
	"github.com/1broseidon/deskwm/internal/wm"
)

// DefaultPollBudget is the number of pointer bytes drained per tick.
const DefaultPollBudget = 64

// Keys with a desktop binding.
const (
	KeyClose  = 'q'
	KeyEscape = 0x1B
)

// Config configures a Desktop.
type Config struct {
	Framebuffer *framebuffer.Framebuffer
	// Source supplies raw pointer bytes. Nil means the pointer is only
	// driven through MovePointer and Click.
	Source pointer.Source
	Theme  theme.Theme
	Text   glyph.Drawer
	// Capacity and SlotPixels size the registry.
	Capacity   int
	SlotPixels int
	PollBudget int
	// EdgeWidth enables edge resizing when > 0.
	EdgeWidth int
	Logger    *slog.Logger
}

// Desktop owns every piece of mutable window state. It is not safe for
// concurrent use; see Loop.
type Desktop struct {
	reg     *wm.Registry
	in      *wm.Interaction
	router  wm.Router
	decoder pointer.Decoder
	tracker *pointer.Tracker
	comp    *compositor.Compositor
	text    glyph.Drawer
	fb      *framebuffer.Framebuffer
	src     pointer.Source
	budget  int
	logger  *slog.Logger

	pointer  pointer.Sample
	prevLeft bool
	damage   geom.Rect
	frames   uint64
	packets  uint64
}

// New creates a desktop covering the framebuffer.
func New(cfg Config) (*Desktop, error) {
	if cfg.Framebuffer == nil {
		return nil, errors.New("desktop: framebuffer is required")
	}
	if cfg.Text == nil {
		cfg.Text = glyph.Default()
	}
	if cfg.PollBudget <= 0 {
		cfg.PollBudget = DefaultPollBudget
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Theme == (theme.Theme{}) {
		cfg.Theme = theme.Default()
	}

	fb := cfg.Framebuffer
	reg := wm.NewRegistry(wm.Config{
		Capacity:     cfg.Capacity,
		ScreenWidth:  fb.Width,
		ScreenHeight: fb.Height,
		SlotPixels:   cfg.SlotPixels,
		Background:   cfg.Theme.WindowBG,
		Logger:       cfg.Logger,
	})
	in := wm.NewInteraction()
	in.Attach(reg)

	d := &Desktop{
		reg:     reg,
		in:      in,
		router:  wm.Router{EdgeWidth: cfg.EdgeWidth},
		tracker: pointer.NewTrackerWithBounds(fb.Width, fb.Height),
		comp:    compositor.New(compositor.Options{Theme: cfg.Theme, Text: cfg.Text}),
		text:    cfg.Text,
		fb:      fb,
		src:     cfg.Source,
		budget:  cfg.PollBudget,
		logger:  cfg.Logger,
	}
	d.pointer = d.tracker.Sample()
	d.damage = fb.Bounds()
	return d, nil
}

// Registry exposes the window registry for read access.
func (d *Desktop) Registry() *wm.Registry { return d.reg }

// Interaction exposes the drag state.
func (d *Desktop) Interaction() *wm.Interaction { return d.in }

// Framebuffer returns the frame target.
func (d *Desktop) Framebuffer() *framebuffer.Framebuffer { return d.fb }

// Pointer returns the current pointer sample.
func (d *Desktop) Pointer() pointer.Sample { return d.pointer }

// Frames returns the number of frames rendered.
func (d *Desktop) Frames() uint64 { return d.frames }

// Invalidate marks r for repaint.
func (d *Desktop) Invalidate(r geom.Rect) {
	d.damage = d.damage.Union(r.Intersect(d.fb.Bounds()))
}

// InvalidateAll marks the whole screen for repaint.
func (d *Desktop) InvalidateAll() {
	d.damage = d.fb.Bounds()
}

// Damage returns the area changed since the last render.
func (d *Desktop) Damage() geom.Rect { return d.damage }

// Poll drains up to the poll budget of pointer bytes and returns how many
// were consumed.
func (d *Desktop) Poll() int {
	if d.src == nil {
		return 0
	}
	n := 0
	for ; n < d.budget; n++ {
		b, ok := d.src.TryReadByte()
		if !ok {
			break
		}
		d.HandleByte(b)
	}
	return n
}

// HandleByte feeds one raw pointer byte through the decoder.
func (d *Desktop) HandleByte(b byte) {
	pkt, ok := d.decoder.Feed(b)
	if !ok {
		return
	}
	d.packets++
	d.HandleSample(d.tracker.Apply(pkt))
}

// HandleSample routes one pointer state. A left press edge is resolved by
// the router, a held button drives the interaction and a release ends it.
func (d *Desktop) HandleSample(s pointer.Sample) {
	prev := d.pointer
	d.pointer = s
	if prev.Point() != s.Point() {
		d.Invalidate(compositor.CursorBounds(prev.Point()))
		d.Invalidate(compositor.CursorBounds(s.Point()))
	}

	left := s.Buttons.Left
	switch {
	case left && !d.prevLeft:
		d.press(s)
	case left && d.in.Active():
		d.motion(s.Point())
	case !left && d.prevLeft:
		d.in.Release()
	}
	d.prevLeft = left
}

func (d *Desktop) press(s pointer.Sample) {
	action := d.router.OnPress(d.reg, s, d.prevLeft)
	if action.Kind == wm.ActionNone {
		return
	}
	if err := action.Apply(d.reg, d.in, s.Point()); err != nil {
		d.logger.Debug("pointer action failed", "action", action.String(), "error", err)
	}
	d.InvalidateAll()
	d.logger.Debug("pointer action", "action", action.String(), "x", s.X, "y", s.Y)
}

func (d *Desktop) motion(p geom.Point) {
	id := d.in.Window
	w, ok := d.reg.Find(id)
	if !ok {
		d.in.Reset()
		return
	}
	before := w.FrameRect()
	resizing := d.in.Phase == wm.PhaseResizing
	if !d.in.Motion(d.reg, p) {
		return
	}
	if w, ok := d.reg.Find(id); ok {
		if resizing {
			d.repaint(w)
		}
		d.Invalidate(before.Union(w.FrameRect()))
	}
}

// HandleKey applies the desktop key bindings.
func (d *Desktop) HandleKey(r rune) {
	switch r {
	case KeyClose:
		if id, ok := d.reg.Focused(); ok {
			if err := d.Destroy(id); err != nil {
				d.logger.Debug("close key failed", "window", id, "error", err)
			}
		}
	case KeyEscape:
		d.cancelInteraction()
	}
}

func (d *Desktop) cancelInteraction() {
	if !d.in.Active() {
		return
	}
	id, origin := d.in.Window, d.in.Origin
	d.in.Reset()
	if w, ok := d.reg.Find(id); ok {
		before := w.FrameRect()
		if err := d.reg.SetGeometry(id, origin); err == nil {
			d.repaint(w)
			d.Invalidate(before.Union(w.FrameRect()))
		}
	}
}

// Render composes a frame when anything is damaged. It returns the damaged
// area that must be presented, or false when nothing changed.
func (d *Desktop) Render() (geom.Rect, bool) {
	if d.damage.Empty() {
		return geom.Rect{}, false
	}
	d.comp.Render(d.reg, d.fb, d.pointer.Point())
	d.frames++
	damage := d.damage
	d.damage = geom.Rect{}
	return damage, true
}

// Tick polls the pointer and renders.
func (d *Desktop) Tick() (geom.Rect, bool) {
	d.Poll()
	return d.Render()
}

// Snapshot renders the current state and returns it as an image.
func (d *Desktop) Snapshot() *image.RGBA {
	d.comp.Render(d.reg, d.fb, d.pointer.Point())
	return d.fb.Image()
}

func (d *Desktop) repaint(w *wm.Window) {
	if p := w.Painter(); p != nil && w.Surface() != nil {
		p.Paint(w, w.Surface())
	}
}

// WindowSpec describes a window to create.
type WindowSpec struct {
	Title   string
	Bounds  geom.Rect
	Flags   wm.Flags
	Content Content
}

// Create adds a window and primes its content.
func (d *Desktop) Create(spec WindowSpec) (wm.ID, error) {
	b := spec.Bounds
	id, err := d.reg.Create(spec.Title, b.X, b.Y, b.Width, b.Height, spec.Flags)
	if err != nil {
		return 0, err
	}
	if p := spec.Content.Painter(d.text, d.comp.Theme().WindowBG); p != nil {
		if err := d.SetContent(id, p); err != nil {
			return id, err
		}
	}
	// The window that lost focus changes colour too.
	d.InvalidateAll()
	return id, nil
}

// SetContent attaches a painter and paints it once.
func (d *Desktop) SetContent(id wm.ID, p wm.Painter) error {
	if err := d.reg.SetPainter(id, p); err != nil {
		return err
	}
	if w, ok := d.reg.Find(id); ok {
		d.repaint(w)
	}
	d.invalidateWindow(id)
	return nil
}

func (d *Desktop) invalidateWindow(id wm.ID) {
	if w, ok := d.reg.Find(id); ok {
		d.Invalidate(w.FrameRect())
	}
}

// change runs a registry operation and repaints what it touched.
func (d *Desktop) change(id wm.ID, op func() error) error {
	var before geom.Rect
	w, ok := d.reg.Find(id)
	if ok {
		before = w.FrameRect()
	}
	if err := op(); err != nil {
		return err
	}
	if w, ok := d.reg.Find(id); ok {
		if w.FrameRect() != before {
			d.repaint(w)
		}
	}
	// Focus and z-order changes can reveal any other window.
	d.InvalidateAll()
	return nil
}

// Destroy closes a window.
func (d *Desktop) Destroy(id wm.ID) error {
	return d.change(id, func() error { return d.reg.Destroy(id) })
}

// Move positions a window.
func (d *Desktop) Move(id wm.ID, x, y int) error {
	return d.change(id, func() error { return d.reg.MoveTo(id, x, y) })
}

// Resize changes a window's size.
func (d *Desktop) Resize(id wm.ID, width, height int) error {
	return d.change(id, func() error { return d.reg.Resize(id, width, height) })
}

// Focus focuses and raises a window.
func (d *Desktop) Focus(id wm.ID) error {
	return d.change(id, func() error { return d.reg.Focus(id) })
}

// Raise brings a window to the front without focusing it.
func (d *Desktop) Raise(id wm.ID) error {
	return d.change(id, func() error { return d.reg.BringToFront(id) })
}

// Lower sends a window to the back.
func (d *Desktop) Lower(id wm.ID) error {
	return d.change(id, func() error { return d.reg.SendToBack(id) })
}

// Maximize fills the screen with a window.
func (d *Desktop) Maximize(id wm.ID) error {
	return d.change(id, func() error { return d.reg.Maximize(id) })
}

// Minimize hides a window.
func (d *Desktop) Minimize(id wm.ID) error {
	return d.change(id, func() error { return d.reg.Minimize(id) })
}

// Restore undoes minimize and maximize.
func (d *Desktop) Restore(id wm.ID) error {
	return d.change(id, func() error { return d.reg.Restore(id) })
}

// Show makes a window visible.
func (d *Desktop) Show(id wm.ID) error {
	return d.change(id, func() error { return d.reg.Show(id) })
}

// Hide makes a window invisible.
func (d *Desktop) Hide(id wm.ID) error {
	return d.change(id, func() error { return d.reg.Hide(id) })
}

// SetTitle renames a window.
func (d *Desktop) SetTitle(id wm.ID, title string) error {
	return d.change(id, func() error { return d.reg.SetTitle(id, title) })
}

// SetBounds changes the screen size, capped to the framebuffer. The
// pointer and every window are re-clamped at once.
func (d *Desktop) SetBounds(width, height int) geom.Rect {
	width = geom.Clamp(width, wm.MinWidth, d.fb.Width)
	height = geom.Clamp(height, wm.MinHeight, d.fb.Height)
	d.tracker.SetBounds(width, height)
	d.reg.SetScreen(width, height)
	for w := range d.reg.BackToFront() {
		d.repaint(w)
	}
	d.pointer = d.tracker.Sample()
	d.InvalidateAll()
	d.logger.Debug("screen bounds changed", "width", width, "height", height)
	return d.reg.Screen()
}

// SetTheme swaps the palette and repaints everything.
func (d *Desktop) SetTheme(t theme.Theme) {
	d.comp.SetTheme(t)
	d.InvalidateAll()
}

// MovePointer injects relative motion as wire packets, split so that no
// packet overflows. Positive dy is upward.
func (d *Desktop) MovePointer(dx, dy int, b pointer.Buttons) {
	for {
		cx := geom.Clamp(dx, -255, 255)
		cy := geom.Clamp(dy, -255, 255)
		pkt := pointer.Encode(cx, cy, b)
		for _, c := range pkt {
			d.HandleByte(c)
		}
		dx -= cx
		dy -= cy
		if dx == 0 && dy == 0 {
			return
		}
	}
}

// PointerTo moves the pointer to an absolute position with b held.
func (d *Desktop) PointerTo(x, y int, b pointer.Buttons) {
	cur := d.pointer
	d.MovePointer(x-cur.X, cur.Y-y, b)
}

// Click presses and releases the left button at (x, y).
func (d *Desktop) Click(x, y int) {
	held := d.pointer.Buttons
	held.Left = false
	d.PointerTo(x, y, held)
	held.Left = true
	d.PointerTo(x, y, held)
	held.Left = false
	d.PointerTo(x, y, held)
}

// Status is a snapshot of the desktop for status queries.
type Status struct {
	Windows  int
	Capacity int
	Focused  wm.ID
	Pointer  pointer.Sample
	Phase    string
	Target   wm.ID
	Screen   geom.Rect
	Frames   uint64
	Packets  uint64
}

// Status reports the current desktop state.
func (d *Desktop) Status() Status {
	focused, _ := d.reg.Focused()
	return Status{
		Windows:  d.reg.Count(),
		Capacity: d.reg.Capacity(),
		Focused:  focused,
		Pointer:  d.pointer,
		Phase:    d.in.Phase.String(),
		Target:   d.in.Window,
		Screen:   d.reg.Screen(),
		Frames:   d.frames,
		Packets:  d.packets,
	}
}

// Info returns a window snapshot.
func (d *Desktop) Info(id wm.ID) (wm.Info, error) {
	info, err := d.reg.Info(id)
	if err != nil {
		return wm.Info{}, fmt.Errorf("desktop: %w", err)
	}
	return info, nil
}
