package wm

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/surface"
)

var (
	// ErrOutOfCapacity is returned when the registry or the surface arena
	// has no room for another window.
	ErrOutOfCapacity = errors.New("out of window capacity")
	// ErrNotFound is returned for ids that do not name a live window.
	ErrNotFound = errors.New("window not found")
)

// DefaultCapacity is the window limit when none is configured.
const DefaultCapacity = 16

// Config configures a Registry.
type Config struct {
	// Capacity is the maximum number of live windows.
	Capacity int
	// ScreenWidth and ScreenHeight bound every window.
	ScreenWidth  int
	ScreenHeight int
	// SlotPixels is the per-window pixel budget. Zero means the screen area.
	SlotPixels int
	// Background fills a surface whenever it is allocated or reshaped.
	Background uint32
	Logger     *slog.Logger
}

// Registry owns the live windows. Order is z-order: index 0 is the front.
type Registry struct {
	order      []*Window
	capacity   int
	nextID     ID
	screen     geom.Rect
	arena      *surface.Arena
	background uint32
	onDestroy  []func(ID)
	logger     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.ScreenWidth < MinWidth {
		cfg.ScreenWidth = MinWidth
	}
	if cfg.ScreenHeight < MinHeight {
		cfg.ScreenHeight = MinHeight
	}
	if cfg.SlotPixels <= 0 {
		cfg.SlotPixels = cfg.ScreenWidth * cfg.ScreenHeight
	}
	cfg.SlotPixels = max(cfg.SlotPixels, MinWidth*MinHeight)
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Registry{
		order:      make([]*Window, 0, cfg.Capacity),
		capacity:   cfg.Capacity,
		nextID:     1,
		screen:     geom.XYWH(0, 0, cfg.ScreenWidth, cfg.ScreenHeight),
		arena:      surface.NewArena(cfg.Capacity, cfg.SlotPixels),
		background: cfg.Background,
		logger:     cfg.Logger,
	}
}

// OnDestroy registers fn to run whenever a window is destroyed, after it
// has left the registry.
func (r *Registry) OnDestroy(fn func(ID)) {
	r.onDestroy = append(r.onDestroy, fn)
}

// Screen returns the screen rectangle.
func (r *Registry) Screen() geom.Rect { return r.screen }

// Capacity returns the window limit.
func (r *Registry) Capacity() int { return r.capacity }

// SlotPixels returns the per-window pixel budget.
func (r *Registry) SlotPixels() int { return r.arena.SlotPixels() }

// Count returns the number of live windows.
func (r *Registry) Count() int { return len(r.order) }

func (r *Registry) index(id ID) int {
	for i, w := range r.order {
		if w.id == id {
			return i
		}
	}
	return -1
}

// Find returns the live window with id.
func (r *Registry) Find(id ID) (*Window, bool) {
	if i := r.index(id); i >= 0 {
		return r.order[i], true
	}
	return nil, false
}

func (r *Registry) lookup(id ID) (*Window, error) {
	w, ok := r.Find(id)
	if !ok {
		return nil, fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	return w, nil
}

// Create adds a window at the front and focuses it. The size is raised to
// the minimum and the geometry fitted to the screen. Only the capability
// flags of flags are honoured.
func (r *Registry) Create(title string, x, y, w, h int, flags Flags) (ID, error) {
	if len(r.order) >= r.capacity {
		return 0, fmt.Errorf("registry holds %d windows: %w", r.capacity, ErrOutOfCapacity)
	}

	rect := r.fit(geom.XYWH(x, y, w, h))
	surf, err := r.arena.Alloc(rect.Width, rect.Height)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOutOfCapacity, err)
	}
	surf.Fill(r.background)

	win := &Window{
		id:    r.nextID,
		title: truncateTitle(title),
		rect:  rect,
		flags: flags&capabilityFlags | FlagVisible,
		surf:  surf,
	}
	r.nextID++
	r.order = slices.Insert(r.order, 0, win)
	r.setFocus(win)

	r.logger.Debug("window created", "window", win.id, "title", win.title, "bounds", rect, "flags", win.flags.String())
	return win.id, nil
}

// Destroy removes a window and releases its surface. Focus moves to the
// front-most visible window when the destroyed window held it.
func (r *Registry) Destroy(id ID) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	win := r.order[i]
	r.order = slices.Delete(r.order, i, i+1)
	r.arena.Free(win.surf)
	win.surf = nil
	win.painter = nil

	if win.Focused() {
		win.flags &^= FlagFocused
		r.focusFrontMost()
	}
	for _, fn := range r.onDestroy {
		fn(id)
	}

	r.logger.Debug("window destroyed", "window", id)
	return nil
}

// BringToFront moves a window to the front without changing focus.
func (r *Registry) BringToFront(id ID) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	r.raise(i)
	return nil
}

func (r *Registry) raise(i int) {
	if i == 0 {
		return
	}
	w := r.order[i]
	copy(r.order[1:i+1], r.order[:i])
	r.order[0] = w
}

// SendToBack moves a window behind all others. A focused window keeps
// focus.
func (r *Registry) SendToBack(id ID) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	w := r.order[i]
	copy(r.order[i:], r.order[i+1:])
	r.order[len(r.order)-1] = w
	return nil
}

// Focus gives a window focus and brings it to the front. A minimized or
// hidden window is made visible first.
func (r *Registry) Focus(id ID) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !w.Visible() {
		w.flags = w.flags&^FlagMinimized | FlagVisible
	}
	r.setFocus(w)
	return nil
}

func (r *Registry) setFocus(w *Window) {
	for _, other := range r.order {
		other.flags &^= FlagFocused
	}
	w.flags |= FlagFocused
	r.raise(r.index(w.id))
}

func (r *Registry) focusFrontMost() {
	for _, w := range r.order {
		if w.Visible() {
			r.setFocus(w)
			return
		}
	}
}

// Focused returns the focused window id.
func (r *Registry) Focused() (ID, bool) {
	for _, w := range r.order {
		if w.Focused() {
			return w.id, true
		}
	}
	return 0, false
}

// MoveTo positions a window, clamped so it stays on screen.
func (r *Registry) MoveTo(id ID, x, y int) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	w.place(r.clampPosition(geom.XYWH(x, y, w.rect.Width, w.rect.Height)))
	return nil
}

// Resize changes a window's size. The size is raised to the minimum, cut
// to the screen and the surface budget, and the window is shifted back on
// screen when it would overhang.
func (r *Registry) Resize(id ID, width, height int) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	r.setGeometry(w, geom.XYWH(w.rect.X, w.rect.Y, width, height))
	return nil
}

// SetGeometry applies position and size in one step, with the same
// clamping as Resize and MoveTo.
func (r *Registry) SetGeometry(id ID, rect geom.Rect) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	r.setGeometry(w, rect)
	return nil
}

func (r *Registry) setGeometry(w *Window, rect geom.Rect) {
	rect = r.fit(rect)
	if rect.Width != w.rect.Width || rect.Height != w.rect.Height {
		w.surf.Reshape(rect.Width, rect.Height)
		w.surf.Fill(r.background)
	}
	w.place(rect)
}

// place sets the window rectangle. Leaving the maximized rectangle makes
// the window a normal one again.
func (w *Window) place(rect geom.Rect) {
	if rect != w.rect {
		w.flags &^= FlagMaximized
	}
	w.rect = rect
}

// maximizedRect is the screen, cut to the surface budget and centred.
func (r *Registry) maximizedRect() geom.Rect {
	target := r.fit(r.screen)
	target.X = (r.screen.Width - target.Width) / 2
	target.Y = (r.screen.Height - target.Height) / 2
	return target
}

// Maximize fills the screen, or as much of it as the surface budget allows,
// centred. The previous geometry is kept for Restore.
func (r *Registry) Maximize(id ID) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if w.flags.Has(FlagMaximized) {
		return nil
	}
	w.saved = w.rect
	r.setGeometry(w, r.maximizedRect())
	w.flags |= FlagMaximized
	return nil
}

// Minimize hides a window until it is restored or focused.
func (r *Registry) Minimize(id ID) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	w.flags = w.flags&^FlagVisible | FlagMinimized
	r.dropFocus(w)
	return nil
}

// Restore undoes Minimize and Maximize and focuses the window.
func (r *Registry) Restore(id ID) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if w.flags.Has(FlagMaximized) {
		r.setGeometry(w, w.saved)
	}
	w.flags = w.flags&^(FlagMinimized|FlagMaximized) | FlagVisible
	r.setFocus(w)
	return nil
}

// Show makes a window visible.
func (r *Registry) Show(id ID) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	w.flags |= FlagVisible
	return nil
}

// Hide makes a window invisible without minimizing it.
func (r *Registry) Hide(id ID) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	w.flags &^= FlagVisible
	r.dropFocus(w)
	return nil
}

func (r *Registry) dropFocus(w *Window) {
	if !w.Focused() {
		return
	}
	w.flags &^= FlagFocused
	r.focusFrontMost()
}

// SetTitle replaces the title, truncated to MaxTitleLen characters.
func (r *Registry) SetTitle(id ID, title string) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	w.title = truncateTitle(title)
	return nil
}

// SetPainter attaches content to a window. A nil painter removes it.
func (r *Registry) SetPainter(id ID, p Painter) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	w.painter = p
	return nil
}

// SetScreen changes the screen size and refits every window.
func (r *Registry) SetScreen(width, height int) {
	r.screen = geom.XYWH(0, 0, max(width, MinWidth), max(height, MinHeight))
	for _, w := range r.order {
		if w.flags.Has(FlagMaximized) {
			r.setGeometry(w, r.maximizedRect())
			w.flags |= FlagMaximized
			continue
		}
		r.setGeometry(w, w.rect)
	}
}

// FrontToBack yields windows from the front of the z-order. Each call
// walks a fresh copy of the current order.
func (r *Registry) FrontToBack() iter.Seq[*Window] {
	snapshot := slices.Clone(r.order)
	return func(yield func(*Window) bool) {
		for _, w := range snapshot {
			if !yield(w) {
				return
			}
		}
	}
}

// BackToFront yields windows from the back of the z-order.
func (r *Registry) BackToFront() iter.Seq[*Window] {
	snapshot := slices.Clone(r.order)
	return func(yield func(*Window) bool) {
		for i := len(snapshot) - 1; i >= 0; i-- {
			if !yield(snapshot[i]) {
				return
			}
		}
	}
}

// IDs returns the live ids front to back.
func (r *Registry) IDs() []ID {
	ids := make([]ID, len(r.order))
	for i, w := range r.order {
		ids[i] = w.id
	}
	return ids
}

// List returns snapshots front to back. Z is the position in that order.
func (r *Registry) List() []Info {
	out := make([]Info, len(r.order))
	for i, w := range r.order {
		out[i] = w.info(i)
	}
	return out
}

// Info returns a snapshot of one window.
func (r *Registry) Info(id ID) (Info, error) {
	i := r.index(id)
	if i < 0 {
		return Info{}, fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	return r.order[i].info(i), nil
}

// fit applies the minimum size, the screen size, the surface budget and
// then the on-screen position clamp.
func (r *Registry) fit(rect geom.Rect) geom.Rect {
	rect.Width = min(max(rect.Width, MinWidth), r.screen.Width)
	rect.Height = min(max(rect.Height, MinHeight), r.screen.Height)

	budget := r.arena.SlotPixels()
	if rect.Width*rect.Height > budget {
		rect.Height = max(budget/rect.Width, MinHeight)
		if rect.Width*rect.Height > budget {
			rect.Width = max(budget/rect.Height, MinWidth)
		}
	}
	return r.clampPosition(rect)
}

func (r *Registry) clampPosition(rect geom.Rect) geom.Rect {
	rect.X = geom.Clamp(rect.X, 0, r.screen.Width-rect.Width)
	rect.Y = geom.Clamp(rect.Y, 0, r.screen.Height-rect.Height)
	return rect
}
