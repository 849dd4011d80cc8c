package x11

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/deskwm/internal/framebuffer"
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/pointer"
)

// ErrWindowClosed is returned by Run when the user closes the host window.
var ErrWindowClosed = errors.New("x11 host window closed")

// maxPutImageBytes keeps each PutImage under the core request size limit.
const maxPutImageBytes = 256 * 1024

const hostEventMask = xproto.EventMaskExposure |
	xproto.EventMaskKeyPress |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskStructureNotify

// HostConfig configures a Host.
type HostConfig struct {
	Framebuffer *framebuffer.Framebuffer
	// Emulator receives pointer motion translated from X events.
	Emulator *pointer.Emulator
	Title    string
	Logger   *slog.Logger
}

// Host shows the framebuffer in a fixed-size X window and feeds X pointer
// and key events back into the desktop.
type Host struct {
	conn   *Connection
	win    xproto.Window
	gc     xproto.Gcontext
	depth  byte
	fb     *framebuffer.Framebuffer
	emu    *pointer.Emulator
	input  *Input
	keys   chan rune
	logger *slog.Logger

	exposed   atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewHost opens a window sized to the framebuffer on the active monitor.
func NewHost(cfg HostConfig) (*Host, error) {
	if cfg.Framebuffer == nil || cfg.Emulator == nil {
		return nil, errors.New("x11 host requires a framebuffer and a pointer emulator")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	conn, err := NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	fb := cfg.Framebuffer
	h := &Host{
		conn:   conn,
		fb:     fb,
		emu:    cfg.Emulator,
		input:  NewInput(geom.Point{X: fb.Width / 2, Y: fb.Height / 2}),
		keys:   make(chan rune, 16),
		logger: cfg.Logger,
	}
	if err := h.createWindow(cfg.Title); err != nil {
		conn.Close()
		return nil, err
	}
	h.connectEvents()
	return h, nil
}

func (h *Host) createWindow(title string) error {
	xu := h.conn.XUtil
	conn := xu.Conn()
	screen := xu.Screen()

	x, y := 0, 0
	if mon, err := h.conn.ActiveMonitor(); err == nil {
		b := mon.Bounds
		if h.fb.Width > b.Width || h.fb.Height > b.Height {
			h.logger.Warn("desktop is larger than the monitor", "monitor", mon.Name, "bounds", b)
		}
		x = b.X + max(0, (b.Width-h.fb.Width)/2)
		y = b.Y + max(0, (b.Height-h.fb.Height)/2)
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}
	// Value list order follows the bit positions of the mask.
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		h.conn.Root,
		int16(x), int16(y),
		uint16(h.fb.Width), uint16(h.fb.Height),
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{0, uint32(hostEventMask)},
	).Check()
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	h.win = wid
	h.depth = screen.RootDepth

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(wid), 0, nil).Check(); err != nil {
		return fmt.Errorf("failed to create graphics context: %w", err)
	}
	h.gc = gc

	if err := ewmh.WmNameSet(xu, wid, title); err != nil {
		h.logger.Debug("failed to set EWMH window name", "error", err)
	}
	if err := icccm.WmNameSet(xu, wid, title); err != nil {
		h.logger.Debug("failed to set ICCCM window name", "error", err)
	}
	if err := icccm.WmProtocolsSet(xu, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		h.logger.Debug("failed to set WM_PROTOCOLS", "error", err)
	}
	hints := &icccm.NormalHints{
		Flags:     icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize,
		MinWidth:  uint(h.fb.Width),
		MinHeight: uint(h.fb.Height),
		MaxWidth:  uint(h.fb.Width),
		MaxHeight: uint(h.fb.Height),
	}
	if err := icccm.WmNormalHintsSet(xu, wid, hints); err != nil {
		h.logger.Debug("failed to set size hints", "error", err)
	}
	h.hideCursor()

	xproto.MapWindow(conn, wid)
	return nil
}

// hideCursor installs an empty cursor; the compositor draws its own.
func (h *Host) hideCursor() {
	conn := h.conn.XUtil.Conn()
	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return
	}
	xproto.CreatePixmap(conn, 1, pix, xproto.Drawable(h.win), 1, 1)
	cur, err := xproto.NewCursorId(conn)
	if err != nil {
		return
	}
	xproto.CreateCursor(conn, cur, pix, pix, 0, 0, 0, 0, 0, 0, 0, 0)
	xproto.ChangeWindowAttributes(conn, h.win, xproto.CwCursor, []uint32{uint32(cur)})
	xproto.FreePixmap(conn, pix)
}

func (h *Host) connectEvents() {
	xu := h.conn.XUtil

	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		h.motion(int(ev.EventX), int(ev.EventY))
	}).Connect(xu, h.win)

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		h.motion(int(ev.EventX), int(ev.EventY))
		if h.input.Button(int(ev.Detail), true) {
			h.emu.SetButtons(h.input.Buttons())
		}
	}).Connect(xu, h.win)

	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		h.motion(int(ev.EventX), int(ev.EventY))
		if h.input.Button(int(ev.Detail), false) {
			h.emu.SetButtons(h.input.Buttons())
		}
	}).Connect(xu, h.win)

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		r, ok := KeyRune(keybind.LookupString(xu, ev.State, ev.Detail))
		if !ok {
			return
		}
		select {
		case h.keys <- r:
		default:
			h.logger.Debug("key dropped", "key", string(r))
		}
	}).Connect(xu, h.win)

	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		h.exposed.Store(true)
	}).Connect(xu, h.win)

	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if ev.Format != 32 {
			return
		}
		deleteAtom, err := xprop.Atm(xu, "WM_DELETE_WINDOW")
		if err != nil || xproto.Atom(ev.Data.Data32[0]) != deleteAtom {
			return
		}
		h.logger.Info("host window closed")
		h.closed.Store(true)
		xevent.Quit(xu)
	}).Connect(xu, h.win)
}

func (h *Host) motion(x, y int) {
	dx, dy := h.input.Motion(x, y)
	if dx == 0 && dy == 0 {
		return
	}
	if !h.emu.Move(dx, dy, h.input.Buttons()) {
		h.logger.Debug("pointer motion dropped", "dx", dx, "dy", dy)
	}
}

// Framebuffer returns the frame target.
func (h *Host) Framebuffer() *framebuffer.Framebuffer { return h.fb }

// Keys delivers key presses typed into the window.
func (h *Host) Keys() <-chan rune { return h.keys }

// Present copies the damaged rows to the window. After an expose the whole
// frame is sent.
func (h *Host) Present(damage geom.Rect) error {
	if h.exposed.Swap(false) {
		damage = h.fb.Bounds()
	}
	damage = damage.Intersect(h.fb.Bounds())
	if damage.Empty() {
		return nil
	}

	conn := h.conn.XUtil.Conn()
	rowBytes := damage.Width * framebuffer.BytesPerPixel
	band := max(1, maxPutImageBytes/rowBytes)
	for y0 := damage.Y; y0 < damage.Bottom(); y0 += band {
		y1 := min(y0+band, damage.Bottom())
		data := make([]byte, (y1-y0)*rowBytes)
		for y := y0; y < y1; y++ {
			row := h.fb.Row(y)[damage.X:damage.Right()]
			off := (y - y0) * rowBytes
			for i, p := range row {
				binary.LittleEndian.PutUint32(data[off+i*4:], p)
			}
		}
		err := xproto.PutImageChecked(conn, xproto.ImageFormatZPixmap, xproto.Drawable(h.win), h.gc,
			uint16(damage.Width), uint16(y1-y0), int16(damage.X), int16(y0), 0, h.depth, data).Check()
		if err != nil {
			return fmt.Errorf("failed to put image rows %d-%d: %w", y0, y1, err)
		}
	}
	return nil
}

// Run pumps X events until ctx is cancelled or the window is closed.
func (h *Host) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			xevent.Quit(h.conn.XUtil)
			h.wake()
		case <-done:
		}
	}()

	h.logger.Info("x11 event loop started", "window", h.win)
	h.conn.EventLoop()

	if h.closed.Load() {
		return ErrWindowClosed
	}
	return ctx.Err()
}

// wake sends the window a no-op message so a blocked event loop notices Quit.
func (h *Host) wake() {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: h.win,
		Type:   xproto.AtomNone,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{0, 0, 0, 0, 0}),
	}
	xproto.SendEvent(h.conn.XUtil.Conn(), false, h.win, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// Close destroys the window and disconnects.
func (h *Host) Close() error {
	h.closeOnce.Do(func() {
		conn := h.conn.XUtil.Conn()
		xproto.FreeGC(conn, h.gc)
		xproto.DestroyWindow(conn, h.win)
		h.conn.Close()
	})
	return nil
}
