package platform

import (
	"context"
	"sync"

	"github.com/1broseidon/deskwm/internal/framebuffer"
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/pointer"
)

// Headless keeps frames in memory. Pointer input is pushed into its
// emulated PS/2 device; keys are pushed with SendKey.
type Headless struct {
	fb   *framebuffer.Framebuffer
	emu  *pointer.Emulator
	ctrl *pointer.Controller
	keys chan rune

	mu       sync.Mutex
	presents int
	damage   geom.Rect
}

var _ Host = (*Headless)(nil)

// NewHeadless creates an in-memory host.
func NewHeadless(opts Options) (*Headless, error) {
	fb, err := newFramebuffer(opts)
	if err != nil {
		return nil, err
	}
	emu, ctrl, err := emulatedPointer(opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Headless{fb: fb, emu: emu, ctrl: ctrl, keys: make(chan rune, 16)}, nil
}

// Name implements Host.
func (h *Headless) Name() string { return BackendHeadless }

// Framebuffer implements Host.
func (h *Headless) Framebuffer() *framebuffer.Framebuffer { return h.fb }

// Pointer implements Host.
func (h *Headless) Pointer() pointer.Source { return h.ctrl }

// Emulator returns the software pointer device.
func (h *Headless) Emulator() *pointer.Emulator { return h.emu }

// Keys implements Host.
func (h *Headless) Keys() <-chan rune { return h.keys }

// SendKey queues a key press. It reports false when the queue is full.
func (h *Headless) SendKey(r rune) bool {
	select {
	case h.keys <- r:
		return true
	default:
		return false
	}
}

// Present implements Host by recording the damage.
func (h *Headless) Present(damage geom.Rect) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.presents++
	h.damage = damage
	return nil
}

// Presents returns the number of presents and the last damage rectangle.
func (h *Headless) Presents() (int, geom.Rect) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presents, h.damage
}

// Run implements Host. A headless host has no events of its own.
func (h *Headless) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// String names the host for supervision logs.
func (h *Headless) String() string { return "host-" + BackendHeadless }

// Close implements Host.
func (h *Headless) Close() error { return nil }
