package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/deskwm/internal/framebuffer"
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/pointer"
)

// Backend names.
const (
	BackendHeadless = "headless"
	BackendX11      = "x11"
	BackendFBDev    = "fbdev"
)

// Default desktop size.
const (
	DefaultWidth  = 1024
	DefaultHeight = 768
)

// ErrClosed is returned by Host.Run when the user closed the host's own
// window and the desktop should shut down.
var ErrClosed = errors.New("host closed")

// Backends lists the accepted backend names.
var Backends = []string{BackendHeadless, BackendX11, BackendFBDev}

// Host is where frames are shown and where pointer and key input comes from.
type Host interface {
	// Name returns the backend name.
	Name() string
	// Framebuffer is the frame target the desktop renders into.
	Framebuffer() *framebuffer.Framebuffer
	// Pointer supplies raw PS/2 pointer bytes.
	Pointer() pointer.Source
	// Keys delivers key presses; it may be nil.
	Keys() <-chan rune
	// Present shows the damaged part of the framebuffer.
	Present(damage geom.Rect) error
	// Run pumps host events until ctx is cancelled.
	Run(ctx context.Context) error
	Close() error
}

// Options selects and sizes a host.
type Options struct {
	Backend string
	Width   int
	Height  int
	// Pitch is the framebuffer row length in bytes; 0 means packed.
	Pitch         int
	PointerDevice string
	FBDevPath     string
	Title         string
	Logger        *slog.Logger
}

// Open creates the host named by opts.Backend.
func Open(opts Options) (Host, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Width == 0 && opts.Height == 0 {
		opts.Width, opts.Height = DefaultWidth, DefaultHeight
	}
	switch opts.Backend {
	case "", BackendHeadless:
		return NewHeadless(opts)
	case BackendFBDev:
		return NewFBDev(opts)
	case BackendX11:
		return openX11(opts)
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}

func newFramebuffer(opts Options) (*framebuffer.Framebuffer, error) {
	fb, err := framebuffer.New(opts.Width, opts.Height, opts.Pitch)
	if err != nil {
		return nil, fmt.Errorf("failed to create framebuffer: %w", err)
	}
	return fb, nil
}

// emulatedPointer brings up a controller over a software PS/2 device.
func emulatedPointer(logger *slog.Logger) (*pointer.Emulator, *pointer.Controller, error) {
	emu := pointer.NewEmulator(pointer.DefaultEmulatorQueue)
	ctrl := pointer.NewController(emu, pointer.ControllerConfig{Logger: logger})
	if err := ctrl.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize pointer: %w", err)
	}
	return emu, ctrl, nil
}
