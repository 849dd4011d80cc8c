//go:build linux

package platform

import (
	"context"
	"errors"

	"github.com/1broseidon/deskwm/internal/pointer"
	"github.com/1broseidon/deskwm/internal/x11"
)

// x11Host adapts the X11 window host to Host.
type x11Host struct {
	*x11.Host
	ctrl *pointer.Controller
}

var _ Host = (*x11Host)(nil)

func openX11(opts Options) (Host, error) {
	emu, ctrl, err := emulatedPointer(opts.Logger)
	if err != nil {
		return nil, err
	}
	fb, err := newFramebuffer(opts)
	if err != nil {
		return nil, err
	}
	h, err := x11.NewHost(x11.HostConfig{
		Framebuffer: fb,
		Emulator:    emu,
		Title:       opts.Title,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &x11Host{Host: h, ctrl: ctrl}, nil
}

func (h *x11Host) Name() string { return BackendX11 }

func (h *x11Host) Pointer() pointer.Source { return h.ctrl }

// Run maps a closed host window to ErrClosed.
func (h *x11Host) Run(ctx context.Context) error {
	err := h.Host.Run(ctx)
	if errors.Is(err, x11.ErrWindowClosed) {
		return ErrClosed
	}
	return err
}

func (h *x11Host) String() string { return "host-" + BackendX11 }
