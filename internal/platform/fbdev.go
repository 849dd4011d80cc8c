package platform

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/1broseidon/deskwm/internal/framebuffer"
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/pointer"
)

const keyInterrupt = 0x03

// FBDev writes frames to a linear framebuffer device, or to a plain file of
// the same layout. Pointer bytes come from a device node such as
// /dev/input/mice; keys come from the controlling terminal in raw mode.
type FBDev struct {
	fb     *framebuffer.Framebuffer
	out    *os.File
	src    pointer.Source
	stream *pointer.StreamSource
	device io.Closer
	keys   chan rune
	logger *slog.Logger

	closeOnce sync.Once
	stdin     *term.State
}

var _ Host = (*FBDev)(nil)

// NewFBDev opens the framebuffer at opts.FBDevPath.
func NewFBDev(opts Options) (*FBDev, error) {
	if opts.FBDevPath == "" {
		return nil, errors.New("fbdev backend requires fbdev_path")
	}
	fb, err := newFramebuffer(opts)
	if err != nil {
		return nil, err
	}

	out, err := os.OpenFile(opts.FBDevPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open framebuffer device: %w", err)
	}
	if fi, err := out.Stat(); err == nil && fi.Mode().IsRegular() {
		if size := int64(fb.Height * fb.Pitch); fi.Size() != size {
			if err := out.Truncate(size); err != nil {
				out.Close()
				return nil, fmt.Errorf("failed to size framebuffer file: %w", err)
			}
		}
	}

	h := &FBDev{fb: fb, out: out, keys: make(chan rune, 16), logger: opts.Logger}
	if opts.PointerDevice != "" {
		stream, device, err := pointer.OpenDevice(opts.PointerDevice, pointer.DefaultEmulatorQueue)
		if err != nil {
			out.Close()
			return nil, err
		}
		h.src, h.stream, h.device = stream, stream, device
	} else {
		_, ctrl, err := emulatedPointer(opts.Logger)
		if err != nil {
			out.Close()
			return nil, err
		}
		h.src = ctrl
	}
	return h, nil
}

// Name implements Host.
func (h *FBDev) Name() string { return BackendFBDev }

// Framebuffer implements Host.
func (h *FBDev) Framebuffer() *framebuffer.Framebuffer { return h.fb }

// Pointer implements Host.
func (h *FBDev) Pointer() pointer.Source { return h.src }

// Keys implements Host.
func (h *FBDev) Keys() <-chan rune { return h.keys }

// Present writes the damaged rows at their device offsets.
func (h *FBDev) Present(damage geom.Rect) error {
	damage = damage.Intersect(h.fb.Bounds())
	if damage.Empty() {
		return nil
	}
	data := h.fb.Bytes(damage.Y, damage.Bottom())
	if _, err := h.out.WriteAt(data, int64(damage.Y*h.fb.Pitch)); err != nil {
		return fmt.Errorf("failed to write framebuffer rows %d-%d: %w", damage.Y, damage.Bottom(), err)
	}
	return nil
}

// Run reads the pointer device and the terminal until ctx is cancelled.
func (h *FBDev) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	if h.stream != nil {
		go func() { errCh <- h.stream.Serve(ctx) }()
	}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			h.logger.Warn("keyboard input unavailable", "error", err)
		} else {
			h.stdin = state
			go h.readKeys(os.Stdin)
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err == nil {
			h.logger.Info("pointer device closed")
			<-ctx.Done()
			return ctx.Err()
		}
		return err
	}
}

func (h *FBDev) readKeys(r io.Reader) {
	br := bufio.NewReader(r)
	for {
		c, _, err := br.ReadRune()
		if err != nil {
			return
		}
		if c == keyInterrupt {
			interruptSelf()
			continue
		}
		select {
		case h.keys <- c:
		default:
		}
	}
}

func interruptSelf() {
	if p, err := os.FindProcess(os.Getpid()); err == nil {
		_ = p.Signal(os.Interrupt)
	}
}

// String names the host for supervision logs.
func (h *FBDev) String() string { return "host-" + BackendFBDev }

// Close restores the terminal and releases the devices.
func (h *FBDev) Close() error {
	var err error
	h.closeOnce.Do(func() {
		if h.stdin != nil {
			_ = term.Restore(int(os.Stdin.Fd()), h.stdin)
		}
		if h.device != nil {
			err = errors.Join(err, h.device.Close())
		}
		err = errors.Join(err, h.out.Close())
	})
	return err
}
