package platform

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/1broseidon/deskwm/internal/pointer"
)

func TestOpenHeadlessDefaults(t *testing.T) {
	h, err := Open(Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	if h.Name() != BackendHeadless {
		t.Errorf("Name() = %q, want %q", h.Name(), BackendHeadless)
	}
	fb := h.Framebuffer()
	if fb.Width != DefaultWidth || fb.Height != DefaultHeight {
		t.Errorf("framebuffer = %dx%d, want %dx%d", fb.Width, fb.Height, DefaultWidth, DefaultHeight)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(Options{Backend: "vga"}); err == nil {
		t.Fatal("Open(vga) succeeded, want error")
	}
}

func TestHeadlessPointerBytes(t *testing.T) {
	h, err := NewHeadless(Options{Width: 320, Height: 200})
	if err != nil {
		t.Fatalf("NewHeadless() error = %v", err)
	}
	if h.Pointer().DataAvailable() {
		t.Fatal("pointer has data before any motion")
	}

	held := pointer.Buttons{Left: true}
	if !h.Emulator().Move(5, -3, held) {
		t.Fatal("Move() dropped motion")
	}
	want := pointer.Encode(5, -3, held)
	for i, w := range want {
		b, ok := h.Pointer().TryReadByte()
		if !ok || b != w {
			t.Errorf("byte %d = (%#02x, %v), want (%#02x, true)", i, b, ok, w)
		}
	}
}

func TestHeadlessPresentAndKeys(t *testing.T) {
	h, err := NewHeadless(Options{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("NewHeadless() error = %v", err)
	}
	damage := geom.XYWH(1, 2, 3, 4)
	if err := h.Present(damage); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if n, got := h.Presents(); n != 1 || got != damage {
		t.Errorf("Presents() = (%d, %v), want (1, %v)", n, got, damage)
	}

	if !h.SendKey('q') {
		t.Fatal("SendKey() = false")
	}
	select {
	case r := <-h.Keys():
		if r != 'q' {
			t.Errorf("key = %q, want 'q'", r)
		}
	default:
		t.Fatal("no key delivered")
	}
}

func TestHeadlessRunStopsOnCancel(t *testing.T) {
	h, err := NewHeadless(Options{Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("NewHeadless() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := h.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want deadline exceeded", err)
	}
}

func TestFBDevPresentWritesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fb0")
	// Pitch carries one pixel of padding per row.
	h, err := NewFBDev(Options{Width: 4, Height: 3, Pitch: 20, FBDevPath: path})
	if err != nil {
		t.Fatalf("NewFBDev() error = %v", err)
	}
	defer h.Close()

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if fi.Size() != 60 {
		t.Errorf("file size = %d, want 60", fi.Size())
	}

	h.Framebuffer().Set(2, 1, 0x00AABBCC)
	if err := h.Present(geom.XYWH(0, 1, 4, 1)); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got := binary.LittleEndian.Uint32(data[20+2*4:]); got != 0x00AABBCC {
		t.Errorf("pixel (2,1) = %#08x, want 0x00aabbcc", got)
	}
	if got := binary.LittleEndian.Uint32(data[0:]); got != 0 {
		t.Errorf("pixel (0,0) = %#08x, want 0 outside damage", got)
	}
}

func TestFBDevRequiresPath(t *testing.T) {
	if _, err := NewFBDev(Options{Width: 4, Height: 4}); err == nil {
		t.Fatal("NewFBDev() without a path succeeded, want error")
	}
}
