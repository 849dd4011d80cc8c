package ipc

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/deskwm/internal/desktop"
	"github.com/1broseidon/deskwm/internal/framebuffer"
	"github.com/1broseidon/deskwm/internal/snapshot"
)

func startTestServer(t *testing.T) *Client {
	t.Helper()
	fb, err := framebuffer.New(1024, 768, 0)
	if err != nil {
		t.Fatal(err)
	}
	d, err := desktop.New(desktop.Config{Framebuffer: fb, Capacity: 4})
	if err != nil {
		t.Fatal(err)
	}
	loop := desktop.NewLoop(d, desktop.LoopConfig{Tick: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		loop.Serve(ctx)
		close(loopDone)
	}()

	socket := filepath.Join(t.TempDir(), "d.sock")
	srv, err := NewServer(ServerConfig{SocketPath: socket, Exec: loop, Backend: "headless"})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		srv.Stop()
		cancel()
		<-loopDone
	})
	return NewClientWithSocket(socket)
}

func TestWindowLifecycle(t *testing.T) {
	c := startTestServer(t)

	id, err := c.Create(CreatePayload{Title: "Editor", Content: "checker"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id != 1 {
		t.Errorf("Create() id = %d, want 1", id)
	}

	info, err := c.Move(id, 2000, 2000)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if info.X != 724 || info.Y != 568 {
		t.Errorf("Move() clamped to (%d,%d), want (724,568)", info.X, info.Y)
	}

	info, err = c.Resize(id, 10, 10)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if info.Width != 120 || info.Height != 80 {
		t.Errorf("Resize() = %dx%d, want 120x80", info.Width, info.Height)
	}

	if err := c.SetTitle(id, "Renamed"); err != nil {
		t.Fatalf("SetTitle() error = %v", err)
	}
	list, err := c.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Title != "Renamed" || !list[0].HasFlag("focused") {
		t.Errorf("List() = %+v, want one focused window titled Renamed", list)
	}

	if err := c.Minimize(id); err != nil {
		t.Fatalf("Minimize() error = %v", err)
	}
	list, _ = c.List()
	if !list[0].HasFlag("minimized") || list[0].HasFlag("visible") {
		t.Errorf("flags after Minimize() = %v", list[0].Flags)
	}
	if err := c.Restore(id); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if err := c.Destroy(id); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	count, err := c.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count.Count != 0 || count.Capacity != 4 {
		t.Errorf("Count() = %+v, want 0 of 4", count)
	}
}

func TestUnknownWindowIsAnError(t *testing.T) {
	c := startTestServer(t)
	for name, op := range map[string]func(uint32) error{
		"Destroy":  c.Destroy,
		"Focus":    c.Focus,
		"Raise":    c.Raise,
		"Lower":    c.Lower,
		"Maximize": c.Maximize,
		"Show":     c.Show,
		"Hide":     c.Hide,
	} {
		if err := op(42); err == nil {
			t.Errorf("%s(42) succeeded, want error", name)
		}
	}
}

func TestCreateRejectsBadOptions(t *testing.T) {
	c := startTestServer(t)
	if _, err := c.Create(CreatePayload{Flags: "sticky"}); err == nil {
		t.Error("Create() with unknown flag succeeded, want error")
	}
	if _, err := c.Create(CreatePayload{Content: "video"}); err == nil {
		t.Error("Create() with unknown content succeeded, want error")
	}
}

func TestPointerClickClosesWindow(t *testing.T) {
	c := startTestServer(t)
	id, err := c.Create(CreatePayload{Title: "w"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Close box of the default 50,50 300x200 window spans x 328..347.
	p, err := c.Click(335, 55)
	if err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if p.X != 335 || p.Y != 55 {
		t.Errorf("pointer = (%d,%d), want (335,55)", p.X, p.Y)
	}
	if err := c.Focus(id); err == nil {
		t.Error("window still exists after clicking its close box")
	}
}

func TestStatusAndSnapshot(t *testing.T) {
	c := startTestServer(t)
	if _, err := c.Create(CreatePayload{Title: "w"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	st, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if st.Backend != "headless" || st.Windows != 1 || st.Focused != 1 || st.Phase != "idle" {
		t.Errorf("GetStatus() = %+v", st)
	}
	if st.ScreenWidth != 1024 || st.ScreenHeight != 768 {
		t.Errorf("screen = %dx%d, want 1024x768", st.ScreenWidth, st.ScreenHeight)
	}

	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	img, err := snapshot.Decode(snap.PNG)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 1024 || img.Bounds().Dy() != 768 {
		t.Errorf("snapshot size = %v, want 1024x768", img.Bounds())
	}
	// The focused border left of the title bar.
	r, g, b, _ := img.At(48, 60).RGBA()
	if r>>8 != 0x00 || g>>8 != 0x78 || b>>8 != 0xD4 {
		t.Errorf("pixel (48,60) = %02x%02x%02x, want 0078d4", r>>8, g>>8, b>>8)
	}
}

func TestSetBoundsShrinksScreen(t *testing.T) {
	c := startTestServer(t)
	id, err := c.Create(CreatePayload{Title: "w"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := c.Move(id, 2000, 2000); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if _, err := c.Pointer(PointerPayload{Absolute: true, X: 1000, Y: 700}); err != nil {
		t.Fatalf("Pointer() error = %v", err)
	}

	b, err := c.SetBounds(640, 480)
	if err != nil {
		t.Fatalf("SetBounds() error = %v", err)
	}
	if b.Width != 640 || b.Height != 480 || b.PointerX != 639 || b.PointerY != 479 {
		t.Errorf("SetBounds(640, 480) = %+v, want 640x480 with pointer (639,479)", b)
	}

	st, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if st.ScreenWidth != 640 || st.ScreenHeight != 480 {
		t.Errorf("screen = %dx%d, want 640x480", st.ScreenWidth, st.ScreenHeight)
	}
	list, _ := c.List()
	if len(list) != 1 || list[0].X != 340 || list[0].Y != 280 {
		t.Errorf("window after SetBounds = %+v, want origin (340,280)", list)
	}

	b, err = c.SetBounds(4096, 4096)
	if err != nil {
		t.Fatalf("SetBounds() error = %v", err)
	}
	if b.Width != 1024 || b.Height != 768 {
		t.Errorf("SetBounds(4096, 4096) = %dx%d, want 1024x768", b.Width, b.Height)
	}

	if _, err := c.SetBounds(0, 480); err == nil {
		t.Error("SetBounds(0, 480) succeeded, want error")
	}
}

func TestUnknownCommand(t *testing.T) {
	c := startTestServer(t)
	if err := c.call("BOGUS", nil, nil); err == nil {
		t.Fatal("unknown command succeeded, want error")
	}
}

func TestClientWithoutDaemon(t *testing.T) {
	c := NewClientWithSocket(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil {
		t.Fatal("Ping() without a daemon succeeded, want error")
	}
}
