package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/1broseidon/deskwm/internal/ipc"
)

// fakeClient records calls and keeps a tiny window table.
type fakeClient struct {
	windows []ipc.WindowInfo
	nextID  uint32
	calls   []string
	lastPos [2]int
}

func newFakeClient() *fakeClient { return &fakeClient{nextID: 1} }

func (f *fakeClient) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeClient) find(id uint32) (*ipc.WindowInfo, error) {
	for i := range f.windows {
		if f.windows[i].ID == id {
			return &f.windows[i], nil
		}
	}
	return nil, fmt.Errorf("window %d: not found", id)
}

func (f *fakeClient) op(name string) func(uint32) error {
	return func(id uint32) error {
		if _, err := f.find(id); err != nil {
			return err
		}
		f.record("%s %d", name, id)
		return nil
	}
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{Windows: len(f.windows), Capacity: 4, ScreenWidth: 1024, ScreenHeight: 768}, nil
}

func (f *fakeClient) List() ([]ipc.WindowInfo, error) { return f.windows, nil }

func (f *fakeClient) Count() (*ipc.CountData, error) {
	return &ipc.CountData{Count: len(f.windows), Capacity: 4}, nil
}

func (f *fakeClient) Create(p ipc.CreatePayload) (uint32, error) {
	if len(f.windows) == 4 {
		return 0, errors.New("out of window capacity")
	}
	id := f.nextID
	f.nextID++
	f.windows = append(f.windows, ipc.WindowInfo{ID: id, Title: p.Title, Flags: []string{"visible"}})
	f.record("create %q", p.Title)
	return id, nil
}

func (f *fakeClient) Destroy(id uint32) error {
	if err := f.op("destroy")(id); err != nil {
		return err
	}
	for i := range f.windows {
		if f.windows[i].ID == id {
			f.windows = append(f.windows[:i], f.windows[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeClient) Move(id uint32, x, y int) (*ipc.WindowInfo, error) {
	w, err := f.find(id)
	if err != nil {
		return nil, err
	}
	w.X, w.Y = min(x, 724), min(y, 568)
	return w, nil
}

func (f *fakeClient) Resize(id uint32, width, height int) (*ipc.WindowInfo, error) {
	w, err := f.find(id)
	if err != nil {
		return nil, err
	}
	w.Width, w.Height = width, height
	return w, nil
}

func (f *fakeClient) Focus(id uint32) error    { return f.op("focus")(id) }
func (f *fakeClient) Raise(id uint32) error    { return f.op("raise")(id) }
func (f *fakeClient) Lower(id uint32) error    { return f.op("lower")(id) }
func (f *fakeClient) Maximize(id uint32) error { return f.op("maximize")(id) }
func (f *fakeClient) Minimize(id uint32) error { return f.op("minimize")(id) }
func (f *fakeClient) Restore(id uint32) error  { return f.op("restore")(id) }
func (f *fakeClient) Show(id uint32) error     { return f.op("show")(id) }
func (f *fakeClient) Hide(id uint32) error     { return f.op("hide")(id) }

func (f *fakeClient) Click(x, y int) (*ipc.PointerData, error) {
	f.record("click %d,%d", x, y)
	return &ipc.PointerData{X: x, Y: y}, nil
}

func newTestServer(t *testing.T) (*Server, *fakeClient) {
	t.Helper()
	fc := newFakeClient()
	s, err := NewServer(fc, nil)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s, fc
}

func TestNewServerRequiresClient(t *testing.T) {
	if _, err := NewServer(nil, nil); err == nil {
		t.Fatal("NewServer(nil) succeeded, want error")
	}
}

func TestCreateAndListWindows(t *testing.T) {
	s, fc := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleCreateWindow(ctx, nil, CreateWindowInput{Title: "Editor"})
	if err != nil {
		t.Fatalf("create_window error = %v", err)
	}
	if out.ID != 1 {
		t.Errorf("create_window id = %d, want 1", out.ID)
	}
	fc.windows = append(fc.windows, ipc.WindowInfo{ID: 9, Title: "hidden", Flags: []string{"minimized", "focused"}})

	_, list, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows error = %v", err)
	}
	if len(list.Windows) != 2 || list.Focused != 9 {
		t.Errorf("list_windows = %+v, want 2 windows focused 9", list)
	}

	_, list, _ = s.handleListWindows(ctx, nil, ListWindowsInput{VisibleOnly: true})
	if len(list.Windows) != 1 || list.Windows[0].ID != 1 {
		t.Errorf("list_windows visible_only = %+v, want only window 1", list.Windows)
	}
}

func TestMoveAndResize(t *testing.T) {
	s, fc := newTestServer(t)
	ctx := context.Background()
	id, _ := fc.Create(ipc.CreatePayload{Title: "w"})

	_, out, err := s.handleMoveWindow(ctx, nil, MoveWindowInput{ID: id, X: 2000, Y: 10})
	if err != nil {
		t.Fatalf("move_window error = %v", err)
	}
	if out.Window.X != 724 || out.Window.Y != 10 {
		t.Errorf("move_window = (%d,%d), want (724,10)", out.Window.X, out.Window.Y)
	}

	if _, _, err := s.handleResizeWindow(ctx, nil, ResizeWindowInput{ID: id, Width: 0, Height: 10}); err == nil {
		t.Error("resize_window with zero width succeeded, want error")
	}
	_, out, err = s.handleResizeWindow(ctx, nil, ResizeWindowInput{ID: id, Width: 400, Height: 300})
	if err != nil {
		t.Fatalf("resize_window error = %v", err)
	}
	if out.Window.Width != 400 || out.Window.Height != 300 {
		t.Errorf("resize_window = %dx%d, want 400x300", out.Window.Width, out.Window.Height)
	}
}

func TestSetWindowState(t *testing.T) {
	s, fc := newTestServer(t)
	ctx := context.Background()
	id, _ := fc.Create(ipc.CreatePayload{Title: "w"})

	for _, state := range []string{"maximize", "minimize", "restore", "show", "hide", "raise", "lower"} {
		t.Run(state, func(t *testing.T) {
			fc.calls = nil
			if _, _, err := s.handleSetWindowState(ctx, nil, SetWindowStateInput{ID: id, State: state}); err != nil {
				t.Fatalf("set_window_state(%q) error = %v", state, err)
			}
			want := fmt.Sprintf("%s %d", state, id)
			if len(fc.calls) != 1 || fc.calls[0] != want {
				t.Errorf("calls = %v, want [%s]", fc.calls, want)
			}
		})
	}

	if _, _, err := s.handleSetWindowState(ctx, nil, SetWindowStateInput{ID: id, State: "fullscreen"}); err == nil {
		t.Error("set_window_state(fullscreen) succeeded, want error")
	}
	if _, _, err := s.handleSetWindowState(ctx, nil, SetWindowStateInput{ID: 99, State: "maximize"}); err == nil {
		t.Error("set_window_state on unknown window succeeded, want error")
	}
}

func TestDestroyFocusAndCount(t *testing.T) {
	s, fc := newTestServer(t)
	ctx := context.Background()
	id, _ := fc.Create(ipc.CreatePayload{Title: "w"})

	if _, out, err := s.handleFocusWindow(ctx, nil, WindowInput{ID: id}); err != nil || !out.OK {
		t.Fatalf("focus_window = %+v, %v", out, err)
	}
	if _, out, err := s.handleDestroyWindow(ctx, nil, WindowInput{ID: id}); err != nil || !out.OK {
		t.Fatalf("destroy_window = %+v, %v", out, err)
	}
	_, count, err := s.handleWindowCount(ctx, nil, WindowCountInput{})
	if err != nil {
		t.Fatalf("window_count error = %v", err)
	}
	if count.Count != 0 || count.Capacity != 4 {
		t.Errorf("window_count = %+v, want 0 of 4", count)
	}
}

func TestClick(t *testing.T) {
	s, fc := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleClick(ctx, nil, ClickInput{X: 335, Y: 55})
	if err != nil {
		t.Fatalf("click error = %v", err)
	}
	if out.X != 335 || out.Y != 55 {
		t.Errorf("click = (%d,%d), want (335,55)", out.X, out.Y)
	}
	if len(fc.calls) != 1 || fc.calls[0] != "click 335,55" {
		t.Errorf("calls = %v, want [click 335,55]", fc.calls)
	}

	if _, _, err := s.handleClick(ctx, nil, ClickInput{X: 1024, Y: 0}); err == nil {
		t.Error("click off screen succeeded, want error")
	}
}
