package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/deskwm/internal/desktop"
	"github.com/1broseidon/deskwm/internal/pointer"
	"github.com/1broseidon/deskwm/internal/runtimepath"
	"github.com/1broseidon/deskwm/internal/snapshot"
	"github.com/1broseidon/deskwm/internal/wm"
)

// DefaultRequestTimeout bounds how long one command may wait for the
// desktop loop.
const DefaultRequestTimeout = 2 * time.Second

// Executor runs a function on the goroutine that owns the desktop.
// *desktop.Loop implements it.
type Executor interface {
	Do(ctx context.Context, fn func(*desktop.Desktop) error) error
}

// ServerConfig configures a Server.
type ServerConfig struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath     string
	Exec           Executor
	Backend        string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	exec       Executor
	backend    string
	timeout    time.Duration
	logger     *slog.Logger
	startTime  time.Time

	listener     net.Listener
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Exec == nil {
		return nil, errors.New("ipc server requires an executor")
	}
	if cfg.SocketPath == "" {
		socketPath, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		cfg.SocketPath = socketPath
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Server{
		socketPath: cfg.SocketPath,
		exec:       cfg.Exec,
		backend:    cfg.Backend,
		timeout:    cfg.RequestTimeout,
		logger:     cfg.Logger,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove existing socket if present
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.shutdownMu.Lock()
	s.listener = listener
	s.shuttingDown = false
	s.shutdownMu.Unlock()

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop(listener)

	return nil
}

// Serve runs the server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

// String names the service for supervision logs.
func (s *Server) String() string { return "ipc-server" }

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)

	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandCreate:
		return s.handleCreate(ctx, req.Payload)
	case CommandDestroy:
		return s.windowCommand(ctx, req.Payload, (*desktop.Desktop).Destroy)
	case CommandFocus:
		return s.windowCommand(ctx, req.Payload, (*desktop.Desktop).Focus)
	case CommandRaise:
		return s.windowCommand(ctx, req.Payload, (*desktop.Desktop).Raise)
	case CommandLower:
		return s.windowCommand(ctx, req.Payload, (*desktop.Desktop).Lower)
	case CommandMaximize:
		return s.windowCommand(ctx, req.Payload, (*desktop.Desktop).Maximize)
	case CommandMinimize:
		return s.windowCommand(ctx, req.Payload, (*desktop.Desktop).Minimize)
	case CommandRestore:
		return s.windowCommand(ctx, req.Payload, (*desktop.Desktop).Restore)
	case CommandShow:
		return s.windowCommand(ctx, req.Payload, (*desktop.Desktop).Show)
	case CommandHide:
		return s.windowCommand(ctx, req.Payload, (*desktop.Desktop).Hide)
	case CommandMove:
		return s.handleMove(ctx, req.Payload)
	case CommandResize:
		return s.handleResize(ctx, req.Payload)
	case CommandSetTitle:
		return s.handleSetTitle(ctx, req.Payload)
	case CommandList:
		return s.handleList(ctx)
	case CommandCount:
		return s.handleCount(ctx)
	case CommandPointer:
		return s.handlePointer(ctx, req.Payload)
	case CommandSnapshot:
		return s.handleSnapshot(ctx)
	case CommandSetBounds:
		return s.handleSetBounds(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// run executes fn on the desktop loop and turns the result into a response.
func (s *Server) run(ctx context.Context, fn func(*desktop.Desktop) (any, error)) *Response {
	var data any
	err := s.exec.Do(ctx, func(d *desktop.Desktop) error {
		var err error
		data, err = fn(d)
		return err
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		st := d.Status()
		return StatusData{
			Backend:       s.backend,
			Windows:       st.Windows,
			Capacity:      st.Capacity,
			Focused:       uint32(st.Focused),
			PointerX:      st.Pointer.X,
			PointerY:      st.Pointer.Y,
			Buttons:       ButtonNames(st.Pointer.Buttons),
			Phase:         st.Phase,
			Target:        uint32(st.Target),
			ScreenWidth:   st.Screen.Width,
			ScreenHeight:  st.Screen.Height,
			Frames:        st.Frames,
			Packets:       st.Packets,
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
			DaemonRunning: true,
		}, nil
	})
}

func (s *Server) handleCreate(ctx context.Context, payload json.RawMessage) *Response {
	var req CreatePayload
	if len(payload) > 0 {
		if err := decode(payload, &req); err != nil {
			return NewErrorResponse(err.Error())
		}
	}
	spec, err := desktop.WindowOptions{
		Title:   req.Title,
		X:       req.X,
		Y:       req.Y,
		Width:   req.Width,
		Height:  req.Height,
		Flags:   req.Flags,
		Content: req.Content,
		Color:   req.Color,
		Text:    req.Text,
	}.Spec()
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		id, err := d.Create(spec)
		if err != nil {
			return nil, err
		}
		s.logger.Info("window created", "window", id, "title", spec.Title)
		return CreatedData{ID: uint32(id)}, nil
	})
}

func (s *Server) windowCommand(ctx context.Context, payload json.RawMessage, op func(*desktop.Desktop, wm.ID) error) *Response {
	var req WindowPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		return nil, op(d, wm.ID(req.ID))
	})
}

func (s *Server) handleMove(ctx context.Context, payload json.RawMessage) *Response {
	var req MovePayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		if err := d.Move(wm.ID(req.ID), req.X, req.Y); err != nil {
			return nil, err
		}
		return windowInfo(d, wm.ID(req.ID))
	})
}

func (s *Server) handleResize(ctx context.Context, payload json.RawMessage) *Response {
	var req ResizePayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		if err := d.Resize(wm.ID(req.ID), req.Width, req.Height); err != nil {
			return nil, err
		}
		return windowInfo(d, wm.ID(req.ID))
	})
}

func (s *Server) handleSetTitle(ctx context.Context, payload json.RawMessage) *Response {
	var req SetTitlePayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		return nil, d.SetTitle(wm.ID(req.ID), req.Title)
	})
}

func (s *Server) handleList(ctx context.Context) *Response {
	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		list := d.Registry().List()
		data := WindowsData{Windows: make([]WindowInfo, len(list))}
		for i, info := range list {
			data.Windows[i] = toWindowInfo(info)
		}
		return data, nil
	})
}

func (s *Server) handleCount(ctx context.Context) *Response {
	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		return CountData{Count: d.Registry().Count(), Capacity: d.Registry().Capacity()}, nil
	})
}

func (s *Server) handlePointer(ctx context.Context, payload json.RawMessage) *Response {
	var req PointerPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	held := pointer.Buttons{Left: req.Left, Middle: req.Middle, Right: req.Right}
	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		if req.Absolute {
			d.PointerTo(req.X, req.Y, held)
		} else {
			d.MovePointer(req.DX, req.DY, held)
		}
		if req.Click {
			p := d.Pointer()
			d.Click(p.X, p.Y)
		}
		p := d.Pointer()
		return PointerData{X: p.X, Y: p.Y, Buttons: ButtonNames(p.Buttons)}, nil
	})
}

func (s *Server) handleSnapshot(ctx context.Context) *Response {
	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		img := d.Snapshot()
		data, err := snapshot.EncodePNG(img)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		return SnapshotData{Width: b.Dx(), Height: b.Dy(), PNG: data}, nil
	})
}

func (s *Server) handleSetBounds(ctx context.Context, payload json.RawMessage) *Response {
	var req BoundsPayload
	if err := decode(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	if req.Width <= 0 || req.Height <= 0 {
		return NewErrorResponse(fmt.Sprintf("invalid screen size %dx%d", req.Width, req.Height))
	}
	return s.run(ctx, func(d *desktop.Desktop) (any, error) {
		screen := d.SetBounds(req.Width, req.Height)
		p := d.Pointer()
		s.logger.Info("screen bounds changed", "width", screen.Width, "height", screen.Height)
		return BoundsData{Width: screen.Width, Height: screen.Height, PointerX: p.X, PointerY: p.Y}, nil
	})
}

func windowInfo(d *desktop.Desktop, id wm.ID) (WindowInfo, error) {
	info, err := d.Info(id)
	if err != nil {
		return WindowInfo{}, err
	}
	return toWindowInfo(info), nil
}

func toWindowInfo(info wm.Info) WindowInfo {
	flags := info.Flags.Names()
	if flags == nil {
		flags = []string{}
	}
	return WindowInfo{
		ID:     uint32(info.ID),
		Title:  info.Title,
		X:      info.Bounds.X,
		Y:      info.Bounds.Y,
		Width:  info.Bounds.Width,
		Height: info.Bounds.Height,
		Flags:  flags,
		Z:      info.Z,
	}
}

// ButtonNames lists the held buttons.
func ButtonNames(b pointer.Buttons) []string {
	var names []string
	if b.Left {
		names = append(names, "left")
	}
	if b.Middle {
		names = append(names, "middle")
	}
	if b.Right {
		names = append(names, "right")
	}
	return names
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	listener := s.listener
	s.listener = nil
	s.shutdownMu.Unlock()

	if listener != nil {
		listener.Close()
	}
	os.Remove(s.socketPath)
}
