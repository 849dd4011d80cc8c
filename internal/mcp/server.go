package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskwm/internal/ipc"
)

const (
	ServerName    = "deskwm"
	ServerVersion = "0.1.0"
)

// DesktopClient is the part of the IPC client the tools use. *ipc.Client
// implements it.
type DesktopClient interface {
	GetStatus() (*ipc.StatusData, error)
	List() ([]ipc.WindowInfo, error)
	Count() (*ipc.CountData, error)
	Create(p ipc.CreatePayload) (uint32, error)
	Destroy(id uint32) error
	Move(id uint32, x, y int) (*ipc.WindowInfo, error)
	Resize(id uint32, width, height int) (*ipc.WindowInfo, error)
	Focus(id uint32) error
	Raise(id uint32) error
	Lower(id uint32) error
	Maximize(id uint32) error
	Minimize(id uint32) error
	Restore(id uint32) error
	Show(id uint32) error
	Hide(id uint32) error
	Click(x, y int) (*ipc.PointerData, error)
}

var _ DesktopClient = (*ipc.Client)(nil)

// Server is the MCP server exposing window management to agents.
type Server struct {
	mcpServer *mcpsdk.Server
	client    DesktopClient
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to the daemon.
func NewServer(client DesktopClient, logger *slog.Logger) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("mcp server requires a desktop client")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{client: client, logger: logger}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List desktop windows front to back with their geometry and flags (visible, focused, minimized, maximized, movable, resizable, closable). z is 0 for the front window.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_window",
		Description: "Create a window. Geometry defaults to 50,50 300x200; sizes are raised to the 120x80 minimum and the window is kept on screen. Fails when the desktop is at capacity. The new window is focused and raised. Returns its id.",
	}, s.handleCreateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "destroy_window",
		Description: "Close a window. Focus moves to the front-most remaining visible window.",
	}, s.handleDestroyWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window's top-left corner. The position is clamped so the whole window stays on screen; the clamped geometry is returned.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a window. The size is limited by the minimum, the screen and the window's pixel budget; the fitted geometry is returned.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus a window and bring it to the front. A minimized or hidden window is shown again.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_state",
		Description: "Change a window's state: maximize, minimize, restore, show, hide, raise (front without focus) or lower (back).",
	}, s.handleSetWindowState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_count",
		Description: "Return the number of live windows and the desktop's window capacity.",
	}, s.handleWindowCount)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "click",
		Description: "Move the pointer to x,y and click the left button, as a user would. Clicking a close box closes the window, clicking a title bar or body focuses it. Returns the window list afterwards.",
	}, s.handleClick)
}
