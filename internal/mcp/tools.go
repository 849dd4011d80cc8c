package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskwm/internal/ipc"
)

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.client.List()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]ipc.WindowInfo, 0, len(windows))}
	for _, w := range windows {
		if w.HasFlag("focused") {
			out.Focused = w.ID
		}
		if args.VisibleOnly && !w.HasFlag("visible") {
			continue
		}
		out.Windows = append(out.Windows, w)
	}
	return nil, out, nil
}

func (s *Server) handleCreateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateWindowInput) (*mcpsdk.CallToolResult, CreateWindowOutput, error) {
	id, err := s.client.Create(ipc.CreatePayload{
		Title:   args.Title,
		X:       args.X,
		Y:       args.Y,
		Width:   args.Width,
		Height:  args.Height,
		Flags:   args.Flags,
		Content: args.Content,
		Color:   args.Color,
		Text:    args.Text,
	})
	if err != nil {
		s.logger.Warn("create_window failed", "title", args.Title, "error", err)
		return nil, CreateWindowOutput{}, err
	}
	s.logger.Info("create_window", "window", id, "title", args.Title)
	return nil, CreateWindowOutput{ID: id}, nil
}

func (s *Server) handleDestroyWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if err := s.client.Destroy(args.ID); err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{OK: true}, nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	info, err := s.client.Move(args.ID, args.X, args.Y)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: info, OK: true}, nil
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if args.Width <= 0 || args.Height <= 0 {
		return nil, WindowOutput{}, fmt.Errorf("width and height must be positive, got %dx%d", args.Width, args.Height)
	}
	info, err := s.client.Resize(args.ID, args.Width, args.Height)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: info, OK: true}, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if err := s.client.Focus(args.ID); err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{OK: true}, nil
}

func (s *Server) handleSetWindowState(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWindowStateInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	op, err := s.stateOp(args.State)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if err := op(args.ID); err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{OK: true}, nil
}

// stateOp maps a set_window_state name to the client call.
func (s *Server) stateOp(state string) (func(uint32) error, error) {
	switch state {
	case "maximize":
		return s.client.Maximize, nil
	case "minimize":
		return s.client.Minimize, nil
	case "restore":
		return s.client.Restore, nil
	case "show":
		return s.client.Show, nil
	case "hide":
		return s.client.Hide, nil
	case "raise":
		return s.client.Raise, nil
	case "lower":
		return s.client.Lower, nil
	default:
		return nil, fmt.Errorf("unknown window state %q (want maximize, minimize, restore, show, hide, raise or lower)", state)
	}
}

func (s *Server) handleWindowCount(_ context.Context, _ *mcpsdk.CallToolRequest, _ WindowCountInput) (*mcpsdk.CallToolResult, WindowCountOutput, error) {
	count, err := s.client.Count()
	if err != nil {
		return nil, WindowCountOutput{}, err
	}
	return nil, WindowCountOutput{Count: count.Count, Capacity: count.Capacity}, nil
}

func (s *Server) handleClick(_ context.Context, _ *mcpsdk.CallToolRequest, args ClickInput) (*mcpsdk.CallToolResult, ClickOutput, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return nil, ClickOutput{}, err
	}
	if args.X < 0 || args.Y < 0 || args.X >= st.ScreenWidth || args.Y >= st.ScreenHeight {
		return nil, ClickOutput{}, fmt.Errorf("click (%d,%d) is outside the %dx%d screen", args.X, args.Y, st.ScreenWidth, st.ScreenHeight)
	}
	p, err := s.client.Click(args.X, args.Y)
	if err != nil {
		return nil, ClickOutput{}, err
	}
	windows, err := s.client.List()
	if err != nil {
		return nil, ClickOutput{}, err
	}
	return nil, ClickOutput{X: p.X, Y: p.Y, Windows: windows}, nil
}
