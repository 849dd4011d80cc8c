package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/deskwm/internal/runtimepath"
)

// DefaultClientTimeout bounds one request round trip.
const DefaultClientTimeout = 5 * time.Second

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    DefaultClientTimeout,
	}
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string { return c.socketPath }

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends cmd with an optional payload and decodes the reply into out
// when out is non-nil.
func (c *Client) call(cmd CommandType, payload, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Create opens a window and returns its id.
func (c *Client) Create(p CreatePayload) (uint32, error) {
	var data CreatedData
	if err := c.call(CommandCreate, p, &data); err != nil {
		return 0, err
	}
	return data.ID, nil
}

// Destroy closes a window.
func (c *Client) Destroy(id uint32) error {
	return c.call(CommandDestroy, WindowPayload{ID: id}, nil)
}

// Move positions a window and returns its clamped geometry.
func (c *Client) Move(id uint32, x, y int) (*WindowInfo, error) {
	var info WindowInfo
	if err := c.call(CommandMove, MovePayload{ID: id, X: x, Y: y}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Resize changes a window's size and returns its fitted geometry.
func (c *Client) Resize(id uint32, width, height int) (*WindowInfo, error) {
	var info WindowInfo
	if err := c.call(CommandResize, ResizePayload{ID: id, Width: width, Height: height}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Focus focuses and raises a window.
func (c *Client) Focus(id uint32) error { return c.call(CommandFocus, WindowPayload{ID: id}, nil) }

// Raise brings a window to the front.
func (c *Client) Raise(id uint32) error { return c.call(CommandRaise, WindowPayload{ID: id}, nil) }

// Lower sends a window to the back.
func (c *Client) Lower(id uint32) error { return c.call(CommandLower, WindowPayload{ID: id}, nil) }

// Maximize fills the screen with a window.
func (c *Client) Maximize(id uint32) error {
	return c.call(CommandMaximize, WindowPayload{ID: id}, nil)
}

// Minimize hides a window.
func (c *Client) Minimize(id uint32) error {
	return c.call(CommandMinimize, WindowPayload{ID: id}, nil)
}

// Restore undoes minimize and maximize.
func (c *Client) Restore(id uint32) error {
	return c.call(CommandRestore, WindowPayload{ID: id}, nil)
}

// Show makes a window visible.
func (c *Client) Show(id uint32) error { return c.call(CommandShow, WindowPayload{ID: id}, nil) }

// Hide makes a window invisible.
func (c *Client) Hide(id uint32) error { return c.call(CommandHide, WindowPayload{ID: id}, nil) }

// SetTitle renames a window.
func (c *Client) SetTitle(id uint32, title string) error {
	return c.call(CommandSetTitle, SetTitlePayload{ID: id, Title: title}, nil)
}

// List returns all windows front to back.
func (c *Client) List() ([]WindowInfo, error) {
	var data WindowsData
	if err := c.call(CommandList, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// Count returns the live window count and the capacity.
func (c *Client) Count() (*CountData, error) {
	var data CountData
	if err := c.call(CommandCount, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Pointer injects pointer input and returns the resulting pointer state.
func (c *Client) Pointer(p PointerPayload) (*PointerData, error) {
	var data PointerData
	if err := c.call(CommandPointer, p, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Click presses and releases the left button at (x, y).
func (c *Client) Click(x, y int) (*PointerData, error) {
	return c.Pointer(PointerPayload{Absolute: true, X: x, Y: y, Click: true})
}

// Snapshot fetches the current frame.
func (c *Client) Snapshot() (*SnapshotData, error) {
	var data SnapshotData
	if err := c.call(CommandSnapshot, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SetBounds changes the screen size. The returned size is what the daemon
// applied after capping it to the framebuffer.
func (c *Client) SetBounds(width, height int) (*BoundsData, error) {
	var data BoundsData
	if err := c.call(CommandSetBounds, BoundsPayload{Width: width, Height: height}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
