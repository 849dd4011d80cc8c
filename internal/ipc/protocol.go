package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus CommandType = "GET_STATUS"
	CommandCreate    CommandType = "CREATE"
	CommandDestroy   CommandType = "DESTROY"
	CommandMove      CommandType = "MOVE"
	CommandResize    CommandType = "RESIZE"
	CommandFocus     CommandType = "FOCUS"
	CommandRaise     CommandType = "RAISE"
	CommandLower     CommandType = "LOWER"
	CommandMaximize  CommandType = "MAXIMIZE"
	CommandMinimize  CommandType = "MINIMIZE"
	CommandRestore   CommandType = "RESTORE"
	CommandShow      CommandType = "SHOW"
	CommandHide      CommandType = "HIDE"
	CommandSetTitle  CommandType = "SET_TITLE"
	CommandList      CommandType = "LIST"
	CommandCount     CommandType = "COUNT"
	CommandPointer   CommandType = "POINTER"
	CommandSnapshot  CommandType = "SNAPSHOT"
	CommandSetBounds CommandType = "SET_BOUNDS"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Backend       string   `json:"backend"`
	Windows       int      `json:"windows"`
	Capacity      int      `json:"capacity"`
	Focused       uint32   `json:"focused,omitempty"`
	PointerX      int      `json:"pointer_x"`
	PointerY      int      `json:"pointer_y"`
	Buttons       []string `json:"buttons,omitempty"`
	Phase         string   `json:"phase"`
	Target        uint32   `json:"target,omitempty"`
	ScreenWidth   int      `json:"screen_width"`
	ScreenHeight  int      `json:"screen_height"`
	Frames        uint64   `json:"frames"`
	Packets       uint64   `json:"packets"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	DaemonRunning bool     `json:"daemon_running"`
}

// WindowInfo describes one window. Z is 0 for the front window.
type WindowInfo struct {
	ID     uint32   `json:"id"`
	Title  string   `json:"title"`
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Flags  []string `json:"flags"`
	Z      int      `json:"z"`
}

// HasFlag reports whether the named flag is set.
func (w WindowInfo) HasFlag(name string) bool {
	for _, f := range w.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// WindowsData represents the data returned by LIST
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// CountData represents the data returned by COUNT
type CountData struct {
	Count    int `json:"count"`
	Capacity int `json:"capacity"`
}

// CreatePayload represents the payload for CREATE. Zero geometry fields
// take the defaults.
type CreatePayload struct {
	Title   string `json:"title"`
	X       *int   `json:"x,omitempty"`
	Y       *int   `json:"y,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Flags   string `json:"flags,omitempty"`
	Content string `json:"content,omitempty"`
	Color   string `json:"color,omitempty"`
	Text    string `json:"text,omitempty"`
}

// CreatedData represents the data returned by CREATE
type CreatedData struct {
	ID uint32 `json:"id"`
}

// WindowPayload names the target of single-window commands.
type WindowPayload struct {
	ID uint32 `json:"id"`
}

type MovePayload struct {
	ID uint32 `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

type ResizePayload struct {
	ID     uint32 `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type SetTitlePayload struct {
	ID    uint32 `json:"id"`
	Title string `json:"title"`
}

// PointerPayload injects pointer input. With Absolute set, X and Y are a
// screen position; otherwise DX and DY are relative with positive DY up.
// Click presses and releases the left button at the resulting position.
type PointerPayload struct {
	Absolute bool `json:"absolute,omitempty"`
	X        int  `json:"x,omitempty"`
	Y        int  `json:"y,omitempty"`
	DX       int  `json:"dx,omitempty"`
	DY       int  `json:"dy,omitempty"`
	Left     bool `json:"left,omitempty"`
	Middle   bool `json:"middle,omitempty"`
	Right    bool `json:"right,omitempty"`
	Click    bool `json:"click,omitempty"`
}

// PointerData is the pointer state after a POINTER command.
type PointerData struct {
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Buttons []string `json:"buttons,omitempty"`
}

// BoundsPayload is the new screen size for SET_BOUNDS. The daemon caps it
// to the framebuffer.
type BoundsPayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BoundsData is the screen and pointer after SET_BOUNDS.
type BoundsData struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	PointerX int `json:"pointer_x"`
	PointerY int `json:"pointer_y"`
}

// SnapshotData carries the current frame as PNG bytes.
type SnapshotData struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	PNG    []byte `json:"png"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
