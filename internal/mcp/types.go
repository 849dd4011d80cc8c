package mcp

import "github.com/1broseidon/deskwm/internal/ipc"

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	VisibleOnly bool `json:"visible_only,omitempty" jsonschema:"When true, omit hidden and minimized windows"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []ipc.WindowInfo `json:"windows"`
	Focused uint32           `json:"focused,omitempty"`
}

// CreateWindowInput is the input for the create_window tool.
type CreateWindowInput struct {
	Title   string `json:"title" jsonschema:"Window title (at most 63 characters are kept)"`
	X       *int   `json:"x,omitempty" jsonschema:"Left edge in pixels (default: 50)"`
	Y       *int   `json:"y,omitempty" jsonschema:"Top edge in pixels (default: 50)"`
	Width   int    `json:"width,omitempty" jsonschema:"Width in pixels (default: 300, minimum 120)"`
	Height  int    `json:"height,omitempty" jsonschema:"Height in pixels including the title bar (default: 200, minimum 80)"`
	Flags   string `json:"flags,omitempty" jsonschema:"Comma separated capabilities: movable, resizable, closable, or none (default: all three)"`
	Content string `json:"content,omitempty" jsonschema:"Built-in content: none, solid, checker, palette, keypad or text"`
	Color   string `json:"color,omitempty" jsonschema:"Fill colour for solid content as #RRGGBB"`
	Text    string `json:"text,omitempty" jsonschema:"Body for text content; lines are split on newlines"`
}

// CreateWindowOutput is the output for the create_window tool.
type CreateWindowOutput struct {
	ID uint32 `json:"id"`
}

// WindowInput names a window.
type WindowInput struct {
	ID uint32 `json:"id" jsonschema:"Window id as returned by create_window or list_windows"`
}

// WindowOutput reports a window after a change.
type WindowOutput struct {
	Window *ipc.WindowInfo `json:"window,omitempty"`
	OK     bool            `json:"ok"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	ID uint32 `json:"id" jsonschema:"Window id"`
	X  int    `json:"x" jsonschema:"New left edge; clamped so the window stays on screen"`
	Y  int    `json:"y" jsonschema:"New top edge; clamped so the window stays on screen"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	ID     uint32 `json:"id" jsonschema:"Window id"`
	Width  int    `json:"width" jsonschema:"New width in pixels"`
	Height int    `json:"height" jsonschema:"New height in pixels"`
}

// SetWindowStateInput is the input for the set_window_state tool.
type SetWindowStateInput struct {
	ID    uint32 `json:"id" jsonschema:"Window id"`
	State string `json:"state" jsonschema:"One of maximize, minimize, restore, show, hide, raise, lower"`
}

// WindowCountInput is the input for the window_count tool.
type WindowCountInput struct{}

// WindowCountOutput is the output for the window_count tool.
type WindowCountOutput struct {
	Count    int `json:"count"`
	Capacity int `json:"capacity"`
}

// ClickInput is the input for the click tool.
type ClickInput struct {
	X int `json:"x" jsonschema:"Screen x of the click"`
	Y int `json:"y" jsonschema:"Screen y of the click"`
}

// ClickOutput is the output for the click tool.
type ClickOutput struct {
	X       int              `json:"x"`
	Y       int              `json:"y"`
	Windows []ipc.WindowInfo `json:"windows"`
}
