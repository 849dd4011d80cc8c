package theme

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Theme holds the compositor palette as packed 0xRRGGBB values.
type Theme struct {
	Name         string
	Desktop      uint32
	WindowBG     uint32
	Border       uint32
	BorderFocus  uint32
	TitleBG      uint32
	TitleUnfocus uint32
	TitleText    uint32
	CloseButton  uint32
	CloseGlyph   uint32
	CursorFill   uint32
	CursorEdge   uint32
}

// Default returns the built-in dark palette.
func Default() Theme {
	return Theme{
		Name:         "default",
		Desktop:      0x1E1E1E,
		WindowBG:     0x2D2D2D,
		Border:       0x404040,
		BorderFocus:  0x0078D4,
		TitleBG:      0x3A3A3A,
		TitleUnfocus: 0x5A5A5A,
		TitleText:    0xFFFFFF,
		CloseButton:  0xFF5555,
		CloseGlyph:   0xFFFFFF,
		CursorFill:   0xFFFFFF,
		CursorEdge:   0x000000,
	}
}

type tomlTheme struct {
	Name   string     `toml:"name"`
	Base   tomlBase   `toml:"base"`
	Window tomlWindow `toml:"window"`
	Cursor tomlCursor `toml:"cursor"`
}

type tomlBase struct {
	Desktop string `toml:"desktop"`
}

type tomlWindow struct {
	Background   string `toml:"background"`
	Border       string `toml:"border"`
	BorderFocus  string `toml:"border_focus"`
	Title        string `toml:"title"`
	TitleUnfocus string `toml:"title_unfocused"`
	TitleText    string `toml:"title_text"`
	Close        string `toml:"close"`
	CloseGlyph   string `toml:"close_glyph"`
}

type tomlCursor struct {
	Fill    string `toml:"fill"`
	Outline string `toml:"outline"`
}

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LoadFromTOML parses a theme. Keys that are absent keep their default
// values; keys that are present must be #RRGGBB colours.
func LoadFromTOML(data []byte) (Theme, error) {
	var tt tomlTheme
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&tt)
	if err != nil {
		return Theme{}, fmt.Errorf("theme: parse TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Theme{}, fmt.Errorf("theme: unknown key %q", undecoded[0].String())
	}

	t := Default()
	if tt.Name != "" {
		t.Name = tt.Name
	}
	fields := []struct {
		key string
		val string
		dst *uint32
	}{
		{"base.desktop", tt.Base.Desktop, &t.Desktop},
		{"window.background", tt.Window.Background, &t.WindowBG},
		{"window.border", tt.Window.Border, &t.Border},
		{"window.border_focus", tt.Window.BorderFocus, &t.BorderFocus},
		{"window.title", tt.Window.Title, &t.TitleBG},
		{"window.title_unfocused", tt.Window.TitleUnfocus, &t.TitleUnfocus},
		{"window.title_text", tt.Window.TitleText, &t.TitleText},
		{"window.close", tt.Window.Close, &t.CloseButton},
		{"window.close_glyph", tt.Window.CloseGlyph, &t.CloseGlyph},
		{"cursor.fill", tt.Cursor.Fill, &t.CursorFill},
		{"cursor.outline", tt.Cursor.Outline, &t.CursorEdge},
	}
	for _, f := range fields {
		if f.val == "" {
			continue
		}
		c, err := ParseColor(f.val)
		if err != nil {
			return Theme{}, fmt.Errorf("theme: %s: %w", f.key, err)
		}
		*f.dst = c
	}
	return t, nil
}

// LoadFile reads a theme file. An empty path yields the default theme.
func LoadFile(path string) (Theme, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("theme: read %s: %w", path, err)
	}
	return LoadFromTOML(data)
}

// ParseColor parses "#RRGGBB".
func ParseColor(s string) (uint32, error) {
	if !hexColorRegex.MatchString(s) {
		return 0, fmt.Errorf("invalid colour %q, want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return uint32(v), nil
}

// FormatColor renders c as "#RRGGBB".
func FormatColor(c uint32) string {
	return fmt.Sprintf("#%06X", c&0xFFFFFF)
}
