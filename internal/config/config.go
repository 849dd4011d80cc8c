package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/deskwm/internal/desktop"
)

// Screen is the desktop framebuffer geometry. Pitch is the row stride in
// bytes; zero means tightly packed rows.
type Screen struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Pitch  int `yaml:"pitch"`
}

// StartupWindow is a window opened when the daemon starts.
type StartupWindow struct {
	Title   string `yaml:"title"`
	X       *int   `yaml:"x,omitempty"`
	Y       *int   `yaml:"y,omitempty"`
	Width   int    `yaml:"width,omitempty"`
	Height  int    `yaml:"height,omitempty"`
	Flags   string `yaml:"flags,omitempty"`
	Content string `yaml:"content,omitempty"`
	Color   string `yaml:"color,omitempty"`
	Text    string `yaml:"text,omitempty"`
}

// Options converts the entry into desktop window options.
func (w StartupWindow) Options() desktop.WindowOptions {
	return desktop.WindowOptions{
		Title:   w.Title,
		X:       w.X,
		Y:       w.Y,
		Width:   w.Width,
		Height:  w.Height,
		Flags:   w.Flags,
		Content: w.Content,
		Color:   w.Color,
		Text:    w.Text,
	}
}

// Config represents the deskwm configuration.
type Config struct {
	Screen Screen `yaml:"screen"`
	// MaxWindows is the registry capacity.
	MaxWindows int `yaml:"max_windows"`
	// SurfaceCapacity is the pixel budget of one window slot. Zero means
	// the screen area.
	SurfaceCapacity int           `yaml:"surface_capacity"`
	PollBudget      int           `yaml:"poll_budget"`
	Tick            time.Duration `yaml:"tick"`
	FrameInterval   time.Duration `yaml:"frame_interval"`
	// ResizeEdge is the edge grab width in pixels. Zero disables edge
	// resizing.
	ResizeEdge     int             `yaml:"resize_edge"`
	Backend        string          `yaml:"backend"`
	PointerDevice  string          `yaml:"pointer_device,omitempty"`
	FBDevPath      string          `yaml:"fbdev_path,omitempty"`
	ThemeFile      string          `yaml:"theme_file,omitempty"`
	LogLevel       string          `yaml:"log_level"`
	Socket         string          `yaml:"socket,omitempty"`
	StartupWindows []StartupWindow `yaml:"startup_windows,omitempty"`
}

const (
	DefaultScreenWidth   = 1024
	DefaultScreenHeight  = 768
	DefaultMaxWindows    = 16
	DefaultPollBudget    = 64
	DefaultTick          = 5 * time.Millisecond
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultBackend       = "headless"
	DefaultLogLevel      = "info"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Screen: Screen{
			Width:  DefaultScreenWidth,
			Height: DefaultScreenHeight,
		},
		MaxWindows:    DefaultMaxWindows,
		PollBudget:    DefaultPollBudget,
		Tick:          DefaultTick,
		FrameInterval: DefaultFrameInterval,
		Backend:       DefaultBackend,
		LogLevel:      DefaultLogLevel,
	}
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
