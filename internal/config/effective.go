package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/1broseidon/deskwm/internal/platform"
	"github.com/1broseidon/deskwm/internal/wm"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Screen != nil {
		cfg.Screen.Width = derefInt(raw.Screen.Width, cfg.Screen.Width)
		cfg.Screen.Height = derefInt(raw.Screen.Height, cfg.Screen.Height)
		cfg.Screen.Pitch = derefInt(raw.Screen.Pitch, cfg.Screen.Pitch)
	}
	cfg.MaxWindows = derefInt(raw.MaxWindows, cfg.MaxWindows)
	cfg.SurfaceCapacity = derefInt(raw.SurfaceCapacity, cfg.SurfaceCapacity)
	cfg.PollBudget = derefInt(raw.PollBudget, cfg.PollBudget)
	cfg.ResizeEdge = derefInt(raw.ResizeEdge, cfg.ResizeEdge)
	if raw.Tick != nil {
		cfg.Tick = *raw.Tick
	}
	if raw.FrameInterval != nil {
		cfg.FrameInterval = *raw.FrameInterval
	}
	if raw.Backend != nil {
		cfg.Backend = *raw.Backend
	}
	if raw.PointerDevice != nil {
		cfg.PointerDevice = *raw.PointerDevice
	}
	if raw.FBDevPath != nil {
		cfg.FBDevPath = *raw.FBDevPath
	}
	if raw.ThemeFile != nil {
		cfg.ThemeFile = *raw.ThemeFile
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Socket != nil {
		cfg.Socket = *raw.Socket
	}
	if raw.StartupWindows != nil {
		cfg.StartupWindows = raw.StartupWindows
	}
	return cfg
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Screen.Width < wm.MinWidth || c.Screen.Height < wm.MinHeight {
		return &ValidationError{Path: "screen", Err: fmt.Errorf("screen must be at least %dx%d", wm.MinWidth, wm.MinHeight)}
	}
	if c.Screen.Pitch != 0 && c.Screen.Pitch < c.Screen.Width*4 {
		return &ValidationError{Path: "screen.pitch", Err: fmt.Errorf("pitch must be 0 or >= %d", c.Screen.Width*4)}
	}
	if c.MaxWindows < 1 {
		return &ValidationError{Path: "max_windows", Err: fmt.Errorf("max_windows must be >= 1")}
	}
	if c.SurfaceCapacity < 0 {
		return &ValidationError{Path: "surface_capacity", Err: fmt.Errorf("surface_capacity must be >= 0")}
	}
	if c.SurfaceCapacity > 0 && c.SurfaceCapacity < wm.MinWidth*wm.MinHeight {
		return &ValidationError{Path: "surface_capacity", Err: fmt.Errorf("surface_capacity must hold a %dx%d window", wm.MinWidth, wm.MinHeight)}
	}
	if c.PollBudget < 1 {
		return &ValidationError{Path: "poll_budget", Err: fmt.Errorf("poll_budget must be >= 1")}
	}
	if c.Tick <= 0 {
		return &ValidationError{Path: "tick", Err: fmt.Errorf("tick must be positive")}
	}
	if c.FrameInterval < 0 {
		return &ValidationError{Path: "frame_interval", Err: fmt.Errorf("frame_interval must be >= 0")}
	}
	if c.ResizeEdge < 0 {
		return &ValidationError{Path: "resize_edge", Err: fmt.Errorf("resize_edge must be >= 0")}
	}
	if !slices.Contains(platform.Backends, c.Backend) {
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: %s", strings.Join(platform.Backends, ", "))}
	}
	if c.Backend == platform.BackendFBDev && strings.TrimSpace(c.FBDevPath) == "" {
		return &ValidationError{Path: "fbdev_path", Err: fmt.Errorf("fbdev_path is required for the fbdev backend")}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	if len(c.StartupWindows) > c.MaxWindows {
		return &ValidationError{Path: "startup_windows", Err: fmt.Errorf("%d startup windows exceed max_windows %d", len(c.StartupWindows), c.MaxWindows)}
	}
	for i, w := range c.StartupWindows {
		if _, err := w.Options().Spec(); err != nil {
			return &ValidationError{Path: fmt.Sprintf("startup_windows.%d", i), Err: err}
		}
	}
	return nil
}

// ParseLogLevel maps a log_level value to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log_level must be one of: debug, info, warning, error")
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
