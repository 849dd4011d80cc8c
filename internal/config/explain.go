package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	screen
//	screen.width
//	max_windows
//	tick
//	backend
//	log_level
//	startup_windows
//	startup_windows.<index>
//	startup_windows.<index>.title
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	scalar := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "screen":
		if len(parts) == 1 {
			return cfg.Screen, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "width":
			return cfg.Screen.Width, nil
		case "height":
			return cfg.Screen.Height, nil
		case "pitch":
			return cfg.Screen.Pitch, nil
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	case "max_windows":
		return scalar(cfg.MaxWindows)
	case "surface_capacity":
		return scalar(cfg.SurfaceCapacity)
	case "poll_budget":
		return scalar(cfg.PollBudget)
	case "tick":
		return scalar(cfg.Tick)
	case "frame_interval":
		return scalar(cfg.FrameInterval)
	case "resize_edge":
		return scalar(cfg.ResizeEdge)
	case "backend":
		return scalar(cfg.Backend)
	case "pointer_device":
		return scalar(cfg.PointerDevice)
	case "fbdev_path":
		return scalar(cfg.FBDevPath)
	case "theme_file":
		return scalar(cfg.ThemeFile)
	case "log_level":
		return scalar(cfg.LogLevel)
	case "socket":
		return scalar(cfg.Socket)
	case "startup_windows":
		if len(parts) == 1 {
			return cfg.StartupWindows, nil
		}
		i, err := strconv.Atoi(parts[1])
		if err != nil || i < 0 || i >= len(cfg.StartupWindows) {
			return nil, fmt.Errorf("unknown startup_windows entry %q", parts[1])
		}
		w := cfg.StartupWindows[i]
		if len(parts) == 2 {
			return w, nil
		}
		if len(parts) != 3 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[2] {
		case "title":
			return w.Title, nil
		case "x":
			return w.X, nil
		case "y":
			return w.Y, nil
		case "width":
			return w.Width, nil
		case "height":
			return w.Height, nil
		case "flags":
			return w.Flags, nil
		case "content":
			return w.Content, nil
		case "color":
			return w.Color, nil
		case "text":
			return w.Text, nil
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
