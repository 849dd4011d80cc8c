package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawScreen struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
	Pitch  *int `yaml:"pitch"`
}

// RawConfig is one file's view of the configuration. Nil fields were not
// set by that file.
type RawConfig struct {
	Include         IncludeList     `yaml:"include"`
	Screen          *RawScreen      `yaml:"screen"`
	MaxWindows      *int            `yaml:"max_windows"`
	SurfaceCapacity *int            `yaml:"surface_capacity"`
	PollBudget      *int            `yaml:"poll_budget"`
	Tick            *time.Duration  `yaml:"tick"`
	FrameInterval   *time.Duration  `yaml:"frame_interval"`
	ResizeEdge      *int            `yaml:"resize_edge"`
	Backend         *string         `yaml:"backend"`
	PointerDevice   *string         `yaml:"pointer_device"`
	FBDevPath       *string         `yaml:"fbdev_path"`
	ThemeFile       *string         `yaml:"theme_file"`
	LogLevel        *string         `yaml:"log_level"`
	Socket          *string         `yaml:"socket"`
	StartupWindows  []StartupWindow `yaml:"startup_windows"`
}

// merge returns c overridden by every field overlay sets. startup_windows
// is replaced as a whole.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Screen != nil {
		base := RawScreen{}
		if out.Screen != nil {
			base = *out.Screen
		}
		merged := mergeRawScreen(base, *overlay.Screen)
		out.Screen = &merged
	}
	if overlay.MaxWindows != nil {
		out.MaxWindows = overlay.MaxWindows
	}
	if overlay.SurfaceCapacity != nil {
		out.SurfaceCapacity = overlay.SurfaceCapacity
	}
	if overlay.PollBudget != nil {
		out.PollBudget = overlay.PollBudget
	}
	if overlay.Tick != nil {
		out.Tick = overlay.Tick
	}
	if overlay.FrameInterval != nil {
		out.FrameInterval = overlay.FrameInterval
	}
	if overlay.ResizeEdge != nil {
		out.ResizeEdge = overlay.ResizeEdge
	}
	if overlay.Backend != nil {
		out.Backend = overlay.Backend
	}
	if overlay.PointerDevice != nil {
		out.PointerDevice = overlay.PointerDevice
	}
	if overlay.FBDevPath != nil {
		out.FBDevPath = overlay.FBDevPath
	}
	if overlay.ThemeFile != nil {
		out.ThemeFile = overlay.ThemeFile
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Socket != nil {
		out.Socket = overlay.Socket
	}
	if overlay.StartupWindows != nil {
		out.StartupWindows = append([]StartupWindow(nil), overlay.StartupWindows...)
	}
	return out
}

func mergeRawScreen(base RawScreen, overlay RawScreen) RawScreen {
	out := base
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	if overlay.Pitch != nil {
		out.Pitch = overlay.Pitch
	}
	return out
}
