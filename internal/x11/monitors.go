package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/deskwm/internal/geom"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Bounds geom.Rect
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			Bounds: geom.XYWH(int(info.X), int(info.Y), int(info.Width), int(info.Height)),
		})
	}
	return monitors, nil
}

// ActiveMonitor returns the monitor under the pointer, cut to the EWMH work
// area when one is published. Without RandR the root window is used.
func (c *Connection) ActiveMonitor() (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		root, gerr := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
		if gerr != nil {
			return Monitor{}, fmt.Errorf("failed to get root geometry: %w", gerr)
		}
		return Monitor{Name: "root", Bounds: geom.XYWH(0, 0, int(root.Width), int(root.Height))}, nil
	}

	active := monitors[0]
	if p, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		at := geom.Point{X: int(p.RootX), Y: int(p.RootY)}
		for _, m := range monitors {
			if m.Bounds.Contains(at) {
				active = m
				break
			}
		}
	}

	if areas, err := ewmh.WorkareaGet(c.XUtil); err == nil && len(areas) > 0 {
		idx := 0
		if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(areas) {
			idx = int(cur)
		}
		wa := areas[idx]
		usable := active.Bounds.Intersect(geom.XYWH(int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height)))
		if !usable.Empty() {
			active.Bounds = usable
		}
	}
	return active, nil
}
