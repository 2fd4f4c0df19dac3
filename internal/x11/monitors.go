package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/deskshell/internal/geom"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Bounds geom.Rect
}

// Screen is the area the shell may use: the chosen monitor clipped to the
// window manager's work area.
type Screen struct {
	Monitor string
	Root    geom.Rect
	Usable  geom.Rect
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
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			name = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:   i,
			Name: name,
			Bounds: geom.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
		})
	}
	return monitors, nil
}

// pointer returns the pointer position on the root window.
func (c *Connection) pointer() (geom.Point, bool) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geom.Point{}, false
	}
	return geom.Point{X: int(reply.RootX), Y: int(reply.RootY)}, true
}

// workArea returns the EWMH work area of the current desktop.
func (c *Connection) workArea() (geom.Rect, bool) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return geom.Rect{}, false
	}
	idx := 0
	if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(areas) {
		idx = int(cur)
	}
	wa := areas[idx]
	return geom.Rect{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)}, true
}

// Probe measures the screen under the pointer. Without RandR the root
// window is used as a single monitor.
func (c *Connection) Probe() (Screen, error) {
	rg, err := xwindow.New(c.XUtil, c.Root).Geometry()
	if err != nil {
		return Screen{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	root := geom.Rect{X: rg.X(), Y: rg.Y(), Width: rg.Width(), Height: rg.Height()}

	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		monitors = []Monitor{{Name: "root", Bounds: root}}
	}
	p, _ := c.pointer()
	wa, ok := c.workArea()
	if !ok {
		wa = root
	}
	return chooseScreen(monitors, p, wa, root), nil
}

// chooseScreen picks the monitor containing p, falling back to the first,
// and clips it to the work area. A work area that misses the monitor
// entirely is ignored.
func chooseScreen(monitors []Monitor, p geom.Point, workArea, root geom.Rect) Screen {
	mon := monitors[0]
	for _, m := range monitors {
		if m.Bounds.Contains(p) {
			mon = m
			break
		}
	}
	usable := geom.Intersect(mon.Bounds, workArea)
	if usable.Area() == 0 {
		usable = mon.Bounds
	}
	return Screen{Monitor: mon.Name, Root: root, Usable: usable}
}
