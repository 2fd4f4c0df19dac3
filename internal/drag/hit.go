package drag

import (
	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/wm"
)

// ControlWidth is the width of each title bar button.
const ControlWidth = 30

// Part is the region of a window under the pointer.
type Part int

const (
	PartNone Part = iota
	PartBody
	PartTitleBar
	PartMinimize
	PartMaximize
	PartClose
	PartTab
	PartAddTab
)

func (p Part) String() string {
	switch p {
	case PartNone:
		return "none"
	case PartBody:
		return "body"
	case PartTitleBar:
		return "title-bar"
	case PartMinimize:
		return "minimize"
	case PartMaximize:
		return "maximize"
	case PartClose:
		return "close"
	case PartTab:
		return "tab"
	case PartAddTab:
		return "add-tab"
	default:
		return "unknown"
	}
}

// Hit is the result of a hit test. Member is set for PartTab.
type Hit struct {
	Handle arena.Handle
	Part   Part
	Member arena.Handle
}

// Controls returns the minimize, maximize and close button rectangles of a
// window, right-aligned in its title bar.
func Controls(frame geom.Rect, titleBar int) (minimize, maximize, close geom.Rect) {
	right := frame.X + frame.Width
	button := func(i int) geom.Rect {
		return geom.Rect{X: right - (3-i)*ControlWidth, Y: frame.Y, Width: ControlWidth, Height: titleBar}
	}
	return button(0), button(1), button(2)
}

// HitTest finds the topmost entry under p and the part of it that was hit.
func HitTest(world []wm.Info, p geom.Point, cfg *config.Config) Hit {
	top, ok := topmostAt(world, p, arena.Handle{})
	if !ok {
		return Hit{}
	}
	hit := Hit{Handle: top.Handle, Part: PartBody}
	g := top.Geometry
	titleBar := cfg.Window.TitleBarHeight

	if p.Y < g.Y+titleBar {
		minimize, maximize, closeBtn := Controls(g, titleBar)
		switch {
		case closeBtn.Contains(p):
			hit.Part = PartClose
		case maximize.Contains(p):
			hit.Part = PartMaximize
		case minimize.Contains(p):
			hit.Part = PartMinimize
		default:
			hit.Part = PartTitleBar
		}
		return hit
	}

	if top.Kind == wm.KindGroup {
		strip := wm.LayoutStrip(top, nil, titleBar, cfg.Tabs.StripHeight, cfg.Tabs.TabWidth)
		if tab, ok := strip.TabAt(p); ok {
			hit.Part = PartTab
			hit.Member = tab.Member
		} else if strip.Add.Contains(p) {
			hit.Part = PartAddTab
		}
	}
	return hit
}
