package drag

import (
	"fmt"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/snap"
	"github.com/1broseidon/deskshell/internal/wm"
)

// IntentKind tags what a drop would do.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentSnap
	IntentGroupOnto
	IntentDropOnTabStrip
	IntentDetach
)

func (k IntentKind) String() string {
	switch k {
	case IntentNone:
		return "none"
	case IntentSnap:
		return "snap"
	case IntentGroupOnto:
		return "group-onto"
	case IntentDropOnTabStrip:
		return "drop-on-tab-strip"
	case IntentDetach:
		return "detach"
	default:
		return "unknown"
	}
}

func (k IntentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *IntentKind) UnmarshalText(text []byte) error {
	for c := IntentNone; c <= IntentDetach; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown intent %q", text)
}

// Intent is the evaluated outcome of dropping at the current pointer.
// Zone is set for IntentSnap, Target for IntentGroupOnto and
// IntentDropOnTabStrip, and Drop for IntentDetach.
type Intent struct {
	Kind   IntentKind   `json:"kind"`
	Zone   snap.Zone    `json:"zone,omitempty"`
	Target arena.Handle `json:"target,omitempty"`
	Drop   geom.Point   `json:"drop,omitempty"`
}

func (i Intent) String() string {
	switch i.Kind {
	case IntentSnap:
		return fmt.Sprintf("snap(%s)", i.Zone)
	case IntentGroupOnto, IntentDropOnTabStrip:
		return fmt.Sprintf("%s(%s)", i.Kind, i.Target)
	case IntentDetach:
		return fmt.Sprintf("detach(%d,%d)", i.Drop.X, i.Drop.Y)
	default:
		return i.Kind.String()
	}
}

// Input is everything the resolver looks at for one pointer update.
type Input struct {
	Subject  wm.Info
	Frame    geom.Rect // subject geometry at the candidate position
	Pointer  geom.Point
	Modifier bool // group modifier held
	World    []wm.Info
	Desktop  snap.Desktop
}

// Resolution is an intent plus every window that qualified for grouping.
type Resolution struct {
	Intent       Intent
	GroupTargets []arena.Handle
}

// Resolve evaluates a window drag. Dropping on another group's add button
// wins over snapping, and snapping wins over grouping. Grouping needs the
// modifier and more than the configured share of the smaller window covered.
// Among several grouping targets the largest overlap wins, then the topmost,
// then the newest.
func Resolve(in Input, cfg *config.Config) Resolution {
	if in.Subject.Kind == wm.KindWindow {
		if target, ok := addButtonAt(in.World, in.Pointer, in.Subject.Handle, cfg); ok && target.Handle != in.Subject.Parent {
			return Resolution{Intent: Intent{Kind: IntentDropOnTabStrip, Target: target.Handle}}
		}
	}

	if zone := snap.Detect(in.Pointer, in.Desktop, cfg.Snap.Threshold); zone != snap.None {
		return Resolution{Intent: Intent{Kind: IntentSnap, Zone: zone}}
	}

	if !in.Modifier || in.Subject.Kind != wm.KindWindow {
		return Resolution{}
	}

	var res Resolution
	var best wm.Info
	var bestRatio float64
	for _, w := range in.World {
		if w.Handle == in.Subject.Handle || w.Kind != wm.KindWindow || !w.Visible() {
			continue
		}
		ratio := geom.OverlapRatio(in.Frame, w.Geometry)
		if ratio <= cfg.Drag.GroupOverlapRatio {
			continue
		}
		res.GroupTargets = append(res.GroupTargets, w.Handle)
		if best.Handle.IsZero() || ratio > bestRatio ||
			(ratio == bestRatio && (w.Z > best.Z || (w.Z == best.Z && w.Seq > best.Seq))) {
			best, bestRatio = w, ratio
		}
	}
	if !best.Handle.IsZero() {
		res.Intent = Intent{Kind: IntentGroupOnto, Target: best.Handle}
	}
	return res
}

// ResolveTab evaluates dragging tab member out of group. Dropping on another
// group's add button moves the tab there. Dropping over the source group or
// any other visible window does nothing. Only a drop on the bare desktop
// detaches the tab, at the pointer minus the drag image offset.
func ResolveTab(group wm.Info, pointer geom.Point, world []wm.Info, cfg *config.Config) Intent {
	if target, ok := addButtonAt(world, pointer, arena.Handle{}, cfg); ok && target.Handle != group.Handle {
		return Intent{Kind: IntentDropOnTabStrip, Target: target.Handle}
	}
	if group.Geometry.Contains(pointer) {
		return Intent{}
	}
	if _, covered := topmostAt(world, pointer, arena.Handle{}); covered {
		return Intent{}
	}
	offset := cfg.Drag.TabDropOffset
	return Intent{Kind: IntentDetach, Drop: pointer.Sub(geom.Point{X: offset, Y: offset})}
}

// addButtonAt returns the group whose add button is under p, provided that
// group is the topmost entry there.
func addButtonAt(world []wm.Info, p geom.Point, exclude arena.Handle, cfg *config.Config) (wm.Info, bool) {
	top, ok := topmostAt(world, p, exclude)
	if !ok || top.Kind != wm.KindGroup {
		return wm.Info{}, false
	}
	strip := wm.LayoutStrip(top, nil, cfg.Window.TitleBarHeight, cfg.Tabs.StripHeight, cfg.Tabs.TabWidth)
	if !strip.Add.Contains(p) {
		return wm.Info{}, false
	}
	return top, true
}

// topmostAt returns the highest visible entry containing p.
func topmostAt(world []wm.Info, p geom.Point, exclude arena.Handle) (wm.Info, bool) {
	var top wm.Info
	found := false
	for _, w := range world {
		if w.Handle == exclude || !w.Visible() || !w.Geometry.Contains(p) {
			continue
		}
		if !found || w.Z > top.Z || (w.Z == top.Z && w.Seq > top.Seq) {
			top, found = w, true
		}
	}
	return top, found
}
