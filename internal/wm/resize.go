package wm

import (
	"fmt"

	"github.com/1broseidon/deskshell/internal/geom"
)

// Edge names a resize handle.
type Edge int

const (
	EdgeN Edge = iota
	EdgeS
	EdgeE
	EdgeW
	EdgeNE
	EdgeNW
	EdgeSE
	EdgeSW
)

var edgeNames = [...]string{"n", "s", "e", "w", "ne", "nw", "se", "sw"}

func (e Edge) String() string {
	if int(e) < len(edgeNames) {
		return edgeNames[e]
	}
	return "unknown"
}

// ParseEdge parses the compass names produced by String.
func ParseEdge(s string) (Edge, error) {
	for i, name := range edgeNames {
		if name == s {
			return Edge(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resize edge %q (want one of n, s, e, w, ne, nw, se, sw)", s)
}

func (e Edge) north() bool { return e == EdgeN || e == EdgeNE || e == EdgeNW }
func (e Edge) south() bool { return e == EdgeS || e == EdgeSE || e == EdgeSW }
func (e Edge) east() bool  { return e == EdgeE || e == EdgeNE || e == EdgeSE }
func (e Edge) west() bool  { return e == EdgeW || e == EdgeNW || e == EdgeSW }

// ResizeGeometry returns start resized by dragging edge by (dx, dy). Width and
// height never drop below the minimums. West and north edges move the origin
// so the opposite edge stays put.
func ResizeGeometry(start geom.Rect, edge Edge, dx, dy, minWidth, minHeight int) geom.Rect {
	out := start
	switch {
	case edge.east():
		out.Width = max(minWidth, start.Width+dx)
	case edge.west():
		out.Width = max(minWidth, start.Width-dx)
		out.X = start.X + start.Width - out.Width
	}
	switch {
	case edge.south():
		out.Height = max(minHeight, start.Height+dy)
	case edge.north():
		out.Height = max(minHeight, start.Height-dy)
		out.Y = start.Y + start.Height - out.Height
	}
	return out
}
