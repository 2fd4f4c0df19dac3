// Package snap maps a pointer position to an edge snap zone and computes the
// rectangle a window occupies when snapped to that zone.
package snap

import (
	"fmt"

	"github.com/1broseidon/deskshell/internal/geom"
)

// DefaultThreshold is the distance in pixels from a desktop edge at which a
// dragged window starts snapping.
const DefaultThreshold = 30

// Zone is an edge snap target.
type Zone int

const (
	// None means the pointer is not near any snapping edge.
	None Zone = iota
	// Left snaps to the left half of the desktop.
	Left
	// Right snaps to the right half of the desktop.
	Right
	// Top maximizes.
	Top
)

// String returns the string representation of the zone
func (z Zone) String() string {
	switch z {
	case None:
		return "none"
	case Left:
		return "left"
	case Right:
		return "right"
	case Top:
		return "top"
	default:
		return "unknown"
	}
}

// ParseZone parses the names produced by String.
func ParseZone(s string) (Zone, error) {
	switch s {
	case "none", "":
		return None, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "top", "max", "maximize":
		return Top, nil
	default:
		return None, fmt.Errorf("unknown snap zone %q (want left, right or top)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (z *Zone) UnmarshalText(text []byte) error {
	parsed, err := ParseZone(string(text))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// Desktop describes the area windows live in.
type Desktop struct {
	Width         int
	Height        int
	TaskbarHeight int
}

// Available returns the rectangle above the taskbar.
func (d Desktop) Available() geom.Rect {
	return geom.Rect{X: 0, Y: 0, Width: d.Width, Height: max(d.Height-d.TaskbarHeight, 0)}
}

// Detect returns the zone for pointer. Left wins over right, and both win
// over top.
func Detect(pointer geom.Point, d Desktop, threshold int) Zone {
	switch {
	case pointer.X < threshold:
		return Left
	case pointer.X > d.Width-threshold:
		return Right
	case pointer.Y < threshold:
		return Top
	default:
		return None
	}
}

// Rect returns the geometry of a window snapped to zone. Top yields the
// maximized rectangle. None yields the zero Rect and false.
func Rect(zone Zone, d Desktop) (geom.Rect, bool) {
	avail := d.Available()
	half := d.Width / 2
	switch zone {
	case Left:
		return geom.Rect{X: 0, Y: 0, Width: half, Height: avail.Height}, true
	case Right:
		return geom.Rect{X: half, Y: 0, Width: d.Width - half, Height: avail.Height}, true
	case Top:
		return avail, true
	default:
		return geom.Rect{}, false
	}
}
