// Package geom holds the rectangle and point types shared by the window
// manager, the snap engine and the drag controller.
package geom

import (
	"fmt"

	"github.com/BurntSushi/xgbutil/xrect"
)

// Point is a position in desktop coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Rect represents a window position and size
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d at %d,%d", r.Width, r.Height, r.X, r.Y)
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// At returns r moved so its origin is p.
func (r Rect) At(p Point) Rect {
	r.X, r.Y = p.X, p.Y
	return r
}

// Area returns width*height, or 0 for degenerate rectangles.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Contains reports whether p lies inside r (right and bottom edges excluded).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// IntersectArea returns the area shared by a and b.
func IntersectArea(a, b Rect) int {
	if a.Area() == 0 || b.Area() == 0 {
		return 0
	}
	return xrect.IntersectArea(a.xrect(), b.xrect())
}

// Intersect returns the rectangle shared by a and b, or the zero Rect when
// they do not overlap.
func Intersect(a, b Rect) Rect {
	x1, y1 := max(a.X, b.X), max(a.Y, b.Y)
	x2, y2 := min(a.X+a.Width, b.X+b.Width), min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// OverlapRatio returns the shared area of a and b divided by the area of the
// smaller of the two. It is 0 when either rectangle is empty.
func OverlapRatio(a, b Rect) float64 {
	smaller := min(a.Area(), b.Area())
	if smaller == 0 {
		return 0
	}
	return float64(IntersectArea(a, b)) / float64(smaller)
}

func (r Rect) xrect() xrect.Rect {
	return xrect.New(r.X, r.Y, r.Width, r.Height)
}

// Clamp bounds v to [lo, hi]. When lo > hi, lo wins.
func Clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
