package desktop

import (
	"github.com/1broseidon/deskshell/internal/geom"
)

// Grid is the icon grid over the desktop area above the taskbar.
type Grid struct {
	Size   int
	Width  int
	Height int
}

func (g Grid) cols() int { return max(g.Width/g.Size, 0) }
func (g Grid) rows() int { return max(g.Height/g.Size, 0) }

// Snap rounds p to the nearest grid cell inside the desktop.
func (g Grid) Snap(p geom.Point) geom.Point {
	round := func(v, limit int) int {
		v = max(v, 0)
		cell := (v + g.Size/2) / g.Size
		return geom.Clamp(cell, 0, max(limit-1, 0)) * g.Size
	}
	return geom.Point{X: round(p.X, g.cols()), Y: round(p.Y, g.rows())}
}

// NextFreeSlot returns the first free cell in row-major order. When every
// cell is taken it returns a stacked fallback position derived from count
// together with ErrNoFreeSlot.
func (g Grid) NextFreeSlot(occupied map[geom.Point]bool, count int) (geom.Point, error) {
	for row := 0; row < g.rows(); row++ {
		for col := 0; col < g.cols(); col++ {
			p := geom.Point{X: col * g.Size, Y: row * g.Size}
			if !occupied[p] {
				return p, nil
			}
		}
	}
	return geom.Point{X: 10, Y: 10 + (count%5)*20}, ErrNoFreeSlot
}

// Place snaps drop to the grid and walks forward row by row, wrapping
// around, until it finds a free cell.
func (g Grid) Place(drop geom.Point, occupied map[geom.Point]bool) (geom.Point, error) {
	cols, rows := g.cols(), g.rows()
	total := cols * rows
	if total == 0 {
		return geom.Point{}, ErrNoFreeSlot
	}
	start := g.Snap(drop)
	index := (start.Y/g.Size)*cols + start.X/g.Size
	for i := 0; i < total; i++ {
		cell := (index + i) % total
		p := geom.Point{X: (cell % cols) * g.Size, Y: (cell / cols) * g.Size}
		if !occupied[p] {
			return p, nil
		}
	}
	return geom.Point{}, ErrNoFreeSlot
}
