package tui

import (
	"strings"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/drag"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/wm"
)

// scale maps desktop pixels onto a character canvas and back.
type scale struct {
	deskW, deskH int
	cols, rows   int
}

func (s scale) valid() bool {
	return s.deskW > 0 && s.deskH > 0 && s.cols > 0 && s.rows > 0
}

// toCell returns the cell containing desktop point p.
func (s scale) toCell(p geom.Point) (int, int) {
	return floorDiv(p.X*s.cols, s.deskW), floorDiv(p.Y*s.rows, s.deskH)
}

// toDesktop returns the desktop point at the center of a cell.
func (s scale) toDesktop(col, row int) geom.Point {
	return geom.Point{
		X: (2*col+1)*s.deskW/(2*s.cols),
		Y: (2*row+1)*s.deskH/(2*s.rows),
	}
}

// cellRect maps a desktop rectangle to inclusive cell bounds.
func (s scale) cellRect(r geom.Rect) (x1, y1, x2, y2 int) {
	x1, y1 = s.toCell(r.Origin())
	x2, y2 = s.toCell(geom.Point{X: r.X + r.Width - 1, Y: r.Y + r.Height - 1})
	return x1, y1, x2, y2
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

type boxStyle struct {
	h, v, tl, tr, bl, br rune
}

var (
	plainBox   = boxStyle{'─', '│', '┌', '┐', '└', '┘'}
	focusedBox = boxStyle{'━', '┃', '┏', '┓', '┗', '┛'}
	ghostBox   = boxStyle{'┄', '┆', '+', '+', '+', '+'}
	snapBox    = boxStyle{'·', '·', '·', '·', '·', '·'}
)

// canvas is a grid of runes the desktop is drawn onto.
type canvas struct {
	cells      [][]rune
	cols, rows int
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, cells: make([][]rune, rows)}
	for i := range c.cells {
		c.cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return c
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && x < c.cols && y >= 0 && y < c.rows {
		c.cells[y][x] = r
	}
}

func (c *canvas) fill(x1, y1, x2, y2 int, r rune) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			c.set(x, y, r)
		}
	}
}

// text writes s starting at x, never past limit.
func (c *canvas) text(x, y, limit int, s string) {
	for _, r := range s {
		if x > limit {
			return
		}
		c.set(x, y, r)
		x++
	}
}

func (c *canvas) box(x1, y1, x2, y2 int, st boxStyle) {
	if x2 <= x1 || y2 <= y1 {
		return
	}
	for x := x1; x <= x2; x++ {
		c.set(x, y1, st.h)
		c.set(x, y2, st.h)
	}
	for y := y1; y <= y2; y++ {
		c.set(x1, y, st.v)
		c.set(x2, y, st.v)
	}
	c.set(x1, y1, st.tl)
	c.set(x2, y1, st.tr)
	c.set(x1, y2, st.bl)
	c.set(x2, y2, st.br)
}

func (c *canvas) lines() []string {
	out := make([]string, c.rows)
	for i, row := range c.cells {
		out[i] = string(row)
	}
	return out
}

// frame is everything needed to draw one picture of the desktop.
type frame struct {
	scale    scale
	stacking []wm.Info // bottom to top
	titles   map[arena.Handle]string
	preview  drag.Preview

	titleBar, stripHeight, tabWidth int
}

// renderDesktop draws the visible windows bottom to top, then the drag
// ghost and snap preview on top of everything.
func renderDesktop(f frame) []string {
	s := f.scale
	if !s.valid() {
		return nil
	}
	c := newCanvas(s.cols, s.rows)

	for _, in := range f.stacking {
		st := plainBox
		if in.Focused {
			st = focusedBox
		}
		x1, y1, x2, y2 := s.cellRect(in.Geometry)
		c.fill(x1, y1, x2, y2, ' ')
		c.box(x1, y1, x2, y2, st)
		c.text(x1+2, y1, x2-2, " "+in.Title+" ")
		c.text(x2-6, y1, x2-1, "_□x")

		if in.Kind == wm.KindGroup {
			drawTabs(c, f, in)
		}
	}

	p := f.preview
	if p.Active {
		if p.SnapRect != nil {
			x1, y1, x2, y2 := s.cellRect(*p.SnapRect)
			c.box(x1, y1, x2, y2, snapBox)
		}
		x1, y1, x2, y2 := s.cellRect(p.Frame)
		c.box(x1, y1, x2, y2, ghostBox)
		if p.Intent.Kind != drag.IntentNone {
			c.text(x1+2, y2, x2-2, " "+p.Intent.String()+" ")
		}
	}
	return c.lines()
}

func drawTabs(c *canvas, f frame, group wm.Info) {
	strip := wm.LayoutStrip(group, f.titles, f.titleBar, f.stripHeight, f.tabWidth)
	for _, tab := range strip.Tabs {
		if tab.Rect.Area() == 0 {
			continue
		}
		x1, y1, x2, _ := f.scale.cellRect(tab.Rect)
		label := tab.Title
		if tab.Active {
			label = "*" + label
		}
		c.set(x1, y1, '[')
		c.text(x1+1, y1, x2-1, label)
		c.set(x2, y1, ']')
	}
	if strip.Add.Area() > 0 {
		x, y := f.scale.toCell(strip.Add.Origin())
		c.set(x, y, '+')
	}
}
