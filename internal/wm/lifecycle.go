package wm

import (
	"fmt"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/snap"
	"github.com/1broseidon/deskshell/internal/tiling"
)

// arrangeable returns the record for h if it may be moved, snapped or
// maximized on its own.
func (m *Manager) arrangeable(op string, h arena.Handle) (*record, error) {
	rec, err := m.lookup(h)
	if err != nil {
		return nil, m.reject(op, h, err)
	}
	if rec.closing {
		return nil, m.reject(op, h, fmt.Errorf("%w: %s", ErrClosing, h))
	}
	if !rec.parent.IsZero() {
		return nil, m.reject(op, h, fmt.Errorf("%w: %s is a tab of %s", ErrInvariantViolation, h, rec.parent))
	}
	return rec, nil
}

// saveRestore snapshots the current geometry unless a snapshot is held.
func (r *record) saveRestore() {
	if r.restore == nil {
		g := r.geom
		r.restore = &g
	}
}

// Maximize fills the desktop above the taskbar with h and focuses it.
func (m *Manager) Maximize(h arena.Handle) error {
	rec, err := m.arrangeable("maximize", h)
	if err != nil {
		return err
	}
	if !rec.maximized {
		rec.saveRestore()
		rec.geom = m.desk.Available()
		rec.maximized = true
		rec.snapped = snap.None
	}
	return m.Focus(h)
}

// Unmaximize puts a maximized or snapped window back where it was before.
func (m *Manager) Unmaximize(h arena.Handle) error {
	rec, err := m.arrangeable("unmaximize", h)
	if err != nil {
		return err
	}
	if !rec.maximized && rec.snapped == snap.None {
		return nil
	}
	if rec.restore != nil {
		rec.geom = *rec.restore
	}
	rec.restore = nil
	rec.maximized = false
	rec.snapped = snap.None
	return nil
}

// ToggleMaximize maximizes h, or restores it when it is maximized.
func (m *Manager) ToggleMaximize(h arena.Handle) error {
	rec, err := m.arrangeable("toggle-maximize", h)
	if err != nil {
		return err
	}
	if rec.maximized {
		return m.Unmaximize(h)
	}
	return m.Maximize(h)
}

// Snap moves h into zone. Top maximizes. The pre-snap geometry is kept in the
// same restore slot maximize uses.
func (m *Manager) Snap(h arena.Handle, zone snap.Zone) error {
	if zone == snap.Top {
		return m.Maximize(h)
	}
	rec, err := m.arrangeable("snap", h)
	if err != nil {
		return err
	}
	target, ok := snap.Rect(zone, m.desk)
	if !ok {
		return nil
	}
	rec.saveRestore()
	rec.geom = target
	rec.maximized = false
	rec.snapped = zone
	return m.Focus(h)
}

// ClampOrigin keeps a window of the given width reachable: at least the
// configured margin stays on screen horizontally, and the title bar stays
// between the top edge and the taskbar.
func (m *Manager) ClampOrigin(p geom.Point, width int) geom.Point {
	margin := m.cfg.Drag.ReachableMargin
	return geom.Point{
		X: geom.Clamp(p.X, -width+margin, m.desk.Width-margin),
		Y: geom.Clamp(p.Y, 0, m.desk.Height-m.desk.TaskbarHeight-m.cfg.Window.TitleBarHeight),
	}
}

// Move places h with its origin at p. A snapped window gets its pre-snap size
// back and forgets the snapshot.
func (m *Manager) Move(h arena.Handle, p geom.Point) error {
	rec, err := m.arrangeable("move", h)
	if err != nil {
		return err
	}
	if rec.maximized {
		return m.reject("move", h, fmt.Errorf("%w: %s is maximized", ErrInvariantViolation, h))
	}
	if rec.snapped != snap.None {
		if rec.restore != nil {
			rec.geom.Width = rec.restore.Width
			rec.geom.Height = rec.restore.Height
		}
		rec.restore = nil
		rec.snapped = snap.None
	}
	rec.geom = rec.geom.At(m.ClampOrigin(p, rec.geom.Width))
	return nil
}

// Resize drags the given edge or corner of h by (dx, dy).
func (m *Manager) Resize(h arena.Handle, edge Edge, dx, dy int) error {
	rec, err := m.arrangeable("resize", h)
	if err != nil {
		return err
	}
	if rec.maximized {
		return m.reject("resize", h, fmt.Errorf("%w: %s is maximized", ErrInvariantViolation, h))
	}
	rec.geom = ResizeGeometry(rec.geom, edge, dx, dy, m.cfg.Window.MinWidth, m.cfg.Window.MinHeight)
	rec.snapped = snap.None
	rec.restore = nil
	return nil
}

// Tile arranges every visible top-level entry in a grid over the available
// desktop, oldest first. Maximized and snapped entries are released first.
func (m *Manager) Tile() int {
	var handles []arena.Handle
	for _, in := range m.All() {
		if in.Visible() {
			handles = append(handles, in.Handle)
		}
	}
	positions := tiling.CalculatePositions(len(handles), m.desk.Available(), m.cfg.Tiling.Gap)
	for i, h := range handles {
		rec, _ := m.records.Get(h)
		pos := positions[i]
		pos.Width = max(pos.Width, m.cfg.Window.MinWidth)
		pos.Height = max(pos.Height, m.cfg.Window.MinHeight)
		rec.geom = pos
		rec.maximized = false
		rec.snapped = snap.None
		rec.restore = nil
	}
	if len(handles) > 0 {
		m.logger.Info("windows tiled", "count", len(handles))
	}
	return len(handles)
}
