package wm

import (
	"fmt"
	"slices"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/geom"
)

// groupable returns the record for a window that may become a tab.
func (m *Manager) groupable(op string, h arena.Handle) (*record, error) {
	rec, err := m.lookup(h)
	if err != nil {
		return nil, m.reject(op, h, err)
	}
	if rec.closing {
		return nil, m.reject(op, h, fmt.Errorf("%w: %s", ErrClosing, h))
	}
	if rec.kind == KindGroup {
		return nil, m.reject(op, h, fmt.Errorf("%w: %s is a group and cannot be nested", ErrInvariantViolation, h))
	}
	return rec, nil
}

func (m *Manager) group(op string, g arena.Handle) (*record, error) {
	rec, err := m.lookup(g)
	if err != nil {
		return nil, m.reject(op, g, err)
	}
	if rec.kind != KindGroup {
		return nil, m.reject(op, g, fmt.Errorf("%w: %s is not a group", ErrInvariantViolation, g))
	}
	if rec.closing {
		return nil, m.reject(op, g, fmt.Errorf("%w: %s", ErrClosing, g))
	}
	return rec, nil
}

// embed makes w a tab of g. The caller appends w to the member list. A
// minimized window is shown again as a tab, since tabs are only reachable
// through their group.
func (m *Manager) embed(g, w arena.Handle, rec *record) {
	rec.preGroup = rec.geom
	rec.preGroupZ = rec.z
	rec.parent = g
	rec.focused = false
	rec.minimized = false
	if m.focused == w {
		m.focused = arena.Handle{}
	}
	m.taskbar.Suspend(w)
}

// CreateGroup builds a tab group from initiator and targets. Targets that
// are missing, closing, groups, already grouped, duplicated or equal to the
// initiator are skipped. The initiator becomes the active tab and the new
// group is focused.
func (m *Manager) CreateGroup(initiator arena.Handle, targets []arena.Handle) (arena.Handle, error) {
	irec, err := m.groupable("create-group", initiator)
	if err != nil {
		return arena.Handle{}, err
	}
	if !irec.parent.IsZero() {
		return arena.Handle{}, m.reject("create-group", initiator,
			fmt.Errorf("%w: %s is already a tab of %s", ErrInvariantViolation, initiator, irec.parent))
	}

	var valid []arena.Handle
	for _, t := range targets {
		if t == initiator || slices.Contains(valid, t) {
			continue
		}
		rec, ok := m.records.Get(t)
		if !ok || rec.closing || rec.kind == KindGroup || !rec.parent.IsZero() {
			m.logger.Debug("group target skipped", "handle", t.String())
			continue
		}
		valid = append(valid, t)
	}
	if len(valid) == 0 {
		return arena.Handle{}, m.reject("create-group", initiator,
			fmt.Errorf("%w: no eligible windows to group with %s", ErrInvariantViolation, initiator))
	}

	g := m.insert(KindGroup, GroupTitle, "", OpenOptions{})
	grec, _ := m.records.Get(g)
	for _, w := range append([]arena.Handle{initiator}, valid...) {
		rec, _ := m.records.Get(w)
		m.embed(g, w, rec)
		grec.members = append(grec.members, w)
	}
	grec.active = initiator

	m.logger.Info("group created", "group", g.String(), "members", len(grec.members))
	if err := m.Focus(g); err != nil {
		return g, err
	}
	return g, nil
}

// AddMember adds w as the active tab of g and focuses g. A tab of another
// group moves over and keeps its original desktop snapshot.
func (m *Manager) AddMember(g, w arena.Handle) error {
	if g == w {
		return m.reject("add-member", w, fmt.Errorf("%w: cannot add %s to itself", ErrInvariantViolation, w))
	}
	grec, err := m.group("add-member", g)
	if err != nil {
		return err
	}
	wrec, err := m.groupable("add-member", w)
	if err != nil {
		return err
	}
	if wrec.parent == g {
		return nil
	}

	if old := wrec.parent; !old.IsZero() {
		orec, _ := m.records.Get(old)
		m.unlink(old, orec, w)
		wrec.parent = g
		if len(orec.members) == 0 {
			m.remove(old, orec)
		}
	} else {
		m.embed(g, w, wrec)
	}
	grec.members = append(grec.members, w)
	grec.active = w
	m.logger.Info("tab added", "group", g.String(), "window", w.String())
	return m.Focus(g)
}

// ActivateTab shows w in g and retitles the group's taskbar entry.
func (m *Manager) ActivateTab(g, w arena.Handle) error {
	grec, err := m.group("activate-tab", g)
	if err != nil {
		return err
	}
	if !slices.Contains(grec.members, w) {
		return m.reject("activate-tab", w, fmt.Errorf("%w: %s is not a tab of %s", ErrInvariantViolation, w, g))
	}
	if grec.active == w {
		return nil
	}
	grec.active = w
	m.syncTaskbar()
	return nil
}

// DetachMember returns w from g to the desktop. Without a drop point the
// pre-group geometry is restored exactly. With one, w is placed there,
// clamped to the desktop. A group left empty is closed in the same call;
// otherwise its first remaining tab becomes active.
func (m *Manager) DetachMember(g, w arena.Handle, drop *geom.Point) error {
	grec, err := m.group("detach", g)
	if err != nil {
		return err
	}
	if !slices.Contains(grec.members, w) {
		return m.reject("detach", w, fmt.Errorf("%w: %s is not a tab of %s", ErrInvariantViolation, w, g))
	}

	m.releaseMember(g, grec, w, drop)
	if len(grec.members) == 0 {
		m.remove(g, grec)
	}
	m.syncTaskbar()
	return nil
}

// unlink drops w from the member list of g and picks a new active tab.
func (m *Manager) unlink(g arena.Handle, grec *record, w arena.Handle) {
	grec.members = slices.DeleteFunc(grec.members, func(h arena.Handle) bool { return h == w })
	if grec.active == w {
		grec.active = arena.Handle{}
		if len(grec.members) > 0 {
			grec.active = grec.members[0]
		}
	}
}

// releaseMember puts w back on the desktop with its own taskbar entry.
func (m *Manager) releaseMember(g arena.Handle, grec *record, w arena.Handle, drop *geom.Point) {
	m.unlink(g, grec, w)
	rec, ok := m.records.Get(w)
	if !ok {
		return
	}

	rec.parent = arena.Handle{}
	rec.geom = rec.preGroup
	rec.z = rec.preGroupZ
	if drop != nil {
		rec.geom = rec.geom.At(m.clampDetach(*drop, rec.geom.Width))
	}
	rec.preGroup = geom.Rect{}
	rec.preGroupZ = 0
	m.taskbar.Resume(w, rec.title, m.taskbarState(w, rec))
	m.logger.Info("tab detached", "group", g.String(), "window", w.String())
}

// clampDetach keeps a detached window fully inside the desktop horizontally
// and its title bar above the taskbar.
func (m *Manager) clampDetach(p geom.Point, width int) geom.Point {
	return geom.Point{
		X: geom.Clamp(p.X, 0, m.desk.Width-width),
		Y: geom.Clamp(p.Y, 0, m.desk.Height-m.desk.TaskbarHeight-m.cfg.Window.TitleBarHeight),
	}
}

// closeMember removes a tab that is closed from inside its group.
func (m *Manager) closeMember(w arena.Handle, rec *record) {
	g := rec.parent
	grec, ok := m.records.Get(g)
	if ok {
		m.unlink(g, grec, w)
	}
	m.taskbar.Forget(w)
	m.records.Remove(w)
	m.logger.Info("tab closed", "group", g.String(), "window", w.String())
	if ok && len(grec.members) == 0 {
		m.remove(g, grec)
		return
	}
	m.syncTaskbar()
}

// Tab is one tab of a group's tab strip.
type Tab struct {
	Member arena.Handle `json:"member"`
	Title  string       `json:"title"`
	Active bool         `json:"active,omitempty"`
	Rect   geom.Rect    `json:"rect"`
}

// Strip is the laid out tab strip of a group.
type Strip struct {
	Band geom.Rect `json:"band"`
	Tabs []Tab     `json:"tabs"`
	Add  geom.Rect `json:"add"`
}

// TabAt returns the tab under p.
func (s Strip) TabAt(p geom.Point) (Tab, bool) {
	for _, t := range s.Tabs {
		if t.Rect.Contains(p) {
			return t, true
		}
	}
	return Tab{}, false
}

// LayoutStrip lays out the tabs of group below its title bar: tabs of
// tabWidth from the left edge, then a square add button. Everything is
// clipped to the group's width.
func LayoutStrip(group Info, titles map[arena.Handle]string, titleBar, stripHeight, tabWidth int) Strip {
	g := group.Geometry
	band := geom.Rect{X: g.X, Y: g.Y + titleBar, Width: g.Width, Height: stripHeight}
	right := g.X + g.Width
	clip := func(x, w int) geom.Rect {
		w = min(w, right-x)
		if w <= 0 {
			return geom.Rect{}
		}
		return geom.Rect{X: x, Y: band.Y, Width: w, Height: stripHeight}
	}

	s := Strip{Band: band}
	x := g.X
	for _, member := range group.Members {
		s.Tabs = append(s.Tabs, Tab{
			Member: member,
			Title:  titles[member],
			Active: member == group.Active,
			Rect:   clip(x, tabWidth),
		})
		x += tabWidth
	}
	s.Add = clip(x, stripHeight)
	return s
}

// TabStrip lays out the tab strip of group g.
func (m *Manager) TabStrip(g arena.Handle) (Strip, error) {
	grec, err := m.lookup(g)
	if err != nil {
		return Strip{}, err
	}
	if grec.kind != KindGroup {
		return Strip{}, fmt.Errorf("%w: %s is not a group", ErrInvariantViolation, g)
	}
	titles := make(map[arena.Handle]string, len(grec.members))
	for _, member := range grec.members {
		if rec, ok := m.records.Get(member); ok {
			titles[member] = rec.title
		}
	}
	return LayoutStrip(m.info(g, grec), titles, m.cfg.Window.TitleBarHeight, m.cfg.Tabs.StripHeight, m.cfg.Tabs.TabWidth), nil
}
