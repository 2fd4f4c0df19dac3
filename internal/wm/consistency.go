package wm

import (
	"slices"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/taskbar"
)

// ConsistencyReport describes what a sweep repaired.
type ConsistencyReport struct {
	Taskbar taskbar.Report `json:"taskbar"`
	// Tabs dropped from a group because they no longer point back at it.
	DroppedMembers []string `json:"dropped_members,omitempty"`
	// Windows whose group no longer exists, returned to the desktop.
	Orphans []string `json:"orphans,omitempty"`
	// Groups that had an invalid active tab.
	ActiveFixed []string `json:"active_fixed,omitempty"`
	// Groups closed because they had no members left.
	ClosedGroups []string `json:"closed_groups,omitempty"`
	FocusFixed   bool     `json:"focus_fixed,omitempty"`
}

// Repaired reports whether the sweep changed anything.
func (r ConsistencyReport) Repaired() bool {
	return !r.Taskbar.Empty() || len(r.DroppedMembers) > 0 || len(r.Orphans) > 0 ||
		len(r.ActiveFixed) > 0 || len(r.ClosedGroups) > 0 || r.FocusFixed
}

// CheckConsistency re-derives group membership, focus and the taskbar from
// the records and repairs any drift. It is safe to run at any time; on a
// consistent registry it changes nothing.
func (m *Manager) CheckConsistency() ConsistencyReport {
	var rep ConsistencyReport

	type groupRef struct {
		h   arena.Handle
		rec *record
	}
	var groups []groupRef
	m.records.Each(func(h arena.Handle, r *record) bool {
		if r.kind == KindGroup && !r.closing {
			groups = append(groups, groupRef{h, r})
		}
		return true
	})

	for _, g := range groups {
		kept := g.rec.members[:0]
		for _, w := range g.rec.members {
			rec, ok := m.records.Get(w)
			if !ok || rec.parent != g.h || slices.Contains(kept, w) {
				rep.DroppedMembers = append(rep.DroppedMembers, w.String())
				continue
			}
			kept = append(kept, w)
		}
		g.rec.members = kept
		if len(kept) > 0 && !slices.Contains(kept, g.rec.active) {
			g.rec.active = kept[0]
			rep.ActiveFixed = append(rep.ActiveFixed, g.h.String())
		}
	}

	m.records.Each(func(h arena.Handle, r *record) bool {
		if r.parent.IsZero() {
			return true
		}
		parent, ok := m.records.Get(r.parent)
		if ok && parent.kind == KindGroup && !parent.closing && slices.Contains(parent.members, h) {
			return true
		}
		rep.Orphans = append(rep.Orphans, h.String())
		r.parent = arena.Handle{}
		r.geom = r.preGroup
		r.z = r.preGroupZ
		m.taskbar.Resume(h, r.title, m.taskbarState(h, r))
		return true
	})

	for _, g := range groups {
		if len(g.rec.members) == 0 {
			rep.ClosedGroups = append(rep.ClosedGroups, g.h.String())
			m.remove(g.h, g.rec)
		}
	}

	if !m.focused.IsZero() {
		rec, ok := m.records.Get(m.focused)
		if !ok || !rec.visible() {
			rep.FocusFixed = true
			if ok {
				rec.focused = false
			}
			m.focused = arena.Handle{}
			m.focusNext()
		}
	}

	rep.Taskbar = m.syncTaskbar()

	if rep.Repaired() {
		m.logger.Warn("consistency sweep repaired drift",
			"taskbar_created", len(rep.Taskbar.Created),
			"taskbar_removed", len(rep.Taskbar.Removed),
			"orphans", len(rep.Orphans),
			"dropped_members", len(rep.DroppedMembers),
			"closed_groups", len(rep.ClosedGroups),
		)
	} else {
		m.logger.Debug("consistency sweep clean")
	}
	return rep
}
