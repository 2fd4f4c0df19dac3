package wm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/1broseidon/deskshell/internal/arena"
)

// FindByTitle returns the newest stand-alone window titled exactly title.
func (m *Manager) FindByTitle(title string) (arena.Handle, bool) {
	var found arena.Handle
	var seq uint64
	m.records.Each(func(h arena.Handle, r *record) bool {
		if r.kind == KindWindow && r.topLevel() && r.title == title && r.seq > seq {
			found, seq = h, r.seq
		}
		return true
	})
	return found, !found.IsZero()
}

// Launch focuses the window titled title if one is open, and opens a new one
// otherwise. It reports whether a window was opened.
func (m *Manager) Launch(title, content string) (arena.Handle, bool) {
	if h, ok := m.FindByTitle(title); ok {
		if err := m.Focus(h); err == nil {
			return h, false
		}
	}
	return m.Open(title, content, OpenOptions{}), true
}

// Resolve turns a user supplied reference into a handle. The reference may be
// a handle ("3.1"), an exact title, or a fuzzy title. Ties go to the newest
// entry.
func (m *Manager) Resolve(ref string) (arena.Handle, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return arena.Handle{}, fmt.Errorf("%w: empty window reference", ErrInvalidReference)
	}
	if h, err := arena.ParseHandle(ref); err == nil {
		if m.records.Contains(h) {
			return h, nil
		}
		return arena.Handle{}, fmt.Errorf("%w: %s", ErrInvalidReference, h)
	}

	type candidate struct {
		h     arena.Handle
		seq   uint64
		title string
	}
	var candidates []candidate
	m.records.Each(func(h arena.Handle, r *record) bool {
		if r.closing {
			return true
		}
		title := r.title
		if r.kind == KindGroup {
			title = m.taskbarTitle(r)
		}
		candidates = append(candidates, candidate{h: h, seq: r.seq, title: title})
		return true
	})
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].seq > candidates[j].seq })

	for _, c := range candidates {
		if strings.EqualFold(c.title, ref) {
			return c.h, nil
		}
	}

	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.title
	}
	ranks := fuzzy.RankFindFold(ref, titles)
	if len(ranks) == 0 {
		return arena.Handle{}, fmt.Errorf("%w: no window matches %q", ErrInvalidReference, ref)
	}
	// Stable sort keeps newest-first order among equal distances.
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Distance < ranks[j].Distance })
	return candidates[ranks[0].OriginalIndex].h, nil
}
