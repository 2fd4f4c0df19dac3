// Package taskbar keeps one entry per top-level window or group and mirrors
// each one's focus and minimize state onto a Renderer.
package taskbar

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/1broseidon/deskshell/internal/arena"
)

// State is the visual state of a taskbar entry.
type State int

const (
	Inactive State = iota
	Active
	Minimized
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Minimized:
		return "minimized"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "inactive":
		*s = Inactive
	case "active":
		*s = Active
	case "minimized":
		*s = Minimized
	default:
		return fmt.Errorf("unknown taskbar state %q", text)
	}
	return nil
}

// Renderer draws taskbar entries. Calls are made on the shell's event loop.
type Renderer interface {
	CreateEntry(id, boundID, title string)
	RemoveEntry(id string)
	SetState(id string, state State)
	SetTitle(id, title string)
}

// Entry is one taskbar button.
type Entry struct {
	ID    string       `json:"id"`
	Bound arena.Handle `json:"bound"`
	Title string       `json:"title"`
	State State        `json:"state"`

	seq uint64
}

// Desired describes an entry that should exist.
type Desired struct {
	Bound arena.Handle
	Title string
	State State
}

// Report lists the entry ids touched by a Reconcile.
type Report struct {
	Created  []string `json:"created,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Retitled []string `json:"retitled,omitempty"`
	Restated []string `json:"restated,omitempty"`
}

// Empty reports whether the reconcile changed nothing.
func (r Report) Empty() bool {
	return len(r.Created) == 0 && len(r.Removed) == 0 && len(r.Retitled) == 0 && len(r.Restated) == 0
}

type cached struct {
	id    string
	title string
}

// Sync owns the taskbar entries. It holds bound handles only, never the
// window records themselves.
type Sync struct {
	renderer  Renderer
	logger    *slog.Logger
	entries   map[arena.Handle]*Entry
	suspended map[arena.Handle]cached
	seq       uint64
}

// NewSync creates an empty taskbar. A nil renderer discards drawing calls.
func NewSync(renderer Renderer, logger *slog.Logger) *Sync {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sync{
		renderer:  renderer,
		logger:    logger,
		entries:   make(map[arena.Handle]*Entry),
		suspended: make(map[arena.Handle]cached),
	}
}

// EntryID returns the id used for the entry bound to h.
func EntryID(h arena.Handle) string {
	return "tb-" + h.String()
}

// Lookup returns the entry bound to h.
func (s *Sync) Lookup(h arena.Handle) (Entry, bool) {
	e, ok := s.entries[h]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// IsSuspended reports whether h has a cached entry waiting for Resume.
func (s *Sync) IsSuspended(h arena.Handle) bool {
	_, ok := s.suspended[h]
	return ok
}

// Entries returns all entries in creation order.
func (s *Sync) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Len returns the number of live entries.
func (s *Sync) Len() int {
	return len(s.entries)
}

// Ensure creates the entry for d if missing and otherwise refreshes its title
// and state. It returns what changed.
func (s *Sync) Ensure(d Desired) Report {
	var rep Report
	e, ok := s.entries[d.Bound]
	if !ok {
		s.create(d.Bound, EntryID(d.Bound), d.Title, d.State)
		rep.Created = append(rep.Created, EntryID(d.Bound))
		return rep
	}
	if e.Title != d.Title {
		e.Title = d.Title
		s.renderer.SetTitle(e.ID, d.Title)
		rep.Retitled = append(rep.Retitled, e.ID)
	}
	if e.State != d.State {
		e.State = d.State
		s.renderer.SetState(e.ID, d.State)
		rep.Restated = append(rep.Restated, e.ID)
	}
	return rep
}

// Remove deletes the entry bound to h, forgetting any cached data.
func (s *Sync) Remove(h arena.Handle) bool {
	delete(s.suspended, h)
	e, ok := s.entries[h]
	if !ok {
		return false
	}
	delete(s.entries, h)
	s.renderer.RemoveEntry(e.ID)
	return true
}

// Suspend removes the entry bound to h but keeps its id and title so Resume
// can bring it back unchanged.
func (s *Sync) Suspend(h arena.Handle) bool {
	e, ok := s.entries[h]
	if !ok {
		return false
	}
	s.suspended[h] = cached{id: e.ID, title: e.Title}
	delete(s.entries, h)
	s.renderer.RemoveEntry(e.ID)
	return true
}

// Resume recreates a suspended entry with its cached id and title. Without a
// cache it behaves like Ensure with fallbackTitle.
func (s *Sync) Resume(h arena.Handle, fallbackTitle string, state State) {
	c, ok := s.suspended[h]
	if !ok {
		s.Ensure(Desired{Bound: h, Title: fallbackTitle, State: state})
		return
	}
	delete(s.suspended, h)
	if _, live := s.entries[h]; live {
		s.logger.Debug("taskbar resume on live entry", "entry", c.id)
		return
	}
	s.create(h, c.id, c.title, state)
}

// Forget drops the cached data of a suspended entry.
func (s *Sync) Forget(h arena.Handle) {
	delete(s.suspended, h)
}

// Reconcile makes the entry set equal desired: missing entries are created,
// stale ones removed and the rest refreshed. Renderer calls are limited to
// what actually differs.
func (s *Sync) Reconcile(desired []Desired) Report {
	var rep Report
	want := make(map[arena.Handle]struct{}, len(desired))
	for _, d := range desired {
		want[d.Bound] = struct{}{}
	}

	stale := make([]*Entry, 0)
	for h, e := range s.entries {
		if _, ok := want[h]; !ok {
			stale = append(stale, e)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].seq < stale[j].seq })
	for _, e := range stale {
		delete(s.entries, e.Bound)
		s.renderer.RemoveEntry(e.ID)
		rep.Removed = append(rep.Removed, e.ID)
	}

	for _, d := range desired {
		r := s.Ensure(d)
		rep.Created = append(rep.Created, r.Created...)
		rep.Retitled = append(rep.Retitled, r.Retitled...)
		rep.Restated = append(rep.Restated, r.Restated...)
	}

	if !rep.Empty() {
		s.logger.Debug("taskbar reconciled",
			"created", len(rep.Created),
			"removed", len(rep.Removed),
			"retitled", len(rep.Retitled),
			"restated", len(rep.Restated),
		)
	}
	return rep
}

func (s *Sync) create(h arena.Handle, id, title string, state State) {
	s.seq++
	s.entries[h] = &Entry{ID: id, Bound: h, Title: title, State: state, seq: s.seq}
	s.renderer.CreateEntry(id, h.String(), title)
	if state != Inactive {
		s.renderer.SetState(id, state)
	}
}

type nopRenderer struct{}

func (nopRenderer) CreateEntry(string, string, string) {}
func (nopRenderer) RemoveEntry(string)                 {}
func (nopRenderer) SetState(string, State)             {}
func (nopRenderer) SetTitle(string, string)            {}
