// Package wm is the window manager core: the registry of windows and tab
// groups, their stacking and focus, lifecycle operations and the taskbar
// mirror.
//
// A Manager is not safe for concurrent use. The shell service calls it from
// a single goroutine together with the schedule.Queue it was built with.
package wm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/schedule"
	"github.com/1broseidon/deskshell/internal/snap"
	"github.com/1broseidon/deskshell/internal/taskbar"
)

var (
	// ErrInvalidReference means the handle does not address a live entry.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInvariantViolation means the request would break a structural rule,
	// such as nesting a group or detaching a non-member.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrClosing means the entry is animating out and accepts no more work.
	ErrClosing = errors.New("window is closing")
)

// baseZ is the stacking key below every window.
const baseZ = 100

// GroupTitle is the title of a tab group container.
const GroupTitle = "Window Group"

// Kind distinguishes plain windows from tab group containers.
type Kind int

const (
	KindWindow Kind = iota
	KindGroup
)

func (k Kind) String() string {
	if k == KindGroup {
		return "group"
	}
	return "window"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "window":
		*k = KindWindow
	case "group":
		*k = KindGroup
	default:
		return fmt.Errorf("unknown kind %q", text)
	}
	return nil
}

type record struct {
	kind    Kind
	seq     uint64
	title   string
	content string
	geom    geom.Rect
	z       int

	minimized bool
	maximized bool
	closing   bool
	focused   bool
	snapped   snap.Zone
	restore   *geom.Rect

	// Set while the window is a tab of a group.
	parent    arena.Handle
	preGroup  geom.Rect
	preGroupZ int

	// Group containers only.
	members []arena.Handle
	active  arena.Handle
}

func (r *record) topLevel() bool {
	return r.parent.IsZero() && !r.closing
}

func (r *record) visible() bool {
	return r.topLevel() && !r.minimized
}

// Info is a read-only snapshot of one registry entry.
type Info struct {
	Handle    arena.Handle `json:"handle"`
	Kind      Kind         `json:"kind"`
	Seq       uint64       `json:"seq"`
	Title     string       `json:"title"`
	Content   string       `json:"content,omitempty"`
	Geometry  geom.Rect    `json:"geometry"`
	Z         int          `json:"z"`
	Minimized bool         `json:"minimized,omitempty"`
	Maximized bool         `json:"maximized,omitempty"`
	Closing   bool         `json:"closing,omitempty"`
	Focused   bool         `json:"focused,omitempty"`
	Snapped   snap.Zone    `json:"snapped"`

	RestoreGeometry *geom.Rect `json:"restore_geometry,omitempty"`

	Grouped bool         `json:"grouped,omitempty"`
	Parent  arena.Handle `json:"parent,omitempty"`

	Members []arena.Handle `json:"members,omitempty"`
	Active  arena.Handle   `json:"active,omitempty"`

	TaskbarEntry string `json:"taskbar_entry,omitempty"`
}

// TopLevel reports whether the entry stacks on the desktop on its own.
func (i Info) TopLevel() bool {
	return !i.Grouped && !i.Closing
}

// Visible reports whether the entry is a shown top-level entry.
func (i Info) Visible() bool {
	return i.TopLevel() && !i.Minimized
}

// OpenOptions overrides the defaults of a new window. Zero values keep the
// configured defaults.
type OpenOptions struct {
	Width    int         `json:"width,omitempty"`
	Height   int         `json:"height,omitempty"`
	Position *geom.Point `json:"position,omitempty"`
}

// Manager owns every window and group record.
type Manager struct {
	cfg     *config.Config
	desk    snap.Desktop
	logger  *slog.Logger
	queue   *schedule.Queue
	records *arena.Arena[*record]
	taskbar *taskbar.Sync
	seq     uint64
	focused arena.Handle
}

// New creates a manager. Deferred work is scheduled on queue and taskbar
// changes are drawn through renderer.
func New(cfg *config.Config, queue *schedule.Queue, renderer taskbar.Renderer, logger *slog.Logger) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if queue == nil {
		queue = schedule.NewQueue(nil, logger)
	}
	return &Manager{
		cfg: cfg,
		desk: snap.Desktop{
			Width:         cfg.Desktop.Width,
			Height:        cfg.Desktop.Height,
			TaskbarHeight: cfg.Taskbar.Height,
		},
		logger:  logger,
		queue:   queue,
		records: arena.New[*record](),
		taskbar: taskbar.NewSync(renderer, logger),
	}
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Desktop returns the desktop dimensions.
func (m *Manager) Desktop() snap.Desktop {
	return m.desk
}

// Taskbar exposes the taskbar mirror.
func (m *Manager) Taskbar() *taskbar.Sync {
	return m.taskbar
}

// Focused returns the focused entry, or the zero handle.
func (m *Manager) Focused() arena.Handle {
	return m.focused
}

// Len returns the number of live entries, closing ones included.
func (m *Manager) Len() int {
	return m.records.Len()
}

func (m *Manager) lookup(h arena.Handle) (*record, error) {
	rec, ok := m.records.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReference, h)
	}
	return rec, nil
}

// reject logs a dropped request and returns err unchanged.
func (m *Manager) reject(op string, h arena.Handle, err error) error {
	level := slog.LevelDebug
	if errors.Is(err, ErrInvariantViolation) {
		level = slog.LevelWarn
	}
	m.logger.Log(context.Background(), level, "request dropped", "op", op, "handle", h.String(), "err", err)
	return err
}

func (m *Manager) info(h arena.Handle, r *record) Info {
	in := Info{
		Handle:    h,
		Kind:      r.kind,
		Seq:       r.seq,
		Title:     r.title,
		Content:   r.content,
		Geometry:  r.geom,
		Z:         r.z,
		Minimized: r.minimized,
		Maximized: r.maximized,
		Closing:   r.closing,
		Focused:   r.focused,
		Snapped:   r.snapped,
		Grouped:   !r.parent.IsZero(),
		Parent:    r.parent,
		Active:    r.active,
	}
	if r.restore != nil {
		g := *r.restore
		in.RestoreGeometry = &g
	}
	if len(r.members) > 0 {
		in.Members = append([]arena.Handle(nil), r.members...)
	}
	if e, ok := m.taskbar.Lookup(h); ok {
		in.TaskbarEntry = e.ID
	}
	return in
}

// Get returns a snapshot of one entry.
func (m *Manager) Get(h arena.Handle) (Info, error) {
	rec, err := m.lookup(h)
	if err != nil {
		return Info{}, err
	}
	return m.info(h, rec), nil
}

// All returns every live entry ordered by creation.
func (m *Manager) All() []Info {
	out := make([]Info, 0, m.records.Len())
	m.records.Each(func(h arena.Handle, r *record) bool {
		out = append(out, m.info(h, r))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Stacking returns the visible top-level entries from bottom to top.
func (m *Manager) Stacking() []Info {
	var out []Info
	m.records.Each(func(h arena.Handle, r *record) bool {
		if r.visible() {
			out = append(out, m.info(h, r))
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return stackedBelow(out[i], out[j]) })
	return out
}

func stackedBelow(a, b Info) bool {
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	return a.Seq < b.Seq
}

// Open creates a window and returns its handle. The new window is focused on
// the next tick.
func (m *Manager) Open(title, content string, opts OpenOptions) arena.Handle {
	h := m.insert(KindWindow, title, content, opts)
	m.syncTaskbar()
	m.queue.NextTick("focus-new-window", func() {
		if err := m.Focus(h); err != nil {
			m.logger.Debug("deferred focus skipped", "handle", h.String(), "err", err)
		}
	})
	m.logger.Info("window opened", "handle", h.String(), "title", title)
	return h
}

func (m *Manager) insert(kind Kind, title, content string, opts OpenOptions) arena.Handle {
	wc := m.cfg.Window
	if title == "" {
		title = wc.Title
	}
	width, height := wc.Width, wc.Height
	if opts.Width > 0 {
		width = max(opts.Width, wc.MinWidth)
	}
	if opts.Height > 0 {
		height = max(opts.Height, wc.MinHeight)
	}

	var origin geom.Point
	if opts.Position != nil {
		origin = *opts.Position
	} else {
		offset := (m.records.Len() % wc.CascadeSlots) * wc.CascadeStep
		origin = geom.Point{X: wc.Left + offset, Y: wc.Top + offset}
	}

	m.seq++
	rec := &record{
		kind:    kind,
		seq:     m.seq,
		title:   title,
		content: content,
		geom:    geom.Rect{X: origin.X, Y: origin.Y, Width: width, Height: height},
		z:       m.maxZ() + 1,
	}
	return m.records.Insert(rec)
}

// maxZ is the highest stacking key among top-level entries.
func (m *Manager) maxZ() int {
	top := baseZ
	m.records.Each(func(_ arena.Handle, r *record) bool {
		if r.topLevel() && r.z > top {
			top = r.z
		}
		return true
	})
	return top
}

// isTopmost reports whether h stacks strictly above every other visible
// top-level entry.
func (m *Manager) isTopmost(h arena.Handle, rec *record) bool {
	topmost := true
	m.records.Each(func(other arena.Handle, r *record) bool {
		if other != h && r.visible() && r.z >= rec.z {
			topmost = false
			return false
		}
		return true
	})
	return topmost
}

// Focus raises h and gives it focus, un-minimizing it if needed. Focusing a
// tab activates it and focuses its group.
func (m *Manager) Focus(h arena.Handle) error {
	rec, err := m.lookup(h)
	if err != nil {
		return m.reject("focus", h, err)
	}
	if rec.closing {
		return m.reject("focus", h, fmt.Errorf("%w: %s", ErrClosing, h))
	}
	if !rec.parent.IsZero() {
		group := rec.parent
		if err := m.ActivateTab(group, h); err != nil {
			return err
		}
		return m.Focus(group)
	}

	if rec.focused && !rec.minimized && m.focused == h && m.isTopmost(h, rec) {
		return nil
	}

	if prev, ok := m.records.Get(m.focused); ok && m.focused != h {
		prev.focused = false
	}
	if rec.minimized {
		rec.minimized = false
	}
	if !m.isTopmost(h, rec) {
		rec.z = m.maxZ() + 1
	}
	rec.focused = true
	m.focused = h
	m.syncTaskbar()
	return nil
}

// focusNext gives focus to the highest visible top-level entry, if any.
func (m *Manager) focusNext() {
	var best arena.Handle
	var bestRec *record
	m.records.Each(func(h arena.Handle, r *record) bool {
		if !r.visible() {
			return true
		}
		if bestRec == nil || r.z > bestRec.z || (r.z == bestRec.z && r.seq > bestRec.seq) {
			best, bestRec = h, r
		}
		return true
	})
	if bestRec == nil {
		m.focused = arena.Handle{}
		m.syncTaskbar()
		return
	}
	if err := m.Focus(best); err != nil {
		m.logger.Warn("focus promotion failed", "handle", best.String(), "err", err)
	}
}

// dropFocus clears focus from h and promotes the next entry when h held it.
func (m *Manager) dropFocus(h arena.Handle, rec *record) {
	rec.focused = false
	if m.focused == h {
		m.focused = arena.Handle{}
		m.focusNext()
	}
}

// Minimize hides h and passes focus on.
func (m *Manager) Minimize(h arena.Handle) error {
	rec, err := m.lookup(h)
	if err != nil {
		return m.reject("minimize", h, err)
	}
	if rec.closing {
		return m.reject("minimize", h, fmt.Errorf("%w: %s", ErrClosing, h))
	}
	if !rec.parent.IsZero() {
		return m.reject("minimize", h, fmt.Errorf("%w: %s is a tab of %s", ErrInvariantViolation, h, rec.parent))
	}
	if rec.minimized {
		return nil
	}
	rec.minimized = true
	m.dropFocus(h, rec)
	m.syncTaskbar()
	return nil
}

// Restore un-minimizes h and focuses it.
func (m *Manager) Restore(h arena.Handle) error {
	rec, err := m.lookup(h)
	if err != nil {
		return m.reject("restore", h, err)
	}
	if !rec.minimized {
		return nil
	}
	return m.Focus(h)
}

// Close starts closing h. Its taskbar entry goes away at once and the record
// is removed once the close animation has finished. Closing a group first
// returns every tab to the desktop. Closing a tab removes it from its group
// immediately.
func (m *Manager) Close(h arena.Handle) error {
	rec, err := m.lookup(h)
	if err != nil {
		return m.reject("close", h, err)
	}
	if rec.closing {
		return nil
	}

	if !rec.parent.IsZero() {
		m.closeMember(h, rec)
		return nil
	}

	if rec.kind == KindGroup {
		for len(rec.members) > 0 {
			m.releaseMember(h, rec, rec.members[0], nil)
		}
	}

	rec.closing = true
	m.syncTaskbar()
	m.queue.After(m.cfg.Animation.Duration, "commit-close", func() {
		m.commitClose(h)
	})
	m.logger.Info("window closing", "handle", h.String(), "kind", rec.kind.String())
	return nil
}

// commitClose removes a closing record. It is a no-op for records that are
// already gone.
func (m *Manager) commitClose(h arena.Handle) {
	rec, ok := m.records.Get(h)
	if !ok || !rec.closing {
		return
	}
	m.remove(h, rec)
}

// remove deletes a record outright and repairs focus.
func (m *Manager) remove(h arena.Handle, rec *record) {
	m.records.Remove(h)
	m.taskbar.Remove(h)
	if m.focused == h {
		m.focused = arena.Handle{}
		m.focusNext()
	}
	m.syncTaskbar()
	m.logger.Info("window closed", "handle", h.String())
}

// IsClosing reports whether h is waiting for its close to commit.
func (m *Manager) IsClosing(h arena.Handle) bool {
	rec, ok := m.records.Get(h)
	return ok && rec.closing
}

func (m *Manager) taskbarState(h arena.Handle, r *record) taskbar.State {
	switch {
	case r.minimized:
		return taskbar.Minimized
	case r.focused && m.focused == h:
		return taskbar.Active
	default:
		return taskbar.Inactive
	}
}

func (m *Manager) taskbarTitle(r *record) string {
	if r.kind == KindGroup {
		if active, ok := m.records.Get(r.active); ok {
			return active.title
		}
	}
	return r.title
}

// desiredTaskbar derives which entries should exist from the records.
func (m *Manager) desiredTaskbar() []taskbar.Desired {
	type item struct {
		seq uint64
		d   taskbar.Desired
	}
	var items []item
	m.records.Each(func(h arena.Handle, r *record) bool {
		if r.topLevel() {
			items = append(items, item{seq: r.seq, d: taskbar.Desired{
				Bound: h,
				Title: m.taskbarTitle(r),
				State: m.taskbarState(h, r),
			}})
		}
		return true
	})
	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })
	out := make([]taskbar.Desired, len(items))
	for i, it := range items {
		out[i] = it.d
	}
	return out
}

func (m *Manager) syncTaskbar() taskbar.Report {
	return m.taskbar.Reconcile(m.desiredTaskbar())
}
