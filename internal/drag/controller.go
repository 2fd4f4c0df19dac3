// Package drag turns pointer events into window manager operations. A single
// session follows the pointer from press to release, resolves what a drop
// would do on every move and commits exactly that on release.
package drag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/snap"
	"github.com/1broseidon/deskshell/internal/wm"
)

var (
	ErrSessionActive = errors.New("drag session already active")
	ErrNoSession     = errors.New("no drag session")
	ErrNotDraggable  = errors.New("not draggable")
)

// Manager is the part of the window manager a drag needs.
type Manager interface {
	Config() *config.Config
	Desktop() snap.Desktop
	Get(h arena.Handle) (wm.Info, error)
	All() []wm.Info
	Focus(h arena.Handle) error
	Move(h arena.Handle, p geom.Point) error
	Snap(h arena.Handle, zone snap.Zone) error
	ClampOrigin(p geom.Point, width int) geom.Point
	CreateGroup(initiator arena.Handle, targets []arena.Handle) (arena.Handle, error)
	AddMember(g, w arena.Handle) error
	ActivateTab(g, w arena.Handle) error
	DetachMember(g, w arena.Handle, drop *geom.Point) error
}

var _ Manager = (*wm.Manager)(nil)

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Pointer is one pointer event in desktop coordinates.
type Pointer struct {
	Pos      geom.Point `json:"pos"`
	Button   Button     `json:"button,omitempty"`
	Modifier bool       `json:"modifier,omitempty"`
}

// SessionKind distinguishes dragging a whole window from dragging a tab.
type SessionKind int

const (
	SessionWindow SessionKind = iota
	SessionTab
)

func (k SessionKind) String() string {
	if k == SessionTab {
		return "tab"
	}
	return "window"
}

func (k SessionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SessionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "window":
		*k = SessionWindow
	case "tab":
		*k = SessionTab
	default:
		return fmt.Errorf("unknown session kind %q", text)
	}
	return nil
}

// Session is the state of one drag.
type Session struct {
	ID       string         `json:"id"`
	Kind     SessionKind    `json:"kind"`
	Subject  arena.Handle   `json:"subject"`
	Group    arena.Handle   `json:"group,omitempty"` // source group of a tab drag
	Offset   geom.Point     `json:"offset"`          // pointer minus origin at press
	Origin   geom.Point     `json:"origin"`
	Position geom.Point     `json:"position"` // clamped candidate origin
	Pointer  geom.Point     `json:"pointer"`
	Modifier bool           `json:"modifier,omitempty"`
	Moved    bool           `json:"moved,omitempty"`
	Intent   Intent         `json:"intent"`
	Targets  []arena.Handle `json:"targets,omitempty"`
}

// Preview describes what renderers should draw while a drag is in progress.
type Preview struct {
	Active         bool           `json:"active"`
	SessionID      string         `json:"session_id,omitempty"`
	Kind           SessionKind    `json:"kind"`
	Subject        arena.Handle   `json:"subject,omitempty"`
	Frame          geom.Rect      `json:"frame"`
	Intent         Intent         `json:"intent"`
	SnapRect       *geom.Rect     `json:"snap_rect,omitempty"`
	GroupTargets   []arena.Handle `json:"group_targets,omitempty"`
	TabStripTarget arena.Handle   `json:"tab_strip_target,omitempty"`
}

// Controller runs drag sessions against a Manager. It is not safe for
// concurrent use.
type Controller struct {
	wm      Manager
	logger  *slog.Logger
	session *Session
	preview Preview
}

// NewController creates a controller.
func NewController(m Manager, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{wm: m, logger: logger}
}

// Session returns the active session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Preview returns the current preview. It is inactive outside a session.
func (c *Controller) Preview() Preview {
	return c.preview
}

// PointerDown handles a press. A primary press on a title bar starts a window
// drag and a press on a tab starts a tab drag. Any other press on a window
// focuses it, as does a press on the title bar of a maximized window, which
// starts no drag. The hit is returned so callers can act on controls.
func (c *Controller) PointerDown(ev Pointer) (Hit, error) {
	if c.session != nil {
		return Hit{}, ErrSessionActive
	}
	hit := HitTest(c.wm.All(), ev.Pos, c.wm.Config())
	if hit.Handle.IsZero() {
		return hit, nil
	}
	if ev.Button != ButtonPrimary {
		return hit, c.wm.Focus(hit.Handle)
	}

	switch hit.Part {
	case PartTitleBar:
		if in, err := c.wm.Get(hit.Handle); err == nil && in.Maximized {
			return hit, c.wm.Focus(hit.Handle)
		}
		return hit, c.BeginWindow(hit.Handle, ev)
	case PartTab:
		return hit, c.BeginTab(hit.Handle, hit.Member, ev)
	default:
		return hit, c.wm.Focus(hit.Handle)
	}
}

// BeginWindow starts dragging window or group h by its title bar.
func (c *Controller) BeginWindow(h arena.Handle, ev Pointer) error {
	if c.session != nil {
		return ErrSessionActive
	}
	in, err := c.wm.Get(h)
	if err != nil {
		return err
	}
	switch {
	case in.Closing:
		return fmt.Errorf("%w: %s", wm.ErrClosing, h)
	case in.Grouped:
		return fmt.Errorf("%w: %s is a tab of %s", ErrNotDraggable, h, in.Parent)
	case in.Maximized:
		return fmt.Errorf("%w: %s is maximized", ErrNotDraggable, h)
	case ev.Button != ButtonPrimary:
		return fmt.Errorf("%w: button %d", ErrNotDraggable, ev.Button)
	}
	if err := c.wm.Focus(h); err != nil {
		return err
	}

	origin := in.Geometry.Origin()
	c.session = &Session{
		ID:       uuid.NewString(),
		Kind:     SessionWindow,
		Subject:  h,
		Offset:   ev.Pos.Sub(origin),
		Origin:   origin,
		Position: origin,
		Pointer:  ev.Pos,
		Modifier: ev.Modifier,
	}
	c.logger.Debug("drag started", "session", c.session.ID, "subject", h.String(), "kind", "window")
	c.refresh(in)
	return nil
}

// BeginTab starts dragging the tab of member out of group g.
func (c *Controller) BeginTab(g, member arena.Handle, ev Pointer) error {
	if c.session != nil {
		return ErrSessionActive
	}
	gi, err := c.wm.Get(g)
	if err != nil {
		return err
	}
	if gi.Closing {
		return fmt.Errorf("%w: %s", wm.ErrClosing, g)
	}
	if gi.Kind != wm.KindGroup {
		return fmt.Errorf("%w: %s is not a group", ErrNotDraggable, g)
	}
	mi, err := c.wm.Get(member)
	if err != nil {
		return err
	}
	if mi.Parent != g {
		return fmt.Errorf("%w: %s is not a tab of %s", ErrNotDraggable, member, g)
	}
	if ev.Button != ButtonPrimary {
		return fmt.Errorf("%w: button %d", ErrNotDraggable, ev.Button)
	}

	c.session = &Session{
		ID:       uuid.NewString(),
		Kind:     SessionTab,
		Subject:  member,
		Group:    g,
		Origin:   ev.Pos,
		Position: ev.Pos,
		Pointer:  ev.Pos,
		Modifier: ev.Modifier,
	}
	c.logger.Debug("drag started", "session", c.session.ID, "subject", member.String(), "group", g.String(), "kind", "tab")
	c.refresh(gi)
	return nil
}

// Move follows the pointer and returns the intent a release would commit.
func (c *Controller) Move(ev Pointer) (Intent, error) {
	s := c.session
	if s == nil {
		return Intent{}, ErrNoSession
	}
	in, err := c.subjectInfo()
	if err != nil {
		c.abort("subject vanished")
		return Intent{}, err
	}

	s.Pointer = ev.Pos
	s.Modifier = ev.Modifier
	if ev.Pos != s.Origin.Add(s.Offset) {
		s.Moved = true
	}
	if s.Kind == SessionWindow {
		s.Position = c.wm.ClampOrigin(ev.Pos.Sub(s.Offset), in.Geometry.Width)
	} else {
		s.Position = ev.Pos
	}
	c.refresh(in)
	return s.Intent, nil
}

// Up ends the session and commits the intent evaluated at the last move. A
// tab released without moving is activated. The session and preview are
// cleared even when the commit fails.
func (c *Controller) Up(ev Pointer) (Intent, error) {
	s := c.session
	if s == nil {
		return Intent{}, ErrNoSession
	}
	defer c.clear()

	intent := s.Intent
	err := c.commit(s)
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
	}
	c.logger.Log(context.Background(), level, "drag finished",
		"session", s.ID, "subject", s.Subject.String(), "intent", intent.String(), "error", err)
	return intent, err
}

// Cancel drops the session without committing anything.
func (c *Controller) Cancel() {
	if c.session != nil {
		c.abort("cancelled")
	}
}

func (c *Controller) commit(s *Session) error {
	if s.Kind == SessionTab {
		if !s.Moved {
			return c.wm.ActivateTab(s.Group, s.Subject)
		}
		switch s.Intent.Kind {
		case IntentDropOnTabStrip:
			return c.wm.AddMember(s.Intent.Target, s.Subject)
		case IntentDetach:
			drop := s.Intent.Drop
			return c.wm.DetachMember(s.Group, s.Subject, &drop)
		default:
			return nil
		}
	}

	switch s.Intent.Kind {
	case IntentSnap:
		return c.wm.Snap(s.Subject, s.Intent.Zone)
	case IntentGroupOnto:
		if err := c.wm.Move(s.Subject, s.Position); err != nil {
			return err
		}
		_, err := c.wm.CreateGroup(s.Subject, []arena.Handle{s.Intent.Target})
		return err
	case IntentDropOnTabStrip:
		if err := c.wm.Move(s.Subject, s.Position); err != nil {
			return err
		}
		return c.wm.AddMember(s.Intent.Target, s.Subject)
	default:
		if !s.Moved {
			return nil
		}
		return c.wm.Move(s.Subject, s.Position)
	}
}

// subjectInfo returns the dragged window, or for tab drags its source group.
func (c *Controller) subjectInfo() (wm.Info, error) {
	s := c.session
	h := s.Subject
	if s.Kind == SessionTab {
		h = s.Group
	}
	in, err := c.wm.Get(h)
	if err != nil {
		return wm.Info{}, err
	}
	if in.Closing {
		return wm.Info{}, fmt.Errorf("%w: %s", wm.ErrClosing, h)
	}
	if s.Kind == SessionTab {
		if mi, err := c.wm.Get(s.Subject); err != nil || mi.Parent != s.Group {
			return wm.Info{}, fmt.Errorf("%w: %s left %s", wm.ErrInvalidReference, s.Subject, s.Group)
		}
	}
	return in, nil
}

// refresh re-evaluates the intent and rebuilds the preview. in is the
// subject for window drags and the source group for tab drags.
func (c *Controller) refresh(in wm.Info) {
	s := c.session
	cfg := c.wm.Config()
	world := c.wm.All()

	p := Preview{
		Active:    true,
		SessionID: s.ID,
		Kind:      s.Kind,
		Subject:   s.Subject,
	}

	if s.Kind == SessionTab {
		if s.Moved {
			s.Intent = ResolveTab(in, s.Pointer, world, cfg)
		} else {
			s.Intent = Intent{}
		}
		s.Targets = nil
		p.Frame = geom.Rect{X: s.Pointer.X - cfg.Drag.TabDropOffset, Y: s.Pointer.Y - cfg.Drag.TabDropOffset, Width: cfg.Tabs.TabWidth, Height: cfg.Tabs.StripHeight}
	} else {
		frame := in.Geometry.At(s.Position)
		res := Resolution{}
		if s.Moved {
			res = Resolve(Input{
				Subject:  in,
				Frame:    frame,
				Pointer:  s.Pointer,
				Modifier: s.Modifier,
				World:    world,
				Desktop:  c.wm.Desktop(),
			}, cfg)
		}
		s.Intent = res.Intent
		s.Targets = res.GroupTargets
		p.Frame = frame
		p.GroupTargets = res.GroupTargets
	}

	p.Intent = s.Intent
	switch s.Intent.Kind {
	case IntentSnap:
		if r, ok := snap.Rect(s.Intent.Zone, c.wm.Desktop()); ok {
			p.SnapRect = &r
		}
	case IntentDropOnTabStrip:
		p.TabStripTarget = s.Intent.Target
	}
	c.preview = p
}

func (c *Controller) abort(reason string) {
	c.logger.Debug("drag aborted", "session", c.session.ID, "reason", reason)
	c.clear()
}

func (c *Controller) clear() {
	c.session = nil
	c.preview = Preview{}
}
