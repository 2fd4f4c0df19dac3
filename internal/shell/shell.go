// Package shell wires the window manager, the drag controller and the
// desktop icons into one desktop, and serializes access to it.
package shell

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/drag"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/schedule"
	"github.com/1broseidon/deskshell/internal/taskbar"
	"github.com/1broseidon/deskshell/internal/wm"
)

// Content prefixes link a window back to the desktop item it shows.
const (
	fileContentPrefix   = "file:"
	folderContentPrefix = "folder:"
)

// Options configures New. Zero fields get defaults.
type Options struct {
	Config   *config.Config
	Clock    schedule.Clock
	Renderer taskbar.Renderer
	Desktop  desktop.Store
	Logger   *slog.Logger
}

// Shell is one desktop. It is not safe for concurrent use; see Service.
type Shell struct {
	Config  *config.Config
	Queue   *schedule.Queue
	WM      *wm.Manager
	Drag    *drag.Controller
	Desktop desktop.Store

	started time.Time
	logger  *slog.Logger
}

// Grid returns the icon grid for cfg.
func Grid(cfg *config.Config) desktop.Grid {
	return desktop.Grid{
		Size:   cfg.Icons.GridSize,
		Width:  cfg.Desktop.Width,
		Height: cfg.AvailableHeight(),
	}
}

// New builds a shell.
func New(opts Options) *Shell {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = schedule.SystemClock
	}
	store := opts.Desktop
	if store == nil {
		mem := desktop.NewMemoryStore(Grid(cfg), logger)
		mem.Seed()
		store = mem
	}

	queue := schedule.NewQueue(clock, logger)
	m := wm.New(cfg, queue, opts.Renderer, logger)
	return &Shell{
		Config:  cfg,
		Queue:   queue,
		WM:      m,
		Drag:    drag.NewController(m, logger),
		Desktop: store,
		started: clock.Now(),
		logger:  logger,
	}
}

// Settle runs every task that is due, including next-tick work.
func (s *Shell) Settle() int {
	return s.Queue.RunDue()
}

// OpenItem opens a desktop item. A folder that is already open is focused
// instead of opened twice.
func (s *Shell) OpenItem(id string) (arena.Handle, error) {
	item, err := s.Desktop.Get(id)
	if err != nil {
		return arena.Handle{}, err
	}

	switch item.Kind {
	case desktop.KindText:
		h := s.WM.Open(item.Name, fileContentPrefix+item.ID, wm.OpenOptions{})
		return h, nil
	case desktop.KindFolder:
		content := folderContentPrefix + item.ID
		for _, in := range s.WM.All() {
			if in.Content == content && !in.Closing {
				return in.Handle, s.WM.Focus(in.Handle)
			}
		}
		return s.WM.Open(item.Name, content, wm.OpenOptions{Width: 600, Height: 400}), nil
	default:
		return arena.Handle{}, fmt.Errorf("cannot open %s: unsupported kind %q", item.Name, item.Kind)
	}
}

// ItemFor returns the desktop item id shown by a window's content, if any.
func ItemFor(content string) (string, bool) {
	for _, prefix := range []string{fileContentPrefix, folderContentPrefix} {
		if id, ok := strings.CutPrefix(content, prefix); ok {
			return id, true
		}
	}
	return "", false
}

// Status summarizes the desktop.
type Status struct {
	Windows      int           `json:"windows"`
	Groups       int           `json:"groups"`
	Minimized    int           `json:"minimized"`
	Closing      int           `json:"closing"`
	Focused      arena.Handle  `json:"focused,omitempty"`
	FocusedTitle string        `json:"focused_title,omitempty"`
	Taskbar      int           `json:"taskbar_entries"`
	Pending      int           `json:"pending_tasks"`
	Dragging     bool          `json:"dragging"`
	Desktop      geom.Rect     `json:"desktop"`
	Started      time.Time     `json:"started"`
	Uptime       time.Duration `json:"uptime"`
}

// Status returns a summary of the desktop.
func (s *Shell) Status() Status {
	st := Status{
		Focused: s.WM.Focused(),
		Taskbar: s.WM.Taskbar().Len(),
		Pending: s.Queue.Len(),
		Started: s.started,
		Uptime:  s.Queue.Now().Sub(s.started),
	}
	d := s.WM.Desktop()
	st.Desktop = geom.Rect{Width: d.Width, Height: d.Height}
	_, st.Dragging = s.Drag.Session()
	for _, in := range s.WM.All() {
		switch {
		case in.Closing:
			st.Closing++
		case in.Kind == wm.KindGroup:
			st.Groups++
		default:
			st.Windows++
		}
		if in.Minimized {
			st.Minimized++
		}
		if in.Handle == st.Focused {
			st.FocusedTitle = in.Title
		}
	}
	return st
}
