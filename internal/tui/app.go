package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/drag"
	"github.com/1broseidon/deskshell/internal/shell"
	"github.com/1broseidon/deskshell/internal/snap"
	"github.com/1broseidon/deskshell/internal/taskbar"
	"github.com/1broseidon/deskshell/internal/wm"
)

// refreshInterval redraws the desktop so deferred work such as close
// animations shows up without input.
const refreshInterval = 100 * time.Millisecond

// Rows taken by the status bar, the taskbar and the help bar.
const chromeRows = 3

type tickMsg time.Time

// snapshot is a copy of the desktop taken on the shell loop.
type snapshot struct {
	status   shell.Status
	desktop  snap.Desktop
	stacking []wm.Info
	titles   map[arena.Handle]string
	taskbar  []taskbar.Entry
	preview  drag.Preview

	titleBar, stripHeight, tabWidth int
}

func take(sh *shell.Shell) snapshot {
	cfg := sh.Config
	out := snapshot{
		status:      sh.Status(),
		desktop:     sh.WM.Desktop(),
		stacking:    sh.WM.Stacking(),
		titles:      make(map[arena.Handle]string),
		taskbar:     sh.WM.Taskbar().Entries(),
		preview:     sh.Drag.Preview(),
		titleBar:    cfg.Window.TitleBarHeight,
		stripHeight: cfg.Tabs.StripHeight,
		tabWidth:    cfg.Tabs.TabWidth,
	}
	for _, in := range sh.WM.All() {
		out.titles[in.Handle] = in.Title
	}
	return out
}

// model is the root bubbletea model for the TUI.
type model struct {
	ctx  context.Context
	svc  *shell.Service
	snap snapshot

	prompting bool
	prompt    textinput.Model
	message   string

	// Terminal dimensions
	width  int
	height int
}

func newModel(ctx context.Context, svc *shell.Service) model {
	ti := textinput.New()
	ti.Placeholder = "window title"
	ti.CharLimit = 64
	ti.Prompt = "open: "

	m := model{ctx: ctx, svc: svc, prompt: ti}
	m.do("refresh", func(*shell.Shell) error { return nil })
	return m
}

// do runs fn on the shell loop and refreshes the snapshot in the same
// request so the picture matches the state fn left behind.
func (m *model) do(name string, fn func(*shell.Shell) error) {
	var next snapshot
	err := m.svc.Do(m.ctx, name, func(sh *shell.Shell) error {
		err := fn(sh)
		sh.Settle()
		next = take(sh)
		return err
	})
	if next.titles != nil {
		m.snap = next
	}
	if err != nil {
		m.message = err.Error()
	}
}

// focused runs fn with the focused entry, if there is one.
func (m *model) focused(name string, fn func(*wm.Manager, arena.Handle) error) {
	m.do(name, func(sh *shell.Shell) error {
		h := sh.WM.Focused()
		if h.IsZero() {
			return fmt.Errorf("no focused window")
		}
		return fn(sh.WM, h)
	})
}

func (m model) scale() scale {
	return scale{
		deskW: m.snap.desktop.Width,
		deskH: m.snap.desktop.Height - m.snap.desktop.TaskbarHeight,
		cols:  m.width,
		rows:  max(m.height-chromeRows, 1),
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.do("refresh", func(*shell.Shell) error { return nil })
		return m, tick()

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		title := strings.TrimSpace(m.prompt.Value())
		m.prompting = false
		m.prompt.Blur()
		m.do("open", func(sh *shell.Shell) error {
			sh.WM.Open(title, "", wm.OpenOptions{})
			return nil
		})
		return m, nil
	case "esc":
		m.prompting = false
		m.prompt.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "n":
		m.prompting = true
		m.prompt.Reset()
		m.prompt.Focus()
		return m, textinput.Blink
	case "x":
		m.focused("close", (*wm.Manager).Close)
	case "m":
		m.focused("toggle-maximize", (*wm.Manager).ToggleMaximize)
	case "z":
		m.focused("minimize", (*wm.Manager).Minimize)
	case "left":
		m.focused("snap-left", func(w *wm.Manager, h arena.Handle) error { return w.Snap(h, snap.Left) })
	case "right":
		m.focused("snap-right", func(w *wm.Manager, h arena.Handle) error { return w.Snap(h, snap.Right) })
	case "up":
		m.focused("snap-top", func(w *wm.Manager, h arena.Handle) error { return w.Snap(h, snap.Top) })
	case "down":
		m.focused("unmaximize", (*wm.Manager).Unmaximize)
	case "r":
		m.do("restore", func(sh *shell.Shell) error {
			entries := sh.WM.Taskbar().Entries()
			for i := len(entries) - 1; i >= 0; i-- {
				if entries[i].State == taskbar.Minimized {
					return sh.WM.Restore(entries[i].Bound)
				}
			}
			return fmt.Errorf("nothing minimized")
		})
	case "tab":
		m.do("cycle-focus", cycleFocus)
	case "t":
		m.do("tile", func(sh *shell.Shell) error {
			sh.WM.Tile()
			return nil
		})
	case "c":
		var report wm.ConsistencyReport
		m.do("check", func(sh *shell.Shell) error {
			report = sh.WM.CheckConsistency()
			return nil
		})
		if report.Repaired() {
			m.message = "repaired drift"
		} else {
			m.message = "consistent"
		}
	case "esc":
		m.do("cancel-drag", func(sh *shell.Shell) error {
			sh.Drag.Cancel()
			return nil
		})
	}
	return m, nil
}

// cycleFocus focuses the taskbar entry after the focused one.
func cycleFocus(sh *shell.Shell) error {
	entries := sh.WM.Taskbar().Entries()
	if len(entries) == 0 {
		return nil
	}
	next := 0
	for i, e := range entries {
		if e.Bound == sh.WM.Focused() {
			next = (i + 1) % len(entries)
		}
	}
	return sh.WM.Focus(entries[next].Bound)
}

// clickTaskbar minimizes the active entry and focuses any other.
func clickTaskbar(sh *shell.Shell, e taskbar.Entry) error {
	if e.State == taskbar.Active {
		return sh.WM.Minimize(e.Bound)
	}
	return sh.WM.Focus(e.Bound)
}

func toButton(b tea.MouseButton) (drag.Button, bool) {
	switch b {
	case tea.MouseButtonLeft:
		return drag.ButtonPrimary, true
	case tea.MouseButtonMiddle:
		return drag.ButtonMiddle, true
	case tea.MouseButtonRight:
		return drag.ButtonSecondary, true
	default:
		return 0, false
	}
}

// handleMouse feeds mouse events to the drag controller. Row 0 is the
// status bar; the desktop starts on row 1 and the taskbar follows it.
func (m *model) handleMouse(msg tea.MouseMsg) {
	s := m.scale()
	if !s.valid() {
		return
	}
	row := msg.Y - 1
	taskbarRow := s.rows

	switch msg.Action {
	case tea.MouseActionPress:
		button, ok := toButton(msg.Button)
		if !ok {
			return
		}
		if row == taskbarRow && button == drag.ButtonPrimary {
			if i, ok := taskbarAt(m.snap.taskbar, msg.X); ok {
				entry := m.snap.taskbar[i]
				m.do("taskbar-click", func(sh *shell.Shell) error { return clickTaskbar(sh, entry) })
			}
			return
		}
		if row < 0 || row >= s.rows {
			return
		}
		ev := drag.Pointer{Pos: s.toDesktop(msg.X, row), Button: button, Modifier: msg.Ctrl}
		m.do("pointer-down", func(sh *shell.Shell) error {
			_, err := sh.Press(ev)
			return err
		})

	case tea.MouseActionMotion:
		if !m.snap.preview.Active {
			return
		}
		ev := drag.Pointer{Pos: s.toDesktop(msg.X, row), Modifier: msg.Ctrl}
		m.do("pointer-move", func(sh *shell.Shell) error {
			_, err := sh.Drag.Move(ev)
			return err
		})

	case tea.MouseActionRelease:
		if !m.snap.preview.Active {
			return
		}
		ev := drag.Pointer{Pos: s.toDesktop(msg.X, row), Modifier: msg.Ctrl}
		m.do("pointer-up", func(sh *shell.Shell) error {
			_, err := sh.Drag.Up(ev)
			return err
		})
	}
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.snap.status, m.message, m.width)
	if m.prompting {
		statusBar = lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(m.prompt.View())
	}

	s := m.scale()
	lines := renderDesktop(frame{
		scale:       s,
		stacking:    m.snap.stacking,
		titles:      m.snap.titles,
		preview:     m.snap.preview,
		titleBar:    m.snap.titleBar,
		stripHeight: m.snap.stripHeight,
		tabWidth:    m.snap.tabWidth,
	})
	desk := desktopStyle.Width(m.width).Render(strings.Join(lines, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		desk,
		renderTaskbar(m.snap.taskbar, m.width),
		renderHelpBar(m.width),
	)
}
