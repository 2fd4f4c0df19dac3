package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/schedule"
	"github.com/1broseidon/deskshell/internal/shell"
	"github.com/1broseidon/deskshell/internal/taskbar"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sh := shell.New(shell.Options{Clock: schedule.NewManualClock(time.Unix(0, 0)), Logger: logger})
	svc := shell.NewService(sh, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-svc.Done()
	})

	m := newModel(ctx, svc)
	return send(t, m, tea.WindowSizeMsg{Width: 128, Height: 40})
}

func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func openWindow(t *testing.T, m model, title string) model {
	t.Helper()
	m = send(t, m, key("n"))
	if !m.prompting {
		t.Fatal("n did not open the prompt")
	}
	m = send(t, m, key(title))
	return send(t, m, key("enter"))
}

func TestOpenFromPrompt(t *testing.T) {
	m := newTestModel(t)
	m = openWindow(t, m, "Notes")

	if m.prompting {
		t.Fatal("prompt still open after enter")
	}
	if m.snap.status.Windows != 1 || len(m.snap.taskbar) != 1 {
		t.Fatalf("status = %+v taskbar = %+v", m.snap.status, m.snap.taskbar)
	}
	if got := m.snap.stacking[0].Title; got != "Notes" {
		t.Fatalf("title = %q", got)
	}
	if m.snap.status.FocusedTitle != "Notes" {
		t.Fatalf("new window not focused: %+v", m.snap.status)
	}
	if m.View() == "" {
		t.Fatal("empty view")
	}
}

func TestMouseDragMovesWindow(t *testing.T) {
	m := newTestModel(t)
	m = openWindow(t, m, "Notes")
	s := m.scale()

	col, row := s.toCell(geom.Point{X: 200, Y: 75})
	start := s.toDesktop(col, row)
	m = send(t, m, tea.MouseMsg{X: col, Y: row + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !m.snap.preview.Active {
		t.Fatalf("press on title bar did not start a drag: %s", m.message)
	}

	m = send(t, m, tea.MouseMsg{X: 60, Y: 14, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = send(t, m, tea.MouseMsg{X: 60, Y: 14, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.snap.preview.Active {
		t.Fatal("drag still active after release")
	}

	end := s.toDesktop(60, 13)
	want := geom.Point{X: 80 + end.X - start.X, Y: 60 + end.Y - start.Y}
	if got := m.snap.stacking[0].Geometry.Origin(); got != want {
		t.Fatalf("origin = %v, want %v", got, want)
	}
}

func TestKeysActOnFocusedWindow(t *testing.T) {
	m := newTestModel(t)
	m = openWindow(t, m, "Notes")

	m = send(t, m, key("left"))
	if got := m.snap.stacking[0].Geometry; got != (geom.Rect{X: 0, Y: 0, Width: 640, Height: 755}) {
		t.Fatalf("snap left = %v", got)
	}

	m = send(t, m, key("z"))
	if m.snap.status.Minimized != 1 {
		t.Fatalf("minimize: %+v", m.snap.status)
	}
	m = send(t, m, key("r"))
	if m.snap.status.Minimized != 0 {
		t.Fatalf("restore: %+v", m.snap.status)
	}

	m = send(t, m, key("x"))
	if m.snap.status.Closing != 1 {
		t.Fatalf("close: %+v", m.snap.status)
	}
	m = send(t, m, key("x"))
	if m.message == "" {
		t.Fatal("closing with nothing focused should report an error")
	}
}

func TestTaskbarClickFocusesThenMinimizes(t *testing.T) {
	m := newTestModel(t)
	m = openWindow(t, m, "A")
	m = openWindow(t, m, "B")
	if m.snap.status.FocusedTitle != "B" {
		t.Fatalf("focused = %q", m.snap.status.FocusedTitle)
	}

	taskbarY := 1 + m.scale().rows
	click := tea.MouseMsg{X: 2, Y: taskbarY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m = send(t, m, click)
	if m.snap.status.FocusedTitle != "A" {
		t.Fatalf("after first click focused = %q", m.snap.status.FocusedTitle)
	}
	m = send(t, m, click)
	if m.snap.taskbar[0].State != taskbar.Minimized {
		t.Fatalf("after second click entry = %+v", m.snap.taskbar[0])
	}
}

func TestTabCyclesFocus(t *testing.T) {
	m := newTestModel(t)
	m = openWindow(t, m, "A")
	m = openWindow(t, m, "B")
	m = send(t, m, key("tab"))
	if m.snap.status.FocusedTitle != "A" {
		t.Fatalf("focused = %q, want wrap to A", m.snap.status.FocusedTitle)
	}
}
