package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskshell/internal/shell"
	"github.com/1broseidon/deskshell/internal/taskbar"
)

// taskbarButtonWidth is the rendered width of one taskbar button, padding
// included.
const taskbarButtonWidth = 20

var (
	activeButtonStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1).
				Width(taskbarButtonWidth)

	inactiveButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 1).
				Width(taskbarButtonWidth)

	minimizedButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Background(lipgloss.Color("235")).
				Italic(true).
				Padding(0, 1).
				Width(taskbarButtonWidth)

	desktopStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("24"))
)

// taskbarAt returns the index of the taskbar button under column x.
func taskbarAt(entries []taskbar.Entry, x int) (int, bool) {
	if x < 0 {
		return 0, false
	}
	i := x / taskbarButtonWidth
	if i >= len(entries) {
		return 0, false
	}
	return i, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// renderTaskbar renders one fixed-width button per entry.
func renderTaskbar(entries []taskbar.Entry, width int) string {
	var buttons []string
	for _, e := range entries {
		label := truncate(e.Title, taskbarButtonWidth-2)
		switch e.State {
		case taskbar.Active:
			buttons = append(buttons, activeButtonStyle.Render(label))
		case taskbar.Minimized:
			buttons = append(buttons, minimizedButtonStyle.Render(label))
		default:
			buttons = append(buttons, inactiveButtonStyle.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
	return lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Background(lipgloss.Color("235")).
		Render(row)
}

// renderStatusBar renders the desktop summary line.
func renderStatusBar(st shell.Status, message string, width int) string {
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	parts := []string{
		dot + " deskshell",
		fmt.Sprintf("windows:%d", st.Windows),
		fmt.Sprintf("groups:%d", st.Groups),
	}
	if st.Minimized > 0 {
		parts = append(parts, fmt.Sprintf("minimized:%d", st.Minimized))
	}
	if st.FocusedTitle != "" {
		parts = append(parts, "focus:"+st.FocusedTitle)
	}
	if st.Dragging {
		parts = append(parts, "dragging")
	}
	if message != "" {
		parts = append(parts, message)
	}

	style := lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(strings.Join(parts, "  "))
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(width int) string {
	help := "n: new  x: close  m: maximize  z: minimize  r: restore  ←/→/↑/↓: snap  t: tile  tab: cycle  c: check  ctrl-drag: group  q: quit"
	style := lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
