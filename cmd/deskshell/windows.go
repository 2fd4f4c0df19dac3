package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/ipc"
	"github.com/1broseidon/deskshell/internal/snap"
	"github.com/1broseidon/deskshell/internal/wm"
)

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List windows and groups in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wins, err := c.client().ListWindows()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(wins) == 0 {
				fmt.Fprintln(out, "no windows")
				return nil
			}
			for _, in := range wins {
				printInfo(out, in)
			}
			return nil
		},
	}
}

func (c *cli) taskbarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "taskbar",
		Short: "Show the taskbar entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := c.client().GetTaskbar()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range tb.Entries {
				fmt.Fprintf(out, "%-8s %-10s %s\n", e.Bound, e.State, e.Title)
			}
			return nil
		},
	}
}

func (c *cli) openCmd() *cobra.Command {
	var (
		content       string
		width, height int
		at            string
	)
	cmd := &cobra.Command{
		Use:   "open [title]",
		Short: "Open a new window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ipc.OpenPayload{Content: content, Width: width, Height: height}
			if len(args) == 1 {
				p.Title = args[0]
			} else if term.IsTerminal(int(os.Stdin.Fd())) {
				title, err := promptTitle()
				if err != nil {
					return err
				}
				p.Title = title
			}
			if at != "" {
				pt, err := parsePoint(at)
				if err != nil {
					return err
				}
				p.At = &pt
			}
			data, err := c.client().Open(p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "opened: %s (%s)\n", data.Title, data.Handle)
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "Window body text")
	cmd.Flags().IntVar(&width, "width", 0, "Width (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "Height (default from config)")
	cmd.Flags().StringVar(&at, "at", "", "Origin as X,Y (default cascades)")
	return cmd
}

// promptTitle asks for a window title on the terminal. Blank keeps the
// configured default.
func promptTitle() (string, error) {
	var title string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Window title").
				Placeholder("New Window").
				Value(&title),
		),
	).Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}

func (c *cli) launchCmd() *cobra.Command {
	var content string
	cmd := &cobra.Command{
		Use:   "launch <title>",
		Short: "Focus the window with this title, or open it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.client().Launch(args[0], content)
			if err != nil {
				return err
			}
			verb := "focused"
			if data.Opened {
				verb = "opened"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", verb, data.Title, data.Handle)
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "Window body text when opening")
	return cmd
}

// windowCmds builds the commands that take a single window reference.
func (c *cli) windowCmds() []*cobra.Command {
	ops := []struct {
		use, short, verb string
		command          ipc.CommandType
	}{
		{"close", "Close a window or group", "closed", ipc.CommandClose},
		{"focus", "Focus a window, restoring it if minimized", "focused", ipc.CommandFocus},
		{"minimize", "Minimize a window", "minimized", ipc.CommandMinimize},
		{"restore", "Restore a minimized window", "restored", ipc.CommandRestore},
		{"maximize", "Maximize a window", "maximized", ipc.CommandMaximize},
		{"unmaximize", "Restore a maximized or snapped window", "unmaximized", ipc.CommandUnmaximize},
	}
	cmds := make([]*cobra.Command, 0, len(ops))
	for _, op := range ops {
		cmds = append(cmds, &cobra.Command{
			Use:   op.use + " <window>",
			Short: op.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := c.client().Window(op.command, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", op.verb, data.Title, data.Handle)
				return nil
			},
		})
	}
	return cmds
}

func (c *cli) snapCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "snap <window> <left|right|top|none>",
		Short:     "Snap a window to a screen zone",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"left", "right", "top", "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.client().Snap(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapped: %s (%s) %s\n", data.Title, data.Handle, args[1])
			return nil
		},
	}
}

func (c *cli) moveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <window> <x> <y>",
		Short: "Move a window, keeping it reachable",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parseInts(args[1], args[2])
			if err != nil {
				return err
			}
			in, err := c.client().Move(args[0], x, y)
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), *in)
			return nil
		},
	}
	// Negative coordinates must not parse as flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (c *cli) resizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resize <window> <edge> <dx> <dy>",
		Short: "Drag a window edge or corner (n, s, e, w, ne, nw, se, sw)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			dx, dy, err := parseInts(args[2], args[3])
			if err != nil {
				return err
			}
			in, err := c.client().Resize(args[0], args[1], dx, dy)
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), *in)
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (c *cli) tileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tile",
		Short: "Arrange the visible windows in a grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.client().Tile()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tiled: %d\n", n)
			return nil
		},
	}
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a consistency sweep and report repairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.client().Check()
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), *rep)
			return nil
		},
	}
}

func printInfo(w io.Writer, in wm.Info) {
	fmt.Fprintf(w, "%-8s %-6s %-24q %s", in.Handle, in.Kind, in.Title, in.Geometry)
	if flags := infoFlags(in); flags != "" {
		fmt.Fprintf(w, " [%s]", flags)
	}
	fmt.Fprintln(w)
}

func infoFlags(in wm.Info) string {
	var flags []string
	if in.Focused {
		flags = append(flags, "focused")
	}
	if in.Minimized {
		flags = append(flags, "minimized")
	}
	if in.Maximized {
		flags = append(flags, "maximized")
	}
	if in.Snapped != snap.None {
		flags = append(flags, "snapped="+in.Snapped.String())
	}
	if in.Closing {
		flags = append(flags, "closing")
	}
	if in.Grouped {
		flags = append(flags, "tab-of="+in.Parent.String())
	}
	if in.Kind == wm.KindGroup {
		tabs := make([]string, len(in.Members))
		for i, m := range in.Members {
			tabs[i] = m.String()
			if m == in.Active {
				tabs[i] = "*" + tabs[i]
			}
		}
		flags = append(flags, "tabs="+strings.Join(tabs, ","))
	}
	return strings.Join(flags, " ")
}

func printReport(w io.Writer, rep wm.ConsistencyReport) {
	if !rep.Repaired() {
		fmt.Fprintln(w, "consistent")
		return
	}
	tb := rep.Taskbar
	fmt.Fprintf(w, "taskbar: created=%d removed=%d retitled=%d restated=%d\n",
		len(tb.Created), len(tb.Removed), len(tb.Retitled), len(tb.Restated))
	printList(w, "dropped_members", rep.DroppedMembers)
	printList(w, "orphans", rep.Orphans)
	printList(w, "active_fixed", rep.ActiveFixed)
	printList(w, "closed_groups", rep.ClosedGroups)
	if rep.FocusFixed {
		fmt.Fprintln(w, "focus: repaired")
	}
}

func printList(w io.Writer, label string, items []string) {
	if len(items) > 0 {
		fmt.Fprintf(w, "%s: %s\n", label, strings.Join(items, " "))
	}
}

// parsePoint parses "X,Y".
func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, fmt.Errorf("invalid point %q (want X,Y)", s)
	}
	x, y, err := parseInts(xs, ys)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return geom.Point{X: x, Y: y}, nil
}

func parseInts(a, b string) (int, int, error) {
	x, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", a)
	}
	y, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", b)
	}
	return x, y, nil
}
