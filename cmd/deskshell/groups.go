package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskshell/internal/drag"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/ipc"
)

func (c *cli) groupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "group <initiator> <target>...",
		Short: "Combine windows into a tab group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := c.client().Group(args[0], args[1:])
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), *in)
			return nil
		},
	}
}

func (c *cli) addTabCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-tab <group> <window>",
		Short: "Add a window to a group as its active tab",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := c.client().AddTab(args[0], args[1])
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), *in)
			return nil
		},
	}
}

func (c *cli) tabCmd() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "tab <window>",
		Short: "Show a tab of its group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := c.client().ActivateTab(group, args[0])
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), *in)
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "Group reference (default: the window's group)")
	return cmd
}

func (c *cli) detachCmd() *cobra.Command {
	var group, at string
	cmd := &cobra.Command{
		Use:   "detach <window>",
		Short: "Take a tab out of its group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var drop *geom.Point
			if at != "" {
				pt, err := parsePoint(at)
				if err != nil {
					return err
				}
				drop = &pt
			}
			in, err := c.client().Detach(group, args[0], drop)
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), *in)
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "Group reference (default: the window's group)")
	cmd.Flags().StringVar(&at, "at", "", "Drop point as X,Y (default: offset from the group)")
	return cmd
}

func (c *cli) dragCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drag <event>...",
		Short: "Replay pointer events through the drag controller",
		Long: `Each event is TYPE[:X,Y][+mod], where TYPE is down, move, up or cancel.
"+mod" holds the grouping modifier. A down event may name a button with
"@middle" or "@secondary".

  deskshell drag down:200,95 move:175,70+mod up:175,70+mod`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events := make([]ipc.PointerEvent, 0, len(args))
			for _, arg := range args {
				ev, err := parsePointerEvent(arg)
				if err != nil {
					return err
				}
				events = append(events, ev)
			}
			data, err := c.client().Pointer(events)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, step := range data.Steps {
				fmt.Fprintf(out, "%s: %s", args[i], step.Type)
				if step.Hit != "" {
					fmt.Fprintf(out, " hit=%s", step.Hit)
				}
				if step.Target != "" {
					fmt.Fprintf(out, " target=%s", step.Target)
				}
				fmt.Fprintf(out, " intent=%s", step.Intent)
				if step.Error != "" {
					fmt.Fprintf(out, " error=%q", step.Error)
				}
				fmt.Fprintln(out)
			}
			if data.Preview.Active {
				fmt.Fprintf(out, "dragging: %s %s frame=%s\n", data.Preview.Kind, data.Preview.Subject, data.Preview.Frame)
			}
			return nil
		},
	}
}

var pointerButtons = map[string]drag.Button{
	"primary":   drag.ButtonPrimary,
	"middle":    drag.ButtonMiddle,
	"secondary": drag.ButtonSecondary,
}

// parsePointerEvent parses TYPE[@button][:X,Y][+mod].
func parsePointerEvent(s string) (ipc.PointerEvent, error) {
	var ev ipc.PointerEvent
	rest := s
	if r, ok := strings.CutSuffix(rest, "+mod"); ok {
		ev.Modifier = true
		rest = r
	}
	typ, coords, hasCoords := strings.Cut(rest, ":")
	if name, button, ok := strings.Cut(typ, "@"); ok {
		b, known := pointerButtons[button]
		if !known {
			return ev, fmt.Errorf("invalid pointer event %q: unknown button %q", s, button)
		}
		ev.Button = int(b)
		typ = name
	}
	ev.Type = typ

	switch ev.Type {
	case "down", "move", "up":
		if !hasCoords {
			return ev, fmt.Errorf("invalid pointer event %q: %s needs X,Y", s, ev.Type)
		}
		pt, err := parsePoint(coords)
		if err != nil {
			return ev, fmt.Errorf("invalid pointer event %q: %w", s, err)
		}
		ev.X, ev.Y = pt.X, pt.Y
	case "cancel":
		if hasCoords {
			return ev, fmt.Errorf("invalid pointer event %q: cancel takes no position", s)
		}
	default:
		return ev, fmt.Errorf("invalid pointer event %q: unknown type %q", s, ev.Type)
	}
	return ev, nil
}
