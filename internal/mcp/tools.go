package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/ipc"
	"github.com/1broseidon/deskshell/internal/wm"
)

var windowActions = map[string]ipc.CommandType{
	"close":      ipc.CommandClose,
	"focus":      ipc.CommandFocus,
	"minimize":   ipc.CommandMinimize,
	"restore":    ipc.CommandRestore,
	"maximize":   ipc.CommandMaximize,
	"unmaximize": ipc.CommandUnmaximize,
}

func summarize(in wm.Info) WindowSummary {
	out := WindowSummary{
		Handle:    in.Handle.String(),
		Kind:      in.Kind.String(),
		Title:     in.Title,
		X:         in.Geometry.X,
		Y:         in.Geometry.Y,
		Width:     in.Geometry.Width,
		Height:    in.Geometry.Height,
		Focused:   in.Focused,
		Minimized: in.Minimized,
		Maximized: in.Maximized,
		Closing:   in.Closing,
	}
	if z := in.Snapped.String(); z != "none" {
		out.Snapped = z
	}
	if in.Grouped {
		out.Group = in.Parent.String()
	}
	for _, m := range in.Members {
		out.Tabs = append(out.Tabs, m.String())
	}
	if !in.Active.IsZero() {
		out.ActiveTab = in.Active.String()
	}
	return out
}

func summarizeItem(it desktop.Item) ItemSummary {
	out := ItemSummary{ID: it.ID, Name: it.Name, Kind: string(it.Kind), Parent: it.Parent}
	if it.Position != nil {
		x, y := it.Position.X, it.Position.Y
		out.X, out.Y = &x, &y
	}
	return out
}

func refOutput(d *ipc.HandleData) WindowRefOutput {
	return WindowRefOutput{Handle: d.Handle.String(), Title: d.Title, Opened: d.Opened}
}

func (s *Server) fail(tool string, err error) error {
	s.logger.Warn("mcp tool failed", "tool", tool, "error", err)
	return err
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.daemon.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, s.fail("list_windows", err)
	}
	bar, err := s.daemon.GetTaskbar()
	if err != nil {
		return nil, ListWindowsOutput{}, s.fail("list_windows", err)
	}

	out := ListWindowsOutput{
		Windows: make([]WindowSummary, 0, len(windows)),
		Taskbar: make([]TaskbarButton, 0, len(bar.Entries)),
	}
	for _, w := range windows {
		out.Windows = append(out.Windows, summarize(w))
	}
	for _, e := range bar.Entries {
		out.Taskbar = append(out.Taskbar, TaskbarButton{
			ID:     e.ID,
			Window: e.Bound.String(),
			Title:  e.Title,
			State:  e.State.String(),
		})
	}
	return nil, out, nil
}

func (s *Server) handleOpenWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, WindowRefOutput, error) {
	var (
		data *ipc.HandleData
		err  error
	)
	if args.Launch {
		if args.Title == "" {
			return nil, WindowRefOutput{}, fmt.Errorf("launch requires a title")
		}
		data, err = s.daemon.Launch(args.Title, args.Content)
	} else {
		data, err = s.daemon.Open(ipc.OpenPayload{
			Title:   args.Title,
			Content: args.Content,
			Width:   args.Width,
			Height:  args.Height,
		})
	}
	if err != nil {
		return nil, WindowRefOutput{}, s.fail("open_window", err)
	}
	s.logger.Info("mcp opened window", "handle", data.Handle.String(), "opened", data.Opened)
	return nil, refOutput(data), nil
}

func (s *Server) handleWindowAction(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowActionInput) (*mcpsdk.CallToolResult, WindowRefOutput, error) {
	cmd, ok := windowActions[strings.ToLower(strings.TrimSpace(args.Action))]
	if !ok {
		return nil, WindowRefOutput{}, fmt.Errorf("unknown action %q (want close, focus, minimize, restore, maximize or unmaximize)", args.Action)
	}
	data, err := s.daemon.Window(cmd, args.Window)
	if err != nil {
		return nil, WindowRefOutput{}, s.fail("window_action", err)
	}
	return nil, refOutput(data), nil
}

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, WindowRefOutput, error) {
	data, err := s.daemon.Snap(args.Window, args.Zone)
	if err != nil {
		return nil, WindowRefOutput{}, s.fail("snap_window", err)
	}
	return nil, refOutput(data), nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	info, err := s.daemon.Move(args.Window, args.X, args.Y)
	if err != nil {
		return nil, WindowOutput{}, s.fail("move_window", err)
	}
	return nil, WindowOutput{Window: summarize(*info)}, nil
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	info, err := s.daemon.Resize(args.Window, args.Edge, args.DX, args.DY)
	if err != nil {
		return nil, WindowOutput{}, s.fail("resize_window", err)
	}
	return nil, WindowOutput{Window: summarize(*info)}, nil
}

func (s *Server) handleTileWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ TileWindowsInput) (*mcpsdk.CallToolResult, TileWindowsOutput, error) {
	n, err := s.daemon.Tile()
	if err != nil {
		return nil, TileWindowsOutput{}, s.fail("tile_windows", err)
	}
	return nil, TileWindowsOutput{Arranged: n}, nil
}

func (s *Server) handleGroupWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args GroupWindowsInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if len(args.Targets) == 0 {
		return nil, WindowOutput{}, fmt.Errorf("group_windows needs at least one target")
	}
	info, err := s.daemon.Group(args.Initiator, args.Targets)
	if err != nil {
		return nil, WindowOutput{}, s.fail("group_windows", err)
	}
	return nil, WindowOutput{Window: summarize(*info)}, nil
}

func (s *Server) handleActivateTab(_ context.Context, _ *mcpsdk.CallToolRequest, args TabInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	info, err := s.daemon.ActivateTab(args.Group, args.Window)
	if err != nil {
		return nil, WindowOutput{}, s.fail("activate_tab", err)
	}
	return nil, WindowOutput{Window: summarize(*info)}, nil
}

func (s *Server) handleDetachTab(_ context.Context, _ *mcpsdk.CallToolRequest, args DetachTabInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	var drop *geom.Point
	switch {
	case args.X != nil && args.Y != nil:
		drop = &geom.Point{X: *args.X, Y: *args.Y}
	case args.X != nil || args.Y != nil:
		return nil, WindowOutput{}, fmt.Errorf("detach_tab needs both x and y, or neither")
	}
	info, err := s.daemon.Detach(args.Group, args.Window, drop)
	if err != nil {
		return nil, WindowOutput{}, s.fail("detach_tab", err)
	}
	return nil, WindowOutput{Window: summarize(*info)}, nil
}

func (s *Server) handleCheck(_ context.Context, _ *mcpsdk.CallToolRequest, _ CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	report, err := s.daemon.Check()
	if err != nil {
		return nil, CheckOutput{}, s.fail("check_consistency", err)
	}
	if report.Repaired() {
		s.logger.Info("mcp consistency check repaired drift")
	}
	return nil, CheckOutput{
		Repaired:       report.Repaired(),
		TaskbarCreated: report.Taskbar.Created,
		TaskbarRemoved: report.Taskbar.Removed,
		DroppedMembers: report.DroppedMembers,
		Orphans:        report.Orphans,
		ActiveFixed:    report.ActiveFixed,
		ClosedGroups:   report.ClosedGroups,
		FocusFixed:     report.FocusFixed,
	}, nil
}

func (s *Server) handleListItems(_ context.Context, _ *mcpsdk.CallToolRequest, args ListItemsInput) (*mcpsdk.CallToolResult, ListItemsOutput, error) {
	items, err := s.daemon.ListItems(args.Parent)
	if err != nil {
		return nil, ListItemsOutput{}, s.fail("list_items", err)
	}
	out := ListItemsOutput{Items: make([]ItemSummary, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, summarizeItem(it))
	}
	return nil, out, nil
}

func (s *Server) handleOpenItem(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenItemInput) (*mcpsdk.CallToolResult, WindowRefOutput, error) {
	data, err := s.daemon.OpenItem(args.ID)
	if err != nil {
		return nil, WindowRefOutput{}, s.fail("open_item", err)
	}
	return nil, refOutput(data), nil
}
