// Package mcp exposes the running deskshell daemon as Model Context
// Protocol tools so assistants can inspect and arrange windows.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/ipc"
	"github.com/1broseidon/deskshell/internal/wm"
)

const (
	ServerName    = "deskshell"
	ServerVersion = "0.1.0"
)

// Daemon is the slice of the IPC client the tools use.
type Daemon interface {
	ListWindows() ([]wm.Info, error)
	GetTaskbar() (*ipc.TaskbarData, error)
	Open(p ipc.OpenPayload) (*ipc.HandleData, error)
	Launch(title, content string) (*ipc.HandleData, error)
	Window(command ipc.CommandType, ref string) (*ipc.HandleData, error)
	Snap(ref, zone string) (*ipc.HandleData, error)
	Move(ref string, x, y int) (*wm.Info, error)
	Resize(ref, edge string, dx, dy int) (*wm.Info, error)
	Tile() (int, error)
	Group(initiator string, targets []string) (*wm.Info, error)
	ActivateTab(group, window string) (*wm.Info, error)
	Detach(group, window string, drop *geom.Point) (*wm.Info, error)
	Check() (*wm.ConsistencyReport, error)
	ListItems(parent string) ([]desktop.Item, error)
	OpenItem(id string) (*ipc.HandleData, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for deskshell window control.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a new MCP server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every window and tab group in creation order with geometry and state, plus the taskbar entries.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a new window. New windows cascade from the top-left and take focus. With launch set, an existing window with the same title is focused instead.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_action",
		Description: "Close, focus, minimize, restore, maximize or unmaximize a window or group. Closing animates; the window disappears shortly after.",
	}, s.handleWindowAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Snap a window to the left or right half of the desktop, maximize it with top, or restore it with none.",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window. The position is clamped so the title bar stays reachable. Maximized windows cannot be moved.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a window by dragging one edge or corner. Sizes never go below the configured minimum.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tile_windows",
		Description: "Arrange every visible window and group in a grid over the desktop.",
	}, s.handleTileWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "group_windows",
		Description: "Combine windows into a tab group. The initiator becomes the active tab; ineligible targets are skipped.",
	}, s.handleGroupWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "activate_tab",
		Description: "Show one tab of a group.",
	}, s.handleActivateTab)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "detach_tab",
		Description: "Take a tab out of its group. Without a drop point the window returns to where it was before grouping. A group left with no tabs closes.",
	}, s.handleDetachTab)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "check_consistency",
		Description: "Re-derive taskbar entries, group membership and focus from the window registry and repair any drift.",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_items",
		Description: "List desktop files and folders, or the contents of one folder.",
	}, s.handleListItems)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_item",
		Description: "Open a desktop file or folder in a window. An open folder is focused instead of opened twice.",
	}, s.handleOpenItem)
}
