package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/runtimepath"
	"github.com/1broseidon/deskshell/internal/wm"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the daemon listening on socketPath
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out,
// which may be nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Raw sends an arbitrary command and returns the raw response data.
func (c *Client) Raw(command CommandType, payload any) (json.RawMessage, error) {
	var data json.RawMessage
	err := c.call(command, payload, &data)
	return data, err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListWindows retrieves every window and group in creation order
func (c *Client) ListWindows() ([]wm.Info, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// GetTaskbar retrieves the taskbar entries
func (c *Client) GetTaskbar() (*TaskbarData, error) {
	var data TaskbarData
	if err := c.call(CommandGetTaskbar, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Open opens a new window
func (c *Client) Open(p OpenPayload) (*HandleData, error) {
	var data HandleData
	if err := c.call(CommandOpen, p, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Launch focuses the window with the given title or opens it
func (c *Client) Launch(title, content string) (*HandleData, error) {
	var data HandleData
	if err := c.call(CommandLaunch, OpenPayload{Title: title, Content: content}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Window runs a single-window command (CLOSE, FOCUS, MINIMIZE, RESTORE,
// MAXIMIZE, UNMAXIMIZE) against the window named by ref
func (c *Client) Window(command CommandType, ref string) (*HandleData, error) {
	var data HandleData
	if err := c.call(command, WindowPayload{Window: ref}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Snap snaps a window to left, right or top, or releases it with "none"
func (c *Client) Snap(ref, zone string) (*HandleData, error) {
	var data HandleData
	if err := c.call(CommandSnap, SnapPayload{Window: ref, Zone: zone}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Move places a window at x,y
func (c *Client) Move(ref string, x, y int) (*wm.Info, error) {
	var info wm.Info
	if err := c.call(CommandMove, MovePayload{Window: ref, X: x, Y: y}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Resize drags an edge of a window
func (c *Client) Resize(ref, edge string, dx, dy int) (*wm.Info, error) {
	var info wm.Info
	if err := c.call(CommandResize, ResizePayload{Window: ref, Edge: edge, DX: dx, DY: dy}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Tile arranges the visible windows in a grid
func (c *Client) Tile() (int, error) {
	var data TileData
	if err := c.call(CommandTile, nil, &data); err != nil {
		return 0, err
	}
	return data.Arranged, nil
}

// Group creates a tab group
func (c *Client) Group(initiator string, targets []string) (*wm.Info, error) {
	var info wm.Info
	if err := c.call(CommandGroup, GroupPayload{Initiator: initiator, Targets: targets}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// AddTab adds a window to a group
func (c *Client) AddTab(group, window string) (*wm.Info, error) {
	var info wm.Info
	if err := c.call(CommandAddTab, TabPayload{Group: group, Window: window}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ActivateTab shows a tab of a group
func (c *Client) ActivateTab(group, window string) (*wm.Info, error) {
	var info wm.Info
	if err := c.call(CommandActivateTab, TabPayload{Group: group, Window: window}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Detach takes a tab out of its group, optionally dropping it at a point
func (c *Client) Detach(group, window string, drop *geom.Point) (*wm.Info, error) {
	var info wm.Info
	if err := c.call(CommandDetach, TabPayload{Group: group, Window: window, Drop: drop}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Pointer replays a sequence of pointer events through the drag controller
func (c *Client) Pointer(events []PointerEvent) (*PointerData, error) {
	var data PointerData
	if err := c.call(CommandPointer, PointerPayload{Events: events}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Check runs a consistency sweep and returns what it repaired
func (c *Client) Check() (*wm.ConsistencyReport, error) {
	var report wm.ConsistencyReport
	if err := c.call(CommandCheck, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListItems lists the desktop items under parent ("" for the desktop)
func (c *Client) ListItems(parent string) ([]desktop.Item, error) {
	var data ItemsData
	if err := c.call(CommandListItems, ItemPayload{Parent: parent}, &data); err != nil {
		return nil, err
	}
	return data.Items, nil
}

// CreateItem creates a text file or folder
func (c *Client) CreateItem(p ItemPayload) (*desktop.Item, error) {
	var item desktop.Item
	if err := c.call(CommandCreateItem, p, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// RenameItem renames a desktop item
func (c *Client) RenameItem(id, name string) (*desktop.Item, error) {
	var item desktop.Item
	if err := c.call(CommandRenameItem, ItemPayload{ID: id, Name: name}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// MoveItem moves a desktop item into a folder or onto the desktop
func (c *Client) MoveItem(id, parent string, drop *geom.Point) (*desktop.Item, error) {
	var item desktop.Item
	if err := c.call(CommandMoveItem, ItemPayload{ID: id, Parent: parent, Drop: drop}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem deletes a desktop item and its contents
func (c *Client) DeleteItem(id string) error {
	return c.call(CommandDeleteItem, ItemPayload{ID: id}, nil)
}

// OpenItem opens a desktop item in a window
func (c *Client) OpenItem(id string) (*HandleData, error) {
	var data HandleData
	if err := c.call(CommandOpenItem, ItemPayload{ID: id}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
