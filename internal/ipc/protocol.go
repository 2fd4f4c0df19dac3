package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/drag"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/shell"
	"github.com/1broseidon/deskshell/internal/taskbar"
	"github.com/1broseidon/deskshell/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandGetTaskbar  CommandType = "GET_TASKBAR"
	CommandOpen        CommandType = "OPEN"
	CommandLaunch      CommandType = "LAUNCH"
	CommandClose       CommandType = "CLOSE"
	CommandFocus       CommandType = "FOCUS"
	CommandMinimize    CommandType = "MINIMIZE"
	CommandRestore     CommandType = "RESTORE"
	CommandMaximize    CommandType = "MAXIMIZE"
	CommandUnmaximize  CommandType = "UNMAXIMIZE"
	CommandSnap        CommandType = "SNAP"
	CommandMove        CommandType = "MOVE"
	CommandResize      CommandType = "RESIZE"
	CommandTile        CommandType = "TILE"
	CommandGroup       CommandType = "GROUP"
	CommandAddTab      CommandType = "ADD_TAB"
	CommandActivateTab CommandType = "ACTIVATE_TAB"
	CommandDetach      CommandType = "DETACH"
	CommandPointer     CommandType = "POINTER"
	CommandCheck       CommandType = "CHECK"
	CommandListItems   CommandType = "LIST_ITEMS"
	CommandCreateItem  CommandType = "CREATE_ITEM"
	CommandRenameItem  CommandType = "RENAME_ITEM"
	CommandMoveItem    CommandType = "MOVE_ITEM"
	CommandDeleteItem  CommandType = "DELETE_ITEM"
	CommandOpenItem    CommandType = "OPEN_ITEM"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	shell.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
}

type WindowsData struct {
	Windows []wm.Info `json:"windows"`
}

type TaskbarData struct {
	Entries []taskbar.Entry `json:"entries"`
}

// HandleData is returned by commands that create or pick a window.
type HandleData struct {
	Handle arena.Handle `json:"handle"`
	Title  string       `json:"title,omitempty"`
	Opened bool         `json:"opened,omitempty"`
}

type TileData struct {
	Arranged int `json:"arranged"`
}

// WindowPayload names one window by handle or title.
type WindowPayload struct {
	Window string `json:"window"`
}

type OpenPayload struct {
	Title   string      `json:"title,omitempty"`
	Content string      `json:"content,omitempty"`
	Width   int         `json:"width,omitempty"`
	Height  int         `json:"height,omitempty"`
	At      *geom.Point `json:"at,omitempty"`
}

type SnapPayload struct {
	Window string `json:"window"`
	Zone   string `json:"zone"`
}

type MovePayload struct {
	Window string `json:"window"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type ResizePayload struct {
	Window string `json:"window"`
	Edge   string `json:"edge"`
	DX     int    `json:"dx"`
	DY     int    `json:"dy"`
}

type GroupPayload struct {
	Initiator string   `json:"initiator"`
	Targets   []string `json:"targets"`
}

// TabPayload addresses one tab of a group.
type TabPayload struct {
	Group  string      `json:"group"`
	Window string      `json:"window"`
	Drop   *geom.Point `json:"drop,omitempty"`
}

// PointerEvent is one step of a scripted drag.
type PointerEvent struct {
	Type     string `json:"type"` // down, move, up, cancel
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Modifier bool   `json:"modifier,omitempty"`
	Button   int    `json:"button,omitempty"`
}

type PointerPayload struct {
	Events []PointerEvent `json:"events"`
}

// PointerStep reports what one pointer event did.
type PointerStep struct {
	Type   string      `json:"type"`
	Hit    string      `json:"hit,omitempty"`
	Target string      `json:"target,omitempty"`
	Intent drag.Intent `json:"intent"`
	Error  string      `json:"error,omitempty"`
}

type PointerData struct {
	Steps   []PointerStep `json:"steps"`
	Preview drag.Preview  `json:"preview"`
}

type ItemPayload struct {
	ID      string      `json:"id,omitempty"`
	Parent  string      `json:"parent,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Name    string      `json:"name,omitempty"`
	Content string      `json:"content,omitempty"`
	Drop    *geom.Point `json:"drop,omitempty"`
}

type ItemsData struct {
	Items []desktop.Item `json:"items"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
