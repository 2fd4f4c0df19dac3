package mcp

// WindowSummary is the flattened view of one window or group handed to
// MCP clients.
type WindowSummary struct {
	Handle    string   `json:"handle"`
	Kind      string   `json:"kind"`
	Title     string   `json:"title"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Focused   bool     `json:"focused"`
	Minimized bool     `json:"minimized"`
	Maximized bool     `json:"maximized"`
	Snapped   string   `json:"snapped,omitempty"`
	Closing   bool     `json:"closing"`
	Group     string   `json:"group,omitempty"`
	Tabs      []string `json:"tabs,omitempty"`
	ActiveTab string   `json:"active_tab,omitempty"`
}

// TaskbarButton is one taskbar entry.
type TaskbarButton struct {
	ID     string `json:"id"`
	Window string `json:"window"`
	Title  string `json:"title"`
	State  string `json:"state"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowSummary `json:"windows"`
	Taskbar []TaskbarButton `json:"taskbar"`
}

// OpenWindowInput is the input for the open_window tool.
type OpenWindowInput struct {
	Title   string `json:"title,omitempty" jsonschema:"Window title (default: New Window)"`
	Content string `json:"content,omitempty" jsonschema:"Opaque content tag stored with the window"`
	Width   int    `json:"width,omitempty" jsonschema:"Width in pixels (default from config)"`
	Height  int    `json:"height,omitempty" jsonschema:"Height in pixels (default from config)"`
	Launch  bool   `json:"launch,omitempty" jsonschema:"When true, focus an existing window with the same title instead of opening another"`
}

// WindowRefOutput names the window a tool acted on.
type WindowRefOutput struct {
	Handle string `json:"handle"`
	Title  string `json:"title,omitempty"`
	Opened bool   `json:"opened"`
}

// WindowActionInput is the input for the window_action tool.
type WindowActionInput struct {
	Window string `json:"window" jsonschema:"Window handle (slot.gen) or exact title"`
	Action string `json:"action" jsonschema:"One of close, focus, minimize, restore, maximize, unmaximize"`
}

// SnapWindowInput is the input for the snap_window tool.
type SnapWindowInput struct {
	Window string `json:"window" jsonschema:"Window handle (slot.gen) or exact title"`
	Zone   string `json:"zone" jsonschema:"left, right, top (maximize) or none (restore)"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	Window string `json:"window" jsonschema:"Window handle (slot.gen) or exact title"`
	X      int    `json:"x" jsonschema:"New left edge"`
	Y      int    `json:"y" jsonschema:"New top edge"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	Window string `json:"window" jsonschema:"Window handle (slot.gen) or exact title"`
	Edge   string `json:"edge" jsonschema:"Edge or corner to drag: n, s, e, w, ne, nw, se, sw"`
	DX     int    `json:"dx" jsonschema:"Horizontal drag distance"`
	DY     int    `json:"dy" jsonschema:"Vertical drag distance"`
}

// WindowOutput is the state of a window after a tool changed it.
type WindowOutput struct {
	Window WindowSummary `json:"window"`
}

// TileWindowsInput is the input for the tile_windows tool.
type TileWindowsInput struct{}

// TileWindowsOutput is the output for the tile_windows tool.
type TileWindowsOutput struct {
	Arranged int `json:"arranged"`
}

// GroupWindowsInput is the input for the group_windows tool.
type GroupWindowsInput struct {
	Initiator string   `json:"initiator" jsonschema:"Window that becomes the active tab"`
	Targets   []string `json:"targets" jsonschema:"Windows to pull into the group"`
}

// TabInput addresses one tab of a group.
type TabInput struct {
	Group  string `json:"group,omitempty" jsonschema:"Group handle; defaults to the window's group"`
	Window string `json:"window" jsonschema:"Tab window handle (slot.gen) or title"`
}

// DetachTabInput is the input for the detach_tab tool.
type DetachTabInput struct {
	Group  string `json:"group,omitempty" jsonschema:"Group handle; defaults to the window's group"`
	Window string `json:"window" jsonschema:"Tab window handle (slot.gen) or title"`
	X      *int   `json:"x,omitempty" jsonschema:"Drop point x; omit to restore the pre-group position"`
	Y      *int   `json:"y,omitempty" jsonschema:"Drop point y; omit to restore the pre-group position"`
}

// CheckInput is the input for the check_consistency tool.
type CheckInput struct{}

// CheckOutput is the output for the check_consistency tool.
type CheckOutput struct {
	Repaired       bool     `json:"repaired"`
	TaskbarCreated []string `json:"taskbar_created,omitempty"`
	TaskbarRemoved []string `json:"taskbar_removed,omitempty"`
	DroppedMembers []string `json:"dropped_members,omitempty"`
	Orphans        []string `json:"orphans,omitempty"`
	ActiveFixed    []string `json:"active_fixed,omitempty"`
	ClosedGroups   []string `json:"closed_groups,omitempty"`
	FocusFixed     bool     `json:"focus_fixed"`
}

// ListItemsInput is the input for the list_items tool.
type ListItemsInput struct {
	Parent string `json:"parent,omitempty" jsonschema:"Folder id; empty lists the desktop"`
}

// ItemSummary is one desktop file or folder.
type ItemSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Parent string `json:"parent,omitempty"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
}

// ListItemsOutput is the output for the list_items tool.
type ListItemsOutput struct {
	Items []ItemSummary `json:"items"`
}

// OpenItemInput is the input for the open_item tool.
type OpenItemInput struct {
	ID string `json:"id" jsonschema:"Desktop item id"`
}
