package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/drag"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/shell"
	"github.com/1broseidon/deskshell/internal/snap"
	"github.com/1broseidon/deskshell/internal/wm"
)

// handlerFunc runs on the shell loop.
type handlerFunc func(sh *shell.Shell, payload json.RawMessage) (any, error)

var handlers = map[CommandType]handlerFunc{
	CommandGetStatus:   handleGetStatus,
	CommandListWindows: handleListWindows,
	CommandGetTaskbar:  handleGetTaskbar,
	CommandOpen:        handleOpen,
	CommandLaunch:      handleLaunch,
	CommandClose:       windowOp((*wm.Manager).Close),
	CommandFocus:       windowOp((*wm.Manager).Focus),
	CommandMinimize:    windowOp((*wm.Manager).Minimize),
	CommandRestore:     windowOp((*wm.Manager).Restore),
	CommandMaximize:    windowOp((*wm.Manager).Maximize),
	CommandUnmaximize:  windowOp((*wm.Manager).Unmaximize),
	CommandSnap:        handleSnap,
	CommandMove:        handleMove,
	CommandResize:      handleResize,
	CommandTile:        handleTile,
	CommandGroup:       handleGroup,
	CommandAddTab:      handleAddTab,
	CommandActivateTab: handleActivateTab,
	CommandDetach:      handleDetach,
	CommandPointer:     handlePointer,
	CommandCheck:       handleCheck,
	CommandListItems:   handleListItems,
	CommandCreateItem:  handleCreateItem,
	CommandRenameItem:  handleRenameItem,
	CommandMoveItem:    handleMoveItem,
	CommandDeleteItem:  handleDeleteItem,
	CommandOpenItem:    handleOpenItem,
}

func decode[T any](payload json.RawMessage) (T, error) {
	var v T
	if len(payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("invalid payload: %w", err)
	}
	return v, nil
}

func handleData(sh *shell.Shell, h arena.Handle, opened bool) HandleData {
	d := HandleData{Handle: h, Opened: opened}
	if in, err := sh.WM.Get(h); err == nil {
		d.Title = in.Title
	}
	return d
}

func handleGetStatus(sh *shell.Shell, _ json.RawMessage) (any, error) {
	return sh.Status(), nil
}

func handleListWindows(sh *shell.Shell, _ json.RawMessage) (any, error) {
	return WindowsData{Windows: sh.WM.All()}, nil
}

func handleGetTaskbar(sh *shell.Shell, _ json.RawMessage) (any, error) {
	return TaskbarData{Entries: sh.WM.Taskbar().Entries()}, nil
}

func handleOpen(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[OpenPayload](payload)
	if err != nil {
		return nil, err
	}
	h := sh.WM.Open(p.Title, p.Content, wm.OpenOptions{Width: p.Width, Height: p.Height, Position: p.At})
	return handleData(sh, h, true), nil
}

func handleLaunch(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[OpenPayload](payload)
	if err != nil {
		return nil, err
	}
	if p.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	h, opened := sh.WM.Launch(p.Title, p.Content)
	return handleData(sh, h, opened), nil
}

// windowOp adapts a single-window manager operation.
func windowOp(op func(*wm.Manager, arena.Handle) error) handlerFunc {
	return func(sh *shell.Shell, payload json.RawMessage) (any, error) {
		p, err := decode[WindowPayload](payload)
		if err != nil {
			return nil, err
		}
		h, err := sh.WM.Resolve(p.Window)
		if err != nil {
			return nil, err
		}
		if err := op(sh.WM, h); err != nil {
			return nil, err
		}
		return handleData(sh, h, false), nil
	}
}

func handleSnap(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[SnapPayload](payload)
	if err != nil {
		return nil, err
	}
	zone, err := snap.ParseZone(p.Zone)
	if err != nil {
		return nil, err
	}
	h, err := sh.WM.Resolve(p.Window)
	if err != nil {
		return nil, err
	}
	if zone == snap.None {
		err = sh.WM.Unmaximize(h)
	} else {
		err = sh.WM.Snap(h, zone)
	}
	if err != nil {
		return nil, err
	}
	return handleData(sh, h, false), nil
}

func handleMove(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[MovePayload](payload)
	if err != nil {
		return nil, err
	}
	h, err := sh.WM.Resolve(p.Window)
	if err != nil {
		return nil, err
	}
	if err := sh.WM.Move(h, geom.Point{X: p.X, Y: p.Y}); err != nil {
		return nil, err
	}
	return sh.WM.Get(h)
}

func handleResize(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[ResizePayload](payload)
	if err != nil {
		return nil, err
	}
	edge, err := wm.ParseEdge(p.Edge)
	if err != nil {
		return nil, err
	}
	h, err := sh.WM.Resolve(p.Window)
	if err != nil {
		return nil, err
	}
	if err := sh.WM.Resize(h, edge, p.DX, p.DY); err != nil {
		return nil, err
	}
	return sh.WM.Get(h)
}

func handleTile(sh *shell.Shell, _ json.RawMessage) (any, error) {
	return TileData{Arranged: sh.WM.Tile()}, nil
}

func handleGroup(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[GroupPayload](payload)
	if err != nil {
		return nil, err
	}
	initiator, err := sh.WM.Resolve(p.Initiator)
	if err != nil {
		return nil, err
	}
	var targets []arena.Handle
	for _, ref := range p.Targets {
		h, err := sh.WM.Resolve(ref)
		if err != nil {
			return nil, err
		}
		targets = append(targets, h)
	}
	g, err := sh.WM.CreateGroup(initiator, targets)
	if err != nil {
		return nil, err
	}
	return sh.WM.Get(g)
}

// resolveTab resolves the group and window of p. An empty group means the
// group the window is currently a tab of.
func resolveTab(sh *shell.Shell, p TabPayload) (arena.Handle, arena.Handle, error) {
	w, err := sh.WM.Resolve(p.Window)
	if err != nil {
		return arena.Handle{}, arena.Handle{}, err
	}
	if p.Group == "" {
		in, err := sh.WM.Get(w)
		if err != nil {
			return arena.Handle{}, arena.Handle{}, err
		}
		if !in.Grouped {
			return arena.Handle{}, arena.Handle{}, fmt.Errorf("%w: %s is not a tab", wm.ErrInvariantViolation, w)
		}
		return in.Parent, w, nil
	}
	g, err := sh.WM.Resolve(p.Group)
	if err != nil {
		return arena.Handle{}, arena.Handle{}, err
	}
	return g, w, nil
}

func handleAddTab(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[TabPayload](payload)
	if err != nil {
		return nil, err
	}
	g, w, err := resolveTab(sh, p)
	if err != nil {
		return nil, err
	}
	if err := sh.WM.AddMember(g, w); err != nil {
		return nil, err
	}
	return sh.WM.Get(g)
}

func handleActivateTab(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[TabPayload](payload)
	if err != nil {
		return nil, err
	}
	g, w, err := resolveTab(sh, p)
	if err != nil {
		return nil, err
	}
	if err := sh.WM.ActivateTab(g, w); err != nil {
		return nil, err
	}
	return sh.WM.Get(g)
}

func handleDetach(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[TabPayload](payload)
	if err != nil {
		return nil, err
	}
	g, w, err := resolveTab(sh, p)
	if err != nil {
		return nil, err
	}
	if err := sh.WM.DetachMember(g, w, p.Drop); err != nil {
		return nil, err
	}
	return sh.WM.Get(w)
}

func handlePointer(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[PointerPayload](payload)
	if err != nil {
		return nil, err
	}
	var data PointerData
	for _, ev := range p.Events {
		pe := drag.Pointer{
			Pos:      geom.Point{X: ev.X, Y: ev.Y},
			Button:   drag.Button(ev.Button),
			Modifier: ev.Modifier,
		}
		step := PointerStep{Type: ev.Type}
		var err error
		switch ev.Type {
		case "down":
			var hit drag.Hit
			hit, err = sh.Press(pe)
			step.Hit = hit.Part.String()
			if !hit.Handle.IsZero() {
				step.Target = hit.Handle.String()
			}
		case "move":
			step.Intent, err = sh.Drag.Move(pe)
		case "up":
			step.Intent, err = sh.Drag.Up(pe)
		case "cancel":
			sh.Drag.Cancel()
		default:
			err = fmt.Errorf("unknown pointer event %q", ev.Type)
		}
		if err != nil {
			step.Error = err.Error()
		}
		data.Steps = append(data.Steps, step)
		sh.Settle()
	}
	data.Preview = sh.Drag.Preview()
	return data, nil
}

func handleCheck(sh *shell.Shell, _ json.RawMessage) (any, error) {
	return sh.WM.CheckConsistency(), nil
}

func handleListItems(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[ItemPayload](payload)
	if err != nil {
		return nil, err
	}
	return ItemsData{Items: sh.Desktop.List(p.Parent)}, nil
}

func handleCreateItem(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[ItemPayload](payload)
	if err != nil {
		return nil, err
	}
	kind := desktop.KindText
	if p.Kind != "" {
		if kind, err = desktop.ParseKind(p.Kind); err != nil {
			return nil, err
		}
	}
	return sh.Desktop.Create(p.Parent, kind, p.Name, p.Content)
}

func handleRenameItem(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[ItemPayload](payload)
	if err != nil {
		return nil, err
	}
	return sh.Desktop.Rename(p.ID, p.Name)
}

func handleMoveItem(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[ItemPayload](payload)
	if err != nil {
		return nil, err
	}
	return sh.Desktop.Move(p.ID, p.Parent, p.Drop)
}

func handleDeleteItem(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[ItemPayload](payload)
	if err != nil {
		return nil, err
	}
	return nil, sh.Desktop.Delete(p.ID)
}

func handleOpenItem(sh *shell.Shell, payload json.RawMessage) (any, error) {
	p, err := decode[ItemPayload](payload)
	if err != nil {
		return nil, err
	}
	before := sh.WM.Len()
	h, err := sh.OpenItem(p.ID)
	if err != nil {
		return nil, err
	}
	return handleData(sh, h, sh.WM.Len() > before), nil
}
