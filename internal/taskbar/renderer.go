package taskbar

import (
	"fmt"
	"log/slog"
	"sync"
)

// Call is one renderer invocation captured by a Recorder.
type Call struct {
	Op      string
	ID      string
	BoundID string
	Title   string
	State   State
}

func (c Call) String() string {
	switch c.Op {
	case "create":
		return fmt.Sprintf("create %s bound=%s title=%q", c.ID, c.BoundID, c.Title)
	case "remove":
		return "remove " + c.ID
	case "state":
		return fmt.Sprintf("state %s %s", c.ID, c.State)
	case "title":
		return fmt.Sprintf("title %s %q", c.ID, c.Title)
	default:
		return c.Op + " " + c.ID
	}
}

// Recorder is a Renderer that remembers every call.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *Recorder) CreateEntry(id, boundID, title string) {
	r.record(Call{Op: "create", ID: id, BoundID: boundID, Title: title})
}

func (r *Recorder) RemoveEntry(id string) {
	r.record(Call{Op: "remove", ID: id})
}

func (r *Recorder) SetState(id string, state State) {
	r.record(Call{Op: "state", ID: id, State: state})
}

func (r *Recorder) SetTitle(id, title string) {
	r.record(Call{Op: "title", ID: id, Title: title})
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

// LogRenderer writes every call to a logger at debug level.
type LogRenderer struct {
	Logger *slog.Logger
}

func (l LogRenderer) CreateEntry(id, boundID, title string) {
	l.Logger.Debug("taskbar create", "entry", id, "bound", boundID, "title", title)
}

func (l LogRenderer) RemoveEntry(id string) {
	l.Logger.Debug("taskbar remove", "entry", id)
}

func (l LogRenderer) SetState(id string, state State) {
	l.Logger.Debug("taskbar state", "entry", id, "state", state.String())
}

func (l LogRenderer) SetTitle(id, title string) {
	l.Logger.Debug("taskbar title", "entry", id, "title", title)
}
