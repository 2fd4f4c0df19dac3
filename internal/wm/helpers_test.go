package wm

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/deskshell/internal/arena"
	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/schedule"
	"github.com/1broseidon/deskshell/internal/taskbar"
)

type fixture struct {
	t     *testing.T
	m     *Manager
	clock *schedule.ManualClock
	queue *schedule.Queue
	rec   *taskbar.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := schedule.NewManualClock(time.Unix(0, 0))
	queue := schedule.NewQueue(clock, logger)
	rec := &taskbar.Recorder{}
	return &fixture{
		t:     t,
		m:     New(config.DefaultConfig(), queue, rec, logger),
		clock: clock,
		queue: queue,
		rec:   rec,
	}
}

// open opens a window and lets its deferred focus run.
func (f *fixture) open(title string) arena.Handle {
	f.t.Helper()
	h := f.m.Open(title, "content of "+title, OpenOptions{})
	f.queue.RunDue()
	return h
}

// settle lets pending close animations finish.
func (f *fixture) settle() {
	f.clock.Advance(f.m.Config().Animation.Duration)
	f.queue.RunDue()
}

func (f *fixture) info(h arena.Handle) Info {
	f.t.Helper()
	in, err := f.m.Get(h)
	if err != nil {
		f.t.Fatalf("Get(%v): %v", h, err)
	}
	return in
}

func (f *fixture) entry(h arena.Handle) (taskbar.Entry, bool) {
	return f.m.Taskbar().Lookup(h)
}

func (f *fixture) mustEntry(h arena.Handle) taskbar.Entry {
	f.t.Helper()
	e, ok := f.entry(h)
	if !ok {
		f.t.Fatalf("no taskbar entry for %v", h)
	}
	return e
}

func (f *fixture) noEntry(h arena.Handle) {
	f.t.Helper()
	if e, ok := f.entry(h); ok {
		f.t.Fatalf("unexpected taskbar entry %+v for %v", e, h)
	}
}
