// Package schedule runs deferred work on the shell's event loop: tasks that
// complete after an animation delay and tasks deferred to the next tick.
//
// The queue never runs anything on its own. The owner calls RunDue from the
// single goroutine that also mutates shell state, so tasks never race with
// request handlers.
package schedule

import (
	"container/heap"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// TaskID identifies a scheduled task.
type TaskID uint64

type task struct {
	id   TaskID
	name string
	due  time.Time
	seq  uint64
	fn   func()
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if !h[i].due.Equal(h[j].due) {
		return h[i].due.Before(h[j].due)
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(*task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Queue orders tasks by due time, then by scheduling order.
type Queue struct {
	clock    Clock
	logger   *slog.Logger
	tasks    taskHeap
	seq      uint64
	canceled map[TaskID]bool
}

// NewQueue creates a queue driven by clock. A nil clock means SystemClock and
// a nil logger means slog.Default().
func NewQueue(clock Clock, logger *slog.Logger) *Queue {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		clock:    clock,
		logger:   logger,
		canceled: make(map[TaskID]bool),
	}
}

// Now returns the queue's current time.
func (q *Queue) Now() time.Time {
	return q.clock.Now()
}

// After schedules fn to run once d has elapsed.
func (q *Queue) After(d time.Duration, name string, fn func()) TaskID {
	if d < 0 {
		d = 0
	}
	q.seq++
	t := &task{
		id:   TaskID(q.seq),
		name: name,
		due:  q.clock.Now().Add(d),
		seq:  q.seq,
		fn:   fn,
	}
	heap.Push(&q.tasks, t)
	return t.id
}

// NextTick schedules fn to run on the next drain. Tasks scheduled for the
// same tick run in the order they were scheduled.
func (q *Queue) NextTick(name string, fn func()) TaskID {
	return q.After(0, name, fn)
}

// Cancel drops a pending task. It reports whether the task was pending.
func (q *Queue) Cancel(id TaskID) bool {
	for _, t := range q.tasks {
		if t.id == id && !q.canceled[id] {
			q.canceled[id] = true
			return true
		}
	}
	return false
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	return len(q.tasks) - len(q.canceled)
}

// NextDue returns the due time of the earliest pending task.
func (q *Queue) NextDue() (time.Time, bool) {
	for len(q.tasks) > 0 {
		head := q.tasks[0]
		if q.canceled[head.id] {
			heap.Pop(&q.tasks)
			delete(q.canceled, head.id)
			continue
		}
		return head.due, true
	}
	return time.Time{}, false
}

// RunDue runs every task whose due time has passed, including tasks those
// tasks schedule for the current tick. It returns how many ran.
func (q *Queue) RunDue() int {
	ran := 0
	for {
		due, ok := q.NextDue()
		if !ok || due.After(q.clock.Now()) {
			return ran
		}
		t := heap.Pop(&q.tasks).(*task)
		q.run(t)
		ran++
	}
}

// Flush runs every pending task in order regardless of due time, so pending
// close commits still land on shutdown.
func (q *Queue) Flush() int {
	ran := 0
	for {
		if _, ok := q.NextDue(); !ok {
			return ran
		}
		t := heap.Pop(&q.tasks).(*task)
		q.run(t)
		ran++
	}
}

func (q *Queue) run(t *task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("scheduled task panicked", "task", t.name, "panic", fmt.Sprint(r))
		}
	}()
	t.fn()
}
