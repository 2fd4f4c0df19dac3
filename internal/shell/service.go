package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrStopped is returned by Do once the service loop has exited.
var ErrStopped = errors.New("shell service stopped")

type request struct {
	name string
	fn   func(*Shell) error
	errc chan error
}

// Service owns a Shell on a single goroutine. Every caller goes through Do,
// so window manager state is only ever touched by the loop. After each
// request the loop runs next-tick work and due deferrals; a timer wakes it
// for deferrals that fall due while idle.
type Service struct {
	shell  *Shell
	reqs   chan request
	done   chan struct{}
	logger *slog.Logger
}

// NewService creates a service for sh. Call Run to start it.
func NewService(sh *Shell, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		shell:  sh,
		reqs:   make(chan request),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run processes requests until ctx is cancelled. Pending deferrals are
// flushed before it returns so closing windows finish closing.
func (s *Service) Run(ctx context.Context) error {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	s.logger.Info("shell loop started")
	for {
		s.arm(timer)
		select {
		case <-ctx.Done():
			if n := s.shell.Queue.Flush(); n > 0 {
				s.logger.Info("flushed pending tasks", "count", n)
			}
			s.logger.Info("shell loop stopped")
			return nil
		case req := <-s.reqs:
			err := s.exec(req)
			s.shell.Settle()
			req.errc <- err
		case <-timer.C:
			s.shell.Settle()
		}
	}
}

func (s *Service) arm(timer *time.Timer) {
	due, ok := s.shell.Queue.NextDue()
	if !ok {
		timer.Stop()
		return
	}
	timer.Reset(max(due.Sub(s.shell.Queue.Now()), 0))
}

func (s *Service) exec(req request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("request panic recovered", "request", req.name, "panic", r)
			err = fmt.Errorf("%s: internal error: %v", req.name, r)
		}
	}()
	return req.fn(s.shell)
}

// Do runs fn on the loop and waits for it. name labels the request in logs.
func (s *Service) Do(ctx context.Context, name string, fn func(*Shell) error) error {
	req := request{name: name, fn: fn, errc: make(chan error, 1)}
	select {
	case s.reqs <- req:
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (s *Service) Done() <-chan struct{} {
	return s.done
}
