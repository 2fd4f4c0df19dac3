// Package tui runs a self-contained desktop in the terminal: windows are
// drawn as boxes, the mouse drags them, and the bottom row is the taskbar.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/shell"
)

// Options configures Run.
type Options struct {
	Config *config.Config
	// Logger receives shell logs. Nil discards them so they do not tear
	// the screen.
	Logger *slog.Logger
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sh := shell.New(shell.Options{Config: opts.Config, Logger: logger})
	svc := shell.NewService(sh, logger)
	loopCtx, stop := context.WithCancel(ctx)
	defer func() {
		stop()
		<-svc.Done()
	}()
	go svc.Run(loopCtx)

	p := tea.NewProgram(newModel(loopCtx, svc),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
