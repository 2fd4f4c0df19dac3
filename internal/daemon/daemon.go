// Package daemon assembles the long-running deskshell process: the shell
// loop, the IPC server and the consistency reconciler.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/ipc"
	"github.com/1broseidon/deskshell/internal/runtimepath"
	"github.com/1broseidon/deskshell/internal/shell"
	"github.com/1broseidon/deskshell/internal/taskbar"
	"github.com/1broseidon/deskshell/internal/x11"
)

// Options configures Run.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// SocketPath overrides the runtime socket location.
	SocketPath string
	// PIDFile is written on start and removed on exit. Empty uses the
	// runtime directory default.
	PIDFile string
	// Probe measures the display. Nil uses the X11 probe when
	// desktop.probe_x11 is set.
	Probe func() (x11.Screen, error)
}

// ErrAlreadyRunning is returned when another daemon answers on the socket.
var ErrAlreadyRunning = errors.New("daemon already running")

// Run starts the daemon and blocks until ctx is cancelled. Pending close
// animations are committed before it returns.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	socketPath := opts.SocketPath
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return fmt.Errorf("failed to resolve socket path: %w", err)
		}
		socketPath = p
	}
	if ipc.NewClientAt(socketPath).Ping() == nil {
		return fmt.Errorf("%w on %s", ErrAlreadyRunning, socketPath)
	}

	if cfg.Desktop.ProbeX11 {
		probe := opts.Probe
		if probe == nil {
			probe = x11.ProbeStandalone
		}
		applyProbe(cfg, probe, logger)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	sh := shell.New(shell.Options{
		Config:   cfg,
		Renderer: taskbar.LogRenderer{Logger: logger.With("component", "taskbar")},
		Desktop:  store,
		Logger:   logger,
	})
	svc := shell.NewService(sh, logger.With("component", "shell"))

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go svc.Run(loopCtx)

	server := ipc.NewServerAt(socketPath, svc, logger.With("component", "ipc"))
	if err := server.Start(); err != nil {
		stopLoop()
		<-svc.Done()
		return fmt.Errorf("failed to start IPC server: %w", err)
	}

	pidFile, err := writePIDFile(opts.PIDFile)
	if err != nil {
		logger.Warn("failed to write pid file", "error", err)
	}

	reconciler := NewReconciler(ReconcilerConfig{
		Interval: cfg.Consistency.Interval,
		Logger:   logger.With("component", "reconciler"),
	}, ServiceSweeper(svc))
	if _, err := reconciler.ReconcileNow(ctx); err != nil {
		logger.Warn("startup consistency sweep failed", "error", err)
	}
	go reconciler.Run(ctx)

	logger.Info("daemon started",
		"socket", socketPath,
		"desktop", fmt.Sprintf("%dx%d", cfg.Desktop.Width, cfg.Desktop.Height))

	<-ctx.Done()

	logger.Info("shutting down")
	server.Stop()
	stopLoop()
	<-svc.Done()
	if pidFile != "" {
		os.Remove(pidFile)
	}
	return nil
}

// applyProbe replaces the configured desktop size with the measured one.
func applyProbe(cfg *config.Config, probe func() (x11.Screen, error), logger *slog.Logger) {
	screen, err := probe()
	if err != nil {
		logger.Warn("display probe failed, using configured desktop", "error", err)
		return
	}
	if screen.Usable.Width <= 0 || screen.Usable.Height <= cfg.Taskbar.Height+cfg.Window.TitleBarHeight {
		logger.Warn("display probe returned an unusable area", "usable", screen.Usable.String())
		return
	}
	cfg.Desktop.Width = screen.Usable.Width
	cfg.Desktop.Height = screen.Usable.Height
	logger.Info("desktop sized from display", "monitor", screen.Monitor, "usable", screen.Usable.String())
}

func openStore(cfg *config.Config, logger *slog.Logger) (desktop.Store, error) {
	if cfg.Icons.StateFile == "" {
		return nil, nil
	}
	store, err := desktop.OpenFile(expandHome(cfg.Icons.StateFile), shell.Grid(cfg), logger.With("component", "desktop"))
	if err != nil {
		return nil, fmt.Errorf("failed to open desktop state: %w", err)
	}
	return store, nil
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return home + "/" + rest
		}
	}
	return path
}

func writePIDFile(path string) (string, error) {
	if path == "" {
		p, err := runtimepath.PIDPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0600); err != nil {
		return "", err
	}
	return path, nil
}
