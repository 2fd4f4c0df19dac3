package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/ipc"
	"github.com/1broseidon/deskshell/internal/x11"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"WARN":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"verbose": "INFO",
	}
	for in, want := range tests {
		if got := ParseLogLevel(in).String(); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "deskshell.log")
	logger, closeLog, err := NewLogger(config.LoggingConfig{Level: "info", File: path}, nil)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("hello", "k", "v")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "msg=hello") || strings.Contains(string(data), "hidden") {
		t.Fatalf("log file = %q", data)
	}
}

func TestApplyProbe(t *testing.T) {
	tests := []struct {
		name   string
		screen x11.Screen
		err    error
		wantW  int
		wantH  int
	}{
		{"measured", x11.Screen{Usable: geom.Rect{Width: 1920, Height: 1052}}, nil, 1920, 1052},
		{"probe error keeps config", x11.Screen{}, errors.New("no display"), 1280, 800},
		{"too small keeps config", x11.Screen{Usable: geom.Rect{Width: 800, Height: 60}}, nil, 1280, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			applyProbe(cfg, func() (x11.Screen, error) { return tt.screen, tt.err }, discardLogger())
			if cfg.Desktop.Width != tt.wantW || cfg.Desktop.Height != tt.wantH {
				t.Fatalf("desktop = %dx%d, want %dx%d", cfg.Desktop.Width, cfg.Desktop.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRunServesAndCleansUp(t *testing.T) {
	dir, err := os.MkdirTemp("", "dsd")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "s.sock")
	pidFile := filepath.Join(dir, "d.pid")

	cfg := config.DefaultConfig()
	cfg.Animation.Duration = time.Hour
	cfg.Desktop.ProbeX11 = true
	cfg.Icons.StateFile = filepath.Join(dir, "desktop.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- Run(ctx, Options{
			Config:     cfg,
			Logger:     discardLogger(),
			SocketPath: socket,
			PIDFile:    pidFile,
			Probe: func() (x11.Screen, error) {
				return x11.Screen{Usable: geom.Rect{Width: 1600, Height: 900}}, nil
			},
		})
	}()

	client := ipc.NewClientAt(socket)
	deadline := time.Now().Add(2 * time.Second)
	for client.Ping() != nil {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("daemon never answered: %v", <-errc)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := Run(context.Background(), Options{Config: cfg, Logger: discardLogger(), SocketPath: socket}); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Run err = %v, want ErrAlreadyRunning", err)
	}

	opened, err := client.Open(ipc.OpenPayload{Title: "Notes"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := client.Window(ipc.CommandClose, opened.Handle.String()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	windows, err := client.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if len(windows) != 1 || !windows[0].Closing {
		t.Fatalf("windows = %+v, want one closing window", windows)
	}
	if _, err := os.Stat(pidFile); err != nil {
		t.Fatalf("pid file: %v", err)
	}
	if _, err := os.Stat(cfg.Icons.StateFile); err != nil {
		t.Fatalf("desktop state file: %v", err)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Fatalf("pid file left behind: %v", err)
	}
	if cfg.Desktop.Width != 1600 || cfg.Desktop.Height != 900 {
		t.Fatalf("desktop = %dx%d, want probed 1600x900", cfg.Desktop.Width, cfg.Desktop.Height)
	}
}
