package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.AvailableHeight() != 755 {
		t.Fatalf("AvailableHeight() = %d, want 755", cfg.AvailableHeight())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.Snap.Threshold != 30 {
		t.Fatalf("expected default threshold 30, got %d", res.Config.Snap.Threshold)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Window.Title != "New Window" {
		t.Fatalf("expected default title, got %q", res.Config.Window.Title)
	}
}

func TestLoadFromPath_OverlaysPartialSections(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"desktop:",
		"  width: 1920",
		"animation:",
		"  duration: 100ms",
		"drag:",
		"  group_overlap_ratio: 0.75",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Desktop.Width != 1920 || cfg.Desktop.Height != 800 {
		t.Fatalf("desktop = %+v, want 1920x800", cfg.Desktop)
	}
	if cfg.Animation.Duration != 100*time.Millisecond {
		t.Fatalf("animation.duration = %v", cfg.Animation.Duration)
	}
	if cfg.Drag.GroupOverlapRatio != 0.75 || cfg.Drag.ReachableMargin != 50 {
		t.Fatalf("drag = %+v", cfg.Drag)
	}
	if src, ok := res.Sources["desktop.width"]; !ok || src.Line != 2 {
		t.Fatalf("expected source for desktop.width on line 2, got %+v", src)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, "unknown_key: 1\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	path := writeConfig(t, "snap:\n  threshold: 0\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "snap.threshold" {
		t.Fatalf("path = %q", verr.Path)
	}
	want := path + ":2:14"
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected %q in %q", want, err.Error())
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero width", func(c *Config) { c.Desktop.Width = 0 }, "desktop.width"},
		{"ratio above one", func(c *Config) { c.Drag.GroupOverlapRatio = 1.5 }, "drag.group_overlap_ratio"},
		{"ratio zero", func(c *Config) { c.Drag.GroupOverlapRatio = 0 }, "drag.group_overlap_ratio"},
		{"window below minimum", func(c *Config) { c.Window.Width = 100 }, "window.width"},
		{"taskbar too tall", func(c *Config) { c.Taskbar.Height = 780 }, "taskbar.height"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"negative interval", func(c *Config) { c.Consistency.Interval = -time.Second }, "consistency.interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("Validate() = %v, want error at %s", err, tt.path)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tabs.TabWidth = 150
	cfg.Animation.Duration = 300 * time.Millisecond
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Tabs.TabWidth != 150 || res.Config.Animation.Duration != 300*time.Millisecond {
		t.Fatalf("round trip lost values: %+v %+v", res.Config.Tabs, res.Config.Animation)
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, "drag:\n  group_overlap_ratio: 0.75\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		path    string
		want    any
		kind    SourceKind
		wantErr bool
	}{
		{path: "drag.group_overlap_ratio", want: 0.75, kind: SourceFile},
		{path: "snap.threshold", want: 30, kind: SourceDefault},
		{path: "animation.duration", want: "250ms", kind: SourceDefault},
		{path: "drag.nope", wantErr: true},
		{path: "snap.threshold.deeper", wantErr: true},
		{path: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			value, src, err := Explain(res, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Explain(%q) = %v, want error", tt.path, value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Explain(%q): %v", tt.path, err)
			}
			if value != tt.want || src.Kind != tt.kind {
				t.Fatalf("Explain(%q) = %v (%s), want %v (%s)", tt.path, value, src.Kind, tt.want, tt.kind)
			}
		})
	}

	_, src, _ := Explain(res, "drag.group_overlap_ratio")
	if got := FormatSource(src); got != "file:"+path+":2:24" {
		t.Fatalf("FormatSource = %q", got)
	}
}
