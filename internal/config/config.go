package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DesktopConfig describes the desktop surface windows live on.
type DesktopConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// ProbeX11 replaces width/height with the X root window work area when a
	// display is reachable.
	ProbeX11 bool `yaml:"probe_x11"`
}

type TaskbarConfig struct {
	Height int `yaml:"height"`
}

// WindowConfig holds defaults for newly opened windows.
type WindowConfig struct {
	Title          string `yaml:"title"`
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	Top            int    `yaml:"top"`
	Left           int    `yaml:"left"`
	MinWidth       int    `yaml:"min_width"`
	MinHeight      int    `yaml:"min_height"`
	TitleBarHeight int    `yaml:"title_bar_height"`
	CascadeStep    int    `yaml:"cascade_step"`  // offset added per live window
	CascadeSlots   int    `yaml:"cascade_slots"` // cascade wraps after this many windows
}

type SnapConfig struct {
	Threshold int `yaml:"threshold"`
}

type DragConfig struct {
	// ReachableMargin is how many pixels of a dragged window must stay on
	// the desktop horizontally.
	ReachableMargin int `yaml:"reachable_margin"`
	// GroupOverlapRatio is the share of the smaller window that must be
	// covered before a drag offers grouping.
	GroupOverlapRatio float64 `yaml:"group_overlap_ratio"`
	// TabDropOffset is subtracted from the pointer when a dragged tab is
	// dropped on the desktop.
	TabDropOffset int `yaml:"tab_drop_offset"`
}

type TabsConfig struct {
	StripHeight int `yaml:"strip_height"`
	TabWidth    int `yaml:"tab_width"`
}

type AnimationConfig struct {
	Duration time.Duration `yaml:"duration"`
}

type ConsistencyConfig struct {
	// Interval between background taskbar sweeps. Zero disables the sweep.
	Interval time.Duration `yaml:"interval"`
}

type IconsConfig struct {
	GridSize int `yaml:"grid_size"`
	// StateFile persists desktop items between daemon runs. Empty keeps
	// them in memory only.
	StateFile string `yaml:"state_file,omitempty"`
}

type TilingConfig struct {
	Gap int `yaml:"gap"`
}

// LoggingConfig configures the daemon logger.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// File is the log file path. Empty logs to stderr.
	File string `yaml:"file,omitempty"`
}

// Config is the effective deskshell configuration.
type Config struct {
	Desktop     DesktopConfig     `yaml:"desktop"`
	Taskbar     TaskbarConfig     `yaml:"taskbar"`
	Window      WindowConfig      `yaml:"window"`
	Snap        SnapConfig        `yaml:"snap"`
	Drag        DragConfig        `yaml:"drag"`
	Tabs        TabsConfig        `yaml:"tabs"`
	Animation   AnimationConfig   `yaml:"animation"`
	Consistency ConsistencyConfig `yaml:"consistency"`
	Icons       IconsConfig       `yaml:"icons"`
	Tiling      TilingConfig      `yaml:"tiling"`
	Logging     LoggingConfig     `yaml:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		Desktop: DesktopConfig{Width: 1280, Height: 800},
		Taskbar: TaskbarConfig{Height: 45},
		Window: WindowConfig{
			Title:          "New Window",
			Width:          500,
			Height:         350,
			Top:            60,
			Left:           80,
			MinWidth:       250,
			MinHeight:      150,
			TitleBarHeight: 35,
			CascadeStep:    25,
			CascadeSlots:   10,
		},
		Snap: SnapConfig{Threshold: 30},
		Drag: DragConfig{
			ReachableMargin:   50,
			GroupOverlapRatio: 0.5,
			TabDropOffset:     10,
		},
		Tabs:        TabsConfig{StripHeight: 30, TabWidth: 120},
		Animation:   AnimationConfig{Duration: 250 * time.Millisecond},
		Consistency: ConsistencyConfig{Interval: 30 * time.Second},
		Icons:       IconsConfig{GridSize: 90},
		Tiling:      TilingConfig{Gap: 10},
		Logging:     LoggingConfig{Level: "info"},
	}
}

// AvailableHeight is the desktop height above the taskbar.
func (c *Config) AvailableHeight() int {
	return c.Desktop.Height - c.Taskbar.Height
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	positive := []struct {
		path  string
		value int
	}{
		{"desktop.width", c.Desktop.Width},
		{"desktop.height", c.Desktop.Height},
		{"window.width", c.Window.Width},
		{"window.height", c.Window.Height},
		{"window.min_width", c.Window.MinWidth},
		{"window.min_height", c.Window.MinHeight},
		{"window.title_bar_height", c.Window.TitleBarHeight},
		{"window.cascade_slots", c.Window.CascadeSlots},
		{"snap.threshold", c.Snap.Threshold},
		{"tabs.strip_height", c.Tabs.StripHeight},
		{"tabs.tab_width", c.Tabs.TabWidth},
		{"icons.grid_size", c.Icons.GridSize},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &ValidationError{Path: p.path, Err: fmt.Errorf("must be > 0, got %d", p.value)}
		}
	}

	nonNegative := []struct {
		path  string
		value int
	}{
		{"taskbar.height", c.Taskbar.Height},
		{"window.top", c.Window.Top},
		{"window.left", c.Window.Left},
		{"window.cascade_step", c.Window.CascadeStep},
		{"drag.reachable_margin", c.Drag.ReachableMargin},
		{"drag.tab_drop_offset", c.Drag.TabDropOffset},
		{"tiling.gap", c.Tiling.Gap},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			return &ValidationError{Path: p.path, Err: fmt.Errorf("must be >= 0, got %d", p.value)}
		}
	}

	if c.AvailableHeight() <= c.Window.TitleBarHeight {
		return &ValidationError{Path: "taskbar.height", Err: fmt.Errorf("taskbar leaves no room for a title bar on a %dpx desktop", c.Desktop.Height)}
	}
	if c.Window.Width < c.Window.MinWidth {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("must be >= window.min_width (%d)", c.Window.MinWidth)}
	}
	if c.Window.Height < c.Window.MinHeight {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("must be >= window.min_height (%d)", c.Window.MinHeight)}
	}
	if c.Drag.GroupOverlapRatio <= 0 || c.Drag.GroupOverlapRatio > 1 {
		return &ValidationError{Path: "drag.group_overlap_ratio", Err: fmt.Errorf("must be in (0, 1], got %g", c.Drag.GroupOverlapRatio)}
	}
	if c.Animation.Duration < 0 {
		return &ValidationError{Path: "animation.duration", Err: fmt.Errorf("must be >= 0")}
	}
	if c.Consistency.Interval < 0 {
		return &ValidationError{Path: "consistency.interval", Err: fmt.Errorf("must be >= 0")}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warn, error")}
	}
	return nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the config to path after validating it.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
