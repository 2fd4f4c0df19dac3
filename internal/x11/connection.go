// Package x11 measures the X display deskshell runs on. It never touches
// client windows: the shell's windows live in memory.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection is an open display plus its root window.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// Dial opens display, or $DISPLAY when display is empty.
func Dial(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		if display == "" {
			return nil, fmt.Errorf("open display: %w", err)
		}
		return nil, fmt.Errorf("open display %s: %w", display, err)
	}
	return &Connection{XUtil: xu, Root: xu.RootWin()}, nil
}

func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// ProbeStandalone measures the screen over a short-lived connection to
// $DISPLAY.
func ProbeStandalone() (Screen, error) {
	conn, err := Dial("")
	if err != nil {
		return Screen{}, err
	}
	defer conn.Close()
	return conn.Probe()
}
