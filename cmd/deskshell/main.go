package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/ipc"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the persistent flags shared by every subcommand.
type cli struct {
	configPath string
	socketPath string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "deskshell",
		Short: "Desktop shell window manager",
		Long: `deskshell keeps a desktop of windows, tab groups and a taskbar in a
long-running daemon. Other subcommands talk to the daemon over its unix socket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file path (default: ~/.config/deskshell/config.yaml)")
	root.PersistentFlags().StringVar(&c.socketPath, "socket", "", "Daemon socket path (default: $DESKSHELL_SOCKET or the runtime dir)")

	root.AddCommand(
		c.daemonCmd(),
		c.statusCmd(),
		c.listCmd(),
		c.taskbarCmd(),
		c.openCmd(),
		c.launchCmd(),
	)
	root.AddCommand(c.windowCmds()...)
	root.AddCommand(
		c.snapCmd(),
		c.moveCmd(),
		c.resizeCmd(),
		c.tileCmd(),
		c.groupCmd(),
		c.addTabCmd(),
		c.tabCmd(),
		c.detachCmd(),
		c.dragCmd(),
		c.checkCmd(),
		c.itemsCmd(),
		c.configCmd(),
		c.mcpCmd(),
		c.tuiCmd(),
	)
	return root
}

func (c *cli) client() *ipc.Client {
	if c.socketPath != "" {
		return ipc.NewClientAt(c.socketPath)
	}
	return ipc.NewClient()
}

// loadConfig reads --config, or the default location when the flag is unset.
func (c *cli) loadConfig() (*config.LoadResult, error) {
	path := c.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	return config.LoadFromPath(path)
}
