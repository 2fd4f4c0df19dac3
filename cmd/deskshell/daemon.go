package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/1broseidon/deskshell/internal/daemon"
	"github.com/1broseidon/deskshell/internal/mcp"
	"github.com/1broseidon/deskshell/internal/tui"
)

func (c *cli) daemonCmd() *cobra.Command {
	var pidFile string
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the desktop daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := daemon.NewLogger(res.Config.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()
			if res.File != "" {
				logger.Info("configuration loaded", "file", res.File)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return daemon.Run(ctx, daemon.Options{
				Config:     res.Config,
				Logger:     logger,
				SocketPath: c.socketPath,
				PIDFile:    pidFile,
			})
		},
	}
	cmd.Flags().StringVar(&pidFile, "pid-file", "", "PID file path (default: runtime dir)")
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.client().GetStatus()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "daemon_running: %v\n", st.DaemonRunning)
			fmt.Fprintf(out, "desktop:        %dx%d\n", st.Desktop.Width, st.Desktop.Height)
			fmt.Fprintf(out, "windows:        %d\n", st.Windows)
			fmt.Fprintf(out, "groups:         %d\n", st.Groups)
			fmt.Fprintf(out, "minimized:      %d\n", st.Minimized)
			fmt.Fprintf(out, "closing:        %d\n", st.Closing)
			fmt.Fprintf(out, "taskbar:        %d\n", st.Taskbar)
			if st.FocusedTitle != "" {
				fmt.Fprintf(out, "focused:        %s (%s)\n", st.FocusedTitle, st.Focused)
			}
			fmt.Fprintf(out, "dragging:       %v\n", st.Dragging)
			if !st.Started.IsZero() {
				fmt.Fprintf(out, "started:        %s\n", humanize.Time(st.Started))
			}
			fmt.Fprintf(out, "uptime_seconds: %d\n", st.UptimeSeconds)
			return nil
		},
	}
}

func (c *cli) mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol integration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the desktop as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadConfig()
			if err != nil {
				return err
			}
			// stdout carries the protocol.
			logger, closeLog, err := daemon.NewLogger(res.Config.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mcp.NewServer(c.client(), logger).Run(ctx)
		},
	})
	return cmd
}

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run a self-contained desktop in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			return tui.Run(ctx, tui.Options{Config: res.Config})
		},
	}
}
