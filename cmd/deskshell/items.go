package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geom"
	"github.com/1broseidon/deskshell/internal/ipc"
)

func (c *cli) itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage desktop icons: text files and folders",
	}

	var listParent string
	list := &cobra.Command{
		Use:   "list",
		Short: "List items on the desktop or in a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := c.client().ListItems(listParent)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "no items")
				return nil
			}
			for _, it := range items {
				printItem(out, it)
			}
			return nil
		},
	}
	list.Flags().StringVar(&listParent, "parent", "", "Folder id (default: the desktop)")

	var kind, parent, content string
	create := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a text file or folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ipc.ItemPayload{Kind: kind, Parent: parent, Content: content}
			if len(args) == 1 {
				p.Name = args[0]
			}
			it, err := c.client().CreateItem(p)
			if err != nil {
				return err
			}
			printItem(cmd.OutOrStdout(), *it)
			return nil
		},
	}
	create.Flags().StringVar(&kind, "kind", string(desktop.KindText), "Item kind: txt or folder")
	create.Flags().StringVar(&parent, "parent", "", "Folder id (default: the desktop)")
	create.Flags().StringVar(&content, "content", "", "Text file content")

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := c.client().RenameItem(args[0], args[1])
			if err != nil {
				return err
			}
			printItem(cmd.OutOrStdout(), *it)
			return nil
		},
	}

	var moveParent, at string
	move := &cobra.Command{
		Use:   "move <id>",
		Short: "Move an item into a folder or onto the desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var drop *geom.Point
			if at != "" {
				pt, err := parsePoint(at)
				if err != nil {
					return err
				}
				drop = &pt
			}
			it, err := c.client().MoveItem(args[0], moveParent, drop)
			if err != nil {
				return err
			}
			printItem(cmd.OutOrStdout(), *it)
			return nil
		},
	}
	move.Flags().StringVar(&moveParent, "parent", "", "Destination folder id (default: the desktop)")
	move.Flags().StringVar(&at, "at", "", "Desktop drop point as X,Y; snapped to the icon grid")

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an item and everything inside it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client().DeleteItem(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted: %s\n", args[0])
			return nil
		},
	}

	open := &cobra.Command{
		Use:   "open <id>",
		Short: "Open an item in a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.client().OpenItem(args[0])
			if err != nil {
				return err
			}
			verb := "focused"
			if data.Opened {
				verb = "opened"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", verb, data.Title, data.Handle)
			return nil
		},
	}

	cmd.AddCommand(list, create, rename, move, remove, open)
	return cmd
}

func printItem(w io.Writer, it desktop.Item) {
	fmt.Fprintf(w, "%s %-6s %q", it.ID, it.Kind, it.Name)
	if it.Position != nil {
		fmt.Fprintf(w, " at %d,%d", it.Position.X, it.Position.Y)
	}
	if it.Parent != "" {
		fmt.Fprintf(w, " in %s", it.Parent)
	}
	fmt.Fprintln(w)
}
