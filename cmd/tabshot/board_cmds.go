package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCaptureCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "capture <url>",
		Short: "Open a page and append a screenshot of it to the board",
		Long: `Open a page in a headless browser and append a screenshot of the
visible area to the board.

Examples:
  tabshot capture https://example.com
  tabshot capture --config tabshot.yaml https://go.dev`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := g.openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.tab.OpenTab(ctx, args[0]); err != nil {
				return err
			}
			it, err := a.board.Capture(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Captured %s as item %d (%s).\n",
				args[0], a.board.Len(), humanize.Bytes(uint64(it.Size())))
			return nil
		},
	}
}

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the screenshots on the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			items := a.board.Items()
			if len(items) == 0 {
				fmt.Fprintln(out, "No screenshots.")
				return nil
			}
			var total uint64
			for i, it := range items {
				dims := "?"
				if c, _, err := it.Config(); err == nil {
					dims = fmt.Sprintf("%dx%d", c.Width, c.Height)
				}
				fmt.Fprintf(out, "%3d  %-10s  %9s  %s\n",
					i+1, it.MediaType(), dims, humanize.Bytes(uint64(it.Size())))
				total += uint64(it.Size())
			}
			fmt.Fprintf(out, "%d screenshots, %s\n", len(items), humanize.Bytes(total))
			return nil
		},
	}
}

func newDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <n>",
		Short: "Remove screenshot n from the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := itemNumber(args[0])
			if err != nil {
				return err
			}
			a, err := g.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.board.Delete(cmd.Context(), n-1); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %d, %d left.\n", n, a.board.Len())
			return nil
		},
	}
}

func newMoveCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <before>",
		Short: "Move screenshot <from> immediately before screenshot <before>",
		Long: `Move screenshot <from> immediately before screenshot <before>, the way
dragging it onto that screenshot would. A <before> one past the last
screenshot moves it to the end.

Examples:
  tabshot move 3 1   # third screenshot becomes the first
  tabshot move 1 4   # first of three moves to the end`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := itemNumber(args[0])
			if err != nil {
				return err
			}
			before, err := itemNumber(args[1])
			if err != nil {
				return err
			}
			a, err := g.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.board.Move(cmd.Context(), from-1, before-1); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved item %d before item %d.\n", from, before)
			return nil
		},
	}
}

func newSnapshotCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the stored board markup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), a.board.Snapshot())
			return nil
		},
	}
}

// itemNumber parses a 1-based item number.
func itemNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid item number %q", s)
	}
	return n, nil
}
