package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/porticus-lab/tabshot"
)

func newExportCmd(g *globals) *cobra.Command {
	var (
		output   string
		items    string
		renderer string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board as a PDF, one screenshot per page",
		Long: `Export the board as a PDF with one screenshot per 10 x 4.5 inch
landscape page, in board order.

Examples:
  tabshot export
  tabshot export -o board.pdf --items 1,3-4
  tabshot export --renderer image`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if renderer != "" {
				g.cfg.Export.Renderer = renderer
				if err := g.cfg.Validate(); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			a, err := g.openApp(ctx, g.cfg.Export.Renderer == "chrome")
			if err != nil {
				return err
			}
			defer a.Close()

			var indices []int
			if items != "" {
				if indices, err = parseItemRange(items, a.board.Len()); err != nil {
					return fmt.Errorf("invalid item range %q: %w", items, err)
				}
			}
			res, err := a.board.ExportItems(ctx, indices)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = res.Filename()
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := res.WriteToFile(path, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d pages, %s.\n",
				path, res.Pages(), humanize.Bytes(uint64(res.Len())))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default "+tabshot.DefaultFilename+")")
	cmd.Flags().StringVar(&items, "items", "", `items to export, e.g. "1", "1-5", "1,3-4" (default: all)`)
	cmd.Flags().StringVar(&renderer, "renderer", "", "PDF renderer: chrome or image (default from config)")
	return cmd
}

func newInspectCmd(_ *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "Show page sizes and image counts of an exported PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			pages, err := tabshot.Inspect(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:  %s\n", args[0])
			fmt.Fprintf(out, "Size:  %s\n", humanize.Bytes(uint64(len(data))))
			fmt.Fprintf(out, "Pages: %d\n", len(pages))
			if len(pages) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Page dimensions:")
				for i, p := range pages {
					fmt.Fprintf(out, "  Page %d: %.0f x %.0f pt (%.2f x %.2f in), %d images\n",
						i+1, p.Width, p.Height, p.WidthInches(), p.HeightInches(), p.Images)
				}
			}
			return nil
		},
	}
}
