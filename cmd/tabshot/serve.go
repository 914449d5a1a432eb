package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/porticus-lab/tabshot/internal/mcptools"
	"github.com/porticus-lab/tabshot/internal/server"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board as a web page",
		Long: `Serve the board as a web page with capture, delete, drag-and-drop
reordering and PDF download.

Examples:
  tabshot serve
  tabshot serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := g.openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = g.cfg.Server.Addr
			}
			return server.New(a.board, a.tab, g.logger).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newMCPCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the board as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := g.openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcp.NewServer(&mcp.Implementation{Name: "tabshot", Version: Version}, nil)
			mcptools.Register(srv, a.board, a.tab)
			g.logger.Info("tabshot: mcp server on stdio")
			if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
