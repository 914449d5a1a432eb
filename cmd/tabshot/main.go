// Command tabshot captures browser tabs onto a board and exports the board
// as a PDF, one screenshot per page.
//
// Usage:
//
//	tabshot capture <url>
//	tabshot list
//	tabshot delete <n>
//	tabshot move <from> <before>
//	tabshot export [-o file] [--items 1,3-4] [--renderer chrome|image]
//	tabshot inspect <file.pdf>
//	tabshot snapshot
//	tabshot serve
//	tabshot mcp
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/porticus-lab/tabshot/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// globals carries what the root command resolves for its subcommands.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "tabshot",
		Short: "tabshot - capture browser tabs and export them as a PDF",
		Long: `tabshot keeps an ordered board of browser tab screenshots.

Capture pages into the board, delete and reorder them, then export the
board as a PDF with one 10 x 4.5 inch landscape page per screenshot.
The board is stored under a single key and survives restarts.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.load(cmd.ErrOrStderr())
		},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("tabshot version {{.Version}}\n")

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: auto, json, text")

	root.AddCommand(
		newCaptureCmd(g),
		newListCmd(g),
		newDeleteCmd(g),
		newMoveCmd(g),
		newExportCmd(g),
		newInspectCmd(g),
		newSnapshotCmd(g),
		newServeCmd(g),
		newMCPCmd(g),
	)
	return root
}

func (g *globals) load(logOut io.Writer) error {
	cfg := config.Default()
	if g.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(g.configPath); err != nil {
			return err
		}
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(logOut, cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	g.cfg = cfg
	g.logger = logger
	return nil
}

// newLogger builds the process logger: text on a terminal, JSON otherwise.
func newLogger(w io.Writer, lc config.LogConfig) (*slog.Logger, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	format := lc.Format
	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "text"
		}
	}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}
