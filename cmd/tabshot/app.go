package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/porticus-lab/tabshot"
	"github.com/porticus-lab/tabshot/store"
)

// tab is the browser tab captures are taken from.
type tab interface {
	OpenTab(ctx context.Context, url string) error
	URL() string
	CaptureVisibleTab(ctx context.Context, opts tabshot.CaptureOptions) (string, error)
	Close() error
}

// app is a loaded board with its storage and, optionally, a browser.
type app struct {
	board   *tabshot.Board
	tab     tab
	closers []func() error
}

// openApp opens the configured store and loads the board. withBrowser
// starts the configured browser backend for capture and Chrome export.
func (g *globals) openApp(ctx context.Context, withBrowser bool) (*app, error) {
	a := &app{}
	st, err := g.openStore(ctx, a)
	if err != nil {
		return nil, err
	}

	opts := []tabshot.BoardOption{
		tabshot.WithStorageKey(g.cfg.Storage.Key),
		tabshot.WithLogger(g.logger),
		tabshot.WithLayout(g.cfg.PageLayout()),
		tabshot.WithCaptureTimeout(g.cfg.Capture.Timeout),
		tabshot.WithExportTimeout(g.cfg.Export.Timeout),
	}

	if withBrowser {
		t, err := g.openTab(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.tab = t
		a.closers = append(a.closers, t.Close)
		opts = append(opts, tabshot.WithCapturer(t))
		if br, ok := t.(*tabshot.Browser); ok && g.cfg.Export.Renderer == "chrome" {
			opts = append(opts, tabshot.WithExporter(br))
		}
	}
	if g.cfg.Export.Renderer == "image" {
		opts = append(opts, tabshot.WithExporter(tabshot.NewImageExporter()))
	}

	a.board = tabshot.NewBoard(st, opts...)
	if err := a.board.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (g *globals) openStore(ctx context.Context, a *app) (tabshot.Store, error) {
	switch g.cfg.Storage.Driver {
	case "sqlite":
		s, err := store.OpenSQLite(ctx, g.cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case "file":
		return store.OpenFile(g.cfg.Storage.Path)
	case "memory":
		g.logger.Warn("tabshot: memory storage, the board is lost on exit")
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", g.cfg.Storage.Driver)
}

func (g *globals) openTab(ctx context.Context) (tab, error) {
	var (
		t   tab
		err error
	)
	opts := g.cfg.BrowserOptions()
	if g.cfg.Browser.Backend == "rod" {
		t, err = tabshot.NewRodBrowser(opts...)
	} else {
		t, err = tabshot.NewBrowser(opts...)
	}
	if err != nil {
		return nil, err
	}

	if u := g.cfg.Browser.StartURL; u != "about:blank" {
		if err := t.OpenTab(ctx, u); err != nil {
			t.Close()
			return nil, err
		}
	}
	return t, nil
}

// Close releases the browser and the store, most recent first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
