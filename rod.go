package tabshot

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodBrowser is a [Capturer] backed by go-rod. With [WithStealth] its tab
// masks the usual headless fingerprints, which helps when capturing pages
// that refuse automated browsers.
type RodBrowser struct {
	cfg     browserConfig
	lnch    *launcher.Launcher
	browser *rod.Browser

	tabMu sync.Mutex
	page  *rod.Page
	url   string

	mu     sync.Mutex
	closed bool
}

// NewRodBrowser launches Chrome through the rod launcher and opens the
// visible tab.
func NewRodBrowser(opts ...Option) (*RodBrowser, error) {
	cfg, err := newBrowserConfig(opts)
	if err != nil {
		return nil, err
	}

	l := launcher.New().Headless(true)
	if cfg.chromePath != "" {
		l = l.Bin(cfg.chromePath)
	}
	if cfg.noSandbox {
		l = l.NoSandbox(true)
	}
	if cfg.stealth {
		l = l.Set("disable-blink-features", "AutomationControlled")
	}

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("tabshot: launching browser: %w", err)
	}
	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("tabshot: connecting to browser: %w", err)
	}

	var p *rod.Page
	if cfg.stealth {
		p, err = stealth.Page(b)
	} else {
		p, err = b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err == nil {
		err = p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             cfg.viewportWidth,
			Height:            cfg.viewportHeight,
			DeviceScaleFactor: 1,
		})
	}
	if err != nil {
		b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("tabshot: creating tab: %w", err)
	}

	return &RodBrowser{
		cfg:     cfg,
		lnch:    l,
		browser: b,
		page:    p,
		url:     "about:blank",
	}, nil
}

// Close shuts down the browser. Close is idempotent.
func (r *RodBrowser) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	err := r.browser.Close()
	r.lnch.Cleanup()
	return err
}

// OpenTab navigates the visible tab to rawURL and waits for the load event.
func (r *RodBrowser) OpenTab(ctx context.Context, rawURL string) error {
	if err := r.checkClosed(); err != nil {
		return err
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return fmt.Errorf("tabshot: invalid URL %q: %w", rawURL, err)
	}

	r.tabMu.Lock()
	defer r.tabMu.Unlock()

	ctx, cancel := r.bound(ctx)
	defer cancel()

	p := r.page.Context(ctx)
	if err := p.Navigate(rawURL); err != nil {
		return fmt.Errorf("tabshot: opening %s: %w", rawURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("tabshot: waiting for %s: %w", rawURL, err)
	}
	r.url = rawURL
	return nil
}

// URL returns the address the visible tab was last navigated to.
func (r *RodBrowser) URL() string {
	r.tabMu.Lock()
	defer r.tabMu.Unlock()
	return r.url
}

// CaptureVisibleTab captures the viewport of the visible tab.
func (r *RodBrowser) CaptureVisibleTab(ctx context.Context, opts CaptureOptions) (string, error) {
	if err := r.checkClosed(); err != nil {
		return "", err
	}
	format, err := screenshotFormat(opts.Format)
	if err != nil {
		return "", err
	}

	r.tabMu.Lock()
	defer r.tabMu.Unlock()

	ctx, cancel := r.bound(ctx)
	defer cancel()

	req := &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormat(format)}
	if format != "png" {
		q := opts.Quality
		req.Quality = &q
	}
	buf, err := r.page.Context(ctx).Screenshot(false, req)
	if err != nil {
		return "", fmt.Errorf("tabshot: capturing %s: %w", r.url, err)
	}
	return ItemFromImage("image/"+string(format), buf).DataURL, nil
}

func (r *RodBrowser) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.timeout > 0 {
		return context.WithTimeout(ctx, r.cfg.timeout)
	}
	return context.WithCancel(ctx)
}

func (r *RodBrowser) checkClosed() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}
