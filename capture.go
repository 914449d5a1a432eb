package tabshot

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Browser is a headless Chrome instance driven over the DevTools
// protocol. Its first tab plays the role of the visible tab: it is what
// [Browser.CaptureVisibleTab] captures. Browser also implements
// [Exporter] by printing the board to PDF in a separate tab.
//
// A Browser is safe for concurrent use. Call [Browser.Close] to release
// the browser process.
type Browser struct {
	cfg         browserConfig
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	tabMu sync.Mutex // serializes navigation and capture on the visible tab
	url   string

	mu     sync.Mutex
	closed bool
}

// NewBrowser starts a headless browser with the given options.
func NewBrowser(opts ...Option) (*Browser, error) {
	cfg, err := newBrowserConfig(opts)
	if err != nil {
		return nil, err
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
		chromedp.WindowSize(cfg.viewportWidth, cfg.viewportHeight),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(cfg.viewportWidth), int64(cfg.viewportHeight)),
	); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("tabshot: starting browser: %w", err)
	}

	return &Browser{
		cfg:         cfg,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		url:         "about:blank",
	}, nil
}

// Close releases all resources held by the Browser, including the
// browser process. Close is idempotent.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.tabCancel()
	b.allocCancel()
	return nil
}

// OpenTab navigates the visible tab to rawURL and waits for its body.
func (b *Browser) OpenTab(ctx context.Context, rawURL string) error {
	if err := b.checkClosed(); err != nil {
		return err
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return fmt.Errorf("tabshot: invalid URL %q: %w", rawURL, err)
	}

	b.tabMu.Lock()
	defer b.tabMu.Unlock()

	if err := b.run(ctx, b.tabCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("tabshot: opening %s: %w", rawURL, err)
	}
	b.url = rawURL
	return nil
}

// URL returns the address the visible tab was last navigated to.
func (b *Browser) URL() string {
	b.tabMu.Lock()
	defer b.tabMu.Unlock()
	return b.url
}

// CaptureVisibleTab captures the viewport of the visible tab and returns
// it as an image data URL.
func (b *Browser) CaptureVisibleTab(ctx context.Context, opts CaptureOptions) (string, error) {
	if err := b.checkClosed(); err != nil {
		return "", err
	}
	format, err := screenshotFormat(opts.Format)
	if err != nil {
		return "", err
	}

	b.tabMu.Lock()
	defer b.tabMu.Unlock()

	var buf []byte
	if err := b.run(ctx, b.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := page.CaptureScreenshot().
			WithFormat(format).
			WithFromSurface(true)
		// PNG is lossless; Chrome only reads quality for lossy formats.
		if format != page.CaptureScreenshotFormatPng {
			params = params.WithQuality(int64(opts.Quality))
		}
		var err error
		buf, err = params.Do(ctx)
		return err
	})); err != nil {
		return "", fmt.Errorf("tabshot: capturing %s: %w", b.url, err)
	}
	return ItemFromImage("image/"+string(format), buf).DataURL, nil
}

// run executes actions on a chromedp context, bounded by the configured
// timeout and cancelled together with ctx.
func (b *Browser) run(ctx, chromeCtx context.Context, actions ...chromedp.Action) error {
	return b.runWithin(ctx, chromeCtx, b.cfg.timeout, actions...)
}

// runWithin is run with an explicit timeout. A zero timeout leaves ctx as
// the only bound.
func (b *Browser) runWithin(ctx, chromeCtx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(chromeCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(chromeCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (b *Browser) checkClosed() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

func screenshotFormat(name string) (page.CaptureScreenshotFormat, error) {
	switch name {
	case "", "png":
		return page.CaptureScreenshotFormatPng, nil
	case "jpeg", "jpg":
		return page.CaptureScreenshotFormatJpeg, nil
	case "webp":
		return page.CaptureScreenshotFormatWebp, nil
	}
	return "", fmt.Errorf("tabshot: unsupported capture format %q", name)
}
