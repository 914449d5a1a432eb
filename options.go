package tabshot

import (
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/launcher"
)

// browserConfig holds internal configuration for a Browser or RodBrowser.
type browserConfig struct {
	chromePath     string
	timeout        time.Duration
	noSandbox      bool
	headless       string
	autoDownload   bool
	stealth        bool
	viewportWidth  int
	viewportHeight int
}

func defaultConfig() browserConfig {
	return browserConfig{
		timeout:        30 * time.Second,
		headless:       "new",
		viewportWidth:  1280,
		viewportHeight: 800,
	}
}

// Option configures a [Browser] or a [RodBrowser].
type Option func(*browserConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *browserConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for a single navigation, capture
// or export. Defaults to 30 seconds. A zero or negative value disables
// the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *browserConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *browserConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload fetches a compatible Chromium build when no path is
// configured. The binary is cached between runs.
func WithAutoDownload() Option {
	return func(c *browserConfig) {
		c.autoDownload = true
	}
}

// WithStealth opens tabs with automation fingerprints masked.
// Only the rod backend honors it.
func WithStealth() Option {
	return func(c *browserConfig) {
		c.stealth = true
	}
}

// WithViewport sets the size in CSS pixels of the visible tab area that
// gets captured. Defaults to 1280x800.
func WithViewport(width, height int) Option {
	return func(c *browserConfig) {
		if width > 0 && height > 0 {
			c.viewportWidth = width
			c.viewportHeight = height
		}
	}
}

func newBrowserConfig(opts []Option) (browserConfig, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.chromePath == "" && cfg.autoDownload {
		// Cached under ~/.cache/rod/browser after the first run.
		path, err := launcher.NewBrowser().Get()
		if err != nil {
			return cfg, fmt.Errorf("tabshot: downloading browser: %w", err)
		}
		cfg.chromePath = path
	}
	return cfg, nil
}
