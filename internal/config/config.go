// Package config loads the tabshot application configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/porticus-lab/tabshot"
)

// Config is the top-level tabshot configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Browser BrowserConfig `yaml:"browser"`
	Capture CaptureConfig `yaml:"capture"`
	Export  ExportConfig  `yaml:"export"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects where the board snapshot lives.
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite | file | memory
	Path   string `yaml:"path"`   // database file or directory
	Key    string `yaml:"key"`
}

// BrowserConfig controls the headless browser holding the visible tab.
type BrowserConfig struct {
	Backend      string        `yaml:"backend"` // chromedp | rod
	ChromePath   string        `yaml:"chrome_path"`
	NoSandbox    bool          `yaml:"no_sandbox"`
	AutoDownload bool          `yaml:"auto_download"`
	Stealth      bool          `yaml:"stealth"`
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
	Timeout      time.Duration `yaml:"timeout"`
	StartURL     string        `yaml:"start_url"`
}

// CaptureConfig bounds a single capture.
type CaptureConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// ExportConfig controls PDF export.
type ExportConfig struct {
	Renderer    string        `yaml:"renderer"`    // chrome | image
	PageWidth   float64       `yaml:"page_width"`  // inches
	PageHeight  float64       `yaml:"page_height"` // inches
	Orientation string        `yaml:"orientation"` // landscape | portrait
	Margin      float64       `yaml:"margin"`
	RasterScale float64       `yaml:"raster_scale"`
	Filename    string        `yaml:"filename"`
	// Timeout bounds a whole export, Chrome printing included.
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig controls the HTTP UI.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // auto | json | text
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file. Fields left out of the file
// keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case "sqlite":
			c.Storage.Path = "tabshot.db"
		case "file":
			c.Storage.Path = "tabshot-data"
		}
	}
	if c.Storage.Key == "" {
		c.Storage.Key = tabshot.DefaultStorageKey
	}
	if c.Browser.Backend == "" {
		c.Browser.Backend = "chromedp"
	}
	if c.Browser.Width <= 0 {
		c.Browser.Width = 1280
	}
	if c.Browser.Height <= 0 {
		c.Browser.Height = 800
	}
	if c.Browser.Timeout <= 0 {
		c.Browser.Timeout = 30 * time.Second
	}
	if c.Browser.StartURL == "" {
		c.Browser.StartURL = "about:blank"
	}
	if c.Capture.Timeout <= 0 {
		c.Capture.Timeout = 30 * time.Second
	}

	d := tabshot.DefaultPageLayout()
	if c.Export.Renderer == "" {
		// Only the chromedp backend can print.
		c.Export.Renderer = "chrome"
		if c.Browser.Backend == "rod" {
			c.Export.Renderer = "image"
		}
	}
	if c.Export.PageWidth <= 0 || c.Export.PageHeight <= 0 {
		c.Export.PageWidth = d.Size.Width
		c.Export.PageHeight = d.Size.Height
	}
	if c.Export.Orientation == "" {
		c.Export.Orientation = "landscape"
	}
	if c.Export.RasterScale <= 0 {
		c.Export.RasterScale = d.RasterScale
	}
	if c.Export.Filename == "" {
		c.Export.Filename = d.Filename
	}
	if c.Export.Timeout <= 0 {
		c.Export.Timeout = 60 * time.Second
	}

	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8765"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "auto"
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "sqlite", "file", "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	switch c.Browser.Backend {
	case "chromedp", "rod":
	default:
		errs = append(errs, fmt.Errorf("browser.backend: unknown backend %q", c.Browser.Backend))
	}
	switch c.Export.Renderer {
	case "chrome", "image":
	default:
		errs = append(errs, fmt.Errorf("export.renderer: unknown renderer %q", c.Export.Renderer))
	}
	if c.Export.Renderer == "chrome" && c.Browser.Backend == "rod" {
		errs = append(errs, errors.New("export.renderer: chrome needs the chromedp backend"))
	}
	switch c.Export.Orientation {
	case "landscape", "portrait":
	default:
		errs = append(errs, fmt.Errorf("export.orientation: unknown orientation %q", c.Export.Orientation))
	}
	if c.Export.Margin < 0 {
		errs = append(errs, fmt.Errorf("export.margin: must not be negative, got %g", c.Export.Margin))
	}
	if c.Export.RasterScale < 1 || c.Export.RasterScale > 4 {
		errs = append(errs, fmt.Errorf("export.raster_scale: must be between 1 and 4, got %g", c.Export.RasterScale))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "auto", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// PageLayout converts the export settings into a [tabshot.PageLayout].
func (c *Config) PageLayout() tabshot.PageLayout {
	l := tabshot.DefaultPageLayout()
	l.Size = tabshot.PageSize{Width: c.Export.PageWidth, Height: c.Export.PageHeight}
	if c.Export.Orientation == "portrait" {
		l.Orientation = tabshot.Portrait
	}
	l.Margin = c.Export.Margin
	l.RasterScale = c.Export.RasterScale
	l.Filename = c.Export.Filename
	return l
}

// BrowserOptions converts the browser settings into [tabshot.Option]s.
func (c *Config) BrowserOptions() []tabshot.Option {
	opts := []tabshot.Option{
		tabshot.WithTimeout(c.Browser.Timeout),
		tabshot.WithViewport(c.Browser.Width, c.Browser.Height),
	}
	if c.Browser.ChromePath != "" {
		opts = append(opts, tabshot.WithChromePath(c.Browser.ChromePath))
	}
	if c.Browser.NoSandbox {
		opts = append(opts, tabshot.WithNoSandbox())
	}
	if c.Browser.AutoDownload {
		opts = append(opts, tabshot.WithAutoDownload())
	}
	if c.Browser.Stealth {
		opts = append(opts, tabshot.WithStealth())
	}
	return opts
}

// SlogLevel parses the configured log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
