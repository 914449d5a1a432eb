package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/tabshot"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "tabshot.db", cfg.Storage.Path)
	assert.Equal(t, tabshot.DefaultStorageKey, cfg.Storage.Key)
	assert.Equal(t, "chromedp", cfg.Browser.Backend)
	assert.Equal(t, 1280, cfg.Browser.Width)
	assert.Equal(t, 800, cfg.Browser.Height)
	assert.Equal(t, 30*time.Second, cfg.Capture.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Export.Timeout)
	assert.Equal(t, "chrome", cfg.Export.Renderer)
	assert.Equal(t, tabshot.DefaultPageLayout(), cfg.PageLayout())
}

func TestParse_MergesWithDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
storage:
  driver: file
browser:
  backend: rod
  stealth: true
  no_sandbox: true
export:
  renderer: image
  orientation: portrait
  margin: 0.25
  timeout: 5s
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "tabshot-data", cfg.Storage.Path)
	assert.Equal(t, "rod", cfg.Browser.Backend)
	assert.True(t, cfg.Browser.Stealth)
	assert.Equal(t, 5*time.Second, cfg.Export.Timeout)
	assert.Len(t, cfg.BrowserOptions(), 4)

	l := cfg.PageLayout()
	assert.Equal(t, tabshot.Portrait, l.Orientation)
	assert.Equal(t, 0.25, l.Margin)
	assert.Equal(t, tabshot.TabShotPage, l.Size)

	lvl, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"driver", "storage: {driver: redis}", "storage.driver"},
		{"backend", "browser: {backend: firefox}", "browser.backend"},
		{"renderer", "export: {renderer: latex}", "export.renderer"},
		{"orientation", "export: {orientation: sideways}", "export.orientation"},
		{"margin", "export: {margin: -1}", "export.margin"},
		{"raster", "export: {raster_scale: 9}", "export.raster_scale"},
		{"level", "log: {level: loud}", "log.level"},
		{"format", "log: {format: xml}", "log.format"},
		{"rod printing", "browser: {backend: rod}\nexport: {renderer: chrome}", "chromedp backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_RodDefaultsToImageRenderer(t *testing.T) {
	cfg, err := Parse([]byte("browser: {backend: rod}"))
	require.NoError(t, err)
	assert.Equal(t, "image", cfg.Export.Renderer)
}

func TestParse_ReportsAllErrors(t *testing.T) {
	_, err := Parse([]byte("storage: {driver: redis}\nexport: {renderer: latex}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
	assert.Contains(t, err.Error(), "export.renderer")
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("storage: [unterminated"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
