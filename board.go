package tabshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Store is the key-value storage the board persists its snapshot in.
// Set must be atomic with respect to Get: a reader never observes a
// partially written value.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// CaptureOptions configures a single tab capture.
type CaptureOptions struct {
	// Format is the image encoding: "png", "jpeg" or "webp".
	Format string
	// Quality is the compression quality between 0 and 100.
	Quality int
}

// DefaultCaptureOptions returns the options the board captures with.
func DefaultCaptureOptions() CaptureOptions {
	return CaptureOptions{Format: "png", Quality: 100}
}

// Capturer captures the currently visible tab as an image data URL.
type Capturer interface {
	CaptureVisibleTab(ctx context.Context, opts CaptureOptions) (string, error)
}

// Exporter renders items into a PDF document, one item per page.
type Exporter interface {
	Export(ctx context.Context, items []Item, layout *PageLayout) (*Result, error)
}

// boardConfig holds internal configuration for a Board.
type boardConfig struct {
	key            string
	logger         *slog.Logger
	capturer       Capturer
	exporter       Exporter
	layout         PageLayout
	captureTimeout time.Duration
	exportTimeout  time.Duration
}

func defaultBoardConfig() boardConfig {
	return boardConfig{
		key:            DefaultStorageKey,
		logger:         slog.Default(),
		layout:         DefaultPageLayout(),
		captureTimeout: 30 * time.Second,
		exportTimeout:  60 * time.Second,
	}
}

// BoardOption configures a [Board].
type BoardOption func(*boardConfig)

// WithStorageKey sets the key the snapshot is stored under.
// Defaults to DefaultStorageKey.
func WithStorageKey(key string) BoardOption {
	return func(c *boardConfig) {
		if key != "" {
			c.key = key
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) BoardOption {
	return func(c *boardConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCapturer sets the tab capture backend.
func WithCapturer(cp Capturer) BoardOption {
	return func(c *boardConfig) {
		c.capturer = cp
	}
}

// WithExporter sets the PDF export backend.
func WithExporter(e Exporter) BoardOption {
	return func(c *boardConfig) {
		c.exporter = e
	}
}

// WithLayout sets the export page layout. Zero fields use the defaults.
func WithLayout(l PageLayout) BoardOption {
	return func(c *boardConfig) {
		c.layout = l.resolved()
	}
}

// WithCaptureTimeout bounds a single capture. Defaults to 30 seconds.
// A zero or negative value disables the timeout.
func WithCaptureTimeout(d time.Duration) BoardOption {
	return func(c *boardConfig) {
		c.captureTimeout = d
	}
}

// WithExportTimeout bounds a single export. Defaults to 60 seconds.
// A zero or negative value disables the timeout.
func WithExportTimeout(d time.Duration) BoardOption {
	return func(c *boardConfig) {
		c.exportTimeout = d
	}
}

// noIndex marks an unset dragged or anchor position.
const noIndex = -1

// Board is an ordered list of screenshots backed by a single storage key.
//
// The list is the source of truth; markup and views are projections of it.
// Every mutation rewrites the whole snapshot. A Board is safe for
// concurrent use; capture and export run outside the lock.
type Board struct {
	cfg   boardConfig
	store Store

	mu            sync.Mutex
	items         []Item
	titleVisible  bool
	exportVisible bool
	loading       bool
	dragging      int
	anchor        int
}

// NewBoard returns an empty board persisting into store. Call
// [Board.Load] to restore a previously saved list.
func NewBoard(store Store, opts ...BoardOption) *Board {
	cfg := defaultBoardConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Board{
		cfg:          cfg,
		store:        store,
		titleVisible: true,
		dragging:     noIndex,
		anchor:       noIndex,
	}
}

// Layout returns the page layout used for exports.
func (b *Board) Layout() PageLayout {
	return b.cfg.layout
}

// Load restores the list from storage. A missing or empty snapshot leaves
// the board empty with the empty-state title shown.
func (b *Board) Load(ctx context.Context) error {
	raw, ok, err := b.store.Get(ctx, b.cfg.key)
	if err != nil {
		return fmt.Errorf("%w: reading %q: %w", ErrPersistenceFailed, b.cfg.key, err)
	}

	var items []Item
	if ok {
		items, err = DecodeSnapshot(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = items
	b.resetDragLocked()
	b.titleVisible = len(items) == 0
	b.exportVisible = len(items) > 0
	b.cfg.logger.Debug("tabshot: board loaded", "items", len(items))
	return nil
}

// Save writes the current list to storage.
func (b *Board) Save(ctx context.Context) error {
	b.mu.Lock()
	snapshot := EncodeSnapshot(b.items)
	b.mu.Unlock()
	return b.write(ctx, snapshot)
}

// persistLocked snapshots the list while b.mu is held and writes it.
// The write happens under the lock so concurrent mutations are stored in
// the order they were applied.
func (b *Board) persistLocked(ctx context.Context) error {
	return b.write(ctx, EncodeSnapshot(b.items))
}

func (b *Board) write(ctx context.Context, snapshot string) error {
	if err := b.store.Set(ctx, b.cfg.key, snapshot); err != nil {
		b.cfg.logger.Warn("tabshot: snapshot write rejected, keeping in-memory list",
			"key", b.cfg.key, "bytes", len(snapshot), "error", err)
		return fmt.Errorf("%w: writing %q: %w", ErrPersistenceFailed, b.cfg.key, err)
	}
	return nil
}

// Snapshot returns the markup the current list persists as.
func (b *Board) Snapshot() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return EncodeSnapshot(b.items)
}

// Items returns a copy of the list in display order.
func (b *Board) Items() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Item(nil), b.items...)
}

// Len returns the number of items.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Capture grabs the visible tab and appends it as the last item.
// On failure the list is left untouched.
func (b *Board) Capture(ctx context.Context) (Item, error) {
	if b.cfg.capturer == nil {
		return Item{}, fmt.Errorf("%w: %w", ErrCaptureFailed, ErrNoCapturer)
	}

	// The timeout bounds the capture only; the snapshot write uses ctx.
	captureCtx := ctx
	if b.cfg.captureTimeout > 0 {
		var cancel context.CancelFunc
		captureCtx, cancel = context.WithTimeout(ctx, b.cfg.captureTimeout)
		defer cancel()
	}

	dataURL, err := b.cfg.capturer.CaptureVisibleTab(captureCtx, DefaultCaptureOptions())
	if err != nil {
		return Item{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	it, err := NewItem(dataURL)
	if err != nil {
		return Item{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, it)
	b.titleVisible = false
	b.exportVisible = true
	b.cfg.logger.Info("tabshot: captured", "index", len(b.items)-1, "bytes", it.Size())
	return it, b.persistLocked(ctx)
}

// Delete removes the item at index. Removing the last remaining item
// brings back the empty-state title and hides the export control.
func (b *Board) Delete(ctx context.Context, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || index >= len(b.items) {
		return fmt.Errorf("%w: delete %d of %d", ErrIndexOutOfRange, index, len(b.items))
	}
	if len(b.items) == 1 {
		b.exportVisible = false
		b.titleVisible = true
	}
	b.items = append(b.items[:index:index], b.items[index+1:]...)
	b.resetDragLocked()
	b.cfg.logger.Info("tabshot: deleted", "index", index, "remaining", len(b.items))
	return b.persistLocked(ctx)
}

// Export renders the list into a PDF document, one item per page. The
// loading flag is raised for the duration and always cleared, whether the
// export succeeds, fails or times out.
func (b *Board) Export(ctx context.Context) (*Result, error) {
	return b.ExportItems(ctx, nil)
}

// ExportItems renders the items at indices, in that order. A nil indices
// exports the whole list.
func (b *Board) ExportItems(ctx context.Context, indices []int) (*Result, error) {
	if b.cfg.exporter == nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, ErrNoExporter)
	}

	b.mu.Lock()
	items, err := b.selectLocked(indices)
	if err != nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	b.loading = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.loading = false
		b.mu.Unlock()
	}()

	if b.cfg.exportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.exportTimeout)
		defer cancel()
	}

	start := time.Now()
	layout := b.cfg.layout
	res, err := b.cfg.exporter.Export(ctx, items, &layout)
	if err != nil {
		b.cfg.logger.Error("tabshot: export failed", "items", len(items), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	b.cfg.logger.Info("tabshot: exported", "items", len(items), "bytes", res.Len(),
		"file", res.Filename(), "duration", time.Since(start))
	return res, nil
}

func (b *Board) selectLocked(indices []int) ([]Item, error) {
	if len(b.items) == 0 {
		return nil, ErrEmptyBoard
	}
	if indices == nil {
		return append([]Item(nil), b.items...), nil
	}
	if len(indices) == 0 {
		return nil, ErrEmptyBoard
	}
	items := make([]Item, 0, len(indices))
	for _, i := range indices {
		if err := b.checkIndexLocked("export", i); err != nil {
			return nil, err
		}
		items = append(items, b.items[i])
	}
	return items, nil
}
