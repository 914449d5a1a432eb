package tabshot

import (
	"context"
	"fmt"
)

// Scale applied to an item while it is being dragged.
const (
	dragScale = 1.1
	restScale = 1.0
)

// View is the visible state of the board, derived from the list and the
// drag state machine.
type View struct {
	TitleVisible  bool       // empty-state title
	ExportVisible bool       // export control
	Loading       bool       // export in progress
	Dragging      int        // index of the dragged item, -1 when idle
	Anchor        int        // index of the drop anchor, -1 when unset
	Items         []ItemView // list in display order
}

// ItemView is the projection of one item.
type ItemView struct {
	Index int
	Item  Item
	Scale float64
}

// View returns the current visible state.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := View{
		TitleVisible:  b.titleVisible,
		ExportVisible: b.exportVisible,
		Loading:       b.loading,
		Dragging:      b.dragging,
		Anchor:        b.anchor,
		Items:         make([]ItemView, len(b.items)),
	}
	for i, it := range b.items {
		scale := restScale
		if i == b.dragging {
			scale = dragScale
		}
		v.Items[i] = ItemView{Index: i, Item: it, Scale: scale}
	}
	return v
}

// DragStart marks the item at index as being dragged. Nothing is persisted.
func (b *Board) DragStart(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkIndexLocked("drag", index); err != nil {
		return err
	}
	b.dragging = index
	b.anchor = noIndex
	return nil
}

// DragEnter tags the item at index as the drop anchor. The last entered
// item wins; at most one anchor exists.
func (b *Board) DragEnter(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkIndexLocked("drag enter", index); err != nil {
		return err
	}
	b.anchor = index
	return nil
}

// DragOver reports whether a drop is currently accepted.
func (b *Board) DragOver() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dragging != noIndex
}

// Drop moves the dragged item immediately before the anchor, or to the
// end of the list when no anchor is set, then clears the anchor and
// persists. Dropping onto the dragged item itself leaves the order as is.
// Without a drag in progress Drop does nothing.
func (b *Board) Drop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dragging == noIndex {
		return nil
	}
	return b.dropLocked(ctx)
}

func (b *Board) dropLocked(ctx context.Context) error {
	from := b.dragging
	it := b.items[from]
	rest := append(b.items[:from:from], b.items[from+1:]...)

	to := len(rest)
	if b.anchor != noIndex {
		to = b.anchor
		if from < b.anchor {
			to--
		}
	}
	b.items = append(rest[:to:to], append([]Item{it}, rest[to:]...)...)
	b.dragging = to
	b.anchor = noIndex
	b.cfg.logger.Debug("tabshot: reordered", "from", from, "to", to)
	return b.persistLocked(ctx)
}

// DragEnd restores the dragged item's scale and resets the drag state.
func (b *Board) DragEnd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetDragLocked()
}

// Move runs a complete drag of the item at from onto the item at before.
// A before equal to the list length appends to the end. The whole drag
// happens under one lock, so indices cannot shift halfway through.
func (b *Board) Move(ctx context.Context, from, before int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkIndexLocked("move", from); err != nil {
		return err
	}
	anchor := noIndex
	if before != len(b.items) {
		if err := b.checkIndexLocked("move before", before); err != nil {
			return err
		}
		anchor = before
	}
	b.dragging = from
	b.anchor = anchor
	defer b.resetDragLocked()
	return b.dropLocked(ctx)
}

func (b *Board) checkIndexLocked(op string, index int) error {
	if index < 0 || index >= len(b.items) {
		return fmt.Errorf("%w: %s %d of %d", ErrIndexOutOfRange, op, index, len(b.items))
	}
	return nil
}

func (b *Board) resetDragLocked() {
	b.dragging = noIndex
	b.anchor = noIndex
}
