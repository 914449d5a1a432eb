package tabshot

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardWith(t *testing.T, n int) (*Board, []Item) {
	t.Helper()
	items := make([]Item, n)
	for i := range items {
		items[i] = testItem(t, uint8(10*i+1))
	}
	b, _, _ := newTestBoard(t, items...)
	captureN(t, b, n)
	return b, items
}

func TestDrag_StateMachine(t *testing.T) {
	b, _ := boardWith(t, 3)

	assert.False(t, b.DragOver(), "no drop without a drag")

	require.NoError(t, b.DragStart(1))
	v := b.View()
	assert.Equal(t, 1, v.Dragging)
	assert.Equal(t, 1.1, v.Items[1].Scale)
	assert.Equal(t, 1.0, v.Items[0].Scale)
	assert.True(t, b.DragOver())

	require.NoError(t, b.DragEnter(2))
	require.NoError(t, b.DragEnter(0))
	assert.Equal(t, 0, b.View().Anchor, "last entered wins")

	b.DragEnd()
	v = b.View()
	assert.Equal(t, -1, v.Dragging)
	assert.Equal(t, -1, v.Anchor)
	for _, iv := range v.Items {
		assert.Equal(t, 1.0, iv.Scale)
	}
}

func TestDrag_Drop(t *testing.T) {
	tests := []struct {
		name   string
		from   int
		anchor int // -1 for none
		want   []int
	}{
		{"last before first", 2, 0, []int{2, 0, 1}},
		{"first before last", 0, 2, []int{1, 0, 2}},
		{"middle before first", 1, 0, []int{1, 0, 2}},
		{"onto itself", 1, 1, []int{0, 1, 2}},
		{"onto the next item", 0, 1, []int{0, 1, 2}},
		{"no anchor appends", 0, -1, []int{1, 2, 0}},
		{"no anchor on last", 2, -1, []int{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, items := boardWith(t, 3)
			ctx := context.Background()

			require.NoError(t, b.DragStart(tt.from))
			if tt.anchor >= 0 {
				require.NoError(t, b.DragEnter(tt.anchor))
			}
			require.NoError(t, b.Drop(ctx))

			want := make([]Item, len(tt.want))
			for i, idx := range tt.want {
				want[i] = items[idx]
			}
			assert.Equal(t, want, b.Items())

			v := b.View()
			assert.Equal(t, -1, v.Anchor, "anchor cleared after drop")
			assert.Equal(t, items[tt.from], v.Items[v.Dragging].Item, "dragged index follows the item")
			b.DragEnd()
		})
	}
}

func TestDrop_PlacesDraggedImmediatelyBeforeAnchor(t *testing.T) {
	for from := 0; from < 4; from++ {
		for anchor := 0; anchor < 4; anchor++ {
			b, items := boardWith(t, 4)
			require.NoError(t, b.DragStart(from))
			require.NoError(t, b.DragEnter(anchor))
			require.NoError(t, b.Drop(context.Background()))
			b.DragEnd()

			got := b.Items()
			require.Len(t, got, 4)
			if from == anchor {
				assert.Equal(t, items, got)
				continue
			}
			pos := -1
			for i, it := range got {
				if it == items[from] {
					pos = i
				}
			}
			require.GreaterOrEqual(t, pos, 0)
			require.Less(t, pos+1, len(got))
			assert.Equal(t, items[anchor], got[pos+1], "from %d anchor %d", from, anchor)
		}
	}
}

func TestDrop_WithoutDragIsNoop(t *testing.T) {
	b, items := boardWith(t, 2)
	require.NoError(t, b.DragEnter(0))
	require.NoError(t, b.Drop(context.Background()))
	assert.Equal(t, items, b.Items())
}

func TestDrop_Persists(t *testing.T) {
	b, st, _ := newTestBoard(t, testItem(t, 1), testItem(t, 2))
	captureN(t, b, 2)

	require.NoError(t, b.DragStart(1))
	require.NoError(t, b.DragEnter(0))
	require.NoError(t, b.Drop(context.Background()))
	assertPersisted(t, b, st)
}

func TestDrag_IndexOutOfRange(t *testing.T) {
	b, _ := boardWith(t, 2)
	assert.ErrorIs(t, b.DragStart(2), ErrIndexOutOfRange)
	assert.ErrorIs(t, b.DragStart(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, b.DragEnter(5), ErrIndexOutOfRange)
	assert.Equal(t, -1, b.View().Dragging)
}

func TestMove(t *testing.T) {
	ctx := context.Background()

	t.Run("before an item", func(t *testing.T) {
		b, items := boardWith(t, 3)
		require.NoError(t, b.Move(ctx, 2, 0))
		assert.Equal(t, []Item{items[2], items[0], items[1]}, b.Items())
		assert.Equal(t, -1, b.View().Dragging, "drag ended")
	})

	t.Run("to the end", func(t *testing.T) {
		b, items := boardWith(t, 3)
		require.NoError(t, b.Move(ctx, 0, 3))
		assert.Equal(t, []Item{items[1], items[2], items[0]}, b.Items())
	})

	t.Run("invalid positions", func(t *testing.T) {
		b, items := boardWith(t, 3)
		assert.ErrorIs(t, b.Move(ctx, 3, 0), ErrIndexOutOfRange)
		assert.ErrorIs(t, b.Move(ctx, 0, 4), ErrIndexOutOfRange)
		assert.Equal(t, items, b.Items())
		assert.Equal(t, -1, b.View().Dragging)
	})
}

func TestMove_Concurrent(t *testing.T) {
	ctx := context.Background()
	b, items := boardWith(t, 3)

	// Each move sends the head to the tail; 50 rotations of 3 items
	// leave the list rotated by 2.
	const moves = 50
	var wg sync.WaitGroup
	errs := make([]error, moves)
	for i := range moves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = b.Move(ctx, 0, 3)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, []Item{items[2], items[0], items[1]}, b.Items())
	assert.Equal(t, -1, b.View().Dragging)
}

func TestMove_AfterDeleteUsesCurrentIndices(t *testing.T) {
	ctx := context.Background()
	b, items := boardWith(t, 3)

	require.NoError(t, b.Delete(ctx, 0))
	assert.ErrorIs(t, b.Move(ctx, 2, 0), ErrIndexOutOfRange)
	require.NoError(t, b.Move(ctx, 1, 0))
	assert.Equal(t, []Item{items[2], items[1]}, b.Items())
}
