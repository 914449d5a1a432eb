package tabshot

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageExporter_OnePagePerItem(t *testing.T) {
	items := []Item{
		ItemFromImage("image/png", testPNG(t, 1, 160, 90)),
		ItemFromImage("image/png", testPNG(t, 2, 90, 160)),
		ItemFromImage("image/png", testPNG(t, 3, 64, 64)),
	}

	res, err := NewImageExporter().Export(context.Background(), items, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.Bytes(), []byte("%PDF-")))
	assert.Equal(t, DefaultFilename, res.Filename())
	assert.Equal(t, 3, res.Pages())

	pages, err := Inspect(res.Bytes())
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, p := range pages {
		assert.InDelta(t, 10, p.WidthInches(), 0.01, "page %d width", i)
		assert.InDelta(t, 4.5, p.HeightInches(), 0.01, "page %d height", i)
		assert.Equal(t, 1, p.Images, "page %d images", i)
	}
}

func TestImageExporter_PagesFollowBoardOrder(t *testing.T) {
	ctx := context.Background()
	sizes := []image.Point{{X: 160, Y: 90}, {X: 120, Y: 60}, {X: 80, Y: 40}}
	var shots []Item
	for i, sz := range sizes {
		shots = append(shots, ItemFromImage("image/png", testPNG(t, uint8(i+1), sz.X, sz.Y)))
	}
	b, _, _ := newTestBoard(t, shots...)
	b.cfg.exporter = NewImageExporter()

	captureN(t, b, 3)
	require.NoError(t, b.Delete(ctx, 1))
	require.NoError(t, b.Move(ctx, 1, 0))

	res, err := b.Export(ctx)
	require.NoError(t, err)
	pages, err := Inspect(res.Bytes())
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, []image.Point{sizes[2]}, pages[0].ImageSizes)
	assert.Equal(t, []image.Point{sizes[0]}, pages[1].ImageSizes)
}

func TestImageExporter_PortraitLayout(t *testing.T) {
	items := []Item{testItem(t, 1)}
	res, err := NewImageExporter().Export(context.Background(), items,
		&PageLayout{Orientation: Portrait, Filename: "portrait.pdf", Margin: 0.5})
	require.NoError(t, err)
	assert.Equal(t, "portrait.pdf", res.Filename())

	pages, err := Inspect(res.Bytes())
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.InDelta(t, 4.5, pages[0].WidthInches(), 0.01)
	assert.InDelta(t, 10, pages[0].HeightInches(), 0.01)
}

func TestImageExporter_Errors(t *testing.T) {
	e := NewImageExporter()

	_, err := e.Export(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrEmptyBoard)

	_, err = e.Export(context.Background(), []Item{{DataURL: "data:image/png;base64,!!"}}, nil)
	assert.ErrorIs(t, err, ErrInvalidDataURL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Export(ctx, []Item{testItem(t, 1)}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageImage(t *testing.T) {
	png := testPNG(t, 5, 8, 8)
	got, err := pageImage(ItemFromImage("image/png", png))
	require.NoError(t, err)
	assert.Equal(t, png, got, "png passes through")

	// GIF is re-encoded as PNG through the image registry.
	gifData := testGIF(t)
	got, err = pageImage(ItemFromImage("image/gif", gifData))
	require.NoError(t, err)
	_, format, err := image.DecodeConfig(bytes.NewReader(got))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	_, err = pageImage(ItemFromImage("image/bmp", []byte("not an image")))
	assert.Error(t, err)
}

func TestInspect_RejectsGarbage(t *testing.T) {
	_, err := Inspect([]byte("definitely not a pdf"))
	assert.Error(t, err)
}

func testGIF(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}
