package tabshot

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	valid := testItem(t, 1).DataURL
	_, err := NewItem(valid)
	require.NoError(t, err)

	invalid := []string{
		"",
		"iVBORw0KGgo=",
		"data:image/png,rawpayload",
		"data:image/png;base64",
		"data:image/png;base64,",
		"data:text/plain;base64,aGVsbG8=",
		"https://example.com/shot.png",
	}
	for _, in := range invalid {
		_, err := NewItem(in)
		assert.ErrorIs(t, err, ErrInvalidDataURL, "input %q", in)
	}
}

func TestItemFromImage_Decode(t *testing.T) {
	data := testPNG(t, 7, 4, 3)
	it := ItemFromImage("image/png", data)

	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data), it.DataURL)
	assert.Equal(t, "image/png", it.MediaType())

	mt, got, err := it.Decode()
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)
	assert.Equal(t, data, got)
	assert.Equal(t, len(data), it.Size())
}

func TestItem_Config(t *testing.T) {
	it := ItemFromImage("image/png", testPNG(t, 1, 32, 18))
	cfg, format, err := it.Config()
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 18, cfg.Height)
}

func TestItem_DecodeBadBase64(t *testing.T) {
	it := Item{DataURL: "data:image/png;base64,!!!"}
	_, _, err := it.Decode()
	assert.ErrorIs(t, err, ErrInvalidDataURL)
	assert.Empty(t, Item{DataURL: "nope"}.MediaType())
	assert.Zero(t, Item{DataURL: "nope"}.Size())
}

func TestItem_SizeWithPadding(t *testing.T) {
	for n := 1; n <= 6; n++ {
		it := ItemFromImage("image/png", make([]byte, n))
		assert.Equal(t, n, it.Size(), "payload of %d bytes", n)
	}
}
