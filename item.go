package tabshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

const dataURLPrefix = "data:"

// Item is one captured screenshot. Its identity is its position in the
// board; two items holding the same image are still distinct entries.
type Item struct {
	// DataURL is the image encoded as data:image/<type>;base64,<payload>.
	DataURL string
}

// NewItem validates dataURL and returns the corresponding Item.
func NewItem(dataURL string) (Item, error) {
	it := Item{DataURL: dataURL}
	if _, _, err := it.split(); err != nil {
		return Item{}, err
	}
	return it, nil
}

// ItemFromImage encodes raw image bytes of the given media type
// (for example "image/png") as an Item.
func ItemFromImage(mediaType string, data []byte) Item {
	return Item{DataURL: dataURLPrefix + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)}
}

// MediaType returns the media type declared by the data URL, or "" when
// the URL is malformed.
func (it Item) MediaType() string {
	mt, _, err := it.split()
	if err != nil {
		return ""
	}
	return mt
}

// Decode returns the media type and the decoded image bytes.
func (it Item) Decode() (string, []byte, error) {
	mt, payload, err := it.split()
	if err != nil {
		return "", nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}
	return mt, data, nil
}

// Config decodes the image header and returns its dimensions and format
// name ("png", "jpeg" or "webp").
func (it Item) Config() (image.Config, string, error) {
	_, data, err := it.Decode()
	if err != nil {
		return image.Config{}, "", err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("tabshot: decoding image header: %w", err)
	}
	return cfg, format, nil
}

// Size returns the number of decoded image bytes, estimated from the
// base64 payload length.
func (it Item) Size() int {
	_, payload, err := it.split()
	if err != nil {
		return 0
	}
	return base64.StdEncoding.DecodedLen(len(payload)) - strings.Count(payload[max(0, len(payload)-2):], "=")
}

// split returns the media type and the base64 payload of the data URL.
// Only base64-encoded image data URLs are accepted.
func (it Item) split() (mediaType, payload string, err error) {
	rest, ok := strings.CutPrefix(it.DataURL, dataURLPrefix)
	if !ok {
		return "", "", fmt.Errorf("%w: missing %q scheme", ErrInvalidDataURL, dataURLPrefix)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("%w: missing payload separator", ErrInvalidDataURL)
	}
	mediaType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", fmt.Errorf("%w: payload is not base64", ErrInvalidDataURL)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", "", fmt.Errorf("%w: media type %q is not an image", ErrInvalidDataURL, mediaType)
	}
	if payload == "" {
		return "", "", fmt.Errorf("%w: empty payload", ErrInvalidDataURL)
	}
	return mediaType, payload, nil
}
