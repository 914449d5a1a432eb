package tabshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/webp"
)

// ImageExporter is a pure Go [Exporter]: it places each image on its own
// page with pdfcpu, centred and scaled to fit. No browser is needed.
type ImageExporter struct {
	conf *model.Configuration
}

// NewImageExporter returns an ImageExporter using pdfcpu's default
// configuration.
func NewImageExporter() *ImageExporter {
	return &ImageExporter{conf: model.NewDefaultConfiguration()}
}

// Export implements [Exporter].
func (e *ImageExporter) Export(ctx context.Context, items []Item, layout *PageLayout) (*Result, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBoard
	}
	r := layout.resolved()

	images := make([]io.Reader, 0, len(items))
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := pageImage(it)
		if err != nil {
			return nil, fmt.Errorf("tabshot: item %d: %w", i, err)
		}
		images = append(images, bytes.NewReader(data))
	}

	w, h := r.paperDimensions()
	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &types.Dim{Width: inchesToPoints(w), Height: inchesToPoints(h)}
	imp.UserDim = true
	imp.Pos = types.Center
	imp.Scale = 1
	imp.ScaleAbs = false
	if r.Margin > 0 {
		// Relative scaling fits the image to the page; shrink it by the margin.
		imp.Scale = min((w-2*r.Margin)/w, (h-2*r.Margin)/h)
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, images, imp, e.conf); err != nil {
		return nil, fmt.Errorf("tabshot: importing %d images: %w", len(images), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Result{data: buf.Bytes(), filename: r.Filename, pages: len(items)}, nil
}

// pageImage returns image bytes pdfcpu can embed. PNG and JPEG pass
// through unchanged; WebP captures are re-encoded as PNG.
func pageImage(it Item) ([]byte, error) {
	mt, data, err := it.Decode()
	if err != nil {
		return nil, err
	}
	switch mt {
	case "image/png", "image/jpeg":
		return data, nil
	case "image/webp":
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding webp: %w", err)
		}
		return encodePNG(img)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported image type %q: %w", mt, err)
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
