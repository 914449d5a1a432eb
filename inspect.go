package tabshot

import (
	"bytes"
	"fmt"
	"image"
	"slices"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageInfo describes one page of an exported document.
type PageInfo struct {
	Width  float64 // in points
	Height float64 // in points
	Images int     // image XObjects drawn on the page

	// ImageSizes holds the pixel dimensions of each image, ordered by
	// object number.
	ImageSizes []image.Point
}

// WidthInches returns the page width in inches.
func (p PageInfo) WidthInches() float64 { return p.Width / pointsPerInch }

// HeightInches returns the page height in inches.
func (p PageInfo) HeightInches() float64 { return p.Height / pointsPerInch }

// Inspect reads a PDF document and reports the geometry and image count
// of each page, in page order.
func Inspect(data []byte) ([]PageInfo, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("tabshot: reading pdf: %w", err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("tabshot: reading page sizes: %w", err)
	}

	pages := make([]PageInfo, ctx.PageCount)
	for i := range pages {
		if i < len(dims) {
			pages[i].Width = dims[i].Width
			pages[i].Height = dims[i].Height
		}
		objNrs := pdfcpu.ImageObjNrs(ctx, i+1)
		slices.Sort(objNrs)
		pages[i].Images = len(objNrs)
		for _, nr := range objNrs {
			size, err := imageSize(ctx, nr)
			if err != nil {
				return nil, fmt.Errorf("tabshot: page %d: %w", i+1, err)
			}
			pages[i].ImageSizes = append(pages[i].ImageSizes, size)
		}
	}
	return pages, nil
}

func imageSize(ctx *model.Context, objNr int) (image.Point, error) {
	obj, err := ctx.FindObject(objNr)
	if err != nil {
		return image.Point{}, err
	}
	sd, _, err := ctx.DereferenceStreamDict(obj)
	if err != nil {
		return image.Point{}, err
	}
	if sd == nil {
		return image.Point{}, fmt.Errorf("image object %d is empty", objNr)
	}
	w, h := sd.IntEntry("Width"), sd.IntEntry("Height")
	if w == nil || h == nil {
		return image.Point{}, fmt.Errorf("image object %d has no dimensions", objNr)
	}
	return image.Point{X: *w, Y: *h}, nil
}
