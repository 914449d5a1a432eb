package tabshot

// PageSize represents paper dimensions in inches, given short side first
// the way the export format is declared ([height, width] for landscape).
type PageSize struct {
	Width  float64 // Width in inches.
	Height float64 // Height in inches.
}

// TabShotPage is the export page: 4.5 x 10 inches.
var TabShotPage = PageSize{Width: 4.5, Height: 10}

// Orientation represents the page orientation.
type Orientation int

const (
	// Landscape puts the long side horizontally. It is the default.
	Landscape Orientation = iota
	// Portrait puts the long side vertically.
	Portrait
)

// DefaultFilename is the name given to exported documents.
const DefaultFilename = "tabShot.pdf"

// PageLayout controls how the board is laid out in the exported PDF.
//
// A nil PageLayout or zero-value fields use the defaults: a 4.5 x 10 inch
// landscape page, no margin, PNG images at full quality rasterized at 3x,
// written as tabShot.pdf.
type PageLayout struct {
	// Size specifies the paper size. Defaults to TabShotPage.
	Size PageSize

	// Orientation specifies landscape or portrait. Defaults to Landscape.
	Orientation Orientation

	// Margin around each page in inches. Defaults to 0.
	Margin float64

	// RasterScale is the device scale factor used when rendering.
	// Must be between 1 and 4. Defaults to 3.
	RasterScale float64

	// ImageType is the image encoding embedded in pages. Defaults to "png".
	ImageType string

	// ImageQuality is the encoder quality between 0 and 1. Defaults to 1.
	ImageQuality float64

	// Filename of the generated document. Defaults to DefaultFilename.
	Filename string
}

// DefaultPageLayout returns the layout used when none is configured.
func DefaultPageLayout() PageLayout {
	return PageLayout{
		Size:         TabShotPage,
		Orientation:  Landscape,
		RasterScale:  3,
		ImageType:    "png",
		ImageQuality: 1,
		Filename:     DefaultFilename,
	}
}

// resolved returns a PageLayout with all zero values replaced by defaults.
func (l *PageLayout) resolved() PageLayout {
	d := DefaultPageLayout()
	if l == nil {
		return d
	}
	r := *l
	if r.Size.Width <= 0 || r.Size.Height <= 0 {
		r.Size = d.Size
	}
	if r.Margin < 0 {
		r.Margin = 0
	}
	if r.RasterScale <= 0 {
		r.RasterScale = d.RasterScale
	}
	r.RasterScale = min(max(r.RasterScale, 1), 4)
	if r.ImageType == "" {
		r.ImageType = d.ImageType
	}
	if r.ImageQuality <= 0 || r.ImageQuality > 1 {
		r.ImageQuality = d.ImageQuality
	}
	if r.Filename == "" {
		r.Filename = d.Filename
	}
	return r
}

// paperDimensions returns the paper width and height in inches,
// accounting for orientation.
func (l *PageLayout) paperDimensions() (width, height float64) {
	r := l.resolved()
	short, long := r.Size.Width, r.Size.Height
	if short > long {
		short, long = long, short
	}
	if r.Orientation == Landscape {
		return long, short
	}
	return short, long
}

// contentDimensions returns the printable area in inches.
func (l *PageLayout) contentDimensions() (width, height float64) {
	r := l.resolved()
	w, h := l.paperDimensions()
	return max(w-2*r.Margin, 0), max(h-2*r.Margin, 0)
}

const pointsPerInch = 72

func inchesToPoints(in float64) float64 {
	return in * pointsPerInch
}
