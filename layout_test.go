package tabshot

import (
	"math"
	"testing"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestDefaultPageLayout(t *testing.T) {
	d := DefaultPageLayout()
	if d.Size != TabShotPage {
		t.Errorf("default size = %v, want TabShotPage", d.Size)
	}
	if d.Orientation != Landscape {
		t.Errorf("default orientation = %v, want Landscape", d.Orientation)
	}
	if d.Margin != 0 {
		t.Errorf("default margin = %v, want 0", d.Margin)
	}
	if d.RasterScale != 3 {
		t.Errorf("default raster scale = %v, want 3", d.RasterScale)
	}
	if d.ImageType != "png" || d.ImageQuality != 1 {
		t.Errorf("default image = %s@%v, want png@1", d.ImageType, d.ImageQuality)
	}
	if d.Filename != "tabShot.pdf" {
		t.Errorf("default filename = %q, want tabShot.pdf", d.Filename)
	}
}

func TestPageLayoutResolved_Nil(t *testing.T) {
	var l *PageLayout
	if r := l.resolved(); r != DefaultPageLayout() {
		t.Errorf("nil resolved = %+v, want %+v", r, DefaultPageLayout())
	}
}

func TestPageLayoutResolved_ZeroValues(t *testing.T) {
	r := (&PageLayout{}).resolved()
	if r != DefaultPageLayout() {
		t.Errorf("zero resolved = %+v, want %+v", r, DefaultPageLayout())
	}
}

func TestPageLayoutResolved_Clamps(t *testing.T) {
	r := (&PageLayout{RasterScale: 12, Margin: -1, ImageQuality: 7}).resolved()
	if r.RasterScale != 4 {
		t.Errorf("raster scale = %v, want 4", r.RasterScale)
	}
	if r.Margin != 0 {
		t.Errorf("margin = %v, want 0", r.Margin)
	}
	if r.ImageQuality != 1 {
		t.Errorf("quality = %v, want 1", r.ImageQuality)
	}

	r = (&PageLayout{RasterScale: 0.5}).resolved()
	if r.RasterScale != 1 {
		t.Errorf("raster scale = %v, want 1", r.RasterScale)
	}
}

func TestPageLayoutResolved_PreservesExplicit(t *testing.T) {
	l := &PageLayout{
		Size:        PageSize{Width: 8.5, Height: 11},
		Orientation: Portrait,
		Margin:      0.5,
		RasterScale: 2,
		Filename:    "board.pdf",
	}
	r := l.resolved()
	if r.Size != l.Size || r.Orientation != Portrait || r.Margin != 0.5 ||
		r.RasterScale != 2 || r.Filename != "board.pdf" {
		t.Errorf("resolved = %+v, want explicit values kept", r)
	}
}

func TestPaperDimensions_Landscape(t *testing.T) {
	w, h := (&PageLayout{}).paperDimensions()
	if w != 10 || h != 4.5 {
		t.Errorf("landscape = %v x %v, want 10 x 4.5", w, h)
	}
	if w <= h {
		t.Error("landscape page must be wider than tall")
	}

	// The declared order of the size does not matter.
	w, h = (&PageLayout{Size: PageSize{Width: 10, Height: 4.5}}).paperDimensions()
	if w != 10 || h != 4.5 {
		t.Errorf("swapped size landscape = %v x %v, want 10 x 4.5", w, h)
	}
}

func TestPaperDimensions_Portrait(t *testing.T) {
	w, h := (&PageLayout{Orientation: Portrait}).paperDimensions()
	if w != 4.5 || h != 10 {
		t.Errorf("portrait = %v x %v, want 4.5 x 10", w, h)
	}
}

func TestContentDimensions(t *testing.T) {
	w, h := (&PageLayout{Margin: 0.25}).contentDimensions()
	if !almostEqual(w, 9.5, 0.001) || !almostEqual(h, 4.0, 0.001) {
		t.Errorf("content = %v x %v, want 9.5 x 4.0", w, h)
	}
	w, h = (&PageLayout{Margin: 10}).contentDimensions()
	if w != 0 || h != 0 {
		t.Errorf("oversized margin content = %v x %v, want 0 x 0", w, h)
	}
}

func TestInchesToPoints(t *testing.T) {
	if got := inchesToPoints(10); got != 720 {
		t.Errorf("inchesToPoints(10) = %v, want 720", got)
	}
	if got := inchesToPoints(4.5); !almostEqual(got, 324, 0.001) {
		t.Errorf("inchesToPoints(4.5) = %v, want 324", got)
	}
}
