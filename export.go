package tabshot

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// cssPixelsPerInch is the CSS reference resolution.
const cssPixelsPerInch = 96

// exportTemplate is the detached document an export renders: one
// page-sized container per item with the image spanning the page width.
var exportTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { size: {{.PageWidth}} {{.PageHeight}}; margin: {{.Margin}}; }
  html, body { margin: 0; padding: 0; background: white; }
  .page { width: {{.ContentWidth}}; height: {{.ContentHeight}}; overflow: hidden; break-after: page; }
  .page:last-child { break-after: auto; }
  .page img { display: block; width: 100%; max-height: 100%; object-fit: contain; object-position: top; }
</style>
</head>
<body>
<div id="downloadImages">
{{- range .Images}}
<div class="page"><img src="{{.}}"></div>
{{- end}}
</div>
</body>
</html>
`))

type exportDocument struct {
	PageWidth, PageHeight       template.CSS
	ContentWidth, ContentHeight template.CSS
	Margin                      template.CSS
	Images                      []template.URL
}

func inches(v float64) template.CSS {
	return template.CSS(fmt.Sprintf("%.3fin", v))
}

// renderExportDocument builds the HTML page an export prints.
func renderExportDocument(items []Item, layout *PageLayout) (string, error) {
	r := layout.resolved()
	w, h := r.paperDimensions()
	cw, ch := r.contentDimensions()

	doc := exportDocument{
		PageWidth:     inches(w),
		PageHeight:    inches(h),
		ContentWidth:  inches(cw),
		ContentHeight: inches(ch),
		Margin:        inches(r.Margin),
		Images:        make([]template.URL, 0, len(items)),
	}
	for i, it := range items {
		if _, err := NewItem(it.DataURL); err != nil {
			return "", fmt.Errorf("tabshot: item %d: %w", i, err)
		}
		// Validated above as a base64 image data URL.
		doc.Images = append(doc.Images, template.URL(it.DataURL))
	}

	var buf bytes.Buffer
	if err := exportTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("tabshot: rendering export document: %w", err)
	}
	return buf.String(), nil
}

// Export prints items into a PDF document, one item per page, in a fresh
// tab. The document is rendered exactly once. If layout is nil,
// [DefaultPageLayout] values are used.
//
// Printing is bounded by ctx alone; [WithTimeout] does not apply, so a
// board's export timeout governs the whole render.
func (b *Browser) Export(ctx context.Context, items []Item, layout *PageLayout) (*Result, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyBoard
	}
	resolved := layout.resolved()

	html, err := renderExportDocument(items, &resolved)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "tabshot-*.html")
	if err != nil {
		return nil, fmt.Errorf("tabshot: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return nil, fmt.Errorf("tabshot: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("tabshot: closing temp file: %w", err)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("tabshot: resolving path: %w", err)
	}

	exportCtx, exportCancel := chromedp.NewContext(b.tabCtx)
	defer exportCancel()

	width, height := resolved.paperDimensions()

	var buf []byte
	if err := b.runWithin(ctx, exportCtx, 0,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDeviceMetricsOverride(
				int64(math.Round(width*cssPixelsPerInch)),
				int64(math.Round(height*cssPixelsPerInch)),
				resolved.RasterScale,
				false,
			).Do(ctx)
		}),
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(`Array.from(document.images).every(img => img.complete)`, nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dimensions are already oriented, so landscape is left unset.
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(resolved.Margin).
				WithMarginRight(resolved.Margin).
				WithMarginBottom(resolved.Margin).
				WithMarginLeft(resolved.Margin).
				WithScale(1).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("tabshot: printing %d pages: %w", len(items), err)
	}

	return &Result{data: buf, filename: resolved.Filename, pages: len(items)}, nil
}
