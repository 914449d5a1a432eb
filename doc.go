// Package tabshot keeps an ordered board of browser tab screenshots and
// exports it as a multi-page PDF, one screenshot per page.
//
// # Board
//
// A [Board] owns the list and persists it into a [Store] under a single
// key after every mutation:
//
//	b := tabshot.NewBoard(store.NewMemory(),
//	    tabshot.WithCapturer(browser),
//	    tabshot.WithExporter(browser),
//	)
//	if err := b.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	b.Capture(ctx)    // append the visible tab
//	b.Delete(ctx, 1)  // remove the second item
//	b.Move(ctx, 1, 0) // drag the second item before the first
//
// Reordering follows the drag-and-drop sequence of a list UI:
//
//	b.DragStart(2) // pick up item 2
//	b.DragEnter(0) // hover item 0, which becomes the drop anchor
//	b.Drop(ctx)    // item 2 now sits immediately before item 0
//	b.DragEnd()
//
// [Board.View] reports what a UI shows: the empty-state title, the export
// control, the loading indicator and the scale of the dragged item.
//
// # Capture
//
// [Browser] (chromedp) and [RodBrowser] (go-rod, optional stealth) keep a
// headless tab open and capture its viewport:
//
//	br, err := tabshot.NewBrowser(tabshot.WithNoSandbox())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer br.Close()
//	br.OpenTab(ctx, "https://example.com")
//
// # Export
//
// [Board.Export] renders the list with the configured [Exporter] on a
// 10 x 4.5 inch landscape page ([DefaultPageLayout]). [Browser] prints
// through Chrome; [ImageExporter] builds the document in pure Go:
//
//	res, err := b.Export(ctx)
//	res.Save(dir) // writes tabShot.pdf
//
// [Inspect] reads a document back and reports the size and images of
// each page.
package tabshot
