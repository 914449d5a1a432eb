package tabshot

import (
	"fmt"
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultStorageKey is the key the board snapshot is stored under.
const DefaultStorageKey = "screenshots"

// EncodeSnapshot renders items as the list markup that is persisted:
// one draggable container per item holding the image and its delete
// button. The output only depends on the items, so encoding a decoded
// snapshot reproduces it exactly.
func EncodeSnapshot(items []Item) string {
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString(`<div draggable="true"><img src="`)
		sb.WriteString(html.EscapeString(it.DataURL))
		sb.WriteString(`"><button>Delete</button></div>`)
	}
	return sb.String()
}

// DecodeSnapshot parses list markup back into items. Every top-level
// container contributes the first image it holds; containers without an
// image and stray text are ignored. Extra attributes, such as an inline
// transform left over from a drag, are tolerated.
func DecodeSnapshot(markup string) ([]Item, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, nil
	}
	root := &xhtml.Node{Type: xhtml.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := xhtml.ParseFragment(strings.NewReader(markup), root)
	if err != nil {
		return nil, fmt.Errorf("tabshot: parsing snapshot: %w", err)
	}

	var items []Item
	for i, n := range nodes {
		if n.Type != xhtml.ElementNode || n.DataAtom != atom.Div {
			continue
		}
		src, ok := firstImageSrc(n)
		if !ok {
			continue
		}
		it, err := NewItem(src)
		if err != nil {
			return nil, fmt.Errorf("tabshot: snapshot entry %d: %w", i, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func firstImageSrc(n *xhtml.Node) (string, bool) {
	if n.Type == xhtml.ElementNode && n.DataAtom == atom.Img {
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == "src" {
				return a.Val, true
			}
		}
		return "", false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if src, ok := firstImageSrc(c); ok {
			return src, true
		}
	}
	return "", false
}
