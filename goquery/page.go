// Package goquery implements artex.Page over static HTML using goquery.
package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/artex"
	"golang.org/x/net/html"
)

// Ensure Page implements artex.Page at compile time.
var _ artex.Page = (*Page)(nil)

// Page is a parsed, static HTML document. It never executes JavaScript.
// Page is safe for concurrent reads.
type Page struct {
	url string
	doc *goquery.Document
}

// NewPage parses rawHTML as the document located at url.
func NewPage(url, rawHTML string) (*Page, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, artex.Errorf(artex.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Page{url: url, doc: goquery.NewDocumentFromNode(root)}, nil
}

// URL returns the document URL.
func (p *Page) URL() string {
	return p.url
}

// QueryAll returns all elements matching selector in document order.
func (p *Page) QueryAll(ctx context.Context, selector string) ([]artex.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := compile(selector)
	if err != nil {
		return nil, err
	}

	var elems []artex.Element
	p.doc.FindMatcher(m).Each(func(_ int, s *goquery.Selection) {
		elems = append(elems, &Element{sel: s})
	})
	return elems, nil
}

// Close is a no-op; static pages hold no external resources.
func (p *Page) Close() error {
	return nil
}

// Ensure Element implements artex.Element at compile time.
var _ artex.Element = (*Element)(nil)

// Element wraps a single-node goquery selection.
type Element struct {
	sel *goquery.Selection
}

// Text returns the combined text of the element and its descendants.
func (e *Element) Text(_ context.Context) (string, error) {
	return e.sel.Text(), nil
}

// Attribute returns the named attribute and whether it is present.
func (e *Element) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

// Within reports whether the element or an ancestor matches selector.
func (e *Element) Within(_ context.Context, selector string) (bool, error) {
	m, err := compile(selector)
	if err != nil {
		return false, err
	}
	return e.sel.ClosestMatcher(m).Length() > 0, nil
}

// compile parses a CSS selector. goquery silently matches nothing for
// invalid selectors, so selectors are compiled up front to surface errors.
func compile(selector string) (cascadia.Selector, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, artex.Errorf(artex.EINVALID, "invalid selector %q: %v", selector, err)
	}
	return m, nil
}
