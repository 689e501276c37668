package rod

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/artex"
	"github.com/go-rod/rod"
)

// Ensure Page implements artex.Page at compile time.
var _ artex.Page = (*Page)(nil)

// Page is a live browser tab. Queries run against the current DOM, so
// content rendered after load is visible.
type Page struct {
	page *rod.Page
	url  string
}

// URL returns the page URL after redirects.
func (p *Page) URL() string {
	return p.url
}

// QueryAll returns all elements matching selector in document order.
func (p *Page) QueryAll(ctx context.Context, selector string) ([]artex.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, queryError(selector, err)
	}
	elems := make([]artex.Element, 0, len(found))
	for _, el := range found {
		elems = append(elems, &Element{el: el})
	}
	return elems, nil
}

// Close closes the browser tab.
func (p *Page) Close() error {
	return p.page.Close()
}

// Ensure Element implements artex.Element at compile time.
var _ artex.Element = (*Element)(nil)

// Element is a handle to a DOM node in a live page.
type Element struct {
	el *rod.Element
}

// Text returns the rendered text of the element.
func (e *Element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

// Attribute returns the named attribute and whether it is present.
func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// Within reports whether the element or an ancestor matches selector.
func (e *Element) Within(ctx context.Context, selector string) (bool, error) {
	res, err := e.el.Context(ctx).Eval(`(s) => this.closest(s) !== null`, selector)
	if err != nil {
		return false, queryError(selector, err)
	}
	return res.Value.Bool(), nil
}

// queryError reports selector syntax errors raised by the browser as
// EINVALID so callers can skip the selector.
func queryError(selector string, err error) error {
	var evalErr *rod.EvalError
	if errors.As(err, &evalErr) {
		return artex.Errorf(artex.EINVALID, "invalid selector %q: %v", selector, err)
	}
	return fmt.Errorf("querying %q: %w", selector, err)
}
