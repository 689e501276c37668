package mock

import (
	"context"

	"github.com/fwojciec/artex"
)

// Compile-time interface verification.
var (
	_ artex.Page       = (*Page)(nil)
	_ artex.Element    = (*Element)(nil)
	_ artex.PageLoader = (*PageLoader)(nil)
)

// Page is a mock implementation of artex.Page.
type Page struct {
	URLFn      func() string
	QueryAllFn func(ctx context.Context, selector string) ([]artex.Element, error)
	CloseFn    func() error
}

func (p *Page) URL() string {
	return p.URLFn()
}

func (p *Page) QueryAll(ctx context.Context, selector string) ([]artex.Element, error) {
	return p.QueryAllFn(ctx, selector)
}

func (p *Page) Close() error {
	return p.CloseFn()
}

// Element is a mock implementation of artex.Element.
type Element struct {
	TextFn      func(ctx context.Context) (string, error)
	AttributeFn func(ctx context.Context, name string) (string, bool, error)
	WithinFn    func(ctx context.Context, selector string) (bool, error)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.TextFn(ctx)
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	return e.AttributeFn(ctx, name)
}

func (e *Element) Within(ctx context.Context, selector string) (bool, error) {
	return e.WithinFn(ctx, selector)
}

// PageLoader is a mock implementation of artex.PageLoader.
type PageLoader struct {
	LoadFn  func(ctx context.Context, url string) (artex.Page, error)
	CloseFn func() error
}

func (l *PageLoader) Load(ctx context.Context, url string) (artex.Page, error) {
	return l.LoadFn(ctx, url)
}

func (l *PageLoader) Close() error {
	return l.CloseFn()
}
