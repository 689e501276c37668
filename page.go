package artex

import "context"

// Element is one node returned by a page query.
type Element interface {
	// Text returns the element's text content.
	Text(ctx context.Context) (string, error)

	// Attribute returns the named attribute and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)

	// Within reports whether the element, or one of its ancestors, matches
	// selector.
	Within(ctx context.Context, selector string) (bool, error)
}

// Page is the page capability the extractors work against. The core makes
// no assumption about which engine (static HTML, browser) implements it.
type Page interface {
	// URL returns the current page URL.
	URL() string

	// QueryAll returns all elements matching selector in document order.
	// An invalid selector returns an error.
	QueryAll(ctx context.Context, selector string) ([]Element, error)

	// Close releases resources held by the page.
	Close() error
}

// PageLoader opens pages by URL.
type PageLoader interface {
	// Load navigates to url and returns the loaded page.
	// The context controls timeout and cancellation.
	Load(ctx context.Context, url string) (Page, error)

	// Close releases loader resources.
	// Must be called when the PageLoader is no longer needed.
	Close() error
}
