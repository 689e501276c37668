// Package http provides an HTTP-based implementation of artex.PageLoader
// for static pages that don't require JavaScript rendering.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/artex"
	"github.com/fwojciec/artex/goquery"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "artex/1.0 (+https://github.com/fwojciec/artex)"

// maxBodyBytes caps the size of a fetched document.
const maxBodyBytes = 10 << 20

// Ensure Loader implements artex.PageLoader at compile time.
var _ artex.PageLoader = (*Loader)(nil)

// Loader fetches HTML over HTTP and parses it into static pages.
// Unlike rod.Loader, it does not execute JavaScript.
type Loader struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(l *Loader) {
		l.userAgent = ua
	}
}

// WithClient sets the underlying HTTP client. The client's own timeout
// takes precedence over WithTimeout.
func WithClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// NewLoader creates a new HTTP-based Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Load fetches url and returns the parsed page. The page URL is the final
// URL after redirects.
func (l *Loader) Load(ctx context.Context, url string) (artex.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, artex.Errorf(artex.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, artex.Errorf(artex.ENOTFOUND, "page not found: %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	page, err := goquery.NewPage(resp.Request.URL.String(), string(body))
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Close is a no-op since http.Client doesn't require explicit cleanup.
func (l *Loader) Close() error {
	return nil
}
