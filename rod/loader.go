// Package rod implements artex.PageLoader with headless Chrome through
// go-rod, for pages that only render their article with JavaScript.
package rod

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/artex"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds navigation and load of a single page.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Loader implements artex.PageLoader at compile time.
var _ artex.PageLoader = (*Loader)(nil)

// Loader opens rendered pages in a managed headless browser.
// Loader is safe for concurrent use by multiple goroutines.
type Loader struct {
	pool     *Pool
	timeout  time.Duration
	poolOpts []PoolOption
	closed   atomic.Bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithFetchTimeout sets the navigation timeout.
// Defaults to DefaultFetchTimeout if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithBrowserRecycling sets how many pages are opened before the browser
// is restarted. Defaults to DefaultMaxPages.
func WithBrowserRecycling(maxPages int64) Option {
	return func(l *Loader) {
		l.poolOpts = append(l.poolOpts, WithMaxPages(maxPages))
	}
}

// WithChrome sets the Chrome executable to launch.
func WithChrome(path string) Option {
	return func(l *Loader) {
		if path != "" {
			l.poolOpts = append(l.poolOpts, WithBrowserBin(path))
		}
	}
}

// WithLogger sets the logger for browser lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.poolOpts = append(l.poolOpts, WithPoolLogger(logger))
	}
}

// NewLoader launches a headless Chrome browser.
// Close must be called when the Loader is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewLoader(opts ...Option) (*Loader, error) {
	l := &Loader{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(l)
	}

	pool, err := NewPool(l.poolOpts...)
	if err != nil {
		return nil, err
	}
	l.pool = pool
	return l, nil
}

// Load navigates to url, waits for the load event and returns the live
// page. The caller must Close the page.
func (l *Loader) Load(ctx context.Context, url string) (artex.Page, error) {
	if l.closed.Load() {
		return nil, artex.Errorf(artex.EINVALID, "loader is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := l.pool.Acquire()
	if err != nil {
		return nil, err
	}
	rp, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}

	loading := rp.Context(ctx).Timeout(l.timeout)
	if err := loading.Navigate(url); err != nil {
		_ = rp.Close()
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := loading.WaitLoad(); err != nil {
		_ = rp.Close()
		return nil, fmt.Errorf("waiting for %s: %w", url, err)
	}

	current := url
	if info, err := rp.Info(); err == nil && info.URL != "" {
		current = info.URL
	}
	return &Page{page: rp, url: current}, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (l *Loader) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return l.pool.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (l *Loader) LauncherPID() int {
	return l.pool.LauncherPID()
}
