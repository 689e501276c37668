package cascade

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/artex"
	"golang.org/x/sync/errgroup"
)

// Batch loads and extracts URLs through any ArticleExtractor, so decorated
// extractors (logging, metrics) can run over a loader.
type Batch struct {
	Extractor artex.ArticleExtractor
	Loader    artex.PageLoader

	// Concurrency bounds the number of open pages. Zero means
	// DefaultConcurrency.
	Concurrency int

	// OnResult, if set, is called as each result completes. It must be safe
	// for concurrent use.
	OnResult func(url string, res *artex.ExtractionResult)

	Logger *slog.Logger

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

func (b *Batch) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

func (b *Batch) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// ExtractURL loads url, extracts it and closes the page.
// A load failure yields the method "error" result.
func (b *Batch) ExtractURL(ctx context.Context, url string) *artex.ExtractionResult {
	res := b.extractURL(ctx, url)
	if b.OnResult != nil {
		b.OnResult(url, res)
	}
	return res
}

func (b *Batch) extractURL(ctx context.Context, url string) *artex.ExtractionResult {
	start := b.now()
	page, err := b.Loader.Load(ctx, url)
	if err != nil {
		b.logger().Error("page load failed", "url", url, "err", err)
		return artex.ErrorResult(b.now().Sub(start).Milliseconds())
	}
	defer func() {
		if err := page.Close(); err != nil {
			b.logger().Warn("page close failed", "url", url, "err", err)
		}
	}()
	res := b.Extractor.Extract(ctx, page)
	if res == nil {
		return artex.ErrorResult(b.now().Sub(start).Milliseconds())
	}
	return res
}

// Run extracts urls and returns results in input order. A canceled
// context stops scheduling; URLs not started get the error result.
func (b *Batch) Run(ctx context.Context, urls []string) []*artex.ExtractionResult {
	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*artex.ExtractionResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, url := range urls {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = b.ExtractURL(gctx, url)
			return nil
		})
	}
	_ = g.Wait()
	for i, res := range results {
		if res == nil {
			results[i] = artex.ErrorResult(0)
		}
	}
	return results
}
