package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/artex"
)

// Ensure LoggingExtractor implements artex.ArticleExtractor.
var _ artex.ArticleExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an ArticleExtractor with per-page logging.
type LoggingExtractor struct {
	next   artex.ArticleExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next artex.ArticleExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
// Failed extractions are logged at warn level.
func (e *LoggingExtractor) Extract(ctx context.Context, page artex.Page) (res *artex.ExtractionResult) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if res == nil || !res.Success {
			level = slog.LevelWarn
		}
		attrs := []any{
			"url", page.URL(),
			"duration", time.Since(begin),
		}
		if res != nil {
			attrs = append(attrs,
				"method", res.Method,
				"success", res.Success,
				"confidence", res.Confidence,
			)
			if res.Metadata.CacheHit != nil && *res.Metadata.CacheHit {
				attrs = append(attrs, "cache_hit", true)
			}
			if res.Metadata.RetryCount != nil {
				attrs = append(attrs, "retry_count", *res.Metadata.RetryCount)
			}
		}
		e.logger.Log(ctx, level, "extract", attrs...)
	}(time.Now())
	return e.next.Extract(ctx, page)
}
