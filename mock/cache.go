package mock

import "github.com/fwojciec/artex"

// Compile-time interface verification.
var _ artex.ResultCache = (*ResultCache)(nil)

// ResultCache is a mock implementation of artex.ResultCache.
type ResultCache struct {
	GetFn                       func(url string) (*artex.CacheEntry, bool)
	StoreFn                     func(url string, result *artex.ExtractionResult, quality *artex.ContentQuality, ruleID string)
	RecordSelectorPerformanceFn func(url string, field artex.Field, selector string, success bool, ruleID string)
	KeyFn                       func(url string) string
}

func (c *ResultCache) Get(url string) (*artex.CacheEntry, bool) {
	return c.GetFn(url)
}

func (c *ResultCache) Store(url string, result *artex.ExtractionResult, quality *artex.ContentQuality, ruleID string) {
	c.StoreFn(url, result, quality, ruleID)
}

func (c *ResultCache) RecordSelectorPerformance(url string, field artex.Field, selector string, success bool, ruleID string) {
	c.RecordSelectorPerformanceFn(url, field, selector, success, ruleID)
}

func (c *ResultCache) Key(url string) string {
	return c.KeyFn(url)
}
