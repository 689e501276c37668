// Package cache implements the in-memory extraction result cache with URL
// pattern learning and per-rule selector optimization records.
package cache

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/artex"
)

// Ensure Cache implements artex.ResultCache at compile time.
var _ artex.ResultCache = (*Cache)(nil)

// Defaults for Config.
const (
	DefaultMaxEntries            = 1000
	DefaultMaxAge                = 24 * time.Hour
	DefaultPatternCacheSize      = 500
	DefaultOptimizationCacheSize = 100
	DefaultEvictFraction         = 0.1
	DefaultCleanupInterval       = time.Hour
)

// Selector confidence learning.
const (
	initialConfidence   = 0.5
	successNudge        = 0.1
	failureNudge        = 0.05
	optimizedConfidence = 0.7
	hitBoost            = 0.1
)

// Config sizes the cache tables.
type Config struct {
	MaxEntries            int
	MaxAge                time.Duration
	PatternCacheSize      int
	OptimizationCacheSize int

	// EvictFraction is the share of MaxEntries dropped, oldest access
	// first, when the exact-URL table overflows. At least one entry is
	// always dropped.
	EvictFraction float64

	// CleanupInterval is the period of the expiry sweep. Zero disables it.
	CleanupInterval time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxEntries:            DefaultMaxEntries,
		MaxAge:                DefaultMaxAge,
		PatternCacheSize:      DefaultPatternCacheSize,
		OptimizationCacheSize: DefaultOptimizationCacheSize,
		EvictFraction:         DefaultEvictFraction,
		CleanupInterval:       DefaultCleanupInterval,
	}
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Entries       int
	Patterns      int
	Optimizations int
	Hits          uint64
	Misses        uint64
	Evictions     uint64
}

// HitRate returns hits over lookups, or zero before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Option configures a Cache.
type Option func(*Cache)

// WithConfig sets the table sizes and timings. Zero fields keep their
// defaults, except CleanupInterval.
func WithConfig(cfg Config) Option {
	return func(c *Cache) {
		d := DefaultConfig()
		if cfg.MaxEntries <= 0 {
			cfg.MaxEntries = d.MaxEntries
		}
		if cfg.MaxAge <= 0 {
			cfg.MaxAge = d.MaxAge
		}
		if cfg.PatternCacheSize <= 0 {
			cfg.PatternCacheSize = d.PatternCacheSize
		}
		if cfg.OptimizationCacheSize <= 0 {
			cfg.OptimizationCacheSize = d.OptimizationCacheSize
		}
		if cfg.EvictFraction <= 0 || cfg.EvictFraction > 1 {
			cfg.EvictFraction = d.EvictFraction
		}
		c.cfg = cfg
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger for the cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// Cache is an in-memory ResultCache. It owns a background expiry sweep
// that runs from New until Close.
type Cache struct {
	cfg    Config
	now    func() time.Time
	logger *slog.Logger

	mu            sync.Mutex
	entries       map[string]*artex.CacheEntry
	patterns      map[string]*artex.PatternEntry
	optimizations map[string]*artex.RuleOptimization
	hits          uint64
	misses        uint64
	evictions     uint64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Cache and starts its expiry sweep.
// Close must be called when the cache is no longer needed.
func New(opts ...Option) *Cache {
	c := &Cache{
		cfg:           DefaultConfig(),
		now:           time.Now,
		logger:        slog.New(slog.DiscardHandler),
		entries:       make(map[string]*artex.CacheEntry),
		patterns:      make(map[string]*artex.PatternEntry),
		optimizations: make(map[string]*artex.RuleOptimization),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.CleanupInterval > 0 {
		go c.sweep(c.cfg.CleanupInterval)
	} else {
		close(c.done)
	}
	return c
}

func (c *Cache) sweep(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if n := c.Cleanup(); n > 0 {
				c.logger.Debug("expired cache entries removed", "count", n)
			}
		}
	}
}

// Close stops the expiry sweep and waits for it to exit. It is safe to
// call more than once. The cache remains usable after Close.
func (c *Cache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
	return nil
}

// CacheKey returns the hex xxhash digest of url.
func CacheKey(url string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(url))
}

// Key returns the cache key reported for url.
func (c *Cache) Key(url string) string {
	return CacheKey(url)
}

func (c *Cache) expired(e *artex.CacheEntry, now time.Time) bool {
	return now.Sub(e.Timestamp) > c.cfg.MaxAge
}

// Get returns a copy of the entry stored for exactly url. An expired entry
// is deleted and reported as a miss.
func (c *Cache) Get(url string) (*artex.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[url]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.expired(e, now) {
		delete(c.entries, url)
		c.misses++
		return nil, false
	}
	e.HitCount++
	e.LastAccessed = now
	c.hits++
	return e.Clone(), true
}

// Store saves copies of result and quality under url, folds the quality
// score into the URL pattern's running mean and touches the optimization
// record of ruleID when given.
func (c *Cache) Store(url string, result *artex.ExtractionResult, quality *artex.ContentQuality, ruleID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	pattern := URLPattern(url)
	c.entries[url] = &artex.CacheEntry{
		URL:          url,
		URLPattern:   pattern,
		Result:       result.Clone(),
		Quality:      quality.Clone(),
		RuleID:       ruleID,
		Timestamp:    now,
		LastAccessed: now,
	}

	var score float64
	if quality != nil {
		score = quality.Score
	}
	p := c.pattern(url, pattern, now)
	p.AverageQuality = (p.AverageQuality*float64(p.SampleCount) + score) / float64(p.SampleCount+1)
	p.SampleCount++
	p.LastUpdated = now

	if ruleID != "" {
		c.optimization(ruleID, now).LastOptimized = now
	}

	if len(c.entries) > c.cfg.MaxEntries {
		c.evictEntries()
	}
}

// pattern returns the entry for pattern, creating it (and evicting the
// oldest other pattern on overflow) if needed. Callers hold mu.
func (c *Cache) pattern(url, pattern string, now time.Time) *artex.PatternEntry {
	if p, ok := c.patterns[pattern]; ok {
		return p
	}
	p := &artex.PatternEntry{
		URLPattern:          pattern,
		Domain:              artex.DomainOf(url),
		SuccessfulSelectors: make(map[string][]string),
		FailedSelectors:     make(map[string][]string),
		LastUpdated:         now,
	}
	c.patterns[pattern] = p
	if len(c.patterns) > c.cfg.PatternCacheSize {
		evictOldest(c.patterns, pattern, func(p *artex.PatternEntry) time.Time { return p.LastUpdated })
	}
	return p
}

// optimization returns the record for ruleID, creating it (and evicting
// the oldest other record on overflow) if needed. Callers hold mu.
func (c *Cache) optimization(ruleID string, now time.Time) *artex.RuleOptimization {
	if o, ok := c.optimizations[ruleID]; ok {
		return o
	}
	o := &artex.RuleOptimization{
		RuleID:        ruleID,
		Fields:        make(map[string]*artex.FieldOptimization),
		LastOptimized: now,
	}
	c.optimizations[ruleID] = o
	if len(c.optimizations) > c.cfg.OptimizationCacheSize {
		evictOldest(c.optimizations, ruleID, func(o *artex.RuleOptimization) time.Time { return o.LastOptimized })
	}
	return o
}

// evictOldest deletes the single entry of m with the oldest timestamp,
// never the one under keep.
func evictOldest[V any](m map[string]V, keep string, ts func(V) time.Time) {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, v := range m {
		if k == keep {
			continue
		}
		if t := ts(v); !found || t.Before(oldest) {
			oldestKey, oldest, found = k, t, true
		}
	}
	if found {
		delete(m, oldestKey)
	}
}

// evictEntries drops the least recently accessed share of the exact-URL
// table in one pass. Pattern and optimization tables are not touched.
// Callers hold mu.
func (c *Cache) evictEntries() {
	n := max(1, int(float64(c.cfg.MaxEntries)*c.cfg.EvictFraction))
	n = max(n, len(c.entries)-c.cfg.MaxEntries)

	byAccess := make([]*artex.CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		byAccess = append(byAccess, e)
	}
	slices.SortFunc(byAccess, func(a, b *artex.CacheEntry) int {
		return a.LastAccessed.Compare(b.LastAccessed)
	})
	for _, e := range byAccess[:min(n, len(byAccess))] {
		delete(c.entries, e.URL)
		c.evictions++
	}
	c.logger.Debug("cache entries evicted", "count", n, "remaining", len(c.entries))
}

// FindSimilar returns copies of up to maxResults unexpired entries that
// share url's pattern, excluding url itself, ranked by quality score
// boosted by hit count.
func (c *Cache) FindSimilar(url string, maxResults int) []*artex.CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	pattern := URLPattern(url)
	var similar []*artex.CacheEntry
	for u, e := range c.entries {
		if u == url || e.URLPattern != pattern || c.expired(e, now) {
			continue
		}
		similar = append(similar, e)
	}
	slices.SortStableFunc(similar, func(a, b *artex.CacheEntry) int {
		if byRank := cmp.Compare(rank(b), rank(a)); byRank != 0 {
			return byRank
		}
		return a.Timestamp.Compare(b.Timestamp)
	})
	if maxResults >= 0 && len(similar) > maxResults {
		similar = similar[:maxResults]
	}

	out := make([]*artex.CacheEntry, len(similar))
	for i, e := range similar {
		out[i] = e.Clone()
	}
	return out
}

func rank(e *artex.CacheEntry) float64 {
	var score float64
	if e.Quality != nil {
		score = e.Quality.Score
	}
	return score * (1 + float64(e.HitCount)*hitBoost)
}

// OptimizedSelectors returns learned selectors per field. Selectors of
// ruleID whose confidence exceeds 0.7 win; otherwise the domain-wide
// pattern's successful selectors are returned. The result is nil when
// nothing was learned.
func (c *Cache) OptimizedSelectors(domain, ruleID string) map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if o, ok := c.optimizations[ruleID]; ok && ruleID != "" {
		out := make(map[string][]string)
		for field, f := range o.Fields {
			if f.Confidence > optimizedConfidence && len(f.Selectors) > 0 {
				out[field] = slices.Clone(f.Selectors)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	if p, ok := c.patterns[DomainPattern(domain)]; ok && len(p.SuccessfulSelectors) > 0 {
		return p.Clone().SuccessfulSelectors
	}
	return nil
}

// RecordSelectorPerformance adds selector to the success or failure list
// of field for url's pattern and, when ruleID is given, nudges the rule's
// field confidence up by 0.1 on success or down by 0.05 on failure,
// clamped to [0, 1]. The nudging has no decay.
func (c *Cache) RecordSelectorPerformance(url string, field artex.Field, selector string, success bool, ruleID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	p := c.pattern(url, URLPattern(url), now)
	key := string(field)
	if success {
		p.SuccessfulSelectors[key] = appendUnique(p.SuccessfulSelectors[key], selector)
	} else {
		p.FailedSelectors[key] = appendUnique(p.FailedSelectors[key], selector)
	}
	p.LastUpdated = now

	if ruleID == "" {
		return
	}
	o := c.optimization(ruleID, now)
	f, ok := o.Fields[key]
	if !ok {
		f = &artex.FieldOptimization{Confidence: initialConfidence}
		o.Fields[key] = f
	}
	f.Attempts++
	if success {
		f.Successes++
		f.Selectors = appendUnique(f.Selectors, selector)
		f.Confidence += successNudge
	} else {
		f.Confidence -= failureNudge
	}
	f.Confidence = math.Max(0, math.Min(1, f.Confidence))
	f.SuccessRate = float64(f.Successes) / float64(f.Attempts)
	f.LastTested = now
	o.LastOptimized = now
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

// Cleanup removes every expired entry and returns how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var n int
	for u, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, u)
			n++
		}
	}
	return n
}

// Clear empties every table and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	clear(c.patterns)
	clear(c.optimizations)
	c.hits, c.misses, c.evictions = 0, 0, 0
}

// Len returns the number of exact-URL entries, including expired entries
// not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:       len(c.entries),
		Patterns:      len(c.patterns),
		Optimizations: len(c.optimizations),
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
	}
}

// Pattern returns a copy of the pattern entry for pattern.
func (c *Cache) Pattern(pattern string) (*artex.PatternEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.patterns[pattern]
	return p.Clone(), ok
}

// Patterns returns copies of all pattern entries ordered by pattern.
func (c *Cache) Patterns() []*artex.PatternEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*artex.PatternEntry, 0, len(c.patterns))
	for _, p := range c.patterns {
		out = append(out, p.Clone())
	}
	slices.SortFunc(out, func(a, b *artex.PatternEntry) int {
		return cmp.Compare(a.URLPattern, b.URLPattern)
	})
	return out
}

// Optimization returns a copy of the optimization record of ruleID.
func (c *Cache) Optimization(ruleID string) (*artex.RuleOptimization, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.optimizations[ruleID]
	return o.Clone(), ok
}
