package prometheus

import (
	"github.com/fwojciec/artex/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource reports cache statistics.
type StatsSource interface {
	Stats() cache.Stats
}

// Ensure CacheCollector implements prometheus.Collector at compile time.
var _ prometheus.Collector = (*CacheCollector)(nil)

// CacheCollector exports cache statistics at scrape time.
type CacheCollector struct {
	source StatsSource

	entries       *prometheus.Desc
	patterns      *prometheus.Desc
	optimizations *prometheus.Desc
	hits          *prometheus.Desc
	misses        *prometheus.Desc
	evictions     *prometheus.Desc
	hitRate       *prometheus.Desc
}

// NewCacheCollector creates a collector reading from source.
func NewCacheCollector(source StatsSource) *CacheCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(Namespace, "cache", name), help, nil, nil)
	}
	return &CacheCollector{
		source:        source,
		entries:       desc("entries", "Number of cached extraction results."),
		patterns:      desc("patterns", "Number of learned URL patterns."),
		optimizations: desc("optimizations", "Number of per-rule optimization records."),
		hits:          desc("hits_total", "Total number of cache hits."),
		misses:        desc("misses_total", "Total number of cache misses."),
		evictions:     desc("evictions_total", "Total number of evicted results."),
		hitRate:       desc("hit_rate", "Ratio of hits to lookups."),
	}
}

// Describe implements prometheus.Collector.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.patterns
	ch <- c.optimizations
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.hitRate
}

// Collect implements prometheus.Collector.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.patterns, prometheus.GaugeValue, float64(s.Patterns))
	ch <- prometheus.MustNewConstMetric(c.optimizations, prometheus.GaugeValue, float64(s.Optimizations))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, s.HitRate())
}
