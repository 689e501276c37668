// Package prometheus exposes extraction and cache metrics through
// prometheus/client_golang. Metrics are registered on a caller-supplied
// registerer; nothing is registered globally.
package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/artex"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "artex"

// ConfidenceBuckets are the histogram buckets for result confidence.
var ConfidenceBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95}

// Ensure Extractor implements artex.ArticleExtractor at compile time.
var _ artex.ArticleExtractor = (*Extractor)(nil)

// Extractor wraps an ArticleExtractor and records per-result metrics.
type Extractor struct {
	next artex.ArticleExtractor

	extractions *prometheus.CounterVec
	cacheHits   prometheus.Counter
	retries     prometheus.Counter
	confidence  *prometheus.HistogramVec
	duration    *prometheus.HistogramVec
}

// NewExtractor creates an Extractor and registers its metrics on reg.
func NewExtractor(next artex.ArticleExtractor, reg prometheus.Registerer) (*Extractor, error) {
	e := &Extractor{
		next: next,
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "extractions_total",
			Help:      "Total number of extractions by tier and outcome.",
		}, []string{"tier", "success"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "extraction_cache_hits_total",
			Help:      "Total number of extractions served from the cache.",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "extraction_retries_total",
			Help:      "Total number of extractions that needed the backstop retry.",
		}),
		confidence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "extraction_confidence",
			Help:      "Confidence of extraction results.",
			Buckets:   ConfidenceBuckets,
		}, []string{"tier"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of extractions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tier"}),
	}
	for _, c := range []prometheus.Collector{e.extractions, e.cacheHits, e.retries, e.confidence, e.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Extract delegates to the wrapped extractor and records the result.
func (e *Extractor) Extract(ctx context.Context, page artex.Page) *artex.ExtractionResult {
	begin := time.Now()
	res := e.next.Extract(ctx, page)
	if res == nil {
		return nil
	}

	tier := Tier(res.Method)
	success := "false"
	if res.Success {
		success = "true"
	}
	e.extractions.WithLabelValues(tier, success).Inc()
	e.confidence.WithLabelValues(tier).Observe(res.Confidence)
	e.duration.WithLabelValues(tier).Observe(time.Since(begin).Seconds())
	if res.Metadata.CacheHit != nil && *res.Metadata.CacheHit {
		e.cacheHits.Inc()
	}
	if res.Metadata.RetryCount != nil {
		e.retries.Inc()
	}
	return res
}

// Tier maps a result method to a bounded label value. Bespoke methods
// carry the rule ID and collapse to "bespoke".
func Tier(method string) string {
	switch {
	case artex.IsBespokeMethod(method):
		return "bespoke"
	case method == artex.MethodStructuredData,
		method == artex.MethodHybrid,
		method == artex.MethodSemanticHTML,
		method == artex.MethodError:
		return method
	default:
		return "unknown"
	}
}
