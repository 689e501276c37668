package prometheus_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/artex"
	"github.com/fwojciec/artex/cache"
	"github.com/fwojciec/artex/mock"
	artexprom "github.com/fwojciec/artex/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func returning(results ...*artex.ExtractionResult) *mock.ArticleExtractor {
	i := 0
	return &mock.ArticleExtractor{
		ExtractFn: func(ctx context.Context, page artex.Page) *artex.ExtractionResult {
			res := results[i]
			i++
			return res
		},
	}
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("counts extractions by tier and outcome", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		inner := returning(
			&artex.ExtractionResult{Success: true, Confidence: 0.8, Method: "bespoke-news"},
			&artex.ExtractionResult{Success: true, Confidence: 0.7, Method: "bespoke-other"},
			&artex.ExtractionResult{Success: false, Method: artex.MethodSemanticHTML},
			artex.ErrorResult(0),
		)
		e, err := artexprom.NewExtractor(inner, reg)
		require.NoError(t, err)

		for range 4 {
			e.Extract(context.Background(), &mock.Page{})
		}

		expected := `
# HELP artex_extractions_total Total number of extractions by tier and outcome.
# TYPE artex_extractions_total counter
artex_extractions_total{success="false",tier="error"} 1
artex_extractions_total{success="false",tier="semantic-html"} 1
artex_extractions_total{success="true",tier="bespoke"} 2
`
		require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "artex_extractions_total"))
	})

	t.Run("counts cache hits and retries", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		inner := returning(
			&artex.ExtractionResult{Success: true, Method: artex.MethodHybrid, Metadata: artex.ResultMetadata{CacheHit: artex.Ptr(true)}},
			&artex.ExtractionResult{Success: true, Method: artex.MethodHybrid, Metadata: artex.ResultMetadata{CacheHit: artex.Ptr(false), RetryCount: artex.Ptr(1)}},
		)
		e, err := artexprom.NewExtractor(inner, reg)
		require.NoError(t, err)

		e.Extract(context.Background(), &mock.Page{})
		e.Extract(context.Background(), &mock.Page{})

		expected := `
# HELP artex_extraction_cache_hits_total Total number of extractions served from the cache.
# TYPE artex_extraction_cache_hits_total counter
artex_extraction_cache_hits_total 1
# HELP artex_extraction_retries_total Total number of extractions that needed the backstop retry.
# TYPE artex_extraction_retries_total counter
artex_extraction_retries_total 1
`
		require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
			"artex_extraction_cache_hits_total", "artex_extraction_retries_total"))
	})

	t.Run("observes confidence and duration", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		e, err := artexprom.NewExtractor(returning(&artex.ExtractionResult{Success: true, Confidence: 0.9, Method: artex.MethodStructuredData}), reg)
		require.NoError(t, err)

		e.Extract(context.Background(), &mock.Page{})

		n, err := testutil.GatherAndCount(reg, "artex_extraction_confidence", "artex_extraction_duration_seconds")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		_, err := artexprom.NewExtractor(&mock.ArticleExtractor{}, reg)
		require.NoError(t, err)

		_, err = artexprom.NewExtractor(&mock.ArticleExtractor{}, reg)
		assert.Error(t, err)
	})
}

func TestTier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bespoke", artexprom.Tier("bespoke-vg-no"))
	assert.Equal(t, artex.MethodHybrid, artexprom.Tier(artex.MethodHybrid))
	assert.Equal(t, artex.MethodError, artexprom.Tier(artex.MethodError))
	assert.Equal(t, "unknown", artexprom.Tier("readability"))
}

func TestCacheCollector(t *testing.T) {
	t.Parallel()

	c := cache.New(cache.WithConfig(cache.Config{CleanupInterval: 0}))
	t.Cleanup(func() { _ = c.Close() })

	url := "https://news.example/a/1"
	c.Store(url, &artex.ExtractionResult{Success: true, Method: artex.MethodHybrid, Data: &artex.ExtractedContent{}}, nil, "")
	_, _ = c.Get(url)
	_, _ = c.Get("https://news.example/a/2")

	collector := artexprom.NewCacheCollector(c)

	expected := `
# HELP artex_cache_entries Number of cached extraction results.
# TYPE artex_cache_entries gauge
artex_cache_entries 1
# HELP artex_cache_hit_rate Ratio of hits to lookups.
# TYPE artex_cache_hit_rate gauge
artex_cache_hit_rate 0.5
# HELP artex_cache_hits_total Total number of cache hits.
# TYPE artex_cache_hits_total counter
artex_cache_hits_total 1
# HELP artex_cache_misses_total Total number of cache misses.
# TYPE artex_cache_misses_total counter
artex_cache_misses_total 1
# HELP artex_cache_patterns Number of learned URL patterns.
# TYPE artex_cache_patterns gauge
artex_cache_patterns 1
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"artex_cache_entries", "artex_cache_hit_rate", "artex_cache_hits_total",
		"artex_cache_misses_total", "artex_cache_patterns"))
	assert.Equal(t, 7, testutil.CollectAndCount(collector))
}
