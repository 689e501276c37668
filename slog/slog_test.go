package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/artex"
	"github.com/fwojciec/artex/mock"
	artexslog "github.com/fwojciec/artex/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage(url string) *mock.Page {
	return &mock.Page{
		URLFn:   func() string { return url },
		CloseFn: func() error { return nil },
	}
}

func TestLoggingExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("logs method, confidence and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		want := &artex.ExtractionResult{
			Success:    true,
			Confidence: 0.72,
			Method:     "bespoke-news",
			Data:       &artex.ExtractedContent{Title: "T"},
			Metadata:   artex.ResultMetadata{CacheHit: artex.Ptr(true)},
		}
		inner := &mock.ArticleExtractor{
			ExtractFn: func(ctx context.Context, page artex.Page) *artex.ExtractionResult {
				return want
			},
		}

		e := artexslog.NewLoggingExtractor(inner, logger)
		got := e.Extract(context.Background(), testPage("https://news.example/a/1"))

		assert.Same(t, want, got)
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "msg=extract")
		assert.Contains(t, output, "url=https://news.example/a/1")
		assert.Contains(t, output, "method=bespoke-news")
		assert.Contains(t, output, "confidence=0.72")
		assert.Contains(t, output, "cache_hit=true")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs failed extraction at warn", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ArticleExtractor{
			ExtractFn: func(ctx context.Context, page artex.Page) *artex.ExtractionResult {
				res := artex.ErrorResult(3)
				res.Metadata.RetryCount = artex.Ptr(1)
				return res
			},
		}

		e := artexslog.NewLoggingExtractor(inner, logger)
		e.Extract(context.Background(), testPage("https://news.example/a/1"))

		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "method=error")
		assert.Contains(t, output, "success=false")
		assert.Contains(t, output, "retry_count=1")
	})
}

func TestLoggingLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("logs load with duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		page := testPage("https://news.example/a/1")
		inner := &mock.PageLoader{
			LoadFn: func(ctx context.Context, url string) (artex.Page, error) {
				return page, nil
			},
		}

		loader := artexslog.NewLoggingLoader(inner, logger)
		got, err := loader.Load(context.Background(), "https://news.example/a/1")

		require.NoError(t, err)
		assert.Same(t, page, got)
		output := buf.String()
		assert.Contains(t, output, "msg=load")
		assert.Contains(t, output, "url=https://news.example/a/1")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageLoader{
			LoadFn: func(ctx context.Context, url string) (artex.Page, error) {
				return nil, errors.New("network error")
			},
		}

		loader := artexslog.NewLoggingLoader(inner, logger)
		_, err := loader.Load(context.Background(), "https://news.example/a/1")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"network error\"")
	})

	t.Run("close delegates to inner loader", func(t *testing.T) {
		t.Parallel()

		closed := false
		inner := &mock.PageLoader{
			CloseFn: func() error {
				closed = true
				return nil
			},
		}

		loader := artexslog.NewLoggingLoader(inner, slog.New(slog.DiscardHandler))
		require.NoError(t, loader.Close())
		assert.True(t, closed)
	})
}

func TestLoggingAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	want := &artex.ContentQuality{
		Score:     0.6,
		WordCount: 120,
		FrontpageRisk: artex.FrontpageRisk{
			RiskScore:      0.45,
			Recommendation: artex.RecommendWarn,
			Reasons:        []string{"many short text blocks"},
		},
	}
	inner := &mock.QualityAnalyzer{
		AnalyzeFn: func(content *artex.ExtractedContent) *artex.ContentQuality {
			return want
		},
	}

	a := artexslog.NewLoggingAnalyzer(inner, logger)
	got := a.Analyze(&artex.ExtractedContent{})

	assert.Same(t, want, got)
	output := buf.String()
	assert.Contains(t, output, "msg=quality")
	assert.Contains(t, output, "score=0.6")
	assert.Contains(t, output, "words=120")
	assert.Contains(t, output, "recommendation=warn")
}

func TestLoggingCatalog_FindBestRuleForURL(t *testing.T) {
	t.Parallel()

	t.Run("logs matched rule", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		rule := &artex.SiteRule{ID: "news", Priority: 80}
		inner := &mock.RuleCatalog{
			FindBestRuleForURLFn: func(rawURL string) *artex.RuleMatch {
				return &artex.RuleMatch{Rule: rule}
			},
		}

		c := artexslog.NewLoggingCatalog(inner, logger)
		m := c.FindBestRuleForURL("https://news.example/a/1")

		require.NotNil(t, m)
		assert.Same(t, rule, m.Rule)
		assert.Contains(t, buf.String(), "rule=news")
		assert.Contains(t, buf.String(), "priority=80")
	})

	t.Run("logs missing rule", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.RuleCatalog{
			FindBestRuleForURLFn: func(rawURL string) *artex.RuleMatch { return nil },
		}

		c := artexslog.NewLoggingCatalog(inner, logger)

		assert.Nil(t, c.FindBestRuleForURL("https://other.example/"))
		assert.Contains(t, buf.String(), "rule=(none)")
	})
}
