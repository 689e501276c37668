package artex_test

import (
	"testing"
	"time"

	"github.com/fwojciec/artex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *artex.ExtractionResult {
	return &artex.ExtractionResult{
		Success:    true,
		Confidence: 0.8,
		Method:     artex.BespokeMethod("vg"),
		Data: &artex.ExtractedContent{
			Title:    "Storm hits coast",
			Content:  "Body",
			Segments: map[string]string{"lead": "Lead"},
			Provenance: &artex.Provenance{
				RuleID:            "vg",
				Method:            "bespoke",
				Confidence:        0.8,
				TransformsApplied: []string{"removePhrase"},
			},
		},
		Metadata: artex.ResultMetadata{
			SelectorsUsed: []string{"h1"},
			RuleID:        artex.Ptr("vg"),
			CacheHit:      artex.Ptr(false),
			RetryCount:    artex.Ptr(0),
		},
	}
}

func TestExtractedContent_Clone(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		var c *artex.ExtractedContent
		assert.Nil(t, c.Clone())
	})

	t.Run("copies are independent", func(t *testing.T) {
		t.Parallel()

		orig := sampleResult().Data
		cp := orig.Clone()
		require.Equal(t, orig, cp)

		cp.Segments["lead"] = "changed"
		cp.Provenance.TransformsApplied[0] = "changed"
		cp.Provenance.Confidence = 0.1

		assert.Equal(t, "Lead", orig.Segments["lead"])
		assert.Equal(t, "removePhrase", orig.Provenance.TransformsApplied[0])
		assert.InDelta(t, 0.8, orig.Provenance.Confidence, 1e-9)
	})
}

func TestExtractedContent_GetSet(t *testing.T) {
	t.Parallel()

	var c artex.ExtractedContent
	for _, f := range artex.Fields {
		c.Set(f, string(f)+"-value")
	}
	for _, f := range artex.Fields {
		assert.Equal(t, string(f)+"-value", c.Get(f))
	}

	c.Set(artex.Field("unknown"), "x")
	assert.Empty(t, c.Get(artex.Field("unknown")))
}

func TestExtractionResult_Clone(t *testing.T) {
	t.Parallel()

	orig := sampleResult()
	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.Data.Title = "changed"
	cp.Metadata.SelectorsUsed[0] = "changed"
	*cp.Metadata.RuleID = "changed"
	*cp.Metadata.CacheHit = true
	*cp.Metadata.RetryCount = 3

	assert.Equal(t, "Storm hits coast", orig.Data.Title)
	assert.Equal(t, "h1", orig.Metadata.SelectorsUsed[0])
	assert.Equal(t, "vg", *orig.Metadata.RuleID)
	assert.False(t, *orig.Metadata.CacheHit)
	assert.Equal(t, 0, *orig.Metadata.RetryCount)
}

func TestErrorResult(t *testing.T) {
	t.Parallel()

	res := artex.ErrorResult(12)

	assert.False(t, res.Success)
	assert.Zero(t, res.Confidence)
	assert.Equal(t, artex.MethodError, res.Method)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Metadata.SelectorsUsed)
	assert.Equal(t, int64(12), res.Metadata.ExtractionTimeMS)
}

func TestBespokeMethod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bespoke-vg", artex.BespokeMethod("vg"))
	assert.True(t, artex.IsBespokeMethod("bespoke-vg"))
	assert.False(t, artex.IsBespokeMethod(artex.MethodSemanticHTML))
}

func TestCacheEntry_Clone(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	orig := &artex.CacheEntry{
		URL:        "https://news.example/a/1",
		URLPattern: "news.example/a/*",
		Result:     sampleResult(),
		Quality: &artex.ContentQuality{
			Score:         0.7,
			FrontpageRisk: artex.FrontpageRisk{Reasons: []string{"many links"}},
		},
		Timestamp:    now,
		LastAccessed: now,
	}

	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.Result.Data.Title = "changed"
	cp.Quality.FrontpageRisk.Reasons[0] = "changed"
	cp.HitCount = 9

	assert.Equal(t, "Storm hits coast", orig.Result.Data.Title)
	assert.Equal(t, "many links", orig.Quality.FrontpageRisk.Reasons[0])
	assert.Zero(t, orig.HitCount)

	var nilEntry *artex.CacheEntry
	assert.Nil(t, nilEntry.Clone())
}

func TestPatternEntry_Clone(t *testing.T) {
	t.Parallel()

	orig := &artex.PatternEntry{
		URLPattern:          "news.example/a/*",
		SuccessfulSelectors: map[string][]string{"title": {"h1"}},
		FailedSelectors:     map[string][]string{"author": {".byline"}},
	}

	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.SuccessfulSelectors["title"][0] = "changed"
	cp.FailedSelectors["date"] = []string{"time"}

	assert.Equal(t, []string{"h1"}, orig.SuccessfulSelectors["title"])
	assert.NotContains(t, orig.FailedSelectors, "date")
}

func TestRuleOptimization_Clone(t *testing.T) {
	t.Parallel()

	orig := &artex.RuleOptimization{
		RuleID: "vg",
		Fields: map[string]*artex.FieldOptimization{
			"title": {Selectors: []string{"h1"}, Confidence: 0.6, Attempts: 2, Successes: 1},
		},
	}

	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.Fields["title"].Confidence = 0.1
	cp.Fields["title"].Selectors[0] = "changed"
	cp.Fields["date"] = &artex.FieldOptimization{}

	assert.InDelta(t, 0.6, orig.Fields["title"].Confidence, 1e-9)
	assert.Equal(t, "h1", orig.Fields["title"].Selectors[0])
	assert.NotContains(t, orig.Fields, "date")
}

func TestResultRecord_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires url", func(t *testing.T) {
		t.Parallel()

		r := &artex.ResultRecord{Result: sampleResult()}
		assert.Equal(t, artex.EINVALID, artex.ErrorCode(r.Validate()))
	})

	t.Run("requires result", func(t *testing.T) {
		t.Parallel()

		r := &artex.ResultRecord{URL: "https://news.example/a/1"}
		assert.Equal(t, artex.EINVALID, artex.ErrorCode(r.Validate()))
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		r := &artex.ResultRecord{URL: "https://news.example/a/1", Result: sampleResult()}
		assert.NoError(t, r.Validate())
	})
}
