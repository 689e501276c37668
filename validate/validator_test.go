package validate_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/artex"
	"github.com/fwojciec/artex/validate"
	"github.com/stretchr/testify/assert"
)

// Ensure Validator implements artex.Validator at compile time.
var _ artex.Validator = (*validate.Validator)(nil)

const articleBody = "The council approved the new budget on Tuesday. " +
	"Members debated the proposal for several hours.\n\n" +
	"Critics argued that the plan underfunds public transport. " +
	"Supporters said the savings were necessary.\n\n" +
	"The budget takes effect next year. A final vote on amendments is expected in March."

func goodQuality() *artex.ContentQuality {
	return &artex.ContentQuality{
		Score:       0.8,
		WordCount:   120,
		TextDensity: 0.6,
		LinkDensity: 0.05,
		FrontpageRisk: artex.FrontpageRisk{
			RiskScore:      0.1,
			Recommendation: artex.RecommendExtract,
		},
	}
}

func goodContent() *artex.ExtractedContent {
	return &artex.ExtractedContent{
		Title:   "Council approves new budget",
		Content: articleBody,
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a well-formed article", func(t *testing.T) {
		t.Parallel()

		v := validate.NewValidator()
		res := v.Validate(goodContent(), goodQuality())

		assert.True(t, res.IsValid)
		assert.Empty(t, res.Issues)
		assert.Empty(t, res.Warnings)
		// title 0.45 + content 0.7 + quality 0.3 + frontpage 0.27, capped
		assert.InDelta(t, 1.0, res.Score, 1e-9)
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		v := validate.NewValidator()
		c := goodContent()
		q := goodQuality()

		assert.Equal(t, v.Validate(c, q), v.Validate(c, q))
	})

	t.Run("navigation title is a warning, not an issue", func(t *testing.T) {
		t.Parallel()

		c := goodContent()
		c.Title = "Home"

		res := validate.NewValidator().Validate(c, goodQuality())

		assert.True(t, res.IsValid)
		assert.Empty(t, res.Issues)
		assert.Contains(t, res.Warnings, "title looks like navigation/category text")
	})

	t.Run("separator in title only warns", func(t *testing.T) {
		t.Parallel()

		c := goodContent()
		c.Title = "Council approves budget | City News"

		res := validate.NewValidator().Validate(c, goodQuality())

		assert.True(t, res.IsValid)
		assert.Contains(t, res.Warnings, "title may include site name or separators")
	})

	t.Run("short title is an issue", func(t *testing.T) {
		t.Parallel()

		c := goodContent()
		c.Title = "Hi"

		res := validate.NewValidator().Validate(c, goodQuality())

		assert.False(t, res.IsValid)
		assert.Contains(t, res.Issues, "title missing or too short")
	})

	t.Run("short content is an issue", func(t *testing.T) {
		t.Parallel()

		c := goodContent()
		c.Content = "Too short to be an article."

		res := validate.NewValidator().Validate(c, goodQuality())

		assert.False(t, res.IsValid)
		assert.Contains(t, res.Issues, "content missing or too short")
	})

	t.Run("navigation phrases in content penalize and warn", func(t *testing.T) {
		t.Parallel()

		c := goodContent()
		c.Content = strings.Repeat("Short teaser line about a story. ", 2) + "Read more"

		res := validate.NewValidator().Validate(c, goodQuality())

		assert.Contains(t, res.Warnings, "content contains navigation phrases")
	})

	t.Run("low quality is an issue", func(t *testing.T) {
		t.Parallel()

		q := goodQuality()
		q.WordCount = 10

		res := validate.NewValidator().Validate(goodContent(), q)

		assert.False(t, res.IsValid)
		assert.Contains(t, res.Issues, "content quality below threshold")
	})

	t.Run("density warnings", func(t *testing.T) {
		t.Parallel()

		q := goodQuality()
		q.TextDensity = 0.1
		q.LinkDensity = 0.5

		res := validate.NewValidator().Validate(goodContent(), q)

		assert.True(t, res.IsValid)
		assert.Contains(t, res.Warnings, "low text density")
		assert.Contains(t, res.Warnings, "high link density")
	})

	t.Run("frontpage reject invalidates", func(t *testing.T) {
		t.Parallel()

		q := goodQuality()
		q.FrontpageRisk = artex.FrontpageRisk{RiskScore: 0.9, Recommendation: artex.RecommendReject}

		res := validate.NewValidator().Validate(goodContent(), q)

		assert.False(t, res.IsValid)
		assert.Contains(t, res.Issues, "page looks like a frontpage or listing")
	})

	t.Run("frontpage warn only warns", func(t *testing.T) {
		t.Parallel()

		q := goodQuality()
		q.FrontpageRisk = artex.FrontpageRisk{RiskScore: 0.5, Recommendation: artex.RecommendWarn}

		res := validate.NewValidator().Validate(goodContent(), q)

		assert.True(t, res.IsValid)
		assert.Contains(t, res.Warnings, "page may be a frontpage or listing")
	})

	t.Run("score below minimum invalidates without issues", func(t *testing.T) {
		t.Parallel()

		v := &validate.Validator{MinScore: 1.5}

		res := v.Validate(goodContent(), goodQuality())

		assert.Empty(t, res.Issues)
		assert.False(t, res.IsValid)
	})

	t.Run("nil inputs are invalid, not a panic", func(t *testing.T) {
		t.Parallel()

		res := validate.NewValidator().Validate(nil, nil)

		assert.False(t, res.IsValid)
		assert.NotEmpty(t, res.Issues)
	})
}
