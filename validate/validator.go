// Package validate decides whether extracted article content is acceptable.
package validate

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/artex"
)

// DefaultMinScore is the overall score an extraction needs to be valid.
const DefaultMinScore = 0.3

// Ensure Validator implements artex.Validator at compile time.
var _ artex.Validator = (*Validator)(nil)

// Validator scores extracted content with four independent checks (title,
// content, quality thresholds, frontpage risk) and sums their scores.
// Validate is a pure function of its inputs.
type Validator struct {
	// MinScore is the overall score required for validity.
	// Zero means DefaultMinScore.
	MinScore float64
}

// NewValidator creates a Validator with DefaultMinScore.
func NewValidator() *Validator {
	return &Validator{MinScore: DefaultMinScore}
}

// check is the outcome of one sub-check.
type check struct {
	score    float64
	issues   []string
	warnings []string
}

var (
	navigationTitle   = regexp.MustCompile(`(?i)^(home|news|category|section)`)
	sentenceDelimiter = regexp.MustCompile(`[.!?]`)
	navigationPhrases = []string{"click here", "read more", "continue reading"}
)

// Validate returns the verdict for content with the given quality.
func (v *Validator) Validate(content *artex.ExtractedContent, quality *artex.ContentQuality) artex.ValidationResult {
	if content == nil {
		content = &artex.ExtractedContent{}
	}
	if quality == nil {
		quality = &artex.ContentQuality{}
	}

	checks := []check{
		checkTitle(content.Title),
		checkContent(content.Content),
		checkQuality(quality),
		checkFrontpage(quality.FrontpageRisk),
	}

	result := artex.ValidationResult{
		Issues:   []string{},
		Warnings: []string{},
	}
	for _, c := range checks {
		result.Score += c.score
		result.Issues = append(result.Issues, c.issues...)
		result.Warnings = append(result.Warnings, c.warnings...)
	}
	result.Score = math.Min(result.Score, 1.0)

	minScore := v.MinScore
	if minScore == 0 {
		minScore = DefaultMinScore
	}
	result.IsValid = len(result.Issues) == 0 && result.Score >= minScore
	return result
}

func checkTitle(title string) check {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	if n < 3 {
		return check{issues: []string{"title missing or too short"}}
	}

	c := check{score: 0.3}
	if n > 10 && n < 200 {
		c.score += 0.1
	}
	if first, _ := utf8.DecodeRuneInString(title); unicode.IsUpper(first) {
		c.score += 0.05
	}
	if navigationTitle.MatchString(title) {
		c.score -= 0.1
		c.warnings = append(c.warnings, "title looks like navigation/category text")
	}
	if strings.ContainsAny(title, "|-") {
		c.warnings = append(c.warnings, "title may include site name or separators")
	}
	return c
}

func checkContent(content string) check {
	content = strings.TrimSpace(content)
	n := utf8.RuneCountInString(content)
	if n < 50 {
		return check{issues: []string{"content missing or too short"}}
	}

	c := check{score: 0.4}
	if n > 200 {
		c.score += 0.1
	}
	if len(strings.Split(content, "\n\n")) > 2 {
		c.score += 0.1
	}
	if len(sentenceDelimiter.FindAllStringIndex(content, -1)) > 5 {
		c.score += 0.1
	}
	lower := strings.ToLower(content)
	for _, phrase := range navigationPhrases {
		if strings.Contains(lower, phrase) {
			c.score -= 0.1
			c.warnings = append(c.warnings, "content contains navigation phrases")
			break
		}
	}
	return c
}

func checkQuality(q *artex.ContentQuality) check {
	if q.WordCount < 20 || q.Score < 0.3 {
		return check{issues: []string{"content quality below threshold"}}
	}

	c := check{score: math.Min(q.Score, 0.3)}
	if q.TextDensity < 0.25 {
		c.warnings = append(c.warnings, "low text density")
	}
	if q.LinkDensity > 0.3 {
		c.warnings = append(c.warnings, "high link density")
	}
	return c
}

func checkFrontpage(risk artex.FrontpageRisk) check {
	switch risk.Recommendation {
	case artex.RecommendReject:
		return check{issues: []string{"page looks like a frontpage or listing"}}
	case artex.RecommendWarn:
		return check{
			score:    math.Max(0, 0.3*(1-risk.RiskScore)),
			warnings: []string{"page may be a frontpage or listing"},
		}
	}
	return check{score: math.Max(0, 0.3*(1-risk.RiskScore))}
}
