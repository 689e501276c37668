// Package cascade orchestrates article extraction: cache lookup, bespoke
// rule extraction or universal detection, quality analysis, validation,
// confidence scoring and cache write.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/artex"
)

// Ensure Extractor implements artex.ArticleExtractor at compile time.
var _ artex.ArticleExtractor = (*Extractor)(nil)

// BespokeConfidence is the base confidence of rule-based extraction.
const BespokeConfidence = 0.95

// DefaultConcurrency bounds ExtractAll when no concurrency is given.
const DefaultConcurrency = 4

const (
	minContentElementRunes = 10
	minBespokeQuality      = 0.5
	minSingleArticle       = 0.7
	minUniversalQuality    = 0.3
	frontpagePenalty       = 0.5
)

// Extractor runs the extraction cascade. Universal, Quality and Validator
// are required; Rules and Cache are optional.
type Extractor struct {
	Rules     artex.RuleCatalog
	Universal artex.UniversalExtractor
	Quality   artex.QualityAnalyzer
	Validator artex.Validator
	Cache     artex.ResultCache
	Logger    *slog.Logger

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Extractor) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Extractor) elapsed(start time.Time) int64 {
	return e.now().Sub(start).Milliseconds()
}

// Extract runs the cascade for page. It never returns nil and never
// panics; total failure is a result with method "error".
func (e *Extractor) Extract(ctx context.Context, page artex.Page) *artex.ExtractionResult {
	start := e.now()
	url := page.URL()

	if e.Cache != nil {
		if entry, ok := e.Cache.Get(url); ok && entry.Result != nil {
			res := entry.Result
			res.Metadata.CacheHit = artex.Ptr(true)
			res.Metadata.CacheKey = artex.Ptr(e.Cache.Key(url))
			res.Metadata.ExtractionTimeMS = e.elapsed(start)
			e.logger().Debug("cache hit", "url", url, "hits", entry.HitCount)
			return res
		}
	}

	res, err := recoverRun(func() (*artex.ExtractionResult, error) {
		return e.run(ctx, page, start)
	})
	if err == nil {
		return res
	}
	e.logger().Warn("extraction failed, retrying with universal detection", "url", url, "err", err)

	res, err = recoverRun(func() (*artex.ExtractionResult, error) {
		return e.lastResort(ctx, page, start)
	})
	if err == nil {
		return res
	}
	e.logger().Error("all extraction tiers failed", "url", url, "err", err)
	return artex.ErrorResult(e.elapsed(start))
}

// recoverRun calls fn, turning a panic into an error.
func recoverRun(fn func() (*artex.ExtractionResult, error)) (res *artex.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// attempt is the tier outcome before quality and validation.
type attempt struct {
	content    *artex.ExtractedContent
	method     string
	confidence float64
	selectors  []string
	outcomes   []outcome
	applied    []string

	// detected is false when universal detection failed its own gate.
	detected bool
}

func (e *Extractor) run(ctx context.Context, page artex.Page, start time.Time) (*artex.ExtractionResult, error) {
	url := page.URL()

	var match *artex.RuleMatch
	if e.Rules != nil {
		match = e.Rules.FindBestRuleForURL(url)
	}

	var a *attempt
	if match != nil {
		a = e.bespoke(ctx, page, match)
	} else {
		det, err := e.Universal.Extract(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("universal detection: %w", err)
		}
		a = &attempt{
			content:    det.Content,
			method:     det.Method,
			confidence: det.Confidence,
			selectors:  det.SelectorsUsed,
			detected:   det.Success,
		}
	}
	if a.content == nil {
		a.content = &artex.ExtractedContent{}
	}

	quality := e.Quality.Analyze(a.content)
	if quality == nil {
		return nil, errors.New("quality analyzer returned nil")
	}
	verdict := e.Validator.Validate(a.content, quality)

	valid := verdict.IsValid && (match != nil || a.detected)
	confidence := 0.0
	switch {
	case !valid:
	case match != nil:
		confidence = a.confidence *
			math.Max(quality.Score, minBespokeQuality) *
			math.Max(quality.ArticleIndicators.SingleArticleScore, minSingleArticle)
	default:
		confidence = a.confidence *
			math.Max(quality.Score, minUniversalQuality) *
			(1 - quality.FrontpageRisk.RiskScore*frontpagePenalty)
	}
	confidence = math.Max(0, math.Min(1, confidence))

	res := &artex.ExtractionResult{
		Success:    valid,
		Confidence: confidence,
		Method:     a.method,
		Data:       a.content,
		Metadata: artex.ResultMetadata{
			SelectorsUsed:  nonNil(a.selectors),
			ContentQuality: quality.Score,
		},
	}
	res.Data.Provenance = &artex.Provenance{
		Method:            a.method,
		Confidence:        confidence,
		TransformsApplied: a.applied,
	}

	var ruleID string
	if match != nil {
		ruleID = match.Rule.ID
		res.Data.Provenance.RuleID = ruleID
		res.Metadata.RuleID = artex.Ptr(ruleID)
		res.Metadata.RuleName = artex.Ptr(match.Rule.Name)
		res.Metadata.RuleDomainMatch = artex.Ptr(artex.DomainOf(url))
	}

	if !valid {
		e.logger().Debug("extraction rejected",
			"url", url,
			"method", a.method,
			"issues", verdict.Issues,
		)
	}

	if e.Cache != nil {
		res.Metadata.CacheHit = artex.Ptr(false)
		res.Metadata.CacheKey = artex.Ptr(e.Cache.Key(url))
		for _, o := range a.outcomes {
			e.Cache.RecordSelectorPerformance(url, o.field, o.selector, o.success, ruleID)
		}
	}
	res.Metadata.ExtractionTimeMS = e.elapsed(start)
	if e.Cache != nil && valid {
		e.Cache.Store(url, res, quality, ruleID)
	}
	return res, nil
}

// lastResort runs universal detection alone after the main pipeline
// failed.
func (e *Extractor) lastResort(ctx context.Context, page artex.Page, start time.Time) (*artex.ExtractionResult, error) {
	det, err := e.Universal.Extract(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("universal detection: %w", err)
	}
	content := det.Content
	if content == nil {
		content = &artex.ExtractedContent{}
	}
	confidence := det.Confidence
	if !det.Success {
		confidence = 0
	}
	return &artex.ExtractionResult{
		Success:    det.Success,
		Confidence: confidence,
		Method:     det.Method,
		Data:       content,
		Metadata: artex.ResultMetadata{
			SelectorsUsed:    nonNil(det.SelectorsUsed),
			ExtractionTimeMS: e.elapsed(start),
			ContentQuality:   det.Score,
			RetryCount:       artex.Ptr(1),
		},
	}, nil
}

// outcome records whether one selector yielded its field.
type outcome struct {
	field    artex.Field
	selector string
	success  bool
}

// bespoke extracts every configured field of the matched rule and applies
// its content transforms.
func (e *Extractor) bespoke(ctx context.Context, page artex.Page, match *artex.RuleMatch) *attempt {
	rule := match.Rule
	a := &attempt{
		content:    &artex.ExtractedContent{},
		method:     artex.BespokeMethod(rule.ID),
		confidence: BespokeConfidence,
		selectors:  []string{},
	}

	for _, f := range artex.Fields {
		selectors := rule.Selectors.For(f)
		if len(selectors) == 0 {
			continue
		}
		value, used, outcomes, err := e.extractField(ctx, page, f, selectors, rule.Exclusions)
		a.outcomes = append(a.outcomes, outcomes...)
		if err != nil {
			e.logger().Warn("field extraction failed",
				"url", page.URL(),
				"rule", rule.ID,
				"field", f,
				"err", err,
			)
			continue
		}
		if value != "" {
			a.content.Set(f, value)
			a.selectors = append(a.selectors, used)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(rule.Selectors.Segments)) {
		value, used, _, err := e.extractField(ctx, page, artex.Field(name), rule.Selectors.Segments[name], rule.Exclusions)
		if err != nil {
			e.logger().Warn("segment extraction failed",
				"url", page.URL(),
				"rule", rule.ID,
				"segment", name,
				"err", err,
			)
			continue
		}
		if value != "" {
			if a.content.Segments == nil {
				a.content.Segments = make(map[string]string)
			}
			a.content.Segments[name] = value
			a.selectors = append(a.selectors, used)
		}
	}

	for _, t := range match.Transforms {
		if err := applyTransform(t, a.content); err != nil {
			e.logger().Warn("content transform failed",
				"url", page.URL(),
				"rule", rule.ID,
				"transform", t.Name(),
				"err", err,
			)
			continue
		}
		a.applied = append(a.applied, t.Name())
	}
	return a
}

// applyTransform applies t, turning a panic into an error.
func applyTransform(t artex.ContentTransform, c *artex.ExtractedContent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Apply(c)
}

// extractField tries selectors in order and returns the first non-empty
// value with the selector that produced it. Invalid selectors are skipped;
// any other page error aborts the field.
func (e *Extractor) extractField(ctx context.Context, page artex.Page, f artex.Field, selectors, exclusions []string) (string, string, []outcome, error) {
	var outcomes []outcome
	for _, sel := range selectors {
		if strings.TrimSpace(sel) == "" {
			continue
		}
		elems, err := page.QueryAll(ctx, sel)
		if err != nil {
			if artex.ErrorCode(err) == artex.EINVALID {
				e.logger().Warn("skipping invalid selector", "selector", sel, "err", err)
				continue
			}
			return "", "", outcomes, fmt.Errorf("querying %s: %w", sel, err)
		}
		elems, err = exclude(ctx, elems, exclusions)
		if err != nil {
			return "", "", outcomes, err
		}

		var value string
		switch f {
		case artex.FieldContent:
			value, err = joinedText(ctx, elems)
		case artex.FieldDate:
			value, err = firstValue(ctx, elems, "datetime")
		default:
			value, err = firstValue(ctx, elems, "")
		}
		if err != nil {
			return "", "", outcomes, fmt.Errorf("reading %s: %w", sel, err)
		}

		outcomes = append(outcomes, outcome{field: f, selector: sel, success: value != ""})
		if value != "" {
			return value, sel, outcomes, nil
		}
	}
	return "", "", outcomes, nil
}

// exclude drops elements that are, or sit inside, an excluded element.
func exclude(ctx context.Context, elems []artex.Element, exclusions []string) ([]artex.Element, error) {
	if len(exclusions) == 0 {
		return elems, nil
	}
	kept := make([]artex.Element, 0, len(elems))
	for _, el := range elems {
		excluded := false
		for _, x := range exclusions {
			within, err := el.Within(ctx, x)
			if err != nil {
				if artex.ErrorCode(err) == artex.EINVALID {
					continue
				}
				return nil, fmt.Errorf("checking exclusion %s: %w", x, err)
			}
			if within {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, el)
		}
	}
	return kept, nil
}

// joinedText joins the text of every element longer than ten characters
// with blank lines.
func joinedText(ctx context.Context, elems []artex.Element) (string, error) {
	var parts []string
	for _, el := range elems {
		text, err := el.Text(ctx)
		if err != nil {
			return "", err
		}
		if text = strings.TrimSpace(text); utf8.RuneCountInString(text) > minContentElementRunes {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// firstValue returns the first non-empty value among elems, preferring
// attr over text when attr is set.
func firstValue(ctx context.Context, elems []artex.Element, attr string) (string, error) {
	for _, el := range elems {
		if attr != "" {
			v, ok, err := el.Attribute(ctx, attr)
			if err != nil {
				return "", err
			}
			if v = strings.TrimSpace(v); ok && v != "" {
				return v, nil
			}
		}
		text, err := el.Text(ctx)
		if err != nil {
			return "", err
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
	}
	return "", nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// ExtractURL loads url through loader, extracts it and closes the page.
// A load failure yields the method "error" result.
func (e *Extractor) ExtractURL(ctx context.Context, loader artex.PageLoader, url string) *artex.ExtractionResult {
	b := &Batch{Extractor: e, Loader: loader, Logger: e.Logger, Now: e.Now}
	return b.ExtractURL(ctx, url)
}

// ExtractAll extracts urls with at most concurrency pages open at once.
// Results are returned in input order.
func (e *Extractor) ExtractAll(ctx context.Context, loader artex.PageLoader, urls []string, concurrency int) []*artex.ExtractionResult {
	b := &Batch{Extractor: e, Loader: loader, Concurrency: concurrency, Logger: e.Logger, Now: e.Now}
	return b.Run(ctx, urls)
}
