// Package universal implements domain-agnostic article detection from
// structured data (JSON-LD, Microdata, OpenGraph) and semantic HTML.
package universal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/artex"
)

// Ensure Detector implements artex.UniversalExtractor at compile time.
var _ artex.UniversalExtractor = (*Detector)(nil)

// Base confidence per detection method.
const (
	StructuredDataConfidence = 0.9
	HybridConfidence         = 0.8
	SemanticHTMLConfidence   = 0.7
)

const (
	minParagraphRunes = 20
	minTitleRunes     = 3
	minContentRunes   = 50
	minGateWords      = 20
	minGateScore      = 0.3
	minConfidenceMult = 0.3
	scoreFloor        = 0.25
	scoreFloorWords   = 5
)

// containers are tried in order; the first present one scopes the
// semantic pass.
var containers = []string{"article", "main", "[role=article]", "[role=main]"}

// bylines mark an author inside the container or page.
var bylines = []string{"[rel=author]", "[itemprop=author]", ".author", ".byline", ".author-name"}

// Detector extracts article fields without site-specific knowledge.
// It is safe for concurrent use.
type Detector struct {
	logger *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger for the detector.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a Detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// detection accumulates fields across passes. Earlier values win.
type detection struct {
	content  artex.ExtractedContent
	used     []string
	hasData  bool // structured data present anywhere on the page
	semantic bool // semantic pass supplied title or content
}

func (s *detection) fill(f artex.Field, value, selector string) bool {
	value = strings.TrimSpace(value)
	if value == "" || s.content.Get(f) != "" {
		return false
	}
	s.content.Set(f, value)
	s.used = append(s.used, selector)
	return true
}

// Extract runs the structured-data pass then the semantic pass and scores
// the merged result. Errors come from the page only.
func (d *Detector) Extract(ctx context.Context, page artex.Page) (*artex.DetectionResult, error) {
	s := &detection{}

	if err := d.structured(ctx, page, s); err != nil {
		return nil, err
	}
	container, err := d.semanticPass(ctx, page, s)
	if err != nil {
		return nil, err
	}

	score, err := d.score(ctx, page, container, &s.content)
	if err != nil {
		return nil, err
	}

	res := &artex.DetectionResult{
		Content:       &s.content,
		Score:         score,
		SelectorsUsed: s.used,
	}
	switch {
	case s.hasData && !s.semantic:
		res.Method, res.Confidence = artex.MethodStructuredData, StructuredDataConfidence
	case s.hasData:
		res.Method, res.Confidence = artex.MethodHybrid, HybridConfidence
	default:
		res.Method, res.Confidence = artex.MethodSemanticHTML, SemanticHTMLConfidence
	}
	res.Content.Provenance = &artex.Provenance{Method: res.Method}

	title := utf8.RuneCountInString(s.content.Title)
	body := utf8.RuneCountInString(s.content.Content)
	words := len(strings.Fields(s.content.Content))
	res.Success = (title > minTitleRunes || body > minContentRunes) &&
		(words > minGateWords || score > minGateScore)
	if res.Success {
		res.Confidence *= math.Max(score, minConfidenceMult)
	} else {
		res.Confidence = 0
	}
	res.Content.Provenance.Confidence = res.Confidence
	return res, nil
}

// structured fills fields from JSON-LD, then Microdata, then OpenGraph.
func (d *Detector) structured(ctx context.Context, page artex.Page, s *detection) error {
	scripts, err := page.QueryAll(ctx, `script[type="application/ld+json"]`)
	if err != nil {
		return fmt.Errorf("querying json-ld: %w", err)
	}
	for _, el := range scripts {
		raw, err := el.Text(ctx)
		if err != nil {
			return fmt.Errorf("reading json-ld: %w", err)
		}
		var doc any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			d.logger.Debug("skipping malformed json-ld", "url", page.URL(), "err", err)
			continue
		}
		s.hasData = true
		if a := findArticle(doc); a != nil {
			fillFromJSONLD(s, a)
			break
		}
	}

	items, err := page.QueryAll(ctx, "[itemscope][itemtype]")
	if err != nil {
		return fmt.Errorf("querying microdata: %w", err)
	}
	if len(items) > 0 {
		s.hasData = true
		if err := d.microdata(ctx, page, s); err != nil {
			return err
		}
	}

	return d.openGraph(ctx, page, s)
}

// findArticle walks a decoded JSON-LD value for the first article object,
// descending into arrays and @graph.
func findArticle(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if a := findArticle(item); a != nil {
				return a
			}
		}
	case map[string]any:
		if isArticleType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findArticle(graph)
		}
	}
	return nil
}

func isArticleType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.HasSuffix(t, "Article") || t == "BlogPosting"
	case []any:
		for _, item := range t {
			if isArticleType(item) {
				return true
			}
		}
	}
	return false
}

func fillFromJSONLD(s *detection, a map[string]any) {
	const sel = "json-ld"
	s.fill(artex.FieldTitle, firstString(a, "headline", "name"), sel)
	s.fill(artex.FieldContent, firstString(a, "articleBody"), sel)
	s.fill(artex.FieldAuthor, authorName(a["author"]), sel)
	s.fill(artex.FieldDate, firstString(a, "datePublished", "dateCreated"), sel)
	s.fill(artex.FieldSummary, firstString(a, "description"), sel)
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func authorName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		return firstString(t, "name")
	case []any:
		for _, item := range t {
			if name := authorName(item); name != "" {
				return name
			}
		}
	}
	return ""
}

// nestedItem matches an item that is a property of another item, such as
// the Person behind an author.
const nestedItem = "[itemscope][itemprop]:not([itemtype*=Article])"

// microdataFields list article properties. Properties marked own are read
// only when they belong to the article item itself, not to a nested item.
var microdataFields = []struct {
	field     artex.Field
	selectors []string
	own       bool
}{
	{artex.FieldTitle, []string{"[itemprop=headline]", "[itemprop=name]"}, true},
	{artex.FieldContent, []string{"[itemprop=articleBody]"}, true},
	{artex.FieldAuthor, []string{"[itemprop=author] [itemprop=name]", "[itemprop=author]"}, false},
	{artex.FieldDate, []string{"[itemprop=datePublished]", "[itemprop=dateCreated]"}, true},
	{artex.FieldSummary, []string{"[itemprop=description]"}, true},
}

func (d *Detector) microdata(ctx context.Context, page artex.Page, s *detection) error {
	for _, md := range microdataFields {
		for _, sel := range md.selectors {
			v, err := itemValue(ctx, page, sel, md.own)
			if err != nil {
				return fmt.Errorf("querying microdata %s: %w", sel, err)
			}
			if s.fill(md.field, v, sel) {
				break
			}
		}
	}
	return nil
}

// itemValue reads a microdata property from content or datetime before
// falling back to text. With own set, matches inside a nested item are
// skipped.
func itemValue(ctx context.Context, page artex.Page, selector string, own bool) (string, error) {
	els, err := page.QueryAll(ctx, selector)
	if err != nil {
		return "", err
	}
	for _, el := range els {
		if own {
			nested, err := el.Within(ctx, nestedItem)
			if err != nil {
				return "", err
			}
			if nested {
				continue
			}
		}
		return propertyValue(ctx, el)
	}
	return "", nil
}

func propertyValue(ctx context.Context, el artex.Element) (string, error) {
	for _, attr := range []string{"content", "datetime"} {
		v, ok, err := el.Attribute(ctx, attr)
		if err != nil {
			return "", err
		}
		if ok && strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	return el.Text(ctx)
}

var openGraphFields = []struct {
	field    artex.Field
	property string
}{
	{artex.FieldTitle, "og:title"},
	{artex.FieldSummary, "og:description"},
	{artex.FieldAuthor, "article:author"},
	{artex.FieldDate, "article:published_time"},
}

func (d *Detector) openGraph(ctx context.Context, page artex.Page, s *detection) error {
	for _, og := range openGraphFields {
		sel := fmt.Sprintf(`meta[property="%s"]`, og.property)
		els, err := page.QueryAll(ctx, sel)
		if err != nil {
			return fmt.Errorf("querying %s: %w", og.property, err)
		}
		if len(els) == 0 {
			continue
		}
		s.hasData = true
		v, _, err := els[0].Attribute(ctx, "content")
		if err != nil {
			return fmt.Errorf("reading %s: %w", og.property, err)
		}
		s.fill(og.field, v, sel)
	}
	return nil
}

// semanticPass fills still-empty fields from the main content container
// and returns the container selector used.
func (d *Detector) semanticPass(ctx context.Context, page artex.Page, s *detection) (string, error) {
	container := "body"
	for _, c := range containers {
		els, err := page.QueryAll(ctx, c)
		if err != nil {
			return "", fmt.Errorf("querying container %s: %w", c, err)
		}
		if len(els) > 0 {
			container = c
			break
		}
	}

	if s.content.Title == "" {
		for _, sel := range []string{container + " h1", "h1"} {
			v, err := firstText(ctx, page, sel)
			if err != nil {
				return "", err
			}
			if s.fill(artex.FieldTitle, v, sel) {
				s.semantic = true
				break
			}
		}
	}

	if s.content.Content == "" {
		sel := container + " p"
		v, err := paragraphText(ctx, page, sel)
		if err != nil {
			return "", err
		}
		if s.fill(artex.FieldContent, v, sel) {
			s.semantic = true
		}
	}

	if s.content.Date == "" {
		for _, sel := range []string{container + " time[datetime]", "time[datetime]"} {
			v, err := itemValue(ctx, page, sel, false)
			if err != nil {
				return "", fmt.Errorf("querying %s: %w", sel, err)
			}
			if s.fill(artex.FieldDate, v, sel) {
				break
			}
		}
	}

	if s.content.Author == "" {
		if err := d.author(ctx, page, container, s); err != nil {
			return "", err
		}
	}

	return container, nil
}

func (d *Detector) author(ctx context.Context, page artex.Page, container string, s *detection) error {
	for _, scope := range []string{container + " ", ""} {
		for _, b := range bylines {
			sel := scope + b
			v, err := firstText(ctx, page, sel)
			if err != nil {
				return err
			}
			if s.fill(artex.FieldAuthor, v, sel) {
				return nil
			}
		}
	}
	els, err := page.QueryAll(ctx, `meta[name="author"]`)
	if err != nil {
		return fmt.Errorf("querying author meta: %w", err)
	}
	if len(els) > 0 {
		v, _, err := els[0].Attribute(ctx, "content")
		if err != nil {
			return fmt.Errorf("reading author meta: %w", err)
		}
		s.fill(artex.FieldAuthor, v, `meta[name="author"]`)
	}
	return nil
}

func firstText(ctx context.Context, page artex.Page, selector string) (string, error) {
	els, err := page.QueryAll(ctx, selector)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", selector, err)
	}
	for _, el := range els {
		text, err := el.Text(ctx)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", selector, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
	}
	return "", nil
}

func paragraphText(ctx context.Context, page artex.Page, selector string) (string, error) {
	els, err := page.QueryAll(ctx, selector)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", selector, err)
	}
	var parts []string
	for _, el := range els {
		text, err := el.Text(ctx)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", selector, err)
		}
		if text = strings.TrimSpace(text); utf8.RuneCountInString(text) > minParagraphRunes {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// score computes the basic quality score of the merged fields.
func (d *Detector) score(ctx context.Context, page artex.Page, container string, c *artex.ExtractedContent) (float64, error) {
	words := len(strings.Fields(c.Content))
	paragraphs := 0
	for _, p := range strings.Split(c.Content, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}

	containerText, err := textLength(ctx, page, container)
	if err != nil {
		return 0, err
	}
	bodyText, err := textLength(ctx, page, "body")
	if err != nil {
		return 0, err
	}
	linkText, err := textLength(ctx, page, container+" a")
	if err != nil {
		return 0, err
	}

	var textDensity, linkDensity float64
	if bodyText > 0 {
		textDensity = float64(containerText) / float64(bodyText)
	}
	if containerText > 0 {
		linkDensity = float64(linkText) / float64(containerText)
	}

	var meta int
	for _, v := range []string{c.Title, c.Author, c.Date} {
		if v != "" {
			meta++
		}
	}

	linkScore := 1.0
	if linkDensity >= 0.3 {
		linkScore = math.Max(0, (0.3-linkDensity)/0.3)
	}

	score := 0.25*math.Min(float64(words)/100, 1) +
		0.2*math.Min(float64(paragraphs)/2, 1) +
		0.2*math.Min(textDensity*4, 1) +
		0.15*linkScore +
		0.2*(float64(meta)/3)
	if words > scoreFloorWords {
		score = math.Max(score, scoreFloor)
	}
	return math.Min(score, 1), nil
}

// textLength sums the trimmed text length of every element matching
// selector.
func textLength(ctx context.Context, page artex.Page, selector string) (int, error) {
	els, err := page.QueryAll(ctx, selector)
	if err != nil {
		return 0, fmt.Errorf("querying %s: %w", selector, err)
	}
	var n int
	for _, el := range els {
		text, err := el.Text(ctx)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", selector, err)
		}
		n += utf8.RuneCountInString(strings.TrimSpace(text))
	}
	return n, nil
}
