// Package quality provides a heuristic QualityAnalyzer over extracted fields.
package quality

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/artex"
)

// Ensure Analyzer implements artex.QualityAnalyzer at compile time.
var _ artex.QualityAnalyzer = (*Analyzer)(nil)

const (
	// Recommendation thresholds on the frontpage risk score.
	RejectThreshold = 0.7
	WarnThreshold   = 0.4

	// longBlockRunes is the length from which a paragraph reads as body text.
	longBlockRunes = 80

	// Score saturation points.
	optimalWordCount      = 300
	optimalParagraphCount = 3
	maxLinkDensity        = 0.3

	// Score weights; they sum to 1.
	wordCountWeight = 0.3
	paragraphWeight = 0.2
	densityWeight   = 0.2
	linkWeight      = 0.15
	metadataWeight  = 0.15

	// Listing signals.
	minBlocksForListing      = 5
	shortBlockShareListing   = 0.6
	minReadMoreForListing    = 3
	shortBlockRisk           = 0.35
	readMoreRisk             = 0.3
	listingTitleRisk         = 0.2
	missingBylineAndDateRisk = 0.15
)

var (
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd    = regexp.MustCompile(`[.!?]+(\s|$)`)
	readMore       = regexp.MustCompile(`(?i)\b(read more|continue reading|les mer|mehr lesen|lire la suite)\b`)
	listingTitle   = regexp.MustCompile(`(?i)^(home|front ?page|latest|news|headlines|archive|category|section|topics?)\b`)
)

// navigationTokens are words that, like links, indicate page chrome rather
// than article prose.
var navigationTokens = map[string]bool{
	"home": true, "menu": true, "login": true, "subscribe": true,
	"share": true, "next": true, "previous": true, "prev": true,
	"»": true, "«": true, "›": true, "‹": true, "|": true,
}

// Analyzer scores extracted fields without access to the page.
// The zero value is ready to use and safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze assesses content. A nil content is treated as empty.
func (a *Analyzer) Analyze(content *artex.ExtractedContent) *artex.ContentQuality {
	if content == nil {
		content = &artex.ExtractedContent{}
	}

	text := strings.TrimSpace(content.Content)
	blocks := paragraphs(text)
	words := strings.Fields(text)

	q := &artex.ContentQuality{
		WordCount:      len(words),
		ParagraphCount: len(blocks),
		SentenceCount:  len(sentenceEnd.FindAllStringIndex(text, -1)),
		TextDensity:    textDensity(blocks),
		LinkDensity:    linkDensity(words),
	}
	q.MetadataComplete = metadataComplete(content)
	q.ArticleIndicators = indicators(content, blocks)
	q.FrontpageRisk = frontpageRisk(content, text, blocks)
	q.Score = score(q)
	return q
}

func paragraphs(text string) []string {
	if text == "" {
		return nil
	}
	var blocks []string
	for _, b := range paragraphSplit.Split(text, -1) {
		if b = strings.TrimSpace(b); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// textDensity is the share of content characters that sit in
// paragraph-length blocks.
func textDensity(blocks []string) float64 {
	var total, long int
	for _, b := range blocks {
		n := utf8.RuneCountInString(b)
		total += n
		if n >= longBlockRunes {
			long += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(long) / float64(total)
}

// linkDensity is the share of words that are URLs or navigation tokens.
func linkDensity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	var links int
	for _, w := range words {
		lower := strings.ToLower(w)
		switch {
		case strings.HasPrefix(lower, "http://"),
			strings.HasPrefix(lower, "https://"),
			strings.HasPrefix(lower, "www."):
			links++
		case navigationTokens[strings.Trim(lower, ".,:;!?()[]\"'")]:
			links++
		}
	}
	return float64(links) / float64(len(words))
}

func metadataComplete(c *artex.ExtractedContent) float64 {
	var present int
	for _, v := range []string{c.Title, c.Author, c.Date} {
		if strings.TrimSpace(v) != "" {
			present++
		}
	}
	return float64(present) / 3
}

func indicators(c *artex.ExtractedContent, blocks []string) artex.ArticleIndicators {
	ind := artex.ArticleIndicators{
		HasHeadline: utf8.RuneCountInString(strings.TrimSpace(c.Title)) > 3,
		HasByline:   strings.TrimSpace(c.Author) != "",
		HasDate:     strings.TrimSpace(c.Date) != "",
	}

	var long int
	for _, b := range blocks {
		if utf8.RuneCountInString(b) >= longBlockRunes {
			long++
		}
	}

	var s float64
	if ind.HasHeadline {
		s += 0.3
	}
	if ind.HasByline {
		s += 0.2
	}
	if ind.HasDate {
		s += 0.2
	}
	s += 0.3 * math.Min(float64(long)/optimalParagraphCount, 1)
	ind.SingleArticleScore = math.Min(s, 1)
	return ind
}

func frontpageRisk(c *artex.ExtractedContent, text string, blocks []string) artex.FrontpageRisk {
	var risk artex.FrontpageRisk

	if len(blocks) >= minBlocksForListing {
		var short int
		for _, b := range blocks {
			if utf8.RuneCountInString(b) < longBlockRunes {
				short++
			}
		}
		if float64(short)/float64(len(blocks)) >= shortBlockShareListing {
			risk.RiskScore += shortBlockRisk
			risk.Reasons = append(risk.Reasons, "many short text blocks")
		}
	}
	if len(readMore.FindAllStringIndex(text, -1)) >= minReadMoreForListing {
		risk.RiskScore += readMoreRisk
		risk.Reasons = append(risk.Reasons, "repeated read-more links")
	}
	if listingTitle.MatchString(strings.TrimSpace(c.Title)) {
		risk.RiskScore += listingTitleRisk
		risk.Reasons = append(risk.Reasons, "title looks like a listing")
	}
	if strings.TrimSpace(c.Author) == "" && strings.TrimSpace(c.Date) == "" {
		risk.RiskScore += missingBylineAndDateRisk
		risk.Reasons = append(risk.Reasons, "no byline or date")
	}

	risk.RiskScore = math.Min(risk.RiskScore, 1)
	risk.Recommendation = Recommend(risk.RiskScore)
	return risk
}

// Recommend maps a frontpage risk score to a recommendation.
func Recommend(riskScore float64) artex.Recommendation {
	switch {
	case riskScore >= RejectThreshold:
		return artex.RecommendReject
	case riskScore >= WarnThreshold:
		return artex.RecommendWarn
	default:
		return artex.RecommendExtract
	}
}

func score(q *artex.ContentQuality) float64 {
	s := wordCountWeight*math.Min(float64(q.WordCount)/optimalWordCount, 1) +
		paragraphWeight*math.Min(float64(q.ParagraphCount)/optimalParagraphCount, 1) +
		densityWeight*q.TextDensity +
		linkWeight*math.Max(0, 1-q.LinkDensity/maxLinkDensity) +
		metadataWeight*q.MetadataComplete
	if q.WordCount == 0 {
		return 0
	}
	return math.Max(0, math.Min(s, 1))
}
