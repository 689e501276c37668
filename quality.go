package artex

// Recommendation is the frontpage-risk verdict on whether to keep an
// extraction.
type Recommendation string

// Frontpage risk recommendations.
const (
	RecommendExtract Recommendation = "extract"
	RecommendWarn    Recommendation = "warn"
	RecommendReject  Recommendation = "reject"
)

// FrontpageRisk estimates whether a page is a listing or index page rather
// than a single article.
type FrontpageRisk struct {
	RiskScore      float64        `json:"riskScore"`
	Recommendation Recommendation `json:"recommendation"`
	Reasons        []string       `json:"reasons,omitempty"`
}

// ArticleIndicators flags structural signals of a single article.
type ArticleIndicators struct {
	SingleArticleScore float64 `json:"singleArticleScore"`
	HasHeadline        bool    `json:"hasHeadline"`
	HasByline          bool    `json:"hasByline"`
	HasDate            bool    `json:"hasDate"`
}

// ContentQuality is the quality assessment of extracted fields.
// The cascade relies only on Score, FrontpageRisk, ArticleIndicators and
// MetadataComplete; the validator additionally reads the count and density
// metrics.
type ContentQuality struct {
	Score             float64           `json:"score"`
	WordCount         int               `json:"wordCount"`
	ParagraphCount    int               `json:"paragraphCount"`
	SentenceCount     int               `json:"sentenceCount"`
	TextDensity       float64           `json:"textDensity"`
	LinkDensity       float64           `json:"linkDensity"`
	MetadataComplete  float64           `json:"metadataComplete"`
	FrontpageRisk     FrontpageRisk     `json:"frontpageRisk"`
	ArticleIndicators ArticleIndicators `json:"articleIndicators"`
}

// Clone returns a deep copy of q. Clone of nil is nil.
func (q *ContentQuality) Clone() *ContentQuality {
	if q == nil {
		return nil
	}
	other := *q
	other.FrontpageRisk.Reasons = append([]string(nil), q.FrontpageRisk.Reasons...)
	return &other
}

// QualityAnalyzer computes the quality of extracted fields.
// Implementations must be safe for concurrent use.
type QualityAnalyzer interface {
	// Analyze assesses content. It never returns nil.
	Analyze(content *ExtractedContent) *ContentQuality
}
