package artex

import "context"

// ArticleExtractor runs the full extraction cascade for a page.
type ArticleExtractor interface {
	// Extract never fails: failure is reported through Success and
	// Confidence of the returned result.
	Extract(ctx context.Context, page Page) *ExtractionResult
}

// DetectionResult is the output of domain-agnostic detection.
type DetectionResult struct {
	Content       *ExtractedContent
	Method        string
	Confidence    float64
	Score         float64
	Success       bool
	SelectorsUsed []string
}

// UniversalExtractor extracts article fields without site knowledge.
type UniversalExtractor interface {
	Extract(ctx context.Context, page Page) (*DetectionResult, error)
}
