package mock

import (
	"context"

	"github.com/fwojciec/artex"
)

// Compile-time interface verification.
var (
	_ artex.ArticleExtractor   = (*ArticleExtractor)(nil)
	_ artex.UniversalExtractor = (*UniversalExtractor)(nil)
	_ artex.QualityAnalyzer    = (*QualityAnalyzer)(nil)
	_ artex.Validator          = (*Validator)(nil)
)

// ArticleExtractor is a mock implementation of artex.ArticleExtractor.
type ArticleExtractor struct {
	ExtractFn func(ctx context.Context, page artex.Page) *artex.ExtractionResult
}

func (e *ArticleExtractor) Extract(ctx context.Context, page artex.Page) *artex.ExtractionResult {
	return e.ExtractFn(ctx, page)
}

// UniversalExtractor is a mock implementation of artex.UniversalExtractor.
type UniversalExtractor struct {
	ExtractFn func(ctx context.Context, page artex.Page) (*artex.DetectionResult, error)
}

func (e *UniversalExtractor) Extract(ctx context.Context, page artex.Page) (*artex.DetectionResult, error) {
	return e.ExtractFn(ctx, page)
}

// QualityAnalyzer is a mock implementation of artex.QualityAnalyzer.
type QualityAnalyzer struct {
	AnalyzeFn func(content *artex.ExtractedContent) *artex.ContentQuality
}

func (a *QualityAnalyzer) Analyze(content *artex.ExtractedContent) *artex.ContentQuality {
	return a.AnalyzeFn(content)
}

// Validator is a mock implementation of artex.Validator.
type Validator struct {
	ValidateFn func(content *artex.ExtractedContent, quality *artex.ContentQuality) artex.ValidationResult
}

func (v *Validator) Validate(content *artex.ExtractedContent, quality *artex.ContentQuality) artex.ValidationResult {
	return v.ValidateFn(content, quality)
}
