package slog

import (
	"log/slog"

	"github.com/fwojciec/artex"
)

// Ensure LoggingAnalyzer implements artex.QualityAnalyzer.
var _ artex.QualityAnalyzer = (*LoggingAnalyzer)(nil)

// LoggingAnalyzer wraps a QualityAnalyzer with debug logging of scores and
// frontpage risk.
type LoggingAnalyzer struct {
	next   artex.QualityAnalyzer
	logger *slog.Logger
}

// NewLoggingAnalyzer creates a new LoggingAnalyzer.
func NewLoggingAnalyzer(next artex.QualityAnalyzer, logger *slog.Logger) *LoggingAnalyzer {
	return &LoggingAnalyzer{next: next, logger: logger}
}

// Analyze delegates to the wrapped analyzer and logs the assessment.
func (a *LoggingAnalyzer) Analyze(content *artex.ExtractedContent) *artex.ContentQuality {
	q := a.next.Analyze(content)
	if q == nil {
		return nil
	}
	a.logger.Debug("quality",
		"score", q.Score,
		"words", q.WordCount,
		"frontpage_risk", q.FrontpageRisk.RiskScore,
		"recommendation", string(q.FrontpageRisk.Recommendation),
		"reasons", q.FrontpageRisk.Reasons,
	)
	return q
}
