package artex

import "strings"

// Extraction method labels reported in ExtractionResult.Method.
const (
	MethodStructuredData = "structured-data"
	MethodHybrid         = "hybrid"
	MethodSemanticHTML   = "semantic-html"
	MethodError          = "error"

	// BespokeMethodPrefix prefixes the method of rule-based extractions,
	// followed by the rule ID (e.g., "bespoke-vg-no").
	BespokeMethodPrefix = "bespoke-"
)

// BespokeMethod returns the method label for an extraction by rule ruleID.
func BespokeMethod(ruleID string) string {
	return BespokeMethodPrefix + ruleID
}

// IsBespokeMethod reports whether method names a rule-based extraction.
func IsBespokeMethod(method string) bool {
	return strings.HasPrefix(method, BespokeMethodPrefix)
}

// ExtractionResult is the public output of the extraction cascade.
// Its JSON shape is a stable contract consumed by analytics and rule
// optimization tooling.
type ExtractionResult struct {
	Success    bool              `json:"success"`
	Confidence float64           `json:"confidence"`
	Method     string            `json:"method"`
	Data       *ExtractedContent `json:"data"`
	Metadata   ResultMetadata    `json:"metadata"`
}

// ResultMetadata describes how a result was produced.
type ResultMetadata struct {
	SelectorsUsed    []string `json:"selectors_used"`
	ExtractionTimeMS int64    `json:"extraction_time_ms"`
	ContentQuality   float64  `json:"content_quality"`
	RuleID           *string  `json:"rule_id,omitempty"`
	RuleName         *string  `json:"rule_name,omitempty"`
	RuleDomainMatch  *string  `json:"rule_domain_match,omitempty"`
	CacheHit         *bool    `json:"cache_hit,omitempty"`
	CacheKey         *string  `json:"cache_key,omitempty"`
	RetryCount       *int     `json:"retry_count,omitempty"`
}

// ErrorResult returns the well-formed zero-confidence result produced when
// every extraction tier failed.
func ErrorResult(elapsedMS int64) *ExtractionResult {
	return &ExtractionResult{
		Success:    false,
		Confidence: 0,
		Method:     MethodError,
		Data:       &ExtractedContent{},
		Metadata: ResultMetadata{
			SelectorsUsed:    []string{},
			ExtractionTimeMS: elapsedMS,
		},
	}
}

// Clone returns a deep copy of r. Clone of nil is nil.
func (r *ExtractionResult) Clone() *ExtractionResult {
	if r == nil {
		return nil
	}
	other := *r
	other.Data = r.Data.Clone()
	m := r.Metadata
	if r.Metadata.SelectorsUsed != nil {
		m.SelectorsUsed = append(make([]string, 0, len(r.Metadata.SelectorsUsed)), r.Metadata.SelectorsUsed...)
	}
	m.RuleID = clonePtr(r.Metadata.RuleID)
	m.RuleName = clonePtr(r.Metadata.RuleName)
	m.RuleDomainMatch = clonePtr(r.Metadata.RuleDomainMatch)
	m.CacheHit = clonePtr(r.Metadata.CacheHit)
	m.CacheKey = clonePtr(r.Metadata.CacheKey)
	m.RetryCount = clonePtr(r.Metadata.RetryCount)
	other.Metadata = m
	return &other
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v. It is used to fill optional metadata fields.
func Ptr[T any](v T) *T {
	return &v
}
