package artex

// ValidationResult is the verdict on whether an extraction is acceptable.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Score    float64  `json:"score"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// Validator decides whether extracted content is acceptable.
// Validate must be a pure function of its inputs.
type Validator interface {
	Validate(content *ExtractedContent, quality *ContentQuality) ValidationResult
}
