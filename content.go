package artex

import "maps"

// Field identifies one extractable article field.
type Field string

// Extractable fields.
const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldAuthor  Field = "author"
	FieldDate    Field = "date"
	FieldSummary Field = "summary"
)

// Fields lists every extractable field in extraction order.
var Fields = []Field{FieldTitle, FieldContent, FieldAuthor, FieldDate, FieldSummary}

// ExtractedContent holds the fields produced by one extraction attempt.
// Empty strings mean the field was not found.
type ExtractedContent struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Author  string `json:"author,omitempty"`
	Date    string `json:"date,omitempty"`
	Summary string `json:"summary,omitempty"`

	// Segments holds rule-defined named fragments (e.g., "lead", "factbox").
	Segments map[string]string `json:"segments,omitempty"`

	Provenance *Provenance `json:"metadata,omitempty"`
}

// Provenance records how an ExtractedContent was produced.
type Provenance struct {
	RuleID            string   `json:"ruleId,omitempty"`
	Method            string   `json:"method"`
	Confidence        float64  `json:"confidence"`
	TransformsApplied []string `json:"transformsApplied,omitempty"`
}

// Get returns the value of field f.
func (c *ExtractedContent) Get(f Field) string {
	switch f {
	case FieldTitle:
		return c.Title
	case FieldContent:
		return c.Content
	case FieldAuthor:
		return c.Author
	case FieldDate:
		return c.Date
	case FieldSummary:
		return c.Summary
	}
	return ""
}

// Set assigns v to field f. Unknown fields are ignored.
func (c *ExtractedContent) Set(f Field, v string) {
	switch f {
	case FieldTitle:
		c.Title = v
	case FieldContent:
		c.Content = v
	case FieldAuthor:
		c.Author = v
	case FieldDate:
		c.Date = v
	case FieldSummary:
		c.Summary = v
	}
}

// Clone returns a deep copy of c. Clone of nil is nil.
func (c *ExtractedContent) Clone() *ExtractedContent {
	if c == nil {
		return nil
	}
	other := *c
	if c.Segments != nil {
		other.Segments = maps.Clone(c.Segments)
	}
	if c.Provenance != nil {
		p := *c.Provenance
		p.TransformsApplied = append([]string(nil), c.Provenance.TransformsApplied...)
		other.Provenance = &p
	}
	return &other
}
