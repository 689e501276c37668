package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/artex"
)

// ScopeDate targets the date field. It is the default scope of
// normalizeDate steps.
const ScopeDate = "date"

// Transform is a compiled content processing step.
type Transform struct {
	step   artex.ProcessingStep
	re     *regexp.Regexp
	fields []artex.Field
}

// Name returns the step type (e.g., "removePhrase").
func (t *Transform) Name() string {
	return t.step.Type
}

// Apply rewrites the scoped fields of c in place.
func (t *Transform) Apply(c *artex.ExtractedContent) error {
	if c == nil {
		return artex.Errorf(artex.EINVALID, "%s: no content", t.step.Type)
	}
	for _, f := range t.fields {
		v := c.Get(f)
		if v == "" {
			continue
		}
		switch t.step.Type {
		case artex.StepRemovePhrase:
			v = strings.TrimSpace(t.re.ReplaceAllString(v, ""))
		case artex.StepReplaceText:
			v = t.re.ReplaceAllString(v, t.step.Replacement)
		case artex.StepNormalizeDate:
			v = NormalizeDate(v)
		case artex.StepNormalizeWhitespace:
			v = normalizeWhitespace(v, f == artex.FieldContent)
		default:
			return artex.Errorf(artex.EINVALID, "unknown transform %q", t.step.Type)
		}
		c.Set(f, v)
	}
	return nil
}

// Compile validates and compiles processing steps in declared order.
// Steps that cannot be compiled are dropped and reported in warnings.
func Compile(steps []artex.ProcessingStep) ([]*Transform, []string) {
	var transforms []*Transform
	var warnings []string
	for i, step := range steps {
		t, err := compileStep(step)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("step #%d (%s): %s", i, step.Type, artex.ErrorMessage(err)))
			continue
		}
		transforms = append(transforms, t)
	}
	return transforms, warnings
}

func compileStep(step artex.ProcessingStep) (*Transform, error) {
	t := &Transform{step: step}

	switch step.Type {
	case artex.StepRemovePhrase, artex.StepReplaceText:
		if step.Pattern == "" {
			return nil, artex.Errorf(artex.EINVALID, "pattern required")
		}
		re, err := regexp.Compile("(?i)" + step.Pattern)
		if err != nil {
			return nil, artex.Errorf(artex.EINVALID, "invalid pattern %q: %v", step.Pattern, err)
		}
		t.re = re
	case artex.StepNormalizeDate, artex.StepNormalizeWhitespace:
	default:
		return nil, artex.Errorf(artex.EINVALID, "unknown step type")
	}

	fields, err := scopeFields(step)
	if err != nil {
		return nil, err
	}
	t.fields = fields
	return t, nil
}

// scopeFields resolves a step scope to the fields it rewrites.
func scopeFields(step artex.ProcessingStep) ([]artex.Field, error) {
	scope := step.Scope
	if scope == "" {
		if step.Type == artex.StepNormalizeDate {
			scope = ScopeDate
		} else {
			scope = artex.ScopeAll
		}
	}

	switch scope {
	case artex.ScopeContent:
		return []artex.Field{artex.FieldContent}, nil
	case artex.ScopeTitle:
		return []artex.Field{artex.FieldTitle}, nil
	case artex.ScopeAuthor:
		return []artex.Field{artex.FieldAuthor}, nil
	case ScopeDate:
		return []artex.Field{artex.FieldDate}, nil
	case artex.ScopeAll:
		if step.Type == artex.StepNormalizeDate {
			return []artex.Field{artex.FieldDate}, nil
		}
		return []artex.Field{artex.FieldTitle, artex.FieldContent, artex.FieldAuthor, artex.FieldSummary}, nil
	}
	return nil, artex.Errorf(artex.EINVALID, "unknown scope %q", scope)
}

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// normalizeWhitespace collapses whitespace runs and trims. Paragraph breaks
// survive as a single blank line when keepParagraphs is set.
func normalizeWhitespace(s string, keepParagraphs bool) string {
	if !keepParagraphs {
		return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	}
	var paras []string
	for _, p := range paragraphBreak.Split(s, -1) {
		p = strings.TrimSpace(whitespaceRun.ReplaceAllString(p, " "))
		if p != "" {
			paras = append(paras, p)
		}
	}
	return strings.Join(paras, "\n\n")
}
