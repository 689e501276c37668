package artex

import (
	"net/url"
	"strings"
)

// Rule priority bounds.
const (
	MinRulePriority = 0
	MaxRulePriority = 1000
)

// Content processing step types.
const (
	StepRemovePhrase        = "removePhrase"
	StepReplaceText         = "replaceText"
	StepNormalizeDate       = "normalizeDate"
	StepNormalizeWhitespace = "normalizeWhitespace"
)

// Content processing scopes. An empty scope means ScopeAll.
const (
	ScopeContent = "content"
	ScopeTitle   = "title"
	ScopeAuthor  = "author"
	ScopeAll     = "all"
)

// SiteRule is a bespoke extraction configuration for one or more domains.
// Rules are immutable once loaded.
type SiteRule struct {
	ID                string           `json:"id" yaml:"id"`
	Name              string           `json:"name" yaml:"name"`
	Domains           []string         `json:"domains" yaml:"domains"`
	URLPatterns       []string         `json:"urlPatterns,omitempty" yaml:"urlPatterns,omitempty"`
	Priority          int              `json:"priority" yaml:"priority"`
	Selectors         SelectorSet      `json:"selectors" yaml:"selectors"`
	Exclusions        []string         `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`
	ContentProcessing []ProcessingStep `json:"contentProcessing,omitempty" yaml:"contentProcessing,omitempty"`
	Metadata          RuleMetadata     `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// SelectorSet lists candidate selectors per field, tried in declared order.
type SelectorSet struct {
	Title    []string            `json:"title" yaml:"title"`
	Content  []string            `json:"content" yaml:"content"`
	Author   []string            `json:"author,omitempty" yaml:"author,omitempty"`
	Date     []string            `json:"date,omitempty" yaml:"date,omitempty"`
	Summary  []string            `json:"summary,omitempty" yaml:"summary,omitempty"`
	Segments map[string][]string `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// For returns the selectors configured for field f.
func (s SelectorSet) For(f Field) []string {
	switch f {
	case FieldTitle:
		return s.Title
	case FieldContent:
		return s.Content
	case FieldAuthor:
		return s.Author
	case FieldDate:
		return s.Date
	case FieldSummary:
		return s.Summary
	}
	return nil
}

// ProcessingStep is one configured content transform.
type ProcessingStep struct {
	Type        string `json:"type" yaml:"type"`
	Pattern     string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
	Scope       string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// RuleMetadata holds descriptive, non-functional rule information.
type RuleMetadata struct {
	Language    string   `json:"language,omitempty" yaml:"language,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	TestURLs    []string `json:"testUrls,omitempty" yaml:"testUrls,omitempty"`
}

// Validate returns an error if the rule cannot be used for extraction.
// Only the fields needed to index the rule are checked.
func (r *SiteRule) Validate() error {
	if r.ID == "" {
		return Errorf(EINVALID, "rule id required")
	}
	if len(r.Domains) == 0 {
		return Errorf(EINVALID, "rule %q: at least one domain required", r.ID)
	}
	return nil
}

// ValidateStrict is Validate plus the checks enabled by rule validation:
// name, title and content selectors, and priority range.
func (r *SiteRule) ValidateStrict() error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Name == "" {
		return Errorf(EINVALID, "rule %q: name required", r.ID)
	}
	if len(nonEmpty(r.Selectors.Title)) == 0 {
		return Errorf(EINVALID, "rule %q: title selectors required", r.ID)
	}
	if len(nonEmpty(r.Selectors.Content)) == 0 {
		return Errorf(EINVALID, "rule %q: content selectors required", r.ID)
	}
	if r.Priority < MinRulePriority || r.Priority > MaxRulePriority {
		return Errorf(EINVALID, "rule %q: priority %d outside %d-%d", r.ID, r.Priority, MinRulePriority, MaxRulePriority)
	}
	return nil
}

func nonEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// RuleMatch is the result of a rule lookup for a URL.
type RuleMatch struct {
	Rule        *SiteRule
	MatchScore  float64
	MatchReason string

	// Transforms are the rule's compiled content processing steps in
	// declared order.
	Transforms []ContentTransform
}

// ContentTransform is one compiled content processing step.
type ContentTransform interface {
	// Name returns the step type.
	Name() string

	// Apply rewrites content in place.
	Apply(content *ExtractedContent) error
}

// RuleCatalog answers which bespoke rules apply to a URL.
// Implementations must be safe for concurrent use.
type RuleCatalog interface {
	// FindRulesForDomain returns the rules for a domain in priority order.
	FindRulesForDomain(domain string) []*SiteRule

	// FindRulesForURL returns the domain rules whose URL patterns match.
	FindRulesForURL(rawURL string) []*SiteRule

	// FindBestRuleForURL returns the highest priority matching rule,
	// or nil if no rule applies.
	FindBestRuleForURL(rawURL string) *RuleMatch
}

// NormalizeDomain lowercases a host name and strips a leading "www.".
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimSuffix(d, ".")
	return strings.TrimPrefix(d, "www.")
}

// DomainOf returns the normalized domain of rawURL without port.
// It returns the empty string if rawURL cannot be parsed.
func DomainOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return NormalizeDomain(u.Hostname())
}
