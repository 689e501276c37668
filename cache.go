package artex

import (
	"maps"
	"time"
)

// CacheEntry is a stored extraction result for one exact URL.
type CacheEntry struct {
	URL          string            `json:"url"`
	URLPattern   string            `json:"urlPattern"`
	Result       *ExtractionResult `json:"result"`
	Quality      *ContentQuality   `json:"quality"`
	RuleID       string            `json:"ruleId,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
	HitCount     int               `json:"hitCount"`
	LastAccessed time.Time         `json:"lastAccessed"`
}

// Clone returns a deep copy of e. Clone of nil is nil.
func (e *CacheEntry) Clone() *CacheEntry {
	if e == nil {
		return nil
	}
	other := *e
	other.Result = e.Result.Clone()
	other.Quality = e.Quality.Clone()
	return &other
}

// PatternEntry aggregates selector effectiveness across URLs that
// generalize to the same URL pattern.
type PatternEntry struct {
	URLPattern          string              `json:"urlPattern"`
	Domain              string              `json:"domain"`
	SuccessfulSelectors map[string][]string `json:"successfulSelectors"`
	FailedSelectors     map[string][]string `json:"failedSelectors"`
	AverageQuality      float64             `json:"averageQuality"`
	SampleCount         int                 `json:"sampleCount"`
	LastUpdated         time.Time           `json:"lastUpdated"`
}

// Clone returns a deep copy of p. Clone of nil is nil.
func (p *PatternEntry) Clone() *PatternEntry {
	if p == nil {
		return nil
	}
	other := *p
	other.SuccessfulSelectors = cloneSelectorMap(p.SuccessfulSelectors)
	other.FailedSelectors = cloneSelectorMap(p.FailedSelectors)
	return &other
}

// RuleOptimization holds learned per-field selector confidence for a rule.
type RuleOptimization struct {
	RuleID        string                        `json:"ruleId"`
	Fields        map[string]*FieldOptimization `json:"fields"`
	LastOptimized time.Time                     `json:"lastOptimized"`
}

// FieldOptimization is the learned state of one rule field.
type FieldOptimization struct {
	Selectors   []string  `json:"selectors"`
	Confidence  float64   `json:"confidence"`
	SuccessRate float64   `json:"successRate"`
	LastTested  time.Time `json:"lastTested"`
	Attempts    int       `json:"attempts"`
	Successes   int       `json:"successes"`
}

// Clone returns a deep copy of o. Clone of nil is nil.
func (o *RuleOptimization) Clone() *RuleOptimization {
	if o == nil {
		return nil
	}
	other := *o
	other.Fields = make(map[string]*FieldOptimization, len(o.Fields))
	for k, f := range o.Fields {
		fc := *f
		fc.Selectors = append([]string(nil), f.Selectors...)
		other.Fields[k] = &fc
	}
	return &other
}

func cloneSelectorMap(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// ResultCache stores extraction results and learns selector performance.
// Implementations must be safe for concurrent use and must never alias
// stored state to callers.
type ResultCache interface {
	// Get returns a copy of the unexpired entry for url.
	Get(url string) (*CacheEntry, bool)

	// Store saves a copy of result under url.
	Store(url string, result *ExtractionResult, quality *ContentQuality, ruleID string)

	// RecordSelectorPerformance records whether selector yielded field on url.
	RecordSelectorPerformance(url string, field Field, selector string, success bool, ruleID string)

	// Key returns the cache key reported for url.
	Key(url string) string
}
