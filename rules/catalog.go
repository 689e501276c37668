// Package rules loads, validates and indexes bespoke per-domain extraction
// rules and compiles their content processing steps.
package rules

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/artex"
)

// EnvDevelopment is the environment name in which hot reload is allowed.
const EnvDevelopment = "development"

// maxLookupCache bounds the memoized URL lookups; the memo is reset when
// it fills up.
const maxLookupCache = 10000

// Ensure Catalog implements artex.RuleCatalog at compile time.
var _ artex.RuleCatalog = (*Catalog)(nil)

// Catalog indexes site rules by domain.
// Catalog is safe for concurrent use; a reload swaps the whole index.
type Catalog struct {
	logger *slog.Logger
	env    string

	mu       sync.RWMutex
	config   Config
	rules    []*entry
	byDomain map[string][]*entry
	warnings []string

	// generation counts installs. Memoized lookups are only valid for the
	// generation they were computed from.
	generation atomic.Uint64

	lookupMu  sync.Mutex
	lookups   map[string][]*entry
	lookupGen uint64
}

// entry is a loaded rule with its compiled patterns and transforms.
type entry struct {
	rule       *artex.SiteRule
	patterns   []*regexp.Regexp
	patternErr error
	transforms []*Transform
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger for load and lookup warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithConfig sets the loader flags used when a source does not set them.
func WithConfig(cfg Config) Option {
	return func(c *Catalog) {
		c.config = cfg
	}
}

// WithEnvironment sets the runtime environment (e.g., "development").
func WithEnvironment(env string) Option {
	return func(c *Catalog) {
		c.env = env
	}
}

// NewCatalog creates an empty Catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		logger:   slog.New(slog.DiscardHandler),
		config:   DefaultConfig(),
		byDomain: make(map[string][]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewCatalogFromFile creates a Catalog loaded from path. A missing or
// malformed file is logged and yields an empty catalog, so extraction
// degrades to the universal tier instead of failing.
func NewCatalogFromFile(path string, opts ...Option) *Catalog {
	c := NewCatalog(opts...)
	if err := c.LoadFile(path); err != nil {
		c.logger.Error("rule source unavailable, continuing without rules",
			"path", path,
			"err", err,
		)
	}
	return c
}

// LoadFile replaces the catalog contents with the rules in path.
// On error the current rules are kept.
func (c *Catalog) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening rule source: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}

// Load replaces the catalog contents with the rules read from r.
// On error the current rules are kept.
func (c *Catalog) Load(r io.Reader) error {
	c.mu.RLock()
	defaults := c.config
	c.mu.RUnlock()

	doc, err := Parse(r, defaults)
	if err != nil {
		return err
	}
	c.install(doc.Config, doc.Rules, doc.Warnings)
	return nil
}

// LoadRules replaces the catalog contents with rules using the current
// loader flags.
func (c *Catalog) LoadRules(rules []artex.SiteRule) {
	c.mu.RLock()
	cfg := c.config
	c.mu.RUnlock()
	c.install(cfg, rules, nil)
}

// install validates rules and swaps in a new index.
func (c *Catalog) install(cfg Config, rules []artex.SiteRule, warnings []string) {
	var entries []*entry
	byDomain := make(map[string][]*entry)
	warnings = slices.Clone(warnings)
	seen := make(map[string]bool)

	for i := range rules {
		rule := cloneRule(&rules[i])

		validate := rule.Validate
		if cfg.EnableRuleValidation {
			validate = rule.ValidateStrict
		}
		if err := validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("rule #%d dropped: %s", i, artex.ErrorMessage(err)))
			continue
		}
		if seen[rule.ID] {
			warnings = append(warnings, fmt.Sprintf("rule %q: duplicate id", rule.ID))
		}
		seen[rule.ID] = true

		e := &entry{rule: rule}
		for _, p := range rule.URLPatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				e.patternErr = fmt.Errorf("invalid url pattern %q: %w", p, err)
				warnings = append(warnings, fmt.Sprintf("rule %q: %v", rule.ID, e.patternErr))
				break
			}
			e.patterns = append(e.patterns, re)
		}

		transforms, stepWarnings := Compile(rule.ContentProcessing)
		e.transforms = transforms
		for _, w := range stepWarnings {
			warnings = append(warnings, fmt.Sprintf("rule %q: %s", rule.ID, w))
		}

		entries = append(entries, e)
		for _, d := range rule.Domains {
			domain := artex.NormalizeDomain(d)
			if domain == "" || slices.Contains(byDomain[domain], e) {
				continue
			}
			byDomain[domain] = append(byDomain[domain], e)
		}
	}

	for _, list := range byDomain {
		slices.SortStableFunc(list, func(a, b *entry) int {
			return b.rule.Priority - a.rule.Priority
		})
	}

	for _, w := range warnings {
		c.logger.Warn("rule source", "warning", w)
	}

	c.mu.Lock()
	c.config = cfg
	c.rules = entries
	c.byDomain = byDomain
	c.warnings = warnings
	c.generation.Add(1)
	c.mu.Unlock()

	c.lookupMu.Lock()
	c.lookups = nil
	c.lookupMu.Unlock()

	c.logger.Info("rules loaded",
		"rules", len(entries),
		"domains", len(byDomain),
		"warnings", len(warnings),
	)
}

// FindRulesForDomain returns the rules for domain in descending priority
// order, ties in load order. It returns nil if no rule lists the domain.
func (c *Catalog) FindRulesForDomain(domain string) []*artex.SiteRule {
	c.mu.RLock()
	list := c.byDomain[artex.NormalizeDomain(domain)]
	c.mu.RUnlock()
	return rulesOf(list)
}

// FindRulesForURL returns the rules for the URL's domain whose URL patterns
// match. Rules without patterns match every URL of their domains. A rule
// with an unparsable pattern is skipped.
func (c *Catalog) FindRulesForURL(rawURL string) []*artex.SiteRule {
	return rulesOf(c.findEntries(rawURL))
}

// FindBestRuleForURL returns the first rule of FindRulesForURL with its
// transforms, or nil if none applies.
func (c *Catalog) FindBestRuleForURL(rawURL string) *artex.RuleMatch {
	entries := c.findEntries(rawURL)
	if len(entries) == 0 {
		return nil
	}
	e := entries[0]

	reason := fmt.Sprintf("domain %s", artex.DomainOf(rawURL))
	if len(e.patterns) > 0 {
		reason += " and url pattern"
	}

	transforms := make([]artex.ContentTransform, 0, len(e.transforms))
	for _, t := range e.transforms {
		transforms = append(transforms, t)
	}

	return &artex.RuleMatch{
		Rule:        e.rule,
		MatchScore:  float64(e.rule.Priority) / 100,
		MatchReason: reason,
		Transforms:  transforms,
	}
}

func (c *Catalog) findEntries(rawURL string) []*entry {
	c.mu.RLock()
	caching := c.config.EnableRuleCaching
	c.mu.RUnlock()

	if caching {
		c.lookupMu.Lock()
		cached, ok := c.lookups[rawURL]
		fresh := c.lookupGen == c.generation.Load()
		c.lookupMu.Unlock()
		if ok && fresh {
			return cached
		}
	}

	domain := artex.DomainOf(rawURL)
	c.mu.RLock()
	candidates := c.byDomain[domain]
	gen := c.generation.Load()
	c.mu.RUnlock()

	var matched []*entry
	for _, e := range candidates {
		if e.patternErr != nil {
			c.logger.Warn("skipping rule with invalid url pattern",
				"rule", e.rule.ID,
				"err", e.patternErr,
			)
			continue
		}
		if matchesAny(e.patterns, rawURL) {
			matched = append(matched, e)
		}
	}

	if caching {
		c.lookupMu.Lock()
		// A reload during the lookup makes matched stale.
		if gen == c.generation.Load() {
			if c.lookups == nil || c.lookupGen != gen || len(c.lookups) >= maxLookupCache {
				c.lookups = make(map[string][]*entry)
				c.lookupGen = gen
			}
			c.lookups[rawURL] = matched
		}
		c.lookupMu.Unlock()
	}
	return matched
}

func matchesAny(patterns []*regexp.Regexp, rawURL string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, re := range patterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// Rules returns all loaded rules in load order.
func (c *Catalog) Rules() []*artex.SiteRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return rulesOf(c.rules)
}

// Len returns the number of loaded rules.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rules)
}

// Warnings returns the warnings of the last load.
func (c *Catalog) Warnings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.warnings)
}

// Config returns the loader flags in effect.
func (c *Catalog) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func rulesOf(entries []*entry) []*artex.SiteRule {
	if len(entries) == 0 {
		return nil
	}
	out := make([]*artex.SiteRule, len(entries))
	for i, e := range entries {
		out[i] = e.rule
	}
	return out
}

// cloneRule copies r so later changes to the caller's slice cannot reach
// the index.
func cloneRule(r *artex.SiteRule) *artex.SiteRule {
	c := *r
	c.Domains = slices.Clone(r.Domains)
	c.URLPatterns = slices.Clone(r.URLPatterns)
	c.Exclusions = slices.Clone(r.Exclusions)
	c.ContentProcessing = slices.Clone(r.ContentProcessing)
	c.Selectors.Title = slices.Clone(r.Selectors.Title)
	c.Selectors.Content = slices.Clone(r.Selectors.Content)
	c.Selectors.Author = slices.Clone(r.Selectors.Author)
	c.Selectors.Date = slices.Clone(r.Selectors.Date)
	c.Selectors.Summary = slices.Clone(r.Selectors.Summary)
	if r.Selectors.Segments != nil {
		c.Selectors.Segments = make(map[string][]string, len(r.Selectors.Segments))
		for k, v := range r.Selectors.Segments {
			c.Selectors.Segments[k] = slices.Clone(v)
		}
	}
	c.Metadata.TestURLs = slices.Clone(r.Metadata.TestURLs)
	return &c
}
