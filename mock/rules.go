package mock

import "github.com/fwojciec/artex"

// Compile-time interface verification.
var (
	_ artex.RuleCatalog      = (*RuleCatalog)(nil)
	_ artex.ContentTransform = (*ContentTransform)(nil)
)

// RuleCatalog is a mock implementation of artex.RuleCatalog.
type RuleCatalog struct {
	FindRulesForDomainFn func(domain string) []*artex.SiteRule
	FindRulesForURLFn    func(rawURL string) []*artex.SiteRule
	FindBestRuleForURLFn func(rawURL string) *artex.RuleMatch
}

func (c *RuleCatalog) FindRulesForDomain(domain string) []*artex.SiteRule {
	return c.FindRulesForDomainFn(domain)
}

func (c *RuleCatalog) FindRulesForURL(rawURL string) []*artex.SiteRule {
	return c.FindRulesForURLFn(rawURL)
}

func (c *RuleCatalog) FindBestRuleForURL(rawURL string) *artex.RuleMatch {
	return c.FindBestRuleForURLFn(rawURL)
}

// ContentTransform is a mock implementation of artex.ContentTransform.
type ContentTransform struct {
	NameFn  func() string
	ApplyFn func(content *artex.ExtractedContent) error
}

func (t *ContentTransform) Name() string {
	return t.NameFn()
}

func (t *ContentTransform) Apply(content *artex.ExtractedContent) error {
	return t.ApplyFn(content)
}
