package slog

import (
	"log/slog"

	"github.com/fwojciec/artex"
)

// Ensure LoggingCatalog implements artex.RuleCatalog.
var _ artex.RuleCatalog = (*LoggingCatalog)(nil)

// LoggingCatalog wraps a RuleCatalog with debug logging of rule matches.
type LoggingCatalog struct {
	next   artex.RuleCatalog
	logger *slog.Logger
}

// NewLoggingCatalog creates a new LoggingCatalog.
func NewLoggingCatalog(next artex.RuleCatalog, logger *slog.Logger) *LoggingCatalog {
	return &LoggingCatalog{next: next, logger: logger}
}

// FindRulesForDomain delegates to the wrapped catalog.
func (c *LoggingCatalog) FindRulesForDomain(domain string) []*artex.SiteRule {
	return c.next.FindRulesForDomain(domain)
}

// FindRulesForURL delegates to the wrapped catalog.
func (c *LoggingCatalog) FindRulesForURL(rawURL string) []*artex.SiteRule {
	return c.next.FindRulesForURL(rawURL)
}

// FindBestRuleForURL delegates to the wrapped catalog and logs the match.
func (c *LoggingCatalog) FindBestRuleForURL(rawURL string) *artex.RuleMatch {
	m := c.next.FindBestRuleForURL(rawURL)
	if m == nil || m.Rule == nil {
		c.logger.Debug("rule match", "url", rawURL, "rule", "(none)")
		return m
	}
	c.logger.Debug("rule match",
		"url", rawURL,
		"rule", m.Rule.ID,
		"priority", m.Rule.Priority,
		"transforms", len(m.Transforms),
	)
	return m
}
