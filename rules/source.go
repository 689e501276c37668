package rules

import (
	"fmt"
	"io"

	"github.com/fwojciec/artex"
	"gopkg.in/yaml.v3"
)

// Config holds the loader flags that may accompany a rule source.
type Config struct {
	// EnableRuleValidation drops rules without a name, title or content
	// selectors, or with an out-of-range priority. Rules without an id or
	// domains are always dropped.
	EnableRuleValidation bool `yaml:"enableRuleValidation" json:"enableRuleValidation"`

	// EnableRuleCaching memoizes URL lookups until the next reload.
	EnableRuleCaching bool `yaml:"enableRuleCaching" json:"enableRuleCaching"`

	// HotReloadInDevelopment lets Watch reload the rule file on change
	// when the catalog runs in the development environment.
	HotReloadInDevelopment bool `yaml:"hotReloadInDevelopment" json:"hotReloadInDevelopment"`
}

// DefaultConfig returns the loader flags used when a source sets none.
func DefaultConfig() Config {
	return Config{
		EnableRuleValidation: true,
		EnableRuleCaching:    true,
	}
}

// Document is a parsed rule source.
type Document struct {
	Config Config
	Rules  []artex.SiteRule

	// Warnings lists rule entries that could not be decoded.
	Warnings []string
}

// Parse reads a rule source. The source is YAML or JSON and is either a
// bare list of rules or a mapping with optional "config" and "rules" keys.
// A rule entry that cannot be decoded is skipped with a warning; only a
// malformed document as a whole returns an error.
func Parse(r io.Reader, defaults Config) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading rule source: %w", err)
	}

	doc := &Document{Config: defaults}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, artex.Errorf(artex.EINVALID, "malformed rule source: %v", err)
	}
	if len(root.Content) == 0 {
		return doc, nil
	}

	top := root.Content[0]
	var list *yaml.Node
	switch top.Kind {
	case yaml.SequenceNode:
		list = top
	case yaml.MappingNode:
		for i := 0; i+1 < len(top.Content); i += 2 {
			key, val := top.Content[i], top.Content[i+1]
			switch key.Value {
			case "config":
				if err := val.Decode(&doc.Config); err != nil {
					return nil, artex.Errorf(artex.EINVALID, "malformed rule config: %v", err)
				}
			case "rules":
				if val.Kind != yaml.SequenceNode {
					return nil, artex.Errorf(artex.EINVALID, "rules must be a list")
				}
				list = val
			}
		}
	default:
		return nil, artex.Errorf(artex.EINVALID, "rule source must be a list or a mapping")
	}

	if list == nil {
		return doc, nil
	}
	for i, item := range list.Content {
		var rule artex.SiteRule
		if err := item.Decode(&rule); err != nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("rule #%d (line %d): %v", i, item.Line, err))
			continue
		}
		doc.Rules = append(doc.Rules, rule)
	}
	return doc, nil
}
