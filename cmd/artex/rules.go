package main

import (
	"fmt"

	"github.com/fwojciec/artex"
	"github.com/fwojciec/artex/rules"
)

// Run executes the rules validate command. Rules dropped during loading
// are listed and fail the command.
func (c *RulesValidateCmd) Run(deps *Dependencies) error {
	catalog := rules.NewCatalog()
	if err := catalog.LoadFile(c.Path); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artex.ErrorMessage(err))
		return err
	}

	for _, w := range catalog.Warnings() {
		fmt.Fprintf(deps.Stdout, "warning: %s\n", w)
	}
	fmt.Fprintf(deps.Stdout, "%d valid rules in %s\n", catalog.Len(), c.Path)

	if n := len(catalog.Warnings()); n > 0 {
		return artex.Errorf(artex.EINVALID, "%d rule problems in %s", n, c.Path)
	}
	return nil
}

// Run executes the rules match command.
func (c *RulesMatchCmd) Run(deps *Dependencies) error {
	candidates := deps.Rules.FindRulesForURL(c.URL)
	if len(candidates) == 0 {
		fmt.Fprintf(deps.Stdout, "No rule matches %s; the universal detector will be used.\n", c.URL)
		return nil
	}

	best := deps.Rules.FindBestRuleForURL(c.URL)
	for _, r := range candidates {
		marker := " "
		if best != nil && best.Rule != nil && best.Rule.ID == r.ID {
			marker = "*"
		}
		fmt.Fprintf(deps.Stdout, "%s %s  %s  priority=%d\n", marker, r.ID, r.Name, r.Priority)
	}
	return nil
}
