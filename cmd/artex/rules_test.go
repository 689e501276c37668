package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/artex"
	main "github.com/fwojciec/artex/cmd/artex"
	"github.com/fwojciec/artex/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ruleFile = `
config:
  enableRuleValidation: true
rules:
  - id: news
    name: News
    domains: [news.example]
    priority: 80
    selectors:
      title: [h1.headline]
      content: [.body p]
  - id: news-opinion
    name: News Opinion
    domains: [news.example]
    priority: 90
    urlPatterns: ['/opinion/']
    selectors:
      title: [h1]
      content: [.column p]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRulesValidateCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports valid rules", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "rules.yaml", ruleFile)
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}}

		err := (&main.RulesValidateCmd{Path: path}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "2 valid rules")
	})

	t.Run("lists dropped rules and fails", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "rules.yaml", `
- id: broken
  name: Broken
  domains: [news.example]
  selectors:
    title: [h1]
`)
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}}

		err := (&main.RulesValidateCmd{Path: path}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, artex.EINVALID, artex.ErrorCode(err))
		assert.Contains(t, stdout.String(), "warning:")
		assert.Contains(t, stdout.String(), "0 valid rules")
	})

	t.Run("fails on a malformed file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "rules.yaml", "rules: {not: [a list")
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr}

		err := (&main.RulesValidateCmd{Path: path}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}

func TestRulesMatchCmd_Run(t *testing.T) {
	t.Parallel()

	catalog := rules.NewCatalog()
	require.NoError(t, catalog.LoadFile(writeFile(t, "rules.yaml", ruleFile)))

	t.Run("marks the best rule", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Rules: catalog}

		err := (&main.RulesMatchCmd{URL: "https://news.example/opinion/42"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "* news-opinion")
		assert.Contains(t, stdout.String(), "  news  News  priority=80")
	})

	t.Run("explains the fallback when nothing matches", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Rules: catalog}

		err := (&main.RulesMatchCmd{URL: "https://other.example/a"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "universal detector")
	})
}
