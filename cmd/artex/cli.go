package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/artex"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Extractor artex.ArticleExtractor
	Loader    artex.PageLoader
	Rules     artex.RuleCatalog
	Results   artex.ResultStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose   bool   `short:"v" help:"Enable debug logging"`
	RulesPath string `name:"rules" env:"ARTEX_RULES" help:"Rule file (YAML or JSON)"`
	Env       string `env:"ARTEX_ENV" default:"production" help:"Runtime environment; rules hot reload in development"`
	DB        string `env:"ARTEX_DB" help:"Result history database path"`

	Extract ExtractCmd `cmd:"" help:"Extract articles from URLs"`
	Rule    RulesCmd   `cmd:"" name:"rules" help:"Inspect rule files"`
	History HistoryCmd `cmd:"" help:"Show recorded extraction results"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URLs        []string      `arg:"" optional:"" name:"url" help:"URLs to extract"`
	Input       string        `short:"i" help:"Read URLs from file, one per line ('-' for stdin)"`
	Browser     bool          `short:"b" help:"Render pages in headless Chrome"`
	Chrome      string        `env:"ARTEX_CHROME" help:"Chrome executable for --browser"`
	Timeout     time.Duration `default:"10s" help:"Page load timeout"`
	Concurrency int           `short:"c" default:"4" help:"Concurrent page limit"`
	Record      bool          `help:"Record results in the history database"`
	MetricsAddr string        `help:"Serve Prometheus metrics on this address while running"`
	CacheSize   int           `default:"1000" help:"Maximum cached results"`
	CacheTTL    time.Duration `name:"cache-ttl" default:"24h" help:"Cached result lifetime"`
	Pretty      bool          `help:"Indent JSON output"`
}

// RulesCmd groups the rule subcommands.
type RulesCmd struct {
	Validate RulesValidateCmd `cmd:"" help:"Validate a rule file"`
	Match    RulesMatchCmd    `cmd:"" help:"Show which rule handles a URL"`
}

// RulesValidateCmd is the "rules validate" subcommand.
type RulesValidateCmd struct {
	Path string `arg:"" help:"Rule file to validate"`
}

// RulesMatchCmd is the "rules match" subcommand.
type RulesMatchCmd struct {
	URL string `arg:"" help:"URL to match"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	URL    string `short:"u" help:"Only show results for this URL"`
	Method string `short:"m" help:"Only show results with this method"`
	OK     bool   `name:"ok" help:"Only show successful results"`
	Limit  int    `short:"n" default:"20" help:"Maximum results to show"`
	JSON   bool   `help:"Print full results as JSON lines"`
}
