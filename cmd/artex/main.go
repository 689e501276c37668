package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/artex"
	"github.com/fwojciec/artex/cache"
	"github.com/fwojciec/artex/cascade"
	artexhttp "github.com/fwojciec/artex/http"
	artexprom "github.com/fwojciec/artex/prometheus"
	"github.com/fwojciec/artex/quality"
	"github.com/fwojciec/artex/rod"
	"github.com/fwojciec/artex/rules"
	artexslog "github.com/fwojciec/artex/slog"
	"github.com/fwojciec/artex/sqlite"
	"github.com/fwojciec/artex/universal"
	"github.com/fwojciec/artex/validate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); the --db flag overrides it.
	DBPath string

	// SQLite database backing the result history. Opened only by commands
	// that need it.
	DB *sqlite.DB

	// Loader, if set, replaces the HTTP and browser loaders. Used for
	// end-to-end testing.
	Loader artex.PageLoader

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program, releasing resources in reverse
// order of acquisition.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

func (m *Main) onClose(fn func() error) {
	m.closers = append(m.closers, fn)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("artex"),
		kong.Description("Extract structured article content from web pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'artex --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	cmd := kongCtx.Command()
	switch {
	case strings.HasPrefix(cmd, "extract"):
		if err := m.wireExtract(ctx, cli, deps); err != nil {
			return err
		}
	case strings.HasPrefix(cmd, "rules match"):
		deps.Rules = m.openCatalog(ctx, cli, logger)
	case strings.HasPrefix(cmd, "history"):
		if err := m.openHistory(cli, deps); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

// openCatalog loads the rule file, if any, and starts hot reload in the
// development environment.
func (m *Main) openCatalog(ctx context.Context, cli *CLI, logger *slog.Logger) *rules.Catalog {
	opts := []rules.Option{
		rules.WithLogger(logger),
		rules.WithEnvironment(cli.Env),
	}
	if cli.RulesPath == "" {
		return rules.NewCatalog(opts...)
	}
	catalog := rules.NewCatalogFromFile(cli.RulesPath, opts...)
	if catalog.HotReloadEnabled() {
		watchCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := catalog.Watch(watchCtx, cli.RulesPath); err != nil {
				logger.Error("rule watcher stopped", "err", err)
			}
		}()
		m.onClose(func() error {
			cancel()
			<-done
			return nil
		})
	}
	return catalog
}

// openHistory opens the result history database.
func (m *Main) openHistory(cli *CLI, deps *Dependencies) error {
	path := m.DBPath
	if cli.DB != "" {
		path = cli.DB
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: Set ARTEX_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	m.onClose(m.DB.Close)
	deps.Results = sqlite.NewResultStore(m.DB)
	return nil
}

// wireExtract builds the cascade with its decorators and the page loader.
func (m *Main) wireExtract(ctx context.Context, cli *CLI, deps *Dependencies) error {
	logger := deps.Logger

	if cli.Extract.Record {
		if err := m.openHistory(cli, deps); err != nil {
			return err
		}
	}

	resultCache := cache.New(
		cache.WithConfig(cache.Config{
			MaxEntries:      cli.Extract.CacheSize,
			MaxAge:          cli.Extract.CacheTTL,
			CleanupInterval: cache.DefaultCleanupInterval,
		}),
		cache.WithLogger(logger),
	)
	m.onClose(resultCache.Close)

	catalog := m.openCatalog(ctx, cli, logger)
	core := &cascade.Extractor{
		Rules:     artexslog.NewLoggingCatalog(catalog, logger),
		Universal: universal.NewDetector(universal.WithLogger(logger)),
		Quality:   artexslog.NewLoggingAnalyzer(quality.NewAnalyzer(), logger),
		Validator: validate.NewValidator(),
		Cache:     resultCache,
		Logger:    logger,
	}
	var extractor artex.ArticleExtractor = artexslog.NewLoggingExtractor(core, logger)

	if cli.Extract.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metered, err := artexprom.NewExtractor(extractor, reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		if err := reg.Register(artexprom.NewCacheCollector(resultCache)); err != nil {
			return fmt.Errorf("failed to register cache metrics: %w", err)
		}
		extractor = metered
		if err := m.serveMetrics(cli.Extract.MetricsAddr, reg, logger); err != nil {
			return err
		}
	}
	deps.Extractor = extractor

	loader := m.Loader
	if loader == nil {
		if cli.Extract.Browser {
			browser, err := rod.NewLoader(
				rod.WithFetchTimeout(cli.Extract.Timeout),
				rod.WithChrome(cli.Extract.Chrome),
				rod.WithLogger(logger),
			)
			if err != nil {
				fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			loader = browser
		} else {
			loader = artexhttp.NewLoader(artexhttp.WithTimeout(cli.Extract.Timeout))
		}
		m.onClose(loader.Close)
	}
	deps.Loader = artexslog.NewLoggingLoader(loader, logger)
	return nil
}

// serveMetrics serves /metrics on addr until Close.
func (m *Main) serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())
	m.onClose(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
	return nil
}

func defaultDBPath() string {
	if path := os.Getenv("ARTEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "artex.db"
	}
	dir := filepath.Join(home, ".artex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "history.db")
}
