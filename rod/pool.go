package rod

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/artex"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultMaxPages is the number of pages served by one browser process
// before it is replaced.
const DefaultMaxPages = 75

// defaultFlags keep background tabs from being throttled and avoid the
// small /dev/shm of containers.
var defaultFlags = []string{
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-dev-shm-usage",
	"disable-hang-monitor",
}

// Pool hands out a headless Chrome browser and replaces the process after
// MaxPages acquisitions. Chrome memory grows with every tab opened on a
// long batch and does not return to baseline when tabs close.
//
// Pool is safe for concurrent use.
type Pool struct {
	maxPages int64
	bin      string
	flags    []string
	logger   *slog.Logger

	mu       sync.Mutex
	current  *instance
	served   int64
	closed   bool
	recycles atomic.Int64
}

// instance is one launched browser process and its control connection.
type instance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (i *instance) close() error {
	err := i.browser.Close()
	i.launcher.Kill()
	return err
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithMaxPages sets how many pages one browser serves before it is
// replaced. Zero or less disables recycling.
func WithMaxPages(n int64) PoolOption {
	return func(p *Pool) {
		p.maxPages = n
	}
}

// WithBrowserBin sets the Chrome executable. By default the launcher looks
// up a locally installed browser.
func WithBrowserBin(path string) PoolOption {
	return func(p *Pool) {
		p.bin = path
	}
}

// WithLauncherFlags adds Chrome command-line switches, without the
// leading dashes.
func WithLauncherFlags(switches ...string) PoolOption {
	return func(p *Pool) {
		p.flags = append(p.flags, switches...)
	}
}

// WithPoolLogger sets the logger for recycle events.
func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// NewPool launches the first browser. Close must be called when the Pool
// is no longer needed.
func NewPool(opts ...PoolOption) (*Pool, error) {
	p := &Pool{
		maxPages: DefaultMaxPages,
		flags:    append([]string(nil), defaultFlags...),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	inst, err := p.launch()
	if err != nil {
		return nil, err
	}
	p.current = inst
	return p, nil
}

// Acquire returns the browser to open the next page in and counts that
// page. When the current browser has served MaxPages it is replaced first;
// if the replacement fails to start, the current browser keeps serving.
func (p *Pool) Acquire() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, artex.Errorf(artex.EINVALID, "browser pool is closed")
	}
	if p.maxPages > 0 && p.served >= p.maxPages {
		p.recycle()
	}
	p.served++
	return p.current.browser, nil
}

// recycle must be called with mu held.
func (p *Pool) recycle() {
	next, err := p.launch()
	if err != nil {
		p.logger.Warn("browser recycle failed, keeping current browser", "err", err, "served", p.served)
		return
	}
	old := p.current
	p.current = next
	p.served = 0
	p.recycles.Add(1)
	if err := old.close(); err != nil {
		p.logger.Debug("closing recycled browser", "err", err)
	}
	p.logger.Debug("browser recycled", "max_pages", p.maxPages, "recycles", p.recycles.Load())
}

func (p *Pool) launch() (*instance, error) {
	l := launcher.New().Leakless(true).Headless(true)
	if p.bin != "" {
		l = l.Bin(p.bin)
	}
	for _, f := range p.flags {
		l = l.Set(flags.Flag(f))
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &instance{browser: browser, launcher: l}, nil
}

// Recycles returns how many times the browser has been replaced.
func (p *Pool) Recycles() int64 {
	return p.recycles.Load()
}

// Close shuts down the browser. Close is safe to call multiple times.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.current.close()
}

// LauncherPID returns the process ID of the current browser launcher, or
// zero after Close.
func (p *Pool) LauncherPID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0
	}
	return p.current.launcher.PID()
}
