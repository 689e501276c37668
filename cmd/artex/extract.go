package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fwojciec/artex"
	"github.com/fwojciec/artex/bloom"
	"github.com/fwojciec/artex/cascade"
)

// extraction is one line of extract output.
type extraction struct {
	URL string `json:"url"`
	*artex.ExtractionResult
}

// Run executes the extract command. Results are printed as JSON lines in
// input order; a summary goes to stderr.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	urls, err := c.collectURLs(deps.Stdin)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artex.ErrorMessage(err))
		return err
	}
	if len(urls) == 0 {
		return artex.Errorf(artex.EINVALID, "no URLs given. Pass URLs as arguments or with --input")
	}

	batch := &cascade.Batch{
		Extractor:   deps.Extractor,
		Loader:      deps.Loader,
		Concurrency: c.Concurrency,
		Logger:      deps.Logger,
	}

	var mu sync.Mutex
	var recordErrs int
	if c.Record && deps.Results != nil {
		batch.OnResult = func(url string, res *artex.ExtractionResult) {
			if _, err := deps.Results.Record(deps.Ctx, url, res); err != nil {
				mu.Lock()
				recordErrs++
				mu.Unlock()
				if deps.Logger != nil {
					deps.Logger.Error("recording result failed", "url", url, "err", err)
				}
			}
		}
	}

	results := batch.Run(deps.Ctx, urls)

	enc := json.NewEncoder(deps.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	succeeded := 0
	for i, res := range results {
		if res.Success {
			succeeded++
		}
		if err := enc.Encode(extraction{URL: urls[i], ExtractionResult: res}); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}

	fmt.Fprintf(deps.Stderr, "Extracted %d/%d pages\n", succeeded, len(results))
	if recordErrs > 0 {
		return fmt.Errorf("failed to record %d results", recordErrs)
	}
	return nil
}

// collectURLs merges argument and input URLs, dropping blanks and repeats.
func (c *ExtractCmd) collectURLs(stdin io.Reader) ([]string, error) {
	urls := append([]string(nil), c.URLs...)
	if c.Input != "" {
		var r io.Reader = stdin
		if c.Input != "-" {
			f, err := os.Open(c.Input)
			if err != nil {
				return nil, artex.Errorf(artex.EINVALID, "cannot open input %q: %v", c.Input, err)
			}
			defer f.Close()
			r = f
		}
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			urls = append(urls, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
	}
	return bloom.Unique(urls), nil
}
