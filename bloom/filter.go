// Package bloom deduplicates batch input URLs using Bloom filters.
package bloom

import (
	"net/url"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// DefaultFalsePositiveRate keeps the chance of dropping a distinct URL
// negligible for batches of a few million URLs.
const DefaultFalsePositiveRate = 1e-6

// Filter wraps a Bloom filter for URL deduplication.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add adds a URL to the filter.
func (f *Filter) Add(url string) {
	f.f.AddString(Key(url))
}

// Test returns true if the URL might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(Key(url))
}

// TestAndAdd adds the URL and reports whether it was possibly present.
func (f *Filter) TestAndAdd(url string) bool {
	return f.f.TestAndAddString(Key(url))
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Key is the dedupe key of rawURL: the URL without its fragment and with
// a lowercased scheme and host. Unparsable input is used as is.
func Key(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(rawURL)
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Unique returns urls with repeats removed, keeping first occurrences in
// order. Blank entries are dropped.
func Unique(urls []string) []string {
	n := uint(len(urls))
	if n == 0 {
		return nil
	}
	f := NewFilter(n, DefaultFalsePositiveRate)
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if f.TestAndAdd(u) {
			continue
		}
		out = append(out, u)
	}
	return out
}
