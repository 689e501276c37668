package cache

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/fwojciec/artex"
)

// Wildcard replaces variable path segments in a URL pattern.
const Wildcard = "*"

var (
	numericSegment = regexp.MustCompile(`^\d+$`)
	dateSegment    = regexp.MustCompile(`^\d{4}[-_.]?\d{2}[-_.]?\d{2}$`)
	hexSegment     = regexp.MustCompile(`(?i)^[0-9a-f]{8,}$`)
	uuidSegment    = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// URLPattern generalizes rawURL so that article URLs differing only in
// numeric, date-shaped or hex/UUID-like path segments share a pattern.
// The pattern is the bare domain followed by the generalized path, e.g.
// "news.example/a/*/". Query and fragment are dropped. Unparsable input is
// returned unchanged.
func URLPattern(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	segments := strings.Split(u.EscapedPath(), "/")
	for i, seg := range segments {
		if isVariableSegment(seg) {
			segments[i] = Wildcard
		}
	}
	path := strings.Join(segments, "/")
	if path == "" {
		path = "/"
	}
	return artex.NormalizeDomain(u.Hostname()) + path
}

// DomainPattern returns the pattern that collects selectors shared across
// a whole domain.
func DomainPattern(domain string) string {
	return artex.NormalizeDomain(domain) + "/" + Wildcard
}

func isVariableSegment(seg string) bool {
	if seg == "" {
		return false
	}
	return numericSegment.MatchString(seg) ||
		dateSegment.MatchString(seg) ||
		uuidSegment.MatchString(seg) ||
		// Hex ids must contain a digit; words like "deadbeef" are kept.
		(hexSegment.MatchString(seg) && strings.ContainsAny(seg, "0123456789"))
}
