// Package urlutil provides URL canonicalization helpers shared by the
// discovery, audit, and history layers. Two raw inputs that normalize to the
// same string are treated as the same page everywhere in the pipeline.
package urlutil

import (
	"net/url"
	"strings"
)

// EnsureScheme prepends https:// when the raw input has no http(s) scheme.
func EnsureScheme(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// Normalize canonicalizes a URL for deduplication:
//   - lowercases scheme and host
//   - removes the fragment
//   - strips trailing slashes from the path (root stays "/")
//   - preserves the query string verbatim
//
// Unparseable input is returned unchanged.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	path := strings.TrimRight(u.EscapedPath(), "/")
	if path == "" {
		path = "/"
	}
	u.RawPath = ""
	u.Path = path

	return u.String()
}

// Origin returns "scheme://host" for a URL, with scheme and host lowercased.
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

// Host returns the lowercased host (including port, if any) of a URL.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// Depth returns the number of non-empty path segments.
// "https://example.com/" is depth 0, "/docs/api/v2" is depth 3.
func Depth(raw string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	depth := 0
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}

// FirstSegment returns the first non-empty path segment, or "" for the root.
// Used to group URLs by site section during diversity sampling.
func FirstSegment(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}
