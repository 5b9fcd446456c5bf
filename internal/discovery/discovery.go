package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sort"

	"github.com/contextlint/contextlint/internal/checks"
	"github.com/contextlint/contextlint/internal/types"
	"github.com/contextlint/contextlint/internal/urlutil"
)

// filterAgent is the user-agent the robots filter is evaluated for. If
// GPTBot can't reach a page, the audit has nothing useful to say about it.
const filterAgent = "GPTBot"

// Discover resolves the page sample for a site audit.
//
// Strategy: sitemap URLs first; when the sitemaps yield nothing, the
// internal links collected during the seed crawl (spider fallback). The
// candidates are then filtered by robots.txt (when supplied), normalized
// and deduplicated keeping first occurrence, and diversity-sampled with
// the seed always first.
func Discover(ctx context.Context, client *http.Client, seedURL string, maxPages int, robotsTxt string, seedLinks []string, logger *slog.Logger) types.DiscoveryResult {
	logger = logger.With("component", "discovery")

	method := "sitemap"
	candidates := fetchSitemapURLs(ctx, client, seedURL, logger)
	if len(candidates) == 0 {
		method = "spider"
		candidates = append([]string(nil), seedLinks...)
	}
	urlsFound := len(candidates)

	if robotsTxt != "" && len(candidates) > 0 {
		candidates = checks.FilterAllowed(robotsTxt, candidates, filterAgent)
	}

	seen := make(map[string]struct{}, len(candidates))
	unique := candidates[:0:0]
	for _, u := range candidates {
		norm := urlutil.Normalize(u)
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		unique = append(unique, u)
	}

	sampled := selectDiversePages(unique, seedURL, maxPages)

	logger.Debug("discovery complete", "method", method, "found", urlsFound, "sampled", len(sampled))

	return types.DiscoveryResult{
		Method:      method,
		URLsFound:   urlsFound,
		URLsSampled: sampled,
		Detail:      fmt.Sprintf("method=%s, found=%d, sampled=%d", method, urlsFound, len(sampled)),
	}
}

// selectDiversePages picks up to maxPages URLs, always starting with the
// seed. Remaining candidates are grouped by first path segment, shuffled
// within each group, and drawn round-robin across groups in alphabetical
// key order so the sample spans different sections of the site.
func selectDiversePages(urls []string, seedURL string, maxPages int) []string {
	selected := []string{seedURL}
	seen := map[string]struct{}{urlutil.Normalize(seedURL): {}}

	if maxPages <= 1 {
		return selected
	}

	groups := make(map[string][]string)
	for _, u := range urls {
		if _, ok := seen[urlutil.Normalize(u)]; ok {
			continue
		}
		segment := urlutil.FirstSegment(u)
		groups[segment] = append(groups[segment], u)
	}

	for _, group := range groups {
		rand.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	idx := 0
	for len(selected) < maxPages && len(keys) > 0 {
		key := keys[idx%len(keys)]
		if len(groups[key]) > 0 {
			u := groups[key][0]
			groups[key] = groups[key][1:]
			norm := urlutil.Normalize(u)
			if _, ok := seen[norm]; !ok {
				selected = append(selected, u)
				seen[norm] = struct{}{}
			}
		}
		if len(groups[key]) == 0 {
			keys = removeKey(keys, key)
			if len(keys) == 0 {
				break
			}
			idx = idx % len(keys)
		} else {
			idx++
		}
	}

	return selected
}

func removeKey(keys []string, key string) []string {
	for i, k := range keys {
		if k == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}
