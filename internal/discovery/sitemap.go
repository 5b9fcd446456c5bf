// Package discovery resolves the page sample for a site audit: sitemap
// first (including sitemap indexes), internal links from the seed crawl as
// the spider fallback, robots.txt filtering, and diversity sampling across
// site sections.
package discovery

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"

	"github.com/contextlint/contextlint/internal/fetcher"
	"github.com/contextlint/contextlint/internal/urlutil"
)

const (
	// maxSitemapURLs caps accumulation across a sitemap and its children.
	maxSitemapURLs = 500
	// maxChildSitemaps caps fan-out into a sitemap index.
	maxChildSitemaps = 10
)

// sitemapDoc covers both <urlset> and <sitemapindex> documents. The parser
// matches local element names, so sitemaps that omit the standard
// namespace are accepted too.
type sitemapDoc struct {
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// parseSitemap extracts page URLs and child sitemap URLs from one XML
// document. Parse errors yield empty slices; a broken sitemap is the same
// as no sitemap.
func parseSitemap(body []byte) (pageURLs, childURLs []string) {
	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, nil
	}
	for _, entry := range doc.URLs {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			pageURLs = append(pageURLs, loc)
		}
	}
	for _, entry := range doc.Sitemaps {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			childURLs = append(childURLs, loc)
		}
	}
	return pageURLs, childURLs
}

// fetchSitemapURLs tries /sitemap.xml then /sitemap_index.xml at the
// seed's origin and returns up to maxSitemapURLs page URLs. Child sitemaps
// of an index are fetched up to maxChildSitemaps; a failed child is
// skipped, its siblings still count. The first candidate that yields any
// page URLs wins.
func fetchSitemapURLs(ctx context.Context, client *http.Client, seedURL string, logger *slog.Logger) []string {
	origin := urlutil.Origin(seedURL)
	if origin == "" {
		return nil
	}

	var all []string
	for _, candidate := range []string{origin + "/sitemap.xml", origin + "/sitemap_index.xml"} {
		status, body, err := fetcher.Probe(ctx, client, candidate)
		if err != nil || status != http.StatusOK {
			continue
		}

		pages, children := parseSitemap(body)
		all = append(all, pages...)

		if len(children) > maxChildSitemaps {
			children = children[:maxChildSitemaps]
		}
		for _, childURL := range children {
			childStatus, childBody, err := fetcher.Probe(ctx, client, childURL)
			if err != nil || childStatus != http.StatusOK {
				logger.Debug("child sitemap skipped", "url", childURL, "error", err)
				continue
			}
			childPages, _ := parseSitemap(childBody)
			all = append(all, childPages...)

			if len(all) >= maxSitemapURLs {
				break
			}
		}

		if len(all) > 0 {
			break
		}
	}

	if len(all) > maxSitemapURLs {
		all = all[:maxSitemapURLs]
	}
	return all
}
