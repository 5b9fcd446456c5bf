package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// PageResult is the outcome of crawling one page. A failed crawl is a
// result with Success=false and Error set — fetching never raises.
type PageResult struct {
	URL           string   `json:"url"`
	HTML          string   `json:"html"`
	Markdown      string   `json:"markdown"`
	Success       bool     `json:"success"`
	Error         string   `json:"error,omitempty"`
	InternalLinks []string `json:"internal_links,omitempty"`
}

// PageFetcher turns a URL into a PageResult. Implementations must not
// return errors through panics or special values; failures are encoded in
// the result itself. Cancellation of ctx is the only exception and is
// reported via the result's Error as well.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string, timeout time.Duration) PageResult
}

// HTTPPageFetcher fetches pages with the shared HTTP client and converts
// the HTML to markdown. It does not execute JavaScript; sites that need
// rendering use the browser fetcher instead.
type HTTPPageFetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTTPPageFetcher creates a page fetcher on top of the shared client.
func NewHTTPPageFetcher(client *http.Client, logger *slog.Logger) *HTTPPageFetcher {
	return &HTTPPageFetcher{
		client: client,
		logger: logger.With("component", "page_fetcher"),
	}
}

// FetchPage crawls a single page. The timeout bounds the whole crawl
// (request + body + conversion); hitting it yields a "Timed out" failure
// result rather than an error.
func (f *HTTPPageFetcher) FetchPage(ctx context.Context, pageURL string, timeout time.Duration) PageResult {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status, body, err := Get(pctx, f.client, pageURL)
	if err != nil {
		return failedPage(pageURL, pctx, ctx, timeout, err)
	}
	if status < 200 || status >= 300 {
		return PageResult{URL: pageURL, Success: false, Error: fmt.Sprintf("HTTP %d", status)}
	}

	html := string(body)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageResult{URL: pageURL, Success: false, Error: fmt.Sprintf("parse HTML: %v", err)}
	}

	markdown := convertMarkdown(pageURL, html)
	links := ExtractInternalLinks(doc, pageURL)

	f.logger.Debug("page fetched", "url", pageURL, "bytes", len(body), "links", len(links))

	return PageResult{
		URL:           pageURL,
		HTML:          html,
		Markdown:      markdown,
		Success:       true,
		InternalLinks: links,
	}
}

// failedPage builds the failure result for a fetch error, translating a
// per-page deadline into the canonical timeout message.
func failedPage(pageURL string, pctx, parent context.Context, timeout time.Duration, err error) PageResult {
	if errors.Is(pctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return PageResult{
			URL:     pageURL,
			Success: false,
			Error:   fmt.Sprintf("Timed out after %gs", timeout.Seconds()),
		}
	}
	return PageResult{URL: pageURL, Success: false, Error: err.Error()}
}

// convertMarkdown converts page HTML to markdown. Conversion failures
// degrade to an empty markdown body; the HTML is still usable for the
// schema check.
func convertMarkdown(pageURL, html string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	converter := htmlmd.NewConverter(u.Hostname(), true, nil)
	md, err := converter.ConvertString(html)
	if err != nil {
		return ""
	}
	return md
}

// ExtractInternalLinks collects same-host http(s) links from a document,
// resolved against the page URL, fragment-stripped, first-seen order.
func ExtractInternalLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		resolved.Fragment = ""
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !strings.EqualFold(resolved.Host, base.Host) {
			return
		}
		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	return links
}

// FetchPages crawls many URLs concurrently and returns results in input
// order regardless of completion order.
//
// Task i sleeps stagger·i before acquiring the concurrency semaphore, so
// launches are spread out even when the semaphore has free slots. In-flight
// work is bounded by maxConcurrent. Individual page timeouts degrade to
// failure results; only cancellation of ctx aborts the whole call.
func FetchPages(ctx context.Context, f PageFetcher, urls []string, maxConcurrent int, stagger, perPageTimeout time.Duration) ([]PageResult, error) {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	results := make([]PageResult, len(urls))
	sem := semaphore.NewWeighted(int64(maxConcurrent))
	g, gctx := errgroup.WithContext(ctx)

	for i, pageURL := range urls {
		i, pageURL := i, pageURL
		g.Go(func() error {
			if stagger > 0 && i > 0 {
				select {
				case <-time.After(stagger * time.Duration(i)):
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			results[i] = f.FetchPage(gctx, pageURL, perPageTimeout)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Fetchers degrade cancellation into failure results; the caller still
	// must see a cancelled audit as an error, not a partial result set.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
