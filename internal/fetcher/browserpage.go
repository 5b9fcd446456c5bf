package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// BrowserPageFetcher renders pages in headless Chromium via rod before
// extracting HTML, markdown, and links. It is the JS-capable alternative to
// HTTPPageFetcher; one browser instance serves all pages of an audit.
type BrowserPageFetcher struct {
	browser    *rod.Browser
	useStealth bool
	logger     *slog.Logger
}

// NewBrowserPageFetcher launches a headless browser and connects to it.
// Call Close when the audit is done.
func NewBrowserPageFetcher(useStealth bool, logger *slog.Logger) (*BrowserPageFetcher, error) {
	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &BrowserPageFetcher{
		browser:    browser,
		useStealth: useStealth,
		logger:     logger.With("component", "browser_page_fetcher"),
	}, nil
}

// Close shuts the browser down.
func (f *BrowserPageFetcher) Close() error {
	return f.browser.Close()
}

// FetchPage renders one page. All failure modes — launch, navigation,
// timeout — degrade to a failure result; the audit continues.
func (f *BrowserPageFetcher) FetchPage(ctx context.Context, pageURL string, timeout time.Duration) PageResult {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	html, err := f.renderHTML(pctx, pageURL, timeout)
	if err != nil {
		return failedPage(pageURL, pctx, ctx, timeout, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		return PageResult{URL: pageURL, Success: false, Error: fmt.Sprintf("parse HTML: %v", err)}
	}

	f.logger.Debug("page rendered", "url", pageURL, "bytes", len(html))

	return PageResult{
		URL:           pageURL,
		HTML:          html,
		Markdown:      convertMarkdown(pageURL, html),
		Success:       true,
		InternalLinks: ExtractInternalLinks(doc, pageURL),
	}
}

func (f *BrowserPageFetcher) renderHTML(ctx context.Context, pageURL string, timeout time.Duration) (html string, err error) {
	defer func() {
		// rod reports failures through panics in some paths; contain them.
		if r := recover(); r != nil {
			err = fmt.Errorf("browser crash: %v", r)
		}
	}()

	var page *rod.Page
	if f.useStealth {
		page, err = stealth.Page(f.browser)
	} else {
		page, err = f.browser.Page(proto.TargetCreateTarget{URL: pageURL})
	}
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx)

	if f.useStealth {
		if err := page.Timeout(timeout).Navigate(pageURL); err != nil {
			return "", fmt.Errorf("navigate: %w", err)
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ctx.Err()
		}
		f.logger.Warn("page load wait failed, reading DOM anyway", "url", pageURL, "error", err)
	}

	return page.HTML()
}
