package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contextlint/contextlint/internal/checks"
	"github.com/contextlint/contextlint/internal/discovery"
	"github.com/contextlint/contextlint/internal/fetcher"
	"github.com/contextlint/contextlint/internal/types"
	"github.com/contextlint/contextlint/internal/urlutil"
)

// DefaultStagger is the delay between page-fetch task launches in a site
// audit. Task i sleeps i·stagger before acquiring the semaphore.
const DefaultStagger = time.Second

// ProgressFunc receives free-form status strings during a site audit.
// Delivery is best-effort; the pipeline never depends on it.
type ProgressFunc func(status string)

// Options configures an Auditor.
type Options struct {
	// Timeout applies to every HTTP request the audit issues, and bounds
	// each individual page crawl.
	Timeout time.Duration
	// Bots overrides the default AI bot list for the robots pillar.
	Bots []string
	// Pages overrides the page fetcher; defaults to the HTTP fetcher on
	// the shared client. Supply the browser fetcher for JS-heavy sites.
	Pages fetcher.PageFetcher
	// Stagger overrides the launch delay between page fetches.
	Stagger time.Duration
	Logger  *slog.Logger
}

// Auditor runs single-page and site audits. One Auditor owns one shared
// HTTP client; audits on the same Auditor reuse its connection pool but
// share no other state.
type Auditor struct {
	client  *http.Client
	pages   fetcher.PageFetcher
	bots    []string
	timeout time.Duration
	stagger time.Duration
	logger  *slog.Logger
}

// New creates an Auditor from options, applying defaults for anything
// unset.
func New(opts Options) *Auditor {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Stagger <= 0 {
		opts.Stagger = DefaultStagger
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	client := fetcher.NewClient(opts.Timeout)
	pages := opts.Pages
	if pages == nil {
		pages = fetcher.NewHTTPPageFetcher(client, opts.Logger)
	}

	return &Auditor{
		client:  client,
		pages:   pages,
		bots:    opts.Bots,
		timeout: opts.Timeout,
		stagger: opts.Stagger,
		logger:  opts.Logger.With("component", "auditor"),
	}
}

// AuditURL audits a single page: robots and llms.txt probes run in
// parallel, then the page itself is crawled and analyzed. A failed page
// fetch produces a report with empty schema/content pillars and the error
// recorded — only cancellation aborts.
func (a *Auditor) AuditURL(ctx context.Context, rawURL string) (*types.AuditReport, error) {
	pageURL := urlutil.EnsureScheme(rawURL)

	var robots types.RobotsReport
	var llmsTxt types.LlmsTxtReport

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		robots = checks.CheckRobots(gctx, a.client, pageURL, a.bots, a.logger)
		return gctx.Err()
	})
	g.Go(func() error {
		llmsTxt = checks.CheckLlmsTxt(gctx, a.client, pageURL, a.logger)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &types.AuditReport{URL: pageURL, Robots: robots, LlmsTxt: llmsTxt}

	page := a.pages.FetchPage(ctx, pageURL, a.timeout)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if page.Success {
		report.SchemaOrg = checks.CheckSchemaOrg(page.HTML)
		report.Content = checks.CheckContent(page.Markdown)
		eeat := checks.CheckEeat(page.HTML, urlutil.Host(pageURL))
		report.Eeat = &eeat
	} else {
		report.SchemaOrg = types.SchemaReport{Detail: "No HTML to analyze"}
		report.Content = types.ContentReport{HeadingHierarchyValid: true, Detail: "No content extracted"}
		report.Errors = append(report.Errors, page.Error)
	}

	rsl := checks.CheckRsl(robots.RawText, a.bots)
	report.Rsl = &rsl

	report.OverallScore = ComputeScores(&report.Robots, &report.LlmsTxt, &report.SchemaOrg, &report.Content)
	return report, nil
}

// AuditSite audits a whole site: site-wide probes and the seed crawl run
// concurrently, discovery resolves a diverse page sample, the sample is
// crawled with bounded concurrency, and per-page results aggregate into
// site-level pillar scores.
func (a *Auditor) AuditSite(ctx context.Context, rawURL string, maxPages, concurrency int, progress ProgressFunc) (*types.SiteAuditReport, error) {
	seedURL := urlutil.EnsureScheme(rawURL)
	if maxPages < 1 {
		maxPages = 1
	}
	if concurrency < 1 {
		concurrency = 3
	}

	report := &types.SiteAuditReport{
		URL:    seedURL,
		Domain: urlutil.Host(seedURL),
	}

	notify(progress, "Checking site-wide signals...")

	var robots types.RobotsReport
	var llmsTxt types.LlmsTxtReport
	var seedPage fetcher.PageResult

	// Discovery needs the robots raw text, so the site flow joins on all
	// three probes before moving on.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		robots = checks.CheckRobots(gctx, a.client, seedURL, a.bots, a.logger)
		return gctx.Err()
	})
	g.Go(func() error {
		llmsTxt = checks.CheckLlmsTxt(gctx, a.client, seedURL, a.logger)
		return gctx.Err()
	})
	g.Go(func() error {
		seedPage = a.pages.FetchPage(gctx, seedURL, a.timeout)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	notify(progress, "Discovering pages...")
	disc := discovery.Discover(ctx, a.client, seedURL, maxPages, robots.RawText, seedPage.InternalLinks, a.logger)
	report.Discovery = disc

	// The seed was already crawled alongside the probes; fetch the rest.
	rest := disc.URLsSampled[1:]
	notify(progress, fmt.Sprintf("Auditing %d pages...", len(disc.URLsSampled)))

	results, err := fetcher.FetchPages(ctx, a.pages, rest, concurrency, a.stagger, a.timeout)
	if err != nil {
		return nil, err
	}

	pageResults := append([]fetcher.PageResult{seedPage}, results...)
	for i, pr := range pageResults {
		pageURL := disc.URLsSampled[i]
		audit := auditPageContent(pageURL, pr)
		report.Pages = append(report.Pages, audit)
		if !pr.Success {
			report.PagesFailed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", pageURL, pr.Error))
		}
	}
	report.PagesAudited = len(report.Pages)

	notify(progress, "Aggregating scores...")

	scoreRobots(&robots)
	scoreLlmsTxt(&llmsTxt)
	siteSchema, siteContent, err := aggregatePageScores(report.Pages)
	if err != nil {
		return nil, err
	}

	report.Robots = robots
	report.LlmsTxt = llmsTxt
	report.SchemaOrg = siteSchema
	report.Content = siteContent
	report.OverallScore = round1(robots.Score + llmsTxt.Score + siteSchema.Score + siteContent.Score)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

// auditPageContent runs the per-page checks over one crawl result. Scores
// are computed per page so the aggregation has them; a failed page keeps
// empty defaults and carries the error.
func auditPageContent(pageURL string, pr fetcher.PageResult) types.PageAudit {
	audit := types.PageAudit{URL: pageURL}

	if !pr.Success {
		audit.SchemaOrg = types.SchemaReport{Detail: "No HTML to analyze"}
		audit.Content = types.ContentReport{HeadingHierarchyValid: true, Detail: "No content extracted"}
		audit.Errors = append(audit.Errors, pr.Error)
		return audit
	}

	audit.SchemaOrg = checks.CheckSchemaOrg(pr.HTML)
	audit.Content = checks.CheckContent(pr.Markdown)
	scoreSchema(&audit.SchemaOrg)
	scoreContent(&audit.Content)
	return audit
}

// pageWeight derives the aggregation weight from URL depth: shallow pages
// describe the site better than deep ones.
func pageWeight(pageURL string) float64 {
	switch d := urlutil.Depth(pageURL); {
	case d <= 1:
		return 3
	case d == 2:
		return 2
	default:
		return 1
	}
}

// errNoWeight signals a broken weight computation; it indicates a bug, not
// an audit-time condition.
var errNoWeight = errors.New("aggregation weight sum is not positive")

// aggregatePageScores folds per-page schema and content reports into
// site-level ones using depth weights. Pages with no content and an error
// are excluded; if nothing qualifies both site scores are zero.
func aggregatePageScores(pages []types.PageAudit) (types.SchemaReport, types.ContentReport, error) {
	var qualifying []types.PageAudit
	for _, p := range pages {
		if p.Content.WordCount > 0 || len(p.Errors) == 0 {
			qualifying = append(qualifying, p)
		}
	}

	siteSchema := types.SchemaReport{Detail: "no pages with content"}
	siteContent := types.ContentReport{HeadingHierarchyValid: true, Detail: "no pages with content"}
	if len(qualifying) == 0 {
		return siteSchema, siteContent, nil
	}

	var totalWeight, schemaSum, contentSum, wordSum float64
	blocks := 0
	seenTypes := make(map[string]bool)
	var schemas []types.SchemaOrgResult

	for _, p := range qualifying {
		w := pageWeight(p.URL)
		totalWeight += w
		schemaSum += w * p.SchemaOrg.Score
		contentSum += w * p.Content.Score
		wordSum += w * float64(p.Content.WordCount)

		blocks += p.SchemaOrg.BlocksFound
		for _, s := range p.SchemaOrg.Schemas {
			if !seenTypes[s.SchemaType] {
				seenTypes[s.SchemaType] = true
				schemas = append(schemas, s)
			}
		}
	}
	if totalWeight <= 0 {
		return siteSchema, siteContent, errNoWeight
	}

	siteSchema = types.SchemaReport{
		BlocksFound: blocks,
		Schemas:     schemas,
		Score:       round1(schemaSum / totalWeight),
		Detail:      fmt.Sprintf("weighted average across %d pages", len(qualifying)),
	}
	siteContent = types.ContentReport{
		WordCount:             int(wordSum / totalWeight),
		HeadingHierarchyValid: true,
		Score:                 round1(contentSum / totalWeight),
		Detail:                fmt.Sprintf("weighted average across %d pages", len(qualifying)),
	}
	return siteSchema, siteContent, nil
}

func notify(progress ProgressFunc, status string) {
	if progress != nil {
		progress(status)
	}
}
