package audit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/contextlint/contextlint/internal/types"
	"github.com/contextlint/contextlint/internal/urlutil"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// makePage builds a PageAudit with controlled scores for aggregation tests.
func makePage(url string, schemaScore, contentScore float64, wordCount int, errors ...string) types.PageAudit {
	return types.PageAudit{
		URL: url,
		SchemaOrg: types.SchemaReport{
			Score:  schemaScore,
			Detail: "test",
		},
		Content: types.ContentReport{
			WordCount:             wordCount,
			HeadingHierarchyValid: true,
			Score:                 contentScore,
			Detail:                "test",
		},
		Errors: errors,
	}
}

func TestAggregatePageScoresAverages(t *testing.T) {
	// Both pages are depth <= 1, so equal weights and a plain average.
	pages := []types.PageAudit{
		makePage("https://example.com/", 18, 30, 1000),
		makePage("https://example.com/about", 8, 20, 400),
	}

	schema, content, err := aggregatePageScores(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if schema.Score != 13.0 {
		t.Errorf("schema: expected 13.0, got %g", schema.Score)
	}
	if content.Score != 25.0 {
		t.Errorf("content: expected 25.0, got %g", content.Score)
	}
	if content.WordCount != 700 {
		t.Errorf("word count: expected 700, got %d", content.WordCount)
	}
}

func TestAggregatePageScoresDepthWeights(t *testing.T) {
	// Depth 1 page weighs 3, depth 3 page weighs 1:
	// (3*30 + 1*10) / 4 = 25.0
	pages := []types.PageAudit{
		makePage("https://example.com/about", 0, 30, 500),
		makePage("https://example.com/docs/api/v2", 0, 10, 500),
	}

	_, content, err := aggregatePageScores(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Score != 25.0 {
		t.Errorf("expected depth-weighted 25.0, got %g", content.Score)
	}
}

func TestAggregatePageScoresSkipsFailedPages(t *testing.T) {
	pages := []types.PageAudit{
		makePage("https://example.com/", 20, 30, 1000),
		makePage("https://example.com/broken", 0, 0, 0, "Crawl failed"),
	}

	schema, content, err := aggregatePageScores(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema.Score != 20.0 {
		t.Errorf("failed page must be excluded, schema got %g", schema.Score)
	}
	if content.Score != 30.0 {
		t.Errorf("failed page must be excluded, content got %g", content.Score)
	}
}

func TestAggregatePageScoresEmpty(t *testing.T) {
	schema, content, err := aggregatePageScores(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema.Score != 0 || content.Score != 0 {
		t.Error("no pages should aggregate to zero scores")
	}
}

func TestPageWeight(t *testing.T) {
	cases := []struct {
		url  string
		want float64
	}{
		{"https://example.com/", 3},
		{"https://example.com/about", 3},
		{"https://example.com/blog/post", 2},
		{"https://example.com/docs/api/v2", 1},
		{"https://example.com/a/b/c/d", 1},
	}
	for _, tc := range cases {
		if got := pageWeight(tc.url); got != tc.want {
			t.Errorf("pageWeight(%q) = %g, want %g", tc.url, got, tc.want)
		}
	}
}

// siteServer is a fake site with robots.txt, llms.txt, a sitemap, and three
// content pages.
func siteServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	page := func(title, extra string) string {
		return fmt.Sprintf(`<html><head><title>%s</title>%s</head><body>
			<h1>%s</h1>
			<p>%s</p>
			<ul><li>point one</li><li>point two</li></ul>
			<a href="/about">About</a>
		</body></html>`, title, extra, title, strings.Repeat("Plenty of body words here. ", 40))
	}
	jsonLD := `<script type="application/ld+json">{"@type": "Article", "headline": "T"}</script>`

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nAllow: /\n")
	})
	mux.HandleFunc("/llms.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# Site\n\nAn AI-oriented summary.\n")
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
			<url><loc>%s/about</loc></url>
			<url><loc>%s/blog/post</loc></url>
		</urlset>`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, page("Home", jsonLD))
		case "/about":
			fmt.Fprint(w, page("About", ""))
		case "/blog/post":
			fmt.Fprint(w, page("Post", jsonLD))
		default:
			http.NotFound(w, r)
		}
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAuditor() *Auditor {
	return New(Options{
		Timeout: 5 * time.Second,
		Stagger: time.Millisecond,
		Logger:  testLogger,
	})
}

func TestAuditURLEndToEnd(t *testing.T) {
	srv := siteServer(t)
	a := newTestAuditor()

	report, err := a.AuditURL(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.Robots.Found {
		t.Error("robots.txt should be found")
	}
	if report.Robots.Score != 25 {
		t.Errorf("all bots allowed, expected robots 25, got %g", report.Robots.Score)
	}
	if report.LlmsTxt.Score != 10 {
		t.Errorf("llms.txt present, expected 10, got %g", report.LlmsTxt.Score)
	}
	if report.SchemaOrg.BlocksFound != 1 {
		t.Errorf("expected 1 JSON-LD block, got %d", report.SchemaOrg.BlocksFound)
	}
	if report.Content.WordCount == 0 {
		t.Error("expected content words")
	}
	sum := report.Robots.Score + report.LlmsTxt.Score + report.SchemaOrg.Score + report.Content.Score
	if report.OverallScore != sum {
		t.Errorf("overall %g != pillar sum %g", report.OverallScore, sum)
	}
	if report.Eeat == nil || report.Rsl == nil {
		t.Error("expected E-E-A-T and RSL supplements on a successful audit")
	}
	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
}

func TestAuditURLFetchFailure(t *testing.T) {
	srv := siteServer(t)
	a := newTestAuditor()

	report, err := a.AuditURL(context.Background(), srv.URL+"/missing")
	if err != nil {
		t.Fatalf("a bad page must not abort the audit: %v", err)
	}

	if len(report.Errors) == 0 {
		t.Error("fetch failure should be recorded in report errors")
	}
	if report.SchemaOrg.BlocksFound != 0 || report.Content.WordCount != 0 {
		t.Error("failed fetch should leave empty schema/content reports")
	}
	// Site-wide pillars still scored.
	if report.Robots.Score != 25 || report.LlmsTxt.Score != 10 {
		t.Errorf("site-wide pillars should survive a page failure, got %g/%g",
			report.Robots.Score, report.LlmsTxt.Score)
	}
}

func TestAuditSiteEndToEnd(t *testing.T) {
	srv := siteServer(t)
	a := newTestAuditor()

	var statuses []string
	progress := func(s string) { statuses = append(statuses, s) }

	report, err := a.AuditSite(context.Background(), srv.URL+"/", 3, 2, progress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Discovery.Method != "sitemap" {
		t.Errorf("expected sitemap discovery, got %q", report.Discovery.Method)
	}
	if urlutil.Normalize(report.Discovery.URLsSampled[0]) != urlutil.Normalize(srv.URL+"/") {
		t.Errorf("seed must be sampled first, got %q", report.Discovery.URLsSampled[0])
	}
	if len(report.Discovery.URLsSampled) > 3 {
		t.Errorf("sample exceeds maxPages: %v", report.Discovery.URLsSampled)
	}
	if report.PagesAudited != len(report.Pages) {
		t.Errorf("pagesAudited %d != len(pages) %d", report.PagesAudited, len(report.Pages))
	}
	if report.PagesFailed != 0 {
		t.Errorf("no page should fail, got %d: %v", report.PagesFailed, report.Errors)
	}
	sum := report.Robots.Score + report.LlmsTxt.Score + report.SchemaOrg.Score + report.Content.Score
	if report.OverallScore != round1(sum) {
		t.Errorf("overall %g != pillar sum %g", report.OverallScore, sum)
	}
	if report.Domain == "" {
		t.Error("expected domain to be set")
	}
	if len(statuses) == 0 {
		t.Error("progress callback should have been invoked")
	}
}

func TestAuditSiteCancellation(t *testing.T) {
	srv := siteServer(t)
	a := newTestAuditor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.AuditSite(ctx, srv.URL+"/", 3, 2, nil); err == nil {
		t.Fatal("a cancelled audit must return no report")
	}
}

func TestAuditSitePageFailureIsIsolated(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nAllow: /\n")
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
			<url><loc>%s/good</loc></url>
			<url><loc>%s/bad</loc></url>
		</urlset>`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/", "/good":
			fmt.Fprint(w, "<html><body><h1>Good</h1><p>words here</p></body></html>")
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	a := newTestAuditor()
	report, err := a.AuditSite(context.Background(), srv.URL+"/", 3, 2, nil)
	if err != nil {
		t.Fatalf("one bad page must not abort the audit: %v", err)
	}

	if report.PagesFailed == 0 {
		t.Error("expected the bad page to be counted as failed")
	}
	if len(report.Errors) == 0 {
		t.Error("expected the failure to be recorded in report errors")
	}
	if report.OverallScore <= 0 {
		t.Error("healthy pages should still produce a score")
	}
}
