package checks

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/contextlint/contextlint/internal/types"
)

var (
	aboutLinkRe   = regexp.MustCompile(`(?i)/about(?:-us)?(?:/|$)`)
	contactLinkRe = regexp.MustCompile(`(?i)/contact(?:-us)?(?:/|$)`)
	privacyRe     = regexp.MustCompile(`(?i)privacy`)
	termsRe       = regexp.MustCompile(`(?i)terms`)
)

var dateMetaProperties = []string{
	"article:published_time",
	"article:modified_time",
	"datePublished",
	"dateModified",
	"og:updated_time",
}

var dateMetaNames = []string{"date", "dcterms.date", "dc.date"}

// CheckEeat scans a page's HTML for E-E-A-T signals: author attribution,
// publication dates, about/contact pages, external citations, and trust
// links. baseDomain distinguishes citations from internal links.
func CheckEeat(rawHTML string, baseDomain string) types.EeatReport {
	if strings.TrimSpace(rawHTML) == "" {
		return types.EeatReport{Detail: "No HTML content for E-E-A-T analysis"}
	}

	doc, err := htmlquery.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return types.EeatReport{Detail: "No HTML content for E-E-A-T analysis"}
	}

	hasAuthor, authorName := detectAuthor(doc)
	anchors := htmlquery.Find(doc, "//a[@href]")

	report := types.EeatReport{
		HasAuthor:      hasAuthor,
		AuthorName:     authorName,
		HasDate:        detectDate(doc),
		HasAboutPage:   anyHrefMatches(anchors, aboutLinkRe),
		HasContactInfo: detectContact(anchors),
		CitationCount:  countExternalCitations(anchors, baseDomain),
		TrustSignals:   detectTrustSignals(anchors),
	}
	report.HasCitations = report.CitationCount > 0
	report.Detail = eeatDetail(report)
	return report
}

func eeatDetail(r types.EeatReport) string {
	var found []string
	if r.HasAuthor {
		if r.AuthorName != "" {
			found = append(found, "author: "+r.AuthorName)
		} else {
			found = append(found, "author found")
		}
	}
	if r.HasDate {
		found = append(found, "publication date")
	}
	if r.HasAboutPage {
		found = append(found, "about page")
	}
	if r.HasContactInfo {
		found = append(found, "contact info")
	}
	if r.CitationCount > 0 {
		found = append(found, fmt.Sprintf("%d external citation(s)", r.CitationCount))
	}
	if len(r.TrustSignals) > 0 {
		found = append(found, "trust: "+strings.Join(r.TrustSignals, ", "))
	}
	if len(found) == 0 {
		return "No E-E-A-T signals detected"
	}
	return "E-E-A-T signals: " + strings.Join(found, ", ")
}

// detectAuthor looks for author attribution in meta tags, rel=author
// links, schema.org itemprops, and byline class names, in that order.
func detectAuthor(doc *html.Node) (bool, string) {
	if meta := htmlquery.FindOne(doc, `//meta[@name="author"]`); meta != nil {
		if content := strings.TrimSpace(htmlquery.SelectAttr(meta, "content")); content != "" {
			return true, content
		}
	}

	if link := htmlquery.FindOne(doc, `//a[@rel="author"]`); link != nil {
		return true, strings.TrimSpace(htmlquery.InnerText(link))
	}

	if elem := htmlquery.FindOne(doc, `//*[@itemprop="author"]`); elem != nil {
		if name := htmlquery.FindOne(elem, `.//*[@itemprop="name"]`); name != nil {
			return true, strings.TrimSpace(htmlquery.InnerText(name))
		}
		return true, ""
	}

	for _, class := range []string{"byline", "author", "post-author"} {
		expr := fmt.Sprintf(`//*[contains(@class, %q)]`, class)
		if htmlquery.FindOne(doc, expr) != nil {
			return true, ""
		}
	}

	return false, ""
}

func detectDate(doc *html.Node) bool {
	for _, prop := range dateMetaProperties {
		if htmlquery.FindOne(doc, fmt.Sprintf(`//meta[@property=%q]`, prop)) != nil {
			return true
		}
	}
	for _, name := range dateMetaNames {
		if htmlquery.FindOne(doc, fmt.Sprintf(`//meta[@name=%q]`, name)) != nil {
			return true
		}
	}
	return htmlquery.FindOne(doc, `//time[@datetime]`) != nil
}

func anyHrefMatches(anchors []*html.Node, re *regexp.Regexp) bool {
	for _, a := range anchors {
		if re.MatchString(htmlquery.SelectAttr(a, "href")) {
			return true
		}
	}
	return false
}

func detectContact(anchors []*html.Node) bool {
	for _, a := range anchors {
		href := htmlquery.SelectAttr(a, "href")
		if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return true
		}
		if contactLinkRe.MatchString(href) {
			return true
		}
	}
	return false
}

// countExternalCitations counts absolute links pointing off-site.
func countExternalCitations(anchors []*html.Node, baseDomain string) int {
	count := 0
	for _, a := range anchors {
		href := htmlquery.SelectAttr(a, "href")
		parsed, err := url.Parse(href)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			continue
		}
		if baseDomain != "" && strings.EqualFold(parsed.Host, baseDomain) {
			continue
		}
		count++
	}
	return count
}

func detectTrustSignals(anchors []*html.Node) []string {
	var signals []string
	have := map[string]bool{}
	for _, a := range anchors {
		combined := htmlquery.SelectAttr(a, "href") + " " + strings.ToLower(htmlquery.InnerText(a))
		if privacyRe.MatchString(combined) && !have["privacy policy"] {
			have["privacy policy"] = true
			signals = append(signals, "privacy policy")
		}
		if termsRe.MatchString(combined) && !have["terms of service"] {
			have["terms of service"] = true
			signals = append(signals, "terms of service")
		}
	}
	return signals
}
