package checks

import "testing"

const eeatHTML = `<!DOCTYPE html>
<html><head>
	<meta name="author" content="Jane Smith">
	<meta property="article:published_time" content="2026-01-15T10:00:00Z">
</head><body>
	<a href="/about">About us</a>
	<a href="mailto:hello@example.com">Email</a>
	<a href="https://research.example.org/paper">Source</a>
	<a href="https://example.com/internal">Internal</a>
	<a href="/privacy">Privacy Policy</a>
	<a href="/terms">Terms of Service</a>
</body></html>`

func TestCheckEeatSignals(t *testing.T) {
	report := CheckEeat(eeatHTML, "example.com")

	if !report.HasAuthor {
		t.Error("expected author to be detected")
	}
	if report.AuthorName != "Jane Smith" {
		t.Errorf("wrong author name %q", report.AuthorName)
	}
	if !report.HasDate {
		t.Error("expected publication date")
	}
	if !report.HasAboutPage {
		t.Error("expected about page link")
	}
	if !report.HasContactInfo {
		t.Error("expected contact info (mailto)")
	}
	if report.CitationCount != 1 {
		t.Errorf("expected 1 external citation, got %d", report.CitationCount)
	}
	if len(report.TrustSignals) != 2 {
		t.Errorf("expected privacy + terms trust signals, got %v", report.TrustSignals)
	}
}

func TestCheckEeatEmptyHTML(t *testing.T) {
	report := CheckEeat("   ", "example.com")
	if report.HasAuthor || report.HasDate || report.HasCitations {
		t.Error("blank HTML should carry no signals")
	}
	if report.Detail != "No HTML content for E-E-A-T analysis" {
		t.Errorf("unexpected detail %q", report.Detail)
	}
}

func TestCheckEeatBylineClass(t *testing.T) {
	html := `<html><body><div class="post-byline">By Someone</div></body></html>`
	report := CheckEeat(html, "")
	if !report.HasAuthor {
		t.Error("byline class should count as author attribution")
	}
}

func TestCheckEeatTimeElement(t *testing.T) {
	html := `<html><body><time datetime="2026-02-01">Feb 1</time></body></html>`
	report := CheckEeat(html, "")
	if !report.HasDate {
		t.Error("<time datetime> should count as a date signal")
	}
}

func TestCheckEeatNoSignals(t *testing.T) {
	report := CheckEeat("<html><body><p>plain</p></body></html>", "example.com")
	if report.Detail != "No E-E-A-T signals detected" {
		t.Errorf("unexpected detail %q", report.Detail)
	}
}
