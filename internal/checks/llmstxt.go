package checks

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/contextlint/contextlint/internal/fetcher"
	"github.com/contextlint/contextlint/internal/types"
	"github.com/contextlint/contextlint/internal/urlutil"
)

var llmsTxtPaths = []string{"/llms.txt", "/.well-known/llms.txt"}
var llmsFullPaths = []string{"/llms-full.txt", "/.well-known/llms-full.txt"}

// CheckLlmsTxt probes the well-known locations for llms.txt and
// llms-full.txt. A file counts as found only when the response is 200 and
// the body has non-whitespace content; the first hit per file wins.
func CheckLlmsTxt(ctx context.Context, client *http.Client, seedURL string, logger *slog.Logger) types.LlmsTxtReport {
	origin := urlutil.Origin(seedURL)
	if origin == "" {
		return types.LlmsTxtReport{Detail: "invalid seed URL"}
	}

	report := types.LlmsTxtReport{}

	for _, path := range llmsTxtPaths {
		if hit(ctx, client, origin+path, logger) {
			report.Found = true
			report.URL = origin + path
			break
		}
	}
	for _, path := range llmsFullPaths {
		if hit(ctx, client, origin+path, logger) {
			report.LlmsFullFound = true
			report.LlmsFullURL = origin + path
			break
		}
	}

	switch {
	case report.Found && report.LlmsFullFound:
		report.Detail = "llms.txt and llms-full.txt found"
	case report.Found:
		report.Detail = "llms.txt found"
	case report.LlmsFullFound:
		report.Detail = "llms-full.txt found"
	default:
		report.Detail = "No llms.txt found"
	}

	return report
}

// hit reports whether the target returns 200 with non-blank content.
func hit(ctx context.Context, client *http.Client, target string, logger *slog.Logger) bool {
	status, body, err := fetcher.Probe(ctx, client, target)
	if err != nil {
		logger.Debug("llms.txt probe failed", "url", target, "error", err)
		return false
	}
	return status == http.StatusOK && strings.TrimSpace(string(body)) != ""
}
