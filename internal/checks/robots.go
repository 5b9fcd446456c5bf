// Package checks implements the per-site and per-page pillar checks:
// robots.txt AI-bot access, llms.txt presence, Schema.org JSON-LD coverage,
// content density, and the informational E-E-A-T and RSL signal scans.
package checks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"

	"github.com/contextlint/contextlint/internal/fetcher"
	"github.com/contextlint/contextlint/internal/types"
)

// DefaultAIBots is the built-in list of AI crawler user-agents checked
// against robots.txt. Callers may substitute their own list.
var DefaultAIBots = []string{
	"GPTBot",
	"ChatGPT-User",
	"Google-Extended",
	"ClaudeBot",
	"PerplexityBot",
	"Amazonbot",
	"OAI-SearchBot",
	"DeepSeek-AI",
	"Grok",
	"Meta-ExternalAgent",
	"cohere-ai",
	"AI2Bot",
	"ByteSpider",
}

// CheckRobots fetches {origin}/robots.txt once and decides, for each bot,
// whether the seed path may be crawled. The raw robots.txt body is carried
// on the report for the discovery filter and the RSL scan.
//
// Any failure to obtain or parse robots.txt collapses to found=false with a
// zero score; robots problems never abort an audit.
func CheckRobots(ctx context.Context, client *http.Client, seedURL string, bots []string, logger *slog.Logger) types.RobotsReport {
	if len(bots) == 0 {
		bots = DefaultAIBots
	}

	parsed, err := url.Parse(seedURL)
	if err != nil {
		return types.RobotsReport{Found: false, Detail: "invalid seed URL"}
	}
	robotsURL := parsed.Scheme + "://" + parsed.Host + "/robots.txt"

	status, body, err := fetcher.Probe(ctx, client, robotsURL)
	if err != nil {
		logger.Debug("robots.txt fetch failed", "url", robotsURL, "error", err)
		return types.RobotsReport{Found: false, Detail: "robots.txt not reachable"}
	}
	if status != http.StatusOK {
		return types.RobotsReport{Found: false, Detail: fmt.Sprintf("robots.txt returned HTTP %d", status)}
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		logger.Debug("robots.txt parse failed", "url", robotsURL, "error", err)
		return types.RobotsReport{Found: false, Detail: "robots.txt unparseable"}
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}

	access := make([]types.BotAccess, 0, len(bots))
	allowed := 0
	for _, bot := range bots {
		// FindGroup picks the most specific matching group: an explicit
		// group for the bot shadows the * group for that bot only.
		ok := data.FindGroup(bot).Test(path)
		detail := "Blocked"
		if ok {
			detail = "Allowed"
			allowed++
		}
		access = append(access, types.BotAccess{Bot: bot, Allowed: ok, Detail: detail})
	}

	return types.RobotsReport{
		Found:   true,
		Bots:    access,
		Detail:  fmt.Sprintf("%d/%d AI bots allowed", allowed, len(access)),
		RawText: string(body),
	}
}

// FilterAllowed returns the subset of urls that robots.txt permits for the
// given user-agent. Used by discovery to drop pages the AI crawlers could
// never reach anyway. An unparseable robots.txt filters nothing.
func FilterAllowed(rawRobots string, urls []string, userAgent string) []string {
	data, err := robotstxt.FromString(rawRobots)
	if err != nil {
		return urls
	}
	group := data.FindGroup(userAgent)

	kept := urls[:0:0]
	for _, u := range urls {
		path := u
		if parsed, err := url.Parse(u); err == nil {
			path = parsed.EscapedPath()
			if path == "" {
				path = "/"
			}
			if parsed.RawQuery != "" {
				path += "?" + parsed.RawQuery
			}
		}
		if group.Test(path) {
			kept = append(kept, u)
		}
	}
	return kept
}
