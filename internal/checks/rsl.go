package checks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/contextlint/contextlint/internal/types"
)

var (
	userAgentLineRe  = regexp.MustCompile(`(?i)^user-agent:\s*(.+)$`)
	crawlDelayLineRe = regexp.MustCompile(`(?i)^crawl-delay:\s*(.+)$`)
	sitemapLineRe    = regexp.MustCompile(`(?i)^sitemap:\s*(.+)$`)
)

// CheckRsl scans a robots.txt body for licensing-adjacent signals:
// crawl-delay directives, sitemap declarations, and user-agent groups that
// target specific AI bots. It re-reads the raw text carried on the
// RobotsReport; pass "" when no robots.txt was found.
func CheckRsl(rawRobots string, aiBots []string) types.RslReport {
	if rawRobots == "" {
		return types.RslReport{Detail: "No robots.txt available for RSL analysis"}
	}
	if len(aiBots) == 0 {
		aiBots = DefaultAIBots
	}

	known := make(map[string]bool, len(aiBots))
	for _, bot := range aiBots {
		known[bot] = true
	}

	var crawlDelay *float64
	var sitemapURLs []string
	var aiAgents []string
	seenAgent := map[string]bool{}

	for _, line := range strings.Split(rawRobots, "\n") {
		stripped := strings.TrimSpace(line)

		if m := sitemapLineRe.FindStringSubmatch(stripped); m != nil {
			sitemapURLs = append(sitemapURLs, strings.TrimSpace(m[1]))
			continue
		}

		if crawlDelay == nil {
			if m := crawlDelayLineRe.FindStringSubmatch(stripped); m != nil {
				if v, err := strconv.ParseFloat(strings.TrimSpace(m[1]), 64); err == nil {
					crawlDelay = &v
				}
				continue
			}
		}

		if m := userAgentLineRe.FindStringSubmatch(stripped); m != nil {
			agent := strings.TrimSpace(m[1])
			if agent != "*" && known[agent] && !seenAgent[agent] {
				seenAgent[agent] = true
				aiAgents = append(aiAgents, agent)
			}
		}
	}

	var parts []string
	if crawlDelay != nil {
		parts = append(parts, fmt.Sprintf("Crawl-delay: %gs", *crawlDelay))
	}
	if len(sitemapURLs) > 0 {
		parts = append(parts, fmt.Sprintf("%d Sitemap URL(s)", len(sitemapURLs)))
	}
	if len(aiAgents) > 0 {
		parts = append(parts, "AI-specific rules for: "+strings.Join(aiAgents, ", "))
	}
	detail := "No RSL signals found"
	if len(parts) > 0 {
		detail = strings.Join(parts, "; ")
	}

	return types.RslReport{
		HasCrawlDelay:       crawlDelay != nil,
		CrawlDelayValue:     crawlDelay,
		HasSitemapDirective: len(sitemapURLs) > 0,
		SitemapURLs:         sitemapURLs,
		HasAISpecificRules:  len(aiAgents) > 0,
		AISpecificAgents:    aiAgents,
		Detail:              detail,
	}
}
